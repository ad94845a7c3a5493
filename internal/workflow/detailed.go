package workflow

import (
	"log/slog"
	"path"
	"strings"

	"github.com/repoatlas/repoatlas/internal/config"
)

// DetailedBuilder produces the exhaustive edge set for the advanced view:
// every resolvable import, directory hierarchy, config governance,
// call chains, similarity links, and a connectivity repair pass.
type DetailedBuilder struct {
	cfg config.Engine
	log *slog.Logger
}

// NewDetailedBuilder returns a builder with the given caps.
func NewDetailedBuilder(cfg config.Engine, log *slog.Logger) *DetailedBuilder {
	if log == nil {
		log = slog.Default()
	}
	return &DetailedBuilder{cfg: cfg, log: log}
}

// Build runs every detailed pass and returns the validated edges.
func (b *DetailedBuilder) Build(nodes []*WorkflowNode, resolver *Resolver) []WorkflowEdge {
	set := newEdgeSet(nodes, b.log)

	b.buildAllImports(nodes, resolver, set)
	b.buildInheritance(nodes, set)
	b.buildDirectoryHierarchy(nodes, set)
	b.buildConfigGovernance(nodes, set)
	b.buildCallChains(nodes, set)
	b.buildSimilarity(nodes, set)
	repairConnectivity(nodes, set)

	return set.edges
}

// buildAllImports materializes every resolvable import edge.
func (b *DetailedBuilder) buildAllImports(nodes []*WorkflowNode, resolver *Resolver, set *edgeSet) {
	for _, n := range nodes {
		for _, spec := range n.Dependencies {
			target, ok := resolver.Resolve(spec, n.ID)
			if !ok || target == n.ID {
				continue
			}
			set.add(n.ID, target, EdgeImport, 1, "imports")
		}
	}
}

// exportIndex maps exported symbol names to the first node exporting them.
func exportIndex(nodes []*WorkflowNode) map[string]string {
	idx := make(map[string]string)
	for _, n := range nodes {
		stem := strings.TrimSuffix(n.Name, path.Ext(n.Name))
		if _, ok := idx[stem]; !ok {
			idx[stem] = n.ID
		}
	}
	return idx
}

// buildInheritance links a file to the file whose base name matches its
// classes' supertype or interfaces.
func (b *DetailedBuilder) buildInheritance(nodes []*WorkflowNode, set *edgeSet) {
	idx := exportIndex(nodes)
	for _, n := range nodes {
		for _, super := range n.supertypes {
			if target, ok := idx[super]; ok && target != n.ID {
				set.add(n.ID, target, EdgeInheritance, 2, "extends")
			}
		}
	}
}

// buildDirectoryHierarchy adds containment edges from a parent directory's
// representative file to a limited number of child files, and "organizes"
// edges from an index/main file to its directory siblings.
func (b *DetailedBuilder) buildDirectoryHierarchy(nodes []*WorkflowNode, set *edgeSet) {
	byDir := make(map[string][]*WorkflowNode)
	var dirOrder []string
	for _, n := range nodes {
		dir := path.Dir(n.ID)
		if _, seen := byDir[dir]; !seen {
			dirOrder = append(dirOrder, dir)
		}
		byDir[dir] = append(byDir[dir], n)
	}

	for _, dir := range dirOrder {
		members := byDir[dir]

		// Parent directory containment.
		parent := path.Dir(dir)
		if parent != dir {
			if parents := byDir[parent]; len(parents) > 0 {
				rep := directoryRepresentative(parents)
				for i, child := range members {
					if i >= b.cfg.ContainsCap {
						break
					}
					set.add(rep.ID, child.ID, EdgeComposition, 1, "contains")
				}
			}
		}

		// Index/main file organizes its siblings.
		if organizer := directoryOrganizer(members); organizer != nil {
			for _, sib := range members {
				if sib.ID == organizer.ID {
					continue
				}
				set.add(organizer.ID, sib.ID, EdgeComposition, 1, "organizes")
			}
		}
	}
}

// directoryRepresentative picks the file standing in for a directory: its
// index/main file when present, otherwise the first member.
func directoryRepresentative(members []*WorkflowNode) *WorkflowNode {
	if org := directoryOrganizer(members); org != nil {
		return org
	}
	return members[0]
}

func directoryOrganizer(members []*WorkflowNode) *WorkflowNode {
	for _, n := range members {
		stem := strings.ToLower(strings.TrimSuffix(n.Name, path.Ext(n.Name)))
		if entryStems[stem] {
			return n
		}
	}
	return nil
}

// buildConfigGovernance connects config files to the files they plausibly
// govern: the manifest to everything, tsconfig-style files to files of the
// same extension family, and other configs to entry points and
// high-importance files, capped.
func (b *DetailedBuilder) buildConfigGovernance(nodes []*WorkflowNode, set *edgeSet) {
	for _, cfg := range nodesOfType(nodes, NodeConfig) {
		lower := strings.ToLower(cfg.Name)
		stem := strings.TrimSuffix(lower, path.Ext(lower))

		switch {
		case manifestNames[lower]:
			for _, n := range nodes {
				if n.ID != cfg.ID {
					set.add(cfg.ID, n.ID, EdgeConfiguration, 0.5, "governs")
				}
			}

		case stem == "tsconfig" || strings.HasPrefix(stem, "tsconfig."):
			for _, n := range nodes {
				ext := path.Ext(n.Name)
				if ext == ".ts" || ext == ".tsx" {
					set.add(cfg.ID, n.ID, EdgeConfiguration, 0.5, "governs")
				}
			}

		default:
			added := 0
			for _, n := range nodes {
				if added >= b.cfg.GovernanceCap {
					break
				}
				if n.ID == cfg.ID {
					continue
				}
				if n.Type != NodeEntry && n.Importance != ImportanceHigh {
					continue
				}
				if set.add(cfg.ID, n.ID, EdgeConfiguration, 0.5, "configures") {
					added++
				}
			}
		}
	}
}

// buildCallChains wires explicit uses/calls chains from entry points
// through components to services and utilities.
func (b *DetailedBuilder) buildCallChains(nodes []*WorkflowNode, set *edgeSet) {
	entries := nodesOfType(nodes, NodeEntry)
	components := nodesOfType(nodes, NodeComponent)
	services := nodesOfType(nodes, NodeService)
	utilities := nodesOfType(nodes, NodeUtility)

	for _, e := range entries {
		for i, c := range components {
			if i >= b.cfg.UsesCap {
				break
			}
			set.add(e.ID, c.ID, EdgeCall, 2, "uses")
		}
	}
	for _, c := range components {
		for i, s := range services {
			if i >= b.cfg.CallsCap {
				break
			}
			set.add(c.ID, s.ID, EdgeCall, 2, "calls")
		}
	}
	for _, s := range services {
		for i, u := range utilities {
			if i >= b.cfg.CallsCap {
				break
			}
			set.add(s.ID, u.ID, EdgeCall, 1, "calls")
		}
	}
}

// buildSimilarity links files with similar base names (prefix/substring
// heuristic), capped per node.
func (b *DetailedBuilder) buildSimilarity(nodes []*WorkflowNode, set *edgeSet) {
	const minStemLen = 4

	stems := make([]string, len(nodes))
	for i, n := range nodes {
		stems[i] = strings.ToLower(strings.TrimSuffix(n.Name, path.Ext(n.Name)))
	}

	for i, n := range nodes {
		if len(stems[i]) < minStemLen {
			continue
		}
		added := 0
		for j, other := range nodes {
			if added >= b.cfg.SimilarCap {
				break
			}
			if i == j || len(stems[j]) < minStemLen || stems[i] == stems[j] {
				continue
			}
			if strings.Contains(stems[j], stems[i]) || strings.Contains(stems[i], stems[j]) {
				if set.addDescribed(n.ID, other.ID, EdgeDataFlow, 0.5, "similar", "similar base name") {
					added++
				}
			}
		}
	}
}

// repairConnectivity bridges every non-dominant connected component to the
// dominant one, preferring the dominant component's entry-point node as
// the bridge source and the other component's highest-importance node as
// the target. Shared by both builders so every returned graph with edges
// is a single component.
func repairConnectivity(nodes []*WorkflowNode, set *edgeSet) {
	if set.len() == 0 || len(nodes) < 2 {
		return
	}

	byID := make(map[string]*WorkflowNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	comps := components(nodes, set.adjacency())
	if len(comps) <= 1 {
		return
	}

	dominant := 0
	for i, c := range comps {
		if len(c) > len(comps[dominant]) {
			dominant = i
		}
	}

	hub := byID[comps[dominant][0]]
	for _, id := range comps[dominant] {
		if byID[id].Type == NodeEntry {
			hub = byID[id]
			break
		}
	}

	for i, c := range comps {
		if i == dominant {
			continue
		}
		members := make([]*WorkflowNode, len(c))
		for j, id := range c {
			members[j] = byID[id]
		}
		best := topRanked(members, 1)[0]
		set.addDescribed(hub.ID, best.ID, EdgeDataFlow, 1, "bridge", "connectivity repair")
	}
}
