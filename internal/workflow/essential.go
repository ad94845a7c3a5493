package workflow

import (
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/repoatlas/repoatlas/internal/config"
)

// manifestNames identify the project manifest file.
var manifestNames = map[string]bool{
	"package.json":   true,
	"go.mod":         true,
	"cargo.toml":     true,
	"pyproject.toml": true,
}

// EssentialBuilder produces the pruned, legibility-optimized edge set used
// for default visualization. Each step is idempotent and skippable when
// its inputs are absent; a final repair pass guarantees connectivity.
type EssentialBuilder struct {
	cfg config.Engine
	log *slog.Logger
}

// NewEssentialBuilder returns a builder with the given caps.
func NewEssentialBuilder(cfg config.Engine, log *slog.Logger) *EssentialBuilder {
	if log == nil {
		log = slog.Default()
	}
	return &EssentialBuilder{cfg: cfg, log: log}
}

// Build runs the ordered essential passes and returns the validated edges.
func (b *EssentialBuilder) Build(nodes []*WorkflowNode, resolver *Resolver) []WorkflowEdge {
	set := newEdgeSet(nodes, b.log)

	b.buildSpine(nodes, set)
	b.buildCriticalImports(nodes, resolver, set)
	b.buildConfigLinks(nodes, set)
	b.ensureMinimalConnectivity(nodes, set)
	b.fallbackConnections(nodes, set)
	repairConnectivity(nodes, set)

	return set.edges
}

// buildSpine connects entry points to the top components round-robin, and
// those components to the top services. Absent entries or components, the
// top-ranked nodes are chained instead.
func (b *EssentialBuilder) buildSpine(nodes []*WorkflowNode, set *edgeSet) {
	entries := nodesOfType(nodes, NodeEntry)
	components := topRanked(nodesOfType(nodes, NodeComponent), b.cfg.SpineComponentCap)

	if len(entries) == 0 || len(components) == 0 {
		b.chainTopNodes(nodes, set)
		return
	}

	for i, comp := range components {
		entry := entries[i%len(entries)]
		set.add(entry.ID, comp.ID, EdgeCall, 3, "uses")
	}

	services := topRanked(nodesOfType(nodes, NodeService), b.cfg.SpineServiceCap)
	for i, svc := range services {
		comp := components[i%len(components)]
		set.add(comp.ID, svc.ID, EdgeCall, 3, "calls")
	}
}

// chainTopNodes is the spine fallback: chain the top-ranked nodes
// regardless of type. Candidates are ranked by importance tier, then
// complexity, then insertion order.
func (b *EssentialBuilder) chainTopNodes(nodes []*WorkflowNode, set *edgeSet) {
	top := topRanked(nodes, b.cfg.SpineChainLen)
	for i := 1; i < len(top); i++ {
		set.add(top[i-1].ID, top[i].ID, EdgeDataFlow, 2, "flows to")
	}
}

// buildCriticalImports materializes imports whose importer is
// high-importance or an entry point, capped.
func (b *EssentialBuilder) buildCriticalImports(nodes []*WorkflowNode, resolver *Resolver, set *edgeSet) {
	added := 0
	for _, n := range nodes {
		if n.Importance != ImportanceHigh && n.Type != NodeEntry {
			continue
		}
		for _, spec := range n.Dependencies {
			if added >= b.cfg.CriticalImportCap {
				return
			}
			target, ok := resolver.Resolve(spec, n.ID)
			if !ok || target == n.ID {
				continue
			}
			if set.add(n.ID, target, EdgeImport, 1, "imports") {
				added++
			}
		}
	}
}

// buildConfigLinks attaches the manifest and the primary build-config file
// to the primary entry point.
func (b *EssentialBuilder) buildConfigLinks(nodes []*WorkflowNode, set *edgeSet) {
	entries := nodesOfType(nodes, NodeEntry)
	if len(entries) == 0 {
		return
	}
	primary := entries[0]

	if manifest := findManifest(nodes); manifest != nil {
		set.add(manifest.ID, primary.ID, EdgeConfiguration, 2, "configures")
	}
	if build := findBuildConfig(nodes); build != nil {
		set.add(build.ID, primary.ID, EdgeConfiguration, 2, "configures")
	}
}

// ensureMinimalConnectivity links untouched high-importance or entry nodes
// to a hub already in the connected set, capped.
func (b *EssentialBuilder) ensureMinimalConnectivity(nodes []*WorkflowNode, set *edgeSet) {
	if set.len() == 0 {
		return
	}

	hub := pickHub(nodes, set)
	if hub == nil {
		return
	}

	added := 0
	for _, n := range nodes {
		if added >= b.cfg.ConnectivityCap {
			return
		}
		if set.isTouched(n.ID) {
			continue
		}
		if n.Importance != ImportanceHigh && n.Type != NodeEntry {
			continue
		}
		if set.add(hub.ID, n.ID, EdgeDataFlow, 1, "links") {
			added++
		}
	}
}

// fallbackConnections guarantees a non-empty edge set for any input with
// at least two nodes: fan the first node out, then chain the first four.
func (b *EssentialBuilder) fallbackConnections(nodes []*WorkflowNode, set *edgeSet) {
	if set.len() > 0 || len(nodes) < 2 {
		return
	}

	first := nodes[0]
	for i := 1; i < len(nodes) && i <= b.cfg.FallbackFanCap; i++ {
		set.add(first.ID, nodes[i].ID, EdgeDataFlow, 1, "related")
	}
	for i := 1; i < len(nodes) && i < b.cfg.SpineChainLen; i++ {
		set.add(nodes[i-1].ID, nodes[i].ID, EdgeDataFlow, 1, "flows to")
	}
}

// --- Shared node helpers ---

// nodesOfType filters nodes by type, preserving insertion order.
func nodesOfType(nodes []*WorkflowNode, t NodeType) []*WorkflowNode {
	var out []*WorkflowNode
	for _, n := range nodes {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// topRanked sorts a copy of nodes by (importance desc, complexity desc,
// insertion order) and returns the first limit entries.
func topRanked(nodes []*WorkflowNode, limit int) []*WorkflowNode {
	ranked := make([]*WorkflowNode, len(nodes))
	copy(ranked, nodes)
	sort.SliceStable(ranked, func(i, j int) bool {
		if importanceRank[ranked[i].Importance] != importanceRank[ranked[j].Importance] {
			return importanceRank[ranked[i].Importance] > importanceRank[ranked[j].Importance]
		}
		return ranked[i].Complexity > ranked[j].Complexity
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// pickHub prefers an entry-point node already in the connected set, then
// any already-connected node.
func pickHub(nodes []*WorkflowNode, set *edgeSet) *WorkflowNode {
	for _, n := range nodes {
		if n.Type == NodeEntry && set.isTouched(n.ID) {
			return n
		}
	}
	for _, n := range nodes {
		if set.isTouched(n.ID) {
			return n
		}
	}
	return nil
}

// findManifest returns the first node whose file name is a known project
// manifest, or nil.
func findManifest(nodes []*WorkflowNode) *WorkflowNode {
	for _, n := range nodes {
		if manifestNames[strings.ToLower(n.Name)] {
			return n
		}
	}
	return nil
}

// findBuildConfig returns the first build-configuration file: a
// "*.config.*" name or a tsconfig/webpack-style manifest.
func findBuildConfig(nodes []*WorkflowNode) *WorkflowNode {
	for _, n := range nodes {
		lower := strings.ToLower(n.Name)
		stem := strings.TrimSuffix(lower, path.Ext(lower))
		if strings.HasSuffix(stem, ".config") || stem == "tsconfig" || stem == "makefile" {
			return n
		}
	}
	return nil
}
