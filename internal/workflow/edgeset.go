package workflow

import "log/slog"

// edgeSet is the explicit edge accumulator threaded through the builders.
// It validates every insertion (both endpoints must exist, no self-loops),
// rejects duplicate ids (first write wins), and maintains the dependents
// back-references on the nodes. Violations are logged, never thrown.
type edgeSet struct {
	byID    map[string]*WorkflowNode
	edges   []WorkflowEdge
	seen    map[string]bool
	touched map[string]bool
	log     *slog.Logger
}

func newEdgeSet(nodes []*WorkflowNode, log *slog.Logger) *edgeSet {
	if log == nil {
		log = slog.Default()
	}
	s := &edgeSet{
		byID:    make(map[string]*WorkflowNode, len(nodes)),
		seen:    make(map[string]bool),
		touched: make(map[string]bool),
		log:     log,
	}
	for _, n := range nodes {
		s.byID[n.ID] = n
	}
	return s
}

// add validates and inserts one edge. Returns true only when the edge was
// actually appended.
func (s *edgeSet) add(source, target string, kind EdgeType, weight float64, label string) bool {
	return s.addDescribed(source, target, kind, weight, label, "")
}

func (s *edgeSet) addDescribed(source, target string, kind EdgeType, weight float64, label, desc string) bool {
	if source == target {
		s.log.Debug("edge dropped", "reason", "self-loop", "node", source)
		return false
	}
	if s.byID[source] == nil || s.byID[target] == nil {
		s.log.Debug("edge dropped", "reason", "missing endpoint", "source", source, "target", target)
		return false
	}

	id := edgeID(source, target, kind)
	if s.seen[id] {
		return false
	}
	s.seen[id] = true

	edge := WorkflowEdge{
		ID:     id,
		Source: source,
		Target: target,
		Type:   kind,
		Weight: weight,
		Label:  label,
	}
	if desc != "" {
		edge.Metadata = &EdgeMetadata{Description: desc}
	}
	s.edges = append(s.edges, edge)
	s.touched[source] = true
	s.touched[target] = true
	return true
}

// applyDependents populates the dependents back-references once the edge
// set is final. Builders only read nodes, so an abandoned over-budget
// build never races with the substituted fallback graph.
func applyDependents(nodes []*WorkflowNode, edges []WorkflowEdge) {
	byID := make(map[string]*WorkflowNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	seen := make(map[string]bool, len(edges))
	for _, e := range edges {
		key := e.Target + "\x00" + e.Source
		if seen[key] {
			continue
		}
		seen[key] = true
		if tn := byID[e.Target]; tn != nil {
			tn.Dependents = append(tn.Dependents, e.Source)
		}
	}
}

func (s *edgeSet) isTouched(id string) bool { return s.touched[id] }

func (s *edgeSet) len() int { return len(s.edges) }

// adjacency returns the undirected neighbor map over the current edges.
func (s *edgeSet) adjacency() map[string][]string {
	adj := make(map[string][]string, len(s.byID))
	for _, e := range s.edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
	}
	return adj
}

// components finds undirected connected components over the given node
// order (isolated nodes form singleton components). Component order and
// member order follow node insertion order, keeping the repair pass
// deterministic.
func components(nodes []*WorkflowNode, adj map[string][]string) [][]string {
	visited := make(map[string]bool, len(nodes))
	var comps [][]string

	for _, n := range nodes {
		if visited[n.ID] {
			continue
		}
		// Explicit queue; no recursion.
		var comp []string
		queue := []string{n.ID}
		visited[n.ID] = true
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			comp = append(comp, id)
			for _, nb := range adj[id] {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}
