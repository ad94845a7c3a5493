package workflow

import "path"

// clusterPurposes maps a cluster's plurality node type to its inferred
// purpose label.
var clusterPurposes = map[NodeType]string{
	NodeEntry:     "Application entry points",
	NodeComponent: "UI components and views",
	NodeService:   "Business logic and services",
	NodeUtility:   "Shared utilities and helpers",
	NodeConfig:    "Configuration and tooling",
	NodeTest:      "Test suites",
	NodeTypeDecl:  "Type definitions",
}

const clusterPurposeDefault = "Mixed functionality"

// directedAdjacency maps each node id to the targets of its outgoing edges.
func directedAdjacency(edges []WorkflowEdge) map[string][]string {
	adj := make(map[string][]string)
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}
	return adj
}

// entryPointIDs returns all entry-type nodes plus all high-importance
// nodes, in insertion order, de-duplicated.
func entryPointIDs(nodes []*WorkflowNode) []string {
	seen := make(map[string]bool)
	var out []string
	for _, n := range nodes {
		if n.Type != NodeEntry && n.Importance != ImportanceHigh {
			continue
		}
		if !seen[n.ID] {
			seen[n.ID] = true
			out = append(out, n.ID)
		}
	}
	return out
}

// dependencyDepth reports the maximum BFS hop count observed from any
// entry point along directed import edges. Synthetic spine and call edges
// are excluded: they fan entry points straight at deep nodes and would
// collapse the measured depth of the real import chain.
func dependencyDepth(entryPoints []string, edges []WorkflowEdge) int {
	var imports []WorkflowEdge
	for _, e := range edges {
		if e.Type == EdgeImport {
			imports = append(imports, e)
		}
	}
	adj := directedAdjacency(imports)
	maxDepth := 0

	for _, start := range entryPoints {
		type hop struct {
			id    string
			depth int
		}
		visited := map[string]bool{start: true}
		queue := []hop{{id: start}}

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if cur.depth > maxDepth {
				maxDepth = cur.depth
			}
			for _, nb := range adj[cur.id] {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, hop{id: nb, depth: cur.depth + 1})
				}
			}
		}
	}
	return maxDepth
}

// detectClusters groups nodes by directory; directories with more than one
// node become clusters with a purpose inferred from the plurality type.
func detectClusters(nodes []*WorkflowNode) []Cluster {
	byDir := make(map[string][]*WorkflowNode)
	var dirOrder []string
	for _, n := range nodes {
		dir := path.Dir(n.ID)
		if _, seen := byDir[dir]; !seen {
			dirOrder = append(dirOrder, dir)
		}
		byDir[dir] = append(byDir[dir], n)
	}

	var clusters []Cluster
	for _, dir := range dirOrder {
		members := byDir[dir]
		if len(members) < 2 {
			continue
		}

		ids := make([]string, len(members))
		for i, n := range members {
			ids[i] = n.ID
		}

		name := dir
		if name == "." {
			name = "root"
		}
		clusters = append(clusters, Cluster{
			ID:      "cluster:" + name,
			Name:    name,
			NodeIDs: ids,
			Purpose: clusterPurpose(members),
		})
	}
	return clusters
}

// clusterPurpose infers a group's purpose from its plurality node type.
// Ties break toward the higher-priority type so the label is stable.
func clusterPurpose(members []*WorkflowNode) string {
	counts := make(map[NodeType]int)
	for _, n := range members {
		counts[n.Type]++
	}

	var best NodeType
	bestCount := -1
	for t, p := range typePriority {
		c := counts[t]
		if c > bestCount || (c == bestCount && p < typePriority[best]) {
			best = t
			bestCount = c
		}
	}

	if purpose, ok := clusterPurposes[best]; ok && bestCount > 0 {
		return purpose
	}
	return clusterPurposeDefault
}

// shortestPath runs BFS over directed edges and returns the node ids from
// start to goal inclusive, or nil when unreachable.
func shortestPath(start, goal string, adj map[string][]string) []string {
	if start == goal {
		return []string{start}
	}
	parent := map[string]string{start: start}
	queue := []string{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range adj[cur] {
			if _, seen := parent[nb]; seen {
				continue
			}
			parent[nb] = cur
			if nb == goal {
				// Reconstruct.
				var rev []string
				for at := goal; at != start; at = parent[at] {
					rev = append(rev, at)
				}
				rev = append(rev, start)
				out := make([]string, len(rev))
				for i := range rev {
					out[i] = rev[len(rev)-1-i]
				}
				return out
			}
			queue = append(queue, nb)
		}
	}
	return nil
}

// criticalPathWeight is the fixed importance weight attached to every
// reported critical path.
const criticalPathWeight = 0.8

// findCriticalPaths collects shortest paths from each entry point to each
// high-importance node, keeping non-trivial paths (more than one hop), up
// to limit.
func findCriticalPaths(nodes []*WorkflowNode, entryPoints []string, edges []WorkflowEdge, limit int) []CriticalPath {
	adj := directedAdjacency(edges)

	var highs []string
	for _, n := range nodes {
		if n.Importance == ImportanceHigh {
			highs = append(highs, n.ID)
		}
	}

	var paths []CriticalPath
	for _, start := range entryPoints {
		for _, goal := range highs {
			if limit > 0 && len(paths) >= limit {
				return paths
			}
			if start == goal {
				continue
			}
			p := shortestPath(start, goal, adj)
			if len(p) <= 2 {
				// Fewer than two hops is trivial.
				continue
			}
			paths = append(paths, CriticalPath{Nodes: p, Weight: criticalPathWeight})
		}
	}
	return paths
}

// computeMetrics derives the aggregate metrics from the final node and
// edge sets. Function and class totals come from the summaries and are
// passed through by the engine.
func computeMetrics(nodes []*WorkflowNode, edges []WorkflowEdge, totalFunctions, totalClasses, depth int) Metrics {
	m := Metrics{
		TotalFiles:      len(nodes),
		TotalFunctions:  totalFunctions,
		TotalClasses:    totalClasses,
		DependencyDepth: depth,
	}
	if len(nodes) > 0 {
		sum := 0
		for _, n := range nodes {
			sum += n.Complexity
		}
		m.AvgComplexity = float64(sum) / float64(len(nodes))
		m.CouplingMetric = float64(len(edges)) / float64(len(nodes))
	}
	return m
}
