package workflow

import (
	"context"
	"log/slog"
	"path"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/repoatlas/repoatlas/internal/config"
	"github.com/repoatlas/repoatlas/internal/summary"
)

// Mode selects the edge-building fidelity level.
type Mode string

const (
	// ModeEssential builds the pruned, legibility-optimized graph.
	ModeEssential Mode = "essential"
	// ModeDetailed builds the exhaustive graph under a time budget.
	ModeDetailed Mode = "detailed"
)

// Engine runs the full analysis pipeline. Each Analyze call owns its own
// node and edge collections; nothing is shared across runs.
type Engine struct {
	cfg config.Engine
	log *slog.Logger
}

// New returns an Engine. A nil logger falls back to slog.Default().
func New(cfg config.Engine, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{cfg: cfg, log: log}
}

// Analyze turns file summaries into a complete RepositoryWorkflow. No
// input condition produces an error: malformed files are skipped,
// unresolvable imports are omitted, an elapsed edge budget substitutes the
// cheap fallback graph, and cancellation returns the best completed
// partial result.
func (e *Engine) Analyze(ctx context.Context, summaries []summary.FileSummary, mode Mode) *RepositoryWorkflow {
	nodes := e.classifyAll(ctx, summaries)

	totalFunctions, totalClasses := 0, 0
	for _, s := range summaries {
		totalFunctions += len(s.Functions)
		totalClasses += len(s.Classes)
	}

	// Cancellation is checked between stages, not inside inner loops.
	if ctx.Err() != nil {
		e.log.Warn("analysis cancelled after classification", "files", len(nodes))
		return e.assemble(nodes, nil, totalFunctions, totalClasses)
	}

	resolver := NewResolver(nodes, e.cfg.AliasPrefixes, e.log)

	var edges []WorkflowEdge
	switch mode {
	case ModeDetailed:
		edges = e.buildDetailedWithBudget(ctx, nodes, resolver)
	default:
		edges = NewEssentialBuilder(e.cfg, e.log).Build(nodes, resolver)
	}

	if ctx.Err() != nil {
		e.log.Warn("analysis cancelled after edge construction")
	}

	return e.assemble(nodes, edges, totalFunctions, totalClasses)
}

// classifyAll runs the classifier across an in-process worker pool and
// normalizes the results back to input order, so downstream tie-breaking
// is unaffected by scheduling. Per-file failures skip the file.
func (e *Engine) classifyAll(ctx context.Context, summaries []summary.FileSummary) []*WorkflowNode {
	classifier := NewClassifier(e.cfg)

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]*WorkflowNode, len(summaries))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, s := range summaries {
		g.Go(func() error {
			node, err := classifier.Classify(s)
			if err != nil {
				e.log.Warn("file skipped", "path", s.Path, "error", err)
				return nil
			}
			results[i] = &node
			return nil
		})
	}
	// Workers never return errors; failures degrade to skipped files.
	_ = g.Wait()

	nodes := make([]*WorkflowNode, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, n := range results {
		if n == nil {
			continue
		}
		if seen[n.ID] {
			e.log.Warn("duplicate node id skipped", "id", n.ID)
			continue
		}
		seen[n.ID] = true
		nodes = append(nodes, n)
	}
	return nodes
}

// buildDetailedWithBudget races the detailed builder against the edge
// budget. On expiry (or caller cancellation) the cheap fallback graph is
// substituted; the abandoned build's result is discarded.
func (e *Engine) buildDetailedWithBudget(ctx context.Context, nodes []*WorkflowNode, resolver *Resolver) []WorkflowEdge {
	if e.cfg.EdgeBudget <= 0 {
		return NewDetailedBuilder(e.cfg, e.log).Build(nodes, resolver)
	}

	done := make(chan []WorkflowEdge, 1)
	go func() {
		done <- NewDetailedBuilder(e.cfg, e.log).Build(nodes, resolver)
	}()

	timer := time.NewTimer(e.cfg.EdgeBudget)
	defer timer.Stop()

	select {
	case edges := <-done:
		return edges
	case <-timer.C:
		e.log.Warn("edge budget elapsed, substituting fallback graph",
			"budget", e.cfg.EdgeBudget, "nodes", len(nodes))
	case <-ctx.Done():
		e.log.Warn("edge construction cancelled, substituting fallback graph")
	}
	return e.fallbackEdges(nodes)
}

// fallbackEdges is the precomputed-cheap substitute graph: entry points
// fan out to their same-directory nodes, components fan in to services,
// and the result is repaired into a single component.
func (e *Engine) fallbackEdges(nodes []*WorkflowNode) []WorkflowEdge {
	set := newEdgeSet(nodes, e.log)

	byDir := make(map[string][]*WorkflowNode)
	for _, n := range nodes {
		dir := path.Dir(n.ID)
		byDir[dir] = append(byDir[dir], n)
	}

	for _, entry := range nodesOfType(nodes, NodeEntry) {
		for _, sibling := range byDir[path.Dir(entry.ID)] {
			if sibling.ID != entry.ID {
				set.add(entry.ID, sibling.ID, EdgeDataFlow, 1, "related")
			}
		}
	}

	services := nodesOfType(nodes, NodeService)
	if len(services) > 0 {
		for _, comp := range nodesOfType(nodes, NodeComponent) {
			set.add(comp.ID, services[0].ID, EdgeCall, 1, "calls")
		}
	}

	// Never return an edge-less graph when two or more nodes exist.
	if set.len() == 0 && len(nodes) >= 2 {
		for i := 1; i < len(nodes) && i <= e.cfg.FallbackFanCap; i++ {
			set.add(nodes[0].ID, nodes[i].ID, EdgeDataFlow, 1, "related")
		}
	}

	repairConnectivity(nodes, set)
	return set.edges
}

// assemble runs analytics and layout over the final collections and
// produces the plain serializable result.
func (e *Engine) assemble(nodes []*WorkflowNode, edges []WorkflowEdge, totalFunctions, totalClasses int) *RepositoryWorkflow {
	applyDependents(nodes, edges)

	entryPoints := entryPointIDs(nodes)
	depth := dependencyDepth(entryPoints, edges)
	clusters := detectClusters(nodes)
	criticalPaths := findCriticalPaths(nodes, entryPoints, edges, e.cfg.CriticalPathCap)
	metrics := computeMetrics(nodes, edges, totalFunctions, totalClasses, depth)

	NewLayoutEngine(e.cfg).Apply(nodes, edges)

	out := &RepositoryWorkflow{
		Nodes:         make([]WorkflowNode, len(nodes)),
		Edges:         edges,
		EntryPoints:   entryPoints,
		Clusters:      clusters,
		CriticalPaths: criticalPaths,
		Metrics:       metrics,
	}
	if out.Edges == nil {
		out.Edges = []WorkflowEdge{}
	}
	for i, n := range nodes {
		out.Nodes[i] = *n
	}
	return out
}
