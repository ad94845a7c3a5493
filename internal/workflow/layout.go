package workflow

import (
	"math"
	"path"
	"sort"
	"strings"

	"github.com/repoatlas/repoatlas/internal/config"
)

// layoutMargin keeps nodes away from the canvas border.
const layoutMargin = 60.0

// LayoutEngine assigns deterministic, non-overlapping 2-D coordinates:
// hierarchical BFS leveling from the entry points, even row placement,
// then iterative overlap relaxation. It is the only mutator of node
// positions.
type LayoutEngine struct {
	cfg config.Engine
}

// NewLayoutEngine returns a layout engine for the configured canvas.
func NewLayoutEngine(cfg config.Engine) *LayoutEngine {
	return &LayoutEngine{cfg: cfg}
}

// Apply computes and writes final coordinates onto the nodes.
func (l *LayoutEngine) Apply(nodes []*WorkflowNode, edges []WorkflowEdge) {
	if len(nodes) == 0 {
		return
	}
	levels := l.assignLevels(nodes, edges)
	l.placeRows(levels)
	l.resolveOverlaps(nodes)
}

// assignLevels runs BFS from the entry points (or, absent any, from the
// nodes with the fewest declared dependencies). A node joins level L+1 the
// first time a level-L node reaches it via an edge or a name match, capped
// so cyclic or malformed graphs cannot expand unboundedly. Unreached nodes
// land in one final overflow level grouped by type.
func (l *LayoutEngine) assignLevels(nodes []*WorkflowNode, edges []WorkflowEdge) [][]*WorkflowNode {
	byID := make(map[string]*WorkflowNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	adj := directedAdjacency(edges)

	seeds := nodesOfType(nodes, NodeEntry)
	if len(seeds) == 0 {
		seeds = fewestDependencies(nodes)
	}

	assigned := make(map[string]int, len(nodes))
	var levels [][]*WorkflowNode
	current := make([]*WorkflowNode, 0, len(seeds))
	for _, s := range seeds {
		assigned[s.ID] = 0
		current = append(current, s)
	}
	levels = append(levels, current)

	// Explicit frontier queue per level; no recursion.
	for depth := 0; depth < l.cfg.LevelCap && len(current) > 0; depth++ {
		var next []*WorkflowNode
		for _, n := range current {
			for _, id := range l.discover(n, adj, nodes) {
				if _, ok := assigned[id]; ok {
					continue
				}
				assigned[id] = depth + 1
				next = append(next, byID[id])
			}
		}
		if len(next) > 0 {
			levels = append(levels, next)
		}
		current = next
	}

	// Overflow level for anything never reached, grouped by type.
	var overflow []*WorkflowNode
	for _, n := range nodes {
		if _, ok := assigned[n.ID]; !ok {
			overflow = append(overflow, n)
		}
	}
	if len(overflow) > 0 {
		sort.SliceStable(overflow, func(i, j int) bool {
			if typePriority[overflow[i].Type] != typePriority[overflow[j].Type] {
				return typePriority[overflow[i].Type] < typePriority[overflow[j].Type]
			}
			return overflow[i].Name < overflow[j].Name
		})
		levels = append(levels, overflow)
	}
	return levels
}

// discover lists the ids one hop from n: its edge successors plus nodes
// whose stem matches one of n's raw dependency specifiers.
func (l *LayoutEngine) discover(n *WorkflowNode, adj map[string][]string, nodes []*WorkflowNode) []string {
	out := append([]string(nil), adj[n.ID]...)

	for _, spec := range n.Dependencies {
		last := spec
		if idx := strings.LastIndex(spec, "/"); idx >= 0 {
			last = spec[idx+1:]
		}
		if last == "" {
			continue
		}
		for _, m := range nodes {
			if m.ID == n.ID {
				continue
			}
			stem := strings.TrimSuffix(m.Name, path.Ext(m.Name))
			if stem == last {
				out = append(out, m.ID)
			}
		}
	}
	return out
}

// fewestDependencies returns every node tied for the minimum declared
// dependency count.
func fewestDependencies(nodes []*WorkflowNode) []*WorkflowNode {
	min := -1
	for _, n := range nodes {
		if min < 0 || len(n.Dependencies) < min {
			min = len(n.Dependencies)
		}
	}
	var out []*WorkflowNode
	for _, n := range nodes {
		if len(n.Dependencies) == min {
			out = append(out, n)
		}
	}
	return out
}

// placeRows sorts each level by (type priority, importance, name) and
// distributes its nodes evenly across the canvas width, centered.
func (l *LayoutEngine) placeRows(levels [][]*WorkflowNode) {
	rowGap := l.cfg.CanvasHeight - 2*layoutMargin
	if len(levels) > 1 {
		rowGap /= float64(len(levels) - 1)
	}

	for li, level := range levels {
		sort.SliceStable(level, func(i, j int) bool {
			a, b := level[i], level[j]
			if typePriority[a.Type] != typePriority[b.Type] {
				return typePriority[a.Type] < typePriority[b.Type]
			}
			if importanceRank[a.Importance] != importanceRank[b.Importance] {
				return importanceRank[a.Importance] > importanceRank[b.Importance]
			}
			return a.Name < b.Name
		})

		y := layoutMargin + rowGap*float64(li)
		span := l.cfg.CanvasWidth / float64(len(level)+1)
		for i, n := range level {
			n.Position = Position{X: span * float64(i+1), Y: y}
		}
	}
}

// resolveOverlaps iterates over node pairs, pushing any two nodes closer
// than the minimum separation apart along their connecting vector, then
// clamping back inside the canvas. Stops early once a full pass makes no
// adjustment.
func (l *LayoutEngine) resolveOverlaps(nodes []*WorkflowNode) {
	minSep := l.cfg.MinSeparation
	for pass := 0; pass < l.cfg.RelaxPasses; pass++ {
		moved := false
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				a, b := nodes[i], nodes[j]
				dx := b.Position.X - a.Position.X
				dy := b.Position.Y - a.Position.Y
				dist := math.Hypot(dx, dy)
				if dist >= minSep {
					continue
				}
				moved = true

				if dist == 0 {
					// Coincident centers: separate horizontally.
					a.Position.X -= minSep / 2
					b.Position.X += minSep / 2
					continue
				}
				push := (minSep - dist) / 2
				ux, uy := dx/dist, dy/dist
				a.Position.X -= ux * push
				a.Position.Y -= uy * push
				b.Position.X += ux * push
				b.Position.Y += uy * push
			}
		}

		for _, n := range nodes {
			n.Position.X = clamp(n.Position.X, layoutMargin, l.cfg.CanvasWidth-layoutMargin)
			n.Position.Y = clamp(n.Position.Y, layoutMargin, l.cfg.CanvasHeight-layoutMargin)
		}

		if !moved {
			return
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
