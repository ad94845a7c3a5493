// Package workflow implements the workflow graph engine: it classifies
// per-file symbol summaries into semantic nodes, resolves imports into a
// dependency graph at two fidelity levels, computes aggregate analytics,
// and assigns a deterministic 2-D layout for rendering.
package workflow

import "fmt"

// --- Enums ---

// NodeType is the semantic role of a file in the repository.
type NodeType string

const (
	NodeEntry     NodeType = "entry"
	NodeComponent NodeType = "component"
	NodeService   NodeType = "service"
	NodeUtility   NodeType = "utility"
	NodeConfig    NodeType = "config"
	NodeTest      NodeType = "test"
	NodeTypeDecl  NodeType = "type"
)

// typePriority orders node types for layout rows and deterministic
// tie-breaking: entry < component < service < utility < config < test < type.
var typePriority = map[NodeType]int{
	NodeEntry:     0,
	NodeComponent: 1,
	NodeService:   2,
	NodeUtility:   3,
	NodeConfig:    4,
	NodeTest:      5,
	NodeTypeDecl:  6,
}

// Importance is the visual prominence tier of a node.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

// importanceRank maps tiers to a sortable rank, higher = more important.
var importanceRank = map[Importance]int{
	ImportanceLow:    0,
	ImportanceMedium: 1,
	ImportanceHigh:   2,
}

// EdgeType classifies a relationship between two nodes.
type EdgeType string

const (
	EdgeImport        EdgeType = "import"
	EdgeCall          EdgeType = "call"
	EdgeInheritance   EdgeType = "inheritance"
	EdgeComposition   EdgeType = "composition"
	EdgeDataFlow      EdgeType = "data-flow"
	EdgeConfiguration EdgeType = "configuration"
)

// --- Models ---

// Position is a 2-D canvas coordinate, owned by the layout engine.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WorkflowNode is one analyzed file. The ID is the repo-relative path,
// which is stable and unique within a run.
type WorkflowNode struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Type NodeType `json:"type"`

	// Role is a free-text semantic label derived from the summary.
	Role string `json:"role"`

	// Dependencies are the raw import specifiers, unresolved.
	Dependencies []string `json:"dependencies,omitempty"`

	// Dependents are ids of nodes that depend on this one, populated as
	// edges are discovered. Back-reference only.
	Dependents []string `json:"dependents,omitempty"`

	Complexity int        `json:"complexity"`
	Importance Importance `json:"importance"`
	Position   Position   `json:"position"`

	// supertypes are the base-class and interface names declared by this
	// file's classes. Build-time input for inheritance edges; not part of
	// the serialized contract.
	supertypes []string
}

// EdgeMetadata carries optional annotations on an edge.
type EdgeMetadata struct {
	Description string `json:"description,omitempty"`
}

// WorkflowEdge is a directed relationship between two nodes. IDs are
// deterministic composites so duplicates can be rejected at insertion.
type WorkflowEdge struct {
	ID       string        `json:"id"`
	Source   string        `json:"source"`
	Target   string        `json:"target"`
	Type     EdgeType      `json:"type"`
	Weight   float64       `json:"weight"`
	Label    string        `json:"label,omitempty"`
	Metadata *EdgeMetadata `json:"metadata,omitempty"`
}

// edgeID builds the deterministic composite id used for de-duplication.
func edgeID(source, target string, kind EdgeType) string {
	return fmt.Sprintf("%s->%s:%s", source, target, kind)
}

// Cluster is a directory-scoped grouping of nodes with an inferred
// dominant purpose. Recomputed every run; non-authoritative.
type Cluster struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	NodeIDs []string `json:"nodeIds"`
	Purpose string   `json:"purpose"`
}

// CriticalPath is a shortest path, in edge hops, from an entry point to a
// high-importance node.
type CriticalPath struct {
	Nodes  []string `json:"nodes"`
	Weight float64  `json:"weight"`
}

// Metrics are pure functions of the final node and edge sets.
type Metrics struct {
	TotalFiles      int     `json:"totalFiles"`
	TotalFunctions  int     `json:"totalFunctions"`
	TotalClasses    int     `json:"totalClasses"`
	AvgComplexity   float64 `json:"avgComplexity"`
	DependencyDepth int     `json:"dependencyDepth"`
	CouplingMetric  float64 `json:"couplingMetric"`
}

// RepositoryWorkflow is the complete analysis result: a plain,
// serializable value with no behavior or external references.
type RepositoryWorkflow struct {
	Nodes         []WorkflowNode `json:"nodes"`
	Edges         []WorkflowEdge `json:"edges"`
	EntryPoints   []string       `json:"entryPoints"`
	Clusters      []Cluster      `json:"clusters"`
	CriticalPaths []CriticalPath `json:"criticalPaths"`
	Metrics       Metrics        `json:"metrics"`
}
