package workflow

import (
	"fmt"
	"strings"

	"github.com/repoatlas/repoatlas/internal/config"
	"github.com/repoatlas/repoatlas/internal/summary"
)

// entryStems are base names (extension stripped) treated as program entry
// points regardless of directory.
var entryStems = map[string]bool{
	"index": true,
	"main":  true,
	"app":   true,
}

// manifestExts are manifest-format extensions that classify as config.
var manifestExts = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
	".toml": true,
}

// Role labels. Fixed constants so two runs are byte-identical.
const (
	RoleConsumer       = "Consumer"
	RoleProvider       = "Provider"
	RoleObjectOriented = "Object-Oriented Module"
	RoleFunctional     = "Functional Module"
	RoleMixed          = "Mixed Module"
)

// Classifier turns file summaries into workflow nodes. Thresholds come
// from the engine config; the zero canvas position is filled in later by
// the layout engine.
type Classifier struct {
	cfg config.Engine
}

// NewClassifier returns a Classifier using the given thresholds.
func NewClassifier(cfg config.Engine) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify builds the WorkflowNode for one file summary. A summary with
// no path is the only rejection; everything else degrades to the lowest
// classification tier.
func (c *Classifier) Classify(s summary.FileSummary) (WorkflowNode, error) {
	if s.Path == "" {
		return WorkflowNode{}, fmt.Errorf("classify: summary has no path")
	}

	meta := s.Meta()
	deps := make([]string, 0, len(s.Imports))
	for _, imp := range s.Imports {
		if imp.Source != "" {
			deps = append(deps, imp.Source)
		}
	}

	var supers []string
	for _, cl := range s.Classes {
		if cl.Extends != "" {
			supers = append(supers, cl.Extends)
		}
		supers = append(supers, cl.Implements...)
	}

	return WorkflowNode{
		ID:           s.Path,
		Name:         meta.Name,
		Type:         classifyType(meta),
		Role:         inferRole(s),
		Dependencies: deps,
		Complexity:   totalComplexity(s),
		Importance:   c.importance(s, meta),
		supertypes:   supers,
	}, nil
}

// classifyType applies the ordered name/path predicates; first match wins.
func classifyType(meta summary.FileMeta) NodeType {
	lowerStem := strings.ToLower(meta.Stem)
	lowerName := strings.ToLower(meta.Name)

	switch {
	case entryStems[lowerStem]:
		return NodeEntry
	case strings.Contains(lowerName, "config"),
		strings.Contains(lowerName, "setup"),
		manifestExts[meta.Ext]:
		return NodeConfig
	case strings.Contains(lowerName, "test"), strings.Contains(lowerName, "spec"):
		return NodeTest
	case meta.Ext == ".d.ts", lowerStem == "types", lowerStem == "interfaces",
		strings.HasSuffix(lowerStem, ".types"):
		return NodeTypeDecl
	case strings.Contains(lowerName, "util"),
		strings.Contains(lowerName, "helper"),
		strings.Contains(lowerName, "common"):
		return NodeUtility
	case strings.Contains(lowerName, "service"),
		strings.Contains(lowerName, "api"),
		strings.Contains(lowerName, "client"):
		return NodeService
	default:
		return NodeComponent
	}
}

// inferRole labels the file by its import/export balance, then by its
// function/class balance.
func inferRole(s summary.FileSummary) string {
	imports := len(s.Imports)
	exports := len(s.Exports)

	switch {
	case imports-exports > 2:
		return RoleConsumer
	case exports-imports > 2:
		return RoleProvider
	case len(s.Classes) > len(s.Functions):
		return RoleObjectOriented
	case len(s.Functions) > len(s.Classes):
		return RoleFunctional
	default:
		return RoleMixed
	}
}

// totalComplexity sums the cyclomatic complexity of every function and
// every class method.
func totalComplexity(s summary.FileSummary) int {
	total := 0
	for _, f := range s.Functions {
		total += f.Complexity
	}
	for _, cl := range s.Classes {
		for _, m := range cl.Methods {
			total += m.Complexity
		}
	}
	return total
}

// importance is a pure function of (type, exports, functions).
func (c *Classifier) importance(s summary.FileSummary, meta summary.FileMeta) Importance {
	exports := len(s.Exports)
	functions := len(s.Functions)

	switch {
	case entryStems[strings.ToLower(meta.Stem)],
		exports > c.cfg.ExportsHigh,
		functions > c.cfg.FunctionsHigh:
		return ImportanceHigh
	case exports > c.cfg.ExportsMedium, functions > c.cfg.FunctionsMedium:
		return ImportanceMedium
	default:
		return ImportanceLow
	}
}
