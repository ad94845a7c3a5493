package workflow

import (
	"log/slog"
	"testing"

	"github.com/repoatlas/repoatlas/internal/config"
)

func buildDetailed(t *testing.T, nodes []*WorkflowNode) []WorkflowEdge {
	t.Helper()
	cfg := config.Default()
	resolver := NewResolver(nodes, cfg.AliasPrefixes, slog.Default())
	return NewDetailedBuilder(cfg, slog.Default()).Build(nodes, resolver)
}

func TestDetailedAllImports(t *testing.T) {
	a := testNode("src/a.ts", NodeUtility, ImportanceLow, 1)
	a.Dependencies = []string{"./b", "./c", "react"}
	b := testNode("src/b.ts", NodeUtility, ImportanceLow, 1)
	c := testNode("src/c.ts", NodeUtility, ImportanceLow, 1)

	edges := buildDetailed(t, []*WorkflowNode{a, b, c})

	if !hasEdge(edges, "src/a.ts", "src/b.ts", EdgeImport) {
		t.Error("missing a->b import")
	}
	if !hasEdge(edges, "src/a.ts", "src/c.ts", EdgeImport) {
		t.Error("missing a->c import")
	}
}

func TestDetailedInheritance(t *testing.T) {
	base := testNode("src/models/BaseModel.ts", NodeComponent, ImportanceLow, 2)
	child := testNode("src/models/UserModel.ts", NodeComponent, ImportanceLow, 3)
	child.supertypes = []string{"BaseModel", "Serializable"}

	edges := buildDetailed(t, []*WorkflowNode{base, child})

	if !hasEdge(edges, "src/models/UserModel.ts", "src/models/BaseModel.ts", EdgeInheritance) {
		t.Error("missing inheritance edge to the supertype's file")
	}
}

func TestDetailedDirectoryHierarchy(t *testing.T) {
	nodes := []*WorkflowNode{
		testNode("src/index.ts", NodeEntry, ImportanceHigh, 1),
		testNode("src/other.ts", NodeUtility, ImportanceLow, 1),
		testNode("src/components/Button.tsx", NodeComponent, ImportanceLow, 2),
		testNode("src/components/Card.tsx", NodeComponent, ImportanceLow, 2),
	}

	edges := buildDetailed(t, nodes)

	// The parent directory's index file contains the child directory files.
	if !hasEdge(edges, "src/index.ts", "src/components/Button.tsx", EdgeComposition) {
		t.Error("missing contains edge from parent representative")
	}
	// The index file organizes its own siblings.
	if !hasEdge(edges, "src/index.ts", "src/other.ts", EdgeComposition) {
		t.Error("missing organizes edge to sibling")
	}
}

func TestDetailedManifestGovernsEverything(t *testing.T) {
	nodes := []*WorkflowNode{
		testNode("package.json", NodeConfig, ImportanceLow, 0),
		testNode("src/a.ts", NodeUtility, ImportanceLow, 1),
		testNode("src/b.ts", NodeUtility, ImportanceLow, 1),
	}

	edges := buildDetailed(t, nodes)

	for _, target := range []string{"src/a.ts", "src/b.ts"} {
		if !hasEdge(edges, "package.json", target, EdgeConfiguration) {
			t.Errorf("manifest does not govern %s", target)
		}
	}
}

func TestDetailedTsconfigGovernsTypescriptOnly(t *testing.T) {
	nodes := []*WorkflowNode{
		testNode("tsconfig.json", NodeConfig, ImportanceLow, 0),
		testNode("src/a.ts", NodeUtility, ImportanceLow, 1),
		testNode("src/b.py", NodeUtility, ImportanceLow, 1),
	}

	edges := buildDetailed(t, nodes)

	if !hasEdge(edges, "tsconfig.json", "src/a.ts", EdgeConfiguration) {
		t.Error("tsconfig does not govern the .ts file")
	}
	if hasEdge(edges, "tsconfig.json", "src/b.py", EdgeConfiguration) {
		t.Error("tsconfig governs a non-TypeScript file")
	}
}

func TestDetailedCallChains(t *testing.T) {
	nodes := []*WorkflowNode{
		testNode("src/index.ts", NodeEntry, ImportanceHigh, 1),
		testNode("src/components/Button.tsx", NodeComponent, ImportanceLow, 2),
		testNode("src/services/api.ts", NodeService, ImportanceLow, 3),
		testNode("src/utils/format.ts", NodeUtility, ImportanceLow, 1),
	}

	edges := buildDetailed(t, nodes)

	if !hasEdge(edges, "src/index.ts", "src/components/Button.tsx", EdgeCall) {
		t.Error("missing entry->component call")
	}
	if !hasEdge(edges, "src/components/Button.tsx", "src/services/api.ts", EdgeCall) {
		t.Error("missing component->service call")
	}
	if !hasEdge(edges, "src/services/api.ts", "src/utils/format.ts", EdgeCall) {
		t.Error("missing service->utility call")
	}
}

func TestDetailedSimilarity(t *testing.T) {
	nodes := []*WorkflowNode{
		testNode("src/user.ts", NodeUtility, ImportanceLow, 1),
		testNode("src/userProfile.ts", NodeUtility, ImportanceLow, 1),
		testNode("src/cart.ts", NodeUtility, ImportanceLow, 1),
	}

	edges := buildDetailed(t, nodes)

	if !hasEdge(edges, "src/user.ts", "src/userProfile.ts", EdgeDataFlow) {
		t.Error("missing similarity edge between user and userProfile")
	}
	for _, e := range edges {
		if e.Label == "similar" && (e.Target == "src/cart.ts" || e.Source == "src/cart.ts") {
			t.Errorf("unrelated stems linked as similar: %s", e.ID)
		}
	}
}

// Short stems never produce similarity edges; too many false positives.
func TestDetailedSimilarityMinStemLength(t *testing.T) {
	nodes := []*WorkflowNode{
		testNode("lib/db.ts", NodeUtility, ImportanceLow, 1),
		testNode("lib/dbx.ts", NodeUtility, ImportanceLow, 1),
	}

	cfg := config.Default()
	set := newEdgeSet(nodes, slog.Default())
	NewDetailedBuilder(cfg, slog.Default()).buildSimilarity(nodes, set)

	if set.len() != 0 {
		t.Fatalf("similarity edges = %d, want 0 for short stems", set.len())
	}
}

// Every disconnected component gets exactly one bridge edge to the hub.
func TestRepairConnectivityOneBridgePerComponent(t *testing.T) {
	nodes := []*WorkflowNode{
		testNode("src/index.ts", NodeEntry, ImportanceHigh, 1),
		testNode("src/App.tsx", NodeComponent, ImportanceMedium, 3),
		testNode("island/x.ts", NodeUtility, ImportanceLow, 1),
		testNode("island/y.ts", NodeUtility, ImportanceMedium, 7),
	}

	set := newEdgeSet(nodes, slog.Default())
	set.add("src/index.ts", "src/App.tsx", EdgeCall, 2, "uses")
	set.add("island/x.ts", "island/y.ts", EdgeImport, 1, "imports")

	repairConnectivity(nodes, set)

	var bridges []WorkflowEdge
	for _, e := range set.edges {
		if e.Label == "bridge" {
			bridges = append(bridges, e)
		}
	}
	if len(bridges) != 1 {
		t.Fatalf("bridge edges = %d, want exactly 1", len(bridges))
	}
	// The hub is the dominant component's entry point; the target is the
	// island's top-ranked member.
	if bridges[0].Source != "src/index.ts" {
		t.Errorf("bridge source = %s, want the entry hub", bridges[0].Source)
	}
	if bridges[0].Target != "island/y.ts" {
		t.Errorf("bridge target = %s, want the island's top-ranked node", bridges[0].Target)
	}

	if got := componentCount(nodes, set.edges); got != 1 {
		t.Fatalf("graph has %d components after repair, want 1", got)
	}
}

func TestDetailedAlwaysConnected(t *testing.T) {
	nodes := []*WorkflowNode{
		testNode("src/index.ts", NodeEntry, ImportanceHigh, 1),
		testNode("src/components/Button.tsx", NodeComponent, ImportanceLow, 2),
		testNode("docs/gen.py", NodeUtility, ImportanceLow, 1),
	}

	edges := buildDetailed(t, nodes)

	if got := componentCount(nodes, edges); got != 1 {
		t.Fatalf("graph has %d components, want 1", got)
	}
}
