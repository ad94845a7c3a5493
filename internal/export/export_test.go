package export

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repoatlas/repoatlas/internal/config"
	"github.com/repoatlas/repoatlas/internal/summary"
	"github.com/repoatlas/repoatlas/internal/workflow"
)

func sampleWorkflow(t *testing.T) *workflow.RepositoryWorkflow {
	t.Helper()
	summaries := []summary.FileSummary{
		{Path: "src/index.ts", Imports: []summary.ImportInfo{{Source: "./App"}}},
		{Path: "src/App.tsx", Exports: []string{"App"}},
		{Path: "src/components/Button.tsx"},
		{Path: "src/components/Card.tsx"},
	}
	e := workflow.New(config.Default(), slog.Default())
	return e.Analyze(context.Background(), summaries, workflow.ModeEssential)
}

func TestNewWorkflowExport(t *testing.T) {
	wf := sampleWorkflow(t)
	exp := NewWorkflowExport(wf, workflow.ModeEssential)

	_, err := uuid.Parse(exp.RunID)
	require.NoError(t, err, "run id must be a valid uuid")
	assert.Equal(t, "essential", exp.Mode)
	assert.NotEmpty(t, exp.GeneratedAt)
	assert.Same(t, wf, exp.Workflow)
}

func TestWriteJSONRoundTrip(t *testing.T) {
	wf := sampleWorkflow(t)
	path := filepath.Join(t.TempDir(), "workflow.json")

	require.NoError(t, WriteJSON(path, NewWorkflowExport(wf, workflow.ModeDetailed)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got WorkflowExport
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "detailed", got.Mode)
	require.NotNil(t, got.Workflow)
	assert.Len(t, got.Workflow.Nodes, len(wf.Nodes))
	assert.Len(t, got.Workflow.Edges, len(wf.Edges))
}

func TestWriteJSONLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.json")

	require.NoError(t, WriteJSON(path, NewWorkflowExport(sampleWorkflow(t), workflow.ModeEssential)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "workflow.json", entries[0].Name())
}

func TestGenerateMermaid(t *testing.T) {
	wf := sampleWorkflow(t)
	src := GenerateMermaid(wf)

	assert.True(t, strings.HasPrefix(src, "graph TD\n"))
	// The components directory has two files, so it renders as a subgraph.
	assert.Contains(t, src, "subgraph")
	assert.Contains(t, src, "src/components")
	// At least one labeled edge.
	assert.Contains(t, src, "-->")

	// Every node id appears exactly once as a declaration.
	for _, n := range wf.Nodes {
		assert.Equal(t, 1, strings.Count(src, `["`+n.ID+`"]`), "node %s", n.ID)
	}
}

func TestGenerateMermaidDeterministic(t *testing.T) {
	wf := sampleWorkflow(t)
	assert.Equal(t, GenerateMermaid(wf), GenerateMermaid(wf))
}
