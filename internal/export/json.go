// Package export serializes analysis results for consumers outside the
// engine: a JSON envelope for rendering layers and Mermaid diagram source
// for documentation.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/repoatlas/repoatlas/internal/workflow"
)

// WorkflowExport is the top-level JSON export envelope. The workflow
// itself is a plain value, so the envelope crosses process and network
// boundaries unchanged.
type WorkflowExport struct {
	RunID       string                       `json:"runId"`
	GeneratedAt string                       `json:"generatedAt"`
	Mode        string                       `json:"mode"`
	Workflow    *workflow.RepositoryWorkflow `json:"workflow"`
}

// NewWorkflowExport wraps a workflow in an export envelope with a fresh
// run id.
func NewWorkflowExport(wf *workflow.RepositoryWorkflow, mode workflow.Mode) *WorkflowExport {
	return &WorkflowExport{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Mode:        string(mode),
		Workflow:    wf,
	}
}

// WriteJSON writes the envelope to path atomically (temp file + rename).
func WriteJSON(path string, export *WorkflowExport) error {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal workflow export: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".workflow-*.json")
	if err != nil {
		return fmt.Errorf("create temp export file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write workflow export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close workflow export: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename workflow export: %w", err)
	}
	return nil
}
