// Package mcptools exposes the workflow graph engine as MCP tools so
// agent clients can build and query repository workflows.
package mcptools

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/repoatlas/repoatlas/internal/config"
	"github.com/repoatlas/repoatlas/internal/summary"
	"github.com/repoatlas/repoatlas/internal/workflow"
)

// --- MCP tool input/output types ---
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// BuildWorkflowInput is the input for the build_workflow MCP tool.
type BuildWorkflowInput struct {
	SummariesPath string `json:"summariesPath" jsonschema:"path to a symbol-summary file or directory produced by an extractor"`
	Mode          string `json:"mode,omitempty" jsonschema:"graph fidelity: essential (default) or detailed"`
}

// BuildWorkflowOutput is the result of the build_workflow MCP tool.
type BuildWorkflowOutput struct {
	NodeCount int              `json:"nodeCount"`
	EdgeCount int              `json:"edgeCount"`
	Metrics   workflow.Metrics `json:"metrics"`
}

// GetMetricsInput is the input for the get_metrics MCP tool.
type GetMetricsInput struct{}

// GetMetricsOutput is the result of the get_metrics MCP tool.
type GetMetricsOutput struct {
	Metrics workflow.Metrics `json:"metrics"`
}

// GetClustersInput is the input for the get_clusters MCP tool.
type GetClustersInput struct{}

// GetClustersOutput is the result of the get_clusters MCP tool.
type GetClustersOutput struct {
	Clusters []workflow.Cluster `json:"clusters"`
}

// GetCriticalPathsInput is the input for the get_critical_paths MCP tool.
type GetCriticalPathsInput struct{}

// GetCriticalPathsOutput is the result of the get_critical_paths MCP tool.
type GetCriticalPathsOutput struct {
	EntryPoints   []string                `json:"entryPoints"`
	CriticalPaths []workflow.CriticalPath `json:"criticalPaths"`
}

// WorkflowService handles MCP tool calls. It holds the most recently
// built workflow so query tools can answer without rebuilding.
type WorkflowService struct {
	cfg config.Engine
	log *slog.Logger

	mu   sync.Mutex
	last *workflow.RepositoryWorkflow
}

// NewWorkflowService creates a WorkflowService with the given engine
// configuration.
func NewWorkflowService(cfg config.Engine, log *slog.Logger) *WorkflowService {
	if log == nil {
		log = slog.Default()
	}
	return &WorkflowService{cfg: cfg, log: log}
}

// BuildWorkflow loads summaries, runs the engine, and caches the result.
func (s *WorkflowService) BuildWorkflow(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BuildWorkflowInput,
) (*mcp.CallToolResult, BuildWorkflowOutput, error) {
	summaries, err := summary.Load(input.SummariesPath)
	if err != nil {
		return nil, BuildWorkflowOutput{}, fmt.Errorf("load summaries: %w", err)
	}

	mode := workflow.ModeEssential
	if input.Mode == string(workflow.ModeDetailed) {
		mode = workflow.ModeDetailed
	}

	wf := workflow.New(s.cfg, s.log).Analyze(ctx, summaries, mode)

	s.mu.Lock()
	s.last = wf
	s.mu.Unlock()

	return nil, BuildWorkflowOutput{
		NodeCount: len(wf.Nodes),
		EdgeCount: len(wf.Edges),
		Metrics:   wf.Metrics,
	}, nil
}

// GetMetrics returns the metrics of the last built workflow.
func (s *WorkflowService) GetMetrics(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ GetMetricsInput,
) (*mcp.CallToolResult, GetMetricsOutput, error) {
	wf, err := s.current()
	if err != nil {
		return nil, GetMetricsOutput{}, err
	}
	return nil, GetMetricsOutput{Metrics: wf.Metrics}, nil
}

// GetClusters returns the clusters of the last built workflow.
func (s *WorkflowService) GetClusters(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ GetClustersInput,
) (*mcp.CallToolResult, GetClustersOutput, error) {
	wf, err := s.current()
	if err != nil {
		return nil, GetClustersOutput{}, err
	}
	return nil, GetClustersOutput{Clusters: wf.Clusters}, nil
}

// GetCriticalPaths returns the entry points and critical paths of the
// last built workflow.
func (s *WorkflowService) GetCriticalPaths(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ GetCriticalPathsInput,
) (*mcp.CallToolResult, GetCriticalPathsOutput, error) {
	wf, err := s.current()
	if err != nil {
		return nil, GetCriticalPathsOutput{}, err
	}
	return nil, GetCriticalPathsOutput{
		EntryPoints:   wf.EntryPoints,
		CriticalPaths: wf.CriticalPaths,
	}, nil
}

func (s *WorkflowService) current() (*workflow.RepositoryWorkflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil, fmt.Errorf("no workflow built yet; call build_workflow first")
	}
	return s.last, nil
}
