package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewWorkflowMCPServer creates an MCP server with the workflow tools
// registered.
func NewWorkflowMCPServer(svc *WorkflowService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "repoatlas-workflow",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_workflow",
		Description: "Build the repository workflow graph from extractor symbol summaries. Classifies files into semantic roles, resolves imports into dependency edges, and computes clusters, critical paths, metrics, and a 2-D layout.",
	}, svc.BuildWorkflow)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_metrics",
		Description: "Return the aggregate metrics (files, functions, classes, average complexity, dependency depth, coupling) of the last built workflow.",
	}, svc.GetMetrics)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_clusters",
		Description: "Return the directory-based node clusters of the last built workflow, each with an inferred dominant purpose.",
	}, svc.GetClusters)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_critical_paths",
		Description: "Return the entry points and the shortest entry-to-hotspot paths of the last built workflow.",
	}, svc.GetCriticalPaths)

	return server
}

// RunMCPServer starts an HTTP server exposing the workflow MCP tools.
func RunMCPServer(ctx context.Context, svc *WorkflowService, addr string) error {
	server := NewWorkflowMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
