package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/repoatlas/repoatlas/internal/config"
	"github.com/repoatlas/repoatlas/internal/mcptools"
)

func newServeCmd(root *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the workflow engine as MCP tools over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(root.ConfigFile, cmd.Flags())
			if err != nil {
				return err
			}

			svc := mcptools.NewWorkflowService(cfg, slog.Default())
			slog.Info("mcp server listening", "addr", addr)
			return mcptools.RunMCPServer(cmd.Context(), svc, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8921", "listen address")
	return cmd
}
