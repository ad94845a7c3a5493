package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/repoatlas/repoatlas/internal/config"
	"github.com/repoatlas/repoatlas/internal/export"
	"github.com/repoatlas/repoatlas/internal/summary"
	"github.com/repoatlas/repoatlas/internal/workflow"
)

func newAnalyzeCmd(root *rootFlags) *cobra.Command {
	var (
		mode        string
		outPath     string
		mermaidPath string
	)

	cmd := &cobra.Command{
		Use:   "analyze <summaries-path>",
		Short: "Analyze symbol summaries into a workflow graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.ConfigFile, cmd.Flags())
			if err != nil {
				return err
			}

			summaries, err := summary.Load(args[0])
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				return fmt.Errorf("no file summaries found in %s", args[0])
			}

			m := workflow.ModeEssential
			if mode == string(workflow.ModeDetailed) {
				m = workflow.ModeDetailed
			} else if mode != string(workflow.ModeEssential) {
				return fmt.Errorf("unknown mode %q (want essential or detailed)", mode)
			}

			engine := workflow.New(cfg, slog.Default())
			wf := engine.Analyze(cmd.Context(), summaries, m)

			printSummary(cmd, wf)

			if outPath != "" {
				if err := export.WriteJSON(outPath, export.NewWorkflowExport(wf, m)); err != nil {
					return err
				}
				cmd.Printf("workflow written to %s\n", outPath)
			}
			if mermaidPath != "" {
				if err := os.WriteFile(mermaidPath, []byte(export.GenerateMermaid(wf)), 0o644); err != nil {
					return fmt.Errorf("write mermaid diagram: %w", err)
				}
				cmd.Printf("diagram written to %s\n", mermaidPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(workflow.ModeEssential), "graph fidelity: essential or detailed")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the workflow JSON export to this path")
	cmd.Flags().StringVar(&mermaidPath, "mermaid", "", "write Mermaid diagram source to this path")

	// Engine tuning overrides; keys mirror repoatlas.yaml.
	cmd.Flags().Int("workers", 0, "classification worker count (0 = one per CPU)")
	cmd.Flags().Duration("edge-budget", 0, "deadline for detailed edge construction")
	cmd.Flags().Float64("canvas-width", 0, "layout canvas width")
	cmd.Flags().Float64("canvas-height", 0, "layout canvas height")

	return cmd
}

// printSummary renders node/edge counts and metrics as a table.
func printSummary(cmd *cobra.Command, wf *workflow.RepositoryWorkflow) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Nodes", len(wf.Nodes)},
		{"Edges", len(wf.Edges)},
		{"Entry points", len(wf.EntryPoints)},
		{"Clusters", len(wf.Clusters)},
		{"Critical paths", len(wf.CriticalPaths)},
		{"Total functions", wf.Metrics.TotalFunctions},
		{"Total classes", wf.Metrics.TotalClasses},
		{"Avg complexity", fmt.Sprintf("%.2f", wf.Metrics.AvgComplexity)},
		{"Dependency depth", wf.Metrics.DependencyDepth},
		{"Coupling", fmt.Sprintf("%.2f", wf.Metrics.CouplingMetric)},
	})
	t.Render()
}
