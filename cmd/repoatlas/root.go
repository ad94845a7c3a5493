package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// rootFlags are the persistent options shared by every subcommand.
type rootFlags struct {
	ConfigFile string
	Verbose    bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           "repoatlas",
		Short:         "Build workflow graphs from repository symbol summaries",
		Long:          "repoatlas turns per-file symbol summaries into a semantic workflow graph:\nclassified nodes, resolved dependency edges, clusters, critical paths,\nmetrics, and a deterministic 2-D layout.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if flags.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
	}

	root.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "path to repoatlas.yaml")
	root.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newAnalyzeCmd(&flags),
		newServeCmd(&flags),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the repoatlas version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version)
		},
	}
}
