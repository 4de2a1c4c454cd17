package main

import (
	"github.com/spf13/cobra"

	"simplebench/internal/config"
	"simplebench/internal/orchestrator"
)

// workerCmd is the child-process entry point the orchestrator spawns. It is
// hidden: users never invoke it directly.
var workerCmd = &cobra.Command{
	Use:    "worker",
	Short:  "Run a single benchmark as a pinned worker process",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Resolve()
		if err := config.Validate(cfg); err != nil {
			return err
		}
		return orchestrator.RunWorker(cfg.Samples, cfg.Warmup, cfg.Quiet)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
