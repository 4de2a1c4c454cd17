package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"simplebench/internal/baseline"
	"simplebench/internal/config"
	"simplebench/internal/cpu"
	"simplebench/internal/orchestrator"
	"simplebench/internal/output"
	"simplebench/internal/registry"
	"simplebench/internal/regression"
	"simplebench/internal/telemetry"
)

var (
	runBenchFilter string
	runSequential  bool
	runCI          bool
	runNoStore     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run registered benchmarks and compare against stored baselines",
	Long: `Runs every registered benchmark (or the subset selected with --bench) as
pinned worker processes, one batch per set of usable physical cores. Each
completed measurement is compared against the machine's stored baseline
history and persisted as a new record.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runBenchFilter, "bench", "", "Only run benchmarks whose name contains this substring")
	runCmd.Flags().BoolVar(&runSequential, "sequential", false, "Run one benchmark at a time on a single core")
	runCmd.Flags().BoolVar(&runCI, "ci", false, "Exit non-zero when any regression is detected")
	runCmd.Flags().BoolVar(&runNoStore, "no-store", false, "Measure only; skip baseline comparison and persistence")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.Resolve()
	if err := config.Validate(cfg); err != nil {
		return err
	}

	benchmarks := registry.Filter(runBenchFilter)
	if len(benchmarks) == 0 {
		if runBenchFilter != "" {
			return fmt.Errorf("no benchmarks match %q", runBenchFilter)
		}
		return fmt.Errorf("no benchmarks registered")
	}

	cores := []int{1}
	if !runSequential {
		cores = orchestrator.PhysicalCores()
	}

	if !cfg.Quiet {
		cpu.VerifyEnvironment(cores[0], slog.Default())
	}
	if cfg.MetricsPort > 0 {
		addr := fmt.Sprintf(":%d", cfg.MetricsPort)
		go func() {
			if err := telemetry.StartMetricsServer(addr); err != nil {
				slog.Warn("metrics server stopped", "error", err)
			}
		}()
	}

	var store *baseline.Store
	machineID := baseline.MachineID()
	if !runNoStore {
		store = baseline.NewStore(cfg.StoreRoot, machineID)
	}

	fmt.Fprintln(cmd.OutOrStdout(), output.RunHeader(machineID, len(benchmarks), cfg.Samples))

	o := orchestrator.New(store, cmd.OutOrStdout(), slog.Default())
	summary, err := o.Run(benchmarks, orchestrator.Options{
		Samples: cfg.Samples,
		Warmup:  cfg.Warmup,
		Cores:   cores,
		Detector: regression.Config{
			ThresholdPercent:     cfg.ThresholdPercent,
			Confidence:           cfg.Confidence,
			Window:               cfg.Window,
			ChangePointThreshold: cfg.ChangePointThreshold,
			HazardRate:           cfg.HazardRate,
		},
		Quiet: cfg.Quiet,
	})
	if err != nil {
		return err
	}

	if runCI && summary.Regressions > 0 {
		return fmt.Errorf("%d regression(s) detected", summary.Regressions)
	}
	return nil
}
