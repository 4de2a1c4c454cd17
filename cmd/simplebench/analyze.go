package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"simplebench/internal/baseline"
	"simplebench/internal/config"
	"simplebench/internal/cpu"
	"simplebench/internal/output"
	"simplebench/internal/registry"
	"simplebench/internal/stats"
)

var (
	analyzeRun  string
	analyzeLast int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <benchmark>",
	Short: "Inspect stored runs for a benchmark",
	Long: `Loads a stored run (the latest by default, or one selected with --run) and
prints its statistics, outlier analysis, and CPU conditions, followed by a
table of recent history.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeRun, "run", "", "Analyze the run with this timestamp instead of the latest")
	analyzeCmd.Flags().IntVar(&analyzeLast, "last", 10, "How many historical runs to tabulate")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := config.Resolve()
	store := baseline.NewStore(cfg.StoreRoot, baseline.MachineID())

	key, err := resolveKey(store, args[0])
	if err != nil {
		return err
	}

	var rec *baseline.RunRecord
	if analyzeRun != "" {
		rec, err = store.LoadRun(key, analyzeRun)
	} else {
		rec, err = store.LoadLatest(key)
	}
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no stored run found for %s", key)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, output.ResultLine(rec.BenchmarkName, rec.Statistics))
	fmt.Fprintf(out, "  recorded %s, %d warmup iteration(s)\n",
		rec.Timestamp.Format("2006-01-02 15:04:05 MST"), rec.Iterations)
	if rec.WasRegression {
		fmt.Fprintln(out, "  flagged as regression; excluded from baseline windows")
	}

	printOutliers(cmd, rec)
	printCPUConditions(cmd, rec)
	return printHistory(cmd, store, key)
}

// resolveKey maps a bare benchmark name to its store key, preferring the
// registry and falling back to scanning stored keys for binaries that no
// longer register the benchmark.
func resolveKey(store *baseline.Store, name string) (string, error) {
	if b, ok := registry.Lookup(name); ok {
		return b.Key(), nil
	}
	keys, err := store.ListBenchmarks()
	if err != nil {
		return "", err
	}
	for _, key := range keys {
		if key == name || strings.HasSuffix(key, "_"+name) {
			return key, nil
		}
	}
	return "", fmt.Errorf("unknown benchmark %q", name)
}

func printOutliers(cmd *cobra.Command, rec *baseline.RunRecord) {
	out := cmd.OutOrStdout()

	iqr := stats.IQROutliers(rec.Samples)
	if len(iqr.Indices) > 0 {
		fmt.Fprintf(out, "  %d IQR outlier(s) outside [%s, %s]\n",
			len(iqr.Indices), output.FormatNs(iqr.LowerFence), output.FormatNs(iqr.UpperFence))
	} else {
		fmt.Fprintln(out, "  no IQR outliers")
	}

	z := stats.ZScoreOutliers(rec.Samples, float64(rec.Statistics.Mean), rec.Statistics.StdDev)
	if len(z) > 0 {
		fmt.Fprintf(out, "  %d sample(s) beyond 3 standard deviations\n", len(z))
	}
}

func printCPUConditions(cmd *cobra.Command, rec *baseline.RunRecord) {
	if len(rec.CPUSamples) == 0 {
		return
	}
	out := cmd.OutOrStdout()

	analysis := cpu.Analyze(rec.CPUSamples, 0)
	if line := analysis.StatsLine(); line != "" {
		fmt.Fprintf(out, "  cpu: %s\n", line)
	}
	for _, w := range analysis.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", w)
	}
}

func printHistory(cmd *cobra.Command, store *baseline.Store, key string) error {
	stamps, err := store.ListRuns(key)
	if err != nil {
		return err
	}
	if len(stamps) == 0 {
		return nil
	}
	if len(stamps) > analyzeLast {
		stamps = stamps[len(stamps)-analyzeLast:]
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\nTIMESTAMP\tMEAN\tMEDIAN\tP99\tSAMPLES\tREGRESSION")
	for _, stamp := range stamps {
		rec, err := store.LoadRun(key, stamp)
		if err != nil || rec == nil {
			continue
		}
		flag := ""
		if rec.WasRegression {
			flag = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			stamp,
			output.FormatNs(rec.Statistics.Mean),
			output.FormatNs(rec.Statistics.Median),
			output.FormatNs(rec.Statistics.P99),
			rec.Statistics.SampleCount,
			flag)
	}
	return w.Flush()
}
