package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"simplebench/internal/baseline"
	"simplebench/internal/config"
	"simplebench/internal/registry"
)

var listJSON bool

type listEntry struct {
	Name        string `json:"name"`
	Group       string `json:"group"`
	HasBaseline bool   `json:"has_baseline"`
	StoredRuns  int    `json:"stored_runs"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered benchmarks and their stored baselines",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Emit the listing as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := config.Resolve()
	store := baseline.NewStore(cfg.StoreRoot, baseline.MachineID())

	var entries []listEntry
	for _, b := range registry.List() {
		stamps, err := store.ListRuns(b.Key())
		if err != nil {
			return err
		}
		entries = append(entries, listEntry{
			Name:        b.Name,
			Group:       b.Group,
			HasBaseline: store.HasBaseline(b.Key()),
			StoredRuns:  len(stamps),
		})
	}

	if listJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGROUP\tBASELINE\tRUNS")
	for _, e := range entries {
		baselineCol := "none"
		if e.HasBaseline {
			baselineCol = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", e.Name, e.Group, baselineCol, e.StoredRuns)
	}
	return w.Flush()
}
