package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"simplebench/internal/baseline"
	"simplebench/internal/config"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete this machine's stored baselines",
	Long: `Removes every stored run for the current machine from the baseline store.
Records belonging to other machines in the same store root are untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Resolve()
		machineID := baseline.MachineID()
		store := baseline.NewStore(cfg.StoreRoot, machineID)

		if err := store.Clean(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed stored baselines for machine %s\n", machineID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
