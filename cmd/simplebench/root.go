package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"simplebench/internal/config"
	"simplebench/internal/telemetry"
)

var exit = os.Exit
var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "simplebench",
	Short: "Measure microbenchmarks and detect performance regressions",
	Long: `simplebench times repeated executions of registered benchmark workloads,
computes statistics over the samples, stores historical results per machine,
and decides whether a new result is a genuine performance regression using
statistical-window analysis combined with online change-point detection.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.simplebench.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().Int("samples", config.DefaultSamples, "Timed samples per benchmark")
	rootCmd.PersistentFlags().Duration("warmup", config.DefaultWarmup, "Warmup time budget per benchmark")
	rootCmd.PersistentFlags().Float64("threshold", config.DefaultThresholdPercent, "Regression threshold in percent")
	rootCmd.PersistentFlags().Int("window", config.DefaultWindow, "Baseline comparison window size")
	rootCmd.PersistentFlags().String("store", config.DefaultStoreRoot, "Baseline store root directory")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress progress output")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("samples", rootCmd.PersistentFlags().Lookup("samples"))
	viper.BindPFlag("warmup", rootCmd.PersistentFlags().Lookup("warmup"))
	viper.BindPFlag("threshold", rootCmd.PersistentFlags().Lookup("threshold"))
	viper.BindPFlag("window", rootCmd.PersistentFlags().Lookup("window"))
	viper.BindPFlag("store_root", rootCmd.PersistentFlags().Lookup("store"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.Load(cfgFile)
	telemetry.InitLogger(viper.GetBool("verbose"), viper.GetString("log_file"))
}
