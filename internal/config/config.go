// Package config loads benchmark settings from a config file, a .env file,
// and SIMPLEBENCH_* environment variables, in rising precedence, and
// resolves them into one immutable Config value handed to the rest of the
// system.
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultSamples              = 200
	DefaultWarmup               = 3 * time.Second
	DefaultThresholdPercent     = 5.0
	DefaultWindow               = 10
	DefaultConfidence           = 0.95
	DefaultChangePointThreshold = 0.8
	DefaultHazardRate           = 0.1
	DefaultStoreRoot            = ".benches"

	// MaxSamples caps runaway sample counts before they allocate.
	MaxSamples = 1_000_000
)

// Config is the resolved configuration for one invocation.
type Config struct {
	Samples              int
	Warmup               time.Duration
	ThresholdPercent     float64
	Window               int
	Confidence           float64
	ChangePointThreshold float64
	HazardRate           float64
	StoreRoot            string
	MetricsPort          int
	Quiet                bool
}

// Load initializes viper from the optional config file, a .env file, and
// the environment. Call once, before Resolve.
func Load(cfgFile string) {
	// A missing .env is the normal case, not an error.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".simplebench")
	}

	viper.SetEnvPrefix("SIMPLEBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("samples", DefaultSamples)
	viper.SetDefault("warmup", DefaultWarmup)
	viper.SetDefault("threshold", DefaultThresholdPercent)
	viper.SetDefault("window", DefaultWindow)
	viper.SetDefault("confidence", DefaultConfidence)
	viper.SetDefault("cp_threshold", DefaultChangePointThreshold)
	viper.SetDefault("hazard_rate", DefaultHazardRate)
	viper.SetDefault("store_root", DefaultStoreRoot)
	viper.SetDefault("metrics_port", 0)
	viper.SetDefault("quiet", false)

	// The config file is optional.
	_ = viper.ReadInConfig()
}

// Resolve materializes the current viper state into a Config.
func Resolve() Config {
	return Config{
		Samples:              viper.GetInt("samples"),
		Warmup:               warmupDuration(),
		ThresholdPercent:     viper.GetFloat64("threshold"),
		Window:               viper.GetInt("window"),
		Confidence:           viper.GetFloat64("confidence"),
		ChangePointThreshold: viper.GetFloat64("cp_threshold"),
		HazardRate:           viper.GetFloat64("hazard_rate"),
		StoreRoot:            viper.GetString("store_root"),
		MetricsPort:          viper.GetInt("metrics_port"),
		Quiet:                viper.GetBool("quiet"),
	}
}

// warmupDuration accepts either a duration string ("3s") or a bare number
// of seconds. Raw values are parsed directly: viper's duration coercion
// reads a unit-less number as nanoseconds, which would silently skip
// warmup.
func warmupDuration() time.Duration {
	switch v := viper.Get("warmup").(type) {
	case time.Duration:
		return v
	case int:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		if secs, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return 0
}
