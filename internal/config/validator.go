package config

import (
	"fmt"
	"strings"
)

// Validate checks a resolved Config eagerly, before any benchmark runs, and
// returns one error naming every violation at once.
func Validate(cfg Config) error {
	var errors []string

	if cfg.Samples <= 0 {
		errors = append(errors, fmt.Sprintf("samples must be positive, got: %d", cfg.Samples))
	}
	if cfg.Samples > MaxSamples {
		errors = append(errors, fmt.Sprintf("samples must be at most %d, got: %d", MaxSamples, cfg.Samples))
	}
	if cfg.Warmup < 0 {
		errors = append(errors, fmt.Sprintf("warmup must not be negative, got: %v", cfg.Warmup))
	}
	if cfg.ThresholdPercent < 0 {
		errors = append(errors, fmt.Sprintf("threshold must not be negative, got: %g", cfg.ThresholdPercent))
	}
	if cfg.Window <= 0 {
		errors = append(errors, fmt.Sprintf("window must be positive, got: %d", cfg.Window))
	}
	if cfg.Confidence <= 0 || cfg.Confidence >= 1 {
		errors = append(errors, fmt.Sprintf("confidence must be in (0, 1), got: %g", cfg.Confidence))
	}
	if cfg.ChangePointThreshold < 0 || cfg.ChangePointThreshold > 1 {
		errors = append(errors, fmt.Sprintf("cp_threshold must be in [0, 1], got: %g", cfg.ChangePointThreshold))
	}
	if cfg.HazardRate <= 0 || cfg.HazardRate > 1 {
		errors = append(errors, fmt.Sprintf("hazard_rate must be in (0, 1], got: %g", cfg.HazardRate))
	}
	if cfg.StoreRoot == "" {
		errors = append(errors, "store_root must not be empty")
	}

	if len(errors) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}
