// Package config loads fitsweep settings from layered sources.
//
// Precedence, lowest to highest:
//  1. Built-in defaults
//  2. YAML file (--config or FITSWEEP_CONFIG)
//  3. Environment variables (FITSWEEP_ prefix, "__" separates levels)
//  4. Command-line flags the user set explicitly
//
// Examples:
//   - FITSWEEP_TOLERANCE_SECONDS=10 -> tolerance_seconds
//   - FITSWEEP_CONVERT__OUTPUT_DIR=/tmp/out -> convert.output_dir
package config

import (
	"time"

	"github.com/roach88/fitsweep/internal/convert"
	"github.com/roach88/fitsweep/internal/sweep"
)

// Config is the full set of options for every command.
type Config struct {
	// Dir is the export directory swept by clean.
	Dir string `koanf:"dir" validate:"required"`
	// ToleranceSeconds is capped at sweep.MaxTolerance.
	ToleranceSeconds float64 `koanf:"tolerance_seconds" validate:"gte=0,lte=86400"`
	// QuarantineDir and HealthDir are created inside Dir.
	QuarantineDir string `koanf:"quarantine_dir" validate:"required,excludesall=/\\"`
	HealthDir     string `koanf:"health_dir" validate:"required,excludesall=/\\"`

	Convert ConvertConfig `koanf:"convert"`

	Format      string `koanf:"format" validate:"oneof=text json"`
	Verbose     bool   `koanf:"verbose"`
	Ledger      string `koanf:"ledger"`
	MetricsFile string `koanf:"metrics_file"`
}

// ConvertConfig holds the convert command settings.
type ConvertConfig struct {
	InputDir  string         `koanf:"input_dir" validate:"required"`
	OutputDir string         `koanf:"output_dir" validate:"required"`
	Overwrite bool           `koanf:"overwrite"`
	Device    convert.Device `koanf:"device"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Dir:              ".",
		ToleranceSeconds: sweep.DefaultTolerance.Seconds(),
		QuarantineDir:    sweep.DefaultQuarantineDir,
		HealthDir:        sweep.DefaultHealthDir,
		Convert: ConvertConfig{
			InputDir:  ".",
			OutputDir: ".",
			Device:    convert.DefaultDevice,
		},
		Format: "text",
	}
}

// Tolerance returns the duplicate tolerance as a duration.
func (c *Config) Tolerance() time.Duration {
	return time.Duration(c.ToleranceSeconds * float64(time.Second))
}
