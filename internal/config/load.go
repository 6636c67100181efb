package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is stripped from environment variable names.
	EnvPrefix = "FITSWEEP_"
	// PathEnvVar names a config file when --config is not given.
	PathEnvVar = "FITSWEEP_CONFIG"
)

// ErrLoad wraps every failure to read or parse a configuration source.
var ErrLoad = errors.New("load configuration")

// LoadOptions selects the optional layers.
type LoadOptions struct {
	// File is an explicit config path. Empty means PathEnvVar, then none.
	File string
	// Overrides are koanf paths set from explicit flags, applied last.
	Overrides map[string]any
}

// Load builds a validated Config from defaults, file, environment and
// overrides.
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("%w: defaults: %v", ErrLoad, err)
	}

	path := opts.File
	if path == "" {
		path = os.Getenv(PathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: file %s: %v", ErrLoad, path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("%w: environment: %v", ErrLoad, err)
	}

	for key, v := range opts.Overrides {
		if err := k.Set(key, v); err != nil {
			return nil, fmt.Errorf("%w: flag %s: %v", ErrLoad, key, err)
		}
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps FITSWEEP_CONVERT__OUTPUT_DIR to convert.output_dir.
// The config path variable itself is not a setting.
func envKey(name string) string {
	if name == PathEnvVar {
		return ""
	}
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}
