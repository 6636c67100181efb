package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/fitsweep/internal/sweep"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	out := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		out = append(out, s)
	}
	return out, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.ToleranceSeconds != nil && (*s.ToleranceSeconds < 0 || *s.ToleranceSeconds > sweep.MaxTolerance.Seconds()) {
		return fmt.Errorf("tolerance_seconds must be between 0 and %v", sweep.MaxTolerance.Seconds())
	}
	if len(s.Files) == 0 {
		return fmt.Errorf("files list is required and must be non-empty")
	}

	seen := make(map[string]bool, len(s.Files))
	for i, f := range s.Files {
		if err := validateFile(i, f); err != nil {
			return err
		}
		// Names collide on case-insensitive filesystems.
		key := strings.ToLower(f.Name)
		if seen[key] {
			return fmt.Errorf("files[%d]: duplicate name %q", i, f.Name)
		}
		seen[key] = true
	}
	return nil
}

func validateFile(index int, f FileSpec) error {
	if f.Name == "" {
		return fmt.Errorf("files[%d]: name is required", index)
	}
	if f.Name != filepath.Base(f.Name) || strings.ContainsAny(f.Name, `/\`) {
		return fmt.Errorf("files[%d]: name must not contain a path", index)
	}

	switch f.Kind {
	case KindActivity:
		if f.Start == "" {
			return fmt.Errorf("files[%d]: start is required for activity", index)
		}
		if _, err := time.Parse(time.RFC3339, f.Start); err != nil {
			return fmt.Errorf("files[%d]: start: %w", index, err)
		}
	case KindHealth, KindCorrupt, KindJSON:
		if f.Start != "" {
			return fmt.Errorf("files[%d]: start is only valid for activity", index)
		}
	case "":
		return fmt.Errorf("files[%d]: kind is required", index)
	default:
		return fmt.Errorf("files[%d]: unknown kind %q", index, f.Kind)
	}
	return nil
}

func (s *Scenario) tolerance() time.Duration {
	if s.ToleranceSeconds == nil {
		return sweep.DefaultTolerance
	}
	return time.Duration(*s.ToleranceSeconds * float64(time.Second))
}
