package harness

import (
	"github.com/roach88/fitsweep/internal/sweep"
)

// File kinds a scenario can materialise.
const (
	KindActivity = "activity"
	KindHealth   = "health"
	KindCorrupt  = "corrupt"
	KindJSON     = "json"
)

// Scenario is one import directory and what a sweep should make of it.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// ToleranceSeconds defaults to the sweep default when omitted.
	ToleranceSeconds *float64    `yaml:"tolerance_seconds,omitempty"`
	Apply            bool        `yaml:"apply,omitempty"`
	Files            []FileSpec  `yaml:"files"`
	Expect           Expectation `yaml:"expect,omitempty"`
}

// FileSpec describes one file in the directory.
type FileSpec struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	// Start is an RFC 3339 time, required for activities.
	Start string `yaml:"start,omitempty"`
	// Content is written verbatim for json files; empty means "{}".
	Content string `yaml:"content,omitempty"`
}

// Expectation holds plan counts. Nil fields are not checked.
type Expectation struct {
	Sidecars  *int `yaml:"sidecars,omitempty"`
	Orphans   *int `yaml:"orphans,omitempty"`
	Health    *int `yaml:"health,omitempty"`
	Groups    *int `yaml:"groups,omitempty"`
	Deletions *int `yaml:"deletions,omitempty"`
	// Failures counts failed outcomes in the apply report.
	Failures *int `yaml:"failures,omitempty"`
}

// Result is the outcome of running a scenario.
type Result struct {
	// Pass is true when every expectation matched.
	Pass bool

	// Dir is the temporary import directory.
	Dir  string
	Plan *sweep.Plan
	// Report is nil unless the scenario applies the plan.
	Report *sweep.Report

	// Errors holds failed expectations.
	Errors []error
}

func newResult(dir string) *Result {
	return &Result{Pass: true, Dir: dir}
}

func (r *Result) addError(err error) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
