package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an expectation does not match.
type AssertionError struct {
	Field    string
	Expected int
	Actual   int
	// Lines is the rendered plan, for context.
	Lines []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "expectation failed: %s\n", e.Field)
	fmt.Fprintf(&buf, "  Expected: %d\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %d\n", e.Actual)
	if len(e.Lines) > 0 {
		buf.WriteString("\nPlan:\n")
		for _, l := range e.Lines {
			fmt.Fprintf(&buf, "  %s\n", l)
		}
	}
	return buf.String()
}

func checkExpectations(r *Result, exp Expectation) {
	lines := r.Plan.Lines()
	check := func(field string, want *int, got int) {
		if want == nil || *want == got {
			return
		}
		r.addError(&AssertionError{Field: field, Expected: *want, Actual: got, Lines: lines})
	}

	check("sidecars", exp.Sidecars, len(r.Plan.Sidecars))
	check("orphans", exp.Orphans, len(r.Plan.Orphans))
	check("health", exp.Health, len(r.Plan.Health))
	check("groups", exp.Groups, len(r.Plan.Groups))
	check("deletions", exp.Deletions, len(r.Plan.Deletions()))

	if exp.Failures != nil {
		failures := 0
		if r.Report != nil {
			failures = len(r.Report.Failures())
		}
		check("failures", exp.Failures, failures)
	}
}
