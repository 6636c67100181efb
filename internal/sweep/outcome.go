package sweep

import (
	"sort"
	"time"
)

// Action is what happened, or would happen, to one file.
type Action string

const (
	ActionDeleteSidecar   Action = "delete_sidecar"
	ActionQuarantine      Action = "quarantine"
	ActionMoveHealth      Action = "move_health"
	ActionKeep            Action = "keep"
	ActionDeleteDuplicate Action = "delete_duplicate"
	ActionConvert         Action = "convert"
	ActionSkip            Action = "skip"
	ActionScan            Action = "scan"
)

// Outcome is the per-file result of a run.
type Outcome struct {
	Path   string
	Action Action
	// Target is the destination of a move or conversion.
	Target string
	Err    error
	Kind   ErrorKind
	// Detail is free text for reports, such as the provenance label.
	Detail string
}

// Failed reports whether the action did not complete.
func (o Outcome) Failed() bool { return o.Err != nil }

// Counters aggregates outcomes. Failures are counted by kind, successes by
// action.
type Counters struct {
	Actions  map[Action]int
	Failures map[ErrorKind]int
}

// NewCounters returns empty counters.
func NewCounters() Counters {
	return Counters{Actions: map[Action]int{}, Failures: map[ErrorKind]int{}}
}

// Add counts o.
func (c *Counters) Add(o Outcome) {
	if c.Actions == nil || c.Failures == nil {
		*c = NewCounters()
	}
	if o.Failed() {
		c.Failures[o.Kind]++
		return
	}
	c.Actions[o.Action]++
}

// FailureTotal returns the number of failed outcomes.
func (c Counters) FailureTotal() int {
	n := 0
	for _, v := range c.Failures {
		n += v
	}
	return n
}

// Report is the result of one run.
type Report struct {
	RunID    string
	Command  string
	Dir      string
	DryRun   bool
	Started  time.Time
	Finished time.Time
	Outcomes []Outcome
	Counters Counters
}

// NewReport returns an empty report for a run.
func NewReport(runID, command, dir string, dryRun bool, started time.Time) *Report {
	return &Report{
		RunID:    runID,
		Command:  command,
		Dir:      dir,
		DryRun:   dryRun,
		Started:  started,
		Counters: NewCounters(),
	}
}

// Record appends o, filling in its kind, and counts it.
func (r *Report) Record(o Outcome) {
	if o.Err != nil && o.Kind == KindNone {
		o.Kind = Classify(o.Err)
	}
	r.Outcomes = append(r.Outcomes, o)
	r.Counters.Add(o)
}

// Failures returns the failed outcomes.
func (r *Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Failed() {
			out = append(out, o)
		}
	}
	return out
}

// SortedActions returns the actions with a non-zero count, sorted.
func (c Counters) SortedActions() []Action {
	out := make([]Action, 0, len(c.Actions))
	for a, n := range c.Actions {
		if n > 0 {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SortedKinds returns the failure kinds with a non-zero count, sorted.
func (c Counters) SortedKinds() []ErrorKind {
	out := make([]ErrorKind, 0, len(c.Failures))
	for k, n := range c.Failures {
		if n > 0 {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
