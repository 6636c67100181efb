package store

import (
	"time"

	"github.com/roach88/fitsweep/internal/sweep"
)

// Run is one row of the runs table. FinishedAt is zero while the run is
// in progress.
type Run struct {
	ID         string
	Command    string
	Dir        string
	DryRun     bool
	Tolerance  time.Duration
	StartedAt  time.Time
	FinishedAt time.Time
	Counters   sweep.Counters
}

// Finished reports whether FinishRun has been recorded for the run.
func (r Run) Finished() bool { return !r.FinishedAt.IsZero() }

// Action is one file outcome of a run.
type Action struct {
	RunID     string
	Seq       int64
	Path      string
	Action    sweep.Action
	Target    string
	ErrorKind sweep.ErrorKind
	Error     string
}

// ActionFromOutcome converts the seq-th outcome of a run.
func ActionFromOutcome(runID string, seq int64, o sweep.Outcome) Action {
	a := Action{
		RunID:     runID,
		Seq:       seq,
		Path:      o.Path,
		Action:    o.Action,
		Target:    o.Target,
		ErrorKind: o.Kind,
	}
	if o.Err != nil {
		a.Error = o.Err.Error()
	}
	return a
}
