package harness

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/roach88/fitsweep/internal/sweep"
	"github.com/roach88/fitsweep/internal/testutil"
)

// Fixed clock and run id keep reports deterministic.
var harnessEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const harnessRunID = "harness-run"

// Run materialises the scenario files in a fresh temporary directory,
// plans a sweep over it and applies the plan when the scenario asks.
// An error is returned only when the sweep itself cannot run; failed
// expectations are collected in Result.Errors.
func Run(t testing.TB, s *Scenario) (*Result, error) {
	t.Helper()

	dir := t.TempDir()
	materialize(t, dir, s.Files)

	planner := sweep.NewPlanner(sweep.Options{
		Dir:       dir,
		Tolerance: s.tolerance(),
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		RunIDs:    testutil.NewFixedRunID(harnessRunID),
		Now:       testutil.NewDeterministicClock(harnessEpoch, time.Second).Now,
	})

	ctx := context.Background()
	plan, err := planner.Plan(ctx)
	if err != nil {
		return nil, err
	}

	result := newResult(dir)
	result.Plan = plan

	if s.Apply {
		report, err := planner.Apply(ctx, plan)
		if err != nil {
			return nil, err
		}
		result.Report = report
	}

	checkExpectations(result, s.Expect)
	return result, nil
}

func materialize(t testing.TB, dir string, files []FileSpec) {
	t.Helper()

	for _, f := range files {
		var data []byte
		switch f.Kind {
		case KindActivity:
			start, err := time.Parse(time.RFC3339, f.Start)
			if err != nil {
				t.Fatalf("%s: %v", f.Name, err)
			}
			data = testutil.ActivityFIT(t, start)
		case KindHealth:
			data = testutil.HealthFIT(t)
		case KindCorrupt:
			data = testutil.CorruptFIT()
		case KindJSON:
			content := f.Content
			if content == "" {
				content = "{}"
			}
			data = []byte(content)
		default:
			t.Fatalf("%s: unknown kind %q", f.Name, f.Kind)
		}
		testutil.WriteFile(t, dir, f.Name, data)
	}
}
