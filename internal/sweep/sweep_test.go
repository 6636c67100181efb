package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fitsweep/internal/fit"
	"github.com/roach88/fitsweep/internal/janitor"
	"github.com/roach88/fitsweep/internal/normalize"
	"github.com/roach88/fitsweep/internal/testutil"
)

var t0 = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPlanner(dir string) *Planner {
	return NewPlanner(Options{
		Dir:       dir,
		Tolerance: DefaultTolerance,
		Logger:    discardLogger(),
		RunIDs:    testutil.NewFixedRunID("run-1"),
		Now:       testutil.NewDeterministicClock(t0, time.Second).Now,
	})
}

// importDir lays out a typical bulk export directory.
func importDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	testutil.WriteFile(t, dir, "alice@example.com_123.fit", testutil.ActivityFIT(t, t0))
	testutil.WriteFile(t, dir, "2024-01-01-08_00-77.fit", testutil.ActivityFIT(t, t0.Add(3*time.Second)))
	testutil.WriteFile(t, dir, "ride.fit", testutil.ActivityFIT(t, t0.Add(time.Hour)))
	testutil.WriteFile(t, dir, "RIDE.json", []byte(`{}`))
	testutil.WriteFile(t, dir, "orphan.json", []byte(`{"time":1700000000}`))
	testutil.WriteFile(t, dir, "monitor.fit", testutil.HealthFIT(t))
	testutil.WriteFile(t, dir, "broken.FIT", testutil.CorruptFIT())
	testutil.WriteFile(t, dir, "notes.txt", []byte("ignored"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	testutil.WriteFile(t, filepath.Join(dir, "nested"), "deep.fit", testutil.HealthFIT(t))
	return dir
}

func TestClassifyErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindNone},
		{"dir", fmt.Errorf("wrap: %w", ErrDirNotFound), KindFatalConfig},
		{"timestamp", fmt.Errorf("x: %w", normalize.ErrMissingTimestamp), KindMissingTimestamp},
		{"malformed", normalize.ErrMalformed, KindDecode},
		{"fit", &FileError{Path: "a", Op: "read", Err: &fit.DecodeError{Offset: 0, Err: fit.ErrHeader}}, KindDecode},
		{"cancelled", context.Canceled, KindCancelled},
		{"other", errors.New("disk on fire"), KindIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestReportCounters(t *testing.T) {
	r := NewReport("id", "clean", "/d", false, t0)
	r.Record(Outcome{Path: "a", Action: ActionDeleteSidecar})
	r.Record(Outcome{Path: "b", Action: ActionDeleteSidecar})
	r.Record(Outcome{Path: "c", Action: ActionMoveHealth, Err: &FileError{Path: "c", Op: "move", Err: os.ErrPermission}})

	assert.Equal(t, 2, r.Counters.Actions[ActionDeleteSidecar])
	assert.Equal(t, 0, r.Counters.Actions[ActionMoveHealth])
	assert.Equal(t, 1, r.Counters.Failures[KindIO])
	assert.Equal(t, 1, r.Counters.FailureTotal())
	assert.Equal(t, KindIO, r.Outcomes[2].Kind)
	assert.Len(t, r.Failures(), 1)
	assert.Equal(t, []Action{ActionDeleteSidecar}, r.Counters.SortedActions())
	assert.Equal(t, []ErrorKind{KindIO}, r.Counters.SortedKinds())

	var zero Counters
	zero.Add(Outcome{Action: ActionKeep})
	assert.Equal(t, 1, zero.Actions[ActionKeep])
}

func TestPlanMissingDir(t *testing.T) {
	_, err := newPlanner(filepath.Join(t.TempDir(), "nope")).Plan(context.Background())
	assert.ErrorIs(t, err, ErrDirNotFound)
	assert.Equal(t, KindFatalConfig, Classify(err))

	file := testutil.WriteFile(t, t.TempDir(), "file", nil)
	_, err = newPlanner(file).Plan(context.Background())
	assert.ErrorIs(t, err, ErrDirNotFound)
}

func TestPlan(t *testing.T) {
	dir := importDir(t)

	plan, err := newPlanner(dir).Plan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "RIDE.json")}, plan.Sidecars)
	assert.Equal(t, []string{filepath.Join(dir, "orphan.json")}, plan.Orphans)

	var health []string
	for _, h := range plan.Health {
		health = append(health, filepath.Base(h.Path))
	}
	assert.Equal(t, []string{"broken.FIT", "monitor.fit"}, health)
	assert.Len(t, plan.Activities, 3)

	require.Len(t, plan.Groups, 1)
	assert.Equal(t, filepath.Join(dir, "alice@example.com_123.fit"), plan.Groups[0].Keep().Path)
	require.Len(t, plan.Deletions(), 1)
	assert.Equal(t, filepath.Join(dir, "2024-01-01-08_00-77.fit"), plan.Deletions()[0].Path)

	assert.Equal(t, filepath.Join(dir, DefaultQuarantineDir), plan.QuarantineDir)
	assert.Equal(t, filepath.Join(dir, DefaultHealthDir), plan.HealthDir)
	assert.False(t, plan.Empty())
}

func TestPreviewDoesNotMutate(t *testing.T) {
	dir := importDir(t)
	before := testutil.ListDir(t, dir)

	p := newPlanner(dir)
	plan, err := p.Plan(context.Background())
	require.NoError(t, err)
	r := p.Preview(plan)

	assert.Equal(t, before, testutil.ListDir(t, dir))
	assert.True(t, r.DryRun)
	assert.Equal(t, "run-1", r.RunID)
	assert.Equal(t, 1, r.Counters.Actions[ActionDeleteSidecar])
	assert.Equal(t, 1, r.Counters.Actions[ActionQuarantine])
	assert.Equal(t, 2, r.Counters.Actions[ActionMoveHealth])
	assert.Equal(t, 1, r.Counters.Actions[ActionKeep])
	assert.Equal(t, 1, r.Counters.Actions[ActionDeleteDuplicate])
	assert.Equal(t, 1, r.Counters.Failures[KindDecode])
	assert.Equal(t, t0, r.Started)
	assert.Equal(t, t0.Add(time.Second), r.Finished)
}

func TestApply(t *testing.T) {
	dir := importDir(t)

	p := newPlanner(dir)
	plan, err := p.Plan(context.Background())
	require.NoError(t, err)

	r, err := p.Apply(context.Background(), plan)
	require.NoError(t, err)
	assert.False(t, r.DryRun)

	// broken.FIT is reported and still moved aside.
	failures := r.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, filepath.Join(dir, "broken.FIT"), failures[0].Path)
	assert.Equal(t, KindDecode, failures[0].Kind)

	assert.Equal(t, []string{
		"alice@example.com_123.fit",
		"health",
		"nested",
		"notes.txt",
		"ride.fit",
		"unsupported_json_format",
	}, testutil.ListDir(t, dir))
	assert.Equal(t, []string{"broken.FIT", "monitor.fit"}, testutil.ListDir(t, filepath.Join(dir, "health")))
	assert.Equal(t, []string{"README.txt", "orphan.json"}, testutil.ListDir(t, filepath.Join(dir, "unsupported_json_format")))

	manifest, err := os.ReadFile(filepath.Join(dir, "unsupported_json_format", "README.txt"))
	require.NoError(t, err)
	assert.Equal(t, janitor.Manifest([]string{"orphan.json"}), string(manifest))

	// Order: sidecars, orphans, health, duplicates.
	var actions []Action
	for _, o := range r.Outcomes {
		actions = append(actions, o.Action)
	}
	assert.Equal(t, []Action{
		ActionScan,
		ActionDeleteSidecar,
		ActionQuarantine,
		ActionMoveHealth, ActionMoveHealth,
		ActionKeep, ActionDeleteDuplicate,
	}, actions)
}

func TestApplyIsRepeatable(t *testing.T) {
	dir := importDir(t)
	p := newPlanner(dir)

	plan, err := p.Plan(context.Background())
	require.NoError(t, err)
	_, err = p.Apply(context.Background(), plan)
	require.NoError(t, err)

	again, err := p.Plan(context.Background())
	require.NoError(t, err)
	assert.True(t, again.Empty())
}

func TestApplyContinuesPastFailures(t *testing.T) {
	dir := importDir(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "health"), 0o755))
	testutil.WriteFile(t, filepath.Join(dir, "health"), "monitor.fit", []byte("older"))

	p := newPlanner(dir)
	plan, err := p.Plan(context.Background())
	require.NoError(t, err)
	r, err := p.Apply(context.Background(), plan)
	require.NoError(t, err)

	failures := r.Failures()
	require.Len(t, failures, 2)
	assert.Equal(t, KindDecode, failures[0].Kind)
	assert.Equal(t, filepath.Join(dir, "monitor.fit"), failures[1].Path)
	assert.ErrorIs(t, failures[1].Err, ErrTargetExists)
	assert.True(t, IsFileError(failures[1].Err))
	assert.Equal(t, KindIO, failures[1].Kind)

	// Later steps still ran.
	assert.Equal(t, 1, r.Counters.Actions[ActionDeleteDuplicate])
	_, err = os.Stat(filepath.Join(dir, "monitor.fit"))
	assert.NoError(t, err, "source is left in place")
}

func TestApplyManifestListsEarlierOrphans(t *testing.T) {
	dir := importDir(t)
	q := filepath.Join(dir, DefaultQuarantineDir)
	require.NoError(t, os.Mkdir(q, 0o755))
	testutil.WriteFile(t, q, "earlier.json", []byte(`{}`))

	p := newPlanner(dir)
	plan, err := p.Plan(context.Background())
	require.NoError(t, err)
	_, err = p.Apply(context.Background(), plan)
	require.NoError(t, err)

	manifest, err := os.ReadFile(filepath.Join(q, janitor.ManifestName))
	require.NoError(t, err)
	assert.Equal(t, janitor.Manifest([]string{"earlier.json", "orphan.json"}), string(manifest))
}

func TestApplyCancelled(t *testing.T) {
	dir := importDir(t)
	p := newPlanner(dir)
	plan, err := p.Plan(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, err := p.Apply(ctx, plan)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, r)
	require.Len(t, r.Outcomes, 1, "only the scan failure found while planning")
	assert.Equal(t, ActionScan, r.Outcomes[0].Action)
	_, statErr := os.Stat(filepath.Join(dir, "RIDE.json"))
	assert.NoError(t, statErr)
}

func TestPlanCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newPlanner(importDir(t)).Plan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCustomSubdirs(t *testing.T) {
	dir := importDir(t)
	elsewhere := t.TempDir()

	p := NewPlanner(Options{
		Dir:           dir,
		Tolerance:     0,
		QuarantineDir: "json",
		HealthDir:     filepath.Join(elsewhere, "h"),
		Logger:        discardLogger(),
	})
	plan, err := p.Plan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "json"), plan.QuarantineDir)
	assert.Equal(t, filepath.Join(elsewhere, "h"), plan.HealthDir)
	assert.Empty(t, plan.Groups, "3s apart is outside a zero tolerance")
}

func TestPlanLines(t *testing.T) {
	dir := importDir(t)

	plan, err := newPlanner(dir).Plan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"SIDECAR RIDE.json",
		"ORPHAN orphan.json",
		"HEALTH broken.FIT",
		"HEALTH monitor.fit",
		"GROUP 2024-01-01T08:00:00Z",
		"  KEEP alice@example.com_123.fit (Garmin Export)",
		"  DELETE 2024-01-01-08_00-77.fit (Intervals.icu)",
	}, plan.Lines())
}

func TestDecodeFailureIsCounted(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "corrupt.fit", testutil.CorruptFIT())

	p := newPlanner(dir)
	plan, err := p.Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, plan.Undecodable, 1)
	require.Len(t, plan.Health, 1)
	assert.True(t, fit.IsDecodeError(plan.Undecodable[0].Err))

	preview := p.Preview(plan)
	assert.Equal(t, 1, preview.Counters.Failures[KindDecode])
	assert.Equal(t, 1, preview.Counters.Actions[ActionMoveHealth])

	r, err := p.Apply(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Counters.Failures[KindDecode])
	assert.Equal(t, 1, r.Counters.Actions[ActionMoveHealth])
	assert.Equal(t, []string{"corrupt.fit"}, testutil.ListDir(t, filepath.Join(dir, DefaultHealthDir)))
}

func TestManifestOmitsFailedMoves(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "moved.json", []byte(`{}`))
	testutil.WriteFile(t, dir, "stuck.json", []byte(`{"new":true}`))
	q := filepath.Join(dir, DefaultQuarantineDir)
	require.NoError(t, os.Mkdir(q, 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(q, "stuck.json"), 0o755))

	p := newPlanner(dir)
	plan, err := p.Plan(context.Background())
	require.NoError(t, err)
	r, err := p.Apply(context.Background(), plan)
	require.NoError(t, err)

	failures := r.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, filepath.Join(dir, "stuck.json"), failures[0].Path)
	assert.ErrorIs(t, failures[0].Err, ErrTargetExists)

	manifest, err := os.ReadFile(filepath.Join(q, janitor.ManifestName))
	require.NoError(t, err)
	assert.Equal(t, janitor.Manifest([]string{"moved.json"}), string(manifest))
}
