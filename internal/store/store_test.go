package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fitsweep/internal/sweep"
)

// createTestStore opens a ledger in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var t0 = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func testRun(id string, started time.Time) Run {
	return Run{ID: id, Command: "clean", Dir: "/data", Tolerance: 5 * time.Second, StartedAt: started}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, s.Close())
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	for _, table := range []string{"runs", "actions"} {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %q", table)
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "ledger.db"))
	assert.Error(t, err)
}

func TestClose_Nil(t *testing.T) {
	var s Store
	assert.NoError(t, s.Close())
}

func TestWriteRun_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	r := testRun("run-1", t0)
	r.DryRun = true
	require.NoError(t, s.WriteRun(ctx, r))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "clean", got.Command)
	assert.Equal(t, "/data", got.Dir)
	assert.True(t, got.DryRun)
	assert.Equal(t, 5*time.Second, got.Tolerance)
	assert.True(t, t0.Equal(got.StartedAt))
	assert.False(t, got.Finished())
	assert.Empty(t, got.Counters.Actions)
}

func TestWriteRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteRun(ctx, testRun("run-1", t0)))
	other := testRun("run-1", t0.Add(time.Hour))
	other.Command = "convert"
	require.NoError(t, s.WriteRun(ctx, other))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "clean", got.Command, "first write wins")
}

func TestFinishRun(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, testRun("run-1", t0)))

	c := sweep.NewCounters()
	c.Actions[sweep.ActionKeep] = 2
	c.Actions[sweep.ActionDeleteDuplicate] = 1
	c.Failures[sweep.KindIO] = 1
	require.NoError(t, s.FinishRun(ctx, "run-1", t0.Add(3*time.Second), c))

	got, err := s.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.True(t, got.Finished())
	assert.Equal(t, int64(3000), got.FinishedAt.Sub(got.StartedAt).Milliseconds())
	assert.Equal(t, c, got.Counters)
}

func TestFinishRun_UnknownRun(t *testing.T) {
	s := createTestStore(t)

	err := s.FinishRun(context.Background(), "nope", t0, sweep.NewCounters())
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestWriteAction_RequiresRun(t *testing.T) {
	s := createTestStore(t)

	err := s.WriteAction(context.Background(), Action{RunID: "nope", Seq: 0, Path: "a.fit", Action: sweep.ActionKeep})
	assert.Error(t, err, "foreign key enforced")
}

func TestReadActions_Ordered(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteRun(ctx, testRun("run-1", t0)))

	// Written out of order.
	for _, seq := range []int64{2, 0, 1} {
		require.NoError(t, s.WriteAction(ctx, Action{
			RunID:  "run-1",
			Seq:    seq,
			Path:   filepath.Join("/data", string(rune('a'+seq))+".fit"),
			Action: sweep.ActionKeep,
		}))
	}
	// Duplicate seq is ignored.
	require.NoError(t, s.WriteAction(ctx, Action{RunID: "run-1", Seq: 0, Path: "other", Action: sweep.ActionSkip}))

	got, err := s.ReadActions(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, a := range got {
		assert.Equal(t, int64(i), a.Seq)
	}
	assert.Equal(t, "/data/a.fit", got[0].Path)
}

func TestReadActions_Empty(t *testing.T) {
	s := createTestStore(t)

	got, err := s.ReadActions(context.Background(), "nope")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListRuns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	empty, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	require.NoError(t, s.WriteRun(ctx, testRun("b", t0)))
	require.NoError(t, s.WriteRun(ctx, testRun("c", t0.Add(time.Minute))))
	require.NoError(t, s.WriteRun(ctx, testRun("a", t0)))

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	ids := make([]string, len(all))
	for i, r := range all {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids)

	two, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestRecordReport(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	r := sweep.NewReport("run-9", "clean", "/data", false, t0)
	r.Record(sweep.Outcome{Path: "/data/a.fit", Action: sweep.ActionKeep, Detail: "Garmin Export"})
	r.Record(sweep.Outcome{Path: "/data/b.fit", Action: sweep.ActionDeleteDuplicate})
	r.Record(sweep.Outcome{
		Path:   "/data/c.fit",
		Action: sweep.ActionMoveHealth,
		Target: "/data/health/c.fit",
		Err:    &sweep.FileError{Path: "/data/c.fit", Op: "move", Err: sweep.ErrTargetExists},
	})
	r.Finished = t0.Add(time.Second)

	require.NoError(t, s.RecordReport(ctx, r, 5*time.Second))

	run, err := s.ReadRun(ctx, "run-9")
	require.NoError(t, err)
	assert.True(t, run.Finished())
	assert.Equal(t, r.Counters, run.Counters)

	actions, err := s.ReadActions(ctx, "run-9")
	require.NoError(t, err)
	require.Len(t, actions, 3)
	assert.Equal(t, sweep.ActionDeleteDuplicate, actions[1].Action)
	assert.Equal(t, "/data/health/c.fit", actions[2].Target)
	assert.Equal(t, sweep.KindIO, actions[2].ErrorKind)
	assert.Contains(t, actions[2].Error, "target already exists")
	assert.Empty(t, actions[0].Error)
}

func TestRecordReport_Cancelled(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := sweep.NewReport("run-x", "convert", "/in", true, t0)
	assert.Error(t, s.RecordReport(ctx, r, 0))

	runs, err := s.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
