package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/fitsweep/internal/sweep"
)

// WriteRun inserts a run. Writing the same id twice is a no-op.
func (s *Store) WriteRun(ctx context.Context, r Run) error {
	return writeRun(ctx, s.db, r)
}

func writeRun(ctx context.Context, db execer, r Run) error {
	counters, err := marshalCounters(r.Counters)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	var finished any
	if r.Finished() {
		finished = toMillis(r.FinishedAt)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs
		(id, command, dir, dry_run, tolerance_seconds, started_at, finished_at, counters)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.ID,
		r.Command,
		r.Dir,
		r.DryRun,
		r.Tolerance.Seconds(),
		toMillis(r.StartedAt),
		finished,
		counters,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// FinishRun records the finish time and final counters of a run.
func (s *Store) FinishRun(ctx context.Context, id string, finished time.Time, c sweep.Counters) error {
	return finishRun(ctx, s.db, id, finished, c)
}

func finishRun(ctx context.Context, db execer, id string, finished time.Time, c sweep.Counters) error {
	counters, err := marshalCounters(c)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	res, err := db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ?, counters = ? WHERE id = ?
	`, toMillis(finished), counters, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrRunNotFound)
	}
	return nil
}

// WriteAction inserts one file outcome. The run must exist. Writing the
// same (run, seq) twice is a no-op.
func (s *Store) WriteAction(ctx context.Context, a Action) error {
	return writeAction(ctx, s.db, a)
}

func writeAction(ctx context.Context, db execer, a Action) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO actions
		(run_id, seq, path, action, target, error_kind, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		a.RunID,
		a.Seq,
		a.Path,
		string(a.Action),
		a.Target,
		string(a.ErrorKind),
		a.Error,
	)
	if err != nil {
		return fmt.Errorf("write action: %w", err)
	}
	return nil
}

// RecordReport writes a finished report in one transaction: the run, one
// action per outcome in order, and the final counters.
func (s *Store) RecordReport(ctx context.Context, r *sweep.Report, tolerance time.Duration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record report: begin tx: %w", err)
	}
	defer tx.Rollback()

	run := Run{
		ID:        r.RunID,
		Command:   r.Command,
		Dir:       r.Dir,
		DryRun:    r.DryRun,
		Tolerance: tolerance,
		StartedAt: r.Started,
	}
	if err := writeRun(ctx, tx, run); err != nil {
		return err
	}
	for i, o := range r.Outcomes {
		if err := writeAction(ctx, tx, ActionFromOutcome(r.RunID, int64(i), o)); err != nil {
			return err
		}
	}
	finished := r.Finished
	if finished.IsZero() {
		finished = r.Started
	}
	if err := finishRun(ctx, tx, r.RunID, finished, r.Counters); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record report: commit: %w", err)
	}
	return nil
}
