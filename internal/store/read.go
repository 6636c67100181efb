package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/fitsweep/internal/sweep"
)

type scanner interface {
	Scan(dest ...any) error
}

const runColumns = `id, command, dir, dry_run, tolerance_seconds, started_at, finished_at, counters`

// ReadRun returns the run with the given id, or ErrRunNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	return r, err
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
//
// Returns an empty slice (not nil) if the ledger has no runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		ORDER BY started_at DESC, id COLLATE BINARY DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadActions returns the actions of a run in the order they were produced.
//
// Returns an empty slice (not nil) if the run has no actions.
func (s *Store) ReadActions(ctx context.Context, runID string) ([]Action, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, path, action, target, error_kind, error
		FROM actions
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	actions := []Action{}
	for rows.Next() {
		var a Action
		var action, kind string
		if err := rows.Scan(&a.RunID, &a.Seq, &a.Path, &action, &a.Target, &kind, &a.Error); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		a.Action = sweep.Action(action)
		a.ErrorKind = sweep.ErrorKind(kind)
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}
	return actions, nil
}

func scanRun(row scanner) (Run, error) {
	var (
		r         Run
		tolerance float64
		started   int64
		finished  sql.NullInt64
		counters  string
	)
	if err := row.Scan(&r.ID, &r.Command, &r.Dir, &r.DryRun, &tolerance, &started, &finished, &counters); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	r.Tolerance = time.Duration(tolerance * float64(time.Second))
	r.StartedAt = fromMillis(started)
	if finished.Valid {
		r.FinishedAt = fromMillis(finished.Int64)
	}
	c, err := unmarshalCounters(counters)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: %w", r.ID, err)
	}
	r.Counters = c
	return r, nil
}
