package sweep

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/roach88/fitsweep/internal/classify"
	"github.com/roach88/fitsweep/internal/janitor"
)

// Apply carries out plan in a fixed order: delete sidecars, quarantine
// orphans, move health files, delete duplicates. Per-file failures are
// recorded and the batch continues. Cancellation stops between files and
// returns the partial report with the context error.
func (p *Planner) Apply(ctx context.Context, plan *Plan) (*Report, error) {
	r := NewReport(p.runIDs.Generate(), "clean", plan.Dir, false, p.now())
	plan.recordScanFailures(r)

	steps := []func(context.Context, *Plan, *Report) error{
		p.deleteSidecars,
		p.quarantineOrphans,
		p.moveHealth,
		p.deleteDuplicates,
	}
	for _, step := range steps {
		if err := step(ctx, plan, r); err != nil {
			r.Finished = p.now()
			return r, err
		}
	}

	r.Finished = p.now()
	p.logger.Info("sweep applied",
		"run_id", r.RunID,
		"path", plan.Dir,
		"failures", r.Counters.FailureTotal(),
	)
	return r, nil
}

func (p *Planner) deleteSidecars(ctx context.Context, plan *Plan, r *Report) error {
	for _, path := range plan.Sidecars {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Record(p.remove(path, ActionDeleteSidecar, ""))
	}
	return nil
}

func (p *Planner) quarantineOrphans(ctx context.Context, plan *Plan, r *Report) error {
	if len(plan.Orphans) == 0 {
		return nil
	}
	if err := os.MkdirAll(plan.QuarantineDir, 0o755); err != nil {
		return p.failAll(plan.Orphans, ActionQuarantine, &FileError{Path: plan.QuarantineDir, Op: "mkdir", Err: err}, r)
	}

	var moveErr error
	for _, path := range plan.Orphans {
		if err := ctx.Err(); err != nil {
			moveErr = err
			break
		}
		r.Record(p.move(path, plan.QuarantineDir, ActionQuarantine))
	}

	// The manifest lists what is in the folder after the moves, so files
	// that failed to move are not listed.
	p.writeManifest(plan.QuarantineDir, r)
	return moveErr
}

func (p *Planner) writeManifest(dir string, r *Report) {
	names, err := quarantined(dir)
	if err == nil && len(names) == 0 {
		return
	}
	if err == nil {
		_, err = janitor.WriteManifest(dir, names)
	}
	if err != nil {
		path := filepath.Join(dir, janitor.ManifestName)
		p.logger.Error("manifest failed", "path", path, "error", err)
		r.Record(Outcome{Path: path, Action: ActionQuarantine, Err: &FileError{Path: path, Op: "manifest", Err: err}})
	}
}

func (p *Planner) moveHealth(ctx context.Context, plan *Plan, r *Report) error {
	if len(plan.Health) == 0 {
		return nil
	}
	if err := os.MkdirAll(plan.HealthDir, 0o755); err != nil {
		paths := make([]string, len(plan.Health))
		for i, h := range plan.Health {
			paths[i] = h.Path
		}
		return p.failAll(paths, ActionMoveHealth, &FileError{Path: plan.HealthDir, Op: "mkdir", Err: err}, r)
	}
	for _, h := range plan.Health {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Record(p.move(h.Path, plan.HealthDir, ActionMoveHealth))
	}
	return nil
}

func (p *Planner) deleteDuplicates(ctx context.Context, plan *Plan, r *Report) error {
	for _, g := range plan.Groups {
		keep := g.Keep()
		r.Record(Outcome{Path: keep.Path, Action: ActionKeep, Detail: keep.Label})
		for _, d := range g.Drop() {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.Record(p.remove(d.Path, ActionDeleteDuplicate, d.Label))
		}
	}
	return nil
}

// failAll records err for every path; a directory-level failure skips the
// step but not the run.
func (p *Planner) failAll(paths []string, action Action, err error, r *Report) error {
	p.logger.Error("step failed", "action", action, "error", err)
	for _, path := range paths {
		r.Record(Outcome{Path: path, Action: action, Err: err})
	}
	return nil
}

func (p *Planner) remove(path string, action Action, detail string) Outcome {
	o := Outcome{Path: path, Action: action, Detail: detail}
	if err := os.Remove(path); err != nil {
		o.Err = &FileError{Path: path, Op: "delete", Err: err}
		p.logger.Warn("delete failed", "path", path, "error", err, "kind", Classify(o.Err))
		return o
	}
	p.logger.Debug("deleted", "path", path, "action", action)
	return o
}

func (p *Planner) move(path, dir string, action Action) Outcome {
	target := filepath.Join(dir, filepath.Base(path))
	o := Outcome{Path: path, Action: action, Target: target}

	if _, err := os.Lstat(target); err == nil {
		o.Err = &FileError{Path: path, Op: "move", Err: fmt.Errorf("%w: %s", ErrTargetExists, target)}
	} else if !errors.Is(err, fs.ErrNotExist) {
		o.Err = &FileError{Path: path, Op: "move", Err: err}
	} else if err := os.Rename(path, target); err != nil {
		o.Err = &FileError{Path: path, Op: "move", Err: err}
	}

	if o.Err != nil {
		p.logger.Warn("move failed", "path", path, "error", o.Err, "kind", Classify(o.Err))
		return o
	}
	p.logger.Debug("moved", "path", path, "target", target)
	return o
}

// quarantined lists JSON files already in dir, so the manifest covers
// earlier runs too. A missing dir is empty.
func quarantined(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && classify.IsJSON(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
