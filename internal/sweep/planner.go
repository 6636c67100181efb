// Package sweep cleans an activity import directory: it deletes JSON
// sidecars, quarantines orphan JSON exports, moves health recordings aside
// and deletes duplicate activities, keeping the preferred copy.
//
// A run is split into Plan, which only reads, and Apply, which mutates.
// Preview renders a plan as a dry-run report.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/fitsweep/internal/classify"
	"github.com/roach88/fitsweep/internal/dedupe"
	"github.com/roach88/fitsweep/internal/janitor"
)

const (
	// DefaultQuarantineDir receives orphan JSON files.
	DefaultQuarantineDir = "unsupported_json_format"
	// DefaultHealthDir receives FIT files without an activity session.
	DefaultHealthDir = "health"
	// DefaultTolerance is the duplicate start time tolerance.
	DefaultTolerance = 5 * time.Second
	// MaxTolerance bounds configured tolerances.
	MaxTolerance = 24 * time.Hour
)

// Options configures a Planner. Dir is required.
type Options struct {
	Dir       string
	Tolerance time.Duration
	// QuarantineDir and HealthDir are relative to Dir unless absolute.
	QuarantineDir string
	HealthDir     string

	Logger     *slog.Logger
	Classifier *classify.Classifier
	RunIDs     RunIDGenerator
	Now        func() time.Time
}

// Planner scans one directory.
type Planner struct {
	opts       Options
	logger     *slog.Logger
	classifier *classify.Classifier
	runIDs     RunIDGenerator
	now        func() time.Time
}

// NewPlanner fills in defaults for unset options.
func NewPlanner(opts Options) *Planner {
	if opts.QuarantineDir == "" {
		opts.QuarantineDir = DefaultQuarantineDir
	}
	if opts.HealthDir == "" {
		opts.HealthDir = DefaultHealthDir
	}
	p := &Planner{
		opts:       opts,
		logger:     opts.Logger,
		classifier: opts.Classifier,
		runIDs:     opts.RunIDs,
		now:        opts.Now,
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.classifier == nil {
		p.classifier = classify.New(classify.WithLogger(p.logger))
	}
	if p.runIDs == nil {
		p.runIDs = UUIDv7Generator{}
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

func (p *Planner) subdir(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.opts.Dir, name)
}

// Plan is everything a run would do, computed without side effects.
type Plan struct {
	Dir           string
	QuarantineDir string
	HealthDir     string
	Tolerance     time.Duration

	Sidecars   []string
	Orphans    []string
	Health     []classify.RawFile
	Activities []classify.RawFile
	Groups     []dedupe.Group
	// Unreadable holds files that could not be read during classification.
	Unreadable []Outcome
	// Undecodable holds failed scans of FIT files that are still moved to
	// the health folder.
	Undecodable []Outcome
}

// Deletions returns the duplicate activities that would be deleted.
func (p *Plan) Deletions() []dedupe.Candidate {
	return dedupe.Deletions(p.Groups)
}

// Survivors returns the activities left once duplicates are deleted, in
// scan order.
func (p *Plan) Survivors() []dedupe.Candidate {
	cs := make([]dedupe.Candidate, len(p.Activities))
	for i, rf := range p.Activities {
		cs[i] = candidateOf(rf)
	}
	return dedupe.Survivors(cs, p.Groups)
}

func candidateOf(rf classify.RawFile) dedupe.Candidate {
	return dedupe.Candidate{
		Path:     rf.Path,
		Start:    rf.Start,
		Label:    rf.Provenance.Label,
		Priority: rf.Provenance.Priority,
	}
}

// Empty reports whether applying the plan would change nothing.
func (p *Plan) Empty() bool {
	return len(p.Sidecars) == 0 && len(p.Orphans) == 0 && len(p.Health) == 0 && len(p.Deletions()) == 0
}

// Plan scans the top level of the directory. Subdirectories, including
// earlier health and quarantine folders, are not entered.
func (p *Planner) Plan(ctx context.Context) (*Plan, error) {
	dir := p.opts.Dir
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || isNotDir(err) {
			return nil, dirNotFound(dir, err)
		}
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	plan := &Plan{
		Dir:           dir,
		QuarantineDir: p.subdir(p.opts.QuarantineDir),
		HealthDir:     p.subdir(p.opts.HealthDir),
		Tolerance:     p.opts.Tolerance,
	}

	var jsonFiles, fitFiles []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		switch {
		case classify.IsFIT(path):
			fitFiles = append(fitFiles, path)
		case classify.IsJSON(path):
			jsonFiles = append(jsonFiles, path)
		}
	}
	p.logger.Debug("scanned directory", "path", dir, "fit", len(fitFiles), "json", len(jsonFiles))

	plan.Sidecars, plan.Orphans = janitor.Partition(jsonFiles, fitFiles)

	var candidates []dedupe.Candidate
	for _, path := range fitFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rf, err := p.classifier.Classify(ctx, path)
		if err != nil {
			p.logger.Warn("could not read file", "path", path, "error", err)
			plan.Unreadable = append(plan.Unreadable, Outcome{
				Path:   path,
				Action: ActionScan,
				Err:    &FileError{Path: path, Op: "read", Err: err},
			})
			continue
		}
		if rf.DecodeErr != nil {
			plan.Undecodable = append(plan.Undecodable, Outcome{
				Path:   path,
				Action: ActionScan,
				Err:    &FileError{Path: path, Op: "decode", Err: rf.DecodeErr},
			})
		}
		if rf.Kind != classify.KindActivity {
			plan.Health = append(plan.Health, rf)
			continue
		}
		plan.Activities = append(plan.Activities, rf)
		candidates = append(candidates, candidateOf(rf))
	}

	plan.Groups = dedupe.Resolve(candidates, p.opts.Tolerance)
	p.logger.Info("planned sweep",
		"path", dir,
		"sidecars", len(plan.Sidecars),
		"orphans", len(plan.Orphans),
		"health", len(plan.Health),
		"activities", len(plan.Activities),
		"duplicate_groups", len(plan.Groups),
	)
	return plan, nil
}

func isNotDir(err error) bool {
	var pe *fs.PathError
	if !errors.As(err, &pe) {
		return false
	}
	info, statErr := os.Stat(pe.Path)
	return statErr == nil && !info.IsDir()
}

// Preview reports what Apply would do without touching the filesystem.
func (p *Planner) Preview(plan *Plan) *Report {
	r := NewReport(p.runIDs.Generate(), "clean", plan.Dir, true, p.now())
	plan.recordScanFailures(r)
	for _, o := range plannedOutcomes(plan) {
		r.Record(o)
	}
	r.Finished = p.now()
	return r
}

// recordScanFailures adds the failures found while planning to r.
func (p *Plan) recordScanFailures(r *Report) {
	for _, o := range p.Unreadable {
		r.Record(o)
	}
	for _, o := range p.Undecodable {
		r.Record(o)
	}
}

func plannedOutcomes(plan *Plan) []Outcome {
	var out []Outcome
	for _, s := range plan.Sidecars {
		out = append(out, Outcome{Path: s, Action: ActionDeleteSidecar})
	}
	for _, o := range plan.Orphans {
		out = append(out, Outcome{Path: o, Action: ActionQuarantine, Target: filepath.Join(plan.QuarantineDir, filepath.Base(o))})
	}
	for _, h := range plan.Health {
		out = append(out, Outcome{Path: h.Path, Action: ActionMoveHealth, Target: filepath.Join(plan.HealthDir, filepath.Base(h.Path))})
	}
	for _, g := range plan.Groups {
		keep := g.Keep()
		out = append(out, Outcome{Path: keep.Path, Action: ActionKeep, Detail: keep.Label})
		for _, d := range g.Drop() {
			out = append(out, Outcome{Path: d.Path, Action: ActionDeleteDuplicate, Detail: d.Label})
		}
	}
	return out
}

// Lines renders the plan one decision per line, with base names, in apply
// order. Groups list the kept file first. The format is stable and used
// for golden comparisons.
func (p *Plan) Lines() []string {
	var out []string
	for _, s := range p.Sidecars {
		out = append(out, "SIDECAR "+filepath.Base(s))
	}
	for _, o := range p.Orphans {
		out = append(out, "ORPHAN "+filepath.Base(o))
	}
	for _, h := range p.Health {
		out = append(out, "HEALTH "+filepath.Base(h.Path))
	}
	for _, g := range p.Groups {
		out = append(out, "GROUP "+g.Anchor.UTC().Format(time.RFC3339))
		keep := g.Keep()
		out = append(out, fmt.Sprintf("  KEEP %s (%s)", filepath.Base(keep.Path), keep.Label))
		for _, d := range g.Drop() {
			out = append(out, fmt.Sprintf("  DELETE %s (%s)", filepath.Base(d.Path), d.Label))
		}
	}
	for _, u := range p.Unreadable {
		out = append(out, "UNREADABLE "+filepath.Base(u.Path))
	}
	return out
}
