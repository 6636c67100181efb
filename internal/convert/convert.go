// Package convert synthesizes FIT activity files from normalized JSON
// exports.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/roach88/fitsweep/internal/classify"
	"github.com/roach88/fitsweep/internal/normalize"
	"github.com/roach88/fitsweep/internal/sweep"
)

// Options configures a Converter. InputDir and OutputDir are required and
// must exist.
type Options struct {
	InputDir  string
	OutputDir string
	DryRun    bool
	// Overwrite replaces existing outputs instead of skipping them.
	Overwrite bool
	Device    Device

	Logger *slog.Logger
	RunIDs sweep.RunIDGenerator
	Now    func() time.Time
}

// Converter converts every JSON export in a directory.
type Converter struct {
	opts   Options
	logger *slog.Logger
}

// New returns a Converter. A zero Device means DefaultDevice.
func New(opts Options) *Converter {
	if opts.Device == (Device{}) {
		opts.Device = DefaultDevice
	}
	if opts.RunIDs == nil {
		opts.RunIDs = sweep.UUIDv7Generator{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{opts: opts, logger: logger}
}

// Eligible reports whether name is a JSON export to convert. README files
// and summarizedActivities metadata are not activities.
func Eligible(name string) bool {
	return classify.IsJSON(name) &&
		!strings.HasPrefix(name, "README") &&
		!strings.Contains(name, "summarizedActivities")
}

// OutputName maps an input file name to its FIT name.
func OutputName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".fit"
}

// Run converts the eligible files of InputDir in name order. Per-file
// failures are recorded in the report; a missing directory aborts the run.
func (c *Converter) Run(ctx context.Context) (*sweep.Report, error) {
	for _, dir := range []string{c.opts.InputDir, c.opts.OutputDir} {
		if err := requireDir(dir); err != nil {
			return nil, err
		}
	}

	entries, err := os.ReadDir(c.opts.InputDir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.opts.InputDir, err)
	}

	r := sweep.NewReport(c.opts.RunIDs.Generate(), "convert", c.opts.InputDir, c.opts.DryRun, c.opts.Now())
	for _, e := range entries {
		if !e.Type().IsRegular() || !Eligible(e.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			r.Finished = c.opts.Now()
			return r, err
		}
		r.Record(c.convertOne(ctx, e.Name()))
	}
	r.Finished = c.opts.Now()

	c.logger.Info("conversion finished",
		"run_id", r.RunID,
		"converted", r.Counters.Actions[sweep.ActionConvert],
		"skipped", r.Counters.Actions[sweep.ActionSkip],
		"failures", r.Counters.FailureTotal(),
	)
	return r, nil
}

func (c *Converter) convertOne(ctx context.Context, name string) sweep.Outcome {
	src := filepath.Join(c.opts.InputDir, name)
	dest := filepath.Join(c.opts.OutputDir, OutputName(name))
	o := sweep.Outcome{Path: src, Action: sweep.ActionConvert, Target: dest}

	if !c.opts.Overwrite {
		if _, err := os.Stat(dest); err == nil {
			o.Action = sweep.ActionSkip
			o.Detail = "output exists"
			c.logger.Debug("output exists, skipping", "path", src, "target", dest)
			return o
		}
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return c.fail(o, "read", err)
	}
	act, err := normalize.Normalize(data)
	if err != nil {
		return c.fail(o, "normalize", err)
	}
	o.Detail = fmt.Sprintf("%d samples", len(act.Samples))

	enc, err := encoder(act, c.opts.Device)
	if err != nil {
		return c.fail(o, "encode", err)
	}
	if c.opts.DryRun {
		return o
	}
	n, err := writeAtomic(ctx, dest, enc)
	if err != nil {
		return c.fail(o, "write", err)
	}
	c.logger.Debug("converted", "path", src, "target", dest, "bytes", n)
	return o
}

func (c *Converter) fail(o sweep.Outcome, op string, err error) sweep.Outcome {
	o.Err = &sweep.FileError{Path: o.Path, Op: op, Err: err}
	o.Kind = sweep.Classify(o.Err)
	c.logger.Warn("conversion failed", "path", o.Path, "error", err, "kind", o.Kind)
	return o
}

func requireDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", sweep.ErrDirNotFound, dir)
		}
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", sweep.ErrDirNotFound, dir)
	}
	return nil
}
