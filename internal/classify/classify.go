// Package classify decides what each file in an import directory is:
// an activity, a health/monitoring recording, a JSON sidecar or a JSON
// orphan.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/roach88/fitsweep/internal/fit"
)

// Kind is the classification of a file.
type Kind int

const (
	KindActivity Kind = iota
	KindNonActivity
	KindSidecar
	KindOrphan
)

func (k Kind) String() string {
	switch k {
	case KindActivity:
		return "activity"
	case KindNonActivity:
		return "non_activity"
	case KindSidecar:
		return "sidecar"
	case KindOrphan:
		return "orphan"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// RawFile is a classified file.
type RawFile struct {
	Path       string
	Kind       Kind
	Provenance Provenance
	// Start is set for activities.
	Start time.Time
	// DecodeErr records why a binary file could not be read as an activity.
	DecodeErr error
}

// IsFIT reports whether path has a .fit extension in any case.
func IsFIT(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".fit")
}

// IsJSON reports whether path has a .json extension in any case.
func IsJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Classifier reads binary files to tell activities from health files.
type Classifier struct {
	logger   *slog.Logger
	readFile func(string) ([]byte, error)
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger used for decode warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithReadFile replaces os.ReadFile.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(c *Classifier) {
		if fn != nil {
			c.readFile = fn
		}
	}
}

// New returns a Classifier.
func New(opts ...Option) *Classifier {
	c := &Classifier{logger: slog.Default(), readFile: os.ReadFile}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify reads the binary file at path. A file with a session start time
// is an activity; anything else, including files that fail to decode, is
// non-activity. Only a read failure is returned as an error.
func (c *Classifier) Classify(ctx context.Context, path string) (RawFile, error) {
	if err := ctx.Err(); err != nil {
		return RawFile{}, err
	}

	data, err := c.readFile(path)
	if err != nil {
		return RawFile{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	rf := RawFile{Path: path, Kind: KindNonActivity, Provenance: ClassifyProvenance(path)}
	start, ok, err := fit.StartTime(data)
	switch {
	case err != nil:
		c.logger.Warn("could not decode FIT file", "path", path, "error", err)
		rf.DecodeErr = err
	case ok:
		rf.Kind = KindActivity
		rf.Start = start
	default:
		c.logger.Debug("no session start time", "path", path)
	}
	return rf, nil
}

// IsActivity reports whether the file at path is an activity.
func (c *Classifier) IsActivity(ctx context.Context, path string) (bool, error) {
	rf, err := c.Classify(ctx, path)
	if err != nil {
		return false, err
	}
	return rf.Kind == KindActivity, nil
}
