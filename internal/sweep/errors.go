package sweep

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/fitsweep/internal/fit"
	"github.com/roach88/fitsweep/internal/normalize"
)

var (
	// ErrDirNotFound aborts a run whose input or output directory is missing.
	ErrDirNotFound = errors.New("directory not found")
	// ErrTargetExists is returned instead of overwriting a file on move.
	ErrTargetExists = errors.New("target already exists")
)

// ErrorKind categorizes a failure for counters and the ledger.
type ErrorKind string

const (
	KindNone             ErrorKind = ""
	KindDecode           ErrorKind = "decode"
	KindMissingTimestamp ErrorKind = "missing_timestamp"
	KindIO               ErrorKind = "io"
	KindFatalConfig      ErrorKind = "fatal_config"
	KindCancelled        ErrorKind = "cancelled"
)

// Classify maps err to its kind. Input that cannot be represented in a FIT
// file counts as a decode failure. Unrecognised errors are I/O failures.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrDirNotFound):
		return KindFatalConfig
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	case errors.Is(err, normalize.ErrMissingTimestamp):
		return KindMissingTimestamp
	case fit.IsDecodeError(err), errors.Is(err, normalize.ErrMalformed), errors.Is(err, fit.ErrTimeRange):
		return KindDecode
	default:
		return KindIO
	}
}

// FileError is a per-file failure. It never aborts a batch.
type FileError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// IsFileError reports whether err is or wraps a *FileError.
func IsFileError(err error) bool {
	var fe *FileError
	return errors.As(err, &fe)
}

func dirNotFound(dir string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDirNotFound, dir, err)
}
