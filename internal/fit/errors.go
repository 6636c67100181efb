package fit

import (
	"errors"
	"fmt"
)

// Structural decode failures. They are wrapped in *DecodeError.
var (
	ErrHeader         = errors.New("invalid FIT header")
	ErrTruncated      = errors.New("truncated FIT stream")
	ErrUndefinedLocal = errors.New("data record for undefined local message")
	ErrChecksum       = errors.New("FIT checksum mismatch")
)

// Encoder misuse.
var (
	ErrSlotRedefined = errors.New("local slot already defined with a different layout")
	ErrSlotUndefined = errors.New("local slot has no definition")
	ErrFieldCount    = errors.New("value count does not match definition")
	ErrLocalRange    = errors.New("local message number out of range")
	ErrValueType     = errors.New("value kind does not match field base type")
	ErrValueRange    = errors.New("value out of range for field base type")
	ErrTimeRange     = errors.New("time outside FIT timestamp range")
	ErrTooLarge      = errors.New("FIT data section exceeds 4 GiB")
)

// DecodeError reports where in the file a structural problem was found.
type DecodeError struct {
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("fit: offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err is or wraps a *DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

func decodeErr(off int, err error) error {
	return &DecodeError{Offset: off, Err: err}
}

func decodeErrf(off int, err error, format string, args ...any) error {
	return &DecodeError{Offset: off, Err: fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...))}
}
