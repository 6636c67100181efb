package fit

import (
	"fmt"
	"math"
	"time"
)

// EpochOffset is the number of seconds between the Unix epoch and the FIT
// epoch, 1989-12-31T00:00:00Z.
const EpochOffset = 631065600

// Epoch is the zero FIT timestamp.
var Epoch = time.Unix(EpochOffset, 0).UTC()

// Timestamp converts t to seconds since the FIT epoch, flooring
// sub-second parts.
func Timestamp(t time.Time) (uint32, error) {
	s := t.Unix() - EpochOffset
	if s < 0 || s > math.MaxUint32 {
		return 0, fmt.Errorf("%s: %w", t.UTC().Format(time.RFC3339), ErrTimeRange)
	}
	return uint32(s), nil
}

// Time converts a FIT timestamp to UTC.
func Time(ts uint32) time.Time {
	return time.Unix(int64(ts)+EpochOffset, 0).UTC()
}
