// Package normalize turns vendor JSON activity exports into canonical
// activities.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/roach88/fitsweep/internal/activity"
	"github.com/roach88/fitsweep/internal/geohash"
)

var (
	// ErrMissingTimestamp is returned when the export has no usable start time.
	ErrMissingTimestamp = errors.New("export has no timestamp")
	// ErrMalformed is returned when the export is not valid JSON of the
	// expected shape.
	ErrMalformed = errors.New("malformed export")
)

// Normalize decodes a JSON export and normalizes it.
func Normalize(data []byte) (activity.Activity, error) {
	var e Export
	if err := json.Unmarshal(data, &e); err != nil {
		return activity.Activity{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return NormalizeExport(e)
}

// NormalizeExport converts e. A null, missing or zero time is
// ErrMissingTimestamp. Zero values elsewhere are kept as present values.
func NormalizeExport(e Export) (activity.Activity, error) {
	if e.Time == nil || *e.Time == 0 || !finite(*e.Time) {
		return activity.Activity{}, ErrMissingTimestamp
	}

	sport, sub, _ := activity.LookupSport(e.Sport)
	s := e.streams()
	duration := resolveDuration(e, s)

	a := activity.Activity{
		Start:        time.Unix(int64(math.Floor(*e.Time)), 0).UTC(),
		Sport:        sport,
		SubSport:     sub,
		ElapsedTime:  duration,
		TimerTime:    duration,
		Distance:     optFloat(e.Distance),
		Calories:     optInt(e.Kcal),
		AvgHeartRate: optInt(e.HRAvg),
		MaxHeartRate: optInt(e.HRMax),
		AvgCadence:   optInt(e.Cadence),
		AvgPower:     optInt(e.Power),
		Samples:      samples(s),
	}
	a.SortSamples()
	return a, nil
}

// resolveDuration applies duration > elapsedTime > max(Duration series) > 0.
// Values that are null, zero, negative or non-finite fall through.
func resolveDuration(e Export, s Streams) float64 {
	for _, v := range []*float64{e.Duration, e.ElapsedTime} {
		if usable(v) {
			return *v
		}
	}

	best := 0.0
	for _, v := range s.Duration {
		if v != nil && finite(*v) && *v > best {
			best = *v
		}
	}
	return best
}

func samples(s Streams) []activity.Sample {
	n := s.Len()
	if n == 0 {
		return nil
	}

	power := s.Power()
	out := make([]activity.Sample, n)
	for i := range out {
		sm := activity.Sample{
			Offset:      int64(i),
			HeartRate:   optInt(at(s.HeartRate, i)),
			Cadence:     optInt(at(s.Cadence, i)),
			Power:       optInt(at(power, i)),
			Temperature: optInt(at(s.Temperature, i)),
		}
		if d := at(s.Duration, i); d != nil && finite(*d) {
			sm.Offset = int64(math.Floor(*d))
		}
		if i < len(s.Geohashes) && s.Geohashes[i] != nil {
			if hash := strings.TrimSpace(*s.Geohashes[i]); hash != "" {
				lat, lon := geohash.Decode(hash)
				sm.Latitude = activity.Some(lat)
				sm.Longitude = activity.Some(lon)
			}
		}
		out[i] = sm
	}
	return out
}

func at(series []*float64, i int) *float64 {
	if i >= len(series) {
		return nil
	}
	return series[i]
}

func usable(v *float64) bool {
	return v != nil && finite(*v) && *v > 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func optFloat(v *float64) activity.Optional[float64] {
	if v == nil || !finite(*v) {
		return activity.None[float64]()
	}
	return activity.Some(*v)
}

// optInt truncates toward zero.
func optInt(v *float64) activity.Optional[int64] {
	if v == nil || !finite(*v) || math.Abs(*v) >= math.MaxInt64 {
		return activity.None[int64]()
	}
	return activity.Some(int64(*v))
}
