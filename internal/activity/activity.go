// Package activity defines the canonical, source-independent shape of a
// recorded workout.
package activity

import (
	"math"
	"sort"
	"time"
)

// Sample is one time-series point. Offset is whole seconds from the start.
type Sample struct {
	Offset      int64
	HeartRate   Optional[int64]
	Cadence     Optional[int64]
	Power       Optional[int64]
	Temperature Optional[int64]
	Latitude    Optional[float64]
	Longitude   Optional[float64]
}

// HasPosition reports whether both coordinates are present.
func (s Sample) HasPosition() bool {
	return s.Latitude.Present() && s.Longitude.Present()
}

// Activity is a normalized workout. Start is truncated to whole seconds.
// Times are in seconds and Distance in metres.
type Activity struct {
	Start        time.Time
	Sport        Sport
	SubSport     SubSport
	ElapsedTime  float64
	TimerTime    float64
	Distance     Optional[float64]
	Calories     Optional[int64]
	AvgHeartRate Optional[int64]
	MaxHeartRate Optional[int64]
	AvgCadence   Optional[int64]
	AvgPower     Optional[int64]
	Samples      []Sample
}

// maxElapsedSeconds keeps End within int64 Unix seconds.
const maxElapsedSeconds = 1 << 53

// End returns Start plus the elapsed time, truncated to seconds. The sum is
// taken in Unix seconds, so elapsed times longer than a time.Duration
// still give an exact end. Non-positive elapsed times return Start.
func (a Activity) End() time.Time {
	secs := math.Floor(a.ElapsedTime)
	if !(secs > 0) {
		return a.Start
	}
	secs = math.Min(secs, maxElapsedSeconds)
	return time.Unix(a.Start.Unix()+int64(secs), int64(a.Start.Nanosecond())).In(a.Start.Location())
}

// SortSamples orders samples by offset, keeping input order for ties.
func (a *Activity) SortSamples() {
	sort.SliceStable(a.Samples, func(i, j int) bool {
		return a.Samples[i].Offset < a.Samples[j].Offset
	})
}

// Channels reports which sample channels have at least one present value.
type Channels struct {
	Position    bool
	HeartRate   bool
	Cadence     bool
	Power       bool
	Temperature bool
}

// Channels scans the samples once.
func (a Activity) Channels() Channels {
	var c Channels
	for _, s := range a.Samples {
		c.Position = c.Position || s.HasPosition()
		c.HeartRate = c.HeartRate || s.HeartRate.Present()
		c.Cadence = c.Cadence || s.Cadence.Present()
		c.Power = c.Power || s.Power.Present()
		c.Temperature = c.Temperature || s.Temperature.Present()
	}
	return c
}
