package convert

import (
	"fmt"
	"math"

	"github.com/roach88/fitsweep/internal/activity"
	"github.com/roach88/fitsweep/internal/fit"
)

// Device is the identity written to the file_id message.
type Device struct {
	Manufacturer uint16 `koanf:"manufacturer"`
	Product      uint16 `koanf:"product"`
	Serial       uint32 `koanf:"serial"`
}

// DefaultDevice matches what importers expect from a generic Garmin
// activity.
var DefaultDevice = Device{Manufacturer: 1, Product: 1, Serial: 12345}

// Encode writes a as a FIT activity file: file_id, timer start event, one
// record per sample, timer stop event, session and activity. Values that
// do not fit their field are written as absent.
func Encode(a activity.Activity, dev Device) ([]byte, error) {
	e, err := encoder(a, dev)
	if err != nil {
		return nil, err
	}
	return e.Bytes()
}

// encoder buffers the messages of a without framing them.
func encoder(a activity.Activity, dev Device) (*fit.Encoder, error) {
	if a.ElapsedTime > math.MaxUint32 {
		return nil, fmt.Errorf("elapsed time %.0fs: %w", a.ElapsedTime, fit.ErrTimeRange)
	}
	start, err := fit.Timestamp(a.Start)
	if err != nil {
		return nil, fmt.Errorf("start time: %w", err)
	}
	end, err := fit.Timestamp(a.End())
	if err != nil {
		return nil, fmt.Errorf("end time: %w", err)
	}

	e := fit.NewEncoder()
	if err := e.WriteFileID(fit.FileID{
		Type:         fit.FileTypeActivity,
		Manufacturer: dev.Manufacturer,
		Product:      dev.Product,
		Serial:       dev.Serial,
		TimeCreated:  start,
	}); err != nil {
		return nil, err
	}
	if err := e.WriteEvent(fit.Event{Timestamp: start, Event: fit.EventTimer, EventType: fit.EventTypeStart}); err != nil {
		return nil, err
	}

	if len(a.Samples) > 0 {
		ch := a.Channels()
		layout := fit.RecordLayout{
			Position:    ch.Position,
			HeartRate:   ch.HeartRate,
			Cadence:     ch.Cadence,
			Power:       ch.Power,
			Temperature: ch.Temperature,
		}
		for i, s := range a.Samples {
			ts := int64(start) + s.Offset
			if !fit.Uint32.Fits(ts) {
				return nil, fmt.Errorf("sample %d offset %d: %w", i, s.Offset, fit.ErrTimeRange)
			}
			if err := e.WriteRecord(layout, record(uint32(ts), s)); err != nil {
				return nil, fmt.Errorf("sample %d: %w", i, err)
			}
		}
	}

	if err := e.WriteEvent(fit.Event{Timestamp: end, Event: fit.EventTimer, EventType: fit.EventTypeStopAll}); err != nil {
		return nil, err
	}

	total := fit.Scaled(fit.Uint32, a.ElapsedTime, 1000)
	timer := fit.Scaled(fit.Uint32, a.TimerTime, 1000)
	distance := fit.Invalid
	if d, ok := a.Distance.Get(); ok {
		distance = fit.Scaled(fit.Uint32, d, 100)
	}

	if err := e.WriteSession(fit.Session{
		Timestamp:        end,
		StartTime:        start,
		TotalElapsedTime: total,
		TotalTimerTime:   timer,
		Sport:            uint8(a.Sport),
		SubSport:         uint8(a.SubSport),
		TotalDistance:    distance,
		TotalCalories:    optional(fit.Uint16, a.Calories),
		AvgHeartRate:     optional(fit.Uint8, a.AvgHeartRate),
		MaxHeartRate:     optional(fit.Uint8, a.MaxHeartRate),
		AvgCadence:       optional(fit.Uint8, a.AvgCadence),
		AvgPower:         optional(fit.Uint16, a.AvgPower),
	}); err != nil {
		return nil, err
	}
	if err := e.WriteActivity(fit.ActivitySummary{
		Timestamp:      end,
		TotalTimerTime: timer,
		NumSessions:    1,
		Type:           fit.ActivityTypeManual,
	}); err != nil {
		return nil, err
	}

	return e, nil
}

func record(ts uint32, s activity.Sample) fit.Record {
	r := fit.Record{
		Timestamp:   ts,
		Lat:         fit.Invalid,
		Lon:         fit.Invalid,
		HeartRate:   optional(fit.Uint8, s.HeartRate),
		Cadence:     optional(fit.Uint8, s.Cadence),
		Power:       optional(fit.Uint16, s.Power),
		Temperature: optional(fit.Sint8, s.Temperature),
	}
	if s.HasPosition() {
		lat, _ := s.Latitude.Get()
		lon, _ := s.Longitude.Get()
		r.Lat = fit.Int(int64(fit.Semicircles(lat)))
		r.Lon = fit.Int(int64(fit.Semicircles(lon)))
	}
	return r
}

func optional(t fit.BaseType, o activity.Optional[int64]) fit.Value {
	v, ok := o.Get()
	if !ok {
		return fit.Invalid
	}
	return fit.Checked(t, v)
}
