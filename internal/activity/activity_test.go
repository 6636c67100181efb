package activity

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptional(t *testing.T) {
	zero := Some[int64](0)
	v, ok := zero.Get()
	assert.True(t, ok)
	assert.Equal(t, int64(0), v)
	assert.True(t, zero.Present())

	none := None[int64]()
	assert.False(t, none.Present())
	assert.Equal(t, int64(7), none.Or(7))
	assert.Equal(t, int64(0), zero.Or(7))

	var unset Optional[float64]
	assert.False(t, unset.Present())
}

func TestLookupSport(t *testing.T) {
	tests := []struct {
		name  string
		sport Sport
		sub   SubSport
		known bool
	}{
		{"Running", SportRunning, SubSportGeneric, true},
		{"Indoor cycling", SportCycling, SubSportIndoorCycling, true},
		{"Strength training", SportFitnessEquipment, SubSportStrengthTraining, true},
		{"Flexibility training", SportFitnessEquipment, SubSportFlexibility, true},
		{"Yoga", SportFitnessEquipment, SubSportYoga, true},
		{"Diving", SportDiving, SubSportGeneric, true},
		{"  running ", SportRunning, SubSportGeneric, true},
		{"Underwater basket weaving", SportGeneric, SubSportGeneric, false},
		{"", SportGeneric, SubSportGeneric, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sport, sub, known := LookupSport(tt.name)
			assert.Equal(t, tt.sport, sport)
			assert.Equal(t, tt.sub, sub)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestSortSamplesIsStable(t *testing.T) {
	a := Activity{Samples: []Sample{
		{Offset: 5, HeartRate: Some[int64](1)},
		{Offset: 1},
		{Offset: 5, HeartRate: Some[int64](2)},
		{Offset: 0},
	}}
	a.SortSamples()

	var offsets []int64
	for _, s := range a.Samples {
		offsets = append(offsets, s.Offset)
	}
	assert.Equal(t, []int64{0, 1, 5, 5}, offsets)
	assert.Equal(t, int64(1), a.Samples[2].HeartRate.Or(0))
	assert.Equal(t, int64(2), a.Samples[3].HeartRate.Or(0))
}

func TestChannels(t *testing.T) {
	a := Activity{Samples: []Sample{
		{Offset: 0, Power: Some[int64](0)},
		{Offset: 1, Latitude: Some(1.0)},
	}}
	c := a.Channels()
	assert.True(t, c.Power, "present zero counts")
	assert.False(t, c.Position, "latitude alone is not a position")
	assert.False(t, c.HeartRate)
}

func TestEnd(t *testing.T) {
	start := time.Unix(1700000000, 0).UTC()
	a := Activity{Start: start, ElapsedTime: 1800.9}
	assert.Equal(t, start.Add(1800*time.Second), a.End())

	a.ElapsedTime = 1e11
	assert.Equal(t, time.Unix(1700000000+1e11, 0).UTC(), a.End())

	a.ElapsedTime = 1e30
	assert.True(t, a.End().After(start), "clamped, not wrapped")

	for _, v := range []float64{0, -5, math.NaN()} {
		a.ElapsedTime = v
		assert.Equal(t, start, a.End())
	}
}
