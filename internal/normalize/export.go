package normalize

// Export is the vendor JSON activity export. Pointer fields distinguish
// null or missing values from zero.
type Export struct {
	Time        *float64 `json:"time"`
	Sport       string   `json:"sport"`
	Duration    *float64 `json:"duration"`
	ElapsedTime *float64 `json:"elapsedTime"`
	Distance    *float64 `json:"distance"`
	Kcal        *float64 `json:"kcal"`
	HRAvg       *float64 `json:"hrAvg"`
	HRMax       *float64 `json:"hrMax"`
	Cadence     *float64 `json:"cadence"`
	Power       *float64 `json:"power"`
	// Only the first element is used.
	Stream []*Streams `json:"stream"`
}

// Streams maps channel names to parallel per-sample series.
type Streams struct {
	HeartRate       []*float64 `json:"HeartRate"`
	Cadence         []*float64 `json:"Cadence"`
	PowerOriginal   []*float64 `json:"PowerOriginal"`
	PowerCalculated []*float64 `json:"PowerCalculated"`
	Temperature     []*float64 `json:"Temperature"`
	Geohashes       []*string  `json:"Geohashes"`
	Duration        []*float64 `json:"Duration"`
}

func (e Export) streams() Streams {
	if len(e.Stream) == 0 || e.Stream[0] == nil {
		return Streams{}
	}
	return *e.Stream[0]
}

// Power returns PowerOriginal, falling back to PowerCalculated when the
// original series is empty.
func (s Streams) Power() []*float64 {
	if len(s.PowerOriginal) > 0 {
		return s.PowerOriginal
	}
	return s.PowerCalculated
}

// Len returns the length of the longest channel.
func (s Streams) Len() int {
	n := max(len(s.HeartRate), len(s.Cadence), len(s.Power()), len(s.Temperature), len(s.Duration))
	return max(n, len(s.Geohashes))
}
