package fit

import (
	"fmt"
	"math"
)

// Global message numbers handled by this package.
const (
	MesgFileID   MesgNum = 0
	MesgSession  MesgNum = 18
	MesgRecord   MesgNum = 20
	MesgEvent    MesgNum = 21
	MesgActivity MesgNum = 34
)

// Names of common global messages, for display. The writers only use the
// constants above.
var mesgNames = map[MesgNum]string{
	MesgFileID:   "file_id",
	2:            "device_settings",
	3:            "user_profile",
	12:           "sport",
	MesgSession:  "session",
	19:           "lap",
	MesgRecord:   "record",
	MesgEvent:    "event",
	23:           "device_info",
	MesgActivity: "activity",
	49:           "file_creator",
	55:           "monitoring",
	78:           "hrv",
	103:          "monitoring_info",
	206:          "field_description",
	207:          "developer_data_id",
}

func (m MesgNum) String() string {
	if name, ok := mesgNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mesg(%d)", uint16(m))
}

// Local slots used by the typed writers.
const (
	LocalFileID byte = iota
	LocalEvent
	LocalRecord
	LocalSession
	LocalActivity
)

// FieldTimestamp is the timestamp field number shared by all messages.
const FieldTimestamp byte = 253

// Profile enum values.
const (
	FileTypeActivity uint8 = 4

	EventTimer         uint8 = 0
	EventTypeStart     uint8 = 0
	EventTypeStopAll   uint8 = 4
	ActivityTypeManual uint8 = 0

	ManufacturerDevelopment uint16 = 255
)

// Session field numbers.
const (
	SessionStartTime     byte = 2
	SessionSport         byte = 5
	SessionSubSport      byte = 6
	SessionTotalElapsed  byte = 7
	SessionTotalTimer    byte = 8
	SessionTotalDistance byte = 9
	SessionTotalCalories byte = 11
	SessionAvgHeartRate  byte = 16
	SessionMaxHeartRate  byte = 17
	SessionAvgCadence    byte = 18
	SessionAvgPower      byte = 20
)

// Record field numbers.
const (
	RecordPositionLat byte = 0
	RecordPositionLon byte = 1
	RecordHeartRate   byte = 3
	RecordCadence     byte = 4
	RecordPower       byte = 7
	RecordTemperature byte = 13
)

// FileID is the file_id message. TimeCreated is a FIT timestamp.
type FileID struct {
	Type         uint8
	Manufacturer uint16
	Product      uint16
	Serial       uint32
	TimeCreated  uint32
}

var fileIDDef = Definition{
	Local:  LocalFileID,
	Global: MesgFileID,
	Fields: []FieldDef{
		Scalar(0, Enum),
		Scalar(1, Uint16),
		Scalar(2, Uint16),
		Scalar(3, Uint32),
		Scalar(4, Uint32),
	},
}

// WriteFileID defines slot 0 if needed and writes m.
func (e *Encoder) WriteFileID(m FileID) error {
	if err := e.Define(fileIDDef); err != nil {
		return err
	}
	return e.WriteData(LocalFileID,
		Int(int64(m.Type)),
		Int(int64(m.Manufacturer)),
		Int(int64(m.Product)),
		Int(int64(m.Serial)),
		Int(int64(m.TimeCreated)),
	)
}

// Event is the event message.
type Event struct {
	Timestamp uint32
	Event     uint8
	EventType uint8
}

var eventDef = Definition{
	Local:  LocalEvent,
	Global: MesgEvent,
	Fields: []FieldDef{
		Scalar(FieldTimestamp, Uint32),
		Scalar(0, Enum),
		Scalar(1, Enum),
	},
}

// WriteEvent defines slot 1 if needed and writes m.
func (e *Encoder) WriteEvent(m Event) error {
	if err := e.Define(eventDef); err != nil {
		return err
	}
	return e.WriteData(LocalEvent,
		Int(int64(m.Timestamp)),
		Int(int64(m.Event)),
		Int(int64(m.EventType)),
	)
}

// RecordLayout selects which optional channels the record definition
// carries. Timestamp is always present.
type RecordLayout struct {
	Position    bool
	HeartRate   bool
	Cadence     bool
	Power       bool
	Temperature bool
}

// Definition returns the record definition for l.
func (l RecordLayout) Definition() Definition {
	fields := []FieldDef{Scalar(FieldTimestamp, Uint32)}
	if l.Position {
		fields = append(fields, Scalar(RecordPositionLat, Sint32), Scalar(RecordPositionLon, Sint32))
	}
	if l.HeartRate {
		fields = append(fields, Scalar(RecordHeartRate, Uint8))
	}
	if l.Cadence {
		fields = append(fields, Scalar(RecordCadence, Uint8))
	}
	if l.Power {
		fields = append(fields, Scalar(RecordPower, Uint16))
	}
	if l.Temperature {
		fields = append(fields, Scalar(RecordTemperature, Sint8))
	}
	return Definition{Local: LocalRecord, Global: MesgRecord, Fields: fields}
}

// Record is one record message. Channels not in the layout are ignored.
// Lat and Lon are in semicircles.
type Record struct {
	Timestamp   uint32
	Lat, Lon    Value
	HeartRate   Value
	Cadence     Value
	Power       Value
	Temperature Value
}

// WriteRecord defines slot 2 with l if needed and writes r.
func (e *Encoder) WriteRecord(l RecordLayout, r Record) error {
	if err := e.Define(l.Definition()); err != nil {
		return err
	}
	values := []Value{Int(int64(r.Timestamp))}
	if l.Position {
		values = append(values, r.Lat, r.Lon)
	}
	if l.HeartRate {
		values = append(values, r.HeartRate)
	}
	if l.Cadence {
		values = append(values, r.Cadence)
	}
	if l.Power {
		values = append(values, r.Power)
	}
	if l.Temperature {
		values = append(values, r.Temperature)
	}
	return e.WriteData(LocalRecord, values...)
}

// Session is the session message. Times are FIT timestamps; elapsed and
// timer time are milliseconds, distance is centimetres.
type Session struct {
	Timestamp        uint32
	StartTime        uint32
	TotalElapsedTime Value
	TotalTimerTime   Value
	Sport            uint8
	SubSport         uint8
	TotalDistance    Value
	TotalCalories    Value
	AvgHeartRate     Value
	MaxHeartRate     Value
	AvgCadence       Value
	AvgPower         Value
}

var sessionDef = Definition{
	Local:  LocalSession,
	Global: MesgSession,
	Fields: []FieldDef{
		Scalar(FieldTimestamp, Uint32),
		Scalar(SessionStartTime, Uint32),
		Scalar(SessionTotalElapsed, Uint32),
		Scalar(SessionTotalTimer, Uint32),
		Scalar(SessionSport, Enum),
		Scalar(SessionSubSport, Enum),
		Scalar(SessionTotalDistance, Uint32),
		Scalar(SessionTotalCalories, Uint16),
		Scalar(SessionAvgHeartRate, Uint8),
		Scalar(SessionMaxHeartRate, Uint8),
		Scalar(SessionAvgCadence, Uint8),
		Scalar(SessionAvgPower, Uint16),
	},
}

// WriteSession defines slot 3 if needed and writes m.
func (e *Encoder) WriteSession(m Session) error {
	if err := e.Define(sessionDef); err != nil {
		return err
	}
	return e.WriteData(LocalSession,
		Int(int64(m.Timestamp)),
		Int(int64(m.StartTime)),
		m.TotalElapsedTime,
		m.TotalTimerTime,
		Int(int64(m.Sport)),
		Int(int64(m.SubSport)),
		m.TotalDistance,
		m.TotalCalories,
		m.AvgHeartRate,
		m.MaxHeartRate,
		m.AvgCadence,
		m.AvgPower,
	)
}

// ActivitySummary is the activity message.
type ActivitySummary struct {
	Timestamp      uint32
	TotalTimerTime Value
	NumSessions    uint16
	Type           uint8
}

var activityDef = Definition{
	Local:  LocalActivity,
	Global: MesgActivity,
	Fields: []FieldDef{
		Scalar(FieldTimestamp, Uint32),
		Scalar(0, Uint32),
		Scalar(1, Uint16),
		Scalar(2, Enum),
	},
}

// WriteActivity defines slot 4 if needed and writes m.
func (e *Encoder) WriteActivity(m ActivitySummary) error {
	if err := e.Define(activityDef); err != nil {
		return err
	}
	return e.WriteData(LocalActivity,
		Int(int64(m.Timestamp)),
		m.TotalTimerTime,
		Int(int64(m.NumSessions)),
		Int(int64(m.Type)),
	)
}

// Semicircles converts degrees to semicircles, truncating toward zero and
// clamping to the int32 range.
func Semicircles(deg float64) int32 {
	v := math.Trunc(deg * (1 << 31) / 180)
	switch {
	case math.IsNaN(v):
		return 0
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}

// Degrees converts semicircles back to degrees.
func Degrees(sc int32) float64 {
	return float64(sc) * 180 / (1 << 31)
}

// Scaled multiplies v by scale, truncates, and returns it if it fits t.
// Negative, non-finite and out-of-range results are Invalid.
func Scaled(t BaseType, v, scale float64) Value {
	x := math.Trunc(v * scale)
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return Invalid
	}
	if x > math.MaxInt64/2 {
		return Invalid
	}
	return Checked(t, int64(x))
}
