package fit

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyFileLayout(t *testing.T) {
	b, err := NewEncoder().Bytes()
	require.NoError(t, err)
	require.Len(t, b, HeaderSize+2)

	assert.Equal(t, byte(14), b[0])
	assert.Equal(t, byte(0x20), b[1])
	assert.Equal(t, uint16(2056), binary.LittleEndian.Uint16(b[2:4]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(b[4:8]))
	assert.Equal(t, ".FIT", string(b[8:12]))
	assert.Equal(t, CRC(b[:12]), binary.LittleEndian.Uint16(b[12:14]))
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(b[14:16]))
}

func TestDefinitionBytes(t *testing.T) {
	e := NewEncoder()
	require.NoError(t, e.Define(eventDef))

	want := []byte{
		0x41, 0x00, 0x00, 21, 0x00, 3,
		253, 4, 0x86,
		0, 1, 0x00,
		1, 1, 0x00,
	}
	assert.Equal(t, want, e.stream)
}

func TestDefineIdenticalIsNoop(t *testing.T) {
	e := NewEncoder()
	require.NoError(t, e.Define(fileIDDef))
	n := e.Len()

	require.NoError(t, e.Define(fileIDDef))
	assert.Equal(t, n, e.Len())
	assert.True(t, e.Defined(LocalFileID))
	assert.False(t, e.Defined(LocalEvent))
}

func TestDefineConflict(t *testing.T) {
	e := NewEncoder()
	require.NoError(t, e.Define(RecordLayout{HeartRate: true}.Definition()))

	err := e.Define(RecordLayout{HeartRate: true, Power: true}.Definition())
	assert.ErrorIs(t, err, ErrSlotRedefined)
}

func TestDefineLocalRange(t *testing.T) {
	err := NewEncoder().Define(Definition{Local: 16, Global: MesgRecord})
	assert.ErrorIs(t, err, ErrLocalRange)
}

func TestWriteDataErrors(t *testing.T) {
	e := NewEncoder()
	err := e.WriteData(LocalEvent, Int(1), Int(0), Int(0))
	assert.ErrorIs(t, err, ErrSlotUndefined)

	require.NoError(t, e.Define(eventDef))
	n := e.Len()

	err = e.WriteData(LocalEvent, Int(1))
	assert.ErrorIs(t, err, ErrFieldCount)

	err = e.WriteData(LocalEvent, Int(1), Int(300), Int(0))
	assert.ErrorIs(t, err, ErrValueRange)

	err = e.WriteData(LocalEvent, Str("x"), Int(0), Int(0))
	assert.ErrorIs(t, err, ErrValueType)

	assert.Equal(t, n, e.Len(), "failed writes must not append")
}

func TestInvalidPatterns(t *testing.T) {
	tests := []struct {
		typ  BaseType
		size byte
		want []byte
	}{
		{Enum, 1, []byte{0xFF}},
		{Sint8, 1, []byte{0x7F}},
		{Uint8, 1, []byte{0xFF}},
		{Sint16, 2, []byte{0xFF, 0x7F}},
		{Uint16, 2, []byte{0xFF, 0xFF}},
		{Sint32, 4, []byte{0xFF, 0xFF, 0xFF, 0x7F}},
		{Uint32, 4, []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{String, 1, []byte{0x00}},
		{Float32, 4, []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{Float64, 8, bytes.Repeat([]byte{0xFF}, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			e := NewEncoder()
			def := Definition{Local: 5, Global: 99, Fields: []FieldDef{{Num: 0, Size: tt.size, Type: tt.typ}}}
			require.NoError(t, e.Define(def))
			defLen := e.Len()
			require.NoError(t, e.WriteData(5, Invalid))

			rec := e.stream[defLen:]
			assert.Equal(t, byte(5), rec[0])
			assert.Equal(t, tt.want, rec[1:])

			v := decodeValue(tt.typ, rec[1:], binary.LittleEndian)
			assert.False(t, v.Valid())
		})
	}
}

func TestPresentValuesLittleEndian(t *testing.T) {
	e := NewEncoder()
	def := Definition{Local: 0, Global: 1, Fields: []FieldDef{
		Scalar(0, Uint16),
		Scalar(1, Sint32),
		Scalar(2, Float32),
		{Num: 3, Size: 4, Type: String},
	}}
	require.NoError(t, e.Define(def))
	defLen := e.Len()
	require.NoError(t, e.WriteData(0, Int(0x1234), Int(-2), Float(1.5), Str("abcdef")))

	rec := e.stream[defLen+1:]
	assert.Equal(t, []byte{0x34, 0x12}, rec[0:2])
	assert.Equal(t, []byte{0xFE, 0xFF, 0xFF, 0xFF}, rec[2:6])
	assert.Equal(t, math.Float32bits(1.5), binary.LittleEndian.Uint32(rec[6:10]))
	assert.Equal(t, []byte{'a', 'b', 'c', 0}, rec[10:14])
}

func TestSemicircles(t *testing.T) {
	assert.Equal(t, int32(0), Semicircles(0))
	assert.Equal(t, int32(11930464), Semicircles(1))
	assert.Equal(t, int32(-11930464), Semicircles(-1))
	assert.Equal(t, int32(math.MaxInt32), Semicircles(180))
	assert.Equal(t, int32(math.MinInt32), Semicircles(-180))
	assert.Equal(t, int32(math.MaxInt32), Semicircles(1000))
	assert.Equal(t, int32(0), Semicircles(math.NaN()))
	assert.InDelta(t, 42.605, Degrees(Semicircles(42.605)), 1e-6)
}

func TestScaled(t *testing.T) {
	v, ok := Scaled(Uint32, 1.5, 1000).Int()
	require.True(t, ok)
	assert.Equal(t, int64(1500), v)

	v, ok = Scaled(Uint32, 12.5, 100).Int()
	require.True(t, ok)
	assert.Equal(t, int64(1250), v)

	assert.False(t, Scaled(Uint32, -1, 1000).Valid())
	assert.False(t, Scaled(Uint32, math.Inf(1), 1000).Valid())
	assert.False(t, Scaled(Uint32, 5e6, 1000).Valid(), "exceeds uint32")
	assert.True(t, Scaled(Uint32, 0, 1000).Valid(), "zero stays present")
}

func TestChecked(t *testing.T) {
	assert.True(t, Checked(Uint8, 255).Valid())
	assert.False(t, Checked(Uint8, 256).Valid())
	assert.False(t, Checked(Uint8, -1).Valid())
	assert.True(t, Checked(Sint8, -128).Valid())
	assert.False(t, Checked(Sint8, 128).Valid())
	assert.False(t, Checked(Float32, 1).Valid())
}

func TestTimestamp(t *testing.T) {
	ts, err := Timestamp(Epoch)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), ts)

	ts, err = Timestamp(time.Date(2024, 1, 1, 0, 0, 0, 999_000_000, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, uint32(1704067200-EpochOffset), ts)

	_, err = Timestamp(Epoch.Add(-time.Second))
	assert.ErrorIs(t, err, ErrTimeRange)

	assert.True(t, Time(0).Equal(time.Date(1989, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestMesgNumString(t *testing.T) {
	assert.Equal(t, "session", MesgSession.String())
	assert.Equal(t, "device_info", MesgNum(23).String())
	assert.Equal(t, "mesg(65280)", MesgNum(0xFF00).String())
}
