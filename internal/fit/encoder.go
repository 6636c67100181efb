package fit

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"slices"
)

const (
	// HeaderSize is the size of the header this package writes.
	HeaderSize = 14
	// ProtocolVersion is protocol 2.0.
	ProtocolVersion = 0x20
	// ProfileVersion is profile 20.56.
	ProfileVersion = 2056
	// MaxLocal is the number of local message slots.
	MaxLocal = 16

	magic = ".FIT"
)

// MesgNum is a global message number.
type MesgNum uint16

// FieldDef is one (field number, size, base type) triple of a definition.
type FieldDef struct {
	Num  byte
	Size byte
	Type BaseType
}

// Scalar returns a FieldDef sized for a single element of t.
func Scalar(num byte, t BaseType) FieldDef {
	return FieldDef{Num: num, Size: byte(t.Size()), Type: t}
}

// Definition binds a local slot to a global message layout.
type Definition struct {
	Local  byte
	Global MesgNum
	Fields []FieldDef
}

func (d Definition) equal(o Definition) bool {
	return d.Local == o.Local && d.Global == o.Global && slices.Equal(d.Fields, o.Fields)
}

func (d Definition) dataSize() int {
	n := 0
	for _, f := range d.Fields {
		n += int(f.Size)
	}
	return n
}

// Encoder builds a FIT file in memory.
//
// Definitions are tracked per local slot: a data record can only be
// written for a slot whose definition was emitted, and a slot is defined
// at most once per file.
type Encoder struct {
	stream  []byte
	defined [MaxLocal]*Definition
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Define emits the definition record for def.Local. Repeating an identical
// definition is a no-op; a different layout for a defined slot is
// ErrSlotRedefined.
func (e *Encoder) Define(def Definition) error {
	if def.Local >= MaxLocal {
		return fmt.Errorf("define local %d: %w", def.Local, ErrLocalRange)
	}
	if prev := e.defined[def.Local]; prev != nil {
		if prev.equal(def) {
			return nil
		}
		return fmt.Errorf("define local %d (global %d): %w", def.Local, def.Global, ErrSlotRedefined)
	}
	if len(def.Fields) > math.MaxUint8 {
		return fmt.Errorf("define local %d: %d fields: %w", def.Local, len(def.Fields), ErrFieldCount)
	}
	for _, f := range def.Fields {
		if f.Size == 0 {
			return fmt.Errorf("define local %d: field %d has zero size: %w", def.Local, f.Num, ErrValueRange)
		}
	}

	e.stream = append(e.stream, 0x40|def.Local, 0x00, 0x00)
	e.stream = binary.LittleEndian.AppendUint16(e.stream, uint16(def.Global))
	e.stream = append(e.stream, byte(len(def.Fields)))
	for _, f := range def.Fields {
		e.stream = append(e.stream, f.Num, f.Size, byte(f.Type))
	}

	stored := Definition{Local: def.Local, Global: def.Global, Fields: slices.Clone(def.Fields)}
	e.defined[def.Local] = &stored
	return nil
}

// Defined reports whether a definition has been emitted for local.
func (e *Encoder) Defined(local byte) bool {
	return local < MaxLocal && e.defined[local] != nil
}

// WriteData emits one data record for local. values must match the
// definition's fields in order; use Invalid for absent values.
// Nothing is appended if any value fails to encode.
func (e *Encoder) WriteData(local byte, values ...Value) error {
	if local >= MaxLocal {
		return fmt.Errorf("write local %d: %w", local, ErrLocalRange)
	}
	def := e.defined[local]
	if def == nil {
		return fmt.Errorf("write local %d: %w", local, ErrSlotUndefined)
	}
	if len(values) != len(def.Fields) {
		return fmt.Errorf("write local %d: got %d values, want %d: %w",
			local, len(values), len(def.Fields), ErrFieldCount)
	}

	rec := make([]byte, 0, 1+def.dataSize())
	rec = append(rec, local&0x0F)
	for i, f := range def.Fields {
		var err error
		rec, err = appendValue(rec, f, values[i])
		if err != nil {
			return fmt.Errorf("write local %d (global %d): %w", local, def.Global, err)
		}
	}
	e.stream = append(e.stream, rec...)
	return nil
}

// Len returns the size of the record stream written so far.
func (e *Encoder) Len() int { return len(e.stream) }

// Bytes returns the complete file: header, record stream and trailing CRC.
func (e *Encoder) Bytes() ([]byte, error) {
	if uint64(len(e.stream)) > math.MaxUint32 {
		return nil, ErrTooLarge
	}

	out := make([]byte, 0, HeaderSize+len(e.stream)+2)
	out = appendHeader(out, uint32(len(e.stream)))
	out = append(out, e.stream...)
	// The header ends in its own CRC, so the CRC of the stream alone equals
	// the CRC of header plus stream.
	out = binary.LittleEndian.AppendUint16(out, CRC(e.stream))
	return out, nil
}

// WriteTo writes the complete file to w.
func (e *Encoder) WriteTo(w io.Writer) (int64, error) {
	b, err := e.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

func appendHeader(dst []byte, dataSize uint32) []byte {
	start := len(dst)
	dst = append(dst, HeaderSize, ProtocolVersion)
	dst = binary.LittleEndian.AppendUint16(dst, ProfileVersion)
	dst = binary.LittleEndian.AppendUint32(dst, dataSize)
	dst = append(dst, magic...)
	return binary.LittleEndian.AppendUint16(dst, CRC(dst[start:]))
}
