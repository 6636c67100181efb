package fit

import (
	"encoding/binary"
	"fmt"
	"math"
)

type valueKind uint8

const (
	kindInvalid valueKind = iota
	kindInt
	kindFloat
	kindString
)

// Value is a single field value or the explicit absence of one.
// The zero Value is Invalid.
type Value struct {
	kind valueKind
	i    int64
	f    float64
	s    string
}

// Invalid is the absent value. It encodes as the base type's invalid pattern.
var Invalid Value

// Int returns an integer value.
func Int(v int64) Value { return Value{kind: kindInt, i: v} }

// Float returns a floating point value.
func Float(v float64) Value { return Value{kind: kindFloat, f: v} }

// Str returns a string value.
func Str(v string) Value { return Value{kind: kindString, s: v} }

// Checked returns Int(v) if v fits t, and Invalid otherwise.
func Checked(t BaseType, v int64) Value {
	if !t.Fits(v) {
		return Invalid
	}
	return Int(v)
}

// Valid reports whether v carries a value.
func (v Value) Valid() bool { return v.kind != kindInvalid }

// Int returns the integer value.
func (v Value) Int() (int64, bool) {
	if v.kind != kindInt {
		return 0, false
	}
	return v.i, true
}

// Float returns the value as float64. Integers convert.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case kindFloat:
		return v.f, true
	case kindInt:
		return float64(v.i), true
	}
	return 0, false
}

// Str returns the string value.
func (v Value) Str() (string, bool) {
	if v.kind != kindString {
		return "", false
	}
	return v.s, true
}

func (v Value) String() string {
	switch v.kind {
	case kindInt:
		return fmt.Sprintf("%d", v.i)
	case kindFloat:
		return fmt.Sprintf("%g", v.f)
	case kindString:
		return fmt.Sprintf("%q", v.s)
	}
	return "invalid"
}

// appendValue encodes v as a field of the given definition, little-endian.
func appendValue(dst []byte, fd FieldDef, v Value) ([]byte, error) {
	t := fd.Type.Canonical()
	size := int(fd.Size)

	if !v.Valid() {
		return t.appendInvalid(dst, size), nil
	}

	info := t.info()
	switch {
	case t == String:
		s, ok := v.Str()
		if !ok {
			return dst, fmt.Errorf("field %d: %w: %s into %s", fd.Num, ErrValueType, v, t)
		}
		// Fixed width, always NUL terminated.
		b := []byte(s)
		if len(b) > size-1 {
			b = b[:size-1]
		}
		dst = append(dst, b...)
		for i := len(b); i < size; i++ {
			dst = append(dst, 0)
		}
		return dst, nil

	case info.float:
		f, ok := v.Float()
		if !ok {
			return dst, fmt.Errorf("field %d: %w: %s into %s", fd.Num, ErrValueType, v, t)
		}
		if size != info.size {
			return dst, fmt.Errorf("field %d: %w: size %d for %s", fd.Num, ErrValueType, size, t)
		}
		if info.size == 4 {
			return binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(f))), nil
		}
		return binary.LittleEndian.AppendUint64(dst, math.Float64bits(f)), nil

	default:
		n, ok := v.Int()
		if !ok {
			return dst, fmt.Errorf("field %d: %w: %s into %s", fd.Num, ErrValueType, v, t)
		}
		if size != info.size {
			return dst, fmt.Errorf("field %d: %w: size %d for %s", fd.Num, ErrValueType, size, t)
		}
		if !t.Fits(n) {
			return dst, fmt.Errorf("field %d: %w: %d into %s", fd.Num, ErrValueRange, n, t)
		}
		u := uint64(n)
		for i := 0; i < info.size; i++ {
			dst = append(dst, byte(u>>(8*i)))
		}
		return dst, nil
	}
}

// decodeValue reads a scalar field. Arrays and invalid patterns decode to
// Invalid; the raw bytes remain available on Field.
func decodeValue(t BaseType, raw []byte, order binary.ByteOrder) Value {
	t = t.Canonical()
	if !t.Known() {
		return Invalid
	}
	info := t.info()

	if t == String {
		end := 0
		for end < len(raw) && raw[end] != 0 {
			end++
		}
		if end == 0 {
			return Invalid
		}
		return Str(string(raw[:end]))
	}

	if len(raw) != info.size {
		return Invalid
	}

	var u uint64
	switch info.size {
	case 1:
		u = uint64(raw[0])
	case 2:
		u = uint64(order.Uint16(raw))
	case 4:
		u = uint64(order.Uint32(raw))
	case 8:
		u = order.Uint64(raw)
	}

	if info.float {
		var f float64
		if info.size == 4 {
			f = float64(math.Float32frombits(uint32(u)))
		} else {
			f = math.Float64frombits(u)
		}
		if math.IsNaN(f) {
			return Invalid
		}
		return Float(f)
	}

	bits := uint(info.size * 8)
	switch {
	case info.zinvalid:
		if u == 0 {
			return Invalid
		}
	case info.signed:
		if u == 1<<(bits-1)-1 {
			return Invalid
		}
	default:
		if bits == 64 {
			if u == math.MaxUint64 {
				return Invalid
			}
		} else if u == 1<<bits-1 {
			return Invalid
		}
	}

	if info.signed {
		// Sign-extend.
		shift := 64 - bits
		return Int(int64(u<<shift) >> shift)
	}
	if u > math.MaxInt64 {
		return Invalid
	}
	return Int(int64(u))
}
