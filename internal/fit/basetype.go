package fit

import "fmt"

// BaseType identifies the wire encoding of a field.
// Bit 7 marks multi-byte types that honour the architecture byte.
type BaseType byte

const (
	Enum    BaseType = 0x00
	Sint8   BaseType = 0x01
	Uint8   BaseType = 0x02
	Sint16  BaseType = 0x83
	Uint16  BaseType = 0x84
	Sint32  BaseType = 0x85
	Uint32  BaseType = 0x86
	String  BaseType = 0x07
	Float32 BaseType = 0x88
	Float64 BaseType = 0x89
	Uint8z  BaseType = 0x0A
	Uint16z BaseType = 0x8B
	Uint32z BaseType = 0x8C
	Byte    BaseType = 0x0D
	Sint64  BaseType = 0x8E
	Uint64  BaseType = 0x8F
	Uint64z BaseType = 0x90
)

type typeInfo struct {
	name   string
	size   int
	signed bool
	float  bool
	// zinvalid types use all-zero bytes as the invalid pattern.
	zinvalid bool
}

// Indexed by the low five bits of the base type byte.
var typeTable = [...]typeInfo{
	0:  {name: "enum", size: 1},
	1:  {name: "sint8", size: 1, signed: true},
	2:  {name: "uint8", size: 1},
	3:  {name: "sint16", size: 2, signed: true},
	4:  {name: "uint16", size: 2},
	5:  {name: "sint32", size: 4, signed: true},
	6:  {name: "uint32", size: 4},
	7:  {name: "string", size: 1, zinvalid: true},
	8:  {name: "float32", size: 4, float: true},
	9:  {name: "float64", size: 8, float: true},
	10: {name: "uint8z", size: 1, zinvalid: true},
	11: {name: "uint16z", size: 2, zinvalid: true},
	12: {name: "uint32z", size: 4, zinvalid: true},
	13: {name: "byte", size: 1},
	14: {name: "sint64", size: 8, signed: true},
	15: {name: "uint64", size: 8},
	16: {name: "uint64z", size: 8, zinvalid: true},
}

var canonicalTypes = [...]BaseType{
	Enum, Sint8, Uint8, Sint16, Uint16, Sint32, Uint32, String, Float32,
	Float64, Uint8z, Uint16z, Uint32z, Byte, Sint64, Uint64, Uint64z,
}

func (t BaseType) num() int { return int(t & 0x1F) }

// Known reports whether t is one of the defined base types.
func (t BaseType) Known() bool { return t.num() < len(typeTable) }

// Canonical returns t with the endian-ability bit set as the profile
// defines it. Some writers omit that bit; readers should not care.
func (t BaseType) Canonical() BaseType {
	if !t.Known() {
		return t
	}
	return canonicalTypes[t.num()]
}

// Size returns the width in bytes of one element of t.
// Strings report 1; their field size is the declared byte length.
func (t BaseType) Size() int {
	if !t.Known() {
		return 1
	}
	return typeTable[t.num()].size
}

func (t BaseType) String() string {
	if !t.Known() {
		return fmt.Sprintf("basetype(0x%02x)", byte(t))
	}
	return typeTable[t.num()].name
}

func (t BaseType) info() typeInfo {
	if !t.Known() {
		return typeInfo{name: "unknown", size: 1}
	}
	return typeTable[t.num()]
}

// intRange returns the representable range for an integer base type.
func (t BaseType) intRange() (lo, hi int64) {
	info := t.info()
	bits := uint(info.size * 8)
	if info.signed {
		if bits == 64 {
			return -1 << 63, 1<<63 - 1
		}
		return -(1 << (bits - 1)), 1<<(bits-1) - 1
	}
	if bits == 64 {
		return 0, 1<<63 - 1
	}
	return 0, 1<<bits - 1
}

// Fits reports whether v can be stored in a field of type t.
func (t BaseType) Fits(v int64) bool {
	info := t.info()
	if info.float || t.Canonical() == String {
		return false
	}
	lo, hi := t.intRange()
	return v >= lo && v <= hi
}

// invalidBytes appends the invalid pattern for a field of the given size.
func (t BaseType) appendInvalid(dst []byte, size int) []byte {
	info := t.info()
	switch {
	case info.zinvalid:
		for i := 0; i < size; i++ {
			dst = append(dst, 0x00)
		}
	case info.signed && !info.float:
		// Little-endian maximum positive value: FF .. FF 7F per element.
		for i := 0; i < size; i++ {
			if (i+1)%info.size == 0 {
				dst = append(dst, 0x7F)
			} else {
				dst = append(dst, 0xFF)
			}
		}
	default:
		for i := 0; i < size; i++ {
			dst = append(dst, 0xFF)
		}
	}
	return dst
}
