package fit

import (
	"encoding/binary"
	"errors"
	"io"
	"time"
)

// Header is the parsed file header.
type Header struct {
	Size     uint8
	Protocol uint8
	Profile  uint16
	DataSize uint32
	// CRC is zero for 12-byte headers and for writers that skip it.
	CRC uint16
}

// Field is one decoded field of a data message.
type Field struct {
	Num  byte
	Type BaseType
	Raw  []byte
	// Value is the scalar value, or Invalid for the invalid pattern and
	// for array fields.
	Value Value
}

// Message is one decoded data message.
type Message struct {
	Local  byte
	Global MesgNum
	Fields []Field
}

// Field returns the field with number num.
func (m Message) Field(num byte) (Field, bool) {
	for _, f := range m.Fields {
		if f.Num == num {
			return f, true
		}
	}
	return Field{}, false
}

// Value returns the decoded value of field num, or Invalid.
func (m Message) Value(num byte) Value {
	f, ok := m.Field(num)
	if !ok {
		return Invalid
	}
	return f.Value
}

// Uint returns field num as a non-negative integer when it is present.
func (m Message) Uint(num byte) (uint64, bool) {
	n, ok := m.Value(num).Int()
	if !ok || n < 0 {
		return 0, false
	}
	return uint64(n), true
}

type localDef struct {
	global  MesgNum
	order   binary.ByteOrder
	fields  []FieldDef
	devSize int
}

// Decoder walks the records of an in-memory FIT file.
type Decoder struct {
	data   []byte
	header Header
	pos    int
	end    int
	crc    Checksum
	defs   [MaxLocal]*localDef
	// lastTimestamp feeds compressed timestamp headers.
	lastTimestamp uint32
	done          bool
}

// NewDecoder parses and validates the header of data.
func NewDecoder(data []byte) (*Decoder, error) {
	if len(data) < 12 {
		return nil, decodeErrf(0, ErrTruncated, "%d bytes, need at least a 12-byte header", len(data))
	}

	h := Header{
		Size:     data[0],
		Protocol: data[1],
		Profile:  binary.LittleEndian.Uint16(data[2:4]),
		DataSize: binary.LittleEndian.Uint32(data[4:8]),
	}
	if h.Size != 12 && h.Size != 14 {
		return nil, decodeErrf(0, ErrHeader, "header size %d", h.Size)
	}
	if string(data[8:12]) != magic {
		return nil, decodeErrf(8, ErrHeader, "missing %q signature", magic)
	}
	if int(h.Size) > len(data) {
		return nil, decodeErrf(0, ErrTruncated, "header size %d exceeds file size %d", h.Size, len(data))
	}
	if h.Size == 14 {
		h.CRC = binary.LittleEndian.Uint16(data[12:14])
		if h.CRC != 0 {
			if got := CRC(data[:12]); got != h.CRC {
				return nil, decodeErrf(12, ErrHeader, "header crc 0x%04x, computed 0x%04x", h.CRC, got)
			}
		}
	}

	d := &Decoder{
		data:   data,
		header: h,
		pos:    int(h.Size),
		end:    int(h.Size) + int(h.DataSize),
	}
	// The file CRC covers the header bytes too.
	_, _ = d.crc.Write(data[:h.Size])
	return d, nil
}

// Header returns the parsed file header.
func (d *Decoder) Header() Header { return d.header }

// take consumes n bytes of the record stream.
func (d *Decoder) take(n int) ([]byte, error) {
	if d.pos+n > d.end {
		return nil, decodeErrf(d.pos, ErrTruncated, "need %d bytes, %d left in data section", n, d.end-d.pos)
	}
	if d.pos+n > len(d.data) {
		return nil, decodeErrf(d.pos, ErrTruncated, "need %d bytes, file ends at %d", n, len(d.data))
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	_, _ = d.crc.Write(b)
	return b, nil
}

// Next returns the next data message. Definition records are consumed
// internally. At the end of the data section the trailing CRC is checked
// and Next returns io.EOF.
func (d *Decoder) Next() (Message, error) {
	for {
		if d.done {
			return Message{}, io.EOF
		}
		if d.pos >= d.end {
			if err := d.finish(); err != nil {
				return Message{}, err
			}
			return Message{}, io.EOF
		}

		start := d.pos
		hb, err := d.take(1)
		if err != nil {
			return Message{}, err
		}
		h := hb[0]

		switch {
		case h&0x80 != 0:
			// Compressed timestamp header: local in bits 5-6, offset in 0-4.
			local := (h >> 5) & 0x03
			offset := uint32(h & 0x1F)
			ts := d.lastTimestamp&^0x1F | offset
			if offset < d.lastTimestamp&0x1F {
				ts += 0x20
			}
			msg, err := d.readData(start, local)
			if err != nil {
				return Message{}, err
			}
			d.lastTimestamp = ts
			msg.Fields = append(msg.Fields, Field{
				Num:   FieldTimestamp,
				Type:  Uint32,
				Value: Int(int64(ts)),
			})
			return msg, nil

		case h&0x40 != 0:
			if err := d.readDefinition(h&0x0F, h&0x20 != 0); err != nil {
				return Message{}, err
			}

		default:
			msg, err := d.readData(start, h&0x0F)
			if err != nil {
				return Message{}, err
			}
			if ts, ok := msg.Uint(FieldTimestamp); ok {
				d.lastTimestamp = uint32(ts)
			}
			return msg, nil
		}
	}
}

func (d *Decoder) readDefinition(local byte, dev bool) error {
	fixed, err := d.take(5)
	if err != nil {
		return err
	}

	var order binary.ByteOrder = binary.LittleEndian
	if fixed[1] == 1 {
		order = binary.BigEndian
	}
	def := &localDef{
		global: MesgNum(order.Uint16(fixed[2:4])),
		order:  order,
	}

	n := int(fixed[4])
	raw, err := d.take(3 * n)
	if err != nil {
		return err
	}
	def.fields = make([]FieldDef, n)
	for i := range def.fields {
		def.fields[i] = FieldDef{Num: raw[3*i], Size: raw[3*i+1], Type: BaseType(raw[3*i+2])}
	}

	if dev {
		cnt, err := d.take(1)
		if err != nil {
			return err
		}
		devRaw, err := d.take(3 * int(cnt[0]))
		if err != nil {
			return err
		}
		for i := 0; i < int(cnt[0]); i++ {
			def.devSize += int(devRaw[3*i+1])
		}
	}

	d.defs[local] = def
	return nil
}

func (d *Decoder) readData(start int, local byte) (Message, error) {
	def := d.defs[local]
	if def == nil {
		return Message{}, decodeErrf(start, ErrUndefinedLocal, "local %d", local)
	}

	msg := Message{Local: local, Global: def.global, Fields: make([]Field, 0, len(def.fields))}
	for _, fd := range def.fields {
		raw, err := d.take(int(fd.Size))
		if err != nil {
			return Message{}, err
		}
		msg.Fields = append(msg.Fields, Field{
			Num:   fd.Num,
			Type:  fd.Type.Canonical(),
			Raw:   raw,
			Value: decodeValue(fd.Type, raw, def.order),
		})
	}
	if def.devSize > 0 {
		if _, err := d.take(def.devSize); err != nil {
			return Message{}, err
		}
	}
	return msg, nil
}

func (d *Decoder) finish() error {
	d.done = true
	if d.end+2 > len(d.data) {
		return decodeErrf(d.end, ErrTruncated, "missing trailing crc")
	}
	want := binary.LittleEndian.Uint16(d.data[d.end : d.end+2])
	if got := d.crc.Sum16(); got != want {
		return decodeErrf(d.end, ErrChecksum, "file crc 0x%04x, computed 0x%04x", want, got)
	}
	return nil
}

// Decode returns every data message in data.
func Decode(data []byte) (Header, []Message, error) {
	d, err := NewDecoder(data)
	if err != nil {
		return Header{}, nil, err
	}
	var msgs []Message
	for {
		m, err := d.Next()
		if errors.Is(err, io.EOF) {
			return d.Header(), msgs, nil
		}
		if err != nil {
			return d.Header(), msgs, err
		}
		msgs = append(msgs, m)
	}
}

// StartTime scans data for the first session message with a valid,
// non-zero start_time and returns it. It reports false when the file has
// no such session. Decoding stops at the session, so later corruption is
// not detected.
func StartTime(data []byte) (time.Time, bool, error) {
	d, err := NewDecoder(data)
	if err != nil {
		return time.Time{}, false, err
	}
	for {
		m, err := d.Next()
		if errors.Is(err, io.EOF) {
			return time.Time{}, false, nil
		}
		if err != nil {
			return time.Time{}, false, err
		}
		if m.Global != MesgSession {
			continue
		}
		if ts, ok := m.Uint(SessionStartTime); ok && ts != 0 {
			return Time(uint32(ts)), true, nil
		}
	}
}
