package fit

var crcTable = [16]uint16{
	0x0000, 0xCC01, 0xD801, 0x1400, 0xF001, 0x3C00, 0x2800, 0xE401,
	0xA001, 0x6C00, 0x7800, 0xB401, 0x5000, 0x9C01, 0x8801, 0x4400,
}

// updateCRC folds one byte into crc, low nibble first.
func updateCRC(crc uint16, b byte) uint16 {
	tmp := crcTable[crc&0xF]
	crc = (crc >> 4) & 0x0FFF
	crc = crc ^ tmp ^ crcTable[b&0xF]

	tmp = crcTable[crc&0xF]
	crc = (crc >> 4) & 0x0FFF
	crc = crc ^ tmp ^ crcTable[(b>>4)&0xF]
	return crc
}

// CRC returns the FIT checksum of data.
func CRC(data []byte) uint16 {
	return Checksum{}.update(data)
}

// Checksum accumulates a FIT CRC over successive writes.
// The zero value is ready to use.
type Checksum struct {
	sum uint16
}

func (c Checksum) update(p []byte) uint16 {
	crc := c.sum
	for _, b := range p {
		crc = updateCRC(crc, b)
	}
	return crc
}

// Write folds p into the checksum. It never fails.
func (c *Checksum) Write(p []byte) (int, error) {
	c.sum = c.update(p)
	return len(p), nil
}

// Sum16 returns the checksum of everything written so far.
func (c *Checksum) Sum16() uint16 { return c.sum }

// Reset clears the checksum.
func (c *Checksum) Reset() { c.sum = 0 }
