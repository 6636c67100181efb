// Package fit reads and writes the subset of the FIT binary activity format
// needed to identify and synthesize activity files.
//
// # Layout
//
// A FIT file is a fixed header, a stream of records and a trailing CRC:
//
//	+--------+------------------------------------+-------+
//	| header | definition / data records ...      | CRC16 |
//	+--------+------------------------------------+-------+
//
// Each definition record binds a local message slot (0-15) to a global
// message number and an ordered list of (field number, size, base type)
// triples. Data records carry only the local slot in their header byte and
// are decoded with the most recent definition for that slot.
//
// # Writer
//
// Encoder is append-only. It tracks, per local slot, whether a definition
// has been emitted and refuses data for undefined slots. The header's data
// size and both CRCs are the only values computed after the stream is
// buffered.
//
// Every base type reserves one bit pattern for "invalid" (absent). A
// present value equal to that pattern, such as a heart rate of 255, reads
// back as absent. This is a property of the format.
//
// # Reader
//
// Decoder walks records one at a time and stops as soon as the caller has
// what it needs; StartTime uses this to find the session start without
// decoding the rest of the file. The trailing CRC is verified only when the
// end of the stream is reached.
package fit
