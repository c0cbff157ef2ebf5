package spool

import (
	"encoding/binary"
	"unicode/utf16"
)

// TextCodec converts a backend's native text units into Go strings. The
// capability probe decodes fixed-width name slots through this interface so
// its logic can be exercised with synthetic byte slots in tests.
type TextCodec interface {
	// UnitSize is the byte width of one text unit.
	UnitSize() int

	// Decode converts raw units up to the first terminator unit, or the
	// whole region when no terminator is present. Malformed input decodes
	// to an empty string rather than failing.
	Decode(raw []byte) string
}

// UTF16Codec decodes little-endian UTF-16, the Windows spooler's native
// text representation.
type UTF16Codec struct{}

func (UTF16Codec) UnitSize() int { return 2 }

func (UTF16Codec) Decode(raw []byte) string {
	units := make([]uint16, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		u := binary.LittleEndian.Uint16(raw[i:])
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	if len(units) == 0 {
		return ""
	}
	return string(utf16.Decode(units))
}

// decodeSlots splits a name-table buffer into count fixed-width slots and
// decodes each one independently, preserving index alignment with the bin
// id list. A slot that fails to decode contributes an empty entry.
func decodeSlots(buf *Buffer, count int, codec TextCodec) []string {
	names := make([]string, 0, count)
	for i := 0; i < count; i++ {
		names = append(names, codec.Decode(buf.Slot(i)))
	}
	return names
}
