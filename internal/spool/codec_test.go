package spool

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utf16LE(s string, slotUnits int) []byte {
	raw := make([]byte, slotUnits*2)
	i := 0
	for _, r := range s {
		binary.LittleEndian.PutUint16(raw[i:], uint16(r))
		i += 2
	}
	return raw
}

func TestUTF16Codec_Decode(t *testing.T) {
	codec := UTF16Codec{}

	testCases := []struct {
		name string
		raw  []byte
		want string
	}{
		{"Terminated", utf16LE("Tray1", 24), "Tray1"},
		{"FullSlotNoTerminator", utf16LE("abcd", 4), "abcd"},
		{"EmptySlot", make([]byte, 48), ""},
		{"NoBytes", nil, ""},
		{"OddTrailingByte", append(utf16LE("ok", 2), 0x41), "ok"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, codec.Decode(tc.raw))
		})
	}
}

func TestDecodeSlots_IndependentSlots(t *testing.T) {
	codec := UTF16Codec{}
	stride := BinNameSlotLen * codec.UnitSize()

	buf, err := newBuffer(3*stride, stride)
	require.NoError(t, err)
	defer buf.Free()

	copy(buf.Slot(0), utf16LE("Upper", BinNameSlotLen))
	// Slot 1 left malformed/empty on purpose.
	copy(buf.Slot(2), utf16LE("Manual Feed", BinNameSlotLen))

	names := decodeSlots(buf, 3, codec)

	require.Len(t, names, 3)
	assert.Equal(t, "Upper", names[0])
	assert.Equal(t, "", names[1], "a bad slot yields an empty entry, keeping index alignment")
	assert.Equal(t, "Manual Feed", names[2])
}
