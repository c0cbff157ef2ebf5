package spool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuffer(t *testing.T) {
	buf, err := newBuffer(64, 8)
	require.NoError(t, err)
	assert.Equal(t, 64, buf.Len())
	assert.Equal(t, 8, buf.Stride())
	require.NoError(t, buf.Free())
}

func TestNewBuffer_RejectsBadSizes(t *testing.T) {
	testCases := []struct {
		name   string
		size   int
		stride int
	}{
		{"ZeroSize", 0, 8},
		{"NegativeSize", -4, 8},
		{"PastCap", maxBufferSize + 1, 8},
		{"ZeroStride", 64, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newBuffer(tc.size, tc.stride)
			assert.ErrorIs(t, err, ErrAllocation)
		})
	}
}

func TestBuffer_Slot(t *testing.T) {
	buf, err := newBuffer(24, 8)
	require.NoError(t, err)
	defer buf.Free()

	copy(buf.Slot(1), []byte{1, 2, 3, 4, 5, 6, 7, 8})

	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0}, buf.Slot(0))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, buf.Slot(1))
}

func TestBuffer_DoubleFree(t *testing.T) {
	buf, err := newBuffer(16, 4)
	require.NoError(t, err)

	require.NoError(t, buf.Free())
	assert.ErrorIs(t, buf.Free(), ErrBufferFreed)
}

func TestBuffer_UseAfterFree(t *testing.T) {
	buf, err := newBuffer(16, 4)
	require.NoError(t, err)
	require.NoError(t, buf.Free())

	assert.Panics(t, func() { buf.Bytes() })
	assert.Panics(t, func() { buf.Len() })
	assert.Panics(t, func() { buf.Slot(0) })
}
