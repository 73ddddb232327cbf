package pngb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarintRoundtripWidths(t *testing.T) {
	cases := []struct {
		v    uint32
		want int
	}{
		{0, 1}, {1, 1}, {0x7F, 1},
		{0x80, 2}, {0x3FFF, 2},
		{0x4000, 4}, {0x3FFFFFFF, 4},
	}
	for _, c := range cases {
		buf := PutVarint(nil, c.v)
		assert.Lenf(t, buf, c.want, "value %d", c.v)
		got, n, err := ReadVarint(buf)
		require.NoError(t, err)
		assert.Equal(t, c.v, got)
		assert.Equal(t, c.want, n)
	}
}

func TestVarintRoundtripSample(t *testing.T) {
	for _, v := range []uint32{0, 1, 63, 127, 128, 200, 16383, 16384, 70000, 0x3FFFFFFF} {
		buf := PutVarint(nil, v)
		got, n, err := ReadVarint(buf)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, len(buf), n)
	}
}

func TestVarintRejectsNonCanonical2Byte(t *testing.T) {
	// 0x80, 0x01 encodes 1 in the 2-byte form, but 1 fits in 1 byte.
	_, _, err := ReadVarint([]byte{0x80, 0x01})
	require.ErrorIs(t, err, ErrVarintOverflow)
}

func TestVarintRejectsNonCanonical4Byte(t *testing.T) {
	// 4-byte form encoding a value that fits in 14 bits.
	_, _, err := ReadVarint([]byte{0xC0, 0x00, 0x00, 0x01})
	require.ErrorIs(t, err, ErrVarintOverflow)
}

func TestVarintTruncated(t *testing.T) {
	_, _, err := ReadVarint([]byte{0x80})
	require.ErrorIs(t, err, ErrTruncatedOpcode)
	_, _, err = ReadVarint([]byte{0xC0, 0x00})
	require.ErrorIs(t, err, ErrTruncatedOpcode)
	_, _, err = ReadVarint(nil)
	require.ErrorIs(t, err, ErrTruncatedOpcode)
}

func TestVarintPanicsAboveRange(t *testing.T) {
	assert.Panics(t, func() { PutVarint(nil, 0x40000000) })
}
