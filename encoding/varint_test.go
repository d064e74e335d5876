package encoding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUvarint_Roundtrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 16383, 16384, 1<<32 - 1, 1<<63 - 1, 1<<64 - 1}

	var buf []byte
	for _, v := range values {
		buf = AppendUvarint(buf, v)
	}

	off := 0
	for _, want := range values {
		var got uint64
		var err error
		got, off, err = Uvarint(buf, off)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	require.Equal(t, len(buf), off)
}

func TestUvarint_Truncated(t *testing.T) {
	buf := AppendUvarint(nil, 1<<40)

	_, _, err := Uvarint(buf[:2], 0)
	require.Error(t, err)

	_, _, err = Uvarint(buf, len(buf))
	require.Error(t, err)
}

func TestZigzag_Roundtrip(t *testing.T) {
	values := []int64{0, 1, -1, 2, -2, 1000, -1000, 1<<62 - 1, -(1 << 62)}

	for _, v := range values {
		require.Equal(t, v, ZigzagDecode(ZigzagEncode(v)))
	}

	// Small magnitudes of either sign map to small unsigned values.
	require.Equal(t, uint64(1), ZigzagEncode(-1))
	require.Equal(t, uint64(2), ZigzagEncode(1))
}

func TestBytes_Roundtrip(t *testing.T) {
	var buf []byte
	buf = AppendBytes(buf, []byte("hello"))
	buf = AppendBytes(buf, nil)
	buf = AppendBytes(buf, []byte{0x00, 0xFF})

	b, off, err := Bytes(buf, 0)
	require.NoError(t, err)
	require.Equal(t, "hello", string(b))

	b, off, err = Bytes(buf, off)
	require.NoError(t, err)
	require.Empty(t, b)

	b, off, err = Bytes(buf, off)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0xFF}, b)
	require.Equal(t, len(buf), off)
}

func TestBytes_TruncatedPayload(t *testing.T) {
	buf := AppendUvarint(nil, 10)
	buf = append(buf, "short"...)

	_, _, err := Bytes(buf, 0)
	require.Error(t, err)
}
