package index

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/usc/errs"
)

func buildIndex() *EventIndex {
	ix := New()
	ix.Append(0, 25, 310)
	ix.Append(25, 25, 290)
	ix.Append(50, 10, 120)

	return ix
}

func TestEventIndex_Locate(t *testing.T) {
	ix := buildIndex()

	require.Equal(t, 0, ix.Locate(0))
	require.Equal(t, 0, ix.Locate(24))
	require.Equal(t, 1, ix.Locate(25))
	require.Equal(t, 1, ix.Locate(49))
	require.Equal(t, 2, ix.Locate(50))
	require.Equal(t, 2, ix.Locate(59))
	require.Equal(t, -1, ix.Locate(60))
}

func TestEventIndex_Roundtrip(t *testing.T) {
	ix := buildIndex()

	packet := ix.Encode()
	got, err := Parse(packet)
	require.NoError(t, err)
	require.Equal(t, ix.Entries(), got.Entries())
}

func TestEventIndex_ParseRejectsBadInput(t *testing.T) {
	_, err := Parse([]byte("XXXX\x01"))
	require.ErrorIs(t, err, errs.ErrInvalidMagic)

	ix := buildIndex()
	packet := ix.Encode()

	_, err = Parse(packet[:len(packet)-1])
	require.Error(t, err)

	tampered := append([]byte(nil), packet...)
	tampered[4] = 9
	_, err = Parse(tampered)
	require.ErrorIs(t, err, errs.ErrVersionUnsupported)
}

func TestEventIndex_Empty(t *testing.T) {
	ix := New()
	require.Equal(t, -1, ix.Locate(0))

	got, err := Parse(ix.Encode())
	require.NoError(t, err)
	require.Equal(t, 0, got.Len())
}
