package tier

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncode_ExactRoundtrip(t *testing.T) {
	original := []byte("Decision: keep the 2024-01-01 00:00:00 deadline")

	packet, err := Encode(original, TierExact)
	require.NoError(t, err)

	d, fp, err := Decode(packet, 0)
	require.NoError(t, err)
	require.True(t, d.Exact())
	require.Equal(t, original, d.Payload)
	require.NotZero(t, fp)
	require.InDelta(t, 0.95, d.Confidence, 1e-9)
}

func TestEncode_ApproximateDropsVolatileTokens(t *testing.T) {
	original := []byte("job 550e8400-e29b-41d4-a716-446655440000 finished at 1700000000")

	packet, err := Encode(original, TierApproximate)
	require.NoError(t, err)

	d, _, err := Decode(packet, 0)
	require.NoError(t, err)
	require.False(t, d.Exact())
	require.Equal(t, "job <UUID> finished at <TS>", string(d.Payload))
	require.InDelta(t, 0.70, d.Confidence, 1e-9)
}

func TestDecode_ConfidenceGate(t *testing.T) {
	packet, err := Encode([]byte("some note text here"), TierApproximate)
	require.NoError(t, err)

	_, _, err = Decode(packet, 0.80)
	require.ErrorIs(t, err, ErrNeedsMoreBits)
}

func TestDecode_RejectsTamperedExactPayload(t *testing.T) {
	packet, err := Encode([]byte("stable content"), TierExact)
	require.NoError(t, err)

	packet[len(packet)-1] ^= 0xFF
	_, _, err = Decode(packet, 0)
	require.Error(t, err)
}

func TestDecodeWithFallback_UpgradesTier(t *testing.T) {
	original := []byte("Decision: archive stream 42")

	low, err := Encode(original, TierApproximate)
	require.NoError(t, err)
	high, err := Encode(original, TierExact)
	require.NoError(t, err)

	d, err := DecodeWithFallback([][]byte{low, high}, 0.80)
	require.NoError(t, err)
	require.True(t, d.Exact())
	require.Equal(t, original, d.Payload)
}

func TestDecodeWithFallback_NoPackets(t *testing.T) {
	_, err := DecodeWithFallback(nil, 0.5)
	require.ErrorIs(t, err, ErrNeedsMoreBits)
}

func TestEncodeAuto_StaysApproximateWhenLossless(t *testing.T) {
	// No volatile tokens: the canonical form equals the original, so the
	// approximate tier passes the verifier.
	original := []byte("Note: plain stable text")
	log := NewCommitLog()

	_, tier, err := EncodeAuto(original, ExactMatch, log)
	require.NoError(t, err)
	require.Equal(t, TierApproximate, tier)

	last, ok := log.Last()
	require.True(t, ok)
	require.Equal(t, TierApproximate, last.Tier)
	require.Equal(t, original, last.Bytes)
}

func TestEncodeAuto_EscalatesOnVolatileContent(t *testing.T) {
	original := []byte("trace id 1234567890 recorded")
	log := NewCommitLog()

	packet, tier, err := EncodeAuto(original, ExactMatch, log)
	require.NoError(t, err)
	require.Equal(t, TierExact, tier)

	d, _, err := Decode(packet, 0)
	require.NoError(t, err)
	require.Equal(t, original, d.Payload)

	require.Equal(t, 1, log.Len())
	last, _ := log.Last()
	require.Equal(t, TierExact, last.Tier)
}

func TestCommitLog_AppendOnly(t *testing.T) {
	log := NewCommitLog()
	_, ok := log.Last()
	require.False(t, ok)

	log.Append(CommitEntry{Fingerprint: 1, Tier: TierApproximate, Bytes: []byte("a")})
	log.Append(CommitEntry{Fingerprint: 2, Tier: TierExact, Bytes: []byte("b")})

	require.Equal(t, 2, log.Len())
	entries := log.Entries()
	require.Equal(t, uint64(1), entries[0].Fingerprint)
	require.Equal(t, uint64(2), entries[1].Fingerprint)
}
