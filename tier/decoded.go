// Package tier implements the tiered memory codec: a chunk of text is
// stored either exactly or as a canonical approximation, and a decode
// carries an explicit tier plus a confidence score instead of silently
// returning degraded bytes.
//
// The approximate tier stores the canonicalizer's output with the side
// vector discarded, so volatile tokens (timestamps, UUIDs, long hex and
// integers) collapse to sentinels. A verifier predicate decides whether an
// approximate decode may stand in for the original; when it may not, the
// encoder escalates to the exact tier. Known-good decodes land in an
// append-only commit log of (fingerprint, tier, bytes) tuples.
package tier

import (
	"errors"
	"fmt"

	"github.com/arloliu/usc/canon"
	"github.com/arloliu/usc/encoding"
	"github.com/arloliu/usc/endian"
	"github.com/arloliu/usc/errs"
	"github.com/arloliu/usc/internal/hash"
)

// Tier identifies a storage tier. The gap between the values is
// intentional: intermediate tiers existed historically and their numbers
// stay reserved.
type Tier uint8

const (
	// TierApproximate stores the canonical form only; volatile tokens are
	// not recoverable.
	TierApproximate Tier = 0
	// TierExact stores the original bytes.
	TierExact Tier = 3
)

// Confidence levels assigned by the plain predicate model: an exact decode
// is near-certain, an approximate one is usable but flagged.
const (
	confidenceExact       = 0.95
	confidenceApproximate = 0.70

	// DefaultMinConfidence is the default decode gate.
	DefaultMinConfidence = 0.60
)

// ErrNeedsMoreBits is returned when a decode's confidence falls below the
// gate: the caller must retry with a higher tier rather than accept a
// possibly degraded result.
var ErrNeedsMoreBits = errors.New("decode confidence below gate, need higher tier")

// Decoded is the result of a tiered decode: either exact bytes or an
// approximate payload with its confidence.
type Decoded struct {
	Tier       Tier
	Payload    []byte
	Confidence float64
}

// Exact reports whether the payload reproduces the original byte-for-byte.
func (d Decoded) Exact() bool {
	return d.Tier == TierExact
}

// Verifier decides whether a decoded payload may stand in for the original.
type Verifier func(original, decoded []byte) bool

// ExactMatch is the strict verifier: only byte-identical payloads pass.
func ExactMatch(original, decoded []byte) bool {
	return string(original) == string(decoded)
}

// Memory packet wire layout:
// magic "USCM" | version u8 | tier u8 | fingerprint u64 LE | payload (length-prefixed).
const (
	magicMem   = "USCM"
	memVersion = 1
)

// Encode serializes original at the given tier. The fingerprint always
// covers the original bytes, so an approximate packet still identifies the
// text it was derived from.
func Encode(original []byte, t Tier) ([]byte, error) {
	var payload []byte
	switch t {
	case TierExact:
		payload = original
	case TierApproximate:
		canonical, _ := canon.Canonicalize(string(original))
		payload = []byte(canonical)
	default:
		return nil, fmt.Errorf("encode tier %d: %w", t, errs.ErrVersionUnsupported)
	}

	engine := endian.GetLittleEndianEngine()

	out := make([]byte, 0, len(payload)+20)
	out = append(out, magicMem...)
	out = append(out, memVersion, byte(t))
	out = engine.AppendUint64(out, hash.Bytes(original))
	out = encoding.AppendBytes(out, payload)

	return out, nil
}

// Decode parses a memory packet and applies the confidence gate. A packet
// below minConfidence yields ErrNeedsMoreBits; a non-positive gate selects
// DefaultMinConfidence.
func Decode(packet []byte, minConfidence float64) (Decoded, uint64, error) {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}

	if len(packet) < 14 || string(packet[:4]) != magicMem {
		return Decoded{}, 0, fmt.Errorf("memory packet: %w", errs.ErrInvalidMagic)
	}
	if packet[4] != memVersion {
		return Decoded{}, 0, fmt.Errorf("memory packet version %d: %w", packet[4], errs.ErrVersionUnsupported)
	}

	t := Tier(packet[5])
	engine := endian.GetLittleEndianEngine()
	fp := engine.Uint64(packet[6:14])

	payload, off, err := encoding.Bytes(packet, 14)
	if err != nil {
		return Decoded{}, 0, fmt.Errorf("memory packet payload: %w", err)
	}
	if off != len(packet) {
		return Decoded{}, 0, fmt.Errorf("memory packet has %d trailing bytes: %w", len(packet)-off, errs.ErrMalformedPacket)
	}

	d := Decoded{Tier: t, Payload: payload}
	switch t {
	case TierExact:
		if hash.Bytes(payload) != fp {
			return Decoded{}, 0, fmt.Errorf("memory packet fingerprint: %w", errs.ErrRoundtripMismatch)
		}
		d.Confidence = confidenceExact
	case TierApproximate:
		d.Confidence = confidenceApproximate
	default:
		return Decoded{}, 0, fmt.Errorf("memory packet tier %d: %w", t, errs.ErrVersionUnsupported)
	}

	if d.Confidence < minConfidence {
		return Decoded{}, 0, fmt.Errorf("confidence %.2f below %.2f: %w", d.Confidence, minConfidence, ErrNeedsMoreBits)
	}

	return d, fp, nil
}

// DecodeWithFallback tries packets in order (lowest tier first) and returns
// the first decode that passes the gate. It mirrors the self-healing decode
// path: a refused low tier automatically upgrades to the next packet.
func DecodeWithFallback(packets [][]byte, minConfidence float64) (Decoded, error) {
	var lastErr error
	for _, p := range packets {
		d, _, err := Decode(p, minConfidence)
		if err != nil {
			if errors.Is(err, ErrNeedsMoreBits) {
				lastErr = err
				continue
			}

			return Decoded{}, err
		}

		return d, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no packets: %w", ErrNeedsMoreBits)
	}

	return Decoded{}, lastErr
}

// EncodeAuto encodes at the approximate tier and escalates to exact when
// the verifier rejects the approximation. The committed result is appended
// to log, making the escalation decision replayable.
func EncodeAuto(original []byte, verify Verifier, log *CommitLog) ([]byte, Tier, error) {
	if verify == nil {
		verify = ExactMatch
	}

	packet, err := Encode(original, TierApproximate)
	if err != nil {
		return nil, 0, err
	}

	d, fp, err := Decode(packet, DefaultMinConfidence)
	if err == nil && verify(original, d.Payload) {
		log.Append(CommitEntry{Fingerprint: fp, Tier: TierApproximate, Bytes: d.Payload})
		return packet, TierApproximate, nil
	}

	packet, err = Encode(original, TierExact)
	if err != nil {
		return nil, 0, err
	}
	log.Append(CommitEntry{Fingerprint: hash.Bytes(original), Tier: TierExact, Bytes: original})

	return packet, TierExact, nil
}
