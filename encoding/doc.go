// Package encoding provides the primitive and per-channel codecs used by the
// usc wire format.
//
// The primitives are unsigned LEB128 varints (wrapping encoding/binary),
// zigzag signed mapping, and an MSB-first bit writer/reader for packed
// integer fields of arbitrary width.
//
// On top of the primitives the package implements the per-slot channel
// codecs: INT (varint base plus zigzag deltas), IP (IPv4 base plus per-octet
// zigzag deltas), HEX (fixed-width bit-packed values), DICT (one- or
// two-byte dictionary indices), and RAW (length-prefixed byte strings),
// plus the move-to-front transform for the template-id channel.
//
// All encoders are deterministic given input order and keep no state beyond
// the values written; decoders validate lengths and return
// errs.ErrMalformedPacket wrapped with offset context on truncated input.
package encoding
