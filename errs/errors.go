// Package errs defines the sentinel errors shared across the usc packages.
//
// Callers wrap these with fmt.Errorf("...: %w", err) to attach byte offsets
// and packet indexes; errors.Is matching against the sentinels keeps the
// decoder's failure taxonomy stable across the wire-format packages.
package errs

import "errors"

var (
	// ErrMalformedPacket indicates unreadable bytes or a premature EOF while
	// parsing a packet. Decoder failures of this kind are fatal.
	ErrMalformedPacket = errors.New("malformed packet")

	// ErrVersionUnsupported indicates an unknown container version or mode tag.
	ErrVersionUnsupported = errors.New("unsupported version")

	// ErrInvalidMagic indicates a packet or container with an unrecognized magic.
	ErrInvalidMagic = errors.New("invalid magic")

	// ErrTemplateBankOverflow is returned internally when inserting a template
	// would exceed the configured cap. The miner recovers by demoting the row
	// to raw storage; the error never escapes an encode session.
	ErrTemplateBankOverflow = errors.New("template bank overflow")

	// ErrSlotFallback marks an aborted typed slot encoding. It is a warning
	// grade condition: the packet stays valid with the slot stored raw.
	ErrSlotFallback = errors.New("slot encoding fell back to raw")

	// ErrRoundtripMismatch is used by the verification harness when decoded
	// output differs from the original input.
	ErrRoundtripMismatch = errors.New("roundtrip mismatch")

	// ErrDictAfterData indicates a DICT packet that appeared after DATA
	// packets began, violating the two-packet stateful protocol.
	ErrDictAfterData = errors.New("dict packet after data")

	// ErrDataBeforeDict indicates a DATA packet with no preceding DICT packet.
	ErrDataBeforeDict = errors.New("data packet before dict")

	// ErrInvalidSlotType indicates a slot type byte outside the defined set.
	ErrInvalidSlotType = errors.New("invalid slot type")

	// ErrChannelCountMismatch indicates a DATA packet whose channel value
	// counts disagree with its MTF position stream.
	ErrChannelCountMismatch = errors.New("channel count mismatch")
)
