// Package usc provides a lossless, template-mining compression codec for
// structured and semi-structured textual event streams such as system logs
// and AI-agent traces.
//
// The codec extracts the latent record structure of a stream (a small set
// of line templates plus typed parameter slots) and encodes template
// identities and parameters on separate, specialized channels, yielding
// substantially higher ratios than general-purpose byte compressors on
// repetitive structured data while preserving bit-exact roundtrip.
//
// # Pipeline
//
//   - Canonicalizer: volatile tokens (timestamps, UUIDs, long hex, long
//     integers) become sentinels, originals side-carried losslessly
//   - Template miner: canonical lines become (template-id, parameters)
//     rows with deterministic first-seen ids; un-templatable lines stay raw
//     behind a row-order mask
//   - Channelizers: parameters split into typed per-slot streams
//     (INT/IP/HEX/DICT/RAW); template ids become a move-to-front position
//     stream, bit-packed
//   - Packets: one DICT packet carries the frozen bank, one DATA packet per
//     window carries the channels
//   - Outer framer: length-prefixed packet stream, entropy-coded with a
//     trained dictionary in cold mode
//
// # Basic Usage
//
//	lines := []string{
//	    "081109 203518 148 INFO dfs.DataNode: Receiving block blk_-1608999687919862906",
//	    "081109 203518 148 INFO dfs.DataNode: Receiving block blk_-1608999687919862907",
//	}
//
//	container, err := usc.Encode(lines)
//	if err != nil {
//	    return err
//	}
//
//	decoded, err := usc.Decode(container)
//	// decoded equals lines byte-for-byte
//
// Modes select the container surface: stream (default, appendable), cold
// (maximum ratio archive), hot-lite-full (event-id indexed):
//
//	container, err := usc.Encode(lines, codec.WithMode(format.ModeCold))
//
// For per-session control (incremental AddLine, encode statistics), use the
// codec package directly.
package usc

import (
	"github.com/arloliu/usc/codec"
)

// Encode compresses lines into a usc container with the given options.
func Encode(lines []string, opts ...codec.Option) ([]byte, error) {
	return codec.Encode(lines, opts...)
}

// Decode restores the original lines from a usc container byte-for-byte.
func Decode(container []byte) ([]string, error) {
	return codec.Decode(container)
}

// EncodeWithStats compresses lines and reports per-layer sizes and the
// overall ratio.
func EncodeWithStats(lines []string, opts ...codec.Option) ([]byte, codec.EncodeStats, error) {
	enc, err := codec.NewEncoder(opts...)
	if err != nil {
		return nil, codec.EncodeStats{}, err
	}
	for _, line := range lines {
		enc.AddLine(line)
	}

	return enc.Finish()
}
