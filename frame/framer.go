// Package frame implements the outer framing pass: packets are
// concatenated with per-block length prefixes, and in cold mode the framed
// stream is run through an entropy backend, optionally primed with a
// raw-content dictionary sampled from the head of the stream.
package frame

import (
	"fmt"

	"github.com/arloliu/usc/compress"
	"github.com/arloliu/usc/encoding"
	"github.com/arloliu/usc/endian"
	"github.com/arloliu/usc/errs"
	"github.com/arloliu/usc/format"
	"github.com/arloliu/usc/internal/pool"
)

const (
	// MagicEntropy tags an entropy-coded frame without a dictionary.
	MagicEntropy = "USCE"
	// MagicEntropyDict tags an entropy-coded frame whose header carries the
	// trained dictionary. Decoders that see this tag must use it.
	MagicEntropyDict = "USCT"

	// DefaultDictSampleBytes is the default size of the head-of-stream
	// sample used as the trained dictionary.
	DefaultDictSampleBytes = 112 * 1024
)

// Stats describes one outer entropy pass.
type Stats struct {
	RawBytes        int
	CompressedBytes int
}

// Pack concatenates packets with uvarint length prefixes.
func Pack(packets [][]byte) []byte {
	bb := pool.GetFrameBuffer()
	defer pool.PutFrameBuffer(bb)

	for _, p := range packets {
		bb.B = encoding.AppendBytes(bb.B, p)
	}

	out := make([]byte, bb.Len())
	copy(out, bb.Bytes())

	return out
}

// Unpack splits a framed stream back into packets. Every byte must belong
// to a length-prefixed block.
func Unpack(framed []byte) ([][]byte, error) {
	var packets [][]byte
	off := 0
	for off < len(framed) {
		block, next, err := encoding.Bytes(framed, off)
		if err != nil {
			return nil, fmt.Errorf("frame block at offset %d: %w", off, err)
		}
		packets = append(packets, block)
		off = next
	}

	return packets, nil
}

// Compress applies the entropy backend over a framed stream.
//
// With withDict set and a Zstd backend, the first sampleBytes of the frame
// become a raw-content dictionary: the output header carries the sample so
// the decoder can rebuild the same codec. Frames no larger than the sample
// skip the dictionary (the header would outweigh the gain). A non-positive
// sampleBytes selects DefaultDictSampleBytes.
//
// Layout:
//
//	"USCT" | backend u8 | dict (length-prefixed) | raw_len u32 | payload
//	"USCE" | backend u8 | raw_len u32 | payload
func Compress(framed []byte, backend format.CompressionType, withDict bool, sampleBytes int) ([]byte, Stats, error) {
	if sampleBytes <= 0 {
		sampleBytes = DefaultDictSampleBytes
	}

	engine := endian.GetLittleEndianEngine()

	var out []byte
	if withDict && backend == format.CompressionZstd && len(framed) > sampleBytes {
		dict := framed[:sampleBytes]
		codec, err := compress.NewDictZstdCodec(dict)
		if err != nil {
			return nil, Stats{}, err
		}
		defer codec.Close()

		payload, err := codec.Compress(framed)
		if err != nil {
			return nil, Stats{}, err
		}

		out = make([]byte, 0, len(payload)+len(dict)+16)
		out = append(out, MagicEntropyDict...)
		out = append(out, byte(backend))
		out = encoding.AppendBytes(out, dict)
		out = engine.AppendUint32(out, uint32(len(framed)))
		out = append(out, payload...)
	} else {
		codec, err := compress.GetCodec(backend)
		if err != nil {
			return nil, Stats{}, err
		}
		payload, err := codec.Compress(framed)
		if err != nil {
			return nil, Stats{}, err
		}

		out = make([]byte, 0, len(payload)+16)
		out = append(out, MagicEntropy...)
		out = append(out, byte(backend))
		out = engine.AppendUint32(out, uint32(len(framed)))
		out = append(out, payload...)
	}

	stats := Stats{RawBytes: len(framed), CompressedBytes: len(out)}

	return out, stats, nil
}

// IsEntropyCoded reports whether blob starts with an entropy pass header.
func IsEntropyCoded(blob []byte) bool {
	if len(blob) < 4 {
		return false
	}
	magic := string(blob[:4])

	return magic == MagicEntropy || magic == MagicEntropyDict
}

// Decompress inverts Compress, restoring the framed stream.
func Decompress(blob []byte) ([]byte, error) {
	if len(blob) < 5 {
		return nil, fmt.Errorf("entropy header of %d bytes: %w", len(blob), errs.ErrMalformedPacket)
	}

	magic := string(blob[:4])
	backend := format.CompressionType(blob[4])
	off := 5

	var dict []byte
	switch magic {
	case MagicEntropyDict:
		var err error
		dict, off, err = encoding.Bytes(blob, off)
		if err != nil {
			return nil, fmt.Errorf("entropy dictionary: %w", err)
		}
	case MagicEntropy:
	default:
		return nil, fmt.Errorf("entropy frame: %w", errs.ErrInvalidMagic)
	}

	if len(blob)-off < 4 {
		return nil, fmt.Errorf("entropy raw length at offset %d: %w", off, errs.ErrMalformedPacket)
	}
	engine := endian.GetLittleEndianEngine()
	rawLen := engine.Uint32(blob[off : off+4])
	off += 4

	var framed []byte
	if dict != nil {
		codec, err := compress.NewDictZstdCodec(dict)
		if err != nil {
			return nil, err
		}
		defer codec.Close()

		framed, err = codec.Decompress(blob[off:])
		if err != nil {
			return nil, fmt.Errorf("entropy payload: %w", err)
		}
	} else {
		codec, err := compress.GetCodec(backend)
		if err != nil {
			return nil, fmt.Errorf("entropy backend %d: %w", backend, errs.ErrVersionUnsupported)
		}
		framed, err = codec.Decompress(blob[off:])
		if err != nil {
			return nil, fmt.Errorf("entropy payload: %w", err)
		}
	}

	if len(framed) != int(rawLen) {
		return nil, fmt.Errorf("entropy raw length %d, got %d: %w", rawLen, len(framed), errs.ErrMalformedPacket)
	}

	return framed, nil
}
