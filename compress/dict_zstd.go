package compress

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/arloliu/usc/internal/hash"
)

// DictZstdCodec compresses with a raw-content Zstandard dictionary.
//
// Cold mode samples the head of the framed stream and hands the sample here
// as the dictionary. Both sides derive the frame's dictionary id from the
// dictionary bytes, so a decoder holding the same sample (carried in the
// entropy header) always matches.
type DictZstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

var _ Codec = (*DictZstdCodec)(nil)

// DictID derives the zstd dictionary id for a raw-content dictionary.
// The id is never zero (zero means "no dictionary" on the wire).
func DictID(dict []byte) uint32 {
	return uint32(hash.Bytes(dict)) | 1
}

// NewDictZstdCodec creates a codec bound to the given raw-content
// dictionary. Unlike the pooled ZstdCompressor, each codec owns its
// encoder and decoder: they are dictionary-specific.
func NewDictZstdCodec(dict []byte) (*DictZstdCodec, error) {
	id := DictID(dict)

	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithEncoderCRC(false),
		zstd.WithEncoderDictRaw(id, dict),
	)
	if err != nil {
		return nil, fmt.Errorf("create dict zstd encoder: %w", err)
	}

	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderDictRaw(id, dict),
	)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("create dict zstd decoder: %w", err)
	}

	return &DictZstdCodec{enc: enc, dec: dec}, nil
}

// Compress compresses data against the codec's dictionary.
func (c *DictZstdCodec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return c.enc.EncodeAll(data, make([]byte, 0, len(data)/2)), nil
}

// Decompress decompresses data produced with the codec's dictionary.
func (c *DictZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return c.dec.DecodeAll(data, nil)
}

// Close releases the encoder and decoder resources.
func (c *DictZstdCodec) Close() {
	c.enc.Close()
	c.dec.Close()
}
