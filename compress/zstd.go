package compress

// ZstdCompressor provides Zstandard compression for framed usc streams.
//
// This is the default backend for cold mode, where compression ratio
// matters more than compression speed: archived log streams are written
// once and decompressed rarely.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
