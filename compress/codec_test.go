package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/usc/format"
)

var samplePayload = bytes.Repeat([]byte("081109 203518 148 INFO dfs.DataNode: Receiving block blk_-160899 "), 300)

func TestCodecs_Roundtrip(t *testing.T) {
	tests := []struct {
		name  string
		codec Codec
	}{
		{"noop", NewNoOpCompressor()},
		{"zstd", NewZstdCompressor()},
		{"s2", NewS2Compressor()},
		{"lz4", NewLZ4Compressor()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			compressed, err := tc.codec.Compress(samplePayload)
			require.NoError(t, err)

			decompressed, err := tc.codec.Decompress(compressed)
			require.NoError(t, err)
			require.Equal(t, samplePayload, decompressed)
		})
	}
}

func TestCodecs_EmptyInput(t *testing.T) {
	for _, codec := range []Codec{NewZstdCompressor(), NewS2Compressor(), NewLZ4Compressor()} {
		compressed, err := codec.Compress(nil)
		require.NoError(t, err)
		require.Empty(t, compressed)

		decompressed, err := codec.Decompress(nil)
		require.NoError(t, err)
		require.Empty(t, decompressed)
	}
}

func TestCodecs_CompressRepetitivePayload(t *testing.T) {
	for _, codec := range []Codec{NewZstdCompressor(), NewS2Compressor(), NewLZ4Compressor()} {
		compressed, err := codec.Compress(samplePayload)
		require.NoError(t, err)
		require.Less(t, len(compressed), len(samplePayload))
	}
}

func TestGetCodec(t *testing.T) {
	for _, typ := range []format.CompressionType{
		format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4,
	} {
		codec, err := GetCodec(typ)
		require.NoError(t, err)
		require.NotNil(t, codec)
	}

	_, err := GetCodec(format.CompressionType(0x7F))
	require.Error(t, err)
}

func TestDictZstd_Roundtrip(t *testing.T) {
	dict := samplePayload[:512]

	codec, err := NewDictZstdCodec(dict)
	require.NoError(t, err)
	defer codec.Close()

	compressed, err := codec.Compress(samplePayload)
	require.NoError(t, err)

	decompressed, err := codec.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, samplePayload, decompressed)
}

func TestDictZstd_DictImprovesShortPayloads(t *testing.T) {
	payload := samplePayload[:200]

	plain := NewZstdCompressor()
	plainOut, err := plain.Compress(payload)
	require.NoError(t, err)

	dicted, err := NewDictZstdCodec(samplePayload[:4096])
	require.NoError(t, err)
	defer dicted.Close()

	dictOut, err := dicted.Compress(payload)
	require.NoError(t, err)
	require.Less(t, len(dictOut), len(plainOut))
}

func TestDictID_StableAndNonZero(t *testing.T) {
	d1 := DictID([]byte("sample"))
	d2 := DictID([]byte("sample"))
	require.Equal(t, d1, d2)
	require.NotZero(t, DictID(nil))
	require.NotEqual(t, DictID([]byte("a")), DictID([]byte("b")))
}

func TestCompressionStats(t *testing.T) {
	s := CompressionStats{Algorithm: format.CompressionZstd, OriginalSize: 1000, CompressedSize: 100}
	require.InDelta(t, 0.1, s.CompressionRatio(), 1e-9)
	require.InDelta(t, 90.0, s.SpaceSavings(), 1e-9)

	empty := CompressionStats{}
	require.Zero(t, empty.CompressionRatio())
}
