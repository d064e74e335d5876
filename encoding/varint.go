package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/usc/errs"
)

// AppendUvarint appends v to dst as an unsigned LEB128 varint and returns
// the extended slice.
func AppendUvarint(dst []byte, v uint64) []byte {
	return binary.AppendUvarint(dst, v)
}

// Uvarint decodes an unsigned varint from data starting at off.
//
// Returns the value and the offset of the first byte after the varint.
// A truncated or overlong encoding yields errs.ErrMalformedPacket.
func Uvarint(data []byte, off int) (uint64, int, error) {
	if off < 0 || off > len(data) {
		return 0, off, fmt.Errorf("uvarint at offset %d: %w", off, errs.ErrMalformedPacket)
	}

	v, n := binary.Uvarint(data[off:])
	if n <= 0 {
		return 0, off, fmt.Errorf("uvarint at offset %d: %w", off, errs.ErrMalformedPacket)
	}

	return v, off + n, nil
}

// ZigzagEncode maps a signed value to an unsigned one so that small
// magnitudes of either sign produce small varints.
func ZigzagEncode(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// ZigzagDecode inverts ZigzagEncode.
func ZigzagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// AppendBytes appends b to dst with a uvarint length prefix.
func AppendBytes(dst []byte, b []byte) []byte {
	dst = AppendUvarint(dst, uint64(len(b)))
	return append(dst, b...)
}

// Bytes decodes a length-prefixed byte string from data starting at off.
// The returned slice aliases data; callers that retain it must copy.
func Bytes(data []byte, off int) ([]byte, int, error) {
	n, off, err := Uvarint(data, off)
	if err != nil {
		return nil, off, err
	}
	if n > uint64(len(data)-off) {
		return nil, off, fmt.Errorf("byte string of %d bytes at offset %d: %w", n, off, errs.ErrMalformedPacket)
	}

	end := off + int(n)

	return data[off:end], end, nil
}
