package encoding

import (
	"fmt"
	"math/bits"

	"github.com/arloliu/usc/errs"
)

// HexPackEncoder encodes a window's worth of one HEX slot as fixed-width
// bit-packed values. The width is the bit length of the largest value seen
// in the window; the packet header carries it alongside the slot's uniform
// character length so decoding can re-pad leading zero digits.
type HexPackEncoder struct {
	values []uint64
}

// NewHexPackEncoder creates a HEX slot encoder for one window.
func NewHexPackEncoder() *HexPackEncoder {
	return &HexPackEncoder{}
}

// Write appends one slot value.
func (e *HexPackEncoder) Write(v uint64) {
	e.values = append(e.values, v)
}

// Width returns the bit width required by the largest value written,
// with a minimum of one bit.
func (e *HexPackEncoder) Width() uint {
	var maxVal uint64
	for _, v := range e.values {
		if v > maxVal {
			maxVal = v
		}
	}

	width := uint(bits.Len64(maxVal))
	if width == 0 {
		width = 1
	}

	return width
}

// Len returns the packed size in bytes at the current width.
func (e *HexPackEncoder) Len() int {
	return (len(e.values)*int(e.Width()) + 7) / 8
}

// Bytes returns the bit-packed channel payload at the encoder's width.
func (e *HexPackEncoder) Bytes() []byte {
	width := e.Width()
	w := NewBitWriter((len(e.values)*int(width) + 7) / 8)
	for _, v := range e.values {
		w.WriteBits(v, width)
	}

	return w.Bytes()
}

// DecodeHexPack decodes count HEX slot values of the given width from data
// starting at off. The packed block occupies ceil(count*width/8) bytes.
func DecodeHexPack(data []byte, off int, count int, width uint) ([]uint64, int, error) {
	if width == 0 || width > 64 {
		return nil, off, fmt.Errorf("hex channel width %d: %w", width, errs.ErrMalformedPacket)
	}

	size := (count*int(width) + 7) / 8
	block, off, err := fixedBytes(data, off, size)
	if err != nil {
		return nil, off, err
	}

	r := NewBitReader(block)
	out := make([]uint64, count)
	for i := range count {
		v, err := r.ReadBits(width)
		if err != nil {
			return nil, off, err
		}
		out[i] = v
	}

	return out, off, nil
}

// fixedBytes slices n bytes from data at off with bounds checking.
func fixedBytes(data []byte, off int, n int) ([]byte, int, error) {
	if off < 0 || n < 0 || n > len(data)-off {
		return nil, off, fmt.Errorf("fixed block of %d bytes at offset %d: %w", n, off, errs.ErrMalformedPacket)
	}

	return data[off : off+n], off + n, nil
}
