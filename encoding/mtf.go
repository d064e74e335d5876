package encoding

import (
	"fmt"
	"math/bits"

	"github.com/arloliu/usc/errs"
)

// MTFEncoder applies the move-to-front transform to a template-id sequence.
//
// The recency list is initialized to the identity permutation over the bank
// size, so when ids first appear in ascending order (as the miner assigns
// them) the first occurrence of template id k emits position k. The list
// carries causal state across windows: one encoder instance serves an
// entire encode session.
type MTFEncoder struct {
	list []uint32
}

// NewMTFEncoder creates an encoder whose recency list covers template ids
// [0, bankSize).
func NewMTFEncoder(bankSize int) *MTFEncoder {
	list := make([]uint32, bankSize)
	for i := range list {
		list[i] = uint32(i)
	}

	return &MTFEncoder{list: list}
}

// Encode returns the current recency position of id and moves it to the front.
func (e *MTFEncoder) Encode(id uint32) uint32 {
	for pos, cur := range e.list {
		if cur == id {
			copy(e.list[1:pos+1], e.list[:pos])
			e.list[0] = id

			return uint32(pos)
		}
	}
	panic("encoding: template id outside MTF alphabet")
}

// MTFDecoder inverts MTFEncoder using an identically initialized list.
type MTFDecoder struct {
	list []uint32
}

// NewMTFDecoder creates a decoder whose recency list covers template ids
// [0, bankSize).
func NewMTFDecoder(bankSize int) *MTFDecoder {
	list := make([]uint32, bankSize)
	for i := range list {
		list[i] = uint32(i)
	}

	return &MTFDecoder{list: list}
}

// Decode returns the template id at the given recency position and moves it
// to the front.
func (d *MTFDecoder) Decode(pos uint32) (uint32, error) {
	if int(pos) >= len(d.list) {
		return 0, fmt.Errorf("MTF position %d outside alphabet of %d: %w", pos, len(d.list), errs.ErrMalformedPacket)
	}

	id := d.list[pos]
	copy(d.list[1:pos+1], d.list[:pos])
	d.list[0] = id

	return id, nil
}

// PositionBits returns the bit width needed to represent the largest
// position in positions, with a minimum of one bit.
func PositionBits(positions []uint32) uint {
	var maxPos uint32
	for _, p := range positions {
		if p > maxPos {
			maxPos = p
		}
	}

	width := uint(bits.Len32(maxPos))
	if width == 0 {
		width = 1
	}

	return width
}

// PackPositions bit-packs MTF positions at the given width.
func PackPositions(positions []uint32, width uint) []byte {
	w := NewBitWriter((len(positions)*int(width) + 7) / 8)
	for _, p := range positions {
		w.WriteBits(uint64(p), width)
	}

	return w.Bytes()
}

// UnpackPositions reads count positions of the given width from data.
func UnpackPositions(data []byte, count int, width uint) ([]uint32, error) {
	r := NewBitReader(data)
	out := make([]uint32, count)
	for i := range count {
		v, err := r.ReadBits(width)
		if err != nil {
			return nil, err
		}
		out[i] = uint32(v)
	}

	return out, nil
}
