package encoding

// IntDeltaEncoder encodes a window's worth of one INT slot: the first value
// as a plain varint, every subsequent value as a zigzag varint delta from
// its predecessor.
//
// Repetitive slots (counters that step by a constant, block ids repeated
// across a burst) collapse to one byte per value after the base.
type IntDeltaEncoder struct {
	buf   []byte
	prev  int64
	count int
}

// NewIntDeltaEncoder creates an INT slot encoder for one window.
func NewIntDeltaEncoder() *IntDeltaEncoder {
	return &IntDeltaEncoder{buf: make([]byte, 0, 16)}
}

// Write appends one slot value.
func (e *IntDeltaEncoder) Write(v int64) {
	if e.count == 0 {
		e.buf = AppendUvarint(e.buf, uint64(v))
	} else {
		e.buf = AppendUvarint(e.buf, ZigzagEncode(v-e.prev))
	}
	e.prev = v
	e.count++
}

// Len returns the encoded size in bytes so far.
func (e *IntDeltaEncoder) Len() int {
	return len(e.buf)
}

// Bytes returns the encoded channel payload.
func (e *IntDeltaEncoder) Bytes() []byte {
	return e.buf
}

// DecodeIntDelta decodes count INT slot values from data starting at off,
// returning the values and the offset past the channel.
func DecodeIntDelta(data []byte, off int, count int) ([]int64, int, error) {
	out := make([]int64, count)
	var prev int64
	for i := range count {
		u, next, err := Uvarint(data, off)
		if err != nil {
			return nil, off, err
		}
		off = next

		if i == 0 {
			prev = int64(u)
		} else {
			prev += ZigzagDecode(u)
		}
		out[i] = prev
	}

	return out, off, nil
}
