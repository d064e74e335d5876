package encoding

// IPDeltaEncoder encodes a window's worth of one IP slot. The first address
// is stored as four raw octets; each subsequent address stores four zigzag
// varint deltas, one per octet.
//
// Hosts in the same subnet differ only in the low octets, so steady traffic
// from a small fleet encodes near one byte per address.
type IPDeltaEncoder struct {
	buf   []byte
	prev  [4]byte
	count int
}

// NewIPDeltaEncoder creates an IP slot encoder for one window.
func NewIPDeltaEncoder() *IPDeltaEncoder {
	return &IPDeltaEncoder{buf: make([]byte, 0, 16)}
}

// Write appends one IPv4 address.
func (e *IPDeltaEncoder) Write(ip [4]byte) {
	if e.count == 0 {
		e.buf = append(e.buf, ip[:]...)
	} else {
		for i := range 4 {
			e.buf = AppendUvarint(e.buf, ZigzagEncode(int64(ip[i])-int64(e.prev[i])))
		}
	}
	e.prev = ip
	e.count++
}

// Len returns the encoded size in bytes so far.
func (e *IPDeltaEncoder) Len() int {
	return len(e.buf)
}

// Bytes returns the encoded channel payload.
func (e *IPDeltaEncoder) Bytes() []byte {
	return e.buf
}

// DecodeIPDelta decodes count IP slot values from data starting at off.
func DecodeIPDelta(data []byte, off int, count int) ([][4]byte, int, error) {
	out := make([][4]byte, count)
	var prev [4]byte
	for i := range count {
		if i == 0 {
			b, next, err := fixedBytes(data, off, 4)
			if err != nil {
				return nil, off, err
			}
			copy(prev[:], b)
			off = next
		} else {
			for o := range 4 {
				u, next, err := Uvarint(data, off)
				if err != nil {
					return nil, off, err
				}
				off = next
				prev[o] = byte(int64(prev[o]) + ZigzagDecode(u))
			}
		}
		out[i] = prev
	}

	return out, off, nil
}
