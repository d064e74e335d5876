package encoding

// VarBytesEncoder encodes a window's worth of one RAW slot as concatenated
// length-prefixed byte strings. It is also the safety fallback target for
// every typed channel.
type VarBytesEncoder struct {
	buf []byte
}

// NewVarBytesEncoder creates a RAW slot encoder for one window.
func NewVarBytesEncoder() *VarBytesEncoder {
	return &VarBytesEncoder{}
}

// Write appends one value.
func (e *VarBytesEncoder) Write(v []byte) {
	e.buf = AppendBytes(e.buf, v)
}

// WriteString appends one string value.
func (e *VarBytesEncoder) WriteString(v string) {
	e.buf = AppendUvarint(e.buf, uint64(len(v)))
	e.buf = append(e.buf, v...)
}

// Len returns the encoded size in bytes so far.
func (e *VarBytesEncoder) Len() int {
	return len(e.buf)
}

// Bytes returns the encoded channel payload.
func (e *VarBytesEncoder) Bytes() []byte {
	return e.buf
}

// DecodeVarBytes decodes count length-prefixed strings from data starting
// at off. The returned strings are copies and do not alias data.
func DecodeVarBytes(data []byte, off int, count int) ([]string, int, error) {
	out := make([]string, count)
	for i := range count {
		b, next, err := Bytes(data, off)
		if err != nil {
			return nil, off, err
		}
		out[i] = string(b)
		off = next
	}

	return out, off, nil
}
