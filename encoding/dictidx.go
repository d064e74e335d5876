package encoding

import (
	"github.com/arloliu/usc/endian"
)

// DictIndexEncoder encodes a window's worth of one DICT slot as indices into
// the slot's session-global dictionary. Dictionaries of at most 256 entries
// use one byte per index; larger dictionaries use two little-endian bytes.
// Cardinality beyond 65536 is the channelizer's cue to promote the slot to
// RAW, so wider indices never reach this encoder.
type DictIndexEncoder struct {
	buf    []byte
	engine endian.EndianEngine
	wide   bool
}

// NewDictIndexEncoder creates a DICT slot encoder for one window.
// dictSize is the slot dictionary's entry count from the DICT packet.
func NewDictIndexEncoder(dictSize int) *DictIndexEncoder {
	return &DictIndexEncoder{
		engine: endian.GetLittleEndianEngine(),
		wide:   dictSize > 256,
	}
}

// Write appends one dictionary index.
func (e *DictIndexEncoder) Write(idx uint16) {
	if e.wide {
		e.buf = e.engine.AppendUint16(e.buf, idx)
	} else {
		e.buf = append(e.buf, byte(idx))
	}
}

// Len returns the encoded size in bytes so far.
func (e *DictIndexEncoder) Len() int {
	return len(e.buf)
}

// Bytes returns the encoded channel payload.
func (e *DictIndexEncoder) Bytes() []byte {
	return e.buf
}

// DecodeDictIndex decodes count DICT slot indices from data starting at off.
// dictSize selects the index width the encoder used.
func DecodeDictIndex(data []byte, off int, count int, dictSize int) ([]uint16, int, error) {
	engine := endian.GetLittleEndianEngine()
	wide := dictSize > 256

	size := count
	if wide {
		size = count * 2
	}
	block, off, err := fixedBytes(data, off, size)
	if err != nil {
		return nil, off, err
	}

	out := make([]uint16, count)
	for i := range count {
		if wide {
			out[i] = engine.Uint16(block[i*2 : i*2+2])
		} else {
			out[i] = uint16(block[i])
		}
	}

	return out, off, nil
}
