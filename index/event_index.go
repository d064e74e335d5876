// Package index implements the hot-lite-full event-id index: a per-DATA
// packet table of (first row, row count, byte length) triplets that maps a
// global event id to the packet holding it without decoding the stream.
package index

import (
	"fmt"

	"github.com/arloliu/usc/encoding"
	"github.com/arloliu/usc/errs"
	"github.com/arloliu/usc/section"
)

// Entry describes one DATA packet's coverage.
type Entry struct {
	FirstRow uint64
	RowCount uint64
	ByteLen  uint64
}

// EventIndex accumulates one entry per DATA packet in emission order.
type EventIndex struct {
	entries []Entry
}

// New creates an empty index.
func New() *EventIndex {
	return &EventIndex{}
}

// Append records one DATA packet's coverage. Packets must be appended in
// emission order so FirstRow stays monotone.
func (ix *EventIndex) Append(firstRow, rowCount, byteLen uint64) {
	ix.entries = append(ix.entries, Entry{FirstRow: firstRow, RowCount: rowCount, ByteLen: byteLen})
}

// Len returns the number of indexed packets.
func (ix *EventIndex) Len() int {
	return len(ix.entries)
}

// Entries returns the index entries in packet order.
func (ix *EventIndex) Entries() []Entry {
	return ix.entries
}

// Locate returns the index of the DATA packet containing the given event id
// (global row number), or -1 when the id is out of range.
func (ix *EventIndex) Locate(eventID uint64) int {
	lo, hi := 0, len(ix.entries)
	for lo < hi {
		mid := (lo + hi) / 2
		e := ix.entries[mid]
		switch {
		case eventID < e.FirstRow:
			hi = mid
		case eventID >= e.FirstRow+e.RowCount:
			lo = mid + 1
		default:
			return mid
		}
	}

	return -1
}

// Encode serializes the index packet.
func (ix *EventIndex) Encode() []byte {
	buf := make([]byte, 0, 16+8*len(ix.entries))
	buf = append(buf, section.MagicIndex...)
	buf = append(buf, section.Version)
	buf = encoding.AppendUvarint(buf, uint64(len(ix.entries)))
	for _, e := range ix.entries {
		buf = encoding.AppendUvarint(buf, e.FirstRow)
		buf = encoding.AppendUvarint(buf, e.RowCount)
		buf = encoding.AppendUvarint(buf, e.ByteLen)
	}

	return buf
}

// Parse reconstructs an index from its packet bytes.
func Parse(data []byte) (*EventIndex, error) {
	if len(data) < section.MagicLen+1 || string(data[:section.MagicLen]) != section.MagicIndex {
		return nil, fmt.Errorf("index packet: %w", errs.ErrInvalidMagic)
	}
	if data[section.MagicLen] != section.Version {
		return nil, fmt.Errorf("index packet version %d: %w", data[section.MagicLen], errs.ErrVersionUnsupported)
	}

	off := section.MagicLen + 1
	count, off, err := encoding.Uvarint(data, off)
	if err != nil {
		return nil, fmt.Errorf("index packet entry count: %w", err)
	}
	if count > uint64(len(data)) {
		return nil, fmt.Errorf("index packet entry count %d: %w", count, errs.ErrMalformedPacket)
	}

	ix := New()
	ix.entries = make([]Entry, count)
	for i := range ix.entries {
		e := &ix.entries[i]
		if e.FirstRow, off, err = encoding.Uvarint(data, off); err != nil {
			return nil, fmt.Errorf("index packet entry %d: %w", i, err)
		}
		if e.RowCount, off, err = encoding.Uvarint(data, off); err != nil {
			return nil, fmt.Errorf("index packet entry %d: %w", i, err)
		}
		if e.ByteLen, off, err = encoding.Uvarint(data, off); err != nil {
			return nil, fmt.Errorf("index packet entry %d: %w", i, err)
		}
	}
	if off != len(data) {
		return nil, fmt.Errorf("index packet has %d trailing bytes: %w", len(data)-off, errs.ErrMalformedPacket)
	}

	return ix, nil
}
