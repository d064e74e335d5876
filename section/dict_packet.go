package section

import (
	"fmt"

	"github.com/arloliu/usc/encoding"
	"github.com/arloliu/usc/errs"
	"github.com/arloliu/usc/format"
	"github.com/arloliu/usc/template"
)

// The DICT packet serializes the frozen template bank: per-template segment
// lists with a one-bit-per-segment slot flag vector, the slot type table,
// and the dictionary tables for DICT slots.
//
// Template id equals the template's index in this packet, and arity is the
// popcount of the slot flag vector; neither is stored separately.

// EncodeDict serializes the bank into a DICT packet.
func EncodeDict(bank *template.Bank) []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, MagicDict...)
	buf = append(buf, Version)
	buf = encoding.AppendUvarint(buf, uint64(bank.Len()))

	for _, t := range bank.Templates() {
		buf = encoding.AppendUvarint(buf, uint64(len(t.Segments)))

		flags := make([]byte, template.ByteLen(len(t.Segments)))
		for i, seg := range t.Segments {
			if seg.Slot {
				flags[i/8] |= 1 << (i % 8)
			}
		}
		buf = append(buf, flags...)

		for _, seg := range t.Segments {
			if !seg.Slot {
				buf = encoding.AppendBytes(buf, []byte(seg.Lit))
			}
		}
	}

	for _, t := range bank.Templates() {
		for _, st := range t.SlotTypes {
			buf = append(buf, byte(st))
		}
	}

	for _, t := range bank.Templates() {
		for i, st := range t.SlotTypes {
			if st != format.SlotDict {
				continue
			}
			d := t.Dicts[i]
			buf = encoding.AppendUvarint(buf, uint64(d.Len()))
			for _, entry := range d.Entries {
				buf = encoding.AppendBytes(buf, []byte(entry))
			}
		}
	}

	return buf
}

// ParseDict reconstructs a template bank from a DICT packet.
func ParseDict(data []byte) (*template.Bank, error) {
	if len(data) < MagicLen+1 || string(data[:MagicLen]) != MagicDict {
		return nil, fmt.Errorf("dict packet: %w", errs.ErrInvalidMagic)
	}
	if data[MagicLen] != Version {
		return nil, fmt.Errorf("dict packet version %d: %w", data[MagicLen], errs.ErrVersionUnsupported)
	}

	off := MagicLen + 1
	count, off, err := encoding.Uvarint(data, off)
	if err != nil {
		return nil, fmt.Errorf("dict packet template count: %w", err)
	}
	if count > uint64(len(data)) {
		return nil, fmt.Errorf("dict packet template count %d: %w", count, errs.ErrMalformedPacket)
	}

	bank := template.NewBank(int(count))
	templates := make([]*template.Template, count)

	for ti := range templates {
		var segCount uint64
		segCount, off, err = encoding.Uvarint(data, off)
		if err != nil {
			return nil, fmt.Errorf("dict packet template %d: %w", ti, err)
		}
		if segCount > uint64(8*len(data)) {
			return nil, fmt.Errorf("dict packet template %d segment count %d: %w", ti, segCount, errs.ErrMalformedPacket)
		}

		flagLen := template.ByteLen(int(segCount))
		if flagLen > len(data)-off {
			return nil, fmt.Errorf("dict packet template %d flags at offset %d: %w", ti, off, errs.ErrMalformedPacket)
		}
		flags := data[off : off+flagLen]
		off += flagLen

		segments := make([]template.Segment, segCount)
		for si := range segments {
			if flags[si/8]&(1<<(si%8)) != 0 {
				segments[si].Slot = true
				continue
			}

			var lit []byte
			lit, off, err = encoding.Bytes(data, off)
			if err != nil {
				return nil, fmt.Errorf("dict packet template %d segment %d: %w", ti, si, err)
			}
			segments[si].Lit = string(lit)
		}

		templates[ti] = &template.Template{Segments: segments}
	}

	for ti, t := range templates {
		arity := t.Arity()
		if arity > len(data)-off {
			return nil, fmt.Errorf("dict packet slot types at offset %d: %w", off, errs.ErrMalformedPacket)
		}
		t.SlotTypes = make([]format.SlotType, arity)
		t.Dicts = make([]*template.SlotDict, arity)
		for si := range arity {
			st := format.SlotType(data[off])
			off++
			if !st.Valid() {
				return nil, fmt.Errorf("dict packet template %d slot %d type %d: %w", ti, si, st, errs.ErrInvalidSlotType)
			}
			t.SlotTypes[si] = st
		}
	}

	for ti, t := range templates {
		for si, st := range t.SlotTypes {
			if st != format.SlotDict {
				continue
			}

			var entryCount uint64
			entryCount, off, err = encoding.Uvarint(data, off)
			if err != nil {
				return nil, fmt.Errorf("dict packet template %d slot %d dict: %w", ti, si, err)
			}
			if entryCount > uint64(len(data)-off) {
				return nil, fmt.Errorf("dict packet template %d slot %d dict of %d entries: %w", ti, si, entryCount, errs.ErrMalformedPacket)
			}

			d := template.NewSlotDict()
			d.Entries = make([]string, entryCount)
			for ei := range d.Entries {
				var entry []byte
				entry, off, err = encoding.Bytes(data, off)
				if err != nil {
					return nil, fmt.Errorf("dict packet template %d slot %d entry %d: %w", ti, si, ei, err)
				}
				d.Entries[ei] = string(entry)
			}
			d.RebuildIndex()
			t.Dicts[si] = d
		}
	}

	if off != len(data) {
		return nil, fmt.Errorf("dict packet has %d trailing bytes: %w", len(data)-off, errs.ErrMalformedPacket)
	}

	for _, t := range templates {
		bank.Append(t)
	}

	return bank, nil
}
