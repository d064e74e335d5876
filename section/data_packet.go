package section

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/arloliu/usc/encoding"
	"github.com/arloliu/usc/errs"
	"github.com/arloliu/usc/format"
	"github.com/arloliu/usc/template"
)

// A DATA packet carries one window of rows: the row-order mask, the
// bit-packed MTF position stream, the per-slot channels in deterministic
// (template-id ascending, slot-index ascending) order, and the raw rows
// section. Integer fields are varints, byte blocks are length-prefixed,
// and there is no trailing padding.

// channel flag bits.
const flagFallbackRaw = 0x01

// EncodeData serializes one window of rows into a DATA packet. The MTF
// encoder carries recency state across windows, so packets must be encoded
// in window order.
func EncodeData(rows []template.Row, bank *template.Bank, mtf *encoding.MTFEncoder) []byte {
	buf := make([]byte, 0, 512)
	buf = append(buf, MagicData...)
	buf = append(buf, Version)
	buf = encoding.AppendUvarint(buf, uint64(len(rows)))

	mask := template.NewRowMask()
	var positions []uint32
	for _, row := range rows {
		mask.Append(row.Templated)
		if row.Templated {
			positions = append(positions, mtf.Encode(row.TID))
		}
	}
	buf = append(buf, mask.Bytes()...)

	posBits := encoding.PositionBits(positions)
	buf = encoding.AppendUvarint(buf, uint64(posBits))
	buf = append(buf, encoding.PackPositions(positions, posBits)...)

	for _, tid := range windowTIDs(rows) {
		t := bank.Get(tid)
		for si := range t.Arity() {
			var values []string
			for _, row := range rows {
				if row.Templated && row.TID == tid {
					values = append(values, row.Params[si])
				}
			}
			buf = appendChannel(buf, t.SlotTypes[si], t.Dicts[si], values)
		}
	}

	for _, row := range rows {
		if !row.Templated {
			buf = encoding.AppendBytes(buf, []byte(row.Raw))
		}
	}

	return buf
}

// windowTIDs returns the distinct template ids present in the window,
// ascending.
func windowTIDs(rows []template.Row) []uint32 {
	seen := make(map[uint32]struct{})
	var tids []uint32
	for _, row := range rows {
		if !row.Templated {
			continue
		}
		if _, ok := seen[row.TID]; !ok {
			seen[row.TID] = struct{}{}
			tids = append(tids, row.TID)
		}
	}
	sort.Slice(tids, func(i, j int) bool { return tids[i] < tids[j] })

	return tids
}

// appendChannel encodes one slot's window values. A typed encoding that
// fails validation or is not smaller than its RAW-equivalent size is abandoned and the
// channel is emitted raw with the fallback flag set, keeping the packet
// lossless.
func appendChannel(buf []byte, typ format.SlotType, dict *template.SlotDict, values []string) []byte {
	raw := encoding.NewVarBytesEncoder()
	for _, v := range values {
		raw.WriteString(v)
	}

	if typ == format.SlotRaw {
		buf = append(buf, 0)
		return append(buf, raw.Bytes()...)
	}

	typed, ok := encodeTyped(typ, dict, values)
	if !ok || len(typed) >= raw.Len() {
		buf = append(buf, flagFallbackRaw)
		return append(buf, raw.Bytes()...)
	}

	buf = append(buf, 0)

	return append(buf, typed...)
}

func encodeTyped(typ format.SlotType, dict *template.SlotDict, values []string) ([]byte, bool) {
	switch typ {
	case format.SlotInt:
		enc := encoding.NewIntDeltaEncoder()
		for _, v := range values {
			n, ok := template.ParseInt(v)
			if !ok {
				return nil, false
			}
			enc.Write(n)
		}

		return enc.Bytes(), true

	case format.SlotIP:
		enc := encoding.NewIPDeltaEncoder()
		for _, v := range values {
			ip, ok := template.ParseIPv4(v)
			if !ok {
				return nil, false
			}
			enc.Write(ip)
		}

		return enc.Bytes(), true

	case format.SlotHex:
		enc := encoding.NewHexPackEncoder()
		charLen := 0
		for _, v := range values {
			n, l, ok := template.ParseHex(v)
			if !ok {
				return nil, false
			}
			if charLen == 0 {
				charLen = l
			} else if l != charLen {
				// Mixed widths would lose leading zero digits.
				return nil, false
			}
			enc.Write(n)
		}

		out := []byte{byte(charLen), byte(enc.Width())}

		return append(out, enc.Bytes()...), true

	case format.SlotDict:
		enc := encoding.NewDictIndexEncoder(dict.Len())
		for _, v := range values {
			id, ok := dict.ID(v)
			if !ok {
				return nil, false
			}
			enc.Write(id)
		}

		return enc.Bytes(), true

	default:
		return nil, false
	}
}

// ParseData decodes one DATA packet into rows, reconstructing parameter
// values from the typed channels. The MTF decoder must mirror the
// encoder's state, so packets must be parsed in emission order.
func ParseData(data []byte, bank *template.Bank, mtf *encoding.MTFDecoder) ([]template.Row, error) {
	if len(data) < MagicLen+1 || string(data[:MagicLen]) != MagicData {
		return nil, fmt.Errorf("data packet: %w", errs.ErrInvalidMagic)
	}
	if data[MagicLen] != Version {
		return nil, fmt.Errorf("data packet version %d: %w", data[MagicLen], errs.ErrVersionUnsupported)
	}

	off := MagicLen + 1
	rowCount64, off, err := encoding.Uvarint(data, off)
	if err != nil {
		return nil, fmt.Errorf("data packet row count: %w", err)
	}
	if rowCount64 > uint64(8*len(data)) {
		return nil, fmt.Errorf("data packet row count %d: %w", rowCount64, errs.ErrMalformedPacket)
	}
	rowCount := int(rowCount64)

	maskLen := template.ByteLen(rowCount)
	if maskLen > len(data)-off {
		return nil, fmt.Errorf("data packet row mask at offset %d: %w", off, errs.ErrMalformedPacket)
	}
	mask := template.RowMaskFromBytes(data[off:off+maskLen], rowCount)
	off += maskLen

	posBits64, off, err := encoding.Uvarint(data, off)
	if err != nil {
		return nil, fmt.Errorf("data packet position width: %w", err)
	}
	posBits := uint(posBits64)
	if posBits == 0 || posBits > 32 {
		return nil, fmt.Errorf("data packet position width %d: %w", posBits, errs.ErrMalformedPacket)
	}

	tcount := mask.Popcount()
	packedLen := (tcount*int(posBits) + 7) / 8
	if packedLen > len(data)-off {
		return nil, fmt.Errorf("data packet positions at offset %d: %w", off, errs.ErrMalformedPacket)
	}
	positions, err := encoding.UnpackPositions(data[off:off+packedLen], tcount, posBits)
	if err != nil {
		return nil, fmt.Errorf("data packet positions: %w", err)
	}
	off += packedLen

	tids := make([]uint32, tcount)
	for i, pos := range positions {
		tids[i], err = mtf.Decode(pos)
		if err != nil {
			return nil, fmt.Errorf("data packet MTF position %d: %w", i, err)
		}
	}

	// Channel values, keyed by tid then slot, in the deterministic order
	// the encoder wrote them.
	counts := make(map[uint32]int)
	for _, tid := range tids {
		counts[tid]++
	}
	distinct := make([]uint32, 0, len(counts))
	for tid := range counts {
		distinct = append(distinct, tid)
	}
	sort.Slice(distinct, func(i, j int) bool { return distinct[i] < distinct[j] })

	cols := make(map[uint32][][]string)
	for _, tid := range distinct {
		t := bank.Get(tid)
		slotCols := make([][]string, t.Arity())
		for si := range slotCols {
			slotCols[si], off, err = decodeChannel(data, off, t.SlotTypes[si], t.Dicts[si], counts[tid])
			if err != nil {
				return nil, fmt.Errorf("data packet channel tid=%d slot=%d: %w", tid, si, err)
			}
		}
		cols[tid] = slotCols
	}

	rows := make([]template.Row, rowCount)
	taken := make(map[uint32]int)
	ti := 0
	for i := range rowCount {
		if mask.Bit(i) {
			tid := tids[ti]
			ti++
			t := bank.Get(tid)
			k := taken[tid]
			taken[tid]++

			params := make([]string, t.Arity())
			for si := range params {
				params[si] = cols[tid][si][k]
			}
			rows[i] = template.Row{TID: tid, Params: params, Templated: true}
		}
	}

	for i := range rowCount {
		if !mask.Bit(i) {
			var raw []byte
			raw, off, err = encoding.Bytes(data, off)
			if err != nil {
				return nil, fmt.Errorf("data packet raw row %d: %w", i, err)
			}
			rows[i] = template.Row{Raw: string(raw)}
		}
	}

	if off != len(data) {
		return nil, fmt.Errorf("data packet has %d trailing bytes: %w", len(data)-off, errs.ErrMalformedPacket)
	}

	return rows, nil
}

func decodeChannel(data []byte, off int, typ format.SlotType, dict *template.SlotDict, count int) ([]string, int, error) {
	if off >= len(data) {
		return nil, off, fmt.Errorf("channel flags at offset %d: %w", off, errs.ErrMalformedPacket)
	}
	flags := data[off]
	off++

	if typ == format.SlotRaw || flags&flagFallbackRaw != 0 {
		return encoding.DecodeVarBytes(data, off, count)
	}

	switch typ {
	case format.SlotInt:
		vals, off, err := encoding.DecodeIntDelta(data, off, count)
		if err != nil {
			return nil, off, err
		}
		out := make([]string, count)
		for i, v := range vals {
			out[i] = strconv.FormatInt(v, 10)
		}

		return out, off, nil

	case format.SlotIP:
		vals, off, err := encoding.DecodeIPDelta(data, off, count)
		if err != nil {
			return nil, off, err
		}
		out := make([]string, count)
		for i, v := range vals {
			out[i] = template.FormatIPv4(v)
		}

		return out, off, nil

	case format.SlotHex:
		if len(data)-off < 2 {
			return nil, off, fmt.Errorf("hex channel header at offset %d: %w", off, errs.ErrMalformedPacket)
		}
		charLen := int(data[off])
		width := uint(data[off+1])
		off += 2

		vals, off, err := encoding.DecodeHexPack(data, off, count, width)
		if err != nil {
			return nil, off, err
		}
		out := make([]string, count)
		for i, v := range vals {
			out[i] = template.FormatHex(v, charLen)
		}

		return out, off, nil

	case format.SlotDict:
		ids, off, err := encoding.DecodeDictIndex(data, off, count, dict.Len())
		if err != nil {
			return nil, off, err
		}
		out := make([]string, count)
		for i, id := range ids {
			if int(id) >= dict.Len() {
				return nil, off, fmt.Errorf("dict index %d outside dictionary of %d: %w", id, dict.Len(), errs.ErrMalformedPacket)
			}
			out[i] = dict.Entries[id]
		}

		return out, off, nil

	default:
		return nil, off, fmt.Errorf("slot type %d: %w", typ, errs.ErrInvalidSlotType)
	}
}
