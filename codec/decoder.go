package codec

import (
	"fmt"

	"github.com/arloliu/usc/encoding"
	"github.com/arloliu/usc/errs"
	"github.com/arloliu/usc/format"
	"github.com/arloliu/usc/frame"
	"github.com/arloliu/usc/index"
	"github.com/arloliu/usc/section"
	"github.com/arloliu/usc/template"
)

// Decoder replays a container's packets in emission order, reconstructing
// the original lines byte-for-byte.
type Decoder struct {
	bank *template.Bank
	mtf  *encoding.MTFDecoder

	// EventIndex is the hot-lite-full index packet, when present.
	EventIndex *index.EventIndex

	lines []string
}

// Decode reconstructs the original lines from a container produced by an
// Encoder. Decoder failures are fatal and carry the offending packet index
// and byte offset in the error message.
func Decode(container []byte) ([]string, error) {
	d := &Decoder{}
	if err := d.run(container); err != nil {
		return nil, err
	}

	return d.lines, nil
}

// NewDecoder decodes the container but retains the session state (bank and
// index) for inspection alongside the lines.
func NewDecoder(container []byte) (*Decoder, error) {
	d := &Decoder{}
	if err := d.run(container); err != nil {
		return nil, err
	}

	return d, nil
}

// Lines returns the decoded lines in input order.
func (d *Decoder) Lines() []string {
	return d.lines
}

// Bank returns the template bank reconstructed from the DICT packet.
func (d *Decoder) Bank() *template.Bank {
	return d.bank
}

func (d *Decoder) run(container []byte) error {
	mode, packetCount, off, err := section.ParseContainerHeader(container)
	if err != nil {
		return err
	}
	payload := container[off:]
	if mode == format.ModeCold && !frame.IsEntropyCoded(payload) {
		return fmt.Errorf("cold container without entropy frame: %w", errs.ErrMalformedPacket)
	}

	framed := payload
	if frame.IsEntropyCoded(payload) {
		framed, err = frame.Decompress(payload)
		if err != nil {
			return err
		}
	}

	packets, err := frame.Unpack(framed)
	if err != nil {
		return err
	}
	if len(packets) != int(packetCount) {
		return fmt.Errorf("container advertises %d packets, frame holds %d: %w",
			packetCount, len(packets), errs.ErrMalformedPacket)
	}

	for i, p := range packets {
		if err := d.consume(i, p); err != nil {
			return err
		}
	}

	if d.bank == nil {
		return fmt.Errorf("container holds no dict packet: %w", errs.ErrDataBeforeDict)
	}

	return nil
}

func (d *Decoder) consume(pktIdx int, p []byte) error {
	if len(p) < section.MagicLen {
		return fmt.Errorf("packet %d of %d bytes: %w", pktIdx, len(p), errs.ErrMalformedPacket)
	}

	switch string(p[:section.MagicLen]) {
	case section.MagicDict:
		if d.bank != nil {
			return fmt.Errorf("packet %d: %w", pktIdx, errs.ErrDictAfterData)
		}
		bank, err := section.ParseDict(p)
		if err != nil {
			return fmt.Errorf("packet %d: %w", pktIdx, err)
		}
		d.bank = bank
		d.mtf = encoding.NewMTFDecoder(bank.Len())

		return nil

	case section.MagicData:
		if d.bank == nil {
			return fmt.Errorf("packet %d: %w", pktIdx, errs.ErrDataBeforeDict)
		}
		rows, err := section.ParseData(p, d.bank, d.mtf)
		if err != nil {
			return fmt.Errorf("packet %d: %w", pktIdx, err)
		}
		for _, row := range rows {
			if row.Templated {
				d.lines = append(d.lines, d.bank.Get(row.TID).Render(row.Params))
			} else {
				d.lines = append(d.lines, row.Raw)
			}
		}

		return nil

	case section.MagicIndex:
		ix, err := index.Parse(p)
		if err != nil {
			return fmt.Errorf("packet %d: %w", pktIdx, err)
		}
		d.EventIndex = ix

		return nil

	default:
		return fmt.Errorf("packet %d: %w", pktIdx, errs.ErrInvalidMagic)
	}
}

// VerifyRoundtrip encodes lines with the given options, decodes the
// result, and reports errs.ErrRoundtripMismatch on the first divergence.
// It is the codec's roundtrip verification harness.
func VerifyRoundtrip(lines []string, opts ...Option) error {
	container, err := Encode(lines, opts...)
	if err != nil {
		return err
	}

	decoded, err := Decode(container)
	if err != nil {
		return err
	}

	if len(decoded) != len(lines) {
		return fmt.Errorf("decoded %d lines, expected %d: %w", len(decoded), len(lines), errs.ErrRoundtripMismatch)
	}
	for i := range lines {
		if decoded[i] != lines[i] {
			return fmt.Errorf("line %d differs: %w", i, errs.ErrRoundtripMismatch)
		}
	}

	return nil
}
