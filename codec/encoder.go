package codec

import (
	"github.com/arloliu/usc/encoding"
	"github.com/arloliu/usc/format"
	"github.com/arloliu/usc/frame"
	"github.com/arloliu/usc/index"
	"github.com/arloliu/usc/section"
	"github.com/arloliu/usc/template"
)

// EncodeStats summarizes one encode session.
type EncodeStats struct {
	Lines      int
	InputBytes int

	Templates     int
	TemplatedRows int
	RawRows       int

	DictBytes       int
	DataPacketBytes []int
	FrameBytes      int
	ContainerBytes  int
	PacketCount     int
}

// Ratio returns container size over input size (newlines included).
// Values below 1.0 indicate compression.
func (s EncodeStats) Ratio() float64 {
	if s.InputBytes == 0 {
		return 0.0
	}

	return float64(s.ContainerBytes) / float64(s.InputBytes)
}

// Encoder is one encode session. It is not safe for concurrent use and is
// not reusable: after Finish, create a new encoder for further encoding.
type Encoder struct {
	cfg      *Config
	miner    *template.Miner
	finished bool

	lines      int
	inputBytes int
}

// NewEncoder creates an encoder with the given options.
func NewEncoder(opts ...Option) (*Encoder, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Encoder{
		cfg:   cfg,
		miner: template.NewMiner(cfg.maxTemplates, cfg.promoteThreshold),
	}, nil
}

// AddLine ingests one line (without its terminating newline).
func (e *Encoder) AddLine(line string) {
	if e.finished {
		panic("codec: AddLine after Finish")
	}

	e.lines++
	e.inputBytes += len(line) + 1

	if e.cfg.canonicalize {
		e.miner.Add(line)
	} else {
		e.miner.AddVerbatim(line)
	}
}

// Finish freezes the bank, assembles the DICT, DATA, and (for
// hot-lite-full) index packets, applies the outer pass, and returns the
// container bytes.
func (e *Encoder) Finish() ([]byte, EncodeStats, error) {
	if e.finished {
		panic("codec: Finish called twice")
	}
	e.finished = true

	_, rows, bank := e.miner.Finish()

	stats := EncodeStats{
		Lines:      e.lines,
		InputBytes: e.inputBytes,
		Templates:  bank.Len(),
	}
	for _, row := range rows {
		if row.Templated {
			stats.TemplatedRows++
		} else {
			stats.RawRows++
		}
	}

	dict := section.EncodeDict(bank)
	stats.DictBytes = len(dict)
	packets := [][]byte{dict}

	mtf := encoding.NewMTFEncoder(bank.Len())
	eventIdx := index.New()

	for start := 0; start < len(rows); start += e.cfg.windowSize {
		end := min(start+e.cfg.windowSize, len(rows))

		p := section.EncodeData(rows[start:end], bank, mtf)
		packets = append(packets, p)
		stats.DataPacketBytes = append(stats.DataPacketBytes, len(p))
		eventIdx.Append(uint64(start), uint64(end-start), uint64(len(p)))
	}

	if e.cfg.mode == format.ModeHotLiteFull {
		packets = append(packets, eventIdx.Encode())
	}

	framed := frame.Pack(packets)
	stats.FrameBytes = len(framed)
	stats.PacketCount = len(packets)

	payload := framed
	if e.cfg.mode == format.ModeCold {
		var err error
		payload, _, err = frame.Compress(framed, e.cfg.outerCompression, true, e.cfg.dictSampleBytes)
		if err != nil {
			return nil, stats, err
		}
	}

	out := section.AppendContainerHeader(make([]byte, 0, section.ContainerHeaderSize+len(payload)), e.cfg.mode, uint32(len(packets)))
	out = append(out, payload...)
	stats.ContainerBytes = len(out)

	return out, stats, nil
}

// Encode is the batch convenience wrapper: one session over lines.
func Encode(lines []string, opts ...Option) ([]byte, error) {
	enc, err := NewEncoder(opts...)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		enc.AddLine(line)
	}

	out, _, err := enc.Finish()

	return out, err
}
