package template

import (
	"regexp"
	"strings"

	"github.com/arloliu/usc/canon"
	"github.com/arloliu/usc/format"
)

// DefaultPromoteThreshold is the default number of consistent observations
// before a slot's typed channel is locked in.
const DefaultPromoteThreshold = 8

// minTokens is the minimum whitespace-split token count for a line to be
// eligible for templating; shorter lines are stored raw.
const minTokens = 2

// Slot candidates in a canonical line: canonicalizer sentinels, dotted
// quads, and decimal runs. Alternation order matters (leftmost-first).
var reSlot = regexp.MustCompile(canon.SentinelPattern +
	`|\d{1,3}(?:\.\d{1,3}){3}` +
	`|\d+`)

// slotStat tracks one slot's type inference across observations.
//
// The slot starts untyped. The first value nominates a candidate channel;
// the slot is promoted once the configured number of consistent
// observations is reached, or when the bank freezes with every observation
// consistent. A contradiction before promotion pins the slot to the
// dictionary path; a contradiction after promotion never demotes (the
// affected windows fall back to raw storage instead).
type slotStat struct {
	candidate format.SlotType
	observed  int
	violated  bool
	promoted  bool
	dict      *SlotDict
	dictFull  bool
}

// Miner converts raw lines into rows, growing the template bank as new
// shapes appear. It owns the bank, the row list, and the row-order mask for
// one encode session; ids are assigned in input order, so the same input
// always yields the same bank.
type Miner struct {
	bank     *Bank
	rows     []Row
	mask     *RowMask
	stats    [][]slotStat
	promoteK int
}

// NewMiner creates a miner with the given template cap and slot promotion
// threshold. Non-positive arguments select the defaults.
func NewMiner(maxTemplates, promoteThreshold int) *Miner {
	if promoteThreshold <= 0 {
		promoteThreshold = DefaultPromoteThreshold
	}

	return &Miner{
		bank:     NewBank(maxTemplates),
		mask:     NewRowMask(),
		promoteK: promoteThreshold,
	}
}

// Add ingests one line. Lines that cannot reach a template (too few
// tokens, bank overflow, fingerprint collision) become raw rows; the codec
// never drops data.
func (m *Miner) Add(line string) {
	canonical, side := canon.Canonicalize(line)

	if len(strings.Fields(canonical)) < minTokens {
		m.addRaw(line)
		return
	}

	segments, params := splitSlots(canonical, side)
	shape := shapeOf(segments)

	id, err := m.bank.LookupOrInsert(shape, segments)
	if err != nil {
		m.addRaw(line)
		return
	}

	if int(id) == len(m.stats) {
		m.stats = append(m.stats, make([]slotStat, len(params)))
	}
	for i := range params {
		m.observe(&m.stats[id][i], params[i])
	}

	m.rows = append(m.rows, Row{TID: id, Params: params, Templated: true})
	m.mask.Append(true)
}

// AddVerbatim ingests one line without canonicalizing it first. Volatile
// tokens that the canonicalizer would side-carry surface as slot values
// instead; the result is still lossless.
func (m *Miner) AddVerbatim(line string) {
	if len(strings.Fields(line)) < minTokens {
		m.addRaw(line)
		return
	}

	segments, params := splitSlots(line, nil)
	shape := shapeOf(segments)

	id, err := m.bank.LookupOrInsert(shape, segments)
	if err != nil {
		m.addRaw(line)
		return
	}

	if int(id) == len(m.stats) {
		m.stats = append(m.stats, make([]slotStat, len(params)))
	}
	for i := range params {
		m.observe(&m.stats[id][i], params[i])
	}

	m.rows = append(m.rows, Row{TID: id, Params: params, Templated: true})
	m.mask.Append(true)
}

func (m *Miner) addRaw(line string) {
	m.rows = append(m.rows, Row{Raw: line})
	m.mask.Append(false)
}

func (m *Miner) observe(s *slotStat, value string) {
	cls := ClassifyValue(value)
	if s.observed == 0 {
		s.candidate = cls
		s.dict = NewSlotDict()
	}
	s.observed++

	if !s.promoted {
		if cls != s.candidate {
			s.violated = true
		}
		if !s.violated && s.observed >= m.promoteK {
			s.promoted = true
		}
	}

	if !s.dictFull {
		if _, ok := s.dict.Add(value); !ok {
			s.dictFull = true
		}
	}
}

// Finish freezes the bank, finalizing every template's slot type vector and
// DICT slot dictionaries, and returns the session's mask, rows, and bank.
func (m *Miner) Finish() (*RowMask, []Row, *Bank) {
	for id, stats := range m.stats {
		t := m.bank.Get(uint32(id))
		t.SlotTypes = make([]format.SlotType, len(stats))
		t.Dicts = make([]*SlotDict, len(stats))

		for i := range stats {
			s := &stats[i]
			typed := s.promoted || (!s.violated && s.observed > 0)

			switch {
			case typed && s.candidate != format.SlotDict:
				t.SlotTypes[i] = s.candidate
			case s.dictFull:
				t.SlotTypes[i] = format.SlotRaw
			default:
				t.SlotTypes[i] = format.SlotDict
				t.Dicts[i] = s.dict
			}
		}
	}

	return m.mask, m.rows, m.bank
}

// Bank returns the miner's bank. The bank keeps growing until Finish.
func (m *Miner) Bank() *Bank {
	return m.bank
}

// splitSlots splits a canonical line into alternating literal segments and
// slots. Sentinel slots take their parameter from the side vector (the
// original bytes the canonicalizer stripped); dotted-quad and decimal slots
// take the matched text itself.
func splitSlots(canonical string, side []canon.SideToken) ([]Segment, []string) {
	matches := reSlot.FindAllStringIndex(canonical, -1)

	segments := make([]Segment, 0, 2*len(matches)+1)
	params := make([]string, 0, len(matches))

	sideIdx := 0
	last := 0
	for _, loc := range matches {
		start, end := loc[0], loc[1]
		if start > last {
			segments = append(segments, Segment{Lit: canonical[last:start]})
		}

		m := canonical[start:end]
		if m[0] == '<' && sideIdx < len(side) {
			params = append(params, side[sideIdx].Orig)
			sideIdx++
		} else {
			params = append(params, m)
		}
		segments = append(segments, Segment{Slot: true})
		last = end
	}
	if last < len(canonical) {
		segments = append(segments, Segment{Lit: canonical[last:]})
	}

	return segments, params
}

func shapeOf(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		if seg.Slot {
			b.WriteString(SlotMarker)
		} else {
			b.WriteString(seg.Lit)
		}
	}

	return b.String()
}
