// Package template implements the streaming template miner: it converts
// canonical lines into (template-id, parameter-vector) pairs with stable,
// deterministic ids, maintains the session's template bank, and tracks the
// row-order mask separating templated rows from raw ones.
package template

import (
	"strings"

	"github.com/arloliu/usc/format"
)

// Segment is one piece of a template: either a literal byte run or a
// wildcard slot. Segments alternate; concatenating literals with slot
// values substituted in order reconstructs the original line.
type Segment struct {
	Lit  string
	Slot bool
}

// SlotMarker is the wildcard marker used in a template's shape string.
const SlotMarker = "<*>"

// Template is an ordered sequence of literal segments and wildcard slots.
type Template struct {
	Segments []Segment

	// SlotTypes holds one channel type per slot, finalized when the bank
	// freezes. Length equals Arity().
	SlotTypes []format.SlotType

	// Dicts holds the session-global value dictionary for each DICT slot
	// (nil for other slot types), indexed by slot position.
	Dicts []*SlotDict
}

// Arity returns the number of wildcard slots.
func (t *Template) Arity() int {
	n := 0
	for _, seg := range t.Segments {
		if seg.Slot {
			n++
		}
	}

	return n
}

// Shape returns the template's canonical shape string with SlotMarker in
// slot positions. Shapes identify templates: two lines share a template
// exactly when their shapes are equal.
func (t *Template) Shape() string {
	var b strings.Builder
	for _, seg := range t.Segments {
		if seg.Slot {
			b.WriteString(SlotMarker)
		} else {
			b.WriteString(seg.Lit)
		}
	}

	return b.String()
}

// Render reconstructs a line by substituting params into the template's
// slots in order. len(params) must equal Arity().
func (t *Template) Render(params []string) string {
	var b strings.Builder
	i := 0
	for _, seg := range t.Segments {
		if seg.Slot {
			b.WriteString(params[i])
			i++
		} else {
			b.WriteString(seg.Lit)
		}
	}

	return b.String()
}

// SlotDict is the session-global dictionary for one DICT slot. Entry ids
// are assigned in first-seen order.
type SlotDict struct {
	byValue map[string]uint16
	Entries []string
}

// NewSlotDict creates an empty slot dictionary.
func NewSlotDict() *SlotDict {
	return &SlotDict{byValue: make(map[string]uint16)}
}

// MaxDictEntries bounds a DICT slot's cardinality; beyond it the slot
// promotes to RAW storage.
const MaxDictEntries = 65536

// Add returns the id for value, inserting it if unseen. The second result
// is false when the dictionary is full and the value was not inserted.
func (d *SlotDict) Add(value string) (uint16, bool) {
	if id, ok := d.byValue[value]; ok {
		return id, true
	}
	if len(d.Entries) >= MaxDictEntries {
		return 0, false
	}

	id := uint16(len(d.Entries))
	d.byValue[value] = id
	d.Entries = append(d.Entries, value)

	return id, true
}

// ID returns the id for a value already in the dictionary.
func (d *SlotDict) ID(value string) (uint16, bool) {
	id, ok := d.byValue[value]
	return id, ok
}

// Len returns the number of entries.
func (d *SlotDict) Len() int {
	return len(d.Entries)
}

// RebuildIndex restores the value→id map after deserialization.
func (d *SlotDict) RebuildIndex() {
	d.byValue = make(map[string]uint16, len(d.Entries))
	for i, v := range d.Entries {
		d.byValue[v] = uint16(i)
	}
}

// Row is one ingested line: either a templated (tid, params) pair or the
// raw bytes of a line that did not reach any template.
type Row struct {
	TID       uint32
	Params    []string
	Raw       string
	Templated bool
}
