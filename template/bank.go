package template

import (
	"github.com/arloliu/usc/errs"
	"github.com/arloliu/usc/internal/hash"
)

// DefaultMaxTemplates is the default cap on bank size. Ids fit in 16 bits
// at this cap, which keeps MTF positions narrow.
const DefaultMaxTemplates = 65535

// Bank is the session's mapping of template id to template. Ids are
// assigned densely from zero in first-seen order, so the same input always
// produces the same bank. Once a bank is serialized into a DICT packet it
// is frozen for the remainder of the session.
type Bank struct {
	templates []*Template
	shapes    []string
	byFP      map[uint64]uint32
	max       int
}

// NewBank creates an empty bank with the given template cap.
func NewBank(maxTemplates int) *Bank {
	if maxTemplates <= 0 {
		maxTemplates = DefaultMaxTemplates
	}

	return &Bank{
		byFP: make(map[uint64]uint32),
		max:  maxTemplates,
	}
}

// Len returns the number of templates in the bank.
func (b *Bank) Len() int {
	return len(b.templates)
}

// Get returns the template with the given id.
func (b *Bank) Get(id uint32) *Template {
	return b.templates[id]
}

// Templates returns the templates in id order.
func (b *Bank) Templates() []*Template {
	return b.templates
}

// LookupOrInsert finds the template whose shape matches segments, inserting
// a new template when unseen.
//
// Shapes are keyed by xxHash64 fingerprint; a fingerprint hit is verified
// against the stored shape string, and a collision between distinct shapes
// is reported so the miner can demote the row to raw storage. Inserting
// past the cap returns errs.ErrTemplateBankOverflow.
func (b *Bank) LookupOrInsert(shape string, segments []Segment) (uint32, error) {
	fp := hash.ID(shape)
	if id, ok := b.byFP[fp]; ok {
		if b.shapes[id] != shape {
			return 0, errs.ErrTemplateBankOverflow
		}

		return id, nil
	}

	if len(b.templates) >= b.max {
		return 0, errs.ErrTemplateBankOverflow
	}

	id := uint32(len(b.templates))
	b.templates = append(b.templates, &Template{Segments: segments})
	b.shapes = append(b.shapes, shape)
	b.byFP[fp] = id

	return id, nil
}

// Append adds a fully formed template during DICT packet decoding.
func (b *Bank) Append(t *Template) {
	b.templates = append(b.templates, t)
	shape := t.Shape()
	b.shapes = append(b.shapes, shape)
	b.byFP[hash.ID(shape)] = uint32(len(b.templates) - 1)
}
