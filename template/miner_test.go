package template

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/usc/format"
)

func TestMiner_TwoInterleavedTemplates(t *testing.T) {
	m := NewMiner(0, 0)
	for _, line := range []string{"A 1", "B 2", "A 3", "B 4"} {
		m.Add(line)
	}

	mask, rows, bank := m.Finish()

	require.Equal(t, 2, bank.Len())
	require.Equal(t, "A <*>", bank.Get(0).Shape())
	require.Equal(t, "B <*>", bank.Get(1).Shape())

	require.Equal(t, 4, mask.Popcount())
	require.Equal(t, []string{"1"}, rows[0].Params)
	require.Equal(t, uint32(0), rows[0].TID)
	require.Equal(t, uint32(1), rows[1].TID)
	require.Equal(t, uint32(0), rows[2].TID)
	require.Equal(t, uint32(1), rows[3].TID)

	// Consistent digit observations type the slot INT even below the
	// promotion threshold.
	require.Equal(t, []format.SlotType{format.SlotInt}, bank.Get(0).SlotTypes)
	require.Equal(t, []format.SlotType{format.SlotInt}, bank.Get(1).SlotTypes)
}

func TestMiner_RawInterleaving(t *testing.T) {
	m := NewMiner(0, 0)
	m.Add("A 1")
	m.Add("garbage")
	m.Add("A 2")

	mask, rows, _ := m.Finish()

	require.Equal(t, 3, mask.Len())
	require.True(t, mask.Bit(0))
	require.False(t, mask.Bit(1))
	require.True(t, mask.Bit(2))

	require.False(t, rows[1].Templated)
	require.Equal(t, "garbage", rows[1].Raw)
}

func TestMiner_EmptyLineIsRaw(t *testing.T) {
	m := NewMiner(0, 0)
	m.Add("")

	mask, rows, bank := m.Finish()

	require.Equal(t, 0, bank.Len())
	require.Equal(t, 0, mask.Popcount())
	require.Equal(t, "", rows[0].Raw)
}

func TestMiner_AllPlaceholderLine(t *testing.T) {
	m := NewMiner(0, 0)
	m.Add("1700000000 deadbeefcafebabe")
	m.Add("1700000001 deadbeefcafebabf")

	_, rows, bank := m.Finish()

	require.Equal(t, 1, bank.Len())
	require.Equal(t, "<*> <*>", bank.Get(0).Shape())
	require.True(t, rows[0].Templated)
	require.Equal(t, []string{"1700000000", "deadbeefcafebabe"}, rows[0].Params)
}

// alphaToken builds distinct letter-only tokens so every line gets its own
// shape (digit suffixes would generalize into a shared slot).
func alphaToken(i int) string {
	b := []byte{'t', 'o', 'k'}
	for {
		b = append(b, byte('a'+i%26))
		i /= 26
		if i == 0 {
			return string(b)
		}
	}
}

func TestMiner_BankOverflowDegradesToRaw(t *testing.T) {
	const maxT = 16
	m := NewMiner(maxT, 0)
	for i := range 100 {
		m.Add(fmt.Sprintf("%s token here now", alphaToken(i)))
	}

	mask, rows, bank := m.Finish()

	require.Equal(t, maxT, bank.Len())
	require.Equal(t, maxT, mask.Popcount())
	require.Equal(t, 100-maxT, len(rows)-mask.Popcount())
	for _, row := range rows[maxT:] {
		require.False(t, row.Templated)
	}
}

func TestMiner_DeterministicIDs(t *testing.T) {
	lines := []string{"A 1", "B 2", "C 3", "A 4", "B 5"}

	run := func() []string {
		m := NewMiner(0, 0)
		for _, l := range lines {
			m.Add(l)
		}
		_, _, bank := m.Finish()

		shapes := make([]string, bank.Len())
		for i := range shapes {
			shapes[i] = bank.Get(uint32(i)).Shape()
		}

		return shapes
	}

	require.Equal(t, run(), run())
}

func TestMiner_SlotPromotionMonotone(t *testing.T) {
	m := NewMiner(0, 4)

	// Four consistent INT observations promote the slot; the later
	// leading-zero value (not INT eligible) must not demote it.
	for i := range 4 {
		m.Add(fmt.Sprintf("job id %d", i+1))
	}
	m.Add("job id 007")

	_, _, bank := m.Finish()

	require.Equal(t, 1, bank.Len())
	require.Equal(t, format.SlotInt, bank.Get(0).SlotTypes[0])
}

func TestMiner_ContradictionBeforePromotionPinsDict(t *testing.T) {
	m := NewMiner(0, 8)

	m.Add("job id 1")
	m.Add("job id 007")
	m.Add("job id 2")

	_, _, bank := m.Finish()

	require.Equal(t, format.SlotDict, bank.Get(0).SlotTypes[0])
	require.Equal(t, 3, bank.Get(0).Dicts[0].Len())
}

func TestMiner_LeadingZeroIntStaysDict(t *testing.T) {
	m := NewMiner(0, 0)
	m.Add("code 081109 seen")
	m.Add("code 081110 seen")

	_, _, bank := m.Finish()

	require.Equal(t, format.SlotDict, bank.Get(0).SlotTypes[0])
}

func TestMiner_IPSlot(t *testing.T) {
	m := NewMiner(0, 2)
	m.Add("conn from 10.250.19.102 ok")
	m.Add("conn from 10.250.19.103 ok")

	_, rows, bank := m.Finish()

	require.Equal(t, 1, bank.Len())
	require.Equal(t, "conn from <*> ok", bank.Get(0).Shape())
	require.Equal(t, format.SlotIP, bank.Get(0).SlotTypes[0])
	require.Equal(t, []string{"10.250.19.102"}, rows[0].Params)
}

func TestMiner_CanonicalSlotCarriesOriginal(t *testing.T) {
	m := NewMiner(0, 0)
	m.Add("req 550e8400-e29b-41d4-a716-446655440000 served")

	_, rows, bank := m.Finish()

	require.Equal(t, "req <*> served", bank.Get(0).Shape())
	require.Equal(t, []string{"550e8400-e29b-41d4-a716-446655440000"}, rows[0].Params)

	// Rendering with the mined params restores the line.
	require.Equal(t, "req 550e8400-e29b-41d4-a716-446655440000 served",
		bank.Get(0).Render(rows[0].Params))
}

func TestMiner_AddVerbatim(t *testing.T) {
	m := NewMiner(0, 0)
	m.AddVerbatim("ts 1700000000 ok")
	m.AddVerbatim("ts 1700000001 ok")

	_, rows, bank := m.Finish()

	require.Equal(t, 1, bank.Len())
	require.True(t, rows[0].Templated)
	require.Equal(t, []string{"1700000000"}, rows[0].Params)
}

func TestTemplate_RenderMatchesShape(t *testing.T) {
	tpl := &Template{Segments: []Segment{
		{Lit: "recv "}, {Slot: true}, {Lit: " from "}, {Slot: true},
	}}

	require.Equal(t, 2, tpl.Arity())
	require.Equal(t, "recv <*> from <*>", tpl.Shape())
	require.Equal(t, "recv 42 from 10.0.0.1", tpl.Render([]string{"42", "10.0.0.1"}))
}

func TestSlotDict_AssignsDenseIDs(t *testing.T) {
	d := NewSlotDict()

	id, ok := d.Add("a")
	require.True(t, ok)
	require.Equal(t, uint16(0), id)

	id, ok = d.Add("b")
	require.True(t, ok)
	require.Equal(t, uint16(1), id)

	id, ok = d.Add("a")
	require.True(t, ok)
	require.Equal(t, uint16(0), id)
	require.Equal(t, 2, d.Len())
}

func TestRowMask_Popcount(t *testing.T) {
	m := NewRowMask()
	pattern := []bool{true, false, true, true, false, true, true, true, false, true}
	for _, b := range pattern {
		m.Append(b)
	}

	require.Equal(t, len(pattern), m.Len())
	require.Equal(t, 7, m.Popcount())
	for i, b := range pattern {
		require.Equal(t, b, m.Bit(i))
	}

	restored := RowMaskFromBytes(m.Bytes(), m.Len())
	require.Equal(t, 7, restored.Popcount())
}
