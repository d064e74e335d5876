package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/usc/encoding"
	"github.com/arloliu/usc/errs"
	"github.com/arloliu/usc/format"
	"github.com/arloliu/usc/template"
)

// mine is a test helper: run the miner over lines and freeze the bank.
func mine(t *testing.T, lines []string) ([]template.Row, *template.Bank) {
	t.Helper()

	m := template.NewMiner(0, 0)
	for _, line := range lines {
		m.Add(line)
	}
	_, rows, bank := m.Finish()

	return rows, bank
}

func TestDictPacket_Roundtrip(t *testing.T) {
	_, bank := mine(t, []string{
		"A 1",
		"B two",
		"B three",
		"conn from 10.0.0.1 ok",
		"req 550e8400-e29b-41d4-a716-446655440000 served",
	})

	packet := EncodeDict(bank)
	require.Equal(t, MagicDict, string(packet[:4]))

	decoded, err := ParseDict(packet)
	require.NoError(t, err)
	require.Equal(t, bank.Len(), decoded.Len())

	for i := range bank.Len() {
		want := bank.Get(uint32(i))
		got := decoded.Get(uint32(i))
		require.Equal(t, want.Shape(), got.Shape())
		require.Equal(t, want.SlotTypes, got.SlotTypes)
		require.Equal(t, want.Arity(), got.Arity())

		for si := range want.SlotTypes {
			if want.Dicts[si] != nil {
				require.NotNil(t, got.Dicts[si])
				require.Equal(t, want.Dicts[si].Entries, got.Dicts[si].Entries)
			}
		}
	}
}

func TestDictPacket_RejectsBadMagic(t *testing.T) {
	_, err := ParseDict([]byte("XXXX\x01"))
	require.ErrorIs(t, err, errs.ErrInvalidMagic)
}

func TestDictPacket_RejectsUnknownVersion(t *testing.T) {
	_, bank := mine(t, []string{"A 1"})
	packet := EncodeDict(bank)
	packet[4] = 99

	_, err := ParseDict(packet)
	require.ErrorIs(t, err, errs.ErrVersionUnsupported)
}

func TestDictPacket_RejectsTruncation(t *testing.T) {
	_, bank := mine(t, []string{"A 1", "B two words here"})
	packet := EncodeDict(bank)

	for _, cut := range []int{6, len(packet) / 2, len(packet) - 1} {
		_, err := ParseDict(packet[:cut])
		require.Error(t, err, "cut at %d", cut)
	}
}

func TestDataPacket_Roundtrip(t *testing.T) {
	lines := []string{
		"A 1",
		"xxx",
		"A 3",
		"B 10.0.0.1",
		"A 7",
		"",
	}
	rows, bank := mine(t, lines)

	mtfEnc := encoding.NewMTFEncoder(bank.Len())
	packet := EncodeData(rows, bank, mtfEnc)
	require.Equal(t, MagicData, string(packet[:4]))

	mtfDec := encoding.NewMTFDecoder(bank.Len())
	decoded, err := ParseData(packet, bank, mtfDec)
	require.NoError(t, err)
	require.Len(t, decoded, len(rows))

	for i, want := range rows {
		require.Equal(t, want.Templated, decoded[i].Templated, "row %d", i)
		if want.Templated {
			require.Equal(t, want.TID, decoded[i].TID)
			require.Equal(t, want.Params, decoded[i].Params)
		} else {
			require.Equal(t, want.Raw, decoded[i].Raw)
		}
	}
}

func TestDataPacket_RowMaskIntegrity(t *testing.T) {
	lines := []string{"A 1", "raw!", "A 2", "more raw", "A 3"}
	rows, bank := mine(t, lines)

	packet := EncodeData(rows, bank, encoding.NewMTFEncoder(bank.Len()))
	decoded, err := ParseData(packet, bank, encoding.NewMTFDecoder(bank.Len()))
	require.NoError(t, err)

	templated, raw := 0, 0
	for _, row := range decoded {
		if row.Templated {
			templated++
		} else {
			raw++
		}
	}
	require.Equal(t, 3, templated)
	require.Equal(t, 2, raw)
	require.Equal(t, len(rows), templated+raw)
}

func TestDataPacket_WindowSequence(t *testing.T) {
	// MTF state spans windows: two packets over the same template must
	// decode with a decoder replaying them in order.
	lines := []string{"A 1", "A 2", "B x", "A 3"}
	rows, bank := mine(t, lines)

	mtfEnc := encoding.NewMTFEncoder(bank.Len())
	p1 := EncodeData(rows[:2], bank, mtfEnc)
	p2 := EncodeData(rows[2:], bank, mtfEnc)

	mtfDec := encoding.NewMTFDecoder(bank.Len())
	d1, err := ParseData(p1, bank, mtfDec)
	require.NoError(t, err)
	d2, err := ParseData(p2, bank, mtfDec)
	require.NoError(t, err)

	require.Equal(t, rows[:2], d1)
	require.Equal(t, rows[2:], d2)
}

func TestDataPacket_SlotFallbackKeepsValues(t *testing.T) {
	// Promote the slot INT with consistent values, then push a window
	// whose value contradicts the type: the channel must fall back to raw
	// and still decode the original text.
	m := template.NewMiner(0, 2)
	m.Add("job id 1")
	m.Add("job id 2")
	m.Add("job id 007")
	_, rows, bank := m.Finish()

	require.Equal(t, 1, bank.Len())

	packet := EncodeData(rows, bank, encoding.NewMTFEncoder(bank.Len()))
	decoded, err := ParseData(packet, bank, encoding.NewMTFDecoder(bank.Len()))
	require.NoError(t, err)

	require.Equal(t, []string{"1"}, decoded[0].Params)
	require.Equal(t, []string{"2"}, decoded[1].Params)
	require.Equal(t, []string{"007"}, decoded[2].Params)
}

func TestDataPacket_AllRawRows(t *testing.T) {
	lines := []string{"one", "two", "three"}
	rows, bank := mine(t, lines)
	require.Equal(t, 0, bank.Len())

	packet := EncodeData(rows, bank, encoding.NewMTFEncoder(bank.Len()))
	decoded, err := ParseData(packet, bank, encoding.NewMTFDecoder(bank.Len()))
	require.NoError(t, err)

	for i, line := range lines {
		require.Equal(t, line, decoded[i].Raw)
	}
}

func TestDataPacket_RejectsTrailingBytes(t *testing.T) {
	rows, bank := mine(t, []string{"A 1"})
	packet := EncodeData(rows, bank, encoding.NewMTFEncoder(bank.Len()))
	packet = append(packet, 0xAA)

	_, err := ParseData(packet, bank, encoding.NewMTFDecoder(bank.Len()))
	require.ErrorIs(t, err, errs.ErrMalformedPacket)
}

func TestContainerHeader_Roundtrip(t *testing.T) {
	for _, mode := range []byte{1, 2, 3} {
		hdr := AppendContainerHeader(nil, format.Mode(mode), 42)
		require.Len(t, hdr, ContainerHeaderSize)

		gotMode, count, off, err := ParseContainerHeader(hdr)
		require.NoError(t, err)
		require.Equal(t, format.Mode(mode), gotMode)
		require.Equal(t, uint32(42), count)
		require.Equal(t, ContainerHeaderSize, off)
	}
}

func TestContainerHeader_RejectsUnknownModeTag(t *testing.T) {
	hdr := AppendContainerHeader(nil, format.Mode(1), 1)
	hdr[5] = 0x7F

	_, _, _, err := ParseContainerHeader(hdr)
	require.ErrorIs(t, err, errs.ErrVersionUnsupported)
}

func TestContainerHeader_RejectsShortInput(t *testing.T) {
	_, _, _, err := ParseContainerHeader([]byte("USC"))
	require.ErrorIs(t, err, errs.ErrMalformedPacket)
}
