// Package canon implements the lossless canonicalizer: volatile tokens
// (timestamps, UUIDs, long hex runs, long integers) are replaced by sentinel
// markers and their original bytes are side-carried in order, so
// Uncanonicalize restores the input byte-for-byte.
package canon

import (
	"regexp"
	"strings"
)

// Sentinel markers substituted for recognized volatile tokens.
const (
	SentinelTS   = "<TS>"
	SentinelUUID = "<UUID>"
	SentinelHex  = "<HEX>"
	SentinelInt  = "<INT>"
)

// Recognition thresholds on non-alphanumeric boundaries.
const (
	minHexLen   = 8  // hex runs shorter than this stay literal
	minIntLen   = 6  // decimal runs shorter than this stay literal
	minEpochLen = 10 // decimal runs at least this long classify as epoch timestamps
)

// TokenKind tags a side vector entry with the class of the stripped token.
type TokenKind uint8

const (
	KindTS TokenKind = iota + 1
	KindUUID
	KindHex
	KindInt
)

func (k TokenKind) String() string {
	switch k {
	case KindTS:
		return "TS"
	case KindUUID:
		return "UUID"
	case KindHex:
		return "HEX"
	case KindInt:
		return "INT"
	default:
		return "Unknown"
	}
}

// Sentinel returns the marker substituted for tokens of this kind.
func (k TokenKind) Sentinel() string {
	switch k {
	case KindTS:
		return SentinelTS
	case KindUUID:
		return SentinelUUID
	case KindHex:
		return SentinelHex
	case KindInt:
		return SentinelInt
	default:
		return ""
	}
}

// SideToken is one side vector entry: the kind and original bytes of a
// token stripped during canonicalization.
type SideToken struct {
	Kind TokenKind
	Orig string
}

// SentinelPattern matches any of the four sentinel markers. It is exported
// for the template miner, which treats sentinel occurrences as slots.
const SentinelPattern = `<TS>|<UUID>|<HEX>|<INT>`

// Patterns are compiled once per process. Alternation order matters: the
// engine takes the first alternative that matches at the leftmost position,
// so sentinel escapes come before UUID, UUID before the ISO timestamp, and
// the combined hex/decimal run last.
var (
	reScan = regexp.MustCompile(SentinelPattern +
		`|[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}` +
		`|\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:\.\d+)?Z?` +
		`|[0-9a-fA-F]{6,}`)

	reSentinel = regexp.MustCompile(SentinelPattern)
)

func isAlnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// classify maps a candidate match to its token kind, or 0 when the match
// must stay literal (too short for its class, or alphanumeric neighbors).
func classify(line, m string, start, end int) TokenKind {
	switch m {
	// A literal sentinel in the input is escaped: it becomes a side entry
	// carrying its own text, keeping Uncanonicalize an exact inverse.
	case SentinelTS:
		return KindTS
	case SentinelUUID:
		return KindUUID
	case SentinelHex:
		return KindHex
	case SentinelInt:
		return KindInt
	}

	if start > 0 && isAlnum(line[start-1]) {
		return 0
	}
	if end < len(line) && isAlnum(line[end]) {
		return 0
	}

	if strings.ContainsRune(m, ':') {
		return KindTS
	}
	if strings.ContainsRune(m, '-') {
		return KindUUID
	}

	hasLetter := false
	for i := 0; i < len(m); i++ {
		if m[i] > '9' {
			hasLetter = true
			break
		}
	}
	if hasLetter {
		if len(m) >= minHexLen {
			return KindHex
		}

		return 0
	}

	// All-decimal runs: long enough for an epoch timestamp, a long integer,
	// or neither.
	switch {
	case len(m) >= minEpochLen:
		return KindTS
	case len(m) >= minIntLen:
		return KindInt
	default:
		return 0
	}
}

// Canonicalize replaces volatile tokens in line with sentinel markers and
// returns the canonical form plus the ordered side vector of stripped
// originals. It is a pure function and cannot fail; bytes that are not
// valid UTF-8 pass through untouched.
func Canonicalize(line string) (string, []SideToken) {
	matches := reScan.FindAllStringIndex(line, -1)
	if len(matches) == 0 {
		return line, nil
	}

	var b strings.Builder
	b.Grow(len(line))

	var side []SideToken
	last := 0
	for _, loc := range matches {
		start, end := loc[0], loc[1]
		m := line[start:end]

		kind := classify(line, m, start, end)
		if kind == 0 {
			continue
		}

		b.WriteString(line[last:start])
		b.WriteString(kind.Sentinel())
		side = append(side, SideToken{Kind: kind, Orig: m})
		last = end
	}
	b.WriteString(line[last:])

	if len(side) == 0 {
		return line, nil
	}

	return b.String(), side
}

// Uncanonicalize substitutes the i-th sentinel occurrence in canonical with
// the i-th side vector entry, restoring the original line exactly.
func Uncanonicalize(canonical string, side []SideToken) string {
	if len(side) == 0 {
		return canonical
	}

	var b strings.Builder
	b.Grow(len(canonical))

	i := 0
	last := 0
	for _, loc := range reSentinel.FindAllStringIndex(canonical, -1) {
		if i >= len(side) {
			break
		}
		b.WriteString(canonical[last:loc[0]])
		b.WriteString(side[i].Orig)
		i++
		last = loc[1]
	}
	b.WriteString(canonical[last:])

	return b.String()
}
