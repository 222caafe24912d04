package retrieve

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Snippet geometry.
const (
	snippetContext  = 60
	snippetMaxChars = 300
)

// tokenize lowercases and splits on non-letter, non-digit runes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// span is a byte range within a source string.
type span struct {
	start, end int
}

// loweredText pairs a lowercased copy of a string with a byte-offset map
// back into the original. Lowercasing can change a rune's UTF-8 width, so
// an index into the lowered copy cannot be applied to the original string
// directly.
type loweredText struct {
	lower string
	// back[i] is the original-string offset of the rune that produced
	// byte i of lower; back[len(lower)] is len(original).
	back []int
}

func newLoweredText(text string) loweredText {
	var b strings.Builder
	b.Grow(len(text))
	back := make([]int, 0, len(text)+1)
	for i, r := range text {
		low := unicode.ToLower(r)
		for n := utf8.RuneLen(low); n > 0; n-- {
			back = append(back, i)
		}
		b.WriteRune(low)
	}
	back = append(back, len(text))
	return loweredText{lower: b.String(), back: back}
}

// index returns the original-string span of the first occurrence of the
// lowercase term, or a negative span when absent.
func (lt loweredText) index(term string) span {
	idx := strings.Index(lt.lower, term)
	if idx < 0 {
		return span{-1, -1}
	}
	return span{lt.back[idx], lt.back[idx+len(term)]}
}

// bestSpan locates the first query token occurring in text, preferring
// longer tokens so the snippet centers on the most specific match.
func bestSpan(text string, queryTokens []string) span {
	lt := newLoweredText(text)
	best := span{-1, -1}
	bestLen := 0
	for _, tok := range queryTokens {
		if len(tok) <= bestLen {
			continue
		}
		if sp := lt.index(tok); sp.start >= 0 {
			best = sp
			bestLen = len(tok)
		}
	}
	return best
}

// buildSnippet extracts a window of text around the span with ellipses at
// clipped edges. Returns empty when the span is missing or the text is
// short enough to stand on its own.
func buildSnippet(text string, sp span) string {
	if sp.start < 0 || sp.start >= len(text) {
		return ""
	}
	if len(text) <= snippetMaxChars {
		return text
	}

	start := sp.start - snippetContext
	if start < 0 {
		start = 0
	}
	end := sp.end + snippetContext
	if end > len(text) {
		end = len(text)
	}

	// Avoid cutting words in half. Continuation bytes are never boundary
	// bytes, so the loops also land on rune boundaries.
	for start > 0 && !isBoundary(text[start]) {
		start--
	}
	for end < len(text) && !isBoundary(text[end]) {
		end++
	}

	snip := strings.TrimSpace(text[start:end])
	if start > 0 {
		snip = "..." + snip
	}
	if end < len(text) {
		snip += "..."
	}
	return truncateRunes(snip, snippetMaxChars)
}

// truncateRunes cuts s at the last rune boundary at or before max bytes.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isBoundary(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t'
}
