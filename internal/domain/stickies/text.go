package stickies

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	MaxTitleLen   = 200
	MaxTextChunk  = 1800
	UntitledTitle = "(untitled)"
)

// IsSpace reports whitespace the same way for every text helper in the
// module: Unicode spaces plus the ASCII information separators.
func IsSpace(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	return r >= 0x1c && r <= 0x1f
}

// NormalizeWhitespace collapses every whitespace run to one ASCII space and
// trims the result.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.FieldsFunc(s, IsSpace), " ")
}

// CollapseWhitespace is NormalizeWhitespace without the trim.
func CollapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// FirstNonEmptyLine returns the first line with visible content, normalized,
// or "" when there is none.
func FirstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if ln := NormalizeWhitespace(line); ln != "" {
			return ln
		}
	}
	return ""
}

// TruncateTitle trims s and shortens it to MaxTitleLen runes, ending with an
// ellipsis when anything was cut.
func TruncateTitle(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= MaxTitleLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxTitleLen-1]) + "…"
}

// ChunkText splits s into pieces of at most n runes, breaking only between
// whitespace and non-whitespace runs. A single run longer than n is kept
// whole. Concatenating the result reproduces s.
func ChunkText(s string, n int) []string {
	if n <= 0 {
		n = MaxTextChunk
	}
	var chunks []string
	var buf strings.Builder
	count := 0
	for _, part := range splitSpaceRuns(s) {
		l := utf8.RuneCountInString(part)
		if count+l > n {
			if buf.Len() > 0 {
				chunks = append(chunks, buf.String())
			}
			buf.Reset()
			buf.WriteString(part)
			count = l
			continue
		}
		buf.WriteString(part)
		count += l
	}
	if buf.Len() > 0 {
		chunks = append(chunks, buf.String())
	}
	return chunks
}

// SplitRunes cuts s into pieces of at most n runes regardless of content.
func SplitRunes(s string, n int) []string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return []string{s}
	}
	runes := []rune(s)
	out := make([]string, 0, len(runes)/n+1)
	for len(runes) > n {
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

func splitSpaceRuns(s string) []string {
	var parts []string
	start := 0
	prevSpace := false
	for i, r := range s {
		space := IsSpace(r)
		if i > start && space != prevSpace {
			parts = append(parts, s[start:i])
			start = i
		}
		prevSpace = space
	}
	if start < len(s) {
		parts = append(parts, s[start:])
	}
	return parts
}

// TrimRightLines right-trims every line of s.
func TrimRightLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, IsSpace)
	}
	return strings.Join(lines, "\n")
}

// Sanitize drops UTF-8 encoded surrogate code points, repairs the remaining
// invalid UTF-8 and composes to NFC so the result always round-trips through
// UTF-8.
func Sanitize(s string) string {
	s = dropEncodedSurrogates(s)
	s = strings.ToValidUTF8(s, "\uFFFD")
	return norm.NFC.String(s)
}

// dropEncodedSurrogates removes the three-byte sequences ED A0..BF 80..BF,
// which is how CESU-8 and WTF-8 writers encode U+D800..U+DFFF.
func dropEncodedSurrogates(s string) string {
	if !strings.Contains(s, "\xed") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == 0xED && i+2 < len(s) &&
			s[i+1] >= 0xA0 && s[i+1] <= 0xBF &&
			s[i+2]&0xC0 == 0x80 {
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// TitleFor derives a note title from its plain text, using fallback when the
// text has no usable first line.
func TitleFor(plainText string, fallback string) string {
	title := FirstNonEmptyLine(plainText)
	if title == "" {
		title = NormalizeWhitespace(fallback)
	}
	if title == "" {
		title = UntitledTitle
	}
	return TruncateTitle(title)
}
