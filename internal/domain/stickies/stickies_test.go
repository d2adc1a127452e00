package stickies

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintMatchesKnownDigest(t *testing.T) {
	n := Note{PlainText: "Hello world", Created: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	sum := sha256.Sum256([]byte("Hello world|2024-01-01T00:00:00+00:00"))
	assert.Equal(t, hex.EncodeToString(sum[:]), Fingerprint(n))
}

func TestFingerprintIgnoresTitleModifiedAndColor(t *testing.T) {
	created := time.Date(2023, 5, 6, 7, 8, 9, 0, time.FixedZone("EST", -5*3600))
	a := Note{Title: "a", PlainText: "  Buy\u00a0milk\n\tand eggs ", Created: created, Modified: created, Color: ColorYellow}
	b := Note{Title: "b", PlainText: "Buy milk and eggs", Created: created, Modified: created.Add(time.Hour), Color: ColorBlue}

	assert.Equal(t, Fingerprint(a), Fingerprint(b))

	b.Created = created.Add(time.Second)
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}

func TestISOTimestampFormatsOffsetsAndMicroseconds(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01T00:00:00+00:00", ISOTimestamp(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-07-04T09:30:00-04:00", ISOTimestamp(time.Date(2024, 7, 4, 9, 30, 0, 0, ny)))
	assert.Equal(t, "2024-01-01T00:00:00.250000+00:00", ISOTimestamp(time.Date(2024, 1, 1, 0, 0, 0, 250_000_000, time.UTC)))
}

func TestChunkTextRejoinsToOriginal(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 700; i++ {
		b.WriteString("word")
		b.WriteString(strings.Repeat(" ", i%3+1))
		if i%50 == 0 {
			b.WriteString("\n\n")
		}
	}
	text := b.String()

	chunks := ChunkText(text, MaxTextChunk)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, text, strings.Join(chunks, ""))
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), MaxTextChunk)
	}
}

func TestChunkTextKeepsUnsplittableRunWhole(t *testing.T) {
	text := strings.Repeat("x", 3600)
	chunks := ChunkText(text, MaxTextChunk)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestChunkTextEmpty(t *testing.T) {
	assert.Empty(t, ChunkText("", MaxTextChunk))
}

func TestTitleForTruncatesAndFallsBack(t *testing.T) {
	assert.Equal(t, "Groceries", TitleFor("\n  \n Groceries \nmilk", "file"))
	assert.Equal(t, "file", TitleFor(" \n\t", "file"))
	assert.Equal(t, UntitledTitle, TitleFor("", ""))

	long := TitleFor(strings.Repeat("é", 300), "")
	assert.Equal(t, MaxTitleLen, len([]rune(long)))
	assert.True(t, strings.HasSuffix(long, "…"))
}

func TestSanitizeRepairsAndComposes(t *testing.T) {
	assert.Equal(t, "caf\u00e9", Sanitize("cafe\u0301"))
	assert.Equal(t, "a\ufffdb", Sanitize("a\xffb"))
}

func TestSanitizeDropsEncodedSurrogates(t *testing.T) {
	assert.Equal(t, "ab", Sanitize("a\xed\xa0\x80b"))
	assert.Equal(t, "a\U0001F600b", Sanitize("a\xed\xa0\xbd\xed\xb8\x80\U0001F600b"))
	assert.Equal(t, "\ud7ff\ue000", Sanitize("\ud7ff\ue000"))
	assert.Equal(t, "x\ufffd", Sanitize("x\xed\xa0"))
}

func TestClassifyColor(t *testing.T) {
	cases := []struct {
		r, g, b int
		want    Color
	}{
		{250, 248, 150, ColorYellow},
		{10, 10, 12, ColorGray},
		{200, 200, 200, ColorGray},
		{100, 200, 100, ColorGreen},
		{100, 120, 220, ColorBlue},
		{255, 180, 200, ColorPink},
		{200, 120, 230, ColorPurple},
		{200, 40, 40, ColorPink},
		{255, 255, 255, ColorGray},
		{120, 60, 120, ColorPink},
		{100, 130, 100, ColorGray},
		{100, 131, 100, ColorGreen},
		{60, 60, 120, ColorBlue},
		{220, 185, 185, ColorPink},
		{200, 170, 200, ColorGray},
		{200, 169, 200, ColorPurple},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyColor(tc.r, tc.g, tc.b), "rgb(%d,%d,%d)", tc.r, tc.g, tc.b)
	}
}

func TestClassifyColorIsTotal(t *testing.T) {
	valid := map[Color]bool{ColorGray: true, ColorYellow: true, ColorGreen: true, ColorBlue: true, ColorPink: true, ColorPurple: true}
	for r := 0; r < 256; r += 5 {
		for g := 0; g < 256; g += 5 {
			for b := 0; b < 256; b += 5 {
				c := ClassifyColor(r, g, b)
				if !valid[c] {
					t.Fatalf("rgb(%d,%d,%d) classified as %q", r, g, b, c)
				}
				if c != ClassifyColor(r, g, b) {
					t.Fatalf("rgb(%d,%d,%d) not deterministic", r, g, b)
				}
			}
		}
	}
}

func TestParseTimestampShapes(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	got, ok := ParseTimestamp(float64(1704067200), ny)
	require.True(t, ok)
	assert.True(t, got.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, ny, got.Location())

	got, ok = ParseTimestamp(int64(1704067200000), ny)
	require.True(t, ok)
	assert.Equal(t, int64(1704067200), got.Unix())

	got, ok = ParseTimestamp("2024-03-01T10:00:00", ny)
	require.True(t, ok)
	assert.Equal(t, "2024-03-01T10:00:00-05:00", ISOTimestamp(got))

	got, ok = ParseTimestamp("2024-03-01T10:00:00+02:00", ny)
	require.True(t, ok)
	assert.Equal(t, "2024-03-01T10:00:00+02:00", ISOTimestamp(got))

	_, ok = ParseTimestamp("yesterday", ny)
	assert.False(t, ok)
	_, ok = ParseTimestamp(true, ny)
	assert.False(t, ok)
}

func TestNewNoteDefaultsModifiedToCreated(t *testing.T) {
	created := time.Date(2024, 2, 2, 2, 2, 2, 0, time.UTC)
	n := NewNote(NoteInput{SourceID: "x", PlainText: "Title line\nbody", Created: created})
	assert.Equal(t, created, n.Modified)
	assert.Equal(t, "Title line", n.Title)
	assert.Nil(t, n.RichContent)
}

func TestArchiveSchemaPayloadUnwrapsWrapper(t *testing.T) {
	doc := NodeFromValue(map[string]any{
		"RTFD":        map[string]any{"NS.data": []byte("{\\rtf1 hi}")},
		"CreatedDate": "2024-01-01T00:00:00Z",
	})
	m, ok := doc.(Mapping)
	require.True(t, ok)
	require.True(t, DefaultArchiveSchema.IsCandidate(m))

	payload, ok := DefaultArchiveSchema.Payload(m)
	require.True(t, ok)
	assert.Equal(t, "{\\rtf1 hi}", string(payload))

	created, ok := FirstMatchingTimestamp(m, DefaultArchiveSchema.CreatedPattern, time.UTC)
	require.True(t, ok)
	assert.Equal(t, 2024, created.Year())
}

func TestArchiveSchemaSkipsEmptyPayload(t *testing.T) {
	m := NodeFromValue(map[string]any{"RTFD": map[string]any{"other": 1}}).(Mapping)
	require.True(t, DefaultArchiveSchema.IsCandidate(m))
	_, ok := DefaultArchiveSchema.Payload(m)
	assert.False(t, ok)
}
