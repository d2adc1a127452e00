// Package blocks converts note content into the typed blocks written to a
// remote page.
package blocks

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/sleroq/stickies-to-notion/internal/domain/stickies"
)

const (
	DefaultChunkSize   = stickies.MaxTextChunk
	DefaultMaxSpanLen  = 1500
	DefaultMaxSpans    = 80
	DefaultSpanCeiling = 100
	MaxPlainChunks     = 20
)

// Translator walks a hypertext body and emits one block per top-level node.
// The limits keep every block inside the remote API's array and text size
// ceilings; spans beyond the cap are dropped.
type Translator struct {
	ChunkSize   int
	MaxSpanLen  int
	MaxSpans    int
	SpanCeiling int
}

func DefaultTranslator() Translator {
	return Translator{
		ChunkSize:   DefaultChunkSize,
		MaxSpanLen:  DefaultMaxSpanLen,
		MaxSpans:    DefaultMaxSpans,
		SpanCeiling: DefaultSpanCeiling,
	}
}

// Translate converts hypertext with the default limits.
func Translate(hypertext string) []stickies.ContentBlock {
	return DefaultTranslator().Translate(hypertext)
}

// Translate never returns an empty slice.
func (t Translator) Translate(hypertext string) []stickies.ContentBlock {
	t = t.withDefaults()

	var out []stickies.ContentBlock
	if root, err := html.Parse(strings.NewReader(hypertext)); err == nil {
		if body := findBody(root); body != nil {
			for n := body.FirstChild; n != nil; n = n.NextSibling {
				out = append(out, t.block(n)...)
			}
		}
	}
	if len(out) == 0 {
		out = append(out, stickies.Paragraph())
	}
	return out
}

func (t Translator) block(n *html.Node) []stickies.ContentBlock {
	switch n.Type {
	case html.TextNode:
		text := stickies.NormalizeWhitespace(n.Data)
		if text == "" {
			return nil
		}
		return []stickies.ContentBlock{{Kind: stickies.BlockParagraph, Spans: t.textSpans(text, marks{})}}
	case html.ElementNode:
	default:
		return nil
	}

	switch n.Data {
	case "h1", "h2", "h3":
		level := int(n.Data[1] - '0')
		return []stickies.ContentBlock{{Kind: stickies.BlockHeading, Level: level, Spans: t.inline(n)}}
	case "ul", "ol":
		ordered := n.Data == "ol"
		var items []stickies.ContentBlock
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || c.Data != "li" {
				continue
			}
			items = append(items, stickies.ContentBlock{Kind: stickies.BlockListItem, Ordered: ordered, Spans: t.inline(c)})
		}
		return items
	case "pre":
		return []stickies.ContentBlock{{Kind: stickies.BlockCode, Spans: t.textSpans(textContent(n), marks{})}}
	case "blockquote":
		return []stickies.ContentBlock{{Kind: stickies.BlockQuote, Spans: t.inline(n)}}
	default:
		return []stickies.ContentBlock{{Kind: stickies.BlockParagraph, Spans: t.inline(n)}}
	}
}

type marks struct {
	bold, italic, underline, code bool
}

func (m marks) with(tag string) marks {
	switch tag {
	case "b", "strong":
		m.bold = true
	case "i", "em":
		m.italic = true
	case "u", "ins":
		m.underline = true
	case "code", "tt", "kbd", "samp":
		m.code = true
	}
	return m
}

func (m marks) span(text string) stickies.InlineSpan {
	return stickies.InlineSpan{Text: text, Bold: m.bold, Italic: m.italic, Underline: m.underline, Code: m.code}
}

// inline collects the spans of n's subtree, capped at MaxSpans.
func (t Translator) inline(n *html.Node) []stickies.InlineSpan {
	var spans []stickies.InlineSpan
	t.collect(n, marks{}, &spans)
	if len(spans) > t.MaxSpans {
		spans = spans[:t.MaxSpans]
	}
	return spans
}

func (t Translator) collect(n *html.Node, m marks, spans *[]stickies.InlineSpan) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if len(*spans) >= t.SpanCeiling {
			return
		}
		switch c.Type {
		case html.TextNode:
			text := stickies.CollapseWhitespace(c.Data)
			if text == "" {
				continue
			}
			t.appendSpans(spans, text, m)
		case html.ElementNode:
			if c.Data == "br" {
				*spans = append(*spans, m.span("\n"))
				continue
			}
			t.collect(c, m.with(c.Data), spans)
		}
	}
}

func (t Translator) appendSpans(spans *[]stickies.InlineSpan, text string, m marks) {
	for _, chunk := range stickies.ChunkText(text, t.ChunkSize) {
		for _, piece := range stickies.SplitRunes(chunk, t.MaxSpanLen) {
			if len(*spans) >= t.SpanCeiling {
				return
			}
			*spans = append(*spans, m.span(piece))
		}
	}
}

func (t Translator) textSpans(text string, m marks) []stickies.InlineSpan {
	var spans []stickies.InlineSpan
	t.appendSpans(&spans, text, m)
	if len(spans) > t.MaxSpans {
		spans = spans[:t.MaxSpans]
	}
	return spans
}

func (t Translator) withDefaults() Translator {
	d := DefaultTranslator()
	if t.ChunkSize <= 0 {
		t.ChunkSize = d.ChunkSize
	}
	if t.MaxSpanLen <= 0 {
		t.MaxSpanLen = d.MaxSpanLen
	}
	if t.MaxSpans <= 0 {
		t.MaxSpans = d.MaxSpans
	}
	if t.SpanCeiling <= 0 || t.SpanCeiling > DefaultSpanCeiling {
		t.SpanCeiling = DefaultSpanCeiling
	}
	if t.MaxSpans > t.SpanCeiling {
		t.MaxSpans = t.SpanCeiling
	}
	return t
}

// PlainText builds paragraph blocks from text without markup: one block per
// chunk, at most MaxPlainChunks of them, never zero.
func PlainText(text string) []stickies.ContentBlock {
	t := DefaultTranslator()
	chunks := stickies.ChunkText(text, t.ChunkSize)
	if len(chunks) > MaxPlainChunks {
		chunks = chunks[:MaxPlainChunks]
	}
	out := make([]stickies.ContentBlock, 0, len(chunks))
	for _, chunk := range chunks {
		var spans []stickies.InlineSpan
		for _, piece := range stickies.SplitRunes(chunk, t.MaxSpanLen) {
			spans = append(spans, stickies.InlineSpan{Text: piece})
		}
		out = append(out, stickies.Paragraph(spans...))
	}
	if len(out) == 0 {
		out = append(out, stickies.Paragraph())
	}
	return out
}

// ForNote picks the translator when the note has hypertext and the plain
// text builder otherwise.
func ForNote(n stickies.Note) []stickies.ContentBlock {
	if n.RichContent != nil {
		return Translate(*n.RichContent)
	}
	return PlainText(n.PlainText)
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		if node.Type == html.ElementNode && node.Data == "br" {
			b.WriteString("\n")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
