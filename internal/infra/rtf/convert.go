package rtf

import (
	"strings"

	"golang.org/x/net/html"
)

// HTMLConverter renders an RTF document as an HTML document with one <p>
// per paragraph and <b>/<i>/<u> for character formatting.
type HTMLConverter struct{}

func (HTMLConverter) Name() string { return "rtf-html" }

func (HTMLConverter) Convert(markup string) (string, error) {
	doc, err := Parse(markup)
	if err != nil {
		return "", err
	}
	return RenderHTML(doc), nil
}

// TextConverter renders an RTF document as plain text, one line per
// paragraph. It parses leniently so a note whose markup is truncated still
// yields its readable text.
type TextConverter struct{}

func (TextConverter) Name() string { return "rtf-text" }

func (TextConverter) Convert(markup string) (string, error) {
	doc, err := ParseLenient(markup)
	if err != nil {
		return "", err
	}
	return RenderText(doc), nil
}

func RenderHTML(doc Document) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, p := range doc.Paragraphs {
		b.WriteString("<p>")
		for _, r := range p.Runs {
			writeRun(&b, r)
		}
		b.WriteString("</p>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

func writeRun(b *strings.Builder, r Run) {
	if r.Bold {
		b.WriteString("<b>")
	}
	if r.Italic {
		b.WriteString("<i>")
	}
	if r.Underline {
		b.WriteString("<u>")
	}
	lines := strings.Split(r.Text, "\n")
	for i, line := range lines {
		if i > 0 {
			b.WriteString("<br>")
		}
		b.WriteString(html.EscapeString(line))
	}
	if r.Underline {
		b.WriteString("</u>")
	}
	if r.Italic {
		b.WriteString("</i>")
	}
	if r.Bold {
		b.WriteString("</b>")
	}
}

func RenderText(doc Document) string {
	lines := make([]string, 0, len(doc.Paragraphs))
	for _, p := range doc.Paragraphs {
		lines = append(lines, p.Text())
	}
	return strings.Join(lines, "\n")
}
