// Package richtext turns opaque rich-text payloads into hypertext and plain
// text. Normalize never fails: every tier has a cheaper fallback.
package richtext

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/sleroq/stickies-to-notion/internal/domain/stickies"
	"github.com/sleroq/stickies-to-notion/internal/infra/rtf"
)

// Converter turns decoded rich-text markup into another representation.
type Converter interface {
	Name() string
	Convert(markup string) (string, error)
}

// Normalizer tries its converters in the declared order.
type Normalizer struct {
	Hypertext []Converter
	PlainText []Converter
	Logger    *slog.Logger
}

// New returns a Normalizer with the RTF converters.
func New(logger *slog.Logger) *Normalizer {
	return &Normalizer{
		Hypertext: []Converter{rtf.HTMLConverter{}},
		PlainText: []Converter{rtf.TextConverter{}},
		Logger:    logger,
	}
}

var (
	hexEscapeRe   = regexp.MustCompile(`\\'[0-9a-fA-F]{2}`)
	controlWordRe = regexp.MustCompile(`\\[a-zA-Z]+-?\d* ?`)
	braceRe       = regexp.MustCompile(`[{}]`)
)

// Normalize decodes payload and returns its hypertext (nil when no
// converter succeeded) and its plain text.
func (n *Normalizer) Normalize(payload []byte) (*string, string) {
	markup := decode(payload)

	var hypertext *string
	if out, ok := n.first(n.Hypertext, markup); ok {
		hypertext = &out
	}

	var plain string
	if hypertext != nil {
		plain = StripHTML(*hypertext)
	} else if out, ok := n.first(n.PlainText, markup); ok {
		plain = out
	} else {
		plain = CrudeStrip(markup)
	}

	plain = stickies.Sanitize(stickies.TrimRightLines(plain))
	if hypertext != nil {
		h := stickies.Sanitize(*hypertext)
		hypertext = &h
	}
	return hypertext, plain
}

func (n *Normalizer) first(converters []Converter, markup string) (string, bool) {
	for _, c := range converters {
		out, err := safeConvert(c, markup)
		if err == nil {
			return out, true
		}
		n.logger().Debug("converter failed", "converter", c.Name(), "error", err)
	}
	return "", false
}

func safeConvert(c Converter, markup string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("converter %s panicked: %v", c.Name(), r)
		}
	}()
	return c.Convert(markup)
}

func (n *Normalizer) logger() *slog.Logger {
	if n.Logger != nil {
		return n.Logger
	}
	return slog.Default()
}

// decode reads payload as UTF-8, replacing invalid sequences, and falls back
// to Latin-1 when the UTF-8 decoder reports an error.
func decode(payload []byte) string {
	out, err := unicode.UTF8.NewDecoder().Bytes(payload)
	if err == nil {
		return string(out)
	}
	latin, err := charmap.ISO8859_1.NewDecoder().Bytes(payload)
	if err != nil {
		return strings.ToValidUTF8(string(payload), "\uFFFD")
	}
	return string(latin)
}

// StripHTML extracts the text nodes of a hypertext document, one per line,
// right-trimming each line.
func StripHTML(doc string) string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return stickies.TrimRightLines(doc)
	}
	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			switch node.Data {
			case "script", "style", "head", "title":
				return
			}
		}
		if node.Type == html.TextNode {
			parts = append(parts, node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return stickies.TrimRightLines(strings.Join(parts, "\n"))
}

// CrudeStrip removes hex escapes, control words and braces from markup.
func CrudeStrip(markup string) string {
	s := hexEscapeRe.ReplaceAllString(markup, "")
	s = controlWordRe.ReplaceAllString(s, "")
	s = braceRe.ReplaceAllString(s, "")
	return stickies.TrimRightLines(s)
}
