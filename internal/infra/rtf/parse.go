// Package rtf interprets the subset of RTF written by the macOS text system:
// character formatting, paragraphs, code page escapes and \u escapes.
// Everything else (tables of fonts and colours, pictures, attachments) is
// skipped.
package rtf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var (
	ErrNotRTF     = errors.New("rtf: missing {\\rtf header")
	ErrUnbalanced = errors.New("rtf: unbalanced groups")
)

type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
}

type Paragraph struct {
	Runs []Run
}

func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

type Document struct {
	Paragraphs []Paragraph
}

// skippedDestinations never contribute text.
var skippedDestinations = map[string]struct{}{
	"fonttbl":           {},
	"colortbl":          {},
	"expandedcolortbl":  {},
	"stylesheet":        {},
	"listtable":         {},
	"listoverridetable": {},
	"info":              {},
	"pict":              {},
	"object":            {},
	"header":            {},
	"footer":            {},
	"themedata":         {},
	"datastore":         {},
	"xmlnstbl":          {},
	"generator":         {},
	"rsidtbl":           {},
	"NeXTGraphic":       {},
	"listtext":          {},
}

var symbolWords = map[string]string{
	"tab":       "\t",
	"emdash":    "—",
	"endash":    "–",
	"bullet":    "•",
	"lquote":    "‘",
	"rquote":    "’",
	"ldblquote": "“",
	"rdblquote": "”",
	"emspace":   " ",
	"enspace":   " ",
	"cell":      "\t",
}

type groupState struct {
	bold      bool
	italic    bool
	underline bool
	skip      bool
	uc        int
}

type parser struct {
	src     string
	pos     int
	stack   []groupState
	cur     groupState
	codec   encoding.Encoding
	doc     Document
	para    Paragraph
	pending rune
	// fallback characters still to drop after a \u escape
	skipChars int
	lenient   bool
}

// Parse interprets src, which must be a complete RTF document.
func Parse(src string) (Document, error) {
	trimmed := strings.TrimLeft(src, " \t\r\n\uFEFF")
	if !strings.HasPrefix(trimmed, `{\rtf`) {
		return Document{}, ErrNotRTF
	}
	p := &parser{src: trimmed, cur: groupState{uc: 1}, codec: charmap.Windows1252}
	if err := p.run(); err != nil {
		return Document{}, err
	}
	return p.doc, nil
}

// ParseLenient interprets a damaged or truncated document and keeps whatever
// text it can reach. Stray closing braces, unclosed groups and a trailing
// backslash are ignored. Input with no RTF structure at all still fails
// with ErrNotRTF so callers can treat it as plain text.
func ParseLenient(src string) (Document, error) {
	trimmed := strings.TrimLeft(src, " \t\r\n\uFEFF")
	if i := strings.Index(trimmed, `{\rtf`); i >= 0 {
		trimmed = trimmed[i:]
	} else if !strings.HasPrefix(trimmed, `{\`) {
		return Document{}, ErrNotRTF
	}
	p := &parser{src: trimmed, cur: groupState{uc: 1}, codec: charmap.Windows1252, lenient: true}
	if err := p.run(); err != nil {
		return Document{}, err
	}
	return p.doc, nil
}

func (p *parser) run() error {
	opened := false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '{':
			p.pos++
			p.stack = append(p.stack, p.cur)
			opened = true
		case '}':
			p.pos++
			if len(p.stack) == 0 {
				if p.lenient {
					continue
				}
				return fmt.Errorf("%w: stray closing brace at offset %d", ErrUnbalanced, p.pos-1)
			}
			p.cur = p.stack[len(p.stack)-1]
			p.stack = p.stack[:len(p.stack)-1]
			p.skipChars = 0
			if len(p.stack) == 0 {
				p.endParagraph(false)
				if !p.lenient {
					return nil
				}
			}
		case '\\':
			if err := p.control(); err != nil {
				return err
			}
		case '\r', '\n', 0:
			p.pos++
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			p.pos += size
			p.text(string(r))
		}
	}
	if p.lenient {
		if len(p.stack) > 0 {
			p.cur = p.stack[0]
			p.stack = nil
		}
		p.endParagraph(false)
		return nil
	}
	if !opened || len(p.stack) != 0 {
		return fmt.Errorf("%w: %d groups left open", ErrUnbalanced, len(p.stack))
	}
	return nil
}

func (p *parser) control() error {
	p.pos++
	if p.pos >= len(p.src) {
		if p.lenient {
			return nil
		}
		return fmt.Errorf("%w: dangling backslash", ErrUnbalanced)
	}
	c := p.src[p.pos]
	if !isLetter(c) {
		p.pos++
		switch c {
		case '\\', '{', '}':
			p.text(string(c))
		case '~':
			p.text("\u00a0")
		case '_':
			p.text("-")
		case '\'':
			if p.pos+2 > len(p.src) {
				return nil
			}
			v, err := strconv.ParseUint(p.src[p.pos:p.pos+2], 16, 8)
			p.pos += 2
			if err != nil {
				return nil
			}
			if p.skipChars > 0 {
				p.skipChars--
				return nil
			}
			p.text(p.decodeByte(byte(v)))
		case '*':
			p.cur.skip = true
		case '\r', '\n':
			p.endParagraph(true)
		}
		return nil
	}

	start := p.pos
	for p.pos < len(p.src) && isLetter(p.src[p.pos]) {
		p.pos++
	}
	word := p.src[start:p.pos]

	hasParam := false
	param := 0
	numStart := p.pos
	if p.pos < len(p.src) && p.src[p.pos] == '-' {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	if digits := p.src[numStart:p.pos]; digits != "" && digits != "-" {
		hasParam = true
		param, _ = strconv.Atoi(digits)
	} else {
		p.pos = numStart
	}
	if p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}

	p.word(word, hasParam, param)
	return nil
}

func (p *parser) word(word string, hasParam bool, param int) {
	if _, ok := skippedDestinations[word]; ok {
		p.cur.skip = true
		return
	}
	on := !hasParam || param != 0

	switch word {
	case "par", "sect", "row":
		p.endParagraph(true)
	case "line":
		p.text("\n")
	case "b":
		p.cur.bold = on
	case "i":
		p.cur.italic = on
	case "ul", "uld", "uldb", "ulw":
		p.cur.underline = on
	case "ulnone":
		p.cur.underline = false
	case "plain":
		p.cur.bold, p.cur.italic, p.cur.underline = false, false, false
	case "uc":
		if hasParam && param >= 0 {
			p.cur.uc = param
		}
	case "u":
		if !hasParam {
			return
		}
		p.unicode(param)
		p.skipChars = p.cur.uc
	case "mac":
		p.codec = charmap.Macintosh
	case "ansicpg":
		switch param {
		case 10000:
			p.codec = charmap.Macintosh
		case 1250:
			p.codec = charmap.Windows1250
		case 1251:
			p.codec = charmap.Windows1251
		default:
			p.codec = charmap.Windows1252
		}
	default:
		if s, ok := symbolWords[word]; ok {
			p.text(s)
		}
	}
}

func (p *parser) unicode(v int) {
	if v < 0 {
		v += 65536
	}
	r := rune(v)
	switch {
	case utf16.IsSurrogate(r) && r < 0xDC00:
		p.pending = r
		return
	case utf16.IsSurrogate(r):
		if p.pending != 0 {
			combined := utf16.DecodeRune(p.pending, r)
			p.pending = 0
			p.emit(string(combined))
		}
		return
	}
	p.pending = 0
	p.emit(string(r))
}

// text appends literal document text, honouring \u fallback skipping.
func (p *parser) text(s string) {
	if p.skipChars > 0 {
		p.skipChars--
		return
	}
	p.pending = 0
	p.emit(s)
}

func (p *parser) emit(s string) {
	if p.cur.skip || s == "" {
		return
	}
	run := Run{Text: s, Bold: p.cur.bold, Italic: p.cur.italic, Underline: p.cur.underline}
	if n := len(p.para.Runs); n > 0 {
		last := &p.para.Runs[n-1]
		if last.Bold == run.Bold && last.Italic == run.Italic && last.Underline == run.Underline {
			last.Text += run.Text
			return
		}
	}
	p.para.Runs = append(p.para.Runs, run)
}

// endParagraph closes the current paragraph. Explicit breaks keep empty
// paragraphs so blank lines survive.
func (p *parser) endParagraph(explicit bool) {
	if p.cur.skip {
		return
	}
	if len(p.para.Runs) == 0 && !explicit {
		return
	}
	p.doc.Paragraphs = append(p.doc.Paragraphs, p.para)
	p.para = Paragraph{}
}

func (p *parser) decodeByte(b byte) string {
	out, err := p.codec.NewDecoder().Bytes([]byte{b})
	if err != nil {
		return string(rune(b))
	}
	return string(out)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
