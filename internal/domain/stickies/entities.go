package stickies

import "time"

// Color is a palette name. The zero value means no colour is known.
type Color string

const (
	ColorNone   Color = ""
	ColorGray   Color = "Gray"
	ColorYellow Color = "Yellow"
	ColorGreen  Color = "Green"
	ColorBlue   Color = "Blue"
	ColorPink   Color = "Pink"
	ColorPurple Color = "Purple"
)

// Note is one sticky note after extraction. It is built once by an
// extractor and treated as read-only afterwards.
type Note struct {
	Title       string
	Created     time.Time
	Modified    time.Time
	PlainText   string
	RichContent *string
	SourceID    string
	Color       Color
}

type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockListItem
	BlockCode
	BlockQuote
	BlockDivider
)

func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockHeading:
		return "heading"
	case BlockListItem:
		return "list_item"
	case BlockCode:
		return "code"
	case BlockQuote:
		return "quote"
	case BlockDivider:
		return "divider"
	default:
		return "unknown"
	}
}

// ContentBlock is one typed unit of page body content. Level is only
// meaningful for headings (1..3) and Ordered only for list items.
type ContentBlock struct {
	Kind    BlockKind
	Level   int
	Ordered bool
	Spans   []InlineSpan
}

type InlineSpan struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	Code      bool
}

func Paragraph(spans ...InlineSpan) ContentBlock {
	return ContentBlock{Kind: BlockParagraph, Spans: spans}
}

func Divider() ContentBlock {
	return ContentBlock{Kind: BlockDivider}
}

// PlainText concatenates the text of all spans.
func (b ContentBlock) PlainText() string {
	out := ""
	for _, s := range b.Spans {
		out += s.Text
	}
	return out
}
