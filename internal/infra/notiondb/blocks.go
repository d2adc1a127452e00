package notiondb

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/sleroq/stickies-to-notion/internal/domain/stickies"
)

const codeLanguage = "plain text"

// Blocks converts content blocks to their notionapi request form.
func Blocks(in []stickies.ContentBlock) []notionapi.Block {
	out := make([]notionapi.Block, 0, len(in))
	for _, b := range in {
		out = append(out, Block(b))
	}
	return out
}

func Block(b stickies.ContentBlock) notionapi.Block {
	rich := RichText(b.Spans)
	switch b.Kind {
	case stickies.BlockHeading:
		switch b.Level {
		case 1:
			return &notionapi.Heading1Block{
				BasicBlock: basic(notionapi.BlockTypeHeading1),
				Heading1:   notionapi.Heading{RichText: rich},
			}
		case 2:
			return &notionapi.Heading2Block{
				BasicBlock: basic(notionapi.BlockTypeHeading2),
				Heading2:   notionapi.Heading{RichText: rich},
			}
		default:
			return &notionapi.Heading3Block{
				BasicBlock: basic(notionapi.BlockTypeHeading3),
				Heading3:   notionapi.Heading{RichText: rich},
			}
		}
	case stickies.BlockListItem:
		if b.Ordered {
			return &notionapi.NumberedListItemBlock{
				BasicBlock:       basic(notionapi.BlockTypeNumberedListItem),
				NumberedListItem: notionapi.ListItem{RichText: rich},
			}
		}
		return &notionapi.BulletedListItemBlock{
			BasicBlock:       basic(notionapi.BlockTypeBulletedListItem),
			BulletedListItem: notionapi.ListItem{RichText: rich},
		}
	case stickies.BlockCode:
		return &notionapi.CodeBlock{
			BasicBlock: basic(notionapi.BlockTypeCode),
			Code:       notionapi.Code{RichText: rich, Language: codeLanguage},
		}
	case stickies.BlockQuote:
		return &notionapi.QuoteBlock{
			BasicBlock: basic(notionapi.BlockTypeQuote),
			Quote:      notionapi.Quote{RichText: rich},
		}
	case stickies.BlockDivider:
		return &notionapi.DividerBlock{
			BasicBlock: basic(notionapi.BlockTypeDivider),
		}
	default:
		return &notionapi.ParagraphBlock{
			BasicBlock: basic(notionapi.BlockTypeParagraph),
			Paragraph:  notionapi.Paragraph{RichText: rich},
		}
	}
}

// RichText maps spans one to one onto text rich-text objects.
func RichText(spans []stickies.InlineSpan) []notionapi.RichText {
	out := make([]notionapi.RichText, 0, len(spans))
	for _, s := range spans {
		rt := textSpan(s.Text)
		if s.Bold || s.Italic || s.Underline || s.Code {
			rt.Annotations = &notionapi.Annotations{
				Bold:      s.Bold,
				Italic:    s.Italic,
				Underline: s.Underline,
				Code:      s.Code,
				Color:     notionapi.ColorDefault,
			}
		}
		out = append(out, rt)
	}
	return out
}

func basic(t notionapi.BlockType) notionapi.BasicBlock {
	return notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: t}
}

func textSpan(s string) notionapi.RichText {
	return notionapi.RichText{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: s},
	}
}

func richTextProperty(s string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		Type:     notionapi.PropertyTypeRichText,
		RichText: []notionapi.RichText{textSpan(s)},
	}
}

func dateProperty(t time.Time) notionapi.DateProperty {
	start := notionapi.Date(t)
	return notionapi.DateProperty{
		Type: notionapi.PropertyTypeDate,
		Date: &notionapi.DateObject{Start: &start},
	}
}
