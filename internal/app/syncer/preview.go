package syncer

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/sleroq/stickies-to-notion/internal/domain/stickies"
)

const (
	PreviewTable = "table"
	PreviewYAML  = "yaml"

	excerptLen = 80
)

type PreviewEntry struct {
	Title       string `yaml:"title"`
	Created     string `yaml:"created"`
	Modified    string `yaml:"modified"`
	Color       string `yaml:"color,omitempty"`
	Fingerprint string `yaml:"fingerprint"`
	SourceID    string `yaml:"source_id"`
	Excerpt     string `yaml:"excerpt"`
}

func PreviewEntries(notes []stickies.Note) []PreviewEntry {
	out := make([]PreviewEntry, 0, len(notes))
	for _, n := range notes {
		out = append(out, PreviewEntry{
			Title:       n.Title,
			Created:     stickies.ISOTimestamp(n.Created),
			Modified:    stickies.ISOTimestamp(n.Modified),
			Color:       string(n.Color),
			Fingerprint: stickies.Fingerprint(n),
			SourceID:    n.SourceID,
			Excerpt:     excerpt(n.PlainText),
		})
	}
	return out
}

// WritePreview prints what a real run would write, without touching the
// remote database.
func WritePreview(w io.Writer, format string, notes []stickies.Note) error {
	entries := PreviewEntries(notes)
	switch strings.ToLower(format) {
	case PreviewYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	case PreviewTable, "":
		return writeTable(w, entries)
	default:
		return fmt.Errorf("unknown preview format %q", format)
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

func writeTable(w io.Writer, entries []PreviewEntry) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TITLE", "CREATED", "MODIFIED", "COLOR", "HASH", "EXCERPT").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle
		})
	for _, e := range entries {
		t.Row(e.Title, e.Created, e.Modified, e.Color, shortHash(e.Fingerprint), e.Excerpt)
	}

	summary := titleStyle.Render(fmt.Sprintf("Dry run: %d note(s) would be synced", len(entries)))
	if _, err := fmt.Fprintln(w, summary); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func excerpt(plain string) string {
	runes := []rune(stickies.NormalizeWhitespace(plain))
	if len(runes) <= excerptLen {
		return string(runes)
	}
	return string(runes[:excerptLen])
}

func shortHash(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
