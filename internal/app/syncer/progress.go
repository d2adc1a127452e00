package syncer

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"golang.org/x/term"
)

type progressBar struct {
	out             io.Writer
	enabled         bool
	total           int
	current         int
	lastRenderWidth int
	label           string
	bar             progress.Model
}

func newProgressBar(total int, out io.Writer) *progressBar {
	if total <= 0 {
		total = 1
	}
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 36

	if cols, err := strconv.Atoi(strings.TrimSpace(os.Getenv("COLUMNS"))); err == nil && cols > 0 {
		bar.Width = min(max(cols-40, 16), 64)
	}

	return &progressBar{
		out:     out,
		enabled: isTerminal(out),
		total:   total,
		bar:     bar,
	}
}

func (p *progressBar) Advance(label string) {
	if !p.enabled {
		return
	}
	p.current = min(p.current+1, p.total)
	p.label = label
	p.render()
}

func (p *progressBar) Finish(label string) {
	if !p.enabled {
		return
	}
	p.current = p.total
	p.label = label
	p.render()
	fmt.Fprint(p.out, "\n")
	p.lastRenderWidth = 0
}

func (p *progressBar) Close() {
	if !p.enabled {
		return
	}
	if p.lastRenderWidth > 0 {
		fmt.Fprint(p.out, "\n")
		p.lastRenderWidth = 0
	}
}

func (p *progressBar) render() {
	percent := min(max(float64(p.current)/float64(p.total), 0), 1)
	line := fmt.Sprintf("%s %3.0f%% %d/%d %s", p.bar.ViewAs(percent), percent*100, p.current, p.total, strings.TrimSpace(p.label))
	pad := ""
	if p.lastRenderWidth > len(line) {
		pad = strings.Repeat(" ", p.lastRenderWidth-len(line))
	}
	fmt.Fprintf(p.out, "\r%s%s", line, pad)
	p.lastRenderWidth = len(line)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv("TERM")), "dumb") {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
