// Package colors styles command output. Styling goes through a lipgloss
// renderer bound to the output, so it degrades to plain text when colour
// is off.
package colors

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

type COLOR int

const (
	RED COLOR = iota
	GREEN
	YELLOW
	BLUE
	CYAN
	PURPLE
	GREY
	BOLD
)

var palette = map[COLOR]lipgloss.Color{
	RED:    lipgloss.Color("9"),
	GREEN:  lipgloss.Color("10"),
	YELLOW: lipgloss.Color("11"),
	BLUE:   lipgloss.Color("12"),
	CYAN:   lipgloss.Color("14"),
	PURPLE: lipgloss.Color("13"),
	GREY:   lipgloss.Color("8"),
}

// Printer writes styled text to one writer.
type Printer struct {
	w      io.Writer
	styles map[COLOR]lipgloss.Style
}

// NewPrinter styles output to w when color is set.
func NewPrinter(w io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	styles := make(map[COLOR]lipgloss.Style, len(palette)+1)
	for c, fg := range palette {
		styles[c] = r.NewStyle().Foreground(fg)
	}
	styles[BOLD] = r.NewStyle().Bold(true)
	return &Printer{w: w, styles: styles}
}

// Writer is the underlying output.
func (p *Printer) Writer() io.Writer { return p.w }

func (p *Printer) Sprint(c COLOR, args ...any) string {
	return p.styles[c].Render(fmt.Sprint(args...))
}

func (p *Printer) Sprintf(c COLOR, format string, args ...any) string {
	return p.styles[c].Render(fmt.Sprintf(format, args...))
}

func (p *Printer) Printf(c COLOR, format string, args ...any) {
	fmt.Fprint(p.w, p.Sprintf(c, format, args...))
}

func (p *Printer) Println(c COLOR, args ...any) {
	fmt.Fprintln(p.w, p.Sprint(c, args...))
}
