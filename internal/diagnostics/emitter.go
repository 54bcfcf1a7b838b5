package diagnostics

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/Evge14n/tryzub/internal/source"
)

const (
	STR_MULTIPLIER = "%*d | "
	LINE_POS       = "%s--> %s:%d:%d"
)

// SourceCache caches source file contents for error reporting
type SourceCache struct {
	mu    sync.Mutex
	files map[string][]string
}

func NewSourceCache() *SourceCache {
	return &SourceCache{
		files: make(map[string][]string),
	}
}

// AddSource registers content for path so it is never read from disk.
func (sc *SourceCache) AddSource(path string, content []byte) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.files[path] = source.SplitLines(content)
}

// GetLine retrieves a specific line from a source file
func (sc *SourceCache) GetLine(path string, line int) (string, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	lines, ok := sc.files[path]
	if !ok {
		var err error
		lines, err = source.GetSourceLines(path)
		if err != nil {
			return "", err
		}
		sc.files[path] = lines
	}
	if line > 0 && line <= len(lines) {
		return lines[line-1], nil
	}
	return "", fmt.Errorf("line %d out of range", line)
}

type styles struct {
	err, warn, info, hint lipgloss.Style
	gutter, location      lipgloss.Style
	secondary, help       lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		err:       r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		warn:      r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		info:      r.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		hint:      r.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
		gutter:    r.NewStyle().Foreground(lipgloss.Color("8")),
		location:  r.NewStyle().Foreground(lipgloss.Color("12")),
		secondary: r.NewStyle().Foreground(lipgloss.Color("12")),
		help:      r.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

func (s styles) severity(sev Severity) lipgloss.Style {
	switch sev {
	case Warning:
		return s.warn
	case Info:
		return s.info
	case Hint:
		return s.hint
	default:
		return s.err
	}
}

// Emitter handles the rendering and output of diagnostics
type Emitter struct {
	cache  *SourceCache
	writer io.Writer
	styles styles
}

// NewEmitter creates an emitter writing to w. Colour is dropped when color is
// false or NO_COLOR is set.
func NewEmitter(w io.Writer, cache *SourceCache, color bool) *Emitter {
	if cache == nil {
		cache = NewSourceCache()
	}
	r := lipgloss.NewRenderer(w)
	if !color || os.Getenv("NO_COLOR") != "" {
		r.SetColorProfile(termenv.Ascii)
	} else {
		r.SetColorProfile(termenv.ANSI256)
	}
	return &Emitter{cache: cache, writer: w, styles: newStyles(r)}
}

// ColorEnabled reports whether w is a terminal worth colouring.
func ColorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) && os.Getenv("NO_COLOR") == ""
}

func (e *Emitter) Emit(diag *Diagnostic) {
	e.printHeader(diag)

	width := 1
	for _, label := range diag.Labels {
		if w := len(fmt.Sprint(label.Location.End.Line)); w > width {
			width = w
		}
	}
	for _, label := range diag.Labels {
		e.printLabel(label, diag.Severity, width)
	}

	for _, note := range diag.Notes {
		fmt.Fprintf(e.writer, "%s = note: %s\n", strings.Repeat(" ", width), note.Message)
	}
	if diag.Help != "" {
		fmt.Fprintf(e.writer, "%s = %s %s\n", strings.Repeat(" ", width), e.styles.help.Render("help:"), diag.Help)
	}
	fmt.Fprintln(e.writer)
}

func (e *Emitter) printHeader(diag *Diagnostic) {
	style := e.styles.severity(diag.Severity)
	head := diag.Severity.String()
	if diag.Code != "" {
		head += "[" + diag.Code + "]"
	}
	fmt.Fprintf(e.writer, "%s: %s\n", style.Render(head), style.Render(diag.Message))
}

func (e *Emitter) printLabel(label Label, severity Severity, width int) {
	loc := label.Location
	if !loc.IsValid() {
		return
	}
	pad := strings.Repeat(" ", width)
	fmt.Fprintln(e.writer, e.styles.location.Render(fmt.Sprintf(LINE_POS, pad, loc.Filename, loc.Start.Line, loc.Start.Column)))
	fmt.Fprintln(e.writer, e.styles.gutter.Render(pad+" |"))

	line, err := e.cache.GetLine(loc.Filename, loc.Start.Line)
	if err != nil {
		return
	}
	fmt.Fprint(e.writer, e.styles.gutter.Render(fmt.Sprintf(STR_MULTIPLIER, width, loc.Start.Line)))
	fmt.Fprintln(e.writer, line)

	length := 1
	if loc.End.Line == loc.Start.Line && loc.End.Column > loc.Start.Column {
		length = loc.End.Column - loc.Start.Column
	}
	mark, style := "^", e.styles.severity(severity)
	if label.Style == Primary && length > 1 {
		mark = "~"
	}
	if label.Style == Secondary {
		mark, style = "-", e.styles.secondary
	}
	underline := strings.Repeat(mark, length)
	if label.Message != "" {
		underline += " " + label.Message
	}
	fmt.Fprintf(e.writer, "%s%s%s\n", e.styles.gutter.Render(pad+" | "), strings.Repeat(" ", loc.Start.Column-1), style.Render(underline))
}
