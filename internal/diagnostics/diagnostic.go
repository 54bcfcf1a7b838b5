package diagnostics

import (
	"fmt"

	"github.com/Evge14n/tryzub/internal/source"
)

// Severity represents the severity level of a diagnostic
type Severity int

const (
	Error Severity = iota
	Warning
	Info
	Hint
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Hint:
		return "hint"
	default:
		return "unknown"
	}
}

// Label represents a labeled section of code in a diagnostic
type Label struct {
	Location source.Location
	Message  string
	Style    LabelStyle
}

type LabelStyle int

const (
	Primary   LabelStyle = iota // The main error location (uses ^^^)
	Secondary                   // Additional context (uses ---)
)

// Note represents additional information attached to a diagnostic
type Note struct {
	Message string
}

// Diagnostic represents a compiler diagnostic (error, warning, etc.)
type Diagnostic struct {
	Severity Severity
	Message  string
	Code     string // Error code like "T0001"
	FilePath string // Source file for this diagnostic
	Labels   []Label
	Notes    []Note
	Help     string // Suggestion for fixing the error
}

// NewError creates a new error diagnostic
func NewError(message string) *Diagnostic {
	return &Diagnostic{Severity: Error, Message: message}
}

// NewWarning creates a new warning diagnostic
func NewWarning(message string) *Diagnostic {
	return &Diagnostic{Severity: Warning, Message: message}
}

// NewInfo creates a new info diagnostic
func NewInfo(message string) *Diagnostic {
	return &Diagnostic{Severity: Info, Message: message}
}

// Errorf is a shorthand for NewError(fmt.Sprintf(...)).WithCode(code).
func Errorf(code, format string, args ...any) *Diagnostic {
	return NewError(fmt.Sprintf(format, args...)).WithCode(code)
}

// WithCode sets the error code
func (d *Diagnostic) WithCode(code string) *Diagnostic {
	d.Code = code
	return d
}

// WithPrimaryLabel adds the main labeled location. Only the first one is kept.
func (d *Diagnostic) WithPrimaryLabel(loc source.Location, message string) *Diagnostic {
	for _, label := range d.Labels {
		if label.Style == Primary {
			return d
		}
	}
	if d.FilePath == "" {
		d.FilePath = loc.Filename
	}
	d.Labels = append([]Label{{Location: loc, Message: message, Style: Primary}}, d.Labels...)
	return d
}

// WithSecondaryLabel adds a context label. A primary label must exist first.
func (d *Diagnostic) WithSecondaryLabel(loc source.Location, message string) *Diagnostic {
	if d.Primary() == nil {
		panic("cannot add secondary label without primary label")
	}
	d.Labels = append(d.Labels, Label{Location: loc, Message: message, Style: Secondary})
	return d
}

// WithNote adds a note to the diagnostic
func (d *Diagnostic) WithNote(message string) *Diagnostic {
	d.Notes = append(d.Notes, Note{Message: message})
	return d
}

// WithHelp sets helpful suggestion for fixing the error
func (d *Diagnostic) WithHelp(help string) *Diagnostic {
	d.Help = help
	return d
}

// Primary returns the primary label, or nil.
func (d *Diagnostic) Primary() *Label {
	for i := range d.Labels {
		if d.Labels[i].Style == Primary {
			return &d.Labels[i]
		}
	}
	return nil
}

// Span is the location of the primary label, the zero Location if none.
func (d *Diagnostic) Span() source.Location {
	if p := d.Primary(); p != nil {
		return p.Location
	}
	return source.Location{}
}

func (d *Diagnostic) Error() string {
	span := d.Span()
	prefix := d.Severity.String()
	if d.Code != "" {
		prefix += "[" + d.Code + "]"
	}
	if span.IsValid() {
		return fmt.Sprintf("%s: %s: %s", span, prefix, d.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, d.Message)
}
