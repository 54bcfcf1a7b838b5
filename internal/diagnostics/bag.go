package diagnostics

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"
)

const (
	compileFailedMsg          = "Compilation failed with %d error(s)"
	andWarningMsg             = " and %d warning(s)"
	compileSuccessWithWarning = "Compilation succeeded with %d warning(s)"
)

// DiagnosticBag collects diagnostics during compilation
type DiagnosticBag struct {
	diagnostics []*Diagnostic
	mu          sync.Mutex
	errorCount  int
	warnCount   int
	sourceCache *SourceCache
}

// NewDiagnosticBag creates an empty bag.
func NewDiagnosticBag() *DiagnosticBag {
	return &DiagnosticBag{
		sourceCache: NewSourceCache(),
	}
}

// AddSourceContent registers in-memory source text for rendering.
func (db *DiagnosticBag) AddSourceContent(filepath string, content []byte) {
	db.sourceCache.AddSource(filepath, content)
}

// Add adds a diagnostic to the bag
func (db *DiagnosticBag) Add(diag *Diagnostic) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.diagnostics = append(db.diagnostics, diag)

	switch diag.Severity {
	case Error:
		db.errorCount++
	case Warning:
		db.warnCount++
	}
}

// HasErrors returns true if there are any errors
func (db *DiagnosticBag) HasErrors() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.errorCount > 0
}

// ErrorCount returns the number of errors
func (db *DiagnosticBag) ErrorCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.errorCount
}

// WarningCount returns the number of warnings
func (db *DiagnosticBag) WarningCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.warnCount
}

// Diagnostics returns a copy of all diagnostics in report order.
func (db *DiagnosticBag) Diagnostics() []*Diagnostic {
	db.mu.Lock()
	defer db.mu.Unlock()
	result := make([]*Diagnostic, len(db.diagnostics))
	copy(result, db.diagnostics)
	return result
}

// Sorted returns the diagnostics ordered by source position. Ties keep report order.
func (db *DiagnosticBag) Sorted() []*Diagnostic {
	result := db.Diagnostics()
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Span().Start.Index < result[j].Span().Start.Index
	})
	return result
}

// WithCode returns the diagnostics carrying code.
func (db *DiagnosticBag) WithCode(code string) []*Diagnostic {
	var out []*Diagnostic
	for _, d := range db.Diagnostics() {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

// EmitAll renders every diagnostic followed by a summary line.
func (db *DiagnosticBag) EmitAll(w io.Writer, color bool) {
	db.printSummary(db.Emit(w, color))
}

// Emit renders every diagnostic in source order without the summary.
func (db *DiagnosticBag) Emit(w io.Writer, color bool) *Emitter {
	emitter := NewEmitter(w, db.sourceCache, color)
	for _, diag := range db.Sorted() {
		emitter.Emit(diag)
	}
	return emitter
}

// EmitAllToString renders the bag without colour.
func (db *DiagnosticBag) EmitAllToString() string {
	var buf bytes.Buffer
	db.EmitAll(&buf, false)
	return buf.String()
}

func (db *DiagnosticBag) printSummary(e *Emitter) {
	errors, warnings := db.ErrorCount(), db.WarningCount()
	if errors > 0 {
		msg := fmt.Sprintf(compileFailedMsg, errors)
		if warnings > 0 {
			msg += fmt.Sprintf(andWarningMsg, warnings)
		}
		fmt.Fprintln(e.writer, e.styles.err.Render(msg))
	} else if warnings > 0 {
		fmt.Fprintln(e.writer, e.styles.warn.Render(fmt.Sprintf(compileSuccessWithWarning, warnings)))
	}
}

// Clear removes all diagnostics
func (db *DiagnosticBag) Clear() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.diagnostics = nil
	db.errorCount = 0
	db.warnCount = 0
}
