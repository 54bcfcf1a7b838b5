// Package pipeline runs the compilation stages over one source file: lexing,
// parsing and checking, then lowering to IR or bytecode for a back end.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/frontend/ast"
	"github.com/Evge14n/tryzub/internal/frontend/lexer"
	"github.com/Evge14n/tryzub/internal/ir"
	"github.com/Evge14n/tryzub/internal/ir/opt"
	"github.com/Evge14n/tryzub/internal/phase"
	"github.com/Evge14n/tryzub/internal/semantics/typechecker"
	"github.com/Evge14n/tryzub/internal/tokens"
)

// ErrFailed is returned by a stage that left errors in the unit's
// diagnostics.
var ErrFailed = errors.New("compilation failed with errors")

// Options configures a Pipeline.
type Options struct {
	Lexer lexer.Options
	// OptLevel 0 skips folding and dead code elimination.
	OptLevel int
	Logger   *slog.Logger
}

// Pipeline coordinates the compilation of units.
type Pipeline struct {
	opts Options
	log  *slog.Logger
}

// New creates a new compilation pipeline
func New(opts Options) *Pipeline {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{opts: opts, log: log}
}

// Unit is one source file and everything the stages produced from it.
type Unit struct {
	File        string
	Source      []byte
	Diagnostics *diagnostics.DiagnosticBag
	Stage       phase.Stage

	Tokens  []tokens.Token
	AST     *ast.Module
	Program *typechecker.Program
	IR      *ir.Module
	Stats   opt.Stats
}

// NewUnit wraps src, named file in diagnostics.
func NewUnit(file string, src []byte) *Unit {
	bag := diagnostics.NewDiagnosticBag()
	bag.AddSourceContent(file, src)
	return &Unit{File: file, Source: src, Diagnostics: bag}
}

// Load reads path into a new unit.
func Load(path string) (*Unit, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file %s: %w", path, err)
	}
	return NewUnit(path, src), nil
}

// HasErrors reports whether any stage reported an error.
func (u *Unit) HasErrors() bool {
	return u.Diagnostics.HasErrors()
}

func (u *Unit) advance(to phase.Stage) error {
	s, err := phase.Advance(u.Stage, to)
	if err != nil {
		return fmt.Errorf("%s: %w", u.File, err)
	}
	u.Stage = s
	return nil
}
