package pipeline

import (
	"errors"
	"time"

	"github.com/Evge14n/tryzub/internal/bytecode"
	"github.com/Evge14n/tryzub/internal/codegen/cgen"
	"github.com/Evge14n/tryzub/internal/codegen/jit"
	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/frontend/lexer"
	"github.com/Evge14n/tryzub/internal/frontend/parser"
	"github.com/Evge14n/tryzub/internal/ir/gen"
	"github.com/Evge14n/tryzub/internal/ir/opt"
	"github.com/Evge14n/tryzub/internal/phase"
	"github.com/Evge14n/tryzub/internal/semantics/typechecker"
)

// stage runs fn, logs how long it took and advances u on success.
func (p *Pipeline) stage(u *Unit, to phase.Stage, fn func() error) error {
	if !phase.CanAdvance(u.Stage, to) {
		return u.advance(to)
	}
	start := time.Now()
	err := fn()
	p.log.Debug("phase",
		"name", to.String(),
		"file", u.File,
		"duration", time.Since(start),
		"errors", u.Diagnostics.ErrorCount())
	if err != nil {
		return err
	}
	return u.advance(to)
}

// Lex tokenizes the unit. Lexical errors do not stop parsing.
func (p *Pipeline) Lex(u *Unit) error {
	return p.stage(u, phase.Lexed, func() error {
		u.Tokens = lexer.New(u.File, u.Source, u.Diagnostics, p.opts.Lexer).Tokenize()
		return nil
	})
}

// Parse builds the tree, recovering from syntax errors.
func (p *Pipeline) Parse(u *Unit) error {
	return p.stage(u, phase.Parsed, func() error {
		u.AST = parser.Parse(u.Tokens, u.File, u.Diagnostics)
		return nil
	})
}

// Check resolves and type checks the tree. It does not run when lexing or
// parsing reported errors.
func (p *Pipeline) Check(u *Unit) error {
	if u.HasErrors() {
		return ErrFailed
	}
	return p.stage(u, phase.Checked, func() error {
		u.Program = typechecker.Check(u.AST, u.Diagnostics)
		if u.HasErrors() {
			return ErrFailed
		}
		return nil
	})
}

// Front runs lexing, parsing and checking.
func (p *Pipeline) Front(u *Unit) error {
	if err := p.Lex(u); err != nil {
		return err
	}
	if err := p.Parse(u); err != nil {
		return err
	}
	return p.Check(u)
}

// Lower builds and optimizes the IR. A program the IR back ends cannot run
// fails with a *gen.UnsupportedError and leaves the unit checked, so it can
// still go to the bytecode compiler.
func (p *Pipeline) Lower(u *Unit) error {
	err := p.stage(u, phase.Lowered, func() error {
		mod, err := gen.Build(u.Program)
		if err != nil {
			return err
		}
		u.IR = mod
		return nil
	})
	if err != nil {
		return err
	}
	return p.stage(u, phase.Optimized, func() error {
		u.Stats = opt.Module(u.IR, p.opts.OptLevel)
		p.log.Debug("optimized",
			"folded", u.Stats.Folded,
			"branches", u.Stats.Branches,
			"instrs", u.Stats.Instrs,
			"blocks", u.Stats.Blocks)
		return nil
	})
}

// Bytecode compiles the checked program for the VM.
func (p *Pipeline) Bytecode(u *Unit) (*bytecode.Module, error) {
	var mod *bytecode.Module
	err := p.stage(u, phase.Generated, func() error {
		var err error
		mod, err = bytecode.Compile(u.Program)
		return err
	})
	return mod, err
}

// JIT compiles the optimized IR into closures.
func (p *Pipeline) JIT(u *Unit) (*jit.Program, error) {
	var prog *jit.Program
	err := p.stage(u, phase.Generated, func() error {
		var err error
		prog, err = jit.Compile(u.IR)
		return err
	})
	return prog, err
}

// C emits the optimized IR as a C translation unit.
func (p *Pipeline) C(u *Unit) (string, error) {
	var src string
	err := p.stage(u, phase.Generated, func() error {
		var err error
		src, err = cgen.Generate(u.IR)
		return err
	})
	return src, err
}

// ReportUnsupported turns an *gen.UnsupportedError into a diagnostic on u
// and reports whether err was one.
func ReportUnsupported(u *Unit, err error) bool {
	var unsupported *gen.UnsupportedError
	if !errors.As(err, &unsupported) {
		return false
	}
	u.Diagnostics.Add(diagnostics.NewError(unsupported.Construct+" is not supported by this back end").
		WithCode(diagnostics.ErrUnsupportedConstruct).
		WithPrimaryLabel(unsupported.Location, "").
		WithHelp("run it with the vm engine"))
	return true
}
