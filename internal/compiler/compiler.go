// Package compiler is the entry point for the program actions: checking a
// source file, running it on the JIT or the VM, and building a native
// executable.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Evge14n/tryzub/internal/codegen"
	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/frontend/lexer"
	"github.com/Evge14n/tryzub/internal/ir/gen"
	"github.com/Evge14n/tryzub/internal/pipeline"
	"github.com/Evge14n/tryzub/internal/runtime"
	"github.com/Evge14n/tryzub/internal/semantics/typechecker"
	utilsfs "github.com/Evge14n/tryzub/internal/utils/fs"
	"github.com/Evge14n/tryzub/internal/vm"
)

// Engine selects how Run executes a program.
type Engine string

const (
	// EngineAuto uses the JIT unless the program needs the VM.
	EngineAuto Engine = "auto"
	EngineVM   Engine = "vm"
	EngineJIT  Engine = "jit"
)

// Options for compilation
type Options struct {
	// File names the source. It is read from disk unless Source is set.
	File   string
	Source []byte

	Engine Engine
	// MaxCallDepth bounds recursion on the VM.
	MaxCallDepth int
	// Workers sizes the pool for parallel loops; zero means one per CPU.
	Workers                 int
	OptLevel                int
	CaseInsensitiveKeywords bool

	// Output is the executable Build writes. It defaults to the source name
	// without extension, next to the source.
	Output string
	// CC overrides the C compiler found from TRYZUB_CC, CC or the PATH.
	CC    string
	KeepC bool

	Stdout io.Writer
	Logger *slog.Logger
}

// Result of compilation
type Result struct {
	Success bool
	// ExitStatus is the value an integer головна returned, or 1 on failure.
	ExitStatus int
	// Engine is the engine that ran the program.
	Engine      Engine
	Unit        *pipeline.Unit
	Diagnostics *diagnostics.DiagnosticBag
	// Fault is set when the program stopped on a runtime fault.
	Fault *runtime.Fault
	// Err is set for failures that are not diagnostics: unreadable input,
	// cancellation.
	Err error
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

func (o *Options) pipeline() *pipeline.Pipeline {
	return pipeline.New(pipeline.Options{
		Lexer:    lexer.Options{CaseInsensitiveKeywords: o.CaseInsensitiveKeywords},
		OptLevel: o.OptLevel,
		Logger:   o.logger(),
	})
}

func (o *Options) unit() (*pipeline.Unit, error) {
	if o.Source != nil {
		name := o.File
		if name == "" {
			name = "<input>"
		}
		return pipeline.NewUnit(name, o.Source), nil
	}
	if o.File == "" {
		return nil, errors.New("no source file given")
	}
	return pipeline.Load(o.File)
}

func failed(u *pipeline.Unit, err error) Result {
	r := Result{ExitStatus: 1, Unit: u, Err: err}
	if u != nil {
		r.Diagnostics = u.Diagnostics
	}
	return r
}

// front loads the source and runs the front end.
func front(opts *Options) (*pipeline.Pipeline, *pipeline.Unit, error) {
	u, err := opts.unit()
	if err != nil {
		return nil, nil, err
	}
	p := opts.pipeline()
	if err := p.Front(u); err != nil {
		return p, u, err
	}
	return p, u, nil
}

// Check runs the front end only.
func Check(ctx context.Context, opts Options) Result {
	_, u, err := front(&opts)
	if err != nil {
		if errors.Is(err, pipeline.ErrFailed) {
			err = nil
		}
		return failed(u, err)
	}
	return Result{Success: true, Unit: u, Diagnostics: u.Diagnostics}
}

// Run checks the program and executes головна. With EngineAuto the JIT runs
// it unless it uses async functions or parallel loops, which only the VM
// supports.
func Run(ctx context.Context, opts Options) Result {
	log := opts.logger()
	p, u, err := front(&opts)
	if err != nil {
		if errors.Is(err, pipeline.ErrFailed) {
			err = nil
		}
		return failed(u, err)
	}
	if !hasEntry(u) {
		return failed(u, nil)
	}

	engine := opts.Engine
	if engine == "" {
		engine = EngineAuto
	}
	if engine != EngineVM {
		err := p.Lower(u)
		switch {
		case err == nil:
			return runJIT(ctx, &opts, p, u)
		case engine == EngineAuto && isUnsupported(err):
			log.Debug("falling back to vm", "reason", err)
		default:
			if !pipeline.ReportUnsupported(u, err) {
				return failed(u, err)
			}
			return failed(u, nil)
		}
	}
	return runVM(ctx, &opts, p, u)
}

// hasEntry reports a missing головна on u.
func hasEntry(u *pipeline.Unit) bool {
	if u.Program.Entry != nil {
		return true
	}
	u.Diagnostics.Add(diagnostics.NewError("no entry function "+typechecker.EntryName).
		WithCode(diagnostics.ErrInvalidEntry).
		WithHelp("declare `функція " + typechecker.EntryName + "()`"))
	return false
}

func isUnsupported(err error) bool {
	var unsupported *gen.UnsupportedError
	return errors.As(err, &unsupported)
}

func runJIT(ctx context.Context, opts *Options, p *pipeline.Pipeline, u *pipeline.Unit) Result {
	prog, err := p.JIT(u)
	if err != nil {
		return failed(u, err)
	}
	opts.logger().Debug("run", "engine", EngineJIT, "file", u.File)
	v, err := prog.Run(ctx, opts.Stdout)
	return finish(u, EngineJIT, v, err)
}

func runVM(ctx context.Context, opts *Options, p *pipeline.Pipeline, u *pipeline.Unit) Result {
	mod, err := p.Bytecode(u)
	if err != nil {
		return failed(u, err)
	}
	pool := runtime.NewPool(opts.Workers)
	defer pool.Close()

	m := vm.New(mod, vm.Options{
		MaxCallDepth: opts.MaxCallDepth,
		Stdout:       opts.Stdout,
		Pool:         pool,
		Logger:       opts.logger(),
	})
	opts.logger().Debug("run", "engine", EngineVM, "file", u.File, "workers", pool.Workers())
	v, err := m.Run(ctx, typechecker.EntryName)
	return finish(u, EngineVM, v, err)
}

// finish turns the entry's result into an exit status. A runtime fault is
// also reported as a diagnostic carrying its trace.
func finish(u *pipeline.Unit, engine Engine, v runtime.Value, err error) Result {
	if err != nil {
		r := failed(u, nil)
		r.Engine = engine
		if f, ok := runtime.AsFault(err); ok && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			r.Fault = f
			u.Diagnostics.Add(FaultDiagnostic(f))
			return r
		}
		r.Err = err
		return r
	}
	return Result{
		Success:     true,
		ExitStatus:  exitStatus(v),
		Engine:      engine,
		Unit:        u,
		Diagnostics: u.Diagnostics,
	}
}

func exitStatus(v runtime.Value) int {
	switch v.Kind {
	case runtime.KindInt:
		return int(v.Int())
	case runtime.KindUint:
		return int(v.Uint())
	}
	return 0
}

// FaultDiagnostic renders f as an error whose notes are the trace lines.
func FaultDiagnostic(f *runtime.Fault) *diagnostics.Diagnostic {
	d := diagnostics.NewError("runtime fault: " + f.Message).WithCode(f.Kind.Code())
	lines := strings.Split(f.Error(), "\n")
	for _, line := range lines[1:] {
		d.WithNote(strings.TrimSpace(line))
	}
	return d
}

// Build compiles the program to a native executable through C.
func Build(ctx context.Context, opts Options) Result {
	log := opts.logger()
	p, u, err := front(&opts)
	if err != nil {
		if errors.Is(err, pipeline.ErrFailed) {
			err = nil
		}
		return failed(u, err)
	}
	if !hasEntry(u) {
		return failed(u, nil)
	}
	if err := p.Lower(u); err != nil {
		if pipeline.ReportUnsupported(u, err) {
			err = nil
		}
		return failed(u, err)
	}
	csrc, err := p.C(u)
	if err != nil {
		return failed(u, err)
	}

	bopts := codegen.DefaultBuildOptions()
	if opts.CC != "" {
		bopts.Compiler = opts.CC
	}
	bopts.OutputPath = opts.OutputPath()
	bopts.KeepC = opts.KeepC

	if err := codegen.BuildExecutable(ctx, csrc, bopts, log); err != nil {
		var tool *codegen.ToolchainError
		if !errors.As(err, &tool) {
			return failed(u, fmt.Errorf("build: %w", err))
		}
		d := diagnostics.NewError(fmt.Sprintf("%s failed: %v", filepath.Base(tool.Tool), tool.Err)).
			WithCode(diagnostics.ErrToolchain)
		if out := strings.TrimSpace(tool.Output); out != "" {
			d.WithNote(out)
		}
		u.Diagnostics.Add(d)
		return failed(u, nil)
	}
	return Result{Success: true, Unit: u, Diagnostics: u.Diagnostics}
}

// OutputPath is where Build writes the executable.
func (o *Options) OutputPath() string {
	if o.Output != "" {
		if abs, err := filepath.Abs(o.Output); err == nil {
			return abs
		}
		return o.Output
	}
	name := utilsfs.LastPart(o.File)
	if name == "" {
		name = "a.out"
	}
	dir := "."
	if o.File != "" {
		dir = filepath.Dir(o.File)
	}
	if abs, err := filepath.Abs(filepath.Join(dir, name)); err == nil {
		return abs
	}
	return filepath.Join(dir, name)
}
