// Package jit compiles IR into a tree of Go closures. Each instruction
// becomes one closure over its operand registers, so running a function is
// a walk over prebuilt closures with no decoding step.
package jit

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Evge14n/tryzub/internal/ir"
	"github.com/Evge14n/tryzub/internal/runtime"
)

// MaxCallDepth bounds recursion before a StackOverflow fault.
const MaxCallDepth = 1024

var errUnreachable = errors.New("reached unreachable code")

// untracked allocates without reference counting; the Go collector owns
// compiled programs' objects.
var untracked *runtime.Heap

type op func(m *machine, regs []runtime.Value) error

// term returns the index of the next block, or -1 with the return value.
type term func(m *machine, regs []runtime.Value) (int, runtime.Value, error)

type block struct {
	ops   []op
	lines []int
	term  term
	line  int
}

type function struct {
	name   string
	params []ir.ValueID
	nregs  int
	blocks []block
}

// Program is a compiled module ready to run.
type Program struct {
	mod     *ir.Module
	funcs   map[string]*function
	globals int
}

// machine is the state of one run.
type machine struct {
	prog    *Program
	ctx     context.Context
	out     io.Writer
	globals []runtime.Value
	depth   int
}

// Compile turns every function of mod into closures.
func Compile(mod *ir.Module) (*Program, error) {
	p := &Program{
		mod:     mod,
		funcs:   make(map[string]*function, len(mod.Functions)),
		globals: len(mod.Globals),
	}
	for _, fn := range mod.Functions {
		p.funcs[fn.Name] = &function{name: fn.Name}
	}
	for _, fn := range mod.Functions {
		if err := p.compileFunction(fn); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Run initializes globals and calls the entry function. An integer result
// is the program's exit status.
func (p *Program) Run(ctx context.Context, out io.Writer) (runtime.Value, error) {
	if p.mod.Entry == "" {
		return runtime.Void, fmt.Errorf("module %s has no entry function", p.mod.Name)
	}
	m := p.newMachine(ctx, out)
	if p.mod.Init != "" {
		if _, err := m.call(p.funcs[p.mod.Init], nil); err != nil {
			return runtime.Void, err
		}
	}
	return m.call(p.funcs[p.mod.Entry], nil)
}

// Call runs one function with fresh globals, skipping initialization.
func (p *Program) Call(ctx context.Context, out io.Writer, name string, args ...runtime.Value) (runtime.Value, error) {
	fn, ok := p.funcs[name]
	if !ok {
		return runtime.Void, fmt.Errorf("no function %q", name)
	}
	m := p.newMachine(ctx, out)
	return m.call(fn, args)
}

func (p *Program) newMachine(ctx context.Context, out io.Writer) *machine {
	if out == nil {
		out = io.Discard
	}
	globals := make([]runtime.Value, p.globals)
	for i, g := range p.mod.Globals {
		globals[i] = runtime.Zero(g.Type)
	}
	return &machine{prog: p, ctx: ctx, out: out, globals: globals}
}

// call runs fn. A fault raised inside carries fn's frame; the caller adds
// its own.
func (m *machine) call(fn *function, args []runtime.Value) (runtime.Value, error) {
	if m.depth >= MaxCallDepth {
		return runtime.Void, runtime.ErrStackOverflow
	}
	m.depth++
	defer func() { m.depth-- }()

	regs := make([]runtime.Value, fn.nregs)
	for i, id := range fn.params {
		regs[id] = args[i]
	}

	cur := 0
	for {
		b := &fn.blocks[cur]
		for i, o := range b.ops {
			if err := o(m, regs); err != nil {
				return runtime.Void, fault(err, fn.name, b.lines[i])
			}
		}
		next, ret, err := b.term(m, regs)
		if err != nil {
			return runtime.Void, fault(err, fn.name, b.line)
		}
		if next < 0 {
			return ret, nil
		}
		if next <= cur {
			if err := m.ctx.Err(); err != nil {
				return runtime.Void, err
			}
		}
		cur = next
	}
}

// fault adds the current frame to err's trace. Cancellation passes through
// untouched.
func fault(err error, fn string, line int) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	f := runtime.NewFault(err)
	f.Push(fn, line)
	return f
}
