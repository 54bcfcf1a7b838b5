// Package vm runs bytecode modules on a stack machine. Async calls become
// tasks on the runtime scheduler and parallel loops fan out to the worker
// pool, one machine thread per iteration.
package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Evge14n/tryzub/internal/bytecode"
	"github.com/Evge14n/tryzub/internal/runtime"
)

// DefaultMaxCallDepth bounds recursion when Options leaves it unset.
const DefaultMaxCallDepth = 1024

// ErrStackOverflow is wrapped by the fault raised past the call depth limit.
var ErrStackOverflow = runtime.ErrStackOverflow

var errSuspended = errors.New("await outside the async scheduler")

// Options configures a Machine. The zero value is usable.
type Options struct {
	MaxCallDepth int
	Stdout       io.Writer
	// Pool runs parallel loop iterations and blocking builtins. A pool sized
	// to the CPU count is created when nil.
	Pool   *runtime.Pool
	Logger *slog.Logger
}

// Machine executes one module. Heap objects are reference counted on the
// machine's heap.
type Machine struct {
	mod      *bytecode.Module
	maxDepth int
	out      io.Writer
	pool     *runtime.Pool
	log      *slog.Logger
	heap     *runtime.Heap
	globals  []runtime.Value
}

// New prepares a machine for mod.
func New(mod *bytecode.Module, opts Options) *Machine {
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = DefaultMaxCallDepth
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Pool == nil {
		opts.Pool = runtime.NewPool(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Machine{
		mod:      mod,
		maxDepth: opts.MaxCallDepth,
		out:      &syncWriter{w: opts.Stdout},
		pool:     opts.Pool,
		log:      opts.Logger,
		heap:     runtime.NewHeap(),
	}
}

// Heap exposes the machine's object accounting.
func (m *Machine) Heap() *runtime.Heap { return m.heap }

// Run initializes globals, calls entry with args as the root task and drives
// the scheduler until that task completes. Globals are released before Run
// returns.
func (m *Machine) Run(ctx context.Context, entry string, args ...runtime.Value) (runtime.Value, error) {
	fn, _, ok := m.mod.Function(entry)
	if !ok {
		return runtime.Void, fmt.Errorf("module %s has no function %q", m.mod.Name, entry)
	}
	if len(args) != fn.Params {
		return runtime.Void, fmt.Errorf("%s takes %d arguments, got %d", entry, fn.Params, len(args))
	}

	m.globals = make([]runtime.Value, len(m.mod.Globals))
	for i, g := range m.mod.Globals {
		m.globals[i] = runtime.Zero(g.Type)
	}
	defer m.releaseGlobals()

	m.log.Debug("vm run", "module", m.mod.Name, "entry", entry)
	if m.mod.Init >= 0 {
		v, err := m.runSync(ctx, m.mod.Functions[m.mod.Init], nil)
		if err != nil {
			return runtime.Void, err
		}
		runtime.Release(v)
	}

	root := m.newThread(ctx)
	root.enter(fn, args)
	var f *runtime.Future
	f = runtime.NewFuture(entry, func(s *runtime.Scheduler) {
		s.Spawn(f, root.resume)
	}, nil)

	sched := runtime.NewScheduler(m.pool, m.log)
	v, err := sched.Drive(ctx, f)
	if err != nil {
		return runtime.Void, err
	}
	m.log.Debug("vm done", "entry", entry, "live", m.heap.Live(), "allocs", m.heap.Allocs())
	return v, nil
}

// runSync runs fn to completion on a fresh thread. It is used where no
// scheduler is available: global initialization and parallel loop bodies.
func (m *Machine) runSync(ctx context.Context, fn *bytecode.Function, args []runtime.Value) (runtime.Value, error) {
	th := m.newThread(ctx)
	th.enter(fn, args)
	wait, v, err := th.exec()
	if wait != nil {
		return runtime.Void, th.unwind(errSuspended)
	}
	return v, err
}

func (m *Machine) releaseGlobals() {
	runtime.ReleaseAll(m.globals)
	m.globals = nil
}

// shareGlobals marks every global for atomic counting before workers read
// them.
func (m *Machine) shareGlobals() {
	for _, g := range m.globals {
		runtime.Share(g)
	}
}

// syncWriter serializes writes from parallel loop bodies.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
