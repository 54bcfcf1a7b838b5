package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// FutureState tracks a future through its life.
type FutureState int

const (
	// FuturePending has not been awaited yet; nothing has run.
	FuturePending FutureState = iota
	FutureRunning
	FutureDone
)

// ErrDeadlock is returned when the awaited future can never complete.
var ErrDeadlock = errors.New("all tasks are waiting and nothing is in flight")

// Future is the eventual result of an async call. It does nothing until it
// is first awaited, which invokes start.
type Future struct {
	ID   uuid.UUID
	Name string

	state   FutureState
	result  Value
	err     error
	start   func(s *Scheduler)
	onDrop  func()
	waiters []*Task
}

// NewFuture returns a pending future. start launches the computation on
// first await; onDrop, if set, releases whatever start would have consumed
// when the future is discarded without being awaited.
func NewFuture(name string, start func(s *Scheduler), onDrop func()) *Future {
	return &Future{ID: uuid.New(), Name: name, start: start, onDrop: onDrop}
}

func (f *Future) State() FutureState { return f.state }
func (f *Future) Done() bool         { return f.state == FutureDone }

// Result returns the outcome of a completed future. The value is borrowed.
func (f *Future) Result() (Value, error) {
	return f.result, f.err
}

func (f *Future) drop() {
	switch f.state {
	case FuturePending:
		if f.onDrop != nil {
			f.onDrop()
		}
	case FutureDone:
		Release(f.result)
		f.result = Void
	}
}

// Task is a resumable computation owned by the scheduler. Resume runs it
// until it either finishes or waits on a pending future.
type Task struct {
	ID     uuid.UUID
	Future *Future
	Resume func(s *Scheduler) (wait *Future, result Value, err error)
}

type completion struct {
	future *Future
	value  Value
	err    error
}

// Scheduler is the single FIFO queue async tasks run on. Tasks are never
// preempted: one runs until it awaits something pending or returns.
type Scheduler struct {
	ready       []*Task
	completions chan completion
	inflight    int
	pool        *Pool
	log         *slog.Logger
}

func NewScheduler(pool *Pool, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{
		completions: make(chan completion, 16),
		pool:        pool,
		log:         log,
	}
}

// Spawn queues a task that completes f when it returns.
func (s *Scheduler) Spawn(f *Future, resume func(s *Scheduler) (*Future, Value, error)) *Task {
	t := &Task{ID: uuid.New(), Future: f, Resume: resume}
	f.state = FutureRunning
	s.ready = append(s.ready, t)
	s.log.Debug("task spawned", "task", t.ID, "future", f.Name)
	return t
}

// Start launches a pending future. Running and completed futures are left alone.
func (s *Scheduler) Start(f *Future) {
	if f.state != FuturePending {
		return
	}
	f.state = FutureRunning
	if f.start != nil {
		f.start(s)
	}
}

// Offload runs blocking work on the worker pool and completes f with its
// result through the completion channel.
func (s *Scheduler) Offload(f *Future, work func() (Value, error)) {
	f.state = FutureRunning
	s.inflight++
	run := func() {
		v, err := work()
		s.completions <- completion{future: f, value: v, err: err}
	}
	if s.pool != nil {
		s.pool.Go(run)
		return
	}
	go run()
}

// Complete records the outcome of f and makes its waiters ready in the
// order they started waiting. Ownership of v moves to the future.
func (s *Scheduler) Complete(f *Future, v Value, err error) {
	f.state = FutureDone
	f.result, f.err = v, err
	s.ready = append(s.ready, f.waiters...)
	f.waiters = nil
	s.log.Debug("future completed", "future", f.Name, "error", err)
}

// Pending reports how many tasks are ready to run.
func (s *Scheduler) Pending() int { return len(s.ready) }

// Step runs one ready task, delivering finished background work first. It
// reports false when no task was ready.
func (s *Scheduler) Step() bool {
	s.drain()
	if len(s.ready) == 0 {
		return false
	}
	t := s.ready[0]
	s.ready[0] = nil
	s.ready = s.ready[1:]

	wait, result, err := t.Resume(s)
	if wait == nil {
		s.Complete(t.Future, result, err)
		return true
	}
	if wait.Done() {
		s.ready = append(s.ready, t)
		return true
	}
	wait.waiters = append(wait.waiters, t)
	s.log.Debug("task parked", "task", t.ID, "on", wait.Name)
	s.Start(wait)
	return true
}

func (s *Scheduler) drain() {
	for s.inflight > 0 {
		select {
		case c := <-s.completions:
			s.deliver(c)
		default:
			return
		}
	}
}

func (s *Scheduler) deliver(c completion) {
	s.inflight--
	s.Complete(c.future, c.value, c.err)
}

// Drive starts f and runs tasks until it completes, blocking on background
// work when nothing else is ready.
func (s *Scheduler) Drive(ctx context.Context, f *Future) (Value, error) {
	s.Start(f)
	for !f.Done() {
		if s.Step() {
			continue
		}
		if s.inflight == 0 {
			return Void, fmt.Errorf("%w: %s", ErrDeadlock, f.Name)
		}
		select {
		case c := <-s.completions:
			s.deliver(c)
		case <-ctx.Done():
			return Void, ctx.Err()
		}
	}
	return f.Result()
}
