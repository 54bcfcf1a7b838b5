package runtime

import (
	"context"
	goruntime "runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Pool runs parallel loop iterations and blocking builtins on a fixed number
// of workers, separate from the async scheduler.
type Pool struct {
	workers int
	bg      errgroup.Group
	// busy bounds background calls running at once to workers.
	busy *semaphore.Weighted
}

// NewPool sizes the pool; zero or less means one worker per CPU.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = goruntime.NumCPU()
	}
	return &Pool{workers: workers, busy: semaphore.NewWeighted(int64(workers))}
}

func (p *Pool) Workers() int { return p.workers }

// For runs body once per index of the range loop described by from, to and
// step. The first error cancels the iterations that have not started yet.
func (p *Pool) For(ctx context.Context, from, to, step Value, inclusive bool, body func(ctx context.Context, i Value) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, ok := from, InRange(from, to, step, inclusive); ok; i, ok = Advance(i, to, step, inclusive) {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return body(ctx, i)
		})
	}
	return g.Wait()
}

// Advance steps i and reports whether the loop continues, stopping instead
// of wrapping past the end of the integer range.
func Advance(i, to, step Value, inclusive bool) (Value, bool) {
	var next Value
	if i.Kind == KindUint {
		next = Uint(i.Uint() + step.Uint())
		if next.Uint() < i.Uint() {
			return next, false
		}
	} else {
		next = Int(i.Int() + step.Int())
		if (step.Int() > 0) != (next.Int() > i.Int()) {
			return next, false
		}
	}
	return next, InRange(next, to, step, inclusive)
}

// Go runs fn in the background once a worker is free. It never blocks the
// caller, which may be the loop that drains what fn produces. Close waits for
// every such call.
func (p *Pool) Go(fn func()) {
	p.bg.Go(func() error {
		if err := p.busy.Acquire(context.Background(), 1); err != nil {
			return err
		}
		defer p.busy.Release(1)
		fn()
		return nil
	})
}

func (p *Pool) Close() error {
	return p.bg.Wait()
}
