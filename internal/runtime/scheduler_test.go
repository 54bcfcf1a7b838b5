package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evge14n/tryzub/internal/testutil"
)

// leaf returns a future whose task finishes immediately with v, recording
// when it ran.
func leaf(name string, v int64, log *[]string) *Future {
	var f *Future
	f = NewFuture(name, func(s *Scheduler) {
		s.Spawn(f, func(*Scheduler) (*Future, Value, error) {
			*log = append(*log, name)
			return nil, Int(v), nil
		})
	}, nil)
	return f
}

// sequence awaits a then b and returns their sum, as an explicit state machine.
func sequence(a, b *Future, log *[]string) *Future {
	var f *Future
	f = NewFuture("sequence", func(s *Scheduler) {
		state := 0
		var sum int64
		s.Spawn(f, func(*Scheduler) (*Future, Value, error) {
			for {
				switch state {
				case 0:
					*log = append(*log, "start")
					state = 1
					if !a.Done() {
						return a, Void, nil
					}
				case 1:
					v, _ := a.Result()
					sum += v.Int()
					state = 2
					if !b.Done() {
						return b, Void, nil
					}
				case 2:
					v, _ := b.Result()
					sum += v.Int()
					*log = append(*log, "end")
					return nil, Int(sum), nil
				}
			}
		})
	}, nil)
	return f
}

func TestAwaitsResumeInProgramOrder(t *testing.T) {
	var log []string
	a, b := leaf("a", 1, &log), leaf("b", 2, &log)
	root := sequence(a, b, &log)

	s := NewScheduler(nil, testutil.NewTestLogger(t))
	s.Start(root)
	for s.Step() {
	}

	require.True(t, root.Done())
	v, err := root.Result()
	require.NoError(t, err)
	assert.Equal(t, int64(3), v.Int())
	assert.Equal(t, []string{"start", "a", "b", "end"}, log)
}

func TestFutureDoesNothingUntilAwaited(t *testing.T) {
	var log []string
	f := leaf("lazy", 1, &log)
	s := NewScheduler(nil, nil)
	assert.False(t, s.Step())
	assert.Empty(t, log)
	assert.Equal(t, FuturePending, f.State())

	s.Start(f)
	assert.Equal(t, FutureRunning, f.State())
	assert.True(t, s.Step())
	assert.Equal(t, []string{"lazy"}, log)
	assert.True(t, f.Done())
}

func TestWaitersResumeInFIFOOrder(t *testing.T) {
	var log []string
	shared := leaf("shared", 7, &log)
	s := NewScheduler(nil, nil)

	waiter := func(name string) *Future {
		var f *Future
		f = NewFuture(name, func(s *Scheduler) {
			waited := false
			s.Spawn(f, func(*Scheduler) (*Future, Value, error) {
				if !waited {
					waited = true
					return shared, Void, nil
				}
				log = append(log, name)
				return nil, Void, nil
			})
		}, nil)
		return f
	}
	w1, w2 := waiter("w1"), waiter("w2")
	s.Start(w1)
	s.Start(w2)
	for s.Step() {
	}
	assert.Equal(t, []string{"shared", "w1", "w2"}, log)
}

func TestDriveOffloadedWork(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()
	s := NewScheduler(pool, testutil.NewTestLogger(t))

	var f *Future
	f = NewFuture("read", func(s *Scheduler) {
		s.Offload(f, func() (Value, error) { return Text("зміст"), nil })
	}, nil)

	v, err := s.Drive(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, "зміст", v.Text())
}

func TestDrivePropagatesTaskErrors(t *testing.T) {
	boom := errors.New("boom")
	var f *Future
	f = NewFuture("fails", func(s *Scheduler) {
		s.Spawn(f, func(*Scheduler) (*Future, Value, error) {
			return nil, Void, boom
		})
	}, nil)

	_, err := NewScheduler(nil, nil).Drive(context.Background(), f)
	assert.ErrorIs(t, err, boom)
}

func TestDriveDetectsDeadlock(t *testing.T) {
	never := NewFuture("never", func(*Scheduler) {}, nil)
	_, err := NewScheduler(nil, nil).Drive(context.Background(), never)
	assert.ErrorIs(t, err, ErrDeadlock)
}
