package runtime

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, from, to, step Value, inclusive bool) []int64 {
	t.Helper()
	var mu sync.Mutex
	var got []int64
	err := NewPool(4).For(context.Background(), from, to, step, inclusive, func(_ context.Context, i Value) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, i.Int())
		return nil
	})
	require.NoError(t, err)
	sort.Slice(got, func(a, b int) bool { return got[a] < got[b] })
	return got
}

func TestPoolForVisitsEveryIndex(t *testing.T) {
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, collect(t, Int(0), Int(5), Int(1), false))
	assert.Equal(t, []int64{0, 2, 4, 6}, collect(t, Int(0), Int(6), Int(2), true))
	assert.Equal(t, []int64{1, 2, 3}, collect(t, Int(3), Int(0), Int(-1), false))
	assert.Empty(t, collect(t, Int(0), Int(5), Int(0), false))
	assert.Equal(t, []int64{9223372036854775806, 9223372036854775807},
		collect(t, Int(9223372036854775806), Int(9223372036854775807), Int(1), true))
}

func TestPoolForStopsOnFirstError(t *testing.T) {
	boom := errors.New("boom")
	var ran atomic.Int64
	err := NewPool(1).For(context.Background(), Int(0), Int(1000), Int(1), false, func(_ context.Context, i Value) error {
		ran.Add(1)
		if i.Int() == 3 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Less(t, ran.Load(), int64(1000))
}

func TestPoolDefaultsToCPUCount(t *testing.T) {
	assert.Positive(t, NewPool(0).Workers())
	assert.Equal(t, 3, NewPool(3).Workers())
}

func TestPoolGoIsBoundedByWorkers(t *testing.T) {
	const workers, calls = 3, 40
	p := NewPool(workers)

	var active, peak, done atomic.Int32
	gate := make(chan struct{})
	for range calls {
		p.Go(func() {
			n := active.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			<-gate
			active.Add(-1)
			done.Add(1)
		})
	}

	// every call was queued without blocking the caller
	require.Eventually(t, func() bool { return active.Load() == workers }, 5*time.Second, time.Millisecond)
	close(gate)
	require.NoError(t, p.Close())

	assert.Equal(t, int32(calls), done.Load())
	assert.LessOrEqual(t, peak.Load(), int32(workers))
}
