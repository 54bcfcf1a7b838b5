package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Evge14n/tryzub/internal/types"
)

func TestReleaseFreesReachableObjects(t *testing.T) {
	h := NewHeap()
	st := types.NewStruct("Вузол")

	leaf := h.NewStruct(st, []Value{Int(1), Void})
	root := h.NewStruct(st, []Value{Int(0), leaf})
	arr := h.NewArray([]Value{root})
	assert.Equal(t, int64(3), h.Live())

	Retain(root)
	Release(arr)
	assert.Equal(t, int64(2), h.Live(), "root is still referenced")
	assert.Equal(t, int32(1), root.Object().Refs())

	Release(root)
	assert.Equal(t, int64(0), h.Live())
	assert.Equal(t, int64(3), h.Allocs())
}

func TestScalarsAreNotCounted(t *testing.T) {
	h := NewHeap()
	for _, v := range []Value{Int(1), Text("x"), Bool(true), Void} {
		Retain(v)
		Release(v)
	}
	assert.Equal(t, int64(0), h.Live())
}

func TestUntrackedObjects(t *testing.T) {
	var h *Heap
	v := h.NewArray([]Value{Int(1)})
	Release(v)
	assert.Equal(t, []Value{Int(1)}, v.Fields(), "untracked objects are never freed")
	assert.Equal(t, int64(0), h.Live())
}

func TestSharedCounting(t *testing.T) {
	h := NewHeap()
	inner := h.NewArray([]Value{Int(1)})
	outer := h.NewArray([]Value{inner})
	Share(outer)
	assert.True(t, inner.Object().shared.Load())

	done := make(chan struct{})
	for range 8 {
		go func() {
			for range 1000 {
				Retain(outer)
				Release(outer)
			}
			done <- struct{}{}
		}()
	}
	for range 8 {
		<-done
	}
	assert.Equal(t, int32(1), outer.Object().Refs())
	Release(outer)
	assert.Equal(t, int64(0), h.Live())
}

func TestDroppedFutureReleasesItsArguments(t *testing.T) {
	h := NewHeap()
	arg := h.NewArray(nil)
	f := NewFuture("f", nil, func() { Release(arg) })
	fv := h.NewFuture(f)
	assert.Equal(t, int64(2), h.Live())

	Release(fv)
	assert.Equal(t, int64(0), h.Live())
}
