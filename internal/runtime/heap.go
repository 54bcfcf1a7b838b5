package runtime

import (
	"sync/atomic"

	"github.com/Evge14n/tryzub/internal/types"
)

// Object is a reference-counted heap cell. Struct instances keep their fields
// in Fields, arrays their elements, and futures their state in Future.
type Object struct {
	Type   *types.StructType
	Fields []Value
	Future *Future

	refs   int32
	shared atomic.Bool
	heap   *Heap
}

// Heap accounts for live objects. Objects created through a nil *Heap are
// untracked and left to the Go collector.
type Heap struct {
	live   atomic.Int64
	allocs atomic.Int64
}

func NewHeap() *Heap {
	return &Heap{}
}

// Live returns the number of objects allocated and not yet released.
func (h *Heap) Live() int64 {
	if h == nil {
		return 0
	}
	return h.live.Load()
}

// Allocs returns the total number of objects allocated.
func (h *Heap) Allocs() int64 {
	if h == nil {
		return 0
	}
	return h.allocs.Load()
}

func (h *Heap) alloc(o *Object) *Object {
	o.refs = 1
	if h != nil {
		o.heap = h
		h.live.Add(1)
		h.allocs.Add(1)
	}
	return o
}

// NewStruct takes ownership of fields and returns a value holding the only
// reference to the new instance.
func (h *Heap) NewStruct(st *types.StructType, fields []Value) Value {
	return Value{Kind: KindStruct, Ref: h.alloc(&Object{Type: st, Fields: fields})}
}

// NewArray takes ownership of elems.
func (h *Heap) NewArray(elems []Value) Value {
	return Value{Kind: KindArray, Ref: h.alloc(&Object{Fields: elems})}
}

// NewFuture wraps f in a future value.
func (h *Heap) NewFuture(f *Future) Value {
	return Value{Kind: KindFuture, Ref: h.alloc(&Object{Future: f})}
}

// Refs reports the current reference count, for tests and debugging.
func (o *Object) Refs() int32 {
	return atomic.LoadInt32(&o.refs)
}

// Retain adds a reference to v if it lives on a tracked heap.
func Retain(v Value) {
	o := v.Object()
	if o == nil || o.heap == nil {
		return
	}
	if o.shared.Load() {
		atomic.AddInt32(&o.refs, 1)
		return
	}
	o.refs++
}

// Release drops a reference to v and frees the object once none remain.
func Release(v Value) {
	o := v.Object()
	if o == nil || o.heap == nil {
		return
	}
	var left int32
	if o.shared.Load() {
		left = atomic.AddInt32(&o.refs, -1)
	} else {
		o.refs--
		left = o.refs
	}
	if left != 0 {
		return
	}

	fields := o.Fields
	o.Fields = nil
	for _, f := range fields {
		Release(f)
	}
	if o.Future != nil {
		o.Future.drop()
	}
	o.heap.live.Add(-1)
}

// ReleaseAll releases every value in vs.
func ReleaseAll(vs []Value) {
	for _, v := range vs {
		Release(v)
	}
}

// Share marks v and everything reachable from it for atomic counting. It is
// called on values handed to another worker.
func Share(v Value) {
	o := v.Object()
	if o == nil || o.shared.Load() {
		return
	}
	o.shared.Store(true)
	for _, f := range o.Fields {
		Share(f)
	}
}
