package types

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Evge14n/tryzub/internal/tokens"
)

// SemType is the semantic representation of types.
//
// Composite types are interned: two structurally equal array, future or
// function types are the same pointer. Struct types are nominal.
type SemType interface {
	// String returns a human-readable representation of the type
	String() string

	// Equals checks structural equality with another type
	Equals(other SemType) bool

	// Size returns the size in bytes (for codegen)
	// Returns -1 for types without known size (void, unknown)
	Size() int

	// Align returns the natural alignment in bytes
	Align() int

	isType()
}

// IntType is a fixed-width integer.
type IntType struct {
	Bits   int
	Signed bool
}

func (t *IntType) String() string {
	if t.Signed {
		return fmt.Sprintf("цл%d", t.Bits)
	}
	return fmt.Sprintf("чс%d", t.Bits)
}
func (t *IntType) Size() int  { return t.Bits / 8 }
func (t *IntType) Align() int { return t.Bits / 8 }
func (t *IntType) isType()    {}
func (t *IntType) Equals(other SemType) bool {
	o, ok := other.(*IntType)
	return ok && o.Bits == t.Bits && o.Signed == t.Signed
}

// FloatType is an IEEE-754 float.
type FloatType struct {
	Bits int
}

func (t *FloatType) String() string { return fmt.Sprintf("дрб%d", t.Bits) }
func (t *FloatType) Size() int      { return t.Bits / 8 }
func (t *FloatType) Align() int     { return t.Bits / 8 }
func (t *FloatType) isType()        {}
func (t *FloatType) Equals(other SemType) bool {
	o, ok := other.(*FloatType)
	return ok && o.Bits == t.Bits
}

type BoolType struct{}

func (*BoolType) String() string { return tokens.TypeBool }
func (*BoolType) Size() int      { return 1 }
func (*BoolType) Align() int     { return 1 }
func (*BoolType) isType()        {}
func (*BoolType) Equals(other SemType) bool {
	_, ok := other.(*BoolType)
	return ok
}

// TextType is an immutable, heap-allocated UTF-8 string.
type TextType struct{}

func (*TextType) String() string { return tokens.TypeText }
func (*TextType) Size() int      { return 8 }
func (*TextType) Align() int     { return 8 }
func (*TextType) isType()        {}
func (*TextType) Equals(other SemType) bool {
	_, ok := other.(*TextType)
	return ok
}

type VoidType struct{}

func (*VoidType) String() string { return "пусто" }
func (*VoidType) Size() int      { return 0 }
func (*VoidType) Align() int     { return 1 }
func (*VoidType) isType()        {}
func (*VoidType) Equals(other SemType) bool {
	_, ok := other.(*VoidType)
	return ok
}

// UnknownType is the placeholder for a type not yet inferred.
type UnknownType struct{}

func (*UnknownType) String() string { return "?" }
func (*UnknownType) Size() int      { return -1 }
func (*UnknownType) Align() int     { return 1 }
func (*UnknownType) isType()        {}
func (*UnknownType) Equals(other SemType) bool {
	_, ok := other.(*UnknownType)
	return ok
}

// Field is one named member of a struct.
type Field struct {
	Name string
	Type SemType
}

// StructType is a nominal record. Fields keep declaration order.
type StructType struct {
	Name   string
	Fields []Field
}

func NewStruct(name string) *StructType {
	return &StructType{Name: name}
}

func (t *StructType) String() string { return t.Name }
func (t *StructType) isType()        {}
func (t *StructType) Equals(other SemType) bool {
	o, ok := other.(*StructType)
	return ok && o == t
}

// FieldIndex returns the position of name, or -1.
func (t *StructType) FieldIndex(name string) int {
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Layout returns each field's byte offset using natural alignment, in
// declaration order. Struct-typed fields hold a reference.
func (t *StructType) Layout() []int {
	offsets := make([]int, len(t.Fields))
	off := 0
	for i, f := range t.Fields {
		off = alignUp(off, slotAlign(f.Type))
		offsets[i] = off
		off += slotSize(f.Type)
	}
	return offsets
}

func slotSize(t SemType) int {
	if _, ok := t.(*StructType); ok {
		return 8
	}
	return t.Size()
}

func slotAlign(t SemType) int {
	if _, ok := t.(*StructType); ok {
		return 8
	}
	return t.Align()
}

func (t *StructType) Size() int {
	if len(t.Fields) == 0 {
		return 0
	}
	offsets := t.Layout()
	last := len(t.Fields) - 1
	return alignUp(offsets[last]+slotSize(t.Fields[last].Type), t.Align())
}

func (t *StructType) Align() int {
	align := 1
	for _, f := range t.Fields {
		if a := slotAlign(f.Type); a > align {
			align = a
		}
	}
	return align
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

// ArrayType is a heap-allocated, length-carrying sequence.
type ArrayType struct {
	Elem SemType
}

func (t *ArrayType) String() string { return "[" + t.Elem.String() + "]" }
func (t *ArrayType) Size() int      { return 8 }
func (t *ArrayType) Align() int     { return 8 }
func (t *ArrayType) isType()        {}
func (t *ArrayType) Equals(other SemType) bool {
	o, ok := other.(*ArrayType)
	return ok && t.Elem.Equals(o.Elem)
}

// FutureType is the handle returned by calling an async function.
type FutureType struct {
	Inner SemType
}

func (t *FutureType) String() string { return "Майбутнє<" + t.Inner.String() + ">" }
func (t *FutureType) Size() int      { return 8 }
func (t *FutureType) Align() int     { return 8 }
func (t *FutureType) isType()        {}
func (t *FutureType) Equals(other SemType) bool {
	o, ok := other.(*FutureType)
	return ok && t.Inner.Equals(o.Inner)
}

// FunctionType describes a callable. Return is the declared type; for async
// functions callers observe FutureOf(Return).
type FunctionType struct {
	Params []SemType
	Return SemType
	Async  bool
}

func (t *FunctionType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	prefix := "функція"
	if t.Async {
		prefix = "асинхронний функція"
	}
	return fmt.Sprintf("%s(%s) -> %s", prefix, strings.Join(parts, ", "), t.Return)
}
func (t *FunctionType) Size() int  { return 8 }
func (t *FunctionType) Align() int { return 8 }
func (t *FunctionType) isType()    {}
func (t *FunctionType) Equals(other SemType) bool {
	o, ok := other.(*FunctionType)
	if !ok || o.Async != t.Async || len(o.Params) != len(t.Params) || !t.Return.Equals(o.Return) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Equals(o.Params[i]) {
			return false
		}
	}
	return true
}

// Result is the type a call expression evaluates to.
func (t *FunctionType) Result() SemType {
	if t.Async {
		return FutureOf(t.Return)
	}
	return t.Return
}

var (
	internMu sync.Mutex
	interned = make(map[string]SemType)
)

// intern returns the canonical instance for t. Composite keys use the element
// name and pointer: the pointer keeps nominal struct identity, the name keeps
// zero-size scalars apart.
func intern(key string, t SemType) SemType {
	internMu.Lock()
	defer internMu.Unlock()
	if existing, ok := interned[key]; ok {
		return existing
	}
	interned[key] = t
	return t
}

func ArrayOf(elem SemType) *ArrayType {
	return intern(fmt.Sprintf("[%s@%p]", elem, elem), &ArrayType{Elem: elem}).(*ArrayType)
}

func FutureOf(inner SemType) *FutureType {
	return intern(fmt.Sprintf("future<%s@%p>", inner, inner), &FutureType{Inner: inner}).(*FutureType)
}

func FuncOf(params []SemType, ret SemType, async bool) *FunctionType {
	var key strings.Builder
	fmt.Fprintf(&key, "fn(%t", async)
	for _, p := range params {
		fmt.Fprintf(&key, ",%s@%p", p, p)
	}
	fmt.Fprintf(&key, ")%s@%p", ret, ret)
	return intern(key.String(), &FunctionType{Params: params, Return: ret, Async: async}).(*FunctionType)
}
