package types

import "github.com/Evge14n/tryzub/internal/tokens"

var (
	TypeI8   = &IntType{Bits: 8, Signed: true}
	TypeI16  = &IntType{Bits: 16, Signed: true}
	TypeI32  = &IntType{Bits: 32, Signed: true}
	TypeI64  = &IntType{Bits: 64, Signed: true}
	TypeU8   = &IntType{Bits: 8}
	TypeU16  = &IntType{Bits: 16}
	TypeU32  = &IntType{Bits: 32}
	TypeU64  = &IntType{Bits: 64}
	TypeF32  = &FloatType{Bits: 32}
	TypeF64  = &FloatType{Bits: 64}
	TypeBool = &BoolType{}
	TypeText = &TextType{}

	TypeVoid    = &VoidType{}
	TypeUnknown = &UnknownType{}
)

var builtinByName = map[string]SemType{
	tokens.TypeI8:   TypeI8,
	tokens.TypeI16:  TypeI16,
	tokens.TypeI32:  TypeI32,
	tokens.TypeI64:  TypeI64,
	tokens.TypeU8:   TypeU8,
	tokens.TypeU16:  TypeU16,
	tokens.TypeU32:  TypeU32,
	tokens.TypeU64:  TypeU64,
	tokens.TypeF32:  TypeF32,
	tokens.TypeF64:  TypeF64,
	tokens.TypeBool: TypeBool,
	tokens.TypeText: TypeText,
}

// FromName returns the builtin type spelled name.
func FromName(name string) (SemType, bool) {
	t, ok := builtinByName[name]
	return t, ok
}

// Canonical maps a structurally equal scalar onto its shared instance.
func Canonical(t SemType) SemType {
	if t == nil {
		return nil
	}
	if b, ok := builtinByName[t.String()]; ok && b.Equals(t) {
		return b
	}
	return t
}

func IsNumeric(t SemType) bool {
	switch t.(type) {
	case *IntType, *FloatType:
		return true
	}
	return false
}

func IsInteger(t SemType) bool {
	_, ok := t.(*IntType)
	return ok
}

func IsFloat(t SemType) bool {
	_, ok := t.(*FloatType)
	return ok
}

func IsVoid(t SemType) bool {
	_, ok := t.(*VoidType)
	return ok
}

func IsUnknown(t SemType) bool {
	if t == nil {
		return true
	}
	_, ok := t.(*UnknownType)
	return ok
}

// IsHeap reports whether values of t live on the refcounted heap.
func IsHeap(t SemType) bool {
	switch t.(type) {
	case *TextType, *StructType, *ArrayType, *FutureType, *FunctionType:
		return true
	}
	return false
}

// ContainsUnknown walks composite types looking for an Unknown leaf.
func ContainsUnknown(t SemType) bool {
	switch tt := t.(type) {
	case nil, *UnknownType:
		return true
	case *ArrayType:
		return ContainsUnknown(tt.Elem)
	case *FutureType:
		return ContainsUnknown(tt.Inner)
	case *FunctionType:
		for _, p := range tt.Params {
			if ContainsUnknown(p) {
				return true
			}
		}
		return ContainsUnknown(tt.Return)
	}
	return false
}
