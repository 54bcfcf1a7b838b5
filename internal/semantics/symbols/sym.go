package symbols

import (
	"github.com/Evge14n/tryzub/internal/source"
	"github.com/Evge14n/tryzub/internal/types"
)

// Symbol represents a declared entity (variable, function, type, etc.)
type Symbol struct {
	Name     string
	Kind     SymbolKind
	Type     types.SemType
	Mutable  bool
	Location source.Location
	// Receiver is the struct a method belongs to, empty otherwise.
	Receiver string
	// Builtin marks runtime-provided functions with no source body.
	Builtin bool
}

// SymbolKind categorizes symbols
type SymbolKind int

const (
	SymbolVariable SymbolKind = iota
	SymbolConstant
	SymbolFunction
	SymbolMethod
	SymbolType
	SymbolParameter
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVariable:
		return "variable"
	case SymbolConstant:
		return "constant"
	case SymbolFunction:
		return "function"
	case SymbolMethod:
		return "method"
	case SymbolType:
		return "type"
	case SymbolParameter:
		return "parameter"
	default:
		return "symbol"
	}
}

// QualifiedName is the link-level name: methods are "Struct.method".
func (s *Symbol) QualifiedName() string {
	if s.Receiver != "" {
		return s.Receiver + "." + s.Name
	}
	return s.Name
}

// IsCallable reports whether the symbol names a function or method.
func (s *Symbol) IsCallable() bool {
	return s.Kind == SymbolFunction || s.Kind == SymbolMethod
}
