package table

import (
	"fmt"

	"github.com/Evge14n/tryzub/internal/semantics/symbols"
)

// SymbolTable is one lexical scope. Lookups fall through to the parent.
type SymbolTable struct {
	parent  *SymbolTable
	symbols map[string]*symbols.Symbol
	order   []*symbols.Symbol
}

// NewSymbolTable creates a new symbol table with optional parent scope
func NewSymbolTable(parent *SymbolTable) *SymbolTable {
	return &SymbolTable{
		parent:  parent,
		symbols: make(map[string]*symbols.Symbol),
	}
}

// Parent returns the enclosing scope, nil at the root.
func (st *SymbolTable) Parent() *SymbolTable {
	return st.parent
}

// Declare adds a symbol to this scope. Shadowing a parent binding is allowed;
// redeclaring in the same scope is an error.
func (st *SymbolTable) Declare(name string, symbol *symbols.Symbol) error {
	if _, exists := st.symbols[name]; exists {
		return fmt.Errorf("symbol '%s' already declared", name)
	}
	st.symbols[name] = symbol
	st.order = append(st.order, symbol)
	return nil
}

// Lookup finds a symbol in this scope or parent scopes
func (st *SymbolTable) Lookup(name string) (*symbols.Symbol, bool) {
	for s := st; s != nil; s = s.parent {
		if sym, ok := s.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// GetSymbol finds a symbol in this scope only.
func (st *SymbolTable) GetSymbol(name string) (*symbols.Symbol, bool) {
	sym, ok := st.symbols[name]
	return sym, ok
}

// Symbols returns this scope's symbols in declaration order.
func (st *SymbolTable) Symbols() []*symbols.Symbol {
	return st.order
}
