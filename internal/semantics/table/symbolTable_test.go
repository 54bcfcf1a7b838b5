package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evge14n/tryzub/internal/semantics/symbols"
)

func newTestSymbol(name string) *symbols.Symbol {
	return &symbols.Symbol{Name: name}
}

func TestDeclareAndGetSymbol(t *testing.T) {
	st := NewSymbolTable(nil)
	sym := newTestSymbol("а")
	require.NoError(t, st.Declare("а", sym))

	got, ok := st.GetSymbol("а")
	assert.True(t, ok)
	assert.Same(t, sym, got)
	assert.Nil(t, st.Parent())
}

func TestDeclareDuplicate(t *testing.T) {
	st := NewSymbolTable(nil)
	require.NoError(t, st.Declare("б", newTestSymbol("б")))
	assert.Error(t, st.Declare("б", newTestSymbol("б")))
}

func TestShadowingAndLookup(t *testing.T) {
	parent := NewSymbolTable(nil)
	outer := newTestSymbol("x")
	require.NoError(t, parent.Declare("x", outer))

	child := NewSymbolTable(parent)
	got, ok := child.Lookup("x")
	assert.True(t, ok)
	assert.Same(t, outer, got)

	_, ok = child.GetSymbol("x")
	assert.False(t, ok, "GetSymbol must not consult parents")

	inner := newTestSymbol("x")
	require.NoError(t, child.Declare("x", inner))
	got, _ = child.Lookup("x")
	assert.Same(t, inner, got)

	got, _ = parent.Lookup("x")
	assert.Same(t, outer, got)

	_, ok = child.Lookup("missing")
	assert.False(t, ok)
}

func TestSymbolsKeepDeclarationOrder(t *testing.T) {
	st := NewSymbolTable(nil)
	for _, name := range []string{"в", "а", "б"} {
		require.NoError(t, st.Declare(name, newTestSymbol(name)))
	}
	var names []string
	for _, s := range st.Symbols() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"в", "а", "б"}, names)
}

func TestQualifiedName(t *testing.T) {
	m := &symbols.Symbol{Name: "довжина", Kind: symbols.SymbolMethod, Receiver: "Вектор"}
	assert.Equal(t, "Вектор.довжина", m.QualifiedName())
	assert.True(t, m.IsCallable())
	assert.Equal(t, "method", m.Kind.String())
}
