package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evge14n/tryzub/internal/semantics/table"
	"github.com/Evge14n/tryzub/internal/types"
)

func TestRegistryIDsMatchPositions(t *testing.T) {
	for i, b := range All() {
		assert.Equal(t, ID(i), b.ID, b.Name)
		assert.Same(t, b, Get(b.ID))
	}
}

func TestDeclare(t *testing.T) {
	scope := table.NewSymbolTable(nil)
	Declare(scope)

	sym, ok := scope.Lookup("прочитати")
	require.True(t, ok)
	assert.True(t, sym.Builtin)
	assert.True(t, sym.IsCallable())

	b, _ := Lookup("прочитати")
	assert.Equal(t, types.FutureOf(types.TypeText), b.Result())
}

func TestAccepts(t *testing.T) {
	tests := []struct {
		name string
		args []types.SemType
		ok   bool
	}{
		{"друк", []types.SemType{types.TypeI32, types.TypeText, types.TypeBool}, true},
		{"друк", []types.SemType{types.ArrayOf(types.TypeI64)}, false},
		{"друк", nil, true},
		{"цілеврядок", []types.SemType{types.TypeU8}, true},
		{"цілеврядок", []types.SemType{types.TypeF64}, false},
		{"довжина", []types.SemType{types.ArrayOf(types.TypeBool)}, true},
		{"довжина", []types.SemType{types.TypeText}, true},
		{"довжина", []types.SemType{types.TypeI64}, false},
	}
	for _, tt := range tests {
		b, ok := Lookup(tt.name)
		require.True(t, ok)
		msg := b.Accepts(tt.args)
		if tt.ok {
			assert.Empty(t, msg, "%s%v", tt.name, tt.args)
		} else {
			assert.NotEmpty(t, msg, "%s%v", tt.name, tt.args)
		}
	}
}
