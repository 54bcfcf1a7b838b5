package builtins

import (
	"github.com/Evge14n/tryzub/internal/semantics/symbols"
	"github.com/Evge14n/tryzub/internal/semantics/table"
	"github.com/Evge14n/tryzub/internal/types"
)

// ID identifies a builtin across the backends. Values are stable within one build.
type ID int

const (
	Print ID = iota
	IntToText
	FloatToText
	Length
	ReadFile
)

// Builtin describes a runtime-provided function.
type Builtin struct {
	ID   ID
	Name string
	// Params is nil for builtins whose arguments are validated by Accepts.
	Params []types.SemType
	// Arity is the argument count when Params is nil, -1 for any count.
	Arity  int
	Return types.SemType
	Async  bool
	// Accepts validates argument types when Params is nil. It returns a
	// message describing the problem, or "" when the arguments are fine.
	Accepts func(args []types.SemType) string
	// NativeName is the C runtime symbol used by the native backend.
	NativeName string
}

// Type is the signature the checker binds the builtin's symbol to.
func (b *Builtin) Type() *types.FunctionType {
	return types.FuncOf(b.Params, b.Return, b.Async)
}

// Result is the type a call evaluates to.
func (b *Builtin) Result() types.SemType {
	return b.Type().Result()
}

var registry = []*Builtin{
	{
		ID:         Print,
		Name:       "друк",
		Arity:      -1,
		Return:     types.TypeVoid,
		Accepts:    printable,
		NativeName: "tz_print",
	},
	{
		ID:         IntToText,
		Name:       "цілеврядок",
		Arity:      1,
		Return:     types.TypeText,
		Accepts:    oneInteger,
		NativeName: "tz_int_to_text",
	},
	{
		ID:         FloatToText,
		Name:       "дрбврядок",
		Params:     []types.SemType{types.TypeF64},
		Return:     types.TypeText,
		NativeName: "tz_float_to_text",
	},
	{
		ID:         Length,
		Name:       "довжина",
		Arity:      1,
		Return:     types.TypeI64,
		Accepts:    oneSequence,
		NativeName: "tz_length",
	},
	{
		ID:     ReadFile,
		Name:   "прочитати",
		Params: []types.SemType{types.TypeText},
		Return: types.TypeText,
		Async:  true,
	},
}

var byName = func() map[string]*Builtin {
	m := make(map[string]*Builtin, len(registry))
	for _, b := range registry {
		m[b.Name] = b
	}
	return m
}()

// Lookup returns the builtin called name.
func Lookup(name string) (*Builtin, bool) {
	b, ok := byName[name]
	return b, ok
}

// Get returns the builtin with the given id.
func Get(id ID) *Builtin {
	return registry[id]
}

// All returns every builtin in ID order.
func All() []*Builtin {
	return registry
}

// Declare binds every builtin into scope, normally the universe scope.
func Declare(scope *table.SymbolTable) {
	for _, b := range registry {
		_ = scope.Declare(b.Name, &symbols.Symbol{
			Name:    b.Name,
			Kind:    symbols.SymbolFunction,
			Type:    b.Type(),
			Builtin: true,
		})
	}
}
