package ir

import (
	"github.com/Evge14n/tryzub/internal/builtins"
	"github.com/Evge14n/tryzub/internal/runtime"
	"github.com/Evge14n/tryzub/internal/source"
	"github.com/Evge14n/tryzub/internal/tokens"
	"github.com/Evge14n/tryzub/internal/types"
)

// Instr is the base interface for IR instructions.
type Instr interface {
	irInstr()
	Loc() *source.Location
}

// Const defines a typed constant value.
type Const struct {
	Result   ValueID
	Type     types.SemType
	Value    runtime.Value
	Location source.Location
}

func (c *Const) irInstr()              {}
func (c *Const) Loc() *source.Location { return &c.Location }

// Binary applies Op to two operands of type Operand. Type is the result:
// Operand for arithmetic, лог for comparisons.
type Binary struct {
	Result   ValueID
	Op       tokens.TOKEN
	Left     ValueID
	Right    ValueID
	Operand  types.SemType
	Type     types.SemType
	Location source.Location
}

func (b *Binary) irInstr()              {}
func (b *Binary) Loc() *source.Location { return &b.Location }

// Unary performs a unary operation.
type Unary struct {
	Result   ValueID
	Op       tokens.TOKEN
	X        ValueID
	Type     types.SemType
	Location source.Location
}

func (u *Unary) irInstr()              {}
func (u *Unary) Loc() *source.Location { return &u.Location }

// Convert changes a numeric value from one type to another.
type Convert struct {
	Result   ValueID
	X        ValueID
	From     types.SemType
	Type     types.SemType
	Location source.Location
}

func (c *Convert) irInstr()              {}
func (c *Convert) Loc() *source.Location { return &c.Location }

// Alloca reserves a slot for a local variable.
type Alloca struct {
	Result   ValueID
	Name     string
	Type     types.SemType
	Location source.Location
}

func (a *Alloca) irInstr()              {}
func (a *Alloca) Loc() *source.Location { return &a.Location }

// Load reads a slot.
type Load struct {
	Result   ValueID
	Addr     ValueID
	Type     types.SemType
	Location source.Location
}

func (l *Load) irInstr()              {}
func (l *Load) Loc() *source.Location { return &l.Location }

// Store writes a slot.
type Store struct {
	Addr     ValueID
	Value    ValueID
	Location source.Location
}

func (s *Store) irInstr()              {}
func (s *Store) Loc() *source.Location { return &s.Location }

// LoadGlobal reads Module.Globals[Global].
type LoadGlobal struct {
	Result   ValueID
	Global   int
	Type     types.SemType
	Location source.Location
}

func (l *LoadGlobal) irInstr()              {}
func (l *LoadGlobal) Loc() *source.Location { return &l.Location }

// StoreGlobal writes Module.Globals[Global].
type StoreGlobal struct {
	Global   int
	Value    ValueID
	Location source.Location
}

func (s *StoreGlobal) irInstr()              {}
func (s *StoreGlobal) Loc() *source.Location { return &s.Location }

// Call represents a direct function call.
type Call struct {
	Result   ValueID
	Target   string
	Args     []ValueID
	Type     types.SemType
	Location source.Location
}

func (c *Call) irInstr()              {}
func (c *Call) Loc() *source.Location { return &c.Location }

// CallBuiltin calls a runtime-provided function.
type CallBuiltin struct {
	Result   ValueID
	Builtin  builtins.ID
	Args     []ValueID
	ArgTypes []types.SemType
	Type     types.SemType
	Location source.Location
}

func (c *CallBuiltin) irInstr()              {}
func (c *CallBuiltin) Loc() *source.Location { return &c.Location }

// MakeStruct allocates a struct instance with Fields in declaration order.
type MakeStruct struct {
	Result   ValueID
	Type     *types.StructType
	Fields   []ValueID
	Location source.Location
}

func (m *MakeStruct) irInstr()              {}
func (m *MakeStruct) Loc() *source.Location { return &m.Location }

// GetField reads a field through a struct reference.
type GetField struct {
	Result   ValueID
	Base     ValueID
	Index    int
	Type     types.SemType
	Location source.Location
}

func (g *GetField) irInstr()              {}
func (g *GetField) Loc() *source.Location { return &g.Location }

// SetField writes a field through a struct reference.
type SetField struct {
	Base     ValueID
	Index    int
	Value    ValueID
	Location source.Location
}

func (s *SetField) irInstr()              {}
func (s *SetField) Loc() *source.Location { return &s.Location }

// MakeArray allocates an array holding Elems.
type MakeArray struct {
	Result   ValueID
	Type     *types.ArrayType
	Elems    []ValueID
	Location source.Location
}

func (m *MakeArray) irInstr()              {}
func (m *MakeArray) Loc() *source.Location { return &m.Location }

// ArrayGet reads an element, faulting when Index is out of bounds.
type ArrayGet struct {
	Result   ValueID
	Array    ValueID
	Index    ValueID
	Type     types.SemType
	Location source.Location
}

func (a *ArrayGet) irInstr()              {}
func (a *ArrayGet) Loc() *source.Location { return &a.Location }

// ArraySet writes an element, faulting when Index is out of bounds.
type ArraySet struct {
	Array    ValueID
	Index    ValueID
	Value    ValueID
	Location source.Location
}

func (a *ArraySet) irInstr()              {}
func (a *ArraySet) Loc() *source.Location { return &a.Location }

// ArrayLen yields the element count as цл64.
type ArrayLen struct {
	Result   ValueID
	Array    ValueID
	Location source.Location
}

func (a *ArrayLen) irInstr()              {}
func (a *ArrayLen) Loc() *source.Location { return &a.Location }
