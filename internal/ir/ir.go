// Package ir is the typed SSA form the native and JIT back ends consume.
// Values are defined once; mutable variables live in Alloca slots.
package ir

import (
	"github.com/Evge14n/tryzub/internal/source"
	"github.com/Evge14n/tryzub/internal/types"
)

// ValueID identifies a SSA value within a function.
type ValueID uint32

// BlockID identifies a basic block within a function.
type BlockID uint32

const (
	InvalidValue ValueID = 0
	InvalidBlock BlockID = 0
)

// Module is the IR for one checked program.
type Module struct {
	Name      string
	Functions []*Function
	Globals   []Global
	Structs   []*types.StructType
	// Init names the function that initializes Globals, "" when there are none.
	Init string
	// Entry names the function the program starts in, "" for a library.
	Entry string
}

// Global is a module-level variable.
type Global struct {
	Name     string
	Type     types.SemType
	Location source.Location
}

// Function is a typed, SSA-based IR function.
type Function struct {
	Name     string
	Params   []Param
	Return   types.SemType
	Blocks   []*Block
	Location source.Location

	nextValue ValueID
	nextBlock BlockID
}

// Param describes a function parameter value.
type Param struct {
	ID       ValueID
	Name     string
	Type     types.SemType
	Location source.Location
}

// Block is a basic block with a list of instructions and a terminator.
type Block struct {
	ID       BlockID
	Name     string
	Instrs   []Instr
	Term     Term
	Location source.Location
}

// Function returns the function called name, or nil.
func (m *Module) Function(name string) *Function {
	for _, fn := range m.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// NewValue allocates a fresh value id.
func (f *Function) NewValue() ValueID {
	f.nextValue++
	return f.nextValue
}

// NumValues is one past the largest value id in use.
func (f *Function) NumValues() int {
	return int(f.nextValue) + 1
}

// NewBlock appends an empty block.
func (f *Function) NewBlock(name string, loc source.Location) *Block {
	f.nextBlock++
	b := &Block{ID: f.nextBlock, Name: name, Location: loc}
	f.Blocks = append(f.Blocks, b)
	return b
}

// Entry is the block execution starts in.
func (f *Function) Entry() *Block {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// BlockMap indexes the blocks by id.
func (f *Function) BlockMap() map[BlockID]*Block {
	m := make(map[BlockID]*Block, len(f.Blocks))
	for _, b := range f.Blocks {
		m[b.ID] = b
	}
	return m
}
