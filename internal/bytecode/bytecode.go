// Package bytecode compiles a checked program into flat per-function code
// for the stack machine in package vm.
package bytecode

import (
	"fmt"

	"github.com/Evge14n/tryzub/internal/runtime"
	"github.com/Evge14n/tryzub/internal/types"
)

// Instruction is one decoded operation.
type Instruction struct {
	Op Opcode
	A  int32
	B  int32
}

func (i Instruction) String() string {
	return fmt.Sprintf("%s %d %d", i.Op, i.A, i.B)
}

// Function is the code of one function, method or outlined loop body.
// Parameters occupy the first Params locals.
type Function struct {
	Name   string
	Params int
	Locals int
	Async  bool
	Code   []Instruction
	// Lines holds the source line of each instruction.
	Lines []int
	// LocalNames names each local slot for disassembly.
	LocalNames []string
}

// Global is a module-level variable.
type Global struct {
	Name string
	Type types.SemType
}

// Module is a compiled program.
type Module struct {
	Name      string
	Functions []*Function
	Globals   []Global
	Constants []runtime.Value
	// Types is the pool OP_WRAP, OP_NEG, OP_CONVERT and OP_MAKE_STRUCT refer to.
	Types []types.SemType
	// Init is the index of the global initializer, -1 when there is none.
	Init int
	// Entry is the qualified name of головна, empty when absent.
	Entry string

	index map[string]int
}

// Function returns the function called name.
func (m *Module) Function(name string) (*Function, int, bool) {
	i, ok := m.index[name]
	if !ok {
		return nil, -1, false
	}
	return m.Functions[i], i, true
}
