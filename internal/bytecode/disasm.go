package bytecode

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Evge14n/tryzub/internal/builtins"
	"github.com/Evge14n/tryzub/internal/runtime"
)

// Disassemble renders every function of mod as a table, one row per
// instruction.
func Disassemble(mod *Module) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Function", "PC", "Line", "Op", "A", "B", "Operand"})
	for _, fn := range mod.Functions {
		for pc, ins := range fn.Code {
			name := ""
			if pc == 0 {
				name = fn.Name
			}
			t.AppendRow(table.Row{name, pc, fn.Lines[pc], ins.Op, ins.A, ins.B, mod.describe(fn, ins)})
		}
		t.AppendSeparator()
	}
	return t.Render()
}

// describe names what the operands of ins refer to.
func (m *Module) describe(fn *Function, ins Instruction) string {
	switch ins.Op {
	case OP_CONST:
		return quote(m.Constants[ins.A])
	case OP_LOAD, OP_STORE:
		return fn.LocalNames[ins.A]
	case OP_FOR_INIT, OP_FOR_NEXT:
		return fn.LocalNames[ins.A]
	case OP_LOAD_GLOBAL, OP_STORE_GLOBAL:
		return m.Globals[ins.A].Name
	case OP_WRAP, OP_NEG, OP_CONVERT, OP_MAKE_STRUCT:
		return m.Types[ins.A].String()
	case OP_CALL, OP_CALL_ASYNC, OP_PARALLEL:
		return m.Functions[ins.A].Name
	case OP_CALL_BUILTIN:
		return builtins.Get(builtins.ID(ins.A)).Name
	}
	return ""
}

func quote(v runtime.Value) string {
	switch v.Kind {
	case runtime.KindText:
		return strconv.Quote(v.Text())
	case runtime.KindVoid:
		return "void"
	}
	return fmt.Sprint(v)
}
