package ir

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Evge14n/tryzub/internal/builtins"
	"github.com/Evge14n/tryzub/internal/runtime"
	"github.com/Evge14n/tryzub/internal/types"
)

// FormatModule returns a readable text representation of the IR module.
func FormatModule(mod *Module) string {
	if mod == nil {
		return ""
	}

	var b strings.Builder
	if mod.Name != "" {
		fmt.Fprintf(&b, "module %s\n", mod.Name)
	} else {
		b.WriteString("module <unknown>\n")
	}

	for i, g := range mod.Globals {
		fmt.Fprintf(&b, "global @%d %s: %s\n", i, g.Name, formatType(g.Type))
	}

	for _, fn := range mod.Functions {
		b.WriteString("\n")
		writeFunction(&b, fn)
	}

	return b.String()
}

// WriteModuleFile writes the formatted IR module to disk.
func WriteModuleFile(mod *Module, path string) error {
	if mod == nil || path == "" {
		return nil
	}
	return os.WriteFile(path, []byte(FormatModule(mod)), 0644)
}

func writeFunction(b *strings.Builder, fn *Function) {
	if fn == nil {
		return
	}

	fmt.Fprintf(b, "fn %s(", fn.Name)
	for i, param := range fn.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%s %s: %s", formatValue(param.ID), param.Name, formatType(param.Type))
	}
	fmt.Fprintf(b, ") -> %s {\n", formatType(fn.Return))

	for _, block := range fn.Blocks {
		writeBlock(b, block)
	}

	b.WriteString("}\n")
}

func writeBlock(b *strings.Builder, block *Block) {
	if block == nil {
		return
	}

	if block.Name != "" {
		fmt.Fprintf(b, "  block b%d %s:\n", block.ID, block.Name)
	} else {
		fmt.Fprintf(b, "  block b%d:\n", block.ID)
	}

	for _, instr := range block.Instrs {
		fmt.Fprintf(b, "    %s\n", FormatInstr(instr))
	}

	if block.Term != nil {
		fmt.Fprintf(b, "    %s\n", FormatTerm(block.Term))
	} else {
		b.WriteString("    term <nil>\n")
	}
}

// FormatInstr renders one instruction.
func FormatInstr(instr Instr) string {
	switch i := instr.(type) {
	case *Const:
		return formatAssign(i.Result, fmt.Sprintf("const %s %s", formatType(i.Type), formatConst(i.Value)))
	case *Binary:
		return formatAssign(i.Result, fmt.Sprintf("%s %s %s, %s", i.Op, formatType(i.Operand), formatValue(i.Left), formatValue(i.Right)))
	case *Unary:
		return formatAssign(i.Result, fmt.Sprintf("%s %s %s", i.Op, formatType(i.Type), formatValue(i.X)))
	case *Convert:
		return formatAssign(i.Result, fmt.Sprintf("convert %s -> %s %s", formatType(i.From), formatType(i.Type), formatValue(i.X)))
	case *Alloca:
		return formatAssign(i.Result, fmt.Sprintf("alloca %s ; %s", formatType(i.Type), i.Name))
	case *Load:
		return formatAssign(i.Result, fmt.Sprintf("load %s %s", formatType(i.Type), formatValue(i.Addr)))
	case *Store:
		return fmt.Sprintf("store %s, %s", formatValue(i.Addr), formatValue(i.Value))
	case *LoadGlobal:
		return formatAssign(i.Result, fmt.Sprintf("load_global %s @%d", formatType(i.Type), i.Global))
	case *StoreGlobal:
		return fmt.Sprintf("store_global @%d, %s", i.Global, formatValue(i.Value))
	case *Call:
		return formatAssign(i.Result, fmt.Sprintf("call %s(%s) : %s", i.Target, formatValues(i.Args), formatType(i.Type)))
	case *CallBuiltin:
		return formatAssign(i.Result, fmt.Sprintf("call_builtin %s(%s) : %s", builtins.Get(i.Builtin).Name, formatValues(i.Args), formatType(i.Type)))
	case *MakeStruct:
		return formatAssign(i.Result, fmt.Sprintf("make_struct %s (%s)", formatType(i.Type), formatValues(i.Fields)))
	case *GetField:
		return formatAssign(i.Result, fmt.Sprintf("get_field %s %s, %d", formatType(i.Type), formatValue(i.Base), i.Index))
	case *SetField:
		return fmt.Sprintf("set_field %s, %d, %s", formatValue(i.Base), i.Index, formatValue(i.Value))
	case *MakeArray:
		return formatAssign(i.Result, fmt.Sprintf("make_array %s (%s)", formatType(i.Type), formatValues(i.Elems)))
	case *ArrayGet:
		return formatAssign(i.Result, fmt.Sprintf("array_get %s %s, %s", formatType(i.Type), formatValue(i.Array), formatValue(i.Index)))
	case *ArraySet:
		return fmt.Sprintf("array_set %s, %s, %s", formatValue(i.Array), formatValue(i.Index), formatValue(i.Value))
	case *ArrayLen:
		return formatAssign(i.Result, fmt.Sprintf("array_len %s", formatValue(i.Array)))
	default:
		return "instr <unknown>"
	}
}

// FormatTerm renders one terminator.
func FormatTerm(term Term) string {
	switch t := term.(type) {
	case *Return:
		if t.HasValue {
			return fmt.Sprintf("ret %s", formatValue(t.Value))
		}
		return "ret"
	case *Br:
		return fmt.Sprintf("br %s", formatBlock(t.Target))
	case *CondBr:
		return fmt.Sprintf("br_if %s, %s, %s", formatValue(t.Cond), formatBlock(t.Then), formatBlock(t.Else))
	case *Unreachable:
		return "unreachable"
	default:
		return "term <unknown>"
	}
}

func formatAssign(result ValueID, body string) string {
	if result == InvalidValue {
		return body
	}
	return fmt.Sprintf("%s = %s", formatValue(result), body)
}

func formatValue(id ValueID) string {
	if id == InvalidValue {
		return "%<invalid>"
	}
	return fmt.Sprintf("%%t%d", id)
}

func formatBlock(id BlockID) string {
	if id == InvalidBlock {
		return "b<invalid>"
	}
	return fmt.Sprintf("b%d", id)
}

func formatValues(values []ValueID) string {
	if len(values) == 0 {
		return ""
	}
	parts := make([]string, 0, len(values))
	for _, id := range values {
		parts = append(parts, formatValue(id))
	}
	return strings.Join(parts, ", ")
}

func formatConst(v runtime.Value) string {
	if v.Kind == runtime.KindText {
		return strconv.Quote(v.Text())
	}
	return v.String()
}

func formatType(t types.SemType) string {
	if t == nil {
		return "void"
	}
	return t.String()
}
