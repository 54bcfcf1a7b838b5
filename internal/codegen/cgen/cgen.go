// Package cgen translates IR into a single portable C99 translation unit.
package cgen

import (
	_ "embed"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Evge14n/tryzub/internal/builtins"
	"github.com/Evge14n/tryzub/internal/ir"
	"github.com/Evge14n/tryzub/internal/runtime"
	"github.com/Evge14n/tryzub/internal/tokens"
	"github.com/Evge14n/tryzub/internal/types"
)

//go:embed prelude.h
var prelude string

// Generator generates C code from an IR module.
type Generator struct {
	mod       *ir.Module
	buf       strings.Builder
	indent    int
	indentStr string
	funcs     map[string]int
	structs   map[*types.StructType]int

	// per function
	fn     *ir.Function
	values map[ir.ValueID]types.SemType
}

// New creates a new C code generator.
func New(mod *ir.Module) *Generator {
	return &Generator{
		mod:       mod,
		indentStr: "    ",
		funcs:     make(map[string]int, len(mod.Functions)),
		structs:   make(map[*types.StructType]int, len(mod.Structs)),
	}
}

// Generate returns the C source for mod.
func Generate(mod *ir.Module) (string, error) {
	return New(mod).Generate()
}

// Generate generates C code for the module.
func (g *Generator) Generate() (string, error) {
	if g.mod.Entry == "" {
		return "", fmt.Errorf("module %s has no entry function", g.mod.Name)
	}
	for i, fn := range g.mod.Functions {
		g.funcs[fn.Name] = i
	}
	for i, st := range g.mod.Structs {
		g.structs[st] = i
	}

	g.writeHeader()
	g.writeStructs()
	g.writeGlobals()
	for _, fn := range g.mod.Functions {
		g.writePrototype(fn)
		g.write(";\n")
	}
	g.write("\n")
	for _, fn := range g.mod.Functions {
		if err := g.generateFunction(fn); err != nil {
			return "", err
		}
	}
	g.writeMain()
	return g.buf.String(), nil
}

func (g *Generator) writeHeader() {
	g.write("// Generated C code from tryzub\n")
	g.write("// Module: %s\n\n", g.mod.Name)
	g.write("%s\n", prelude)
}

func (g *Generator) writeStructs() {
	for i := range g.mod.Structs {
		g.write("typedef struct tz_s%d tz_s%d;\n", i, i)
	}
	for i, st := range g.mod.Structs {
		g.write("\n// %s\n", st.Name)
		g.write("struct tz_s%d {\n", i)
		for j, f := range st.Fields {
			g.write("    %s f%d;\n", g.cType(f.Type), j)
		}
		if len(st.Fields) == 0 {
			g.write("    char unused;\n")
		}
		g.write("};\n")
	}
	g.write("\n")
}

func (g *Generator) writeGlobals() {
	for i, gl := range g.mod.Globals {
		g.write("static %s tz_g%d; // %s\n", g.cType(gl.Type), i, gl.Name)
	}
	if len(g.mod.Globals) > 0 {
		g.write("\n")
	}
}

func (g *Generator) writePrototype(fn *ir.Function) {
	g.write("static %s %s(", g.cType(fn.Return), g.funcName(fn.Name))
	if len(fn.Params) == 0 {
		g.write("void")
	}
	for i, p := range fn.Params {
		if i > 0 {
			g.write(", ")
		}
		g.write("%s v%d", g.cType(p.Type), p.ID)
	}
	g.write(")")
}

func (g *Generator) writeMain() {
	g.write("int main(void) {\n")
	if g.mod.Init != "" {
		g.write("    %s();\n", g.funcName(g.mod.Init))
	}
	entry := g.mod.Function(g.mod.Entry)
	if entry != nil && types.IsInteger(entry.Return) {
		g.write("    return (int)%s();\n", g.funcName(g.mod.Entry))
	} else {
		g.write("    %s();\n", g.funcName(g.mod.Entry))
		g.write("    return 0;\n")
	}
	g.write("}\n")
}

func (g *Generator) generateFunction(fn *ir.Function) error {
	g.fn = fn
	g.values = make(map[ir.ValueID]types.SemType)
	for _, p := range fn.Params {
		g.values[p.ID] = p.Type
	}

	g.write("// %s\n", fn.Name)
	g.writePrototype(fn)
	g.write(" {\n")
	g.indent++

	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			res, typ := ir.Result(instr), g.resultType(instr)
			if res == ir.InvalidValue || types.IsVoid(typ) {
				continue
			}
			g.values[res] = typ
			g.line("%s v%d = %s;", g.cType(typ), res, zeroOf(typ))
		}
	}
	g.line("tz_enter(%s, %d);", cString(fn.Name), fn.Location.Start.Line)

	for _, b := range fn.Blocks {
		g.write("b%d: ;\n", b.ID)
		for _, instr := range b.Instrs {
			if err := g.generateInstr(instr); err != nil {
				return err
			}
		}
		g.generateTerm(b.Term)
	}

	g.indent--
	g.write("}\n\n")
	return nil
}

func (g *Generator) resultType(instr ir.Instr) types.SemType {
	switch i := instr.(type) {
	case *ir.Const:
		return i.Type
	case *ir.Binary:
		return i.Type
	case *ir.Unary:
		return i.Type
	case *ir.Convert:
		return i.Type
	case *ir.Alloca:
		return i.Type
	case *ir.Load:
		return i.Type
	case *ir.LoadGlobal:
		return i.Type
	case *ir.Call:
		return i.Type
	case *ir.CallBuiltin:
		return i.Type
	case *ir.MakeStruct:
		return i.Type
	case *ir.GetField:
		return i.Type
	case *ir.MakeArray:
		return i.Type
	case *ir.ArrayGet:
		return i.Type
	case *ir.ArrayLen:
		return types.TypeI64
	}
	return types.TypeVoid
}

func (g *Generator) generateInstr(instr ir.Instr) error {
	line := instr.Loc().Start.Line
	switch i := instr.(type) {
	case *ir.Const:
		g.line("v%d = %s;", i.Result, g.constant(i.Type, i.Value))
	case *ir.Binary:
		g.line("v%d = %s;", i.Result, g.binary(i, line))
	case *ir.Unary:
		switch {
		case i.Op == tokens.NOT_TOKEN:
			g.line("v%d = !v%d;", i.Result, i.X)
		case types.IsInteger(i.Type):
			g.line("v%d = (%s)(0 - (uint64_t)v%d);", i.Result, g.cType(i.Type), i.X)
		default:
			g.line("v%d = -v%d;", i.Result, i.X)
		}
	case *ir.Convert:
		g.line("v%d = %s;", i.Result, g.convert(i))
	case *ir.Alloca:
		g.line("v%d = %s;", i.Result, zeroOf(i.Type))
	case *ir.Load:
		g.line("v%d = v%d;", i.Result, i.Addr)
	case *ir.Store:
		g.line("v%d = v%d;", i.Addr, i.Value)
	case *ir.LoadGlobal:
		g.line("v%d = tz_g%d;", i.Result, i.Global)
	case *ir.StoreGlobal:
		g.line("tz_g%d = v%d;", i.Global, i.Value)
	case *ir.Call:
		g.line("tz_at(%d);", line)
		call := fmt.Sprintf("%s(%s)", g.funcName(i.Target), values(i.Args))
		if types.IsVoid(i.Type) {
			g.line("%s;", call)
		} else {
			g.line("v%d = %s;", i.Result, call)
		}
	case *ir.CallBuiltin:
		return g.builtin(i)
	case *ir.MakeStruct:
		g.line("v%d = tz_alloc(sizeof(%s));", i.Result, g.structName(i.Type))
		for j, f := range i.Fields {
			g.line("v%d->f%d = v%d;", i.Result, j, f)
		}
	case *ir.GetField:
		g.line("v%d = ((%s)tz_check(v%d, %d))->f%d;", i.Result, g.cType(g.values[i.Base]), i.Base, line, i.Index)
	case *ir.SetField:
		g.line("((%s)tz_check(v%d, %d))->f%d = v%d;", g.cType(g.values[i.Base]), i.Base, line, i.Index, i.Value)
	case *ir.MakeArray:
		g.line("v%d = tz_array_new(%d);", i.Result, len(i.Elems))
		for j, e := range i.Elems {
			g.line("v%d->items[%d].%s = v%d;", i.Result, j, slotField(i.Type.Elem), e)
		}
	case *ir.ArrayGet:
		g.line("v%d = (%s)tz_array_at(v%d, %s, %d)->%s;", i.Result, g.cType(i.Type), i.Array, index(g.values[i.Index], i.Index), line, slotField(i.Type))
	case *ir.ArraySet:
		elem := g.values[i.Array].(*types.ArrayType).Elem
		g.line("tz_array_at(v%d, %s, %d)->%s = v%d;", i.Array, index(g.values[i.Index], i.Index), line, slotField(elem), i.Value)
	case *ir.ArrayLen:
		g.line("v%d = tz_array_len(v%d);", i.Result, i.Array)
	default:
		return fmt.Errorf("cgen: unsupported instruction %T", instr)
	}
	return nil
}

func (g *Generator) generateTerm(term ir.Term) {
	switch t := term.(type) {
	case *ir.Return:
		g.line("tz_leave();")
		if t.HasValue {
			g.line("return v%d;", t.Value)
		} else {
			g.line("return;")
		}
	case *ir.Br:
		g.line("goto b%d;", t.Target)
	case *ir.CondBr:
		g.line("if (v%d) goto b%d; else goto b%d;", t.Cond, t.Then, t.Else)
	default:
		g.line("abort();")
	}
}

func (g *Generator) binary(b *ir.Binary, line int) string {
	l, r := fmt.Sprintf("v%d", b.Left), fmt.Sprintf("v%d", b.Right)
	op := b.Op
	if isComparison(op) {
		if _, ok := b.Operand.(*types.TextType); ok {
			return fmt.Sprintf("tz_text_cmp(%s, %s) %s 0", l, r, op)
		}
		return fmt.Sprintf("%s %s %s", l, op, r)
	}

	switch t := b.Operand.(type) {
	case *types.IntType:
		ct := g.cType(t)
		switch op {
		case tokens.DIV_TOKEN, tokens.MOD_TOKEN:
			sign, name := "u", "div"
			if t.Signed {
				sign = "s"
			}
			if op == tokens.MOD_TOKEN {
				name = "mod"
			}
			return fmt.Sprintf("(%s)tz_%s%s(%s, %s, %d)", ct, sign, name, l, r, line)
		case tokens.EXP_TOKEN:
			if t.Signed {
				return fmt.Sprintf("(%s)tz_spow(%s, %s, %d)", ct, l, r, line)
			}
			return fmt.Sprintf("(%s)tz_upow(%s, %s)", ct, l, r)
		}
		return fmt.Sprintf("(%s)((uint64_t)%s %s (uint64_t)%s)", ct, l, op, r)
	case *types.FloatType:
		ct := g.cType(t)
		if op == tokens.EXP_TOKEN {
			return fmt.Sprintf("(%s)pow(%s, %s)", ct, l, r)
		}
		return fmt.Sprintf("(%s)((double)%s %s (double)%s)", ct, l, op, r)
	case *types.TextType:
		return fmt.Sprintf("tz_concat(%s, %s)", l, r)
	}
	return fmt.Sprintf("%s %s %s", l, op, r)
}

func (g *Generator) convert(c *ir.Convert) string {
	to := g.cType(c.Type)
	x := fmt.Sprintf("v%d", c.X)
	if toInt, ok := c.Type.(*types.IntType); ok {
		if types.IsFloat(c.From) {
			if toInt.Signed {
				return fmt.Sprintf("(%s)tz_f2s(%s)", to, x)
			}
			return fmt.Sprintf("(%s)tz_f2u(%s)", to, x)
		}
		return fmt.Sprintf("(%s)(uint64_t)%s", to, x)
	}
	return fmt.Sprintf("(%s)(double)%s", to, x)
}

func (g *Generator) builtin(c *ir.CallBuiltin) error {
	args := c.Args
	switch c.Builtin {
	case builtins.Print:
		for i, a := range args {
			switch t := c.ArgTypes[i].(type) {
			case *types.IntType:
				if t.Signed {
					g.line("tz_print_i64(v%d);", a)
				} else {
					g.line("tz_print_u64(v%d);", a)
				}
			case *types.FloatType:
				g.line("tz_print_f64(v%d);", a)
			case *types.BoolType:
				g.line("tz_print_bool(v%d);", a)
			default:
				g.line("tz_print_text(v%d);", a)
			}
		}
		g.line("tz_print_end();")
	case builtins.IntToText:
		if t, ok := c.ArgTypes[0].(*types.IntType); ok && !t.Signed {
			g.line("v%d = tz_uint_to_text(v%d);", c.Result, args[0])
		} else {
			g.line("v%d = tz_int_to_text(v%d);", c.Result, args[0])
		}
	case builtins.FloatToText:
		g.line("v%d = tz_float_to_text(v%d);", c.Result, args[0])
	case builtins.Length:
		if _, ok := c.ArgTypes[0].(*types.TextType); ok {
			g.line("v%d = tz_text_len(v%d);", c.Result, args[0])
		} else {
			g.line("v%d = tz_array_len(v%d);", c.Result, args[0])
		}
	default:
		return fmt.Errorf("cgen: builtin %s has no native form", builtins.Get(c.Builtin).Name)
	}
	return nil
}

func (g *Generator) constant(t types.SemType, v runtime.Value) string {
	switch t := t.(type) {
	case *types.IntType:
		if t.Signed {
			if v.Int() == math.MinInt64 {
				return "INT64_MIN"
			}
			return fmt.Sprintf("(%s)%dLL", g.cType(t), v.Int())
		}
		return fmt.Sprintf("(%s)%dULL", g.cType(t), v.Uint())
	case *types.FloatType:
		f := v.Float()
		switch {
		case math.IsInf(f, 1):
			return "INFINITY"
		case math.IsInf(f, -1):
			return "-INFINITY"
		case math.IsNaN(f):
			return "NAN"
		}
		return fmt.Sprintf("(%s)%s", g.cType(t), strconv.FormatFloat(f, 'e', -1, 64))
	case *types.BoolType:
		if v.Bool() {
			return "true"
		}
		return "false"
	case *types.TextType:
		return cString(v.Text())
	}
	return "NULL"
}

func (g *Generator) cType(t types.SemType) string {
	switch t := t.(type) {
	case *types.IntType:
		if t.Signed {
			return fmt.Sprintf("int%d_t", t.Bits)
		}
		return fmt.Sprintf("uint%d_t", t.Bits)
	case *types.FloatType:
		if t.Bits == 32 {
			return "float"
		}
		return "double"
	case *types.BoolType:
		return "bool"
	case *types.TextType:
		return "const char *"
	case *types.StructType:
		return g.structName(t) + " *"
	case *types.ArrayType:
		return "tz_array *"
	}
	return "void"
}

func (g *Generator) structName(st *types.StructType) string {
	return fmt.Sprintf("tz_s%d", g.structs[st])
}

func (g *Generator) funcName(name string) string {
	return fmt.Sprintf("tz_f%d", g.funcs[name])
}

func (g *Generator) write(format string, args ...any) {
	fmt.Fprintf(&g.buf, format, args...)
}

func (g *Generator) line(format string, args ...any) {
	g.buf.WriteString(strings.Repeat(g.indentStr, g.indent))
	fmt.Fprintf(&g.buf, format, args...)
	g.buf.WriteString("\n")
}

func zeroOf(t types.SemType) string {
	switch t.(type) {
	case *types.IntType, *types.FloatType:
		return "0"
	case *types.BoolType:
		return "false"
	case *types.TextType:
		return `""`
	}
	return "NULL"
}

// slotField is the tz_slot member an array element of type t lives in.
func slotField(t types.SemType) string {
	switch t := t.(type) {
	case *types.IntType:
		if t.Signed {
			return "i"
		}
		return "u"
	case *types.FloatType:
		return "f"
	case *types.BoolType:
		return "b"
	case *types.TextType:
		return "t"
	}
	return "p"
}

// index widens an index value for tz_array_at; an unsigned index beyond
// int64 is clamped so it still reports out of bounds.
func index(t types.SemType, id ir.ValueID) string {
	if it, ok := t.(*types.IntType); ok && !it.Signed {
		return fmt.Sprintf("(v%d > INT64_MAX ? INT64_MAX : (int64_t)v%d)", id, id)
	}
	return fmt.Sprintf("(int64_t)v%d", id)
}

func values(ids []ir.ValueID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("v%d", id)
	}
	return strings.Join(parts, ", ")
}

func isComparison(op tokens.TOKEN) bool {
	switch op {
	case tokens.DOUBLE_EQUAL_TOKEN, tokens.NOT_EQUAL_TOKEN,
		tokens.LESS_TOKEN, tokens.LESS_EQUAL_TOKEN,
		tokens.GREATER_TOKEN, tokens.GREATER_EQUAL_TOKEN:
		return true
	}
	return false
}

// cString quotes s as a C string literal. Bytes outside printable ASCII
// use three digit octal escapes so a following digit cannot extend them.
func cString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c >= 0x20 && c < 0x7f && c != '?':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "\\%03o", c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
