package bytecode

import (
	"fmt"

	"github.com/Evge14n/tryzub/internal/builtins"
	"github.com/Evge14n/tryzub/internal/frontend/ast"
	"github.com/Evge14n/tryzub/internal/runtime"
	"github.com/Evge14n/tryzub/internal/semantics/symbols"
	"github.com/Evge14n/tryzub/internal/semantics/typechecker"
	"github.com/Evge14n/tryzub/internal/tokens"
	"github.com/Evge14n/tryzub/internal/types"
)

// InitName is the function that initializes globals.
const InitName = "__init"

// Compiler turns a checked program into a Module.
type Compiler struct {
	prog    *typechecker.Program
	mod     *Module
	globals map[*symbols.Symbol]int
	consts  map[runtime.Value]int
	types   map[types.SemType]int
}

// Compile compiles every function of prog. prog must have passed the checker
// without errors.
func Compile(prog *typechecker.Program) (*Module, error) {
	c := &Compiler{
		prog: prog,
		mod: &Module{
			Name:  prog.Module.FullPath,
			Init:  -1,
			index: make(map[string]int),
		},
		globals: make(map[*symbols.Symbol]int),
		consts:  make(map[runtime.Value]int),
		types:   make(map[types.SemType]int),
	}

	for i, decl := range prog.Globals {
		c.globals[decl.Symbol] = i
		c.mod.Globals = append(c.mod.Globals, Global{Name: decl.Name.Name, Type: decl.Symbol.Type})
	}
	if len(prog.Globals) > 0 {
		c.mod.Init = c.declare(&Function{Name: InitName})
	}
	for _, decl := range prog.Funcs {
		c.declare(&Function{Name: decl.QualifiedName(), Async: decl.Async})
	}

	if c.mod.Init >= 0 {
		if err := c.compileInit(); err != nil {
			return nil, err
		}
	}
	for _, decl := range prog.Funcs {
		if err := c.compileFunc(decl); err != nil {
			return nil, err
		}
	}
	if prog.Entry != nil {
		c.mod.Entry = prog.Entry.QualifiedName()
	}
	return c.mod, nil
}

func (c *Compiler) declare(fn *Function) int {
	i := len(c.mod.Functions)
	c.mod.Functions = append(c.mod.Functions, fn)
	c.mod.index[fn.Name] = i
	return i
}

func (c *Compiler) constant(v runtime.Value) int32 {
	if i, ok := c.consts[v]; ok {
		return int32(i)
	}
	i := len(c.mod.Constants)
	c.mod.Constants = append(c.mod.Constants, v)
	c.consts[v] = i
	return int32(i)
}

func (c *Compiler) typeIndex(t types.SemType) int32 {
	if i, ok := c.types[t]; ok {
		return int32(i)
	}
	i := len(c.mod.Types)
	c.mod.Types = append(c.mod.Types, t)
	c.types[t] = i
	return int32(i)
}

func (c *Compiler) compileInit() error {
	fc := newFuncCompiler(c, c.mod.Functions[c.mod.Init])
	for i, decl := range c.prog.Globals {
		fc.line = decl.Location.Start.Line
		if decl.Value != nil {
			if err := fc.expr(decl.Value); err != nil {
				return err
			}
		} else {
			fc.zero(decl.Symbol.Type)
		}
		fc.emit(OP_STORE_GLOBAL, int32(i), 0)
	}
	fc.finish()
	return nil
}

func (c *Compiler) compileFunc(decl *ast.FuncDecl) error {
	fn, _, _ := c.mod.Function(decl.QualifiedName())
	fc := newFuncCompiler(c, fn)
	fc.line = decl.Location.Start.Line
	if decl.Self != nil {
		fc.param(decl.Self, "це")
	}
	for _, p := range decl.Params {
		fc.param(p.Symbol, p.Name.Name)
	}
	if err := fc.block(decl.Body); err != nil {
		return fmt.Errorf("%s: %w", fn.Name, err)
	}
	fc.finish()
	return nil
}

type loopLabels struct {
	breaks    []int
	continues []int
}

// funcCompiler emits the code of one function.
type funcCompiler struct {
	c        *Compiler
	fn       *Function
	slots    map[*symbols.Symbol]int32
	loops    []*loopLabels
	line     int
	outlined int

	// scratch holds the value of an assignment used as a value while the
	// store consumes the stack.
	scratch    int32
	scratchSet bool
}

func newFuncCompiler(c *Compiler, fn *Function) *funcCompiler {
	return &funcCompiler{c: c, fn: fn, slots: make(map[*symbols.Symbol]int32)}
}

func (fc *funcCompiler) emit(op Opcode, a, b int32) int {
	fc.fn.Code = append(fc.fn.Code, Instruction{Op: op, A: a, B: b})
	fc.fn.Lines = append(fc.fn.Lines, fc.line)
	return len(fc.fn.Code) - 1
}

func (fc *funcCompiler) pc() int32 { return int32(len(fc.fn.Code)) }

// patch points the jump at pc to the next instruction.
func (fc *funcCompiler) patch(pc int) {
	fc.fn.Code[pc].A = fc.pc()
}

func (fc *funcCompiler) local(name string) int32 {
	i := int32(fc.fn.Locals)
	fc.fn.Locals++
	fc.fn.LocalNames = append(fc.fn.LocalNames, name)
	return i
}

func (fc *funcCompiler) slot(sym *symbols.Symbol) int32 {
	if s, ok := fc.slots[sym]; ok {
		return s
	}
	s := fc.local(sym.Name)
	fc.slots[sym] = s
	return s
}

func (fc *funcCompiler) param(sym *symbols.Symbol, name string) {
	fc.slots[sym] = fc.local(name)
	fc.fn.Params++
}

// finish returns nothing from a body that falls off its end.
func (fc *funcCompiler) finish() {
	fc.emit(OP_CONST, fc.c.constant(runtime.Void), 0)
	fc.emit(OP_RETURN, 0, 0)
}

func (fc *funcCompiler) zero(t types.SemType) {
	fc.emit(OP_CONST, fc.c.constant(runtime.Zero(t)), 0)
}

func (fc *funcCompiler) block(b *ast.Block) error {
	if b == nil {
		return nil
	}
	for _, n := range b.Nodes {
		if err := fc.node(n); err != nil {
			return err
		}
	}
	return nil
}

func (fc *funcCompiler) node(n ast.Node) error {
	fc.line = n.Loc().Start.Line
	switch n := n.(type) {
	case *ast.VarDecl:
		if n.Value != nil {
			if err := fc.expr(n.Value); err != nil {
				return err
			}
		} else {
			fc.zero(n.Symbol.Type)
		}
		fc.emit(OP_STORE, fc.slot(n.Symbol), 0)
	case *ast.ExprStmt:
		if err := fc.expr(n.X); err != nil {
			return err
		}
		fc.emit(OP_POP, 0, 0)
	case *ast.AssignStmt:
		return fc.assign(n)
	case *ast.ReturnStmt:
		if n.Result != nil {
			if err := fc.expr(n.Result); err != nil {
				return err
			}
		} else {
			fc.emit(OP_CONST, fc.c.constant(runtime.Void), 0)
		}
		fc.emit(OP_RETURN, 0, 0)
	case *ast.BreakStmt:
		l := fc.loops[len(fc.loops)-1]
		l.breaks = append(l.breaks, fc.emit(OP_JUMP, 0, 0))
	case *ast.ContinueStmt:
		l := fc.loops[len(fc.loops)-1]
		l.continues = append(l.continues, fc.emit(OP_JUMP, 0, 0))
	case *ast.Block:
		return fc.block(n)
	case *ast.IfStmt:
		return fc.ifStmt(n)
	case *ast.WhileStmt:
		return fc.while(n)
	case *ast.ForRangeStmt:
		if n.Parallel {
			return fc.parallel(n)
		}
		return fc.forRange(n)
	case *ast.ForEachStmt:
		return fc.forEach(n)
	case *ast.FuncDecl, *ast.StructDecl, *ast.ImplDecl:
	default:
		return fmt.Errorf("line %d: cannot compile %T", fc.line, n)
	}
	return nil
}

func (fc *funcCompiler) assign(n *ast.AssignStmt) error {
	return fc.store(n.Lhs, n.Op, n.Rhs, false)
}

// store compiles `lhs op rhs`. With keep the stored value is left on the
// stack.
func (fc *funcCompiler) store(lhs ast.Expression, opTok tokens.Token, value ast.Expression, keep bool) error {
	compound := opTok.Kind != tokens.EQUALS_TOKEN
	op := tokens.CompoundOp(opTok.Kind)
	target := lhs.ExprType()

	rhs := func() error {
		if err := fc.expr(value); err != nil {
			return err
		}
		if compound {
			fc.binary(op, target)
		}
		return nil
	}

	switch lhs := lhs.(type) {
	case *ast.IdentifierExpr:
		if g, ok := fc.c.globals[lhs.Symbol]; ok {
			if compound {
				fc.emit(OP_LOAD_GLOBAL, int32(g), 0)
			}
			if err := rhs(); err != nil {
				return err
			}
			if keep {
				fc.emit(OP_DUP, 0, 0)
			}
			fc.emit(OP_STORE_GLOBAL, int32(g), 0)
			return nil
		}
		s := fc.slot(lhs.Symbol)
		if compound {
			fc.emit(OP_LOAD, s, 0)
		}
		if err := rhs(); err != nil {
			return err
		}
		if keep {
			fc.emit(OP_DUP, 0, 0)
		}
		fc.emit(OP_STORE, s, 0)
		return nil
	case *ast.FieldAccess:
		if err := fc.expr(lhs.X); err != nil {
			return err
		}
		if compound {
			fc.emit(OP_DUP, 0, 0)
			fc.emit(OP_GET_FIELD, int32(lhs.Index), 0)
		}
		if err := rhs(); err != nil {
			return err
		}
		fc.stash(keep)
		fc.emit(OP_SET_FIELD, int32(lhs.Index), 0)
	case *ast.IndexExpr:
		if err := fc.expr(lhs.X); err != nil {
			return err
		}
		if err := fc.expr(lhs.Index); err != nil {
			return err
		}
		if compound {
			fc.emit(OP_DUP2, 0, 0)
			fc.emit(OP_INDEX, 0, 0)
		}
		if err := rhs(); err != nil {
			return err
		}
		fc.stash(keep)
		fc.emit(OP_SET_INDEX, 0, 0)
	default:
		return fmt.Errorf("line %d: cannot assign to %T", fc.line, lhs)
	}
	if keep {
		fc.emit(OP_LOAD, fc.scratch, 0)
	}
	return nil
}

// stash copies the value on top of the stack into the scratch slot when keep
// is set, so it can be pushed again after a field or element store.
func (fc *funcCompiler) stash(keep bool) {
	if !keep {
		return
	}
	if !fc.scratchSet {
		fc.scratch = fc.local("$scratch")
		fc.scratchSet = true
	}
	fc.emit(OP_DUP, 0, 0)
	fc.emit(OP_STORE, fc.scratch, 0)
}

func (fc *funcCompiler) ifStmt(n *ast.IfStmt) error {
	if err := fc.expr(n.Cond); err != nil {
		return err
	}
	toElse := fc.emit(OP_JUMP_IF_FALSE, 0, 0)
	if err := fc.block(n.Body); err != nil {
		return err
	}
	if n.Else == nil {
		fc.patch(toElse)
		return nil
	}
	toEnd := fc.emit(OP_JUMP, 0, 0)
	fc.patch(toElse)
	if err := fc.node(n.Else); err != nil {
		return err
	}
	fc.patch(toEnd)
	return nil
}

func (fc *funcCompiler) pushLoop() *loopLabels {
	l := &loopLabels{}
	fc.loops = append(fc.loops, l)
	return l
}

// popLoop resolves break jumps to the next instruction and continue jumps to
// cont.
func (fc *funcCompiler) popLoop(cont int32) {
	l := fc.loops[len(fc.loops)-1]
	fc.loops = fc.loops[:len(fc.loops)-1]
	for _, pc := range l.breaks {
		fc.patch(pc)
	}
	for _, pc := range l.continues {
		fc.fn.Code[pc].A = cont
	}
}

func (fc *funcCompiler) while(n *ast.WhileStmt) error {
	start := fc.pc()
	if err := fc.expr(n.Cond); err != nil {
		return err
	}
	exit := fc.emit(OP_JUMP_IF_FALSE, 0, 0)
	fc.pushLoop()
	if err := fc.block(n.Body); err != nil {
		return err
	}
	fc.line = n.Location.Start.Line
	fc.emit(OP_JUMP, start, 0)
	fc.patch(exit)
	fc.popLoop(start)
	return nil
}

// rangeOperands pushes from, to and the step, one when omitted.
func (fc *funcCompiler) rangeOperands(n *ast.ForRangeStmt) error {
	for _, e := range []ast.Expression{n.From, n.To} {
		if err := fc.expr(e); err != nil {
			return err
		}
	}
	if n.Step != nil {
		return fc.expr(n.Step)
	}
	fc.emit(OP_CONST, fc.c.constant(runtime.Wrap(runtime.Int(1), n.Symbol.Type)), 0)
	return nil
}

func inclusive(n *ast.ForRangeStmt) int32 {
	if n.Inclusive {
		return 1
	}
	return 0
}

func (fc *funcCompiler) forRange(n *ast.ForRangeStmt) error {
	if err := fc.rangeOperands(n); err != nil {
		return err
	}
	base := fc.slot(n.Symbol)
	fc.local("__to")
	fc.local("__step")

	fc.emit(OP_FOR_INIT, base, inclusive(n))
	exit := fc.emit(OP_JUMP_IF_FALSE, 0, 0)
	body := fc.pc()
	fc.pushLoop()
	if err := fc.block(n.Body); err != nil {
		return err
	}
	fc.line = n.Location.Start.Line
	cont := fc.pc()
	fc.emit(OP_FOR_NEXT, base, inclusive(n))
	fc.emit(OP_JUMP_IF_TRUE, body, 0)
	fc.patch(exit)
	fc.popLoop(cont)
	return nil
}

func (fc *funcCompiler) forEach(n *ast.ForEachStmt) error {
	if err := fc.expr(n.Iterable); err != nil {
		return err
	}
	arr := fc.local("__arr")
	idx := fc.local("__idx")
	elem := fc.slot(n.Symbol)
	fc.emit(OP_STORE, arr, 0)
	fc.emit(OP_CONST, fc.c.constant(runtime.Int(0)), 0)
	fc.emit(OP_STORE, idx, 0)

	cond := fc.pc()
	fc.emit(OP_LOAD, idx, 0)
	fc.emit(OP_LOAD, arr, 0)
	fc.emit(OP_LEN, 0, 0)
	fc.emit(OP_LT, 0, 0)
	exit := fc.emit(OP_JUMP_IF_FALSE, 0, 0)
	fc.emit(OP_LOAD, arr, 0)
	fc.emit(OP_LOAD, idx, 0)
	fc.emit(OP_INDEX, 0, 0)
	fc.emit(OP_STORE, elem, 0)

	fc.pushLoop()
	if err := fc.block(n.Body); err != nil {
		return err
	}
	fc.line = n.Location.Start.Line
	cont := fc.pc()
	fc.emit(OP_LOAD, idx, 0)
	fc.emit(OP_CONST, fc.c.constant(runtime.Int(1)), 0)
	fc.emit(OP_ADD_I64, 0, 0)
	fc.emit(OP_STORE, idx, 0)
	fc.emit(OP_JUMP, cond, 0)
	fc.patch(exit)
	fc.popLoop(cont)
	return nil
}

// parallel outlines the loop body into a function taking the loop variable
// followed by every enclosing local the body reads.
func (fc *funcCompiler) parallel(n *ast.ForRangeStmt) error {
	captured := fc.captures(n.Body)

	fc.outlined++
	body := &Function{Name: fmt.Sprintf("%s.loop%d", fc.fn.Name, fc.outlined)}
	index := fc.c.declare(body)
	inner := newFuncCompiler(fc.c, body)
	inner.line = n.Location.Start.Line
	inner.param(n.Symbol, n.Var.Name)
	for _, sym := range captured {
		inner.param(sym, sym.Name)
	}
	if err := inner.block(n.Body); err != nil {
		return err
	}
	inner.finish()

	if err := fc.rangeOperands(n); err != nil {
		return err
	}
	for _, sym := range captured {
		fc.emit(OP_LOAD, fc.slots[sym], 0)
	}
	fc.emit(OP_PARALLEL, int32(index), inclusive(n))
	return nil
}

// captures lists the locals of the enclosing function that body reads, in
// order of first use.
func (fc *funcCompiler) captures(body *ast.Block) []*symbols.Symbol {
	var out []*symbols.Symbol
	seen := make(map[*symbols.Symbol]bool)
	ast.Inspect(body, func(n ast.Node) bool {
		var sym *symbols.Symbol
		switch e := n.(type) {
		case *ast.IdentifierExpr:
			sym = e.Symbol
		case *ast.SelfExpr:
			sym = e.Symbol
		}
		if sym == nil || seen[sym] {
			return true
		}
		if _, ok := fc.slots[sym]; ok {
			seen[sym] = true
			out = append(out, sym)
		}
		return true
	})
	return out
}

// binary emits the operator op on two operands of type operand.
func (fc *funcCompiler) binary(op tokens.TOKEN, operand types.SemType) {
	if cmp, ok := Compare(op); ok {
		fc.emit(cmp, 0, 0)
		return
	}
	if _, ok := operand.(*types.TextType); ok {
		fc.emit(OP_CONCAT, 0, 0)
		return
	}
	class, wrap := ClassOf(operand)
	code, _ := Arith(op, class)
	fc.emit(code, 0, 0)
	if wrap {
		fc.emit(OP_WRAP, fc.c.typeIndex(operand), 0)
	}
}

func (fc *funcCompiler) exprs(list []ast.Expression) error {
	for _, e := range list {
		if err := fc.expr(e); err != nil {
			return err
		}
	}
	return nil
}

// expr compiles e so that it leaves exactly one value on the stack; void
// expressions leave Void.
func (fc *funcCompiler) expr(e ast.Expression) error {
	saved := fc.line
	if line := e.Loc().Start.Line; line > 0 {
		fc.line = line
	}
	defer func() { fc.line = saved }()

	switch e := e.(type) {
	case *ast.Literal:
		v, err := runtime.FromLiteral(e.Value, e.ExprType())
		if err != nil {
			return fmt.Errorf("line %d: literal %q: %w", fc.line, e.Value, err)
		}
		fc.emit(OP_CONST, fc.c.constant(v), 0)
	case *ast.IdentifierExpr:
		if g, ok := fc.c.globals[e.Symbol]; ok {
			fc.emit(OP_LOAD_GLOBAL, int32(g), 0)
			return nil
		}
		fc.emit(OP_LOAD, fc.slot(e.Symbol), 0)
	case *ast.SelfExpr:
		fc.emit(OP_LOAD, fc.slot(e.Symbol), 0)
	case *ast.BinaryExpr:
		return fc.binaryExpr(e)
	case *ast.UnaryExpr:
		if err := fc.expr(e.X); err != nil {
			return err
		}
		if e.Op.Kind == tokens.NOT_TOKEN {
			fc.emit(OP_NOT, 0, 0)
			return nil
		}
		fc.emit(OP_NEG, fc.c.typeIndex(e.ExprType()), 0)
	case *ast.CallExpr:
		return fc.call(e)
	case *ast.MethodCall:
		if err := fc.expr(e.X); err != nil {
			return err
		}
		if err := fc.exprs(e.Args); err != nil {
			return err
		}
		return fc.callFunc(e.Target.QualifiedName(), len(e.Args)+1)
	case *ast.FieldAccess:
		if err := fc.expr(e.X); err != nil {
			return err
		}
		fc.emit(OP_GET_FIELD, int32(e.Index), 0)
	case *ast.StructInit:
		return fc.structInit(e)
	case *ast.ArrayLit:
		if err := fc.exprs(e.Elems); err != nil {
			return err
		}
		fc.emit(OP_MAKE_ARRAY, int32(len(e.Elems)), 0)
	case *ast.IndexExpr:
		if err := fc.expr(e.X); err != nil {
			return err
		}
		if err := fc.expr(e.Index); err != nil {
			return err
		}
		fc.emit(OP_INDEX, 0, 0)
	case *ast.AwaitExpr:
		if err := fc.expr(e.X); err != nil {
			return err
		}
		fc.emit(OP_AWAIT, 0, 0)
	case *ast.MatchExpr:
		return fc.match(e)
	case *ast.AssignExpr:
		return fc.store(e.Lhs, e.Op, e.Rhs, true)
	default:
		return fmt.Errorf("line %d: cannot compile %T", fc.line, e)
	}
	return nil
}

// binaryExpr short-circuits && and || by jumping over the right operand with
// the left one still on the stack.
func (fc *funcCompiler) binaryExpr(e *ast.BinaryExpr) error {
	if err := fc.expr(e.X); err != nil {
		return err
	}
	op := e.Op.Kind
	if op == tokens.AND_TOKEN || op == tokens.OR_TOKEN {
		fc.emit(OP_DUP, 0, 0)
		jump := OP_JUMP_IF_FALSE
		if op == tokens.OR_TOKEN {
			jump = OP_JUMP_IF_TRUE
		}
		end := fc.emit(jump, 0, 0)
		fc.emit(OP_POP, 0, 0)
		if err := fc.expr(e.Y); err != nil {
			return err
		}
		fc.patch(end)
		return nil
	}
	if err := fc.expr(e.Y); err != nil {
		return err
	}
	fc.binary(op, e.X.ExprType())
	return nil
}

func (fc *funcCompiler) call(e *ast.CallExpr) error {
	if e.Convert != nil {
		if err := fc.expr(e.Args[0]); err != nil {
			return err
		}
		fc.emit(OP_CONVERT, fc.c.typeIndex(e.Convert), 0)
		return nil
	}
	if err := fc.exprs(e.Args); err != nil {
		return err
	}
	if e.Target.Builtin {
		b, ok := builtins.Lookup(e.Target.Name)
		if !ok {
			return fmt.Errorf("line %d: unknown builtin %q", fc.line, e.Target.Name)
		}
		fc.emit(OP_CALL_BUILTIN, int32(b.ID), int32(len(e.Args)))
		return nil
	}
	return fc.callFunc(e.Target.QualifiedName(), len(e.Args))
}

func (fc *funcCompiler) callFunc(name string, argc int) error {
	fn, index, ok := fc.c.mod.Function(name)
	if !ok {
		return fmt.Errorf("line %d: call to unknown function %q", fc.line, name)
	}
	op := OP_CALL
	if fn.Async {
		op = OP_CALL_ASYNC
	}
	fc.emit(op, int32(index), int32(argc))
	return nil
}

// structInit evaluates field values in source order and builds the struct
// with them in declaration order.
func (fc *funcCompiler) structInit(e *ast.StructInit) error {
	st := e.ExprType().(*types.StructType)
	ordered := len(e.Fields) == len(st.Fields)
	for i, f := range e.Fields {
		if f.Index != i {
			ordered = false
		}
	}
	if ordered {
		for _, f := range e.Fields {
			if err := fc.expr(f.Value); err != nil {
				return err
			}
		}
	} else {
		temps := make(map[int]int32, len(e.Fields))
		for _, f := range e.Fields {
			if err := fc.expr(f.Value); err != nil {
				return err
			}
			t := fc.local("__" + f.Name.Name)
			fc.emit(OP_STORE, t, 0)
			temps[f.Index] = t
		}
		for i, field := range st.Fields {
			if t, ok := temps[i]; ok {
				fc.emit(OP_LOAD, t, 0)
				continue
			}
			fc.zero(field.Type)
		}
	}
	fc.emit(OP_MAKE_STRUCT, fc.c.typeIndex(st), int32(len(st.Fields)))
	return nil
}

// match tests the arms in order against the subject held in a local. Every
// arm leaves its value; a match without `_` leaves Void when nothing matched.
func (fc *funcCompiler) match(m *ast.MatchExpr) error {
	if err := fc.expr(m.Subject); err != nil {
		return err
	}
	subject := fc.local("__match")
	fc.emit(OP_STORE, subject, 0)

	var ends []int
	exhaustive := false
	for _, arm := range m.Arms {
		fc.line = arm.Location.Start.Line
		next := -1
		if arm.Pattern != nil {
			fc.emit(OP_LOAD, subject, 0)
			if err := fc.expr(arm.Pattern); err != nil {
				return err
			}
			fc.emit(OP_EQ, 0, 0)
			next = fc.emit(OP_JUMP_IF_FALSE, 0, 0)
		}
		if err := fc.expr(arm.Body); err != nil {
			return err
		}
		ends = append(ends, fc.emit(OP_JUMP, 0, 0))
		if next < 0 {
			exhaustive = true
			break
		}
		fc.patch(next)
	}
	if !exhaustive {
		fc.emit(OP_CONST, fc.c.constant(runtime.Void), 0)
	}
	for _, pc := range ends {
		fc.patch(pc)
	}
	return nil
}
