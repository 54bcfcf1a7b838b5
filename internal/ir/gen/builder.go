package gen

import (
	"github.com/Evge14n/tryzub/internal/builtins"
	"github.com/Evge14n/tryzub/internal/frontend/ast"
	"github.com/Evge14n/tryzub/internal/ir"
	"github.com/Evge14n/tryzub/internal/runtime"
	"github.com/Evge14n/tryzub/internal/semantics/symbols"
	"github.com/Evge14n/tryzub/internal/source"
	"github.com/Evge14n/tryzub/internal/tokens"
	"github.com/Evge14n/tryzub/internal/types"
)

type loopTargets struct {
	breakTarget    ir.BlockID
	continueTarget ir.BlockID
}

type functionBuilder struct {
	gen       *Generator
	fn        *ir.Function
	current   *ir.Block
	slots     map[*symbols.Symbol]ir.ValueID
	loopStack []loopTargets
}

func newFunctionBuilder(gen *Generator, fn *ir.Function) *functionBuilder {
	return &functionBuilder{
		gen:   gen,
		fn:    fn,
		slots: make(map[*symbols.Symbol]ir.ValueID),
	}
}

func (b *functionBuilder) newBlock(name string, loc source.Location) *ir.Block {
	return b.fn.NewBlock(name, loc)
}

func (b *functionBuilder) setBlock(block *ir.Block) {
	b.current = block
}

func (b *functionBuilder) emit(instr ir.Instr) {
	b.current.Instrs = append(b.current.Instrs, instr)
}

func (b *functionBuilder) branchIfNoTerm(target ir.BlockID, loc source.Location) {
	if b.current.Term == nil {
		b.current.Term = &ir.Br{Target: target, Location: loc}
	}
}

func (b *functionBuilder) finalizeCurrent() {
	if b.current == nil || b.current.Term != nil {
		return
	}
	if types.IsVoid(b.fn.Return) {
		b.current.Term = &ir.Return{Location: b.current.Location}
		return
	}
	b.current.Term = &ir.Unreachable{Location: b.current.Location}
}

func (b *functionBuilder) pushLoop(breakTarget, continueTarget ir.BlockID) {
	b.loopStack = append(b.loopStack, loopTargets{breakTarget: breakTarget, continueTarget: continueTarget})
}

func (b *functionBuilder) popLoop() {
	b.loopStack = b.loopStack[:len(b.loopStack)-1]
}

func (b *functionBuilder) currentLoop() *loopTargets {
	if len(b.loopStack) == 0 {
		return nil
	}
	return &b.loopStack[len(b.loopStack)-1]
}

// bindParam gives a parameter a stack slot so it can be assigned like a local.
func (b *functionBuilder) bindParam(sym *symbols.Symbol, name string, loc source.Location) {
	id := b.fn.NewValue()
	b.fn.Params = append(b.fn.Params, ir.Param{ID: id, Name: name, Type: sym.Type, Location: loc})
	slot := b.alloca(sym, loc)
	b.emit(&ir.Store{Addr: slot, Value: id, Location: loc})
}

// alloca emits a zero-initialized slot for sym.
func (b *functionBuilder) alloca(sym *symbols.Symbol, loc source.Location) ir.ValueID {
	slot := b.temp(sym.Name, sym.Type, loc)
	b.slots[sym] = slot
	return slot
}

func (b *functionBuilder) temp(name string, typ types.SemType, loc source.Location) ir.ValueID {
	id := b.fn.NewValue()
	b.emit(&ir.Alloca{Result: id, Name: name, Type: typ, Location: loc})
	return id
}

func (b *functionBuilder) lowerBlock(block *ast.Block) {
	if block == nil || b.current == nil {
		return
	}

	for _, node := range block.Nodes {
		b.lowerNode(node)
		if b.current.Term != nil {
			return
		}
	}
}

func (b *functionBuilder) lowerNode(node ast.Node) {
	switch n := node.(type) {
	case *ast.VarDecl:
		b.lowerVarDecl(n)
	case *ast.AssignStmt:
		b.lowerAssign(n)
	case *ast.ReturnStmt:
		b.lowerReturn(n)
	case *ast.BreakStmt:
		b.current.Term = &ir.Br{Target: b.currentLoop().breakTarget, Location: n.Location}
	case *ast.ContinueStmt:
		b.current.Term = &ir.Br{Target: b.currentLoop().continueTarget, Location: n.Location}
	case *ast.ExprStmt:
		if m, ok := n.X.(*ast.MatchExpr); ok {
			b.lowerMatch(m, false)
			return
		}
		b.lowerExpr(n.X)
	case *ast.Block:
		b.lowerBlock(n)
	case *ast.IfStmt:
		b.lowerIf(n)
	case *ast.WhileStmt:
		b.lowerWhile(n)
	case *ast.ForRangeStmt:
		b.lowerForRange(n)
	case *ast.ForEachStmt:
		b.lowerForEach(n)
	}
}

func (b *functionBuilder) lowerVarDecl(decl *ast.VarDecl) {
	var value ir.ValueID
	if decl.Value != nil {
		value = b.lowerExpr(decl.Value)
	}
	slot := b.alloca(decl.Symbol, decl.Location)
	if decl.Value != nil {
		b.emit(&ir.Store{Addr: slot, Value: value, Location: decl.Location})
	}
}

func (b *functionBuilder) lowerAssign(stmt *ast.AssignStmt) {
	b.lowerAssignment(stmt.Lhs, stmt.Op, stmt.Rhs, stmt.Location)
}

// lowerAssignment stores `lhs op rhs` and returns the stored value.
func (b *functionBuilder) lowerAssignment(lhs ast.Expression, opTok tokens.Token, value ast.Expression, loc source.Location) ir.ValueID {
	op := tokens.CompoundOp(opTok.Kind)
	compound := opTok.Kind != tokens.EQUALS_TOKEN
	target := lhs.ExprType()

	apply := func(current func() ir.ValueID) ir.ValueID {
		rhs := b.lowerExpr(value)
		if !compound {
			return rhs
		}
		return b.emitBinary(op, current(), rhs, target, target, loc)
	}

	switch lhs := lhs.(type) {
	case *ast.IdentifierExpr:
		if g, ok := b.gen.globals[lhs.Symbol]; ok {
			v := apply(func() ir.ValueID { return b.loadSymbol(lhs.Symbol, lhs.Location) })
			b.emit(&ir.StoreGlobal{Global: g, Value: v, Location: loc})
			return v
		}
		slot := b.slots[lhs.Symbol]
		v := apply(func() ir.ValueID { return b.loadSymbol(lhs.Symbol, lhs.Location) })
		b.emit(&ir.Store{Addr: slot, Value: v, Location: loc})
		return v
	case *ast.FieldAccess:
		base := b.lowerExpr(lhs.X)
		v := apply(func() ir.ValueID {
			id := b.fn.NewValue()
			b.emit(&ir.GetField{Result: id, Base: base, Index: lhs.Index, Type: target, Location: lhs.Location})
			return id
		})
		b.emit(&ir.SetField{Base: base, Index: lhs.Index, Value: v, Location: loc})
		return v
	case *ast.IndexExpr:
		arr := b.lowerExpr(lhs.X)
		idx := b.lowerExpr(lhs.Index)
		v := apply(func() ir.ValueID {
			id := b.fn.NewValue()
			b.emit(&ir.ArrayGet{Result: id, Array: arr, Index: idx, Type: target, Location: lhs.Location})
			return id
		})
		b.emit(&ir.ArraySet{Array: arr, Index: idx, Value: v, Location: loc})
		return v
	}
	return ir.InvalidValue
}

func (b *functionBuilder) lowerReturn(stmt *ast.ReturnStmt) {
	if stmt.Result == nil {
		b.current.Term = &ir.Return{Location: stmt.Location}
		return
	}
	v := b.lowerExpr(stmt.Result)
	b.current.Term = &ir.Return{Value: v, HasValue: true, Location: stmt.Location}
}

func (b *functionBuilder) lowerIf(stmt *ast.IfStmt) {
	cond := b.lowerExpr(stmt.Cond)

	thenBlock := b.newBlock("if.then", stmt.Location)
	var elseBlock *ir.Block
	if stmt.Else != nil {
		elseBlock = b.newBlock("if.else", stmt.Location)
	}
	mergeBlock := b.newBlock("if.end", stmt.Location)

	elseTarget := mergeBlock.ID
	if elseBlock != nil {
		elseTarget = elseBlock.ID
	}

	b.current.Term = &ir.CondBr{
		Cond:     cond,
		Then:     thenBlock.ID,
		Else:     elseTarget,
		Location: stmt.Location,
	}

	b.setBlock(thenBlock)
	b.lowerBlock(stmt.Body)
	b.branchIfNoTerm(mergeBlock.ID, stmt.Location)

	if elseBlock != nil {
		b.setBlock(elseBlock)
		b.lowerNode(stmt.Else)
		b.branchIfNoTerm(mergeBlock.ID, stmt.Location)
	}

	b.setBlock(mergeBlock)
}

func (b *functionBuilder) lowerWhile(stmt *ast.WhileStmt) {
	condBlock := b.newBlock("while.cond", stmt.Location)
	bodyBlock := b.newBlock("while.body", stmt.Location)
	exitBlock := b.newBlock("while.end", stmt.Location)

	b.branchIfNoTerm(condBlock.ID, stmt.Location)

	b.setBlock(condBlock)
	cond := b.lowerExpr(stmt.Cond)
	b.current.Term = &ir.CondBr{
		Cond:     cond,
		Then:     bodyBlock.ID,
		Else:     exitBlock.ID,
		Location: stmt.Location,
	}

	b.pushLoop(exitBlock.ID, condBlock.ID)
	b.setBlock(bodyBlock)
	b.lowerBlock(stmt.Body)
	b.branchIfNoTerm(condBlock.ID, stmt.Location)
	b.popLoop()

	b.setBlock(exitBlock)
}

// lowerForRange emits
//
//	i = from
//	cond: if !inRange(i) goto end
//	body; step: next = i + step; if next did not move past i goto end; i = next; goto cond
//
// The overflow check stops a loop whose bound sits at the edge of its type.
func (b *functionBuilder) lowerForRange(stmt *ast.ForRangeStmt) {
	typ := stmt.Symbol.Type
	loc := stmt.Location

	from := b.lowerExpr(stmt.From)
	to := b.lowerExpr(stmt.To)
	var step ir.ValueID
	dir := 1
	if stmt.Step != nil {
		step = b.lowerExpr(stmt.Step)
		dir = constSign(stmt.Step, typ)
	} else {
		step = b.emitConst(typ, oneOf(typ), loc)
	}

	slot := b.alloca(stmt.Symbol, stmt.Var.Location)
	b.emit(&ir.Store{Addr: slot, Value: from, Location: loc})

	condBlock := b.newBlock("for.cond", loc)
	bodyBlock := b.newBlock("for.body", loc)
	stepBlock := b.newBlock("for.step", loc)
	exitBlock := b.newBlock("for.end", loc)

	b.current.Term = &ir.Br{Target: condBlock.ID, Location: loc}

	b.setBlock(condBlock)
	i := b.loadSymbol(stmt.Symbol, loc)
	less, greater := tokens.LESS_TOKEN, tokens.GREATER_TOKEN
	if stmt.Inclusive {
		less, greater = tokens.LESS_EQUAL_TOKEN, tokens.GREATER_EQUAL_TOKEN
	}
	cond := b.directional(dir, step, typ,
		func() ir.ValueID { return b.emitBinary(less, i, to, typ, types.TypeBool, loc) },
		func() ir.ValueID { return b.emitBinary(greater, i, to, typ, types.TypeBool, loc) },
		loc)
	b.current.Term = &ir.CondBr{Cond: cond, Then: bodyBlock.ID, Else: exitBlock.ID, Location: loc}

	b.pushLoop(exitBlock.ID, stepBlock.ID)
	b.setBlock(bodyBlock)
	b.lowerBlock(stmt.Body)
	b.branchIfNoTerm(stepBlock.ID, loc)
	b.popLoop()

	b.setBlock(stepBlock)
	cur := b.loadSymbol(stmt.Symbol, loc)
	next := b.emitBinary(tokens.PLUS_TOKEN, cur, step, typ, typ, loc)
	b.emit(&ir.Store{Addr: slot, Value: next, Location: loc})
	moved := b.directional(dir, step, typ,
		func() ir.ValueID { return b.emitBinary(tokens.GREATER_TOKEN, next, cur, typ, types.TypeBool, loc) },
		func() ir.ValueID { return b.emitBinary(tokens.LESS_TOKEN, next, cur, typ, types.TypeBool, loc) },
		loc)
	b.current.Term = &ir.CondBr{Cond: moved, Then: condBlock.ID, Else: exitBlock.ID, Location: loc}

	b.setBlock(exitBlock)
}

// directional picks up when the step is positive and down when it is
// negative. dir is the sign of a constant step, or 0 when only known at run
// time. A zero step selects neither.
func (b *functionBuilder) directional(dir int, step ir.ValueID, typ types.SemType, up, down func() ir.ValueID, loc source.Location) ir.ValueID {
	switch dir {
	case 1:
		return up()
	case -1:
		return down()
	}
	zero := b.emitConst(typ, runtime.Zero(typ), loc)
	pos := b.emitBinary(tokens.GREATER_TOKEN, step, zero, typ, types.TypeBool, loc)
	result := b.emitBinary(tokens.AND_TOKEN, pos, up(), types.TypeBool, types.TypeBool, loc)
	if t, ok := typ.(*types.IntType); ok && !t.Signed {
		return result
	}
	neg := b.emitBinary(tokens.LESS_TOKEN, step, zero, typ, types.TypeBool, loc)
	downward := b.emitBinary(tokens.AND_TOKEN, neg, down(), types.TypeBool, types.TypeBool, loc)
	return b.emitBinary(tokens.OR_TOKEN, result, downward, types.TypeBool, types.TypeBool, loc)
}

func (b *functionBuilder) lowerForEach(stmt *ast.ForEachStmt) {
	loc := stmt.Location
	arr := b.lowerExpr(stmt.Iterable)
	n := b.fn.NewValue()
	b.emit(&ir.ArrayLen{Result: n, Array: arr, Location: loc})

	idx := b.temp("__idx", types.TypeI64, loc)
	varSlot := b.alloca(stmt.Symbol, stmt.Var.Location)

	condBlock := b.newBlock("foreach.cond", loc)
	bodyBlock := b.newBlock("foreach.body", loc)
	stepBlock := b.newBlock("foreach.step", loc)
	exitBlock := b.newBlock("foreach.end", loc)

	b.current.Term = &ir.Br{Target: condBlock.ID, Location: loc}

	b.setBlock(condBlock)
	i := b.emitLoad(idx, types.TypeI64, loc)
	cond := b.emitBinary(tokens.LESS_TOKEN, i, n, types.TypeI64, types.TypeBool, loc)
	b.current.Term = &ir.CondBr{Cond: cond, Then: bodyBlock.ID, Else: exitBlock.ID, Location: loc}

	b.pushLoop(exitBlock.ID, stepBlock.ID)
	b.setBlock(bodyBlock)
	elem := b.fn.NewValue()
	b.emit(&ir.ArrayGet{Result: elem, Array: arr, Index: i, Type: stmt.Symbol.Type, Location: loc})
	b.emit(&ir.Store{Addr: varSlot, Value: elem, Location: loc})
	b.lowerBlock(stmt.Body)
	b.branchIfNoTerm(stepBlock.ID, loc)
	b.popLoop()

	b.setBlock(stepBlock)
	cur := b.emitLoad(idx, types.TypeI64, loc)
	one := b.emitConst(types.TypeI64, runtime.Int(1), loc)
	next := b.emitBinary(tokens.PLUS_TOKEN, cur, one, types.TypeI64, types.TypeI64, loc)
	b.emit(&ir.Store{Addr: idx, Value: next, Location: loc})
	b.current.Term = &ir.Br{Target: condBlock.ID, Location: loc}

	b.setBlock(exitBlock)
}

// lowerMatch tests the arms in order. As a value, each arm stores into a
// temporary read back at the end.
func (b *functionBuilder) lowerMatch(m *ast.MatchExpr, asValue bool) ir.ValueID {
	loc := m.Location
	subject := b.lowerExpr(m.Subject)
	subjectType := m.Subject.ExprType()

	var result ir.ValueID
	if asValue {
		result = b.temp("__match", m.ExprType(), loc)
	}
	endBlock := b.newBlock("match.end", loc)

	for _, arm := range m.Arms {
		armBlock := b.newBlock("match.arm", arm.Location)
		if arm.Pattern == nil {
			b.current.Term = &ir.Br{Target: armBlock.ID, Location: arm.Location}
		} else {
			pattern := b.lowerExpr(arm.Pattern)
			eq := b.emitBinary(tokens.DOUBLE_EQUAL_TOKEN, subject, pattern, subjectType, types.TypeBool, arm.Location)
			next := b.newBlock("match.next", arm.Location)
			b.current.Term = &ir.CondBr{Cond: eq, Then: armBlock.ID, Else: next.ID, Location: arm.Location}
			b.setBlock(armBlock)
			b.lowerArm(arm, result, asValue, endBlock.ID)
			b.setBlock(next)
			continue
		}
		b.setBlock(armBlock)
		b.lowerArm(arm, result, asValue, endBlock.ID)
		break
	}
	b.branchIfNoTerm(endBlock.ID, loc)

	b.setBlock(endBlock)
	if !asValue {
		return ir.InvalidValue
	}
	return b.emitLoad(result, m.ExprType(), loc)
}

func (b *functionBuilder) lowerArm(arm ast.MatchArm, result ir.ValueID, asValue bool, end ir.BlockID) {
	v := b.lowerExpr(arm.Body)
	if asValue {
		b.emit(&ir.Store{Addr: result, Value: v, Location: arm.Location})
	}
	b.branchIfNoTerm(end, arm.Location)
}

func (b *functionBuilder) lowerExpr(expr ast.Expression) ir.ValueID {
	switch e := expr.(type) {
	case *ast.Literal:
		v, err := runtime.FromLiteral(e.Value, e.ExprType())
		if err != nil {
			v = runtime.Zero(e.ExprType())
		}
		return b.emitConst(e.ExprType(), v, e.Location)
	case *ast.IdentifierExpr:
		return b.loadSymbol(e.Symbol, e.Location)
	case *ast.SelfExpr:
		return b.loadSymbol(e.Symbol, e.Location)
	case *ast.BinaryExpr:
		return b.lowerBinary(e)
	case *ast.UnaryExpr:
		x := b.lowerExpr(e.X)
		id := b.fn.NewValue()
		b.emit(&ir.Unary{Result: id, Op: e.Op.Kind, X: x, Type: e.ExprType(), Location: e.Location})
		return id
	case *ast.CallExpr:
		return b.lowerCall(e)
	case *ast.MethodCall:
		args := make([]ir.ValueID, 0, len(e.Args)+1)
		args = append(args, b.lowerExpr(e.X))
		args = append(args, b.lowerExprs(e.Args)...)
		id := b.fn.NewValue()
		b.emit(&ir.Call{Result: id, Target: e.Target.QualifiedName(), Args: args, Type: e.ExprType(), Location: e.Location})
		return id
	case *ast.FieldAccess:
		base := b.lowerExpr(e.X)
		id := b.fn.NewValue()
		b.emit(&ir.GetField{Result: id, Base: base, Index: e.Index, Type: e.ExprType(), Location: e.Location})
		return id
	case *ast.StructInit:
		st := e.ExprType().(*types.StructType)
		fields := make([]ir.ValueID, len(st.Fields))
		for _, f := range e.Fields {
			fields[f.Index] = b.lowerExpr(f.Value)
		}
		id := b.fn.NewValue()
		b.emit(&ir.MakeStruct{Result: id, Type: st, Fields: fields, Location: e.Location})
		return id
	case *ast.ArrayLit:
		elems := b.lowerExprs(e.Elems)
		id := b.fn.NewValue()
		b.emit(&ir.MakeArray{Result: id, Type: e.ExprType().(*types.ArrayType), Elems: elems, Location: e.Location})
		return id
	case *ast.IndexExpr:
		arr := b.lowerExpr(e.X)
		idx := b.lowerExpr(e.Index)
		id := b.fn.NewValue()
		b.emit(&ir.ArrayGet{Result: id, Array: arr, Index: idx, Type: e.ExprType(), Location: e.Location})
		return id
	case *ast.MatchExpr:
		return b.lowerMatch(e, true)
	case *ast.AssignExpr:
		return b.lowerAssignment(e.Lhs, e.Op, e.Rhs, e.Location)
	}
	return ir.InvalidValue
}

func (b *functionBuilder) lowerExprs(exprs []ast.Expression) []ir.ValueID {
	out := make([]ir.ValueID, len(exprs))
	for i, e := range exprs {
		out[i] = b.lowerExpr(e)
	}
	return out
}

// lowerBinary short-circuits && and || through a temporary.
func (b *functionBuilder) lowerBinary(e *ast.BinaryExpr) ir.ValueID {
	op := e.Op.Kind
	if op != tokens.AND_TOKEN && op != tokens.OR_TOKEN {
		x := b.lowerExpr(e.X)
		y := b.lowerExpr(e.Y)
		return b.emitBinary(op, x, y, e.X.ExprType(), e.ExprType(), e.Location)
	}

	loc := e.Location
	result := b.temp("__cond", types.TypeBool, loc)
	x := b.lowerExpr(e.X)
	b.emit(&ir.Store{Addr: result, Value: x, Location: loc})

	rhsBlock := b.newBlock("cond.rhs", loc)
	endBlock := b.newBlock("cond.end", loc)
	if op == tokens.AND_TOKEN {
		b.current.Term = &ir.CondBr{Cond: x, Then: rhsBlock.ID, Else: endBlock.ID, Location: loc}
	} else {
		b.current.Term = &ir.CondBr{Cond: x, Then: endBlock.ID, Else: rhsBlock.ID, Location: loc}
	}

	b.setBlock(rhsBlock)
	y := b.lowerExpr(e.Y)
	b.emit(&ir.Store{Addr: result, Value: y, Location: loc})
	b.current.Term = &ir.Br{Target: endBlock.ID, Location: loc}

	b.setBlock(endBlock)
	return b.emitLoad(result, types.TypeBool, loc)
}

func (b *functionBuilder) lowerCall(e *ast.CallExpr) ir.ValueID {
	id := b.fn.NewValue()
	if e.Convert != nil {
		x := b.lowerExpr(e.Args[0])
		b.emit(&ir.Convert{Result: id, X: x, From: e.Args[0].ExprType(), Type: e.Convert, Location: e.Location})
		return id
	}

	args := b.lowerExprs(e.Args)
	if e.Target.Builtin {
		bi, _ := builtins.Lookup(e.Target.Name)
		argTypes := make([]types.SemType, len(e.Args))
		for i, a := range e.Args {
			argTypes[i] = a.ExprType()
		}
		b.emit(&ir.CallBuiltin{Result: id, Builtin: bi.ID, Args: args, ArgTypes: argTypes, Type: e.ExprType(), Location: e.Location})
		return id
	}
	b.emit(&ir.Call{Result: id, Target: e.Target.QualifiedName(), Args: args, Type: e.ExprType(), Location: e.Location})
	return id
}

func (b *functionBuilder) loadSymbol(sym *symbols.Symbol, loc source.Location) ir.ValueID {
	if g, ok := b.gen.globals[sym]; ok {
		id := b.fn.NewValue()
		b.emit(&ir.LoadGlobal{Result: id, Global: g, Type: sym.Type, Location: loc})
		return id
	}
	return b.emitLoad(b.slots[sym], sym.Type, loc)
}

func (b *functionBuilder) emitLoad(addr ir.ValueID, typ types.SemType, loc source.Location) ir.ValueID {
	id := b.fn.NewValue()
	b.emit(&ir.Load{Result: id, Addr: addr, Type: typ, Location: loc})
	return id
}

func (b *functionBuilder) emitConst(typ types.SemType, v runtime.Value, loc source.Location) ir.ValueID {
	id := b.fn.NewValue()
	b.emit(&ir.Const{Result: id, Type: typ, Value: v, Location: loc})
	return id
}

func (b *functionBuilder) emitZero(typ types.SemType, loc source.Location) ir.ValueID {
	return b.emitConst(typ, runtime.Zero(typ), loc)
}

func (b *functionBuilder) emitBinary(op tokens.TOKEN, left, right ir.ValueID, operand, result types.SemType, loc source.Location) ir.ValueID {
	id := b.fn.NewValue()
	b.emit(&ir.Binary{Result: id, Op: op, Left: left, Right: right, Operand: operand, Type: result, Location: loc})
	return id
}

func oneOf(typ types.SemType) runtime.Value {
	return runtime.Wrap(runtime.Int(1), typ)
}

// constSign is the sign of a literal step, 0 when it is not a literal.
func constSign(step ast.Expression, typ types.SemType) int {
	negated := false
	if u, ok := step.(*ast.UnaryExpr); ok && u.Op.Kind == tokens.MINUS_TOKEN {
		negated = true
		step = u.X
	}
	lit, ok := step.(*ast.Literal)
	if !ok {
		return 0
	}
	v, err := runtime.FromLiteral(lit.Value, typ)
	if err != nil || v.Data == 0 {
		return 0
	}
	if negated {
		return -1
	}
	return 1
}
