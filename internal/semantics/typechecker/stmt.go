package typechecker

import (
	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/frontend/ast"
	"github.com/Evge14n/tryzub/internal/semantics/symbols"
	"github.com/Evge14n/tryzub/internal/source"
	"github.com/Evge14n/tryzub/internal/tokens"
	"github.com/Evge14n/tryzub/internal/types"
)

// checkGlobals checks module-level variables in source order; an initializer
// may only use globals declared before it.
func checkGlobals(c *checkContext) {
	for _, node := range c.prog.Module.Nodes {
		if decl, ok := node.(*ast.VarDecl); ok {
			checkVarDecl(c, decl)
			c.prog.Globals = append(c.prog.Globals, decl)
		}
	}
}

func checkFuncBody(c *checkContext, fn *ast.FuncDecl) {
	if fn.Body == nil || fn.Symbol == nil {
		return
	}
	c.fn = fn
	c.fnType = fn.Symbol.Type.(*types.FunctionType)
	c.loops = 0
	defer func() {
		c.fn = nil
		c.fnType = nil
	}()

	exit := c.enterScope()
	if fn.Self != nil {
		_ = c.scope.Declare(fn.Self.Name, fn.Self)
	}
	for i := range fn.Params {
		p := &fn.Params[i]
		p.Symbol = &symbols.Symbol{
			Name:     p.Name.Name,
			Kind:     symbols.SymbolParameter,
			Type:     c.fnType.Params[i],
			Mutable:  true,
			Location: p.Name.Location,
		}
		p.Name.Symbol = p.Symbol
		p.Name.SetType(p.Symbol.Type)
		c.declare(p.Symbol)
	}
	checkStmts(c, fn.Body.Nodes)
	exit()

	if !types.IsVoid(c.fnType.Return) && !terminates(fn.Body) {
		c.errorf(diagnostics.ErrMissingReturn, closingBrace(fn.Body), "missing return",
			"function '%s' must return a value of type %s on every path", fn.Name.Name, c.fnType.Return)
	}
}

func closingBrace(b *ast.Block) source.Location {
	end := b.End
	start := end
	if start.Index > 0 {
		start.Index--
		start.Column--
	}
	return source.NewLocation(b.Filename, start, end)
}

func checkBlock(c *checkContext, block *ast.Block) {
	if block == nil {
		return
	}
	defer c.enterScope()()
	checkStmts(c, block.Nodes)
}

func checkStmts(c *checkContext, nodes []ast.Node) {
	warned := false
	for i, node := range nodes {
		checkStmt(c, node)
		if !warned && i+1 < len(nodes) && isJump(node) {
			c.warnf(diagnostics.WarnUnreachableCode, *nodes[i+1].Loc(), "unreachable",
				"unreachable code")
			warned = true
		}
	}
}

func isJump(node ast.Node) bool {
	switch node.(type) {
	case *ast.ReturnStmt, *ast.BreakStmt, *ast.ContinueStmt:
		return true
	}
	return false
}

func checkStmt(c *checkContext, node ast.Node) {
	switch n := node.(type) {
	case *ast.VarDecl:
		checkVarDecl(c, n)
	case *ast.ExprStmt:
		if m, ok := n.X.(*ast.MatchExpr); ok {
			n.X.SetType(checkMatch(c, m, nil, false))
			return
		}
		checkExpr(c, n.X, nil)
	case *ast.AssignStmt:
		checkAssign(c, n)
	case *ast.Block:
		checkBlock(c, n)
	case *ast.IfStmt:
		checkCondition(c, n.Cond)
		checkBlock(c, n.Body)
		if n.Else != nil {
			checkStmt(c, n.Else)
		}
	case *ast.WhileStmt:
		checkCondition(c, n.Cond)
		c.loops++
		checkBlock(c, n.Body)
		c.loops--
	case *ast.ForRangeStmt:
		checkForRange(c, n)
	case *ast.ForEachStmt:
		checkForEach(c, n)
	case *ast.ReturnStmt:
		checkReturn(c, n)
	case *ast.BreakStmt:
		if !c.inLoop() {
			c.errorf(diagnostics.ErrInvalidBreak, n.Location, "not inside a loop",
				"'переривати' outside of a loop")
		}
	case *ast.ContinueStmt:
		if !c.inLoop() {
			c.errorf(diagnostics.ErrInvalidContinue, n.Location, "not inside a loop",
				"'продовжити' outside of a loop")
		}
	case *ast.Invalid, nil:
	}
}

// inLoop reports whether break/continue have a target. The body of a parallel
// loop is its own function, so loops outside it do not count.
func (c *checkContext) inLoop() bool {
	if c.parallel != nil {
		return c.loops > c.parallelLoops
	}
	return c.loops > 0
}

func checkCondition(c *checkContext, cond ast.Expression) {
	t := checkExpr(c, cond, types.TypeBool)
	if !types.IsUnknown(t) && !t.Equals(types.TypeBool) {
		c.errorf(diagnostics.ErrTypeMismatch, *cond.Loc(), "expected "+tokens.TypeBool,
			"condition must be %s, found %s", tokens.TypeBool, t)
	}
}

func checkVarDecl(c *checkContext, decl *ast.VarDecl) {
	var declared types.SemType
	if decl.Type != nil {
		declared = resolveType(c, decl.Type)
	}

	typ := declared
	if decl.Value != nil {
		valueType := checkExpr(c, decl.Value, declared)
		if declared == nil {
			typ = valueType
			if types.IsVoid(valueType) {
				c.errorf(diagnostics.ErrInvalidType, *decl.Value.Loc(), "has no value",
					"cannot assign the result of a call with no value")
				typ = types.TypeUnknown
			}
		} else {
			checkAssignable(c, valueType, declared, decl.Value)
		}
	} else if decl.Const {
		c.errorf(diagnostics.ErrInvalidAssignment, decl.Name.Location, "needs a value",
			"constant '%s' must be initialized", decl.Name.Name)
	}
	if typ == nil {
		typ = types.TypeUnknown
	}

	kind := symbols.SymbolVariable
	if decl.Const {
		kind = symbols.SymbolConstant
	}
	decl.Symbol = &symbols.Symbol{
		Name:     decl.Name.Name,
		Kind:     kind,
		Type:     typ,
		Mutable:  !decl.Const,
		Location: decl.Name.Location,
	}
	decl.Name.Symbol = decl.Symbol
	decl.Name.SetType(typ)
	c.declare(decl.Symbol)
}

func checkAssign(c *checkContext, stmt *ast.AssignStmt) {
	checkAssignment(c, stmt.Lhs, stmt.Op, stmt.Rhs, stmt.Location)
}

// checkAssignment checks `lhs op rhs` and returns the type of the stored
// value, which is the type of lhs.
func checkAssignment(c *checkContext, lhs ast.Expression, opTok tokens.Token, rhs ast.Expression, loc source.Location) types.SemType {
	target := checkExpr(c, lhs, nil)
	checkAssignTarget(c, lhs)

	value := checkExpr(c, rhs, target)
	if opTok.Kind == tokens.EQUALS_TOKEN {
		checkAssignable(c, value, target, rhs)
		return target
	}

	op := tokens.CompoundOp(opTok.Kind)
	result := binaryResult(c, op, target, value, loc)
	if !types.IsUnknown(result) && !types.IsUnknown(target) && !result.Equals(target) {
		c.errorf(diagnostics.ErrTypeMismatch, loc, "",
			"cannot assign %s to %s", result, target)
	}
	return target
}

// checkAssignTarget reports writes to constants and, inside a parallel loop,
// to anything declared outside the loop body.
func checkAssignTarget(c *checkContext, lhs ast.Expression) {
	root := lhs
	for {
		switch n := root.(type) {
		case *ast.FieldAccess:
			root = n.X
			continue
		case *ast.IndexExpr:
			root = n.X
			continue
		}
		break
	}

	var sym *symbols.Symbol
	switch n := root.(type) {
	case *ast.IdentifierExpr:
		sym = n.Symbol
	case *ast.SelfExpr:
		sym = n.Symbol
	default:
		if root != lhs {
			return
		}
		c.errorf(diagnostics.ErrInvalidAssignment, *lhs.Loc(), "not assignable",
			"cannot assign to this expression")
		return
	}
	if sym == nil {
		return
	}

	switch {
	case sym.Kind == symbols.SymbolConstant:
		c.errorf(diagnostics.ErrConstantReassignment, *lhs.Loc(), "constant",
			"cannot assign to constant '%s'", sym.Name).
			WithSecondaryLabel(sym.Location, "declared with 'стала' here")
	case sym.Kind == symbols.SymbolFunction || sym.Kind == symbols.SymbolType:
		c.errorf(diagnostics.ErrInvalidAssignment, *lhs.Loc(), "not a variable",
			"cannot assign to %s '%s'", sym.Kind, sym.Name)
	case !sym.Mutable && root == lhs:
		c.errorf(diagnostics.ErrInvalidAssignment, *lhs.Loc(), "loop variable",
			"cannot assign to loop variable '%s'", sym.Name)
	case c.parallel != nil && !c.declaredWithin(sym):
		c.errorf(diagnostics.ErrInvalidAssignment, *lhs.Loc(), "captured by value",
			"cannot assign to '%s' inside a parallel loop", sym.Name).
			WithNote("parallel loop bodies receive copies of the variables they use")
	}
}

// declaredWithin reports whether sym belongs to a scope inside the innermost
// parallel loop body.
func (c *checkContext) declaredWithin(sym *symbols.Symbol) bool {
	for s := c.scope; s != nil; s = s.Parent() {
		if got, ok := s.GetSymbol(sym.Name); ok && got == sym {
			return true
		}
		if s == c.parallel {
			break
		}
	}
	return false
}

func checkForRange(c *checkContext, loop *ast.ForRangeStmt) {
	bounds := []ast.Expression{loop.From, loop.To}
	if loop.Step != nil {
		bounds = append(bounds, loop.Step)
	}
	typ := unifyOperands(c, bounds, nil)
	if !types.IsUnknown(typ) && !types.IsInteger(typ) {
		c.errorf(diagnostics.ErrTypeMismatch, *loop.From.Loc(), "expected an integer",
			"range bounds must be integers, found %s", typ)
		typ = types.TypeUnknown
	}

	exit := c.enterScope()
	defer exit()
	loop.Symbol = &symbols.Symbol{
		Name:     loop.Var.Name,
		Kind:     symbols.SymbolParameter,
		Type:     typ,
		Location: loop.Var.Location,
	}
	loop.Var.Symbol = loop.Symbol
	loop.Var.SetType(typ)
	c.declare(loop.Symbol)

	if loop.Parallel {
		savedScope, savedLoops := c.parallel, c.parallelLoops
		c.parallel = c.scope
		c.parallelLoops = c.loops
		defer func() { c.parallel, c.parallelLoops = savedScope, savedLoops }()
	} else {
		c.loops++
		defer func() { c.loops-- }()
	}
	checkBlock(c, loop.Body)
}

func checkForEach(c *checkContext, loop *ast.ForEachStmt) {
	iter := checkExpr(c, loop.Iterable, nil)
	elem := types.SemType(types.TypeUnknown)
	switch t := iter.(type) {
	case *types.ArrayType:
		elem = t.Elem
	case *types.UnknownType:
	default:
		c.errorf(diagnostics.ErrNotIndexable, *loop.Iterable.Loc(), "not an array",
			"cannot iterate over %s", iter)
	}

	defer c.enterScope()()
	loop.Symbol = &symbols.Symbol{
		Name:     loop.Var.Name,
		Kind:     symbols.SymbolParameter,
		Type:     elem,
		Location: loop.Var.Location,
	}
	loop.Var.Symbol = loop.Symbol
	loop.Var.SetType(elem)
	c.declare(loop.Symbol)

	c.loops++
	checkBlock(c, loop.Body)
	c.loops--
}

func checkReturn(c *checkContext, ret *ast.ReturnStmt) {
	if c.fnType == nil {
		return
	}
	if c.parallel != nil {
		c.errorf(diagnostics.ErrInvalidReturn, ret.Location, "inside a parallel loop",
			"cannot return from inside a parallel loop")
		return
	}
	want := c.fnType.Return
	if ret.Result == nil {
		if !types.IsVoid(want) {
			c.errorf(diagnostics.ErrInvalidReturn, ret.Location, "missing value",
				"function '%s' must return a value of type %s", c.fn.Name.Name, want)
		}
		return
	}
	got := checkExpr(c, ret.Result, want)
	if types.IsVoid(want) {
		c.errorf(diagnostics.ErrInvalidReturn, *ret.Result.Loc(), "unexpected value",
			"function '%s' does not return a value", c.fn.Name.Name)
		return
	}
	checkAssignable(c, got, want, ret.Result)
}

// terminates reports whether control cannot fall off the end of block.
func terminates(block *ast.Block) bool {
	if block == nil || len(block.Nodes) == 0 {
		return false
	}
	return stmtTerminates(block.Nodes[len(block.Nodes)-1])
}

func stmtTerminates(node ast.Node) bool {
	switch n := node.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.Block:
		return terminates(n)
	case *ast.IfStmt:
		if n.Else == nil || !terminates(n.Body) {
			return false
		}
		return stmtTerminates(n.Else)
	case *ast.WhileStmt:
		lit, ok := n.Cond.(*ast.Literal)
		return ok && lit.Kind == ast.BoolLiteral && lit.Value == "true" && !hasBreak(n.Body)
	}
	return false
}

// hasBreak reports whether block contains a break that targets its own loop.
func hasBreak(block *ast.Block) bool {
	found := false
	ast.Inspect(block, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.BreakStmt:
			found = true
		case *ast.WhileStmt, *ast.ForRangeStmt, *ast.ForEachStmt:
			return false
		}
		return !found
	})
	return found
}
