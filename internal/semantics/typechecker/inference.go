package typechecker

import (
	"fmt"
	"strings"

	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/frontend/ast"
	"github.com/Evge14n/tryzub/internal/semantics/symbols"
	"github.com/Evge14n/tryzub/internal/source"
	"github.com/Evge14n/tryzub/internal/tokens"
	"github.com/Evge14n/tryzub/internal/types"
)

// checkExpr infers the type of expr, records it on the node and returns it.
// want is the type the context expects, used only to type untyped constants
// and empty arrays; callers still check compatibility.
func checkExpr(c *checkContext, expr ast.Expression, want types.SemType) types.SemType {
	if expr == nil {
		return types.TypeUnknown
	}
	t := inferExprType(c, expr, want)
	if t == nil {
		t = types.TypeUnknown
	}
	expr.SetType(t)
	return t
}

func inferExprType(c *checkContext, expr ast.Expression, want types.SemType) types.SemType {
	switch e := expr.(type) {
	case *ast.Literal:
		return inferLiteralType(c, e, want, false)
	case *ast.IdentifierExpr:
		return inferIdentifierType(c, e)
	case *ast.SelfExpr:
		sym, ok := c.scope.Lookup("це")
		if !ok {
			c.errorf(diagnostics.ErrUndefinedSymbol, e.Location, "not inside a method",
				"'це' can only be used inside a method")
			return types.TypeUnknown
		}
		e.Symbol = sym
		return sym.Type
	case *ast.BinaryExpr:
		return inferBinaryExprType(c, e, want)
	case *ast.UnaryExpr:
		return inferUnaryExprType(c, e, want)
	case *ast.CallExpr:
		return inferCallExprType(c, e)
	case *ast.MethodCall:
		return inferMethodCallType(c, e)
	case *ast.FieldAccess:
		return inferFieldAccessType(c, e)
	case *ast.StructInit:
		return inferStructInitType(c, e)
	case *ast.AwaitExpr:
		return inferAwaitType(c, e)
	case *ast.MatchExpr:
		return checkMatch(c, e, want, true)
	case *ast.ArrayLit:
		return inferArrayLitType(c, e, want)
	case *ast.IndexExpr:
		return inferIndexExprType(c, e)
	case *ast.AssignExpr:
		return checkAssignment(c, e.Lhs, e.Op, e.Rhs, e.Location)
	}
	return types.TypeUnknown
}

// inferLiteralType types a literal: a suffix fixes the type, otherwise an
// untyped number takes a numeric want or defaults to цл64 / дрб64.
func inferLiteralType(c *checkContext, lit *ast.Literal, want types.SemType, negated bool) types.SemType {
	switch lit.Kind {
	case ast.BoolLiteral:
		return types.TypeBool
	case ast.TextLiteral:
		return types.TypeText
	}

	var typ types.SemType
	switch {
	case lit.Suffix != "":
		t, ok := types.FromName(lit.Suffix)
		if !ok {
			return types.TypeUnknown
		}
		typ = t
	case lit.Kind == ast.IntLiteral && types.IsNumeric(want):
		typ = want
	case lit.Kind == ast.FloatLiteral && types.IsFloat(want):
		typ = want
	case lit.Kind == ast.FloatLiteral:
		typ = types.TypeF64
	default:
		typ = types.TypeI64
	}

	if !fitsInType(lit.Value, negated, typ) {
		value := lit.Value
		if negated {
			value = "-" + value
		}
		d := c.errorf(diagnostics.ErrConstantOverflow, lit.Location, "out of range",
			"constant %s overflows %s", value, typ)
		if types.IsInteger(typ) {
			d.WithNote(fmt.Sprintf("%s holds values from %s", typ, getTypeRange(typ)))
		}
	}
	return typ
}

func inferIdentifierType(c *checkContext, id *ast.IdentifierExpr) types.SemType {
	sym, ok := c.scope.Lookup(id.Name)
	if !ok {
		if id.Name != "" {
			c.errorf(diagnostics.ErrUndefinedSymbol, id.Location, "not found in this scope",
				"undefined: %s", id.Name)
		}
		return types.TypeUnknown
	}
	id.Symbol = sym
	c.used[sym] = true

	switch sym.Kind {
	case symbols.SymbolType:
		c.errorf(diagnostics.ErrInvalidOperation, id.Location, "type used as value",
			"'%s' is a type, not a value", id.Name)
		return types.TypeUnknown
	case symbols.SymbolFunction:
		c.errorf(diagnostics.ErrInvalidOperation, id.Location, "call it instead",
			"function '%s' can only be called", id.Name)
		return types.TypeUnknown
	}
	return sym.Type
}

func isArithmetic(kind tokens.TOKEN) bool {
	switch kind {
	case tokens.PLUS_TOKEN, tokens.MINUS_TOKEN, tokens.MUL_TOKEN,
		tokens.DIV_TOKEN, tokens.MOD_TOKEN, tokens.EXP_TOKEN:
		return true
	}
	return false
}

func inferBinaryExprType(c *checkContext, e *ast.BinaryExpr, want types.SemType) types.SemType {
	var operandWant types.SemType
	switch {
	case isArithmetic(e.Op.Kind):
		operandWant = want
	case e.Op.Kind == tokens.AND_TOKEN || e.Op.Kind == tokens.OR_TOKEN:
		operandWant = types.TypeBool
	}
	ts := checkOperands(c, []ast.Expression{e.X, e.Y}, operandWant)
	return binaryResult(c, e.Op.Kind, ts[0], ts[1], e.Location)
}

// binaryResult applies the operator rules to checked operand types.
func binaryResult(c *checkContext, op tokens.TOKEN, lt, rt types.SemType, loc source.Location) types.SemType {
	if types.IsUnknown(lt) || types.IsUnknown(rt) {
		if isArithmetic(op) {
			return types.TypeUnknown
		}
		return types.TypeBool
	}

	if !lt.Equals(rt) {
		d := c.errorf(diagnostics.ErrTypeMismatch, loc, fmt.Sprintf("%s %s %s", lt, op, rt),
			"mismatched types %s and %s", lt, rt)
		if compat := checkTypeCompatibility(rt, lt); compat == LosslessConvertible || compat == LossyConvertible {
			d.WithHelp(fmt.Sprintf("convert one side explicitly, for example %s(...)", lt))
		}
		if isArithmetic(op) {
			return types.TypeUnknown
		}
		return types.TypeBool
	}

	switch op {
	case tokens.PLUS_TOKEN, tokens.MINUS_TOKEN, tokens.MUL_TOKEN,
		tokens.DIV_TOKEN, tokens.MOD_TOKEN, tokens.EXP_TOKEN:
		if op == tokens.PLUS_TOKEN && lt.Equals(types.TypeText) {
			return types.TypeText
		}
		if !types.IsNumeric(lt) || (op == tokens.MOD_TOKEN && types.IsFloat(lt)) {
			invalidOperator(c, op, lt, loc)
			return types.TypeUnknown
		}
		return lt
	case tokens.DOUBLE_EQUAL_TOKEN, tokens.NOT_EQUAL_TOKEN:
		switch lt.(type) {
		case *types.IntType, *types.FloatType, *types.BoolType, *types.TextType:
		default:
			invalidOperator(c, op, lt, loc)
		}
		return types.TypeBool
	case tokens.LESS_TOKEN, tokens.GREATER_TOKEN, tokens.LESS_EQUAL_TOKEN, tokens.GREATER_EQUAL_TOKEN:
		if !types.IsNumeric(lt) && !lt.Equals(types.TypeText) {
			invalidOperator(c, op, lt, loc)
		}
		return types.TypeBool
	case tokens.AND_TOKEN, tokens.OR_TOKEN:
		if !lt.Equals(types.TypeBool) {
			invalidOperator(c, op, lt, loc)
		}
		return types.TypeBool
	}
	return types.TypeUnknown
}

func invalidOperator(c *checkContext, op tokens.TOKEN, t types.SemType, loc source.Location) {
	c.errorf(diagnostics.ErrInvalidOperation, loc, fmt.Sprintf("operands are %s", t),
		"operator %s is not defined on %s", op, t)
}

func inferUnaryExprType(c *checkContext, e *ast.UnaryExpr, want types.SemType) types.SemType {
	switch e.Op.Kind {
	case tokens.MINUS_TOKEN:
		if lit, ok := e.X.(*ast.Literal); ok && (lit.Kind == ast.IntLiteral || lit.Kind == ast.FloatLiteral) {
			t := inferLiteralType(c, lit, want, true)
			lit.SetType(t)
			return t
		}
		t := checkExpr(c, e.X, want)
		if !types.IsUnknown(t) && !types.IsNumeric(t) {
			invalidOperator(c, e.Op.Kind, t, e.Location)
			return types.TypeUnknown
		}
		return t
	case tokens.NOT_TOKEN:
		t := checkExpr(c, e.X, types.TypeBool)
		if !types.IsUnknown(t) && !t.Equals(types.TypeBool) {
			invalidOperator(c, e.Op.Kind, t, e.Location)
		}
		return types.TypeBool
	}
	return types.TypeUnknown
}

func inferCallExprType(c *checkContext, call *ast.CallExpr) types.SemType {
	name := call.Fun.Name
	if t, ok := types.FromName(name); ok && types.IsNumeric(t) {
		return checkConversion(c, call, t)
	}

	sym, ok := c.scope.Lookup(name)
	if !ok {
		c.errorf(diagnostics.ErrUndefinedSymbol, call.Fun.Location, "not found in this scope",
			"undefined function '%s'", name)
		checkArgsLoosely(c, call.Args)
		return types.TypeUnknown
	}
	call.Fun.Symbol = sym
	c.used[sym] = true
	if !sym.IsCallable() {
		c.errorf(diagnostics.ErrNotCallable, call.Fun.Location, "not a function",
			"'%s' is a %s, not a function", name, sym.Kind)
		checkArgsLoosely(c, call.Args)
		return types.TypeUnknown
	}
	call.Target = sym

	ft := sym.Type.(*types.FunctionType)
	call.Fun.SetType(ft)
	if sym.Builtin {
		return checkBuiltinCall(c, call, sym)
	}
	checkArgs(c, name, call.Args, ft.Params, call.Location)
	return ft.Result()
}

// checkConversion types `T(x)` for a numeric type T.
func checkConversion(c *checkContext, call *ast.CallExpr, to types.SemType) types.SemType {
	call.Convert = to
	if len(call.Args) != 1 {
		c.errorf(diagnostics.ErrWrongArgumentCount, call.Location, "one value expected",
			"conversion to %s takes exactly one argument, got %d", to, len(call.Args))
		checkArgsLoosely(c, call.Args)
		return to
	}
	var want types.SemType
	if untypedKind(call.Args[0]) != notUntyped {
		want = to
	}
	from := checkExpr(c, call.Args[0], want)
	if !types.IsUnknown(from) && !types.IsNumeric(from) {
		c.errorf(diagnostics.ErrInvalidOperation, *call.Args[0].Loc(), fmt.Sprintf("type %s", from),
			"cannot convert %s to %s", from, to)
	}
	return to
}

func checkArgs(c *checkContext, name string, args []ast.Expression, params []types.SemType, loc source.Location) {
	if len(args) != len(params) {
		c.errorf(diagnostics.ErrWrongArgumentCount, loc, fmt.Sprintf("expected %d", len(params)),
			"'%s' expects %d argument(s), got %d", name, len(params), len(args))
		checkArgsLoosely(c, args)
		return
	}
	for i, arg := range args {
		t := checkExpr(c, arg, params[i])
		checkAssignable(c, t, params[i], arg)
	}
}

func checkArgsLoosely(c *checkContext, args []ast.Expression) {
	for _, arg := range args {
		checkExpr(c, arg, nil)
	}
}

func inferMethodCallType(c *checkContext, m *ast.MethodCall) types.SemType {
	xt := checkExpr(c, m.X, nil)
	st, ok := xt.(*types.StructType)
	if !ok {
		if !types.IsUnknown(xt) {
			c.errorf(diagnostics.ErrUndefinedSymbol, m.Method.Location, "no methods",
				"type %s has no method '%s'", xt, m.Method.Name)
		}
		checkArgsLoosely(c, m.Args)
		return types.TypeUnknown
	}

	decl := c.prog.Method(st, m.Method.Name)
	if decl == nil {
		c.errorf(diagnostics.ErrUndefinedSymbol, m.Method.Location, "unknown method",
			"type %s has no method '%s'", st, m.Method.Name)
		checkArgsLoosely(c, m.Args)
		return types.TypeUnknown
	}
	m.Target = decl.Symbol
	m.Method.Symbol = decl.Symbol

	ft := decl.Symbol.Type.(*types.FunctionType)
	checkArgs(c, decl.QualifiedName(), m.Args, ft.Params, m.Location)
	return ft.Result()
}

func inferFieldAccessType(c *checkContext, f *ast.FieldAccess) types.SemType {
	xt := checkExpr(c, f.X, nil)
	switch t := xt.(type) {
	case *types.UnknownType:
		return types.TypeUnknown
	case *types.StructType:
		idx := t.FieldIndex(f.Field.Name)
		if idx < 0 {
			c.errorf(diagnostics.ErrFieldNotFound, f.Field.Location, "unknown field",
				"type %s has no field '%s'", t, f.Field.Name)
			return types.TypeUnknown
		}
		f.Index = idx
		return t.Fields[idx].Type
	}
	c.errorf(diagnostics.ErrFieldNotFound, f.Field.Location, "not a struct",
		"type %s has no field '%s'", xt, f.Field.Name)
	return types.TypeUnknown
}

// inferStructInitType checks a struct literal: fields may come in any order
// but each must appear exactly once.
func inferStructInitType(c *checkContext, lit *ast.StructInit) types.SemType {
	sym, ok := c.scope.Lookup(lit.Name.Name)
	if !ok || sym.Kind != symbols.SymbolType {
		c.errorf(diagnostics.ErrUndefinedSymbol, lit.Name.Location, "not a struct",
			"undefined struct '%s'", lit.Name.Name)
		for _, f := range lit.Fields {
			checkExpr(c, f.Value, nil)
		}
		return types.TypeUnknown
	}
	st := sym.Type.(*types.StructType)
	lit.Name.Symbol = sym

	seen := make(map[string]source.Location, len(lit.Fields))
	for i := range lit.Fields {
		f := &lit.Fields[i]
		idx := st.FieldIndex(f.Name.Name)
		if idx < 0 {
			c.errorf(diagnostics.ErrFieldNotFound, f.Name.Location, "unknown field",
				"type %s has no field '%s'", st, f.Name.Name)
			checkExpr(c, f.Value, nil)
			continue
		}
		if prev, dup := seen[f.Name.Name]; dup {
			c.errorf(diagnostics.ErrDuplicateField, f.Name.Location, "set again here",
				"field '%s' is initialized more than once", f.Name.Name).
				WithSecondaryLabel(prev, "first set here")
			checkExpr(c, f.Value, nil)
			continue
		}
		seen[f.Name.Name] = f.Name.Location
		f.Index = idx
		want := st.Fields[idx].Type
		checkAssignable(c, checkExpr(c, f.Value, want), want, f.Value)
	}

	var missing []string
	for _, field := range st.Fields {
		if _, ok := seen[field.Name]; !ok {
			missing = append(missing, "'"+field.Name+"'")
		}
	}
	if len(missing) > 0 {
		c.errorf(diagnostics.ErrMissingField, lit.Location, "incomplete literal",
			"missing %s in %s literal", strings.Join(missing, ", "), st)
	}
	return st
}

// inferAwaitType checks `чекати e`, which needs an enclosing async function
// at any depth and a future operand.
func inferAwaitType(c *checkContext, a *ast.AwaitExpr) types.SemType {
	t := checkExpr(c, a.X, nil)
	switch {
	case c.parallel != nil:
		c.errorf(diagnostics.ErrAwaitOutsideAsync, a.Location, "inside a parallel loop",
			"'чекати' is not allowed inside a parallel loop")
	case c.fn == nil || !c.fn.Async:
		d := c.errorf(diagnostics.ErrAwaitOutsideAsync, a.Location, "not in an async function",
			"'чекати' is only allowed inside async functions")
		if c.fn != nil {
			d.WithHelp(fmt.Sprintf("declare it as 'асинхронний функція %s'", c.fn.Name.Name))
		}
	}

	fut, ok := t.(*types.FutureType)
	if !ok {
		if !types.IsUnknown(t) {
			c.errorf(diagnostics.ErrTypeMismatch, *a.X.Loc(), fmt.Sprintf("type %s", t),
				"cannot await a value of type %s", t)
		}
		return types.TypeUnknown
	}
	return fut.Inner
}

// checkMatch checks a match. As a value its arms must agree on one type and
// it must be exhaustive; as a statement the arm values are discarded.
func checkMatch(c *checkContext, m *ast.MatchExpr, want types.SemType, asValue bool) types.SemType {
	subject := checkExpr(c, m.Subject, nil)
	switch subject.(type) {
	case *types.IntType, *types.FloatType, *types.BoolType, *types.TextType, *types.UnknownType:
	default:
		c.errorf(diagnostics.ErrInvalidOperation, *m.Subject.Loc(), fmt.Sprintf("type %s", subject),
			"cannot match on a value of type %s", subject)
		subject = types.TypeUnknown
	}

	sawTrue, sawFalse := false, false
	for _, arm := range m.Arms {
		if arm.Pattern == nil {
			continue
		}
		pt := checkExpr(c, arm.Pattern, subject)
		if !types.IsUnknown(pt) && !types.IsUnknown(subject) && !pt.Equals(subject) {
			c.errorf(diagnostics.ErrTypeMismatch, *arm.Pattern.Loc(), fmt.Sprintf("expected %s", subject),
				"pattern of type %s cannot match %s", pt, subject)
		}
		if lit, ok := arm.Pattern.(*ast.Literal); ok && lit.Kind == ast.BoolLiteral {
			sawTrue = sawTrue || lit.Value == "true"
			sawFalse = sawFalse || lit.Value == "false"
		}
	}

	bodies := make([]ast.Expression, len(m.Arms))
	for i, arm := range m.Arms {
		bodies[i] = arm.Body
	}
	if !asValue {
		for _, body := range bodies {
			checkExpr(c, body, nil)
		}
		return types.TypeVoid
	}

	result := unifyOperands(c, bodies, want)
	if !m.HasDefault() && !(sawTrue && sawFalse) {
		c.errorf(diagnostics.ErrNonExhaustiveMatch, m.Location, "add a '_' arm",
			"match used as a value must cover every case")
	}
	return result
}

func inferArrayLitType(c *checkContext, lit *ast.ArrayLit, want types.SemType) types.SemType {
	var elemWant types.SemType
	if at, ok := want.(*types.ArrayType); ok {
		elemWant = at.Elem
	}
	if len(lit.Elems) == 0 {
		if elemWant == nil {
			c.errorf(diagnostics.ErrInvalidType, lit.Location, "add a type annotation",
				"cannot infer the element type of an empty array")
			return types.TypeUnknown
		}
		return types.ArrayOf(elemWant)
	}
	elem := unifyOperands(c, lit.Elems, elemWant)
	if types.IsVoid(elem) {
		c.errorf(diagnostics.ErrInvalidType, lit.Location, "no value",
			"array elements must have a value")
		return types.TypeUnknown
	}
	return types.ArrayOf(elem)
}

func inferIndexExprType(c *checkContext, ix *ast.IndexExpr) types.SemType {
	xt := checkExpr(c, ix.X, nil)
	it := checkExpr(c, ix.Index, types.TypeI64)
	if !types.IsUnknown(it) && !types.IsInteger(it) {
		c.errorf(diagnostics.ErrTypeMismatch, *ix.Index.Loc(), fmt.Sprintf("type %s", it),
			"array index must be an integer, found %s", it)
	}
	switch t := xt.(type) {
	case *types.ArrayType:
		return t.Elem
	case *types.UnknownType:
		return types.TypeUnknown
	}
	c.errorf(diagnostics.ErrNotIndexable, *ix.X.Loc(), fmt.Sprintf("type %s", xt),
		"cannot index a value of type %s", xt)
	return types.TypeUnknown
}
