package typechecker

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/frontend/ast"
	"github.com/Evge14n/tryzub/internal/tokens"
	"github.com/Evge14n/tryzub/internal/types"
)

// TypeCompatibility represents the relationship between two types
type TypeCompatibility int

const (
	// Incompatible types cannot be used together
	Incompatible TypeCompatibility = iota

	// Identical types are exactly the same
	Identical

	// Assignable means an unresolved type is involved; the error was already reported
	Assignable

	// LosslessConvertible means an explicit conversion would keep every value
	LosslessConvertible

	// LossyConvertible means an explicit conversion may lose information
	LossyConvertible
)

func (tc TypeCompatibility) String() string {
	switch tc {
	case Incompatible:
		return "incompatible"
	case Identical:
		return "identical"
	case Assignable:
		return "assignable"
	case LosslessConvertible:
		return "lossless convertible"
	case LossyConvertible:
		return "lossy convertible"
	default:
		return "unknown"
	}
}

// checkTypeCompatibility determines if source type can be used where target
// type is expected. Numeric types never convert implicitly.
func checkTypeCompatibility(source, target types.SemType) TypeCompatibility {
	if types.IsUnknown(source) || types.IsUnknown(target) {
		return Assignable
	}
	if source.Equals(target) {
		return Identical
	}
	if types.IsNumeric(source) && types.IsNumeric(target) {
		if isLosslessNumericConversion(source, target) {
			return LosslessConvertible
		}
		return LossyConvertible
	}
	return Incompatible
}

// mantissaBits is the number of integer bits a float represents exactly.
var mantissaBits = map[int]int{32: 24, 64: 53}

func isLosslessNumericConversion(source, target types.SemType) bool {
	switch s := source.(type) {
	case *types.IntType:
		switch t := target.(type) {
		case *types.IntType:
			if s.Signed == t.Signed {
				return t.Bits >= s.Bits
			}
			return !s.Signed && t.Bits > s.Bits
		case *types.FloatType:
			return s.Bits <= mantissaBits[t.Bits]
		}
	case *types.FloatType:
		t, ok := target.(*types.FloatType)
		return ok && t.Bits >= s.Bits
	}
	return false
}

// checkAssignable reports a mismatch when a value of type src is used where
// dst is required.
func checkAssignable(c *checkContext, src, dst types.SemType, expr ast.Expression) bool {
	compat := checkTypeCompatibility(src, dst)
	if compat == Identical || compat == Assignable {
		return true
	}
	d := c.errorf(diagnostics.ErrTypeMismatch, *expr.Loc(),
		fmt.Sprintf("expected %s, found %s", dst, src),
		"cannot use a value of type %s as %s", src, dst)
	if compat == LosslessConvertible || compat == LossyConvertible {
		d.WithHelp(fmt.Sprintf("convert it explicitly with %s(...)", dst))
	}
	return false
}

// fitsInType checks if a literal's digits, optionally negated, are
// representable in t.
func fitsInType(digits string, negated bool, t types.SemType) bool {
	switch t := t.(type) {
	case *types.IntType:
		value, ok := new(big.Int).SetString(digits, 10)
		if !ok {
			return false
		}
		if negated {
			value.Neg(value)
		}
		lo, hi := intRange(t)
		return value.Cmp(lo) >= 0 && value.Cmp(hi) <= 0
	case *types.FloatType:
		_, err := strconv.ParseFloat(digits, t.Bits)
		return err == nil
	}
	return true
}

func intRange(t *types.IntType) (lo, hi *big.Int) {
	one := big.NewInt(1)
	if t.Signed {
		hi = new(big.Int).Lsh(one, uint(t.Bits-1))
		lo = new(big.Int).Neg(hi)
		hi.Sub(hi, one)
		return lo, hi
	}
	hi = new(big.Int).Lsh(one, uint(t.Bits))
	return big.NewInt(0), hi.Sub(hi, one)
}

// getTypeRange returns a human-readable range for integer types
func getTypeRange(t types.SemType) string {
	it, ok := t.(*types.IntType)
	if !ok {
		return "unknown range"
	}
	lo, hi := intRange(it)
	return fmt.Sprintf("%s to %s", lo, hi)
}

// untyped classifies constant expressions whose type comes from context.
type untyped int

const (
	notUntyped untyped = iota
	untypedInt
	untypedFloat
)

func untypedKind(e ast.Expression) untyped {
	switch n := e.(type) {
	case *ast.Literal:
		if n.Suffix != "" {
			return notUntyped
		}
		switch n.Kind {
		case ast.IntLiteral:
			return untypedInt
		case ast.FloatLiteral:
			return untypedFloat
		}
	case *ast.UnaryExpr:
		if n.Op.Kind == tokens.MINUS_TOKEN {
			return untypedKind(n.X)
		}
	case *ast.BinaryExpr:
		if !isArithmetic(n.Op.Kind) {
			return notUntyped
		}
		l, r := untypedKind(n.X), untypedKind(n.Y)
		if l == notUntyped || r == notUntyped {
			return notUntyped
		}
		return max(l, r)
	}
	return notUntyped
}

// checkOperands checks expressions that must share one type. Typed operands
// are checked first; untyped constants then adapt to them, or to want, or
// default to цл64 / дрб64.
func checkOperands(c *checkContext, exprs []ast.Expression, want types.SemType) []types.SemType {
	out := make([]types.SemType, len(exprs))
	var anchor types.SemType
	kind := notUntyped
	for i, e := range exprs {
		if k := untypedKind(e); k != notUntyped {
			kind = max(kind, k)
			continue
		}
		out[i] = checkExpr(c, e, want)
		if anchor == nil && !types.IsUnknown(out[i]) {
			anchor = out[i]
		}
	}
	if anchor == nil {
		switch {
		case want != nil && types.IsNumeric(want) && !(kind == untypedFloat && types.IsInteger(want)):
			anchor = want
		case kind == untypedFloat:
			anchor = types.TypeF64
		default:
			anchor = types.TypeI64
		}
	}
	for i, e := range exprs {
		if out[i] == nil {
			out[i] = checkExpr(c, e, anchor)
		}
	}
	return out
}

// unifyOperands is checkOperands for sites that need one result type and
// report disagreement themselves.
func unifyOperands(c *checkContext, exprs []ast.Expression, want types.SemType) types.SemType {
	ts := checkOperands(c, exprs, want)
	var result types.SemType = types.TypeUnknown
	for i, t := range ts {
		if types.IsUnknown(t) {
			continue
		}
		if types.IsUnknown(result) {
			result = t
			continue
		}
		if !t.Equals(result) {
			c.errorf(diagnostics.ErrTypeMismatch, *exprs[i].Loc(),
				fmt.Sprintf("expected %s, found %s", result, t),
				"mismatched types %s and %s", result, t)
			return types.TypeUnknown
		}
	}
	return result
}
