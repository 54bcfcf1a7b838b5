package runtime

import (
	"errors"
	"fmt"
	"math"

	"github.com/Evge14n/tryzub/internal/tokens"
	"github.com/Evge14n/tryzub/internal/types"
)

var (
	ErrDivisionByZero   = errors.New("division by zero")
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	ErrNilReference     = errors.New("nil reference")
	ErrStackOverflow    = errors.New("stack overflow")
	ErrIO               = errors.New("i/o error")
)

// Wrap truncates v to the width of t: two's complement for integers, single
// precision rounding for дрб32.
func Wrap(v Value, t types.SemType) Value {
	switch t := t.(type) {
	case *types.IntType:
		if t.Signed {
			return Int(wrapSigned(int64(v.Data), t.Bits))
		}
		return Uint(wrapUnsigned(v.Data, t.Bits))
	case *types.FloatType:
		if t.Bits == 32 {
			return Float(float64(float32(v.Float())))
		}
	}
	return v
}

func wrapSigned(x int64, bits int) int64 {
	if bits >= 64 {
		return x
	}
	shift := 64 - bits
	return x << shift >> shift
}

func wrapUnsigned(x uint64, bits int) uint64 {
	if bits >= 64 {
		return x
	}
	return x & (1<<bits - 1)
}

// Convert changes the numeric type of v from one type to another.
func Convert(v Value, to types.SemType) Value {
	switch to := to.(type) {
	case *types.IntType:
		var bits uint64
		switch v.Kind {
		case KindFloat:
			f := v.Float()
			if to.Signed || f < 0 {
				bits = uint64(saturate(f))
			} else if f >= math.MaxUint64 {
				bits = math.MaxUint64
			} else {
				bits = uint64(f)
			}
		default:
			bits = v.Data
		}
		if to.Signed {
			return Wrap(Int(int64(bits)), to)
		}
		return Wrap(Uint(bits), to)
	case *types.FloatType:
		var f float64
		switch v.Kind {
		case KindInt:
			f = float64(v.Int())
		case KindUint:
			f = float64(v.Uint())
		default:
			f = v.Float()
		}
		return Wrap(Float(f), to)
	}
	return v
}

func saturate(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// Binary applies op to two operands of type t. Comparisons yield a bool; the
// arithmetic result is wrapped to t.
func Binary(op tokens.TOKEN, t types.SemType, a, b Value) (Value, error) {
	switch a.Kind {
	case KindInt:
		return binaryInt(op, t, a.Int(), b.Int())
	case KindUint:
		return binaryUint(op, t, a.Uint(), b.Uint())
	case KindFloat:
		return binaryFloat(op, t, a.Float(), b.Float())
	case KindBool:
		return binaryBool(op, a.Bool(), b.Bool())
	case KindText:
		return binaryText(op, a.Text(), b.Text())
	}
	return Void, fmt.Errorf("operator %s is not defined on %s", op, a.Kind)
}

func binaryInt(op tokens.TOKEN, t types.SemType, x, y int64) (Value, error) {
	var r int64
	switch op {
	case tokens.PLUS_TOKEN:
		r = x + y
	case tokens.MINUS_TOKEN:
		r = x - y
	case tokens.MUL_TOKEN:
		r = x * y
	case tokens.DIV_TOKEN:
		if y == 0 {
			return Void, ErrDivisionByZero
		}
		r = x / y
	case tokens.MOD_TOKEN:
		if y == 0 {
			return Void, ErrDivisionByZero
		}
		r = x % y
	case tokens.EXP_TOKEN:
		p, err := powInt(x, y)
		if err != nil {
			return Void, err
		}
		r = p
	default:
		return compare(op, cmpOrdered(x, y))
	}
	return Wrap(Int(r), t), nil
}

func binaryUint(op tokens.TOKEN, t types.SemType, x, y uint64) (Value, error) {
	var r uint64
	switch op {
	case tokens.PLUS_TOKEN:
		r = x + y
	case tokens.MINUS_TOKEN:
		r = x - y
	case tokens.MUL_TOKEN:
		r = x * y
	case tokens.DIV_TOKEN:
		if y == 0 {
			return Void, ErrDivisionByZero
		}
		r = x / y
	case tokens.MOD_TOKEN:
		if y == 0 {
			return Void, ErrDivisionByZero
		}
		r = x % y
	case tokens.EXP_TOKEN:
		r = 1
		for base, e := x, y; e > 0; e >>= 1 {
			if e&1 == 1 {
				r *= base
			}
			base *= base
		}
	default:
		return compare(op, cmpOrdered(x, y))
	}
	return Wrap(Uint(r), t), nil
}

// powInt raises x to y by squaring. A negative exponent truncates toward
// zero like integer division does.
func powInt(x, y int64) (int64, error) {
	if y < 0 {
		switch x {
		case 0:
			return 0, ErrDivisionByZero
		case 1:
			return 1, nil
		case -1:
			if y%2 == 0 {
				return 1, nil
			}
			return -1, nil
		}
		return 0, nil
	}
	r := int64(1)
	for base := x; y > 0; y >>= 1 {
		if y&1 == 1 {
			r *= base
		}
		base *= base
	}
	return r, nil
}

func binaryFloat(op tokens.TOKEN, t types.SemType, x, y float64) (Value, error) {
	var r float64
	switch op {
	case tokens.PLUS_TOKEN:
		r = x + y
	case tokens.MINUS_TOKEN:
		r = x - y
	case tokens.MUL_TOKEN:
		r = x * y
	case tokens.DIV_TOKEN:
		r = x / y
	case tokens.EXP_TOKEN:
		r = math.Pow(x, y)
	case tokens.MOD_TOKEN:
		return Void, fmt.Errorf("operator %s is not defined on floats", op)
	default:
		switch {
		case x < y:
			return compare(op, -1)
		case x > y:
			return compare(op, 1)
		case x == y:
			return compare(op, 0)
		}
		// NaN compares unequal to everything.
		return Bool(op == tokens.NOT_EQUAL_TOKEN), nil
	}
	return Wrap(Float(r), t), nil
}

func binaryBool(op tokens.TOKEN, x, y bool) (Value, error) {
	switch op {
	case tokens.AND_TOKEN:
		return Bool(x && y), nil
	case tokens.OR_TOKEN:
		return Bool(x || y), nil
	case tokens.DOUBLE_EQUAL_TOKEN:
		return Bool(x == y), nil
	case tokens.NOT_EQUAL_TOKEN:
		return Bool(x != y), nil
	}
	return Void, fmt.Errorf("operator %s is not defined on bool", op)
}

func binaryText(op tokens.TOKEN, x, y string) (Value, error) {
	if op == tokens.PLUS_TOKEN {
		return Text(x + y), nil
	}
	return compare(op, cmpOrdered(x, y))
}

func cmpOrdered[T int64 | uint64 | string](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

func compare(op tokens.TOKEN, c int) (Value, error) {
	switch op {
	case tokens.DOUBLE_EQUAL_TOKEN:
		return Bool(c == 0), nil
	case tokens.NOT_EQUAL_TOKEN:
		return Bool(c != 0), nil
	case tokens.LESS_TOKEN:
		return Bool(c < 0), nil
	case tokens.LESS_EQUAL_TOKEN:
		return Bool(c <= 0), nil
	case tokens.GREATER_TOKEN:
		return Bool(c > 0), nil
	case tokens.GREATER_EQUAL_TOKEN:
		return Bool(c >= 0), nil
	}
	return Void, fmt.Errorf("unknown operator %s", op)
}

// Unary applies a prefix operator to x of type t.
func Unary(op tokens.TOKEN, t types.SemType, x Value) (Value, error) {
	switch op {
	case tokens.MINUS_TOKEN:
		switch x.Kind {
		case KindInt:
			return Wrap(Int(-x.Int()), t), nil
		case KindUint:
			return Wrap(Uint(-x.Uint()), t), nil
		case KindFloat:
			return Float(-x.Float()), nil
		}
	case tokens.NOT_TOKEN:
		if x.Kind == KindBool {
			return Bool(!x.Bool()), nil
		}
	}
	return Void, fmt.Errorf("operator %s is not defined on %s", op, x.Kind)
}

// InRange reports whether a range loop at i continues toward to. A zero
// step runs no iterations.
func InRange(i, to, step Value, inclusive bool) bool {
	var c, dir int
	switch i.Kind {
	case KindUint:
		c = cmpOrdered(i.Uint(), to.Uint())
		if step.Uint() > 0 {
			dir = 1
		}
	default:
		c = cmpOrdered(i.Int(), to.Int())
		switch s := step.Int(); {
		case s > 0:
			dir = 1
		case s < 0:
			dir = -1
		}
	}
	switch dir {
	case 1:
		return c < 0 || (inclusive && c == 0)
	case -1:
		return c > 0 || (inclusive && c == 0)
	}
	return false
}

// Index checks i against the bounds of array a.
func Index(a Value, i Value) (int, error) {
	o := a.Object()
	if o == nil {
		return 0, ErrNilReference
	}
	n := int64(len(o.Fields))
	var idx int64
	if i.Kind == KindUint {
		if i.Uint() >= uint64(n) {
			return 0, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfBounds, i.Uint(), n)
		}
		return int(i.Uint()), nil
	}
	idx = i.Int()
	if idx < 0 || idx >= n {
		return 0, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfBounds, idx, n)
	}
	return int(idx), nil
}
