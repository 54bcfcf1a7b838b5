package runtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Evge14n/tryzub/internal/tokens"
	"github.com/Evge14n/tryzub/internal/types"
)

// Kind is the tag of a Value.
type Kind uint8

const (
	KindVoid Kind = iota
	// KindInt holds every signed width, sign-extended into Data.
	KindInt
	// KindUint holds every unsigned width, zero-extended into Data.
	KindUint
	KindFloat
	KindBool
	KindText
	KindStruct
	KindArray
	KindFuture
)

var kindNames = [...]string{
	KindVoid:   "void",
	KindInt:    "int",
	KindUint:   "uint",
	KindFloat:  "float",
	KindBool:   "bool",
	KindText:   "text",
	KindStruct: "struct",
	KindArray:  "array",
	KindFuture: "future",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a tagged union. Scalars live in Data; text keeps its string in
// Ref and heap variants keep their *Object there.
type Value struct {
	Kind Kind
	Data uint64
	Ref  any
}

// Void is the value of expressions that produce nothing. It also stands in
// for a struct reference that was never assigned.
var Void = Value{}

func Int(i int64) Value     { return Value{Kind: KindInt, Data: uint64(i)} }
func Uint(u uint64) Value   { return Value{Kind: KindUint, Data: u} }
func Float(f float64) Value { return Value{Kind: KindFloat, Data: math.Float64bits(f)} }
func Text(s string) Value   { return Value{Kind: KindText, Ref: s} }

func Bool(b bool) Value {
	if b {
		return Value{Kind: KindBool, Data: 1}
	}
	return Value{Kind: KindBool}
}

func (v Value) Int() int64     { return int64(v.Data) }
func (v Value) Uint() uint64   { return v.Data }
func (v Value) Float() float64 { return math.Float64frombits(v.Data) }
func (v Value) Bool() bool     { return v.Data != 0 }
func (v Value) IsVoid() bool   { return v.Kind == KindVoid }
func (v Value) IsHeap() bool   { return v.Kind >= KindStruct }

// Object returns the heap object behind a struct, array or future value.
func (v Value) Object() *Object {
	o, _ := v.Ref.(*Object)
	return o
}

func (v Value) Future() *Future {
	if o := v.Object(); o != nil {
		return o.Future
	}
	return nil
}

// Fields returns the slots of a struct or the elements of an array.
func (v Value) Fields() []Value {
	if o := v.Object(); o != nil {
		return o.Fields
	}
	return nil
}

func (v Value) Text() string {
	s, _ := v.Ref.(string)
	return s
}

// Zero returns the value a declared but uninitialized variable of type t holds.
func Zero(t types.SemType) Value {
	switch t := t.(type) {
	case *types.IntType:
		if t.Signed {
			return Int(0)
		}
		return Uint(0)
	case *types.FloatType:
		return Float(0)
	case *types.BoolType:
		return Bool(false)
	case *types.TextType:
		return Text("")
	}
	return Void
}

// String renders v the way друк prints it.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int(), 10)
	case KindUint:
		return strconv.FormatUint(v.Uint(), 10)
	case KindFloat:
		return FormatFloat(v.Float())
	case KindBool:
		if v.Bool() {
			return string(tokens.TRUE_TOKEN)
		}
		return string(tokens.FALSE_TOKEN)
	case KindText:
		return v.Text()
	case KindStruct:
		return formatStruct(v.Object())
	case KindArray:
		parts := make([]string, len(v.Fields()))
		for i, e := range v.Fields() {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindFuture:
		return "<future>"
	}
	return ""
}

// FormatFloat prints the shortest decimal that reads back as f.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatStruct(o *Object) string {
	if o == nil {
		return "<nil>"
	}
	var b strings.Builder
	if o.Type != nil {
		b.WriteString(o.Type.Name)
	}
	b.WriteString(" {")
	for i, f := range o.Fields {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(" ")
		if o.Type != nil && i < len(o.Type.Fields) {
			b.WriteString(o.Type.Fields[i].Name + ": ")
		}
		if f.Kind == KindStruct {
			b.WriteString("{..}")
			continue
		}
		b.WriteString(f.String())
	}
	b.WriteString(" }")
	return b.String()
}

// FromLiteral builds the constant a checked literal of type t denotes.
// Integer digits are read unsigned and wrapped, so the magnitude of the
// most negative value parses before negation.
func FromLiteral(text string, t types.SemType) (Value, error) {
	switch t := t.(type) {
	case *types.IntType:
		u, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return Void, err
		}
		if t.Signed {
			return Wrap(Int(int64(u)), t), nil
		}
		return Wrap(Uint(u), t), nil
	case *types.FloatType:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Void, err
		}
		return Wrap(Float(f), t), nil
	case *types.BoolType:
		return Bool(text == "true"), nil
	case *types.TextType:
		return Text(text), nil
	}
	return Void, fmt.Errorf("no literal of type %s", t)
}
