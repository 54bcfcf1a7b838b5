package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evge14n/tryzub/internal/tokens"
	"github.com/Evge14n/tryzub/internal/types"
)

func TestBinaryWrapsToWidth(t *testing.T) {
	tests := []struct {
		name string
		op   tokens.TOKEN
		typ  types.SemType
		a, b Value
		want Value
	}{
		{"i8 overflow", tokens.PLUS_TOKEN, types.TypeI8, Int(127), Int(1), Int(-128)},
		{"i16 mul", tokens.MUL_TOKEN, types.TypeI16, Int(300), Int(300), Int(24464)},
		{"i32 underflow", tokens.MINUS_TOKEN, types.TypeI32, Int(-2147483648), Int(1), Int(2147483647)},
		{"u8 overflow", tokens.PLUS_TOKEN, types.TypeU8, Uint(255), Uint(1), Uint(0)},
		{"u32 underflow", tokens.MINUS_TOKEN, types.TypeU32, Uint(0), Uint(1), Uint(4294967295)},
		{"u64 division", tokens.DIV_TOKEN, types.TypeU64, Uint(1 << 63), Uint(2), Uint(1 << 62)},
		{"i64 modulo", tokens.MOD_TOKEN, types.TypeI64, Int(-7), Int(3), Int(-1)},
		{"power", tokens.EXP_TOKEN, types.TypeI64, Int(3), Int(4), Int(81)},
		{"negative power", tokens.EXP_TOKEN, types.TypeI64, Int(2), Int(-1), Int(0)},
		{"negative power of minus one", tokens.EXP_TOKEN, types.TypeI64, Int(-1), Int(-3), Int(-1)},
		{"f32 rounding", tokens.PLUS_TOKEN, types.TypeF32, Float(0.1), Float(0.2), Float(float64(float32(0.1 + 0.2)))},
		{"float power", tokens.EXP_TOKEN, types.TypeF64, Float(2), Float(0.5), Float(1.4142135623730951)},
		{"text concat", tokens.PLUS_TOKEN, types.TypeText, Text("при"), Text("віт"), Text("привіт")},
		{"text order", tokens.LESS_TOKEN, types.TypeText, Text("а"), Text("б"), Bool(true)},
		{"unsigned compare", tokens.GREATER_TOKEN, types.TypeU64, Uint(1 << 63), Uint(1), Bool(true)},
		{"signed compare", tokens.GREATER_TOKEN, types.TypeI64, Int(-1), Int(1), Bool(false)},
		{"float equality", tokens.DOUBLE_EQUAL_TOKEN, types.TypeF64, Float(1.5), Float(1.5), Bool(true)},
		{"bool and", tokens.AND_TOKEN, types.TypeBool, Bool(true), Bool(false), Bool(false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Binary(tt.op, tt.typ, tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDivisionByZero(t *testing.T) {
	for _, op := range []tokens.TOKEN{tokens.DIV_TOKEN, tokens.MOD_TOKEN} {
		_, err := Binary(op, types.TypeI32, Int(1), Int(0))
		assert.ErrorIs(t, err, ErrDivisionByZero)
		_, err = Binary(op, types.TypeU8, Uint(1), Uint(0))
		assert.ErrorIs(t, err, ErrDivisionByZero)
	}
	_, err := Binary(tokens.EXP_TOKEN, types.TypeI64, Int(0), Int(-1))
	assert.ErrorIs(t, err, ErrDivisionByZero)

	got, err := Binary(tokens.DIV_TOKEN, types.TypeF64, Float(1), Float(0))
	require.NoError(t, err)
	assert.Equal(t, "inf", got.String())
}

func TestUnary(t *testing.T) {
	got, err := Unary(tokens.MINUS_TOKEN, types.TypeI8, Int(-128))
	require.NoError(t, err)
	assert.Equal(t, Int(-128), got)

	got, err = Unary(tokens.NOT_TOKEN, types.TypeBool, Bool(false))
	require.NoError(t, err)
	assert.Equal(t, Bool(true), got)

	_, err = Unary(tokens.NOT_TOKEN, types.TypeI64, Int(1))
	assert.Error(t, err)
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		to   types.SemType
		want Value
	}{
		{"widen", Int(-5), types.TypeI64, Int(-5)},
		{"narrow", Int(300), types.TypeI8, Int(44)},
		{"signed to unsigned", Int(-1), types.TypeU16, Uint(65535)},
		{"unsigned to signed", Uint(255), types.TypeI8, Int(-1)},
		{"float truncates", Float(-3.9), types.TypeI32, Int(-3)},
		{"float saturates", Float(1e30), types.TypeI64, Int(9223372036854775807)},
		{"int to float", Int(7), types.TypeF64, Float(7)},
		{"unsigned to float", Uint(1 << 63), types.TypeF64, Float(9223372036854775808)},
		{"narrow float", Float(0.1), types.TypeF32, Float(float64(float32(0.1)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Convert(tt.v, tt.to))
		})
	}
}

func TestInRange(t *testing.T) {
	tests := []struct {
		name      string
		i, to     Value
		step      Value
		inclusive bool
		want      bool
	}{
		{"ascending", Int(0), Int(3), Int(1), false, true},
		{"exclusive end", Int(3), Int(3), Int(1), false, false},
		{"inclusive end", Int(3), Int(3), Int(1), true, true},
		{"descending", Int(3), Int(0), Int(-1), false, true},
		{"descending end", Int(0), Int(0), Int(-1), false, false},
		{"wrong direction", Int(0), Int(3), Int(-1), false, false},
		{"zero step", Int(0), Int(3), Int(0), true, false},
		{"unsigned", Uint(1 << 63), Uint(1<<63 + 1), Uint(1), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InRange(tt.i, tt.to, tt.step, tt.inclusive))
		})
	}
}

func TestIndex(t *testing.T) {
	arr := (*Heap)(nil).NewArray([]Value{Int(1), Int(2)})
	i, err := Index(arr, Int(1))
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = Index(arr, Int(2))
	assert.ErrorIs(t, err, ErrIndexOutOfBounds)
	_, err = Index(arr, Int(-1))
	assert.ErrorIs(t, err, ErrIndexOutOfBounds)
	_, err = Index(Void, Int(0))
	assert.ErrorIs(t, err, ErrNilReference)
}

func TestValueString(t *testing.T) {
	st := types.NewStruct("Точка")
	st.Fields = []types.Field{{Name: "x", Type: types.TypeI64}, {Name: "y", Type: types.TypeI64}}
	var h *Heap

	tests := []struct {
		v    Value
		want string
	}{
		{Int(-42), "-42"},
		{Uint(1 << 63), "9223372036854775808"},
		{Float(2), "2"},
		{Float(0.1 + 0.2), "0.30000000000000004"},
		{Bool(true), "істина"},
		{Bool(false), "хиба"},
		{Text("рядок"), "рядок"},
		{h.NewArray([]Value{Int(1), Int(2)}), "[1, 2]"},
		{h.NewStruct(st, []Value{Int(1), Int(2)}), "Точка { x: 1, y: 2 }"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.v.String())
	}
}
