package gen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evge14n/tryzub/internal/ir"
	"github.com/Evge14n/tryzub/internal/testutil"
)

func build(t *testing.T, src string) *ir.Module {
	t.Helper()
	mod, err := Build(testutil.MustCheck(t, src))
	require.NoError(t, err)
	return mod
}

func TestBuildFib(t *testing.T) {
	mod := build(t, `функція фіб(n: цл64) -> цл64 {
    якщо n < 2 { повернути n }
    повернути фіб(n - 1) + фіб(n - 2)
}
функція головна() { друк(фіб(10)) }`)

	assert.Equal(t, "головна", mod.Entry)
	assert.Empty(t, mod.Init)
	fib := mod.Function("фіб")
	require.NotNil(t, fib)
	require.Len(t, fib.Params, 1)
	assert.Equal(t, "n", fib.Params[0].Name)

	text := ir.FormatModule(mod)
	assert.Contains(t, text, "fn фіб(")
	assert.Contains(t, text, "call фіб(")
	assert.Contains(t, text, "call_builtin друк(")
}

func TestEveryBlockIsTerminated(t *testing.T) {
	mod := build(t, `функція класифікувати(n: цл64) -> тхт {
    повернути зіставити n { 0 => "нуль", 1 => "один", _ => "багато" }
}
функція головна() {
    змінна сума = 0
    для (i від 10 до 0 через -1) {
        якщо i == 5 { переривати }
        сума += i
    }
    змінна xs = [1, 2, 3]
    для (x в xs) { якщо x == 2 && сума > 0 || хиба { продовжити } }
    поки сума > 0 { сума -= 1 }
    друк(класифікувати(сума))
}`)
	for _, fn := range mod.Functions {
		for _, b := range fn.Blocks {
			assert.NotNil(t, b.Term, "%s b%d", fn.Name, b.ID)
		}
	}
}

func TestStructInitEvaluatesInSourceOrder(t *testing.T) {
	mod := build(t, `структура Точка { x: цл64, y: цл64 }
функція головна() {
    змінна т = Точка { y: 2, x: 1 }
    друк(т.x)
}`)
	var ms *ir.MakeStruct
	for _, instr := range mod.Function("головна").Entry().Instrs {
		if m, ok := instr.(*ir.MakeStruct); ok {
			ms = m
		}
	}
	require.NotNil(t, ms)
	require.Len(t, ms.Fields, 2)
	// y is written first, so its value is defined before x's.
	assert.Greater(t, ms.Fields[0], ms.Fields[1])
}

func TestGlobalsGetInitFunction(t *testing.T) {
	mod := build(t, `змінна лічильник = 5
функція головна() { лічильник += 1 }`)

	assert.Equal(t, InitName, mod.Init)
	require.Len(t, mod.Globals, 1)
	assert.Equal(t, "лічильник", mod.Globals[0].Name)
	text := ir.FormatModule(mod)
	assert.Contains(t, text, "store_global @0")
	assert.Contains(t, text, "load_global")
}

func TestMethodsAreQualified(t *testing.T) {
	mod := build(t, `структура Точка { x: цл64 }
реалізація Точка {
    функція отримати() -> цл64 { повернути це.x }
}
функція головна() {
    змінна т = Точка { x: 1 }
    друк(т.отримати())
}`)

	m := mod.Function("Точка.отримати")
	require.NotNil(t, m)
	require.Len(t, m.Params, 1)
	assert.Equal(t, "це", m.Params[0].Name)
	assert.Contains(t, ir.FormatModule(mod), "call Точка.отримати(")
}

func TestUnsupportedConstructs(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		construct string
	}{
		{"async function", `асинхронний функція f() -> цл64 { повернути 1 }
функція головна() { }`, "async function 'f'"},
		{"parallel loop", `функція головна() {
    паралельно для (i від 0 до 4) { друк(i) }
}`, "parallel loop"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(testutil.MustCheck(t, tt.src))
			var unsupported *UnsupportedError
			require.True(t, errors.As(err, &unsupported), "got %v", err)
			assert.Equal(t, tt.construct, unsupported.Construct)
			assert.True(t, unsupported.Location.IsValid())
		})
	}
}
