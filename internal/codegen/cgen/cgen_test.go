package cgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evge14n/tryzub/internal/ir/gen"
	"github.com/Evge14n/tryzub/internal/ir/opt"
	"github.com/Evge14n/tryzub/internal/testutil"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	mod, err := gen.Build(testutil.MustCheck(t, src))
	require.NoError(t, err)
	opt.Module(mod, 1)
	out, err := Generate(mod)
	require.NoError(t, err)
	return out
}

func TestGenerateFib(t *testing.T) {
	out := generate(t, `функція фіб(n: цл64) -> цл64 {
    якщо n < 2 { повернути n }
    повернути фіб(n - 1) + фіб(n - 2)
}
функція головна() { друк(фіб(10)) }`)

	assert.Contains(t, out, "static int64_t tz_f0(int64_t v1)")
	assert.Contains(t, out, "static void tz_f1(void)")
	assert.Contains(t, out, "tz_print_i64(")
	assert.Contains(t, out, "int main(void) {\n    tz_f1();\n    return 0;\n}")
	assert.Contains(t, out, `tz_enter("\321\204\321\226\320\261", 1);`)
}

func TestGenerateStructsAndGlobals(t *testing.T) {
	out := generate(t, `структура Точка { x: цл64, y: дрб64 }
змінна межа: чс32 = 7
функція головна() -> цл64 {
    змінна т = Точка { y: 2.5, x: 1 }
    т.x = 5
    повернути т.x
}`)

	assert.Contains(t, out, "struct tz_s0 {\n    int64_t f0;\n    double f1;\n};")
	assert.Contains(t, out, "static uint32_t tz_g0;")
	assert.Contains(t, out, "tz_alloc(sizeof(tz_s0))")
	assert.Contains(t, out, "return (int)tz_f")
}

func TestIntegerDivisionChecksZero(t *testing.T) {
	out := generate(t, `функція ділити(a: цл32, b: цл32) -> цл32 { повернути a / b % 3 }
функція головна() { друк(ділити(7, 2)) }`)

	assert.Contains(t, out, "(int32_t)tz_sdiv(")
	assert.Contains(t, out, "(int32_t)tz_smod(")
}

func TestNoEntry(t *testing.T) {
	mod, err := gen.Build(testutil.MustCheck(t, `функція f() { }`))
	require.NoError(t, err)
	_, err = Generate(mod)
	assert.Error(t, err)
}

func TestCString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abc", `"abc"`},
		{`a"b\c`, `"a\"b\\c"`},
		{"рядок\n", `"\321\200\321\217\320\264\320\276\320\272\012"`},
		{"??=", `"\077\077="`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cString(tt.in))
	}
}
