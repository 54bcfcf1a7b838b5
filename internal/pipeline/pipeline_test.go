package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/frontend/lexer"
	"github.com/Evge14n/tryzub/internal/phase"
	"github.com/Evge14n/tryzub/internal/testutil"
)

const fib = `функція фіб(n: цл64) -> цл64 {
    якщо n < 2 { повернути n }
    повернути фіб(n - 1) + фіб(n - 2)
}
функція головна() { друк(фіб(10)) }`

func newPipeline(t *testing.T) *Pipeline {
	return New(Options{OptLevel: 1, Logger: testutil.NewTestLogger(t)})
}

func TestPipelineBasic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.tz")
	require.NoError(t, os.WriteFile(path, []byte(fib), 0644))

	u, err := Load(path)
	require.NoError(t, err)

	p := newPipeline(t)
	require.NoError(t, p.Front(u))
	assert.Equal(t, phase.Checked, u.Stage)
	assert.NotEmpty(t, u.Tokens)
	require.NotNil(t, u.Program)
	require.NotNil(t, u.Program.Entry)

	require.NoError(t, p.Lower(u))
	assert.Equal(t, phase.Optimized, u.Stage)
	assert.NotNil(t, u.IR.Function("фіб"))

	src, err := p.C(u)
	require.NoError(t, err)
	assert.Contains(t, src, "int main(void)")
	assert.Equal(t, phase.Generated, u.Stage)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.tz"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCheckSkippedAfterSyntaxErrors(t *testing.T) {
	u := NewUnit("bad.tz", []byte("функція головна( { }"))
	p := newPipeline(t)
	err := p.Front(u)
	require.ErrorIs(t, err, ErrFailed)
	assert.Equal(t, phase.Parsed, u.Stage)
	assert.Nil(t, u.Program)
	assert.True(t, u.HasErrors())
}

func TestTypeErrorsFailCheck(t *testing.T) {
	u := NewUnit("bad.tz", []byte(`функція головна() { змінна x = 1 + "a" }`))
	err := newPipeline(t).Front(u)
	require.ErrorIs(t, err, ErrFailed)
	assert.NotEmpty(t, u.Diagnostics.WithCode(diagnostics.ErrTypeMismatch))
}

func TestStagesRunInOrder(t *testing.T) {
	u := NewUnit("main.tz", []byte(fib))
	p := newPipeline(t)
	require.Error(t, p.Lower(u), "lowering needs a checked unit")
	_, err := p.Bytecode(u)
	require.Error(t, err)
	assert.Equal(t, phase.NotStarted, u.Stage)

	require.NoError(t, p.Front(u))
	require.Error(t, p.Front(u), "a unit is lexed once")
}

func TestUnsupportedFallsBackToBytecode(t *testing.T) {
	src := `асинхронний функція один() -> цл64 { повернути 1 }
асинхронний функція головна() { друк(чекати один()) }`
	u := NewUnit("async.tz", []byte(src))
	p := newPipeline(t)
	require.NoError(t, p.Front(u))

	lowerErr := p.Lower(u)
	require.Error(t, lowerErr)
	assert.Equal(t, phase.Checked, u.Stage)

	mod, err := p.Bytecode(u)
	require.NoError(t, err)
	_, _, ok := mod.Function("один")
	assert.True(t, ok)

	assert.True(t, ReportUnsupported(u, lowerErr))
	assert.Len(t, u.Diagnostics.WithCode(diagnostics.ErrUnsupportedConstruct), 1)
	assert.False(t, ReportUnsupported(u, ErrFailed))
}

func TestCaseInsensitiveKeywords(t *testing.T) {
	src := []byte(`ФУНКЦІЯ головна() { друк(1) }`)
	strict := NewUnit("main.tz", src)
	require.Error(t, newPipeline(t).Front(strict))

	folded := NewUnit("main.tz", src)
	p := New(Options{Lexer: lexer.Options{CaseInsensitiveKeywords: true}})
	require.NoError(t, p.Front(folded))
}

func TestOptLevelZeroKeepsIR(t *testing.T) {
	src := []byte(`функція головна() -> цл64 { повернути 2 + 3 }`)
	u := NewUnit("main.tz", src)
	p := New(Options{OptLevel: 0})
	require.NoError(t, p.Front(u))
	require.NoError(t, p.Lower(u))
	assert.Zero(t, u.Stats.Folded)

	folded := NewUnit("main.tz", src)
	p = New(Options{OptLevel: 1})
	require.NoError(t, p.Front(folded))
	require.NoError(t, p.Lower(folded))
	assert.Positive(t, folded.Stats.Folded)
}
