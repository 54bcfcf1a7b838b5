package compiler

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evge14n/tryzub/internal/codegen"
	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/runtime"
	"github.com/Evge14n/tryzub/internal/testutil"
)

const fib = `функція фіб(n: цл64) -> цл64 {
    якщо n < 2 { повернути n }
    повернути фіб(n - 1) + фіб(n - 2)
}
функція головна() { друк(фіб(10)) }`

const async = `асинхронний функція подвоїти(x: цл64) -> цл64 { повернути x * 2 }
асинхронний функція головна() { друк(чекати подвоїти(21)) }`

func options(t *testing.T, src string, engine Engine) (Options, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return Options{
		File:     "main.tz",
		Source:   []byte(src),
		Engine:   engine,
		OptLevel: 1,
		Workers:  1,
		Stdout:   &out,
		Logger:   testutil.NewTestLogger(t),
	}, &out
}

func codes(r Result) []string {
	var out []string
	for _, d := range r.Diagnostics.Diagnostics() {
		out = append(out, d.Code)
	}
	return out
}

func TestRunFib(t *testing.T) {
	for _, engine := range []Engine{EngineVM, EngineJIT, EngineAuto} {
		t.Run(string(engine), func(t *testing.T) {
			opts, out := options(t, fib, engine)
			r := Run(context.Background(), opts)
			require.True(t, r.Success, r.Diagnostics.EmitAllToString())
			assert.Equal(t, "55\n", out.String())
			assert.Zero(t, r.ExitStatus)
		})
	}
}

func TestAutoEngineSelection(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Engine
		out  string
	}{
		{"sync program uses the jit", fib, EngineJIT, "55\n"},
		{"async program needs the vm", async, EngineVM, "42\n"},
		{"parallel loop needs the vm", `функція головна() {
    паралельно для (i від 0 до 3) { друк(i) }
}`, EngineVM, "0\n1\n2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, out := options(t, tt.src, EngineAuto)
			r := Run(context.Background(), opts)
			require.True(t, r.Success, r.Diagnostics.EmitAllToString())
			assert.Equal(t, tt.want, r.Engine)
			assert.Equal(t, tt.out, out.String())
		})
	}
}

func TestJITRejectsAsync(t *testing.T) {
	opts, out := options(t, async, EngineJIT)
	r := Run(context.Background(), opts)
	assert.False(t, r.Success)
	assert.NoError(t, r.Err)
	assert.Equal(t, []string{diagnostics.ErrUnsupportedConstruct}, codes(r))
	assert.Empty(t, out.String())
}

func TestChainedAssignment(t *testing.T) {
	src := `структура Т { x: цл64 }
змінна г = 0
функція головна() {
    змінна a = 1
    змінна b = 2
    a = b = 5
    друк(a, b)
    змінна т = Т { x: 0 }
    змінна xs = [0, 0]
    г = т.x = xs[1] = 7
    друк(г, т.x, xs[1])
    a = b += 3
    друк(a, b)
}`
	for _, engine := range []Engine{EngineVM, EngineJIT} {
		t.Run(string(engine), func(t *testing.T) {
			opts, out := options(t, src, engine)
			r := Run(context.Background(), opts)
			require.True(t, r.Success, r.Diagnostics.EmitAllToString())
			assert.Equal(t, "5 5\n7 7 7\n8 8\n", out.String())
		})
	}
}

func TestNameSpellingsAgree(t *testing.T) {
	// declared with и + combining breve, used with the precomposed й
	src := "функція головна() {\n    змінна мі\u0438\u0306 = 4\n    друк(мій + 1)\n}"
	for _, engine := range []Engine{EngineVM, EngineJIT} {
		t.Run(string(engine), func(t *testing.T) {
			opts, out := options(t, src, engine)
			r := Run(context.Background(), opts)
			require.True(t, r.Success, r.Diagnostics.EmitAllToString())
			assert.Equal(t, "5\n", out.String())
		})
	}
}

func TestExitStatus(t *testing.T) {
	for _, engine := range []Engine{EngineVM, EngineJIT} {
		t.Run(string(engine), func(t *testing.T) {
			opts, _ := options(t, `функція головна() -> цл32 { повернути 7 }`, engine)
			r := Run(context.Background(), opts)
			require.True(t, r.Success)
			assert.Equal(t, 7, r.ExitStatus)
		})
	}
}

func TestRuntimeFault(t *testing.T) {
	src := `функція ділити(a: цл64, b: цл64) -> цл64 {
    повернути a / b
}
функція головна() {
    друк(ділити(1, 0))
}`
	for _, engine := range []Engine{EngineVM, EngineJIT} {
		t.Run(string(engine), func(t *testing.T) {
			opts, _ := options(t, src, engine)
			r := Run(context.Background(), opts)
			assert.False(t, r.Success)
			assert.Equal(t, 1, r.ExitStatus)
			require.NotNil(t, r.Fault)
			assert.Equal(t, runtime.FaultDivisionByZero, r.Fault.Kind)
			assert.Equal(t, []runtime.TraceFrame{{Function: "ділити", Line: 2}, {Function: "головна", Line: 5}}, r.Fault.Trace)

			diags := r.Diagnostics.WithCode(runtime.FaultDivisionByZero.Code())
			require.Len(t, diags, 1)
			require.Len(t, diags[0].Notes, 2)
			assert.Equal(t, "at ділити (line 2)", diags[0].Notes[0].Message)
		})
	}
}

func TestVMCallDepth(t *testing.T) {
	opts, _ := options(t, `функція вниз(n: цл64) -> цл64 { повернути вниз(n + 1) }
функція головна() { друк(вниз(0)) }`, EngineVM)
	opts.MaxCallDepth = 32
	r := Run(context.Background(), opts)
	require.NotNil(t, r.Fault)
	assert.Equal(t, runtime.FaultStackOverflow, r.Fault.Kind)
	assert.Len(t, r.Fault.Trace, 32)
}

func TestCancelledRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, engine := range []Engine{EngineVM, EngineJIT} {
		t.Run(string(engine), func(t *testing.T) {
			opts, _ := options(t, `функція головна() { поки істина { } }`, engine)
			r := Run(ctx, opts)
			assert.False(t, r.Success)
			assert.ErrorIs(t, r.Err, context.Canceled)
			assert.Nil(t, r.Fault)
		})
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		ok    bool
		codes []string
	}{
		{"valid", fib, true, nil},
		{"type mismatch", `функція головна() { змінна x = 1 + "a" }`, false, []string{diagnostics.ErrTypeMismatch}},
		{"await outside async", `асинхронний функція один() -> цл64 { повернути 1 }
функція головна() { якщо істина { друк(чекати один()) } }`, false, []string{diagnostics.ErrAwaitOutsideAsync}},
		{"library without entry", `функція один() -> цл64 { повернути 1 }`, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, _ := options(t, tt.src, EngineAuto)
			r := Check(context.Background(), opts)
			assert.Equal(t, tt.ok, r.Success)
			assert.NoError(t, r.Err)
			for _, code := range tt.codes {
				assert.Contains(t, codes(r), code)
			}
		})
	}
}

func TestRunNeedsEntry(t *testing.T) {
	opts, _ := options(t, `функція один() -> цл64 { повернути 1 }`, EngineAuto)
	r := Run(context.Background(), opts)
	assert.False(t, r.Success)
	assert.Equal(t, []string{diagnostics.ErrInvalidEntry}, codes(r))
}

func TestMissingFile(t *testing.T) {
	r := Run(context.Background(), Options{File: filepath.Join(t.TempDir(), "absent.tz")})
	assert.False(t, r.Success)
	assert.ErrorIs(t, r.Err, os.ErrNotExist)
	assert.Nil(t, r.Diagnostics)

	r = Check(context.Background(), Options{})
	assert.Error(t, r.Err)
}

func TestRunFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fib.tz")
	require.NoError(t, os.WriteFile(path, []byte(fib), 0644))
	var out bytes.Buffer
	r := Run(context.Background(), Options{File: path, Stdout: &out})
	require.True(t, r.Success)
	assert.Equal(t, "55\n", out.String())
}

func TestOutputPath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		opts Options
		want string
	}{
		{Options{File: "/src/prog.tz"}, "/src/prog"},
		{Options{File: "/src/prog.tz", Output: "/bin/x"}, "/bin/x"},
		{Options{File: "prog.tz"}, filepath.Join(wd, "prog")},
		{Options{Source: []byte("")}, filepath.Join(wd, "a.out")},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.OutputPath())
		})
	}
}

func TestBuild(t *testing.T) {
	if !codegen.HasCompiler(codegen.DefaultBuildOptions()) {
		t.Skip("no C compiler available")
	}
	opts, _ := options(t, fib, EngineAuto)
	opts.Output = filepath.Join(t.TempDir(), "fib")
	r := Build(context.Background(), opts)
	require.True(t, r.Success, r.Diagnostics.EmitAllToString())

	out, err := exec.Command(opts.Output).CombinedOutput()
	require.NoError(t, err)
	assert.Equal(t, "55\n", string(out))
}

func TestBuildRejectsAsync(t *testing.T) {
	opts, _ := options(t, async, EngineAuto)
	opts.Output = filepath.Join(t.TempDir(), "async")
	r := Build(context.Background(), opts)
	assert.False(t, r.Success)
	assert.Equal(t, []string{diagnostics.ErrUnsupportedConstruct}, codes(r))
	assert.NoFileExists(t, opts.Output)
}

func TestBuildToolchainFailure(t *testing.T) {
	opts, _ := options(t, fib, EngineAuto)
	opts.Output = filepath.Join(t.TempDir(), "fib")
	opts.CC = filepath.Join(t.TempDir(), "no-such-cc")
	r := Build(context.Background(), opts)
	assert.False(t, r.Success)
	assert.Equal(t, []string{diagnostics.ErrToolchain}, codes(r))
}
