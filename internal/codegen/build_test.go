package codegen

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evge14n/tryzub/internal/codegen/cgen"
	"github.com/Evge14n/tryzub/internal/ir/gen"
	"github.com/Evge14n/tryzub/internal/ir/opt"
	"github.com/Evge14n/tryzub/internal/testutil"
)

func buildAndRun(t *testing.T, src string) (string, error) {
	t.Helper()
	opts := DefaultBuildOptions()
	if !HasCompiler(opts) {
		t.Skip("no C compiler available")
	}

	mod, err := gen.Build(testutil.MustCheck(t, src))
	require.NoError(t, err)
	opt.Module(mod, 1)
	csrc, err := cgen.Generate(mod)
	require.NoError(t, err)

	opts.OutputPath = filepath.Join(t.TempDir(), "prog")
	require.NoError(t, BuildExecutable(context.Background(), csrc, opts, testutil.NewTestLogger(t)))

	out, err := exec.Command(opts.OutputPath).CombinedOutput()
	return string(out), err
}

func TestNativeFib(t *testing.T) {
	out, err := buildAndRun(t, `функція фіб(n: цл64) -> цл64 {
    якщо n < 2 { повернути n }
    повернути фіб(n - 1) + фіб(n - 2)
}
функція головна() { друк(фіб(10), 1.5, істина, "так") }`)
	require.NoError(t, err)
	assert.Equal(t, "55 1.5 істина так\n", out)
}

func TestNativeFault(t *testing.T) {
	out, err := buildAndRun(t, `функція ділити(a: цл64, b: цл64) -> цл64 {
    повернути a / b
}
функція головна() {
    друк(ділити(1, 0))
}`)
	var exit *exec.ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.ExitCode())
	assert.Equal(t, "runtime fault [R0001]: division by zero\n    at ділити (line 2)\n    at головна (line 5)\n", out)
}

func TestBuildReportsToolchainFailure(t *testing.T) {
	opts := DefaultBuildOptions()
	if !HasCompiler(opts) {
		t.Skip("no C compiler available")
	}
	opts.OutputPath = filepath.Join(t.TempDir(), "prog")

	err := BuildExecutable(context.Background(), "this is not C", opts, nil)
	var tc *ToolchainError
	require.ErrorAs(t, err, &tc)
	assert.NotEmpty(t, tc.Output)
}

func TestBuildNeedsOutputPath(t *testing.T) {
	err := BuildExecutable(context.Background(), "", &BuildOptions{}, nil)
	assert.EqualError(t, err, "output path must be specified")
}
