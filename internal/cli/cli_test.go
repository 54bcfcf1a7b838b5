package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hello = `функція головна() { друк("привіт") }`

// workspace moves the test into an empty directory so no tryzub.yaml or
// TRYZUB_ variable leaks in, and writes src there as main.tz.
func workspace(t *testing.T, src string) string {
	t.Helper()
	for _, env := range []string{"ENGINE", "MAX_CALL_DEPTH", "WORKERS", "OPT_LEVEL", "COLOR", "VERBOSE", "CC"} {
		t.Setenv("TRYZUB_"+env, "")
		require.NoError(t, os.Unsetenv("TRYZUB_"+env))
	}
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "main.tz")
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(append([]string{"--color", "never"}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRunCommand(t *testing.T) {
	path := workspace(t, hello)
	for _, engine := range []string{"auto", "vm", "jit"} {
		t.Run(engine, func(t *testing.T) {
			out, _, err := execute(t, "run", "--engine", engine, path)
			require.NoError(t, err)
			assert.Equal(t, "привіт\n", out)
		})
	}
}

func TestRunExitStatus(t *testing.T) {
	path := workspace(t, `функція головна() -> цл32 { повернути 3 }`)
	_, _, err := execute(t, "run", path)
	var exit *ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 3, exit.Code)
}

func TestRunReportsDiagnostics(t *testing.T) {
	path := workspace(t, `функція головна() { змінна x: цл64 = "a" }`)
	_, stderr, err := execute(t, "run", path)
	var exit *ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.Code)
	assert.Contains(t, stderr, "T0001")
}

func TestRunRejectsBadEngine(t *testing.T) {
	path := workspace(t, hello)
	_, _, err := execute(t, "run", "--engine", "gpu", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine")
}

func TestRunMissingFile(t *testing.T) {
	workspace(t, hello)
	_, _, err := execute(t, "run", "absent.tz")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigFileEngine(t *testing.T) {
	path := workspace(t, `асинхронний функція один() -> цл64 { повернути 1 }
асинхронний функція головна() { друк(чекати один()) }`)
	require.NoError(t, os.WriteFile("tryzub.yaml", []byte("engine: jit\n"), 0644))

	_, stderr, err := execute(t, "run", path)
	require.Error(t, err)
	assert.Contains(t, stderr, "G0001")

	out, _, err := execute(t, "run", "--engine", "vm", path)
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestCheckCommand(t *testing.T) {
	path := workspace(t, `структура Точка { x: цл64 }
функція один() -> цл64 { повернути 1 }
функція головна() { друк(один()) }`)
	out, _, err := execute(t, "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok (2 functions, 1 struct)")
}

func TestTokensCommand(t *testing.T) {
	path := workspace(t, hello)
	out, _, err := execute(t, "tokens", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Kind")
	assert.Contains(t, out, `"привіт"`)
	assert.Contains(t, out, `"головна"`)
}

func TestIRCommand(t *testing.T) {
	path := workspace(t, hello)
	out, _, err := execute(t, "ir", path)
	require.NoError(t, err)
	assert.Contains(t, out, "головна")
}

func TestIRCommandRejectsAsync(t *testing.T) {
	path := workspace(t, `асинхронний функція головна() { }`)
	_, stderr, err := execute(t, "ir", path)
	require.Error(t, err)
	assert.Contains(t, stderr, "G0001")
}

func TestBytecodeCommand(t *testing.T) {
	path := workspace(t, hello)
	out, _, err := execute(t, "bytecode", path)
	require.NoError(t, err)
	assert.Contains(t, out, "головна")
}

func TestVersionCommand(t *testing.T) {
	workspace(t, hello)
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "tryzub v"+Version)
}

func TestVerboseLogsPhases(t *testing.T) {
	path := workspace(t, hello)
	_, stderr, err := execute(t, "check", "--verbose", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "phase")
}

// syncBuffer is written by the watcher goroutine and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchCheck(t *testing.T) {
	path := workspace(t, hello)
	var out, errOut syncBuffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	ctx, cancel := context.WithCancel(context.Background())
	cmd.SetContext(ctx)

	done := make(chan error, 1)
	go func() { done <- watchCheck(ctx, cmd, path) }()

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("ok (1 function, 0 structs)"))
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(`функція головна() { змінна x: цл64 = "a" }`), 0644))
	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(errOut.String()), []byte("T0001"))
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
