package runtime

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evge14n/tryzub/internal/builtins"
)

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	_, err := CallBuiltin(&out, builtins.Print, []Value{Text("сума:"), Int(55), Bool(true), Float(1.5)})
	require.NoError(t, err)
	_, err = CallBuiltin(&out, builtins.Print, nil)
	require.NoError(t, err)
	assert.Equal(t, "сума: 55 істина 1.5\n\n", out.String())
}

func TestConversionBuiltins(t *testing.T) {
	v, err := CallBuiltin(nil, builtins.IntToText, []Value{Int(-12)})
	require.NoError(t, err)
	assert.Equal(t, "-12", v.Text())

	v, err = CallBuiltin(nil, builtins.FloatToText, []Value{Float(0.25)})
	require.NoError(t, err)
	assert.Equal(t, "0.25", v.Text())
}

func TestLength(t *testing.T) {
	assert.Equal(t, Int(6), Length(Text("привіт")))
	assert.Equal(t, Int(2), Length((*Heap)(nil).NewArray([]Value{Int(1), Int(2)})))
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "дані.txt")
	require.NoError(t, os.WriteFile(path, []byte("вміст"), 0o644))

	v, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "вміст", v.Text())

	_, err = ReadFile(filepath.Join(t.TempDir(), "немає"))
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadFileIsNotSynchronous(t *testing.T) {
	_, err := CallBuiltin(nil, builtins.ReadFile, []Value{Text("x")})
	assert.Error(t, err)
}
