package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastPart(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"prog.tz", "prog"},
		{"dir/prog.tz", "prog"},
		{`dir\sub\програма.tz`, "програма"},
		{"/abs/dir/", "dir"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, LastPart(tt.path))
		})
	}
}

func TestFileAndDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.tz")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	assert.True(t, IsValidFile(file))
	assert.False(t, IsValidFile(dir))
	assert.True(t, IsDir(dir))
	assert.False(t, IsDir(file))
	assert.False(t, IsValidFile(filepath.Join(dir, "missing")))
}
