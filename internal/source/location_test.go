package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionAdvance(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Position
	}{
		{"ascii", "abc", Position{Line: 1, Column: 4, Index: 3}},
		{"cyrillic counts runes", "змінна", Position{Line: 1, Column: 7, Index: 12}},
		{"newline resets column", "ab\ncd", Position{Line: 2, Column: 3, Index: 5}},
		{"empty", "", Position{Line: 1, Column: 1, Index: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Start()
			p.Advance(tt.text)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestLocationText(t *testing.T) {
	src := []byte("змінна x = 42")
	start := Start()
	end := start
	end.Advance("змінна")

	loc := NewLocation("main.tz", start, end)
	assert.Equal(t, "змінна", loc.Text(src))
	assert.Equal(t, 0, loc.Offset())
	assert.Equal(t, 12, loc.Len())

	bad := NewLocation("main.tz", Position{Line: 1, Column: 1, Index: 5}, Position{Line: 1, Column: 1, Index: 500})
	assert.Equal(t, "", bad.Text(src))
}

func TestSpanAndContains(t *testing.T) {
	a := NewLocation("f", Position{1, 1, 0}, Position{1, 3, 2})
	b := NewLocation("f", Position{1, 5, 4}, Position{1, 8, 7})
	s := Span(a, b)

	assert.True(t, s.Contains(Position{1, 6, 5}))
	assert.False(t, s.Contains(Position{1, 8, 7}))
	assert.Equal(t, "f:1:1", s.String())
	assert.Equal(t, "location(unknown)", Location{}.String())
}

func TestGetSourceLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.tz")
	require.NoError(t, os.WriteFile(path, []byte("line1\r\nline2\nline3\n"), 0o644))

	lines, err := GetSourceLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"line1", "line2", "line3"}, lines)

	_, err = GetSourceLines(filepath.Join(dir, "missing.tz"))
	assert.Error(t, err)
}
