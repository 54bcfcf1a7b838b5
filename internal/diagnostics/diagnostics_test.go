package diagnostics

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evge14n/tryzub/internal/source"
)

func loc(line, col, index, length int) source.Location {
	start := source.Position{Line: line, Column: col, Index: index}
	end := source.Position{Line: line, Column: col + length, Index: index + length}
	return source.NewLocation("main.tz", start, end)
}

func TestBagCounts(t *testing.T) {
	bag := NewDiagnosticBag()
	bag.Add(NewError("boom").WithCode(ErrTypeMismatch))
	bag.Add(NewWarning("hmm"))
	bag.Add(NewInfo("fyi"))

	assert.True(t, bag.HasErrors())
	assert.Equal(t, 1, bag.ErrorCount())
	assert.Equal(t, 1, bag.WarningCount())
	assert.Len(t, bag.Diagnostics(), 3)
	assert.Len(t, bag.WithCode(ErrTypeMismatch), 1)

	bag.Clear()
	assert.False(t, bag.HasErrors())
	assert.Empty(t, bag.Diagnostics())
}

func TestSortedByPosition(t *testing.T) {
	bag := NewDiagnosticBag()
	bag.Add(NewError("second").WithPrimaryLabel(loc(2, 1, 10, 1), ""))
	bag.Add(NewError("first").WithPrimaryLabel(loc(1, 1, 0, 1), ""))

	sorted := bag.Sorted()
	require.Len(t, sorted, 2)
	assert.Equal(t, "first", sorted[0].Message)
}

func TestPrimaryLabelIsUnique(t *testing.T) {
	d := NewError("x").
		WithPrimaryLabel(loc(1, 1, 0, 1), "a").
		WithPrimaryLabel(loc(1, 3, 2, 1), "b").
		WithSecondaryLabel(loc(1, 5, 4, 1), "c")

	require.Len(t, d.Labels, 2)
	assert.Equal(t, "a", d.Primary().Message)
	assert.Equal(t, "main.tz", d.FilePath)
	assert.Panics(t, func() { NewError("y").WithSecondaryLabel(loc(1, 1, 0, 1), "") })
}

func TestErrorString(t *testing.T) {
	d := Errorf(ErrUndefinedSymbol, "undefined symbol '%s'", "х")
	assert.Equal(t, "error[T0002]: undefined symbol 'х'", d.Error())

	d.WithPrimaryLabel(loc(3, 5, 20, 1), "")
	assert.Equal(t, "main.tz:3:5: error[T0002]: undefined symbol 'х'", d.Error())
}

func TestEmitRendersSnippet(t *testing.T) {
	bag := NewDiagnosticBag()
	bag.AddSourceContent("main.tz", []byte("змінна а = 1 + \"б\"\n"))
	bag.Add(NewError("type mismatch").
		WithCode(ErrTypeMismatch).
		WithPrimaryLabel(loc(1, 12, 14, 7), "цл64 + тхт").
		WithHelp("convert one side"))

	out := bag.EmitAllToString()
	assert.Contains(t, out, "error[T0001]: type mismatch")
	assert.Contains(t, out, "--> main.tz:1:12")
	assert.Contains(t, out, "змінна а = 1 + \"б\"")
	assert.Contains(t, out, "~~~~~~~ цл64 + тхт")
	assert.Contains(t, out, "help: convert one side")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "Compilation failed with 1 error(s)"))
}

func TestEmitWithoutSummary(t *testing.T) {
	bag := NewDiagnosticBag()
	bag.Add(NewError("runtime fault: division by zero").WithCode("R0001").WithNote("at головна (line 2)"))

	var buf bytes.Buffer
	bag.Emit(&buf, false)
	out := buf.String()
	assert.Contains(t, out, "error[R0001]: runtime fault: division by zero")
	assert.Contains(t, out, "= note: at головна (line 2)")
	assert.NotContains(t, out, "Compilation failed")
}
