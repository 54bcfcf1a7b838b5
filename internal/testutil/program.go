package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/frontend/lexer"
	"github.com/Evge14n/tryzub/internal/frontend/parser"
	"github.com/Evge14n/tryzub/internal/semantics/typechecker"
)

// MustCheck runs the front end over src and fails the test on any error.
func MustCheck(t testing.TB, src string) *typechecker.Program {
	t.Helper()
	const file = "test.tz"
	bag := diagnostics.NewDiagnosticBag()
	bag.AddSourceContent(file, []byte(src))

	toks, lexDiags := lexer.Tokenize(file, []byte(src), lexer.Options{})
	for _, d := range lexDiags {
		bag.Add(d)
	}
	mod := parser.Parse(toks, file, bag)
	prog := typechecker.Check(mod, bag)
	require.False(t, bag.HasErrors(), bag.EmitAllToString())
	return prog
}
