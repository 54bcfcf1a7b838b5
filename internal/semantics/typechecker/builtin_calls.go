package typechecker

import (
	"fmt"

	"github.com/Evge14n/tryzub/internal/builtins"
	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/frontend/ast"
	"github.com/Evge14n/tryzub/internal/semantics/symbols"
	"github.com/Evge14n/tryzub/internal/types"
)

// checkBuiltinCall validates a call to a runtime-provided function.
func checkBuiltinCall(c *checkContext, call *ast.CallExpr, sym *symbols.Symbol) types.SemType {
	b, ok := builtins.Lookup(sym.Name)
	if !ok {
		checkArgsLoosely(c, call.Args)
		return types.TypeUnknown
	}
	if b.Params != nil {
		checkArgs(c, b.Name, call.Args, b.Params, call.Location)
		return b.Result()
	}

	if b.Arity >= 0 && len(call.Args) != b.Arity {
		c.errorf(diagnostics.ErrWrongArgumentCount, call.Location, fmt.Sprintf("expected %d", b.Arity),
			"'%s' expects %d argument(s), got %d", b.Name, b.Arity, len(call.Args))
		checkArgsLoosely(c, call.Args)
		return b.Result()
	}
	argTypes := make([]types.SemType, len(call.Args))
	for i, arg := range call.Args {
		argTypes[i] = checkExpr(c, arg, nil)
	}
	if msg := b.Accepts(argTypes); msg != "" {
		c.errorf(diagnostics.ErrTypeMismatch, call.Location, "invalid arguments",
			"'%s' %s", b.Name, msg)
	}
	return b.Result()
}
