package typechecker

import (
	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/frontend/ast"
	"github.com/Evge14n/tryzub/internal/types"
)

// validateTypes runs after a clean check and reports any expression whose
// type is still unresolved. Such an expression is a checker bug.
func validateTypes(c *checkContext) {
	ast.Inspect(c.prog.Module, func(n ast.Node) bool {
		e, ok := n.(ast.Expression)
		if !ok {
			return true
		}
		if _, invalid := n.(*ast.Invalid); invalid {
			return true
		}
		if types.ContainsUnknown(e.ExprType()) {
			c.errorf(diagnostics.ErrUnresolvedType, *e.Loc(), "unresolved type",
				"internal error: could not resolve the type of this expression")
		}
		return true
	})
}
