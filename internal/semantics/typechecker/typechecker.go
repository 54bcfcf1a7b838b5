package typechecker

import (
	"fmt"

	"github.com/Evge14n/tryzub/internal/builtins"
	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/frontend/ast"
	"github.com/Evge14n/tryzub/internal/semantics/symbols"
	"github.com/Evge14n/tryzub/internal/semantics/table"
	"github.com/Evge14n/tryzub/internal/source"
	"github.com/Evge14n/tryzub/internal/types"
)

// EntryName is the function a program starts in.
const EntryName = "головна"

// Program is a checked module: the annotated tree plus everything the back
// ends need to find declarations without walking it again.
type Program struct {
	Module *ast.Module
	Scope  *table.SymbolTable
	// Globals are the module-level variables in initialization order.
	Globals []*ast.VarDecl
	// Funcs holds functions and methods in declaration order.
	Funcs   []*ast.FuncDecl
	Structs []*types.StructType
	Methods map[*types.StructType]map[string]*ast.FuncDecl
	// Entry is nil when the module has no головна.
	Entry *ast.FuncDecl

	decls map[*symbols.Symbol]*ast.FuncDecl
}

// Func returns the declaration bound to a function or method symbol.
func (p *Program) Func(sym *symbols.Symbol) *ast.FuncDecl {
	return p.decls[sym]
}

// Method returns the method name of st, or nil.
func (p *Program) Method(st *types.StructType, name string) *ast.FuncDecl {
	return p.Methods[st][name]
}

// checkContext carries the state of one Check call.
type checkContext struct {
	diag  *diagnostics.DiagnosticBag
	prog  *Program
	scope *table.SymbolTable

	fn     *ast.FuncDecl
	fnType *types.FunctionType
	loops  int

	// parallel is the body scope of the innermost parallel loop; parallelLoops
	// is the loop depth just inside it.
	parallel      *table.SymbolTable
	parallelLoops int

	used map[*symbols.Symbol]bool
}

// Check resolves names and types in mod. Diagnostics go to diag; the returned
// program is only fit for code generation when diag has no errors.
func Check(mod *ast.Module, diag *diagnostics.DiagnosticBag) *Program {
	universe := table.NewSymbolTable(nil)
	builtins.Declare(universe)

	prog := &Program{
		Module:  mod,
		Scope:   table.NewSymbolTable(universe),
		Methods: make(map[*types.StructType]map[string]*ast.FuncDecl),
		decls:   make(map[*symbols.Symbol]*ast.FuncDecl),
	}
	c := &checkContext{
		diag:  diag,
		prog:  prog,
		scope: prog.Scope,
		used:  make(map[*symbols.Symbol]bool),
	}

	collectStructs(c)
	collectFunctions(c)
	checkGlobals(c)
	for _, fn := range prog.Funcs {
		checkFuncBody(c, fn)
	}

	if !diag.HasErrors() {
		validateTypes(c)
	}
	return prog
}

func (c *checkContext) errorf(code string, loc source.Location, label, format string, args ...any) *diagnostics.Diagnostic {
	d := diagnostics.Errorf(code, format, args...).WithPrimaryLabel(loc, label)
	c.diag.Add(d)
	return d
}

func (c *checkContext) warnf(code string, loc source.Location, label, format string, args ...any) {
	c.diag.Add(diagnostics.NewWarning(fmt.Sprintf(format, args...)).
		WithCode(code).
		WithPrimaryLabel(loc, label))
}

// declare binds sym in the current scope, reporting a duplicate.
func (c *checkContext) declare(sym *symbols.Symbol) bool {
	if sym.Name == "" {
		return false
	}
	if err := c.scope.Declare(sym.Name, sym); err != nil {
		prev, _ := c.scope.GetSymbol(sym.Name)
		d := c.errorf(diagnostics.ErrDuplicateDefinition, sym.Location, "redeclared here",
			"'%s' is already declared in this scope", sym.Name)
		if prev != nil && prev.Location.IsValid() {
			d.WithSecondaryLabel(prev.Location, "first declared here")
		}
		return false
	}
	return true
}

// enterScope opens a child scope and returns the function restoring the parent.
func (c *checkContext) enterScope() func() {
	parent := c.scope
	c.scope = table.NewSymbolTable(parent)
	return func() {
		reportUnused(c, c.scope)
		c.scope = parent
	}
}

func reportUnused(c *checkContext, scope *table.SymbolTable) {
	for _, sym := range scope.Symbols() {
		if sym.Kind != symbols.SymbolVariable || c.used[sym] || sym.Name == "" || sym.Name[0] == '_' {
			continue
		}
		c.warnf(diagnostics.WarnUnusedVariable, sym.Location, "declared but never used",
			"unused variable '%s'", sym.Name)
	}
}

// resolveType turns a written type into a semantic one.
func resolveType(c *checkContext, node ast.TypeNode) types.SemType {
	switch n := node.(type) {
	case nil:
		return types.TypeVoid
	case *ast.TypeName:
		if n.Name == "" {
			return types.TypeUnknown
		}
		if t, ok := types.FromName(n.Name); ok {
			return t
		}
		sym, ok := c.scope.Lookup(n.Name)
		if !ok {
			c.errorf(diagnostics.ErrUndefinedSymbol, n.Location, "unknown type",
				"undefined type '%s'", n.Name)
			return types.TypeUnknown
		}
		if sym.Kind != symbols.SymbolType {
			c.errorf(diagnostics.ErrInvalidType, n.Location, "not a type",
				"'%s' is a %s, not a type", n.Name, sym.Kind)
			return types.TypeUnknown
		}
		return sym.Type
	case *ast.ArrayTypeNode:
		return types.ArrayOf(resolveType(c, n.Elem))
	}
	return types.TypeUnknown
}
