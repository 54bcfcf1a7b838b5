package typechecker

import (
	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/frontend/ast"
	"github.com/Evge14n/tryzub/internal/semantics/symbols"
	"github.com/Evge14n/tryzub/internal/source"
	"github.com/Evge14n/tryzub/internal/types"
)

// collectStructs declares every struct before any field type is resolved so
// structs may refer to each other in any order.
func collectStructs(c *checkContext) {
	var decls []*ast.StructDecl
	for _, node := range c.prog.Module.Nodes {
		decl, ok := node.(*ast.StructDecl)
		if !ok || decl.Name.Name == "" {
			continue
		}
		if _, builtin := types.FromName(decl.Name.Name); builtin {
			c.errorf(diagnostics.ErrDuplicateDefinition, decl.Name.Location, "builtin type",
				"cannot redeclare builtin type '%s'", decl.Name.Name)
			continue
		}
		st := types.NewStruct(decl.Name.Name)
		sym := &symbols.Symbol{
			Name:     decl.Name.Name,
			Kind:     symbols.SymbolType,
			Type:     st,
			Location: decl.Name.Location,
		}
		if !c.declare(sym) {
			continue
		}
		decl.Type = st
		decls = append(decls, decl)
		c.prog.Structs = append(c.prog.Structs, st)
		c.prog.Methods[st] = make(map[string]*ast.FuncDecl)
	}

	for _, decl := range decls {
		seen := make(map[string]source.Location)
		for _, f := range decl.Fields {
			name := f.Name.Name
			if prev, dup := seen[name]; dup {
				c.errorf(diagnostics.ErrDuplicateDefinition, f.Name.Location, "duplicate field",
					"field '%s' is declared twice in '%s'", name, decl.Name.Name).
					WithSecondaryLabel(prev, "first declared here")
				continue
			}
			seen[name] = f.Name.Location
			decl.Type.Fields = append(decl.Type.Fields, types.Field{
				Name: name,
				Type: resolveType(c, f.Type),
			})
		}
	}
}

// collectFunctions declares function and method signatures.
func collectFunctions(c *checkContext) {
	for _, node := range c.prog.Module.Nodes {
		switch n := node.(type) {
		case *ast.FuncDecl:
			sym := declareFunc(c, n, symbols.SymbolFunction)
			if !c.declare(sym) {
				continue
			}
			registerFunc(c, n, sym)
			if n.Name.Name == EntryName {
				checkEntry(c, n)
			}
		case *ast.ImplDecl:
			collectImpl(c, n)
		}
	}
}

func collectImpl(c *checkContext, impl *ast.ImplDecl) {
	sym, ok := c.scope.Lookup(impl.Target.Name)
	if !ok || sym.Kind != symbols.SymbolType {
		if impl.Target.Name != "" {
			c.errorf(diagnostics.ErrUndefinedSymbol, impl.Target.Location, "no such struct",
				"cannot implement methods for undefined struct '%s'", impl.Target.Name)
		}
		return
	}
	st, ok := sym.Type.(*types.StructType)
	if !ok {
		return
	}
	methods := c.prog.Methods[st]
	for _, m := range impl.Methods {
		name := m.Name.Name
		if name == "" {
			continue
		}
		if prev, dup := methods[name]; dup {
			c.errorf(diagnostics.ErrDuplicateDefinition, m.Name.Location, "duplicate method",
				"method '%s' is already defined for '%s'", name, st.Name).
				WithSecondaryLabel(prev.Name.Location, "first defined here")
			continue
		}
		msym := declareFunc(c, m, symbols.SymbolMethod)
		msym.Receiver = st.Name
		m.Self = &symbols.Symbol{
			Name:    "це",
			Kind:    symbols.SymbolParameter,
			Type:    st,
			Mutable: true,
		}
		methods[name] = m
		registerFunc(c, m, msym)
	}
}

func declareFunc(c *checkContext, fn *ast.FuncDecl, kind symbols.SymbolKind) *symbols.Symbol {
	params := make([]types.SemType, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = resolveType(c, p.Type)
	}
	ret := resolveType(c, fn.ReturnType)
	return &symbols.Symbol{
		Name:     fn.Name.Name,
		Kind:     kind,
		Type:     types.FuncOf(params, ret, fn.Async),
		Location: fn.Name.Location,
	}
}

func registerFunc(c *checkContext, fn *ast.FuncDecl, sym *symbols.Symbol) {
	fn.Symbol = sym
	fn.Name.Symbol = sym
	c.prog.Funcs = append(c.prog.Funcs, fn)
	c.prog.decls[sym] = fn
}

// checkEntry validates the shape of головна: no parameters, returning nothing
// or an integer exit status. An async головна is driven by the scheduler.
func checkEntry(c *checkContext, fn *ast.FuncDecl) {
	c.prog.Entry = fn
	ft := fn.Symbol.Type.(*types.FunctionType)
	switch {
	case len(fn.Params) > 0:
		c.errorf(diagnostics.ErrInvalidEntry, fn.Name.Location, "entry function",
			"%s must not take parameters", EntryName)
	case !types.IsVoid(ft.Return) && !types.IsInteger(ft.Return) && !types.IsUnknown(ft.Return):
		c.errorf(diagnostics.ErrInvalidEntry, *fn.ReturnType.Loc(), "expected an integer or nothing",
			"%s must return an integer exit status or nothing, not %s", EntryName, ft.Return)
	}
}
