// Package gen lowers a checked program into IR.
package gen

import (
	"fmt"

	"github.com/Evge14n/tryzub/internal/builtins"
	"github.com/Evge14n/tryzub/internal/frontend/ast"
	"github.com/Evge14n/tryzub/internal/ir"
	"github.com/Evge14n/tryzub/internal/semantics/symbols"
	"github.com/Evge14n/tryzub/internal/semantics/typechecker"
	"github.com/Evge14n/tryzub/internal/source"
	"github.com/Evge14n/tryzub/internal/types"
)

// InitName is the synthetic function that initializes globals.
const InitName = "__init"

// UnsupportedError reports a construct the IR back ends cannot express.
// Async functions, await and parallel loops need the scheduler and worker
// pool, which only the VM carries.
type UnsupportedError struct {
	Construct string
	Location  source.Location
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: %s is not supported by this back end", e.Location, e.Construct)
}

// Generator lowers a checked program into IR.
type Generator struct {
	prog    *typechecker.Program
	globals map[*symbols.Symbol]int
}

// Build lowers prog. It fails with an *UnsupportedError when prog uses a
// construct only the VM can run.
func Build(prog *typechecker.Program) (*ir.Module, error) {
	if err := checkSupported(prog); err != nil {
		return nil, err
	}

	g := &Generator{
		prog:    prog,
		globals: make(map[*symbols.Symbol]int, len(prog.Globals)),
	}

	mod := &ir.Module{
		Name:    prog.Module.FullPath,
		Structs: prog.Structs,
	}
	for i, decl := range prog.Globals {
		g.globals[decl.Symbol] = i
		mod.Globals = append(mod.Globals, ir.Global{
			Name:     decl.Name.Name,
			Type:     decl.Symbol.Type,
			Location: decl.Location,
		})
	}
	if len(prog.Globals) > 0 {
		mod.Functions = append(mod.Functions, g.lowerInit())
		mod.Init = InitName
	}
	for _, decl := range prog.Funcs {
		mod.Functions = append(mod.Functions, g.lowerFuncDecl(decl))
	}
	if prog.Entry != nil {
		mod.Entry = prog.Entry.QualifiedName()
	}
	return mod, nil
}

func (g *Generator) lowerInit() *ir.Function {
	fn := &ir.Function{
		Name:     InitName,
		Return:   types.TypeVoid,
		Location: g.prog.Module.Location,
	}
	b := newFunctionBuilder(g, fn)
	b.setBlock(b.newBlock("entry", fn.Location))
	for i, decl := range g.prog.Globals {
		var v ir.ValueID
		if decl.Value != nil {
			v = b.lowerExpr(decl.Value)
		} else {
			v = b.emitZero(decl.Symbol.Type, decl.Location)
		}
		b.emit(&ir.StoreGlobal{Global: i, Value: v, Location: decl.Location})
	}
	b.finalizeCurrent()
	return fn
}

func (g *Generator) lowerFuncDecl(decl *ast.FuncDecl) *ir.Function {
	fn := &ir.Function{
		Name:     decl.QualifiedName(),
		Return:   decl.Symbol.Type.(*types.FunctionType).Return,
		Location: decl.Location,
	}
	b := newFunctionBuilder(g, fn)
	entry := b.newBlock("entry", decl.Location)
	b.setBlock(entry)

	if decl.Self != nil {
		b.bindParam(decl.Self, "це", decl.Location)
	}
	for _, p := range decl.Params {
		b.bindParam(p.Symbol, p.Name.Name, p.Name.Location)
	}

	b.lowerBlock(decl.Body)
	b.finalizeCurrent()
	return fn
}

// checkSupported finds the first construct that needs the async runtime.
func checkSupported(prog *typechecker.Program) error {
	var err error
	visit := func(n ast.Node) bool {
		if err != nil {
			return false
		}
		switch n := n.(type) {
		case *ast.FuncDecl:
			if n.Async {
				err = &UnsupportedError{Construct: "async function '" + n.QualifiedName() + "'", Location: n.Name.Location}
			}
		case *ast.AwaitExpr:
			err = &UnsupportedError{Construct: "await", Location: n.Location}
		case *ast.ForRangeStmt:
			if n.Parallel {
				err = &UnsupportedError{Construct: "parallel loop", Location: n.Location}
			}
		case *ast.CallExpr:
			if n.Target != nil && n.Target.Builtin {
				if b, ok := builtins.Lookup(n.Target.Name); ok && b.Async {
					err = &UnsupportedError{Construct: "async builtin '" + b.Name + "'", Location: n.Location}
				}
			}
		}
		return err == nil
	}
	ast.Inspect(prog.Module, visit)
	return err
}
