package ast

import (
	"github.com/Evge14n/tryzub/internal/semantics/symbols"
	"github.com/Evge14n/tryzub/internal/source"
	"github.com/Evge14n/tryzub/internal/types"
)

// Param is one typed function parameter.
type Param struct {
	Name   *IdentifierExpr
	Type   TypeNode
	Symbol *symbols.Symbol
}

// FuncDecl is a function or, inside an impl block, a method.
type FuncDecl struct {
	Name       *IdentifierExpr
	Params     []Param
	ReturnType TypeNode // nil means no value
	Body       *Block
	Async      bool
	Receiver   string // struct name for methods
	Symbol     *symbols.Symbol
	Self       *symbols.Symbol // implicit receiver binding for methods
	source.Location
}

func (f *FuncDecl) INode()                {}
func (f *FuncDecl) Decl()                 {}
func (f *FuncDecl) Loc() *source.Location { return &f.Location }

// QualifiedName is "Struct.method" for methods and the plain name otherwise.
func (f *FuncDecl) QualifiedName() string {
	if f.Receiver != "" {
		return f.Receiver + "." + f.Name.Name
	}
	return f.Name.Name
}

// FieldDecl is one struct member.
type FieldDecl struct {
	Name *IdentifierExpr
	Type TypeNode
}

type StructDecl struct {
	Name   *IdentifierExpr
	Fields []FieldDecl
	Type   *types.StructType
	source.Location
}

func (s *StructDecl) INode()                {}
func (s *StructDecl) Decl()                 {}
func (s *StructDecl) Loc() *source.Location { return &s.Location }

// ImplDecl attaches methods to a struct by name.
type ImplDecl struct {
	Target  *IdentifierExpr
	Methods []*FuncDecl
	source.Location
}

func (i *ImplDecl) INode()                {}
func (i *ImplDecl) Decl()                 {}
func (i *ImplDecl) Loc() *source.Location { return &i.Location }

// VarDecl declares a variable (`змінна`) or constant (`стала`).
type VarDecl struct {
	Name   *IdentifierExpr
	Type   TypeNode
	Value  Expression
	Const  bool
	Symbol *symbols.Symbol
	source.Location
}

func (v *VarDecl) INode()                {}
func (v *VarDecl) Decl()                 {}
func (v *VarDecl) Stmt()                 {}
func (v *VarDecl) Loc() *source.Location { return &v.Location }

// TypeName refers to a builtin or struct type.
type TypeName struct {
	Name string
	source.Location
}

func (t *TypeName) INode()                {}
func (t *TypeName) TypeExpr()             {}
func (t *TypeName) Loc() *source.Location { return &t.Location }

// ArrayTypeNode is `[elem]`.
type ArrayTypeNode struct {
	Elem TypeNode
	source.Location
}

func (a *ArrayTypeNode) INode()                {}
func (a *ArrayTypeNode) TypeExpr()             {}
func (a *ArrayTypeNode) Loc() *source.Location { return &a.Location }
