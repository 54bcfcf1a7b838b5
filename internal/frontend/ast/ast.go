package ast

import (
	"github.com/Evge14n/tryzub/internal/source"
	"github.com/Evge14n/tryzub/internal/types"
)

// Node is the base interface for all AST nodes
type Node interface {
	INode()
	Loc() *source.Location
}

// Expression represents any node that produces a value. After checking every
// expression carries a resolved type.
type Expression interface {
	Node
	Expr()
	ExprType() types.SemType
	SetType(types.SemType)
}

// TypeNode represents a type written in source.
type TypeNode interface {
	Node
	TypeExpr()
}

// Statement represents any node that performs an action
type Statement interface {
	Node
	Stmt()
}

// Decl represents a top-level or local declaration
type Decl interface {
	Node
	Decl()
}

// Typed carries the type annotation filled in by the checker.
type Typed struct {
	Type types.SemType
}

func (t *Typed) ExprType() types.SemType {
	if t.Type == nil {
		return types.TypeUnknown
	}
	return t.Type
}

func (t *Typed) SetType(typ types.SemType) { t.Type = typ }

// Module is the root of one compilation unit.
type Module struct {
	FullPath string
	Nodes    []Node
	source.Location
}

func (m *Module) INode()                {}
func (m *Module) Loc() *source.Location { return &m.Location }

// Invalid stands in for a fragment the parser could not understand.
type Invalid struct {
	Typed
	source.Location
}

func (i *Invalid) INode()                {}
func (i *Invalid) Expr()                 {}
func (i *Invalid) Stmt()                 {}
func (i *Invalid) Loc() *source.Location { return &i.Location }
