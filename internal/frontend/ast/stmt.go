package ast

import (
	"github.com/Evge14n/tryzub/internal/semantics/symbols"
	"github.com/Evge14n/tryzub/internal/source"
	"github.com/Evge14n/tryzub/internal/tokens"
)

// Block is a brace-delimited statement list with its own scope.
type Block struct {
	Nodes []Node
	source.Location
}

func (b *Block) INode()                {}
func (b *Block) Stmt()                 {}
func (b *Block) Loc() *source.Location { return &b.Location }

type ExprStmt struct {
	X Expression
	source.Location
}

func (e *ExprStmt) INode()                {}
func (e *ExprStmt) Stmt()                 {}
func (e *ExprStmt) Loc() *source.Location { return &e.Location }

// AssignStmt is `lhs = rhs` or a compound form such as `lhs += rhs`.
type AssignStmt struct {
	Lhs Expression
	Op  tokens.Token
	Rhs Expression
	source.Location
}

func (a *AssignStmt) INode()                {}
func (a *AssignStmt) Stmt()                 {}
func (a *AssignStmt) Loc() *source.Location { return &a.Location }

type IfStmt struct {
	Cond Expression
	Body *Block
	Else Node // *Block, *IfStmt or nil
	source.Location
}

func (i *IfStmt) INode()                {}
func (i *IfStmt) Stmt()                 {}
func (i *IfStmt) Loc() *source.Location { return &i.Location }

type WhileStmt struct {
	Cond Expression
	Body *Block
	source.Location
}

func (w *WhileStmt) INode()                {}
func (w *WhileStmt) Stmt()                 {}
func (w *WhileStmt) Loc() *source.Location { return &w.Location }

// ForRangeStmt binds Var to From, From+Step, ... up to To (exclusive unless
// Inclusive). Parallel loops run their iterations on the worker pool.
type ForRangeStmt struct {
	Var       *IdentifierExpr
	From      Expression
	To        Expression
	Step      Expression
	Inclusive bool
	Parallel  bool
	Symbol    *symbols.Symbol
	Body      *Block
	source.Location
}

func (f *ForRangeStmt) INode()                {}
func (f *ForRangeStmt) Stmt()                 {}
func (f *ForRangeStmt) Loc() *source.Location { return &f.Location }

// ForEachStmt iterates the elements of an array.
type ForEachStmt struct {
	Var      *IdentifierExpr
	Iterable Expression
	Symbol   *symbols.Symbol
	Body     *Block
	source.Location
}

func (f *ForEachStmt) INode()                {}
func (f *ForEachStmt) Stmt()                 {}
func (f *ForEachStmt) Loc() *source.Location { return &f.Location }

type ReturnStmt struct {
	Result Expression
	source.Location
}

func (r *ReturnStmt) INode()                {}
func (r *ReturnStmt) Stmt()                 {}
func (r *ReturnStmt) Loc() *source.Location { return &r.Location }

type BreakStmt struct {
	source.Location
}

func (b *BreakStmt) INode()                {}
func (b *BreakStmt) Stmt()                 {}
func (b *BreakStmt) Loc() *source.Location { return &b.Location }

type ContinueStmt struct {
	source.Location
}

func (c *ContinueStmt) INode()                {}
func (c *ContinueStmt) Stmt()                 {}
func (c *ContinueStmt) Loc() *source.Location { return &c.Location }
