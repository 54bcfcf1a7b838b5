package ast

import (
	"github.com/Evge14n/tryzub/internal/semantics/symbols"
	"github.com/Evge14n/tryzub/internal/source"
	"github.com/Evge14n/tryzub/internal/tokens"
	"github.com/Evge14n/tryzub/internal/types"
)

type LiteralKind int

const (
	IntLiteral LiteralKind = iota
	FloatLiteral
	BoolLiteral
	TextLiteral
)

// Literal is a constant written in source. Suffix is the numeric type suffix,
// empty when the literal is untyped.
type Literal struct {
	Kind   LiteralKind
	Value  string
	Suffix string
	Typed
	source.Location
}

func (l *Literal) INode()                {}
func (l *Literal) Expr()                 {}
func (l *Literal) Loc() *source.Location { return &l.Location }

// IdentifierExpr represents an identifier
type IdentifierExpr struct {
	Name   string
	Symbol *symbols.Symbol
	Typed
	source.Location
}

func (i *IdentifierExpr) INode()                {}
func (i *IdentifierExpr) Expr()                 {}
func (i *IdentifierExpr) Loc() *source.Location { return &i.Location }

// SelfExpr is the receiver `це` inside a method.
type SelfExpr struct {
	Symbol *symbols.Symbol
	Typed
	source.Location
}

func (s *SelfExpr) INode()                {}
func (s *SelfExpr) Expr()                 {}
func (s *SelfExpr) Loc() *source.Location { return &s.Location }

type BinaryExpr struct {
	X  Expression
	Op tokens.Token
	Y  Expression
	Typed
	source.Location
}

func (b *BinaryExpr) INode()                {}
func (b *BinaryExpr) Expr()                 {}
func (b *BinaryExpr) Loc() *source.Location { return &b.Location }

// AssignExpr is an assignment used as the value of another assignment, as in
// the inner half of `a = b = 5`. Its value is the one stored in Lhs.
type AssignExpr struct {
	Lhs Expression
	Op  tokens.Token
	Rhs Expression
	Typed
	source.Location
}

func (a *AssignExpr) INode()                {}
func (a *AssignExpr) Expr()                 {}
func (a *AssignExpr) Loc() *source.Location { return &a.Location }

type UnaryExpr struct {
	Op tokens.Token
	X  Expression
	Typed
	source.Location
}

func (u *UnaryExpr) INode()                {}
func (u *UnaryExpr) Expr()                 {}
func (u *UnaryExpr) Loc() *source.Location { return &u.Location }

// CallExpr calls a named function or builtin. A call spelled with a numeric
// type name, such as цл32(x), is a conversion and has Convert set instead of
// Target.
type CallExpr struct {
	Fun     *IdentifierExpr
	Args    []Expression
	Target  *symbols.Symbol
	Convert types.SemType
	Typed
	source.Location
}

func (c *CallExpr) INode()                {}
func (c *CallExpr) Expr()                 {}
func (c *CallExpr) Loc() *source.Location { return &c.Location }

// FieldAccess reads X.Field. Index is the field position once resolved.
type FieldAccess struct {
	X     Expression
	Field *IdentifierExpr
	Index int
	Typed
	source.Location
}

func (f *FieldAccess) INode()                {}
func (f *FieldAccess) Expr()                 {}
func (f *FieldAccess) Loc() *source.Location { return &f.Location }

// MethodCall is X.Method(Args), dispatched statically on X's struct type.
type MethodCall struct {
	X      Expression
	Method *IdentifierExpr
	Args   []Expression
	Target *symbols.Symbol
	Typed
	source.Location
}

func (m *MethodCall) INode()                {}
func (m *MethodCall) Expr()                 {}
func (m *MethodCall) Loc() *source.Location { return &m.Location }

// FieldInit is one `name: value` pair of a struct literal.
type FieldInit struct {
	Name  *IdentifierExpr
	Value Expression
	Index int
}

type StructInit struct {
	Name   *IdentifierExpr
	Fields []FieldInit
	Typed
	source.Location
}

func (s *StructInit) INode()                {}
func (s *StructInit) Expr()                 {}
func (s *StructInit) Loc() *source.Location { return &s.Location }

type AwaitExpr struct {
	X Expression
	Typed
	source.Location
}

func (a *AwaitExpr) INode()                {}
func (a *AwaitExpr) Expr()                 {}
func (a *AwaitExpr) Loc() *source.Location { return &a.Location }

// MatchArm pairs a literal pattern with a result; a nil Pattern is `_`.
type MatchArm struct {
	Pattern Expression
	Body    Expression
	source.Location
}

type MatchExpr struct {
	Subject Expression
	Arms    []MatchArm
	Typed
	source.Location
}

func (m *MatchExpr) INode()                {}
func (m *MatchExpr) Expr()                 {}
func (m *MatchExpr) Loc() *source.Location { return &m.Location }

// HasDefault reports whether a `_` arm exists.
func (m *MatchExpr) HasDefault() bool {
	for _, arm := range m.Arms {
		if arm.Pattern == nil {
			return true
		}
	}
	return false
}

type ArrayLit struct {
	Elems []Expression
	Typed
	source.Location
}

func (a *ArrayLit) INode()                {}
func (a *ArrayLit) Expr()                 {}
func (a *ArrayLit) Loc() *source.Location { return &a.Location }

type IndexExpr struct {
	X     Expression
	Index Expression
	Typed
	source.Location
}

func (i *IndexExpr) INode()                {}
func (i *IndexExpr) Expr()                 {}
func (i *IndexExpr) Loc() *source.Location { return &i.Location }
