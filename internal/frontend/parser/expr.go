package parser

import (
	"strings"

	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/frontend/ast"
	"github.com/Evge14n/tryzub/internal/source"
	"github.com/Evge14n/tryzub/internal/tokens"
)

type binaryOp struct {
	prec  int
	right bool
}

// binaryOps is the operator precedence table, higher binds tighter.
var binaryOps = map[tokens.TOKEN]binaryOp{
	tokens.OR_TOKEN:            {prec: 1},
	tokens.AND_TOKEN:           {prec: 2},
	tokens.DOUBLE_EQUAL_TOKEN:  {prec: 3},
	tokens.NOT_EQUAL_TOKEN:     {prec: 3},
	tokens.LESS_TOKEN:          {prec: 4},
	tokens.GREATER_TOKEN:       {prec: 4},
	tokens.LESS_EQUAL_TOKEN:    {prec: 4},
	tokens.GREATER_EQUAL_TOKEN: {prec: 4},
	tokens.PLUS_TOKEN:          {prec: 5},
	tokens.MINUS_TOKEN:         {prec: 5},
	tokens.MUL_TOKEN:           {prec: 6},
	tokens.DIV_TOKEN:           {prec: 6},
	tokens.MOD_TOKEN:           {prec: 6},
	tokens.EXP_TOKEN:           {prec: 7, right: true},
}

// Precedence returns the binding power of a binary operator, 0 if kind is not one.
func Precedence(kind tokens.TOKEN) int {
	return binaryOps[kind].prec
}

func (p *Parser) parseExpr() ast.Expression {
	return p.parseBinary(1)
}

// parseBinary is precedence climbing over binaryOps.
func (p *Parser) parseBinary(minPrec int) ast.Expression {
	left := p.parseUnary()
	for {
		op := p.peek()
		info, ok := binaryOps[op.Kind]
		if !ok || info.prec < minPrec {
			return left
		}
		p.advance()
		next := info.prec + 1
		if info.right {
			next = info.prec
		}
		right := p.parseBinary(next)
		left = &ast.BinaryExpr{
			X:        left,
			Op:       op,
			Y:        right,
			Location: source.Span(*left.Loc(), *right.Loc()),
		}
	}
}

func (p *Parser) parseUnary() ast.Expression {
	tok := p.peek()
	switch tok.Kind {
	case tokens.MINUS_TOKEN, tokens.NOT_TOKEN:
		p.advance()
		x := p.parseUnary()
		return &ast.UnaryExpr{Op: tok, X: x, Location: p.makeLocation(tok.Start)}
	case tokens.AWAIT_TOKEN:
		p.advance()
		x := p.parseUnary()
		return &ast.AwaitExpr{X: x, Location: p.makeLocation(tok.Start)}
	}
	return p.parsePostfix(p.parsePrimary())
}

// parsePostfix handles calls, field access, method calls and indexing, left to right.
func (p *Parser) parsePostfix(x ast.Expression) ast.Expression {
	for {
		start := x.Loc().Start
		switch p.peek().Kind {
		case tokens.OPEN_PAREN:
			paren := p.peek()
			args := p.parseArgs()
			fun, ok := x.(*ast.IdentifierExpr)
			if !ok {
				p.report(diagnostics.ErrInvalidExpression, paren, "only named functions can be called",
					"expression is not callable")
				x = &ast.Invalid{Location: p.makeLocation(start)}
				continue
			}
			x = &ast.CallExpr{Fun: fun, Args: args, Location: p.makeLocation(start)}
		case tokens.DOT_TOKEN:
			p.advance()
			name := p.parseIdentifier()
			if p.match(tokens.OPEN_PAREN) {
				args := p.parseArgs()
				x = &ast.MethodCall{X: x, Method: name, Args: args, Location: p.makeLocation(start)}
			} else {
				x = &ast.FieldAccess{X: x, Field: name, Index: -1, Location: p.makeLocation(start)}
			}
		case tokens.OPEN_BRACKET:
			p.advance()
			index := p.nested(p.parseExpr)
			p.expect(tokens.CLOSE_BRACKET)
			x = &ast.IndexExpr{X: x, Index: index, Location: p.makeLocation(start)}
		default:
			return x
		}
	}
}

// nested parses inside delimiters, where struct literals are unambiguous again.
func (p *Parser) nested(parse func() ast.Expression) ast.Expression {
	saved := p.noStructLit
	p.noStructLit = false
	defer func() { p.noStructLit = saved }()
	return parse()
}

func (p *Parser) parseArgs() []ast.Expression {
	p.expect(tokens.OPEN_PAREN)
	args := []ast.Expression{}
	for !p.match(tokens.CLOSE_PAREN, tokens.EOF_TOKEN) {
		args = append(args, p.nested(p.parseExpr))
		if !p.consume(tokens.COMMA_TOKEN) {
			break
		}
	}
	p.expect(tokens.CLOSE_PAREN)
	return args
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.peek()
	switch tok.Kind {
	case tokens.NUMBER_TOKEN:
		p.advance()
		return numberLiteral(tok, p.tokenLocation(tok))
	case tokens.STRING_TOKEN:
		p.advance()
		return &ast.Literal{Kind: ast.TextLiteral, Value: tok.Value, Location: p.tokenLocation(tok)}
	case tokens.TRUE_TOKEN, tokens.FALSE_TOKEN:
		p.advance()
		value := "false"
		if tok.Kind == tokens.TRUE_TOKEN {
			value = "true"
		}
		return &ast.Literal{Kind: ast.BoolLiteral, Value: value, Location: p.tokenLocation(tok)}
	case tokens.IDENTIFIER_TOKEN:
		if !p.noStructLit && p.structLitAhead() {
			return p.parseStructInit()
		}
		return p.parseIdentifier()
	case tokens.SELF_TOKEN:
		p.advance()
		return &ast.SelfExpr{Location: p.tokenLocation(tok)}
	case tokens.OPEN_PAREN:
		p.advance()
		x := p.nested(p.parseExpr)
		p.expect(tokens.CLOSE_PAREN)
		return x
	case tokens.OPEN_BRACKET:
		return p.parseArrayLit()
	case tokens.MATCH_TOKEN:
		return p.parseMatch()
	}

	p.report(diagnostics.ErrInvalidExpression, tok, "expected an expression",
		"expected expression, found %s", describe(tok))
	if !isBoundary(tok) {
		p.advance()
	}
	return p.invalidExpr(tok)
}

func numberLiteral(tok tokens.Token, loc source.Location) *ast.Literal {
	digits, suffix := tokens.SplitNumber(tok.Name())
	kind := ast.IntLiteral
	if strings.Contains(digits, ".") || strings.HasPrefix(suffix, "дрб") {
		kind = ast.FloatLiteral
	}
	return &ast.Literal{Kind: kind, Value: digits, Suffix: suffix, Location: loc}
}

// structLitAhead reports whether `Name {` opens a struct literal: the brace
// must be followed by `}` or by `field:`. `Name field:` is a literal whose
// brace is missing; parseStructInit reports it once.
func (p *Parser) structLitAhead() bool {
	if p.peekAt(1).Kind != tokens.OPEN_CURLY {
		return !p.fieldValue && p.peekAt(1).Kind == tokens.IDENTIFIER_TOKEN && p.peekAt(2).Kind == tokens.COLON_TOKEN
	}
	next := p.peekAt(2)
	if next.Kind == tokens.CLOSE_CURLY {
		return true
	}
	return next.Kind == tokens.IDENTIFIER_TOKEN && p.peekAt(3).Kind == tokens.COLON_TOKEN
}

// parseStructInit parses: Name { field: value, ... }
func (p *Parser) parseStructInit() *ast.StructInit {
	name := p.parseIdentifier()
	lit := &ast.StructInit{Name: name}
	p.expect(tokens.OPEN_CURLY)
	for p.match(tokens.IDENTIFIER_TOKEN) {
		field := p.parseIdentifier()
		p.expect(tokens.COLON_TOKEN)
		saved := p.fieldValue
		p.fieldValue = true
		value := p.nested(p.parseExpr)
		p.fieldValue = saved
		lit.Fields = append(lit.Fields, ast.FieldInit{Name: field, Value: value, Index: -1})
		p.consume(tokens.COMMA_TOKEN)
	}
	p.expect(tokens.CLOSE_CURLY)
	lit.Location = p.makeLocation(name.Start)
	return lit
}

func (p *Parser) parseArrayLit() *ast.ArrayLit {
	start := p.advance().Start
	lit := &ast.ArrayLit{Elems: []ast.Expression{}}
	for !p.match(tokens.CLOSE_BRACKET, tokens.EOF_TOKEN) {
		lit.Elems = append(lit.Elems, p.nested(p.parseExpr))
		if !p.consume(tokens.COMMA_TOKEN) {
			break
		}
	}
	p.expect(tokens.CLOSE_BRACKET)
	lit.Location = p.makeLocation(start)
	return lit
}

// parseMatch parses: зіставити subject { pattern => expr, ... } where a
// pattern is a literal or `_`.
func (p *Parser) parseMatch() *ast.MatchExpr {
	start := p.advance().Start
	m := &ast.MatchExpr{}
	m.Subject = p.header(p.parseExpr)

	p.expect(tokens.OPEN_CURLY)
	for !p.match(tokens.CLOSE_CURLY, tokens.EOF_TOKEN) {
		pos := p.current
		armStart := p.peek().Start
		var pattern ast.Expression
		if tok := p.peek(); tok.Kind == tokens.IDENTIFIER_TOKEN && tok.Value == "_" {
			p.advance()
		} else {
			pattern = p.parseUnary()
			if !isLiteralPattern(pattern) {
				p.report(diagnostics.ErrInvalidExpression, tok, "use a literal or '_'",
					"match patterns must be literals")
			}
		}
		p.expect(tokens.FAT_ARROW_TOKEN)
		body := p.nested(p.parseExpr)
		m.Arms = append(m.Arms, ast.MatchArm{Pattern: pattern, Body: body, Location: p.makeLocation(armStart)})
		if !p.consume(tokens.COMMA_TOKEN) && p.current == pos {
			break
		}
	}
	p.expect(tokens.CLOSE_CURLY)
	m.Location = p.makeLocation(start)
	return m
}

func isLiteralPattern(x ast.Expression) bool {
	switch e := x.(type) {
	case *ast.Literal:
		return true
	case *ast.UnaryExpr:
		lit, ok := e.X.(*ast.Literal)
		return ok && e.Op.Kind == tokens.MINUS_TOKEN && (lit.Kind == ast.IntLiteral || lit.Kind == ast.FloatLiteral)
	case *ast.Invalid:
		return true
	}
	return false
}
