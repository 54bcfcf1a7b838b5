package parser

import (
	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/frontend/ast"
	"github.com/Evge14n/tryzub/internal/tokens"
)

func (p *Parser) parseBlock() *ast.Block {
	start := p.peek().Start
	if p.consume(tokens.OPEN_CURLY) {
		p.panicking = false
	} else {
		p.expect(tokens.OPEN_CURLY)
	}

	block := &ast.Block{Nodes: []ast.Node{}}
	for !p.match(tokens.CLOSE_CURLY, tokens.EOF_TOKEN) {
		// A declaration keyword means this block was never closed.
		if kind := p.peek().Kind; kind != tokens.VAR_TOKEN && kind != tokens.CONST_TOKEN && isDeclStart(kind) {
			break
		}
		pos := p.current
		if node := p.parseStmt(); node != nil {
			block.Nodes = append(block.Nodes, node)
		}
		if p.panicking {
			p.synchronize()
		}
		if p.current == pos {
			p.advance()
		}
	}
	p.expect(tokens.CLOSE_CURLY)

	block.Location = p.makeLocation(start)
	return block
}

func (p *Parser) parseStmt() ast.Node {
	switch p.peek().Kind {
	case tokens.VAR_TOKEN, tokens.CONST_TOKEN:
		return p.parseVarDecl()
	case tokens.IF_TOKEN:
		return p.parseIfStmt()
	case tokens.WHILE_TOKEN:
		return p.parseWhileStmt()
	case tokens.FOR_TOKEN:
		return p.parseForStmt(false)
	case tokens.PARALLEL_TOKEN:
		return p.parseForStmt(true)
	case tokens.RETURN_TOKEN:
		return p.parseReturnStmt()
	case tokens.BREAK_TOKEN:
		tok := p.advance()
		return &ast.BreakStmt{Location: p.tokenLocation(tok)}
	case tokens.CONTINUE_TOKEN:
		tok := p.advance()
		return &ast.ContinueStmt{Location: p.tokenLocation(tok)}
	case tokens.OPEN_CURLY:
		return p.parseBlock()
	case tokens.SEMICOLON_TOKEN:
		p.advance()
		return nil
	default:
		return p.parseExprOrAssign()
	}
}

// header parses an expression where a struct literal would be ambiguous with the body.
func (p *Parser) header(parse func() ast.Expression) ast.Expression {
	saved := p.noStructLit
	p.noStructLit = true
	defer func() { p.noStructLit = saved }()
	return parse()
}

// parseIfStmt parses: якщо cond { } (інакше (якщо ... | { }))?
func (p *Parser) parseIfStmt() *ast.IfStmt {
	start := p.advance().Start
	stmt := &ast.IfStmt{}
	stmt.Cond = p.header(p.parseExpr)
	stmt.Body = p.parseBlock()

	if p.consume(tokens.ELSE_TOKEN) {
		if p.match(tokens.IF_TOKEN) {
			stmt.Else = p.parseIfStmt()
		} else {
			stmt.Else = p.parseBlock()
		}
	}
	stmt.Location = p.makeLocation(start)
	return stmt
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	start := p.advance().Start
	cond := p.header(p.parseExpr)
	body := p.parseBlock()
	return &ast.WhileStmt{Cond: cond, Body: body, Location: p.makeLocation(start)}
}

// parseForStmt parses both loop forms:
//
//	для (i від a до b через s) { }   // range, `по` makes the end inclusive
//	для (x в items) { }              // for-each
//
// A leading `паралельно` is only valid on the range form.
func (p *Parser) parseForStmt(parallel bool) ast.Node {
	start := p.advance().Start
	if parallel {
		p.expect(tokens.FOR_TOKEN)
	}

	saved := p.noStructLit
	p.noStructLit = true
	p.expect(tokens.OPEN_PAREN)
	name := p.parseIdentifier()

	if p.match(tokens.IN_TOKEN) {
		in := p.advance()
		if parallel {
			p.report(diagnostics.ErrUnexpectedToken, in, "use a range here",
				"parallel loops must iterate over a range")
		}
		iterable := p.parseExpr()
		p.expect(tokens.CLOSE_PAREN)
		p.noStructLit = saved
		body := p.parseBlock()
		return &ast.ForEachStmt{Var: name, Iterable: iterable, Body: body, Location: p.makeLocation(start)}
	}

	stmt := &ast.ForRangeStmt{Var: name, Parallel: parallel}
	p.expect(tokens.FROM_TOKEN)
	stmt.From = p.parseExpr()
	switch {
	case p.consume(tokens.THROUGH_TOKEN):
		stmt.Inclusive = true
	case p.consume(tokens.UNTIL_TOKEN):
	default:
		tok := p.peek()
		p.report(diagnostics.ErrExpectedToken, tok, "expected 'до' or 'по'",
			"expected range end, found %s", describe(tok))
	}
	stmt.To = p.parseExpr()
	if p.consume(tokens.STEP_TOKEN) {
		stmt.Step = p.parseExpr()
	}
	p.expect(tokens.CLOSE_PAREN)
	p.noStructLit = saved

	stmt.Body = p.parseBlock()
	stmt.Location = p.makeLocation(start)
	return stmt
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	tok := p.advance()
	stmt := &ast.ReturnStmt{}
	if !isBoundary(p.peek()) {
		stmt.Result = p.parseExpr()
	}
	stmt.Location = p.makeLocation(tok.Start)
	return stmt
}

var assignOps = map[tokens.TOKEN]bool{
	tokens.EQUALS_TOKEN:       true,
	tokens.PLUS_EQUALS_TOKEN:  true,
	tokens.MINUS_EQUALS_TOKEN: true,
	tokens.MUL_EQUALS_TOKEN:   true,
	tokens.DIV_EQUALS_TOKEN:   true,
}

// parseExprOrAssign parses an expression statement or an assignment to it.
func (p *Parser) parseExprOrAssign() ast.Node {
	start := p.peek().Start
	x := p.parseExpr()
	if !assignOps[p.peek().Kind] {
		return &ast.ExprStmt{X: x, Location: p.makeLocation(start)}
	}

	op := p.assignOp(x)
	rhs := p.parseAssign()
	return &ast.AssignStmt{Lhs: x, Op: op, Rhs: rhs, Location: p.makeLocation(start)}
}

// parseAssign parses the value side of an assignment. Assignment binds
// loosest and to the right, so `a = b = 5` stores 5 in b and then in a.
func (p *Parser) parseAssign() ast.Expression {
	start := p.peek().Start
	x := p.parseExpr()
	if !assignOps[p.peek().Kind] {
		return x
	}
	op := p.assignOp(x)
	rhs := p.parseAssign()
	return &ast.AssignExpr{Lhs: x, Op: op, Rhs: rhs, Location: p.makeLocation(start)}
}

// assignOp consumes the assignment operator after target.
func (p *Parser) assignOp(target ast.Expression) tokens.Token {
	op := p.advance()
	switch target.(type) {
	case *ast.IdentifierExpr, *ast.FieldAccess, *ast.IndexExpr, *ast.Invalid:
	default:
		p.report(diagnostics.ErrInvalidExpression, op, "left side is not assignable",
			"cannot assign to this expression")
	}
	return op
}
