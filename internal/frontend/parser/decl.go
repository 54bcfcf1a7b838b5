package parser

import (
	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/frontend/ast"
	"github.com/Evge14n/tryzub/internal/tokens"
)

// parseFuncDecl parses: асинхронний? функція name(params) (-> type)? { ... }
func (p *Parser) parseFuncDecl(receiver string) *ast.FuncDecl {
	start := p.peek().Start
	async := p.consume(tokens.ASYNC_TOKEN)
	p.expect(tokens.FUNCTION_TOKEN)
	name := p.parseIdentifier()

	p.expect(tokens.OPEN_PAREN)
	params := p.parseParams()
	p.expect(tokens.CLOSE_PAREN)

	var ret ast.TypeNode
	if p.consume(tokens.ARROW_TOKEN) {
		ret = p.parseType()
	}
	body := p.parseBlock()

	return &ast.FuncDecl{
		Name:       name,
		Params:     params,
		ReturnType: ret,
		Body:       body,
		Async:      async,
		Receiver:   receiver,
		Location:   p.makeLocation(start),
	}
}

func (p *Parser) parseParams() []ast.Param {
	params := []ast.Param{}
	for !p.match(tokens.CLOSE_PAREN, tokens.EOF_TOKEN) {
		name := p.parseIdentifier()
		p.expect(tokens.COLON_TOKEN)
		typ := p.parseType()
		params = append(params, ast.Param{Name: name, Type: typ})
		if !p.consume(tokens.COMMA_TOKEN) {
			break
		}
	}
	return params
}

// parseStructDecl parses: структура Name { field: type, ... }
func (p *Parser) parseStructDecl() *ast.StructDecl {
	start := p.advance().Start
	name := p.parseIdentifier()
	decl := &ast.StructDecl{Name: name}

	p.expect(tokens.OPEN_CURLY)
	for p.match(tokens.IDENTIFIER_TOKEN) {
		field := p.parseIdentifier()
		p.expect(tokens.COLON_TOKEN)
		typ := p.parseType()
		decl.Fields = append(decl.Fields, ast.FieldDecl{Name: field, Type: typ})
		p.consume(tokens.COMMA_TOKEN)
	}
	p.expect(tokens.CLOSE_CURLY)

	decl.Location = p.makeLocation(start)
	return decl
}

// parseImplDecl parses: реалізація Name { функція ... }
func (p *Parser) parseImplDecl() *ast.ImplDecl {
	start := p.advance().Start
	target := p.parseIdentifier()
	decl := &ast.ImplDecl{Target: target}

	p.expect(tokens.OPEN_CURLY)
	for !p.match(tokens.CLOSE_CURLY, tokens.EOF_TOKEN) {
		if !p.match(tokens.FUNCTION_TOKEN, tokens.ASYNC_TOKEN) {
			tok := p.peek()
			if isDeclStart(tok.Kind) {
				break
			}
			p.report(diagnostics.ErrInvalidDeclaration, tok, "only methods may appear here",
				"expected a method, found %s", describe(tok))
			p.skipToMethod()
			continue
		}
		decl.Methods = append(decl.Methods, p.parseFuncDecl(target.Name))
	}
	p.expect(tokens.CLOSE_CURLY)

	decl.Location = p.makeLocation(start)
	return decl
}

func (p *Parser) skipToMethod() {
	for !p.match(tokens.FUNCTION_TOKEN, tokens.ASYNC_TOKEN, tokens.CLOSE_CURLY, tokens.EOF_TOKEN) {
		p.advance()
	}
	p.panicking = false
}

// parseVarDecl parses: (змінна|стала) name (: type)? (= expr)?
func (p *Parser) parseVarDecl() *ast.VarDecl {
	kw := p.advance()
	decl := &ast.VarDecl{Const: kw.Kind == tokens.CONST_TOKEN}
	decl.Name = p.parseIdentifier()

	if p.consume(tokens.COLON_TOKEN) {
		decl.Type = p.parseType()
	}
	if p.consume(tokens.EQUALS_TOKEN) {
		decl.Value = p.parseExpr()
	} else if decl.Type == nil {
		tok := p.peek()
		p.report(diagnostics.ErrMissingType, tok, "add a type or an initial value",
			"declaration of '%s' needs a type or a value", decl.Name.Name)
	}

	decl.Location = p.makeLocation(kw.Start)
	return decl
}
