package parser

import (
	"fmt"

	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/frontend/ast"
	"github.com/Evge14n/tryzub/internal/source"
	"github.com/Evge14n/tryzub/internal/tokens"
)

// Parser holds temporary state during parsing of a single file.
type Parser struct {
	tokens      []tokens.Token
	current     int
	diagnostics *diagnostics.DiagnosticBag
	filepath    string

	// panicking is set by the first report after a resync point and silences
	// further reports until the parser is back on a statement boundary.
	panicking bool
	// noStructLit is set while parsing if/while/for headers where `Name {`
	// opens the body rather than a struct literal.
	noStructLit bool
	// fieldValue is set while parsing a struct literal field value, where
	// `a b:` is the next field after a missing comma.
	fieldValue bool
	reported   int
}

// Parse builds a module from a token stream. It always returns a tree; parts it
// could not understand are replaced by ast.Invalid or dropped.
func Parse(toks []tokens.Token, filepath string, diag *diagnostics.DiagnosticBag) *ast.Module {
	if len(toks) == 0 || toks[len(toks)-1].Kind != tokens.EOF_TOKEN {
		end := source.Start()
		if len(toks) > 0 {
			end = toks[len(toks)-1].End
		}
		toks = append(toks, tokens.NewToken(tokens.EOF_TOKEN, "", end, end))
	}
	p := &Parser{
		tokens:      toks,
		diagnostics: diag,
		filepath:    filepath,
	}
	return p.parseModule()
}

func (p *Parser) parseModule() *ast.Module {
	start := p.peek().Start
	module := &ast.Module{
		FullPath: p.filepath,
		Nodes:    []ast.Node{},
	}

	for !p.isAtEnd() {
		pos := p.current
		if node := p.parseTopLevel(); node != nil {
			module.Nodes = append(module.Nodes, node)
		}
		if p.panicking {
			p.synchronizeTopLevel()
		}
		if p.current == pos {
			p.advance()
		}
	}
	module.Location = source.NewLocation(p.filepath, start, p.peek().End)
	return module
}

func (p *Parser) parseTopLevel() ast.Node {
	tok := p.peek()
	switch tok.Kind {
	case tokens.FUNCTION_TOKEN, tokens.ASYNC_TOKEN:
		return p.parseFuncDecl("")
	case tokens.STRUCT_TOKEN:
		return p.parseStructDecl()
	case tokens.IMPL_TOKEN:
		return p.parseImplDecl()
	case tokens.VAR_TOKEN, tokens.CONST_TOKEN:
		return p.parseVarDecl()
	case tokens.SEMICOLON_TOKEN:
		p.advance()
		return nil
	default:
		p.report(diagnostics.ErrInvalidDeclaration, tok, "not allowed at module level",
			"expected a declaration, found %s", describe(tok))
		return nil
	}
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == tokens.EOF_TOKEN
}

func (p *Parser) peek() tokens.Token {
	return p.tokens[p.current]
}

func (p *Parser) peekAt(offset int) tokens.Token {
	i := p.current + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) previous() tokens.Token {
	if p.current == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.current-1]
}

func (p *Parser) advance() tokens.Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.current++
	}
	return tok
}

func (p *Parser) match(kinds ...tokens.TOKEN) bool {
	kind := p.peek().Kind
	for _, k := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// consume advances past the current token if it has the given kind.
func (p *Parser) consume(kind tokens.TOKEN) bool {
	if p.match(kind) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of the given kind. When it is missing the error is
// reported and parsing carries on as if it had been there, so a deleted
// delimiter costs one diagnostic.
func (p *Parser) expect(kind tokens.TOKEN) tokens.Token {
	if p.match(kind) {
		return p.advance()
	}
	tok := p.peek()
	// Blocks left open at end of file after an earlier error are fallout of
	// that error's recovery.
	if !(kind == tokens.CLOSE_CURLY && tok.Kind == tokens.EOF_TOKEN && p.reported > 0) {
		p.report(diagnostics.ErrExpectedToken, tok, fmt.Sprintf("expected '%s'", kind),
			"expected '%s', found %s", kind, describe(tok))
	}
	end := p.previous().End
	return tokens.NewToken(kind, "", end, end)
}

// report adds an error unless the parser is still recovering from an earlier one.
func (p *Parser) report(code string, tok tokens.Token, label, format string, args ...any) {
	if p.panicking {
		return
	}
	p.panicking = true
	p.reported++
	p.diagnostics.Add(
		diagnostics.Errorf(code, format, args...).
			WithPrimaryLabel(tok.Location(p.filepath), label),
	)
}

// synchronize skips to the next statement boundary inside a block: a statement
// keyword, a `;` (consumed) or the `}` that may close the block.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		kind := p.peek().Kind
		if kind == tokens.SEMICOLON_TOKEN {
			p.advance()
			break
		}
		if kind == tokens.CLOSE_CURLY || tokens.IsStatementStart(kind) {
			break
		}
		p.advance()
	}
	p.panicking = false
}

// synchronizeTopLevel skips to the next declaration keyword outside any braces.
func (p *Parser) synchronizeTopLevel() {
	depth := 0
	for !p.isAtEnd() {
		kind := p.peek().Kind
		switch {
		case kind == tokens.OPEN_CURLY:
			depth++
		case kind == tokens.CLOSE_CURLY:
			if depth > 0 {
				depth--
			}
		case depth == 0 && isDeclStart(kind):
			p.panicking = false
			return
		}
		p.advance()
	}
	p.panicking = false
}

func isDeclStart(kind tokens.TOKEN) bool {
	switch kind {
	case tokens.FUNCTION_TOKEN, tokens.ASYNC_TOKEN, tokens.STRUCT_TOKEN,
		tokens.IMPL_TOKEN, tokens.VAR_TOKEN, tokens.CONST_TOKEN:
		return true
	}
	return false
}

// isBoundary reports whether tok ends the construct being parsed, so error
// paths leave it in place for the enclosing loop.
func isBoundary(tok tokens.Token) bool {
	switch tok.Kind {
	case tokens.EOF_TOKEN, tokens.CLOSE_CURLY, tokens.SEMICOLON_TOKEN:
		return true
	}
	return tokens.IsStatementStart(tok.Kind)
}

func describe(tok tokens.Token) string {
	switch tok.Kind {
	case tokens.EOF_TOKEN:
		return "end of file"
	case tokens.IDENTIFIER_TOKEN:
		return fmt.Sprintf("identifier '%s'", tok.Value)
	case tokens.NUMBER_TOKEN, tokens.STRING_TOKEN:
		return string(tok.Kind)
	}
	return fmt.Sprintf("'%s'", tok.Value)
}

// makeLocation creates a source location from start to the end of the last consumed token
func (p *Parser) makeLocation(start source.Position) source.Location {
	end := p.previous().End
	if end.Index < start.Index {
		end = start
	}
	return source.NewLocation(p.filepath, start, end)
}

func (p *Parser) tokenLocation(tok tokens.Token) source.Location {
	return tok.Location(p.filepath)
}

func (p *Parser) invalidExpr(tok tokens.Token) *ast.Invalid {
	return &ast.Invalid{Location: p.tokenLocation(tok)}
}

func (p *Parser) parseIdentifier() *ast.IdentifierExpr {
	tok := p.peek()
	if tok.Kind != tokens.IDENTIFIER_TOKEN {
		p.report(diagnostics.ErrMissingIdentifier, tok, "expected a name",
			"expected identifier, found %s", describe(tok))
		end := p.previous().End
		return &ast.IdentifierExpr{Location: source.NewLocation(p.filepath, end, end)}
	}
	p.advance()
	return &ast.IdentifierExpr{Name: tok.Name(), Location: p.tokenLocation(tok)}
}
