package parser

import (
	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/frontend/ast"
	"github.com/Evge14n/tryzub/internal/source"
	"github.com/Evge14n/tryzub/internal/tokens"
)

// parseType parses: name | [type]
func (p *Parser) parseType() ast.TypeNode {
	tok := p.peek()
	switch tok.Kind {
	case tokens.IDENTIFIER_TOKEN:
		p.advance()
		return &ast.TypeName{Name: tok.Name(), Location: p.tokenLocation(tok)}
	case tokens.OPEN_BRACKET:
		p.advance()
		elem := p.parseType()
		p.expect(tokens.CLOSE_BRACKET)
		return &ast.ArrayTypeNode{Elem: elem, Location: p.makeLocation(tok.Start)}
	default:
		p.report(diagnostics.ErrMissingType, tok, "expected a type",
			"expected type, found %s", describe(tok))
		end := p.previous().End
		return &ast.TypeName{Location: source.NewLocation(p.filepath, end, end)}
	}
}
