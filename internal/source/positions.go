package source

import "unicode/utf8"

// Position is a point in a source file. Index is a byte offset; Line and Column
// are 1-based, Column counting runes.
type Position struct {
	Line   int
	Column int
	Index  int
}

// Start returns the position of the first byte of a file.
func Start() Position {
	return Position{Line: 1, Column: 1, Index: 0}
}

// Advance moves the position over text, which must be the bytes that follow it.
func (p *Position) Advance(text string) *Position {
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		text = text[size:]
		p.Index += size
		if r == '\n' {
			p.Line++
			p.Column = 1
			continue
		}
		p.Column++
	}
	return p
}

// Before reports whether p comes before other in the same file.
func (p Position) Before(other Position) bool {
	return p.Index < other.Index
}
