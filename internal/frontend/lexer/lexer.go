package lexer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/source"
	"github.com/Evge14n/tryzub/internal/tokens"
)

type regexHandler func(lex *Lexer, match string)

type regexPattern struct {
	regex   *regexp.Regexp
	handler regexHandler
}

// Options fixes lexing behaviour for the lifetime of a Lexer.
type Options struct {
	CaseInsensitiveKeywords bool
}

type Lexer struct {
	diagnostics *diagnostics.DiagnosticBag
	Tokens      []tokens.Token
	Position    source.Position
	sourceCode  string
	FilePath    string
	fold        *cases.Caser
}

var identRe = regexp.MustCompile(`\A[\p{L}\p{M}\p{N}_']*`)

// patterns is ordered: the first match at the current position wins, so longer
// operators precede their prefixes.
var patterns = []regexPattern{
	{regexp.MustCompile(`\A\s+`), skipHandler},
	{regexp.MustCompile(`\A//[^\n]*`), skipHandler},
	{regexp.MustCompile(`\A/\*`), blockCommentHandler},
	{regexp.MustCompile(`\A"`), stringHandler},
	{regexp.MustCompile(`\A[0-9]+(\.[0-9]+)?`), numberHandler},
	{regexp.MustCompile(`\A[\p{L}_][\p{L}\p{M}\p{N}_']*`), identifierHandler},
	{regexp.MustCompile(`\A->`), defaultHandler(tokens.ARROW_TOKEN)},
	{regexp.MustCompile(`\A=>`), defaultHandler(tokens.FAT_ARROW_TOKEN)},
	{regexp.MustCompile(`\A==`), defaultHandler(tokens.DOUBLE_EQUAL_TOKEN)},
	{regexp.MustCompile(`\A!=`), defaultHandler(tokens.NOT_EQUAL_TOKEN)},
	{regexp.MustCompile(`\A<=`), defaultHandler(tokens.LESS_EQUAL_TOKEN)},
	{regexp.MustCompile(`\A>=`), defaultHandler(tokens.GREATER_EQUAL_TOKEN)},
	{regexp.MustCompile(`\A\+=`), defaultHandler(tokens.PLUS_EQUALS_TOKEN)},
	{regexp.MustCompile(`\A-=`), defaultHandler(tokens.MINUS_EQUALS_TOKEN)},
	{regexp.MustCompile(`\A\*=`), defaultHandler(tokens.MUL_EQUALS_TOKEN)},
	{regexp.MustCompile(`\A/=`), defaultHandler(tokens.DIV_EQUALS_TOKEN)},
	{regexp.MustCompile(`\A\*\*`), defaultHandler(tokens.EXP_TOKEN)},
	{regexp.MustCompile(`\A&&`), defaultHandler(tokens.AND_TOKEN)},
	{regexp.MustCompile(`\A\|\|`), defaultHandler(tokens.OR_TOKEN)},
	{regexp.MustCompile(`\A!`), defaultHandler(tokens.NOT_TOKEN)},
	{regexp.MustCompile(`\A-`), defaultHandler(tokens.MINUS_TOKEN)},
	{regexp.MustCompile(`\A\+`), defaultHandler(tokens.PLUS_TOKEN)},
	{regexp.MustCompile(`\A\*`), defaultHandler(tokens.MUL_TOKEN)},
	{regexp.MustCompile(`\A/`), defaultHandler(tokens.DIV_TOKEN)},
	{regexp.MustCompile(`\A%`), defaultHandler(tokens.MOD_TOKEN)},
	{regexp.MustCompile(`\A<`), defaultHandler(tokens.LESS_TOKEN)},
	{regexp.MustCompile(`\A>`), defaultHandler(tokens.GREATER_TOKEN)},
	{regexp.MustCompile(`\A=`), defaultHandler(tokens.EQUALS_TOKEN)},
	{regexp.MustCompile(`\A:`), defaultHandler(tokens.COLON_TOKEN)},
	{regexp.MustCompile(`\A;`), defaultHandler(tokens.SEMICOLON_TOKEN)},
	{regexp.MustCompile(`\A\(`), defaultHandler(tokens.OPEN_PAREN)},
	{regexp.MustCompile(`\A\)`), defaultHandler(tokens.CLOSE_PAREN)},
	{regexp.MustCompile(`\A\[`), defaultHandler(tokens.OPEN_BRACKET)},
	{regexp.MustCompile(`\A\]`), defaultHandler(tokens.CLOSE_BRACKET)},
	{regexp.MustCompile(`\A\{`), defaultHandler(tokens.OPEN_CURLY)},
	{regexp.MustCompile(`\A\}`), defaultHandler(tokens.CLOSE_CURLY)},
	{regexp.MustCompile(`\A,`), defaultHandler(tokens.COMMA_TOKEN)},
	{regexp.MustCompile(`\A\.`), defaultHandler(tokens.DOT_TOKEN)},
}

func New(filepath string, content []byte, diag *diagnostics.DiagnosticBag, opts Options) *Lexer {
	lex := &Lexer{
		sourceCode:  string(content),
		Position:    source.Start(),
		diagnostics: diag,
		FilePath:    filepath,
	}
	if opts.CaseInsensitiveKeywords {
		caser := cases.Fold()
		lex.fold = &caser
	}
	return lex
}

// Tokenize lexes src in one call and returns the tokens with every diagnostic found.
func Tokenize(filepath string, src []byte, opts Options) ([]tokens.Token, []*diagnostics.Diagnostic) {
	bag := diagnostics.NewDiagnosticBag()
	toks := New(filepath, src, bag, opts).Tokenize()
	return toks, bag.Diagnostics()
}

func (lex *Lexer) advance(match string) {
	lex.Position.Advance(match)
}

func (lex *Lexer) push(token tokens.Token) {
	lex.Tokens = append(lex.Tokens, token)
}

// remainder is the unread source. It slices the string copied once in New.
func (lex *Lexer) remainder() string {
	return lex.sourceCode[lex.Position.Index:]
}

func (lex *Lexer) atEOF() bool {
	return lex.Position.Index >= len(lex.sourceCode)
}

func (lex *Lexer) report(code string, start, end source.Position, format string, args ...any) {
	lex.diagnostics.Add(diagnostics.Errorf(code, format, args...).
		WithPrimaryLabel(source.NewLocation(lex.FilePath, start, end), ""))
}

func defaultHandler(token tokens.TOKEN) regexHandler {
	return func(lex *Lexer, match string) {
		start := lex.Position
		lex.advance(match)
		lex.push(tokens.NewToken(token, match, start, lex.Position))
	}
}

// identifierHandler keeps the spelling from the source; keywords are matched
// on its NFC form.
func identifierHandler(lex *Lexer, match string) {
	start := lex.Position
	lex.advance(match)
	end := lex.Position

	name := norm.NFC.String(match)
	word := name
	if lex.fold != nil {
		word = lex.fold.String(name)
	}
	if kind, ok := tokens.Keywords[word]; ok {
		lex.push(tokens.NewToken(kind, match, start, end))
		return
	}
	lex.push(tokens.NewToken(tokens.IDENTIFIER_TOKEN, match, start, end))
}

func numberHandler(lex *Lexer, digits string) {
	start := lex.Position
	lex.advance(digits)
	digitsEnd := lex.Position

	suffix := identRe.FindString(lex.remainder())
	if suffix == "" {
		lex.push(tokens.NewToken(tokens.NUMBER_TOKEN, digits, start, digitsEnd))
		return
	}

	lex.advance(suffix)
	name := norm.NFC.String(suffix)
	isFloat := strings.Contains(digits, ".")
	switch {
	case !tokens.IsNumericType(name):
		lex.report(diagnostics.ErrInvalidNumber, digitsEnd, lex.Position, "invalid numeric suffix '%s'", suffix)
		lex.push(tokens.NewToken(tokens.NUMBER_TOKEN, digits, start, digitsEnd))
	case isFloat && !strings.HasPrefix(name, "дрб"):
		lex.report(diagnostics.ErrInvalidNumber, digitsEnd, lex.Position, "float literal cannot have integer suffix '%s'", suffix)
		lex.push(tokens.NewToken(tokens.NUMBER_TOKEN, digits, start, digitsEnd))
	default:
		lex.push(tokens.NewToken(tokens.NUMBER_TOKEN, digits+suffix, start, lex.Position))
	}
}

// stringHandler scans a literal up to its closing quote. A literal still open at
// the end of the line is reported and lexing resumes on the next line.
func stringHandler(lex *Lexer, _ string) {
	start := lex.Position
	rest := lex.remainder()

	var value strings.Builder
	i := 1
	for i < len(rest) {
		c := rest[i]
		switch c {
		case '"':
			lex.advance(rest[:i+1])
			lex.push(tokens.NewToken(tokens.STRING_TOKEN, value.String(), start, lex.Position))
			return
		case '\n':
			lex.unterminated(start, rest[:i], value.String())
			return
		case '\\':
			if i+1 >= len(rest) || rest[i+1] == '\n' {
				i++
				continue
			}
			esc, size := utf8.DecodeRuneInString(rest[i+1:])
			switch esc {
			case 'n':
				value.WriteByte('\n')
			case 't':
				value.WriteByte('\t')
			case 'r':
				value.WriteByte('\r')
			case '"':
				value.WriteByte('"')
			case '\\':
				value.WriteByte('\\')
			default:
				escStart := start
				escStart.Advance(rest[:i])
				escEnd := escStart
				escEnd.Advance(rest[i : i+1+size])
				lex.report(diagnostics.ErrInvalidEscape, escStart, escEnd, "unknown escape sequence '\\%c'", esc)
				value.WriteRune(esc)
			}
			i += 1 + size
		default:
			value.WriteByte(c)
			i++
		}
	}
	lex.unterminated(start, rest, value.String())
}

func (lex *Lexer) unterminated(start source.Position, text, value string) {
	lex.advance(text)
	lex.report(diagnostics.ErrUnterminatedString, start, lex.Position, "unterminated string literal")
	lex.push(tokens.NewToken(tokens.STRING_TOKEN, value, start, lex.Position))
}

func blockCommentHandler(lex *Lexer, _ string) {
	start := lex.Position
	rest := lex.remainder()
	depth := 0
	for i := 0; i < len(rest)-1; i++ {
		switch {
		case rest[i] == '/' && rest[i+1] == '*':
			depth++
			i++
		case rest[i] == '*' && rest[i+1] == '/':
			depth--
			i++
			if depth == 0 {
				lex.advance(rest[:i+1])
				return
			}
		}
	}
	lex.advance(rest)
	lex.report(diagnostics.ErrUnterminatedComment, start, lex.Position, "unterminated block comment")
}

// skipHandler processes a token that should be skipped by the lexer.
func skipHandler(lex *Lexer, match string) {
	lex.advance(match)
}

// Tokenize lexes the whole source. The result always ends with EOF_TOKEN.
func (lex *Lexer) Tokenize() []tokens.Token {
	for !lex.atEOF() {
		rest := lex.remainder()

		if r, size := utf8.DecodeRuneInString(rest); r == utf8.RuneError && size <= 1 {
			start := lex.Position
			lex.Position.Index++
			lex.Position.Column++
			lex.report(diagnostics.ErrInvalidCharacter, start, lex.Position, "invalid UTF-8 byte 0x%02x", rest[0])
			continue
		}

		matched := false
		for _, pattern := range patterns {
			if match := pattern.regex.FindString(rest); match != "" {
				pattern.handler(lex, match)
				matched = true
				break
			}
		}

		if !matched {
			r, size := utf8.DecodeRuneInString(rest)
			start := lex.Position
			lex.advance(rest[:size])
			lex.report(diagnostics.ErrInvalidCharacter, start, lex.Position, "invalid character '%c'", r)
		}
	}

	lex.push(tokens.NewToken(tokens.EOF_TOKEN, "", lex.Position, lex.Position))
	return lex.Tokens
}
