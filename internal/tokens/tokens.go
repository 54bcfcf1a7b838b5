package tokens

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/Evge14n/tryzub/internal/source"
)

type TOKEN string

const (
	//keywords
	VAR_TOKEN        TOKEN = "змінна"
	CONST_TOKEN      TOKEN = "стала"
	FUNCTION_TOKEN   TOKEN = "функція"
	RETURN_TOKEN     TOKEN = "повернути"
	IF_TOKEN         TOKEN = "якщо"
	ELSE_TOKEN       TOKEN = "інакше"
	WHILE_TOKEN      TOKEN = "поки"
	FOR_TOKEN        TOKEN = "для"
	FROM_TOKEN       TOKEN = "від"
	UNTIL_TOKEN      TOKEN = "до"
	THROUGH_TOKEN    TOKEN = "по"
	STEP_TOKEN       TOKEN = "через"
	IN_TOKEN         TOKEN = "в"
	BREAK_TOKEN      TOKEN = "переривати"
	CONTINUE_TOKEN   TOKEN = "продовжити"
	STRUCT_TOKEN     TOKEN = "структура"
	IMPL_TOKEN       TOKEN = "реалізація"
	ASYNC_TOKEN      TOKEN = "асинхронний"
	AWAIT_TOKEN      TOKEN = "чекати"
	MATCH_TOKEN      TOKEN = "зіставити"
	PARALLEL_TOKEN   TOKEN = "паралельно"
	TRUE_TOKEN       TOKEN = "істина"
	FALSE_TOKEN      TOKEN = "хиба"
	SELF_TOKEN       TOKEN = "це"
	IDENTIFIER_TOKEN TOKEN = "identifier"
	//literals
	NUMBER_TOKEN TOKEN = "numeric literal"
	STRING_TOKEN TOKEN = "string literal"
	//arithmetic operators
	EXP_TOKEN   TOKEN = "**"
	MINUS_TOKEN TOKEN = "-"
	PLUS_TOKEN  TOKEN = "+"
	MUL_TOKEN   TOKEN = "*"
	DIV_TOKEN   TOKEN = "/"
	MOD_TOKEN   TOKEN = "%"
	//logical operators
	AND_TOKEN           TOKEN = "&&"
	OR_TOKEN            TOKEN = "||"
	NOT_TOKEN           TOKEN = "!"
	LESS_EQUAL_TOKEN    TOKEN = "<="
	GREATER_EQUAL_TOKEN TOKEN = ">="
	NOT_EQUAL_TOKEN     TOKEN = "!="
	DOUBLE_EQUAL_TOKEN  TOKEN = "=="
	LESS_TOKEN          TOKEN = "<"
	GREATER_TOKEN       TOKEN = ">"
	//assignment
	EQUALS_TOKEN       TOKEN = "="
	PLUS_EQUALS_TOKEN  TOKEN = "+="
	MINUS_EQUALS_TOKEN TOKEN = "-="
	MUL_EQUALS_TOKEN   TOKEN = "*="
	DIV_EQUALS_TOKEN   TOKEN = "/="
	//delimiters
	OPEN_PAREN      TOKEN = "("
	CLOSE_PAREN     TOKEN = ")"
	OPEN_BRACKET    TOKEN = "["
	CLOSE_BRACKET   TOKEN = "]"
	OPEN_CURLY      TOKEN = "{"
	CLOSE_CURLY     TOKEN = "}"
	COMMA_TOKEN     TOKEN = ","
	DOT_TOKEN       TOKEN = "."
	COLON_TOKEN     TOKEN = ":"
	SEMICOLON_TOKEN TOKEN = ";"
	ARROW_TOKEN     TOKEN = "->"
	FAT_ARROW_TOKEN TOKEN = "=>"

	EOF_TOKEN TOKEN = "end_of_file"
)

// Keywords maps every reserved word to its token kind.
var Keywords = map[string]TOKEN{
	string(VAR_TOKEN):      VAR_TOKEN,
	string(CONST_TOKEN):    CONST_TOKEN,
	string(FUNCTION_TOKEN): FUNCTION_TOKEN,
	string(RETURN_TOKEN):   RETURN_TOKEN,
	string(IF_TOKEN):       IF_TOKEN,
	string(ELSE_TOKEN):     ELSE_TOKEN,
	string(WHILE_TOKEN):    WHILE_TOKEN,
	string(FOR_TOKEN):      FOR_TOKEN,
	string(FROM_TOKEN):     FROM_TOKEN,
	string(UNTIL_TOKEN):    UNTIL_TOKEN,
	string(THROUGH_TOKEN):  THROUGH_TOKEN,
	string(STEP_TOKEN):     STEP_TOKEN,
	string(IN_TOKEN):       IN_TOKEN,
	string(BREAK_TOKEN):    BREAK_TOKEN,
	string(CONTINUE_TOKEN): CONTINUE_TOKEN,
	string(STRUCT_TOKEN):   STRUCT_TOKEN,
	string(IMPL_TOKEN):     IMPL_TOKEN,
	string(ASYNC_TOKEN):    ASYNC_TOKEN,
	string(AWAIT_TOKEN):    AWAIT_TOKEN,
	string(MATCH_TOKEN):    MATCH_TOKEN,
	string(PARALLEL_TOKEN): PARALLEL_TOKEN,
	string(TRUE_TOKEN):     TRUE_TOKEN,
	string(FALSE_TOKEN):    FALSE_TOKEN,
	string(SELF_TOKEN):     SELF_TOKEN,
}

// Builtin type names. They lex as identifiers and double as numeric literal suffixes.
const (
	TypeI8   = "цл8"
	TypeI16  = "цл16"
	TypeI32  = "цл32"
	TypeI64  = "цл64"
	TypeU8   = "чс8"
	TypeU16  = "чс16"
	TypeU32  = "чс32"
	TypeU64  = "чс64"
	TypeF32  = "дрб32"
	TypeF64  = "дрб64"
	TypeBool = "лог"
	TypeText = "тхт"
)

var numericTypes = map[string]bool{
	TypeI8: true, TypeI16: true, TypeI32: true, TypeI64: true,
	TypeU8: true, TypeU16: true, TypeU32: true, TypeU64: true,
	TypeF32: true, TypeF64: true,
}

// statementStarts are the kinds a parser may resynchronise on.
var statementStarts = map[TOKEN]bool{
	VAR_TOKEN:      true,
	CONST_TOKEN:    true,
	FUNCTION_TOKEN: true,
	RETURN_TOKEN:   true,
	IF_TOKEN:       true,
	WHILE_TOKEN:    true,
	FOR_TOKEN:      true,
	BREAK_TOKEN:    true,
	CONTINUE_TOKEN: true,
	STRUCT_TOKEN:   true,
	IMPL_TOKEN:     true,
	ASYNC_TOKEN:    true,
	PARALLEL_TOKEN: true,
}

func IsKeyword(word string) bool {
	_, ok := Keywords[word]
	return ok
}

// IsStatementStart reports whether kind can only begin a statement or declaration.
func IsStatementStart(kind TOKEN) bool {
	return statementStarts[kind]
}

// IsNumericType reports whether name is a builtin numeric type.
func IsNumericType(name string) bool {
	return numericTypes[name]
}

func IsBuiltinType(name string) bool {
	return numericTypes[name] || name == TypeBool || name == TypeText
}

// CompoundOp maps `+=` and friends to the binary operator they apply. Any
// other kind is returned unchanged.
func CompoundOp(kind TOKEN) TOKEN {
	switch kind {
	case PLUS_EQUALS_TOKEN:
		return PLUS_TOKEN
	case MINUS_EQUALS_TOKEN:
		return MINUS_TOKEN
	case MUL_EQUALS_TOKEN:
		return MUL_TOKEN
	case DIV_EQUALS_TOKEN:
		return DIV_TOKEN
	}
	return kind
}

// SplitNumber separates a numeric literal lexeme into its digits and type suffix.
func SplitNumber(lexeme string) (digits, suffix string) {
	i := strings.IndexFunc(lexeme, func(r rune) bool {
		return unicode.IsLetter(r)
	})
	if i < 0 {
		return lexeme, ""
	}
	return lexeme[:i], lexeme[i:]
}

type Token struct {
	Kind  TOKEN
	Value string
	Start source.Position
	End   source.Position
}

// Name is the NFC form of an identifier lexeme. Two spellings of the same
// name compare equal only after this.
func (t *Token) Name() string {
	return norm.NFC.String(t.Value)
}

// Location returns the span the token covers in file.
func (t *Token) Location(file string) source.Location {
	return source.NewLocation(file, t.Start, t.End)
}

func (t *Token) Debug(w io.Writer, filename string) {
	if t.Value == string(t.Kind) {
		fmt.Fprintf(w, "%s:%d:%d %q\n", filename, t.Start.Line, t.Start.Column, t.Value)
	} else {
		fmt.Fprintf(w, "%s:%d:%d %q ('%v')\n", filename, t.Start.Line, t.Start.Column, t.Value, t.Kind)
	}
}

func NewToken(kind TOKEN, value string, start source.Position, end source.Position) Token {
	return Token{
		Kind:  kind,
		Value: value,
		Start: start,
		End:   end,
	}
}
