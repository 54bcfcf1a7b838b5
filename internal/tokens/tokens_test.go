package tokens

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

func TestKeywordTableIsConsistent(t *testing.T) {
	seen := make(map[TOKEN]string)
	for word, kind := range Keywords {
		assert.Equal(t, word, string(kind), "keyword %q maps to a foreign kind", word)
		if prev, dup := seen[kind]; dup {
			t.Errorf("kind %q bound to both %q and %q", kind, prev, word)
		}
		seen[kind] = word

		for _, r := range word {
			assert.True(t, unicode.IsLetter(r), "keyword %q must lex as an identifier", word)
		}
		assert.False(t, IsBuiltinType(word), "keyword %q collides with a type name", word)
	}
}

func TestStatementStartsAreKeywords(t *testing.T) {
	for kind := range statementStarts {
		assert.True(t, IsKeyword(string(kind)), "%q", kind)
	}
}

func TestSplitNumber(t *testing.T) {
	tests := []struct {
		lexeme string
		digits string
		suffix string
	}{
		{"42", "42", ""},
		{"10цл32", "10", "цл32"},
		{"2.5дрб32", "2.5", "дрб32"},
		{"7чс8", "7", "чс8"},
	}
	for _, tt := range tests {
		t.Run(tt.lexeme, func(t *testing.T) {
			d, s := SplitNumber(tt.lexeme)
			assert.Equal(t, tt.digits, d)
			assert.Equal(t, tt.suffix, s)
		})
	}
}

func TestNumericTypes(t *testing.T) {
	assert.True(t, IsNumericType(TypeI32))
	assert.True(t, IsNumericType(TypeF64))
	assert.False(t, IsNumericType(TypeText))
	assert.True(t, IsBuiltinType(TypeBool))
	assert.False(t, IsBuiltinType("Точка"))
}
