package lexer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/tokens"
)

func kinds(toks []tokens.Token) []tokens.TOKEN {
	out := make([]tokens.TOKEN, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeFunction(t *testing.T) {
	src := "функція додати(а: цл32, б: цл32) -> цл32 { повернути а + б }"
	toks, diags := Tokenize("main.tz", []byte(src), Options{})
	require.Empty(t, diags)

	assert.Equal(t, []tokens.TOKEN{
		tokens.FUNCTION_TOKEN, tokens.IDENTIFIER_TOKEN, tokens.OPEN_PAREN,
		tokens.IDENTIFIER_TOKEN, tokens.COLON_TOKEN, tokens.IDENTIFIER_TOKEN, tokens.COMMA_TOKEN,
		tokens.IDENTIFIER_TOKEN, tokens.COLON_TOKEN, tokens.IDENTIFIER_TOKEN, tokens.CLOSE_PAREN,
		tokens.ARROW_TOKEN, tokens.IDENTIFIER_TOKEN, tokens.OPEN_CURLY, tokens.RETURN_TOKEN,
		tokens.IDENTIFIER_TOKEN, tokens.PLUS_TOKEN, tokens.IDENTIFIER_TOKEN, tokens.CLOSE_CURLY,
		tokens.EOF_TOKEN,
	}, kinds(toks))
}

func TestSpanRoundTrip(t *testing.T) {
	src := `структура Точка { х: цл64, у: цл64 }
асинхронний функція головна() {
    змінна п'ять = 5цл32 ** 2 // коментар
    /* блок /* вкладений */ */
    якщо п'ять >= 10 && !хиба { друк("так\n") }
    змінна д = 2.5дрб32
}`
	toks, diags := Tokenize("main.tz", []byte(src), Options{})
	require.Empty(t, diags)
	require.Equal(t, tokens.EOF_TOKEN, toks[len(toks)-1].Kind)

	for _, tok := range toks[:len(toks)-1] {
		raw := src[tok.Start.Index:tok.End.Index]
		if tok.Kind == tokens.STRING_TOKEN {
			assert.Equal(t, `"так\n"`, raw)
			assert.Equal(t, "так\n", tok.Value)
			continue
		}
		assert.Equal(t, raw, tok.Value, "token %s at %d:%d", tok.Kind, tok.Start.Line, tok.Start.Column)
	}
}

func TestNumericSuffixes(t *testing.T) {
	tests := []struct {
		src   string
		value string
		code  string
	}{
		{"42", "42", ""},
		{"10цл32", "10цл32", ""},
		{"7чс8", "7чс8", ""},
		{"2дрб64", "2дрб64", ""},
		{"1.5дрб32", "1.5дрб32", ""},
		{"1.5цл32", "1.5", diagnostics.ErrInvalidNumber},
		{"3кг", "3", diagnostics.ErrInvalidNumber},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			toks, diags := Tokenize("n.tz", []byte(tt.src), Options{})
			require.Len(t, toks, 2)
			assert.Equal(t, tokens.NUMBER_TOKEN, toks[0].Kind)
			assert.Equal(t, tt.value, toks[0].Value)
			if tt.code == "" {
				assert.Empty(t, diags)
			} else {
				require.Len(t, diags, 1)
				assert.Equal(t, tt.code, diags[0].Code)
			}
		})
	}
}

func TestUnterminatedStringResyncsAtNextLine(t *testing.T) {
	src := "змінна а = \"незакритий\nзмінна б = 1"
	toks, diags := Tokenize("s.tz", []byte(src), Options{})

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostics.ErrUnterminatedString, diags[0].Code)
	assert.Equal(t, 1, diags[0].Span().Start.Line)

	assert.Equal(t, []tokens.TOKEN{
		tokens.VAR_TOKEN, tokens.IDENTIFIER_TOKEN, tokens.EQUALS_TOKEN, tokens.STRING_TOKEN,
		tokens.VAR_TOKEN, tokens.IDENTIFIER_TOKEN, tokens.EQUALS_TOKEN, tokens.NUMBER_TOKEN,
		tokens.EOF_TOKEN,
	}, kinds(toks))
	assert.Equal(t, "незакритий", toks[3].Value)
}

func TestUnterminatedStringAtEOF(t *testing.T) {
	toks, diags := Tokenize("s.tz", []byte(`"abc`), Options{})
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostics.ErrUnterminatedString, diags[0].Code)
	assert.Equal(t, tokens.EOF_TOKEN, toks[len(toks)-1].Kind)
}

func TestInvalidCharactersAreSkippedOneAtATime(t *testing.T) {
	src := []byte("а @# б")
	src = append(append(src, 0xff, ' '), "г"...)
	toks, diags := Tokenize("x.tz", src, Options{})

	require.Len(t, diags, 3)
	for _, d := range diags {
		assert.Equal(t, diagnostics.ErrInvalidCharacter, d.Code)
	}
	assert.Equal(t, []tokens.TOKEN{
		tokens.IDENTIFIER_TOKEN, tokens.IDENTIFIER_TOKEN, tokens.IDENTIFIER_TOKEN, tokens.EOF_TOKEN,
	}, kinds(toks))
}

func TestInvalidEscapeKeepsCharacter(t *testing.T) {
	toks, diags := Tokenize("e.tz", []byte(`"a\qb"`), Options{})
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostics.ErrInvalidEscape, diags[0].Code)
	assert.Equal(t, "aqb", toks[0].Value)
}

func TestUnterminatedBlockComment(t *testing.T) {
	_, diags := Tokenize("c.tz", []byte("а /* /* */"), Options{})
	require.Len(t, diags, 1)
	assert.Equal(t, diagnostics.ErrUnterminatedComment, diags[0].Code)
}

func TestKeywordCaseSensitivity(t *testing.T) {
	src := []byte("Змінна ФУНКЦІЯ")

	toks, _ := Tokenize("k.tz", src, Options{})
	assert.Equal(t, []tokens.TOKEN{tokens.IDENTIFIER_TOKEN, tokens.IDENTIFIER_TOKEN, tokens.EOF_TOKEN}, kinds(toks))

	toks, _ = Tokenize("k.tz", src, Options{CaseInsensitiveKeywords: true})
	assert.Equal(t, []tokens.TOKEN{tokens.VAR_TOKEN, tokens.FUNCTION_TOKEN, tokens.EOF_TOKEN}, kinds(toks))
}

func TestIdentifiersKeepSourceSpelling(t *testing.T) {
	// "й" written as и + combining breve
	src := "мі\u0438\u0306 = змінна"
	toks, diags := Tokenize("n.tz", []byte(src), Options{})
	require.Empty(t, diags)
	require.Len(t, toks, 4)

	assert.Equal(t, tokens.IDENTIFIER_TOKEN, toks[0].Kind)
	assert.Equal(t, "мі\u0438\u0306", toks[0].Value)
	assert.Equal(t, src[toks[0].Start.Index:toks[0].End.Index], toks[0].Value)
	assert.Equal(t, "мій", toks[0].Name())
	assert.Equal(t, tokens.VAR_TOKEN, toks[2].Kind)
}

func TestDecomposedKeyword(t *testing.T) {
	src := "асинхронни\u0306"
	toks, diags := Tokenize("n.tz", []byte(src), Options{})
	require.Empty(t, diags)
	assert.Equal(t, tokens.ASYNC_TOKEN, toks[0].Kind)
	assert.Equal(t, src, toks[0].Value)
}

func TestEmptySourceYieldsEOF(t *testing.T) {
	toks, diags := Tokenize("empty.tz", nil, Options{})
	assert.Empty(t, diags)
	require.Len(t, toks, 1)
	assert.Equal(t, tokens.EOF_TOKEN, toks[0].Kind)
}

// largeSource repeats a six-token line n times.
func largeSource(n int) []byte {
	return []byte(strings.Repeat("змінна значення = 12345 + \"рядок\" // коментар\n", n))
}

func TestLargeInputLexesInLinearTime(t *testing.T) {
	const lines = 20000
	src := largeSource(lines)

	done := make(chan []tokens.Token, 1)
	go func() {
		toks, _ := Tokenize("big.tz", src, Options{})
		done <- toks
	}()

	select {
	case toks := <-done:
		require.Len(t, toks, lines*6+1)
		last := toks[len(toks)-2]
		assert.Equal(t, tokens.STRING_TOKEN, last.Kind)
		assert.Equal(t, lines, last.Start.Line)
	case <-time.After(30 * time.Second):
		t.Fatalf("lexing %d bytes did not finish in 30s", len(src))
	}
}

func BenchmarkTokenize(b *testing.B) {
	src := largeSource(4000)
	b.SetBytes(int64(len(src)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Tokenize("bench.tz", src, Options{})
	}
}
