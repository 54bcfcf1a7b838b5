package typechecker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Evge14n/tryzub/internal/diagnostics"
	"github.com/Evge14n/tryzub/internal/frontend/ast"
	"github.com/Evge14n/tryzub/internal/frontend/lexer"
	"github.com/Evge14n/tryzub/internal/frontend/parser"
	"github.com/Evge14n/tryzub/internal/types"
)

func check(t *testing.T, src string) (*Program, *diagnostics.DiagnosticBag) {
	t.Helper()
	toks, lexDiags := lexer.Tokenize("test.tz", []byte(src), lexer.Options{})
	require.Empty(t, lexDiags)
	bag := diagnostics.NewDiagnosticBag()
	bag.AddSourceContent("test.tz", []byte(src))
	mod := parser.Parse(toks, "test.tz", bag)
	require.False(t, bag.HasErrors(), bag.EmitAllToString())
	return Check(mod, bag), bag
}

// errorCodes lists the codes of reported errors, ignoring warnings.
func errorCodes(bag *diagnostics.DiagnosticBag) []string {
	var out []string
	for _, d := range bag.Diagnostics() {
		if d.Severity == diagnostics.Error {
			out = append(out, d.Code)
		}
	}
	return out
}

func warningCodes(bag *diagnostics.DiagnosticBag) []string {
	var out []string
	for _, d := range bag.Diagnostics() {
		if d.Severity == diagnostics.Warning {
			out = append(out, d.Code)
		}
	}
	return out
}

const points = `структура Точка {
    x: цл64,
    y: цл64,
}
`

func TestValidPrograms(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"fib", `функція фіб(n: цл64) -> цл64 {
    якщо n < 2 { повернути n }
    повернути фіб(n - 1) + фіб(n - 2)
}
функція головна() { друк(фіб(10)) }`},
		{"struct fields in any order", points + `функція головна() {
    змінна т = Точка { y: 2, x: 1 }
    друк(т.x + т.y)
}`},
		{"methods", points + `реалізація Точка {
    функція сума() -> цл64 { повернути це.x + це.y }
    функція зсунути(d: цл64) { це.x += d }
}
функція головна() {
    змінна т = Точка { x: 1, y: 2 }
    т.зсунути(3)
    друк(т.сума())
}`},
		{"untyped constants adapt", `функція головна() {
    змінна a: цл8 = 100
    змінна b: дрб32 = 1.5
    змінна c: цл32 = 7
    друк(a + 1, b * 2, c % 3, -128цл8)
}`},
		{"async", `асинхронний функція завантажити(шлях: тхт) -> тхт {
    змінна зміст = чекати прочитати(шлях)
    повернути зміст + "!"
}
асинхронний функція двічі() -> тхт {
    повернути чекати завантажити("a") + чекати завантажити("b")
}
функція головна() { }`},
		{"match as value", `функція назва(n: цл64) -> тхт {
    повернути зіставити n { 1 => "один", 2 => "два", _ => "багато" }
}
функція так(b: лог) -> цл64 {
    повернути зіставити b { істина => 1, хиба => 0 }
}
функція головна() { друк(назва(2), так(істина)) }`},
		{"loops", `функція головна() {
    змінна сума = 0
    для (i від 0 по 10 через 2) { сума += i }
    змінна xs = [1, 2, 3]
    для (x в xs) {
        якщо x == 2 { продовжити }
        сума += x
    }
    паралельно для (j від 0 до 4) {
        змінна _k = j * 2
    }
    поки істина { переривати }
    друк(сума, довжина(xs), довжина("абв"))
}`},
		{"conversions", `функція головна() {
    змінна a: цл32 = 5
    змінна b = цл64(a) + 1
    змінна c = дрб64(b) / 2.0
    друк(цілеврядок(b), дрбврядок(c))
}`},
		{"infinite loop terminates", `функція f() -> цл64 {
    поки істина { повернути 1 }
}
функція головна() { друк(f()) }`},
		{"globals", `змінна лічильник = 0
стала межа: цл64 = 10
функція головна() {
    поки лічильник < межа { лічильник += 1 }
}`},
		{"empty array with annotation", `функція головна() {
    змінна xs: [тхт] = []
    друк(довжина(xs))
}`},
		{"async entry", `асинхронний функція головна() -> цл64 {
    повернути довжина(чекати прочитати("дані.txt"))
}`},
		{"reference fields", `структура Вузол { значення: цл64, наступний: Вузол }
функція головна() { }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, bag := check(t, tt.src)
			assert.Empty(t, errorCodes(bag), bag.EmitAllToString())
		})
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"int plus text", `функція головна() { друк(1 + "a") }`,
			[]string{diagnostics.ErrTypeMismatch}},
		{"await outside async", `асинхронний функція g() -> цл64 { повернути 1 }
функція головна() { друк(чекати g()) }`,
			[]string{diagnostics.ErrAwaitOutsideAsync}},
		{"nested await outside async", `асинхронний функція g() -> цл64 { повернути 1 }
функція f() -> цл64 {
    якщо істина { поки істина { повернути 1 + чекати g() } }
    повернути 0
}
функція головна() { }`,
			[]string{diagnostics.ErrAwaitOutsideAsync}},
		{"await a plain value", `асинхронний функція f() { змінна _x = чекати 1 }
функція головна() { }`,
			[]string{diagnostics.ErrTypeMismatch}},
		{"undefined variable", `функція головна() { друк(x) }`,
			[]string{diagnostics.ErrUndefinedSymbol}},
		{"undefined function", `функція головна() { ф(1) }`,
			[]string{diagnostics.ErrUndefinedSymbol}},
		{"duplicate variable", `функція головна() { змінна _a = 1; змінна _a = 2 }`,
			[]string{diagnostics.ErrDuplicateDefinition}},
		{"duplicate function", `функція f() { }
функція f() { }
функція головна() { }`,
			[]string{diagnostics.ErrDuplicateDefinition}},
		{"missing return", `функція f(x: цл64) -> цл64 { якщо x > 0 { повернути 1 } }
функція головна() { }`,
			[]string{diagnostics.ErrMissingReturn}},
		{"return value from void", `функція головна() { повернути 1 }`,
			[]string{diagnostics.ErrInvalidReturn}},
		{"break outside loop", `функція головна() { переривати }`,
			[]string{diagnostics.ErrInvalidBreak}},
		{"continue outside loop", `функція головна() { продовжити }`,
			[]string{diagnostics.ErrInvalidContinue}},
		{"break out of parallel body", `функція головна() {
    поки істина { паралельно для (i від 0 до 3) { переривати } }
}`,
			[]string{diagnostics.ErrInvalidBreak}},
		{"constant reassignment", `функція головна() { стала a = 1; a = 2 }`,
			[]string{diagnostics.ErrConstantReassignment}},
		{"loop variable assignment", `функція головна() { для (i від 0 до 3) { i = 5 } }`,
			[]string{diagnostics.ErrInvalidAssignment}},
		{"parallel captured assignment", `функція головна() {
    змінна сума = 0
    паралельно для (i від 0 до 3) { сума += i }
    друк(сума)
}`,
			[]string{diagnostics.ErrInvalidAssignment}},
		{"overflow", `функція головна() { змінна _a: цл8 = 300 }`,
			[]string{diagnostics.ErrConstantOverflow}},
		{"negative unsigned", `функція головна() { змінна _a: чс8 = -1 }`,
			[]string{diagnostics.ErrConstantOverflow}},
		{"mismatched int widths", `функція головна() {
    змінна a: цл32 = 1
    змінна b: цл64 = 2
    друк(a + b)
}`,
			[]string{diagnostics.ErrTypeMismatch}},
		{"float modulo", `функція головна() { друк(1.5 % 2.0) }`,
			[]string{diagnostics.ErrInvalidOperation}},
		{"condition not bool", `функція головна() { якщо 1 { } }`,
			[]string{diagnostics.ErrTypeMismatch}},
		{"wrong argument count", `функція f(a: цл64) { }
функція головна() { f(1, 2) }`,
			[]string{diagnostics.ErrWrongArgumentCount}},
		{"wrong argument type", `функція f(a: цл64) { }
функція головна() { f("x") }`,
			[]string{diagnostics.ErrTypeMismatch}},
		{"builtin arity", `функція головна() { друк(довжина()) }`,
			[]string{diagnostics.ErrWrongArgumentCount}},
		{"builtin argument type", `функція головна() { друк(довжина(1)) }`,
			[]string{diagnostics.ErrTypeMismatch}},
		{"not callable", `функція головна() { змінна x = 1; x() }`,
			[]string{diagnostics.ErrNotCallable}},
		{"unknown field", points + `функція головна() { змінна т = Точка { x: 1, y: 2 }; друк(т.z) }`,
			[]string{diagnostics.ErrFieldNotFound}},
		{"missing field", points + `функція головна() { змінна _т = Точка { x: 1 } }`,
			[]string{diagnostics.ErrMissingField}},
		{"duplicate field", points + `функція головна() { змінна _т = Точка { x: 1, x: 2, y: 3 } }`,
			[]string{diagnostics.ErrDuplicateField}},
		{"extra field", points + `функція головна() { змінна _т = Точка { x: 1, y: 2, z: 3 } }`,
			[]string{diagnostics.ErrFieldNotFound}},
		{"unknown method", points + `функція головна() { змінна т = Точка { x: 1, y: 2 }; т.летіти() }`,
			[]string{diagnostics.ErrUndefinedSymbol}},
		{"non exhaustive match", `функція головна() { друк(зіставити 3 { 1 => "a", 2 => "b" }) }`,
			[]string{diagnostics.ErrNonExhaustiveMatch}},
		{"match arms disagree", `функція головна() { друк(зіставити 3 { 1 => "a", _ => 2 }) }`,
			[]string{diagnostics.ErrTypeMismatch}},
		{"match pattern type", `функція головна() { друк(зіставити 3 { "a" => 1, _ => 2 }) }`,
			[]string{diagnostics.ErrTypeMismatch}},
		{"empty array without type", `функція головна() { змінна _xs = [] }`,
			[]string{diagnostics.ErrInvalidType}},
		{"index not integer", `функція головна() { змінна xs = [1]; друк(xs["a"]) }`,
			[]string{diagnostics.ErrTypeMismatch}},
		{"index non array", `функція головна() { змінна x = 1; друк(x[0]) }`,
			[]string{diagnostics.ErrNotIndexable}},
		{"void value", `функція f() { }
функція головна() { змінна _x = f() }`,
			[]string{diagnostics.ErrInvalidType}},
		{"text entry", `функція головна() -> тхт { повернути "" }`,
			[]string{diagnostics.ErrInvalidEntry}},
		{"entry with params", `функція головна(x: цл64) { }`,
			[]string{diagnostics.ErrInvalidEntry}},
		{"undefined type", `функція головна() { змінна _x: Щось = 1 }`,
			[]string{diagnostics.ErrUndefinedSymbol}},
		{"impl for unknown type", `реалізація Ніщо { функція f() { } }
функція головна() { }`,
			[]string{diagnostics.ErrUndefinedSymbol}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, bag := check(t, tt.src)
			assert.Equal(t, tt.want, errorCodes(bag), bag.EmitAllToString())
		})
	}
}

func TestWarnings(t *testing.T) {
	_, bag := check(t, `функція головна() {
    змінна невикористана = 1
    повернути
    друк("після")
}`)
	assert.Empty(t, errorCodes(bag))
	assert.ElementsMatch(t,
		[]string{diagnostics.WarnUnusedVariable, diagnostics.WarnUnreachableCode},
		warningCodes(bag))
}

func TestStructInitResolvesFieldIndices(t *testing.T) {
	prog, bag := check(t, points+`функція головна() {
    змінна т = Точка { y: 2, x: 1 }
    друк(т.y)
}`)
	require.False(t, bag.HasErrors(), bag.EmitAllToString())
	require.NotNil(t, prog.Entry)

	decl := prog.Entry.Body.Nodes[0].(*ast.VarDecl)
	init := decl.Value.(*ast.StructInit)
	assert.Equal(t, 1, init.Fields[0].Index)
	assert.Equal(t, 0, init.Fields[1].Index)
	assert.Equal(t, "Точка", init.ExprType().String())

	access := prog.Entry.Body.Nodes[1].(*ast.ExprStmt).X.(*ast.CallExpr).Args[0].(*ast.FieldAccess)
	assert.Equal(t, 1, access.Index)
}

func TestUntypedLiteralsTakeContextType(t *testing.T) {
	prog, bag := check(t, `функція головна() {
    змінна a: цл16 = 2
    змінна b = a * 3 + 1
    змінна c = 2.5
    змінна d = 7
    друк(b, c, d)
}`)
	require.False(t, bag.HasErrors(), bag.EmitAllToString())
	body := prog.Entry.Body.Nodes
	assert.Equal(t, types.TypeI16, body[1].(*ast.VarDecl).Symbol.Type)
	assert.Equal(t, types.TypeF64, body[2].(*ast.VarDecl).Symbol.Type)
	assert.Equal(t, types.TypeI64, body[3].(*ast.VarDecl).Symbol.Type)
}

func TestConversionIsMarked(t *testing.T) {
	prog, bag := check(t, `функція головна() {
    змінна a = 5
    змінна b = цл8(a)
    друк(b)
}`)
	require.False(t, bag.HasErrors(), bag.EmitAllToString())
	call := prog.Entry.Body.Nodes[1].(*ast.VarDecl).Value.(*ast.CallExpr)
	assert.Equal(t, types.TypeI8, call.Convert)
	assert.Nil(t, call.Target)
}

func TestProgramIndexesDeclarations(t *testing.T) {
	prog, bag := check(t, points+`реалізація Точка {
    функція нуль() -> лог { повернути це.x == 0 && це.y == 0 }
}
змінна початок = 1
функція головна() { друк(початок) }`)
	require.False(t, bag.HasErrors(), bag.EmitAllToString())

	require.Len(t, prog.Structs, 1)
	st := prog.Structs[0]
	method := prog.Method(st, "нуль")
	require.NotNil(t, method)
	assert.Equal(t, "Точка.нуль", method.QualifiedName())
	assert.Same(t, method, prog.Func(method.Symbol))
	assert.Len(t, prog.Globals, 1)
	assert.Len(t, prog.Funcs, 2)
	assert.Equal(t, EntryName, prog.Entry.Name.Name)
}

func TestEveryExpressionIsTyped(t *testing.T) {
	prog, bag := check(t, `функція головна() {
    змінна xs = [1, 2, 3]
    для (x в xs) { друк(x * 2, xs[0], !істина) }
}`)
	require.False(t, bag.HasErrors(), bag.EmitAllToString())
	ast.Inspect(prog.Module, func(n ast.Node) bool {
		if e, ok := n.(ast.Expression); ok {
			assert.False(t, types.ContainsUnknown(e.ExprType()), "%T has no type", n)
		}
		return true
	})
}
