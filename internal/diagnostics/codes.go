package diagnostics

// Error codes
const (
	// Lexer errors (L prefix)
	ErrInvalidCharacter    = "L0001"
	ErrUnterminatedString  = "L0002"
	ErrInvalidNumber       = "L0003"
	ErrInvalidEscape       = "L0004"
	ErrUnterminatedComment = "L0005"

	// Parser errors (P prefix)
	ErrUnexpectedToken    = "P0001"
	ErrExpectedToken      = "P0002"
	ErrInvalidExpression  = "P0003"
	ErrInvalidDeclaration = "P0005"
	ErrMissingIdentifier  = "P0006"
	ErrMissingType        = "P0007"

	// Type checker errors (T prefix)
	ErrTypeMismatch         = "T0001"
	ErrUndefinedSymbol      = "T0002"
	ErrDuplicateDefinition  = "T0003"
	ErrInvalidOperation     = "T0004"
	ErrNotCallable          = "T0005"
	ErrWrongArgumentCount   = "T0006"
	ErrInvalidAssignment    = "T0007"
	ErrNotIndexable         = "T0008"
	ErrFieldNotFound        = "T0010"
	ErrNonExhaustiveMatch   = "T0015"
	ErrInvalidReturn        = "T0016"
	ErrMissingReturn        = "T0017"
	ErrConstantReassignment = "T0018"
	ErrInvalidBreak         = "T0019"
	ErrInvalidContinue      = "T0020"
	ErrInvalidType          = "T0021"
	ErrAwaitOutsideAsync    = "T0028"
	ErrMissingField         = "T0029"
	ErrDuplicateField       = "T0030"
	ErrInvalidEntry         = "T0031"
	ErrUnresolvedType       = "T0032"
	ErrConstantOverflow     = "T0033"

	// Code generation errors (G prefix)
	ErrUnsupportedConstruct = "G0001"
	ErrToolchain            = "G0002"

	// Warnings (W prefix)
	WarnUnreachableCode = "W0001"
	WarnUnusedVariable  = "W0005"
)
