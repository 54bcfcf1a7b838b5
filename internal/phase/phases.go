package phase

import "fmt"

// Stage tracks how far a compilation unit has progressed.
//
// Stages advance one at a time:
// - NotStarted -> Lexed -> Parsed -> Checked
// - Checked -> Lowered -> Optimized -> Generated for the IR back ends
// - Checked -> Generated for the bytecode compiler
//
// Transitions are validated by Advance against the Prerequisites map.
type Stage int

const (
	NotStarted Stage = iota // Source loaded, nothing run yet
	Lexed                   // Tokens produced
	Parsed                  // AST built
	Checked                 // Names resolved and types annotated
	Lowered                 // IR built
	Optimized               // Folding and DCE done
	Generated               // Bytecode, closures or C produced
)

// Prerequisites lists the stages each stage may be entered from.
var Prerequisites = map[Stage][]Stage{
	Lexed:     {NotStarted},
	Parsed:    {Lexed},
	Checked:   {Parsed},
	Lowered:   {Checked},
	Optimized: {Lowered},
	Generated: {Checked, Optimized},
}

func (s Stage) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Lexed:
		return "Lexed"
	case Parsed:
		return "Parsed"
	case Checked:
		return "Checked"
	case Lowered:
		return "Lowered"
	case Optimized:
		return "Optimized"
	case Generated:
		return "Generated"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// CanAdvance reports whether a unit at from may move to to.
func CanAdvance(from, to Stage) bool {
	for _, p := range Prerequisites[to] {
		if p == from {
			return true
		}
	}
	return false
}

// Advance returns to, or an error naming the illegal transition.
func Advance(from, to Stage) (Stage, error) {
	if !CanAdvance(from, to) {
		return from, fmt.Errorf("cannot advance from %s to %s", from, to)
	}
	return to, nil
}
