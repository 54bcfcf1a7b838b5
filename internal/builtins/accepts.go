package builtins

import (
	"fmt"

	"github.com/Evge14n/tryzub/internal/types"
)

func printable(args []types.SemType) string {
	for i, t := range args {
		switch t.(type) {
		case *types.IntType, *types.FloatType, *types.BoolType, *types.TextType, *types.UnknownType:
		default:
			return fmt.Sprintf("argument %d: cannot print a value of type %s", i+1, t)
		}
	}
	return ""
}

// oneInteger and oneSequence are called with exactly Arity arguments.
func oneInteger(args []types.SemType) string {
	if !types.IsInteger(args[0]) && !types.IsUnknown(args[0]) {
		return fmt.Sprintf("expects an integer, got %s", args[0])
	}
	return ""
}

func oneSequence(args []types.SemType) string {
	switch args[0].(type) {
	case *types.ArrayType, *types.TextType, *types.UnknownType:
		return ""
	}
	return fmt.Sprintf("expects an array or тхт, got %s", args[0])
}
