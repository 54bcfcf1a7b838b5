package runtime

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/Evge14n/tryzub/internal/builtins"
)

// CallBuiltin runs a synchronous builtin. The arguments stay owned by the
// caller.
func CallBuiltin(w io.Writer, id builtins.ID, args []Value) (Value, error) {
	switch id {
	case builtins.Print:
		return Void, Print(w, args)
	case builtins.IntToText:
		return Text(args[0].String()), nil
	case builtins.FloatToText:
		return Text(FormatFloat(args[0].Float())), nil
	case builtins.Length:
		return Length(args[0]), nil
	}
	return Void, fmt.Errorf("builtin %q cannot be called synchronously", builtins.Get(id).Name)
}

// Print writes the arguments separated by spaces and ends the line.
func Print(w io.Writer, args []Value) error {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	_, err := io.WriteString(w, strings.Join(parts, " ")+"\n")
	return err
}

// Length counts the elements of an array or the characters of a text.
func Length(v Value) Value {
	if v.Kind == KindText {
		return Int(int64(utf8.RuneCountInString(v.Text())))
	}
	return Int(int64(len(v.Fields())))
}

// ReadFile loads a whole file as text. It blocks and is meant to run on a
// worker, off the scheduler.
func ReadFile(path string) (Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Void, fmt.Errorf("%w: %w", ErrIO, err)
	}
	return Text(string(data)), nil
}
