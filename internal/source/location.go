package source

import (
	"fmt"
	"os"
	"strings"
)

// Location is a half-open span [Start, End) of a source file.
type Location struct {
	Filename string
	Start    Position
	End      Position
}

// NewLocation creates a location spanning start to end.
func NewLocation(filename string, start, end Position) Location {
	return Location{Filename: filename, Start: start, End: end}
}

// Span joins two locations into one covering both.
func Span(from, to Location) Location {
	return Location{Filename: from.Filename, Start: from.Start, End: to.End}
}

// Offset is the byte offset of the first byte of the span.
func (l Location) Offset() int { return l.Start.Index }

// Len is the byte length of the span.
func (l Location) Len() int { return l.End.Index - l.Start.Index }

// IsValid reports whether the location points somewhere real.
func (l Location) IsValid() bool {
	return l.Start.Line > 0 && l.End.Index >= l.Start.Index
}

// Contains checks if the given position is within this location.
func (l Location) Contains(pos Position) bool {
	return pos.Index >= l.Start.Index && pos.Index < l.End.Index
}

func (l Location) String() string {
	if !l.IsValid() {
		return "location(unknown)"
	}
	return fmt.Sprintf("%s:%d:%d", l.Filename, l.Start.Line, l.Start.Column)
}

// Text extracts the spanned bytes from src. It returns "" when the span does
// not fit inside src.
func (l Location) Text(src []byte) string {
	if l.Start.Index < 0 || l.End.Index > len(src) || l.Start.Index > l.End.Index {
		return ""
	}
	return string(src[l.Start.Index:l.End.Index])
}

// SplitLines splits source text into lines without their terminators.
func SplitLines(src []byte) []string {
	if len(src) == 0 {
		return []string{}
	}
	text := strings.ReplaceAll(string(src), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// GetSourceLines reads a file and splits it into lines.
func GetSourceLines(filepath string) ([]string, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return SplitLines(content), nil
}
