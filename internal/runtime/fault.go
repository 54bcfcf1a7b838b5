package runtime

import (
	"errors"
	"fmt"
	"strings"
)

// FaultKind classifies a runtime failure.
type FaultKind int

const (
	FaultInternal FaultKind = iota
	FaultDivisionByZero
	FaultIndexOutOfBounds
	FaultNilReference
	FaultStackOverflow
	FaultIO
)

var faultNames = map[FaultKind]string{
	FaultInternal:         "internal error",
	FaultDivisionByZero:   "division by zero",
	FaultIndexOutOfBounds: "index out of bounds",
	FaultNilReference:     "nil reference",
	FaultStackOverflow:    "stack overflow",
	FaultIO:               "i/o error",
}

var faultCodes = map[FaultKind]string{
	FaultInternal:         "R0000",
	FaultDivisionByZero:   "R0001",
	FaultIndexOutOfBounds: "R0002",
	FaultNilReference:     "R0003",
	FaultStackOverflow:    "R0004",
	FaultIO:               "R0005",
}

func (k FaultKind) String() string { return faultNames[k] }

// Code is the diagnostic code reported for the fault kind.
func (k FaultKind) Code() string { return faultCodes[k] }

// TraceFrame is one activation in a fault trace.
type TraceFrame struct {
	Function string
	Line     int
}

func (f TraceFrame) String() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s (line %d)", f.Function, f.Line)
	}
	return f.Function
}

// Fault is a runtime failure together with the chain of active calls,
// innermost first.
type Fault struct {
	Kind    FaultKind
	Message string
	Trace   []TraceFrame
	Err     error
}

// NewFault classifies err by the sentinel it wraps.
func NewFault(err error) *Fault {
	var existing *Fault
	if errors.As(err, &existing) {
		return existing
	}
	kind := FaultInternal
	switch {
	case errors.Is(err, ErrDivisionByZero):
		kind = FaultDivisionByZero
	case errors.Is(err, ErrIndexOutOfBounds):
		kind = FaultIndexOutOfBounds
	case errors.Is(err, ErrNilReference):
		kind = FaultNilReference
	case errors.Is(err, ErrStackOverflow):
		kind = FaultStackOverflow
	case errors.Is(err, ErrIO):
		kind = FaultIO
	}
	return &Fault{Kind: kind, Message: err.Error(), Err: err}
}

// Push appends the caller frame while the fault unwinds.
func (f *Fault) Push(function string, line int) {
	f.Trace = append(f.Trace, TraceFrame{Function: function, Line: line})
}

// traceHead and traceTail bound how much of a deep trace Error prints.
const (
	traceHead = 16
	traceTail = 4
)

func (f *Fault) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "runtime fault [%s]: %s", f.Kind.Code(), f.Message)
	for i, frame := range f.Trace {
		if n := len(f.Trace); n > traceHead+traceTail && i >= traceHead && i < n-traceTail {
			if i == traceHead {
				fmt.Fprintf(&b, "\n    ... %d more frames", n-traceHead-traceTail)
			}
			continue
		}
		b.WriteString("\n    at ")
		b.WriteString(frame.String())
	}
	return b.String()
}

func (f *Fault) Unwrap() error { return f.Err }

// AsFault extracts a *Fault from an error chain.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	ok := errors.As(err, &f)
	return f, ok
}
