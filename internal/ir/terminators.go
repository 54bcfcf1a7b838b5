package ir

import "github.com/Evge14n/tryzub/internal/source"

// Term is the base interface for IR terminators.
type Term interface {
	irTerm()
	Loc() *source.Location
}

// Return exits the current function.
type Return struct {
	Value    ValueID
	HasValue bool
	Location source.Location
}

func (r *Return) irTerm()               {}
func (r *Return) Loc() *source.Location { return &r.Location }

// Br jumps unconditionally to another block.
type Br struct {
	Target   BlockID
	Location source.Location
}

func (b *Br) irTerm()               {}
func (b *Br) Loc() *source.Location { return &b.Location }

// CondBr jumps based on a boolean condition.
type CondBr struct {
	Cond     ValueID
	Then     BlockID
	Else     BlockID
	Location source.Location
}

func (c *CondBr) irTerm()               {}
func (c *CondBr) Loc() *source.Location { return &c.Location }

// Unreachable marks an invalid control-flow path.
type Unreachable struct {
	Location source.Location
}

func (u *Unreachable) irTerm()               {}
func (u *Unreachable) Loc() *source.Location { return &u.Location }
