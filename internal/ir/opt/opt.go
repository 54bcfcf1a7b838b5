// Package opt runs the IR optimizations: constant folding and dead code
// elimination, repeated until neither changes the function.
package opt

import (
	"github.com/Evge14n/tryzub/internal/ir"
	"github.com/Evge14n/tryzub/internal/runtime"
)

// Stats counts what a run removed or rewrote.
type Stats struct {
	Folded     int
	Branches   int
	Instrs     int
	Blocks     int
	Slots      int
	Iterations int
}

func (s *Stats) add(o Stats) {
	s.Folded += o.Folded
	s.Branches += o.Branches
	s.Instrs += o.Instrs
	s.Blocks += o.Blocks
	s.Slots += o.Slots
}

func (s Stats) changed() bool {
	return s.Folded+s.Branches+s.Instrs+s.Blocks+s.Slots > 0
}

// Module optimizes every function of mod in place. Level 0 leaves the
// module untouched.
func Module(mod *ir.Module, level int) Stats {
	var total Stats
	if level <= 0 || mod == nil {
		return total
	}
	for _, fn := range mod.Functions {
		total.add(Function(fn))
	}
	return total
}

// Function optimizes fn in place until it reaches a fixed point.
func Function(fn *ir.Function) Stats {
	var total Stats
	for {
		var round Stats
		round.add(Fold(fn))
		round.add(DCE(fn))
		total.add(round)
		total.Iterations++
		if !round.changed() {
			return total
		}
	}
}

// Fold replaces operations over constants with their value and turns
// branches on a constant into jumps. Operations that would fault, such as
// an integer division by zero, are left for run time.
func Fold(fn *ir.Function) Stats {
	var stats Stats
	consts := make(map[ir.ValueID]runtime.Value)
	for _, block := range fn.Blocks {
		for _, instr := range block.Instrs {
			if c, ok := instr.(*ir.Const); ok {
				consts[c.Result] = c.Value
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for _, block := range fn.Blocks {
			for i, instr := range block.Instrs {
				folded, ok := fold(instr, consts)
				if !ok {
					continue
				}
				block.Instrs[i] = folded
				consts[folded.Result] = folded.Value
				stats.Folded++
				changed = true
			}
		}
	}

	for _, block := range fn.Blocks {
		br, ok := block.Term.(*ir.CondBr)
		if !ok {
			continue
		}
		cond, known := consts[br.Cond]
		if !known {
			continue
		}
		target := br.Else
		if cond.Bool() {
			target = br.Then
		}
		block.Term = &ir.Br{Target: target, Location: br.Location}
		stats.Branches++
	}
	return stats
}

func fold(instr ir.Instr, consts map[ir.ValueID]runtime.Value) (*ir.Const, bool) {
	switch i := instr.(type) {
	case *ir.Binary:
		a, okA := consts[i.Left]
		b, okB := consts[i.Right]
		if !okA || !okB {
			return nil, false
		}
		v, err := runtime.Binary(i.Op, i.Operand, a, b)
		if err != nil {
			return nil, false
		}
		return &ir.Const{Result: i.Result, Type: i.Type, Value: v, Location: i.Location}, true
	case *ir.Unary:
		x, ok := consts[i.X]
		if !ok {
			return nil, false
		}
		v, err := runtime.Unary(i.Op, i.Type, x)
		if err != nil {
			return nil, false
		}
		return &ir.Const{Result: i.Result, Type: i.Type, Value: v, Location: i.Location}, true
	case *ir.Convert:
		x, ok := consts[i.X]
		if !ok {
			return nil, false
		}
		return &ir.Const{Result: i.Result, Type: i.Type, Value: runtime.Convert(x, i.Type), Location: i.Location}, true
	}
	return nil, false
}

// DCE drops unreachable blocks, slots that are written but never read, and
// pure instructions whose result nothing uses.
func DCE(fn *ir.Function) Stats {
	var stats Stats
	stats.Blocks = removeUnreachable(fn)
	stats.Slots = removeDeadSlots(fn)
	stats.Instrs = removeUnused(fn)
	return stats
}

func removeUnreachable(fn *ir.Function) int {
	entry := fn.Entry()
	if entry == nil {
		return 0
	}
	blocks := fn.BlockMap()
	reached := map[ir.BlockID]bool{entry.ID: true}
	work := []ir.BlockID{entry.ID}
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		for _, succ := range ir.Successors(blocks[id].Term) {
			if !reached[succ] {
				reached[succ] = true
				work = append(work, succ)
			}
		}
	}

	kept := fn.Blocks[:0]
	removed := 0
	for _, b := range fn.Blocks {
		if reached[b.ID] {
			kept = append(kept, b)
		} else {
			removed++
		}
	}
	fn.Blocks = kept
	return removed
}

// removeDeadSlots deletes allocas that are only ever stored to.
func removeDeadSlots(fn *ir.Function) int {
	slots := make(map[ir.ValueID]bool)
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			if a, ok := instr.(*ir.Alloca); ok {
				slots[a.Result] = true
			}
		}
	}
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			if s, ok := instr.(*ir.Store); ok {
				delete(slots, s.Value)
				continue
			}
			if l, ok := instr.(*ir.Load); ok {
				delete(slots, l.Addr)
				continue
			}
			for _, op := range ir.Operands(instr) {
				delete(slots, *op)
			}
		}
		for _, op := range ir.TermOperands(b.Term) {
			delete(slots, *op)
		}
	}
	if len(slots) == 0 {
		return 0
	}

	for _, b := range fn.Blocks {
		kept := b.Instrs[:0]
		for _, instr := range b.Instrs {
			switch i := instr.(type) {
			case *ir.Alloca:
				if slots[i.Result] {
					continue
				}
			case *ir.Store:
				if slots[i.Addr] {
					continue
				}
			}
			kept = append(kept, instr)
		}
		b.Instrs = kept
	}
	return len(slots)
}

func removeUnused(fn *ir.Function) int {
	removed := 0
	for {
		used := make(map[ir.ValueID]bool)
		for _, b := range fn.Blocks {
			for _, instr := range b.Instrs {
				for _, op := range ir.Operands(instr) {
					used[*op] = true
				}
			}
			for _, op := range ir.TermOperands(b.Term) {
				used[*op] = true
			}
		}

		round := 0
		for _, b := range fn.Blocks {
			kept := b.Instrs[:0]
			for _, instr := range b.Instrs {
				if res := ir.Result(instr); res != ir.InvalidValue && !used[res] && ir.IsPure(instr) {
					round++
					continue
				}
				kept = append(kept, instr)
			}
			b.Instrs = kept
		}
		if round == 0 {
			return removed
		}
		removed += round
	}
}
