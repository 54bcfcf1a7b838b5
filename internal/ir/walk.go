package ir

import (
	"github.com/Evge14n/tryzub/internal/tokens"
	"github.com/Evge14n/tryzub/internal/types"
)

// Result returns the value instr defines, or InvalidValue.
func Result(instr Instr) ValueID {
	switch i := instr.(type) {
	case *Const:
		return i.Result
	case *Binary:
		return i.Result
	case *Unary:
		return i.Result
	case *Convert:
		return i.Result
	case *Alloca:
		return i.Result
	case *Load:
		return i.Result
	case *LoadGlobal:
		return i.Result
	case *Call:
		return i.Result
	case *CallBuiltin:
		return i.Result
	case *MakeStruct:
		return i.Result
	case *GetField:
		return i.Result
	case *MakeArray:
		return i.Result
	case *ArrayGet:
		return i.Result
	case *ArrayLen:
		return i.Result
	}
	return InvalidValue
}

// Operands returns pointers to every value instr reads, so passes can both
// inspect and rewrite them.
func Operands(instr Instr) []*ValueID {
	switch i := instr.(type) {
	case *Binary:
		return []*ValueID{&i.Left, &i.Right}
	case *Unary:
		return []*ValueID{&i.X}
	case *Convert:
		return []*ValueID{&i.X}
	case *Load:
		return []*ValueID{&i.Addr}
	case *Store:
		return []*ValueID{&i.Addr, &i.Value}
	case *StoreGlobal:
		return []*ValueID{&i.Value}
	case *Call:
		return ptrs(i.Args)
	case *CallBuiltin:
		return ptrs(i.Args)
	case *MakeStruct:
		return ptrs(i.Fields)
	case *GetField:
		return []*ValueID{&i.Base}
	case *SetField:
		return []*ValueID{&i.Base, &i.Value}
	case *MakeArray:
		return ptrs(i.Elems)
	case *ArrayGet:
		return []*ValueID{&i.Array, &i.Index}
	case *ArraySet:
		return []*ValueID{&i.Array, &i.Index, &i.Value}
	case *ArrayLen:
		return []*ValueID{&i.Array}
	}
	return nil
}

// TermOperands returns the values a terminator reads.
func TermOperands(term Term) []*ValueID {
	switch t := term.(type) {
	case *Return:
		if t.HasValue {
			return []*ValueID{&t.Value}
		}
	case *CondBr:
		return []*ValueID{&t.Cond}
	}
	return nil
}

func ptrs(ids []ValueID) []*ValueID {
	out := make([]*ValueID, len(ids))
	for i := range ids {
		out[i] = &ids[i]
	}
	return out
}

// IsPure reports whether instr can be removed when its result is unused.
// Integer division can fault and field or element reads can hit a nil or
// out-of-range reference, so they stay.
func IsPure(instr Instr) bool {
	switch i := instr.(type) {
	case *Const, *Unary, *Convert, *Alloca, *Load, *LoadGlobal, *MakeStruct, *MakeArray, *ArrayLen:
		return true
	case *Binary:
		if types.IsInteger(i.Operand) {
			return i.Op != tokens.DIV_TOKEN && i.Op != tokens.MOD_TOKEN && i.Op != tokens.EXP_TOKEN
		}
		return true
	}
	return false
}

// Successors lists the blocks term may transfer control to.
func Successors(term Term) []BlockID {
	switch t := term.(type) {
	case *Br:
		return []BlockID{t.Target}
	case *CondBr:
		return []BlockID{t.Then, t.Else}
	}
	return nil
}
