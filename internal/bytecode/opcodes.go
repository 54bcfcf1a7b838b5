package bytecode

import (
	"fmt"

	"github.com/Evge14n/tryzub/internal/tokens"
	"github.com/Evge14n/tryzub/internal/types"
)

// Opcode selects what an Instruction does. A and B are its operands; their
// meaning is listed per opcode.
type Opcode uint8

const (
	OP_NOP Opcode = iota

	OP_CONST        // push Constants[A]
	OP_LOAD         // push local A
	OP_STORE        // pop into local A
	OP_LOAD_GLOBAL  // push global A
	OP_STORE_GLOBAL // pop into global A
	OP_POP
	OP_DUP  // duplicate the top value
	OP_DUP2 // duplicate the top two values

	// Arithmetic is specialised by operand class. Narrower types are
	// computed in the wider class and truncated with OP_WRAP.
	OP_ADD_I32
	OP_ADD_I64
	OP_ADD_U64
	OP_ADD_F64
	OP_SUB_I32
	OP_SUB_I64
	OP_SUB_U64
	OP_SUB_F64
	OP_MUL_I32
	OP_MUL_I64
	OP_MUL_U64
	OP_MUL_F64
	OP_DIV_I32
	OP_DIV_I64
	OP_DIV_U64
	OP_DIV_F64
	OP_MOD_I32
	OP_MOD_I64
	OP_MOD_U64
	OP_MOD_F64
	OP_POW_I32
	OP_POW_I64
	OP_POW_U64
	OP_POW_F64
	OP_CONCAT
	OP_WRAP    // truncate the top value to Types[A]
	OP_NEG     // negate as Types[A]
	OP_NOT     // logical not
	OP_CONVERT // convert the top value to Types[A]

	OP_EQ
	OP_NE
	OP_LT
	OP_LE
	OP_GT
	OP_GE

	OP_JUMP          // continue at A
	OP_JUMP_IF_FALSE // pop a bool, continue at A when false
	OP_JUMP_IF_TRUE  // pop a bool, continue at A when true

	// Range loops keep the variable, bound and step in locals A, A+1, A+2.
	// B is 1 for an inclusive bound.
	OP_FOR_INIT // pop from, to, step into the loop slots; push whether to enter
	OP_FOR_NEXT // step the variable; push whether to continue

	OP_CALL         // call Functions[A] with B arguments
	OP_CALL_ASYNC   // push a pending future for Functions[A] with B arguments
	OP_CALL_BUILTIN // call builtin A with B arguments
	OP_RETURN       // return the top value
	OP_AWAIT        // replace a future with its result, suspending until it completes

	OP_MAKE_STRUCT // pop B fields in declaration order into a new Types[A]
	OP_GET_FIELD   // replace a struct with its field A
	OP_SET_FIELD   // pop value and struct, store into field A
	OP_MAKE_ARRAY  // pop A elements into a new array
	OP_INDEX       // pop index and array, push the element
	OP_SET_INDEX   // pop value, index and array, store the element
	OP_LEN         // replace an array with its length

	// OP_PARALLEL runs Functions[A] once per iteration of a range loop on
	// the worker pool. It pops from, to, step and then one value per
	// captured variable; B is 1 for an inclusive bound.
	OP_PARALLEL

	numOpcodes
)

var opNames = [...]string{
	OP_NOP:           "nop",
	OP_CONST:         "const",
	OP_LOAD:          "load",
	OP_STORE:         "store",
	OP_LOAD_GLOBAL:   "load_global",
	OP_STORE_GLOBAL:  "store_global",
	OP_POP:           "pop",
	OP_DUP:           "dup",
	OP_DUP2:          "dup2",
	OP_ADD_I32:       "add.i32",
	OP_ADD_I64:       "add.i64",
	OP_ADD_U64:       "add.u64",
	OP_ADD_F64:       "add.f64",
	OP_SUB_I32:       "sub.i32",
	OP_SUB_I64:       "sub.i64",
	OP_SUB_U64:       "sub.u64",
	OP_SUB_F64:       "sub.f64",
	OP_MUL_I32:       "mul.i32",
	OP_MUL_I64:       "mul.i64",
	OP_MUL_U64:       "mul.u64",
	OP_MUL_F64:       "mul.f64",
	OP_DIV_I32:       "div.i32",
	OP_DIV_I64:       "div.i64",
	OP_DIV_U64:       "div.u64",
	OP_DIV_F64:       "div.f64",
	OP_MOD_I32:       "mod.i32",
	OP_MOD_I64:       "mod.i64",
	OP_MOD_U64:       "mod.u64",
	OP_MOD_F64:       "mod.f64",
	OP_POW_I32:       "pow.i32",
	OP_POW_I64:       "pow.i64",
	OP_POW_U64:       "pow.u64",
	OP_POW_F64:       "pow.f64",
	OP_CONCAT:        "concat",
	OP_WRAP:          "wrap",
	OP_NEG:           "neg",
	OP_NOT:           "not",
	OP_CONVERT:       "convert",
	OP_EQ:            "eq",
	OP_NE:            "ne",
	OP_LT:            "lt",
	OP_LE:            "le",
	OP_GT:            "gt",
	OP_GE:            "ge",
	OP_JUMP:          "jump",
	OP_JUMP_IF_FALSE: "jump_if_false",
	OP_JUMP_IF_TRUE:  "jump_if_true",
	OP_FOR_INIT:      "for_init",
	OP_FOR_NEXT:      "for_next",
	OP_CALL:          "call",
	OP_CALL_ASYNC:    "call_async",
	OP_CALL_BUILTIN:  "call_builtin",
	OP_RETURN:        "return",
	OP_AWAIT:         "await",
	OP_MAKE_STRUCT:   "make_struct",
	OP_GET_FIELD:     "get_field",
	OP_SET_FIELD:     "set_field",
	OP_MAKE_ARRAY:    "make_array",
	OP_INDEX:         "index",
	OP_SET_INDEX:     "set_index",
	OP_LEN:           "len",
	OP_PARALLEL:      "parallel",
}

func (op Opcode) String() string {
	if op < numOpcodes {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// Class is the operand class an arithmetic opcode is specialised for.
type Class uint8

const (
	ClassI32 Class = iota
	ClassI64
	ClassU64
	ClassF64
)

// arithmetic opcodes are laid out as one run of four classes per operator.
var arithBase = map[tokens.TOKEN]Opcode{
	tokens.PLUS_TOKEN:  OP_ADD_I32,
	tokens.MINUS_TOKEN: OP_SUB_I32,
	tokens.MUL_TOKEN:   OP_MUL_I32,
	tokens.DIV_TOKEN:   OP_DIV_I32,
	tokens.MOD_TOKEN:   OP_MOD_I32,
	tokens.EXP_TOKEN:   OP_POW_I32,
}

var compareOps = map[tokens.TOKEN]Opcode{
	tokens.DOUBLE_EQUAL_TOKEN:  OP_EQ,
	tokens.NOT_EQUAL_TOKEN:     OP_NE,
	tokens.LESS_TOKEN:          OP_LT,
	tokens.LESS_EQUAL_TOKEN:    OP_LE,
	tokens.GREATER_TOKEN:       OP_GT,
	tokens.GREATER_EQUAL_TOKEN: OP_GE,
}

// IsArith reports whether op is a class-specialised arithmetic opcode.
func (op Opcode) IsArith() bool {
	return op >= OP_ADD_I32 && op <= OP_POW_F64
}

// Class returns the operand class of an arithmetic opcode.
func (op Opcode) Class() Class {
	return Class((op - OP_ADD_I32) % 4)
}

var operators = func() (ops [numOpcodes]tokens.TOKEN) {
	for sym, base := range arithBase {
		for c := range Opcode(4) {
			ops[base+c] = sym
		}
	}
	for sym, op := range compareOps {
		ops[op] = sym
	}
	return ops
}()

// Operator returns the source operator of an arithmetic or comparison opcode.
func (op Opcode) Operator() tokens.TOKEN {
	if op < numOpcodes {
		return operators[op]
	}
	return ""
}

// Arith returns the arithmetic opcode for operator sym on class c.
func Arith(sym tokens.TOKEN, c Class) (Opcode, bool) {
	base, ok := arithBase[sym]
	if !ok {
		return OP_NOP, false
	}
	return base + Opcode(c), true
}

// Compare returns the comparison opcode for operator sym.
func Compare(sym tokens.TOKEN) (Opcode, bool) {
	op, ok := compareOps[sym]
	return op, ok
}

// Type is the operand type arithmetic of class c is computed in.
func (c Class) Type() types.SemType {
	switch c {
	case ClassI32:
		return types.TypeI32
	case ClassU64:
		return types.TypeU64
	case ClassF64:
		return types.TypeF64
	}
	return types.TypeI64
}

// ClassOf picks the arithmetic class for operands of type t and reports
// whether results must be wrapped back to t afterwards.
func ClassOf(t types.SemType) (c Class, wrap bool) {
	switch t := t.(type) {
	case *types.IntType:
		switch {
		case t.Signed && t.Bits == 32:
			return ClassI32, false
		case t.Signed:
			return ClassI64, t.Bits < 64
		default:
			return ClassU64, t.Bits < 64
		}
	case *types.FloatType:
		return ClassF64, t.Bits < 64
	}
	return ClassI64, false
}
