package jit

import (
	"fmt"

	"github.com/Evge14n/tryzub/internal/ir"
	"github.com/Evge14n/tryzub/internal/runtime"
)

func (p *Program) compileFunction(irfn *ir.Function) error {
	fn := p.funcs[irfn.Name]
	fn.nregs = irfn.NumValues()
	for _, param := range irfn.Params {
		fn.params = append(fn.params, param.ID)
	}

	index := make(map[ir.BlockID]int, len(irfn.Blocks))
	for i, b := range irfn.Blocks {
		index[b.ID] = i
	}

	fn.blocks = make([]block, len(irfn.Blocks))
	for i, b := range irfn.Blocks {
		out := &fn.blocks[i]
		for _, instr := range b.Instrs {
			o, err := p.compileInstr(instr)
			if err != nil {
				return fmt.Errorf("%s: %w", irfn.Name, err)
			}
			out.ops = append(out.ops, o)
			out.lines = append(out.lines, instr.Loc().Start.Line)
		}
		out.term = compileTerm(b.Term, index)
		if b.Term != nil {
			out.line = b.Term.Loc().Start.Line
		}
	}
	return nil
}

func (p *Program) compileInstr(instr ir.Instr) (op, error) {
	switch i := instr.(type) {
	case *ir.Const:
		r, v := i.Result, i.Value
		return func(_ *machine, regs []runtime.Value) error {
			regs[r] = v
			return nil
		}, nil
	case *ir.Binary:
		r, a, b, o, t := i.Result, i.Left, i.Right, i.Op, i.Operand
		return func(_ *machine, regs []runtime.Value) error {
			v, err := runtime.Binary(o, t, regs[a], regs[b])
			regs[r] = v
			return err
		}, nil
	case *ir.Unary:
		r, x, o, t := i.Result, i.X, i.Op, i.Type
		return func(_ *machine, regs []runtime.Value) error {
			v, err := runtime.Unary(o, t, regs[x])
			regs[r] = v
			return err
		}, nil
	case *ir.Convert:
		r, x, t := i.Result, i.X, i.Type
		return func(_ *machine, regs []runtime.Value) error {
			regs[r] = runtime.Convert(regs[x], t)
			return nil
		}, nil
	case *ir.Alloca:
		r, zero := i.Result, runtime.Zero(i.Type)
		return func(_ *machine, regs []runtime.Value) error {
			regs[r] = zero
			return nil
		}, nil
	case *ir.Load:
		r, addr := i.Result, i.Addr
		return func(_ *machine, regs []runtime.Value) error {
			regs[r] = regs[addr]
			return nil
		}, nil
	case *ir.Store:
		addr, v := i.Addr, i.Value
		return func(_ *machine, regs []runtime.Value) error {
			regs[addr] = regs[v]
			return nil
		}, nil
	case *ir.LoadGlobal:
		r, g := i.Result, i.Global
		return func(m *machine, regs []runtime.Value) error {
			regs[r] = m.globals[g]
			return nil
		}, nil
	case *ir.StoreGlobal:
		g, v := i.Global, i.Value
		return func(m *machine, regs []runtime.Value) error {
			m.globals[g] = regs[v]
			return nil
		}, nil
	case *ir.Call:
		target, ok := p.funcs[i.Target]
		if !ok {
			return nil, fmt.Errorf("call to unknown function %q", i.Target)
		}
		r, args := i.Result, i.Args
		return func(m *machine, regs []runtime.Value) error {
			v, err := m.call(target, gather(regs, args))
			regs[r] = v
			return err
		}, nil
	case *ir.CallBuiltin:
		r, id, args := i.Result, i.Builtin, i.Args
		return func(m *machine, regs []runtime.Value) error {
			v, err := runtime.CallBuiltin(m.out, id, gather(regs, args))
			regs[r] = v
			return err
		}, nil
	case *ir.MakeStruct:
		r, st, fields := i.Result, i.Type, i.Fields
		return func(_ *machine, regs []runtime.Value) error {
			regs[r] = untracked.NewStruct(st, gather(regs, fields))
			return nil
		}, nil
	case *ir.GetField:
		r, base, idx := i.Result, i.Base, i.Index
		return func(_ *machine, regs []runtime.Value) error {
			o := regs[base].Object()
			if o == nil {
				return runtime.ErrNilReference
			}
			regs[r] = o.Fields[idx]
			return nil
		}, nil
	case *ir.SetField:
		base, idx, v := i.Base, i.Index, i.Value
		return func(_ *machine, regs []runtime.Value) error {
			o := regs[base].Object()
			if o == nil {
				return runtime.ErrNilReference
			}
			o.Fields[idx] = regs[v]
			return nil
		}, nil
	case *ir.MakeArray:
		r, elems := i.Result, i.Elems
		return func(_ *machine, regs []runtime.Value) error {
			regs[r] = untracked.NewArray(gather(regs, elems))
			return nil
		}, nil
	case *ir.ArrayGet:
		r, arr, index := i.Result, i.Array, i.Index
		return func(_ *machine, regs []runtime.Value) error {
			n, err := runtime.Index(regs[arr], regs[index])
			if err != nil {
				return err
			}
			regs[r] = regs[arr].Fields()[n]
			return nil
		}, nil
	case *ir.ArraySet:
		arr, index, v := i.Array, i.Index, i.Value
		return func(_ *machine, regs []runtime.Value) error {
			n, err := runtime.Index(regs[arr], regs[index])
			if err != nil {
				return err
			}
			regs[arr].Fields()[n] = regs[v]
			return nil
		}, nil
	case *ir.ArrayLen:
		r, arr := i.Result, i.Array
		return func(_ *machine, regs []runtime.Value) error {
			regs[r] = runtime.Int(int64(len(regs[arr].Fields())))
			return nil
		}, nil
	}
	return nil, fmt.Errorf("unsupported instruction %T", instr)
}

func compileTerm(t ir.Term, index map[ir.BlockID]int) term {
	switch t := t.(type) {
	case *ir.Return:
		if !t.HasValue {
			return func(*machine, []runtime.Value) (int, runtime.Value, error) {
				return -1, runtime.Void, nil
			}
		}
		v := t.Value
		return func(_ *machine, regs []runtime.Value) (int, runtime.Value, error) {
			return -1, regs[v], nil
		}
	case *ir.Br:
		next := index[t.Target]
		return func(*machine, []runtime.Value) (int, runtime.Value, error) {
			return next, runtime.Void, nil
		}
	case *ir.CondBr:
		cond, then, els := t.Cond, index[t.Then], index[t.Else]
		return func(_ *machine, regs []runtime.Value) (int, runtime.Value, error) {
			if regs[cond].Bool() {
				return then, runtime.Void, nil
			}
			return els, runtime.Void, nil
		}
	}
	return func(*machine, []runtime.Value) (int, runtime.Value, error) {
		return -1, runtime.Void, errUnreachable
	}
}

func gather(regs []runtime.Value, ids []ir.ValueID) []runtime.Value {
	out := make([]runtime.Value, len(ids))
	for i, id := range ids {
		out[i] = regs[id]
	}
	return out
}
