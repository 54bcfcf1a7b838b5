package vm

import (
	"context"
	"errors"

	"github.com/Evge14n/tryzub/internal/builtins"
	"github.com/Evge14n/tryzub/internal/bytecode"
	"github.com/Evge14n/tryzub/internal/runtime"
	"github.com/Evge14n/tryzub/internal/tokens"
	"github.com/Evge14n/tryzub/internal/types"
)

// frame is one activation. Its operands live on the thread stack above base.
type frame struct {
	fn     *bytecode.Function
	pc     int
	locals []runtime.Value
	base   int
}

// thread is a call stack. The root task, every async task and every
// parallel iteration run on a thread of their own. Every value held in a
// local or on the stack owns one reference.
type thread struct {
	m      *Machine
	ctx    context.Context
	frames []frame
	stack  []runtime.Value
}

func (m *Machine) newThread(ctx context.Context) *thread {
	return &thread{m: m, ctx: ctx, stack: make([]runtime.Value, 0, 64)}
}

// enter pushes a frame for fn, taking ownership of args.
func (th *thread) enter(fn *bytecode.Function, args []runtime.Value) {
	locals := make([]runtime.Value, fn.Locals)
	copy(locals, args)
	th.frames = append(th.frames, frame{fn: fn, locals: locals, base: len(th.stack)})
}

// leave pops the top frame, releasing its locals and operands.
func (th *thread) leave() {
	fr := &th.frames[len(th.frames)-1]
	runtime.ReleaseAll(fr.locals)
	runtime.ReleaseAll(th.stack[fr.base:])
	clear(th.stack[fr.base:])
	th.stack = th.stack[:fr.base]
	th.frames = th.frames[:len(th.frames)-1]
}

// unwind turns err into a fault carrying every active frame, innermost
// first, and releases them. Cancellation passes through untouched.
func (th *thread) unwind(err error) error {
	var f *runtime.Fault
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		f = runtime.NewFault(err)
	}
	for len(th.frames) > 0 {
		fr := &th.frames[len(th.frames)-1]
		if f != nil {
			line := 0
			if fr.pc > 0 {
				line = fr.fn.Lines[fr.pc-1]
			}
			f.Push(fr.fn.Name, line)
		}
		th.leave()
	}
	if f == nil {
		return err
	}
	return f
}

// resume adapts the thread to the scheduler's task interface.
func (th *thread) resume(*runtime.Scheduler) (*runtime.Future, runtime.Value, error) {
	return th.exec()
}

func (th *thread) push(v runtime.Value) { th.stack = append(th.stack, v) }

func (th *thread) pop() runtime.Value {
	n := len(th.stack) - 1
	v := th.stack[n]
	th.stack[n] = runtime.Void
	th.stack = th.stack[:n]
	return v
}

func (th *thread) top() runtime.Value { return th.stack[len(th.stack)-1] }

// popN moves the top n values into a new slice, bottom first.
func (th *thread) popN(n int) []runtime.Value {
	at := len(th.stack) - n
	out := make([]runtime.Value, n)
	copy(out, th.stack[at:])
	clear(th.stack[at:])
	th.stack = th.stack[:at]
	return out
}

// exec runs until the bottom frame returns or an await finds its future
// pending. A suspended thread re-executes the await when resumed.
func (th *thread) exec() (wait *runtime.Future, result runtime.Value, err error) {
	m := th.m
	mod := m.mod
	for {
		fr := &th.frames[len(th.frames)-1]
		ins := fr.fn.Code[fr.pc]
		fr.pc++

		switch op := ins.Op; op {
		case bytecode.OP_NOP:
		case bytecode.OP_CONST:
			th.push(mod.Constants[ins.A])
		case bytecode.OP_LOAD:
			v := fr.locals[ins.A]
			runtime.Retain(v)
			th.push(v)
		case bytecode.OP_STORE:
			old := fr.locals[ins.A]
			fr.locals[ins.A] = th.pop()
			runtime.Release(old)
		case bytecode.OP_LOAD_GLOBAL:
			v := m.globals[ins.A]
			runtime.Retain(v)
			th.push(v)
		case bytecode.OP_STORE_GLOBAL:
			old := m.globals[ins.A]
			m.globals[ins.A] = th.pop()
			runtime.Release(old)
		case bytecode.OP_POP:
			runtime.Release(th.pop())
		case bytecode.OP_DUP:
			v := th.top()
			runtime.Retain(v)
			th.push(v)
		case bytecode.OP_DUP2:
			n := len(th.stack)
			a, b := th.stack[n-2], th.stack[n-1]
			runtime.Retain(a)
			runtime.Retain(b)
			th.push(a)
			th.push(b)

		case bytecode.OP_CONCAT:
			b, a := th.pop(), th.pop()
			th.push(runtime.Text(a.Text() + b.Text()))
		case bytecode.OP_WRAP:
			th.push(runtime.Wrap(th.pop(), mod.Types[ins.A]))
		case bytecode.OP_NEG:
			var v runtime.Value
			v, err = runtime.Unary(tokens.MINUS_TOKEN, mod.Types[ins.A], th.pop())
			th.push(v)
		case bytecode.OP_NOT:
			var v runtime.Value
			v, err = runtime.Unary(tokens.NOT_TOKEN, types.TypeBool, th.pop())
			th.push(v)
		case bytecode.OP_CONVERT:
			th.push(runtime.Convert(th.pop(), mod.Types[ins.A]))
		case bytecode.OP_EQ, bytecode.OP_NE, bytecode.OP_LT, bytecode.OP_LE, bytecode.OP_GT, bytecode.OP_GE:
			b, a := th.pop(), th.pop()
			var v runtime.Value
			v, err = runtime.Binary(op.Operator(), nil, a, b)
			th.push(v)

		case bytecode.OP_JUMP:
			if int(ins.A) < fr.pc {
				err = th.ctx.Err()
			}
			fr.pc = int(ins.A)
		case bytecode.OP_JUMP_IF_FALSE:
			if !th.pop().Bool() {
				fr.pc = int(ins.A)
			}
		case bytecode.OP_JUMP_IF_TRUE:
			if th.pop().Bool() {
				if int(ins.A) < fr.pc {
					err = th.ctx.Err()
				}
				fr.pc = int(ins.A)
			}
		case bytecode.OP_FOR_INIT:
			step, to, from := th.pop(), th.pop(), th.pop()
			fr.locals[ins.A], fr.locals[ins.A+1], fr.locals[ins.A+2] = from, to, step
			th.push(runtime.Bool(runtime.InRange(from, to, step, ins.B == 1)))
		case bytecode.OP_FOR_NEXT:
			next, ok := runtime.Advance(fr.locals[ins.A], fr.locals[ins.A+1], fr.locals[ins.A+2], ins.B == 1)
			fr.locals[ins.A] = next
			th.push(runtime.Bool(ok))

		case bytecode.OP_CALL:
			if len(th.frames) >= m.maxDepth {
				err = ErrStackOverflow
				break
			}
			if err = th.ctx.Err(); err != nil {
				break
			}
			th.enter(mod.Functions[ins.A], th.popN(int(ins.B)))
		case bytecode.OP_CALL_ASYNC:
			th.push(th.callAsync(mod.Functions[ins.A], th.popN(int(ins.B))))
		case bytecode.OP_CALL_BUILTIN:
			var v runtime.Value
			v, err = th.callBuiltin(builtins.ID(ins.A), th.popN(int(ins.B)))
			th.push(v)
		case bytecode.OP_RETURN:
			v := th.pop()
			th.leave()
			if len(th.frames) == 0 {
				return nil, v, nil
			}
			th.push(v)
		case bytecode.OP_AWAIT:
			f := th.top().Future()
			if f == nil {
				err = runtime.ErrNilReference
				break
			}
			if !f.Done() {
				fr.pc--
				return f, runtime.Void, nil
			}
			fv := th.pop()
			v, ferr := f.Result()
			runtime.Retain(v)
			runtime.Release(fv)
			if ferr != nil {
				runtime.Release(v)
				err = ferr
				break
			}
			th.push(v)

		case bytecode.OP_MAKE_STRUCT:
			st := mod.Types[ins.A].(*types.StructType)
			th.push(m.heap.NewStruct(st, th.popN(int(ins.B))))
		case bytecode.OP_GET_FIELD:
			base := th.pop()
			o := base.Object()
			if o == nil {
				err = runtime.ErrNilReference
				break
			}
			v := o.Fields[ins.A]
			runtime.Retain(v)
			runtime.Release(base)
			th.push(v)
		case bytecode.OP_SET_FIELD:
			v, base := th.pop(), th.pop()
			o := base.Object()
			if o == nil {
				runtime.Release(v)
				err = runtime.ErrNilReference
				break
			}
			old := o.Fields[ins.A]
			o.Fields[ins.A] = v
			runtime.Release(old)
			runtime.Release(base)
		case bytecode.OP_MAKE_ARRAY:
			th.push(m.heap.NewArray(th.popN(int(ins.A))))
		case bytecode.OP_INDEX:
			idx, arr := th.pop(), th.pop()
			var n int
			if n, err = runtime.Index(arr, idx); err != nil {
				runtime.Release(arr)
				break
			}
			v := arr.Fields()[n]
			runtime.Retain(v)
			runtime.Release(arr)
			th.push(v)
		case bytecode.OP_SET_INDEX:
			v, idx, arr := th.pop(), th.pop(), th.pop()
			var n int
			if n, err = runtime.Index(arr, idx); err != nil {
				runtime.Release(v)
				runtime.Release(arr)
				break
			}
			elems := arr.Fields()
			old := elems[n]
			elems[n] = v
			runtime.Release(old)
			runtime.Release(arr)
		case bytecode.OP_LEN:
			v := th.pop()
			th.push(runtime.Length(v))
			runtime.Release(v)

		case bytecode.OP_PARALLEL:
			err = th.parallel(mod.Functions[ins.A], ins.B == 1)

		default:
			if !op.IsArith() {
				return nil, runtime.Void, th.unwind(errors.New("invalid opcode " + op.String()))
			}
			b, a := th.pop(), th.pop()
			var v runtime.Value
			v, err = runtime.Binary(op.Operator(), op.Class().Type(), a, b)
			th.push(v)
		}

		if err != nil {
			return nil, runtime.Void, th.unwind(err)
		}
	}
}

// callAsync returns a future that runs fn on its own thread once awaited.
// Until then the future owns args.
func (th *thread) callAsync(fn *bytecode.Function, args []runtime.Value) runtime.Value {
	m := th.m
	ctx := th.ctx
	var f *runtime.Future
	f = runtime.NewFuture(fn.Name, func(s *runtime.Scheduler) {
		child := m.newThread(ctx)
		child.enter(fn, args)
		s.Spawn(f, child.resume)
	}, func() {
		runtime.ReleaseAll(args)
	})
	return m.heap.NewFuture(f)
}

// callBuiltin runs a synchronous builtin or wraps an async one in a future.
// It consumes args.
func (th *thread) callBuiltin(id builtins.ID, args []runtime.Value) (runtime.Value, error) {
	defer runtime.ReleaseAll(args)
	if id == builtins.ReadFile {
		path := args[0].Text()
		var f *runtime.Future
		f = runtime.NewFuture(builtins.Get(id).Name, func(s *runtime.Scheduler) {
			s.Offload(f, func() (runtime.Value, error) {
				return runtime.ReadFile(path)
			})
		}, nil)
		return th.m.heap.NewFuture(f), nil
	}
	return runtime.CallBuiltin(th.m.out, id, args)
}

// parallel pops the loop bounds and captured values and runs fn once per
// iteration on the worker pool. Each iteration gets its own thread and its
// own references to the captured values.
func (th *thread) parallel(fn *bytecode.Function, inclusive bool) error {
	m := th.m
	captured := th.popN(fn.Params - 1)
	step, to, from := th.pop(), th.pop(), th.pop()
	defer runtime.ReleaseAll(captured)

	for _, v := range captured {
		runtime.Share(v)
	}
	m.shareGlobals()

	return m.pool.For(th.ctx, from, to, step, inclusive, func(ctx context.Context, i runtime.Value) error {
		args := make([]runtime.Value, 0, len(captured)+1)
		args = append(args, i)
		for _, v := range captured {
			runtime.Retain(v)
			args = append(args, v)
		}
		v, err := m.runSync(ctx, fn, args)
		runtime.Release(v)
		return err
	})
}
