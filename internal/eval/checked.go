// Copyright (c) 2024 The catc Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package eval

import (
	"errors"
	"fmt"
	"io"

	"github.com/johnflanigan/catc/internal/ast"
	"github.com/johnflanigan/catc/internal/checked"
	"github.com/johnflanigan/catc/internal/ident"
)

// errBreak unwinds from a break up to the nearest enclosing loop. The
// checker guarantees one exists, so it never escapes EvalChecked.
var errBreak = errors.New("break")

type checkedEvaluator struct {
	funcs map[ident.Label]*checked.Function
	out   io.Writer
}

// EvalChecked runs prog's main function, returning its result value (nil
// for a void main). Print-routine output goes to out. Runtime-divergent
// conditions the compiler does not check -- division by zero, an
// out-of-bounds subscript -- surface as errors here instead of crashing,
// since the evaluator's whole job is to be a well-behaved oracle.
func EvalChecked(prog *checked.Program, out io.Writer) (Value, error) {
	ev := &checkedEvaluator{
		funcs: make(map[ident.Label]*checked.Function, len(prog.Functions)),
		out:   out,
	}
	for _, fn := range prog.Functions {
		ev.funcs[fn.Label] = fn
	}
	return ev.call(prog.Main, nil)
}

func (ev *checkedEvaluator) call(label ident.Label, args []Value) (Value, error) {
	if label.IsWellKnown() && label != ident.LMain {
		return ev.callRuntime(label, args)
	}
	fn, ok := ev.funcs[label]
	if !ok {
		return nil, fmt.Errorf("call to unknown function %v", label)
	}
	if len(args) != len(fn.Type.Parameters) {
		return nil, fmt.Errorf("function %s: expected %d arguments, got %d", fn.Name, len(fn.Type.Parameters), len(args))
	}
	env := make(map[ident.Symbol]Value, len(args))
	for i, p := range fn.Type.Parameters {
		env[p.Symbol] = args[i]
	}
	return ev.evalExp(env, fn.Body)
}

func (ev *checkedEvaluator) callRuntime(label ident.Label, args []Value) (Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("runtime routine %v: expected 1 argument, got %d", label, len(args))
	}
	switch label {
	case ident.LPrintInt:
		n, err := asInt(args[0])
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(ev.out, "%d", n)
	case ident.LPrintLineInt:
		n, err := asInt(args[0])
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(ev.out, "%d\n", n)
	case ident.LPrintString:
		fmt.Fprintf(ev.out, "%s", args[0].(Str))
	case ident.LPrintLineString:
		fmt.Fprintf(ev.out, "%s\n", args[0].(Str))
	default:
		return nil, fmt.Errorf("call to unexpected runtime label %v", label)
	}
	return nil, nil
}

func (ev *checkedEvaluator) evalExp(env map[ident.Symbol]Value, e checked.Exp) (Value, error) {
	switch e := e.(type) {
	case *checked.IntLitExp:
		return Int(e.Value), nil

	case *checked.StringLitExp:
		return Str(e.Value), nil

	case *checked.LValueExp:
		return ev.evalLValueRead(env, e.LValue)

	case *checked.SeqExp:
		var last Value
		for _, sub := range e.Exps {
			v, err := ev.evalExp(env, sub)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil

	case *checked.NegateExp:
		v, err := ev.evalInt(env, e.Operand)
		if err != nil {
			return nil, err
		}
		return Int(-v), nil

	case *checked.InfixExp:
		return ev.evalInfix(env, e)

	case *checked.ArrayCreateExp:
		n, err := ev.evalInt(env, e.Length)
		if err != nil {
			return nil, err
		}
		init, err := ev.evalExp(env, e.Init)
		if err != nil {
			return nil, err
		}
		return newRef(n, init)

	case *checked.RecordCreateExp:
		ref, err := newRef(int64(len(e.Fields)), Int(0))
		if err != nil {
			return nil, err
		}
		for i, f := range e.Fields {
			v, err := ev.evalExp(env, f.Exp)
			if err != nil {
				return nil, err
			}
			ref.Cells[i] = v
		}
		return ref, nil

	case *checked.AssignExp:
		v, err := ev.evalExp(env, e.Right)
		if err != nil {
			return nil, err
		}
		return nil, ev.evalLValueWrite(env, e.Left, v)

	case *checked.IfExp:
		cond, err := ev.evalInt(env, e.Cond)
		if err != nil {
			return nil, err
		}
		if cond != 0 {
			return ev.evalExp(env, e.Then)
		}
		if e.Else == nil {
			return nil, nil
		}
		return ev.evalExp(env, e.Else)

	case *checked.WhileExp:
		for {
			cond, err := ev.evalInt(env, e.Cond)
			if err != nil {
				return nil, err
			}
			if cond == 0 {
				return nil, nil
			}
			if _, err := ev.evalExp(env, e.Body); err != nil {
				if errors.Is(err, errBreak) {
					return nil, nil
				}
				return nil, err
			}
		}

	case *checked.ForExp:
		lo, err := ev.evalInt(env, e.Lo)
		if err != nil {
			return nil, err
		}
		hi, err := ev.evalInt(env, e.Hi)
		if err != nil {
			return nil, err
		}
		for i := lo; i <= hi; i++ {
			env[e.Var] = Int(i)
			if _, err := ev.evalExp(env, e.Body); err != nil {
				if errors.Is(err, errBreak) {
					return nil, nil
				}
				return nil, err
			}
		}
		return nil, nil

	case *checked.LetExp:
		for _, d := range e.Decs {
			v, err := ev.evalExp(env, d.Init)
			if err != nil {
				return nil, err
			}
			env[d.Symbol] = v
		}
		return ev.evalExp(env, e.In)

	case *checked.CallExp:
		args := make([]Value, len(e.Args))
		for i, a := range e.Args {
			v, err := ev.evalExp(env, a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return ev.call(e.Func, args)

	case *checked.BreakExp:
		return nil, errBreak

	default:
		return nil, fmt.Errorf("unhandled checked expression kind %T", e)
	}
}

func (ev *checkedEvaluator) evalInt(env map[ident.Symbol]Value, e checked.Exp) (int64, error) {
	v, err := ev.evalExp(env, e)
	if err != nil {
		return 0, err
	}
	return asInt(v)
}

// evalInfix evaluates both sides eagerly: Cat's and/or are ordinary
// arithmetic-style operators (the backend compiles them to andq/orq),
// not short-circuiting connectives.
func (ev *checkedEvaluator) evalInfix(env map[ident.Symbol]Value, e *checked.InfixExp) (Value, error) {
	l, err := ev.evalInt(env, e.Left)
	if err != nil {
		return nil, err
	}
	r, err := ev.evalInt(env, e.Right)
	if err != nil {
		return nil, err
	}
	return applyInfix(e.Op, l, r)
}

func applyInfix(op ast.InfixOp, l, r int64) (Value, error) {
	boolInt := func(b bool) Value {
		if b {
			return Int(1)
		}
		return Int(0)
	}
	switch op {
	case ast.OpAdd:
		return Int(l + r), nil
	case ast.OpSub:
		return Int(l - r), nil
	case ast.OpMul:
		return Int(l * r), nil
	case ast.OpDiv:
		if r == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return Int(l / r), nil
	case ast.OpAnd:
		return Int(l & r), nil
	case ast.OpOr:
		return Int(l | r), nil
	case ast.OpEq:
		return boolInt(l == r), nil
	case ast.OpNeq:
		return boolInt(l != r), nil
	case ast.OpLt:
		return boolInt(l < r), nil
	case ast.OpLe:
		return boolInt(l <= r), nil
	case ast.OpGt:
		return boolInt(l > r), nil
	case ast.OpGe:
		return boolInt(l >= r), nil
	default:
		return nil, fmt.Errorf("unhandled infix operator %v", op)
	}
}

func (ev *checkedEvaluator) evalLValueRead(env map[ident.Symbol]Value, lv checked.LValue) (Value, error) {
	switch lv := lv.(type) {
	case *checked.IdLValue:
		v, ok := env[lv.Symbol]
		if !ok {
			return nil, fmt.Errorf("read of unbound symbol %v", lv.Symbol)
		}
		return v, nil

	case *checked.SubscriptLValue:
		ref, off, err := ev.evalAccessPath(env, lv.Base, lv.Index)
		if err != nil {
			return nil, err
		}
		return ref.load(off)

	case *checked.FieldLValue:
		base, err := ev.evalLValueRead(env, lv.Base)
		if err != nil {
			return nil, err
		}
		ref, err := asRef(base)
		if err != nil {
			return nil, err
		}
		return ref.load(int64(lv.FieldIndex))

	default:
		return nil, fmt.Errorf("unhandled checked lvalue kind %T", lv)
	}
}

func (ev *checkedEvaluator) evalLValueWrite(env map[ident.Symbol]Value, lv checked.LValue, v Value) error {
	switch lv := lv.(type) {
	case *checked.IdLValue:
		env[lv.Symbol] = v
		return nil

	case *checked.SubscriptLValue:
		ref, off, err := ev.evalAccessPath(env, lv.Base, lv.Index)
		if err != nil {
			return err
		}
		return ref.store(off, v)

	case *checked.FieldLValue:
		base, err := ev.evalLValueRead(env, lv.Base)
		if err != nil {
			return err
		}
		ref, err := asRef(base)
		if err != nil {
			return err
		}
		return ref.store(int64(lv.FieldIndex), v)

	default:
		return fmt.Errorf("unhandled checked lvalue kind %T", lv)
	}
}

// evalAccessPath resolves a subscript's base reference and index in
// evaluation order: base first, then the index expression.
func (ev *checkedEvaluator) evalAccessPath(env map[ident.Symbol]Value, base checked.LValue, index checked.Exp) (*Ref, int64, error) {
	bv, err := ev.evalLValueRead(env, base)
	if err != nil {
		return nil, 0, err
	}
	ref, err := asRef(bv)
	if err != nil {
		return nil, 0, err
	}
	off, err := ev.evalInt(env, index)
	if err != nil {
		return nil, 0, err
	}
	return ref, off, nil
}
