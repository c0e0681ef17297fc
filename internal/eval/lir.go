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
	"fmt"
	"io"

	"github.com/johnflanigan/catc/internal/ident"
	"github.com/johnflanigan/catc/internal/lir"
)

type lirEvaluator struct {
	prog *lir.Program
	out  io.Writer
}

// EvalLIR executes prog's main function over a symbolic register file,
// returning its result value. It is the second of the two oracles: a
// lowered program whose EvalLIR result disagrees with EvalChecked on the
// same source localizes the bug to the lowering pass.
func EvalLIR(prog *lir.Program, out io.Writer) (Value, error) {
	ev := &lirEvaluator{prog: prog, out: out}
	return ev.run(prog.Main, nil)
}

func (ev *lirEvaluator) lookup(label ident.Label) (*lir.Function, bool) {
	fn, ok := ev.prog.Others[label]
	if ok {
		return fn, true
	}
	if label == ident.LMain {
		return ev.prog.Main, true
	}
	return nil, false
}

func (ev *lirEvaluator) run(fn *lir.Function, args []Value) (Value, error) {
	if len(args) != len(fn.Parameters) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(fn.Parameters), len(args))
	}
	regs := make(map[ident.Symbol]Value, len(fn.Parameters)+len(fn.Locals))
	for i, p := range fn.Parameters {
		regs[p] = args[i]
	}

	labelAt := make(map[ident.Label]int, len(fn.Body))
	for i, ln := range fn.Body {
		if ll, ok := ln.(lir.LabelLine); ok {
			labelAt[ll.L] = i
		}
	}

	pc := 0
	for pc < len(fn.Body) {
		il, ok := fn.Body[pc].(lir.InstrLine)
		if !ok {
			pc++
			continue
		}
		next, err := ev.step(regs, labelAt, il.I, pc)
		if err != nil {
			return nil, err
		}
		pc = next
	}

	return regs[fn.ReturnSymbol], nil
}

func (ev *lirEvaluator) step(regs map[ident.Symbol]Value, labelAt map[ident.Label]int, i lir.Instruction, pc int) (int, error) {
	readInt := func(s ident.Symbol) (int64, error) { return asInt(regs[s]) }

	switch i := i.(type) {
	case lir.Nop:

	case lir.IntLit:
		regs[i.Dst] = Int(i.Value)

	case lir.StringLit:
		regs[i.Dst] = Str(i.Value)

	case lir.StoreAt:
		ref, err := asRef(regs[i.Loc])
		if err != nil {
			return 0, err
		}
		off, err := readInt(i.Off)
		if err != nil {
			return 0, err
		}
		if err := ref.store(off, regs[i.Val]); err != nil {
			return 0, err
		}

	case lir.LoadAt:
		ref, err := asRef(regs[i.Loc])
		if err != nil {
			return 0, err
		}
		off, err := readInt(i.Off)
		if err != nil {
			return 0, err
		}
		v, err := ref.load(off)
		if err != nil {
			return 0, err
		}
		regs[i.Dst] = v

	case lir.Assign:
		regs[i.Dst] = regs[i.Src]

	case lir.Negate:
		v, err := readInt(i.Src)
		if err != nil {
			return 0, err
		}
		regs[i.Dst] = Int(-v)

	case lir.BinOp:
		l, err := readInt(i.Left)
		if err != nil {
			return 0, err
		}
		r, err := readInt(i.Right)
		if err != nil {
			return 0, err
		}
		v, err := applyBinOp(i.Op, l, r)
		if err != nil {
			return 0, err
		}
		regs[i.Dst] = v

	case lir.Call:
		args := make([]Value, len(i.Args))
		for idx, a := range i.Args {
			args[idx] = regs[a]
		}
		v, err := ev.callLIR(i.Func, args)
		if err != nil {
			return 0, err
		}
		regs[i.Dst] = v

	case lir.Jump:
		at, ok := labelAt[i.Target]
		if !ok {
			return 0, fmt.Errorf("jump to undefined label %v", i.Target)
		}
		return at, nil

	case lir.JumpC:
		l, err := readInt(i.Left)
		if err != nil {
			return 0, err
		}
		r, err := readInt(i.Right)
		if err != nil {
			return 0, err
		}
		if compare(i.Cond, l, r) {
			at, ok := labelAt[i.Target]
			if !ok {
				return 0, fmt.Errorf("jump to undefined label %v", i.Target)
			}
			return at, nil
		}

	default:
		return 0, fmt.Errorf("unhandled lir instruction kind %T", i)
	}

	return pc + 1, nil
}

func applyBinOp(op lir.BinOpKind, l, r int64) (Value, error) {
	switch op {
	case lir.OpAdd:
		return Int(l + r), nil
	case lir.OpSub:
		return Int(l - r), nil
	case lir.OpMul:
		return Int(l * r), nil
	case lir.OpDiv:
		if r == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return Int(l / r), nil
	case lir.OpAnd:
		return Int(l & r), nil
	case lir.OpOr:
		return Int(l | r), nil
	default:
		return nil, fmt.Errorf("unhandled lir binop kind %v", op)
	}
}

func compare(op lir.CmpOp, l, r int64) bool {
	switch op {
	case lir.CmpEq:
		return l == r
	case lir.CmpNeq:
		return l != r
	case lir.CmpGt:
		return l > r
	case lir.CmpLt:
		return l < r
	case lir.CmpGe:
		return l >= r
	case lir.CmpLe:
		return l <= r
	default:
		return false
	}
}

func (ev *lirEvaluator) callLIR(label ident.Label, args []Value) (Value, error) {
	if fn, ok := ev.lookup(label); ok {
		return ev.run(fn, args)
	}

	switch label {
	case ident.LAllocate:
		if len(args) != 1 {
			return nil, fmt.Errorf("allocate: expected 1 argument, got %d", len(args))
		}
		n, err := asInt(args[0])
		if err != nil {
			return nil, err
		}
		return newRef(n, Int(0))

	case ident.LAllocateAndMemset:
		switch len(args) {
		case 1:
			n, err := asInt(args[0])
			if err != nil {
				return nil, err
			}
			return newRef(n, Int(0))
		case 2:
			n, err := asInt(args[0])
			if err != nil {
				return nil, err
			}
			return newRef(n, args[1])
		default:
			return nil, fmt.Errorf("allocate_and_memset: expected 1 or 2 arguments, got %d", len(args))
		}

	case ident.LPrintInt, ident.LPrintLineInt, ident.LPrintString, ident.LPrintLineString:
		if len(args) != 1 {
			return nil, fmt.Errorf("print routine %v: expected 1 argument, got %d", label, len(args))
		}
		suffix := ""
		if label == ident.LPrintLineInt || label == ident.LPrintLineString {
			suffix = "\n"
		}
		switch v := args[0].(type) {
		case Int:
			fmt.Fprintf(ev.out, "%d%s", int64(v), suffix)
		case Str:
			fmt.Fprintf(ev.out, "%s%s", string(v), suffix)
		default:
			return nil, fmt.Errorf("print routine %v: unprintable value %T", label, args[0])
		}
		return nil, nil

	default:
		return nil, fmt.Errorf("call to unknown function %v", label)
	}
}
