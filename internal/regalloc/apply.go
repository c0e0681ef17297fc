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

package regalloc

import (
	"github.com/johnflanigan/catc/internal/ident"
	"github.com/johnflanigan/catc/internal/x64"
	"github.com/johnflanigan/catc/internal/x64s"
)

// Allocate homes every symbol in a legalized program and applies those
// homes, producing a physical x64.Program ready to print. graphColoring
// selects GraphColor over Baseline for every function in the program.
func Allocate(prog *x64s.Program, graphColoring bool) *x64.Program {
	homesFor := Baseline
	if graphColoring {
		homesFor = GraphColor
	}

	others := make(map[ident.Label]*x64.Function, len(prog.Others))
	for label, fn := range prog.Others {
		others[label] = Apply(label, fn, homesFor(fn))
	}

	return &x64.Program{
		Main:    Apply(ident.LMain, prog.Main, homesFor(prog.Main)),
		Others:  others,
		Strings: prog.Strings,
	}
}

// Apply rewrites fn's body under the given home map and wraps it in the
// standard prologue/epilogue: pushq %rbp; movq %rsp, %rbp; subq $k, %rsp
// on entry, movq %rbp, %rsp; popq %rbp; ret on exit, where k is the
// 16-byte-aligned size of the spilled symbols' frame.
func Apply(label ident.Label, fn *x64s.Function, homes map[ident.Symbol]Home) *x64.Function {
	slots := 0
	for _, h := range homes {
		if !h.IsRegister() {
			slots++
		}
	}
	frameSize := align16(slots * 8)

	var body []x64.Line
	body = append(body,
		x64.InstrLine{I: x64.Push{Src: x64.Reg{Name: x64s.RBP}}},
		x64.InstrLine{I: x64.Movq{Src: x64.Reg{Name: x64s.RSP}, Dst: x64.Reg{Name: x64s.RBP}}},
	)
	if frameSize > 0 {
		body = append(body, x64.InstrLine{I: x64.Subq{
			Src: x64.Imm{Value: int64(frameSize)},
			Dst: x64.Reg{Name: x64s.RSP},
		}})
	}

	for _, ln := range fn.Body {
		body = append(body, convertLine(ln, homes))
	}

	body = append(body,
		x64.InstrLine{I: x64.Movq{Src: x64.Reg{Name: x64s.RBP}, Dst: x64.Reg{Name: x64s.RSP}}},
		x64.InstrLine{I: x64.Pop{Dst: x64.Reg{Name: x64s.RBP}}},
		x64.InstrLine{I: x64.Ret{}},
	)

	return &x64.Function{Label: label, Body: body}
}

func convertLine(ln x64s.Line, homes map[ident.Symbol]Home) x64.Line {
	switch l := ln.(type) {
	case x64s.LabelLine:
		return x64.LabelLine{L: l.L}
	case x64s.InstrLine:
		return x64.InstrLine{I: convertInstr(l.I, homes)}
	default:
		panic("internal error: unhandled x64s line kind")
	}
}

// convertOperand resolves a symbolic operand to its physical form. A Mem
// must resolve to a register home and panics on a stack home. Legalization
// rewrites every Mem that selection emits into a scratch-register RegMem,
// so a Mem only reaches this point in a body that did not go through
// legalize.
func convertOperand(op x64s.Operand, homes map[ident.Symbol]Home) x64.Operand {
	switch o := op.(type) {
	case x64s.Imm:
		return x64.Imm{Value: o.Value}
	case x64s.Reg:
		return x64.Reg{Name: o.Name}
	case x64s.LabelOperand:
		return x64.LabelOperand{Label: o.Label}
	case x64s.RegMem:
		return x64.Indirect{Name: o.Name}
	case x64s.Sym:
		return operandForHome(homes[o.Symbol])
	case x64s.Mem:
		h := homes[o.Symbol]
		if !h.IsRegister() {
			panic("internal error: dereferenced symbol was assigned a stack home")
		}
		return x64.Indirect{Name: h.Register()}
	default:
		panic("internal error: unhandled x64s operand kind")
	}
}

func operandForHome(h Home) x64.Operand {
	if h.IsRegister() {
		return x64.Reg{Name: h.Register()}
	}
	return x64.Stack{Offset: h.Offset()}
}

func convertInstr(i x64s.Instruction, homes map[ident.Symbol]Home) x64.Instruction {
	op := func(o x64s.Operand) x64.Operand { return convertOperand(o, homes) }

	switch i := i.(type) {
	case x64s.Movq:
		return x64.Movq{Src: op(i.Src), Dst: op(i.Dst)}
	case x64s.Negq:
		return x64.Negq{Dst: op(i.Dst)}
	case x64s.Addq:
		return x64.Addq{Src: op(i.Src), Dst: op(i.Dst)}
	case x64s.Subq:
		return x64.Subq{Src: op(i.Src), Dst: op(i.Dst)}
	case x64s.Andq:
		return x64.Andq{Src: op(i.Src), Dst: op(i.Dst)}
	case x64s.Orq:
		return x64.Orq{Src: op(i.Src), Dst: op(i.Dst)}
	case x64s.Imulq:
		return x64.Imulq{Src: op(i.Src)}
	case x64s.Idivq:
		return x64.Idivq{Src: op(i.Src)}
	case x64s.Leaq:
		return x64.Leaq{Label: i.Label, Dst: op(i.Dst)}
	case x64s.Cmpq:
		return x64.Cmpq{Left: op(i.Left), Right: op(i.Right)}
	case x64s.Jmp:
		return x64.Jmp{Target: i.Target}
	case x64s.Jcc:
		return x64.Jcc{Cond: i.Cond, Target: i.Target}
	case x64s.Call:
		return x64.Call{Target: i.Target}
	case x64s.Push:
		return x64.Push{Src: op(i.Src)}
	case x64s.Pop:
		return x64.Pop{Dst: op(i.Dst)}
	case x64s.Ret:
		return x64.Ret{}
	default:
		panic("internal error: unhandled x64s instruction kind")
	}
}
