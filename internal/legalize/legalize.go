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

// Package legalize is the "fix_up" pass: it rewrites an x64s.Program so
// that every instruction has at most one operand that could turn out to
// live in memory once register allocation runs, via a five-shape rewrite
// table. A Sym is only POTENTIALLY memory (its home might be a
// register); a Mem is ALWAYS memory (dereferencing a home is a real
// indirect memory access no matter where the pointer itself lives),
// which is why every Mem operand of a two-operand instruction is rewritten
// through a scratch register, whatever the other operand is.
package legalize

import (
	"github.com/johnflanigan/catc/internal/ident"
	"github.com/johnflanigan/catc/internal/x64s"
)

// Legalize rewrites every function in prog, returning a new Program --
// the input is consumed, not retained, like every other pass.
func Legalize(prog *x64s.Program) *x64s.Program {
	others := make(map[ident.Label]*x64s.Function, len(prog.Others))
	for label, fn := range prog.Others {
		others[label] = legalizeFunction(fn)
	}
	return &x64s.Program{
		Main:    legalizeFunction(prog.Main),
		Others:  others,
		Strings: prog.Strings,
	}
}

func legalizeFunction(fn *x64s.Function) *x64s.Function {
	var body []x64s.Line
	for _, ln := range fn.Body {
		body = append(body, legalizeLine(ln)...)
	}
	return &x64s.Function{Parameters: fn.Parameters, Locals: fn.Locals, Body: body}
}

func legalizeLine(ln x64s.Line) []x64s.Line {
	il, ok := ln.(x64s.InstrLine)
	if !ok {
		return []x64s.Line{ln}
	}

	switch i := il.I.(type) {
	case x64s.Movq:
		return rewrite(i.Src, i.Dst, func(a, b x64s.Operand) x64s.Instruction { return x64s.Movq{Src: a, Dst: b} })
	case x64s.Addq:
		return rewrite(i.Src, i.Dst, func(a, b x64s.Operand) x64s.Instruction { return x64s.Addq{Src: a, Dst: b} })
	case x64s.Subq:
		return rewrite(i.Src, i.Dst, func(a, b x64s.Operand) x64s.Instruction { return x64s.Subq{Src: a, Dst: b} })
	case x64s.Andq:
		return rewrite(i.Src, i.Dst, func(a, b x64s.Operand) x64s.Instruction { return x64s.Andq{Src: a, Dst: b} })
	case x64s.Orq:
		return rewrite(i.Src, i.Dst, func(a, b x64s.Operand) x64s.Instruction { return x64s.Orq{Src: a, Dst: b} })
	case x64s.Cmpq:
		// Printed "cmpq right, left" -- Right is the source-like first
		// operand, Left plays the destination role the generic rewrite
		// expects as its second argument.
		return rewrite(i.Right, i.Left, func(a, b x64s.Operand) x64s.Instruction { return x64s.Cmpq{Right: a, Left: b} })
	default:
		return []x64s.Line{il}
	}
}

func isMem(op x64s.Operand) bool {
	_, ok := op.(x64s.Mem)
	return ok
}

// rewrite applies the five-shape table to one two-operand instruction,
// given as (first, second) in the AT&T "op first, second" sense -- second
// is the operand that plays the destination role, whether or not it is
// literally written (cmpq never writes, but its Left operand still plays
// that role for this table's purposes). build reconstructs the
// instruction from a new (first, second) pair.
func rewrite(first, second x64s.Operand, build func(a, b x64s.Operand) x64s.Instruction) []x64s.Line {
	firstMem, secondMem := isMem(first), isMem(second)
	_, firstSym := first.(x64s.Sym)
	_, secondSym := second.(x64s.Sym)

	rax := x64s.Reg{Name: x64s.RAX}
	rdx := x64s.Reg{Name: x64s.RDX}

	switch {
	case firstSym && secondSym:
		// op x, y (both Sym) -> movq x, %rax; op %rax, y
		return []x64s.Line{
			instr(x64s.Movq{Src: first, Dst: rax}),
			instr(build(rax, second)),
		}

	case firstMem && secondMem:
		// op (p), (q) -> movq p, %rax; movq (%rax), %rax; movq q, %rdx; op %rax, (%rdx)
		p := first.(x64s.Mem)
		q := second.(x64s.Mem)
		return []x64s.Line{
			instr(x64s.Movq{Src: x64s.Sym{Symbol: p.Symbol}, Dst: rax}),
			instr(x64s.Movq{Src: x64s.RegMem{Name: x64s.RAX}, Dst: rax}),
			instr(x64s.Movq{Src: x64s.Sym{Symbol: q.Symbol}, Dst: rdx}),
			instr(build(rax, x64s.RegMem{Name: x64s.RDX})),
		}

	case firstMem:
		// op (p), y -> movq p, %rax; movq (%rax), %rax; op %rax, y
		p := first.(x64s.Mem)
		return []x64s.Line{
			instr(x64s.Movq{Src: x64s.Sym{Symbol: p.Symbol}, Dst: rax}),
			instr(x64s.Movq{Src: x64s.RegMem{Name: x64s.RAX}, Dst: rax}),
			instr(build(rax, second)),
		}

	case secondMem:
		// op x, (q) -> movq x, %rax; movq q, %rdx; op %rax, (%rdx)
		q := second.(x64s.Mem)
		return []x64s.Line{
			instr(x64s.Movq{Src: first, Dst: rax}),
			instr(x64s.Movq{Src: x64s.Sym{Symbol: q.Symbol}, Dst: rdx}),
			instr(build(rax, x64s.RegMem{Name: x64s.RDX})),
		}

	default:
		return []x64s.Line{instr(build(first, second))}
	}
}

func instr(i x64s.Instruction) x64s.Line { return x64s.InstrLine{I: i} }
