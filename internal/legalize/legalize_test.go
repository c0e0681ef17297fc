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

package legalize_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/johnflanigan/catc/internal/check"
	"github.com/johnflanigan/catc/internal/frontend"
	"github.com/johnflanigan/catc/internal/ident"
	"github.com/johnflanigan/catc/internal/legalize"
	"github.com/johnflanigan/catc/internal/lower"
	"github.com/johnflanigan/catc/internal/x64s"
)

func legalizeOne(i x64s.Instruction) []x64s.Instruction {
	prog := &x64s.Program{
		Main: &x64s.Function{
			Body: []x64s.Line{x64s.InstrLine{I: i}},
		},
		Others: map[ident.Label]*x64s.Function{},
	}
	out := legalize.Legalize(prog)
	var got []x64s.Instruction
	for _, ln := range out.Main.Body {
		got = append(got, ln.(x64s.InstrLine).I)
	}
	return got
}

var (
	rax = x64s.Reg{Name: x64s.RAX}
	rdx = x64s.Reg{Name: x64s.RDX}
)

func TestSymSymRewrite(t *testing.T) {
	gen := ident.NewGen()
	x, y := gen.Symbol(), gen.Symbol()

	got := legalizeOne(x64s.Addq{Src: x64s.Sym{Symbol: x}, Dst: x64s.Sym{Symbol: y}})
	require.Equal(t, []x64s.Instruction{
		x64s.Movq{Src: x64s.Sym{Symbol: x}, Dst: rax},
		x64s.Addq{Src: rax, Dst: x64s.Sym{Symbol: y}},
	}, got)
}

func TestMemRegRewrite(t *testing.T) {
	gen := ident.NewGen()
	p := gen.Symbol()

	got := legalizeOne(x64s.Addq{Src: x64s.Mem{Symbol: p}, Dst: x64s.Reg{Name: x64s.RBX}})
	require.Equal(t, []x64s.Instruction{
		x64s.Movq{Src: x64s.Sym{Symbol: p}, Dst: rax},
		x64s.Movq{Src: x64s.RegMem{Name: x64s.RAX}, Dst: rax},
		x64s.Addq{Src: rax, Dst: x64s.Reg{Name: x64s.RBX}},
	}, got)
}

func TestMemSymRewrite(t *testing.T) {
	gen := ident.NewGen()
	p, y := gen.Symbol(), gen.Symbol()

	got := legalizeOne(x64s.Movq{Src: x64s.Mem{Symbol: p}, Dst: x64s.Sym{Symbol: y}})
	require.Equal(t, []x64s.Instruction{
		x64s.Movq{Src: x64s.Sym{Symbol: p}, Dst: rax},
		x64s.Movq{Src: x64s.RegMem{Name: x64s.RAX}, Dst: rax},
		x64s.Movq{Src: rax, Dst: x64s.Sym{Symbol: y}},
	}, got)
}

func TestMemMemRewrite(t *testing.T) {
	gen := ident.NewGen()
	p, q := gen.Symbol(), gen.Symbol()

	got := legalizeOne(x64s.Movq{Src: x64s.Mem{Symbol: p}, Dst: x64s.Mem{Symbol: q}})
	require.Equal(t, []x64s.Instruction{
		x64s.Movq{Src: x64s.Sym{Symbol: p}, Dst: rax},
		x64s.Movq{Src: x64s.RegMem{Name: x64s.RAX}, Dst: rax},
		x64s.Movq{Src: x64s.Sym{Symbol: q}, Dst: rdx},
		x64s.Movq{Src: rax, Dst: x64s.RegMem{Name: x64s.RDX}},
	}, got)
}

func TestSymMemRewrite(t *testing.T) {
	gen := ident.NewGen()
	x, q := gen.Symbol(), gen.Symbol()

	got := legalizeOne(x64s.Movq{Src: x64s.Sym{Symbol: x}, Dst: x64s.Mem{Symbol: q}})
	require.Equal(t, []x64s.Instruction{
		x64s.Movq{Src: x64s.Sym{Symbol: x}, Dst: rax},
		x64s.Movq{Src: x64s.Sym{Symbol: q}, Dst: rdx},
		x64s.Movq{Src: rax, Dst: x64s.RegMem{Name: x64s.RDX}},
	}, got)
}

func TestCmpqRewritesThroughLeftOperand(t *testing.T) {
	gen := ident.NewGen()
	a, b := gen.Symbol(), gen.Symbol()

	got := legalizeOne(x64s.Cmpq{Left: x64s.Sym{Symbol: a}, Right: x64s.Sym{Symbol: b}})
	require.Equal(t, []x64s.Instruction{
		x64s.Movq{Src: x64s.Sym{Symbol: b}, Dst: rax},
		x64s.Cmpq{Left: x64s.Sym{Symbol: a}, Right: rax},
	}, got)
}

func TestSingleOperandShapesPassThrough(t *testing.T) {
	gen := ident.NewGen()
	x := gen.Symbol()

	for _, i := range []x64s.Instruction{
		x64s.Movq{Src: x64s.Imm{Value: 1}, Dst: x64s.Sym{Symbol: x}},
		x64s.Movq{Src: x64s.Sym{Symbol: x}, Dst: rax},
		x64s.Negq{Dst: x64s.Sym{Symbol: x}},
		x64s.Imulq{Src: x64s.Sym{Symbol: x}},
		x64s.Idivq{Src: x64s.Sym{Symbol: x}},
		x64s.Addq{Src: x64s.Imm{Value: 1}, Dst: x64s.Sym{Symbol: x}},
		x64s.Jmp{Target: gen.Label()},
		x64s.Call{Target: ident.LAllocate},
		x64s.Ret{},
	} {
		require.Equal(t, []x64s.Instruction{i}, legalizeOne(i))
	}
}

func TestLabelsPassThrough(t *testing.T) {
	gen := ident.NewGen()
	l := gen.Label()

	prog := &x64s.Program{
		Main:   &x64s.Function{Body: []x64s.Line{x64s.LabelLine{L: l}}},
		Others: map[ident.Label]*x64s.Function{},
	}
	out := legalize.Legalize(prog)
	require.Equal(t, []x64s.Line{x64s.LabelLine{L: l}}, out.Main.Body)
}

// countPotentialMemoryOperands counts operands that could end up as a
// memory reference under home assignment: any Sym, plus any Mem (which
// is a memory access no matter where its symbol lives).
func countPotentialMemoryOperands(i x64s.Instruction) int {
	count := func(ops ...x64s.Operand) int {
		n := 0
		for _, op := range ops {
			switch op.(type) {
			case x64s.Sym, x64s.Mem:
				n++
			}
		}
		return n
	}

	switch i := i.(type) {
	case x64s.Movq:
		return count(i.Src, i.Dst)
	case x64s.Negq:
		return count(i.Dst)
	case x64s.Addq:
		return count(i.Src, i.Dst)
	case x64s.Subq:
		return count(i.Src, i.Dst)
	case x64s.Andq:
		return count(i.Src, i.Dst)
	case x64s.Orq:
		return count(i.Src, i.Dst)
	case x64s.Imulq:
		return count(i.Src)
	case x64s.Idivq:
		return count(i.Src)
	case x64s.Leaq:
		return count(i.Dst)
	case x64s.Cmpq:
		return count(i.Left, i.Right)
	case x64s.Push:
		return count(i.Src)
	case x64s.Pop:
		return count(i.Dst)
	default:
		return 0
	}
}

// The whole-program invariant: after legalization, every instruction of
// a realistically lowered and selected program carries at most one
// potentially-in-memory operand.
func TestAtMostOneMemoryOperandEndToEnd(t *testing.T) {
	src := `
type intArray = array of int
type point = {x: int, y: int}
function dist(p:point) -> int { p.x * p.x + p.y * p.y }
function main () -> int {
	let var a : intArray := intArray [10] of 2
	    var p : point := point {x = 3, y = 4}
	in (for i := 1 to 9 do (a[i] := a[i-1] + a[i]); a[9] + dist(p)) end
}`
	prog, err := frontend.Parse(src)
	require.NoError(t, err)
	checkedProg, info, err := check.Check(prog)
	require.NoError(t, err)
	selected, err := x64s.Select(info.Gen, lower.Lower(checkedProg, info))
	require.NoError(t, err)

	legal := legalize.Legalize(selected)

	checkFn := func(fn *x64s.Function) {
		for _, ln := range fn.Body {
			if il, ok := ln.(x64s.InstrLine); ok {
				require.LessOrEqual(t, countPotentialMemoryOperands(il.I), 1,
					"instruction %#v has more than one potential memory operand", il.I)
			}
		}
	}
	checkFn(legal.Main)
	for _, fn := range legal.Others {
		checkFn(fn)
	}
}
