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

package x64s_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/johnflanigan/catc/internal/ident"
	"github.com/johnflanigan/catc/internal/lir"
	"github.com/johnflanigan/catc/internal/x64s"
)

func instrs(fn *x64s.Function) []x64s.Instruction {
	var out []x64s.Instruction
	for _, ln := range fn.Body {
		if il, ok := ln.(x64s.InstrLine); ok {
			out = append(out, il.I)
		}
	}
	return out
}

func selectBody(t *testing.T, gen *ident.Gen, result ident.Symbol, locals []ident.Symbol, body ...lir.Line) *x64s.Function {
	t.Helper()
	prog := &lir.Program{
		Main: &lir.Function{
			Locals:       locals,
			ReturnSymbol: result,
			Body:         body,
		},
		Others: map[ident.Label]*lir.Function{},
	}
	selected, err := x64s.Select(gen, prog)
	require.NoError(t, err)
	return selected.Main
}

func TestSelectIntLit(t *testing.T) {
	gen := ident.NewGen()
	dst := gen.Symbol()

	fn := selectBody(t, gen, dst, []ident.Symbol{dst},
		lir.InstrLine{I: lir.IntLit{Dst: dst, Value: 7}},
	)

	require.Equal(t, []x64s.Instruction{
		x64s.Movq{Src: x64s.Imm{Value: 7}, Dst: x64s.Sym{Symbol: dst}},
		x64s.Movq{Src: x64s.Sym{Symbol: dst}, Dst: x64s.Reg{Name: x64s.RAX}},
	}, instrs(fn))
}

func TestSelectParametersArriveInArgRegisters(t *testing.T) {
	gen := ident.NewGen()
	params := make([]ident.Symbol, 6)
	for i := range params {
		params[i] = gen.Symbol()
	}

	prog := &lir.Program{
		Main: &lir.Function{
			Parameters:   params,
			ReturnSymbol: params[0],
		},
		Others: map[ident.Label]*lir.Function{},
	}
	selected, err := x64s.Select(gen, prog)
	require.NoError(t, err)

	got := instrs(selected.Main)
	require.Len(t, got, 7)
	for i, reg := range x64s.ArgRegs {
		require.Equal(t, x64s.Movq{Src: x64s.Reg{Name: reg}, Dst: x64s.Sym{Symbol: params[i]}}, got[i])
	}
}

func TestSelectTooManyParameters(t *testing.T) {
	gen := ident.NewGen()
	params := make([]ident.Symbol, 7)
	for i := range params {
		params[i] = gen.Symbol()
	}

	prog := &lir.Program{
		Main:   &lir.Function{Parameters: params, ReturnSymbol: params[0]},
		Others: map[ident.Label]*lir.Function{},
	}
	_, err := x64s.Select(gen, prog)
	require.Error(t, err)
}

func TestSelectStringLitInterning(t *testing.T) {
	gen := ident.NewGen()
	dst := gen.Symbol()

	prog := &lir.Program{
		Main: &lir.Function{
			Locals:       []ident.Symbol{dst},
			ReturnSymbol: dst,
			Body: []lir.Line{
				lir.InstrLine{I: lir.StringLit{Dst: dst, Value: `hello\n`}},
			},
		},
		Others: map[ident.Label]*lir.Function{},
	}
	selected, err := x64s.Select(gen, prog)
	require.NoError(t, err)

	require.Len(t, selected.Strings, 1)
	got := instrs(selected.Main)
	lea, ok := got[0].(x64s.Leaq)
	require.True(t, ok)
	require.Equal(t, `hello\n`, selected.Strings[lea.Label])
	require.Equal(t, x64s.Reg{Name: x64s.RAX}, lea.Dst)
	require.Equal(t, x64s.Movq{Src: x64s.Reg{Name: x64s.RAX}, Dst: x64s.Sym{Symbol: dst}}, got[1])
}

func TestSelectMulUsesRax(t *testing.T) {
	gen := ident.NewGen()
	a, b, dst := gen.Symbol(), gen.Symbol(), gen.Symbol()

	fn := selectBody(t, gen, dst, []ident.Symbol{a, b, dst},
		lir.InstrLine{I: lir.BinOp{Dst: dst, Left: a, Op: lir.OpMul, Right: b}},
	)

	got := instrs(fn)
	require.Equal(t, x64s.Movq{Src: x64s.Sym{Symbol: a}, Dst: x64s.Reg{Name: x64s.RAX}}, got[0])
	require.Equal(t, x64s.Imulq{Src: x64s.Sym{Symbol: b}}, got[1])
	require.Equal(t, x64s.Movq{Src: x64s.Reg{Name: x64s.RAX}, Dst: x64s.Sym{Symbol: dst}}, got[2])
}

func TestSelectStoreAtAddressMaterialization(t *testing.T) {
	gen := ident.NewGen()
	loc, off, val := gen.Symbol(), gen.Symbol(), gen.Symbol()

	fn := selectBody(t, gen, val, []ident.Symbol{loc, off, val},
		lir.InstrLine{I: lir.StoreAt{Loc: loc, Off: off, Val: val}},
	)

	got := instrs(fn)
	require.Equal(t, x64s.Movq{Src: x64s.Imm{Value: 8}, Dst: x64s.Reg{Name: x64s.RAX}}, got[0])
	require.Equal(t, x64s.Imulq{Src: x64s.Sym{Symbol: off}}, got[1])

	scratch := got[2].(x64s.Movq).Dst.(x64s.Sym).Symbol
	require.Equal(t, x64s.Addq{Src: x64s.Sym{Symbol: loc}, Dst: x64s.Sym{Symbol: scratch}}, got[3])
	require.Equal(t, x64s.Movq{Src: x64s.Sym{Symbol: val}, Dst: x64s.Mem{Symbol: scratch}}, got[4])

	// The freshly minted address temporary joins the function's locals
	// so the allocator gives it a home.
	require.Contains(t, fn.Locals, scratch)
}

// Every symbol a selected body references lives in the containing
// function's parameter or local lists.
func TestSelectedSymbolsLiveInFunction(t *testing.T) {
	gen := ident.NewGen()
	loc, off, val, dst := gen.Symbol(), gen.Symbol(), gen.Symbol(), gen.Symbol()

	fn := selectBody(t, gen, dst, []ident.Symbol{loc, off, val, dst},
		lir.InstrLine{I: lir.StoreAt{Loc: loc, Off: off, Val: val}},
		lir.InstrLine{I: lir.LoadAt{Dst: dst, Loc: loc, Off: off}},
	)

	known := make(map[ident.Symbol]bool)
	for _, s := range append(append([]ident.Symbol{}, fn.Parameters...), fn.Locals...) {
		known[s] = true
	}
	for _, ln := range fn.Body {
		il, ok := ln.(x64s.InstrLine)
		if !ok {
			continue
		}
		for _, s := range append(il.Gen(), il.Kill()...) {
			require.True(t, known[s], "symbol %v must live in the function", s)
		}
	}
}

func TestSelectLoadAtEndsInLoad(t *testing.T) {
	gen := ident.NewGen()
	dst, loc, off := gen.Symbol(), gen.Symbol(), gen.Symbol()

	fn := selectBody(t, gen, dst, []ident.Symbol{dst, loc, off},
		lir.InstrLine{I: lir.LoadAt{Dst: dst, Loc: loc, Off: off}},
	)

	got := instrs(fn)
	last := got[len(got)-2] // the final instruction is the return move
	load, ok := last.(x64s.Movq)
	require.True(t, ok)
	_, ok = load.Src.(x64s.Mem)
	require.True(t, ok)
	require.Equal(t, x64s.Sym{Symbol: dst}, load.Dst)
}

// cmpq prints "cmpq right, left" so jg fires when left > right; the
// selector must keep that operand order.
func TestSelectJumpC(t *testing.T) {
	gen := ident.NewGen()
	a, b := gen.Symbol(), gen.Symbol()
	target := gen.Label()

	fn := selectBody(t, gen, a, []ident.Symbol{a, b},
		lir.LabelLine{L: target},
		lir.InstrLine{I: lir.JumpC{Target: target, Cond: lir.CmpGt, Left: a, Right: b}},
	)

	got := instrs(fn)
	require.Equal(t, x64s.Cmpq{Left: x64s.Sym{Symbol: a}, Right: x64s.Sym{Symbol: b}}, got[0])
	require.Equal(t, x64s.Jcc{Cond: x64s.CmpGt, Target: target}, got[1])
}

func TestSelectCall(t *testing.T) {
	gen := ident.NewGen()
	a, b, dst := gen.Symbol(), gen.Symbol(), gen.Symbol()
	callee := gen.Label()

	fn := selectBody(t, gen, dst, []ident.Symbol{a, b, dst},
		lir.InstrLine{I: lir.Call{Dst: dst, Func: callee, Args: []ident.Symbol{a, b}}},
	)

	got := instrs(fn)
	require.Equal(t, x64s.Movq{Src: x64s.Sym{Symbol: a}, Dst: x64s.Reg{Name: x64s.RDI}}, got[0])
	require.Equal(t, x64s.Movq{Src: x64s.Sym{Symbol: b}, Dst: x64s.Reg{Name: x64s.RSI}}, got[1])
	require.Equal(t, x64s.Call{Target: callee}, got[2])
	require.Equal(t, x64s.Movq{Src: x64s.Reg{Name: x64s.RAX}, Dst: x64s.Sym{Symbol: dst}}, got[3])
}

func TestSelectTooManyCallArguments(t *testing.T) {
	gen := ident.NewGen()
	args := make([]ident.Symbol, 7)
	for i := range args {
		args[i] = gen.Symbol()
	}
	dst := gen.Symbol()

	prog := &lir.Program{
		Main: &lir.Function{
			Locals:       append(args, dst),
			ReturnSymbol: dst,
			Body: []lir.Line{
				lir.InstrLine{I: lir.Call{Dst: dst, Func: gen.Label(), Args: args}},
			},
		},
		Others: map[ident.Label]*lir.Function{},
	}
	_, err := x64s.Select(gen, prog)
	require.Error(t, err)
}

func TestSelectReturnMove(t *testing.T) {
	gen := ident.NewGen()
	dst := gen.Symbol()

	fn := selectBody(t, gen, dst, []ident.Symbol{dst},
		lir.InstrLine{I: lir.IntLit{Dst: dst, Value: 1}},
	)

	got := instrs(fn)
	require.Equal(t, x64s.Movq{Src: x64s.Sym{Symbol: dst}, Dst: x64s.Reg{Name: x64s.RAX}}, got[len(got)-1])
}
