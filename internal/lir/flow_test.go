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

package lir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/johnflanigan/catc/internal/dataflow"
	"github.com/johnflanigan/catc/internal/ident"
	"github.com/johnflanigan/catc/internal/lir"
)

func TestInstructionGenKill(t *testing.T) {
	gen := ident.NewGen()
	a, b, c, d := gen.Symbol(), gen.Symbol(), gen.Symbol(), gen.Symbol()
	l := gen.Label()

	cases := []struct {
		name string
		i    lir.Instruction
		gen  []ident.Symbol
		kill []ident.Symbol
	}{
		{"nop", lir.Nop{}, nil, nil},
		{"intlit", lir.IntLit{Dst: a, Value: 3}, nil, []ident.Symbol{a}},
		{"stringlit", lir.StringLit{Dst: a, Value: "s"}, nil, []ident.Symbol{a}},
		{"storeat", lir.StoreAt{Loc: a, Off: b, Val: c}, []ident.Symbol{c}, []ident.Symbol{a, b}},
		{"loadat", lir.LoadAt{Dst: a, Loc: b, Off: c}, []ident.Symbol{b, c}, []ident.Symbol{a}},
		{"assign", lir.Assign{Dst: a, Src: b}, []ident.Symbol{b}, []ident.Symbol{a}},
		{"negate", lir.Negate{Dst: a, Src: b}, []ident.Symbol{b}, []ident.Symbol{a}},
		{"binop", lir.BinOp{Dst: a, Left: b, Op: lir.OpAdd, Right: c}, []ident.Symbol{b, c}, []ident.Symbol{a}},
		{"call", lir.Call{Dst: a, Func: l, Args: []ident.Symbol{b, c, d}}, []ident.Symbol{b, c, d}, []ident.Symbol{a}},
		{"jump", lir.Jump{Target: l}, nil, nil},
		{"jumpc", lir.JumpC{Target: l, Cond: lir.CmpEq, Left: a, Right: b}, []ident.Symbol{a, b}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			line := lir.InstrLine{I: tc.i}
			require.ElementsMatch(t, tc.gen, line.Gen())
			require.ElementsMatch(t, tc.kill, line.Kill())
		})
	}
}

func TestCmpOpNegate(t *testing.T) {
	for op, want := range map[lir.CmpOp]lir.CmpOp{
		lir.CmpEq:  lir.CmpNeq,
		lir.CmpNeq: lir.CmpEq,
		lir.CmpGt:  lir.CmpLe,
		lir.CmpLt:  lir.CmpGe,
		lir.CmpGe:  lir.CmpLt,
		lir.CmpLe:  lir.CmpGt,
	} {
		require.Equal(t, want, op.Negate())
		require.Equal(t, op, op.Negate().Negate())
	}
}

// LIR bodies feed the shared dataflow substrate directly: a while-style
// loop keeps its accumulator live across the back edge.
func TestLinesFeedDataflow(t *testing.T) {
	gen := ident.NewGen()
	n, one, cond := gen.Symbol(), gen.Symbol(), gen.Symbol()
	head := gen.Label()

	body := []lir.Line{
		lir.InstrLine{I: lir.IntLit{Dst: n, Value: 0}},
		lir.LabelLine{L: head},
		lir.InstrLine{I: lir.IntLit{Dst: one, Value: 1}},
		lir.InstrLine{I: lir.BinOp{Dst: n, Left: n, Op: lir.OpAdd, Right: one}},
		lir.InstrLine{I: lir.JumpC{Target: head, Cond: lir.CmpLt, Left: n, Right: cond}},
		lir.InstrLine{I: lir.Assign{Dst: one, Src: n}},
	}

	cfg := dataflow.Build(lir.Lines(body))
	require.ElementsMatch(t, []int{1, 5}, cfg.Succ[4])

	live := dataflow.ComputeLiveness(cfg)
	for _, node := range []int{1, 2, 3, 4} {
		require.True(t, live.LiveIn[node].Contains(n), "accumulator must be live into node %d", node)
	}
	require.False(t, live.LiveIn[0].Contains(n))
}

func TestLineControlFlowQueries(t *testing.T) {
	gen := ident.NewGen()
	l := gen.Label()
	a, b := gen.Symbol(), gen.Symbol()

	lbl := lir.LabelLine{L: l}
	got, ok := lbl.Label()
	require.True(t, ok)
	require.Equal(t, l, got)

	jump := lir.InstrLine{I: lir.Jump{Target: l}}
	got, ok = jump.Jump()
	require.True(t, ok)
	require.Equal(t, l, got)
	_, ok = jump.CondJump()
	require.False(t, ok)

	jumpc := lir.InstrLine{I: lir.JumpC{Target: l, Cond: lir.CmpLt, Left: a, Right: b}}
	got, ok = jumpc.CondJump()
	require.True(t, ok)
	require.Equal(t, l, got)
	_, ok = jumpc.Jump()
	require.False(t, ok)

	plain := lir.InstrLine{I: lir.Assign{Dst: a, Src: b}}
	_, ok = plain.Label()
	require.False(t, ok)
	_, ok = plain.Jump()
	require.False(t, ok)
	_, ok = plain.CondJump()
	require.False(t, ok)
}
