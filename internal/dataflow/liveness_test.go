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

package dataflow_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/johnflanigan/catc/internal/dataflow"
	"github.com/johnflanigan/catc/internal/ident"
)

// testLine is a minimal dataflow.Line for exercising the substrate
// without depending on either concrete IR.
type testLine struct {
	label    *ident.Label
	jump     *ident.Label
	condJump *ident.Label
	gen      []ident.Symbol
	kill     []ident.Symbol
}

func (l testLine) Label() (ident.Label, bool) {
	if l.label != nil {
		return *l.label, true
	}
	return ident.Label{}, false
}

func (l testLine) Jump() (ident.Label, bool) {
	if l.jump != nil {
		return *l.jump, true
	}
	return ident.Label{}, false
}

func (l testLine) CondJump() (ident.Label, bool) {
	if l.condJump != nil {
		return *l.condJump, true
	}
	return ident.Label{}, false
}

func (l testLine) Gen() []ident.Symbol  { return l.gen }
func (l testLine) Kill() []ident.Symbol { return l.kill }

func lines(ls ...testLine) []dataflow.Line {
	out := make([]dataflow.Line, len(ls))
	for i, l := range ls {
		out[i] = l
	}
	return out
}

func TestBuildStraightLineEdges(t *testing.T) {
	cfg := dataflow.Build(lines(testLine{}, testLine{}, testLine{}))

	require.Equal(t, [][]int{{1}, {2}, nil}, cfg.Succ)
	require.Equal(t, [][]int{nil, {0}, {1}}, cfg.Pred)
}

func TestBuildJumpHasNoFallThrough(t *testing.T) {
	gen := ident.NewGen()
	l := gen.Label()

	// 0: jmp L; 1: nop; 2: L:; 3: nop
	cfg := dataflow.Build(lines(
		testLine{jump: &l},
		testLine{},
		testLine{label: &l},
		testLine{},
	))

	require.Equal(t, []int{2}, cfg.Succ[0])
	require.Equal(t, []int{2}, cfg.Succ[1])
	require.Equal(t, []int{3}, cfg.Succ[2])
	require.ElementsMatch(t, []int{0, 1}, cfg.Pred[2])
}

func TestBuildCondJumpHasBothEdges(t *testing.T) {
	gen := ident.NewGen()
	l := gen.Label()

	// 0: jc L; 1: nop; 2: L:
	cfg := dataflow.Build(lines(
		testLine{condJump: &l},
		testLine{},
		testLine{label: &l},
	))

	require.ElementsMatch(t, []int{1, 2}, cfg.Succ[0])
}

func TestLivenessStraightLine(t *testing.T) {
	gen := ident.NewGen()
	a, b, c := gen.Symbol(), gen.Symbol(), gen.Symbol()

	// 0: a := ...; 1: b := a; 2: c := a + b; 3: use c
	cfg := dataflow.Build(lines(
		testLine{kill: []ident.Symbol{a}},
		testLine{gen: []ident.Symbol{a}, kill: []ident.Symbol{b}},
		testLine{gen: []ident.Symbol{a, b}, kill: []ident.Symbol{c}},
		testLine{gen: []ident.Symbol{c}},
	))
	live := dataflow.ComputeLiveness(cfg)

	require.ElementsMatch(t, []ident.Symbol{}, live.LiveIn[0].ToSlice())
	require.ElementsMatch(t, []ident.Symbol{a}, live.LiveIn[1].ToSlice())
	require.ElementsMatch(t, []ident.Symbol{a, b}, live.LiveIn[2].ToSlice())
	require.ElementsMatch(t, []ident.Symbol{c}, live.LiveIn[3].ToSlice())
	require.ElementsMatch(t, []ident.Symbol{a}, live.LiveOut[0].ToSlice())
	require.ElementsMatch(t, []ident.Symbol{}, live.LiveOut[3].ToSlice())
}

// TestLivenessLoop checks the fixpoint tolerates cycles: a symbol used
// after a loop and defined before it stays live across every node of the
// loop body.
func TestLivenessLoop(t *testing.T) {
	gen := ident.NewGen()
	s, i := gen.Symbol(), gen.Symbol()
	head := gen.Label()

	// 0: s := ...; 1: i := ...; 2: head:; 3: i := i - 1;
	// 4: jc head; 5: use s
	cfg := dataflow.Build(lines(
		testLine{kill: []ident.Symbol{s}},
		testLine{kill: []ident.Symbol{i}},
		testLine{label: &head},
		testLine{gen: []ident.Symbol{i}, kill: []ident.Symbol{i}},
		testLine{condJump: &head, gen: []ident.Symbol{i}},
		testLine{gen: []ident.Symbol{s}},
	))
	live := dataflow.ComputeLiveness(cfg)

	for n := 2; n <= 4; n++ {
		require.True(t, live.LiveIn[n].Contains(s), "s must be live into node %d", n)
		require.True(t, live.LiveIn[n].Contains(i), "i must be live into node %d", n)
	}
	require.False(t, live.LiveIn[0].Contains(s))
}

// TestLivenessLaws spot-checks the two fixpoint laws on a
// diamond-shaped graph.
func TestLivenessLaws(t *testing.T) {
	gen := ident.NewGen()
	a, b := gen.Symbol(), gen.Symbol()
	els, end := gen.Label(), gen.Label()

	// 0: a := ...; 1: jc els; 2: b := a; 3: jmp end; 4: els:;
	// 5: b := a + a; 6: end:; 7: use b
	cfg := dataflow.Build(lines(
		testLine{kill: []ident.Symbol{a}},
		testLine{condJump: &els},
		testLine{gen: []ident.Symbol{a}, kill: []ident.Symbol{b}},
		testLine{jump: &end},
		testLine{label: &els},
		testLine{gen: []ident.Symbol{a}, kill: []ident.Symbol{b}},
		testLine{label: &end},
		testLine{gen: []ident.Symbol{b}},
	))
	live := dataflow.ComputeLiveness(cfg)

	for n := range cfg.Lines {
		genSet := live.Gen[n].Clone()
		genSet.SubtractInPlace(live.LiveIn[n])
		require.Zero(t, genSet.Len(), "live_in[%d] must contain gen[%d]", n, n)

		residual := live.LiveOut[n].Clone()
		residual.SubtractInPlace(live.Kill[n])
		residual.SubtractInPlace(live.LiveIn[n])
		require.Zero(t, residual.Len(), "live_in[%d] must contain live_out - kill", n)
	}

	require.True(t, live.LiveOut[0].Contains(a))
	require.False(t, live.LiveOut[7].Contains(b))
}

func TestSymSetOperations(t *testing.T) {
	gen := ident.NewGen()
	a, b, c := gen.Symbol(), gen.Symbol(), gen.Symbol()

	s := dataflow.NewSymSetFrom([]ident.Symbol{a, b})
	require.True(t, s.Contains(a))
	require.False(t, s.Contains(c))
	require.Equal(t, 2, s.Len())

	o := dataflow.NewSymSetFrom([]ident.Symbol{b, c})
	u := s.Clone()
	u.UnionInPlace(o)
	require.ElementsMatch(t, []ident.Symbol{a, b, c}, u.ToSlice())

	d := u.Clone()
	d.SubtractInPlace(s)
	require.ElementsMatch(t, []ident.Symbol{c}, d.ToSlice())

	require.True(t, s.Equal(dataflow.NewSymSetFrom([]ident.Symbol{b, a})))
	require.False(t, s.Equal(o))
}
