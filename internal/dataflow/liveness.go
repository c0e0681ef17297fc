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

package dataflow

// Liveness holds the backward fixpoint result for a CFG: per-node gen/kill
// (cached from the Lines themselves) and the computed live-in/live-out
// sets.
type Liveness struct {
	Gen, Kill       []*SymSet
	LiveIn, LiveOut []*SymSet
}

// ComputeLiveness runs the standard backward work-list fixpoint:
//
//	live_out[n] = U live_in[s] for s in succ(n)
//	live_in[n]  = gen[n] U (live_out[n] - kill[n])
//
// terminating when no live_in set changes. Nodes are revisited whenever a
// successor's live_in grows, so the fixpoint laws hold regardless of
// visiting order.
func ComputeLiveness(cfg *CFG) *Liveness {
	n := len(cfg.Lines)
	gen := make([]*SymSet, n)
	kill := make([]*SymSet, n)
	liveIn := make([]*SymSet, n)
	liveOut := make([]*SymSet, n)
	for i, l := range cfg.Lines {
		gen[i] = NewSymSetFrom(l.Gen())
		kill[i] = NewSymSetFrom(l.Kill())
		liveIn[i] = NewSymSet()
		liveOut[i] = NewSymSet()
	}

	worklist := make([]int, n)
	inWorklist := make([]bool, n)
	for i := 0; i < n; i++ {
		worklist[i] = i
		inWorklist[i] = true
	}

	for len(worklist) > 0 {
		i := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		inWorklist[i] = false

		out := NewSymSet()
		for _, s := range cfg.Succ[i] {
			out.UnionInPlace(liveIn[s])
		}
		liveOut[i] = out

		in := out.Clone()
		in.SubtractInPlace(kill[i])
		in.UnionInPlace(gen[i])

		if !in.Equal(liveIn[i]) {
			liveIn[i] = in
			for _, p := range cfg.Pred[i] {
				if !inWorklist[p] {
					worklist = append(worklist, p)
					inWorklist[p] = true
				}
			}
		}
	}

	return &Liveness{Gen: gen, Kill: kill, LiveIn: liveIn, LiveOut: liveOut}
}
