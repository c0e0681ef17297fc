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

import "github.com/johnflanigan/catc/internal/ident"

// CFG is a per-function control-flow graph over the indexed lines of its
// body. Node indices are positions in Lines; the distinguished Start node
// is implicit (it only ever has an edge to node 0, which nothing needs to
// look up), and End is implicit too (the last node on any path simply has
// no successors).
type CFG struct {
	Lines []Line
	Succ  [][]int
	Pred  [][]int
}

// Build constructs the CFG for one function body. Edges:
//   - a label falls through to the next line like any other non-terminal.
//   - an unconditional jump has its single target edge and no fall-through.
//   - a conditional jump has both its target edge and a fall-through edge.
//   - the last line has no successor (its implicit edge is to End).
func Build(lines []Line) *CFG {
	n := len(lines)
	labelIndex := make(map[ident.Label]int, n)
	for i, l := range lines {
		if lbl, ok := l.Label(); ok {
			labelIndex[lbl] = i
		}
	}

	succ := make([][]int, n)
	for i, l := range lines {
		if target, ok := l.Jump(); ok {
			succ[i] = []int{labelIndex[target]}
			continue
		}
		if target, ok := l.CondJump(); ok {
			s := []int{labelIndex[target]}
			if i+1 < n {
				s = append(s, i+1)
			}
			succ[i] = s
			continue
		}
		if i+1 < n {
			succ[i] = []int{i + 1}
		}
	}

	pred := make([][]int, n)
	for i, ss := range succ {
		for _, s := range ss {
			pred[s] = append(pred[s], i)
		}
	}

	return &CFG{Lines: lines, Succ: succ, Pred: pred}
}
