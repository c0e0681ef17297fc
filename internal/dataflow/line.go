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

// Package dataflow is the substrate shared by every pass that needs a
// control-flow graph or live-variable sets: it knows nothing about LIR or
// X64S concretely, only about the Line interface below. Package lir and
// package x64s each satisfy it structurally for their own instruction
// streams, so the same CFG builder and liveness fixpoint serve both the
// pre-selection and post-legalization stages.
package dataflow

import "github.com/johnflanigan/catc/internal/ident"

// Line is one entry of a function body -- a label definition or an
// instruction -- as seen by data-flow analysis.
type Line interface {
	// Label reports the label this line defines, if it is a label.
	Label() (ident.Label, bool)
	// Jump reports the unconditional jump target, if this line is an
	// unconditional jump. An unconditional jump has no fall-through edge.
	Jump() (ident.Label, bool)
	// CondJump reports the taken-branch target, if this line is a
	// conditional jump. A conditional jump also has a fall-through edge.
	CondJump() (ident.Label, bool)
	// Gen is the set of symbols read before any write in this line.
	Gen() []ident.Symbol
	// Kill is the set of symbols written by this line.
	Kill() []ident.Symbol
}
