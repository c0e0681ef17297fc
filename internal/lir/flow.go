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

package lir

import (
	"github.com/johnflanigan/catc/internal/dataflow"
	"github.com/johnflanigan/catc/internal/ident"
)

// This file implements the dataflow.Line method set (Gen/Kill/Label/Jump/
// CondJump) for LIR's two kinds of body entries. Package dataflow never
// imports package lir -- it is satisfied structurally, the same way
// package x64s satisfies it for the post-selection IR.

func (l LabelLine) Label() (ident.Label, bool)    { return l.L, true }
func (l LabelLine) Jump() (ident.Label, bool)     { return ident.Label{}, false }
func (l LabelLine) CondJump() (ident.Label, bool) { return ident.Label{}, false }
func (l LabelLine) Gen() []ident.Symbol           { return nil }
func (l LabelLine) Kill() []ident.Symbol          { return nil }

func (l InstrLine) Label() (ident.Label, bool) { return ident.Label{}, false }

func (l InstrLine) Jump() (ident.Label, bool) {
	if j, ok := l.I.(Jump); ok {
		return j.Target, true
	}
	return ident.Label{}, false
}

func (l InstrLine) CondJump() (ident.Label, bool) {
	if j, ok := l.I.(JumpC); ok {
		return j.Target, true
	}
	return ident.Label{}, false
}

func (l InstrLine) Gen() []ident.Symbol {
	switch i := l.I.(type) {
	case Nop, IntLit, StringLit, Jump:
		return nil
	case StoreAt:
		return []ident.Symbol{i.Val}
	case LoadAt:
		return []ident.Symbol{i.Loc, i.Off}
	case Assign:
		return []ident.Symbol{i.Src}
	case Negate:
		return []ident.Symbol{i.Src}
	case BinOp:
		return []ident.Symbol{i.Left, i.Right}
	case Call:
		return append([]ident.Symbol(nil), i.Args...)
	case JumpC:
		return []ident.Symbol{i.Left, i.Right}
	default:
		return nil
	}
}

// Lines converts a function body to the dataflow.Line slice its CFG
// builder and liveness fixpoint expect. Package dataflow never imports
// lir -- LabelLine and InstrLine satisfy dataflow.Line structurally, so
// this is a plain interface-to-interface assertion, not a new dependency
// in the other direction.
func Lines(body []Line) []dataflow.Line {
	out := make([]dataflow.Line, len(body))
	for i, l := range body {
		out[i] = l.(dataflow.Line)
	}
	return out
}

func (l InstrLine) Kill() []ident.Symbol {
	switch i := l.I.(type) {
	case Nop, Jump, JumpC:
		return nil
	case IntLit:
		return []ident.Symbol{i.Dst}
	case StringLit:
		return []ident.Symbol{i.Dst}
	case StoreAt:
		return []ident.Symbol{i.Loc, i.Off}
	case LoadAt:
		return []ident.Symbol{i.Dst}
	case Assign:
		return []ident.Symbol{i.Dst}
	case Negate:
		return []ident.Symbol{i.Dst}
	case BinOp:
		return []ident.Symbol{i.Dst}
	case Call:
		return []ident.Symbol{i.Dst}
	default:
		return nil
	}
}
