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

package x64s

import (
	"github.com/johnflanigan/catc/internal/dataflow"
	"github.com/johnflanigan/catc/internal/ident"
)

// This file implements the dataflow.Line method set for X64S, deriving
// gen/kill per opcode and operand shape: a Mem operand always reads
// its address-holding symbol regardless of which operand position it
// occupies; movq/lea write only their destination; add/sub/and/or/cmp
// read-and-write their destination-like operand (the second operand in
// our struct fields, except Cmpq where it's Left -- cmpq is printed
// "cmpq right, left" so Left plays the destination role).

func (l LabelLine) Label() (ident.Label, bool)    { return l.L, true }
func (l LabelLine) Jump() (ident.Label, bool)     { return ident.Label{}, false }
func (l LabelLine) CondJump() (ident.Label, bool) { return ident.Label{}, false }
func (l LabelLine) Gen() []ident.Symbol           { return nil }
func (l LabelLine) Kill() []ident.Symbol          { return nil }

func (l InstrLine) Label() (ident.Label, bool) { return ident.Label{}, false }

func (l InstrLine) Jump() (ident.Label, bool) {
	if j, ok := l.I.(Jmp); ok {
		return j.Target, true
	}
	return ident.Label{}, false
}

func (l InstrLine) CondJump() (ident.Label, bool) {
	if j, ok := l.I.(Jcc); ok {
		return j.Target, true
	}
	return ident.Label{}, false
}

// symOf returns the Symbol an operand carries, whether it reads it as a
// Sym (a home not yet assigned) or as a Mem (an address always read
// to compute the dereference, regardless of operand position).
func symOf(op Operand) (ident.Symbol, bool) {
	switch o := op.(type) {
	case Sym:
		return o.Symbol, true
	case Mem:
		return o.Symbol, true
	default:
		return ident.Symbol{}, false
	}
}

func isSym(op Operand) bool {
	_, ok := op.(Sym)
	return ok
}

func appendIf(syms []ident.Symbol, op Operand) []ident.Symbol {
	if s, ok := symOf(op); ok {
		return append(syms, s)
	}
	return syms
}

func (l InstrLine) Gen() []ident.Symbol {
	var g []ident.Symbol
	switch i := l.I.(type) {
	case Movq:
		g = appendIf(g, i.Src)
		if _, ok := i.Dst.(Mem); ok {
			g = appendIf(g, i.Dst)
		}
	case Negq:
		g = appendIf(g, i.Dst)
	case Addq:
		g = appendIf(g, i.Src)
		g = appendIf(g, i.Dst)
	case Subq:
		g = appendIf(g, i.Src)
		g = appendIf(g, i.Dst)
	case Andq:
		g = appendIf(g, i.Src)
		g = appendIf(g, i.Dst)
	case Orq:
		g = appendIf(g, i.Src)
		g = appendIf(g, i.Dst)
	case Imulq:
		g = appendIf(g, i.Src)
	case Idivq:
		g = appendIf(g, i.Src)
	case Leaq:
		if _, ok := i.Dst.(Mem); ok {
			g = appendIf(g, i.Dst)
		}
	case Cmpq:
		g = appendIf(g, i.Left)
		g = appendIf(g, i.Right)
	case Push:
		g = appendIf(g, i.Src)
	case Pop:
		if _, ok := i.Dst.(Mem); ok {
			g = appendIf(g, i.Dst)
		}
	}
	return g
}

func (l InstrLine) Kill() []ident.Symbol {
	var k []ident.Symbol
	switch i := l.I.(type) {
	case Movq:
		if isSym(i.Dst) {
			k = appendIf(k, i.Dst)
		}
	case Negq:
		if isSym(i.Dst) {
			k = appendIf(k, i.Dst)
		}
	case Addq:
		if isSym(i.Dst) {
			k = appendIf(k, i.Dst)
		}
	case Subq:
		if isSym(i.Dst) {
			k = appendIf(k, i.Dst)
		}
	case Andq:
		if isSym(i.Dst) {
			k = appendIf(k, i.Dst)
		}
	case Orq:
		if isSym(i.Dst) {
			k = appendIf(k, i.Dst)
		}
	case Leaq:
		if isSym(i.Dst) {
			k = appendIf(k, i.Dst)
		}
	case Cmpq:
		if isSym(i.Left) {
			k = appendIf(k, i.Left)
		}
	case Pop:
		if isSym(i.Dst) {
			k = appendIf(k, i.Dst)
		}
	}
	return k
}

// Lines converts a selected function's body to the dataflow.Line slice
// the CFG builder and liveness fixpoint expect, the same way lir.Lines
// does for the pre-selection IR.
func Lines(body []Line) []dataflow.Line {
	out := make([]dataflow.Line, len(body))
	for i, l := range body {
		out[i] = l.(dataflow.Line)
	}
	return out
}
