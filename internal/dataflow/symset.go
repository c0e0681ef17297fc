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

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/johnflanigan/catc/internal/ident"
)

// SymSet is a set of Symbols backed by a bitset keyed on Symbol.Index --
// gen/kill/live sets are recomputed to a fixpoint many times over a
// function's body, so a dense bitset beats a hash set here the same way it
// does in any other liveness implementation.
type SymSet struct {
	bits *bitset.BitSet
}

// NewSymSet returns an empty set.
func NewSymSet() *SymSet {
	return &SymSet{bits: bitset.New(0)}
}

// NewSymSetFrom returns a set containing exactly syms.
func NewSymSetFrom(syms []ident.Symbol) *SymSet {
	s := NewSymSet()
	for _, sym := range syms {
		s.Add(sym)
	}
	return s
}

// Add inserts sym into the set.
func (s *SymSet) Add(sym ident.Symbol) { s.bits.Set(uint(sym.Index())) }

// Contains reports whether sym is in the set.
func (s *SymSet) Contains(sym ident.Symbol) bool { return s.bits.Test(uint(sym.Index())) }

// Clone returns an independent copy of s.
func (s *SymSet) Clone() *SymSet { return &SymSet{bits: s.bits.Clone()} }

// UnionInPlace adds every member of o into s.
func (s *SymSet) UnionInPlace(o *SymSet) { s.bits.InPlaceUnion(o.bits) }

// SubtractInPlace removes every member of o from s.
func (s *SymSet) SubtractInPlace(o *SymSet) { s.bits.InPlaceDifference(o.bits) }

// Equal reports whether s and o contain the same symbols.
func (s *SymSet) Equal(o *SymSet) bool { return s.bits.Equal(o.bits) }

// ToSlice returns the set's members in increasing allocation order.
func (s *SymSet) ToSlice() []ident.Symbol {
	var out []ident.Symbol
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		out = append(out, ident.SymbolFromIndex(int(i)))
	}
	return out
}

// Len returns the number of symbols in the set.
func (s *SymSet) Len() int { return int(s.bits.Count()) }
