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

// Package ident holds the compiler's three families of opaque, hashable
// identity values -- Symbol, Label and TypeId -- plus the monotonic
// generators that mint them. None of the three carry arithmetic; they are
// generate/compare/hash/print only, matching the "identity-bearing scalar"
// design used throughout the rest of the pipeline.
package ident

import "fmt"

// Symbol names a value-carrying occurrence: a variable, a temporary, a
// function parameter. Equality is identity, not structural.
type Symbol struct {
	id int
}

func (s Symbol) String() string { return fmt.Sprintf("t%d", s.id) }

// Index returns the dense, zero-based allocation order of s. It exists
// solely so data-flow analyses can back Symbol sets with a bitset instead
// of a hash set; it carries no other meaning and must never be used for
// arithmetic on the symbol's identity.
func (s Symbol) Index() int { return s.id }

// SymbolFromIndex reconstructs the Symbol a Gen produced at the given
// allocation order. Only dataflow's bitset-backed sets use this, to turn a
// bit position back into the Symbol it stands for.
func SymbolFromIndex(i int) Symbol { return Symbol{id: i} }

// wellKnown enumerates the Labels that are fixed ahead of time rather than
// freshly generated: the program entry point and the runtime routines the
// backend calls into directly.
type wellKnown int

const (
	notWellKnown wellKnown = iota
	wkMain
	wkAllocate
	wkAllocateAndMemset
	wkPrintLineInt
	wkPrintLineString
	wkPrintInt
	wkPrintString
)

// Label names an instruction target: a jump destination or a function.
// It is a closed union of a fresh-counter variant and the well-known
// variants above.
type Label struct {
	id   int
	kind wellKnown
}

// Well-known labels. These never come from a Gen; they are constants shared
// by every compilation unit.
var (
	LMain              = Label{kind: wkMain}
	LAllocate          = Label{kind: wkAllocate}
	LAllocateAndMemset = Label{kind: wkAllocateAndMemset}
	LPrintLineInt      = Label{kind: wkPrintLineInt}
	LPrintLineString   = Label{kind: wkPrintLineString}
	LPrintInt          = Label{kind: wkPrintInt}
	LPrintString       = Label{kind: wkPrintString}
)

// IsWellKnown reports whether l is one of the fixed runtime/entry labels
// rather than a freshly generated one.
func (l Label) IsWellKnown() bool { return l.kind != notWellKnown }

func (l Label) String() string {
	switch l.kind {
	case wkMain:
		return "_main"
	case wkAllocate:
		return "allocate"
	case wkAllocateAndMemset:
		return "allocate_and_memset"
	case wkPrintLineInt:
		return "_print_line_int"
	case wkPrintLineString:
		return "_print_line_string"
	case wkPrintInt:
		return "_print_int"
	case wkPrintString:
		return "_print_string"
	default:
		return fmt.Sprintf("L%d", l.id)
	}
}

// TypeId names a type descriptor interned in a per-compilation table.
type TypeId struct {
	id int
}

func (t TypeId) String() string { return fmt.Sprintf("T%d", t.id) }

// Gen is the single-writer, value-threaded counter set that mints fresh
// Symbols, Labels and TypeIds. A pass that creates identifiers owns a Gen
// (or receives one from its caller) and is expected to thread it, not stash
// it behind a package-level variable -- there is only one compilation, so
// there is never a reason to share a Gen across goroutines.
type Gen struct {
	nextSymbol int
	nextLabel  int
	nextType   int
}

// NewGen returns a fresh generator with all counters at zero.
func NewGen() *Gen {
	return &Gen{}
}

// Symbol mints a fresh, never-before-seen Symbol.
func (g *Gen) Symbol() Symbol {
	s := Symbol{id: g.nextSymbol}
	g.nextSymbol++
	return s
}

// Label mints a fresh, never-before-seen (non-well-known) Label.
func (g *Gen) Label() Label {
	l := Label{id: g.nextLabel}
	g.nextLabel++
	return l
}

// TypeID mints a fresh, never-before-seen TypeId.
func (g *Gen) TypeID() TypeId {
	t := TypeId{id: g.nextType}
	g.nextType++
	return t
}
