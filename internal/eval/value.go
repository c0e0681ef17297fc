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

// Package eval holds the two tree-walking reference evaluators used by
// tests as a semantic oracle: one over the checked AST and one over LIR.
// A program whose compiled output disagrees with either has a backend
// bug; the two evaluators disagreeing with each other localizes it to
// lowering.
package eval

import "fmt"

// Value is the closed union of runtime values: integers, string
// pointers, and heap references (arrays and records share one layout, a
// sequence of 8-byte slots).
type Value interface{ value() }

type Int int64

type Str string

// Ref is a heap allocation. Both evaluators model allocate and
// allocate_and_memset with one of these; slot zero-fill is Int(0).
type Ref struct{ Cells []Value }

func (Int) value()  {}
func (Str) value()  {}
func (*Ref) value() {}

func asInt(v Value) (int64, error) {
	i, ok := v.(Int)
	if !ok {
		return 0, fmt.Errorf("expected an int value, got %T", v)
	}
	return int64(i), nil
}

func asRef(v Value) (*Ref, error) {
	r, ok := v.(*Ref)
	if !ok {
		return nil, fmt.Errorf("expected a heap reference, got %T", v)
	}
	return r, nil
}

func newRef(n int64, init Value) (*Ref, error) {
	if n < 0 {
		return nil, fmt.Errorf("allocation of negative length %d", n)
	}
	cells := make([]Value, n)
	for i := range cells {
		cells[i] = init
	}
	return &Ref{Cells: cells}, nil
}

func (r *Ref) load(off int64) (Value, error) {
	if off < 0 || off >= int64(len(r.Cells)) {
		return nil, fmt.Errorf("heap access at slot %d outside allocation of %d slots", off, len(r.Cells))
	}
	return r.Cells[off], nil
}

func (r *Ref) store(off int64, v Value) error {
	if off < 0 || off >= int64(len(r.Cells)) {
		return fmt.Errorf("heap access at slot %d outside allocation of %d slots", off, len(r.Cells))
	}
	r.Cells[off] = v
	return nil
}
