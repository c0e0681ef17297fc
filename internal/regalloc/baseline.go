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

package regalloc

import (
	"github.com/johnflanigan/catc/internal/ident"
	"github.com/johnflanigan/catc/internal/x64s"
)

// Baseline assigns every parameter and local of fn its own distinct stack
// slot, in first-seen order -- the simplest possible total home map, and
// the one always available as a fallback when GraphColor is skipped or
// disabled.
func Baseline(fn *x64s.Function) map[ident.Symbol]Home {
	homes := make(map[ident.Symbol]Home)
	offset := -8

	assign := func(s ident.Symbol) {
		if _, ok := homes[s]; ok {
			return
		}
		homes[s] = StackHome(offset)
		offset -= 8
	}

	for _, p := range fn.Parameters {
		assign(p)
	}
	for _, l := range fn.Locals {
		assign(l)
	}

	return homes
}
