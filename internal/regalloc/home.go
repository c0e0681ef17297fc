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

// Package regalloc assigns every symbol in a legalized x64s.Function a
// Home -- a physical register or a frame-relative stack slot -- and
// applies that assignment to produce a physical x64.Program. Two
// allocators are provided: Baseline, which spills everything, and
// GraphColor, an interference-graph coloring allocator over the
// liveness result.
package regalloc

import "github.com/johnflanigan/catc/internal/x64s"

// Home is where a symbol lives after allocation: either one of the 14
// available physical registers, or a stack slot at a given byte offset
// from %rbp (always negative, always 8-aligned).
type Home struct {
	reg      x64s.PhysReg
	isReg    bool
	offset   int
	isOffset bool
}

// RegisterHome returns the Home that places a symbol in register r.
func RegisterHome(r x64s.PhysReg) Home { return Home{reg: r, isReg: true} }

// StackHome returns the Home that places a symbol at offset(%rbp).
func StackHome(offset int) Home { return Home{offset: offset, isOffset: true} }

// IsRegister reports whether h is a register home.
func (h Home) IsRegister() bool { return h.isReg }

// Register returns the register h names. Only valid if h.IsRegister().
func (h Home) Register() x64s.PhysReg { return h.reg }

// Offset returns the stack offset h names. Only valid if !h.IsRegister().
func (h Home) Offset() int { return h.offset }

// align16 rounds n up to the nearest multiple of 16, for the frame size
// the System-V ABI requires at a call boundary.
func align16(n int) int {
	if n%16 == 0 {
		return n
	}
	return n + (16 - n%16)
}
