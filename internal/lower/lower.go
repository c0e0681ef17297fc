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

// Package lower turns a checked.Program into a lir.Program: structured
// control flow is linearized into labeled jumps, compound expressions are
// broken into three-address instructions over fresh temporaries, and
// arrays/records become heap allocations with indexed stores.
package lower

import (
	"github.com/johnflanigan/catc/internal/checked"
	"github.com/johnflanigan/catc/internal/ident"
	"github.com/johnflanigan/catc/internal/lir"
)

type lowerer struct {
	gen *ident.Gen
}

func (l *lowerer) fresh() ident.Symbol {
	return l.gen.Symbol()
}

func instr(i lir.Instruction) lir.Line { return lir.InstrLine{I: i} }
func label(lbl ident.Label) lir.Line   { return lir.LabelLine{L: lbl} }

// Lower lowers every function in prog, threading info's generator (shared
// with the checker) so temporaries never collide with checker-minted
// symbols such as let-bindings and for-loop induction variables.
func Lower(prog *checked.Program, info *checked.Info) *lir.Program {
	others := make(map[ident.Label]*lir.Function, len(prog.Functions))
	var main *lir.Function
	for _, fn := range prog.Functions {
		lf := lowerFunction(info.Gen, fn)
		if fn.Label == prog.Main {
			main = lf
		} else {
			others[fn.Label] = lf
		}
	}
	return &lir.Program{Main: main, Others: others}
}

func lowerFunction(gen *ident.Gen, fn *checked.Function) *lir.Function {
	l := &lowerer{gen: gen}
	body, result := l.lowerExp(fn.Body, nil)

	params := make([]ident.Symbol, len(fn.Type.Parameters))
	paramSet := make(map[ident.Symbol]bool, len(params))
	for i, p := range fn.Type.Parameters {
		params[i] = p.Symbol
		paramSet[p.Symbol] = true
	}

	locals := collectLocals(body, result, paramSet)

	return &lir.Function{
		Parameters:   params,
		Locals:       locals,
		ReturnSymbol: result,
		Body:         body,
	}
}

// collectLocals enumerates, in first-seen order, every symbol the body
// references that isn't a parameter -- lowering's own temporaries as well
// as checker-minted let-bindings and for-loop induction variables, all of
// which need a home from the register allocator just the same.
func collectLocals(body []lir.Line, result ident.Symbol, paramSet map[ident.Symbol]bool) []ident.Symbol {
	var locals []ident.Symbol
	seen := make(map[ident.Symbol]bool)
	add := func(s ident.Symbol) {
		if paramSet[s] || seen[s] {
			return
		}
		seen[s] = true
		locals = append(locals, s)
	}
	for _, ln := range body {
		if il, ok := ln.(lir.InstrLine); ok {
			for _, s := range il.Gen() {
				add(s)
			}
			for _, s := range il.Kill() {
				add(s)
			}
		}
	}
	add(result)
	return locals
}
