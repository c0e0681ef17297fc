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

package lower

import (
	"github.com/johnflanigan/catc/internal/checked"
	"github.com/johnflanigan/catc/internal/ident"
	"github.com/johnflanigan/catc/internal/lir"
)

// lowerLValueRead lowers an lvalue occurring in read position to the lines
// that compute its value plus the symbol holding it. A bare identifier
// needs no address arithmetic at all; subscripts and fields both reduce to
// one LoadAt once their base and offset are in hand.
func (l *lowerer) lowerLValueRead(lv checked.LValue) ([]lir.Line, ident.Symbol) {
	switch lv := lv.(type) {
	case *checked.IdLValue:
		// Copy into a fresh symbol rather than handing out the binding
		// itself: StoreAt treats its address operands as scratch, and the
		// copy keeps that clobber away from the user-visible variable.
		dst := l.fresh()
		return []lir.Line{instr(lir.Assign{Dst: dst, Src: lv.Symbol})}, dst

	case *checked.SubscriptLValue:
		baseLines, baseSym := l.lowerLValueRead(lv.Base)
		idxLines, idxSym := l.lowerExp(lv.Index, nil)
		dst := l.fresh()
		lines := append(baseLines, idxLines...)
		lines = append(lines, instr(lir.LoadAt{Dst: dst, Loc: baseSym, Off: idxSym}))
		return lines, dst

	case *checked.FieldLValue:
		baseLines, baseSym := l.lowerLValueRead(lv.Base)
		idxSym := l.fresh()
		dst := l.fresh()
		lines := append(baseLines,
			instr(lir.IntLit{Dst: idxSym, Value: int64(lv.FieldIndex)}),
			instr(lir.LoadAt{Dst: dst, Loc: baseSym, Off: idxSym}),
		)
		return lines, dst

	default:
		panic("internal error: unhandled checked lvalue kind")
	}
}

// lowerLValueWrite lowers an assignment target: storing val into lv. An
// identifier target is a plain Assign; subscripts and fields resolve their
// base and offset exactly as lowerLValueRead does, then emit a StoreAt
// instead of a LoadAt.
func (l *lowerer) lowerLValueWrite(lv checked.LValue, val ident.Symbol, breakTarget *ident.Label) []lir.Line {
	switch lv := lv.(type) {
	case *checked.IdLValue:
		return []lir.Line{instr(lir.Assign{Dst: lv.Symbol, Src: val})}

	case *checked.SubscriptLValue:
		baseLines, baseSym := l.lowerLValueRead(lv.Base)
		idxLines, idxSym := l.lowerExp(lv.Index, breakTarget)
		lines := append(baseLines, idxLines...)
		lines = append(lines, instr(lir.StoreAt{Loc: baseSym, Off: idxSym, Val: val}))
		return lines

	case *checked.FieldLValue:
		baseLines, baseSym := l.lowerLValueRead(lv.Base)
		idxSym := l.fresh()
		lines := append(baseLines,
			instr(lir.IntLit{Dst: idxSym, Value: int64(lv.FieldIndex)}),
			instr(lir.StoreAt{Loc: baseSym, Off: idxSym, Val: val}),
		)
		return lines

	default:
		panic("internal error: unhandled checked lvalue kind")
	}
}
