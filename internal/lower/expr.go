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
	"github.com/johnflanigan/catc/internal/ast"
	"github.com/johnflanigan/catc/internal/checked"
	"github.com/johnflanigan/catc/internal/ident"
	"github.com/johnflanigan/catc/internal/lir"
)

func binOpKind(op ast.InfixOp) lir.BinOpKind {
	switch op {
	case ast.OpAdd:
		return lir.OpAdd
	case ast.OpSub:
		return lir.OpSub
	case ast.OpMul:
		return lir.OpMul
	case ast.OpDiv:
		return lir.OpDiv
	case ast.OpAnd:
		return lir.OpAnd
	case ast.OpOr:
		return lir.OpOr
	default:
		panic("internal error: not an arithmetic/logical infix op")
	}
}

func cmpOpKind(op ast.InfixOp) lir.CmpOp {
	switch op {
	case ast.OpEq:
		return lir.CmpEq
	case ast.OpNeq:
		return lir.CmpNeq
	case ast.OpGt:
		return lir.CmpGt
	case ast.OpLt:
		return lir.CmpLt
	case ast.OpGe:
		return lir.CmpGe
	case ast.OpLe:
		return lir.CmpLe
	default:
		panic("internal error: not a comparison infix op")
	}
}

// lowerExp lowers e to a sequence of LIR lines plus the symbol holding its
// result. breakTarget is the label `break` should jump to; it is non-nil
// only while lowering the direct body of an enclosing while/for.
func (l *lowerer) lowerExp(e checked.Exp, breakTarget *ident.Label) ([]lir.Line, ident.Symbol) {
	switch e := e.(type) {
	case *checked.IntLitExp:
		dst := l.fresh()
		return []lir.Line{instr(lir.IntLit{Dst: dst, Value: int64(e.Value)})}, dst

	case *checked.StringLitExp:
		dst := l.fresh()
		return []lir.Line{instr(lir.StringLit{Dst: dst, Value: e.Value})}, dst

	case *checked.LValueExp:
		return l.lowerLValueRead(e.LValue)

	case *checked.SeqExp:
		if len(e.Exps) == 0 {
			return nil, l.fresh()
		}
		var lines []lir.Line
		var last ident.Symbol
		for _, sub := range e.Exps {
			subLines, sym := l.lowerExp(sub, breakTarget)
			lines = append(lines, subLines...)
			last = sym
		}
		return lines, last

	case *checked.NegateExp:
		lines, src := l.lowerExp(e.Operand, breakTarget)
		dst := l.fresh()
		lines = append(lines, instr(lir.Negate{Dst: dst, Src: src}))
		return lines, dst

	case *checked.InfixExp:
		return l.lowerInfix(e, breakTarget)

	case *checked.ArrayCreateExp:
		lengthLines, lengthSym := l.lowerExp(e.Length, breakTarget)
		initLines, initSym := l.lowerExp(e.Init, breakTarget)
		dst := l.fresh()
		lines := append(lengthLines, initLines...)
		lines = append(lines, instr(lir.Call{Dst: dst, Func: ident.LAllocateAndMemset, Args: []ident.Symbol{lengthSym, initSym}}))
		return lines, dst

	case *checked.RecordCreateExp:
		return l.lowerRecordCreate(e, breakTarget)

	case *checked.AssignExp:
		rhsLines, rhsSym := l.lowerExp(e.Right, breakTarget)
		writeLines := l.lowerLValueWrite(e.Left, rhsSym, breakTarget)
		lines := append(rhsLines, writeLines...)
		return lines, l.fresh()

	case *checked.IfExp:
		return l.lowerIf(e, breakTarget)

	case *checked.WhileExp:
		return l.lowerWhile(e)

	case *checked.ForExp:
		return l.lowerFor(e)

	case *checked.LetExp:
		var lines []lir.Line
		for _, d := range e.Decs {
			initLines, initSym := l.lowerExp(d.Init, breakTarget)
			lines = append(lines, initLines...)
			lines = append(lines, instr(lir.Assign{Dst: d.Symbol, Src: initSym}))
		}
		inLines, inSym := l.lowerExp(e.In, breakTarget)
		lines = append(lines, inLines...)
		return lines, inSym

	case *checked.CallExp:
		var lines []lir.Line
		args := make([]ident.Symbol, len(e.Args))
		for i, a := range e.Args {
			argLines, argSym := l.lowerExp(a, breakTarget)
			lines = append(lines, argLines...)
			args[i] = argSym
		}
		dst := l.fresh()
		lines = append(lines, instr(lir.Call{Dst: dst, Func: e.Func, Args: args}))
		return lines, dst

	case *checked.BreakExp:
		if breakTarget == nil {
			panic("internal error: break with no enclosing loop reached lowering")
		}
		return []lir.Line{instr(lir.Jump{Target: *breakTarget})}, l.fresh()

	default:
		panic("internal error: unhandled checked expression kind")
	}
}

func (l *lowerer) lowerInfix(e *checked.InfixExp, breakTarget *ident.Label) ([]lir.Line, ident.Symbol) {
	leftLines, leftSym := l.lowerExp(e.Left, breakTarget)
	rightLines, rightSym := l.lowerExp(e.Right, breakTarget)
	lines := append(leftLines, rightLines...)

	if !e.Op.IsComparison() {
		dst := l.fresh()
		lines = append(lines, instr(lir.BinOp{Dst: dst, Left: leftSym, Op: binOpKind(e.Op), Right: rightSym}))
		return lines, dst
	}

	trueL := l.freshLabel()
	endL := l.freshLabel()
	dst := l.fresh()
	lines = append(lines,
		instr(lir.JumpC{Target: trueL, Cond: cmpOpKind(e.Op), Left: leftSym, Right: rightSym}),
		instr(lir.IntLit{Dst: dst, Value: 0}),
		instr(lir.Jump{Target: endL}),
		label(trueL),
		instr(lir.IntLit{Dst: dst, Value: 1}),
		label(endL),
	)
	return lines, dst
}

func (l *lowerer) lowerRecordCreate(e *checked.RecordCreateExp, breakTarget *ident.Label) ([]lir.Line, ident.Symbol) {
	countSym := l.fresh()
	dst := l.fresh()
	lines := []lir.Line{
		instr(lir.IntLit{Dst: countSym, Value: int64(len(e.Fields))}),
		instr(lir.Call{Dst: dst, Func: ident.LAllocateAndMemset, Args: []ident.Symbol{countSym}}),
	}
	for i, f := range e.Fields {
		fieldLines, fieldSym := l.lowerExp(f.Exp, breakTarget)
		lines = append(lines, fieldLines...)
		idxSym := l.fresh()
		lines = append(lines,
			instr(lir.IntLit{Dst: idxSym, Value: int64(i)}),
			instr(lir.StoreAt{Loc: dst, Off: idxSym, Val: fieldSym}),
		)
	}
	return lines, dst
}

func (l *lowerer) lowerIf(e *checked.IfExp, breakTarget *ident.Label) ([]lir.Line, ident.Symbol) {
	condLines, condSym := l.lowerExp(e.Cond, breakTarget)
	zero := l.fresh()
	condLines = append(condLines, instr(lir.IntLit{Dst: zero, Value: 0}))

	if e.Else == nil {
		endL := l.freshLabel()
		thenLines, _ := l.lowerExp(e.Then, breakTarget)
		lines := append(condLines, instr(lir.JumpC{Target: endL, Cond: lir.CmpEq, Left: condSym, Right: zero}))
		lines = append(lines, thenLines...)
		lines = append(lines, label(endL))
		return lines, l.fresh()
	}

	trueL, falseL, endL := l.freshLabel(), l.freshLabel(), l.freshLabel()
	thenLines, thenSym := l.lowerExp(e.Then, breakTarget)
	elseLines, elseSym := l.lowerExp(e.Else, breakTarget)
	result := l.fresh()

	lines := append(condLines, instr(lir.JumpC{Target: trueL, Cond: lir.CmpNeq, Left: condSym, Right: zero}))
	lines = append(lines, instr(lir.Jump{Target: falseL}))
	lines = append(lines, label(trueL))
	lines = append(lines, thenLines...)
	lines = append(lines, instr(lir.Assign{Dst: result, Src: thenSym}))
	lines = append(lines, instr(lir.Jump{Target: endL}))
	lines = append(lines, label(falseL))
	lines = append(lines, elseLines...)
	lines = append(lines, instr(lir.Assign{Dst: result, Src: elseSym}))
	lines = append(lines, label(endL))
	return lines, result
}

func (l *lowerer) lowerWhile(e *checked.WhileExp) ([]lir.Line, ident.Symbol) {
	doL, condL, endL := l.freshLabel(), l.freshLabel(), l.freshLabel()
	bodyLines, _ := l.lowerExp(e.Body, &endL)
	condLines, condSym := l.lowerExp(e.Cond, nil)
	zero := l.fresh()

	var lines []lir.Line
	lines = append(lines, instr(lir.Jump{Target: condL}))
	lines = append(lines, label(doL))
	lines = append(lines, bodyLines...)
	lines = append(lines, label(condL))
	lines = append(lines, condLines...)
	lines = append(lines, instr(lir.IntLit{Dst: zero, Value: 0}))
	lines = append(lines, instr(lir.JumpC{Target: doL, Cond: lir.CmpNeq, Left: condSym, Right: zero}))
	lines = append(lines, label(endL))
	return lines, l.fresh()
}

func (l *lowerer) lowerFor(e *checked.ForExp) ([]lir.Line, ident.Symbol) {
	headL, endL := l.freshLabel(), l.freshLabel()

	loLines, loSym := l.lowerExp(e.Lo, nil)
	hiLines, hiSym := l.lowerExp(e.Hi, nil)
	bodyLines, _ := l.lowerExp(e.Body, &endL)
	one := l.fresh()

	var lines []lir.Line
	lines = append(lines, loLines...)
	lines = append(lines, instr(lir.Assign{Dst: e.Var, Src: loSym}))
	lines = append(lines, hiLines...)
	lines = append(lines, label(headL))
	lines = append(lines, instr(lir.JumpC{Target: endL, Cond: lir.CmpGt, Left: e.Var, Right: hiSym}))
	lines = append(lines, bodyLines...)
	lines = append(lines, instr(lir.IntLit{Dst: one, Value: 1}))
	lines = append(lines, instr(lir.BinOp{Dst: e.Var, Left: e.Var, Op: lir.OpAdd, Right: one}))
	lines = append(lines, instr(lir.Jump{Target: headL}))
	lines = append(lines, label(endL))
	return lines, l.fresh()
}

func (l *lowerer) freshLabel() ident.Label { return l.gen.Label() }
