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

package check

import (
	"github.com/johnflanigan/catc/internal/ast"
	"github.com/johnflanigan/catc/internal/checked"
	"github.com/johnflanigan/catc/internal/ident"
)

// checkExp type-checks e and returns its checked form together with its
// resolved type. breakable is true only while e is part of the dynamic
// continuation of an enclosing while/for body (sequencing, if/else arms,
// let's in-expression); it is forced false on every subexpression that
// computes a value feeding an operator -- conditions, indices, call
// arguments, initializers -- since break there would not target the
// lexically enclosing loop.
func checkExp(sc *scope, info *checked.Info, e ast.Exp, breakable bool) (checked.Exp, ident.TypeId, error) {
	switch e := e.(type) {
	case *ast.IntLitExp:
		return &checked.IntLitExp{Value: e.Value}, info.Int, nil

	case *ast.StringLitExp:
		return &checked.StringLitExp{Value: e.Value}, info.String, nil

	case *ast.LValueExp:
		lv, tid, err := checkLValue(sc, info, e.LValue)
		if err != nil {
			return nil, ident.TypeId{}, err
		}
		return &checked.LValueExp{LValue: lv}, tid, nil

	case *ast.SeqExp:
		if len(e.Exps) == 0 {
			return &checked.SeqExp{}, info.Void, nil
		}
		exps := make([]checked.Exp, len(e.Exps))
		var last ident.TypeId
		for i, sub := range e.Exps {
			ce, tid, err := checkExp(sc, info, sub, breakable)
			if err != nil {
				return nil, ident.TypeId{}, err
			}
			exps[i] = ce
			last = tid
		}
		return &checked.SeqExp{Exps: exps}, last, nil

	case *ast.NegateExp:
		operand, tid, err := checkExp(sc, info, e.Operand, false)
		if err != nil {
			return nil, ident.TypeId{}, err
		}
		if tid != info.Int {
			return nil, ident.TypeId{}, errf("negate operand must be int")
		}
		return &checked.NegateExp{Operand: operand}, info.Int, nil

	case *ast.InfixExp:
		left, ltid, err := checkExp(sc, info, e.Left, false)
		if err != nil {
			return nil, ident.TypeId{}, err
		}
		right, rtid, err := checkExp(sc, info, e.Right, false)
		if err != nil {
			return nil, ident.TypeId{}, err
		}
		if ltid != info.Int || rtid != info.Int {
			return nil, ident.TypeId{}, errf("infix operator requires int operands")
		}
		return &checked.InfixExp{Left: left, Op: e.Op, Right: right}, info.Int, nil

	case *ast.ArrayCreateExp:
		tid, ok := sc.lookupType(e.TypeName)
		if !ok {
			return nil, ident.TypeId{}, errf("unknown type %q", e.TypeName)
		}
		ty := info.TypeOf(tid)
		if ty.Kind != checked.KindArray {
			return nil, ident.TypeId{}, errf("%q is not an array type", e.TypeName)
		}
		length, ltid, err := checkExp(sc, info, e.Length, false)
		if err != nil {
			return nil, ident.TypeId{}, err
		}
		if ltid != info.Int {
			return nil, ident.TypeId{}, errf("array length must be int")
		}
		initExp, itid, err := checkExp(sc, info, e.Init, false)
		if err != nil {
			return nil, ident.TypeId{}, err
		}
		if !info.Equal(itid, ty.Elem) {
			return nil, ident.TypeId{}, errf("array initial value type mismatch")
		}
		return &checked.ArrayCreateExp{Length: length, Init: initExp}, tid, nil

	case *ast.RecordCreateExp:
		tid, ok := sc.lookupType(e.TypeName)
		if !ok {
			return nil, ident.TypeId{}, errf("unknown type %q", e.TypeName)
		}
		ty := info.TypeOf(tid)
		if ty.Kind != checked.KindRecord {
			return nil, ident.TypeId{}, errf("%q is not a record type", e.TypeName)
		}
		if len(e.Fields) != len(ty.Fields) {
			return nil, ident.TypeId{}, errf("record literal field count mismatch for %q", e.TypeName)
		}
		fields := make([]checked.FieldInit, len(e.Fields))
		for i, f := range e.Fields {
			expected := ty.Fields[i]
			if f.Name != expected.Name {
				return nil, ident.TypeId{}, errf("record literal field order/name mismatch: expected %q got %q", expected.Name, f.Name)
			}
			ce, ctid, err := checkExp(sc, info, f.Exp, false)
			if err != nil {
				return nil, ident.TypeId{}, err
			}
			if !info.Equal(ctid, expected.Type) {
				return nil, ident.TypeId{}, errf("record field %q type mismatch", f.Name)
			}
			fields[i] = checked.FieldInit{Name: f.Name, Exp: ce}
		}
		return &checked.RecordCreateExp{Fields: fields}, tid, nil

	case *ast.AssignExp:
		lv, ltid, err := checkLValue(sc, info, e.Left)
		if err != nil {
			return nil, ident.TypeId{}, err
		}
		right, rtid, err := checkExp(sc, info, e.Right, false)
		if err != nil {
			return nil, ident.TypeId{}, err
		}
		if !info.Equal(ltid, rtid) {
			return nil, ident.TypeId{}, errf("assignment type mismatch")
		}
		return &checked.AssignExp{Left: lv, Right: right}, info.Void, nil

	case *ast.IfExp:
		cond, ctid, err := checkExp(sc, info, e.Cond, false)
		if err != nil {
			return nil, ident.TypeId{}, err
		}
		if ctid != info.Int {
			return nil, ident.TypeId{}, errf("if condition must be int")
		}
		if e.Else == nil {
			then, ttid, err := checkExp(sc, info, e.Then, breakable)
			if err != nil {
				return nil, ident.TypeId{}, err
			}
			if ttid != info.Void {
				return nil, ident.TypeId{}, errf("if-then without else must be void")
			}
			return &checked.IfExp{Cond: cond, Then: then}, info.Void, nil
		}
		then, ttid, err := checkExp(sc, info, e.Then, breakable)
		if err != nil {
			return nil, ident.TypeId{}, err
		}
		els, etid, err := checkExp(sc, info, e.Else, breakable)
		if err != nil {
			return nil, ident.TypeId{}, err
		}
		if !info.Equal(ttid, etid) {
			return nil, ident.TypeId{}, errf("if-then-else arms have mismatched types")
		}
		return &checked.IfExp{Cond: cond, Then: then, Else: els}, ttid, nil

	case *ast.WhileExp:
		cond, ctid, err := checkExp(sc, info, e.Cond, false)
		if err != nil {
			return nil, ident.TypeId{}, err
		}
		if ctid != info.Int {
			return nil, ident.TypeId{}, errf("while condition must be int")
		}
		body, btid, err := checkExp(sc, info, e.Body, true)
		if err != nil {
			return nil, ident.TypeId{}, err
		}
		if btid != info.Void {
			return nil, ident.TypeId{}, errf("while body must be void")
		}
		return &checked.WhileExp{Cond: cond, Body: body}, info.Void, nil

	case *ast.ForExp:
		lo, lotid, err := checkExp(sc, info, e.Lo, false)
		if err != nil {
			return nil, ident.TypeId{}, err
		}
		if lotid != info.Int {
			return nil, ident.TypeId{}, errf("for loop bound must be int")
		}
		hi, hitid, err := checkExp(sc, info, e.Hi, false)
		if err != nil {
			return nil, ident.TypeId{}, err
		}
		if hitid != info.Int {
			return nil, ident.TypeId{}, errf("for loop bound must be int")
		}
		sym := info.Gen.Symbol()
		info.BindSymbol(sym, info.Int)
		inner := sc.push()
		inner.top().vars[e.Var] = sym
		body, btid, err := checkExp(inner, info, e.Body, true)
		if err != nil {
			return nil, ident.TypeId{}, err
		}
		if btid != info.Void {
			return nil, ident.TypeId{}, errf("for body must be void")
		}
		return &checked.ForExp{Var: sym, Lo: lo, Hi: hi, Body: body}, info.Void, nil

	case *ast.LetExp:
		cur := sc
		decs := make([]checked.VarDec, len(e.Decs))
		for i, d := range e.Decs {
			initExp, itid, err := checkExp(cur, info, d.Init, false)
			if err != nil {
				return nil, ident.TypeId{}, err
			}
			declTid, ok := cur.lookupType(d.TypeName)
			if !ok {
				return nil, ident.TypeId{}, errf("unknown type %q", d.TypeName)
			}
			if !info.Equal(itid, declTid) {
				return nil, ident.TypeId{}, errf("let binding %q: initializer type mismatch", d.Name)
			}
			sym := info.Gen.Symbol()
			info.BindSymbol(sym, declTid)
			decs[i] = checked.VarDec{Symbol: sym, Init: initExp}
			cur = cur.push()
			cur.top().vars[d.Name] = sym
		}
		in, intid, err := checkExp(cur, info, e.In, breakable)
		if err != nil {
			return nil, ident.TypeId{}, err
		}
		return &checked.LetExp{Decs: decs, In: in}, intid, nil

	case *ast.CallExp:
		label, ok := sc.lookupFunc(e.Func)
		if !ok {
			return nil, ident.TypeId{}, errf("call to unknown function %q", e.Func)
		}
		sig, ok := info.FunctionSymbols[label]
		if !ok {
			return nil, ident.TypeId{}, errf("internal error: label %v not registered", label)
		}
		if len(e.Args) != len(sig.Parameters) {
			return nil, ident.TypeId{}, errf("call to %q: argument count mismatch", e.Func)
		}
		args := make([]checked.Exp, len(e.Args))
		for i, a := range e.Args {
			ce, atid, err := checkExp(sc, info, a, false)
			if err != nil {
				return nil, ident.TypeId{}, err
			}
			if !info.Equal(atid, sig.Parameters[i].Type) {
				return nil, ident.TypeId{}, errf("call to %q: argument %d type mismatch", e.Func, i)
			}
			args[i] = ce
		}
		return &checked.CallExp{Func: label, Args: args}, sig.Return, nil

	case *ast.BreakExp:
		if !breakable {
			return nil, ident.TypeId{}, errf("break outside loop")
		}
		return &checked.BreakExp{}, info.Void, nil

	default:
		return nil, ident.TypeId{}, errf("internal error: unhandled expression kind %T", e)
	}
}
