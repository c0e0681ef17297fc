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

package checked

import (
	"github.com/johnflanigan/catc/internal/ast"
	"github.com/johnflanigan/catc/internal/ident"
)

// Program is a checked program: every function lowered from ast.Program,
// name resolution complete.
type Program struct {
	Functions []*Function
	Main      ident.Label
}

// Function is a checked, name-resolved function declaration.
type Function struct {
	Label  ident.Label
	Name   string // kept only for diagnostics/asm comments
	Type   *FunctionType
	Body   Exp
}

// Exp is the closed union of checked expressions. It is structurally
// identical to ast.Exp except names are gone: variables/fields/functions
// are Symbols/Labels, and every InfixOp is untouched (operators don't
// need resolution).
type Exp interface{ checkedExp() }

type IntLitExp struct{ Value int32 }

type StringLitExp struct{ Value string }

type LValueExp struct{ LValue LValue }

type SeqExp struct{ Exps []Exp }

type NegateExp struct{ Operand Exp }

type InfixExp struct {
	Left  Exp
	Op    ast.InfixOp
	Right Exp
}

type ArrayCreateExp struct {
	Length Exp
	Init   Exp
}

type FieldInit struct {
	Name string
	Exp  Exp
}

type RecordCreateExp struct {
	Fields []FieldInit
}

type AssignExp struct {
	Left  LValue
	Right Exp
}

type IfExp struct {
	Cond Exp
	Then Exp
	Else Exp // nil iff this is an if-then
}

type WhileExp struct {
	Cond Exp
	Body Exp
}

// ForExp carries the Symbol the checker allocated for the induction
// variable -- lowering reuses it rather than minting a new one, so the
// user-visible name refers to the same storage throughout.
type ForExp struct {
	Var  ident.Symbol
	Lo   Exp
	Hi   Exp
	Body Exp
}

type VarDec struct {
	Symbol ident.Symbol
	Init   Exp
}

type LetExp struct {
	Decs []VarDec
	In   Exp
}

type CallExp struct {
	Func ident.Label
	Args []Exp
}

type BreakExp struct{}

func (*IntLitExp) checkedExp()      {}
func (*StringLitExp) checkedExp()   {}
func (*LValueExp) checkedExp()      {}
func (*SeqExp) checkedExp()         {}
func (*NegateExp) checkedExp()      {}
func (*InfixExp) checkedExp()       {}
func (*ArrayCreateExp) checkedExp() {}
func (*RecordCreateExp) checkedExp() {}
func (*AssignExp) checkedExp()      {}
func (*IfExp) checkedExp()          {}
func (*WhileExp) checkedExp()       {}
func (*ForExp) checkedExp()         {}
func (*LetExp) checkedExp()         {}
func (*CallExp) checkedExp()        {}
func (*BreakExp) checkedExp()       {}

// LValue is the checked counterpart of ast.LValue.
type LValue interface{ checkedLValue() }

type IdLValue struct{ Symbol ident.Symbol }

type SubscriptLValue struct {
	Base  LValue
	Index Exp
}

type FieldLValue struct {
	Base  LValue
	Field string
	// FieldIndex is the field's position in the record's declared order,
	// resolved once by the checker so lowering never needs the Type table
	// to recompute an offset.
	FieldIndex int
}

func (*IdLValue) checkedLValue()        {}
func (*SubscriptLValue) checkedLValue() {}
func (*FieldLValue) checkedLValue()     {}
