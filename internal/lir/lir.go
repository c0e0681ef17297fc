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

// Package lir is the Low-level Intermediate Representation: a three-address,
// linear IR with explicit symbols, jumps and calls. It is what package
// lower produces from a checked.Program and what package x64s consumes.
package lir

import "github.com/johnflanigan/catc/internal/ident"

// Program is a whole lowered program.
type Program struct {
	Main   *Function
	Others map[ident.Label]*Function
}

// Function is one lowered function body.
type Function struct {
	Parameters   []ident.Symbol
	Locals       []ident.Symbol
	ReturnSymbol ident.Symbol
	Body         []Line
}

// Line is one entry of a function body: either a label definition or an
// instruction.
type Line interface{ lirLine() }

// LabelLine marks a jump target.
type LabelLine struct{ L ident.Label }

// InstrLine wraps one LIRInstruction.
type InstrLine struct{ I Instruction }

func (LabelLine) lirLine() {}
func (InstrLine) lirLine() {}

// Instruction is the closed union of LIR instructions.
type Instruction interface{ lirInstr() }

type Nop struct{}

type IntLit struct {
	Dst   ident.Symbol
	Value int64
}

type StringLit struct {
	Dst   ident.Symbol
	Value string
}

// StoreAt computes the address Loc+8*Off and stores Val through it.
type StoreAt struct {
	Loc, Off, Val ident.Symbol
}

// LoadAt computes the address Loc+8*Off and loads it into Dst.
type LoadAt struct {
	Dst, Loc, Off ident.Symbol
}

type Assign struct{ Dst, Src ident.Symbol }

type Negate struct{ Dst, Src ident.Symbol }

// BinOpKind is the closed set of arithmetic/logical binary operators that
// reach LIR directly (comparisons are materialized via JumpC instead).
type BinOpKind int

const (
	OpAdd BinOpKind = iota
	OpSub
	OpMul
	OpDiv
	OpAnd
	OpOr
)

func (k BinOpKind) String() string {
	switch k {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	default:
		return "?"
	}
}

type BinOp struct {
	Dst, Left ident.Symbol
	Op        BinOpKind
	Right     ident.Symbol
}

type Call struct {
	Dst  ident.Symbol
	Func ident.Label
	Args []ident.Symbol
}

type Jump struct{ Target ident.Label }

// CmpOp is the closed set of comparison operators a JumpC can test.
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNeq
	CmpGt
	CmpLt
	CmpGe
	CmpLe
)

func (c CmpOp) String() string {
	switch c {
	case CmpEq:
		return "="
	case CmpNeq:
		return "<>"
	case CmpGt:
		return ">"
	case CmpLt:
		return "<"
	case CmpGe:
		return ">="
	case CmpLe:
		return "<="
	default:
		return "?"
	}
}

// Negate returns the logical negation of c ("=" and "<>", "<" and ">=",
// ">" and "<="). Lowering does not call it; it picks each jump's CmpOp
// directly.
func (c CmpOp) Negate() CmpOp {
	switch c {
	case CmpEq:
		return CmpNeq
	case CmpNeq:
		return CmpEq
	case CmpGt:
		return CmpLe
	case CmpLt:
		return CmpGe
	case CmpGe:
		return CmpLt
	case CmpLe:
		return CmpGt
	default:
		return c
	}
}

type JumpC struct {
	Target      ident.Label
	Cond        CmpOp
	Left, Right ident.Symbol
}

func (Nop) lirInstr()       {}
func (IntLit) lirInstr()    {}
func (StringLit) lirInstr() {}
func (StoreAt) lirInstr()   {}
func (LoadAt) lirInstr()    {}
func (Assign) lirInstr()    {}
func (Negate) lirInstr()    {}
func (BinOp) lirInstr()     {}
func (Call) lirInstr()      {}
func (Jump) lirInstr()      {}
func (JumpC) lirInstr()     {}
