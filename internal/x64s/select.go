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

package x64s

import (
	"fmt"

	"github.com/johnflanigan/catc/internal/ident"
	"github.com/johnflanigan/catc/internal/lir"
)

// Select lowers a whole lir.Program to its X64S form. gen is
// shared with every earlier pass so the fresh symbols/labels minted here
// (string-table labels, address-materialization temporaries) never
// collide with anything the checker or lowerer produced.
func Select(gen *ident.Gen, prog *lir.Program) (*Program, error) {
	s := &selector{gen: gen, strings: make(map[ident.Label]string)}

	main, err := s.selectFunction(prog.Main)
	if err != nil {
		return nil, err
	}

	others := make(map[ident.Label]*Function, len(prog.Others))
	for label, fn := range prog.Others {
		sf, err := s.selectFunction(fn)
		if err != nil {
			return nil, fmt.Errorf("function %v: %w", label, err)
		}
		others[label] = sf
	}

	return &Program{Main: main, Others: others, Strings: s.strings}, nil
}

type selector struct {
	gen     *ident.Gen
	strings map[ident.Label]string

	// temps collects the address-materialization temporaries minted for
	// the function being selected; they join its Locals so the register
	// allocator homes them like any other symbol.
	temps []ident.Symbol
}

func instr(i Instruction) Line { return InstrLine{I: i} }
func label(l ident.Label) Line { return LabelLine{L: l} }

func cmpOp(c lir.CmpOp) CmpOp {
	switch c {
	case lir.CmpEq:
		return CmpEq
	case lir.CmpNeq:
		return CmpNeq
	case lir.CmpGt:
		return CmpGt
	case lir.CmpLt:
		return CmpLt
	case lir.CmpGe:
		return CmpGe
	case lir.CmpLe:
		return CmpLe
	default:
		panic("internal error: unhandled comparison op")
	}
}

func (s *selector) selectFunction(fn *lir.Function) (*Function, error) {
	if len(fn.Parameters) > len(ArgRegs) {
		return nil, fmt.Errorf("internal error: function has %d parameters, selector supports at most %d", len(fn.Parameters), len(ArgRegs))
	}

	s.temps = nil
	var body []Line
	for i, p := range fn.Parameters {
		body = append(body, instr(Movq{Src: Reg{Name: ArgRegs[i]}, Dst: Sym{Symbol: p}}))
	}

	for _, ln := range fn.Body {
		lines, err := s.selectLine(ln)
		if err != nil {
			return nil, err
		}
		body = append(body, lines...)
	}

	body = append(body, instr(Movq{Src: Sym{Symbol: fn.ReturnSymbol}, Dst: Reg{Name: RAX}}))

	locals := append(append([]ident.Symbol(nil), fn.Locals...), s.temps...)
	return &Function{Parameters: fn.Parameters, Locals: locals, Body: body}, nil
}

func (s *selector) selectLine(ln lir.Line) ([]Line, error) {
	switch l := ln.(type) {
	case lir.LabelLine:
		return []Line{label(l.L)}, nil
	case lir.InstrLine:
		return s.selectInstr(l.I)
	default:
		return nil, fmt.Errorf("internal error: unhandled lir line kind %T", ln)
	}
}

func (s *selector) selectInstr(i lir.Instruction) ([]Line, error) {
	switch i := i.(type) {
	case lir.Nop:
		return nil, nil

	case lir.IntLit:
		return []Line{instr(Movq{Src: Imm{Value: i.Value}, Dst: Sym{Symbol: i.Dst}})}, nil

	case lir.StringLit:
		l := s.gen.Label()
		s.strings[l] = i.Value
		return []Line{
			instr(Leaq{Label: l, Dst: Reg{Name: RAX}}),
			instr(Movq{Src: Reg{Name: RAX}, Dst: Sym{Symbol: i.Dst}}),
		}, nil

	case lir.StoreAt:
		return s.selectAddress(i.Loc, i.Off, func(t ident.Symbol) Line {
			return instr(Movq{Src: Sym{Symbol: i.Val}, Dst: Mem{Symbol: t}})
		}), nil

	case lir.LoadAt:
		return s.selectAddress(i.Loc, i.Off, func(t ident.Symbol) Line {
			return instr(Movq{Src: Mem{Symbol: t}, Dst: Sym{Symbol: i.Dst}})
		}), nil

	case lir.Assign:
		return []Line{instr(Movq{Src: Sym{Symbol: i.Src}, Dst: Sym{Symbol: i.Dst}})}, nil

	case lir.Negate:
		return []Line{
			instr(Movq{Src: Sym{Symbol: i.Src}, Dst: Sym{Symbol: i.Dst}}),
			instr(Negq{Dst: Sym{Symbol: i.Dst}}),
		}, nil

	case lir.BinOp:
		return s.selectBinOp(i), nil

	case lir.Call:
		return s.selectCall(i)

	case lir.Jump:
		return []Line{instr(Jmp{Target: i.Target})}, nil

	case lir.JumpC:
		return []Line{
			instr(Cmpq{Left: Sym{Symbol: i.Left}, Right: Sym{Symbol: i.Right}}),
			instr(Jcc{Cond: cmpOp(i.Cond), Target: i.Target}),
		}, nil

	default:
		return nil, fmt.Errorf("internal error: unhandled lir instruction kind %T", i)
	}
}

// selectAddress materializes the address Loc+8*Off into a fresh
// temporary t and hands it to build, which emits the final load/store
// through Mem{t}.
func (s *selector) selectAddress(loc, off ident.Symbol, build func(t ident.Symbol) Line) []Line {
	t := s.gen.Symbol()
	s.temps = append(s.temps, t)
	return []Line{
		instr(Movq{Src: Imm{Value: 8}, Dst: Reg{Name: RAX}}),
		instr(Imulq{Src: Sym{Symbol: off}}),
		instr(Movq{Src: Reg{Name: RAX}, Dst: Sym{Symbol: t}}),
		instr(Addq{Src: Sym{Symbol: loc}, Dst: Sym{Symbol: t}}),
		build(t),
	}
}

func (s *selector) selectBinOp(i lir.BinOp) []Line {
	switch i.Op {
	case lir.OpAdd:
		return []Line{
			instr(Movq{Src: Sym{Symbol: i.Left}, Dst: Sym{Symbol: i.Dst}}),
			instr(Addq{Src: Sym{Symbol: i.Right}, Dst: Sym{Symbol: i.Dst}}),
		}
	case lir.OpSub:
		return []Line{
			instr(Movq{Src: Sym{Symbol: i.Left}, Dst: Sym{Symbol: i.Dst}}),
			instr(Subq{Src: Sym{Symbol: i.Right}, Dst: Sym{Symbol: i.Dst}}),
		}
	case lir.OpAnd:
		return []Line{
			instr(Movq{Src: Sym{Symbol: i.Left}, Dst: Sym{Symbol: i.Dst}}),
			instr(Andq{Src: Sym{Symbol: i.Right}, Dst: Sym{Symbol: i.Dst}}),
		}
	case lir.OpOr:
		return []Line{
			instr(Movq{Src: Sym{Symbol: i.Left}, Dst: Sym{Symbol: i.Dst}}),
			instr(Orq{Src: Sym{Symbol: i.Right}, Dst: Sym{Symbol: i.Dst}}),
		}
	case lir.OpMul:
		return []Line{
			instr(Movq{Src: Sym{Symbol: i.Left}, Dst: Reg{Name: RAX}}),
			instr(Imulq{Src: Sym{Symbol: i.Right}}),
			instr(Movq{Src: Reg{Name: RAX}, Dst: Sym{Symbol: i.Dst}}),
		}
	case lir.OpDiv:
		return []Line{
			instr(Movq{Src: Sym{Symbol: i.Left}, Dst: Reg{Name: RAX}}),
			instr(Idivq{Src: Sym{Symbol: i.Right}}),
			instr(Movq{Src: Reg{Name: RAX}, Dst: Sym{Symbol: i.Dst}}),
		}
	default:
		panic("internal error: unhandled lir binop kind")
	}
}

func (s *selector) selectCall(i lir.Call) ([]Line, error) {
	if len(i.Args) > len(ArgRegs) {
		return nil, fmt.Errorf("internal error: call to %v has %d arguments, selector supports at most %d", i.Func, len(i.Args), len(ArgRegs))
	}
	var lines []Line
	for idx, arg := range i.Args {
		lines = append(lines, instr(Movq{Src: Sym{Symbol: arg}, Dst: Reg{Name: ArgRegs[idx]}}))
	}
	lines = append(lines, instr(Call{Target: i.Func}))
	lines = append(lines, instr(Movq{Src: Reg{Name: RAX}, Dst: Sym{Symbol: i.Dst}}))
	return lines, nil
}
