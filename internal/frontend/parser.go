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

package frontend

import (
	"fmt"
	"strconv"

	"github.com/johnflanigan/catc/internal/ast"
)

// SyntaxError is a static, fatal parse error; the first one aborts the
// whole parse with no partial output, the same policy as every other
// pass.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d: %s", e.Line, e.Msg)
}

type parser struct {
	lexer  *lexer
	token  tokenKind
	lexeme string
}

// Parse parses a whole Cat source file into a surface program.
func Parse(src string) (prog *ast.Program, err error) {
	defer func() {
		if r := recover(); r != nil {
			if se, ok := r.(*SyntaxError); ok {
				prog, err = nil, se
				return
			}
			panic(r)
		}
	}()

	p := &parser{lexer: newLexer(src)}
	p.consume()

	var decs []ast.TopLevelDec
	for p.token != tkEOF {
		decs = append(decs, p.parseTopLevelDec())
	}
	return &ast.Program{Decs: decs}, nil
}

func (p *parser) fail(format string, args ...interface{}) {
	panic(&SyntaxError{Line: p.lexer.line, Msg: fmt.Sprintf(format, args...)})
}

func (p *parser) consume() {
	kind, lexeme, err := p.lexer.nextToken()
	if err != nil {
		panic(&SyntaxError{Line: p.lexer.line, Msg: err.Error()})
	}
	p.token, p.lexeme = kind, lexeme
}

// expect consumes the current token, failing unless it is kind; the
// consumed lexeme is returned for idents and literals.
func (p *parser) expect(kind tokenKind) string {
	if p.token != kind {
		p.fail("expected %v, found %v", kind, p.token)
	}
	lexeme := p.lexeme
	p.consume()
	return lexeme
}

func (p *parser) parseTopLevelDec() ast.TopLevelDec {
	switch p.token {
	case kwType:
		return p.parseTypeDec()
	case kwFunction:
		return p.parseFunctionDec()
	default:
		p.fail("expected a type or function declaration, found %v", p.token)
		return nil
	}
}

// parseTypeDec parses either form of type alias:
//
//	type name = array of elem
//	type name = { f1: T1, f2: T2 }
func (p *parser) parseTypeDec() ast.TopLevelDec {
	p.expect(kwType)
	name := p.expect(tkIdent)
	p.expect(tkEq)

	if p.token == kwArray {
		p.consume()
		p.expect(kwOf)
		elem := p.expect(tkIdent)
		return &ast.ArrayTypeDec{NewName: name, ElemName: elem}
	}

	p.expect(tkLBrace)
	var fields []ast.FieldDec
	for p.token != tkRBrace {
		if len(fields) > 0 {
			p.expect(tkComma)
		}
		fname := p.expect(tkIdent)
		p.expect(tkColon)
		ftype := p.expect(tkIdent)
		fields = append(fields, ast.FieldDec{Name: fname, TypeName: ftype})
	}
	p.expect(tkRBrace)
	return &ast.RecordTypeDec{NewName: name, Fields: fields}
}

func (p *parser) parseFunctionDec() ast.TopLevelDec {
	p.expect(kwFunction)
	name := p.expect(tkIdent)

	p.expect(tkLParen)
	var params []ast.Param
	for p.token != tkRParen {
		if len(params) > 0 {
			p.expect(tkComma)
		}
		pname := p.expect(tkIdent)
		p.expect(tkColon)
		ptype := p.expect(tkIdent)
		params = append(params, ast.Param{Name: pname, TypeName: ptype})
	}
	p.expect(tkRParen)

	p.expect(tkArrow)
	ret := p.expect(tkIdent)

	p.expect(tkLBrace)
	body := p.parseExp()
	p.expect(tkRBrace)

	return &ast.FunctionDec{Name: name, ReturnType: ret, Params: params, Body: body}
}

// parseExp parses one expression. Control forms (if/while/for/let/break)
// are recognized by their leading keyword; everything else goes through
// the precedence levels below, with assignment recognized afterward when
// the parsed operand turned out to be a bare lvalue followed by ':='.
func (p *parser) parseExp() ast.Exp {
	switch p.token {
	case kwIf:
		p.consume()
		cond := p.parseExp()
		p.expect(kwThen)
		then := p.parseExp()
		var els ast.Exp
		if p.token == kwElse {
			p.consume()
			els = p.parseExp()
		}
		return &ast.IfExp{Cond: cond, Then: then, Else: els}

	case kwWhile:
		p.consume()
		cond := p.parseExp()
		p.expect(kwDo)
		body := p.parseExp()
		return &ast.WhileExp{Cond: cond, Body: body}

	case kwFor:
		p.consume()
		name := p.expect(tkIdent)
		p.expect(tkAssign)
		lo := p.parseExp()
		p.expect(kwTo)
		hi := p.parseExp()
		p.expect(kwDo)
		body := p.parseExp()
		return &ast.ForExp{Var: name, Lo: lo, Hi: hi, Body: body}

	case kwLet:
		p.consume()
		var decs []ast.VarDec
		for p.token == kwVar {
			p.consume()
			name := p.expect(tkIdent)
			p.expect(tkColon)
			typeName := p.expect(tkIdent)
			p.expect(tkAssign)
			init := p.parseExp()
			decs = append(decs, ast.VarDec{Name: name, TypeName: typeName, Init: init})
		}
		p.expect(kwIn)
		in := p.parseExp()
		p.expect(kwEnd)
		return &ast.LetExp{Decs: decs, In: in}

	case kwBreak:
		p.consume()
		return &ast.BreakExp{}
	}

	e := p.parseOr()
	if lv, ok := e.(*ast.LValueExp); ok && p.token == tkAssign {
		p.consume()
		right := p.parseExp()
		return &ast.AssignExp{Left: lv.LValue, Right: right}
	}
	return e
}

func (p *parser) parseOr() ast.Exp {
	e := p.parseAnd()
	for p.token == kwOr {
		p.consume()
		e = &ast.InfixExp{Left: e, Op: ast.OpOr, Right: p.parseAnd()}
	}
	return e
}

func (p *parser) parseAnd() ast.Exp {
	e := p.parseComparison()
	for p.token == kwAnd {
		p.consume()
		e = &ast.InfixExp{Left: e, Op: ast.OpAnd, Right: p.parseComparison()}
	}
	return e
}

// parseComparison is non-associative: a < b < c is a syntax error in the
// source grammar, matching the 0/1-producing comparison semantics.
func (p *parser) parseComparison() ast.Exp {
	e := p.parseAdditive()
	var op ast.InfixOp
	switch p.token {
	case tkEq:
		op = ast.OpEq
	case tkNeq:
		op = ast.OpNeq
	case tkLt:
		op = ast.OpLt
	case tkLe:
		op = ast.OpLe
	case tkGt:
		op = ast.OpGt
	case tkGe:
		op = ast.OpGe
	default:
		return e
	}
	p.consume()
	return &ast.InfixExp{Left: e, Op: op, Right: p.parseAdditive()}
}

func (p *parser) parseAdditive() ast.Exp {
	e := p.parseMultiplicative()
	for p.token == tkPlus || p.token == tkMinus {
		op := ast.OpAdd
		if p.token == tkMinus {
			op = ast.OpSub
		}
		p.consume()
		e = &ast.InfixExp{Left: e, Op: op, Right: p.parseMultiplicative()}
	}
	return e
}

func (p *parser) parseMultiplicative() ast.Exp {
	e := p.parseUnary()
	for p.token == tkStar || p.token == tkSlash {
		op := ast.OpMul
		if p.token == tkSlash {
			op = ast.OpDiv
		}
		p.consume()
		e = &ast.InfixExp{Left: e, Op: op, Right: p.parseUnary()}
	}
	return e
}

func (p *parser) parseUnary() ast.Exp {
	if p.token == tkMinus {
		p.consume()
		return &ast.NegateExp{Operand: p.parseUnary()}
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() ast.Exp {
	switch p.token {
	case tkInt:
		lexeme := p.lexeme
		p.consume()
		v, err := strconv.ParseInt(lexeme, 10, 32)
		if err != nil {
			p.fail("integer literal %s out of range", lexeme)
		}
		return &ast.IntLitExp{Value: int32(v)}

	case tkString:
		lexeme := p.lexeme
		p.consume()
		return &ast.StringLitExp{Value: lexeme}

	case tkLParen:
		return p.parseSeq()

	case tkIdent:
		return p.parseIdentExp()

	default:
		p.fail("expected an expression, found %v", p.token)
		return nil
	}
}

// parseSeq parses "( e1; e2; ... )". An empty pair of parens is the void
// expression; a single parenthesized expression is just that expression.
func (p *parser) parseSeq() ast.Exp {
	p.expect(tkLParen)
	if p.token == tkRParen {
		p.consume()
		return &ast.SeqExp{}
	}
	exps := []ast.Exp{p.parseExp()}
	for p.token == tkSemi {
		p.consume()
		exps = append(exps, p.parseExp())
	}
	p.expect(tkRParen)
	if len(exps) == 1 {
		return exps[0]
	}
	return &ast.SeqExp{Exps: exps}
}

// parseIdentExp disambiguates the four expressions that start with an
// identifier: a call, a record literal, an array creation (subscript
// brackets followed by 'of'), and a plain lvalue path.
func (p *parser) parseIdentExp() ast.Exp {
	name := p.expect(tkIdent)

	switch p.token {
	case tkLParen:
		p.consume()
		var args []ast.Exp
		for p.token != tkRParen {
			if len(args) > 0 {
				p.expect(tkComma)
			}
			args = append(args, p.parseExp())
		}
		p.expect(tkRParen)
		return &ast.CallExp{Func: name, Args: args}

	case tkLBrace:
		p.consume()
		var fields []ast.FieldInit
		for p.token != tkRBrace {
			if len(fields) > 0 {
				p.expect(tkComma)
			}
			fname := p.expect(tkIdent)
			p.expect(tkEq)
			fields = append(fields, ast.FieldInit{Name: fname, Exp: p.parseExp()})
		}
		p.expect(tkRBrace)
		return &ast.RecordCreateExp{TypeName: name, Fields: fields}

	case tkLBracket:
		p.consume()
		first := p.parseExp()
		p.expect(tkRBracket)
		if p.token == kwOf {
			p.consume()
			init := p.parseExp()
			return &ast.ArrayCreateExp{TypeName: name, Length: first, Init: init}
		}
		lv := ast.LValue(&ast.SubscriptLValue{Base: &ast.IdLValue{Name: name}, Index: first})
		return &ast.LValueExp{LValue: p.parseLValueSuffix(lv)}

	default:
		return &ast.LValueExp{LValue: p.parseLValueSuffix(&ast.IdLValue{Name: name})}
	}
}

// parseLValueSuffix extends an lvalue with any chain of subscripts and
// field selections.
func (p *parser) parseLValueSuffix(lv ast.LValue) ast.LValue {
	for {
		switch p.token {
		case tkLBracket:
			p.consume()
			index := p.parseExp()
			p.expect(tkRBracket)
			lv = &ast.SubscriptLValue{Base: lv, Index: index}
		case tkDot:
			p.consume()
			field := p.expect(tkIdent)
			lv = &ast.FieldLValue{Base: lv, Field: field}
		default:
			return lv
		}
	}
}
