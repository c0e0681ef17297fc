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

// Package frontend is the surface parser: it turns Cat source text into
// an ast.Program. The compiler core never depends on it -- the checker
// consumes ast.Program however it was produced -- but shipping a parser
// makes the catc binary usable end to end.
package frontend

type tokenKind int

const (
	tkEOF tokenKind = iota
	tkIdent
	tkInt
	tkString

	tkLParen
	tkRParen
	tkLBrace
	tkRBrace
	tkLBracket
	tkRBracket
	tkComma
	tkColon
	tkSemi
	tkDot

	tkAssign // :=
	tkArrow  // ->

	tkEq
	tkNeq
	tkLt
	tkLe
	tkGt
	tkGe

	tkPlus
	tkMinus
	tkStar
	tkSlash

	kwFunction
	kwLet
	kwVar
	kwIn
	kwEnd
	kwIf
	kwThen
	kwElse
	kwWhile
	kwDo
	kwFor
	kwTo
	kwBreak
	kwAnd
	kwOr
	kwArray
	kwOf
	kwType
)

var keywords = map[string]tokenKind{
	"function": kwFunction,
	"let":      kwLet,
	"var":      kwVar,
	"in":       kwIn,
	"end":      kwEnd,
	"if":       kwIf,
	"then":     kwThen,
	"else":     kwElse,
	"while":    kwWhile,
	"do":       kwDo,
	"for":      kwFor,
	"to":       kwTo,
	"break":    kwBreak,
	"and":      kwAnd,
	"or":       kwOr,
	"array":    kwArray,
	"of":       kwOf,
	"type":     kwType,
}

func (k tokenKind) String() string {
	switch k {
	case tkEOF:
		return "end of input"
	case tkIdent:
		return "identifier"
	case tkInt:
		return "integer literal"
	case tkString:
		return "string literal"
	case tkLParen:
		return "'('"
	case tkRParen:
		return "')'"
	case tkLBrace:
		return "'{'"
	case tkRBrace:
		return "'}'"
	case tkLBracket:
		return "'['"
	case tkRBracket:
		return "']'"
	case tkComma:
		return "','"
	case tkColon:
		return "':'"
	case tkSemi:
		return "';'"
	case tkDot:
		return "'.'"
	case tkAssign:
		return "':='"
	case tkArrow:
		return "'->'"
	case tkEq:
		return "'='"
	case tkNeq:
		return "'<>'"
	case tkLt:
		return "'<'"
	case tkLe:
		return "'<='"
	case tkGt:
		return "'>'"
	case tkGe:
		return "'>='"
	case tkPlus:
		return "'+'"
	case tkMinus:
		return "'-'"
	case tkStar:
		return "'*'"
	case tkSlash:
		return "'/'"
	default:
		for name, kw := range keywords {
			if kw == k {
				return "'" + name + "'"
			}
		}
		return "?"
	}
}
