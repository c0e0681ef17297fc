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

// Package checked is the semantic model the type checker produces: type
// descriptors keyed by ident.TypeId, a checked AST whose names have all
// been resolved to ident.Symbol/ident.Label, and the environments
// (symbol_table, function_symbols, types) that make the resolution
// meaningful. Nothing in this package parses or type-checks; package check
// does that and returns values of the types defined here.
package checked

import (
	"fmt"

	"github.com/johnflanigan/catc/internal/ident"
)

// TypeKind is the closed union tag for Type.
type TypeKind int

const (
	KindVoid TypeKind = iota
	KindInt
	KindString
	KindArray
	KindRecord
)

// RecordField is one (name, element TypeId) pair of a Record type, in
// declared order -- order is significant, it fixes heap layout.
type RecordField struct {
	Name string
	Type ident.TypeId
}

// Type is a type descriptor, interned by TypeId in an Info's Types table.
type Type struct {
	Kind TypeKind

	// Elem is meaningful only when Kind == KindArray.
	Elem ident.TypeId

	// Fields is meaningful only when Kind == KindRecord.
	Fields []RecordField
}

func (t *Type) String() string {
	switch t.Kind {
	case KindVoid:
		return "void"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindArray:
		return fmt.Sprintf("array of %v", t.Elem)
	case KindRecord:
		return fmt.Sprintf("record%v", t.Fields)
	default:
		panic("unreachable type kind")
	}
}

// FunctionType is a function's checked signature.
type FunctionType struct {
	Return     ident.TypeId
	Parameters []Param
}

// Param is one (Symbol, TypeId) pair of a checked function's parameter
// list, in declared order.
type Param struct {
	Symbol ident.Symbol
	Type   ident.TypeId
}

// Info is the global type information populated by the checker and
// consumed by the lowerer: build-once, read-many interning tables plus the
// generators that produced every identifier inside them.
type Info struct {
	Gen *ident.Gen

	SymbolTable     map[ident.Symbol]ident.TypeId
	FunctionSymbols map[ident.Label]*FunctionType
	Types           map[ident.TypeId]*Type

	// Well-known base type ids, populated once up front.
	Void, Int, String ident.TypeId
}

// NewInfo builds an Info with the three base types interned and bound to
// fresh TypeIds, and empty symbol/function tables -- the starting state
// the checker's initial context is built from.
func NewInfo() *Info {
	gen := ident.NewGen()
	info := &Info{
		Gen:             gen,
		SymbolTable:     make(map[ident.Symbol]ident.TypeId),
		FunctionSymbols: make(map[ident.Label]*FunctionType),
		Types:           make(map[ident.TypeId]*Type),
	}
	info.Void = info.intern(&Type{Kind: KindVoid})
	info.Int = info.intern(&Type{Kind: KindInt})
	info.String = info.intern(&Type{Kind: KindString})
	return info
}

func (info *Info) intern(t *Type) ident.TypeId {
	id := info.Gen.TypeID()
	info.Types[id] = t
	return id
}

// InternArray allocates a fresh TypeId bound to Array(elem).
func (info *Info) InternArray(elem ident.TypeId) ident.TypeId {
	return info.intern(&Type{Kind: KindArray, Elem: elem})
}

// InternRecord allocates a fresh TypeId bound to Record(fields).
func (info *Info) InternRecord(fields []RecordField) ident.TypeId {
	return info.intern(&Type{Kind: KindRecord, Fields: fields})
}

// BindSymbol records that sym has type tid, panicking (an internal
// error) if sym is already bound -- every Symbol must be inserted
// exactly once.
func (info *Info) BindSymbol(sym ident.Symbol, tid ident.TypeId) {
	if _, dup := info.SymbolTable[sym]; dup {
		panic(fmt.Sprintf("internal error: duplicate symbol insertion %v", sym))
	}
	info.SymbolTable[sym] = tid
}

// BindFunction records label's signature, panicking (an internal error)
// if label is already bound.
func (info *Info) BindFunction(label ident.Label, ft *FunctionType) {
	if _, dup := info.FunctionSymbols[label]; dup {
		panic(fmt.Sprintf("internal error: duplicate label insertion %v", label))
	}
	info.FunctionSymbols[label] = ft
}

// TypeOf returns the Type descriptor for tid.
func (info *Info) TypeOf(tid ident.TypeId) *Type { return info.Types[tid] }

// SymbolType returns the TypeId of a bound symbol.
func (info *Info) SymbolType(sym ident.Symbol) ident.TypeId { return info.SymbolTable[sym] }

// Equal reports whether two TypeIds denote types with matching structural
// intent: base types are equal only to themselves (they're interned once),
// arrays are equal iff their element types are Equal, and records are
// equal iff their field lists match pairwise in name and Equal type --
// two aliases declaring the same structure denote the same type.
func (info *Info) Equal(a, b ident.TypeId) bool {
	if a == b {
		return true
	}
	ta, tb := info.TypeOf(a), info.TypeOf(b)
	if ta.Kind != tb.Kind {
		return false
	}
	switch ta.Kind {
	case KindArray:
		return info.Equal(ta.Elem, tb.Elem)
	case KindRecord:
		if len(ta.Fields) != len(tb.Fields) {
			return false
		}
		for i, f := range ta.Fields {
			g := tb.Fields[i]
			if f.Name != g.Name || !info.Equal(f.Type, g.Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
