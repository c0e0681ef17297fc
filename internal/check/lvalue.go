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

func checkLValue(sc *scope, info *checked.Info, lv ast.LValue) (checked.LValue, ident.TypeId, error) {
	switch lv := lv.(type) {
	case *ast.IdLValue:
		sym, ok := sc.lookupVar(lv.Name)
		if !ok {
			return nil, ident.TypeId{}, errf("unknown identifier %q", lv.Name)
		}
		return &checked.IdLValue{Symbol: sym}, info.SymbolType(sym), nil

	case *ast.SubscriptLValue:
		base, btid, err := checkLValue(sc, info, lv.Base)
		if err != nil {
			return nil, ident.TypeId{}, err
		}
		bty := info.TypeOf(btid)
		if bty.Kind != checked.KindArray {
			return nil, ident.TypeId{}, errf("subscript of non-array lvalue")
		}
		index, itid, err := checkExp(sc, info, lv.Index, false)
		if err != nil {
			return nil, ident.TypeId{}, err
		}
		if itid != info.Int {
			return nil, ident.TypeId{}, errf("subscript index must be int")
		}
		return &checked.SubscriptLValue{Base: base, Index: index}, bty.Elem, nil

	case *ast.FieldLValue:
		base, btid, err := checkLValue(sc, info, lv.Base)
		if err != nil {
			return nil, ident.TypeId{}, err
		}
		bty := info.TypeOf(btid)
		if bty.Kind != checked.KindRecord {
			return nil, ident.TypeId{}, errf("field access into non-record lvalue")
		}
		for i, f := range bty.Fields {
			if f.Name == lv.Field {
				return &checked.FieldLValue{Base: base, Field: lv.Field, FieldIndex: i}, f.Type, nil
			}
		}
		return nil, ident.TypeId{}, errf("record has no field %q", lv.Field)

	default:
		return nil, ident.TypeId{}, errf("internal error: unhandled lvalue kind %T", lv)
	}
}
