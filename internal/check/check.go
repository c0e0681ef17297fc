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

// Check type-checks a surface program, returning a fully resolved
// checked.Program plus its populated Info, or the first Error encountered.
// There is no partial output and no recovery: the first failing
// declaration or expression aborts the whole pass.
func Check(prog *ast.Program) (*checked.Program, *checked.Info, error) {
	info := checked.NewInfo()

	sc := newScope()
	sc.top().types["int"] = info.Int
	sc.top().types["string"] = info.String
	sc.top().types["void"] = info.Void
	bindRuntime(sc, info)

	var funcs []*checked.Function
	haveMain := false
	var mainLabel ident.Label

	for _, dec := range prog.Decs {
		switch d := dec.(type) {
		case *ast.ArrayTypeDec:
			next, err := checkArrayAlias(sc, info, d)
			if err != nil {
				return nil, nil, err
			}
			sc = next
		case *ast.RecordTypeDec:
			next, err := checkRecordAlias(sc, info, d)
			if err != nil {
				return nil, nil, err
			}
			sc = next
		case *ast.FunctionDec:
			isMain := d.Name == "main" && !haveMain
			fn, next, err := checkFunction(sc, info, d, isMain)
			if err != nil {
				return nil, nil, err
			}
			if isMain {
				haveMain = true
				mainLabel = fn.Label
			}
			funcs = append(funcs, fn)
			sc = next
		}
	}

	if !haveMain {
		return nil, nil, errf("No Main Found")
	}

	return &checked.Program{Functions: funcs, Main: mainLabel}, info, nil
}

// bindRuntime makes the four runtime print routines callable by name.
// Their labels are the well-known ones, so selection and the printer
// emit the runtime's own symbol names verbatim.
func bindRuntime(sc *scope, info *checked.Info) {
	bind := func(name string, label ident.Label, arg ident.TypeId) {
		sym := info.Gen.Symbol()
		info.BindSymbol(sym, arg)
		info.BindFunction(label, &checked.FunctionType{
			Return:     info.Void,
			Parameters: []checked.Param{{Symbol: sym, Type: arg}},
		})
		sc.top().funcs[name] = label
	}
	bind("print_int", ident.LPrintInt, info.Int)
	bind("print_line_int", ident.LPrintLineInt, info.Int)
	bind("print_string", ident.LPrintString, info.String)
	bind("print_line_string", ident.LPrintLineString, info.String)
}

func checkArrayAlias(sc *scope, info *checked.Info, d *ast.ArrayTypeDec) (*scope, error) {
	elemTid, ok := sc.lookupType(d.ElemName)
	if !ok {
		return nil, errf("unknown type %q", d.ElemName)
	}
	tid := info.InternArray(elemTid)
	next := sc.push()
	next.top().types[d.NewName] = tid
	return next, nil
}

func checkRecordAlias(sc *scope, info *checked.Info, d *ast.RecordTypeDec) (*scope, error) {
	seen := make(map[string]bool, len(d.Fields))
	fields := make([]checked.RecordField, 0, len(d.Fields))
	for _, f := range d.Fields {
		if seen[f.Name] {
			return nil, errf("duplicate field name %q in record declaration %q", f.Name, d.NewName)
		}
		seen[f.Name] = true
		ftid, ok := sc.lookupType(f.TypeName)
		if !ok {
			return nil, errf("unknown type %q", f.TypeName)
		}
		fields = append(fields, checked.RecordField{Name: f.Name, Type: ftid})
	}
	tid := info.InternRecord(fields)
	next := sc.push()
	next.top().types[d.NewName] = tid
	return next, nil
}

func checkFunction(sc *scope, info *checked.Info, d *ast.FunctionDec, isMain bool) (*checked.Function, *scope, error) {
	seen := make(map[string]bool, len(d.Params))
	params := make([]checked.Param, 0, len(d.Params))
	for _, p := range d.Params {
		if seen[p.Name] {
			return nil, nil, errf("duplicate parameter name %q in function %q", p.Name, d.Name)
		}
		seen[p.Name] = true
		ptid, ok := sc.lookupType(p.TypeName)
		if !ok {
			return nil, nil, errf("unknown type %q", p.TypeName)
		}
		sym := info.Gen.Symbol()
		info.BindSymbol(sym, ptid)
		params = append(params, checked.Param{Symbol: sym, Type: ptid})
	}

	retTid, ok := sc.lookupType(d.ReturnType)
	if !ok {
		return nil, nil, errf("unknown type %q", d.ReturnType)
	}

	if isMain {
		if len(params) != 0 {
			return nil, nil, errf("main must take no arguments")
		}
		if retTid != info.Int && retTid != info.Void {
			return nil, nil, errf("main must return int or void")
		}
	}

	var label ident.Label
	if isMain {
		label = ident.LMain
	} else {
		label = info.Gen.Label()
	}

	ft := &checked.FunctionType{Return: retTid, Parameters: params}
	info.BindFunction(label, ft)

	// Bind the function's own name before checking its body so recursive
	// calls resolve; functions declared earlier are already in scope, and
	// subsequent top-level declarations also see this binding. A function
	// cannot call one declared after it.
	scFunc := sc.push()
	scFunc.top().funcs[d.Name] = label

	scBody := scFunc.push()
	for i, p := range d.Params {
		scBody.top().vars[p.Name] = params[i].Symbol
	}

	body, bodyTid, err := checkExp(scBody, info, d.Body, false)
	if err != nil {
		return nil, nil, err
	}
	if !info.Equal(bodyTid, retTid) {
		return nil, nil, errf("function %q: body type does not match declared return type", d.Name)
	}

	return &checked.Function{Label: label, Name: d.Name, Type: ft, Body: body}, scFunc, nil
}
