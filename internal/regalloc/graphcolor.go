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

package regalloc

import (
	"sort"

	"github.com/johnflanigan/catc/internal/dataflow"
	"github.com/johnflanigan/catc/internal/ident"
	"github.com/johnflanigan/catc/internal/x64s"
)

// GraphColor builds the interference graph over fn's legalized body --
// every pair simultaneously live out of a node interferes, and so does
// every symbol a node kills with whatever is still live out of it -- and
// greedily colors it with the 14 registers AvailableRegisters names.
// Symbols that cannot be colored (their already-colored neighbors hold all
// 14 registers) spill to a stack slot instead, the same fallback Baseline
// always uses.
func GraphColor(fn *x64s.Function) map[ident.Symbol]Home {
	cfg := dataflow.Build(x64s.Lines(fn.Body))
	live := dataflow.ComputeLiveness(cfg)

	all := make(map[ident.Symbol]bool)
	for _, p := range fn.Parameters {
		all[p] = true
	}
	for _, l := range fn.Locals {
		all[l] = true
	}

	graph := make(map[ident.Symbol]map[ident.Symbol]bool, len(all))
	for s := range all {
		graph[s] = make(map[ident.Symbol]bool)
	}

	addEdge := func(a, b ident.Symbol) {
		if a == b {
			return
		}
		if _, ok := graph[a]; !ok {
			graph[a] = make(map[ident.Symbol]bool)
		}
		if _, ok := graph[b]; !ok {
			graph[b] = make(map[ident.Symbol]bool)
		}
		graph[a][b] = true
		graph[b][a] = true
	}

	for n := range cfg.Lines {
		liveOut := live.LiveOut[n].ToSlice()
		for i := range liveOut {
			for j := i + 1; j < len(liveOut); j++ {
				addEdge(liveOut[i], liveOut[j])
			}
		}
		for _, k := range live.Kill[n].ToSlice() {
			for _, o := range liveOut {
				addEdge(k, o)
			}
		}
	}

	order := make([]ident.Symbol, 0, len(graph))
	for s := range graph {
		order = append(order, s)
	}
	sort.Slice(order, func(i, j int) bool {
		return len(graph[order[i]]) > len(graph[order[j]])
	})

	homes := make(map[ident.Symbol]Home, len(order))
	offset := -8

	for _, s := range order {
		used := make(map[x64s.PhysReg]bool)
		for nb := range graph[s] {
			if h, ok := homes[nb]; ok && h.IsRegister() {
				used[h.Register()] = true
			}
		}

		colored := false
		for _, r := range x64s.AvailableRegisters {
			if !used[r] {
				homes[s] = RegisterHome(r)
				colored = true
				break
			}
		}
		if !colored {
			homes[s] = StackHome(offset)
			offset -= 8
		}
	}

	return homes
}
