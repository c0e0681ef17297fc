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

// Package compile wires every pass into the single-threaded,
// stage-to-stage pipeline: parse -> check -> lower -> select -> legalize
// -> allocate -> print. Each stage either returns a complete result or
// aborts the compilation; errors are wrapped with stage context as they
// cross each boundary, and internal-error panics from the passes are
// recovered here so a caller always sees an error, never a crash.
package compile

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/johnflanigan/catc/internal/ast"
	"github.com/johnflanigan/catc/internal/check"
	"github.com/johnflanigan/catc/internal/frontend"
	"github.com/johnflanigan/catc/internal/legalize"
	"github.com/johnflanigan/catc/internal/lower"
	"github.com/johnflanigan/catc/internal/regalloc"
	"github.com/johnflanigan/catc/internal/x64"
	"github.com/johnflanigan/catc/internal/x64s"
)

// Options selects the allocator and carries the stage tracer. A nil Log
// discards all tracing.
type Options struct {
	// GraphColoring selects the graph-coloring register allocator over
	// the stack-only baseline.
	GraphColoring bool

	Log *logrus.Entry
}

func (o Options) log() *logrus.Entry {
	if o.Log != nil {
		return o.Log
	}
	silent := logrus.New()
	silent.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(silent)
}

// Source parses and compiles one Cat source file to assembly text.
func Source(src string, opts Options) (string, error) {
	prog, err := frontend.Parse(src)
	if err != nil {
		return "", errors.Wrap(err, "parse")
	}
	return Compile(prog, opts)
}

// Compile runs the whole back half of the pipeline over a surface
// program, returning the AT&T assembly text.
func Compile(prog *ast.Program, opts Options) (asm string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("internal error: %v", r)
		}
	}()

	log := opts.log()

	checkedProg, info, err := check.Check(prog)
	if err != nil {
		return "", errors.Wrap(err, "type check")
	}
	log.WithField("functions", len(checkedProg.Functions)).Debug("type check complete")

	lirProg := lower.Lower(checkedProg, info)
	log.WithField("functions", 1+len(lirProg.Others)).Debug("lowering complete")

	selected, err := x64s.Select(info.Gen, lirProg)
	if err != nil {
		return "", errors.Wrap(err, "instruction selection")
	}
	log.WithField("strings", len(selected.Strings)).Debug("instruction selection complete")

	legal := legalize.Legalize(selected)
	log.Debug("legalization complete")

	physical := regalloc.Allocate(legal, opts.GraphColoring)
	log.WithField("graph_coloring", opts.GraphColoring).Debug("register allocation complete")

	return x64.Print(physical), nil
}
