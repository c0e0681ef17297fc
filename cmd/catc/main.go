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

// catc compiles a Cat source file to x86-64 assembly.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/johnflanigan/catc/internal/compile"
)

const (
	regallocStack = "stack"
	regallocGraph = "graph"
)

var (
	output   string
	verbose  bool
	regalloc string
)

func addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&output, "output", "o", "a.s", "output assembly file")
	fs.BoolVarP(&verbose, "verbose", "v", false, "enable per-pass debug tracing")
	fs.StringVar(&regalloc, "regalloc", regallocStack,
		fmt.Sprintf("register allocator (%s or %s)", regallocStack, regallocGraph))
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "catc [flags] source.cat",
		Short:         "catc is an ahead-of-time Cat-to-x86-64 compiler",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
	}
	addFlags(cmd.Flags())
	return cmd
}

func run(path string) error {
	if regalloc != regallocStack && regalloc != regallocGraph {
		return errors.Errorf("unknown --regalloc value %q", regalloc)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read source")
	}

	asm, err := compile.Source(string(src), compile.Options{
		GraphColoring: regalloc == regallocGraph,
		Log:           logger.WithField("source", path),
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, []byte(asm), 0o644); err != nil {
		return errors.Wrap(err, "write output")
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "catc: %v\n", err)
		os.Exit(1)
	}
}
