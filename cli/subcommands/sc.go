// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package subcommands

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/algbio/alneval/common"
	"github.com/algbio/alneval/common/log"
)

const (
	usageHeader = `alneval %s: sequence-to-graph aligner evaluation

`
	usageTop = `alneval scores the alignments of sequencing reads to a sequence graph. For
every read it computes the length of the aligned sequence, its edit distance
to the read, and, for simulated reads, its edit distance to the true sequence
and the number of bases its path shares with the ground-truth path.

Per-read metrics are written as CSV files, which the report subcommand turns
into accuracy curves.

Usage: %s <subcommand> [subcommand flags] [subcommand args]

Subcommands:
`
)

var (
	base string
	cmds []*command
	out  io.Writer
)

func init() {
	base = filepath.Base(os.Args[0])
	out = os.Stderr
}

type command struct {
	Command
	flags *flag.FlagSet
}

func (c *command) usage() {
	fmt.Fprintf(out, usageHeader, common.Version)
	c.PrintUsage(out, base)
	c.flags.PrintDefaults()
}

type Command interface {
	Name() string
	Synopsis() string
	PrintUsage(w io.Writer, base string)
	SetFlags(f *flag.FlagSet)
	Run(args []string) error
}

func Register(cmd Command) {
	f := flag.NewFlagSet(cmd.Name(), flag.ExitOnError)
	cmd.SetFlags(f)
	c := &command{
		Command: cmd,
		flags:   f,
	}
	f.Usage = func() {
		c.usage()
	}
	cmds = append(cmds, c)
}

func usage() {
	fmt.Fprintf(out, usageHeader, common.Version)
	fmt.Fprintf(out, usageTop, base)
	maxnamelen := 10
	for _, c := range cmds {
		l := utf8.RuneCountInString(c.Name())
		if l > maxnamelen {
			maxnamelen = l
		}
	}
	for _, c := range cmds {
		fmt.Fprintf(out, fmt.Sprintf("  %%%ds: %%s\n", maxnamelen), c.Name(), c.Synopsis())
	}
}

// Run dispatches os.Args to the registered subcommand and returns the
// process exit code.
func Run() int {
	return run(os.Args[1:])
}

func run(args []string) int {
	if len(args) < 1 {
		usage()
		return 1
	}
	subcmd := args[0]
	if subcmd == "help" {
		if len(args) >= 2 {
			subhelp := args[1]
			for _, cmd := range cmds {
				if cmd.Name() == subhelp {
					cmd.usage()
					return 0
				}
			}
		}
		usage()
		return 0
	}
	var chosen *command
	for _, cmd := range cmds {
		if cmd.Name() == subcmd {
			chosen = cmd
			break
		}
	}
	if chosen == nil {
		fmt.Fprintf(out, "unknown subcommand: %q\n", subcmd)
		fmt.Fprintln(out)
		usage()
		return 1
	}
	chosen.flags.Parse(args[1:])
	if err := chosen.Run(chosen.flags.Args()); err != nil {
		log.Error(err)
		return 1
	}
	return 0
}
