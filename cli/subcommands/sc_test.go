// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package subcommands

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"testing"
)

type echoCmd struct {
	upper bool
	got   []string
}

func (*echoCmd) Name() string     { return "echo" }
func (*echoCmd) Synopsis() string { return "Prints its arguments." }
func (*echoCmd) PrintUsage(w io.Writer, base string) {
	fmt.Fprintf(w, "Usage: %s echo [flags] args...\n", base)
}
func (c *echoCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.upper, "upper", false, "print in upper case")
}
func (c *echoCmd) Run(args []string) error {
	if len(args) == 0 {
		return errors.New("nothing to echo")
	}
	c.got = args
	return nil
}

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	oldOut, oldCmds := out, cmds
	t.Cleanup(func() { out, cmds = oldOut, oldCmds })
	out, cmds = &buf, nil

	echo := &echoCmd{}
	Register(echo)

	if code := run([]string{"echo", "-upper", "a", "b"}); code != 0 {
		t.Fatalf("echo: exit code %d", code)
	}
	if !echo.upper || strings.Join(echo.got, " ") != "a b" {
		t.Errorf("echo ran with upper=%v args=%v", echo.upper, echo.got)
	}
	if code := run([]string{"echo"}); code != 1 {
		t.Errorf("failing echo: exit code %d, want 1", code)
	}

	buf.Reset()
	if code := run([]string{"frobnicate"}); code != 1 {
		t.Errorf("unknown subcommand: exit code %d, want 1", code)
	}
	if !strings.Contains(buf.String(), `unknown subcommand: "frobnicate"`) {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	if code := run([]string{"help", "echo"}); code != 0 {
		t.Errorf("help echo: exit code %d", code)
	}
	if !strings.Contains(buf.String(), "echo [flags] args...") {
		t.Errorf("help output %q lacks usage", buf.String())
	}

	buf.Reset()
	if code := run(nil); code != 1 {
		t.Errorf("no subcommand: exit code %d, want 1", code)
	}
	if !strings.Contains(buf.String(), "Prints its arguments.") {
		t.Errorf("usage %q lacks synopsis", buf.String())
	}
}
