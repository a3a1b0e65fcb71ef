// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/algbio/alneval/common"
	"github.com/algbio/alneval/common/log"
)

const (
	runLongDesc = `Evaluate the experiments described in TOML configuration files.`
	runUsage    = `Usage: %s run [flags] <config> [configs...]
`
)

type runCmd struct {
	quiet       bool
	printCmd    bool
	stopOnError bool
	toRun       csvFlag
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "Evaluates the experiments of configuration files." }
func (*runCmd) PrintUsage(w io.Writer, base string) {
	fmt.Fprintln(w, runLongDesc)

	// Print configuration format information.
	fmt.Fprint(w, common.ConfigHelp)
	fmt.Fprintln(w)

	// Print usage line. Flags will automatically be added after.
	fmt.Fprintf(w, runUsage, base)
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.quiet, "quiet", false, "whether to suppress activity output on stderr (no effect on -shell)")
	f.BoolVar(&c.printCmd, "shell", false, "whether to print the equivalent summary commands to stdout")
	f.BoolVar(&c.stopOnError, "stop-on-error", false, "whether to stop running experiments if one fails")
	f.Var(&c.toRun, "run", "comma-separated list of experiments to run (default: all)")
}

func (c *runCmd) Run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one configuration is required")
	}
	log.SetCommandTrace(c.printCmd)
	log.SetActivityLog(!c.quiet)

	// Parse and validate all input TOML configs before running anything.
	var exps []*common.Experiment
	names := make(map[string]string)
	for _, configFile := range args {
		f, err := common.ReadExperimentFile(configFile)
		if err != nil {
			return err
		}
		for _, e := range f.Experiments {
			if prev, ok := names[e.Name]; ok {
				return fmt.Errorf("experiment %s in %s is also defined in %s", e.Name, configFile, prev)
			}
			names[e.Name] = configFile
			exps = append(exps, e)
		}
	}
	exps, err := selectExperiments(exps, c.toRun)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	var failed []string
	for _, e := range exps {
		log.Printf("Running experiment: %s", e.Name)
		if err := runExperiment(ctx, e); err != nil {
			if c.stopOnError || ctx.Err() != nil {
				return fmt.Errorf("experiment %s: %w", e.Name, err)
			}
			log.Error(fmt.Errorf("experiment %s: %w", e.Name, err))
			failed = append(failed, e.Name)
		}
	}
	if len(failed) != 0 {
		return fmt.Errorf("%d of %d experiments failed: %v", len(failed), len(exps), failed)
	}
	return nil
}

func selectExperiments(exps []*common.Experiment, names []string) ([]*common.Experiment, error) {
	if len(names) == 0 {
		return exps, nil
	}
	byName := make(map[string]*common.Experiment, len(exps))
	for _, e := range exps {
		byName[e.Name] = e
	}
	sel := make([]*common.Experiment, 0, len(names))
	for _, n := range names {
		e, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown experiment %q", n)
		}
		sel = append(sel, e)
	}
	return sel, nil
}
