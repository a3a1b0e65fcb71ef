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
	"github.com/algbio/alneval/common/diagnostics"
	"github.com/algbio/alneval/common/log"
)

const (
	summaryLongDesc = `Score every read against one or more alignment files and write one metrics
CSV per alignment file. Alignment files are GAM (.gam) or GAF (.gaf) and are
paired positionally with the metrics files.

With -p, the simulated interval of each read is taken from its header, as in
"@id contig,+strand,1200-3400", and -fa must name the reference the reads were
simulated from. Reads whose header has no interval have no ground truth.`
	summaryUsage = `Usage: %s summary [flags] -g graph.gfa -fq reads.fq -als a.gam,b.gaf -mts a.csv,b.csv
`
)

type summaryCmd struct {
	exp      common.Experiment
	diag     diagnostics.DriverConfig
	als, mts csvFlag
	verbose  bool
	printCmd bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "Computes per-read metrics of alignment files." }
func (*summaryCmd) PrintUsage(w io.Writer, base string) {
	fmt.Fprintln(w, summaryLongDesc)
	fmt.Fprintln(w)
	fmt.Fprintf(w, summaryUsage, base)
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.exp.Graph, "g", "", "GFA graph the reads were aligned to")
	f.StringVar(&c.exp.Fastq, "fq", "", "FASTQ reads")
	f.StringVar(&c.exp.Path, "p", "", "ground-truth path file, one vertex id per line in the second column")
	f.StringVar(&c.exp.Fasta, "fa", "", "FASTA reference the reads were simulated from")
	f.IntVar(&c.exp.Threads, "t", common.DefaultThreads, "number of scoring goroutines")
	f.Var(&c.als, "als", "comma-separated list of alignment files")
	f.Var(&c.mts, "mts", "comma-separated list of metrics files to write")
	f.BoolVar(&c.verbose, "v", false, "whether to log progress on stderr")
	f.BoolVar(&c.printCmd, "shell", false, "whether to print the equivalent command line to stdout")
	c.diag.AddFlags(f)
}

func (c *summaryCmd) Run(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("unexpected arguments %q", args)
	}
	log.SetActivityLog(c.verbose)
	log.SetCommandTrace(c.printCmd)

	e := c.exp.Copy()
	e.Name = "summary"
	e.Alignments = c.als
	e.Metrics = c.mts
	e.Diagnostics = c.diag.ConfigSet
	e.ResultsDir = c.diag.ResultsDir
	if e.Threads == 0 {
		e.Threads = common.DefaultThreads
	}
	if err := e.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return runExperiment(ctx, e)
}
