// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/algbio/alneval/common/log"
	"github.com/algbio/alneval/internal/metrics"
)

const (
	reportLongDesc = `Summarize metrics CSV files as produced by the summary subcommand.

For each file the report gives the share of reads, and of read bases, that
are correct under three criteria: edit distance to the read at most 10% of
the read length, edit distance to the true sequence at most 10% of the truth
length, and overlap with the truth path of at least 10% and 95% of the truth
length. Reads without ground truth never pass the truth criteria.`
	reportUsage = `Usage: %s report [flags] <metrics.csv> [metrics.csv...]
`
)

// Thresholds reported in the table.
const (
	sigma    = 0.1
	deltaLow = 0.1
	deltaHi  = 0.95
)

type reportCmd struct {
	names     csvFlag
	curvesDir string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "Prints accuracy tables of metrics files." }
func (*reportCmd) PrintUsage(w io.Writer, base string) {
	fmt.Fprintln(w, reportLongDesc)
	fmt.Fprintln(w)
	fmt.Fprintf(w, reportUsage, base)
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.Var(&c.names, "n", "comma-separated list of names for the metrics files (default: file base names)")
	f.StringVar(&c.curvesDir, "curves", "", "directory to write the full accuracy curves of each file to, as <name>.tsv")
}

func (c *reportCmd) Run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("at least one metrics file is required")
	}
	names := c.names
	if len(names) == 0 {
		for _, a := range args {
			names = append(names, strings.TrimSuffix(filepath.Base(a), filepath.Ext(a)))
		}
	} else if len(names) != len(args) {
		return fmt.Errorf("%d names for %d metrics files", len(names), len(args))
	}

	var sums []*metrics.Summary
	for i, a := range args {
		s, err := metrics.LoadSummary(names[i], a)
		if err != nil {
			return err
		}
		sums = append(sums, s)
	}
	if err := writeReport(os.Stdout, sums); err != nil {
		return err
	}
	if c.curvesDir != "" {
		return writeCurves(c.curvesDir, sums)
	}
	return nil
}

func writeReport(w io.Writer, sums []*metrics.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "name\treads\tread σ=%g\ttruth σ=%g\toverlap δ=%g\toverlap δ=%g\tmean ed/len\t\n", sigma, sigma, deltaLow, deltaHi)
	for _, s := range sums {
		cell := func(m metrics.Metric, t float64) string {
			acc, length := s.Curves[m].At(t)
			return fmt.Sprintf("%.2f%% (%.2f%%)", acc, length)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%.4f\t\n", s.Name, s.Reads,
			cell(metrics.MetricRead, sigma),
			cell(metrics.MetricTruth, sigma),
			cell(metrics.MetricOverlap, deltaLow),
			cell(metrics.MetricOverlap, deltaHi),
			s.Moments[metrics.MetricRead].Mean)
	}
	return tw.Flush()
}

func writeCurves(dir string, sums []*metrics.Summary) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, s := range sums {
		path := filepath.Join(dir, s.Name+".tsv")
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		err = s.WriteCurves(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		log.Printf("wrote %s", path)
	}
	return nil
}
