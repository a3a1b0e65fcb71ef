// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/algbio/alneval/common"
	"github.com/algbio/alneval/common/diagnostics"
	"github.com/algbio/alneval/common/log"
	"github.com/algbio/alneval/internal/gfa"
	"github.com/algbio/alneval/internal/metrics"
	"github.com/algbio/alneval/internal/reads"
)

type csvFlag []string

func (c *csvFlag) String() string {
	return strings.Join([]string(*c), ",")
}

func (c *csvFlag) Set(input string) error {
	*c = strings.Split(input, ",")
	return nil
}

// summaryArgs returns the summary command line equivalent to e.
func summaryArgs(e *common.Experiment) []string {
	args := []string{"alneval", "summary", "-g", e.Graph, "-fq", e.Fastq}
	if e.Path != "" {
		args = append(args, "-p", e.Path)
	}
	if e.Fasta != "" {
		args = append(args, "-fa", e.Fasta)
	}
	args = append(args,
		"-als", strings.Join(e.Alignments, ","),
		"-mts", strings.Join(e.Metrics, ","),
		"-t", strconv.Itoa(e.Threads))
	dc := diagnostics.DriverConfig{ConfigSet: e.Diagnostics, ResultsDir: e.ResultsDir}
	return append(args, dc.DriverArgs()...)
}

func diagnosticsDir(e *common.Experiment) string {
	if e.ResultsDir != "" {
		return e.ResultsDir
	}
	return filepath.Join(filepath.Dir(e.Metrics[0]), e.Name+"-diagnostics")
}

// runExperiment loads the graph, reads and reference of e once and
// evaluates each of its alignment files in turn.
func runExperiment(ctx context.Context, e *common.Experiment) error {
	log.TraceCommand("", summaryArgs(e)...)

	t0 := time.Now()
	g, err := gfa.Load(e.Graph)
	if err != nil {
		return err
	}
	log.Printf("%s: %d vertices, %d edges, %d components (%v)",
		e.Graph, g.NumVertices(), g.NumEdges(), g.Components(), time.Since(t0).Round(time.Millisecond))

	t0 = time.Now()
	rs, err := reads.LoadReads(e.Fastq, e.Path != "")
	if err != nil {
		return err
	}
	ref, err := reads.LoadReference(e.Fasta, e.Path, g)
	if err != nil {
		return err
	}
	log.Printf("%s: %d reads, reference of %d bases over %d vertices (%v)",
		e.Fastq, rs.Len(), ref.Len(), len(ref.Path), time.Since(t0).Round(time.Millisecond))
	if e.Path != "" && ref.PathLen() != ref.Len() {
		log.Printf("warning: truth path spells %d bases but the reference has %d", ref.PathLen(), ref.Len())
	}

	var col *diagnostics.Collector
	if !e.Diagnostics.Empty() {
		col, err = diagnostics.NewCollector(e.Diagnostics, diagnosticsDir(e))
		if err != nil {
			return err
		}
	}

	ev := &metrics.Evaluator{Graph: g, Reads: rs, Ref: ref, Threads: e.Threads}
	for i, aln := range e.Alignments {
		var stop func() error
		if col != nil {
			name := fmt.Sprintf("%d-%s", i, strings.TrimSuffix(filepath.Base(aln), filepath.Ext(aln)))
			if stop, err = col.Start(name); err != nil {
				return err
			}
		}
		st, err := ev.Evaluate(ctx, aln, e.Metrics[i])
		if stop != nil {
			if serr := stop(); err == nil && serr != nil {
				err = fmt.Errorf("stopping diagnostics: %w", serr)
			}
		}
		if err != nil {
			return err
		}
		log.Printf("%s: %d alignments for %d reads, decoded in %v, scored in %v -> %s",
			aln, st.Aligned, st.Reads, st.Decode.Round(time.Millisecond), st.Score.Round(time.Millisecond), e.Metrics[i])
		if rss, err := diagnostics.PeakRSS(); err == nil {
			log.Printf("peak RSS: %d MiB", rss>>20)
		}
	}

	if col != nil {
		merged, err := col.Merge()
		if err != nil {
			return err
		}
		for _, m := range merged {
			log.Printf("wrote %s", m)
		}
		log.Printf("diagnostics in %s", col.Dir())
	}
	return nil
}
