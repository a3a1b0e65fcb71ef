// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metrics

import (
	"context"
	"time"

	"github.com/algbio/alneval/common"
	"github.com/algbio/alneval/internal/alignment"
	"github.com/algbio/alneval/internal/pool"
	"github.com/algbio/alneval/internal/reads"
)

// BlockSize is the nominal number of reads scored by one worker.
const BlockSize = 200

// Block is a half-open range [Lo, Hi) of read indices.
type Block struct {
	Lo, Hi int
}

// Blocks partitions n reads into n/size+1 contiguous blocks of near-equal
// length, in index order.
func Blocks(n, size int) []Block {
	k := n/size + 1
	blocks := make([]Block, k)
	for i := range blocks {
		blocks[i] = Block{Lo: i * n / k, Hi: (i + 1) * n / k}
	}
	return blocks
}

type blockWorker struct {
	s   *Scorer
	ids []string
	out *[]Row
}

func (w *blockWorker) Run(ctx context.Context) error {
	rows := make([]Row, 0, len(w.ids))
	for _, id := range w.ids {
		if ctx.Err() != nil {
			return nil
		}
		row, err := w.s.Score(id)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	*w.out = rows
	return pool.Done
}

func (w *blockWorker) Close() error { return nil }

// Run scores the reads ids with s on at most threads goroutines and returns
// the rows in the order of ids. The first failure aborts the run and no
// rows are returned.
func Run(ctx context.Context, s *Scorer, ids []string, threads int) ([]Row, error) {
	blocks := Blocks(len(ids), BlockSize)
	results := make([][]Row, len(blocks))
	workers := make([]pool.Worker, len(blocks))
	for i, b := range blocks {
		workers[i] = &blockWorker{s: s, ids: ids[b.Lo:b.Hi], out: &results[i]}
	}
	if err := pool.New(ctx, workers, threads).Run(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(ids))
	for _, r := range results {
		rows = append(rows, r...)
	}
	return rows, nil
}

// CheckAlignments returns a *common.LookupError for the first alignment
// whose read is not in rs.
func CheckAlignments(rs *reads.Set, alns *alignment.Set) error {
	for _, id := range alns.IDs() {
		if _, ok := rs.Get(id); !ok {
			return &common.LookupError{File: alns.File, ID: id}
		}
	}
	return nil
}

// Evaluator holds the inputs shared by every alignment file of a run.
type Evaluator struct {
	Graph   alignment.Labeler
	Reads   *reads.Set
	Ref     *reads.Reference
	Threads int
}

// Stats describes one evaluated alignment file.
type Stats struct {
	Reads   int
	Aligned int
	Decode  time.Duration
	Score   time.Duration
}

// Evaluate decodes the alignment file alnPath, scores every read and
// writes the summary CSV to csvPath. Nothing is written unless every read
// was scored.
func (e *Evaluator) Evaluate(ctx context.Context, alnPath, csvPath string) (Stats, error) {
	var st Stats
	t0 := time.Now()
	alns, err := alignment.Load(alnPath, e.Graph)
	if err != nil {
		return st, err
	}
	if err := CheckAlignments(e.Reads, alns); err != nil {
		return st, err
	}
	st.Decode = time.Since(t0)
	st.Reads = e.Reads.Len()
	st.Aligned = alns.Len()

	t1 := time.Now()
	s := &Scorer{Graph: e.Graph, Reads: e.Reads, Ref: e.Ref, Alignments: alns}
	rows, err := Run(ctx, s, e.Reads.IDs(), e.Threads)
	if err != nil {
		return st, err
	}
	st.Score = time.Since(t1)
	return st, WriteCSV(csvPath, rows)
}
