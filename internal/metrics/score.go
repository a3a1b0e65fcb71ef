// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics scores decoded alignments against their reads and the
// ground truth, and summarizes the resulting per-read metrics.
package metrics

import (
	"fmt"

	"github.com/algbio/alneval/common"
	"github.com/algbio/alneval/internal/alignment"
	"github.com/algbio/alneval/internal/overlap"
	"github.com/algbio/alneval/internal/reads"

	"github.com/agext/levenshtein"
)

// EditDistance returns the unit-cost global edit distance between a and b.
func EditDistance(a, b string) int {
	return levenshtein.Distance(a, b, nil)
}

// Scorer computes the Row of a read. All of its fields are read-only once
// scoring starts, so a Scorer may be shared by concurrent workers.
type Scorer struct {
	Graph      alignment.Labeler
	Reads      *reads.Set
	Ref        *reads.Reference
	Alignments *alignment.Set

	// Distance defaults to EditDistance.
	Distance func(a, b string) int
}

// Score returns the metrics of read id.
//
// For a simulated read the interval is clamped to the reference, the true
// sequence is cut from the strand the read came from, and the interval is
// moved to forward coordinates to find the truth path. Overlap is only
// counted when the alignment and the read share an orientation. A read
// without alignment scores against the empty sequence.
func (s *Scorer) Score(id string) (Row, error) {
	r, ok := s.Reads.Get(id)
	if !ok {
		return Row{}, &common.LookupError{File: s.Alignments.File, ID: id}
	}
	dist := s.Distance
	if dist == nil {
		dist = EditDistance
	}

	var (
		trueSeq string
		truth   overlap.Map
	)
	if r.HasTruth() {
		n := s.Ref.Len()
		start, end := r.Start, min(r.End, n)
		if start < end {
			if r.Reverse {
				trueSeq = s.Ref.RevComp[start:end]
				start, end = n-end, n-start
			} else {
				trueSeq = s.Ref.Seq[start:end]
			}
			var err error
			truth, err = overlap.Truth(s.Ref, start, end, s.Graph)
			if err != nil {
				return Row{}, readError(err, id)
			}
		}
	}

	var (
		alnSeq string
		ov     int
	)
	if a, ok := s.Alignments.Get(id); ok {
		alnSeq = a.Seq
		if len(truth) > 0 && a.Reverse() == r.Reverse {
			am, err := overlap.Path(a.Path, a.Frame(), s.Graph)
			if err != nil {
				return Row{}, readError(err, id)
			}
			ov = overlap.Overlap(truth, am, r.Reverse, a.Reverse())
		}
	}

	return Row{
		ID:       id,
		LenAln:   len(alnSeq),
		EdRead:   dist(r.Label, alnSeq),
		EdTrue:   dist(trueSeq, alnSeq),
		Overlap:  ov,
		LenTruth: len(trueSeq),
		LenRead:  len(r.Label),
	}, nil
}

func readError(err error, id string) error {
	if fe, ok := err.(*common.FormatError); ok {
		cause := fe.Err
		if fe.Record != "" {
			cause = fmt.Errorf("%s: %w", fe.Record, fe.Err)
		}
		return &common.FormatError{File: fe.File, Record: "read " + id, Err: cause}
	}
	return fmt.Errorf("read %s: %w", id, err)
}
