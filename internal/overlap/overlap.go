// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package overlap measures how much of a read's true origin an alignment
// covers, vertex by vertex.
package overlap

import (
	"fmt"

	"github.com/algbio/alneval/common"
	"github.com/algbio/alneval/internal/alignment"
	"github.com/algbio/alneval/internal/reads"
)

// Interval is a half-open range [Start, End) of a vertex label in forward
// coordinates.
type Interval struct {
	Start int
	End   int
}

// Len returns the length of i.
func (i Interval) Len() int { return i.End - i.Start }

// Intersect returns the length of the intersection of a and b.
func Intersect(a, b Interval) int {
	return max(0, min(a.End, b.End)-max(a.Start, b.Start))
}

// Map maps a vertex id to the part of its label a path covers. A vertex
// visited more than once keeps its last interval.
type Map map[string]Interval

// Path returns the Map of an alignment path trimmed by f.
func Path(path []string, f alignment.Frame, g alignment.Labeler) (Map, error) {
	m := make(Map, len(path))
	n := len(path)
	for idx, id := range path {
		l, err := g.Label(id)
		if err != nil {
			return nil, err
		}
		lo, hi := alignment.Bounds(idx, n, len(l), f)
		if lo < 0 || lo > hi || hi > len(l) {
			return nil, common.Formatf("vertex "+id, "interval [%d,%d) outside label of length %d", lo, hi, len(l))
		}
		m[id] = Interval{lo, hi}
	}
	return m, nil
}

// Truth returns the Map of the reference interval [s, t), given in forward
// reference coordinates, over the truth path of ref. An empty interval
// yields an empty Map.
func Truth(ref *reads.Reference, s, t int, g alignment.Labeler) (Map, error) {
	if t <= s {
		return Map{}, nil
	}
	first, err := ref.Locate(s)
	if err != nil {
		return nil, err
	}
	last, err := ref.Locate(t - 1)
	if err != nil {
		return nil, err
	}
	m := make(Map, last-first+1)
	for i := first; i <= last; i++ {
		id := ref.Path[i]
		l, err := g.Label(id)
		if err != nil {
			return nil, err
		}
		iv := Interval{0, len(l)}
		if i == first {
			iv.Start = s - ref.Start(first)
		}
		if i == last {
			iv.End = t - ref.Start(last)
		}
		if iv.Start > iv.End {
			return nil, &common.FormatError{Record: "vertex " + id, Err: fmt.Errorf("truth interval [%d,%d) is empty", iv.Start, iv.End)}
		}
		m[id] = iv
	}
	return m, nil
}

// Overlap returns the number of bases shared by the truth and alignment
// maps. Paths of opposite orientation share nothing. Each vertex counts
// once, with the interval its Map holds, so a vertex the alignment visits
// twice contributes a single intersection and the overlap never exceeds
// the truth length.
func Overlap(truth, aln Map, truthReverse, alnReverse bool) int {
	if truthReverse != alnReverse {
		return 0
	}
	var sum int
	for id, a := range aln {
		if t, ok := truth[id]; ok {
			sum += Intersect(t, a)
		}
	}
	return sum
}
