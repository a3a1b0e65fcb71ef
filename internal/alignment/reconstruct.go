// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alignment

import (
	"fmt"
	"strings"

	"github.com/algbio/alneval/common"
	"github.com/algbio/alneval/internal/sequence"
)

// Frame is the fold of a path's steps: where the alignment starts on the
// first vertex, where it ends on the last one, and the orientation.
//
// For a forward path First is the offset of the first aligned base and Last
// is one past the last aligned base. For a reverse path both are mirrored
// into forward label coordinates, so the aligned part of the first vertex
// is [0, First) and that of the last vertex is [Last, len).
type Frame struct {
	First   int
	Last    int
	Reverse bool
}

// Bounds returns the half-open part [lo, hi) of step idx of an n-step path
// that is covered by the alignment, for a vertex label of the given length.
// Interior steps are covered entirely.
func Bounds(idx, n, length int, f Frame) (lo, hi int) {
	switch {
	case idx == 0 && idx == n-1:
		if f.Reverse {
			return f.Last, f.First
		}
		return f.First, f.Last
	case idx == 0:
		if f.Reverse {
			return 0, f.First
		}
		return f.First, length
	case idx == n-1:
		if f.Reverse {
			return f.Last, length
		}
		return 0, f.Last
	}
	return 0, length
}

// Reconstruct returns the sequence spelled by a path whose vertex labels
// are given in path order, trimmed according to f.
func Reconstruct(labels []string, f Frame) (string, error) {
	var sb strings.Builder
	n := len(labels)
	for idx, l := range labels {
		lo, hi := Bounds(idx, n, len(l), f)
		if lo < 0 || lo > hi || hi > len(l) {
			return "", common.Formatf(fmt.Sprintf("step %d", idx), "offsets [%d,%d) outside vertex label of length %d", lo, hi, len(l))
		}
		part := l[lo:hi]
		if f.Reverse {
			rc, err := sequence.ReverseComplement(part)
			if err != nil {
				return "", common.Formatf(fmt.Sprintf("step %d", idx), "%v", err)
			}
			part = rc
		}
		sb.WriteString(part)
	}
	return sb.String(), nil
}
