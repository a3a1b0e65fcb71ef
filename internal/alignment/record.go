// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package alignment decodes sequence-to-graph alignments into normalized
// records: the path through the graph, the offsets at which the alignment
// enters the first vertex and leaves the last one, the path orientation, and
// the linear sequence spelled by the path.
//
// Two wire formats are supported. GAM is a gzip-compressed stream of
// varint-framed protobuf messages; GAF is a tab-separated text format. The
// two anchor their offsets differently, and each decoder normalizes its own
// convention into a Frame before the shared trimming rule is applied.
package alignment

import (
	"fmt"
	"path/filepath"
)

// Labeler resolves vertex labels. *gfa.Graph implements it.
type Labeler interface {
	Label(id string) (string, error)
}

// Record is a decoded alignment.
type Record struct {
	// ID is the read id.
	ID string

	// Seq is the sequence spelled by the trimmed path, reverse complemented
	// when the path is reverse oriented.
	Seq string

	// Path holds the vertex ids in path order.
	Path []string

	// RevSteps is the number of reverse-oriented steps. GAF marks the whole
	// path reversed, so there it is either 0 or len(Path).
	RevSteps int

	// First and Last are the trimmed offsets on the first and last vertex,
	// in forward label coordinates. See Bounds.
	First int
	Last  int
}

// Reverse reports whether the alignment is on the reverse strand.
func (r *Record) Reverse() bool { return r.RevSteps > 0 }

// Len returns the length of the reconstructed sequence.
func (r *Record) Len() int { return len(r.Seq) }

// Frame returns the offsets and orientation the record was built from.
func (r *Record) Frame() Frame {
	return Frame{First: r.First, Last: r.Last, Reverse: r.Reverse()}
}

// Set holds at most one record per read id.
type Set struct {
	File string

	recs  map[string]*Record
	order []string
}

// NewSet returns an empty set for records decoded from file.
func NewSet(file string) *Set {
	return &Set{File: file, recs: make(map[string]*Record)}
}

// Add inserts r. When a record with the same id exists, the one with the
// longer sequence is kept; on a tie the existing record stays.
func (s *Set) Add(r *Record) {
	old, ok := s.recs[r.ID]
	if !ok {
		s.order = append(s.order, r.ID)
		s.recs[r.ID] = r
		return
	}
	if r.Len() > old.Len() {
		s.recs[r.ID] = r
	}
}

// Get returns the record for read id.
func (s *Set) Get(id string) (*Record, bool) {
	r, ok := s.recs[id]
	return r, ok
}

// IDs returns the read ids in the order they were first seen.
func (s *Set) IDs() []string { return s.order }

// Len returns the number of distinct read ids.
func (s *Set) Len() int { return len(s.order) }

// Load decodes the alignment file at path, choosing the format by extension.
func Load(path string, g Labeler) (*Set, error) {
	switch filepath.Ext(path) {
	case ".gam":
		return LoadGAM(path, g)
	case ".gaf":
		return LoadGAF(path, g)
	}
	return nil, fmt.Errorf("%s: unknown alignment format, want .gam or .gaf", path)
}

func labels(g Labeler, path []string) ([]string, error) {
	ls := make([]string, len(path))
	for i, id := range path {
		l, err := g.Label(id)
		if err != nil {
			return nil, err
		}
		ls[i] = l
	}
	return ls, nil
}
