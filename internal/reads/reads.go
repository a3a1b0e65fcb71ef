// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package reads loads the read set, the reference sequence and the
// ground-truth path the reference was spelled from.
package reads

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/algbio/alneval/common"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"
)

// Read is a single read. Simulated reads carry the half-open interval
// [Start, End) they were sampled from and the strand; reads without ground
// truth have Start == End == -1.
type Read struct {
	ID      string
	Label   string
	Reverse bool
	Start   int
	End     int
}

// HasTruth reports whether the read carries a simulated interval. An
// interval starting at 0 is a real one; only the (-1,-1) sentinel means none.
func (r *Read) HasTruth() bool {
	return r.Start >= 0 && r.End >= 0
}

// Set is a read set in input order.
type Set struct {
	ids   []string
	reads map[string]*Read
}

// Len returns the number of reads.
func (s *Set) Len() int { return len(s.ids) }

// IDs returns the read ids in input order. The slice must not be modified.
func (s *Set) IDs() []string { return s.ids }

// Get returns the read with the given id.
func (s *Set) Get(id string) (*Read, bool) {
	r, ok := s.reads[id]
	return r, ok
}

func (s *Set) add(r *Read) error {
	if _, ok := s.reads[r.ID]; ok {
		return common.Formatf("read "+r.ID, "duplicate read id")
	}
	s.ids = append(s.ids, r.ID)
	s.reads[r.ID] = r
	return nil
}

// LoadReads reads the FASTQ file at path. If withTruth is set, the simulated
// interval and strand of every read are parsed from its header, which must
// look like
//
//	@id contig,-strand,1200-3400 ...
//
// where the last comma-separated field of the second header token is the
// interval and a "-strand" field marks a read from the reverse strand. A
// read whose header has no second token keeps the (-1,-1) sentinel.
func LoadReads(path string, withTruth bool) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	set := &Set{reads: make(map[string]*Read)}
	template := linear.NewQSeq("", nil, alphabet.DNA, alphabet.Sanger)
	sc := seqio.NewScanner(fastq.NewReader(f, template))
	for sc.Next() {
		s := sc.Seq().(*linear.QSeq)
		header := strings.Fields(s.Name() + " " + s.Description())
		if len(header) == 0 {
			return nil, &common.FormatError{File: path, Record: fmt.Sprintf("read %d", set.Len()+1), Err: fmt.Errorf("empty header")}
		}
		label := make([]byte, len(s.Seq))
		for i, ql := range s.Seq {
			label[i] = byte(ql.L)
		}
		r := &Read{ID: header[0], Label: string(label), Start: -1, End: -1}
		if withTruth && len(header) >= 2 {
			r.Reverse, r.Start, r.End, err = parseInterval(header[1])
			if err != nil {
				return nil, &common.FormatError{File: path, Record: "read " + r.ID, Err: err}
			}
		}
		if err := set.add(r); err != nil {
			return nil, common.InFile(err, path)
		}
	}
	if err := sc.Error(); err != nil {
		return nil, &common.FormatError{File: path, Err: err}
	}
	return set, nil
}

func parseInterval(tok string) (reverse bool, start, end int, err error) {
	fields := strings.Split(tok, ",")
	for _, f := range fields {
		if f == "-strand" {
			reverse = true
		}
	}
	last := fields[len(fields)-1]
	s, t, ok := strings.Cut(last, "-")
	if !ok {
		return false, 0, 0, fmt.Errorf("malformed interval %q", last)
	}
	start, err = strconv.Atoi(s)
	if err != nil {
		return false, 0, 0, fmt.Errorf("malformed interval start: %v", err)
	}
	end, err = strconv.Atoi(t)
	if err != nil {
		return false, 0, 0, fmt.Errorf("malformed interval end: %v", err)
	}
	if start < 0 || end < start {
		return false, 0, 0, fmt.Errorf("invalid interval %d-%d", start, end)
	}
	return reverse, start, end, nil
}
