// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package reads

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/algbio/alneval/common"
	"github.com/algbio/alneval/internal/sequence"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Labeler resolves vertex labels. *gfa.Graph implements it.
type Labeler interface {
	Label(id string) (string, error)
}

// Reference is the sequence simulated reads were sampled from, together
// with the graph path spelling it.
type Reference struct {
	Seq     string
	RevComp string

	// Path holds the vertex ids of the ground-truth path in order.
	Path []string

	// limits[i] is the reference coordinate one past the end of Path[i].
	limits []int
}

// LoadReference reads the reference sequence from fastaPath and the truth
// path from pathPath. Either may be empty, which leaves the corresponding
// part of the reference empty.
func LoadReference(fastaPath, pathPath string, g Labeler) (*Reference, error) {
	ref := &Reference{}
	if fastaPath != "" {
		seq, err := readLastFasta(fastaPath)
		if err != nil {
			return nil, err
		}
		ref.Seq = seq
		ref.RevComp, err = sequence.ReverseComplement(seq)
		if err != nil {
			return nil, &common.FormatError{File: fastaPath, Err: err}
		}
	}
	if pathPath != "" {
		f, err := os.Open(pathPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		ref.Path, err = parsePath(f)
		if err != nil {
			return nil, common.InFile(err, pathPath)
		}
	}
	if err := ref.index(g); err != nil {
		return nil, err
	}
	return ref, nil
}

// NewReference builds a Reference from in-memory parts.
func NewReference(seq string, path []string, g Labeler) (*Reference, error) {
	rc, err := sequence.ReverseComplement(seq)
	if err != nil {
		return nil, &common.FormatError{Record: "reference", Err: err}
	}
	ref := &Reference{Seq: seq, RevComp: rc, Path: path}
	if err := ref.index(g); err != nil {
		return nil, err
	}
	return ref, nil
}

func (r *Reference) index(g Labeler) error {
	r.limits = make([]int, len(r.Path))
	var sum int
	for i, id := range r.Path {
		l, err := g.Label(id)
		if err != nil {
			return err
		}
		sum += len(l)
		r.limits[i] = sum
	}
	return nil
}

// Len returns the length of the reference sequence.
func (r *Reference) Len() int { return len(r.Seq) }

// PathLen returns the total label length along the truth path.
func (r *Reference) PathLen() int {
	if len(r.limits) == 0 {
		return 0
	}
	return r.limits[len(r.limits)-1]
}

// Locate returns the index in Path of the vertex covering reference
// coordinate pos.
func (r *Reference) Locate(pos int) (int, error) {
	i := sort.Search(len(r.limits), func(i int) bool { return r.limits[i] > pos })
	if pos < 0 || i == len(r.limits) {
		return 0, &common.FormatError{Record: "reference", Err: fmt.Errorf("coordinate %d outside truth path of length %d", pos, r.PathLen())}
	}
	return i, nil
}

// Start returns the reference coordinate at which Path[i] begins.
func (r *Reference) Start(i int) int {
	if i == 0 {
		return 0
	}
	return r.limits[i-1]
}

func readLastFasta(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	template := linear.NewSeq("", nil, alphabet.DNA)
	sc := seqio.NewScanner(fasta.NewReader(f, template))
	var last *linear.Seq
	for sc.Next() {
		last = sc.Seq().(*linear.Seq)
	}
	if err := sc.Error(); err != nil {
		return "", &common.FormatError{File: path, Err: err}
	}
	if last == nil {
		return "", &common.FormatError{File: path, Err: fmt.Errorf("no sequence")}
	}
	b := make([]byte, len(last.Seq))
	for i, l := range last.Seq {
		b[i] = byte(l)
	}
	return string(b), nil
}

// parsePath reads a truth path listing, one vertex per line in the second
// whitespace-separated column.
func parsePath(r io.Reader) ([]string, error) {
	var path []string
	sc := bufio.NewScanner(r)
	var lineno int
	for sc.Scan() {
		lineno++
		f := strings.Fields(sc.Text())
		if len(f) == 0 {
			continue
		}
		if len(f) < 2 {
			return nil, common.Formatf(fmt.Sprintf("line %d", lineno), "path line has %d fields, want at least 2", len(f))
		}
		path = append(path, f[1])
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return path, nil
}
