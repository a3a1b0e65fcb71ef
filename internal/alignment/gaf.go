// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alignment

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/algbio/alneval/common"
)

const (
	gafFields = 9
	maxLine   = 1 << 30
)

// gafLine is the part of a GAF record the decoder needs.
type gafLine struct {
	ID      string
	Path    []string
	Reverse bool
	Start   int
	End     int
}

// LoadGAF decodes the GAF file at path.
func LoadGAF(path string, g Labeler) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	set := NewSet(path)
	if err := ReadGAF(f, g, set.Add); err != nil {
		return nil, common.InFile(err, path)
	}
	return set, nil
}

// ReadGAF decodes GAF records from r and calls fn with each record in
// input order.
func ReadGAF(r io.Reader, g Labeler, fn func(*Record)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	var lineno int
	for sc.Scan() {
		lineno++
		line := sc.Text()
		if line == "" {
			continue
		}
		l, err := parseGAFLine(line)
		if err != nil {
			return common.Formatf(fmt.Sprintf("line %d", lineno), "%v", err)
		}
		rec, err := l.record(g)
		if err != nil {
			return withRecord(err, fmt.Sprintf("line %d", lineno))
		}
		fn(rec)
	}
	return sc.Err()
}

func parseGAFLine(line string) (*gafLine, error) {
	f := strings.Split(line, "\t")
	if len(f) < gafFields {
		return nil, fmt.Errorf("record has %d fields, want at least %d", len(f), gafFields)
	}
	l := &gafLine{ID: f[0]}
	if l.ID == "" {
		return nil, fmt.Errorf("record has no read id")
	}
	var err error
	l.Path, l.Reverse, err = parseGAFPath(f[5])
	if err != nil {
		return nil, err
	}
	if l.Start, err = strconv.Atoi(f[7]); err != nil {
		return nil, fmt.Errorf("path start: %v", err)
	}
	if l.End, err = strconv.Atoi(f[8]); err != nil {
		return nil, fmt.Errorf("path end: %v", err)
	}
	return l, nil
}

// parseGAFPath splits an oriented path such as ">1>2" or "<2<1" into vertex
// ids. A single "<" step marks the whole path reversed. The unmapped path
// "*" yields an empty path.
func parseGAFPath(s string) (path []string, reverse bool, err error) {
	if s == "*" {
		return nil, false, nil
	}
	if s == "" || (s[0] != '<' && s[0] != '>') {
		return nil, false, fmt.Errorf("path %q is not an oriented vertex path", s)
	}
	for len(s) > 0 {
		if s[0] == '<' {
			reverse = true
		}
		s = s[1:]
		i := strings.IndexAny(s, "<>")
		if i < 0 {
			i = len(s)
		}
		if i == 0 {
			return nil, false, fmt.Errorf("empty vertex id in path")
		}
		path = append(path, s[:i])
		s = s[i:]
	}
	return path, reverse, nil
}

func (l *gafLine) record(g Labeler) (*Record, error) {
	ls, err := labels(g, l.Path)
	if err != nil {
		return nil, err
	}
	frame := foldGAF(ls, l.Reverse, l.Start, l.End)
	seq, err := Reconstruct(ls, frame)
	if err != nil {
		return nil, err
	}
	var rev int
	if l.Reverse {
		rev = len(l.Path)
	}
	return &Record{
		ID:       l.ID,
		Seq:      seq,
		Path:     l.Path,
		RevSteps: rev,
		First:    frame.First,
		Last:     frame.Last,
	}, nil
}

// foldGAF computes the Frame of a GAF path. GAF start and end are offsets
// into the concatenated path sequence in traversal orientation: the end is
// brought onto the last vertex by walking over every preceding vertex, and
// on a reverse path both are mirrored into forward label coordinates.
func foldGAF(labels []string, reverse bool, start, end int) Frame {
	n := len(labels)
	f := Frame{First: start, Last: end, Reverse: reverse}
	if n == 0 {
		return f
	}
	if reverse {
		f.First = len(labels[0]) - start
		f.Last = len(labels[n-1]) - end
	}
	for _, l := range labels[:n-1] {
		if reverse {
			f.Last += len(l)
		} else {
			f.Last -= len(l)
		}
	}
	return f
}
