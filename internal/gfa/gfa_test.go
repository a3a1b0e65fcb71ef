// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gfa

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/algbio/alneval/common"
	"github.com/google/go-cmp/cmp"
)

const testGFA = `H	VN:Z:1.0
S	1	ACGT
S	2	GGTT	LN:i:4
S	3	A
S	9	CCCC
L	1	+	2	+	0M
L	1	+	3	+	0M
L	2	+	3	+	0M
P	ref	1+,2+,3+	*
`

func TestParse(t *testing.T) {
	g, err := Parse(strings.NewReader(testGFA))
	if err != nil {
		t.Fatal(err)
	}
	if n := g.NumVertices(); n != 4 {
		t.Errorf("got %d vertices, want 4", n)
	}
	if n := g.NumEdges(); n != 3 {
		t.Errorf("got %d edges, want 3", n)
	}
	for id, want := range map[string]string{"1": "ACGT", "2": "GGTT", "3": "A"} {
		got, err := g.Label(id)
		if err != nil {
			t.Fatalf("Label(%s): %v", id, err)
		}
		if got != want {
			t.Errorf("Label(%s) = %q, want %q", id, got, want)
		}
	}
	if diff := cmp.Diff([]string{"2", "3"}, g.Heads("1")); diff != "" {
		t.Errorf("Heads(1) mismatch (-want +got):\n%s", diff)
	}
	if h := g.Heads("3"); len(h) != 0 {
		t.Errorf("Heads(3) = %v, want none", h)
	}
	if c := g.Components(); c != 2 {
		t.Errorf("got %d components, want 2", c)
	}
}

func TestLabelUndeclared(t *testing.T) {
	g, err := Parse(strings.NewReader(testGFA))
	if err != nil {
		t.Fatal(err)
	}
	_, err = g.Label("42")
	var fe *common.FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *common.FormatError, got %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	for name, in := range map[string]string{
		"short segment": "S\t1\n",
		"no sequence":   "S\t1\t*\n",
		"duplicate":     "S\t1\tA\nS\t1\tC\n",
		"short link":    "S\t1\tA\nL\t1\t+\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(in))
			var fe *common.FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *common.FormatError, got %v", err)
			}
		})
	}
}

func TestLoadNamesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gfa")
	if err := os.WriteFile(path, []byte("S\t1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error naming %s, got %v", path, err)
	}
}
