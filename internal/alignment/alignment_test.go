// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package alignment

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/algbio/alneval/common"
	"github.com/algbio/alneval/internal/gfa"
	"github.com/google/go-cmp/cmp"
	"github.com/klauspost/compress/gzip"
	"google.golang.org/protobuf/encoding/protowire"
)

const testGFA = "S\t1\tACGT\nS\t2\tGGTT\nS\t3\tACXT\nS\tseg7\tTTTT\nL\t1\t+\t2\t+\t0M\n"

func testGraph(t *testing.T) *gfa.Graph {
	t.Helper()
	g, err := gfa.Parse(strings.NewReader(testGFA))
	if err != nil {
		t.Fatal(err)
	}
	return g
}

type testStep struct {
	node   int64
	name   string
	offset int64
	rev    bool
	from   []int
}

// encodeAlignment builds a vg Alignment message, including fields the
// decoder is expected to skip.
func encodeAlignment(name string, steps []testStep) []byte {
	var path []byte
	for i, s := range steps {
		var pos []byte
		pos = protowire.AppendTag(pos, positionNodeID, protowire.VarintType)
		pos = protowire.AppendVarint(pos, uint64(s.node))
		if s.offset != 0 {
			pos = protowire.AppendTag(pos, positionOffset, protowire.VarintType)
			pos = protowire.AppendVarint(pos, uint64(s.offset))
		}
		if s.rev {
			pos = protowire.AppendTag(pos, positionReverse, protowire.VarintType)
			pos = protowire.AppendVarint(pos, protowire.EncodeBool(true))
		}
		if s.name != "" {
			pos = protowire.AppendTag(pos, positionName, protowire.BytesType)
			pos = protowire.AppendString(pos, s.name)
		}
		var m []byte
		m = protowire.AppendTag(m, mappingPosition, protowire.BytesType)
		m = protowire.AppendBytes(m, pos)
		for _, fl := range s.from {
			var e []byte
			e = protowire.AppendTag(e, editFromLength, protowire.VarintType)
			e = protowire.AppendVarint(e, uint64(fl))
			e = protowire.AppendTag(e, 2, protowire.VarintType) // to_length
			e = protowire.AppendVarint(e, uint64(fl))
			m = protowire.AppendTag(m, mappingEdit, protowire.BytesType)
			m = protowire.AppendBytes(m, e)
		}
		m = protowire.AppendTag(m, 5, protowire.VarintType) // rank
		m = protowire.AppendVarint(m, uint64(i+1))
		path = protowire.AppendTag(path, pathMapping, protowire.BytesType)
		path = protowire.AppendBytes(path, m)
	}
	var a []byte
	a = protowire.AppendTag(a, 1, protowire.BytesType) // sequence
	a = protowire.AppendString(a, "NNNN")
	a = protowire.AppendTag(a, alignmentPath, protowire.BytesType)
	a = protowire.AppendBytes(a, path)
	a = protowire.AppendTag(a, alignmentName, protowire.BytesType)
	a = protowire.AppendString(a, name)
	a = protowire.AppendTag(a, 5, protowire.VarintType) // mapping_quality
	a = protowire.AppendVarint(a, 60)
	return a
}

// encodeGAM frames batches of messages and compresses them. If tag is set
// each batch starts with the GAM type tag.
func encodeGAM(t *testing.T, tag bool, batches ...[][]byte) []byte {
	t.Helper()
	var raw []byte
	for _, batch := range batches {
		n := len(batch)
		if tag {
			n++
		}
		raw = protowire.AppendVarint(raw, uint64(n))
		if tag {
			raw = protowire.AppendVarint(raw, uint64(len(gamTypeTag)))
			raw = append(raw, gamTypeTag...)
		}
		for _, m := range batch {
			raw = protowire.AppendVarint(raw, uint64(len(m)))
			raw = append(raw, m...)
		}
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func gafRecord(id, path string, start, end int) string {
	return strings.Join([]string{id, "6", "0", "6", "+", path, "8",
		strconv.Itoa(start), strconv.Itoa(end), "6", "6", "60", "cs:Z::6"}, "\t")
}

func collect(t *testing.T, set *Set) map[string]*Record {
	t.Helper()
	m := make(map[string]*Record)
	for _, id := range set.IDs() {
		r, ok := set.Get(id)
		if !ok {
			t.Fatalf("id %s listed but missing", id)
		}
		m[id] = r
	}
	return m
}

// The same alignments in both formats must decode to identical records.
func TestGAMMatchesGAF(t *testing.T) {
	g := testGraph(t)
	gam := encodeGAM(t, false, [][]byte{
		encodeAlignment("fwd extra words", []testStep{
			{node: 1, offset: 1, from: []int{3}},
			{node: 2, from: []int{2, 1}},
		}),
		encodeAlignment("rev", []testStep{
			{node: 2, offset: 1, rev: true, from: []int{3}},
			{node: 1, rev: true, from: []int{3}},
		}),
		encodeAlignment("single", []testStep{
			{node: 1, offset: 1, from: []int{2}},
		}),
		encodeAlignment("single-rev", []testStep{
			{node: 1, offset: 1, rev: true, from: []int{2}},
		}),
	})
	gaf := strings.Join([]string{
		gafRecord("fwd", ">1>2", 1, 7),
		gafRecord("rev", "<2<1", 1, 7),
		gafRecord("single", ">1", 1, 3),
		gafRecord("single-rev", "<1", 1, 3),
	}, "\n") + "\n"

	gamSet, err := Load(writeFile(t, "aln.gam", gam), g)
	if err != nil {
		t.Fatal(err)
	}
	gafSet, err := Load(writeFile(t, "aln.gaf", []byte(gaf)), g)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]*Record{
		"fwd":        {ID: "fwd", Seq: "CGTGGT", Path: []string{"1", "2"}, First: 1, Last: 3},
		"rev":        {ID: "rev", Seq: "ACCACG", Path: []string{"2", "1"}, RevSteps: 2, First: 3, Last: 1},
		"single":     {ID: "single", Seq: "CG", Path: []string{"1"}, First: 1, Last: 3},
		"single-rev": {ID: "single-rev", Seq: "CG", Path: []string{"1"}, RevSteps: 1, First: 3, Last: 1},
	}
	if diff := cmp.Diff(want, collect(t, gamSet)); diff != "" {
		t.Errorf("GAM records mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, collect(t, gafSet)); diff != "" {
		t.Errorf("GAF records mismatch (-want +got):\n%s", diff)
	}
}

func TestReadGAMBatches(t *testing.T) {
	g := testGraph(t)
	gam := encodeGAM(t, true,
		[][]byte{
			encodeAlignment("a", []testStep{{node: 1, from: []int{4}}}),
			encodeAlignment("b", []testStep{{name: "seg7", node: 99, from: []int{2}}}),
		},
		[][]byte{
			encodeAlignment("c", []testStep{{node: 2, offset: 2, from: []int{2}}}),
		},
	)
	var got []string
	err := ReadGAM(bytes.NewReader(gam), g, func(r *Record) {
		got = append(got, r.ID+":"+r.Seq+":"+strings.Join(r.Path, ","))
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a:ACGT:1", "b:TT:seg7", "c:TT:2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadIdempotent(t *testing.T) {
	g := testGraph(t)
	path := writeFile(t, "aln.gam", encodeGAM(t, false, [][]byte{
		encodeAlignment("r1", []testStep{{node: 1, offset: 1, from: []int{3}}, {node: 2, from: []int{3}}}),
		encodeAlignment("r1", []testStep{{node: 2, from: []int{4}}}),
		encodeAlignment("r2", []testStep{{node: 2, offset: 1, rev: true, from: []int{3}}}),
	}))
	a, err := Load(path, g)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Load(path, g)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(collect(t, a), collect(t, b)); diff != "" {
		t.Errorf("decoding twice differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"r1", "r2"}, a.IDs()); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestSetKeepsLongest(t *testing.T) {
	short := &Record{ID: "r1", Seq: strings.Repeat("A", 10)}
	long := &Record{ID: "r1", Seq: strings.Repeat("C", 15)}
	tie := &Record{ID: "r1", Seq: strings.Repeat("G", 15)}
	for _, order := range [][]*Record{{short, long, tie}, {long, short, tie}, {long, tie, short}} {
		s := NewSet("x")
		for _, r := range order {
			s.Add(r)
		}
		got, _ := s.Get("r1")
		if got != long {
			t.Errorf("kept %q, want the first 15-base record", got.Seq)
		}
		if s.Len() != 1 {
			t.Errorf("Len = %d, want 1", s.Len())
		}
	}
}

func TestParseGAFPath(t *testing.T) {
	for _, tc := range []struct {
		in   string
		path []string
		rev  bool
		ok   bool
	}{
		{">1>2>3", []string{"1", "2", "3"}, false, true},
		{"<3<2", []string{"3", "2"}, true, true},
		{">1<2", []string{"1", "2"}, true, true},
		{">seg7", []string{"seg7"}, false, true},
		{"*", nil, false, true},
		{"chr1", nil, false, false},
		{">1>>2", nil, false, false},
		{"", nil, false, false},
	} {
		path, rev, err := parseGAFPath(tc.in)
		if (err == nil) != tc.ok {
			t.Errorf("parseGAFPath(%q): err = %v, want ok=%v", tc.in, err, tc.ok)
			continue
		}
		if !tc.ok {
			continue
		}
		if diff := cmp.Diff(tc.path, path); diff != "" || rev != tc.rev {
			t.Errorf("parseGAFPath(%q) = %v %v, want %v %v", tc.in, path, rev, tc.path, tc.rev)
		}
	}
}

func TestGAFUnmapped(t *testing.T) {
	g := testGraph(t)
	set, err := Load(writeFile(t, "aln.gaf", []byte(gafRecord("u", "*", 0, 0)+"\n")), g)
	if err != nil {
		t.Fatal(err)
	}
	r, ok := set.Get("u")
	if !ok {
		t.Fatal("unmapped record missing")
	}
	if r.Len() != 0 || len(r.Path) != 0 || r.Reverse() {
		t.Errorf("got %+v, want an empty forward record", r)
	}
}

func TestDecodeErrors(t *testing.T) {
	g := testGraph(t)
	truncated := encodeGAM(t, false, [][]byte{encodeAlignment("a", []testStep{{node: 1, from: []int{4}}})})
	raw := protowire.AppendVarint(nil, 2)
	raw = protowire.AppendVarint(raw, 10)
	raw = append(raw, 1, 2, 3)
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write(raw)
	zw.Close()
	for name, tc := range map[string]struct {
		file string
		data []byte
	}{
		"gam undeclared vertex": {"a.gam", encodeGAM(t, false, [][]byte{encodeAlignment("a", []testStep{{node: 5, from: []int{1}}})})},
		"gam bad base":          {"a.gam", encodeGAM(t, false, [][]byte{encodeAlignment("a", []testStep{{node: 3, rev: true, from: []int{4}}})})},
		"gam no name":           {"a.gam", encodeGAM(t, false, [][]byte{encodeAlignment("", []testStep{{node: 1, from: []int{4}}})})},
		"gam offsets":           {"a.gam", encodeGAM(t, false, [][]byte{encodeAlignment("a", []testStep{{node: 1, offset: 2, from: []int{4}}})})},
		"gam truncated":         {"a.gam", buf.Bytes()},
		"gam not gzip":          {"a.gam", truncated[10:]},
		"gaf short":             {"a.gaf", []byte("r1\t6\t0\t6\t+\t>1\t8\t1\n")},
		"gaf bad offset":        {"a.gaf", []byte(strings.Replace(gafRecord("r1", ">1", 1, 3), "\t1\t3\t", "\tx\t3\t", 1) + "\n")},
		"gaf undeclared vertex": {"a.gaf", []byte(gafRecord("r1", ">1>9", 1, 3) + "\n")},
	} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, tc.file, tc.data)
			_, err := Load(path, g)
			var fe *common.FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *common.FormatError, got %v", err)
			}
			if fe.File != path {
				t.Errorf("error names file %q, want %q", fe.File, path)
			}
		})
	}
}

func TestLoadUnknownFormat(t *testing.T) {
	if _, err := Load("alignments.sam", testGraph(t)); err == nil {
		t.Fatal("expected error for unknown extension")
	}
}
