// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package common_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/algbio/alneval/common"
	"github.com/algbio/alneval/common/diagnostics"
	"github.com/google/go-cmp/cmp"
)

const testConfig = `
[[experiment]]
  name = "chr22"
  graph = "chr22.gfa"
  fastq = "/data/sim.fq"
  path = "chr22.path"
  fasta = "chr22.fa"
  alignments = ["ga.gam", "gw.gaf"]
  metrics = ["out/ga.csv", "out/gw.csv"]
  diagnostics = ["cpuprofile"]

[[experiment]]
  name = "real"
  graph = "chr22.gfa"
  fastq = "real.fq"
  threads = 4
  alignments = ["real.gaf"]
  metrics = ["real.csv"]
`

func writeConfig(t *testing.T, data string) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "experiments.toml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, path
}

func TestReadExperimentFile(t *testing.T) {
	dir, path := writeConfig(t, testConfig)
	f, err := common.ReadExperimentFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Experiments) != 2 {
		t.Fatalf("got %d experiments, want 2", len(f.Experiments))
	}
	e := f.Experiments[0]
	if e.Graph != filepath.Join(dir, "chr22.gfa") || e.Fastq != "/data/sim.fq" || e.Fasta != filepath.Join(dir, "chr22.fa") {
		t.Errorf("paths not resolved: %+v", e)
	}
	want := []string{filepath.Join(dir, "out/ga.csv"), filepath.Join(dir, "out/gw.csv")}
	if diff := cmp.Diff(want, e.Metrics); diff != "" {
		t.Errorf("metrics mismatch (-want +got):\n%s", diff)
	}
	if e.Threads != common.DefaultThreads || f.Experiments[1].Threads != 4 {
		t.Errorf("threads = %d, %d", e.Threads, f.Experiments[1].Threads)
	}
	if _, ok := e.Diagnostics.Get(diagnostics.CPUProfile); !ok {
		t.Error("cpuprofile not configured")
	}
	if !f.Experiments[1].Diagnostics.Empty() {
		t.Error("unexpected diagnostics for the second experiment")
	}
}

func TestReadExperimentFileErrors(t *testing.T) {
	for name, tc := range map[string]struct {
		config, want string
	}{
		"empty":     {"", "no experiments"},
		"unknown":   {testConfig + "  gpu = true\n", "unknown field"},
		"unpaired":  {"[[experiment]]\nname = \"a\"\ngraph = \"g\"\nfastq = \"f\"\nalignments = [\"a.gaf\"]\n", "0 metrics files"},
		"no graph":  {"[[experiment]]\nname = \"a\"\nfastq = \"f\"\n", "no graph"},
		"no fasta":  {"[[experiment]]\nname = \"a\"\ngraph = \"g\"\nfastq = \"f\"\npath = \"p\"\n", "fasta"},
		"duplicate": {testConfig + "[[experiment]]\nname = \"real\"\ngraph = \"g\"\nfastq = \"f\"\nalignments = [\"a\"]\nmetrics = [\"b\"]\n", "duplicate"},
		"diag":      {"[[experiment]]\nname = \"a\"\ndiagnostics = [\"perf\"]\n", "invalid diagnostic"},
	} {
		_, path := writeConfig(t, tc.config)
		_, err := common.ReadExperimentFile(path)
		if err == nil {
			t.Errorf("%s: expected error", name)
			continue
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: error %q does not mention %q", name, err, tc.want)
		}
	}
}

func TestExperimentMarshalTOML(t *testing.T) {
	before := common.ExperimentFile{
		Experiments: []*common.Experiment{{
			Name:        "go",
			Graph:       "/g.gfa",
			Fastq:       "/r.fq",
			Threads:     8,
			Alignments:  []string{"/a.gam"},
			Metrics:     []string{"/a.csv"},
			Diagnostics: diagnostics.NewConfigSet(diagnostics.Config{Type: diagnostics.MemProfile}),
		}},
	}
	b, err := common.ExperimentFileMarshalTOML(&before)
	if err != nil {
		t.Fatal(err)
	}
	var after common.ExperimentFile
	if err := toml.Unmarshal(b, &after); err != nil {
		t.Fatal(err)
	}
	if len(after.Experiments) != 1 {
		t.Fatalf("unexpected number of experiments: got %d, want 1", len(after.Experiments))
	}
	opt := cmp.Comparer(func(a, b diagnostics.ConfigSet) bool {
		return cmp.Equal(a.Strings(), b.Strings())
	})
	if diff := cmp.Diff(before.Experiments[0], after.Experiments[0], opt); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestExperimentCopy(t *testing.T) {
	e := &common.Experiment{Name: "a", Alignments: []string{"x.gaf"}, Metrics: []string{"x.csv"}}
	c := e.Copy()
	c.Alignments[0] = "y.gaf"
	if e.Alignments[0] != "x.gaf" {
		t.Error("Copy shares the alignment list")
	}
}
