// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package common

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/algbio/alneval/common/diagnostics"
)

const ConfigHelp = `
The input configuration format is TOML consisting of a single array field
called 'experiment'. Each element of the array consists of the following fields:
         name: a unique name for the experiment (required)
        graph: path to the GFA graph the reads were aligned to (required)
        fastq: path to the FASTQ reads (required)
         path: path to the ground-truth path file; when set, simulated
               intervals are read from the read headers (optional)
        fasta: path to the FASTA reference the reads were simulated from
               (optional)
      threads: number of scoring goroutines (optional, default 30)
   alignments: GAM or GAF files to evaluate (required)
      metrics: summary CSV files, one per alignment file (required)
  diagnostics: data to collect while evaluating, which may be one of:
               cpuprofile, memprofile, trace (optional)
  results-dir: directory for diagnostics data (optional)

Relative paths are resolved against the directory of the configuration file.

A simple example configuration might look like:

[[experiment]]
  name = "chr22"
  graph = "chr22.gfa"
  fastq = "sim.fq"
  path = "chr22.path"
  fasta = "chr22.fa"
  alignments = ["ga.gam", "gw.gaf"]
  metrics = ["ga.csv", "gw.csv"]

Note that because 'experiment' is an array field, one may have multiple
experiments present in a single file.
`

// DefaultThreads is the number of scoring goroutines used when none is
// configured.
const DefaultThreads = 30

type ExperimentFile struct {
	Experiments []*Experiment `toml:"experiment"`
}

type Experiment struct {
	Name        string                `toml:"name"`
	Graph       string                `toml:"graph"`
	Fastq       string                `toml:"fastq"`
	Path        string                `toml:"path"`
	Fasta       string                `toml:"fasta"`
	Threads     int                   `toml:"threads"`
	Alignments  []string              `toml:"alignments"`
	Metrics     []string              `toml:"metrics"`
	Diagnostics diagnostics.ConfigSet `toml:"diagnostics"`
	ResultsDir  string                `toml:"results-dir"`
}

// Validate checks that the required fields of e are set and that the
// alignment and metrics files pair up.
func (e *Experiment) Validate() error {
	switch {
	case e.Name == "":
		return fmt.Errorf("experiment has no name")
	case e.Graph == "":
		return fmt.Errorf("experiment %s: no graph", e.Name)
	case e.Fastq == "":
		return fmt.Errorf("experiment %s: no fastq", e.Name)
	case e.Path != "" && e.Fasta == "":
		return fmt.Errorf("experiment %s: a truth path needs the fasta reference", e.Name)
	case len(e.Alignments) == 0:
		return fmt.Errorf("experiment %s: no alignments", e.Name)
	case len(e.Alignments) != len(e.Metrics):
		return fmt.Errorf("experiment %s: %d alignment files but %d metrics files", e.Name, len(e.Alignments), len(e.Metrics))
	case e.Threads < 0:
		return fmt.Errorf("experiment %s: negative thread count", e.Name)
	}
	return nil
}

// Resolve makes every relative path of e relative to dir and fills in
// defaults.
func (e *Experiment) Resolve(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	e.Graph = abs(e.Graph)
	e.Fastq = abs(e.Fastq)
	e.Path = abs(e.Path)
	e.Fasta = abs(e.Fasta)
	e.ResultsDir = abs(e.ResultsDir)
	for i := range e.Alignments {
		e.Alignments[i] = abs(e.Alignments[i])
	}
	for i := range e.Metrics {
		e.Metrics[i] = abs(e.Metrics[i])
	}
	if e.Threads == 0 {
		e.Threads = DefaultThreads
	}
}

// Copy returns a deep copy of Experiment.
func (e *Experiment) Copy() *Experiment {
	ee := *e
	ee.Alignments = append([]string(nil), e.Alignments...)
	ee.Metrics = append([]string(nil), e.Metrics...)
	ee.Diagnostics = e.Diagnostics.Copy()
	return &ee
}

// ReadExperimentFile decodes and validates the experiments in path.
// Relative paths are resolved against the directory of path.
func ReadExperimentFile(path string) (*ExperimentFile, error) {
	var f ExperimentFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) != 0 {
		return nil, fmt.Errorf("%s: unknown field %s", path, undec[0])
	}
	if len(f.Experiments) == 0 {
		return nil, fmt.Errorf("%s: no experiments", path)
	}
	names := make(map[string]bool)
	for _, e := range f.Experiments {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if names[e.Name] {
			return nil, fmt.Errorf("%s: duplicate experiment %s", path, e.Name)
		}
		names[e.Name] = true
		e.Resolve(filepath.Dir(path))
	}
	return &f, nil
}

func ExperimentFileMarshalTOML(f *ExperimentFile) ([]byte, error) {
	// github.com/BurntSushi/toml at v1.0.0 doesn't correctly support
	// Marshaler (see https://github.com/BurntSushi/toml/issues/341), so
	// the diagnostics go through a mirror type holding plain strings.
	type experiment struct {
		Name        string   `toml:"name"`
		Graph       string   `toml:"graph"`
		Fastq       string   `toml:"fastq"`
		Path        string   `toml:"path,omitempty"`
		Fasta       string   `toml:"fasta,omitempty"`
		Threads     int      `toml:"threads,omitempty"`
		Alignments  []string `toml:"alignments"`
		Metrics     []string `toml:"metrics"`
		Diagnostics []string `toml:"diagnostics,omitempty"`
		ResultsDir  string   `toml:"results-dir,omitempty"`
	}
	type experimentFile struct {
		Experiments []*experiment `toml:"experiment"`
	}
	var out experimentFile
	for _, e := range f.Experiments {
		out.Experiments = append(out.Experiments, &experiment{
			Name:        e.Name,
			Graph:       e.Graph,
			Fastq:       e.Fastq,
			Path:        e.Path,
			Fasta:       e.Fasta,
			Threads:     e.Threads,
			Alignments:  e.Alignments,
			Metrics:     e.Metrics,
			Diagnostics: e.Diagnostics.Strings(),
			ResultsDir:  e.ResultsDir,
		})
	}
	var b bytes.Buffer
	if err := toml.NewEncoder(&b).Encode(&out); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
