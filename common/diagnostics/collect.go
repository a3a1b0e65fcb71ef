// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package diagnostics

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"strings"
)

const partSuffix = ".part.pprof"

// Collector gathers the diagnostics of a ConfigSet into a results
// directory: one file per evaluated alignment file and diagnostic, with
// pprof data merged into a single profile per type by Merge.
type Collector struct {
	cfgs ConfigSet
	dir  string
}

// NewCollector creates dir and returns a Collector writing into it.
func NewCollector(cfgs ConfigSet, dir string) (*Collector, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Collector{cfgs: cfgs, dir: dir}, nil
}

// Dir returns the results directory.
func (c *Collector) Dir() string { return c.dir }

func (c *Collector) path(typ Type, name string) string {
	switch typ {
	case Trace:
		return filepath.Join(c.dir, name+".trace")
	}
	return filepath.Join(c.dir, string(typ)+"-"+name+partSuffix)
}

// Start begins collecting data for the step called name. The returned
// function stops collection and must be called before the next Start.
func (c *Collector) Start(name string) (stop func() error, err error) {
	var stops []func() error
	stopAll := func() error {
		var first error
		for i := len(stops) - 1; i >= 0; i-- {
			if err := stops[i](); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
	for _, d := range c.cfgs.ToSlice() {
		f, err := os.Create(c.path(d.Type, name))
		if err != nil {
			stopAll()
			return nil, err
		}
		switch d.Type {
		case CPUProfile:
			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				stopAll()
				return nil, fmt.Errorf("starting CPU profile: %w", err)
			}
			stops = append(stops, func() error {
				pprof.StopCPUProfile()
				return f.Close()
			})
		case MemProfile:
			stops = append(stops, func() error {
				runtime.GC()
				if err := pprof.WriteHeapProfile(f); err != nil {
					f.Close()
					return err
				}
				return f.Close()
			})
		case Trace:
			if err := trace.Start(f); err != nil {
				f.Close()
				stopAll()
				return nil, fmt.Errorf("starting trace: %w", err)
			}
			stops = append(stops, func() error {
				trace.Stop()
				return f.Close()
			})
		}
	}
	return stopAll, nil
}

// Merge folds the per-step pprof profiles of every configured type into
// <type>.pprof and removes the parts. It returns the merged files.
func (c *Collector) Merge() ([]string, error) {
	var merged []string
	for _, d := range c.cfgs.ToSlice() {
		if !d.IsPprof() {
			continue
		}
		prefix := string(d.Type) + "-"
		match := func(name string) bool {
			return strings.HasPrefix(name, prefix) && strings.HasSuffix(name, partSuffix)
		}
		out := filepath.Join(c.dir, string(d.Type)+".pprof")
		parts, err := MergePprof(c.dir, match, out)
		if err != nil {
			return merged, err
		}
		if len(parts) == 0 {
			continue
		}
		for _, p := range parts {
			os.Remove(p)
		}
		merged = append(merged, out)
	}
	return merged, nil
}
