// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package diagnostics

import (
	"flag"
	"fmt"
)

// DriverConfig is a diagnostics configuration that can be passed to the
// summary command by serializing to and from command-line flags.
type DriverConfig struct {
	ConfigSet
	ResultsDir string
}

// DriverArgs returns the summary command arguments that collect data for c.
func (c *DriverConfig) DriverArgs() []string {
	var args []string
	if c.ResultsDir != "" {
		args = append(args, "-results-dir", c.ResultsDir)
	}
	for _, c1 := range c.ToSlice() {
		args = append(args, c1.AsFlag())
	}
	return args
}

// AddFlags populates f with flags that will fill in c.
func (c *DriverConfig) AddFlags(f *flag.FlagSet) {
	*c = DriverConfig{}
	c.ConfigSet.cfgs = make(map[Type]Config)

	f.StringVar(&c.ResultsDir, "results-dir", "", "directory to write diagnostics data (default: next to the first metrics file)")
	for _, t := range Types() {
		t := t
		f.BoolFunc(string(t), fmt.Sprintf("enable %s diagnostics", t), func(s string) error {
			c.cfgs[t] = Config{Type: t}
			return nil
		})
	}
}
