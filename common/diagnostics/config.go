// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diagnostics collects profiles and resource usage of an
// evaluation run.
package diagnostics

import (
	"fmt"
	"sort"
)

// ConfigSet is an immutable set of Config, containing at most
// one Config of each supported type.
type ConfigSet struct {
	cfgs map[Type]Config
}

// NewConfigSet returns a ConfigSet holding cfgs.
func NewConfigSet(cfgs ...Config) ConfigSet {
	c := ConfigSet{cfgs: make(map[Type]Config, len(cfgs))}
	for _, d := range cfgs {
		c.cfgs[d.Type] = d
	}
	return c
}

// Strings returns the set of ConfigSet as strings by calling the String
// method on each Config, in Types order.
func (c ConfigSet) Strings() []string {
	var diags []string
	for _, diag := range c.ToSlice() {
		diags = append(diags, diag.String())
	}
	return diags
}

// UnmarshalTOML implements TOML unmarshaling for ConfigSet.
func (c *ConfigSet) UnmarshalTOML(data interface{}) error {
	ldata, ok := data.([]interface{})
	if !ok {
		return fmt.Errorf("expected data for diagnostics to be a list")
	}
	cfgs := make(map[Type]Config, len(ldata))
	for _, li := range ldata {
		s, ok := li.(string)
		if !ok {
			return fmt.Errorf("expected data for diagnostics to contain strings")
		}
		d, err := ParseConfig(s)
		if err != nil {
			return err
		}
		cfgs[d.Type] = d
	}
	c.cfgs = cfgs
	return nil
}

// Copy creates a deep clone of a ConfigSet.
func (c ConfigSet) Copy() ConfigSet {
	cfgs := make(map[Type]Config, len(c.cfgs))
	for k, v := range c.cfgs {
		cfgs[k] = v
	}
	return ConfigSet{cfgs}
}

// Get looks up the Config with the provided Type and returns it if it exists with the
// second result indicating presence.
func (c ConfigSet) Get(typ Type) (Config, bool) {
	cfg, ok := c.cfgs[typ]
	return cfg, ok
}

// Empty returns true if the ConfigSet is empty.
func (c ConfigSet) Empty() bool {
	return len(c.cfgs) == 0
}

// ToSlice returns each Config contained in the ConfigSet in Types order.
func (c ConfigSet) ToSlice() []Config {
	cfgs := make([]Config, 0, len(c.cfgs))
	for _, cfg := range c.cfgs {
		cfgs = append(cfgs, cfg)
	}
	order := make(map[Type]int)
	for i, t := range Types() {
		order[t] = i
	}
	sort.Slice(cfgs, func(i, j int) bool { return order[cfgs[i].Type] < order[cfgs[j].Type] })
	return cfgs
}

// Type is a supported diagnostic type.
type Type string

const (
	CPUProfile Type = "cpuprofile"
	MemProfile Type = "memprofile"
	Trace      Type = "trace"
)

// IsPprof returns whether the diagnostic's data is stored in the pprof format.
// Only pprof data is merged across alignment files.
func (t Type) IsPprof() bool {
	return t == CPUProfile || t == MemProfile
}

// AsFlag returns the Type suitable for use as a CLI flag.
func (t Type) AsFlag() string {
	return "-" + string(t)
}

// Types returns a slice of all supported types.
func Types() []Type {
	return []Type{
		CPUProfile,
		MemProfile,
		Trace,
	}
}

// Config is an intent to collect data for some diagnostic.
type Config struct {
	Type
}

// String returns the string representation of a Config, as it would appear
// in an experiment file.
func (d Config) String() string {
	return string(d.Type)
}

// ParseConfig derives a Config from a diagnostic name.
func ParseConfig(d string) (Config, error) {
	for _, t := range Types() {
		if d == string(t) {
			return Config{Type: t}, nil
		}
	}
	return Config{}, fmt.Errorf("invalid diagnostic %q", d)
}
