// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package diagnostics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/pprof/profile"
)

func ReadPprof(filename string) (*profile.Profile, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return profile.Parse(f)
}

func WritePprof(filename string, p *profile.Profile) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	err = p.Write(f)
	if err == nil {
		err = f.Close()
	}
	if err != nil {
		return fmt.Errorf("error writing profile %s: %s", filename, err)
	}

	return nil
}

// ReadDirPprof reads all pprof profiles in dir whose name matches match(name).
// It also returns the paths they were read from.
func ReadDirPprof(dir string, match func(string) bool) ([]*profile.Profile, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	var (
		profiles []*profile.Profile
		paths    []string
	)
	for _, entry := range entries {
		name := entry.Name()
		if !match(name) {
			continue
		}
		path := filepath.Join(dir, name)
		if info, err := entry.Info(); err != nil {
			return nil, nil, err
		} else if info.Size() == 0 {
			// Skip zero-sized files, otherwise the pprof package
			// will call it a parsing error.
			continue
		}
		p, err := ReadPprof(path)
		if err != nil {
			return nil, nil, err
		}
		profiles = append(profiles, p)
		paths = append(paths, path)
	}
	return profiles, paths, nil
}

// MergePprof merges every profile in dir matched by match into out and
// returns the paths of the merged profiles. Nothing is written if none
// matched.
func MergePprof(dir string, match func(string) bool, out string) ([]string, error) {
	profiles, paths, err := ReadDirPprof(dir, match)
	if err != nil || len(profiles) == 0 {
		return nil, err
	}
	merged, err := profile.Merge(profiles)
	if err != nil {
		return nil, fmt.Errorf("merging profiles in %s: %w", dir, err)
	}
	return paths, WritePprof(out, merged)
}
