// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix

package diagnostics

import (
	"golang.org/x/sys/unix"
)

// PeakRSS returns the peak resident set size of the process in bytes.
func PeakRSS() (uint64, error) {
	var usage unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &usage); err != nil {
		return 0, err
	}
	return uint64(usage.Maxrss) * rssMultiplier, nil
}
