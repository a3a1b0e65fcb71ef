// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !unix

package diagnostics

import "errors"

// PeakRSS returns the peak resident set size of the process in bytes.
func PeakRSS() (uint64, error) {
	return 0, errors.New("peak RSS is not available on this platform")
}
