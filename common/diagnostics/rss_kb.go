// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix && !darwin && !ios

package diagnostics

// Maxrss is in kilobytes.
const rssMultiplier = 1 << 10
