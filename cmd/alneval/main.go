// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/algbio/alneval/cli/subcommands"
)

func main() {
	subcommands.Register(&summaryCmd{})
	subcommands.Register(&reportCmd{})
	subcommands.Register(&runCmd{})
	os.Exit(subcommands.Run())
}
