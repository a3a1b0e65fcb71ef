// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package log

import (
	"errors"
	"log"
	"os"

	"github.com/algbio/alneval/common"

	shellquote "github.com/kballard/go-shellquote"
)

var (
	cmdLog, actLog *log.Logger
	cmdOn, actOn   = false, false
)

func init() {
	cmdLog = log.New(os.Stdout, "[shell] ", 0)
	actLog = log.New(os.Stderr, "[alneval] ", 0)
}

func SetCommandTrace(on bool) {
	cmdOn = on
}

func SetActivityLog(on bool) {
	actOn = on
}

// TraceCommand prints args as a shell command line that reproduces the
// step about to run.
func TraceCommand(dir string, args ...string) {
	if !cmdOn {
		return
	}
	if dir != "" {
		cmdLog.Printf("pushd %s", shellquote.Join(dir))
	}
	cmdLog.Print(shellquote.Join(args...))
	if dir != "" {
		cmdLog.Printf("popd")
	}
}

func CommandPrintf(format string, args ...interface{}) {
	if !cmdOn {
		return
	}
	cmdLog.Printf(format, args...)
}

func Printf(format string, args ...interface{}) {
	if !actOn {
		return
	}
	actLog.Printf(format, args...)
}

func Print(args ...interface{}) {
	if !actOn {
		return
	}
	actLog.Print(args...)
}

func Error(err error) {
	actLog.Printf("error: %v", err)
	var fe *common.FormatError
	if errors.As(err, &fe) && fe.File != "" {
		actLog.Printf("input: %s", fe.File)
	}
}
