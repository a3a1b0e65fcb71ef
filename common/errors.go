// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package common

import (
	"fmt"
)

// FormatError reports a malformed input record: a bad graph, read or
// alignment line, a base outside the nucleotide alphabet, or a path that
// references an undeclared vertex.
type FormatError struct {
	// File is the input file the record came from. It may be empty when
	// parsing from a reader with no associated file.
	File string

	// Record identifies the offending record, e.g. "line 12" or a read id.
	Record string

	Err error
}

func (e *FormatError) Error() string {
	switch {
	case e.File != "" && e.Record != "":
		return fmt.Sprintf("%s: %s: %v", e.File, e.Record, e.Err)
	case e.File != "":
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	case e.Record != "":
		return fmt.Sprintf("%s: %v", e.Record, e.Err)
	}
	return e.Err.Error()
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Formatf returns a *FormatError for record with a formatted cause.
func Formatf(record, format string, args ...interface{}) *FormatError {
	return &FormatError{Record: record, Err: fmt.Errorf(format, args...)}
}

// InFile sets the file of err if err is a *FormatError without one, and
// returns err unchanged otherwise.
func InFile(err error, file string) error {
	if fe, ok := err.(*FormatError); ok && fe.File == "" {
		fe.File = file
	}
	return err
}

// LookupError reports an alignment whose read id is not in the read set,
// which means the alignment file and the reads are out of sync.
type LookupError struct {
	File string
	ID   string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: alignment for unknown read %q", e.File, e.ID)
}
