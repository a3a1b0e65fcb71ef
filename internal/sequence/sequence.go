// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sequence provides nucleotide string helpers shared by the read
// loader and the alignment decoders.
package sequence

import (
	"fmt"
)

var complement = [256]byte{
	'A': 'T', 'T': 'A',
	'C': 'G', 'G': 'C',
	'N': 'N',
}

// InvalidBaseError is returned for a base outside {A,C,G,T,N}.
type InvalidBaseError struct {
	Base byte
	Pos  int
}

func (e *InvalidBaseError) Error() string {
	return fmt.Sprintf("invalid base %q at position %d", e.Base, e.Pos)
}

// ReverseComplement returns the reverse complement of seq. Only upper case
// A, C, G, T and N are accepted.
func ReverseComplement(seq string) (string, error) {
	n := len(seq)
	b := make([]byte, n)
	for i := 0; i < n; i++ {
		c := complement[seq[i]]
		if c == 0 {
			return "", &InvalidBaseError{Base: seq[i], Pos: i}
		}
		b[n-1-i] = c
	}
	return string(b), nil
}
