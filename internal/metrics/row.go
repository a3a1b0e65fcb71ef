// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metrics

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
)

// Header is the first line of a summary CSV.
const Header = "id,len_aln,ed_read,ed_true,overlap,len_truth,len_read"

// Row holds the metrics of one read.
type Row struct {
	ID       string
	LenAln   int
	EdRead   int
	EdTrue   int
	Overlap  int
	LenTruth int
	LenRead  int
}

// AppendCSV appends r as a CSV line, without quoting and without the
// trailing newline.
func (r *Row) AppendCSV(b []byte) []byte {
	b = append(b, r.ID...)
	for _, v := range [...]int{r.LenAln, r.EdRead, r.EdTrue, r.Overlap, r.LenTruth, r.LenRead} {
		b = append(b, ',')
		b = strconv.AppendInt(b, int64(v), 10)
	}
	return b
}

// WriteCSV writes the header and rows to path. The rows are written to a
// temporary file in the same directory that replaces path only once every
// row is on disk, so a failed run never leaves a truncated summary behind.
func WriteCSV(path string, rows []Row) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}

	bw := bufio.NewWriterSize(tmp, 1<<20)
	bw.WriteString(Header)
	bw.WriteByte('\n')
	var line []byte
	for i := range rows {
		line = rows[i].AppendCSV(line[:0])
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return fail(err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
