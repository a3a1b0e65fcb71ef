// Copyright 2024 The alneval Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Steps is the number of evenly spaced thresholds in [0, 1] swept by a
// Curve.
const Steps = 1001

// Metric selects the numerator and denominator a Curve is built from.
type Metric int

const (
	// MetricOverlap is overlap over truth length; a read counts when the
	// ratio is at least the threshold.
	MetricOverlap Metric = iota
	// MetricTruth is edit distance to the truth over truth length; a read
	// counts when the ratio is at most the threshold.
	MetricTruth
	// MetricRead is edit distance to the read over read length; a read
	// counts when the ratio is at most the threshold.
	MetricRead
)

func (m Metric) String() string {
	switch m {
	case MetricOverlap:
		return "overlap"
	case MetricTruth:
		return "truth"
	case MetricRead:
		return "read"
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

func (m Metric) ratio(r *Row) (num, den int) {
	switch m {
	case MetricOverlap:
		return r.Overlap, r.LenTruth
	case MetricTruth:
		return r.EdTrue, r.LenTruth
	}
	return r.EdRead, r.LenRead
}

// Threshold returns the i-th threshold of a sweep: i steps of 1/(Steps-1),
// so Threshold(950) is 0.9500000000000001, and exactly 1 for the last one.
func Threshold(i int) float64 {
	if i >= Steps-1 {
		return 1
	}
	return float64(i) * (1.0 / float64(Steps-1))
}

// Curve holds, for every threshold, the percentage of reads counted as
// correct and the percentage of read bases they account for.
type Curve struct {
	Accuracy [Steps]float64
	Length   [Steps]float64
}

// Sweep builds the Curve of metric m over rows. Reads whose denominator is
// zero are never correct but still count towards the totals.
func Sweep(rows []Row, m Metric) *Curve {
	var (
		c          Curve
		count      [Steps]int
		length     [Steps]int
		totalReads int
		totalLen   int
	)
	for i := range rows {
		r := &rows[i]
		totalReads++
		totalLen += r.LenRead
		num, den := m.ratio(r)
		if den <= 0 {
			continue
		}
		v := float64(num) / float64(den)
		for j := 0; j < Steps; j++ {
			sigma := Threshold(j)
			ok := v <= sigma
			if m == MetricOverlap {
				ok = v >= sigma
			}
			if ok {
				count[j]++
				length[j] += r.LenRead
			}
		}
	}
	for j := 0; j < Steps; j++ {
		if totalReads > 0 {
			c.Accuracy[j] = float64(count[j]) / float64(totalReads) * 100
		}
		if totalLen > 0 {
			c.Length[j] = float64(length[j]) / float64(totalLen) * 100
		}
	}
	return &c
}

// At returns the accuracy and length percentages at the threshold closest
// to sigma.
func (c *Curve) At(sigma float64) (accuracy, length float64) {
	j := int(sigma*float64(Steps-1) + 0.5)
	j = max(0, min(Steps-1, j))
	return c.Accuracy[j], c.Length[j]
}

// ReadCSV parses a summary CSV as written by WriteCSV.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 7
	cr.ReuseRecord = true
	head, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty summary")
	} else if err != nil {
		return nil, err
	}
	if h := strings.Join(head, ","); h != Header {
		return nil, fmt.Errorf("unexpected header %q", h)
	}
	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		} else if err != nil {
			return nil, err
		}
		row := Row{ID: rec[0]}
		for i, p := range []*int{&row.LenAln, &row.EdRead, &row.EdTrue, &row.Overlap, &row.LenTruth, &row.LenRead} {
			if *p, err = strconv.Atoi(rec[i+1]); err != nil {
				line, _ := cr.FieldPos(i + 1)
				return nil, fmt.Errorf("line %d: %v", line, err)
			}
		}
		rows = append(rows, row)
	}
}

// Moments describes the distribution of a metric's ratio over the reads
// for which it is defined.
type Moments struct {
	N      int
	Mean   float64
	StdDev float64
	Median float64
}

// Describe returns the Moments of metric m over rows, skipping reads whose
// denominator is zero.
func Describe(rows []Row, m Metric) Moments {
	x := make([]float64, 0, len(rows))
	for i := range rows {
		num, den := m.ratio(&rows[i])
		if den > 0 {
			x = append(x, float64(num)/float64(den))
		}
	}
	if len(x) == 0 {
		return Moments{}
	}
	sort.Float64s(x)
	mo := Moments{N: len(x), Median: stat.Quantile(0.5, stat.Empirical, x, nil)}
	if len(x) == 1 {
		mo.Mean = x[0]
		return mo
	}
	mo.Mean, mo.StdDev = stat.MeanStdDev(x, nil)
	return mo
}

// Summary holds the curves of one summary file.
type Summary struct {
	Name    string
	Reads   int
	Curves  [3]*Curve // indexed by Metric
	Moments [3]Moments
}

// LoadSummary reads the summary CSV at path and sweeps every metric.
func LoadSummary(name, path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s := &Summary{Name: name, Reads: len(rows)}
	for _, m := range []Metric{MetricOverlap, MetricTruth, MetricRead} {
		s.Curves[m] = Sweep(rows, m)
		s.Moments[m] = Describe(rows, m)
	}
	return s, nil
}

// WriteCurves writes every threshold of s as tab-separated columns, one
// accuracy and one length column per metric.
func (s *Summary) WriteCurves(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "threshold\toverlap_acc\toverlap_len\ttruth_acc\ttruth_len\tread_acc\tread_len"); err != nil {
		return err
	}
	for j := 0; j < Steps; j++ {
		o, t, r := s.Curves[MetricOverlap], s.Curves[MetricTruth], s.Curves[MetricRead]
		_, err := fmt.Fprintf(w, "%.3f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n", Threshold(j),
			o.Accuracy[j], o.Length[j], t.Accuracy[j], t.Length[j], r.Accuracy[j], r.Length[j])
		if err != nil {
			return err
		}
	}
	return nil
}
