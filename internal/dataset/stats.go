package dataset

import (
	"math"
	"sort"
)

// Summary describes a dataset at a glance. It feeds the report header and
// the narrative prompt.
type Summary struct {
	Rows           int
	Columns        int
	NumericColumns int
	TextColumns    int
	Missing        int
	MissingPct     float64
}

// ColumnStats is the per-column analysis shown in the report's metrics
// table. Numeric aggregates are only meaningful when Numeric is true.
type ColumnStats struct {
	Name       string
	Numeric    bool
	Unique     int
	Missing    int
	MissingPct float64

	Mean   float64
	Median float64
	Std    float64
	Min    float64
	Max    float64
}

// Summarize computes dataset-level statistics.
func Summarize(d *Dataset) Summary {
	s := Summary{Rows: d.NumRows(), Columns: d.NumCols()}
	if s.Rows == 0 || s.Columns == 0 {
		return s
	}
	for col := range d.Columns {
		if d.NumericColumn(col) {
			s.NumericColumns++
		} else {
			s.TextColumns++
		}
		for _, row := range d.Rows {
			if col < len(row) && row[col] == "" {
				s.Missing++
			}
		}
	}
	s.MissingPct = float64(s.Missing) / float64(s.Rows*s.Columns) * 100
	return s
}

// AnalyzeColumns computes per-column statistics, in column order.
func AnalyzeColumns(d *Dataset) []ColumnStats {
	out := make([]ColumnStats, 0, d.NumCols())
	for col, name := range d.Columns {
		cs := ColumnStats{Name: name, Numeric: d.NumericColumn(col)}

		seen := map[string]struct{}{}
		for _, row := range d.Rows {
			v := ""
			if col < len(row) {
				v = row[col]
			}
			if v == "" {
				cs.Missing++
				continue
			}
			seen[v] = struct{}{}
		}
		cs.Unique = len(seen)
		if n := d.NumRows(); n > 0 {
			cs.MissingPct = float64(cs.Missing) / float64(n) * 100
		}

		if cs.Numeric {
			vals := d.NumericValues(col)
			cs.Mean = mean(vals)
			cs.Median = median(vals)
			cs.Std = stddev(vals, cs.Mean)
			cs.Min, cs.Max = minMax(vals)
		}
		out = append(out, cs)
	}
	return out
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func median(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 0 {
		return (s[mid-1] + s[mid]) / 2
	}
	return s[mid]
}

func stddev(v []float64, m float64) float64 {
	if len(v) < 2 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(v)-1))
}

func minMax(v []float64) (lo, hi float64) {
	if len(v) == 0 {
		return 0, 0
	}
	lo, hi = v[0], v[0]
	for _, x := range v[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}
