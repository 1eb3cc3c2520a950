package dataset

import (
	"math"
	"testing"
)

func TestSummarize(t *testing.T) {
	t.Parallel()
	d := New(
		[]string{"name", "score"},
		[][]string{
			{"a", "10"},
			{"b", ""},
			{"c", "30"},
		},
	)
	s := Summarize(d)
	if s.Rows != 3 || s.Columns != 2 {
		t.Fatalf("shape = %dx%d", s.Rows, s.Columns)
	}
	if s.NumericColumns != 1 || s.TextColumns != 1 {
		t.Fatalf("column split = %d numeric / %d text", s.NumericColumns, s.TextColumns)
	}
	if s.Missing != 1 {
		t.Fatalf("Missing = %d, want 1", s.Missing)
	}
	wantPct := 100.0 / 6.0
	if math.Abs(s.MissingPct-wantPct) > 1e-9 {
		t.Fatalf("MissingPct = %f, want %f", s.MissingPct, wantPct)
	}
}

func TestAnalyzeColumns(t *testing.T) {
	t.Parallel()
	d := New(
		[]string{"v"},
		[][]string{{"1"}, {"2"}, {"3"}, {"4"}},
	)
	cols := AnalyzeColumns(d)
	if len(cols) != 1 {
		t.Fatalf("expected 1 column, got %d", len(cols))
	}
	c := cols[0]
	if !c.Numeric {
		t.Fatal("expected numeric column")
	}
	if c.Mean != 2.5 || c.Median != 2.5 || c.Min != 1 || c.Max != 4 {
		t.Fatalf("unexpected aggregates: %+v", c)
	}
	if c.Unique != 4 || c.Missing != 0 {
		t.Fatalf("unexpected counts: %+v", c)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()
	s := Summarize(New(nil, nil))
	if s.Rows != 0 || s.MissingPct != 0 {
		t.Fatalf("unexpected empty summary: %+v", s)
	}
}
