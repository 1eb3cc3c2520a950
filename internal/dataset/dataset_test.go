package dataset

import (
	"errors"
	"testing"
)

func TestNewNormalizesRows(t *testing.T) {
	t.Parallel()
	d := New(
		[]string{"name", "amount"},
		[][]string{
			{"alice", "10"},
			{"bob"},                // short row padded
			{"", ""},               // empty row dropped
			{"carol", "20", "ext"}, // extra cell truncated
		},
	)
	if d.NumRows() != 3 {
		t.Fatalf("NumRows = %d, want 3", d.NumRows())
	}
	if got := d.Cell(1, 1); got != "" {
		t.Fatalf("padded cell = %q, want empty", got)
	}
	if got := d.Cell(2, 1); got != "20" {
		t.Fatalf("Cell(2,1) = %q, want 20", got)
	}
}

func TestNumericColumnInference(t *testing.T) {
	t.Parallel()
	d := New(
		[]string{"label", "value"},
		[][]string{
			{"a", "1,200"},
			{"b", "3.5"},
			{"c", "n/a"},
		},
	)
	if d.NumericColumn(0) {
		t.Fatal("label column should not be numeric")
	}
	if !d.NumericColumn(1) {
		t.Fatal("value column should be numeric (2/3 cells parse)")
	}
	vals := d.NumericValues(1)
	if len(vals) != 2 || vals[0] != 1200 {
		t.Fatalf("NumericValues = %v", vals)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()
	d := New([]string{"x"}, [][]string{{"1"}, {"2"}})
	b, err := EncodeSnapshot(d)
	if err != nil {
		t.Fatalf("EncodeSnapshot: %v", err)
	}
	back, err := DecodeSnapshot(b)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if back.NumRows() != 2 || back.Columns[0] != "x" {
		t.Fatalf("unexpected snapshot contents: %+v", back)
	}
}

func TestSnapshotVersionRejected(t *testing.T) {
	t.Parallel()
	_, err := DecodeSnapshot([]byte(`{"version":99,"columns":[],"rows":[]}`))
	if !errors.Is(err, ErrSnapshotVersion) {
		t.Fatalf("expected ErrSnapshotVersion, got %v", err)
	}
}
