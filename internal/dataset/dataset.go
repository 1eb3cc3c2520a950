// Package dataset models the tabular data flowing through the report
// pipeline: a header row plus string cells, with numeric columns inferred
// rather than declared (sources like spreadsheet exports carry no types).
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Dataset is an immutable-by-convention table. Rows are ragged-tolerant on
// input but normalized to len(Columns) cells by New.
type Dataset struct {
	Columns []string
	Rows    [][]string
}

// New builds a dataset, padding or truncating rows to the column count and
// dropping fully empty rows and columns (spreadsheet exports are noisy).
func New(columns []string, rows [][]string) *Dataset {
	cols := make([]string, len(columns))
	copy(cols, columns)

	norm := make([][]string, 0, len(rows))
	for _, r := range rows {
		row := make([]string, len(cols))
		empty := true
		for i := range cols {
			if i < len(r) {
				row[i] = strings.TrimSpace(r[i])
				if row[i] != "" {
					empty = false
				}
			}
		}
		if !empty {
			norm = append(norm, row)
		}
	}

	d := &Dataset{Columns: cols, Rows: norm}
	d.dropEmptyColumns()
	return d
}

func (d *Dataset) dropEmptyColumns() {
	keep := make([]int, 0, len(d.Columns))
	for i, name := range d.Columns {
		if strings.TrimSpace(name) == "" && d.columnEmpty(i) {
			continue
		}
		keep = append(keep, i)
	}
	if len(keep) == len(d.Columns) {
		return
	}
	cols := make([]string, len(keep))
	for n, i := range keep {
		cols[n] = d.Columns[i]
	}
	rows := make([][]string, len(d.Rows))
	for r := range d.Rows {
		row := make([]string, len(keep))
		for n, i := range keep {
			row[n] = d.Rows[r][i]
		}
		rows[r] = row
	}
	d.Columns = cols
	d.Rows = rows
}

func (d *Dataset) columnEmpty(i int) bool {
	for _, row := range d.Rows {
		if i < len(row) && row[i] != "" {
			return false
		}
	}
	return true
}

func (d *Dataset) NumRows() int { return len(d.Rows) }
func (d *Dataset) NumCols() int { return len(d.Columns) }

// Cell returns the value at (row, col); empty string when out of range.
func (d *Dataset) Cell(row, col int) string {
	if row < 0 || row >= len(d.Rows) || col < 0 || col >= len(d.Rows[row]) {
		return ""
	}
	return d.Rows[row][col]
}

// ParseNumber parses a cell as a float, tolerating thousands separators.
func ParseNumber(cell string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NumericColumn reports whether more than half of the non-empty cells in the
// column parse as numbers.
func (d *Dataset) NumericColumn(col int) bool {
	if col < 0 || col >= len(d.Columns) || len(d.Rows) == 0 {
		return false
	}
	parsed := 0
	for _, row := range d.Rows {
		if _, ok := ParseNumber(row[col]); ok {
			parsed++
		}
	}
	return parsed*2 > len(d.Rows)
}

// NumericValues returns the parseable values of a column, in row order.
func (d *Dataset) NumericValues(col int) []float64 {
	out := make([]float64, 0, len(d.Rows))
	for _, row := range d.Rows {
		if col < len(row) {
			if v, ok := ParseNumber(row[col]); ok {
				out = append(out, v)
			}
		}
	}
	return out
}

// ---- Snapshot codec ----

// snapshotVersion is bumped when the encoding changes shape. Decoding an
// unknown version is an error, never a guess.
const snapshotVersion = 1

var ErrSnapshotVersion = errors.New("unsupported snapshot version")

type snapshotEnvelope struct {
	Version int        `json:"version"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// EncodeSnapshot serializes a dataset into the versioned snapshot form
// persisted alongside non-auto-refresh jobs.
func EncodeSnapshot(d *Dataset) ([]byte, error) {
	if d == nil {
		return nil, errors.New("nil dataset")
	}
	return json.Marshal(snapshotEnvelope{
		Version: snapshotVersion,
		Columns: d.Columns,
		Rows:    d.Rows,
	})
}

// DecodeSnapshot reconstructs a dataset from its persisted snapshot.
func DecodeSnapshot(b []byte) (*Dataset, error) {
	var env snapshotEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("snapshot decode: %w", err)
	}
	if env.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, env.Version)
	}
	return &Dataset{Columns: env.Columns, Rows: env.Rows}, nil
}
