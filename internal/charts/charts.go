// Package charts renders dataset visualizations as standalone SVG documents.
//
// The set mirrors what a human analyst reaches for first: data composition,
// numeric distributions, categorical frequencies, and missing-data patterns.
// Rendering is deterministic for a given dataset, which keeps report output
// stable and testable.
package charts

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"tabreport/internal/dataset"
)

// Chart is one titled visualization; SVG is a complete <svg> document that
// can be embedded inline in HTML or rasterized downstream.
type Chart struct {
	Title string
	SVG   []byte
}

// Generator builds the chart sequence for a dataset.
type Generator struct {
	// MaxCharts caps the output length; 0 means DefaultMaxCharts.
	MaxCharts int
}

const DefaultMaxCharts = 6

// Generate returns the ordered chart sequence for d. An empty dataset yields
// an empty (non-nil) slice.
func (g *Generator) Generate(d *dataset.Dataset) []Chart {
	out := []Chart{}
	if d == nil || d.NumRows() == 0 || d.NumCols() == 0 {
		return out
	}
	limit := g.MaxCharts
	if limit <= 0 {
		limit = DefaultMaxCharts
	}

	var numericCols, textCols []int
	for col := range d.Columns {
		if d.NumericColumn(col) {
			numericCols = append(numericCols, col)
		} else {
			textCols = append(textCols, col)
		}
	}

	if c, ok := composition(d, len(numericCols), len(textCols)); ok {
		out = append(out, c)
	}
	for _, col := range numericCols {
		if len(out) >= limit {
			return out
		}
		if c, ok := histogram(d, col); ok {
			out = append(out, c)
		}
	}
	for _, col := range textCols[:min(len(textCols), 2)] {
		if len(out) >= limit {
			return out
		}
		if c, ok := categorical(d, col); ok {
			out = append(out, c)
		}
	}
	if len(out) < limit {
		if c, ok := missingness(d); ok {
			out = append(out, c)
		}
	}
	return out
}

func composition(d *dataset.Dataset, numeric, text int) (Chart, bool) {
	bars := []bar{
		{label: "numeric", value: float64(numeric)},
		{label: "text", value: float64(text)},
	}
	svg := renderBars("Column types", bars)
	return Chart{Title: "Data Overview", SVG: svg}, true
}

func histogram(d *dataset.Dataset, col int) (Chart, bool) {
	vals := d.NumericValues(col)
	if len(vals) < 2 {
		return Chart{}, false
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return Chart{}, false
	}

	const bins = 10
	counts := make([]int, bins)
	width := (hi - lo) / bins
	for _, v := range vals {
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}

	bars := make([]bar, bins)
	for i, c := range counts {
		bars[i] = bar{
			label: fmt.Sprintf("%.3g", lo+width*float64(i)),
			value: float64(c),
		}
	}
	name := d.Columns[col]
	return Chart{Title: "Distribution of " + name, SVG: renderBars(name, bars)}, true
}

func categorical(d *dataset.Dataset, col int) (Chart, bool) {
	counts := map[string]int{}
	for _, row := range d.Rows {
		if col < len(row) && row[col] != "" {
			counts[row[col]]++
		}
	}
	if len(counts) < 2 {
		return Chart{}, false
	}

	type kv struct {
		k string
		n int
	}
	sorted := make([]kv, 0, len(counts))
	for k, n := range counts {
		sorted = append(sorted, kv{k, n})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].n != sorted[j].n {
			return sorted[i].n > sorted[j].n
		}
		return sorted[i].k < sorted[j].k
	})
	if len(sorted) > 8 {
		sorted = sorted[:8]
	}

	bars := make([]bar, len(sorted))
	for i, e := range sorted {
		bars[i] = bar{label: truncate(e.k, 12), value: float64(e.n)}
	}
	name := d.Columns[col]
	return Chart{Title: "Analysis of " + name, SVG: renderBars(name, bars)}, true
}

func missingness(d *dataset.Dataset) (Chart, bool) {
	bars := make([]bar, 0, d.NumCols())
	any := false
	for col, name := range d.Columns {
		missing := 0
		for _, row := range d.Rows {
			if col < len(row) && row[col] == "" {
				missing++
			}
		}
		if missing > 0 {
			any = true
		}
		bars = append(bars, bar{label: truncate(name, 12), value: float64(missing)})
	}
	if !any {
		return Chart{}, false
	}
	return Chart{Title: "Missing Data Pattern", SVG: renderBars("missing cells", bars)}, true
}

// ---- SVG rendering ----

type bar struct {
	label string
	value float64
}

const (
	svgWidth   = 640
	svgHeight  = 360
	plotTop    = 40
	plotBottom = 40
	plotLeft   = 20
	plotRight  = 20
)

func renderBars(caption string, bars []bar) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		svgWidth, svgHeight, svgWidth, svgHeight)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#ffffff"/>`, svgWidth, svgHeight)
	fmt.Fprintf(&b, `<text x="%d" y="24" font-family="Helvetica,sans-serif" font-size="16" fill="#1a73e8">%s</text>`,
		plotLeft, escape(caption))

	if len(bars) == 0 {
		b.WriteString(`</svg>`)
		return []byte(b.String())
	}

	maxVal := 0.0
	for _, bb := range bars {
		maxVal = math.Max(maxVal, bb.value)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	plotW := svgWidth - plotLeft - plotRight
	plotH := svgHeight - plotTop - plotBottom
	slot := float64(plotW) / float64(len(bars))
	barW := slot * 0.7

	for i, bb := range bars {
		h := bb.value / maxVal * float64(plotH)
		x := float64(plotLeft) + slot*float64(i) + (slot-barW)/2
		y := float64(plotTop+plotH) - h
		fmt.Fprintf(&b, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#1a73e8"/>`, x, y, barW, h)
		fmt.Fprintf(&b, `<text x="%.1f" y="%d" font-family="Helvetica,sans-serif" font-size="10" fill="#666666" text-anchor="middle">%s</text>`,
			x+barW/2, plotTop+plotH+16, escape(bb.label))
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-family="Helvetica,sans-serif" font-size="10" fill="#333333" text-anchor="middle">%s</text>`,
			x+barW/2, y-4, trimFloat(bb.value))
	}

	b.WriteString(`</svg>`)
	return []byte(b.String())
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
