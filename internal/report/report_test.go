package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"tabreport/internal/charts"
	"tabreport/internal/dataset"
)

func testInput(lang string) Input {
	d := dataset.New(
		[]string{"region", "sales"},
		[][]string{{"north", "100"}, {"south", "220"}, {"east", ""}},
	)
	g := &charts.Generator{}
	return Input{
		JobName:   "weekly sales",
		Language:  lang,
		Generated: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
		Summary:   dataset.Summarize(d),
		Columns:   dataset.AnalyzeColumns(d),
		Narrative: "Sales rose in the south region.",
		Charts:    g.Generate(d),
	}
}

func TestRenderHTML(t *testing.T) {
	t.Parallel()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	art, err := r.Render(testInput("en"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	for _, want := range []string{
		"Data Analysis Report", "weekly sales",
		"Sales rose in the south region.",
		"<svg", "Total Records", "Data Quality Report",
		"2024-01-02 09:00 UTC",
	} {
		if !strings.Contains(art.HTML, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if !bytes.HasPrefix(art.PDF, []byte("%PDF-1.4")) {
		t.Error("PDF artifact missing header")
	}
}

func TestRenderLocalized(t *testing.T) {
	t.Parallel()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	art, err := r.Render(testInput("es"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(art.HTML, "Informe de Análisis de Datos") {
		t.Error("HTML not localized to spanish")
	}
	if !strings.Contains(art.HTML, `lang="es"`) {
		t.Error("html lang attribute not set")
	}
}

func TestRenderWithoutNarrativeOrCharts(t *testing.T) {
	t.Parallel()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	in := testInput("en")
	in.Narrative = ""
	in.Charts = nil

	art, err := r.Render(in)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(art.HTML, "AI-Powered Analysis") {
		t.Error("narrative section should be omitted")
	}
	if strings.Contains(art.HTML, "Data Visualizations") {
		t.Error("chart section should be omitted")
	}
	if strings.Contains(art.HTML, "<svg") {
		t.Error("no SVG expected")
	}
}

func TestRenderEscapesUserContent(t *testing.T) {
	t.Parallel()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	in := testInput("en")
	in.JobName = `<script>alert(1)</script>`
	art, err := r.Render(in)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(art.HTML, "<script>alert(1)</script>") {
		t.Fatal("job name not escaped")
	}
}
