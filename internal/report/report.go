// Package report assembles the delivery artifacts for one pipeline run: a
// styled HTML document with inline charts for the email body, and a PDF
// attachment carrying the same tables and narrative.
package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"tabreport/internal/charts"
	"tabreport/internal/dataset"
	"tabreport/internal/i18n"
	"tabreport/internal/pdf"
)

//go:embed template.html
var templateHTML string

// Input carries everything gathered by the pipeline stages.
type Input struct {
	JobName   string
	Language  string
	Generated time.Time
	Summary   dataset.Summary
	Columns   []dataset.ColumnStats
	Narrative string
	Charts    []charts.Chart
}

// Artifact is the rendered pair; HTML doubles as the email body.
type Artifact struct {
	HTML string
	PDF  []byte
}

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("report").Parse(templateHTML)
	if err != nil {
		return nil, fmt.Errorf("report: parse template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render produces both artifacts. Chart SVG is trusted module output and
// inlined as-is; everything else passes through template escaping.
func (r *Renderer) Render(in Input) (*Artifact, error) {
	labels := i18n.Labels(in.Language)

	html, err := r.renderHTML(in, labels)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		HTML: html,
		PDF:  renderPDF(in, labels),
	}, nil
}

type chartView struct {
	Title string
	SVG   template.HTML
}

type templateData struct {
	JobName          string
	Language         string
	GeneratedText    string
	CompletenessText string
	Summary          dataset.Summary
	Narrative        string
	NumericRows      [][]string
	QualityRows      [][]string
	Charts           []chartView
	L                map[string]string
}

func (r *Renderer) renderHTML(in Input, labels map[string]string) (string, error) {
	data := templateData{
		JobName:          in.JobName,
		Language:         in.Language,
		GeneratedText:    in.Generated.Format("2006-01-02 15:04 MST"),
		CompletenessText: fmtPct(100 - in.Summary.MissingPct),
		Summary:          in.Summary,
		Narrative:        in.Narrative,
		NumericRows:      numericRows(in.Columns),
		QualityRows:      qualityRows(in.Columns, labels),
		L:                labels,
	}
	for _, c := range in.Charts {
		data.Charts = append(data.Charts, chartView{Title: c.Title, SVG: template.HTML(c.SVG)})
	}

	var b strings.Builder
	if err := r.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("report: execute template: %w", err)
	}
	return b.String(), nil
}

func renderPDF(in Input, labels map[string]string) []byte {
	doc := pdf.New()
	doc.Heading(labels["report_title"] + ": " + in.JobName)
	doc.Text(labels["generated_on"] + " " + in.Generated.Format("2006-01-02 15:04 MST"))

	doc.SubHeading(labels["executive_summary"])
	doc.Table(
		[]string{labels["metric"], labels["value"]},
		[][]string{
			{labels["total_records"], fmt.Sprintf("%d", in.Summary.Rows)},
			{labels["total_features"], fmt.Sprintf("%d", in.Summary.Columns)},
			{labels["data_completeness"], fmtPct(100 - in.Summary.MissingPct)},
			{labels["numeric_features"], fmt.Sprintf("%d", in.Summary.NumericColumns)},
			{labels["categorical_features"], fmt.Sprintf("%d", in.Summary.TextColumns)},
		},
	)

	if in.Narrative != "" {
		doc.SubHeading(labels["ai_analysis"])
		doc.Text(in.Narrative)
	}

	if rows := numericRows(in.Columns); len(rows) > 0 {
		doc.SubHeading(labels["key_metrics"])
		doc.Table([]string{
			labels["variable"], labels["mean"], labels["median"],
			labels["std_dev"], labels["min"], labels["max"],
		}, rows)
	}

	doc.SubHeading(labels["data_quality_report"])
	doc.Table([]string{
		labels["column"], labels["data_type"],
		labels["missing_count"], labels["missing_percentage"],
	}, qualityRows(in.Columns, labels))

	doc.Text(labels["footer_text"])
	return doc.Bytes()
}

func numericRows(cols []dataset.ColumnStats) [][]string {
	var rows [][]string
	for _, c := range cols {
		if !c.Numeric {
			continue
		}
		rows = append(rows, []string{
			c.Name, fmtNum(c.Mean), fmtNum(c.Median),
			fmtNum(c.Std), fmtNum(c.Min), fmtNum(c.Max),
		})
	}
	return rows
}

func qualityRows(cols []dataset.ColumnStats, labels map[string]string) [][]string {
	rows := make([][]string, 0, len(cols))
	for _, c := range cols {
		kind := labels["text"]
		if c.Numeric {
			kind = labels["numeric"]
		}
		rows = append(rows, []string{
			c.Name, kind, fmt.Sprintf("%d", c.Missing), fmtPct(c.MissingPct),
		})
	}
	return rows
}

func fmtNum(v float64) string {
	return fmt.Sprintf("%.4g", v)
}

func fmtPct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
