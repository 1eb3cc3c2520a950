// Package pipeline runs one report job end to end: resolve the dataset,
// analyze it, generate the narrative and charts, render the artifacts, and
// deliver them by email.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"tabreport/internal/charts"
	"tabreport/internal/dataset"
	"tabreport/internal/mail"
	"tabreport/internal/report"
)

// Stage identifies how far a run progressed before finishing or failing.
type Stage int

const (
	StageLoad Stage = iota
	StageData
	StageAnalyze
	StageNarrate
	StageChart
	StageRender
	StageSend
	StageDone
)

var stageNames = map[Stage]string{
	StageLoad:    "load",
	StageData:    "data",
	StageAnalyze: "analyze",
	StageNarrate: "narrate",
	StageChart:   "chart",
	StageRender:  "render",
	StageSend:    "send",
	StageDone:    "done",
}

func (s Stage) String() string {
	if n, ok := stageNames[s]; ok {
		return n
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// StageError pins a failure to the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline: %s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Result summarizes one run. Err is nil on success; degraded runs (missing
// narrative or charts) still succeed and are only visible in the logs.
type Result struct {
	JobID     string
	Stage     Stage
	Err       error
	Started   time.Time
	Finished  time.Time
	EmailSent bool
	MessageID string
}

// DataSource resolves a job's source locator to a dataset.
type DataSource interface {
	Fetch(ctx context.Context, locator string, creds map[string]string) (*dataset.Dataset, error)
}

// Narrator produces the prose analysis. Implementations may refuse with an
// error when not configured; the run continues without a narrative.
type Narrator interface {
	Generate(ctx context.Context, name string, sum dataset.Summary, cols []dataset.ColumnStats, lang string) (string, error)
}

// ChartRenderer builds the visualization set for a dataset.
type ChartRenderer interface {
	Generate(d *dataset.Dataset) []charts.Chart
}

// ReportRenderer turns collected run inputs into delivery artifacts.
type ReportRenderer interface {
	Render(in report.Input) (*report.Artifact, error)
}

// Mailer delivers the finished report and returns a provider message id.
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) (string, error)
}

// CredentialResolver maps a job's credential reference to the secret set
// handed to the data source. A nil resolver means no credentials.
type CredentialResolver func(ref string) map[string]string
