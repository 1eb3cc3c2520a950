package pipeline

import (
	"context"
	"fmt"
	"time"

	"tabreport/internal/dataset"
	"tabreport/internal/eventbus"
	"tabreport/internal/i18n"
	"tabreport/internal/jobstore"
	"tabreport/internal/mail"
	"tabreport/internal/report"
	logx "tabreport/pkg/logx"
)

// Executor wires the collaborators for a run. Narrator may be nil when no
// AI provider is configured.
type Executor struct {
	Store    jobstore.Store
	Source   DataSource
	Narrator Narrator
	Charts   ChartRenderer
	Reports  ReportRenderer
	Mailer   Mailer
	Creds    CredentialResolver
	Bus      eventbus.Bus
	Log      logx.Logger

	// Now is swappable in tests; nil means time.Now.
	Now func() time.Time
}

func (e *Executor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Execute runs the job with the given id to completion. It never panics
// out: stage panics are converted into a failed Result so a bad job cannot
// take down the scheduler.
func (e *Executor) Execute(ctx context.Context, id string) (res Result) {
	res = Result{JobID: id, Started: e.now()}
	log := e.Log.With(logx.String("job_id", id))

	defer func() {
		if r := recover(); r != nil {
			res.Err = &StageError{Stage: res.Stage, Err: fmt.Errorf("panic: %v", r)}
		}
		res.Finished = e.now()
		e.publish("run.finished", res)
		if res.Err != nil {
			log.Error("run failed",
				logx.String("stage", res.Stage.String()),
				logx.Duration("took", res.Finished.Sub(res.Started)),
				logx.Err(res.Err),
			)
			return
		}
		log.Info("run finished",
			logx.Bool("email_sent", res.EmailSent),
			logx.Duration("took", res.Finished.Sub(res.Started)),
		)
	}()

	e.publish("run.started", Result{JobID: id, Started: res.Started})

	// Load the persisted definition.
	res.Stage = StageLoad
	job, err := e.Store.Load(ctx, id)
	if err != nil {
		res.Err = &StageError{Stage: StageLoad, Err: err}
		return res
	}

	// Resolve data: live refetch for auto-refresh jobs, otherwise the
	// snapshot captured when the job was scheduled.
	res.Stage = StageData
	d, err := e.resolveData(ctx, job)
	if err != nil {
		res.Err = &StageError{Stage: StageData, Err: err}
		return res
	}
	if d.NumRows() == 0 {
		res.Err = &StageError{Stage: StageData, Err: fmt.Errorf("source %q yielded no rows", job.Config.Source)}
		return res
	}

	res.Stage = StageAnalyze
	sum := dataset.Summarize(d)
	cols := dataset.AnalyzeColumns(d)

	lang := job.Config.Language
	if !i18n.Supported(lang) {
		lang = "en"
	}

	// Narrative and charts are best-effort: a provider outage degrades the
	// report instead of failing the run.
	res.Stage = StageNarrate
	narrativeText := ""
	if e.Narrator != nil {
		narrativeText, err = e.Narrator.Generate(ctx, job.Config.Name, sum, cols, lang)
		if err != nil {
			log.Warn("narrative unavailable, continuing without it", logx.Err(err))
			narrativeText = ""
		}
	}

	res.Stage = StageChart
	input := report.Input{
		JobName:   job.Config.Name,
		Language:  lang,
		Generated: e.now(),
		Summary:   sum,
		Columns:   cols,
		Narrative: narrativeText,
	}
	if job.Config.IncludeCharts && e.Charts != nil {
		input.Charts = e.Charts.Generate(d)
	}

	res.Stage = StageRender
	art, err := e.Reports.Render(input)
	if err != nil {
		res.Err = &StageError{Stage: StageRender, Err: err}
		return res
	}

	res.Stage = StageSend
	msgID, err := e.Mailer.Send(ctx, mail.Message{
		To:             job.Config.Recipient,
		Subject:        fmt.Sprintf("%s: %s", i18n.T(lang, "report_title"), job.Config.Name),
		HTML:           art.HTML,
		PDF:            art.PDF,
		AttachmentName: fmt.Sprintf("report-%s.pdf", id),
	})
	if err != nil {
		res.Err = &StageError{Stage: StageSend, Err: err}
		return res
	}
	res.EmailSent = true
	res.MessageID = msgID

	res.Stage = StageDone
	return res
}

func (e *Executor) resolveData(ctx context.Context, job *jobstore.Job) (*dataset.Dataset, error) {
	if !job.Config.AutoRefresh && len(job.Snapshot) > 0 {
		return dataset.DecodeSnapshot(job.Snapshot)
	}
	var creds map[string]string
	if e.Creds != nil {
		creds = e.Creds(job.Config.CredsRef)
	}
	return e.Source.Fetch(ctx, job.Config.Source, creds)
}

func (e *Executor) publish(typ string, res Result) {
	if e.Bus == nil {
		return
	}
	e.Bus.Publish(eventbus.Event{Type: typ, Data: res})
}
