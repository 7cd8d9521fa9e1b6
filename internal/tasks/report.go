package tasks

import (
	"time"

	"github.com/sandroweb/html-template-project/internal/metrics"
)

// TaskResult is the recorded outcome of one task.
type TaskResult struct {
	Name     Name                `json:"name"`
	Result   metrics.ResultLabel `json:"result"`
	Duration time.Duration       `json:"duration_ns"`
	Error    string              `json:"error,omitempty"`
}

// Report summarizes a run.
type Report struct {
	RunID     string                    `json:"run_id"`
	Mode      string                    `json:"mode"`
	BasePath  string                    `json:"base_path"`
	CacheBust string                    `json:"cache_bust"`
	Start     time.Time                 `json:"start"`
	End       time.Time                 `json:"end"`
	Tasks     []TaskResult              `json:"tasks"`
	Warnings  []string                  `json:"warnings,omitempty"`
	Outcome   metrics.BuildOutcomeLabel `json:"outcome"`

	PagesRendered int `json:"pages_rendered"`
	PagesFailed   int `json:"pages_failed"`
	FilesWritten  int `json:"files_written"`
}

func newReport(run *Run) *Report {
	return &Report{
		RunID:     run.ID,
		Mode:      string(run.Plan.Mode),
		BasePath:  run.BasePath,
		CacheBust: run.CacheBust,
		Start:     run.StartedAt,
	}
}

// AddWarning records a non-fatal problem.
func (r *Report) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// AddFiles adds n to the written file count.
func (r *Report) AddFiles(n int) {
	r.FilesWritten += n
}

func (r *Report) record(name Name, result metrics.ResultLabel, d time.Duration, te *TaskError) {
	tr := TaskResult{Name: name, Result: result, Duration: d}
	if te != nil {
		tr.Error = te.Error()
	}
	r.Tasks = append(r.Tasks, tr)
}

// Result returns the recorded result of name, if it ran.
func (r *Report) Result(name Name) (TaskResult, bool) {
	for _, tr := range r.Tasks {
		if tr.Name == name {
			return tr, true
		}
	}
	return TaskResult{}, false
}

func (r *Report) finish() {
	r.End = time.Now()
	r.Outcome = metrics.BuildOutcomeSuccess
	for _, tr := range r.Tasks {
		switch tr.Result {
		case metrics.ResultCanceled:
			r.Outcome = metrics.BuildOutcomeCanceled
			return
		case metrics.ResultFatal:
			r.Outcome = metrics.BuildOutcomeFailed
			return
		case metrics.ResultWarning:
			r.Outcome = metrics.BuildOutcomeWarning
		}
	}
	if r.Outcome == metrics.BuildOutcomeSuccess && len(r.Warnings) > 0 {
		r.Outcome = metrics.BuildOutcomeWarning
	}
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}
