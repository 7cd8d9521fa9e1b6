package tasks

import (
	"context"
	"fmt"
	"time"

	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
	"github.com/sandroweb/html-template-project/internal/logfields"
	"github.com/sandroweb/html-template-project/internal/metrics"
)

// Func executes one task. It must finish all of its writes before returning.
type Func func(ctx context.Context, run *Run) error

// Registry binds task names to implementations.
type Registry map[Name]Func

// Runner executes plans one task at a time.
type Runner struct {
	registry Registry
	recorder metrics.Recorder
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) RunnerOption {
	return func(rn *Runner) {
		if r != nil {
			rn.recorder = r
		}
	}
}

// NewRunner creates a runner over registry.
func NewRunner(registry Registry, opts ...RunnerOption) *Runner {
	r := &Runner{registry: registry, recorder: metrics.NoopRecorder{}}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Execute runs the plan's tasks in order, recording timing and stopping on
// the first fatal or canceled task. Warnings are recorded and the run goes on.
func (r *Runner) Execute(ctx context.Context, run *Run) error {
	defer r.finish(run)

	for _, d := range run.Plan.Tasks {
		select {
		case <-ctx.Done():
			te := NewCanceledError(d.Name, ctx.Err())
			run.Report.record(d.Name, metrics.ResultCanceled, 0, te)
			r.recorder.IncTaskResult(string(d.Name), metrics.ResultCanceled)
			return te
		default:
		}

		fn, ok := r.registry[d.Name]
		if !ok {
			err := ferrors.InternalError(fmt.Sprintf("no implementation for task %s", d.Name)).Build()
			te := NewFatalError(d.Name, err)
			run.Report.record(d.Name, metrics.ResultFatal, 0, te)
			return te
		}

		run.Logger.Debug("Task started", logfields.Task(string(d.Name)))
		t0 := time.Now()
		err := fn(ctx, run)
		dur := time.Since(t0)

		te := classify(d.Name, err)
		result := resultFor(te)
		run.Report.record(d.Name, result, dur, te)
		r.recorder.ObserveTaskDuration(string(d.Name), dur)
		r.recorder.IncTaskResult(string(d.Name), result)

		switch result {
		case metrics.ResultSuccess:
			run.Logger.Info("Task completed", logfields.Task(string(d.Name)), logfields.Elapsed(dur))
		case metrics.ResultWarning:
			run.Logger.Warn("Task completed with warnings", logfields.Task(string(d.Name)),
				logfields.Elapsed(dur), logfields.Error(te.Err))
		default:
			run.Logger.Error("Task failed", logfields.Task(string(d.Name)),
				logfields.Elapsed(dur), logfields.Error(te.Err))
			return te
		}
	}
	return nil
}

func (r *Runner) finish(run *Run) {
	run.Report.finish()
	r.recorder.ObserveBuildDuration(run.Report.Mode, run.Report.Duration())
	r.recorder.IncBuildOutcome(run.Report.Outcome)
}

func resultFor(te *TaskError) metrics.ResultLabel {
	if te == nil {
		return metrics.ResultSuccess
	}
	switch te.Kind {
	case ErrorWarning:
		return metrics.ResultWarning
	case ErrorCanceled:
		return metrics.ResultCanceled
	default:
		return metrics.ResultFatal
	}
}
