package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandroweb/html-template-project/internal/config"
	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
	"github.com/sandroweb/html-template-project/internal/metrics"
)

type countingRecorder struct {
	metrics.NoopRecorder
	results  map[string]metrics.ResultLabel
	outcomes []metrics.BuildOutcomeLabel
}

func (c *countingRecorder) IncTaskResult(task string, r metrics.ResultLabel) {
	if c.results == nil {
		c.results = map[string]metrics.ResultLabel{}
	}
	c.results[task] = r
}

func (c *countingRecorder) IncBuildOutcome(o metrics.BuildOutcomeLabel) {
	c.outcomes = append(c.outcomes, o)
}

func newTestRun(plan Plan) *Run {
	cfg := &config.ProjectConfig{Paths: config.PathsConfig{BasePathLocal: "http://localhost/"}}
	return NewRun(afero.NewMemMapFs(), cfg, plan)
}

func recordingRegistry(order *[]Name, override map[Name]Func) Registry {
	reg := Registry{}
	for _, n := range All() {
		reg[n] = func(context.Context, *Run) error {
			*order = append(*order, n)
			return nil
		}
	}
	for n, fn := range override {
		reg[n] = func(ctx context.Context, run *Run) error {
			*order = append(*order, n)
			return fn(ctx, run)
		}
	}
	return reg
}

func TestRunnerExecutesInOrder(t *testing.T) {
	var order []Name
	rec := &countingRecorder{}
	plan := Compose(config.ModeProduction, "")
	run := newTestRun(plan)

	err := NewRunner(recordingRegistry(&order, nil), WithRecorder(rec)).Execute(t.Context(), run)
	require.NoError(t, err)
	assert.Equal(t, plan.Names(), order)
	assert.Equal(t, metrics.BuildOutcomeSuccess, run.Report.Outcome)
	assert.Equal(t, []metrics.BuildOutcomeLabel{metrics.BuildOutcomeSuccess}, rec.outcomes)
	assert.Len(t, run.Report.Tasks, len(plan.Tasks))
	assert.False(t, run.Report.End.IsZero())
}

func TestRunnerSuccessfulTaskHasNoError(t *testing.T) {
	var order []Name
	run := newTestRun(Single(config.ModeDevelopment, RenderTemplates))

	err := NewRunner(recordingRegistry(&order, nil)).Execute(t.Context(), run)
	require.NoError(t, err)
	require.Len(t, run.Report.Tasks, 1)
	assert.Equal(t, metrics.ResultSuccess, run.Report.Tasks[0].Result)
	assert.Empty(t, run.Report.Tasks[0].Error)
}

func TestRunnerStopsAtFirstFatal(t *testing.T) {
	var order []Name
	boom := ferrors.TransformerError("syntax error in main.js").Build()
	reg := recordingRegistry(&order, map[Name]Func{
		CompileScripts: func(context.Context, *Run) error { return boom },
	})
	run := newTestRun(Compose(config.ModeDevelopment, ""))

	err := NewRunner(reg).Execute(t.Context(), run)
	require.Error(t, err)

	var te *TaskError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ErrorFatal, te.Kind)
	assert.Equal(t, CompileScripts, te.Task)
	assert.ErrorIs(t, err, boom)

	assert.Equal(t, []Name{ClearOutput, GenerateSprites, CompileScripts}, order)
	assert.Equal(t, metrics.BuildOutcomeFailed, run.Report.Outcome)
}

func TestRunnerContinuesAfterWarning(t *testing.T) {
	var order []Name
	reg := recordingRegistry(&order, map[Name]Func{
		RenderTemplates: func(context.Context, *Run) error {
			return NewWarningError(RenderTemplates, errors.New("1 page failed"))
		},
	})
	run := newTestRun(Compose(config.ModeDevelopment, ""))

	require.NoError(t, NewRunner(reg).Execute(t.Context(), run))
	assert.Equal(t, GlobalTokenSubstitution, order[len(order)-1])

	res, ok := run.Report.Result(RenderTemplates)
	require.True(t, ok)
	assert.Equal(t, metrics.ResultWarning, res.Result)
	assert.Equal(t, metrics.BuildOutcomeWarning, run.Report.Outcome)
}

func TestRunnerClassifiesWarningSeverity(t *testing.T) {
	var order []Name
	reg := recordingRegistry(&order, map[Name]Func{
		CopyFonts: func(context.Context, *Run) error {
			return ferrors.FileSystemError("font dir missing").Warning().Build()
		},
	})
	run := newTestRun(Incremental(config.ModeDevelopment, []Name{CopyFonts, CopyImages}))

	require.NoError(t, NewRunner(reg).Execute(t.Context(), run))
	assert.Equal(t, []Name{CopyFonts, CopyImages}, order)
}

func TestRunnerCanceled(t *testing.T) {
	var order []Name
	ctx, cancel := context.WithCancel(t.Context())
	reg := recordingRegistry(&order, map[Name]Func{
		GenerateSprites: func(context.Context, *Run) error {
			cancel()
			return nil
		},
	})
	run := newTestRun(Compose(config.ModeDevelopment, ""))

	err := NewRunner(reg).Execute(ctx, run)
	var te *TaskError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ErrorCanceled, te.Kind)
	assert.Equal(t, CompileScripts, te.Task)
	assert.Equal(t, metrics.BuildOutcomeCanceled, run.Report.Outcome)
}

func TestRunnerMissingImplementation(t *testing.T) {
	run := newTestRun(Single(config.ModeDevelopment, PromoteToRoot))
	err := NewRunner(Registry{}).Execute(t.Context(), run)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryInternal))
}

func TestNewRun(t *testing.T) {
	run := newTestRun(Compose(config.ModeDevelopment, "http://example.test"))
	assert.Equal(t, "http://example.test", run.BasePath)
	assert.NotEmpty(t, run.ID)
	assert.Regexp(t, `^\d{13}$`, run.CacheBust)
	assert.WithinDuration(t, time.Now(), run.StartedAt, time.Minute)
	assert.Equal(t, run.ID, run.Report.RunID)
}
