package build

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/sandroweb/html-template-project/internal/config"
	"github.com/sandroweb/html-template-project/internal/events"
	"github.com/sandroweb/html-template-project/internal/logfields"
	"github.com/sandroweb/html-template-project/internal/manifest"
	"github.com/sandroweb/html-template-project/internal/metrics"
	"github.com/sandroweb/html-template-project/internal/overlay"
	"github.com/sandroweb/html-template-project/internal/tasks"
)

// Service executes plans against one loaded project configuration.
type Service struct {
	fs       afero.Fs
	cfg      *config.ProjectConfig
	recorder metrics.Recorder
	bus      *events.Bus
	logger   *slog.Logger
	runner   *tasks.Runner

	// overrides replaces registry entries; used by tests.
	overrides tasks.Registry
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithBus publishes BuildStarted and BuildCompleted on b.
func WithBus(b *events.Bus) Option {
	return func(s *Service) { s.bus = b }
}

// WithLogger sets the base logger of every run.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTask replaces the implementation bound to name.
func WithTask(name tasks.Name, fn tasks.Func) Option {
	return func(s *Service) {
		if s.overrides == nil {
			s.overrides = tasks.Registry{}
		}
		s.overrides[name] = fn
	}
}

// NewService creates a build service for cfg. cfg is the loaded base
// snapshot; every run works on its own overlay.
func NewService(fs afero.Fs, cfg *config.ProjectConfig, opts ...Option) *Service {
	s := &Service{
		fs:       fs,
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	reg := s.registry()
	for name, fn := range s.overrides {
		reg[name] = fn
	}
	s.runner = tasks.NewRunner(reg, tasks.WithRecorder(s.recorder))
	return s
}

// Config returns the base configuration snapshot.
func (s *Service) Config() *config.ProjectConfig { return s.cfg }

// Run executes plan and returns its report. The error is the first fatal
// task failure, or the cancellation that stopped the run.
func (s *Service) Run(ctx context.Context, plan tasks.Plan) (*tasks.Report, error) {
	modeCfg := overlay.Apply(s.cfg, plan.Mode)
	run := tasks.NewRun(s.fs, modeCfg, plan)
	run.Logger = s.logger.With(logfields.RunID(run.ID), logfields.Mode(string(plan.Mode)))

	names := planNames(plan)
	run.Logger.Info("Build started",
		slog.Any("tasks", names),
		logfields.BasePath(run.BasePath),
		slog.Bool("incremental", plan.Incremental))
	s.publish(ctx, events.BuildStarted{
		RunID:     run.ID,
		Mode:      string(plan.Mode),
		Tasks:     names,
		StartedAt: run.StartedAt,
	})

	err := s.runner.Execute(ctx, run)
	report := run.Report

	s.writeManifest(run)

	attrs := []any{
		slog.String("outcome", string(report.Outcome)),
		logfields.Elapsed(report.Duration()),
		logfields.Files(report.FilesWritten),
	}
	if err != nil {
		run.Logger.Error("Build failed", append(attrs, logfields.Error(err))...)
	} else {
		run.Logger.Info("Build completed", attrs...)
	}

	// The completion event is delivered even when ctx was canceled.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	s.publish(pubCtx, events.BuildCompleted{
		RunID:    run.ID,
		Mode:     string(plan.Mode),
		Outcome:  string(report.Outcome),
		Err:      err,
		Duration: report.Duration(),
	})

	return report, err
}

func (s *Service) publish(ctx context.Context, evt events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, evt); err != nil {
		s.logger.Warn("Failed to publish build event", slog.String("event", evt.EventName()), logfields.Error(err))
	}
}

// writeManifest records the run in the output root. Failures are logged;
// the manifest never changes a build's outcome.
func (s *Service) writeManifest(run *tasks.Run) {
	r := run.Report
	m := &manifest.BuildManifest{
		ID:        r.RunID,
		Timestamp: r.End,
		Inputs: manifest.Inputs{
			Mode:      r.Mode,
			BasePath:  r.BasePath,
			CacheBust: r.CacheBust,
		},
		Outputs: manifest.Outputs{
			Files:         r.FilesWritten,
			PagesRendered: r.PagesRendered,
			PagesFailed:   r.PagesFailed,
			Warnings:      r.Warnings,
		},
		Status:   string(r.Outcome),
		Duration: r.Duration().Milliseconds(),
	}
	for _, tr := range r.Tasks {
		m.Tasks = append(m.Tasks, manifest.Task{
			Name:     string(tr.Name),
			Result:   string(tr.Result),
			Duration: tr.Duration.Milliseconds(),
			Error:    tr.Error,
		})
	}

	if src := s.cfg.SourceFile; src != "" {
		if hash, err := manifest.HashFile(s.fs, src); err == nil {
			m.Inputs.ConfigHash = hash
		}
		rev, err := manifest.SourceRevision(filepath.Dir(src))
		if err != nil {
			run.Logger.Debug("Source revision unavailable", logfields.Error(err))
		}
		m.Inputs.Revision = rev
	}

	if err := manifest.Write(s.fs, run.Config.OutputDir(), m); err != nil {
		run.Logger.Warn("Failed to write build manifest", logfields.Error(err))
	}
}

func planNames(p tasks.Plan) []string {
	out := make([]string, 0, len(p.Tasks))
	for _, n := range p.Names() {
		out = append(out, string(n))
	}
	return out
}
