package tasks

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/sandroweb/html-template-project/internal/config"
	"github.com/sandroweb/html-template-project/internal/logfields"
)

// Run is the state shared by the tasks of one plan execution. The config is
// the mode overlay, never the loaded base snapshot.
type Run struct {
	ID        string
	Plan      Plan
	Config    *config.ProjectConfig
	Fs        afero.Fs
	BasePath  string
	CacheBust string
	StartedAt time.Time
	Logger    *slog.Logger
	Report    *Report
}

// NewRun prepares the state for executing plan against cfg. The cache-bust
// value is the run's start time in milliseconds.
func NewRun(fs afero.Fs, cfg *config.ProjectConfig, plan Plan) *Run {
	now := time.Now()
	id := uuid.NewString()
	run := &Run{
		ID:        id,
		Plan:      plan,
		Config:    cfg,
		Fs:        fs,
		BasePath:  plan.BasePath(cfg),
		CacheBust: strconv.FormatInt(now.UnixMilli(), 10),
		StartedAt: now,
	}
	run.Logger = slog.Default().With(logfields.RunID(id), logfields.Mode(string(plan.Mode)))
	run.Report = newReport(run)
	return run
}
