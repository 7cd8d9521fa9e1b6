package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/sandroweb/html-template-project/internal/config"
	"github.com/sandroweb/html-template-project/internal/events"
	"github.com/sandroweb/html-template-project/internal/logfields"
	"github.com/sandroweb/html-template-project/internal/metrics"
	"github.com/sandroweb/html-template-project/internal/tasks"
)

const (
	defaultQuietWindow = 300 * time.Millisecond
	defaultMaxDelay    = 2 * time.Second
)

// Enqueuer accepts build plans. queue.BuildQueue implements it.
type Enqueuer interface {
	Enqueue(plan tasks.Plan)
}

// Watcher turns source changes into incremental builds.
type Watcher struct {
	cfg        *config.ProjectConfig
	bus        *events.Bus
	queue      Enqueuer
	root       string
	configFile string
	mode       config.BuildMode
	recorder   metrics.Recorder
	logger     *slog.Logger

	ready chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithRoot sets the project root the configured paths are relative to.
func WithRoot(dir string) Option { return func(w *Watcher) { w.root = dir } }

// WithMode sets the mode of triggered builds.
func WithMode(m config.BuildMode) Option { return func(w *Watcher) { w.mode = m } }

// WithConfigFile also watches the project configuration file.
func WithConfigFile(p string) Option { return func(w *Watcher) { w.configFile = p } }

func WithRecorder(r metrics.Recorder) Option {
	return func(w *Watcher) {
		if r != nil {
			w.recorder = r
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a watcher that enqueues plans on q.
func New(cfg *config.ProjectConfig, bus *events.Bus, q Enqueuer, opts ...Option) *Watcher {
	w := &Watcher{
		cfg:      cfg,
		bus:      bus,
		queue:    q,
		root:     ".",
		mode:     config.ModeDevelopment,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		ready:    make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Ready is closed once file changes are being observed.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run watches until ctx is done. Build failures are logged and watching
// continues.
func (w *Watcher) Run(ctx context.Context) error {
	configFile := w.relConfigFile()
	quiet, maxDelay := w.durations()
	deb, err := NewDebouncer(w.bus, NewTrigger(w.cfg, configFile), DebouncerConfig{
		QuietWindow: quiet,
		MaxDelay:    maxDelay,
	})
	if err != nil {
		return err
	}

	changed, unsubChanged := events.Subscribe[events.FilesChanged](w.bus, 16)
	defer unsubChanged()
	completed, unsubCompleted := events.Subscribe[events.BuildCompleted](w.bus, 16)
	defer unsubCompleted()

	var files []string
	if configFile != "" {
		files = append(files, configFile)
	}
	l, err := newListener(w.root, []string{w.cfg.SourceDir()}, files, w.bus, w.logger)
	if err != nil {
		return err
	}
	defer func() { _ = l.close() }()

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = deb.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		l.run(ctx)
	}()

	select {
	case <-deb.Ready():
	case <-ctx.Done():
		return nil
	}
	close(w.ready)
	w.logger.Info("Watching for changes", logfields.Path(w.cfg.SourceDir()), logfields.Mode(string(w.mode)))

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-changed:
			if !ok {
				return nil
			}
			names := taskNames(evt.Tasks)
			for _, n := range names {
				w.recorder.IncWatchTrigger(string(n))
			}
			w.logger.Info("Change detected",
				slog.Any("paths", evt.Paths),
				slog.Any("tasks", evt.Tasks),
				slog.String("cause", evt.Cause))
			w.queue.Enqueue(tasks.Incremental(w.mode, names))
		case evt, ok := <-completed:
			if !ok {
				return nil
			}
			if evt.Err != nil {
				w.logger.Warn("Watch build failed, still watching",
					logfields.RunID(evt.RunID), logfields.Error(evt.Err))
				continue
			}
			w.logger.Info("Watch completed",
				logfields.RunID(evt.RunID),
				slog.String("outcome", evt.Outcome),
				logfields.Elapsed(evt.Duration))
		}
	}
}

// relConfigFile expresses the config path relative to the root, the form
// every listener event has.
func (w *Watcher) relConfigFile() string {
	if w.configFile == "" || !filepath.IsAbs(w.configFile) {
		return w.configFile
	}
	absRoot, err := filepath.Abs(w.root)
	if err != nil {
		return w.configFile
	}
	if rel, err := filepath.Rel(absRoot, w.configFile); err == nil {
		return rel
	}
	return w.configFile
}

func (w *Watcher) durations() (time.Duration, time.Duration) {
	quiet, maxDelay := defaultQuietWindow, defaultMaxDelay
	if d, err := time.ParseDuration(w.cfg.Watch.Debounce); err == nil && d > 0 {
		quiet = d
	}
	if d, err := time.ParseDuration(w.cfg.Watch.MaxDelay); err == nil && d > 0 {
		maxDelay = d
	}
	return quiet, maxDelay
}
