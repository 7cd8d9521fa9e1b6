package commands

import (
	"context"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/sandroweb/html-template-project/internal/build"
	"github.com/sandroweb/html-template-project/internal/build/queue"
	"github.com/sandroweb/html-template-project/internal/config"
	"github.com/sandroweb/html-template-project/internal/events"
	"github.com/sandroweb/html-template-project/internal/metrics"
	"github.com/sandroweb/html-template-project/internal/preview"
	"github.com/sandroweb/html-template-project/internal/retry"
	"github.com/sandroweb/html-template-project/internal/tasks"
	"github.com/sandroweb/html-template-project/internal/watch"
)

// WatchCmd builds once, serves the output tree and rebuilds on changes.
type WatchCmd struct {
	Mode     string `name:"mode" default:"development" help:"Build mode (development|production)"`
	Port     int    `name:"port" help:"Preview server port (defaults to server.port)"`
	NoServer bool   `name:"no-server" help:"Do not start the preview server"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	mode, err := config.ParseBuildMode(w.Mode)
	if err != nil {
		return err
	}
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	logger := g.logger()
	fs := afero.NewOsFs()
	reg := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)
	bus := events.NewBus()
	defer bus.Close()

	svc := build.NewService(fs, cfg,
		build.WithRecorder(recorder),
		build.WithBus(bus),
		build.WithLogger(logger))
	q := queue.New(svc, queue.WithLogger(logger), queue.WithRetry(retry.DefaultPolicy()))
	q.Start(ctx)
	defer q.Stop()

	q.Enqueue(tasks.Compose(mode, ""))

	watcher := watch.New(cfg, bus, q,
		watch.WithMode(mode),
		watch.WithConfigFile(root.Config),
		watch.WithRecorder(recorder),
		watch.WithLogger(logger))

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error { return watcher.Run(gctx) })

	if !w.NoServer {
		port := w.Port
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := preview.NewServer(fmt.Sprintf(":%d", port), fs, cfg.OutputDir(),
			preview.WithStatus(q),
			preview.WithRegistry(reg),
			preview.WithLogger(logger))
		grp.Go(srv.Start)
		grp.Go(func() error {
			<-gctx.Done()
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			return srv.Shutdown(shutdownCtx)
		})
		logger.Info("Preview server listening", "url", fmt.Sprintf("http://localhost:%d/", port))
	}

	return grp.Wait()
}
