// Package preview serves the output tree during watch.
package preview

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/sandroweb/html-template-project/internal/build/queue"
	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
	"github.com/sandroweb/html-template-project/internal/metrics"
)

// StatusSource reports the most recent build. queue.BuildQueue implements it.
type StatusSource interface {
	Last() (queue.Result, bool)
	Running() bool
}

// Server is the preview HTTP server.
type Server struct {
	Addr     string
	router   *chi.Mux
	server   *http.Server
	fs       afero.Fs
	root     string
	status   StatusSource
	registry *prom.Registry
	errs     *ferrors.HTTPErrorAdapter
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStatus exposes build status on /status.
func WithStatus(s StatusSource) Option { return func(srv *Server) { srv.status = s } }

// WithRegistry exposes reg on /metrics.
func WithRegistry(reg *prom.Registry) Option { return func(srv *Server) { srv.registry = reg } }

func WithLogger(l *slog.Logger) Option {
	return func(srv *Server) {
		if l != nil {
			srv.logger = l
		}
	}
}

// NewServer creates a server for the files below root on fs.
func NewServer(addr string, fs afero.Fs, root string, opts ...Option) *Server {
	s := &Server{
		Addr:   addr,
		router: chi.NewRouter(),
		fs:     fs,
		root:   root,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	s.errs = ferrors.NewHTTPErrorAdapter(s.logger)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(noCache)

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/status", s.handleStatus)
	if s.registry != nil {
		s.router.Method(http.MethodGet, "/metrics", metrics.HTTPHandler(s.registry))
	}

	files := http.FileServer(afero.NewHttpFs(s.fs).Dir(s.root))
	s.router.Handle("/*", files)
}

// Start listens until Shutdown is called. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "preview server failed").
			WithContext("addr", s.Addr).
			Build()
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// noCache disables browser caching so every reload shows the latest build.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

type statusResponse struct {
	Running  bool     `json:"running"`
	RunID    string   `json:"run_id,omitempty"`
	Mode     string   `json:"mode,omitempty"`
	Outcome  string   `json:"outcome,omitempty"`
	Files    int      `json:"files,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var resp statusResponse
	if s.status != nil {
		resp.Running = s.status.Running()
		if last, ok := s.status.Last(); ok {
			if last.Err != nil {
				s.errs.WriteErrorResponse(w, r, last.Err)
				return
			}
			if rep := last.Report; rep != nil {
				resp.RunID = rep.RunID
				resp.Mode = rep.Mode
				resp.Outcome = string(rep.Outcome)
				resp.Files = rep.FilesWritten
				resp.Warnings = rep.Warnings
			}
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
