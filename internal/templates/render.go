// Package templates composes HTML pages from reusable fragments.
//
// A page is rendered in a fixed order: fragment tokens are replaced with raw
// fragment content in one pass, then the page's own replace rules run, then
// the reserved base path, cache-bust and production URL tokens, then the
// title token. Whatever triple-brace tokens remain are stripped. Production
// runs additionally compact the markup before it is written to the output
// tree at the same relative path as the source page.
package templates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/sandroweb/html-template-project/internal/config"
	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
	"github.com/sandroweb/html-template-project/internal/htmlclean"
	"github.com/sandroweb/html-template-project/internal/logfields"
	"github.com/sandroweb/html-template-project/internal/tokens"
)

// Vars carries the per-run values substituted into every page.
type Vars struct {
	BasePath  string
	CacheBust string
}

// Renderer renders the configured pages of one build run.
type Renderer struct {
	fs     afero.Fs
	cfg    *config.ProjectConfig
	vars   Vars
	logger *slog.Logger

	fragments *strings.Replacer
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger overrides the renderer's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// NewRenderer creates a renderer for cfg. Fragment files are read lazily on
// first use and reused for every page of the run.
func NewRenderer(fs afero.Fs, cfg *config.ProjectConfig, vars Vars, opts ...Option) *Renderer {
	r := &Renderer{fs: fs, cfg: cfg, vars: vars, logger: slog.Default()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Render composes page and returns the final markup without writing it.
func (r *Renderer) Render(page config.PageTemplate) (string, error) {
	srcPath := filepath.Join(r.cfg.SiteDir(), page.File)
	data, err := afero.ReadFile(r.fs, srcPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ferrors.FileNotFoundError("page source not found").
				WithCause(err).
				WithContext("page", page.File).
				WithContext("path", srcPath).
				Build()
		}
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "read page source").
			WithContext("page", page.File).
			Build()
	}

	text := r.fragmentReplacer().Replace(string(data))

	rules := make([]tokens.Rule, 0, len(page.Replace))
	for _, rule := range page.Replace {
		rules = append(rules, tokens.Rule{Find: tokens.Wrap(rule.Find), Replace: rule.Replace})
	}
	text = tokens.Apply(text, rules)
	text = tokens.Apply(text, tokens.Reserved(r.vars.BasePath, r.vars.CacheBust, r.cfg.Paths.BaseURLProduction))

	title := page.Title
	if title == "" {
		title = r.cfg.Title
	}
	text = tokens.Substitute(text, tokens.Wrap(tokens.SiteTitle), title)
	text = tokens.Strip(text)

	if r.cfg.Options.CleanHTML {
		cleaned, err := htmlclean.Clean(text)
		if err != nil {
			return "", ferrors.TemplateError("clean page markup").
				WithCause(err).
				WithContext("page", page.File).
				Build()
		}
		text = cleaned
	}
	return text, nil
}

// RenderPage renders page and writes it below the output directory.
func (r *Renderer) RenderPage(page config.PageTemplate) (string, error) {
	text, err := r.Render(page)
	if err != nil {
		return "", err
	}
	out, err := writeOutput(r.fs, r.cfg.OutputDir(), page.File, text)
	if err != nil {
		return "", ferrors.FileSystemError("write rendered page").
			WithCause(err).
			WithContext("page", page.File).
			Build()
	}
	return out, nil
}

// RenderAll renders every configured page in order. A failing page is
// recorded in the report and does not stop its siblings. The returned error
// is non-nil only when ctx is canceled.
func (r *Renderer) RenderAll(ctx context.Context) (Report, error) {
	var report Report
	for _, page := range r.cfg.Pages {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		out, err := r.RenderPage(page)
		if err != nil {
			r.logger.Warn("Page render failed", logfields.Page(page.File), logfields.Error(err))
			report.Failed = append(report.Failed, PageFailure{Page: page.File, Err: err})
			continue
		}
		r.logger.Debug("Page rendered", logfields.Page(page.File), logfields.Path(out))
		report.Rendered = append(report.Rendered, page.File)
	}
	return report, nil
}

// fragmentReplacer builds the single-pass replacer over all registered
// fragments. Unreadable fragments are logged and left for stripping.
func (r *Renderer) fragmentReplacer() *strings.Replacer {
	if r.fragments != nil {
		return r.fragments
	}
	pairs := make([]string, 0, 2*len(r.cfg.Fragments))
	for _, f := range r.cfg.Fragments {
		content, err := afero.ReadFile(r.fs, f.Path)
		if err != nil {
			r.logger.Warn("Fragment unavailable, token will be removed",
				logfields.Fragment(f.Name), logfields.Path(f.Path), logfields.Error(err))
			continue
		}
		if len(content) == 0 {
			continue
		}
		pairs = append(pairs, tokens.Wrap(f.Name), string(content))
	}
	r.fragments = strings.NewReplacer(pairs...)
	return r.fragments
}

// Report summarizes a RenderAll call.
type Report struct {
	Rendered []string
	Failed   []PageFailure
}

// PageFailure records why one page was skipped.
type PageFailure struct {
	Page string
	Err  error
}

// HasFailures reports whether any page was skipped.
func (r Report) HasFailures() bool { return len(r.Failed) > 0 }

// Err joins the page failures, or returns nil.
func (r Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, fmt.Errorf("%s: %w", f.Page, f.Err))
	}
	return errors.Join(errs...)
}
