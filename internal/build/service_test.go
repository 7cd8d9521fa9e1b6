package build

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandroweb/html-template-project/internal/config"
	"github.com/sandroweb/html-template-project/internal/events"
	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
	"github.com/sandroweb/html-template-project/internal/manifest"
	"github.com/sandroweb/html-template-project/internal/metrics"
	"github.com/sandroweb/html-template-project/internal/tasks"
)

func newProject(t *testing.T) (afero.Fs, *config.ProjectConfig) {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"sources/site/_header.html":       "<h1>{{{site_title}}}</h1>",
		"sources/site/index.html":         "{{{header}}}<p>{{{CDN_BASEPATH}}}x.css?v={{{NO_CACHE_VAR}}}</p>",
		"sources/site/about.html":         "<a href=\"{{{CDN_BASEPATH}}}\">{{{site_title}}}</a>",
		"sources/assets/scripts/app.js":   "var answer = 42;\n",
		"sources/assets/fonts/f.woff":     "font",
		"sources/assets/css/site.css":     "body{background:url({{{CDN_BASEPATH}}}bg.png)}",
		"sources/assets/robots/notes.txt": "notes",

		"sources/assets/css/vendor/reset.css":    "html { margin: 0 }\n",
		"sources/assets/css/main.css":            "body { color: red }\n",
		"sources/assets/images/sprites/dot.png":  pngOf(t, 2, 2),
		"sources/assets/images/sprites/star.png": pngOf(t, 4, 4),
	}
	for p, content := range files {
		require.NoError(t, afero.WriteFile(fs, p, []byte(content), 0o644))
	}
	cfg := &config.ProjectConfig{
		Title: "Acme",
		Paths: config.PathsConfig{
			BasePathLocal:     "http://localhost:8888/",
			BaseURLProduction: "https://acme.example/",
			Source:            "sources",
			Output:            "deploy",
			Root:              "public",
		},
		Sprites: []config.SpriteConfig{{
			Name:    "icons",
			Src:     "sources/assets/images/sprites/*.png",
			Dest:    "assets/images/icons.png",
			DestCSS: "sources/assets/css/sprites/icons.css",
			ImgPath: "../images/icons.png",
		}},
		Scripts: config.ScriptsConfig{Files: []config.FileGroup{
			{Dest: "assets/scripts/app.min.js", Src: []string{"sources/assets/scripts/app.js"}},
		}},
		Styles: config.StylesConfig{Files: []config.FileGroup{
			{Dest: "assets/css/main.css", Src: []string{
				"sources/assets/css/vendor/reset.css",
				"sources/assets/css/sprites/icons.css",
				"sources/assets/css/main.css",
			}},
		}},
		Pages:     []config.PageTemplate{{File: "index.html"}},
		Fragments: []config.Fragment{{Name: "header", Path: "sources/site/_header.html"}},
	}
	return fs, cfg
}

func pngOf(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.NRGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.String()
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func read(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func resultNames(r *tasks.Report) []tasks.Name {
	out := make([]tasks.Name, 0, len(r.Tasks))
	for _, tr := range r.Tasks {
		out = append(out, tr.Name)
	}
	return out
}

func TestRunDevelopmentBuild(t *testing.T) {
	fs, cfg := newProject(t)
	svc := NewService(fs, cfg, WithLogger(quietLogger()))

	plan := tasks.Compose(config.ModeDevelopment, "")
	report, err := svc.Run(t.Context(), plan)
	require.NoError(t, err)

	assert.Equal(t, metrics.BuildOutcomeSuccess, report.Outcome)
	assert.Equal(t, plan.Names(), resultNames(report))
	assert.Equal(t, 1, report.PagesRendered)

	assert.Equal(t,
		"<h1>Acme</h1><p>http://localhost:8888/x.css?v="+report.CacheBust+"</p>",
		read(t, fs, "deploy/index.html"))
	assert.Equal(t, `<a href="http://localhost:8888/">Acme</a>`, read(t, fs, "deploy/about.html"))
	assert.Equal(t, "body{background:url(http://localhost:8888/bg.png)}", read(t, fs, "deploy/assets/css/site.css"))
	assert.Equal(t, "font", read(t, fs, "deploy/assets/fonts/f.woff"))
	assert.Equal(t, "notes", read(t, fs, "deploy/assets/robots/notes.txt"))
	assert.Contains(t, read(t, fs, "deploy/assets/scripts/app.min.js"), "answer")

	css := read(t, fs, "deploy/assets/css/main.css")
	assert.Contains(t, css, "margin: 0")
	assert.Contains(t, css, ".icons-star {")
	assert.Contains(t, css, "color: red")
	assert.Less(t, strings.Index(css, "margin"), strings.Index(css, "color: red"))

	for _, p := range []string{
		"deploy/_header.html",
		"deploy/assets/scripts/app.js",
		"deploy/assets/css/vendor/reset.css",
		"deploy/assets/css/sprites/icons.css",
		"deploy/assets/images/sprites/dot.png",
		"public/index.html",
	} {
		ok, err := afero.Exists(fs, p)
		require.NoError(t, err)
		assert.False(t, ok, p)
	}

	m, err := manifest.Read(fs, "deploy")
	require.NoError(t, err)
	assert.Equal(t, report.RunID, m.ID)
	assert.Equal(t, "development", m.Inputs.Mode)
	assert.Equal(t, "success", m.Status)
	assert.Len(t, m.Tasks, len(plan.Tasks))
}

func TestRunBasePathOverride(t *testing.T) {
	fs, cfg := newProject(t)
	svc := NewService(fs, cfg, WithLogger(quietLogger()))

	report, err := svc.Run(t.Context(), tasks.Compose(config.ModeDevelopment, "http://example.test"))
	require.NoError(t, err)

	assert.Equal(t, "http://example.test", report.BasePath)
	assert.Equal(t, `<a href="http://example.test">Acme</a>`, read(t, fs, "deploy/about.html"))
	assert.Equal(t, "http://localhost:8888/", cfg.Paths.BasePathLocal)
}

func TestRunProductionPromotes(t *testing.T) {
	fs, cfg := newProject(t)
	svc := NewService(fs, cfg, WithLogger(quietLogger()))

	report, err := svc.Run(t.Context(), tasks.Compose(config.ModeProduction, ""))
	require.NoError(t, err)

	_, ok := report.Result(tasks.OptimizeImages)
	assert.True(t, ok)
	assert.Equal(t, read(t, fs, "deploy/index.html"), read(t, fs, "public/index.html"))

	css := read(t, fs, "deploy/assets/css/main.css")
	assert.True(t, strings.HasPrefix(css, "html{margin:0}"), css)
	assert.Contains(t, css, "body{color:red}")
	assert.Contains(t, css, ".icons-dot{")
	assert.Contains(t, css, ".icons-star{")
	assert.NotContains(t, css, "\n  ")
	sheet, err := afero.Exists(fs, "deploy/assets/images/icons.png")
	require.NoError(t, err)
	assert.True(t, sheet)

	ok, err = afero.Exists(fs, "public/"+manifest.FileName)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, config.TransformOptions{}, cfg.Options)
}

func TestIncrementalRunKeepsOutput(t *testing.T) {
	fs, cfg := newProject(t)
	svc := NewService(fs, cfg, WithLogger(quietLogger()))

	_, err := svc.Run(t.Context(), tasks.Compose(config.ModeDevelopment, ""))
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "deploy/marker.txt", []byte("keep"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "sources/site/_header.html", []byte("<h2>{{{site_title}}}</h2>"), 0o644))

	plan := tasks.Incremental(config.ModeDevelopment, []tasks.Name{tasks.GlobalTokenSubstitution, tasks.RenderTemplates, tasks.CopyHTML})
	report, err := svc.Run(t.Context(), plan)
	require.NoError(t, err)

	assert.Equal(t, []tasks.Name{tasks.CopyHTML, tasks.RenderTemplates, tasks.GlobalTokenSubstitution}, resultNames(report))
	assert.Equal(t, "keep", read(t, fs, "deploy/marker.txt"))
	assert.Contains(t, read(t, fs, "deploy/index.html"), "<h2>Acme</h2>")
}

func TestIncrementalStyleRunKeepsBundle(t *testing.T) {
	fs, cfg := newProject(t)
	svc := NewService(fs, cfg, WithLogger(quietLogger()))

	_, err := svc.Run(t.Context(), tasks.Compose(config.ModeDevelopment, ""))
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "sources/assets/css/main.css", []byte("body { color: blue }\n"), 0o644))

	plan := tasks.Incremental(config.ModeDevelopment, []tasks.Name{tasks.CopyStyles, tasks.CompileStyles, tasks.GlobalTokenSubstitution})
	_, err = svc.Run(t.Context(), plan)
	require.NoError(t, err)

	css := read(t, fs, "deploy/assets/css/main.css")
	assert.Contains(t, css, "margin: 0")
	assert.Contains(t, css, ".icons-dot {")
	assert.Contains(t, css, "color: blue")
}

func TestRunStopsAtFirstFatalTask(t *testing.T) {
	fs, cfg := newProject(t)
	svc := NewService(fs, cfg, WithLogger(quietLogger()),
		WithTask(tasks.CompileScripts, func(context.Context, *tasks.Run) error {
			return ferrors.TransformerError("boom").Build()
		}))

	report, err := svc.Run(t.Context(), tasks.Compose(config.ModeDevelopment, ""))
	require.Error(t, err)

	var te *tasks.TaskError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, tasks.ErrorFatal, te.Kind)
	assert.Equal(t, tasks.CompileScripts, te.Task)
	assert.Equal(t, metrics.BuildOutcomeFailed, report.Outcome)
	assert.Equal(t, []tasks.Name{tasks.ClearOutput, tasks.GenerateSprites, tasks.CompileScripts}, resultNames(report))

	ok, err := afero.Exists(fs, "deploy/index.html")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRunPageFailureIsWarning(t *testing.T) {
	fs, cfg := newProject(t)
	cfg.Pages = append(cfg.Pages, config.PageTemplate{File: "missing.html"})
	svc := NewService(fs, cfg, WithLogger(quietLogger()))

	report, err := svc.Run(t.Context(), tasks.Compose(config.ModeDevelopment, ""))
	require.NoError(t, err)

	assert.Equal(t, metrics.BuildOutcomeWarning, report.Outcome)
	assert.Equal(t, 1, report.PagesRendered)
	assert.Equal(t, 1, report.PagesFailed)
	assert.NotEmpty(t, report.Warnings)

	tr, ok := report.Result(tasks.GlobalTokenSubstitution)
	require.True(t, ok)
	assert.Equal(t, metrics.ResultSuccess, tr.Result)
}

func TestRunPublishesEvents(t *testing.T) {
	fs, cfg := newProject(t)
	bus := events.NewBus()
	defer bus.Close()
	ch, unsubscribe := events.Subscribe[events.Event](bus, 4)
	defer unsubscribe()

	svc := NewService(fs, cfg, WithLogger(quietLogger()), WithBus(bus))
	report, err := svc.Run(t.Context(), tasks.Incremental(config.ModeDevelopment, []tasks.Name{tasks.CopyFonts}))
	require.NoError(t, err)

	next := func() events.Event {
		select {
		case evt := <-ch:
			return evt
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
			return nil
		}
	}

	started, ok := next().(events.BuildStarted)
	require.True(t, ok)
	assert.Equal(t, report.RunID, started.RunID)
	assert.Equal(t, []string{"copy-fonts"}, started.Tasks)

	completed, ok := next().(events.BuildCompleted)
	require.True(t, ok)
	assert.Equal(t, "success", completed.Outcome)
	assert.NoError(t, completed.Err)
}

func TestRunCanceled(t *testing.T) {
	fs, cfg := newProject(t)
	svc := NewService(fs, cfg, WithLogger(quietLogger()))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	report, err := svc.Run(ctx, tasks.Compose(config.ModeDevelopment, ""))
	require.Error(t, err)
	assert.Equal(t, metrics.BuildOutcomeCanceled, report.Outcome)
}
