package assets

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/sandroweb/html-template-project/internal/config"
	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
)

// CopyGroup copies the files of one source directory into the output tree.
type CopyGroup struct {
	Name string
	// From is the source directory; To is relative to the output root.
	From, To string
	// Include patterns are matched against the slash separated path relative
	// to From. Empty means everything.
	Include []string
	Exclude []string
}

// CopyGroups returns the static copy groups of a project.
func CopyGroups(env Env) map[string]CopyGroup {
	cfg := env.Config
	assets := cfg.AssetsDir()

	scriptExcludes := []string{}
	scriptsDir := filepath.Join(assets, "scripts")
	for _, src := range cfg.ScriptSources() {
		if rel, ok := relSlash(scriptsDir, src); ok {
			scriptExcludes = append(scriptExcludes, rel)
		}
	}

	// Bundle sources and bundle outputs are never copied raw.
	styleExcludes := []string{}
	stylesDir := filepath.Join(assets, "css")
	for _, src := range cfg.StyleSources() {
		if rel, ok := relSlash(stylesDir, src); ok {
			styleExcludes = append(styleExcludes, rel)
		}
	}
	styleExcludes = append(styleExcludes, bundleDests(cfg.Styles.Files, "assets/css")...)
	scriptExcludes = append(scriptExcludes, bundleDests(cfg.Scripts.Files, "assets/scripts")...)

	imageExcludes := []string{"sprite*/**"}
	imagesDir := filepath.Join(assets, "images")
	for _, s := range cfg.Sprites {
		if rel, ok := relSlash(imagesDir, s.Src); ok {
			imageExcludes = append(imageExcludes, rel)
		}
	}

	htmlExcludes := []string{"**/_*.html", "_*.html"}
	htmlExcludes = append(htmlExcludes, cfg.TemplatedPages()...)

	return map[string]CopyGroup{
		"styles": {
			Name: "styles", From: stylesDir, To: "assets/css",
			Include: []string{"**/*.css"},
			Exclude: styleExcludes,
		},
		"scripts": {
			Name: "scripts", From: scriptsDir, To: "assets/scripts",
			Exclude: scriptExcludes,
		},
		"fonts": {
			Name: "fonts", From: filepath.Join(assets, "fonts"), To: "assets/fonts",
		},
		"images": {
			Name: "images", From: imagesDir, To: "assets/images",
			Exclude: imageExcludes,
		},
		"other": {
			Name: "other", From: assets, To: "assets",
			Exclude: []string{"css/**", "scripts/**", "fonts/**", "images/**"},
		},
		"html": {
			Name: "html", From: cfg.SiteDir(), To: ".",
			Exclude: htmlExcludes,
		},
	}
}

// relSlash returns target relative to dir when target lies below it.
// bundleDests returns the bundle destinations that fall below the output
// directory to, relative to it.
func bundleDests(groups []config.FileGroup, to string) []string {
	var out []string
	for _, g := range groups {
		if rel, ok := relSlash(filepath.FromSlash(to), filepath.FromSlash(g.Dest)); ok {
			out = append(out, rel)
		}
	}
	return out
}

func relSlash(dir, target string) (string, bool) {
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == "." || filepath.IsAbs(rel) || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (g CopyGroup) matches(rel string) bool {
	if len(g.Include) > 0 && !matchAny(g.Include, rel) {
		return false
	}
	return !matchAny(g.Exclude, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// Copy copies every file of g into the output tree and returns the number of
// files written. A missing source directory copies nothing.
func Copy(ctx context.Context, env Env, g CopyGroup) (int, error) {
	var files [][2]string
	err := walkFiles(env.Fs, g.From, func(p, rel string) error {
		if g.matches(rel) {
			files = append(files, [2]string{p, env.outPath(path.Join(g.To, rel))})
		}
		return nil
	})
	if err != nil {
		return 0, ferrors.WrapError(err, ferrors.CategoryFileSystem, "scan copy group").
			WithContext("group", g.Name).
			Build()
	}
	if err := copyFiles(ctx, env.Fs, files); err != nil {
		return 0, err
	}
	return len(files), nil
}

// copyFiles copies src/dst pairs concurrently. All writes have finished when
// it returns.
func copyFiles(ctx context.Context, fsys afero.Fs, pairs [][2]string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, p := range pairs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return copyFile(fsys, p[0], p[1])
		})
	}
	return g.Wait()
}

func copyFile(fsys afero.Fs, src, dst string) error {
	in, err := fsys.Open(src)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "open source").
			WithContext("path", src).
			Build()
	}
	defer in.Close()

	if err := fsys.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create directory").
			WithContext("path", filepath.Dir(dst)).
			Build()
	}
	out, err := fsys.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return ferrors.FileSystemError("create destination").
			WithCause(err).
			WithContext("path", dst).
			Build()
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return ferrors.FileSystemError("copy file").
			WithCause(err).
			WithContext("path", dst).
			Build()
	}
	return out.Close()
}
