package assets

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/sandroweb/html-template-project/internal/config"
	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
)

// Env carries what every transformer needs.
type Env struct {
	Fs     afero.Fs
	Config *config.ProjectConfig
	Logger *slog.Logger
}

func (e Env) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// outPath joins rel below the output root.
func (e Env) outPath(rel string) string {
	return filepath.Join(e.Config.OutputDir(), filepath.FromSlash(rel))
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// glob expands a doublestar pattern against fsys. Results are sorted and use
// the OS separator. A pattern without wildcards must name an existing file.
func glob(fsys afero.Fs, pattern string) ([]string, error) {
	slashed := filepath.ToSlash(pattern)
	if !hasMeta(slashed) {
		if _, err := fsys.Stat(pattern); err != nil {
			if os.IsNotExist(err) {
				return nil, ferrors.FileNotFoundError("source file not found").
					WithCause(err).
					WithContext("path", pattern).
					Build()
			}
			return nil, err
		}
		return []string{filepath.Clean(pattern)}, nil
	}

	base, rest := doublestar.SplitPattern(slashed)
	scoped := fsys
	if base != "." {
		scoped = afero.NewBasePathFs(fsys, filepath.FromSlash(base))
	}
	matches, err := doublestar.Glob(afero.NewIOFS(scoped), rest, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, filepath.Join(filepath.FromSlash(base), filepath.FromSlash(m)))
	}
	sort.Strings(out)
	return out, nil
}

// expand resolves every pattern in order, dropping duplicates. Wildcard
// patterns that match nothing are logged and skipped.
func (e Env) expand(patterns []string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, p := range patterns {
		matches, err := glob(e.Fs, p)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			e.logger().Warn("Pattern matched no files", "pattern", p)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// writeFile writes data to path creating parent directories.
func writeFile(fsys afero.Fs, path string, data []byte) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create directory").
			WithContext("path", filepath.Dir(path)).
			Build()
	}
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return ferrors.FileSystemError("write file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return nil
}

// walkFiles calls fn for every regular file below root with its slash
// separated path relative to root. A missing root is not an error.
func walkFiles(fsys afero.Fs, root string, fn func(path, rel string) error) error {
	if ok, err := afero.DirExists(fsys, root); err != nil || !ok {
		return err
	}
	return afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		return fn(path, filepath.ToSlash(rel))
	})
}
