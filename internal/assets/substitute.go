package assets

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
	"github.com/sandroweb/html-template-project/internal/tokens"
)

// substitutedExts are the emitted text assets rewritten by SubstituteGlobals.
var substitutedExts = map[string]bool{
	".html": true,
	".json": true,
	".css":  true,
	".js":   true,
}

// Globals are the run values written into emitted assets.
type Globals struct {
	BasePath  string
	CacheBust string
	Title     string
}

// SubstituteGlobals rewrites the base path, cache-bust, production URL and
// title tokens in every emitted text asset. Files whose content does not
// change are not rewritten. It returns the number of files changed.
func SubstituteGlobals(ctx context.Context, env Env, v Globals) (int, error) {
	rules := tokens.Reserved(v.BasePath, v.CacheBust, env.Config.Paths.BaseURLProduction)
	rules = append(rules, tokens.Rule{Find: tokens.Wrap(tokens.SiteTitle), Replace: v.Title})

	var files []string
	err := walkFiles(env.Fs, env.Config.OutputDir(), func(p, _ string) error {
		if substitutedExts[strings.ToLower(filepath.Ext(p))] {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return 0, ferrors.WrapError(err, ferrors.CategoryFileSystem, "scan output").Build()
	}

	var changed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := afero.ReadFile(env.Fs, f)
			if err != nil {
				return ferrors.WrapError(err, ferrors.CategoryFileSystem, "read asset").
					WithContext("path", f).
					Build()
			}
			out := tokens.Apply(string(data), rules)
			if out == string(data) {
				return nil
			}
			if err := afero.WriteFile(env.Fs, f, []byte(out), 0o644); err != nil {
				return ferrors.FileSystemError("write asset").
					WithCause(err).
					WithContext("path", f).
					Build()
			}
			changed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(changed.Load()), err
	}
	return int(changed.Load()), nil
}
