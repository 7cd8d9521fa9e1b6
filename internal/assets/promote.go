package assets

import (
	"context"
	"path/filepath"
	"strings"

	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
)

// Promote copies the output tree into the configured root directory. Dot
// files such as the build manifest stay behind.
func Promote(ctx context.Context, env Env) (int, error) {
	out := env.Config.OutputDir()
	root := env.Config.Paths.Root

	var pairs [][2]string
	err := walkFiles(env.Fs, out, func(p, rel string) error {
		if hidden(rel) {
			return nil
		}
		pairs = append(pairs, [2]string{p, filepath.Join(root, filepath.FromSlash(rel))})
		return nil
	})
	if err != nil {
		return 0, ferrors.WrapError(err, ferrors.CategoryFileSystem, "scan output").Build()
	}
	if len(pairs) == 0 {
		return 0, ferrors.FileNotFoundError("nothing to promote: output directory is empty").
			WithContext("path", out).
			Build()
	}
	if err := copyFiles(ctx, env.Fs, pairs); err != nil {
		return 0, err
	}
	return len(pairs), nil
}

func hidden(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
