package assets

import (
	"context"

	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
)

// Clean empties the output root, leaving the directory itself in place.
func Clean(ctx context.Context, env Env) error {
	out := env.Config.OutputDir()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := env.Fs.RemoveAll(out); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "remove output directory").
			Fatal().
			WithContext("path", out).
			Build()
	}
	if err := env.Fs.MkdirAll(out, 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create output directory").
			Fatal().
			WithContext("path", out).
			Build()
	}
	return nil
}
