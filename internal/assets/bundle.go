package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/afero"

	"github.com/sandroweb/html-template-project/internal/config"
	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
	"github.com/sandroweb/html-template-project/internal/logfields"
)

// CompileScripts concatenates and compiles every configured script bundle.
// Development output keeps its formatting; production output is minified
// with console calls removed and an external source map written next to it.
func CompileScripts(ctx context.Context, env Env) (int, error) {
	opts := env.Config.Options
	t := api.TransformOptions{
		Loader:   api.LoaderJS,
		LogLevel: api.LogLevelSilent,
	}
	if !opts.Beautify {
		t.MinifyWhitespace = true
		t.MinifyIdentifiers = true
		t.MinifySyntax = true
	}
	if opts.DropConsole {
		t.Drop = api.DropConsole
	}
	if opts.SourceMap {
		t.Sourcemap = api.SourceMapExternal
	}
	return compileBundles(ctx, env, env.Config.Scripts.Files, t, "//# sourceMappingURL=%s\n")
}

// CompileStyles concatenates and compiles every configured stylesheet
// bundle, compressing it when the mode asks for it.
func CompileStyles(ctx context.Context, env Env) (int, error) {
	opts := env.Config.Options
	t := api.TransformOptions{
		Loader:   api.LoaderCSS,
		LogLevel: api.LogLevelSilent,
	}
	if opts.Compress {
		t.MinifyWhitespace = true
		t.MinifySyntax = true
	}
	if opts.SourceMap {
		t.Sourcemap = api.SourceMapExternal
	}
	return compileBundles(ctx, env, env.Config.Styles.Files, t, "/*# sourceMappingURL=%s */\n")
}

func compileBundles(ctx context.Context, env Env, groups []config.FileGroup, base api.TransformOptions, mapComment string) (int, error) {
	written := 0
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		sources, err := env.expand(g.Src)
		if err != nil {
			return written, err
		}
		src, err := concat(env.Fs, sources)
		if err != nil {
			return written, err
		}

		t := base
		t.Sourcefile = path.Base(g.Dest)
		res := api.Transform(src, t)
		if len(res.Errors) > 0 {
			return written, ferrors.TransformerError("compile " + g.Dest).
				WithCause(errors.New(formatMessages(res.Errors))).
				WithContext("dest", g.Dest).
				Build()
		}
		for _, w := range res.Warnings {
			env.logger().Warn("Compiler warning", logfields.Path(g.Dest), "detail", w.Text)
		}

		code := res.Code
		if len(res.Map) > 0 {
			mapName := path.Base(g.Dest) + ".map"
			if err := writeFile(env.Fs, env.outPath(g.Dest+".map"), res.Map); err != nil {
				return written, err
			}
			code = append(code, fmt.Sprintf(mapComment, mapName)...)
			written++
		}
		if err := writeFile(env.Fs, env.outPath(g.Dest), code); err != nil {
			return written, err
		}
		written++
		env.logger().Debug("Bundle written", logfields.Path(g.Dest), logfields.Files(len(sources)))
	}
	return written, nil
}

func concat(fsys afero.Fs, files []string) (string, error) {
	var buf bytes.Buffer
	for _, f := range files {
		data, err := afero.ReadFile(fsys, f)
		if err != nil {
			return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "read source").
				WithContext("path", f).
				Build()
		}
		buf.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	return buf.String(), nil
}

func formatMessages(msgs []api.Message) string {
	var b strings.Builder
	for _, m := range msgs {
		if m.Location != nil {
			fmt.Fprintf(&b, "%s:%d:%d: ", m.Location.File, m.Location.Line, m.Location.Column)
		}
		b.WriteString(m.Text)
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}
