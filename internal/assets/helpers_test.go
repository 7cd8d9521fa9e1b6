package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/sandroweb/html-template-project/internal/config"
)

func newEnv(t *testing.T, files map[string]string) Env {
	t.Helper()
	fs := afero.NewMemMapFs()
	for p, content := range files {
		require.NoError(t, afero.WriteFile(fs, p, []byte(content), 0o644))
	}
	return Env{
		Fs: fs,
		Config: &config.ProjectConfig{
			Title: "Acme",
			Paths: config.PathsConfig{
				BasePathLocal:     "http://localhost:8888/",
				BaseURLProduction: "https://acme.example/",
				Source:            "sources",
				Output:            "deploy",
				Root:              "public",
			},
			Images: config.ImagesConfig{JPEGQuality: 80},
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func readFile(t *testing.T, env Env, path string) string {
	t.Helper()
	data, err := afero.ReadFile(env.Fs, path)
	require.NoError(t, err)
	return string(data)
}

func exists(t *testing.T, env Env, path string) bool {
	t.Helper()
	ok, err := afero.Exists(env.Fs, path)
	require.NoError(t, err)
	return ok
}

func solidPNG(t *testing.T, w, h int, c color.Color, level png.CompressionLevel) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: level}
	require.NoError(t, enc.Encode(&buf, img))
	return buf.String()
}
