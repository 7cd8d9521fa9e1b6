package assets

import (
	"bytes"
	"context"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/sandroweb/html-template-project/internal/logfields"
)

// OptimizeImages re-encodes the PNG, JPEG and GIF files below
// <output>/assets/images and keeps the result only when it is smaller.
// Animated GIFs keep every frame. Other formats, SVG included, are left
// alone. It returns the number of files rewritten.
func OptimizeImages(ctx context.Context, env Env) (int, error) {
	root := env.outPath("assets/images")
	var files []string
	err := walkFiles(env.Fs, root, func(p, _ string) error {
		switch strings.ToLower(filepath.Ext(p)) {
		case ".png", ".jpg", ".jpeg", ".gif":
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	var rewritten atomic.Int64
	var saved atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := optimizeImage(env.Fs, f, env.Config.Images.JPEGQuality)
			if err != nil {
				// A file the codecs cannot read is shipped as is.
				env.logger().Warn("Image left unoptimized", logfields.Path(f), logfields.Error(err))
				return nil
			}
			if n > 0 {
				rewritten.Add(1)
				saved.Add(int64(n))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(rewritten.Load()), err
	}
	env.logger().Info("Images optimized", logfields.Files(int(rewritten.Load())), "bytes_saved", saved.Load())
	return int(rewritten.Load()), nil
}

// optimizeImage returns the number of bytes saved, zero when the original
// was kept.
func optimizeImage(fsys afero.Fs, path string, quality int) (int, error) {
	orig, err := afero.ReadFile(fsys, path)
	if err != nil {
		return 0, err
	}
	var buf bytes.Buffer
	if strings.EqualFold(filepath.Ext(path), ".gif") {
		anim, err := gif.DecodeAll(bytes.NewReader(orig))
		if err != nil {
			return 0, err
		}
		if err := gif.EncodeAll(&buf, anim); err != nil {
			return 0, err
		}
		return keepSmaller(fsys, path, orig, buf.Bytes())
	}

	img, format, err := image.Decode(bytes.NewReader(orig))
	if err != nil {
		return 0, err
	}
	switch format {
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	default:
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return keepSmaller(fsys, path, orig, buf.Bytes())
}

func keepSmaller(fsys afero.Fs, path string, orig, encoded []byte) (int, error) {
	if len(encoded) >= len(orig) {
		return 0, nil
	}
	if err := afero.WriteFile(fsys, path, encoded, 0o644); err != nil {
		return 0, err
	}
	return len(orig) - len(encoded), nil
}
