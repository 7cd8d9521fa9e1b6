package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/sandroweb/html-template-project/internal/config"
	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
	"github.com/sandroweb/html-template-project/internal/logfields"
)

// SpriteCell is the placement of one source image in a sheet.
type SpriteCell struct {
	Name          string
	X, Y          int
	Width, Height int
}

// GenerateSprites builds every configured sprite sheet and its stylesheet.
// Sheets are packed top-down in file name order.
func GenerateSprites(ctx context.Context, env Env) (int, error) {
	written := 0
	for _, s := range env.Config.Sprites {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, err := generateSprite(env, s)
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func generateSprite(env Env, s config.SpriteConfig) (int, error) {
	files, err := glob(env.Fs, s.Src)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		env.logger().Warn("Sprite has no source images", "sprite", s.Name, "pattern", s.Src)
		return 0, nil
	}

	images := make([]image.Image, 0, len(files))
	cells := make([]SpriteCell, 0, len(files))
	width, y := 0, 0
	for i, f := range files {
		img, err := decodePNG(env.Fs, f)
		if err != nil {
			return 0, err
		}
		if i > 0 {
			y += s.Padding
		}
		b := img.Bounds()
		cells = append(cells, SpriteCell{
			Name:   strings.TrimSuffix(filepath.Base(f), filepath.Ext(f)),
			Y:      y,
			Width:  b.Dx(),
			Height: b.Dy(),
		})
		images = append(images, img)
		width = max(width, b.Dx())
		y += b.Dy()
	}

	sheet := image.NewNRGBA(image.Rect(0, 0, width, y))
	for i, img := range images {
		c := cells[i]
		draw.Draw(sheet, image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height), img, img.Bounds().Min, draw.Src)
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, sheet); err != nil {
		return 0, ferrors.WrapError(err, ferrors.CategoryTransformer, "encode sprite sheet").
			Fatal().
			WithContext("sprite", s.Name).
			Build()
	}
	if err := writeFile(env.Fs, env.outPath(s.Dest), buf.Bytes()); err != nil {
		return 0, err
	}
	if err := writeFile(env.Fs, s.DestCSS, []byte(SpriteCSS(s.Name, s.ImgPath, width, y, cells))); err != nil {
		return 1, err
	}
	env.logger().Debug("Sprite generated", "sprite", s.Name, logfields.Files(len(files)), logfields.Path(s.Dest))
	return 2, nil
}

func decodePNG(fsys afero.Fs, path string) (image.Image, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "open sprite image").
			WithContext("path", path).
			Build()
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryTransformer, "decode sprite image").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return img, nil
}

// SpriteCSS renders the stylesheet for a sheet: one shared class carrying
// the image and one class per cell.
func SpriteCSS(name, imgPath string, width, height int, cells []SpriteCell) string {
	var b strings.Builder
	fmt.Fprintf(&b, ".%s {\n  background-image: url('%s');\n  background-repeat: no-repeat;\n  background-size: %dpx %dpx;\n}\n",
		name, imgPath, width, height)
	for _, c := range cells {
		fmt.Fprintf(&b, ".%s-%s {\n  background-position: %s %s;\n  width: %dpx;\n  height: %dpx;\n}\n",
			name, c.Name, offset(c.X), offset(c.Y), c.Width, c.Height)
	}
	return b.String()
}

func offset(v int) string {
	if v == 0 {
		return "0"
	}
	return fmt.Sprintf("-%dpx", v)
}
