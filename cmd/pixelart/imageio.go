package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// openInput returns an io.ReadCloser for the given path.
// If path is "-", stdin is returned and closing it is a no-op.
func (a *app) openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(a.stdin), nil
	}
	return os.Open(path)
}

// readImage decodes any registered format, raw .rgba.zst included.
func (a *app) readImage(path string) (image.Image, error) {
	in, err := a.openInput(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	img, format, err := image.Decode(in)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	b := img.Bounds()
	a.log.Debug("decoded input", "path", path, "format", format, "width", b.Dx(), "height", b.Dy())
	return img, nil
}

// outputPath returns the explicit output path or <input base><suffix>.png.
func outputPath(input, output, suffix string) string {
	if output != "" {
		return output
	}
	if input == "-" {
		return "output" + suffix + ".png"
	}
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, rawExt)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + suffix + ".png"
}

// writeImage encodes img to path as PNG, or as a raw container when path
// ends in .rgba.zst. "-" writes PNG to stdout. A failed write removes the
// partial file.
func (a *app) writeImage(path string, img image.Image) error {
	encode := png.Encode
	if strings.HasSuffix(strings.ToLower(path), rawExt) {
		encode = encodeRaw
	}
	if path == "-" {
		return png.Encode(a.stdout, img)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(out, img); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return err
	}

	if fi, err := os.Stat(path); err == nil {
		b := img.Bounds()
		a.log.Info("wrote image", "path", path, "width", b.Dx(), "height", b.Dy(), "bytes", fi.Size())
	}
	return nil
}

// upscale enlarges img by factor with nearest-neighbour sampling so every
// pixel becomes a factor×factor block.
func upscale(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Rect, img, b, draw.Src, nil)
	return dst
}
