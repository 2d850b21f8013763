package main

import (
	"image"
	"image/draw"
	"io"

	"github.com/mattn/go-sixel"

	"github.com/deepteams/pixelart/palette"
)

// maxSixelColors is the largest palette passed through to the sixel
// encoder unchanged; larger images are requantized by the encoder.
const maxSixelColors = 255

// paletted converts img to an *image.Paletted over p when p is small enough
// for a sixel color table. Pixels are already exact palette entries, so the
// conversion is lossless.
func paletted(img image.Image, p palette.Palette) image.Image {
	if len(p) == 0 || len(p) > maxSixelColors {
		return img
	}
	dst := image.NewPaletted(img.Bounds(), p.ColorPalette())
	draw.Draw(dst, dst.Rect, img, img.Bounds().Min, draw.Src)
	return dst
}

// writeSixel renders img as a sixel sequence.
func writeSixel(w io.Writer, img image.Image) error {
	return sixel.NewEncoder(w).Encode(img)
}

// preview shows img on stdout when stdout is a terminal.
func (a *app) preview(img image.Image, p palette.Palette) {
	if !isTerminal(a.stdout) {
		a.log.Debug("preview skipped, stdout is not a terminal")
		return
	}
	if err := writeSixel(a.stdout, paletted(img, p)); err != nil {
		a.log.Warn("preview failed", "error", err)
	}
}
