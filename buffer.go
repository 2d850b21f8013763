package pixelart

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ErrInvalidInput is returned for empty palettes, non-positive dimensions,
// buffers whose length does not match their dimensions and out of range
// parameters. Errors from the internal stages wrap it as well, so errors.Is
// works on every rejected request.
var ErrInvalidInput = errors.New("pixelart: invalid input")

// PixelBuffer is a rectangular grid of non-premultiplied 8-bit RGBA samples
// stored row-major with no padding.
type PixelBuffer struct {
	Width, Height int
	Pix           []uint8
}

// NewPixelBuffer allocates a transparent w×h buffer.
func NewPixelBuffer(w, h int) *PixelBuffer {
	return &PixelBuffer{Width: w, Height: h, Pix: make([]uint8, w*h*4)}
}

// FromImage copies img into a new buffer whose origin is the image's
// top-left corner.
func FromImage(img image.Image) *PixelBuffer {
	b := img.Bounds()
	buf := NewPixelBuffer(b.Dx(), b.Dy())
	if src, ok := img.(*image.NRGBA); ok {
		rowLen := buf.Width * 4
		for y := 0; y < buf.Height; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(buf.Pix[y*rowLen:(y+1)*rowLen], src.Pix[off:off+rowLen])
		}
		return buf
	}
	dst := &image.NRGBA{Pix: buf.Pix, Stride: buf.Width * 4, Rect: image.Rect(0, 0, buf.Width, buf.Height)}
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return buf
}

// Image returns a copy of the buffer as an *image.NRGBA.
func (b *PixelBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	copy(img.Pix, b.Pix)
	return img
}

// Clone returns a deep copy of b.
func (b *PixelBuffer) Clone() *PixelBuffer {
	return &PixelBuffer{Width: b.Width, Height: b.Height, Pix: append([]uint8(nil), b.Pix...)}
}

// Validate checks that the dimensions are positive and match the sample
// count.
func (b *PixelBuffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidInput)
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidInput, b.Width, b.Height)
	}
	if len(b.Pix) != b.Width*b.Height*4 {
		return fmt.Errorf("%w: %d bytes for %dx%d pixels", ErrInvalidInput, len(b.Pix), b.Width, b.Height)
	}
	return nil
}

// rows returns the samples of scanlines [y0,y1) without copying.
func (b *PixelBuffer) rows(y0, y1 int) []uint8 {
	return b.Pix[y0*b.Width*4 : y1*b.Width*4]
}
