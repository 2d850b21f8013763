// Package block rebuilds a low-resolution image by averaging the pixels of
// each block of an upscaled one.
package block

import (
	"errors"
	"fmt"
	"image"
)

// AlphaThreshold is the smallest alpha a pixel needs to take part in an
// AlphaAware average.
const AlphaThreshold = 128

// Policy selects how transparent pixels are treated.
type Policy int

const (
	// AlphaAll averages every pixel of a block, alpha included.
	AlphaAll Policy = iota
	// AlphaAware skips pixels below AlphaThreshold. A block without any
	// qualifying pixel becomes fully transparent black.
	AlphaAware
)

func (p Policy) String() string {
	switch p {
	case AlphaAll:
		return "all"
	case AlphaAware:
		return "aware"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ErrInvalidParams is returned for scales, offsets or buffers that cannot
// produce at least one output pixel.
var ErrInvalidParams = errors.New("block: invalid parameters")

// Params describes the block grid.
type Params struct {
	ScaleX, ScaleY   int
	OffsetX, OffsetY int
	Policy           Policy
}

// Output is a rebuilt image.
type Output struct {
	Width, Height int
	Pix           []uint8

	// Crop is the region of the source covered by whole blocks.
	Crop image.Rectangle

	// Transparent counts output pixels left at (0,0,0,0) because no source
	// pixel of their block was opaque enough. Always zero for AlphaAll.
	Transparent int
}

// Size returns the output dimensions for a w×h source.
func (p Params) Size(w, h int) (int, int) {
	if p.ScaleX <= 0 || p.ScaleY <= 0 || p.OffsetX < 0 || p.OffsetY < 0 ||
		p.OffsetX >= w || p.OffsetY >= h {
		return 0, 0
	}
	return (w - p.OffsetX) / p.ScaleX, (h - p.OffsetY) / p.ScaleY
}

// Average downsamples the w×h RGBA image pix to one pixel per block. Every
// output pixel is the rounded mean of its block.
func Average(w, h int, pix []uint8, p Params) (*Output, error) {
	if w <= 0 || h <= 0 || len(pix) != w*h*4 {
		return nil, fmt.Errorf("%w: %dx%d image with %d bytes", ErrInvalidParams, w, h, len(pix))
	}
	if p.Policy != AlphaAll && p.Policy != AlphaAware {
		return nil, fmt.Errorf("%w: unknown alpha policy %d", ErrInvalidParams, int(p.Policy))
	}
	ow, oh := p.Size(w, h)
	if ow == 0 || oh == 0 {
		return nil, fmt.Errorf("%w: scale %dx%d offset (%d,%d) leaves no whole block in %dx%d",
			ErrInvalidParams, p.ScaleX, p.ScaleY, p.OffsetX, p.OffsetY, w, h)
	}

	out := &Output{
		Width:  ow,
		Height: oh,
		Pix:    make([]uint8, ow*oh*4),
		Crop: image.Rect(p.OffsetX, p.OffsetY,
			p.OffsetX+ow*p.ScaleX, p.OffsetY+oh*p.ScaleY),
	}
	stride := w * 4
	for by := 0; by < oh; by++ {
		y0 := p.OffsetY + by*p.ScaleY
		for bx := 0; bx < ow; bx++ {
			x0 := p.OffsetX + bx*p.ScaleX
			var r, g, b, a, n int
			for y := y0; y < y0+p.ScaleY; y++ {
				o := y*stride + x0*4
				for x := 0; x < p.ScaleX; x++ {
					pa := int(pix[o+3])
					if p.Policy == AlphaAll || pa >= AlphaThreshold {
						r += int(pix[o])
						g += int(pix[o+1])
						b += int(pix[o+2])
						a += pa
						n++
					}
					o += 4
				}
			}
			d := (by*ow + bx) * 4
			if n == 0 {
				out.Transparent++
				continue
			}
			half := n / 2
			out.Pix[d] = uint8((r + half) / n)
			out.Pix[d+1] = uint8((g + half) / n)
			out.Pix[d+2] = uint8((b + half) / n)
			out.Pix[d+3] = uint8((a + half) / n)
		}
	}
	return out, nil
}
