package pixelart

import (
	"errors"
	"fmt"
	"image"

	"github.com/deepteams/pixelart/internal/block"
)

// Rebuilt is a low-resolution image reconstructed from an upscaled one.
type Rebuilt struct {
	*PixelBuffer

	// Crop is the region of the source covered by whole blocks.
	Crop image.Rectangle

	// Transparent counts output pixels whose block had no pixel with alpha
	// of at least 128 under AlphaAware.
	Transparent int
}

// Rebuild averages each block of the grid described by opts into one pixel.
// Partial blocks at the right and bottom edges are dropped.
func Rebuild(buf *PixelBuffer, opts RebuildOptions) (*Rebuilt, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	out, err := block.Average(buf.Width, buf.Height, buf.Pix, block.Params{
		ScaleX:  opts.ScaleX,
		ScaleY:  opts.ScaleY,
		OffsetX: opts.OffsetX,
		OffsetY: opts.OffsetY,
		Policy:  opts.Alpha,
	})
	if err != nil {
		if errors.Is(err, block.ErrInvalidParams) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("pixelart: rebuild: %w", err)
	}
	return &Rebuilt{
		PixelBuffer: &PixelBuffer{Width: out.Width, Height: out.Height, Pix: out.Pix},
		Crop:        out.Crop,
		Transparent: out.Transparent,
	}, nil
}

// Recover detects the grid of buf and rebuilds its low-resolution source.
// When the detection is not confident the image is rebuilt at scale 1,
// which copies it with the alpha policy applied. The returned Grid is the
// raw detection either way.
func Recover(buf *PixelBuffer, opts *GridOptions, alpha AlphaPolicy) (*Rebuilt, *Grid, error) {
	g, err := DetectGrid(buf, opts)
	if err != nil {
		return nil, nil, err
	}
	ro := RebuildOptions{ScaleX: 1, ScaleY: 1, Alpha: alpha}
	if g.Confident {
		ro = RebuildOptions{
			ScaleX:  g.ScaleX,
			ScaleY:  g.ScaleY,
			OffsetX: g.OffsetX,
			OffsetY: g.OffsetY,
			Alpha:   alpha,
		}
	}
	r, err := Rebuild(buf, ro)
	if err != nil {
		return nil, g, err
	}
	return r, g, nil
}
