package pixelart

import (
	"github.com/deepteams/pixelart/internal/grid"
)

const defaultConfidence = grid.DefaultConfidence

// Grid is the result of DetectGrid.
type Grid struct {
	// DiffX holds the mean RGB difference across each of the Width-1 column
	// gaps, DiffY across each of the Height-1 row gaps.
	DiffX, DiffY []float64

	ScaleX, OffsetX int
	ScaleY, OffsetY int

	// RatioX and RatioY compare the signal inside blocks to the signal on
	// block boundaries. Lower is sharper; values near 1 mean no grid.
	RatioX, RatioY float64

	// Confident reports whether both ratios are below the confidence
	// threshold. A grid that is not confident is still returned; callers
	// usually fall back to scale 1.
	Confident bool
}

// DetectGrid infers the block size and offset of an image that was upscaled
// with nearest-neighbour sampling. A nil opts selects the defaults.
func DetectGrid(buf *PixelBuffer, opts *GridOptions) (*Grid, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	var maxX, maxY int
	if opts != nil {
		maxX, maxY = opts.MaxScaleX, opts.MaxScaleY
	}
	r := grid.Detect(buf.Width, buf.Height, buf.Pix, maxX, maxY)
	return &Grid{
		DiffX:     r.DiffX,
		DiffY:     r.DiffY,
		ScaleX:    r.X.Scale,
		OffsetX:   r.X.Offset,
		ScaleY:    r.Y.Scale,
		OffsetY:   r.Y.Offset,
		RatioX:    r.X.Ratio,
		RatioY:    r.Y.Ratio,
		Confident: r.Confident(opts.confidence()),
	}, nil
}
