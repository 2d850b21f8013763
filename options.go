package pixelart

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/deepteams/pixelart/internal/block"
	"github.com/deepteams/pixelart/internal/dither"
	"github.com/deepteams/pixelart/internal/quant"
	"github.com/deepteams/pixelart/palette"
)

// Algorithm selects how pixels are mapped onto the palette.
type Algorithm = dither.Algorithm

const (
	// None maps every pixel to its nearest palette entry.
	None = dither.None
	// Ordered4 perturbs pixels with a 4x4 Bayer matrix before matching.
	Ordered4 = dither.Ordered4
	// Ordered8 perturbs pixels with an 8x8 Bayer matrix before matching.
	Ordered8 = dither.Ordered8
	// FloydSteinberg diffuses the full quantization error to four
	// neighbours.
	FloydSteinberg = dither.FloydSteinberg
	// Atkinson diffuses 6/8 of the error to six neighbours, which lightens
	// light areas and keeps more contrast.
	Atkinson = dither.Atkinson
	// OptimisedCustom is a Floyd-Steinberg variant that chooses among the
	// three closest entries with a score that accounts for palette density
	// and local image structure.
	OptimisedCustom = dither.OptimisedCustom
)

// Distance selects the color difference metric.
type Distance = quant.Metric

const (
	RGB   = quant.MetricRGB
	OKLab = quant.MetricOKLab
)

// AlphaPolicy selects how transparent pixels are treated when rebuilding.
type AlphaPolicy = block.Policy

const (
	AlphaAll   = block.AlphaAll
	AlphaAware = block.AlphaAware
)

// NoCache disables the nearest-color lookup table when used as
// QuantizeOptions.CacheBits.
const NoCache = dither.NoCache

// ParseAlgorithm returns the algorithm with the given name. It accepts the
// names printed by Algorithm.String and "fs" for Floyd-Steinberg.
func ParseAlgorithm(s string) (Algorithm, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "fs" {
		return FloydSteinberg, nil
	}
	for a := None; a <= OptimisedCustom; a++ {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidInput, s)
}

// ParseDistance returns the metric named "rgb" or "oklab".
func ParseDistance(s string) (Distance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rgb":
		return RGB, nil
	case "oklab":
		return OKLab, nil
	}
	return 0, fmt.Errorf("%w: unknown distance %q", ErrInvalidInput, s)
}

// ParseAlphaPolicy returns the policy named "all" or "aware".
func ParseAlphaPolicy(s string) (AlphaPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all":
		return AlphaAll, nil
	case "aware":
		return AlphaAware, nil
	}
	return 0, fmt.Errorf("%w: unknown alpha policy %q", ErrInvalidInput, s)
}

// QuantizeOptions controls palette mapping.
type QuantizeOptions struct {
	// Palette to map onto. Must not be empty.
	Palette palette.Palette

	// Algorithm (default FloydSteinberg).
	Algorithm Algorithm

	// Distance metric (default RGB).
	Distance Distance

	// OrderedStrength in [0,1] scales the Bayer perturbation of the ordered
	// algorithms (default 1).
	OrderedStrength float64

	// Serpentine alternates the scan direction of error diffusion per row
	// (default true).
	Serpentine bool

	// DitherAmount in [0,1] scales the perturbation or diffused error of
	// every algorithm except None (default 1).
	DitherAmount float64

	// CacheBits is the number of bits per channel of the nearest-color
	// lookup table. 0 selects the default of 5, NoCache disables the table.
	// The table answers every color of a bucket with the entry found for the
	// first color looked up in that bucket.
	CacheBits int

	// PreserveAlpha copies source alpha into the output. When false every
	// output pixel is opaque.
	PreserveAlpha bool

	// Logger receives debug output from the package-level helpers that
	// create their own Quantizer. Nil discards.
	Logger *slog.Logger
}

// DefaultQuantizeOptions returns the options used when nil is passed: the
// Full palette, serpentine Floyd-Steinberg with RGB distance.
func DefaultQuantizeOptions() *QuantizeOptions {
	return &QuantizeOptions{
		Palette:         palette.Full.Clone(),
		Algorithm:       FloydSteinberg,
		Distance:        RGB,
		OrderedStrength: 1,
		Serpentine:      true,
		DitherAmount:    1,
	}
}

// job builds the dither job for rows [y0,y1) of buf.
func (o *QuantizeOptions) job(buf *PixelBuffer, y0, y1 int) *dither.Job {
	return &dither.Job{
		Width:           buf.Width,
		Height:          buf.Height,
		YStart:          y0,
		YEnd:            y1,
		Pix:             buf.rows(y0, y1),
		Palette:         o.Palette,
		Algorithm:       o.Algorithm,
		Metric:          o.Distance,
		OrderedStrength: o.OrderedStrength,
		Serpentine:      o.Serpentine,
		Amount:          o.DitherAmount,
		CacheBits:       o.CacheBits,
		PreserveAlpha:   o.PreserveAlpha,
	}
}

// GridOptions controls grid detection. The zero value selects the defaults.
type GridOptions struct {
	// MaxScaleX and MaxScaleY bound the block sizes tried per axis. Zero
	// selects max(2, n/4) for an axis of n pixels.
	MaxScaleX, MaxScaleY int

	// Confidence is the ratio below which both axes must fall for the
	// detection to be trusted (default 0.5).
	Confidence float64
}

func (o *GridOptions) confidence() float64 {
	if o == nil || o.Confidence <= 0 {
		return defaultConfidence
	}
	return o.Confidence
}

// RebuildOptions places the block grid for Rebuild.
type RebuildOptions struct {
	ScaleX, ScaleY   int
	OffsetX, OffsetY int
	Alpha            AlphaPolicy
}
