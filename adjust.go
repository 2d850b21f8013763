package pixelart

import (
	"context"
	"fmt"
	"math"

	"github.com/disintegration/imaging"
)

// Posterize keeps the bits most significant bits of each color channel and
// clears the rest. Alpha is copied unchanged. bits must be in [1,8].
func Posterize(buf *PixelBuffer, bits int) (*PixelBuffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	if bits < 1 || bits > 8 {
		return nil, fmt.Errorf("%w: posterize to %d bits", ErrInvalidInput, bits)
	}
	mask := uint8(0xff << (8 - bits))
	out := buf.Clone()
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i] &= mask
		out.Pix[i+1] &= mask
		out.Pix[i+2] &= mask
	}
	return out, nil
}

// ToneOptions describes tone adjustments. The zero value changes nothing.
type ToneOptions struct {
	// Brightness, Contrast and Saturation are percentages in [-100,100].
	Brightness float64
	Contrast   float64
	Saturation float64

	// Gamma correction; values below 1 darken, above 1 lighten. 0 and 1
	// leave the image unchanged.
	Gamma float64
}

func (o ToneOptions) identity() bool {
	return o.Brightness == 0 && o.Contrast == 0 && o.Saturation == 0 && (o.Gamma == 0 || o.Gamma == 1)
}

// AdjustTone applies opts to buf in the order brightness, contrast,
// saturation, gamma. Alpha is preserved.
func AdjustTone(buf *PixelBuffer, opts ToneOptions) (*PixelBuffer, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	for _, v := range []float64{opts.Brightness, opts.Contrast, opts.Saturation} {
		if math.IsNaN(v) || v < -100 || v > 100 {
			return nil, fmt.Errorf("%w: tone adjustment %v outside [-100,100]", ErrInvalidInput, v)
		}
	}
	if math.IsNaN(opts.Gamma) || opts.Gamma < 0 {
		return nil, fmt.Errorf("%w: gamma %v", ErrInvalidInput, opts.Gamma)
	}
	if opts.identity() {
		return buf.Clone(), nil
	}

	img := buf.Image()
	if opts.Brightness != 0 {
		img = imaging.AdjustBrightness(img, opts.Brightness)
	}
	if opts.Contrast != 0 {
		img = imaging.AdjustContrast(img, opts.Contrast)
	}
	if opts.Saturation != 0 {
		img = imaging.AdjustSaturation(img, opts.Saturation)
	}
	if opts.Gamma != 0 && opts.Gamma != 1 {
		img = imaging.AdjustGamma(img, opts.Gamma)
	}
	return FromImage(img), nil
}

// Pixelate downsamples buf by scale in both directions, ignoring pixels
// that are mostly transparent, and maps the result onto the palette of opts.
func Pixelate(ctx context.Context, buf *PixelBuffer, scale int, opts *QuantizeOptions) (*PixelBuffer, error) {
	small, err := Rebuild(buf, RebuildOptions{ScaleX: scale, ScaleY: scale, Alpha: AlphaAware})
	if err != nil {
		return nil, err
	}
	return Quantize(ctx, small.PixelBuffer, opts)
}
