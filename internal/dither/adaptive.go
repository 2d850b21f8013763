package dither

import (
	"math"

	"github.com/deepteams/pixelart/internal/colorspace"
	"github.com/deepteams/pixelart/internal/pool"
	"github.com/deepteams/pixelart/internal/quant"
)

// Tuning of the adaptive diffusion mode.
const (
	adaptiveCandidates = 3

	densityPenalty  = 0.2
	edgePenalty     = 0.1
	variancePenalty = 0.05

	varianceGain = 4.0
	sobelScale   = 4.0

	diffusionBase  = 0.85
	diffusionSlope = 0.3

	chromaFull = 0.4

	gradientThreshold = 0.3
)

// extraTaps reach further when the neighbourhood has a strong gradient.
// Their weight is gradient/16 each.
var extraTaps = []tap{
	{2, 0, 0},
	{-2, 1, 0},
	{2, 1, 0},
	{0, 2, 0},
}

// channelWeights returns the per-channel diffusion weights for the RGB metric.
func channelWeights() [3]float64 {
	return [3]float64{
		1 + (colorspace.LumaR - 1.0/3),
		1 + (colorspace.LumaG - 1.0/3),
		1 + (colorspace.LumaB - 1.0/3),
	}
}

// lumaPlane is the normalized luma of the source rows, sampled with clamped
// borders.
type lumaPlane struct {
	w, h int
	v    []float64
}

func newLumaPlane(w, h int, pix []uint8) *lumaPlane {
	lp := &lumaPlane{w: w, h: h, v: make([]float64, w*h)}
	for i := range lp.v {
		o := i * 4
		lp.v[i] = colorspace.Luma(float64(pix[o]), float64(pix[o+1]), float64(pix[o+2])) / 255
	}
	return lp
}

func (lp *lumaPlane) at(x, y int) float64 {
	x = min(max(x, 0), lp.w-1)
	y = min(max(y, 0), lp.h-1)
	return lp.v[y*lp.w+x]
}

// variance of the 3x3 neighbourhood, scaled into [0,1].
func (lp *lumaPlane) variance(x, y int) float64 {
	var sum, sq float64
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			v := lp.at(x+dx, y+dy)
			sum += v
			sq += v * v
		}
	}
	mean := sum / 9
	return unit((sq/9 - mean*mean) * varianceGain)
}

// sobel gradient magnitude, scaled into [0,1].
func (lp *lumaPlane) sobel(x, y int) float64 {
	a := lp.at(x-1, y-1)
	b := lp.at(x, y-1)
	c := lp.at(x+1, y-1)
	d := lp.at(x-1, y)
	f := lp.at(x+1, y)
	g := lp.at(x-1, y+1)
	h := lp.at(x, y+1)
	i := lp.at(x+1, y+1)
	gx := (c + 2*f + i) - (a + 2*d + g)
	gy := (g + 2*h + i) - (a + 2*b + c)
	return unit(math.Hypot(gx, gy) / sobelScale)
}

// gradient is the larger of the horizontal and vertical luma differences
// two pixels apart.
func (lp *lumaPlane) gradient(x, y int) float64 {
	gx := math.Abs(lp.at(x+2, y) - lp.at(x-2, y))
	gy := math.Abs(lp.at(x, y+2) - lp.at(x, y-2))
	return max(gx, gy)
}

func unit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// adaptive is a Floyd-Steinberg pass that picks among the closest palette
// entries with a context-aware score and shapes the diffused error by the
// local structure of the image.
func (f *frame) adaptive() {
	w, h := f.w, f.rows
	acc := pool.GetFloat32(w * h * 3)
	defer pool.PutFloat32(acc)

	dens := f.pal.Density(quant.DensityThreshold)
	luma := newLumaPlane(w, h, f.src)
	rgbW := channelWeights()
	amount := float64(f.job.Amount)
	cands := make([]quant.Candidate, 0, adaptiveCandidates)
	extra := make([]tap, len(extraTaps))

	for y := 0; y < h; y++ {
		x0, x1, dir := f.scanRange(y)
		for x := x0; x != x1; x += dir {
			i := y*w + x
			o, e := i*4, i*3
			r := clamp8(float32(f.src[o]) + acc[e])
			g := clamp8(float32(f.src[o+1]) + acc[e+1])
			b := clamp8(float32(f.src[o+2]) + acc[e+2])

			q := f.pal.Project(float64(r), float64(g), float64(b))
			cands = f.pal.TopK(q, adaptiveCandidates, cands)

			variance := luma.variance(x, y)
			edge := luma.sobel(x, y)
			best, bestScore := cands[0].Index, math.Inf(1)
			for _, c := range cands {
				d := c.Dist
				s := d + densityPenalty*dens[c.Index] + edgePenalty*edge*d + variancePenalty*variance*d
				if s < bestScore {
					best, bestScore = c.Index, s
				}
			}
			f.emit(i, best)

			wts := f.residualWeights(best, rgbW)
			scale := amount * (diffusionBase + diffusionSlope*dens[best])
			c := f.pal.Color(best)
			er := (r - float32(c.R)) * float32(scale*wts[0])
			eg := (g - float32(c.G)) * float32(scale*wts[1])
			eb := (b - float32(c.B)) * float32(scale*wts[2])

			spread(acc, w, h, x, y, dir, floydSteinberg, er, eg, eb)
			if grad := luma.gradient(x, y); grad > gradientThreshold {
				tw := float32(grad / 16)
				for k, t := range extraTaps {
					extra[k] = tap{t.dx, t.dy, tw}
				}
				spread(acc, w, h, x, y, dir, extra, er, eg, eb)
			}
		}
	}
}

// residualWeights returns the per-channel diffusion weights for the chosen
// entry.
func (f *frame) residualWeights(idx int, rgbW [3]float64) [3]float64 {
	if f.pal.Metric != quant.MetricOKLab {
		return rgbW
	}
	t := unit(colorspace.Chroma(f.pal.OkA[idx], f.pal.OkB[idx]) / chromaFull)
	lscale := 0.9 + 0.2*f.pal.OkL[idx]
	var out [3]float64
	for c, v := range rgbW {
		out[c] = (v + (1-v)*t) * lscale
	}
	return out
}

// spread distributes a residual over the kernel taps that fall inside the
// frame, with dx mirrored on reversed rows.
func spread(acc []float32, w, h, x, y, dir int, k []tap, er, eg, eb float32) {
	for _, t := range k {
		nx, ny := x+t.dx*dir, y+t.dy
		if nx < 0 || nx >= w || ny >= h {
			continue
		}
		n := (ny*w + nx) * 3
		// Explicit conversions keep the products rounded on their own so
		// results match across architectures with fused multiply-add.
		acc[n] += float32(er * t.w)
		acc[n+1] += float32(eg * t.w)
		acc[n+2] += float32(eb * t.w)
	}
}
