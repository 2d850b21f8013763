// Package grid infers the block size and offset of an upscaled pixel-art
// image.
//
// Blocky images show strong color changes between neighbouring pixels that
// sit on block boundaries and almost none inside blocks. Signals collapses
// the image into one mean difference per column gap and per row gap, and
// DetectAxis searches the (scale, offset) pair whose boundaries explain that
// signal best.
package grid

import "math"

const (
	// Lambda weighs the absolute boundary strength against the ratio so
	// that large scales with few, weak boundaries do not win by default.
	Lambda = 0.05

	// DefaultConfidence is the ratio below which a detection is trusted.
	DefaultConfidence = 0.5

	ratioEpsilon = 1e-6
)

// Axis is the best hypothesis found for one axis.
type Axis struct {
	Scale  int
	Offset int

	// Ratio is nonBoundaryMean / (boundaryMean + ε). Values near zero mean
	// sharp block edges, values near one mean no periodic structure.
	Ratio float64

	// BoundaryMean is the mean signal at boundary positions.
	BoundaryMean float64

	// Score is Ratio - Lambda*ln(1+BoundaryMean); lower is better.
	Score float64
}

// Result holds the detection for both axes.
type Result struct {
	DiffX []float64
	DiffY []float64
	X     Axis
	Y     Axis
}

// Confident reports whether both axes have a ratio below threshold.
func (r *Result) Confident(threshold float64) bool {
	return r.X.Ratio < threshold && r.Y.Ratio < threshold
}

// none is returned when no hypothesis could be tested.
var none = Axis{Scale: 1, Offset: 0, Ratio: 1, Score: 1}

// Signals computes the mean absolute RGB difference across every column gap
// (diffX, length w-1, averaged over rows) and row gap (diffY, length h-1,
// averaged over columns). pix is RGBA, row-major, len w*h*4.
func Signals(w, h int, pix []uint8) (diffX, diffY []float64) {
	if w > 1 {
		diffX = make([]float64, w-1)
	}
	if h > 1 {
		diffY = make([]float64, h-1)
	}
	stride := w * 4
	for y := 0; y < h; y++ {
		row := pix[y*stride : y*stride+stride]
		for x := 0; x < w-1; x++ {
			o := x * 4
			diffX[x] += float64(absDiff(row[o], row[o+4]) +
				absDiff(row[o+1], row[o+5]) +
				absDiff(row[o+2], row[o+6]))
		}
		if y == h-1 {
			continue
		}
		next := pix[(y+1)*stride : (y+1)*stride+stride]
		sum := 0
		for o := 0; o < stride; o += 4 {
			sum += absDiff(row[o], next[o]) +
				absDiff(row[o+1], next[o+1]) +
				absDiff(row[o+2], next[o+2])
		}
		diffY[y] = float64(sum)
	}
	for x := range diffX {
		diffX[x] /= float64(h)
	}
	for y := range diffY {
		diffY[y] /= float64(w)
	}
	return diffX, diffY
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// DefaultMaxScale bounds the search for an axis of n pixels.
func DefaultMaxScale(n int) int {
	return max(2, n/4)
}

// DetectAxis searches scales 2..maxScale and offsets 0..s-1 for the lowest
// score. Position i of the signal is a boundary when (i-d) mod s == s-1.
// Ties keep the smaller scale, then the smaller offset.
// A signal without any variation yields the scale 1 hypothesis.
func DetectAxis(signal []float64, maxScale int) Axis {
	if flat(signal) {
		return none
	}
	best := none
	found := false
	for s := 2; s <= maxScale; s++ {
		for d := 0; d < s; d++ {
			a, ok := evaluate(signal, s, d)
			if !ok {
				continue
			}
			if !found || a.Score < best.Score {
				best = a
				found = true
			}
		}
	}
	return best
}

func flat(signal []float64) bool {
	for _, v := range signal {
		if v > ratioEpsilon {
			return false
		}
	}
	return true
}

func evaluate(signal []float64, s, d int) (Axis, bool) {
	var bSum, nSum float64
	var bN, nN int
	for i, v := range signal {
		if ((i-d)%s+s)%s == s-1 {
			bSum += v
			bN++
		} else {
			nSum += v
			nN++
		}
	}
	if bN == 0 || nN == 0 {
		return Axis{}, false
	}
	bMean := bSum / float64(bN)
	nMean := nSum / float64(nN)
	ratio := nMean / (bMean + ratioEpsilon)
	return Axis{
		Scale:        s,
		Offset:       d,
		Ratio:        ratio,
		BoundaryMean: bMean,
		Score:        ratio - Lambda*math.Log1p(bMean),
	}, true
}

// Detect computes both signals and searches each axis independently. A max
// scale <= 0 selects DefaultMaxScale for that axis.
func Detect(w, h int, pix []uint8, maxScaleX, maxScaleY int) *Result {
	if maxScaleX <= 0 {
		maxScaleX = DefaultMaxScale(w)
	}
	if maxScaleY <= 0 {
		maxScaleY = DefaultMaxScale(h)
	}
	dx, dy := Signals(w, h, pix)
	return &Result{
		DiffX: dx,
		DiffY: dy,
		X:     DetectAxis(dx, maxScaleX),
		Y:     DetectAxis(dy, maxScaleY),
	}
}
