// Package quant resolves colors to palette entries.
//
// A Prepared palette is derived once per job from a palette.Palette and a
// distance metric. It answers nearest-entry queries, optionally through a
// Cache, and exposes the candidate ranking and palette density analysis used
// by the adaptive diffusion mode.
package quant

import (
	"errors"
	"fmt"
	"math"

	"github.com/deepteams/pixelart/internal/colorspace"
	"github.com/deepteams/pixelart/palette"
)

// Metric selects the space distances are measured in.
type Metric int

const (
	// MetricRGB is Euclidean distance on 8-bit sRGB channels.
	MetricRGB Metric = iota
	// MetricOKLab is Euclidean distance in OKLab.
	MetricOKLab
)

func (m Metric) String() string {
	switch m {
	case MetricRGB:
		return "rgb"
	case MetricOKLab:
		return "oklab"
	default:
		return fmt.Sprintf("Metric(%d)", int(m))
	}
}

// ErrEmptyPalette is returned when preparing a palette with no entries.
var ErrEmptyPalette = errors.New("quant: empty palette")

// Prepared is the per-job view of a palette.
type Prepared struct {
	Metric Metric

	// Channels of every entry, 0..255.
	R, G, B []float64

	// OKLab coordinates of every entry. Only populated for MetricOKLab.
	OkL, OkA, OkB []float64

	colors palette.Palette
}

// Prepare flattens p for the given metric. The palette is not retained
// beyond a private copy.
func Prepare(p palette.Palette, m Metric) (*Prepared, error) {
	if len(p) == 0 {
		return nil, ErrEmptyPalette
	}
	if m != MetricRGB && m != MetricOKLab {
		return nil, fmt.Errorf("quant: unknown metric %d", int(m))
	}
	n := len(p)
	pp := &Prepared{
		Metric: m,
		R:      make([]float64, n),
		G:      make([]float64, n),
		B:      make([]float64, n),
		colors: p.Clone(),
	}
	for i, c := range p {
		pp.R[i] = float64(c.R)
		pp.G[i] = float64(c.G)
		pp.B[i] = float64(c.B)
	}
	if m == MetricOKLab {
		pp.OkL = make([]float64, n)
		pp.OkA = make([]float64, n)
		pp.OkB = make([]float64, n)
		for i, c := range p {
			pp.OkL[i], pp.OkA[i], pp.OkB[i] = colorspace.OKLab(c.R, c.G, c.B)
		}
	}
	return pp, nil
}

// Len returns the number of entries.
func (p *Prepared) Len() int {
	return len(p.R)
}

// Color returns entry i.
func (p *Prepared) Color(i int) palette.RGB {
	return p.colors[i]
}

// Nearest returns the index of the closest entry to (r,g,b), whose channels
// must lie in [0,255]. Exact ties go to the lowest index.
//
// With a non-nil cache the bucket of (r,g,b) is consulted first and a miss is
// filled with the result of the full scan, so later colors of the same bucket
// receive the same answer even when another entry would be closer to them.
func (p *Prepared) Nearest(r, g, b int, c *Cache) int {
	if c == nil {
		return p.scan(r, g, b)
	}
	key := c.Key(r, g, b)
	if idx := c.Lookup(key); idx >= 0 {
		return idx
	}
	idx := p.scan(r, g, b)
	c.Store(key, idx)
	return idx
}

func (p *Prepared) scan(r, g, b int) int {
	best := 0
	bestDist := math.Inf(1)
	if p.Metric == MetricOKLab {
		ql, qa, qb := colorspace.OKLab(uint8(r), uint8(g), uint8(b))
		for i := range p.OkL {
			dl := ql - p.OkL[i]
			da := qa - p.OkA[i]
			db := qb - p.OkB[i]
			d := dl*dl + da*da + db*db
			if d < bestDist {
				bestDist = d
				best = i
			}
		}
		return best
	}
	fr, fg, fb := float64(r), float64(g), float64(b)
	for i := range p.R {
		dr := fr - p.R[i]
		dg := fg - p.G[i]
		db := fb - p.B[i]
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// Point is a color expressed in the metric's normalized space: RGB channels
// divided by 255, or OKLab coordinates.
type Point struct {
	X, Y, Z float64
}

// Project maps an sRGB color with channels in [0,255] into the normalized
// space of the metric.
func (p *Prepared) Project(r, g, b float64) Point {
	if p.Metric == MetricOKLab {
		l, a, bb := colorspace.OKLabFloat(r, g, b)
		return Point{l, a, bb}
	}
	return Point{r / 255, g / 255, b / 255}
}

func (p *Prepared) point(i int) Point {
	if p.Metric == MetricOKLab {
		return Point{p.OkL[i], p.OkA[i], p.OkB[i]}
	}
	return Point{p.R[i] / 255, p.G[i] / 255, p.B[i] / 255}
}

// Distance is the Euclidean distance between q and entry i in the
// normalized space.
func (p *Prepared) Distance(i int, q Point) float64 {
	e := p.point(i)
	dx := q.X - e.X
	dy := q.Y - e.Y
	dz := q.Z - e.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Candidate is a palette entry with its distance to a query.
type Candidate struct {
	Index int
	Dist  float64
}

// TopK returns the k entries closest to q in ascending distance, appended to
// dst[:0]. Equal distances keep ascending index order.
func (p *Prepared) TopK(q Point, k int, dst []Candidate) []Candidate {
	dst = dst[:0]
	if k <= 0 {
		return dst
	}
	for i := 0; i < p.Len(); i++ {
		d := p.Distance(i, q)
		if len(dst) == k && d >= dst[k-1].Dist {
			continue
		}
		// Insert after every candidate that is not farther.
		pos := len(dst)
		for pos > 0 && dst[pos-1].Dist > d {
			pos--
		}
		if len(dst) < k {
			dst = append(dst, Candidate{})
		}
		copy(dst[pos+1:], dst[pos:len(dst)-1])
		dst[pos] = Candidate{Index: i, Dist: d}
	}
	return dst
}

// DensityThreshold is the neighbourhood radius of the density analysis.
const DensityThreshold = 0.2

const densityEpsilon = 1e-3

// Density estimates how crowded the palette is around each entry: the sum of
// inverse distances to the other entries closer than threshold, rescaled so
// that the most crowded entry has density 1. Isolated palettes yield zeros.
func (p *Prepared) Density(threshold float64) []float64 {
	n := p.Len()
	dens := make([]float64, n)
	maxD := 0.0
	for i := 0; i < n; i++ {
		pi := p.point(i)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			d := p.Distance(j, pi)
			if d < threshold {
				dens[i] += 1 / (d + densityEpsilon)
			}
		}
		if dens[i] > maxD {
			maxD = dens[i]
		}
	}
	if maxD > 0 {
		for i := range dens {
			dens[i] /= maxD
		}
	}
	return dens
}
