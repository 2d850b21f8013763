// Package dither maps pixels onto a fixed palette.
//
// A Job describes one unit of work: a horizontal range of scanlines of a
// frame, a palette, and the algorithm parameters. Run executes it and returns
// a Result whose pixels are all exact palette entries. Jobs share no mutable
// state: each run prepares its own palette view, lookup cache and error
// accumulator, so any number of jobs may execute concurrently.
package dither

import (
	"errors"
	"fmt"
	"math"

	"github.com/deepteams/pixelart/internal/pool"
	"github.com/deepteams/pixelart/internal/quant"
	"github.com/deepteams/pixelart/palette"
)

// Algorithm selects the quantization strategy.
type Algorithm int

const (
	None Algorithm = iota
	Ordered4
	Ordered8
	FloydSteinberg
	Atkinson
	OptimisedCustom
)

var algorithmNames = [...]string{
	None:            "none",
	Ordered4:        "ordered4",
	Ordered8:        "ordered8",
	FloydSteinberg:  "floyd-steinberg",
	Atkinson:        "atkinson",
	OptimisedCustom: "optimised-custom",
}

func (a Algorithm) String() string {
	if a >= 0 && int(a) < len(algorithmNames) {
		return algorithmNames[a]
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// Valid reports whether a names a known algorithm.
func (a Algorithm) Valid() bool {
	return a >= None && a <= OptimisedCustom
}

// StripSafe reports whether every output pixel depends only on its own
// source pixel and coordinates, so that a frame may be split into strips
// processed independently. Error diffusion carries state across the whole
// frame and is not strip safe.
func (a Algorithm) StripSafe() bool {
	return a == None || a == Ordered4 || a == Ordered8
}

// ErrInvalidJob is returned by Run for malformed jobs. No pixel is processed
// when it is returned.
var ErrInvalidJob = errors.New("dither: invalid job")

// NoCache disables the nearest-color lookup table when used as CacheBits.
const NoCache = -1

// Job is one quantization task.
type Job struct {
	// Width and Height of the whole frame.
	Width, Height int

	// YStart and YEnd delimit the scanlines [YStart,YEnd) this job produces.
	YStart, YEnd int

	// Pix holds the RGBA source rows [YStart,YEnd), Width*4 bytes each.
	// The job only reads it.
	Pix []uint8

	Palette   palette.Palette
	Algorithm Algorithm
	Metric    quant.Metric

	// OrderedStrength in [0,1] scales the Bayer perturbation.
	OrderedStrength float64

	// Serpentine reverses the scan direction of odd rows during diffusion.
	Serpentine bool

	// Amount in [0,1] scales the perturbation or diffused error overall.
	Amount float64

	// CacheBits per channel of the lookup table. Zero selects
	// quant.DefaultCacheBits, NoCache disables it.
	CacheBits int

	// PreserveAlpha copies the source alpha through instead of writing 255.
	PreserveAlpha bool
}

// Result is the output of a Job: Width*(YEnd-YStart) RGBA pixels.
type Result struct {
	YStart, YEnd int
	Pix          []uint8
}

// Rows returns the number of scanlines in r.
func (r *Result) Rows() int {
	return r.YEnd - r.YStart
}

// Validate checks the shape and parameters of j.
func (j *Job) Validate() error {
	switch {
	case j.Width <= 0 || j.Height <= 0:
		return fmt.Errorf("%w: frame %dx%d", ErrInvalidJob, j.Width, j.Height)
	case j.YStart < 0 || j.YEnd > j.Height || j.YStart >= j.YEnd:
		return fmt.Errorf("%w: row range [%d,%d) outside frame of %d rows", ErrInvalidJob, j.YStart, j.YEnd, j.Height)
	case len(j.Pix) != j.Width*(j.YEnd-j.YStart)*4:
		return fmt.Errorf("%w: %d bytes for %dx%d pixels", ErrInvalidJob, len(j.Pix), j.Width, j.YEnd-j.YStart)
	case len(j.Palette) == 0:
		return fmt.Errorf("%w: %v", ErrInvalidJob, quant.ErrEmptyPalette)
	case !j.Algorithm.Valid():
		return fmt.Errorf("%w: unknown algorithm %d", ErrInvalidJob, int(j.Algorithm))
	case !j.Algorithm.StripSafe() && (j.YStart != 0 || j.YEnd != j.Height):
		return fmt.Errorf("%w: %v needs the whole frame, got rows [%d,%d)", ErrInvalidJob, j.Algorithm, j.YStart, j.YEnd)
	case !inUnit(j.OrderedStrength):
		return fmt.Errorf("%w: ordered strength %v outside [0,1]", ErrInvalidJob, j.OrderedStrength)
	case !inUnit(j.Amount):
		return fmt.Errorf("%w: dither amount %v outside [0,1]", ErrInvalidJob, j.Amount)
	}
	if err := j.Palette.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	return nil
}

func inUnit(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// frame is the per-run state shared by the algorithm implementations.
type frame struct {
	job   *Job
	pal   *quant.Prepared
	cache *quant.Cache
	w     int
	rows  int
	src   []uint8
	dst   []uint8
}

// Run executes j.
func Run(j *Job) (*Result, error) {
	if err := j.Validate(); err != nil {
		return nil, err
	}
	pal, err := quant.Prepare(j.Palette, j.Metric)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	f := &frame{
		job:  j,
		pal:  pal,
		w:    j.Width,
		rows: j.YEnd - j.YStart,
		src:  j.Pix,
		dst:  pool.Get(len(j.Pix)),
	}
	if j.CacheBits != NoCache {
		bits := j.CacheBits
		if bits == 0 {
			bits = quant.DefaultCacheBits
		}
		f.cache = quant.NewCache(bits)
	}

	switch j.Algorithm {
	case None:
		f.direct()
	case Ordered4:
		f.ordered(&bayer4)
	case Ordered8:
		f.ordered(&bayer8)
	case FloydSteinberg:
		f.diffuse(floydSteinberg)
	case Atkinson:
		f.diffuse(atkinson)
	case OptimisedCustom:
		f.adaptive()
	}
	return &Result{YStart: j.YStart, YEnd: j.YEnd, Pix: f.dst}, nil
}

// emit writes palette entry idx as output pixel i (pixel index, not byte).
func (f *frame) emit(i, idx int) {
	o := i * 4
	c := f.pal.Color(idx)
	f.dst[o] = c.R
	f.dst[o+1] = c.G
	f.dst[o+2] = c.B
	if f.job.PreserveAlpha {
		f.dst[o+3] = f.src[o+3]
	} else {
		f.dst[o+3] = 255
	}
}

func (f *frame) direct() {
	n := f.w * f.rows
	for i := 0; i < n; i++ {
		o := i * 4
		idx := f.pal.Nearest(int(f.src[o]), int(f.src[o+1]), int(f.src[o+2]), f.cache)
		f.emit(i, idx)
	}
}

// round8 rounds a channel value in [0,255] to the nearest integer, halves
// away from zero.
func round8(v float32) int {
	return int(math.Floor(float64(v) + 0.5))
}

func clamp8(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
