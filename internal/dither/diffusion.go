package dither

import "github.com/deepteams/pixelart/internal/pool"

// tap is one neighbour of an error diffusion kernel, relative to the current
// pixel for a left-to-right scan.
type tap struct {
	dx, dy int
	w      float32
}

var floydSteinberg = []tap{
	{1, 0, 7.0 / 16},
	{-1, 1, 3.0 / 16},
	{0, 1, 5.0 / 16},
	{1, 1, 1.0 / 16},
}

// atkinson spreads only 6/8 of the error; the rest is dropped.
var atkinson = []tap{
	{1, 0, 1.0 / 8},
	{2, 0, 1.0 / 8},
	{-1, 1, 1.0 / 8},
	{0, 1, 1.0 / 8},
	{1, 1, 1.0 / 8},
	{0, 2, 1.0 / 8},
}

// kernelWeight is the fraction of the residual a kernel redistributes.
func kernelWeight(k []tap) float32 {
	var s float32
	for _, t := range k {
		s += t.w
	}
	return s
}

// scanRange returns the first x, the end x and the step for row y.
func (f *frame) scanRange(y int) (x0, x1, dir int) {
	if f.job.Serpentine && y%2 == 1 {
		return f.w - 1, -1, -1
	}
	return 0, f.w, 1
}

// diffuse runs classic error diffusion over the whole frame in raster
// order.
func (f *frame) diffuse(k []tap) {
	w, h := f.w, f.rows
	acc := pool.GetFloat32(w * h * 3)
	defer pool.PutFloat32(acc)

	amount := float32(f.job.Amount)
	for y := 0; y < h; y++ {
		x0, x1, dir := f.scanRange(y)
		for x := x0; x != x1; x += dir {
			i := y*w + x
			o, e := i*4, i*3
			r := clamp8(float32(f.src[o]) + acc[e])
			g := clamp8(float32(f.src[o+1]) + acc[e+1])
			b := clamp8(float32(f.src[o+2]) + acc[e+2])

			idx := f.pal.Nearest(round8(r), round8(g), round8(b), f.cache)
			f.emit(i, idx)

			c := f.pal.Color(idx)
			er := (r - float32(c.R)) * amount
			eg := (g - float32(c.G)) * amount
			eb := (b - float32(c.B)) * amount

			spread(acc, w, h, x, y, dir, k, er, eg, eb)
		}
	}
}
