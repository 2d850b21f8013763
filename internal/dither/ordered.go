package dither

// Bayer threshold matrices.
type bayerMatrix struct {
	size  int
	denom float64
	m     []uint8
}

var bayer4 = bayerMatrix{
	size:  4,
	denom: 16,
	m: []uint8{
		0, 8, 2, 10,
		12, 4, 14, 6,
		3, 11, 1, 9,
		15, 7, 13, 5,
	},
}

var bayer8 = bayerMatrix{
	size:  8,
	denom: 64,
	m: []uint8{
		0, 32, 8, 40, 2, 34, 10, 42,
		48, 16, 56, 24, 50, 18, 58, 26,
		12, 44, 4, 36, 14, 46, 6, 38,
		60, 28, 52, 20, 62, 30, 54, 22,
		3, 35, 11, 43, 1, 33, 9, 41,
		51, 19, 59, 27, 49, 17, 57, 25,
		15, 47, 7, 39, 13, 45, 5, 37,
		63, 31, 55, 23, 61, 29, 53, 21,
	},
}

// offsets returns the per-cell channel offsets for the given amplitude
// (strength times amount).
func (b *bayerMatrix) offsets(amp float64) []float32 {
	off := make([]float32, len(b.m))
	for i, v := range b.m {
		off[i] = float32((float64(v)/b.denom - 0.5) * 255 * amp)
	}
	return off
}

// ordered perturbs each pixel by the matrix cell at its absolute frame
// coordinates before matching. Rows are indexed from job.YStart so strips of
// one frame line up with the full-frame result.
func (f *frame) ordered(b *bayerMatrix) {
	off := b.offsets(f.job.OrderedStrength * f.job.Amount)
	for row := 0; row < f.rows; row++ {
		my := ((f.job.YStart + row) % b.size) * b.size
		for x := 0; x < f.w; x++ {
			i := row*f.w + x
			o := i * 4
			t := off[my+x%b.size]
			r := round8(clamp8(float32(f.src[o]) + t))
			g := round8(clamp8(float32(f.src[o+1]) + t))
			bl := round8(clamp8(float32(f.src[o+2]) + t))
			f.emit(i, f.pal.Nearest(r, g, bl, f.cache))
		}
	}
}
