package dither

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepteams/pixelart/internal/quant"
	"github.com/deepteams/pixelart/palette"
)

var blackWhite = palette.Palette{{0, 0, 0}, {255, 255, 255}}

func fill(w, h int, c [4]uint8) []uint8 {
	pix := make([]uint8, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		copy(pix[i:i+4], c[:])
	}
	return pix
}

// gradient16 is a 16x16 frame with independent ramps on each channel.
func gradient16() []uint8 {
	const w = 16
	pix := make([]uint8, w*w*4)
	for y := 0; y < w; y++ {
		for x := 0; x < w; x++ {
			o := (y*w + x) * 4
			pix[o] = uint8(x * 16)
			pix[o+1] = uint8(y * 16)
			pix[o+2] = uint8((x + y) * 8)
			pix[o+3] = 255
		}
	}
	return pix
}

func frameJob(w, h int, pix []uint8, p palette.Palette, a Algorithm) *Job {
	return &Job{
		Width: w, Height: h,
		YStart: 0, YEnd: h,
		Pix:             pix,
		Palette:         p,
		Algorithm:       a,
		OrderedStrength: 1,
		Amount:          1,
	}
}

func mustRun(t *testing.T, j *Job) *Result {
	t.Helper()
	res, err := Run(j)
	require.NoError(t, err)
	require.Len(t, res.Pix, len(j.Pix))
	return res
}

func requirePaletteOnly(t *testing.T, p palette.Palette, pix []uint8) {
	t.Helper()
	for i := 0; i < len(pix); i += 4 {
		c := palette.RGB{R: pix[i], G: pix[i+1], B: pix[i+2]}
		require.True(t, p.Contains(c), "pixel %d is %v, not a palette entry", i/4, c)
	}
}

func TestAlgorithmString(t *testing.T) {
	assert.Equal(t, "floyd-steinberg", FloydSteinberg.String())
	assert.Equal(t, "optimised-custom", OptimisedCustom.String())
	assert.Equal(t, "Algorithm(42)", Algorithm(42).String())
	assert.True(t, Ordered8.StripSafe())
	assert.False(t, Atkinson.StripSafe())
	assert.False(t, OptimisedCustom.StripSafe())
}

func TestValidate(t *testing.T) {
	good := func() *Job { return frameJob(4, 4, fill(4, 4, [4]uint8{1, 2, 3, 255}), blackWhite, FloydSteinberg) }
	tests := []struct {
		name string
		edit func(j *Job)
	}{
		{"zero width", func(j *Job) { j.Width = 0 }},
		{"short pix", func(j *Job) { j.Pix = j.Pix[:len(j.Pix)-4] }},
		{"empty palette", func(j *Job) { j.Palette = nil }},
		{"inverted range", func(j *Job) { j.YStart, j.YEnd = 3, 1 }},
		{"range past frame", func(j *Job) { j.Algorithm = None; j.YEnd = 5 }},
		{"diffusion strip", func(j *Job) { j.YStart = 2; j.Pix = j.Pix[:2*4*4] }},
		{"amount above one", func(j *Job) { j.Amount = 1.5 }},
		{"nan strength", func(j *Job) { j.OrderedStrength = math.NaN() }},
		{"unknown algorithm", func(j *Job) { j.Algorithm = 99 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := good()
			tt.edit(j)
			_, err := Run(j)
			assert.ErrorIs(t, err, ErrInvalidJob)
		})
	}
	_, err := Run(good())
	assert.NoError(t, err)
}

func TestNoneIsIdempotentOnPaletteImages(t *testing.T) {
	p := palette.Palette{{0, 0, 0}, {255, 0, 77}, {3, 140, 200}, {250, 250, 240}, {90, 90, 90}}
	const w, h = 13, 7
	pix := make([]uint8, w*h*4)
	for i := 0; i < w*h; i++ {
		c := p[(i*7)%len(p)]
		pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = c.R, c.G, c.B, 255
	}
	for _, m := range []quant.Metric{quant.MetricRGB, quant.MetricOKLab} {
		j := frameJob(w, h, pix, p, None)
		j.Metric = m
		j.CacheBits = NoCache
		res := mustRun(t, j)
		assert.Equal(t, pix, res.Pix, "metric %v", m)
	}
}

func TestOrderedWithoutStrengthMatchesNone(t *testing.T) {
	src := gradient16()
	p := palette.Palette{{0, 0, 0}, {255, 255, 255}, {255, 0, 0}, {0, 128, 255}}
	want := mustRun(t, frameJob(16, 16, src, p, None))
	for _, a := range []Algorithm{Ordered4, Ordered8} {
		j := frameJob(16, 16, src, p, a)
		j.OrderedStrength = 0
		assert.Equal(t, want.Pix, mustRun(t, j).Pix, "%v strength 0", a)

		j = frameJob(16, 16, src, p, a)
		j.Amount = 0
		assert.Equal(t, want.Pix, mustRun(t, j).Pix, "%v amount 0", a)
	}
}

func TestOrderedMidGrayIsHalfWhite(t *testing.T) {
	for _, tt := range []struct {
		a Algorithm
		n int
	}{{Ordered4, 4}, {Ordered8, 8}} {
		res := mustRun(t, frameJob(tt.n, tt.n, fill(tt.n, tt.n, [4]uint8{128, 128, 128, 255}), blackWhite, tt.a))
		white := 0
		for i := 0; i < len(res.Pix); i += 4 {
			if res.Pix[i] == 255 {
				white++
			}
		}
		assert.Equal(t, tt.n*tt.n/2, white, "%v", tt.a)
	}
}

func TestOrderedStripsMatchFullFrame(t *testing.T) {
	src := gradient16()
	p := palette.Palette{{0, 0, 0}, {255, 255, 255}, {255, 0, 0}, {0, 128, 255}, {128, 255, 0}}
	full := frameJob(16, 16, src, p, Ordered8)
	full.CacheBits = NoCache
	want := mustRun(t, full)

	var got []uint8
	for _, r := range [][2]int{{0, 3}, {3, 11}, {11, 16}} {
		j := *full
		j.YStart, j.YEnd = r[0], r[1]
		j.Pix = src[r[0]*16*4 : r[1]*16*4]
		res := mustRun(t, &j)
		assert.Equal(t, r[0], res.YStart)
		assert.Equal(t, r[1]-r[0], res.Rows())
		got = append(got, res.Pix...)
	}
	assert.Equal(t, want.Pix, got)
}

func TestFloydSteinbergSerpentineBaseline(t *testing.T) {
	want := []string{
		"..........#..#.#",
		".......#.#..#.#.",
		"...#.#....#.#.#.",
		".......#.#.#.#.#",
		".#..#.#..#..#.#.",
		"..#..#..#.##.#.#",
		"....#..#.#..###.",
		".#.#..#.#.##.#.#",
		"....#.#.#.#.####",
		".#.#.#.#.#.#.#.#",
		"..#..#.#.####.##",
		".#.#.#.#.#.#.###",
		".#.#.#.##.####.#",
		"#.#.#.##.###.###",
		".#.#.#.##.######",
		".#.#.##.##.##.##",
	}
	for _, bits := range []int{0, NoCache} {
		j := frameJob(16, 16, gradient16(), blackWhite, FloydSteinberg)
		j.Serpentine = true
		j.CacheBits = bits
		res := mustRun(t, j)
		requirePaletteOnly(t, blackWhite, res.Pix)

		got := make([]string, 16)
		for y := range got {
			row := make([]byte, 16)
			for x := range row {
				row[x] = '.'
				if res.Pix[(y*16+x)*4] == 255 {
					row[x] = '#'
				}
			}
			got[y] = string(row)
		}
		assert.Equal(t, want, got, "cache bits %d", bits)
	}
}

func TestKernelWeights(t *testing.T) {
	assert.Equal(t, float32(1), kernelWeight(floydSteinberg))
	assert.Equal(t, float32(6.0/8), kernelWeight(atkinson))
}

func meanRed(pix []uint8) float64 {
	var sum float64
	for i := 0; i < len(pix); i += 4 {
		sum += float64(pix[i])
	}
	return sum / float64(len(pix)/4)
}

func TestAtkinsonLightensLightGray(t *testing.T) {
	src := fill(32, 32, [4]uint8{192, 192, 192, 255})
	fs := meanRed(mustRun(t, frameJob(32, 32, src, blackWhite, FloydSteinberg)).Pix)
	atk := meanRed(mustRun(t, frameJob(32, 32, src, blackWhite, Atkinson)).Pix)

	assert.InDelta(t, 192, fs, 4, "Floyd-Steinberg preserves mean intensity")
	assert.Greater(t, atk, fs+10, "Atkinson drops part of the error")
}

func TestDiffusionAmountZeroMatchesNone(t *testing.T) {
	src := gradient16()
	want := mustRun(t, frameJob(16, 16, src, blackWhite, None))
	for _, a := range []Algorithm{FloydSteinberg, Atkinson} {
		j := frameJob(16, 16, src, blackWhite, a)
		j.Amount = 0
		assert.Equal(t, want.Pix, mustRun(t, j).Pix, "%v", a)
	}
}

func TestAdaptiveUsesPaletteAndIsDeterministic(t *testing.T) {
	p := palette.Palette{
		{0, 0, 0}, {255, 255, 255}, {200, 40, 40}, {210, 50, 45},
		{30, 90, 200}, {60, 180, 75}, {128, 128, 128}, {250, 220, 90},
	}
	src := gradient16()
	for _, m := range []quant.Metric{quant.MetricRGB, quant.MetricOKLab} {
		j := frameJob(16, 16, src, p, OptimisedCustom)
		j.Metric = m
		j.Serpentine = true
		a := mustRun(t, j)
		b := mustRun(t, j)
		requirePaletteOnly(t, p, a.Pix)
		assert.Equal(t, a.Pix, b.Pix, "metric %v", m)
	}
}

func TestAdaptiveKeepsFlatPaletteColor(t *testing.T) {
	p := palette.Palette{{0, 0, 0}, {255, 255, 255}, {200, 40, 40}}
	src := fill(9, 9, [4]uint8{200, 40, 40, 255})
	res := mustRun(t, frameJob(9, 9, src, p, OptimisedCustom))
	assert.Equal(t, src, res.Pix)
}

func TestChannelWeightsFavourGreen(t *testing.T) {
	w := channelWeights()
	assert.InDelta(t, 3, w[0]+w[1]+w[2], 1e-12)
	assert.Greater(t, w[1], w[0])
	assert.Greater(t, w[0], w[2])
}

func TestAlphaHandling(t *testing.T) {
	src := fill(4, 2, [4]uint8{250, 250, 250, 77})
	for _, a := range []Algorithm{None, Ordered4, FloydSteinberg, OptimisedCustom} {
		j := frameJob(4, 2, src, blackWhite, a)
		res := mustRun(t, j)
		for i := 3; i < len(res.Pix); i += 4 {
			require.Equal(t, uint8(255), res.Pix[i], "%v opaque output", a)
		}

		j.PreserveAlpha = true
		res = mustRun(t, j)
		for i := 3; i < len(res.Pix); i += 4 {
			require.Equal(t, uint8(77), res.Pix[i], "%v preserved alpha", a)
		}
	}
}

func TestRunDoesNotModifySource(t *testing.T) {
	src := gradient16()
	orig := append([]uint8(nil), src...)
	mustRun(t, frameJob(16, 16, src, blackWhite, Atkinson))
	assert.Equal(t, orig, src)
}
