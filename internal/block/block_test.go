package block

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func set(pix []uint8, w, x, y int, c [4]uint8) {
	o := (y*w + x) * 4
	copy(pix[o:o+4], c[:])
}

func get(pix []uint8, w, x, y int) [4]uint8 {
	o := (y*w + x) * 4
	return [4]uint8{pix[o], pix[o+1], pix[o+2], pix[o+3]}
}

func TestAverageRoundTripReplicatedSprite(t *testing.T) {
	sprite := [][4]uint8{
		{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255},
		{10, 20, 30, 255}, {200, 100, 50, 128}, {1, 2, 3, 4},
	}
	const sw, sh = 3, 2
	const sx, sy, dx, dy = 5, 4, 2, 3
	w, h := dx+sw*sx+3, dy+sh*sy+1
	pix := make([]uint8, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cx, cy := (x-dx)/sx, (y-dy)/sy
			if x < dx || y < dy || cx >= sw || cy >= sh {
				set(pix, w, x, y, [4]uint8{99, 99, 99, 255})
				continue
			}
			set(pix, w, x, y, sprite[cy*sw+cx])
		}
	}

	out, err := Average(w, h, pix, Params{ScaleX: sx, ScaleY: sy, OffsetX: dx, OffsetY: dy})
	require.NoError(t, err)
	require.Equal(t, sw, out.Width)
	require.Equal(t, sh, out.Height)
	for i, c := range sprite {
		assert.Equal(t, c, get(out.Pix, sw, i%sw, i/sw), "sprite pixel %d", i)
	}
	assert.Equal(t, image.Rect(dx, dy, dx+sw*sx, dy+sh*sy), out.Crop)
	assert.Zero(t, out.Transparent)
}

func TestAverageSize(t *testing.T) {
	p := Params{ScaleX: 4, ScaleY: 3, OffsetX: 1, OffsetY: 2}
	w, h := p.Size(18, 20)
	assert.Equal(t, 4, w) // floor(17/4)
	assert.Equal(t, 6, h) // floor(18/3)
}

func TestAverageRounds(t *testing.T) {
	pix := []uint8{
		0, 0, 0, 255, 1, 3, 255, 255,
	}
	out, err := Average(2, 1, pix, Params{ScaleX: 2, ScaleY: 1})
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2, 128, 255}, out.Pix)
}

func TestAverageAlphaAwareHalfBlock(t *testing.T) {
	// 2x2 block: two opaque pixels, two below threshold.
	pix := make([]uint8, 2*2*4)
	set(pix, 2, 0, 0, [4]uint8{200, 100, 0, 255})
	set(pix, 2, 1, 0, [4]uint8{100, 50, 20, 200})
	set(pix, 2, 0, 1, [4]uint8{0, 255, 255, 127})
	set(pix, 2, 1, 1, [4]uint8{255, 255, 255, 0})

	aware, err := Average(2, 2, pix, Params{ScaleX: 2, ScaleY: 2, Policy: AlphaAware})
	require.NoError(t, err)
	assert.Equal(t, []uint8{150, 75, 10, 228}, aware.Pix)
	assert.Zero(t, aware.Transparent)

	all, err := Average(2, 2, pix, Params{ScaleX: 2, ScaleY: 2, Policy: AlphaAll})
	require.NoError(t, err)
	assert.Equal(t, []uint8{139, 165, 133, 146}, all.Pix)
}

func TestAverageAlphaAwareFullyTransparent(t *testing.T) {
	pix := make([]uint8, 4*2*4)
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			set(pix, 4, x, y, [4]uint8{250, 250, 250, 127})
			set(pix, 4, x+2, y, [4]uint8{10, 20, 30, 255})
		}
	}
	out, err := Average(4, 2, pix, Params{ScaleX: 2, ScaleY: 2, Policy: AlphaAware})
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 0, 0, 10, 20, 30, 255}, out.Pix)
	assert.Equal(t, 1, out.Transparent)
}

func TestAverageInvalid(t *testing.T) {
	pix := make([]uint8, 4*4*4)
	tests := []struct {
		name string
		w, h int
		pix  []uint8
		p    Params
	}{
		{"zero scale", 4, 4, pix, Params{ScaleX: 0, ScaleY: 1}},
		{"negative offset", 4, 4, pix, Params{ScaleX: 1, ScaleY: 1, OffsetX: -1}},
		{"offset past edge", 4, 4, pix, Params{ScaleX: 1, ScaleY: 1, OffsetY: 4}},
		{"block larger than image", 4, 4, pix, Params{ScaleX: 5, ScaleY: 1}},
		{"short buffer", 4, 4, pix[:10], Params{ScaleX: 1, ScaleY: 1}},
		{"zero size", 0, 4, nil, Params{ScaleX: 1, ScaleY: 1}},
		{"bad policy", 4, 4, pix, Params{ScaleX: 1, ScaleY: 1, Policy: Policy(9)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Average(tt.w, tt.h, tt.pix, tt.p)
			assert.ErrorIs(t, err, ErrInvalidParams)
		})
	}
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "all", AlphaAll.String())
	assert.Equal(t, "aware", AlphaAware.String())
	assert.Equal(t, "Policy(5)", Policy(5).String())
}
