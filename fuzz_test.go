package pixelart

import (
	"context"
	"testing"

	"github.com/deepteams/pixelart/palette"
)

// FuzzQuantize checks that every algorithm accepts arbitrary pixel data and
// only ever emits palette colors.
func FuzzQuantize(f *testing.F) {
	f.Add([]byte{0, 0, 0, 255, 255, 255, 255, 255, 128, 128, 128, 255}, uint8(3), uint8(0))
	f.Add([]byte{200, 10, 10, 0}, uint8(5), uint8(1))
	f.Add(make([]byte, 64), uint8(1), uint8(0))

	p := palette.Palette{{0, 0, 0}, {255, 255, 255}, {200, 40, 40}, {30, 90, 200}}
	q := NewQuantizer(2, nil)
	f.Cleanup(q.Close)

	f.Fuzz(func(t *testing.T, pix []byte, algo, dist uint8) {
		n := len(pix) / 4
		if n == 0 || n > 4096 {
			return
		}
		w := 1
		for w*w < n {
			w++
		}
		if n%w != 0 {
			w = n
		}
		buf := &PixelBuffer{Width: w, Height: n / w, Pix: pix[:n*4]}
		opts := &QuantizeOptions{
			Palette:         p,
			Algorithm:       Algorithm(int(algo) % (int(OptimisedCustom) + 1)),
			Distance:        Distance(dist % 2),
			OrderedStrength: 1,
			Serpentine:      algo&0x80 != 0,
			DitherAmount:    1,
		}
		out, err := q.Quantize(context.Background(), buf, opts)
		if err != nil {
			t.Fatalf("Quantize(%dx%d, %v): %v", buf.Width, buf.Height, opts.Algorithm, err)
		}
		for i := 0; i < len(out.Pix); i += 4 {
			c := palette.RGB{R: out.Pix[i], G: out.Pix[i+1], B: out.Pix[i+2]}
			if !p.Contains(c) {
				t.Fatalf("pixel %d = %v is not a palette entry", i/4, c)
			}
		}
	})
}

// FuzzDetectGrid checks that grid detection never fails on well-formed
// buffers and always reports a usable grid.
func FuzzDetectGrid(f *testing.F) {
	f.Add([]byte{1, 2, 3, 4}, uint8(1))
	f.Add(make([]byte, 256), uint8(8))

	f.Fuzz(func(t *testing.T, pix []byte, width uint8) {
		n := len(pix) / 4
		w := int(width)
		if n == 0 || w == 0 || n%w != 0 {
			return
		}
		buf := &PixelBuffer{Width: w, Height: n / w, Pix: pix[:n*4]}
		g, err := DetectGrid(buf, nil)
		if err != nil {
			t.Fatal(err)
		}
		if g.ScaleX < 1 || g.ScaleY < 1 || g.OffsetX >= g.ScaleX || g.OffsetY >= g.ScaleY {
			t.Fatalf("bad grid %+v", g)
		}
		if _, err := Rebuild(buf, RebuildOptions{ScaleX: 1, ScaleY: 1}); err != nil {
			t.Fatal(err)
		}
	})
}
