package pixelart_test

import (
	"context"
	"fmt"

	"github.com/deepteams/pixelart"
	"github.com/deepteams/pixelart/palette"
)

func ExampleQuantize() {
	buf := pixelart.NewPixelBuffer(4, 1)
	for i, v := range []uint8{10, 100, 160, 250} {
		copy(buf.Pix[i*4:], []uint8{v, v, v, 255})
	}

	opts := pixelart.DefaultQuantizeOptions()
	opts.Palette = palette.Palette{{0, 0, 0}, {255, 255, 255}}
	opts.Algorithm = pixelart.None

	out, err := pixelart.Quantize(context.Background(), buf, opts)
	if err != nil {
		fmt.Println(err)
		return
	}
	for i := 0; i < len(out.Pix); i += 4 {
		fmt.Println(palette.RGB{R: out.Pix[i], G: out.Pix[i+1], B: out.Pix[i+2]})
	}
	// Output:
	// #000000
	// #000000
	// #ffffff
	// #ffffff
}

func ExampleDetectGrid() {
	// A 2x2 checkerboard upscaled 6 times, shifted right by 2 pixels.
	const scale, shift = 6, 2
	buf := pixelart.NewPixelBuffer(shift+4*scale, 4*scale)
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			v := uint8(30)
			if ((x+scale-shift)/scale+y/scale)%2 == 1 {
				v = 220
			}
			copy(buf.Pix[(y*buf.Width+x)*4:], []uint8{v, v, v, 255})
		}
	}

	g, err := pixelart.DetectGrid(buf, nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("scale %dx%d offset (%d,%d) confident=%v\n", g.ScaleX, g.ScaleY, g.OffsetX, g.OffsetY, g.Confident)
	// Output:
	// scale 6x6 offset (2,0) confident=true
}

func ExamplePosterize() {
	buf := &pixelart.PixelBuffer{Width: 1, Height: 1, Pix: []uint8{0xd7, 0x5a, 0x33, 0xff}}
	out, err := pixelart.Posterize(buf, 2)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%#x\n", out.Pix)
	// Output:
	// 0xc04000ff
}
