// Package pixelart turns raster images into palette-constrained pixel art and
// recovers the low-resolution source of images that were upscaled with
// nearest-neighbour sampling.
//
// The package works on PixelBuffer values: contiguous 8-bit RGBA samples in
// row-major order. Every operation returns a new buffer and leaves its input
// untouched.
//
// The package supports:
//   - Palette mapping with RGB or OKLab distance
//   - Ordered dithering with 4x4 and 8x8 Bayer matrices
//   - Floyd-Steinberg and Atkinson error diffusion
//   - An adaptive, palette-aware error diffusion mode
//   - Grid detection and block-averaged rebuilding of upscaled images
//   - Posterization and tone adjustments
//
// Basic usage for quantizing:
//
//	opts := pixelart.DefaultQuantizeOptions()
//	opts.Palette = palette.Free
//	out, err := pixelart.Quantize(ctx, pixelart.FromImage(img), opts)
//
// Basic usage for recovering a sprite:
//
//	rebuilt, grid, err := pixelart.Recover(pixelart.FromImage(img), nil, pixelart.AlphaAware)
//
// Strip-parallel algorithms (none, ordered4, ordered8) are split across a
// small pool of workers owned by a Quantizer. Error diffusion runs on a single
// worker because every pixel depends on the ones before it.
package pixelart
