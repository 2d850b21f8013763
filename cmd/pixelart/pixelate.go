package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/deepteams/pixelart"
	"github.com/deepteams/pixelart/palette"
)

func (a *app) runPixelate(args []string) error {
	fs, verbose := a.newFlagSet("pixelate")
	paletteName := fs.String("palette", "full", `palette: a preset name, "extract:N" for N colors taken from the input, or a list of colors`)
	algo := fs.String("algo", "floyd-steinberg", "algorithm: none/ordered4/ordered8/floyd-steinberg/atkinson/optimised-custom")
	distance := fs.String("distance", "rgb", "color distance: rgb/oklab")
	strength := fs.Float64("strength", 1, "ordered dither strength 0-1")
	amount := fs.Float64("amount", 1, "dither amount 0-1")
	serpentine := fs.Bool("serpentine", true, "alternate scan direction in error diffusion")
	cacheBits := fs.Int("cache", 0, "nearest-color cache bits per channel (0=default, -1=off)")
	keepAlpha := fs.Bool("alpha", false, "preserve source alpha")
	scale := fs.Int("scale", 1, "block size to downsample by before quantizing")
	posterize := fs.Int("posterize", 0, "keep this many bits per channel before quantizing (0=off)")
	brightness := fs.Float64("brightness", 0, "brightness adjustment -100..100")
	contrast := fs.Float64("contrast", 0, "contrast adjustment -100..100")
	saturation := fs.Float64("saturation", 0, "saturation adjustment -100..100")
	gamma := fs.Float64("gamma", 1, "gamma correction (1=none)")
	up := fs.Int("upscale", 1, "nearest-neighbour upscale factor for the output")
	workers := fs.Int("workers", 0, "worker count (0=one per CPU, at most 4)")
	showPreview := fs.Bool("preview", false, "show a sixel preview when stdout is a terminal")
	output := fs.String("o", "", `output path (default: <input>-pixel.png, "-" for stdout, .rgba.zst for raw)`)

	if err := fs.Parse(args); err != nil {
		return err
	}
	a.setupLogger(*verbose)
	if fs.NArg() < 1 {
		return fmt.Errorf("pixelate: missing input file\nUsage: pixelart pixelate [options] <input>")
	}
	inputPath := fs.Arg(0)

	opts := pixelart.DefaultQuantizeOptions()
	var err error
	if opts.Algorithm, err = pixelart.ParseAlgorithm(*algo); err != nil {
		return fmt.Errorf("pixelate: %w", err)
	}
	if opts.Distance, err = pixelart.ParseDistance(*distance); err != nil {
		return fmt.Errorf("pixelate: %w", err)
	}
	opts.OrderedStrength = *strength
	opts.DitherAmount = *amount
	opts.Serpentine = *serpentine
	opts.CacheBits = *cacheBits
	opts.PreserveAlpha = *keepAlpha

	img, err := a.readImage(inputPath)
	if err != nil {
		return fmt.Errorf("pixelate: %w", err)
	}
	buf := pixelart.FromImage(img)

	if opts.Palette, err = resolvePalette(*paletteName, buf); err != nil {
		return fmt.Errorf("pixelate: %w", err)
	}

	buf, err = pixelart.AdjustTone(buf, pixelart.ToneOptions{
		Brightness: *brightness,
		Contrast:   *contrast,
		Saturation: *saturation,
		Gamma:      *gamma,
	})
	if err != nil {
		return fmt.Errorf("pixelate: %w", err)
	}
	if *posterize > 0 {
		if buf, err = pixelart.Posterize(buf, *posterize); err != nil {
			return fmt.Errorf("pixelate: %w", err)
		}
	}
	if *scale > 1 {
		small, err := pixelart.Rebuild(buf, pixelart.RebuildOptions{ScaleX: *scale, ScaleY: *scale, Alpha: pixelart.AlphaAware})
		if err != nil {
			return fmt.Errorf("pixelate: %w", err)
		}
		buf = small.PixelBuffer
	}

	q := pixelart.NewQuantizer(*workers, a.log)
	defer q.Close()
	a.log.Debug("quantizing", "algorithm", opts.Algorithm, "distance", opts.Distance,
		"colors", len(opts.Palette), "workers", q.Workers())
	out, err := q.Quantize(context.Background(), buf, opts)
	if err != nil {
		return fmt.Errorf("pixelate: %w", err)
	}

	result := upscale(out.Image(), *up)
	if *showPreview {
		a.preview(result, opts.Palette)
	}
	return a.writeImage(outputPath(inputPath, *output, "-pixel"), result)
}

// resolvePalette accepts a preset name, "extract:N" or a color list.
func resolvePalette(spec string, buf *pixelart.PixelBuffer) (palette.Palette, error) {
	if p, ok := palette.Lookup(spec); ok {
		return p, nil
	}
	if n, ok := strings.CutPrefix(spec, "extract:"); ok {
		count, err := strconv.Atoi(n)
		if err != nil {
			return nil, fmt.Errorf("palette %q: %w", spec, err)
		}
		return palette.Extract(buf.Image(), count)
	}
	return palette.ParseList(spec)
}
