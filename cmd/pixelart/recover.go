package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/deepteams/pixelart"
)

// gridFlags registers the grid detection options shared by recover and
// detect.
func gridFlags(fs *flag.FlagSet) func() *pixelart.GridOptions {
	maxX := fs.Int("max-scale-x", 0, "largest block width to try (0=width/4)")
	maxY := fs.Int("max-scale-y", 0, "largest block height to try (0=height/4)")
	confidence := fs.Float64("confidence", 0, "ratio below which a grid is trusted (0=0.5)")
	return func() *pixelart.GridOptions {
		return &pixelart.GridOptions{MaxScaleX: *maxX, MaxScaleY: *maxY, Confidence: *confidence}
	}
}

func (a *app) runRecover(args []string) error {
	fs, verbose := a.newFlagSet("recover")
	gridOpts := gridFlags(fs)
	alpha := fs.String("alpha", "aware", "transparency handling: all/aware")
	up := fs.Int("upscale", 1, "nearest-neighbour upscale factor for the output")
	showPreview := fs.Bool("preview", false, "show a sixel preview when stdout is a terminal")
	output := fs.String("o", "", `output path (default: <input>-sprite.png, "-" for stdout, .rgba.zst for raw)`)

	if err := fs.Parse(args); err != nil {
		return err
	}
	a.setupLogger(*verbose)
	if fs.NArg() < 1 {
		return fmt.Errorf("recover: missing input file\nUsage: pixelart recover [options] <input>")
	}
	inputPath := fs.Arg(0)

	policy, err := pixelart.ParseAlphaPolicy(*alpha)
	if err != nil {
		return fmt.Errorf("recover: %w", err)
	}
	img, err := a.readImage(inputPath)
	if err != nil {
		return fmt.Errorf("recover: %w", err)
	}

	r, g, err := pixelart.Recover(pixelart.FromImage(img), gridOpts(), policy)
	if err != nil {
		return fmt.Errorf("recover: %w", err)
	}
	if !g.Confident {
		a.log.Warn("no confident grid, keeping scale 1", "ratio_x", g.RatioX, "ratio_y", g.RatioY)
	} else {
		a.log.Info("detected grid", "scale", fmt.Sprintf("%dx%d", g.ScaleX, g.ScaleY),
			"offset", fmt.Sprintf("%d,%d", g.OffsetX, g.OffsetY))
	}
	a.log.Debug("rebuilt", "crop", r.Crop, "transparent", r.Transparent)

	result := upscale(r.Image(), *up)
	if *showPreview {
		a.preview(result, nil)
	}
	return a.writeImage(outputPath(inputPath, *output, "-sprite"), result)
}

func (a *app) runDetect(args []string) error {
	fs, verbose := a.newFlagSet("detect")
	gridOpts := gridFlags(fs)
	signals := fs.Bool("signals", false, "also print the difference signals")

	if err := fs.Parse(args); err != nil {
		return err
	}
	a.setupLogger(*verbose)
	if fs.NArg() < 1 {
		return fmt.Errorf("detect: missing input file\nUsage: pixelart detect [options] <input>")
	}

	img, err := a.readImage(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}
	g, err := pixelart.DetectGrid(pixelart.FromImage(img), gridOpts())
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}

	fmt.Fprintf(a.stdout, "Scale:      %dx%d\n", g.ScaleX, g.ScaleY)
	fmt.Fprintf(a.stdout, "Offset:     %d,%d\n", g.OffsetX, g.OffsetY)
	fmt.Fprintf(a.stdout, "Ratio:      %.4f %.4f\n", g.RatioX, g.RatioY)
	fmt.Fprintf(a.stdout, "Confident:  %v\n", g.Confident)
	if *signals {
		fmt.Fprintf(a.stdout, "DiffX:      %s\n", formatSignal(g.DiffX))
		fmt.Fprintf(a.stdout, "DiffY:      %s\n", formatSignal(g.DiffY))
	}
	return nil
}

func formatSignal(s []float64) string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strings.Join(parts, " ")
}
