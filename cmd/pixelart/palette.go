package main

import (
	"fmt"

	"github.com/deepteams/pixelart/palette"
)

func (a *app) runPalette(args []string) error {
	fs, verbose := a.newFlagSet("palette")
	extract := fs.Int("extract", 0, "extract this many colors from the image given as argument")

	if err := fs.Parse(args); err != nil {
		return err
	}
	a.setupLogger(*verbose)

	switch {
	case *extract > 0:
		if fs.NArg() < 1 {
			return fmt.Errorf("palette: missing input file\nUsage: pixelart palette -extract N <input>")
		}
		img, err := a.readImage(fs.Arg(0))
		if err != nil {
			return fmt.Errorf("palette: %w", err)
		}
		p, err := palette.Extract(img, *extract)
		if err != nil {
			return fmt.Errorf("palette: %w", err)
		}
		a.printPalette(p)
	case fs.NArg() > 0:
		p, ok := palette.Lookup(fs.Arg(0))
		if !ok {
			return fmt.Errorf("palette: unknown preset %q", fs.Arg(0))
		}
		a.printPalette(p)
	default:
		for _, name := range palette.Names() {
			p, _ := palette.Lookup(name)
			fmt.Fprintf(a.stdout, "%-8s %d colors\n", name, len(p))
		}
	}
	return nil
}

func (a *app) printPalette(p palette.Palette) {
	for _, c := range p {
		fmt.Fprintln(a.stdout, c.Hex())
	}
}
