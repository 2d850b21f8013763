// Command pixelart converts images to palette-constrained pixel art and
// recovers the source sprites of upscaled pixel art.
//
// Usage:
//
//	pixelart pixelate [options] <input>   Map an image onto a palette
//	pixelart recover [options] <input>    Detect the grid and rebuild the sprite
//	pixelart detect [options] <input>     Print the detected grid
//	pixelart palette [options] [name]     List, print or extract palettes
//
// Inputs may be PNG, JPEG, GIF, BMP, TIFF, WebP or raw .rgba.zst files; use
// "-" for stdin. Outputs are PNG unless the name ends in .rgba.zst.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

func main() {
	err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "pixelart: %v\n", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("missing or unknown command")

// app carries the standard streams so commands can run in-process.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	log    *slog.Logger
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	if len(args) < 1 {
		a.printUsage()
		return errUsage
	}

	switch args[0] {
	case "pixelate":
		return a.runPixelate(args[1:])
	case "recover":
		return a.runRecover(args[1:])
	case "detect":
		return a.runDetect(args[1:])
	case "palette":
		return a.runPalette(args[1:])
	case "-h", "-help", "--help", "help":
		a.printUsage()
		return nil
	default:
		fmt.Fprintf(stderr, "pixelart: unknown command %q\n\n", args[0])
		a.printUsage()
		return errUsage
	}
}

func (a *app) printUsage() {
	fmt.Fprint(a.stderr, `Usage:
  pixelart pixelate [options] <input>   Map an image onto a palette
  pixelart recover [options] <input>    Detect the grid and rebuild the sprite
  pixelart detect [options] <input>     Print the detected grid
  pixelart palette [options] [name]     List, print or extract palettes

Use "-" as input to read from stdin, "-o -" to write to stdout.

Run "pixelart <command> -h" for command-specific options.
`)
}

// newFlagSet returns a flag set for a subcommand with the shared -v flag
// registered.
func (a *app) newFlagSet(name string) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	verbose := fs.Bool("v", false, "verbose logging")
	return fs, verbose
}

// setupLogger installs a tint handler on stderr. Colors are only used when
// stderr is a terminal.
func (a *app) setupLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(tint.NewHandler(a.stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !isTerminal(a.stderr),
	}))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
