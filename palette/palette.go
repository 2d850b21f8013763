// Package palette defines the fixed color palettes that images are quantized
// onto, together with parsing helpers and the built-in presets.
//
// A Palette is plain data: the order of its entries only matters for exact
// ties during nearest-color matching, where the lowest index wins.
package palette

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/soniakeys/quant/median"
)

// MaxColors is the largest palette the quantizer accepts.
const MaxColors = 1 << 15

// Errors returned by the parsing helpers.
var (
	ErrEmpty    = errors.New("palette: no colors")
	ErrTooLarge = errors.New("palette: too many colors")
	ErrSyntax   = errors.New("palette: invalid color")
)

// RGB is an opaque 8-bit sRGB palette entry.
type RGB struct {
	R, G, B uint8
}

// RGBA implements color.Color.
func (c RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// Hex formats the color as #rrggbb.
func (c RGB) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

func (c RGB) String() string {
	return c.Hex()
}

// Palette is an ordered list of colors.
type Palette []RGB

// Validate reports whether the palette can be used for quantization.
func (p Palette) Validate() error {
	if len(p) == 0 {
		return ErrEmpty
	}
	if len(p) > MaxColors {
		return fmt.Errorf("%w: %d > %d", ErrTooLarge, len(p), MaxColors)
	}
	return nil
}

// Index returns the first index holding c, or -1.
func (p Palette) Index(c RGB) int {
	for i, e := range p {
		if e == c {
			return i
		}
	}
	return -1
}

// Contains reports whether c is an entry of p.
func (p Palette) Contains(c RGB) bool {
	return p.Index(c) >= 0
}

// Clone returns a copy that shares no memory with p.
func (p Palette) Clone() Palette {
	return append(Palette(nil), p...)
}

// ColorPalette converts p to a standard library palette.
func (p Palette) ColorPalette() color.Palette {
	cp := make(color.Palette, len(p))
	for i, c := range p {
		cp[i] = color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
	}
	return cp
}

// FromColors converts arbitrary colors into a palette, dropping alpha.
// Fully transparent colors are skipped.
func FromColors(cs []color.Color) Palette {
	p := make(Palette, 0, len(cs))
	for _, c := range cs {
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		if n.A == 0 {
			continue
		}
		p = append(p, RGB{R: n.R, G: n.G, B: n.B})
	}
	return p
}

// ParseColor parses a single entry. Accepted forms are "#rrggbb", "rrggbb",
// "#rgb" and a numeric "r,g,b" triple.
func ParseColor(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RGB{}, fmt.Errorf("%w: empty string", ErrSyntax)
	}
	if strings.Contains(s, ",") {
		return parseTriple(s)
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if (len(s) != 4 && len(s) != 7) || strings.Trim(s[1:], "0123456789abcdefABCDEF") != "" {
		return RGB{}, fmt.Errorf("%w: %q: want 3 or 6 hex digits", ErrSyntax, s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q: %v", ErrSyntax, s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

func parseTriple(s string) (RGB, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return RGB{}, fmt.Errorf("%w: %q: want 3 components", ErrSyntax, s)
	}
	var v [3]uint8
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 255 {
			return RGB{}, fmt.Errorf("%w: %q: component %d out of range", ErrSyntax, s, i)
		}
		v[i] = uint8(n)
	}
	return RGB{R: v[0], G: v[1], B: v[2]}, nil
}

// Parse parses a list of entries with ParseColor.
func Parse(entries []string) (Palette, error) {
	p := make(Palette, 0, len(entries))
	for i, e := range entries {
		c, err := ParseColor(e)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		p = append(p, c)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseList parses entries separated by whitespace or semicolons, e.g.
// "#000000 #ffffff" or "0,0,0; 255,255,255".
func ParseList(s string) (Palette, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	return Parse(fields)
}

// Extract builds an n-color palette from img using median cut.
func Extract(img image.Image, n int) (Palette, error) {
	if n <= 0 {
		return nil, fmt.Errorf("palette: invalid color count %d", n)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("palette: empty image")
	}
	cp := median.Quantizer(n).Quantize(make(color.Palette, 0, n), img)
	p := FromColors(cp)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
