// Package colorspace converts 8-bit sRGB samples to linear light and to OKLab.
//
// All functions are pure. The sRGB decoding curve is served from a 256-entry
// table built on first use.
package colorspace

import (
	"math"
	"sync"
)

// Rec.601 luma weights.
const (
	LumaR = 0.299
	LumaG = 0.587
	LumaB = 0.114
)

const (
	srgbThreshold    = 0.04045
	linearThreshold  = 0.0031308
	srgbLinearFactor = 12.92
)

var (
	srgbToLinearTab [256]float64
	srgbTablesOnce  sync.Once
)

// initTables precomputes the sRGB to linear lookup table.
func initTables() {
	srgbTablesOnce.Do(func() {
		for v := 0; v < 256; v++ {
			srgbToLinearTab[v] = decode(float64(v) / 255)
		}
	})
}

func decode(c float64) float64 {
	if c <= srgbThreshold {
		return c / srgbLinearFactor
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func encode(l float64) float64 {
	if l <= linearThreshold {
		return l * srgbLinearFactor
	}
	return 1.055*math.Pow(l, 1/2.4) - 0.055
}

// SRGBToLinear returns the linear-light value in [0,1] of an 8-bit sRGB sample.
func SRGBToLinear(v uint8) float64 {
	initTables()
	return srgbToLinearTab[v]
}

// SRGBFloatToLinear decodes a non-integer sRGB sample in [0,255]. Values
// outside the range are clamped.
func SRGBFloatToLinear(v float64) float64 {
	return decode(clamp(v, 0, 255) / 255)
}

// LinearToSRGB encodes a linear-light value back to an 8-bit sample.
func LinearToSRGB(l float64) uint8 {
	v := encode(clamp(l, 0, 1)) * 255
	return uint8(math.Floor(v + 0.5))
}

// LinearToOKLab projects linear RGB onto OKLab through the LMS cone space.
func LinearToOKLab(r, g, b float64) (L, A, B float64) {
	l := 0.4122214708*r + 0.5363325363*g + 0.0514459929*b
	m := 0.2119034982*r + 0.6806995451*g + 0.1073969566*b
	s := 0.0883024619*r + 0.2817188376*g + 0.6299787005*b

	l = math.Cbrt(l)
	m = math.Cbrt(m)
	s = math.Cbrt(s)

	L = 0.2104542553*l + 0.7936177850*m - 0.0040720468*s
	A = 1.9779984951*l - 2.4285922050*m + 0.4505937099*s
	B = 0.0259040371*l + 0.7827717662*m - 0.8086757660*s
	return L, A, B
}

// OKLab converts an 8-bit sRGB color to OKLab.
func OKLab(r, g, b uint8) (L, A, B float64) {
	return LinearToOKLab(SRGBToLinear(r), SRGBToLinear(g), SRGBToLinear(b))
}

// OKLabFloat converts an sRGB color with channels in [0,255] (not necessarily
// integral) to OKLab.
func OKLabFloat(r, g, b float64) (L, A, B float64) {
	return LinearToOKLab(SRGBFloatToLinear(r), SRGBFloatToLinear(g), SRGBFloatToLinear(b))
}

// Chroma is the distance of an OKLab color from the neutral axis.
func Chroma(a, b float64) float64 {
	return math.Sqrt(a*a + b*b)
}

// Luma returns the Rec.601 weighted sum of the three channels.
func Luma(r, g, b float64) float64 {
	return LumaR*r + LumaG*g + LumaB*b
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
