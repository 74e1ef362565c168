package core

import (
	"image/color"
	"math"
)

// Color is linear RGB radiance. Channels are non-negative for physical
// values; NaN and Inf may appear transiently and are removed by Scrub.
type Color struct {
	R, G, B float64
}

// Black is the zero radiance, also used as the "not emissive" sentinel
var Black = Color{}

// White is unit radiance in every channel
var White = Color{1, 1, 1}

// NewColor creates a new Color
func NewColor(r, g, b float64) Color {
	return Color{R: r, G: g, B: b}
}

// Gray returns a color with all channels set to v
func Gray(v float64) Color {
	return Color{v, v, v}
}

// Add returns the channel-wise sum
func (c Color) Add(other Color) Color {
	return Color{c.R + other.R, c.G + other.G, c.B + other.B}
}

// Scale multiplies every channel by k
func (c Color) Scale(k float64) Color {
	return Color{c.R * k, c.G * k, c.B * k}
}

// Blend is the component-wise product, used for BSDF ⊙ incoming radiance
func (c Color) Blend(other Color) Color {
	return Color{c.R * other.R, c.G * other.G, c.B * other.B}
}

// MaxComponent returns the largest channel
func (c Color) MaxComponent() float64 {
	return max(c.R, c.G, c.B)
}

// IsBlack reports whether the color is exactly zero
func (c Color) IsBlack() bool {
	return c == Black
}

// IsFinite reports whether no channel is NaN or infinite
func (c Color) IsFinite() bool {
	return isFinite(c.R) && isFinite(c.G) && isFinite(c.B)
}

// Luminance returns the perceptual luminance of the color
// Uses Rec. 709 weights: 0.2126*R + 0.7152*G + 0.0722*B
func (c Color) Luminance() float64 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// GammaCorrect applies channel^(1/gamma)
func (c Color) GammaCorrect(gamma float64) Color {
	invGamma := 1.0 / gamma
	return Color{
		R: math.Pow(c.R, invGamma),
		G: math.Pow(c.G, invGamma),
		B: math.Pow(c.B, invGamma),
	}
}

// Scrub replaces every non-finite channel with zero
func (c Color) Scrub() Color {
	return Color{scrub(c.R), scrub(c.G), scrub(c.B)}
}

// Clamp returns a color with channels clamped to [min, max]
func (c Color) Clamp(minVal, maxVal float64) Color {
	return Color{
		R: max(minVal, min(maxVal, c.R)),
		G: max(minVal, min(maxVal, c.G)),
		B: max(minVal, min(maxVal, c.B)),
	}
}

// ToRGBA quantizes the color to 8 bits per channel after clamping to [0, 1].
// No gamma correction is applied here.
func (c Color) ToRGBA() color.RGBA {
	clamped := c.Scrub().Clamp(0.0, 1.0)
	return color.RGBA{
		R: uint8(255 * clamped.R),
		G: uint8(255 * clamped.G),
		B: uint8(255 * clamped.B),
		A: 255,
	}
}

func scrub(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return v
}
