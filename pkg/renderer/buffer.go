package renderer

import (
	"image"

	"github.com/df07/sphere-pathtracer/pkg/core"
)

// Buffer is a row-major width×height image of display-ready colors:
// averaged, gamma corrected and free of NaN/Inf
type Buffer struct {
	Width  int
	Height int
	Pixels []core.Color
}

// NewBuffer creates a black buffer
func NewBuffer(width, height int) *Buffer {
	return &Buffer{
		Width:  width,
		Height: height,
		Pixels: make([]core.Color, width*height),
	}
}

// At returns the color of pixel (x, y); row 0 is the top of the image
func (b *Buffer) At(x, y int) core.Color {
	return b.Pixels[y*b.Width+x]
}

// Set stores the color of pixel (x, y)
func (b *Buffer) Set(x, y int, c core.Color) {
	b.Pixels[y*b.Width+x] = c
}

// ToRGBA quantizes the buffer to an 8-bit image
func (b *Buffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			img.SetRGBA(x, y, b.At(x, y).ToRGBA())
		}
	}
	return img
}

// SubImage returns an 8-bit copy of the pixels inside bounds
func (b *Buffer) SubImage(bounds image.Rectangle) *image.RGBA {
	bounds = bounds.Intersect(image.Rect(0, 0, b.Width, b.Height))
	img := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, b.At(x, y).ToRGBA())
		}
	}
	return img
}

// toDisplay turns an averaged linear color into a display value
func toDisplay(c core.Color, gamma float64) core.Color {
	return c.Scrub().GammaCorrect(gamma).Scrub()
}
