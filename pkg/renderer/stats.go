package renderer

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/df07/sphere-pathtracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels     int     // Total number of pixels rendered
	TotalSamples    int     // Total number of samples taken
	AverageSamples  float64 // Average samples per pixel
	MaxSamples      int     // Target samples per pixel for the pass
	MinSamples      int     // Minimum samples taken per pixel
	MaxSamplesUsed  int     // Maximum samples actually used by any pixel
	ScrubbedSamples int     // Samples whose NaN/Inf channels were zeroed
	PassSamples     int     // Samples taken by the pass that produced these stats
	PassScrubbed    int     // Scrubbed samples of that pass

	MeanLuminance     float64 // Mean linear luminance over all pixels
	LuminanceStdDev   float64 // Spread of pixel luminance across the image
	MeanStandardError float64 // Average Monte Carlo standard error per pixel
}

// PixelStats tracks sampling statistics for a single pixel
type PixelStats struct {
	ColorAccum       core.Color // RGB accumulator for final result
	LuminanceAccum   float64    // Luminance accumulator for convergence
	LuminanceSqAccum float64    // Luminance squared for variance
	SampleCount      int        // Number of samples taken
	ScrubbedCount    int        // Number of samples that were not finite
}

// AddSample adds a new color sample to the pixel statistics. Non-finite
// channels are zeroed first so one degenerate path cannot poison the average.
func (ps *PixelStats) AddSample(color core.Color) {
	if !color.IsFinite() {
		color = color.Scrub()
		ps.ScrubbedCount++
	}
	ps.ColorAccum = ps.ColorAccum.Add(color)
	luminance := color.Luminance()
	ps.LuminanceAccum += luminance
	ps.LuminanceSqAccum += luminance * luminance
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Color {
	if ps.SampleCount == 0 {
		return core.Black
	}
	return ps.ColorAccum.Scale(1.0 / float64(ps.SampleCount))
}

// Variance returns the sample variance of the pixel's luminance
func (ps *PixelStats) Variance() float64 {
	if ps.SampleCount < 2 {
		return 0
	}
	n := float64(ps.SampleCount)
	mean := ps.LuminanceAccum / n
	return math.Max(0, (ps.LuminanceSqAccum-n*mean*mean)/(n-1))
}

// StandardError returns the standard error of the pixel's mean luminance
func (ps *PixelStats) StandardError() float64 {
	if ps.SampleCount < 2 {
		return 0
	}
	return math.Sqrt(ps.Variance() / float64(ps.SampleCount))
}

// calculateImageStats summarizes the pixel statistics of a whole image
func calculateImageStats(pixelStats [][]PixelStats, targetSamples int) RenderStats {
	stats := RenderStats{
		MaxSamples: targetSamples,
		MinSamples: math.MaxInt,
	}

	var luminances, stdErrs []float64
	for y := range pixelStats {
		for x := range pixelStats[y] {
			pixel := &pixelStats[y][x]

			stats.TotalPixels++
			stats.TotalSamples += pixel.SampleCount
			stats.ScrubbedSamples += pixel.ScrubbedCount
			stats.MinSamples = min(stats.MinSamples, pixel.SampleCount)
			stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, pixel.SampleCount)

			luminances = append(luminances, pixel.GetColor().Luminance())
			stdErrs = append(stdErrs, pixel.StandardError())
		}
	}

	if stats.TotalPixels == 0 {
		stats.MinSamples = 0
		return stats
	}

	stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	stats.MeanLuminance, stats.LuminanceStdDev = stat.MeanStdDev(luminances, nil)
	if stats.TotalPixels < 2 {
		stats.LuminanceStdDev = 0
	}
	stats.MeanStandardError = stat.Mean(stdErrs, nil)

	return stats
}
