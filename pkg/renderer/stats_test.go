package renderer

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/df07/sphere-pathtracer/pkg/core"
)

func TestPixelStatsAddSample(t *testing.T) {
	var ps PixelStats
	ps.AddSample(core.NewColor(1, 0, 0))
	ps.AddSample(core.NewColor(0, 1, 0))

	if ps.SampleCount != 2 {
		t.Fatalf("Expected 2 samples, got %d", ps.SampleCount)
	}
	want := core.NewColor(0.5, 0.5, 0)
	if got := ps.GetColor(); got != want {
		t.Errorf("Expected average %v, got %v", want, got)
	}
}

func TestPixelStatsScrubsNonFinite(t *testing.T) {
	var ps PixelStats
	ps.AddSample(core.NewColor(math.NaN(), 0.5, math.Inf(1)))
	ps.AddSample(core.NewColor(0.5, 0.5, 0.5))

	if ps.ScrubbedCount != 1 {
		t.Errorf("Expected 1 scrubbed sample, got %d", ps.ScrubbedCount)
	}
	got := ps.GetColor()
	if !got.IsFinite() {
		t.Fatalf("Expected a finite average, got %v", got)
	}
	want := core.NewColor(0.25, 0.5, 0.25)
	if got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestPixelStatsEmpty(t *testing.T) {
	var ps PixelStats
	if got := ps.GetColor(); got != core.Black {
		t.Errorf("Expected black for a pixel without samples, got %v", got)
	}
	if ps.Variance() != 0 || ps.StandardError() != 0 {
		t.Errorf("Expected zero variance without samples")
	}
}

func TestPixelStatsVarianceMatchesGonum(t *testing.T) {
	sampler := core.NewSeededSampler(3)
	var ps PixelStats
	var luminances []float64
	for i := 0; i < 500; i++ {
		c := core.Gray(sampler.Get1D() * 4)
		ps.AddSample(c)
		luminances = append(luminances, c.Luminance())
	}

	want := stat.Variance(luminances, nil)
	if math.Abs(ps.Variance()-want) > 1e-9 {
		t.Errorf("Expected variance %f, got %f", want, ps.Variance())
	}
	wantSE := math.Sqrt(want / 500)
	if math.Abs(ps.StandardError()-wantSE) > 1e-9 {
		t.Errorf("Expected standard error %f, got %f", wantSE, ps.StandardError())
	}
}

func TestCalculateImageStats(t *testing.T) {
	pixelStats := [][]PixelStats{
		make([]PixelStats, 2),
		make([]PixelStats, 2),
	}
	// Pixels with 1, 2, 3 and 4 samples of constant gray
	n := 1
	for y := range pixelStats {
		for x := range pixelStats[y] {
			for i := 0; i < n; i++ {
				pixelStats[y][x].AddSample(core.Gray(float64(n)))
			}
			n++
		}
	}

	stats := calculateImageStats(pixelStats, 4)
	if stats.TotalPixels != 4 {
		t.Errorf("Expected 4 pixels, got %d", stats.TotalPixels)
	}
	if stats.TotalSamples != 10 {
		t.Errorf("Expected 10 samples, got %d", stats.TotalSamples)
	}
	if stats.MinSamples != 1 || stats.MaxSamplesUsed != 4 || stats.MaxSamples != 4 {
		t.Errorf("Expected min 1, max used 4, target 4; got %d, %d, %d",
			stats.MinSamples, stats.MaxSamplesUsed, stats.MaxSamples)
	}
	if stats.AverageSamples != 2.5 {
		t.Errorf("Expected 2.5 average samples, got %f", stats.AverageSamples)
	}
	if math.Abs(stats.MeanLuminance-2.5) > 1e-9 {
		t.Errorf("Expected mean luminance 2.5, got %f", stats.MeanLuminance)
	}
	if stats.MeanStandardError > 1e-6 {
		t.Errorf("Expected zero standard error for constant pixels, got %f", stats.MeanStandardError)
	}
}

func TestCalculateImageStatsEmpty(t *testing.T) {
	stats := calculateImageStats(nil, 8)
	if stats.TotalPixels != 0 || stats.MinSamples != 0 {
		t.Errorf("Expected empty stats, got %+v", stats)
	}
}
