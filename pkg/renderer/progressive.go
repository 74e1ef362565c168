package renderer

import (
	"context"
	"image"
	"time"

	"github.com/df07/sphere-pathtracer/pkg/core"
)

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber  int
	TotalPasses int
	Buffer      *Buffer
	Stats       RenderStats
	Duration    time.Duration
	IsLast      bool
}

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID              int                 // Unique tile identifier
	Bounds          image.Rectangle     // Pixel bounds (x0,y0,x1,y1)
	PassesCompleted int                 // Number of passes completed for this tile
	Sampler         *core.RandomSampler // Tile-specific random generator for deterministic results
}

// NewTile creates a new tile whose generator is seeded with seed+id
func NewTile(id int, bounds image.Rectangle, seed int64) *Tile {
	return &Tile{
		ID:      id,
		Bounds:  bounds,
		Sampler: core.NewSeededSampler(seed + int64(id)),
	}
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int, seed int64) []*Tile {
	var tiles []*Tile
	tileID := 0

	// Calculate number of tiles in each dimension
	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			// Calculate tile bounds
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1), seed))
			tileID++
		}
	}

	return tiles
}

// getSamplesForPass calculates the target total samples for a given pass
func (rt *Raytracer) getSamplesForPass(passNumber int) int {
	maxSamples := rt.samplesPerPixel
	passes := rt.totalPasses()

	// Special case: if only 1 pass, use all samples
	if passes == 1 || passNumber >= passes {
		return maxSamples
	}

	// For multiple passes: first pass is quick preview
	initial := min(rt.config.InitialSamples, maxSamples)
	if passNumber == 1 {
		return initial
	}

	// Divide remaining samples evenly across remaining passes
	samplesPerPass := (maxSamples - initial) / (passes - 1)
	return initial + (passNumber-1)*samplesPerPass
}

// totalPasses never exceeds the sample count, so every pass adds samples
func (rt *Raytracer) totalPasses() int {
	return max(1, min(rt.config.Passes, rt.samplesPerPixel))
}

// RenderPass renders a single progressive pass using parallel processing
func (rt *Raytracer) RenderPass(ctx context.Context, passNumber int) (*Buffer, RenderStats, error) {
	targetSamples := rt.getSamplesForPass(passNumber)

	rt.logger.Debug().
		Int("pass", passNumber).
		Int("target_spp", targetSamples).
		Int("workers", rt.workerPool.GetNumWorkers()).
		Msg("starting pass")

	// Submit all tiles as tasks
	tasks := make([]TileTask, len(rt.tiles))
	for i, tile := range rt.tiles {
		tasks[i] = TileTask{
			Tile:          tile,
			PassNumber:    passNumber,
			TargetSamples: targetSamples,
			TaskID:        i,
			PixelStats:    rt.pixelStats,
		}
	}

	// A pass always runs to completion so that every pixel reaches the same
	// target; ctx is checked between passes
	results, err := rt.workerPool.Run(context.WithoutCancel(ctx), tasks)
	if err != nil {
		return nil, RenderStats{}, err
	}
	for _, tile := range rt.tiles {
		tile.PassesCompleted++
	}
	rt.currentPass = passNumber

	// Assemble image and calculate final stats from actual pixel data
	buffer, stats := rt.assembleCurrentImage(targetSamples)
	for _, result := range results {
		stats.PassSamples += result.Stats.Samples
		stats.PassScrubbed += result.Stats.Scrubbed
	}
	return buffer, stats, nil
}

// RenderProgressive renders the remaining passes, handing every finished pass
// to onPass. Cancellation is checked between passes and never interrupts a
// pass; returning an error from onPass stops rendering with that error.
func (rt *Raytracer) RenderProgressive(ctx context.Context, onPass func(PassResult) error) error {
	passes := rt.totalPasses()

	rt.logger.Info().
		Str("scene", rt.scene.Name).
		Int("width", rt.width).
		Int("height", rt.height).
		Int("spp", rt.samplesPerPixel).
		Int("passes", passes).
		Int64("seed", rt.seed).
		Msg("starting progressive rendering")

	for pass := rt.currentPass + 1; pass <= passes; pass++ {
		// Check if client disconnected before starting this pass
		if err := ctx.Err(); err != nil {
			rt.logger.Info().Int("pass", pass).Msg("rendering cancelled")
			return err
		}

		startTime := time.Now()
		buffer, stats, err := rt.RenderPass(ctx, pass)
		if err != nil {
			return err
		}
		passTime := time.Since(startTime)

		rt.logger.Info().
			Int("pass", pass).
			Dur("duration", passTime).
			Float64("avg_spp", stats.AverageSamples).
			Float64("mean_luminance", stats.MeanLuminance).
			Float64("std_error", stats.MeanStandardError).
			Int("scrubbed", stats.ScrubbedSamples).
			Msg("pass completed")

		if onPass != nil {
			result := PassResult{
				PassNumber:  pass,
				TotalPasses: passes,
				Buffer:      buffer,
				Stats:       stats,
				Duration:    passTime,
				IsLast:      pass == passes,
			}
			if err := onPass(result); err != nil {
				return err
			}
		}
	}

	return nil
}

// assembleCurrentImage creates an image from the current state of the shared pixel stats
// and calculates render statistics in a single pass
func (rt *Raytracer) assembleCurrentImage(targetSamples int) (*Buffer, RenderStats) {
	buffer := NewBuffer(rt.width, rt.height)
	for y := 0; y < rt.height; y++ {
		for x := 0; x < rt.width; x++ {
			buffer.Set(x, y, toDisplay(rt.pixelStats[y][x].GetColor(), rt.config.Gamma))
		}
	}
	return buffer, calculateImageStats(rt.pixelStats, targetSamples)
}
