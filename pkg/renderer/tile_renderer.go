package renderer

import (
	"image"

	"github.com/df07/sphere-pathtracer/pkg/core"
	"github.com/df07/sphere-pathtracer/pkg/integrator"
	"github.com/df07/sphere-pathtracer/pkg/scene"
)

// TileRenderer handles the actual rendering of individual tiles using an integrator
type TileRenderer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
	camera     *Camera
}

// NewTileRenderer creates a new tile renderer with the given scene and integrator
func NewTileRenderer(scene *scene.Scene, integratorInst integrator.Integrator, camera *Camera) *TileRenderer {
	return &TileRenderer{
		scene:      scene,
		integrator: integratorInst,
		camera:     camera,
	}
}

// TileStats counts the work one tile did in one pass
type TileStats struct {
	Samples  int // Samples taken in this pass
	Scrubbed int // Samples of this pass whose NaN/Inf channels were zeroed
}

// RenderTileBounds raises every pixel within bounds to targetSamples samples.
// Pixels are written only inside bounds, so tiles never share state.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, pixelStats [][]PixelStats, sampler core.Sampler, targetSamples int) TileStats {
	var stats TileStats
	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			ps := &pixelStats[j][i]
			before, scrubbedBefore := ps.SampleCount, ps.ScrubbedCount

			tr.samplePixel(i, j, ps, sampler, targetSamples)

			stats.Samples += ps.SampleCount - before
			stats.Scrubbed += ps.ScrubbedCount - scrubbedBefore
		}
	}
	return stats
}

// samplePixel takes samples until the pixel reaches targetSamples
func (tr *TileRenderer) samplePixel(i, j int, ps *PixelStats, sampler core.Sampler, targetSamples int) {
	for ps.SampleCount < targetSamples {
		ray := tr.camera.GetRay(i, j, sampler)
		ps.AddSample(tr.integrator.RayColor(ray, tr.scene, sampler))
	}
}
