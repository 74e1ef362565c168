package renderer

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/df07/sphere-pathtracer/pkg/core"
	"github.com/df07/sphere-pathtracer/pkg/integrator"
	"github.com/df07/sphere-pathtracer/pkg/scene"
)

func buildScene(t *testing.T, desc scene.Description) *scene.Scene {
	t.Helper()
	s, err := scene.New(desc)
	if err != nil {
		t.Fatalf("Failed to build scene %q: %v", desc.Name, err)
	}
	return s
}

func newTestRaytracer(t *testing.T, s *scene.Scene, config Config) *Raytracer {
	t.Helper()
	rt, err := NewRaytracer(s, integrator.NewPathTracingIntegrator(integrator.DefaultConfig()), config, zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to create raytracer: %v", err)
	}
	return rt
}

// smallSpheres shrinks the default scene so it renders quickly
func smallSpheres() scene.Description {
	desc := scene.NewDefaultDescription()
	desc.Width = 24
	desc.Height = 16
	desc.SamplesPerPixel = 4
	return desc
}

func TestNewRaytracerValidation(t *testing.T) {
	s := buildScene(t, smallSpheres())
	integ := integrator.NewPathTracingIntegrator(integrator.DefaultConfig())

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero tile size", func(c *Config) { c.TileSize = 0 }},
		{"zero gamma", func(c *Config) { c.Gamma = 0 }},
		{"NaN gamma", func(c *Config) { c.Gamma = math.NaN() }},
		{"zero passes", func(c *Config) { c.Passes = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(&config)
			_, err := NewRaytracer(s, integ, config, zerolog.Nop())
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if _, err := NewRaytracer(nil, integ, DefaultConfig(), zerolog.Nop()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for a nil scene, got %v", err)
	}
}

func TestRenderIsDeterministicForFixedSeed(t *testing.T) {
	s := buildScene(t, smallSpheres())

	configA := DefaultConfig()
	configA.TileSize = 8
	configA.NumWorkers = 1

	configB := configA
	configB.NumWorkers = 4

	bufA, _, err := newTestRaytracer(t, s, configA).Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	bufB, _, err := newTestRaytracer(t, s, configB).Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	for i := range bufA.Pixels {
		if bufA.Pixels[i] != bufB.Pixels[i] {
			t.Fatalf("Pixel %d differs between worker counts: %v vs %v", i, bufA.Pixels[i], bufB.Pixels[i])
		}
	}
}

func TestRenderSeedChangesImage(t *testing.T) {
	s := buildScene(t, smallSpheres())

	configA := DefaultConfig()
	configB := DefaultConfig()
	configB.Seed = 1234

	bufA, _, err := newTestRaytracer(t, s, configA).Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	bufB, _, err := newTestRaytracer(t, s, configB).Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	differ := false
	for i := range bufA.Pixels {
		if bufA.Pixels[i] != bufB.Pixels[i] {
			differ = true
			break
		}
	}
	if !differ {
		t.Error("Expected different seeds to produce different noise")
	}
}

func meanLuminanceDifference(a, b *Buffer) float64 {
	sum := 0.0
	for i := range a.Pixels {
		sum += math.Abs(a.Pixels[i].Luminance() - b.Pixels[i].Luminance())
	}
	return sum / float64(len(a.Pixels))
}

func TestRenderSeedsConverge(t *testing.T) {
	if testing.Short() {
		t.Skip("high sample counts")
	}

	desc := scene.NewDefaultDescription()
	desc.Width = 16
	desc.Height = 12
	s := buildScene(t, desc)

	tests := []struct {
		spp int
	}{
		{4},
		{64},
		{1024},
	}

	diffs := make([]float64, len(tests))
	for i, tt := range tests {
		configA := DefaultConfig()
		configA.Seed = 11
		configA.SamplesPerPixel = tt.spp
		configB := configA
		configB.Seed = 9001

		bufA, _, err := newTestRaytracer(t, s, configA).Render(context.Background())
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		bufB, _, err := newTestRaytracer(t, s, configB).Render(context.Background())
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		diffs[i] = meanLuminanceDifference(bufA, bufB)
	}

	if diffs[0] == 0 {
		t.Fatal("Expected independent seeds to disagree at low sample counts")
	}
	// Each step has 16x the samples, so the difference should shrink about 4x
	for i := 1; i < len(diffs); i++ {
		if ratio := diffs[i] / diffs[i-1]; ratio > 0.5 {
			t.Errorf("spp %d -> %d: difference %f -> %f (ratio %.3f), expected roughly 1/sqrt(16)",
				tests[i-1].spp, tests[i].spp, diffs[i-1], diffs[i], ratio)
		}
	}
}

func TestRenderPassIgnoresCancellation(t *testing.T) {
	s := buildScene(t, smallSpheres())
	config := DefaultConfig()
	config.TileSize = 4
	config.NumWorkers = 2
	config.Passes = 2
	rt := newTestRaytracer(t, s, config)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A pass that has started always finishes every tile
	_, stats, err := rt.RenderPass(ctx, 1)
	if err != nil {
		t.Fatalf("RenderPass failed: %v", err)
	}
	want := rt.getSamplesForPass(1)
	if stats.MinSamples != want || stats.MaxSamplesUsed != want {
		t.Errorf("Expected every pixel at %d samples, got min %d max %d", want, stats.MinSamples, stats.MaxSamplesUsed)
	}
	if stats.PassSamples != s.Width*s.Height*want {
		t.Errorf("Expected %d samples in the pass, got %d", s.Width*s.Height*want, stats.PassSamples)
	}

	// The next pass is never started
	if err := rt.RenderProgressive(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRenderTimeSeed(t *testing.T) {
	s := buildScene(t, smallSpheres())
	config := DefaultConfig()
	config.Seed = 0
	rt := newTestRaytracer(t, s, config)
	if rt.Seed() == 0 {
		t.Error("Expected a time-based seed to be drawn when the configured seed is zero")
	}
}

func TestRenderDarkSphereIsBlack(t *testing.T) {
	s := buildScene(t, scene.NewDarkSphereDescription())
	buffer, stats, err := newTestRaytracer(t, s, DefaultConfig()).Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	for i, c := range buffer.Pixels {
		if c != core.Black {
			t.Fatalf("Pixel %d: expected exact black without lights, got %v", i, c)
		}
	}
	if stats.MeanLuminance != 0 {
		t.Errorf("Expected zero mean luminance, got %f", stats.MeanLuminance)
	}
}

func TestRenderEmissiveFill(t *testing.T) {
	tests := []struct {
		name string
		desc scene.Description
	}{
		// The camera sits inside a black emitter
		{"camera inside", scene.NewEmissiveFillDescription()},
		// The camera looks at a lit, diffuse emitter covering the frustum
		{"camera outside", scene.NewEmissiveWallDescription()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := buildScene(t, tt.desc)
			config := DefaultConfig()
			buffer, stats, err := newTestRaytracer(t, s, config).Render(context.Background())
			if err != nil {
				t.Fatalf("Render failed: %v", err)
			}

			// Every sample sees only the emission
			want := tt.desc.Objects[0].Emission.GammaCorrect(config.Gamma)
			for i, c := range buffer.Pixels {
				if math.Abs(c.R-want.R) > 1e-9 || math.Abs(c.G-want.G) > 1e-9 || math.Abs(c.B-want.B) > 1e-9 {
					t.Fatalf("Pixel %d: expected %v, got %v", i, want, c)
				}
			}
			if stats.MeanStandardError > 1e-6 {
				t.Errorf("Expected zero variance, got mean standard error %g", stats.MeanStandardError)
			}
		})
	}
}

func TestRenderProgressivePasses(t *testing.T) {
	s := buildScene(t, smallSpheres())
	config := DefaultConfig()
	config.Passes = 3
	rt := newTestRaytracer(t, s, config)

	var results []PassResult
	err := rt.RenderProgressive(context.Background(), func(result PassResult) error {
		results = append(results, result)
		return nil
	})
	if err != nil {
		t.Fatalf("RenderProgressive failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Expected 3 passes, got %d", len(results))
	}
	prev := 0.0
	prevTotal := 0
	for i, r := range results {
		if r.PassNumber != i+1 {
			t.Errorf("Expected pass number %d, got %d", i+1, r.PassNumber)
		}
		if r.IsLast != (i == 2) {
			t.Errorf("Pass %d: unexpected IsLast=%v", r.PassNumber, r.IsLast)
		}
		if r.Stats.AverageSamples <= prev {
			t.Errorf("Pass %d: samples did not grow (%f after %f)", r.PassNumber, r.Stats.AverageSamples, prev)
		}
		prev = r.Stats.AverageSamples
		if r.Stats.PassSamples != r.Stats.TotalSamples-prevTotal {
			t.Errorf("Pass %d: expected %d new samples, got %d", r.PassNumber, r.Stats.TotalSamples-prevTotal, r.Stats.PassSamples)
		}
		prevTotal = r.Stats.TotalSamples
		for j, c := range r.Buffer.Pixels {
			if !c.IsFinite() {
				t.Fatalf("Pass %d pixel %d is not finite: %v", r.PassNumber, j, c)
			}
		}
	}
	if last := results[2].Stats; last.MinSamples != 4 || last.MaxSamplesUsed != 4 {
		t.Errorf("Expected every pixel to finish with 4 samples, got min %d max %d", last.MinSamples, last.MaxSamplesUsed)
	}
}

func TestRenderProgressiveCallbackError(t *testing.T) {
	s := buildScene(t, smallSpheres())
	config := DefaultConfig()
	config.Passes = 3
	rt := newTestRaytracer(t, s, config)

	stop := errors.New("stop")
	calls := 0
	err := rt.RenderProgressive(context.Background(), func(PassResult) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) {
		t.Errorf("Expected callback error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected rendering to stop after the first pass, got %d calls", calls)
	}
}

func TestRenderCancelled(t *testing.T) {
	s := buildScene(t, smallSpheres())
	rt := newTestRaytracer(t, s, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := rt.Render(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

type panicIntegrator struct{}

func (panicIntegrator) RayColor(core.Ray, *scene.Scene, core.Sampler) core.Color {
	panic("degenerate path")
}

func TestWorkerPoolRecoversPanics(t *testing.T) {
	s := buildScene(t, smallSpheres())
	camera := NewCamera(s.Camera, s.Width, s.Height)
	pool := NewWorkerPool(NewTileRenderer(s, panicIntegrator{}, camera), 2)

	pixelStats := make([][]PixelStats, s.Height)
	for y := range pixelStats {
		pixelStats[y] = make([]PixelStats, s.Width)
	}

	var tasks []TileTask
	for i, tile := range NewTileGrid(s.Width, s.Height, 8, 1) {
		tasks = append(tasks, TileTask{Tile: tile, PassNumber: 1, TargetSamples: 1, TaskID: i, PixelStats: pixelStats})
	}

	_, err := pool.Run(context.Background(), tasks)
	if err == nil {
		t.Fatal("Expected an error from a panicking tile")
	}
	if !strings.Contains(err.Error(), "degenerate path") {
		t.Errorf("Expected panic value in error, got %v", err)
	}
}

func TestWorkerPoolResults(t *testing.T) {
	s := buildScene(t, smallSpheres())
	camera := NewCamera(s.Camera, s.Width, s.Height)
	integ := integrator.NewPathTracingIntegrator(integrator.DefaultConfig())
	pool := NewWorkerPool(NewTileRenderer(s, integ, camera), 3)

	pixelStats := make([][]PixelStats, s.Height)
	for y := range pixelStats {
		pixelStats[y] = make([]PixelStats, s.Width)
	}

	tiles := NewTileGrid(s.Width, s.Height, 8, 1)
	tasks := make([]TileTask, len(tiles))
	for i, tile := range tiles {
		tasks[i] = TileTask{Tile: tile, PassNumber: 1, TargetSamples: 2, TaskID: i, PixelStats: pixelStats}
	}

	results, err := pool.Run(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for i, r := range results {
		want := tiles[i].Bounds.Dx() * tiles[i].Bounds.Dy() * 2
		if r.TaskID != i || r.Stats.Samples != want {
			t.Errorf("Task %d: expected %d samples, got result %+v", i, want, r)
		}
	}
}

func TestBufferToRGBA(t *testing.T) {
	buffer := NewBuffer(2, 1)
	buffer.Set(0, 0, core.White)
	buffer.Set(1, 0, core.NewColor(math.NaN(), 2, -1))

	img := buffer.ToRGBA()
	if got := img.RGBAAt(0, 0); got.R != 255 || got.G != 255 || got.B != 255 || got.A != 255 {
		t.Errorf("Expected white, got %v", got)
	}
	if got := img.RGBAAt(1, 0); got.R != 0 || got.G != 255 || got.B != 0 {
		t.Errorf("Expected NaN and negative channels to clamp to 0 and 2 to 255, got %v", got)
	}
}
