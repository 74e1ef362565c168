package renderer

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/df07/sphere-pathtracer/pkg/integrator"
	"github.com/df07/sphere-pathtracer/pkg/scene"
)

// ErrInvalidConfig is returned by NewRaytracer for unusable render settings
var ErrInvalidConfig = errors.New("invalid render config")

// Config contains rendering configuration
type Config struct {
	NumWorkers      int     // Number of parallel workers (0 = use CPU count)
	TileSize        int     // Size of each square tile in pixels
	Seed            int64   // Base seed for the per-tile generators (0 = time based)
	Gamma           float64 // Display gamma applied to the averaged radiance
	Passes          int     // Number of progressive passes
	InitialSamples  int     // Samples per pixel in the first pass
	SamplesPerPixel int     // Overrides the scene's sample count when positive
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		NumWorkers:     0,
		TileSize:       32,
		Seed:           42,
		Gamma:          2.2,
		Passes:         1,
		InitialSamples: 1,
	}
}

// Raytracer drives a render: it owns the per-pixel accumulators, the tile
// grid and the worker pool. The scene is only read.
type Raytracer struct {
	scene           *scene.Scene
	integrator      integrator.Integrator
	camera          *Camera
	config          Config
	width, height   int
	samplesPerPixel int
	seed            int64
	tiles           []*Tile
	pixelStats      [][]PixelStats // Shared pixel statistics array (global image coordinates)
	workerPool      *WorkerPool
	currentPass     int
	logger          zerolog.Logger
}

// NewRaytracer creates a new raytracer for the scene
func NewRaytracer(s *scene.Scene, integratorInst integrator.Integrator, config Config, logger zerolog.Logger) (*Raytracer, error) {
	if s == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "scene is nil")
	}
	if integratorInst == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "integrator is nil")
	}
	if config.TileSize <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "tile size must be positive, got %d", config.TileSize)
	}
	if !(config.Gamma > 0) {
		return nil, errors.Wrapf(ErrInvalidConfig, "gamma must be positive, got %g", config.Gamma)
	}
	if config.Passes <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "passes must be positive, got %d", config.Passes)
	}
	if config.InitialSamples <= 0 {
		config.InitialSamples = 1
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	samplesPerPixel := s.SamplesPerPixel
	if config.SamplesPerPixel > 0 {
		samplesPerPixel = config.SamplesPerPixel
	}

	// Initialize shared pixel statistics array (global image coordinates)
	pixelStats := make([][]PixelStats, s.Height)
	for y := range pixelStats {
		pixelStats[y] = make([]PixelStats, s.Width)
	}

	camera := NewCamera(s.Camera, s.Width, s.Height)

	return &Raytracer{
		scene:           s,
		integrator:      integratorInst,
		camera:          camera,
		config:          config,
		width:           s.Width,
		height:          s.Height,
		samplesPerPixel: samplesPerPixel,
		seed:            seed,
		tiles:           NewTileGrid(s.Width, s.Height, config.TileSize, seed),
		pixelStats:      pixelStats,
		workerPool:      NewWorkerPool(NewTileRenderer(s, integratorInst, camera), config.NumWorkers),
		logger:          logger,
	}, nil
}

// Render runs every remaining pass and returns the final image
func (rt *Raytracer) Render(ctx context.Context) (*Buffer, RenderStats, error) {
	var final PassResult
	err := rt.RenderProgressive(ctx, func(result PassResult) error {
		final = result
		return nil
	})
	if err != nil {
		return nil, RenderStats{}, err
	}
	if final.Buffer == nil {
		// All passes were already rendered
		buffer, stats := rt.assembleCurrentImage(rt.samplesPerPixel)
		return buffer, stats, nil
	}
	return final.Buffer, final.Stats, nil
}

// Seed returns the base seed in use; with a zero configured seed this is the
// time-based seed that was drawn
func (rt *Raytracer) Seed() int64 {
	return rt.seed
}

// Camera returns the camera used for primary rays
func (rt *Raytracer) Camera() *Camera {
	return rt.camera
}

// TotalPasses returns the number of progressive passes this render performs
func (rt *Raytracer) TotalPasses() int {
	return rt.totalPasses()
}
