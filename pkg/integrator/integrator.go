package integrator

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/sphere-pathtracer/pkg/core"
	"github.com/df07/sphere-pathtracer/pkg/scene"
)

// ErrUnknownIntegrator is returned by New for unsupported integrator names
var ErrUnknownIntegrator = errors.New("unknown integrator")

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor estimates the radiance arriving along ray. The result may
	// contain NaN or Inf for degenerate paths; callers scrub it.
	RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler) core.Color
}

// Config holds the numeric parameters shared by the integrators
type Config struct {
	TMin            float64 // Closest accepted hit along any ray
	TMax            float64 // Farthest accepted hit along any ray
	ShadowEpsilon   float64 // Trimmed from both ends of shadow rays
	RussianRoulette RussianRoulette
}

// DefaultConfig returns the standard integrator parameters
func DefaultConfig() Config {
	return Config{
		TMin:            1e-3,
		TMax:            math.Inf(1),
		ShadowEpsilon:   1e-3,
		RussianRoulette: DefaultRussianRoulette(),
	}
}

// Integrator names accepted by New
const (
	NamePathTracing = "path"
	NameImplicit    = "implicit"
)

// Names lists the integrators New can build
func Names() []string {
	return []string{NamePathTracing, NameImplicit}
}

// New creates an integrator by name. An empty name selects path tracing.
func New(name string, config Config) (Integrator, error) {
	switch strings.ToLower(name) {
	case "", NamePathTracing:
		return NewPathTracingIntegrator(config), nil
	case NameImplicit:
		return NewImplicitIntegrator(config), nil
	}
	return nil, errors.Wrapf(ErrUnknownIntegrator, "%q", name)
}
