package integrator

import (
	"math"

	"github.com/df07/sphere-pathtracer/pkg/core"
)

// RussianRoulette decides how likely a path is to survive each bounce
type RussianRoulette struct {
	GuaranteedDepth int // Bounces up to and including this depth always survive
	DecayDepth      int // From this depth on, survival halves every bounce
}

// DefaultRussianRoulette always continues the first five bounces and starts
// forcing termination at depth 64
func DefaultRussianRoulette() RussianRoulette {
	return RussianRoulette{
		GuaranteedDepth: 5,
		DecayDepth:      64,
	}
}

// SurvivalProbability returns the probability that a path at depth continues
// after hitting a surface with the given albedo. The result is in [0, 1].
func (rr RussianRoulette) SurvivalProbability(depth int, albedo core.Color) float64 {
	if depth <= rr.GuaranteedDepth {
		return 1.0
	}

	p := albedo.MaxComponent()
	if depth >= rr.DecayDepth {
		p *= math.Pow(0.5, float64(depth-rr.DecayDepth))
	}
	return math.Max(0, math.Min(1.0, p))
}

// survive applies the roulette test and returns the compensation factor 1/p
// for a surviving path
func (rr RussianRoulette) survive(depth int, albedo core.Color, sampler core.Sampler) (float64, bool) {
	p := rr.SurvivalProbability(depth, albedo)
	if p <= 0 {
		return 0, false
	}
	if p < 1 && sampler.Get1D() > p {
		return 0, false
	}
	return 1.0 / p, true
}
