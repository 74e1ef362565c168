package integrator

import (
	"github.com/df07/sphere-pathtracer/pkg/core"
	"github.com/df07/sphere-pathtracer/pkg/scene"
)

// ImplicitIntegrator is a brute-force path tracer without light sampling:
// emission only counts when a BSDF-sampled ray happens to hit an emitter.
// It converges slowly but makes no assumptions about light geometry, which
// makes it the reference for checking the next-event estimator.
type ImplicitIntegrator struct {
	config Config
}

// NewImplicitIntegrator creates a new implicit path tracing integrator
func NewImplicitIntegrator(config Config) *ImplicitIntegrator {
	return &ImplicitIntegrator{config: config}
}

// RayColor implements the Integrator interface
func (it *ImplicitIntegrator) RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler) core.Color {
	hit, isHit := scene.Hit(ray, it.config.TMin, it.config.TMax)
	if !isHit {
		return core.Black
	}

	obj := scene.Object(hit.ObjectIndex)
	radiance := obj.Emission
	throughput := core.White

	for depth := 0; ; depth++ {
		compensation, survived := it.config.RussianRoulette.survive(depth, obj.Albedo, sampler)
		if !survived {
			break
		}
		throughput = throughput.Scale(compensation)

		scatter, didScatter := obj.BSDF.Scatter(ray, hit, sampler)
		if !didScatter {
			break
		}
		weight := scatter.Throughput(hit.Normal)
		if weight.IsBlack() {
			break
		}
		throughput = throughput.Blend(weight)

		ray = scatter.Scattered
		hit, isHit = scene.Hit(ray, it.config.TMin, it.config.TMax)
		if !isHit {
			break
		}
		obj = scene.Object(hit.ObjectIndex)

		radiance = radiance.Add(throughput.Blend(obj.Emission))
	}

	return radiance
}
