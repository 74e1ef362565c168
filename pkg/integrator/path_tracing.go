package integrator

import (
	"math"

	"github.com/df07/sphere-pathtracer/pkg/core"
	"github.com/df07/sphere-pathtracer/pkg/geometry"
	"github.com/df07/sphere-pathtracer/pkg/lights"
	"github.com/df07/sphere-pathtracer/pkg/scene"
)

// PathTracingIntegrator implements unidirectional path tracing with
// next-event estimation. Emission is only collected directly by the primary
// ray; every later bounce receives light through explicit light sampling.
type PathTracingIntegrator struct {
	config Config
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config Config) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		config: config,
	}
}

// RayColor computes the color for a single ray. The recursive estimator is
// unrolled into a loop carrying the path throughput.
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler) core.Color {
	hit, isHit := scene.Hit(ray, pt.config.TMin, pt.config.TMax)
	if !isHit {
		return core.Black
	}

	obj := scene.Object(hit.ObjectIndex)

	// Emission seen directly by the camera
	radiance := obj.Emission
	throughput := core.White

	for depth := 0; ; depth++ {
		// Apply Russian Roulette termination
		compensation, survived := pt.config.RussianRoulette.survive(depth, obj.Albedo, sampler)
		if !survived {
			break
		}
		throughput = throughput.Scale(compensation)

		if scene.HasLights() {
			direct := pt.calculateDirectLighting(scene, hit, obj, sampler)
			radiance = radiance.Add(throughput.Blend(direct))
		}

		// Sample the indirect bounce
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
		hit, isHit = scene.Hit(ray, pt.config.TMin, pt.config.TMax)
		if !isHit {
			break
		}
		obj = scene.Object(hit.ObjectIndex)
	}

	return radiance
}

// calculateDirectLighting samples one point on one light and returns its
// unoccluded contribution f·Le·G / (p_area·p_select). Emission is treated as
// two-sided, matching what BSDF-sampled rays see.
func (pt *PathTracingIntegrator) calculateDirectLighting(scene *scene.Scene, hit geometry.HitRecord, obj *scene.Object, sampler core.Sampler) core.Color {
	lightSample, ok := lights.SampleLight(scene.LightSampler, hit.Point, sampler)
	if !ok {
		return core.Black
	}

	// Calculate the cosine factor at the surface
	cosSurface := lightSample.Direction.Dot(hit.Normal)
	if cosSurface <= 0 {
		return core.Black // Light is behind the surface
	}
	cosLight := math.Abs(lightSample.CosAtLight)
	if cosLight == 0 {
		return core.Black
	}

	// Check if light is visible (shadow ray)
	epsilon := pt.config.ShadowEpsilon
	if lightSample.Distance <= 2*epsilon {
		return core.Black
	}
	shadowRay := core.NewRay(hit.Point, lightSample.Direction)
	if scene.Occluded(shadowRay, epsilon, lightSample.Distance-epsilon) {
		return core.Black
	}

	pdf := lightSample.AreaPDF * lightSample.SelectionPDF
	if pdf <= 0 {
		return core.Black
	}

	bsdf := obj.BSDF.EvaluateBSDF(lightSample.Direction, hit)
	geometryTerm := cosSurface * cosLight / (lightSample.Distance * lightSample.Distance)

	return bsdf.Blend(lightSample.Emission).Scale(geometryTerm / pdf)
}
