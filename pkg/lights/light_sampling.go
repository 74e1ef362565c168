package lights

import (
	"github.com/df07/sphere-pathtracer/pkg/core"
)

// UniformLightSampler picks every light with equal probability
type UniformLightSampler struct {
	lights []Light
}

// NewUniformLightSampler creates a sampler over lights.
// An empty light set is rejected so that sampling never indexes out of range.
func NewUniformLightSampler(lights []Light) (*UniformLightSampler, error) {
	if len(lights) == 0 {
		return nil, ErrNoLights
	}
	return &UniformLightSampler{lights: lights}, nil
}

// SampleLight implements the LightSampler interface
func (uls *UniformLightSampler) SampleLight(u float64) (Light, float64, int) {
	n := len(uls.lights)
	index := int(u * float64(n))
	if index >= n {
		index = n - 1 // u == 1 or rounding
	}
	if index < 0 {
		index = 0
	}
	return uls.lights[index], 1.0 / float64(n), index
}

// GetLightProbability implements the LightSampler interface
func (uls *UniformLightSampler) GetLightProbability(lightIndex int) float64 {
	if lightIndex < 0 || lightIndex >= len(uls.lights) {
		return 0
	}
	return 1.0 / float64(len(uls.lights))
}

// GetLightCount implements the LightSampler interface
func (uls *UniformLightSampler) GetLightCount() int {
	return len(uls.lights)
}

// SampleLight selects a light and samples a point on it as seen from point.
// Returns false when the sampled point coincides with the shading point.
func SampleLight(lightSampler LightSampler, point core.Vec3, sampler core.Sampler) (LightSample, bool) {
	selectedLight, selectionPDF, lightIndex := lightSampler.SampleLight(sampler.Get1D())
	surface := selectedLight.SampleSurface(sampler.Get2D())

	toLight := surface.Point.Subtract(point)
	distance := toLight.Length()
	if distance == 0 {
		return LightSample{}, false
	}
	direction := core.TrustedUnit(toLight.Multiply(1.0 / distance))

	return LightSample{
		SurfaceSample: surface,
		Direction:     direction,
		Distance:      distance,
		Emission:      selectedLight.Emission(),
		SelectionPDF:  selectionPDF,
		LightIndex:    lightIndex,
		ObjectIndex:   selectedLight.ObjectIndex(),
		CosAtLight:    -surface.Normal.Dot(direction),
	}, true
}
