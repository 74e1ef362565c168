package lights

import (
	"github.com/pkg/errors"

	"github.com/df07/sphere-pathtracer/pkg/core"
)

// ErrNoLights is returned when a light sampler is built from an empty light set
var ErrNoLights = errors.New("scene has no emissive objects")

// Light interface for objects that can be sampled for direct lighting
type Light interface {
	// ObjectIndex is the index of the emitting object in the scene
	ObjectIndex() int

	// SampleSurface picks a point on the light surface with density AreaPDF (per unit area)
	SampleSurface(sample core.Vec2) SurfaceSample

	// Emission is the radiance leaving the surface
	Emission() core.Color
}

// SurfaceSample is a point sampled on a light's surface
type SurfaceSample struct {
	Point   core.Vec3     // Point on the light source
	Normal  core.UnitVec3 // Outward normal at the sample point
	AreaPDF float64       // Density of the sample per unit area
}

// LightSample contains information about a light sampled toward a shading point
type LightSample struct {
	SurfaceSample
	Direction    core.UnitVec3 // Direction from shading point to light
	Distance     float64       // Distance to light
	Emission     core.Color    // Emitted radiance
	SelectionPDF float64       // Probability of having picked this light
	LightIndex   int           // Index of the light in the sampler
	ObjectIndex  int           // Index of the emitting object in the scene
	CosAtLight   float64       // cos between light normal and direction back to the shading point
}

// LightSampler interface for different light sampling strategies
type LightSampler interface {
	// SampleLight selects a light and returns the light, selection probability, and light index
	SampleLight(u float64) (Light, float64, int)

	// GetLightProbability returns the selection probability for a specific light
	GetLightProbability(lightIndex int) float64

	// GetLightCount returns the number of lights in this sampler
	GetLightCount() int
}
