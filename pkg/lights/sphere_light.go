package lights

import (
	"github.com/df07/sphere-pathtracer/pkg/core"
	"github.com/df07/sphere-pathtracer/pkg/geometry"
)

// SphereLight represents a spherical area light
type SphereLight struct {
	geometry.Sphere // Embed sphere for hit testing
	objectIndex     int
	emission        core.Color
}

// NewSphereLight creates a new spherical light for the scene object at objectIndex
func NewSphereLight(objectIndex int, center core.Vec3, radius float64, emission core.Color) *SphereLight {
	return &SphereLight{
		Sphere:      geometry.NewSphere(center, radius),
		objectIndex: objectIndex,
		emission:    emission,
	}
}

// ObjectIndex implements the Light interface
func (sl *SphereLight) ObjectIndex() int {
	return sl.objectIndex
}

// Emission implements the Light interface
func (sl *SphereLight) Emission() core.Color {
	return sl.emission
}

// SampleSurface samples uniformly on the entire sphere surface.
// Points on the far side are returned too; their cosine toward the shading
// point is negative and the caller discards them.
func (sl *SphereLight) SampleSurface(sample core.Vec2) SurfaceSample {
	// Uniform direction on the unit sphere is also the outward normal
	normal := core.SampleOnUnitSphere(sample)

	// Scale to sphere radius and translate to sphere center
	samplePoint := sl.Center.Add(normal.Multiply(sl.Radius))

	// PDF for uniform sphere sampling = 1 / (4π * radius²)
	return SurfaceSample{
		Point:   samplePoint,
		Normal:  normal,
		AreaPDF: 1.0 / sl.SurfaceArea(),
	}
}
