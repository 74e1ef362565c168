package material

import (
	"math"

	"github.com/df07/sphere-pathtracer/pkg/core"
	"github.com/df07/sphere-pathtracer/pkg/geometry"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Color // Base reflectance
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Color) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// Type implements the Material interface
func (l *Lambertian) Type() Type {
	return Diffuse
}

// Scatter implements the Material interface for lambertian scattering
func (l *Lambertian) Scatter(rayIn core.Ray, hit geometry.HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// Generate cosine-weighted random direction in hemisphere around normal
	scatterDirection := core.SampleCosineHemisphere(hit.Normal, sampler.Get2D())

	// PDF: cos(θ) / π where θ is angle from normal
	pdf := core.CosineHemispherePDF(scatterDirection.Dot(hit.Normal))

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, scatterDirection),
		Attenuation: l.Albedo.Scale(1.0 / math.Pi), // BSDF: albedo / π
		PDF:         pdf,
	}, true
}

// EvaluateBSDF implements the Material interface
func (l *Lambertian) EvaluateBSDF(wi core.UnitVec3, hit geometry.HitRecord) core.Color {
	if wi.Dot(hit.Normal) <= 0 {
		return core.Black // Below surface
	}
	return l.Albedo.Scale(1.0 / math.Pi)
}

// PDF implements the Material interface
func (l *Lambertian) PDF(wi, normal core.UnitVec3) float64 {
	return core.CosineHemispherePDF(wi.Dot(normal))
}
