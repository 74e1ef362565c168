package core

import (
	"math"
	"math/rand"
)

// Vec2 holds a pair of sample values
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a standard Go random generator.
// A RandomSampler is owned by exactly one goroutine at a time.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own generator seeded with seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// OrthonormalBasis builds tangent vectors (u, v) so that (u, v, normal) is
// orthonormal. The helper axis is world X unless the normal is nearly
// parallel to it, in which case world Y is used.
func OrthonormalBasis(normal UnitVec3) (UnitVec3, UnitVec3) {
	helper := UnitX
	if math.Abs(normal.X()) > 0.9 {
		helper = UnitY
	}

	u := helper.Cross(normal)
	// u and normal are orthogonal unit vectors, so their cross product is unit length
	v := TrustedUnit(normal.Vec().Cross(u.Vec()))
	return u, v
}

// SampleCosineHemisphere generates a cosine-weighted random direction in hemisphere around normal
func SampleCosineHemisphere(normal UnitVec3, sample Vec2) UnitVec3 {
	phi := 2.0 * math.Pi * sample.X
	cosTheta := math.Sqrt(sample.Y)
	sinTheta := math.Sqrt(math.Max(0, 1.0-cosTheta*cosTheta))

	u, v := OrthonormalBasis(normal)

	// Transform to world space and renormalize against drift
	direction := u.Multiply(sinTheta * math.Cos(phi)).
		Add(v.Multiply(sinTheta * math.Sin(phi))).
		Add(normal.Multiply(cosTheta))
	return direction.Unit()
}

// CosineHemispherePDF returns the solid-angle density cos(θ)/π of SampleCosineHemisphere
func CosineHemispherePDF(cosTheta float64) float64 {
	if cosTheta <= 0 {
		return 0
	}
	return cosTheta / math.Pi
}

// SampleOnUnitSphere generates a uniform random direction on the unit sphere
func SampleOnUnitSphere(sample Vec2) UnitVec3 {
	z := 1.0 - 2.0*sample.X // z ∈ [-1, 1]
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	return TrustedUnit(NewVec3(r*math.Cos(phi), r*math.Sin(phi), z))
}
