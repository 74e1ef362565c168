package geometry

import (
	"math"

	"github.com/df07/sphere-pathtracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center core.Vec3
	Radius float64
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64) Sphere {
	return Sphere{Center: center, Radius: radius}
}

// Hit tests if a ray intersects with the sphere.
// The ray direction is unit length, so the quadratic reduces to t² + 2bt + c = 0.
func (s Sphere) Hit(ray core.Ray, tMin, tMax float64) (HitRecord, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(s.Center)

	b := ray.Direction.DotVec(oc)
	c := oc.LengthSquared() - s.Radius*s.Radius

	// Tangent rays (zero discriminant) count as a miss
	discriminant := b*b - c
	if discriminant <= 0 {
		return HitRecord{}, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first; a ray starting inside the
	// sphere only has the far root in range
	root := -b - sqrtD
	if root <= tMin || root >= tMax {
		root = -b + sqrtD
		if root <= tMin || root >= tMax {
			return HitRecord{}, false
		}
	}

	hit := HitRecord{
		T:     root,
		Point: ray.At(root),
	}
	hit.SetFaceNormal(ray, hit.Point.Subtract(s.Center).Unit())

	return hit, true
}

// Contains reports whether p lies strictly inside the sphere
func (s Sphere) Contains(p core.Vec3) bool {
	return p.Subtract(s.Center).LengthSquared() < s.Radius*s.Radius
}

// SurfaceArea returns 4πr²
func (s Sphere) SurfaceArea() float64 {
	return 4.0 * math.Pi * s.Radius * s.Radius
}
