package geometry

import "github.com/df07/sphere-pathtracer/pkg/core"

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	T           float64       // Parameter t along the ray, strictly inside (tMin, tMax)
	Point       core.Vec3     // Point of intersection
	Normal      core.UnitVec3 // Surface normal, facing the side the ray came from
	FrontFace   bool          // Whether ray hit the outside of the surface
	ObjectIndex int           // Index of the hit object in the scene's object list
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.UnitVec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) <= 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// Shape interface for objects that can be hit by rays
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (HitRecord, bool)
}
