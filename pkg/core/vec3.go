package core

import (
	"math"
)

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float64
}

// NewVec3 creates a new Vec3
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the sum of two vectors
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Subtract returns the difference of two vectors
func (v Vec3) Subtract(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Multiply returns the vector scaled by a scalar
func (v Vec3) Multiply(scalar float64) Vec3 {
	return Vec3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// MultiplyVec returns component-wise multiplication of two vectors
func (v Vec3) MultiplyVec(other Vec3) Vec3 {
	return Vec3{v.X * other.X, v.Y * other.Y, v.Z * other.Z}
}

// Length returns the magnitude of the vector
func (v Vec3) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

// LengthSquared returns the squared magnitude of the vector
func (v Vec3) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Dot returns the dot product of two vectors
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product of two vectors
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Negate returns the negative of the vector
func (v Vec3) Negate() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Normalize returns a vector of length one in the same direction.
// The zero vector is returned unchanged.
func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	if length == 0 {
		return Vec3{0, 0, 0}
	}
	return Vec3{v.X / length, v.Y / length, v.Z / length}
}

// Unit normalizes v into a UnitVec3. v must be non-zero; a zero vector yields
// a degenerate zero direction that rays and dot products treat as "no direction".
func (v Vec3) Unit() UnitVec3 {
	return UnitVec3{v: v.Normalize()}
}

// IsFinite reports whether no component is NaN or infinite
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// UnitVec3 is a direction whose length is one (within floating point error).
// The only ways to build one are Vec3.Unit and TrustedUnit, so holding a
// UnitVec3 means the normalization already happened.
type UnitVec3 struct {
	v Vec3
}

// TrustedUnit wraps v without normalizing it. The caller guarantees |v| ≈ 1,
// e.g. when v is the cross product of two orthogonal unit vectors.
func TrustedUnit(v Vec3) UnitVec3 {
	return UnitVec3{v: v}
}

// Common axis directions
var (
	UnitX = TrustedUnit(Vec3{1, 0, 0})
	UnitY = TrustedUnit(Vec3{0, 1, 0})
	UnitZ = TrustedUnit(Vec3{0, 0, 1})
)

// Vec returns the direction as a plain vector
func (u UnitVec3) Vec() Vec3 { return u.v }

func (u UnitVec3) X() float64 { return u.v.X }
func (u UnitVec3) Y() float64 { return u.v.Y }
func (u UnitVec3) Z() float64 { return u.v.Z }

// Dot returns the cosine of the angle between two unit vectors
func (u UnitVec3) Dot(other UnitVec3) float64 {
	return u.v.Dot(other.v)
}

// DotVec returns the dot product with an arbitrary vector
func (u UnitVec3) DotVec(other Vec3) float64 {
	return u.v.Dot(other)
}

// Cross returns the renormalized cross product. Parallel inputs give a
// degenerate zero direction.
func (u UnitVec3) Cross(other UnitVec3) UnitVec3 {
	return u.v.Cross(other.v).Unit()
}

// Negate returns the opposite direction
func (u UnitVec3) Negate() UnitVec3 {
	return UnitVec3{v: u.v.Negate()}
}

// Multiply scales the direction into a plain vector
func (u UnitVec3) Multiply(scalar float64) Vec3 {
	return u.v.Multiply(scalar)
}

// Ray represents a ray with an origin and direction
type Ray struct {
	Origin    Vec3
	Direction UnitVec3
}

// NewRay creates a new ray
func NewRay(origin Vec3, direction UnitVec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// NewRayTo creates a ray from origin pointing towards target
func NewRayTo(origin, target Vec3) Ray {
	return Ray{Origin: origin, Direction: target.Subtract(origin).Unit()}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
