package renderer

import (
	"github.com/df07/sphere-pathtracer/pkg/core"
	"github.com/df07/sphere-pathtracer/pkg/scene"
)

// Camera generates primary rays through a flat virtual screen
type Camera struct {
	origin        core.Vec3
	screenCenter  core.Vec3
	right         core.UnitVec3
	up            core.UnitVec3
	forward       core.UnitVec3
	halfWidth     float64
	halfHeight    float64
	width, height int
}

// NewCamera creates a camera for a width×height image. The screen's
// horizontal half extent comes from the config; its vertical extent follows
// the image aspect ratio.
func NewCamera(config scene.CameraConfig, width, height int) *Camera {
	forward := config.Forward.Unit()
	right := config.Up.Unit().Cross(forward)
	// forward and right are orthogonal unit vectors
	up := core.TrustedUnit(forward.Vec().Cross(right.Vec()))

	halfWidth := config.ScreenHalfExtent
	halfHeight := halfWidth * float64(height) / float64(width)

	return &Camera{
		origin:       config.Position,
		screenCenter: config.Position.Add(forward.Multiply(config.ScreenDistance)),
		right:        right,
		up:           up,
		forward:      forward,
		halfWidth:    halfWidth,
		halfHeight:   halfHeight,
		width:        width,
		height:       height,
	}
}

// GetRay returns a primary ray through pixel (i, j), jittered by a uniform
// offset in [0,1)² inside the pixel. Row 0 is the top of the image.
func (c *Camera) GetRay(i, j int, sampler core.Sampler) core.Ray {
	jitter := sampler.Get2D()
	return c.GetRayAt(i, j, jitter.X, jitter.Y)
}

// GetRayAt returns the ray through the given position inside pixel (i, j),
// where (0.5, 0.5) is the pixel center
func (c *Camera) GetRayAt(i, j int, dx, dy float64) core.Ray {
	u := (float64(i) + dx) / float64(c.width)
	v := (float64(j) + dy) / float64(c.height)

	// Map [0,1] to [-half, +half], flipping v so rows grow downward
	sx := (2*u - 1) * c.halfWidth
	sy := (1 - 2*v) * c.halfHeight

	target := c.screenCenter.
		Add(c.right.Multiply(sx)).
		Add(c.up.Multiply(sy))

	return core.NewRayTo(c.origin, target)
}

// Forward returns the normalized viewing direction
func (c *Camera) Forward() core.UnitVec3 {
	return c.forward
}

// Basis returns the camera's right, up and forward axes
func (c *Camera) Basis() (right, up, forward core.UnitVec3) {
	return c.right, c.up, c.forward
}
