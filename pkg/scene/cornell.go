package scene

import (
	"github.com/df07/sphere-pathtracer/pkg/core"
	"github.com/df07/sphere-pathtracer/pkg/material"
)

// NewCornellDescription creates a Cornell box built only from spheres: the
// walls are spheres so large that their visible caps are nearly flat.
// The front of the box is left open for the camera. The camera looks down
// -Z, so +X is on the left of the image and the red wall sits at x=99.
func NewCornellDescription() Description {
	const wallRadius = 1e5

	// Create materials
	white := core.Gray(0.75)
	red := core.NewColor(0.75, 0.25, 0.25)
	blue := core.NewColor(0.25, 0.25, 0.75)

	diffuse := func(center core.Vec3, radius float64, albedo core.Color) Object {
		return Object{Center: center, Radius: radius, Albedo: albedo, Material: material.Diffuse}
	}

	objects := []Object{
		// Walls
		diffuse(core.NewVec3(-wallRadius+99, 40.8, 81.6), wallRadius, red),
		diffuse(core.NewVec3(wallRadius+1, 40.8, 81.6), wallRadius, blue),
		diffuse(core.NewVec3(50, 40.8, wallRadius), wallRadius, white),
		diffuse(core.NewVec3(50, wallRadius, 81.6), wallRadius, white),
		diffuse(core.NewVec3(50, -wallRadius+81.6, 81.6), wallRadius, white),

		// Balls
		diffuse(core.NewVec3(27, 16.5, 47), 16.5, core.Gray(0.9)),
		diffuse(core.NewVec3(73, 16.5, 78), 16.5, core.NewColor(0.85, 0.8, 0.55)),

		// Light hanging just below the ceiling
		{
			Center:   core.NewVec3(50, 74, 81.6),
			Radius:   5,
			Albedo:   core.Black,
			Emission: core.Gray(30),
			Material: material.Diffuse,
		},
	}

	return Description{
		Name:            "cornell",
		Width:           256,
		Height:          256,
		SamplesPerPixel: 64,
		Camera: CameraConfig{
			Position:         core.NewVec3(50, 52, 295.6),
			Forward:          core.NewVec3(0, -0.042612, -1),
			Up:               core.NewVec3(0, 1, 0),
			ScreenDistance:   1.0,
			ScreenHalfExtent: 0.5135,
		},
		Objects: objects,
	}
}
