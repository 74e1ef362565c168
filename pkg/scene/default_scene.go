package scene

import (
	"github.com/df07/sphere-pathtracer/pkg/core"
	"github.com/df07/sphere-pathtracer/pkg/material"
)

// NewDefaultDescription creates a small scene with three diffuse spheres
// resting on a large ground sphere, lit by a single spherical light
func NewDefaultDescription() Description {
	return Description{
		Name:            "spheres",
		Width:           320,
		Height:          240,
		SamplesPerPixel: 32,
		Camera:          DefaultCamera(),
		Objects: []Object{
			// Ground
			{Center: core.NewVec3(0, -100.5, 1), Radius: 100, Albedo: core.Gray(0.5), Material: material.Diffuse},

			{Center: core.NewVec3(0, 0, 1), Radius: 0.5, Albedo: core.NewColor(0.8, 0.3, 0.3), Material: material.Diffuse},
			{Center: core.NewVec3(-1, -0.1, 1.4), Radius: 0.4, Albedo: core.NewColor(0.3, 0.8, 0.3), Material: material.Diffuse},
			{Center: core.NewVec3(1, -0.2, 1.2), Radius: 0.3, Albedo: core.NewColor(0.3, 0.3, 0.8), Material: material.Diffuse},

			// Light above and behind the camera's line of sight
			{
				Center:   core.NewVec3(0.5, 1.5, 0.5),
				Radius:   0.4,
				Albedo:   core.Black,
				Emission: core.Gray(8),
				Material: material.Diffuse,
			},
		},
	}
}

// NewEmissiveFillDescription surrounds the camera with a single black-bodied
// emitter, so every primary ray sees exactly its emission
func NewEmissiveFillDescription() Description {
	return Description{
		Name:            "emissive-fill",
		Width:           32,
		Height:          24,
		SamplesPerPixel: 16,
		Camera:          DefaultCamera(),
		Objects: []Object{
			{
				Center:   core.NewVec3(0, 0, 0),
				Radius:   10,
				Albedo:   core.Black,
				Emission: core.NewColor(0.8, 0.5, 0.2),
				Material: material.Diffuse,
			},
		},
	}
}

// NewEmissiveWallDescription places a large diffuse emitter in front of the
// camera so that it covers the whole view. The camera is outside the sphere
// and a convex surface never sees itself, so every pixel is exactly the
// emission despite the non-black albedo.
func NewEmissiveWallDescription() Description {
	return Description{
		Name:            "emissive-wall",
		Width:           32,
		Height:          24,
		SamplesPerPixel: 16,
		Camera:          DefaultCamera(),
		Objects: []Object{
			{
				Center:   core.NewVec3(0, 0, 10),
				Radius:   9.5,
				Albedo:   core.Gray(0.7),
				Emission: core.NewColor(0.3, 0.6, 0.9),
				Material: material.Diffuse,
			},
		},
	}
}

// NewDarkSphereDescription is a single diffuse sphere in front of the camera
// and no light source at all
func NewDarkSphereDescription() Description {
	return Description{
		Name:            "dark-sphere",
		Width:           32,
		Height:          24,
		SamplesPerPixel: 8,
		Camera:          DefaultCamera(),
		Objects: []Object{
			{Center: core.NewVec3(0, 0, 1), Radius: 0.5, Albedo: core.Gray(0.9), Material: material.Diffuse},
		},
	}
}
