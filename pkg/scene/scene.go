package scene

import (
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/df07/sphere-pathtracer/pkg/core"
	"github.com/df07/sphere-pathtracer/pkg/geometry"
	"github.com/df07/sphere-pathtracer/pkg/lights"
	"github.com/df07/sphere-pathtracer/pkg/material"
)

var (
	// ErrNoLights is returned by New when lights are required but no object emits
	ErrNoLights = lights.ErrNoLights

	// ErrInvalidScene is returned by New for descriptions that cannot be rendered
	ErrInvalidScene = errors.New("invalid scene")
)

// Object is a sphere with diffuse reflectance and optional emission
type Object struct {
	Center   core.Vec3
	Radius   float64
	Albedo   core.Color
	Emission core.Color    // Black if the object does not emit
	Material material.Type // Material tag; empty means diffuse

	// BSDF is built from Material and Albedo by New
	BSDF material.Material
}

// IsEmissive reports whether the object is a light source
func (o Object) IsEmissive() bool {
	return !o.Emission.IsBlack()
}

// CameraConfig places a pinhole camera in front of a virtual screen. The field
// of view is given as the screen's world-space half width at ScreenDistance.
type CameraConfig struct {
	Position         core.Vec3 // Eye position
	Forward          core.Vec3 // Viewing direction, need not be normalized
	Up               core.Vec3 // Up hint, must not be parallel to Forward
	ScreenDistance   float64   // Distance from the eye to the screen
	ScreenHalfExtent float64   // Half of the screen width in world units
}

// DefaultCamera is a 90° horizontal field of view looking down +Z, with the
// screen plane passing through the origin
func DefaultCamera() CameraConfig {
	return CameraConfig{
		Position:         core.NewVec3(0, 0, -0.5),
		Forward:          core.NewVec3(0, 0, 1),
		Up:               core.NewVec3(0, 1, 0),
		ScreenDistance:   0.5,
		ScreenHalfExtent: 0.5,
	}
}

// Description is the decoded scene input: image size, sample count, camera
// and the ordered object list
type Description struct {
	Name            string
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Number of rays per pixel
	Camera          CameraConfig
	Objects         []Object
}

// Scene contains all the elements needed for rendering. It is read-only
// after New and shared by every render worker.
type Scene struct {
	Name            string
	Width           int
	Height          int
	SamplesPerPixel int
	Camera          CameraConfig
	Objects         []Object
	Lights          []lights.Light      // Emissive objects, in object order
	LightSampler    lights.LightSampler // nil when the scene has no lights

	spheres []geometry.Sphere
}

// Option configures scene construction
type Option func(*options)

type options struct {
	logger        zerolog.Logger
	requireLights bool
}

// WithLogger sets the logger used for construction warnings
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRequireLights makes New fail with ErrNoLights when no object emits
func WithRequireLights() Option {
	return func(o *options) {
		o.requireLights = true
	}
}

// New validates the description and builds the scene: materials, the light
// index and the light sampler are computed once here.
func New(desc Description, opts ...Option) (*Scene, error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	if desc.Camera == (CameraConfig{}) {
		desc.Camera = DefaultCamera()
	}
	if err := validate(desc); err != nil {
		return nil, err
	}

	s := &Scene{
		Name:            desc.Name,
		Width:           desc.Width,
		Height:          desc.Height,
		SamplesPerPixel: desc.SamplesPerPixel,
		Camera:          desc.Camera,
		Objects:         make([]Object, len(desc.Objects)),
		spheres:         make([]geometry.Sphere, len(desc.Objects)),
	}

	for i, obj := range desc.Objects {
		if obj.Material == "" {
			obj.Material = material.Diffuse
		}
		bsdf, err := material.New(obj.Material, obj.Albedo)
		if err != nil {
			return nil, errors.Wrapf(err, "object %d", i)
		}
		obj.BSDF = bsdf

		s.Objects[i] = obj
		s.spheres[i] = geometry.NewSphere(obj.Center, obj.Radius)

		if obj.IsEmissive() {
			s.Lights = append(s.Lights, lights.NewSphereLight(i, obj.Center, obj.Radius, obj.Emission))
		}
	}

	if len(s.Lights) == 0 {
		if o.requireLights {
			return nil, errors.Wrapf(ErrNoLights, "scene %q", desc.Name)
		}
		o.logger.Warn().
			Str("scene", desc.Name).
			Int("objects", len(s.Objects)).
			Msg("scene has no emissive objects; rendering without direct lighting")
	} else {
		sampler, err := lights.NewUniformLightSampler(s.Lights)
		if err != nil {
			return nil, err
		}
		s.LightSampler = sampler
	}

	o.logger.Debug().
		Str("scene", desc.Name).
		Int("width", s.Width).
		Int("height", s.Height).
		Int("spp", s.SamplesPerPixel).
		Int("objects", len(s.Objects)).
		Int("lights", len(s.Lights)).
		Msg("scene built")

	return s, nil
}

func validate(desc Description) error {
	if desc.Width <= 0 || desc.Height <= 0 {
		return errors.Wrapf(ErrInvalidScene, "image size must be positive, got %dx%d", desc.Width, desc.Height)
	}
	if desc.SamplesPerPixel <= 0 {
		return errors.Wrapf(ErrInvalidScene, "samples per pixel must be positive, got %d", desc.SamplesPerPixel)
	}

	cam := desc.Camera
	if !cam.Position.IsFinite() || !cam.Forward.IsFinite() || !cam.Up.IsFinite() {
		return errors.Wrap(ErrInvalidScene, "camera vectors must be finite")
	}
	if cam.Forward.LengthSquared() == 0 {
		return errors.Wrap(ErrInvalidScene, "camera forward must be non-zero")
	}
	if cam.Up.Cross(cam.Forward).LengthSquared() == 0 {
		return errors.Wrap(ErrInvalidScene, "camera up must not be parallel to forward")
	}
	if !(cam.ScreenDistance > 0) || !(cam.ScreenHalfExtent > 0) {
		return errors.Wrapf(ErrInvalidScene, "camera screen distance and half extent must be positive, got %g and %g",
			cam.ScreenDistance, cam.ScreenHalfExtent)
	}

	for i, obj := range desc.Objects {
		if !obj.Center.IsFinite() {
			return errors.Wrapf(ErrInvalidScene, "object %d: center must be finite", i)
		}
		if !(obj.Radius > 0) || math.IsInf(obj.Radius, 0) {
			return errors.Wrapf(ErrInvalidScene, "object %d: radius must be positive, got %g", i, obj.Radius)
		}
		if !validColor(obj.Albedo) {
			return errors.Wrapf(ErrInvalidScene, "object %d: albedo must be finite and non-negative, got %v", i, obj.Albedo)
		}
		if !validColor(obj.Emission) {
			return errors.Wrapf(ErrInvalidScene, "object %d: emission must be finite and non-negative, got %v", i, obj.Emission)
		}
	}
	return nil
}

func validColor(c core.Color) bool {
	return c.IsFinite() && c.R >= 0 && c.G >= 0 && c.B >= 0
}

// Hit finds the closest object hit by the ray with T strictly inside (tMin, tMax)
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (geometry.HitRecord, bool) {
	var closest geometry.HitRecord
	hitAnything := false
	closestSoFar := tMax

	for i, sphere := range s.spheres {
		if hit, ok := sphere.Hit(ray, tMin, closestSoFar); ok {
			hit.ObjectIndex = i
			closest = hit
			closestSoFar = hit.T
			hitAnything = true
		}
	}

	return closest, hitAnything
}

// Occluded reports whether any object blocks the ray inside (tMin, tMax)
func (s *Scene) Occluded(ray core.Ray, tMin, tMax float64) bool {
	for _, sphere := range s.spheres {
		if _, ok := sphere.Hit(ray, tMin, tMax); ok {
			return true
		}
	}
	return false
}

// Object returns the object at index i
func (s *Scene) Object(i int) *Object {
	return &s.Objects[i]
}

// LightCount returns the number of emissive objects
func (s *Scene) LightCount() int {
	return len(s.Lights)
}

// HasLights reports whether next-event estimation can be used
func (s *Scene) HasLights() bool {
	return s.LightSampler != nil
}

// Description returns the input record the scene was built from
func (s *Scene) Description() Description {
	objects := make([]Object, len(s.Objects))
	copy(objects, s.Objects)
	for i := range objects {
		objects[i].BSDF = nil
	}
	return Description{
		Name:            s.Name,
		Width:           s.Width,
		Height:          s.Height,
		SamplesPerPixel: s.SamplesPerPixel,
		Camera:          s.Camera,
		Objects:         objects,
	}
}
