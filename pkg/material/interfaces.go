package material

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/sphere-pathtracer/pkg/core"
	"github.com/df07/sphere-pathtracer/pkg/geometry"
)

// ErrUnknownMaterial is returned for material tags outside the supported set
var ErrUnknownMaterial = errors.New("unknown material")

// Type tags the material variant of an object
type Type string

const (
	// Diffuse is ideal Lambertian reflection
	Diffuse Type = "diffuse"
)

// Types lists every supported material tag
func Types() []Type {
	return []Type{Diffuse}
}

// ParseType parses a material tag, ignoring case. An empty tag means Diffuse.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(Diffuse):
		return Diffuse, nil
	}
	return "", errors.Wrapf(ErrUnknownMaterial, "%q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t), nil
}

// Material interface for objects that can scatter rays.
// Each variant supplies its own sampling strategy and matching PDF so the
// integrator never switches on the concrete type.
type Material interface {
	Type() Type

	// Scatter samples an outgoing direction at the hit point
	Scatter(rayIn core.Ray, hit geometry.HitRecord, sampler core.Sampler) (ScatterResult, bool)

	// EvaluateBSDF returns f for light arriving from direction wi
	EvaluateBSDF(wi core.UnitVec3, hit geometry.HitRecord) core.Color

	// PDF returns the solid-angle density with which Scatter picks wi
	PDF(wi, normal core.UnitVec3) float64
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray   // The scattered ray
	Attenuation core.Color // BSDF value f for the scattered direction
	PDF         float64    // Solid-angle density of the scattered direction
}

// Throughput returns f·cosθ/pdf, the weight a path carries through this bounce.
// A zero PDF yields black rather than a division by zero.
func (s ScatterResult) Throughput(normal core.UnitVec3) core.Color {
	if s.PDF <= 0 {
		return core.Black
	}
	cosTheta := s.Scattered.Direction.Dot(normal)
	if cosTheta <= 0 {
		return core.Black
	}
	return s.Attenuation.Scale(cosTheta / s.PDF)
}

// New creates the material for a tag with the given albedo
func New(t Type, albedo core.Color) (Material, error) {
	switch t {
	case Diffuse, "":
		return NewLambertian(albedo), nil
	}
	return nil, errors.Wrapf(ErrUnknownMaterial, "%q", string(t))
}
