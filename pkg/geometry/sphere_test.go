package geometry

import (
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/df07/sphere-pathtracer/pkg/core"
)

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0)
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.UnitY)

	hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.UnitVec3
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.UnitZ.Negate(),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "back face hit from inside",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.UnitZ,
			expectedT:      1.0,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray, 0.001, 1000.0)

			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}

			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}

			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}

			if hit.Normal.Vec().Subtract(tt.expectedNormal).Length() > 1e-9 {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}

			// The normal always faces the incoming ray
			if hit.Normal.Dot(ray.Direction) > 0 {
				t.Errorf("Normal %v faces away from ray direction %v", hit.Normal, ray.Direction)
			}
		})
	}
}

func TestSphere_Hit_TangentIsMiss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0)
	ray := core.NewRay(core.NewVec3(1, 0, 2), core.UnitZ.Negate())

	if hit, isHit := sphere.Hit(ray, 0.001, 1000.0); isHit {
		t.Errorf("Expected tangent ray to miss, got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_Bounds(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.UnitZ.Negate())

	// Test tMax bound
	hit, isHit := sphere.Hit(ray, 0.001, 0.5)
	if isHit {
		t.Errorf("Expected miss due to tMax bound, but got hit at t=%f", hit.T)
	}

	// Test tMin bound
	hit, isHit = sphere.Hit(ray, 3.5, 1000.0)
	if isHit {
		t.Errorf("Expected miss due to tMin bound, but got hit at t=%f", hit.T)
	}

	// Near root excluded, far root accepted
	hit, isHit = sphere.Hit(ray, 1.5, 1000.0)
	if !isHit || math.Abs(hit.T-3.0) > 1e-9 {
		t.Errorf("Expected far root t=3, got hit=%t t=%f", isHit, hit.T)
	}

	// Bounds are exclusive
	if hit, isHit = sphere.Hit(ray, 0.001, 1.0); isHit {
		t.Errorf("Expected root at tMax to be excluded, got t=%f", hit.T)
	}
}

func TestSphere_Hit_ClosestIntersection(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0)
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.UnitZ.Negate())

	hit, isHit := sphere.Hit(ray, 0.001, 1000.0)
	if !isHit {
		t.Fatal("Expected hit, but got miss")
	}

	expectedT := 1.0
	if math.Abs(hit.T-expectedT) > 1e-9 {
		t.Errorf("Expected closest intersection at t=%f, got t=%f", expectedT, hit.T)
	}

	if !hit.FrontFace {
		t.Error("Expected closest intersection to be front face")
	}
}

func TestSphere_Hit_TranslationSymmetry(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		center := core.NewVec3(
			rapid.Float64Range(-100, 100).Draw(t, "cx"),
			rapid.Float64Range(-100, 100).Draw(t, "cy"),
			rapid.Float64Range(-100, 100).Draw(t, "cz"),
		)
		radius := rapid.Float64Range(0.1, 10).Draw(t, "radius")
		origin := core.NewVec3(
			rapid.Float64Range(-100, 100).Draw(t, "ox"),
			rapid.Float64Range(-100, 100).Draw(t, "oy"),
			rapid.Float64Range(-100, 100).Draw(t, "oz"),
		)
		direction := core.SampleOnUnitSphere(core.NewVec2(
			rapid.Float64Range(0, 1).Draw(t, "u1"),
			rapid.Float64Range(0, 1).Draw(t, "u2"),
		))

		world := NewSphere(center, radius)
		local := NewSphere(core.Vec3{}, radius)

		worldHit, worldOK := world.Hit(core.NewRay(origin, direction), 1e-3, math.Inf(1))
		localHit, localOK := local.Hit(core.NewRay(origin.Subtract(center), direction), 1e-3, math.Inf(1))

		if worldOK != localOK {
			// Only grazing rays, where rounding decides the discriminant sign, may disagree
			oc := origin.Subtract(center)
			b := direction.DotVec(oc)
			disc := b*b - (oc.LengthSquared() - radius*radius)
			if math.Abs(disc) > 1e-6*(1+oc.LengthSquared()) {
				t.Fatalf("hit mismatch: world=%t local=%t", worldOK, localOK)
			}
			return
		}
		if worldOK && math.Abs(worldHit.T-localHit.T) > 1e-6*(1+localHit.T) {
			t.Fatalf("t mismatch: world=%f local=%f", worldHit.T, localHit.T)
		}
	})
}

func TestSphere_Hit_PointingAwayMisses(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		radius := rapid.Float64Range(0.1, 10).Draw(t, "radius")
		sphere := NewSphere(core.NewVec3(1, 2, 3), radius)

		// Origin outside the sphere
		outward := core.SampleOnUnitSphere(core.NewVec2(
			rapid.Float64Range(0, 1).Draw(t, "o1"),
			rapid.Float64Range(0, 1).Draw(t, "o2"),
		))
		distance := radius * rapid.Float64Range(1.01, 100).Draw(t, "distance")
		origin := sphere.Center.Add(outward.Multiply(distance))

		// Direction with a non-negative component away from the center
		direction := core.SampleCosineHemisphere(outward, core.NewVec2(
			rapid.Float64Range(0, 1).Draw(t, "d1"),
			rapid.Float64Range(0, 1).Draw(t, "d2"),
		))

		if hit, ok := sphere.Hit(core.NewRay(origin, direction), 1e-6, math.Inf(1)); ok {
			t.Fatalf("ray pointing away hit at t=%f", hit.T)
		}
	})
}
