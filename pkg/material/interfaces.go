package material

import (
	"math/rand"

	"github.com/df07/glcompute-raytracer/pkg/core"
)

// Kind identifies a material model. The numeric values are shared with
// raytracer.comp and must not be reordered.
type Kind int

const (
	KindLambertian Kind = iota
	KindMetal
	KindDielectric
)

func (k Kind) String() string {
	switch k {
	case KindLambertian:
		return "lambertian"
	case KindMetal:
		return "metal"
	case KindDielectric:
		return "dielectric"
	default:
		return "unknown"
	}
}

// Material interface for objects that can scatter rays
type Material interface {
	Scatter(rayIn core.Ray, hit HitRecord, random *rand.Rand) (ScatterResult, bool)

	// Parameters describes the material in the flat form the compute shader reads
	Parameters() Parameters
}

// Parameters is the shader-side description of a material
type Parameters struct {
	Kind            Kind
	Albedo          core.Vec3
	Fuzz            float64 // metal only
	RefractiveIndex float64 // dielectric only
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // Color attenuation
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Surface normal at intersection, always against the ray
	T         float64   // Parameter t along the ray
	FrontFace bool      // Whether ray hit the front face
	Material  Material  // Material of the hit object
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}
