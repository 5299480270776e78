package material

import (
	"math/rand"

	"github.com/df07/glcompute-raytracer/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Vec3
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// Scatter bounces the ray in a cosine-weighted direction around the normal.
// Sampling the normal offset by a unit vector gives the cosine distribution
// directly, so the attenuation is just the albedo.
func (l *Lambertian) Scatter(rayIn core.Ray, hit HitRecord, random *rand.Rand) (ScatterResult, bool) {
	direction := hit.Normal.Add(core.RandomUnitVector(random))

	// Catch degenerate directions that cancel the normal
	if direction.NearZero() {
		direction = hit.Normal
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: l.Albedo,
	}, true
}

// Parameters implements Material
func (l *Lambertian) Parameters() Parameters {
	return Parameters{Kind: KindLambertian, Albedo: l.Albedo}
}
