package app

import (
	"github.com/chewxy/math32"
	"github.com/df07/glcompute-raytracer/pkg/config"
	"github.com/df07/glcompute-raytracer/pkg/core"
)

// OrbitPosition places the camera on its orbit t seconds in.
// With the default settings this is (cos d, 2 + cos d, sin d), d = t/10.
func OrbitPosition(t float64, orbit config.OrbitConfig) core.Vec3 {
	d := float32(t / orbit.Period)
	r := float32(orbit.Radius)
	c, s := math32.Cos(d), math32.Sin(d)

	return core.NewVec3(
		float64(r*c),
		orbit.Height+float64(r*c),
		float64(r*s),
	)
}
