package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Uniform names read by raytracer.comp for scene-wide state
const (
	UniformSkyTop      = "sky_top"
	UniformSkyBottom   = "sky_bottom"
	UniformSphereCount = "sphere_count"
)

// UniformSetter is the part of a shader program the scene writes to
type UniformSetter interface {
	UniformVec3(name string, v mgl32.Vec3)
	UniformInt(name string, i int32)
}

// ApplyUniforms writes the sky gradient and sphere count into a bound program
func (s *Scene) ApplyUniforms(shader UniformSetter) {
	shader.UniformVec3(UniformSkyTop, s.TopColor.Float32())
	shader.UniformVec3(UniformSkyBottom, s.BottomColor.Float32())
	shader.UniformInt(UniformSphereCount, int32(len(s.Spheres)))
}
