package geometry

import (
	"math"
	"math/rand"

	"github.com/df07/glcompute-raytracer/pkg/core"
	"github.com/go-gl/mathgl/mgl32"
)

// Uniform names read by raytracer.comp
const (
	UniformLowerLeft = "cam.lower_left"
	UniformOrigin    = "cam.origin"
	UniformRight     = "cam.right"
	UniformUp        = "cam.up"
	UniformU         = "cam.u"
	UniformV         = "cam.v"
	UniformLens      = "cam.lens"
)

// CameraConfig describes a thin-lens camera
type CameraConfig struct {
	Center        core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera looks at
	Up            core.Vec3 // World up direction
	VFov          float64   // Vertical field of view in degrees
	AspectRatio   float64   // Width / height
	Aperture      float64   // Lens diameter; 0 disables depth of field
	FocusDistance float64   // Distance to the focal plane; 0 = distance to LookAt
}

// UniformSetter is the part of a shader program the camera writes to
type UniformSetter interface {
	UniformVec3(name string, v mgl32.Vec3)
	UniformFloat(name string, f float32)
}

// CameraUniforms is the single precision camera state uploaded to the compute shader
type CameraUniforms struct {
	LowerLeft mgl32.Vec3
	Origin    mgl32.Vec3
	Right     mgl32.Vec3
	Up        mgl32.Vec3
	U         mgl32.Vec3
	V         mgl32.Vec3
	Lens      float32
}

// Camera generates primary rays and the uniforms that let the compute shader do the same
type Camera struct {
	config CameraConfig

	origin     core.Vec3
	lowerLeft  core.Vec3
	horizontal core.Vec3 // Full width of the focal rectangle
	vertical   core.Vec3 // Full height of the focal rectangle
	u, v, w    core.Vec3 // Orthonormal basis, w points away from the view direction
	lensRadius float64
	focus      float64
}

// NewCamera creates a camera from the given configuration
func NewCamera(config CameraConfig) *Camera {
	c := &Camera{config: config}
	c.Update(config.Center, config.LookAt, config.Up)
	return c
}

// Update repositions the camera, keeping field of view, aspect ratio and aperture
func (c *Camera) Update(position, lookAt, up core.Vec3) {
	c.config.Center = position
	c.config.LookAt = lookAt
	c.config.Up = up

	theta := c.config.VFov * math.Pi / 180.0
	hh := math.Tan(theta / 2)
	hw := c.config.AspectRatio * hh

	c.focus = c.config.FocusDistance
	if c.focus <= 0 {
		c.focus = position.Subtract(lookAt).Length()
	}

	c.w = position.Subtract(lookAt).Normalize()
	c.u = up.Cross(c.w).Normalize()
	c.v = c.w.Cross(c.u)

	c.origin = position
	c.lensRadius = c.config.Aperture / 2
	c.lowerLeft = c.origin.
		Subtract(c.u.Multiply(hw * c.focus)).
		Subtract(c.v.Multiply(hh * c.focus)).
		Subtract(c.w.Multiply(c.focus))
	c.horizontal = c.u.Multiply(2 * hw * c.focus)
	c.vertical = c.v.Multiply(2 * hh * c.focus)
}

// Config returns the configuration the camera currently reflects
func (c *Camera) Config() CameraConfig {
	return c.config
}

// Origin returns the camera position
func (c *Camera) Origin() core.Vec3 {
	return c.origin
}

// Forward returns the unit view direction
func (c *Camera) Forward() core.Vec3 {
	return c.w.Negate()
}

// FocusDistance returns the distance to the focal plane in use
func (c *Camera) FocusDistance() float64 {
	return c.focus
}

// Uniforms returns the camera state in shader form
func (c *Camera) Uniforms() CameraUniforms {
	return CameraUniforms{
		LowerLeft: c.lowerLeft.Float32(),
		Origin:    c.origin.Float32(),
		Right:     c.horizontal.Float32(),
		Up:        c.vertical.Float32(),
		U:         c.u.Float32(),
		V:         c.v.Float32(),
		Lens:      float32(c.lensRadius),
	}
}

// ApplyUniforms writes the camera into the cam struct of a bound program
func (c *Camera) ApplyUniforms(shader UniformSetter) {
	u := c.Uniforms()
	shader.UniformVec3(UniformLowerLeft, u.LowerLeft)
	shader.UniformVec3(UniformOrigin, u.Origin)
	shader.UniformVec3(UniformRight, u.Right)
	shader.UniformVec3(UniformUp, u.Up)
	shader.UniformVec3(UniformU, u.U)
	shader.UniformVec3(UniformV, u.V)
	shader.UniformFloat(UniformLens, u.Lens)
}

// GetRay generates a ray for screen coordinates (s, t) where 0 <= s,t <= 1,
// with (0, 0) at the bottom left. The origin is jittered across the lens.
func (c *Camera) GetRay(s, t float64, random *rand.Rand) core.Ray {
	var offset core.Vec3
	if c.lensRadius > 0 {
		rd := core.RandomInUnitDisk(random).Multiply(c.lensRadius)
		offset = c.u.Multiply(rd.X).Add(c.v.Multiply(rd.Y))
	}

	direction := c.lowerLeft.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin).
		Subtract(offset)

	return core.NewRay(c.origin.Add(offset), direction)
}
