package renderer

import (
	"image"
	"image/color"
	"math/rand"

	"github.com/df07/glcompute-raytracer/pkg/core"
	"github.com/df07/glcompute-raytracer/pkg/geometry"
	"github.com/df07/glcompute-raytracer/pkg/material"
	"github.com/df07/glcompute-raytracer/pkg/scene"
)

// Scene is what the CPU renderer needs from a scene
type Scene interface {
	GetCamera() *geometry.Camera
	GetBackgroundColors() (topColor, bottomColor core.Vec3)
	GetShapes() []geometry.Shape
	GetSamplingConfig() scene.SamplingConfig
}

// Raytracer traces rays the same way raytracer.comp does, one sample at a time
type Raytracer struct {
	scene    Scene
	shapes   []geometry.Shape
	width    int
	height   int
	maxDepth int
}

// NewRaytracer creates a new raytracer
func NewRaytracer(s Scene, width, height int) *Raytracer {
	return &Raytracer{
		scene:    s,
		shapes:   s.GetShapes(),
		width:    width,
		height:   height,
		maxDepth: s.GetSamplingConfig().MaxDepth,
	}
}

// hitWorld finds the closest intersection along the ray
func (rt *Raytracer) hitWorld(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord
	closestSoFar := tMax

	for _, shape := range rt.shapes {
		if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}

// backgroundGradient returns a gradient color based on ray direction
func (rt *Raytracer) backgroundGradient(r core.Ray) core.Vec3 {
	topColor, bottomColor := rt.scene.GetBackgroundColors()

	unitDirection := r.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	return bottomColor.Multiply(1.0 - t).Add(topColor.Multiply(t))
}

// RayColor returns the radiance carried back along the ray. Bounces stop
// after depth scatters, at which point no more light is gathered.
func (rt *Raytracer) RayColor(r core.Ray, depth int, random *rand.Rand) core.Vec3 {
	if depth <= 0 {
		return core.Vec3{}
	}

	hit, isHit := rt.hitWorld(r, 0.001, 1000.0)
	if !isHit {
		return rt.backgroundGradient(r)
	}

	scatter, didScatter := hit.Material.Scatter(r, *hit, random)
	if !didScatter {
		return core.Vec3{}
	}

	return scatter.Attenuation.MultiplyVec(rt.RayColor(scatter.Scattered, depth-1, random))
}

// SamplePixel traces one jittered sample through image pixel (i, j), with j
// counted from the top row.
func (rt *Raytracer) SamplePixel(i, j int, random *rand.Rand) core.Vec3 {
	s := (float64(i) + random.Float64()) / float64(rt.width)
	t := (float64(rt.height-1-j) + random.Float64()) / float64(rt.height)

	ray := rt.scene.GetCamera().GetRay(s, t, random)
	return rt.RayColor(ray, rt.maxDepth, random)
}

// vec3ToColor converts a Vec3 color to RGBA with proper clamping and gamma correction
func vec3ToColor(colorVec core.Vec3) color.RGBA {
	colorVec = colorVec.GammaCorrect(2.0).Clamp(0.0, 1.0)

	return color.RGBA{
		R: uint8(255 * colorVec.X),
		G: uint8(255 * colorVec.Y),
		B: uint8(255 * colorVec.Z),
		A: 255,
	}
}

// RenderPass renders the whole image in one go with a fixed number of samples
func (rt *Raytracer) RenderPass(samplesPerPixel int, random *rand.Rand) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, rt.width, rt.height))

	for j := 0; j < rt.height; j++ {
		for i := 0; i < rt.width; i++ {
			var ps PixelStats
			for sample := 0; sample < samplesPerPixel; sample++ {
				ps.AddSample(rt.SamplePixel(i, j, random))
			}
			img.SetRGBA(i, j, vec3ToColor(ps.GetColor()))
		}
	}

	return img
}
