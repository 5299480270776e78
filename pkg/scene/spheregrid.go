package scene

import (
	"math"
	"math/rand"

	"github.com/df07/glcompute-raytracer/pkg/core"
	"github.com/df07/glcompute-raytracer/pkg/geometry"
	"github.com/df07/glcompute-raytracer/pkg/material"
)

// oklchToRGB converts OKLCH color values to linear RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0

	// OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b

	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	// LMS to linear RGB
	r := +4.0767416621*l_ - 3.3077115913*m_ + 0.2309699292*s_
	g := -1.2684380046*l_ + 2.6097574011*m_ - 0.3413193965*s_
	blue := -0.0041960863*l_ - 0.7034186147*m_ + 1.7076147010*s_

	return core.NewVec3(r, g, blue).Clamp(0, 1)
}

// NewSphereGridScene creates a 5x5 grid of small spheres centred on the origin.
// Materials are chosen from a fixed seed so the scene is the same on every run.
func NewSphereGridScene(aspectRatio float64) *Scene {
	cameraConfig := geometry.CameraConfig{
		Center:      core.NewVec3(-2, 2, 1),
		LookAt:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        60.0,
		AspectRatio: aspectRatio,
		Aperture:    0.02,
	}

	random := rand.New(rand.NewSource(42))
	ground := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

	spheres := []*geometry.Sphere{
		geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, ground),
	}

	const gridSize = 5
	const spacing = 0.4
	const radius = 0.15
	offset := spacing * (gridSize - 1) / 2

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			center := core.NewVec3(float64(i)*spacing-offset, radius, float64(j)*spacing-offset)
			hue := float64(i*gridSize+j) * 360.0 / (gridSize * gridSize)
			color := oklchToRGB(0.7, 0.15, hue)

			var mat material.Material
			switch choice := random.Float64(); {
			case choice < 0.6:
				mat = material.NewLambertian(color)
			case choice < 0.85:
				mat = material.NewMetal(color, random.Float64()*0.3)
			default:
				mat = material.NewDielectric(1.5)
			}
			spheres = append(spheres, geometry.NewSphere(center, radius, mat))
		}
	}

	return &Scene{
		Name:         "spheregrid",
		Camera:       geometry.NewCamera(cameraConfig),
		CameraConfig: cameraConfig,
		Spheres:      spheres,
		TopColor:     core.NewVec3(0.5, 0.7, 1.0),
		BottomColor:  core.NewVec3(1.0, 1.0, 1.0),
		SamplingConfig: SamplingConfig{
			SamplesPerPixel: 50,
			MaxDepth:        5,
		},
	}
}
