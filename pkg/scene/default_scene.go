package scene

import (
	"github.com/df07/glcompute-raytracer/pkg/core"
	"github.com/df07/glcompute-raytracer/pkg/geometry"
	"github.com/df07/glcompute-raytracer/pkg/material"
)

// NewDefaultScene creates the demo scene: three spheres at the origin that the camera orbits
func NewDefaultScene(aspectRatio float64) *Scene {
	cameraConfig := geometry.CameraConfig{
		Center:        core.NewVec3(-2, 2, 1),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          90.0,
		AspectRatio:   aspectRatio,
		Aperture:      0.1,
		FocusDistance: 0.0, // Auto-calculate focus distance
	}

	lambertianGround := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	lambertianBlue := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	metalGold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.0)
	glass := material.NewDielectric(1.5)

	return &Scene{
		Name:         "default",
		Camera:       geometry.NewCamera(cameraConfig),
		CameraConfig: cameraConfig,
		Spheres: []*geometry.Sphere{
			geometry.NewSphere(core.NewVec3(0, -100.5, 0), 100, lambertianGround),
			geometry.NewSphere(core.NewVec3(0, 0, 0), 0.5, lambertianBlue),
			geometry.NewSphere(core.NewVec3(-1, 0, 0), 0.5, glass),
			geometry.NewSphere(core.NewVec3(-1, 0, 0), -0.45, glass), // Hollow glass
			geometry.NewSphere(core.NewVec3(1, 0, 0), 0.5, metalGold),
		},
		TopColor:    core.NewVec3(0.5, 0.7, 1.0),
		BottomColor: core.NewVec3(1.0, 1.0, 1.0),
		SamplingConfig: SamplingConfig{
			SamplesPerPixel: 50,
			MaxDepth:        3,
		},
	}
}
