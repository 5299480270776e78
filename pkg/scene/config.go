package scene

import (
	"github.com/df07/glcompute-raytracer/pkg/config"
	"github.com/df07/glcompute-raytracer/pkg/core"
	"github.com/df07/glcompute-raytracer/pkg/geometry"
)

// FromConfig builds cfg.Scene for the given aspect ratio with the configured
// bounce depth, replacing its camera when the config carries one
func FromConfig(cfg config.Config, aspectRatio float64) (*Scene, error) {
	s, err := Create(cfg.Scene, aspectRatio)
	if err != nil {
		return nil, err
	}
	s.SamplingConfig.MaxDepth = cfg.Render.MaxDepth

	if cfg.Camera != nil {
		c := cfg.Camera
		s.SetCamera(geometry.CameraConfig{
			Center:        core.NewVec3(c.Position[0], c.Position[1], c.Position[2]),
			LookAt:        core.NewVec3(c.Target[0], c.Target[1], c.Target[2]),
			Up:            core.NewVec3(c.Up[0], c.Up[1], c.Up[2]),
			VFov:          c.VFov,
			AspectRatio:   aspectRatio,
			Aperture:      c.Aperture,
			FocusDistance: c.FocusDistance,
		})
	}
	return s, nil
}
