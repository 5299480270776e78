package app

import (
	"math"
	"testing"

	"github.com/df07/glcompute-raytracer/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestOrbitPosition(t *testing.T) {
	orbit := config.Default().Orbit

	tests := []struct {
		t       float64
		x, y, z float64
	}{
		{0, 1, 3, 0},
		{10 * math.Pi / 2, 0, 2, 1},
		{10 * math.Pi, -1, 1, 0},
	}
	for _, tt := range tests {
		p := OrbitPosition(tt.t, orbit)
		assert.InDelta(t, tt.x, p.X, 1e-5, "x at t=%g", tt.t)
		assert.InDelta(t, tt.y, p.Y, 1e-5, "y at t=%g", tt.t)
		assert.InDelta(t, tt.z, p.Z, 1e-5, "z at t=%g", tt.t)
	}
}

func TestOrbitPositionScaled(t *testing.T) {
	orbit := config.OrbitConfig{Enabled: true, Period: 1, Radius: 3, Height: 0.5}
	p := OrbitPosition(0, orbit)
	assert.InDelta(t, 3.0, p.X, 1e-6)
	assert.InDelta(t, 3.5, p.Y, 1e-6)
	assert.InDelta(t, 0.0, p.Z, 1e-6)
}
