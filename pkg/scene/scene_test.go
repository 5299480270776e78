package scene

import (
	"errors"
	"testing"

	"github.com/df07/glcompute-raytracer/pkg/core"
	"github.com/df07/glcompute-raytracer/pkg/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	for _, info := range List() {
		t.Run(info.ID, func(t *testing.T) {
			s, err := Create(info.ID, 2.0)
			require.NoError(t, err)
			assert.Equal(t, info.ID, s.Name)
			assert.NotNil(t, s.GetCamera())
			assert.NotEmpty(t, s.GetShapes())
			assert.Greater(t, s.GetSamplingConfig().MaxDepth, 0)
			assert.Equal(t, 2.0, s.CameraConfig.AspectRatio)
		})
	}
}

func TestCreateUnknownScene(t *testing.T) {
	_, err := Create("dragon", 1.0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownScene))
	assert.Contains(t, err.Error(), "dragon")
}

func TestListIsSorted(t *testing.T) {
	infos := List()
	require.Len(t, infos, 2)
	assert.Equal(t, "default", infos[0].ID)
	assert.Equal(t, "spheregrid", infos[1].ID)
}

func TestDefaultSceneLayout(t *testing.T) {
	s := NewDefaultScene(2.0)
	require.Len(t, s.Spheres, 5)

	ground := s.Spheres[0]
	assert.Equal(t, core.NewVec3(0, -100.5, 0), ground.Center)
	assert.Equal(t, 100.0, ground.Radius)

	// Outer glass and its bubble share one material
	assert.Same(t, s.Spheres[2].Material, s.Spheres[3].Material)
	assert.Less(t, s.Spheres[3].Radius, 0.0)

	top, bottom := s.GetBackgroundColors()
	assert.Equal(t, core.NewVec3(0.5, 0.7, 1.0), top)
	assert.Equal(t, core.NewVec3(1, 1, 1), bottom)
}

func TestSphereGridIsDeterministic(t *testing.T) {
	a := NewSphereGridScene(1.0).Pack()
	b := NewSphereGridScene(1.0).Pack()
	assert.Equal(t, a, b)
	assert.Equal(t, 26, a.SphereCount())
}

func TestPack(t *testing.T) {
	s := NewDefaultScene(2.0)
	packed := s.Pack()

	require.Equal(t, len(s.Spheres), packed.SphereCount())
	assert.Len(t, packed.Spheres, len(s.Spheres)*SphereStride)
	// Ground, blue, glass and gold; the bubble reuses glass
	require.Equal(t, 4, packed.MaterialCount())

	bubble := packed.Spheres[3*SphereStride : 4*SphereStride]
	assert.Equal(t, []float32{-1, 0, 0, -0.45, 2, 0, 0, 0}, bubble)

	glass := packed.Materials[2*MaterialStride : 3*MaterialStride]
	assert.Equal(t, float32(material.KindDielectric), glass[0])
	assert.Equal(t, float32(1.5), glass[2])

	gold := packed.Materials[3*MaterialStride : 4*MaterialStride]
	assert.Equal(t, float32(material.KindMetal), gold[0])
	assert.InDelta(t, 0.8, gold[4], 1e-6)
	assert.InDelta(t, 0.6, gold[5], 1e-6)
	assert.InDelta(t, 0.2, gold[6], 1e-6)
}

type recordingSetter struct {
	vec3s map[string]mgl32.Vec3
	ints  map[string]int32
}

func (r *recordingSetter) UniformVec3(name string, v mgl32.Vec3) { r.vec3s[name] = v }
func (r *recordingSetter) UniformInt(name string, i int32)      { r.ints[name] = i }

func TestApplyUniforms(t *testing.T) {
	setter := &recordingSetter{vec3s: map[string]mgl32.Vec3{}, ints: map[string]int32{}}
	NewDefaultScene(2.0).ApplyUniforms(setter)

	assert.Equal(t, mgl32.Vec3{0.5, 0.7, 1.0}, setter.vec3s[UniformSkyTop])
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, setter.vec3s[UniformSkyBottom])
	assert.Equal(t, int32(5), setter.ints[UniformSphereCount])
}

func TestOklchToRGBInGamut(t *testing.T) {
	for hue := 0.0; hue < 360; hue += 30 {
		c := oklchToRGB(0.7, 0.15, hue)
		for _, channel := range []float64{c.X, c.Y, c.Z} {
			assert.GreaterOrEqual(t, channel, 0.0)
			assert.LessOrEqual(t, channel, 1.0)
		}
	}
}
