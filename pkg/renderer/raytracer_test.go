package renderer

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/glcompute-raytracer/pkg/config"
	"github.com/df07/glcompute-raytracer/pkg/core"
	"github.com/df07/glcompute-raytracer/pkg/geometry"
	"github.com/df07/glcompute-raytracer/pkg/material"
	"github.com/df07/glcompute-raytracer/pkg/scene"
)

// MockScene for raytracer testing
type MockScene struct {
	shapes      []geometry.Shape
	topColor    core.Vec3
	bottomColor core.Vec3
	camera      *geometry.Camera
	config      scene.SamplingConfig
}

func (m *MockScene) GetCamera() *geometry.Camera                 { return m.camera }
func (m *MockScene) GetBackgroundColors() (core.Vec3, core.Vec3) { return m.topColor, m.bottomColor }
func (m *MockScene) GetShapes() []geometry.Shape                 { return m.shapes }
func (m *MockScene) GetSamplingConfig() scene.SamplingConfig     { return m.config }

// createMockScene creates a pinhole camera looking down -Z at an optional shape
func createMockScene(shapes ...geometry.Shape) *MockScene {
	camera := geometry.NewCamera(geometry.CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		AspectRatio: 1.0,
		VFov:        45.0,
	})

	return &MockScene{
		shapes:      shapes,
		topColor:    core.NewVec3(0.5, 0.7, 1.0),
		bottomColor: core.NewVec3(1.0, 1.0, 1.0),
		camera:      camera,
		config:      scene.SamplingConfig{MaxDepth: 10},
	}
}

func TestRaytracer_BackgroundGradient(t *testing.T) {
	rt := NewRaytracer(createMockScene(), 10, 10)
	random := rand.New(rand.NewSource(1))

	up := rt.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0)), 5, random)
	if up != core.NewVec3(0.5, 0.7, 1.0) {
		t.Errorf("Expected top color straight up, got %v", up)
	}

	down := rt.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, -1, 0)), 5, random)
	if down != core.NewVec3(1, 1, 1) {
		t.Errorf("Expected bottom color straight down, got %v", down)
	}

	horizon := rt.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(1, 0, 0)), 5, random)
	if math.Abs(horizon.X-0.75) > 1e-12 || math.Abs(horizon.Y-0.85) > 1e-12 || horizon.Z != 1 {
		t.Errorf("Expected halfway blend at the horizon, got %v", horizon)
	}
}

func TestRaytracer_DepthLimit(t *testing.T) {
	rt := NewRaytracer(createMockScene(), 10, 10)
	c := rt.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0)), 0, rand.New(rand.NewSource(1)))
	if c != (core.Vec3{}) {
		t.Errorf("Expected black once depth is exhausted, got %v", c)
	}
}

func TestRaytracer_MirrorReflectsSky(t *testing.T) {
	// Perfect mirror facing the camera sends the ray straight back along +Z
	mirror := geometry.NewSphere(core.NewVec3(0, 0, -2), 0.5, material.NewMetal(core.NewVec3(0.5, 0.5, 0.5), 0))
	rt := NewRaytracer(createMockScene(mirror), 10, 10)

	c := rt.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), 5, rand.New(rand.NewSource(1)))
	expected := core.NewVec3(0.75, 0.85, 1.0).Multiply(0.5)
	if c.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected attenuated horizon color %v, got %v", expected, c)
	}
}

func TestRaytracer_DiffuseIsDarkerThanSky(t *testing.T) {
	diffuse := geometry.NewSphere(core.NewVec3(0, 0, -2), 0.5, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	rt := NewRaytracer(createMockScene(diffuse), 10, 10)
	random := rand.New(rand.NewSource(3))

	var ps PixelStats
	for i := 0; i < 200; i++ {
		ps.AddSample(rt.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), 10, random))
	}

	lum := ps.GetColor().Luminance()
	if lum <= 0 || lum >= 0.5 {
		t.Errorf("Expected diffuse sphere luminance in (0, 0.5), got %f", lum)
	}
}

func TestRaytracer_SamplePixelOrientation(t *testing.T) {
	// Only the lower half of the view is covered by a huge ground sphere
	ground := geometry.NewSphere(core.NewVec3(0, -1001, -1), 1000, material.NewLambertian(core.Vec3{}))
	rt := NewRaytracer(createMockScene(ground), 10, 10)
	random := rand.New(rand.NewSource(5))

	top := rt.SamplePixel(5, 0, random)
	bottom := rt.SamplePixel(5, 9, random)

	if top.Luminance() == 0 {
		t.Errorf("Expected sky in the top row, got %v", top)
	}
	if bottom != (core.Vec3{}) {
		t.Errorf("Expected black ground in the bottom row, got %v", bottom)
	}
}

func TestRaytracer_RenderPass(t *testing.T) {
	rt := NewRaytracer(createMockScene(), 4, 3)
	img := rt.RenderPass(2, rand.New(rand.NewSource(1)))

	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Fatalf("Expected 4x3 image, got %v", img.Bounds())
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			if img.RGBAAt(x, y).A != 255 {
				t.Errorf("Pixel (%d,%d) is not opaque", x, y)
			}
		}
	}
}

func TestVec3ToColor(t *testing.T) {
	c := vec3ToColor(core.NewVec3(0.25, 2.0, -1.0))
	// sqrt(0.25) = 0.5 -> 127
	if c.R != 127 || c.G != 255 || c.B != 0 || c.A != 255 {
		t.Errorf("Expected (127,255,0,255), got %v", c)
	}
}

func TestRaytracer_MaxDepthFromConfig(t *testing.T) {
	render := func(depth int) []uint8 {
		cfg := config.Default()
		cfg.Render.MaxDepth = depth
		s, err := scene.FromConfig(cfg, 2.0)
		if err != nil {
			t.Fatalf("FromConfig: %v", err)
		}
		return NewRaytracer(s, 16, 8).RenderPass(2, rand.New(rand.NewSource(1))).Pix
	}

	shallow, deep := render(1), render(8)
	differ := 0
	for i := range shallow {
		if shallow[i] != deep[i] {
			differ++
		}
	}
	if differ == 0 {
		t.Error("Expected max depth 1 and 8 to render different images")
	}
}
