// Package config loads the demo settings from TOML and validates them.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid config")

// Config is the full set of settings. Zero sections are filled from Default.
type Config struct {
	Scene     string `toml:"scene" comment:"default or spheregrid"`
	LogLevel  string `toml:"log_level" comment:"debug, info, warn or error"`
	OutputDir string `toml:"output_dir"`

	Window      WindowConfig      `toml:"window"`
	Render      RenderConfig      `toml:"render"`
	Orbit       OrbitConfig       `toml:"orbit"`
	Camera      *CameraConfig     `toml:"camera,omitempty" comment:"overrides the scene camera when present"`
	Shaders     ShaderConfig      `toml:"shaders"`
	Progressive ProgressiveConfig `toml:"progressive"`
	Web         WebConfig         `toml:"web"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
	Debug  bool   `toml:"debug" comment:"request a GL debug context"`
}

type RenderConfig struct {
	SamplesPerFrame int  `toml:"samples_per_frame"`
	MaxDepth        int  `toml:"max_depth"`
	FPSCap          int  `toml:"fps_cap" comment:"0 renders as fast as possible"`
	WorkgroupSize   int  `toml:"workgroup_size"`
	Accumulate      bool `toml:"accumulate" comment:"average frames while the camera is still"`
}

// OrbitConfig moves the camera around the look-at point:
// pos = (r cos d, height + r cos d, r sin d) with d = t / period
type OrbitConfig struct {
	Enabled bool    `toml:"enabled"`
	Period  float64 `toml:"period" comment:"seconds per radian"`
	Radius  float64 `toml:"radius"`
	Height  float64 `toml:"height"`
}

type CameraConfig struct {
	Position      [3]float64 `toml:"position"`
	Target        [3]float64 `toml:"target"`
	Up            [3]float64 `toml:"up"`
	VFov          float64    `toml:"vfov"`
	Aperture      float64    `toml:"aperture"`
	FocusDistance float64    `toml:"focus_distance" comment:"0 focuses on the target"`
}

type ShaderConfig struct {
	Dir       string `toml:"dir" comment:"empty uses the built-in shaders"`
	HotReload bool   `toml:"hot_reload"`
}

// ProgressiveConfig drives the CPU renderer used by headless and serve modes
type ProgressiveConfig struct {
	TileSize   int `toml:"tile_size"`
	Passes     int `toml:"passes"`
	MaxSamples int `toml:"max_samples" comment:"0 uses the scene's sample count"`
	Workers    int `toml:"workers" comment:"0 uses one per CPU"`
}

type WebConfig struct {
	Port int `toml:"port"`
}

// Default returns the settings of the stock demo
func Default() Config {
	return Config{
		Scene:     "default",
		LogLevel:  "info",
		OutputDir: "output",
		Window: WindowConfig{
			Width:  1024,
			Height: 512,
			Title:  "GL Compute Raytracer",
			VSync:  false,
		},
		Render: RenderConfig{
			SamplesPerFrame: 4,
			MaxDepth:        3,
			FPSCap:          60,
			WorkgroupSize:   32,
			Accumulate:      true,
		},
		Orbit: OrbitConfig{
			Enabled: true,
			Period:  10,
			Radius:  1,
			Height:  2,
		},
		Progressive: ProgressiveConfig{
			TileSize: 64,
			Passes:   7,
		},
		Web: WebConfig{Port: 8080},
	}
}

// DefaultCamera returns the camera of the stock demo
func DefaultCamera() CameraConfig {
	return CameraConfig{
		Position: [3]float64{-2, 2, 1},
		Target:   [3]float64{0, 0, 0},
		Up:       [3]float64{0, 1, 0},
		VFov:     90,
		Aperture: 0.1,
	}
}

// Load reads a TOML file over the defaults. An empty path returns Default.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := cfg.decode(f); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML text over the defaults
func Parse(data string) (Config, error) {
	cfg := Default()
	err := cfg.decode(strings.NewReader(data))
	return cfg, err
}

// decode reads TOML over c. A [camera] table fills in over DefaultCamera, so
// it only needs the fields it changes.
func (c *Config) decode(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var tables struct {
		Camera map[string]any `toml:"camera"`
	}
	if err := toml.Unmarshal(data, &tables); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if tables.Camera != nil && c.Camera == nil {
		cam := DefaultCamera()
		c.Camera = &cam
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// Encode writes the config as TOML
func (c Config) Encode(w io.Writer) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate reports every out-of-range setting at once
func (c Config) Validate() error {
	var problems []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Errorf(format, args...))
		}
	}

	check(c.Scene != "", "scene must be set")
	check(logLevels[strings.ToLower(c.LogLevel)], "log_level %q is not one of debug, info, warn, error", c.LogLevel)

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d must be positive", c.Window.Width, c.Window.Height)

	check(c.Render.SamplesPerFrame >= 1, "render.samples_per_frame must be at least 1, got %d", c.Render.SamplesPerFrame)
	check(c.Render.MaxDepth >= 1, "render.max_depth must be at least 1, got %d", c.Render.MaxDepth)
	check(c.Render.FPSCap >= 0, "render.fps_cap must not be negative, got %d", c.Render.FPSCap)
	// GL guarantees at least 1024 invocations per workgroup
	ws := c.Render.WorkgroupSize
	check(ws >= 1 && ws*ws <= 1024, "render.workgroup_size must be in [1, 32], got %d", ws)

	if c.Orbit.Enabled {
		check(c.Orbit.Period > 0, "orbit.period must be positive, got %g", c.Orbit.Period)
	}

	if c.Camera != nil {
		check(c.Camera.VFov > 0 && c.Camera.VFov < 180, "camera.vfov must be in (0, 180), got %g", c.Camera.VFov)
		check(c.Camera.Aperture >= 0, "camera.aperture must not be negative, got %g", c.Camera.Aperture)
		check(c.Camera.FocusDistance >= 0, "camera.focus_distance must not be negative, got %g", c.Camera.FocusDistance)
		check(c.Camera.Position != c.Camera.Target, "camera.position and camera.target must differ")
		check(c.Camera.Up != [3]float64{}, "camera.up must not be zero")
		check(c.Camera.Position == c.Camera.Target || c.Camera.Up == [3]float64{} || !parallel(c.Camera.Up, sub(c.Camera.Position, c.Camera.Target)),
			"camera.up must not be parallel to the view direction")
	}

	check(!c.Shaders.HotReload || c.Shaders.Dir != "", "shaders.hot_reload needs shaders.dir")

	check(c.Progressive.TileSize >= 1, "progressive.tile_size must be positive, got %d", c.Progressive.TileSize)
	check(c.Progressive.Passes >= 1, "progressive.passes must be at least 1, got %d", c.Progressive.Passes)
	check(c.Progressive.MaxSamples >= 0, "progressive.max_samples must not be negative, got %d", c.Progressive.MaxSamples)
	check(c.Progressive.Workers >= 0, "progressive.workers must not be negative, got %d", c.Progressive.Workers)

	check(c.Web.Port > 0 && c.Web.Port < 65536, "web.port %d out of range", c.Web.Port)

	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(problems...))
	}
	return nil
}

func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// parallel reports whether a and b lie on one line, within a relative tolerance
func parallel(a, b [3]float64) bool {
	cross := [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
	dot := func(v, w [3]float64) float64 { return v[0]*w[0] + v[1]*w[1] + v[2]*w[2] }
	return dot(cross, cross) <= 1e-12*dot(a, a)*dot(b, b)
}

// AspectRatio returns width / height of the window
func (c Config) AspectRatio() float64 {
	return float64(c.Window.Width) / float64(c.Window.Height)
}
