// Package app runs the interactive GPU demo: a compute shader traces the
// scene into a float texture which a full-screen quad puts on screen.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/df07/glcompute-raytracer/pkg/config"
	"github.com/df07/glcompute-raytracer/pkg/core"
	"github.com/df07/glcompute-raytracer/pkg/geometry"
	"github.com/df07/glcompute-raytracer/pkg/gpu"
	"github.com/df07/glcompute-raytracer/pkg/scene"
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// ErrGLFW marks failures reported by GLFW while the demo is running
var ErrGLFW = errors.New("glfw error")

// Storage buffer slots, matching the bindings in raytracer.comp
const (
	sphereSlot   = 0
	materialSlot = 1
	imageUnit    = 0
	textureSlot  = 0
)

// App owns the window and every GL object of the demo.
// It must be created and run on the main OS thread.
type App struct {
	cfg    config.Config
	window *gpu.Window
	scene  *scene.Scene
	camera *geometry.Camera

	compute *gpu.Shader
	blit    *gpu.Shader
	target  *gpu.Texture
	quad    *gpu.Quad

	spheres   *gpu.StorageBuffer
	materials *gpu.StorageBuffer

	watcher *ShaderWatcher
	limiter *FrameLimiter
	fps     FPSCounter

	frame      int32 // frames accumulated into target since the last reset
	orbiting   bool
	orbitTime  float64
	screenshot bool
}

// New opens the window and builds every GL resource
func New(cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s, err := scene.FromConfig(cfg, cfg.AspectRatio())
	if err != nil {
		return nil, err
	}

	window, err := gpu.NewWindow(gpu.WindowConfig{
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Title:  cfg.Window.Title,
		VSync:  cfg.Window.VSync,
		Debug:  cfg.Window.Debug,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		window:   window,
		scene:    s,
		camera:   s.GetCamera(),
		limiter:  NewFrameLimiter(cfg.Render.FPSCap),
		orbiting: cfg.Orbit.Enabled,
	}

	if err := a.init(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init() error {
	width, height := a.window.Size()

	// Render target
	a.target = gpu.NewTexture()
	a.target.SetSampling(gl.REPEAT, gl.LINEAR)
	a.target.Allocate(width, height, gl.RGBA32F)

	// Scene data
	packed := a.scene.Pack()
	a.spheres = gpu.NewStorageBuffer()
	a.spheres.Upload(packed.Spheres)
	a.materials = gpu.NewStorageBuffer()
	a.materials.Upload(packed.Materials)
	core.Logger().Info("scene uploaded",
		"scene", a.scene.Name, "spheres", packed.SphereCount(), "materials", packed.MaterialCount())

	compute, blit, err := a.buildPrograms()
	if err != nil {
		return err
	}
	a.compute, a.blit = compute, blit

	if a.quad, err = gpu.NewQuad(a.blit); err != nil {
		return err
	}
	a.configurePrograms()

	if a.cfg.Shaders.HotReload {
		if a.watcher, err = WatchShaders(a.cfg.Shaders.Dir); err != nil {
			return err
		}
	}

	a.window.SetKeyCallback(a.onKey)
	return nil
}

// loadStage adds one quad stage to prog, inferring its type from the file
// extension. An empty dir reads the built-in copy.
func loadStage(prog *gpu.Shader, dir, name string) error {
	typ, err := gpu.TypeFromPath(name)
	if err != nil {
		return err
	}
	if dir != "" {
		return prog.LoadFile(typ, filepath.Join(dir, name))
	}
	text, err := gpu.ReadSource("", name)
	if err != nil {
		return err
	}
	return prog.LoadText(typ, text)
}

// buildPrograms compiles both programs from the configured shader directory,
// or the built-in sources when none is set
func (a *App) buildPrograms() (compute, blit *gpu.Shader, err error) {
	dir := a.cfg.Shaders.Dir

	src, err := gpu.ReadSource(dir, gpu.RaytracerFile)
	if err != nil {
		return nil, nil, err
	}
	compute = gpu.NewShader()
	if err := compute.LoadText(gpu.Compute, gpu.Define(src, "WORKGROUP_SIZE", a.cfg.Render.WorkgroupSize)); err != nil {
		compute.Delete()
		return nil, nil, fmt.Errorf("%s: %w", gpu.RaytracerFile, err)
	}
	if err := compute.Compile(); err != nil {
		compute.Delete()
		return nil, nil, fmt.Errorf("%s: %w", gpu.RaytracerFile, err)
	}

	blit = gpu.NewShader()
	for _, name := range []string{gpu.QuadVertexFile, gpu.QuadFragmentFile} {
		if err = loadStage(blit, dir, name); err != nil {
			break
		}
	}
	if err == nil {
		err = blit.Compile()
	}
	if err != nil {
		compute.Delete()
		blit.Delete()
		return nil, nil, err
	}

	return compute, blit, nil
}

// configurePrograms sets the uniforms that only change when a program is rebuilt
func (a *App) configurePrograms() {
	width, height := a.window.Size()

	a.compute.Bind()
	a.compute.UniformInt("dest", imageUnit)
	a.compute.UniformInt("samples", int32(a.cfg.Render.SamplesPerFrame))
	a.compute.UniformInt("depth", int32(a.cfg.Render.MaxDepth))
	a.compute.UniformFloat("width", float32(width))
	a.compute.UniformFloat("height", float32(height))
	a.compute.BindSSBO("Spheres", sphereSlot)
	a.compute.BindSSBO("Materials", materialSlot)
	a.scene.ApplyUniforms(a.compute)
	a.camera.ApplyUniforms(a.compute)

	a.blit.Bind()
	a.blit.UniformInt("render_tex", textureSlot)
	a.blit.Unbind()

	a.frame = 0
}

// reloadShaders rebuilds both programs, keeping the running ones if the new sources fail
func (a *App) reloadShaders() {
	log := core.Logger()

	compute, blit, err := a.buildPrograms()
	if err != nil {
		log.Warn("shader reload failed, keeping previous programs", "err", err)
		return
	}
	quad, err := gpu.NewQuad(blit)
	if err != nil {
		compute.Delete()
		blit.Delete()
		log.Warn("shader reload failed, keeping previous programs", "err", err)
		return
	}

	a.compute.Delete()
	a.blit.Delete()
	a.quad.Delete()
	a.compute, a.blit, a.quad = compute, blit, quad
	a.configurePrograms()
	log.Info("shaders reloaded")
}

// Update moves the camera to its orbit position t seconds in. Accumulation
// restarts whenever the camera actually moves.
func (a *App) Update(t float64) {
	pos := OrbitPosition(t, a.cfg.Orbit)
	if pos == a.camera.Origin() {
		return
	}

	cfg := a.camera.Config()
	a.camera.Update(pos, cfg.LookAt, cfg.Up)
	a.frame = 0
}

// Render traces one frame into the target texture and draws it
func (a *App) Render() {
	width, height := a.window.Size()
	a.window.Clear()

	a.compute.Bind()
	a.camera.ApplyUniforms(a.compute)
	a.compute.UniformInt("frame", a.frame)
	a.spheres.BindBase(sphereSlot)
	a.materials.BindBase(materialSlot)
	a.target.BindImage(imageUnit, gl.READ_WRITE, gl.RGBA32F)
	gpu.Dispatch(gpu.DispatchSize(width, height, a.cfg.Render.WorkgroupSize))

	a.blit.Bind()
	a.target.Bind(textureSlot)
	a.quad.Draw()

	if a.screenshot {
		a.screenshot = false
		a.saveScreenshot()
	}

	a.window.SwapBuffers()

	if a.cfg.Render.Accumulate {
		a.frame++
	}
}

func (a *App) saveScreenshot() {
	path := OutputPath(a.cfg.OutputDir, a.scene.Name, "screenshot", time.Now())
	if err := SavePNG(a.target.ReadRGBA(), path); err != nil {
		core.Logger().Warn("screenshot failed", "err", err)
		return
	}
	core.Logger().Info("screenshot saved", "path", path, "frames", a.frame+1)
}

func (a *App) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}

	switch key {
	case glfw.KeyEscape:
		a.window.SetShouldClose(true)
	case glfw.KeySpace:
		a.orbiting = !a.orbiting
		core.Logger().Info("orbit toggled", "orbiting", a.orbiting)
	case glfw.KeyR:
		a.frame = 0
	case glfw.KeyF12:
		a.screenshot = true
	}
}

// Run drives the main loop until the window closes or ctx is cancelled.
// GLFW failures surface as errors wrapping ErrGLFW.
func (a *App) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			var glfwErr *glfw.Error
			if e, ok := r.(error); ok && errors.As(e, &glfwErr) {
				err = fmt.Errorf("%w: %v", ErrGLFW, glfwErr)
				return
			}
			panic(r)
		}
	}()

	log := core.Logger()
	last := time.Now()

	for !a.window.ShouldClose() {
		select {
		case <-ctx.Done():
			log.Info("stopping", "reason", context.Cause(ctx))
			return nil
		default:
		}

		now := time.Now()
		if a.orbiting {
			a.orbitTime += now.Sub(last).Seconds()
			a.Update(a.orbitTime)
		}
		last = now

		if a.watcher != nil && a.watcher.Changed() {
			a.reloadShaders()
		}

		if a.limiter.Ready(now) {
			a.Render()
			a.fps.Frame()
		}

		if n, ok := a.fps.Tick(now); ok {
			log.Info(fmt.Sprintf("[FPS] - %d", n), "accumulated", a.frame)
		}

		if wait := a.limiter.Remaining(time.Now()); wait > 0 {
			glfw.WaitEventsTimeout(wait.Seconds())
		} else {
			glfw.PollEvents()
		}
	}
	return nil
}

// Close releases GL resources, stops the watcher and closes the window
func (a *App) Close() {
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.quad != nil {
		a.quad.Delete()
	}
	if a.compute != nil {
		a.compute.Delete()
	}
	if a.blit != nil {
		a.blit.Delete()
	}
	if a.target != nil {
		a.target.Delete()
	}
	if a.spheres != nil {
		a.spheres.Delete()
	}
	if a.materials != nil {
		a.materials.Delete()
	}
	a.window.Close()
}
