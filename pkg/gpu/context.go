package gpu

import (
	"context"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/df07/glcompute-raytracer/pkg/core"
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowConfig describes the window and its GL context
type WindowConfig struct {
	Width, Height int
	Title         string
	VSync         bool
	Debug         bool // Request a debug context and forward GL messages to the logger
}

// Window owns the GLFW window and the GL context current on the calling thread.
// All methods must be called from the thread that created it.
type Window struct {
	*glfw.Window
	config       WindowConfig
	major, minor int
}

// NewWindow initialises GLFW, opens a window with a 4.3 core context and
// sets the fixed-function state the demo relies on
func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initialize glfw: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if config.Debug {
		glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
	}

	win, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	win.MakeContextCurrent()

	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("initialize gl: %w", err)
	}

	w := &Window{
		Window: win,
		config: config,
		major:  win.GetAttrib(glfw.ContextVersionMajor),
		minor:  win.GetAttrib(glfw.ContextVersionMinor),
	}

	log := core.Logger()
	log.Info("context ready",
		"version", fmt.Sprintf("%d.%d", w.major, w.minor),
		"gl", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))
	if !SupportsCompute(w.major, w.minor) {
		log.Warn("compute shaders need OpenGL 4.3", "version", fmt.Sprintf("%d.%d", w.major, w.minor))
	}

	if config.Debug {
		gl.Enable(gl.DEBUG_OUTPUT)
		gl.Enable(gl.DEBUG_OUTPUT_SYNCHRONOUS)
		gl.DebugMessageCallback(debugMessage, nil)
	}

	gl.FrontFace(gl.CCW)
	gl.CullFace(gl.BACK)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.ClearColor(0, 0, 0, 0)
	gl.ClearDepth(1)

	fbWidth, fbHeight := win.GetFramebufferSize()
	gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))

	return w, nil
}

// Size returns the requested window size, which is also the render size
func (w *Window) Size() (width, height int) {
	return w.config.Width, w.config.Height
}

// Clear clears colour and depth
func (w *Window) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Close destroys the window and terminates GLFW
func (w *Window) Close() {
	w.Destroy()
	glfw.Terminate()
}

// SupportsCompute reports whether a context version has compute shaders
func SupportsCompute(major, minor int) bool {
	return major > 4 || (major == 4 && minor >= 3)
}

func debugMessage(source, gltype, id, severity uint32, length int32, message string, userParam unsafe.Pointer) {
	core.Logger().Log(context.Background(), debugLevel(severity), "gl debug",
		"source", source, "type", gltype, "id", id, "message", message)
}

// debugLevel maps GL debug severity onto log levels
func debugLevel(severity uint32) slog.Level {
	switch severity {
	case gl.DEBUG_SEVERITY_HIGH:
		return slog.LevelError
	case gl.DEBUG_SEVERITY_MEDIUM:
		return slog.LevelWarn
	case gl.DEBUG_SEVERITY_LOW:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
