package gpu

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/glcompute-raytracer/pkg/core"
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrInvalidShaderType = errors.New("invalid shader type")
	ErrCompile           = errors.New("shader compile failed")
	ErrLink              = errors.New("shader link failed")
)

// ShaderType selects a pipeline stage
type ShaderType int

const (
	Vertex ShaderType = iota
	Fragment
	Geometry
	Compute

	numShaderTypes
)

func (t ShaderType) String() string {
	switch t {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	case Geometry:
		return "geometry"
	case Compute:
		return "compute"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// glEnum maps the stage to its GL shader type
func (t ShaderType) glEnum() (uint32, error) {
	switch t {
	case Vertex:
		return gl.VERTEX_SHADER, nil
	case Fragment:
		return gl.FRAGMENT_SHADER, nil
	case Geometry:
		return gl.GEOMETRY_SHADER, nil
	case Compute:
		return gl.COMPUTE_SHADER, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidShaderType, int(t))
	}
}

var shaderExtensions = map[string]ShaderType{
	".vert": Vertex,
	".frag": Fragment,
	".geom": Geometry,
	".comp": Compute,
}

// TypeFromPath infers the stage from a file extension
func TypeFromPath(path string) (ShaderType, error) {
	t, ok := shaderExtensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidShaderType, path)
	}
	return t, nil
}

// Shader is a GL program assembled from individually compiled stages
type Shader struct {
	program  uint32
	stages   [numShaderTypes]uint32
	uniforms map[string]int32
	missing  map[string]bool
}

// NewShader returns an empty shader with no stages loaded
func NewShader() *Shader {
	return &Shader{
		uniforms: make(map[string]int32),
		missing:  make(map[string]bool),
	}
}

// LoadText compiles src as the given stage. A stage loaded twice replaces the first.
func (s *Shader) LoadText(t ShaderType, src string) error {
	glType, err := t.glEnum()
	if err != nil {
		return err
	}

	handle := gl.CreateShader(glType)
	csources, free := gl.Strs(src + "\x00")
	gl.ShaderSource(handle, 1, csources, nil)
	free()
	gl.CompileShader(handle)

	var status int32
	gl.GetShaderiv(handle, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(handle, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(handle, logLength, nil, gl.Str(log))
		gl.DeleteShader(handle)

		return fmt.Errorf("%w: %s stage: %s", ErrCompile, t, trimLog(log))
	}

	if old := s.stages[t]; old != 0 {
		gl.DeleteShader(old)
	}
	s.stages[t] = handle
	core.Logger().Debug("shader stage compiled", "stage", t.String(), "handle", handle)
	return nil
}

// LoadFile reads a stage from disk and compiles it
func (s *Shader) LoadFile(t ShaderType, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s shader: %w", t, err)
	}
	if err := s.LoadText(t, string(src)); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Compile links every loaded stage into a program. The stages are released
// either way, so the shader must be loaded again before another Compile.
func (s *Shader) Compile() error {
	program := gl.CreateProgram()
	for _, stage := range s.stages {
		if stage != 0 {
			gl.AttachShader(program, stage)
		}
	}
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	linked := status != gl.FALSE

	var log string
	if !linked {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log = strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
	}

	for i, stage := range s.stages {
		if stage != 0 {
			gl.DetachShader(program, stage)
			gl.DeleteShader(stage)
			s.stages[i] = 0
		}
	}

	if !linked {
		gl.DeleteProgram(program)
		return fmt.Errorf("%w: %s", ErrLink, trimLog(log))
	}

	if s.program != 0 {
		gl.DeleteProgram(s.program)
	}
	s.program = program
	clear(s.uniforms)
	clear(s.missing)
	core.Logger().Debug("shader program linked", "program", program)
	return nil
}

// Program returns the GL program handle, 0 before a successful Compile
func (s *Shader) Program() uint32 {
	return s.program
}

// location returns the cached uniform location. Uniforms the linker
// removed or that were never declared are reported once.
func (s *Shader) location(name string) int32 {
	if loc, ok := s.uniforms[name]; ok {
		return loc
	}

	loc := gl.GetUniformLocation(s.program, gl.Str(name+"\x00"))
	s.uniforms[name] = loc
	if loc < 0 && !s.missing[name] {
		s.missing[name] = true
		core.Logger().Warn("uniform not found", "name", name, "program", s.program)
	}
	return loc
}

// UniformVec3 sets a vec3 uniform on the bound program
func (s *Shader) UniformVec3(name string, v mgl32.Vec3) {
	gl.Uniform3fv(s.location(name), 1, &v[0])
}

// UniformFloat sets a float uniform on the bound program
func (s *Shader) UniformFloat(name string, f float32) {
	gl.Uniform1f(s.location(name), f)
}

// UniformInt sets an int or sampler uniform on the bound program
func (s *Shader) UniformInt(name string, i int32) {
	gl.Uniform1i(s.location(name), i)
}

// BindUBO assigns the named uniform block to a binding slot
func (s *Shader) BindUBO(name string, slot uint32) {
	index := gl.GetUniformBlockIndex(s.program, gl.Str(name+"\x00"))
	if index == gl.INVALID_INDEX {
		core.Logger().Warn("uniform block not found", "name", name)
		return
	}
	gl.UniformBlockBinding(s.program, index, slot)
}

// BindSSBO assigns the named shader storage block to a binding slot
func (s *Shader) BindSSBO(name string, slot uint32) {
	index := gl.GetProgramResourceIndex(s.program, gl.SHADER_STORAGE_BLOCK, gl.Str(name+"\x00"))
	if index == gl.INVALID_INDEX {
		core.Logger().Warn("storage block not found", "name", name)
		return
	}
	gl.ShaderStorageBlockBinding(s.program, index, slot)
}

// Bind makes the program current
func (s *Shader) Bind() {
	gl.UseProgram(s.program)
}

// Unbind clears the current program
func (s *Shader) Unbind() {
	gl.UseProgram(0)
}

// Delete releases the program and any stages that were never linked
func (s *Shader) Delete() {
	for i, stage := range s.stages {
		if stage != 0 {
			gl.DeleteShader(stage)
			s.stages[i] = 0
		}
	}
	if s.program != 0 {
		gl.DeleteProgram(s.program)
		s.program = 0
	}
}

// trimLog strips the NUL padding GL leaves in info logs
func trimLog(log string) string {
	return strings.TrimSpace(strings.TrimRight(log, "\x00"))
}
