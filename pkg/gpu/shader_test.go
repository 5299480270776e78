package gpu

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShaderTypeGLEnum(t *testing.T) {
	tests := []struct {
		typ    ShaderType
		glType uint32
		name   string
	}{
		{Vertex, gl.VERTEX_SHADER, "vertex"},
		{Fragment, gl.FRAGMENT_SHADER, "fragment"},
		{Geometry, gl.GEOMETRY_SHADER, "geometry"},
		{Compute, gl.COMPUTE_SHADER, "compute"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			glType, err := tt.typ.glEnum()
			require.NoError(t, err)
			assert.Equal(t, tt.glType, glType)
			assert.Equal(t, tt.name, tt.typ.String())
		})
	}
}

func TestShaderTypeValues(t *testing.T) {
	// Stage numbering is part of the public API
	assert.Equal(t, 0, int(Vertex))
	assert.Equal(t, 1, int(Fragment))
	assert.Equal(t, 2, int(Geometry))
	assert.Equal(t, 3, int(Compute))
}

func TestInvalidShaderType(t *testing.T) {
	_, err := ShaderType(7).glEnum()
	assert.ErrorIs(t, err, ErrInvalidShaderType)

	// Rejected before any GL call is made
	err = NewShader().LoadText(ShaderType(-1), "void main() {}")
	assert.ErrorIs(t, err, ErrInvalidShaderType)
}

func TestTypeFromPath(t *testing.T) {
	typ, err := TypeFromPath("shaders/raytracer.comp")
	require.NoError(t, err)
	assert.Equal(t, Compute, typ)

	typ, err = TypeFromPath("QUAD.FRAG")
	require.NoError(t, err)
	assert.Equal(t, Fragment, typ)

	_, err = TypeFromPath("notes.txt")
	assert.ErrorIs(t, err, ErrInvalidShaderType)

	// The bundled quad stages are typed by their names alone
	typ, err = TypeFromPath(QuadVertexFile)
	require.NoError(t, err)
	assert.Equal(t, Vertex, typ)
	typ, err = TypeFromPath(QuadFragmentFile)
	require.NoError(t, err)
	assert.Equal(t, Fragment, typ)

	assert.True(t, IsShaderFile("a/b/quad.vert"))
	assert.False(t, IsShaderFile("a/b/quad.vert.swp"))
}

func TestLoadFileMissing(t *testing.T) {
	err := NewShader().LoadFile(Compute, filepath.Join(t.TempDir(), "missing.comp"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestTrimLog(t *testing.T) {
	assert.Equal(t, "0:1(1): error: syntax error", trimLog("0:1(1): error: syntax error\n\x00\x00"))
}

func TestReadSourceEmbedded(t *testing.T) {
	for _, name := range []string{QuadVertexFile, QuadFragmentFile, RaytracerFile} {
		src, err := ReadSource("", name)
		require.NoError(t, err, name)
		assert.True(t, strings.HasPrefix(src, "#version 430"), name)
	}

	_, err := ReadSource("", "missing.comp")
	assert.Error(t, err)
}

func TestRaytracerDeclaresUniforms(t *testing.T) {
	src, err := ReadSource("", RaytracerFile)
	require.NoError(t, err)

	for _, name := range []string{"dest", "samples", "depth", "width", "height", "frame",
		"sky_top", "sky_bottom", "sphere_count", "Spheres", "Materials"} {
		assert.Contains(t, src, name)
	}
	for _, field := range []string{"lower_left", "origin", "right", "up", "u;", "v;", "lens"} {
		assert.Contains(t, src, field)
	}
}

func TestReadSourceFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, RaytracerFile), []byte("#version 430 core\n"), 0o644))

	src, err := ReadSource(dir, RaytracerFile)
	require.NoError(t, err)
	assert.Equal(t, "#version 430 core\n", src)

	_, err = ReadSource(dir, QuadVertexFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefine(t *testing.T) {
	t.Run("replaces existing", func(t *testing.T) {
		src := "#version 430 core\n\n#define WORKGROUP_SIZE 32\nlayout(local_size_x = WORKGROUP_SIZE) in;\n"
		out := Define(src, "WORKGROUP_SIZE", 16)
		assert.Contains(t, out, "#define WORKGROUP_SIZE 16\n")
		assert.NotContains(t, out, "32")
		assert.Equal(t, 1, strings.Count(out, "#define"))
	})

	t.Run("inserts after version", func(t *testing.T) {
		out := Define("#version 430 core\nvoid main() {}\n", "MAX_DEPTH", 4)
		assert.Equal(t, "#version 430 core\n#define MAX_DEPTH 4\nvoid main() {}\n", out)
	})

	t.Run("prefix match is not replaced", func(t *testing.T) {
		out := Define("#version 430 core\n#define SIZE_X 2\n", "SIZE", 8)
		assert.Contains(t, out, "#define SIZE_X 2")
		assert.Contains(t, out, "#define SIZE 8")
	})

	t.Run("no version", func(t *testing.T) {
		assert.Equal(t, "#define A 1\nvoid main() {}", Define("void main() {}", "A", 1))
	})
}

func TestEmbeddedRaytracerWorkgroup(t *testing.T) {
	src, err := ReadSource("", RaytracerFile)
	require.NoError(t, err)
	assert.Contains(t, src, "#define WORKGROUP_SIZE 32")
	assert.Contains(t, Define(src, "WORKGROUP_SIZE", 8), "#define WORKGROUP_SIZE 8")
}
