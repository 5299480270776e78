package gpu

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

//go:embed shaders/*
var embedded embed.FS

// Shader file names
const (
	QuadVertexFile   = "quad.vert"
	QuadFragmentFile = "quad.frag"
	RaytracerFile    = "raytracer.comp"
)

// ReadSource returns a shader file from dir, or the built-in copy when dir is empty
func ReadSource(dir, name string) (string, error) {
	if dir == "" {
		src, err := fs.ReadFile(embedded, "shaders/"+name)
		if err != nil {
			return "", fmt.Errorf("built-in shader %s: %w", name, err)
		}
		return string(src), nil
	}

	src, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	return string(src), nil
}

var versionLine = regexp.MustCompile(`(?m)^[ \t]*#version[^\n]*\n`)

// Define sets a preprocessor constant in GLSL source. An existing #define of
// the same name is replaced; otherwise the define goes right after #version.
func Define(src, name string, value any) string {
	line := fmt.Sprintf("#define %s %v", name, value)

	existing := regexp.MustCompile(`(?m)^[ \t]*#define[ \t]+` + regexp.QuoteMeta(name) + `\b[^\n]*$`)
	if existing.MatchString(src) {
		return existing.ReplaceAllLiteralString(src, line)
	}

	if loc := versionLine.FindStringIndex(src); loc != nil {
		return src[:loc[1]] + line + "\n" + src[loc[1]:]
	}
	return line + "\n" + src
}

// IsShaderFile reports whether a path looks like a shader stage
func IsShaderFile(path string) bool {
	_, ok := shaderExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
