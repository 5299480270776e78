package gpu

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/df07/glcompute-raytracer/pkg/core"
	"github.com/df07/glcompute-raytracer/pkg/loaders"
	"github.com/go-gl/gl/v4.3-core/gl"
)

// ErrImageFormat is returned when an image file cannot be decoded
var ErrImageFormat = loaders.ErrImageFormat

// Texture wraps a GL 2D texture handle
type Texture struct {
	id             uint32
	width, height  int
	internalFormat uint32
}

// NewTexture generates a texture handle
func NewTexture() *Texture {
	t := &Texture{}
	gl.GenTextures(1, &t.id)
	return t
}

// Size returns the dimensions of the last upload or allocation
func (t *Texture) Size() (width, height int) {
	return t.width, t.height
}

// Delete releases the texture
func (t *Texture) Delete() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

// Load decodes an image file and uploads it as RGBA8 with mipmaps and
// repeat wrapping. The image is flipped so row 0 is the bottom, as GL expects.
func (t *Texture) Load(path string) error {
	data, err := loaders.LoadImage(path)
	if err != nil {
		return fmt.Errorf("load texture: %w", err)
	}
	rgba := data.RGBA
	bounds := rgba.Bounds()

	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(bounds.Dx()), int32(bounds.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	t.width, t.height = bounds.Dx(), bounds.Dy()
	t.internalFormat = gl.RGBA8
	core.Logger().Debug("texture loaded", "path", path, "format", data.Format, "width", t.width, "height", t.height)
	return nil
}

// SetSampling sets wrap mode and min/mag filter on both axes
func (t *Texture) SetSampling(wrap, filter int32) {
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filter)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Bind attaches the texture to a texture unit
func (t *Texture) Bind(slot uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + slot)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
}

// Allocate reserves uninitialised storage, e.g. as a compute shader target
func (t *Texture) Allocate(width, height int, internalFormat uint32) {
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, int32(internalFormat), int32(width), int32(height), 0,
		gl.RGBA, gl.FLOAT, nil)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	t.width, t.height = width, height
	t.internalFormat = internalFormat
}

// BindImage binds level 0 to an image unit for load/store access
func (t *Texture) BindImage(unit, access, format uint32) {
	gl.BindImageTexture(unit, t.id, 0, false, 0, access, format)
}

// ReadRGBA downloads the texture as a top-down 8-bit image. Float textures
// hold linear values and are gamma corrected on the way out.
func (t *Texture) ReadRGBA() *image.RGBA {
	pix := make([]float32, t.width*t.height*4)

	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.GetTexImage(gl.TEXTURE_2D, 0, gl.RGBA, gl.FLOAT, gl.Ptr(pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gamma := 1.0
	if t.internalFormat == gl.RGBA32F || t.internalFormat == gl.RGBA16F {
		gamma = 2.0
	}
	return FloatsToRGBA(pix, t.width, t.height, gamma)
}

// FloatsToRGBA converts bottom-up RGBA float pixels into a top-down image,
// clamping to [0,1] and applying 1/gamma
func FloatsToRGBA(pix []float32, width, height int, gamma float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	toByte := func(v float32) uint8 {
		f := math.Max(0, math.Min(1, float64(v)))
		if gamma != 1 {
			f = math.Pow(f, 1/gamma)
		}
		return uint8(255 * f)
	}

	for y := 0; y < height; y++ {
		row := pix[(height-1-y)*width*4:]
		for x := 0; x < width; x++ {
			p := row[x*4 : x*4+4]
			img.SetRGBA(x, y, color.RGBA{R: toByte(p[0]), G: toByte(p[1]), B: toByte(p[2]), A: toByte(p[3])})
		}
	}
	return img
}
