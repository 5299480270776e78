// Package loaders decodes texture images from disk.
package loaders

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder
)

// ErrImageFormat is returned when an image file cannot be decoded
var ErrImageFormat = errors.New("unsupported image format")

// ImageData is a decoded image ready for a GL upload
type ImageData struct {
	Format string      // Decoder name, e.g. "png"
	RGBA   *image.RGBA // Row 0 is the bottom of the image
}

// LoadImage decodes a PNG, JPEG, GIF, BMP, TIFF or WebP file and flips it
// so the first row is the bottom, as GL expects
func LoadImage(filename string) (*ImageData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	// Format is detected from the file header
	img, format, err := image.Decode(file)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %s", ErrImageFormat, filename)
		}
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}

	return &ImageData{Format: format, RGBA: FlipRGBA(img)}, nil
}

// FlipRGBA converts any image to RGBA with the rows in reverse order
func FlipRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	rowLen := rgba.Stride
	tmp := make([]byte, rowLen)
	for top, bottom := 0, bounds.Dy()-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := rgba.Pix[top*rowLen : (top+1)*rowLen]
		b := rgba.Pix[bottom*rowLen : (bottom+1)*rowLen]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
	return rgba
}
