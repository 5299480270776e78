package app

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// OutputPath returns output/<scene>/<prefix>_<timestamp>.png under dir
func OutputPath(dir, sceneName, prefix string, now time.Time) string {
	return filepath.Join(dir, sceneName, fmt.Sprintf("%s_%s.png", prefix, now.Format("20060102_150405")))
}

// SavePNG writes img to path, creating parent directories
func SavePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
