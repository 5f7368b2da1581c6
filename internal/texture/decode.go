package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// SupportedExtensions lists the file extensions Decode accepts.
var SupportedExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".tga"}

// MaxImagePixels bounds the raster Decode will allocate.
const MaxImagePixels = 8192 * 8192

func checkSize(name string, w, h int) error {
	if int64(w)*int64(h) > MaxImagePixels {
		return fmt.Errorf("%s is %dx%d: %w", name, w, h, ErrImageTooLarge)
	}
	return nil
}

// IsSupported reports whether the file extension of path can be decoded.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Decode converts encoded image bytes to a top-down RGBA raster.
// TGA has no magic number so it is selected by the extension of name.
func Decode(name string, data []byte) (*image.RGBA, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		return DecodeTGA(data)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err == image.ErrFormat {
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}
	if err == nil {
		if err := checkSize(name, cfg.Width, cfg.Height); err != nil {
			return nil, err
		}
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if err == image.ErrFormat {
			return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
		}
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("decoding %s: empty %s image", name, format)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts any image.Image to *image.RGBA with origin (0, 0).
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
