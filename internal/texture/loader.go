// Package texture loads background plates for the background render pass.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
)

// ErrUnsupported reports a plate file with an extension no decoder handles.
var ErrUnsupported = errors.New("unsupported plate format")

// TGA carries no magic number, so decoders are chosen by extension rather
// than through image.Decode.
var decoders = map[string]func(io.Reader) (image.Image, error){
	".tga":  tga.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".png":  png.Decode,
}

// Supported reports whether path has a plate extension.
func Supported(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// LoadPlate reads a TGA, JPEG or PNG file and returns it as NRGBA.
func LoadPlate(path string) (*image.NRGBA, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("texture: load %s: %w", path, ErrUnsupported)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}
	img, err := DecodePlate(raw, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return img, nil
}

// DecodePlate decodes an in-memory plate in the format named by ext.
func DecodePlate(raw []byte, ext string) (*image.NRGBA, error) {
	decode, ok := decoders[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("texture: extension %q: %w", ext, ErrUnsupported)
	}
	img, err := decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return toNRGBA(img), nil
}

// toNRGBA converts any image to NRGBA anchored at the origin.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
