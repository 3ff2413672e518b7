package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample reduces a supersampled frame into dst with premultiplied-alpha
// CatmullRom filtering, which approximates Lanczos.
func Downsample(dst, src *image.NRGBA) {
	scaleWith(draw.CatmullRom, dst, dst.Bounds(), src, src.Bounds())
}

// SupersampleSize returns the render size for an output of w×h at factor n,
// clamped to [1, MaxSupersample].
func SupersampleSize(w, h, n int) (int, int) {
	n = ClampSupersample(n)
	return w * n, h * n
}

// MaxSupersample bounds the render resolution multiplier.
const MaxSupersample = 4

func ClampSupersample(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxSupersample {
		return MaxSupersample
	}
	return n
}
