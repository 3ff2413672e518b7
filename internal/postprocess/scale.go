// Package postprocess holds the image resampling helpers used when eye
// views are squeezed or cropped into a shared output frame.
package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// ScaleInto resamples sr of src into dr of dst. Alpha is premultiplied for the
// filter and divided back out afterwards so transparent edges do not darken.
func ScaleInto(dst *image.NRGBA, dr image.Rectangle, src *image.NRGBA, sr image.Rectangle) {
	scaleWith(draw.ApproxBiLinear, dst, dr, src, sr)
}

func scaleWith(kernel draw.Scaler, dst *image.NRGBA, dr image.Rectangle, src *image.NRGBA, sr image.Rectangle) {
	dr = dr.Intersect(dst.Bounds())
	sr = sr.Intersect(src.Bounds())
	if dr.Empty() || sr.Empty() {
		return
	}
	if dr.Dx() == sr.Dx() && dr.Dy() == sr.Dy() {
		draw.Copy(dst, dr.Min, src, sr, draw.Src, nil)
		return
	}

	premul := image.NewRGBA(image.Rect(0, 0, sr.Dx(), sr.Dy()))
	for y := 0; y < sr.Dy(); y++ {
		for x := 0; x < sr.Dx(); x++ {
			si := src.PixOffset(sr.Min.X+x, sr.Min.Y+y)
			di := premul.PixOffset(x, y)
			a := float64(src.Pix[si+3]) / 255.0
			premul.Pix[di] = uint8(float64(src.Pix[si])*a + 0.5)
			premul.Pix[di+1] = uint8(float64(src.Pix[si+1])*a + 0.5)
			premul.Pix[di+2] = uint8(float64(src.Pix[si+2])*a + 0.5)
			premul.Pix[di+3] = src.Pix[si+3]
		}
	}

	scaled := image.NewRGBA(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	kernel.Scale(scaled, scaled.Bounds(), premul, premul.Bounds(), draw.Src, nil)

	for y := 0; y < dr.Dy(); y++ {
		for x := 0; x < dr.Dx(); x++ {
			si := scaled.PixOffset(x, y)
			di := dst.PixOffset(dr.Min.X+x, dr.Min.Y+y)
			a := float64(scaled.Pix[si+3])
			if a > 1 {
				inv := 255.0 / a
				dst.Pix[di] = clamp8(float64(scaled.Pix[si]) * inv)
				dst.Pix[di+1] = clamp8(float64(scaled.Pix[si+1]) * inv)
				dst.Pix[di+2] = clamp8(float64(scaled.Pix[si+2]) * inv)
			} else {
				dst.Pix[di], dst.Pix[di+1], dst.Pix[di+2] = 0, 0, 0
			}
			dst.Pix[di+3] = scaled.Pix[si+3]
		}
	}
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
