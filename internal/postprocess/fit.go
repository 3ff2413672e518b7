package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// CenterCrop returns the w×h rectangle centred in r, clipped to r.
func CenterCrop(r image.Rectangle, w, h int) image.Rectangle {
	if w > r.Dx() {
		w = r.Dx()
	}
	if h > r.Dy() {
		h = r.Dy()
	}
	offX := (r.Dx() - w) / 2
	offY := (r.Dy() - h) / 2
	min := r.Min.Add(image.Pt(offX, offY))
	return image.Rectangle{Min: min, Max: min.Add(image.Pt(w, h))}
}

// CropInto copies the centre of src that matches dr's size into dr. Nothing
// is resampled; when src is smaller than dr the copy is centred in dr.
func CropInto(dst *image.NRGBA, dr image.Rectangle, src *image.NRGBA) {
	dr = dr.Intersect(dst.Bounds())
	if dr.Empty() {
		return
	}
	sr := CenterCrop(src.Bounds(), dr.Dx(), dr.Dy())
	at := CenterCrop(dr, sr.Dx(), sr.Dy()).Min
	draw.Copy(dst, at, src, sr, draw.Src, nil)
}

// CoverRect returns the source rectangle that fills a dstW×dstH frame with
// src's aspect preserved, cropping whichever axis overflows.
func CoverRect(src image.Rectangle, dstW, dstH int) image.Rectangle {
	if dstW <= 0 || dstH <= 0 || src.Empty() {
		return image.Rectangle{}
	}
	sw, sh := src.Dx(), src.Dy()
	// Compare sw/sh with dstW/dstH without dividing.
	if sw*dstH > sh*dstW {
		w := int(float64(sh)*float64(dstW)/float64(dstH) + 0.5)
		return CenterCrop(src, w, sh)
	}
	h := int(float64(sw)*float64(dstH)/float64(dstW) + 0.5)
	return CenterCrop(src, sw, h)
}
