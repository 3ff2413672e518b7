package raster

import (
	"image"
	"image/color"
	"math"
)

// FrameBuffer holds a render target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved (not premultiplied), len = W*H*4
	ZBuf   []float64 // depth per pixel, larger is closer, cleared to -inf
}

// NewFrameBuffer allocates a transparent color buffer and a -inf z-buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	fb := &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, w*h*4),
		ZBuf:   make([]float64, w*h),
	}
	fb.ClearDepth()
	return fb
}

// Clear fills the color buffer with c and resets depth.
func (fb *FrameBuffer) Clear(c color.NRGBA) {
	if c == (color.NRGBA{}) {
		clear(fb.Color)
	} else {
		for i := 0; i < len(fb.Color); i += 4 {
			fb.Color[i] = c.R
			fb.Color[i+1] = c.G
			fb.Color[i+2] = c.B
			fb.Color[i+3] = c.A
		}
	}
	fb.ClearDepth()
}

// ClearDepth resets every depth sample to -inf.
func (fb *FrameBuffer) ClearDepth() {
	inf := math.Inf(-1)
	for i := range fb.ZBuf {
		fb.ZBuf[i] = inf
	}
}

func (fb *FrameBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.Width, fb.Height)
}

// Image returns an NRGBA view sharing fb's color storage.
func (fb *FrameBuffer) Image() *image.NRGBA {
	return &image.NRGBA{Pix: fb.Color, Stride: fb.Width * 4, Rect: fb.Bounds()}
}

// SameSize reports whether fb and o have identical dimensions.
func (fb *FrameBuffer) SameSize(o *FrameBuffer) bool {
	return o != nil && fb.Width == o.Width && fb.Height == o.Height
}

// CopyFrom copies color from src. Buffers of different size copy the
// overlapping top-left region.
func (fb *FrameBuffer) CopyFrom(src *FrameBuffer) {
	if fb.SameSize(src) {
		copy(fb.Color, src.Color)
		return
	}
	w := min(fb.Width, src.Width)
	h := min(fb.Height, src.Height)
	for y := 0; y < h; y++ {
		copy(fb.Color[y*fb.Width*4:y*fb.Width*4+w*4], src.Color[y*src.Width*4:y*src.Width*4+w*4])
	}
}

// At returns the pixel at (x, y); out-of-range reads are transparent.
func (fb *FrameBuffer) At(x, y int) color.NRGBA {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return color.NRGBA{}
	}
	i := (y*fb.Width + x) * 4
	return color.NRGBA{fb.Color[i], fb.Color[i+1], fb.Color[i+2], fb.Color[i+3]}
}

// Set writes c at (x, y), ignoring out-of-range writes.
func (fb *FrameBuffer) Set(x, y int, c color.NRGBA) {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return
	}
	i := (y*fb.Width + x) * 4
	fb.Color[i], fb.Color[i+1], fb.Color[i+2], fb.Color[i+3] = c.R, c.G, c.B, c.A
}
