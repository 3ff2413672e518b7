package raster

import (
	"image/color"
	"math"
)

// ScreenVertex is a projected vertex: pixel coordinates plus depth, where a
// larger Z is closer to the camera.
type ScreenVertex struct {
	X, Y, Z float64
}

// RasterizeTriangle fills a flat-colored triangle with z-buffering.
// Zero allocation in the pixel loop.
func RasterizeTriangle(fb *FrameBuffer, v [3]ScreenVertex, c color.NRGBA) {
	x0, y0, z0 := v[0].X, v[0].Y, v[0].Z
	x1, y1, z1 := v[1].X, v[1].Y, v[1].Z
	x2, y2, z2 := v[2].X, v[2].Y, v[2].Z

	// Bounding box
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < 0 {
		minX = 0
	}
	if maxX >= fb.Width {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY >= fb.Height {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		// Sample at pixel centres.
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}
			fb.ZBuf[zIdx] = z

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = c.R
			fb.Color[pxIdx+1] = c.G
			fb.Color[pxIdx+2] = c.B
			fb.Color[pxIdx+3] = c.A
		}
	}
}

// RasterizeLine draws a depth-tested segment width pixels wide. Lines win
// depth ties so guides stay visible on coplanar faces.
func RasterizeLine(fb *FrameBuffer, a, b ScreenVertex, width int, c color.NRGBA) {
	if width < 1 {
		width = 1
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps < 1 {
		steps = 1
	}
	lo := -(width - 1) / 2
	hi := lo + width - 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		px := int(math.Floor(a.X + dx*t))
		py := int(math.Floor(a.Y + dy*t))
		z := a.Z + (b.Z-a.Z)*t
		for oy := lo; oy <= hi; oy++ {
			for ox := lo; ox <= hi; ox++ {
				x, y := px+ox, py+oy
				if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
					continue
				}
				zIdx := y*fb.Width + x
				if z < fb.ZBuf[zIdx]-1e-6 {
					continue
				}
				fb.ZBuf[zIdx] = z
				pxIdx := zIdx * 4
				fb.Color[pxIdx] = c.R
				fb.Color[pxIdx+1] = c.G
				fb.Color[pxIdx+2] = c.B
				fb.Color[pxIdx+3] = c.A
			}
		}
	}
}
