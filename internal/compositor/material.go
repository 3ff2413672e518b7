package compositor

import (
	"image"

	"voxel-station/internal/mathutil"
	"voxel-station/internal/postprocess"
	"voxel-station/internal/raster"
)

// Material holds the colour filters of the anaglyph pass. Each filter maps
// an eye's RGB to its contribution to the output RGB.
type Material struct {
	Left  mathutil.Mat3
	Right mathutil.Mat3
}

// DefaultMaterial is red/cyan.
func DefaultMaterial() *Material {
	return &Material{
		Left:  mathutil.Mat3Diag(1, 0, 0),
		Right: mathutil.Mat3Diag(0, 1, 1),
	}
}

func compositeAnaglyph(dst, left, right *raster.FrameBuffer, m *Material) {
	n := min(len(dst.Color), len(left.Color), len(right.Color))
	for i := 0; i < n; i += 4 {
		l := mathutil.Vec3{float64(left.Color[i]), float64(left.Color[i+1]), float64(left.Color[i+2])}
		r := mathutil.Vec3{float64(right.Color[i]), float64(right.Color[i+1]), float64(right.Color[i+2])}
		c := m.Left.MulVec3(l).Add(m.Right.MulVec3(r))
		dst.Color[i] = clamp8(c[0])
		dst.Color[i+1] = clamp8(c[1])
		dst.Color[i+2] = clamp8(c[2])
		dst.Color[i+3] = 255
	}
}

func regionRect(b image.Rectangle, r Region) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	switch r {
	case RegionLeftHalf:
		return image.Rect(b.Min.X, b.Min.Y, b.Min.X+w/2, b.Max.Y)
	case RegionRightHalf:
		return image.Rect(b.Min.X+w/2, b.Min.Y, b.Max.X, b.Max.Y)
	case RegionTopHalf:
		return image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+h/2)
	case RegionBottomHalf:
		return image.Rect(b.Min.X, b.Min.Y+h/2, b.Max.X, b.Max.Y)
	}
	return b
}

func compositePlace(dst, src *raster.FrameBuffer, region Region, fit SideBySideMode) {
	out := dst.Image()
	r := regionRect(out.Rect, region)
	if fit == Unsqueezed {
		postprocess.CropInto(out, r, src.Image())
		return
	}
	postprocess.ScaleInto(out, r, src.Image(), src.Bounds())
}

func compositeInterleave(dst, left, right *raster.FrameBuffer, p Pattern) {
	for y := 0; y < dst.Height; y++ {
		for x := 0; x < dst.Width; x++ {
			src := left
			switch p {
			case PatternRows:
				if y%2 == 1 {
					src = right
				}
			case PatternChecker:
				if (x+y)%2 == 1 {
					src = right
				}
			}
			dst.Set(x, y, src.At(x, y))
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
