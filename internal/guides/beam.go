package guides

import (
	"image/color"
	"math"

	"voxel-station/internal/mathutil"
	"voxel-station/internal/posemath"
	"voxel-station/internal/raster"
)

// Stylus beam defaults, in metres at viewSize 1.
const (
	DefaultStylusLength = 10.0
	DefaultStylusWidth  = 0.002
)

var BeamColor = color.NRGBA{255, 255, 255, 255}

// Beam is the stylus ray as drawn.
type Beam struct {
	Start, End mathutil.Vec3
	Width      float64 // metres
}

// StylusBeam returns the beam from origin along dir. A hit shortens the beam
// to the hit distance; otherwise it is length·viewSize long.
func StylusBeam(origin, dir mathutil.Vec3, hitDist float64, hit bool, length, width, viewSize float64) Beam {
	vs := posemath.ClampViewSize(viewSize)
	l := length * vs
	if hit {
		l = hitDist
	}
	return Beam{
		Start: origin,
		End:   origin.Add(dir.Normalize().Scale(l)),
		Width: width * vs,
	}
}

// Line converts the beam for the rasterizer. pixelsPerMetre is the output
// resolution at the zero-parallax plane.
func (b Beam) Line(pixelsPerMetre float64) raster.Line {
	w := int(math.Round(b.Width * pixelsPerMetre))
	if w < 1 {
		w = 1
	}
	return raster.Line{A: b.Start, B: b.End, Color: BeamColor, Width: w}
}

// PixelsPerMetre is the horizontal output resolution of the virtual screen.
func PixelsPerMetre(screen posemath.ScreenGeometry, outputWidth int) float64 {
	hw, _ := screen.HalfExtents()
	if hw <= 0 {
		return 1
	}
	return float64(outputWidth) / (2 * hw)
}
