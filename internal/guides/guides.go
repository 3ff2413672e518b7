// Package guides builds the wireframe helpers drawn over the scene: the
// positive and negative parallax volumes, the zero-parallax screen frame and
// the stylus beam.
package guides

import (
	"image/color"
	"math"

	"voxel-station/internal/mathutil"
	"voxel-station/internal/posemath"
	"voxel-station/internal/raster"
)

// Box depths as a fraction of viewSize.
const (
	PositiveDepth = 0.3
	NegativeDepth = 0.13

	// gap keeps the boxes off the screen plane so they do not z-fight with
	// the frame.
	gap = 0.001
)

var (
	PositiveColor = color.NRGBA{0, 255, 0, 255}
	NegativeColor = color.NRGBA{255, 0, 0, 255}
	FrameColor    = color.NRGBA{0, 0, 255, 255}
)

// Options selects what Build draws.
type Options struct {
	Positive bool
	Negative bool
	Frame    bool
	Width    int // line width in pixels; 0 means 1
}

func DefaultOptions() Options {
	return Options{Positive: true, Negative: true, Frame: true, Width: 1}
}

// Build returns the guide lines for screen. In ScreenTilt mode every corner
// is rotated with the display tilt about the screen centre; in LookAt mode
// the guides stay upright.
func Build(screen posemath.ScreenGeometry, opts Options) []raster.Line {
	w := opts.Width
	if w <= 0 {
		w = 1
	}
	vs := posemath.ClampViewSize(screen.ViewSize)
	hw, hh := screen.Width*vs/2, screen.Height*vs/2

	tilt := 0.0
	if screen.Mode == posemath.ScreenTilt {
		tilt = screen.TiltDegrees
	}
	place := func(p mathutil.Vec3) mathutil.Vec3 {
		return screen.Center.Add(posemath.ApplyTiltRotation(p, tilt))
	}

	var lines []raster.Line
	if opts.Positive {
		d := PositiveDepth * vs
		lines = append(lines, box(hw, hh, -gap, -gap-d, place, PositiveColor, w)...)
	}
	if opts.Negative {
		d := NegativeDepth * vs
		lines = append(lines, box(hw, hh, gap, gap+d, place, NegativeColor, w)...)
	}
	if opts.Frame {
		c := rect(hw, hh, 0, place)
		for i := range c {
			lines = append(lines, raster.Line{A: c[i], B: c[(i+1)%4], Color: FrameColor, Width: w})
		}
	}
	return lines
}

// rect returns the four corners of the screen rectangle at depth z, counter
// clockwise from lower left.
func rect(hw, hh, z float64, place func(mathutil.Vec3) mathutil.Vec3) [4]mathutil.Vec3 {
	return [4]mathutil.Vec3{
		place(mathutil.Vec3{-hw, -hh, z}),
		place(mathutil.Vec3{hw, -hh, z}),
		place(mathutil.Vec3{hw, hh, z}),
		place(mathutil.Vec3{-hw, hh, z}),
	}
}

// box returns the twelve edges of the cuboid spanning the screen rectangle
// between depths z0 and z1 along the screen normal.
func box(hw, hh, z0, z1 float64, place func(mathutil.Vec3) mathutil.Vec3, c color.NRGBA, w int) []raster.Line {
	front, back := rect(hw, hh, z0, place), rect(hw, hh, z1, place)
	lines := make([]raster.Line, 0, 12)
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		lines = append(lines,
			raster.Line{A: front[i], B: front[j], Color: c, Width: w},
			raster.Line{A: back[i], B: back[j], Color: c, Width: w},
			raster.Line{A: front[i], B: back[i], Color: c, Width: w},
		)
	}
	return lines
}

// RaycastScreen intersects a ray with the tilted screen rectangle. It
// returns the distance along the normalized direction.
func RaycastScreen(screen posemath.ScreenGeometry, origin, dir mathutil.Vec3) (float64, bool) {
	dir = dir.Normalize()
	_, _, n := screen.Basis()
	denom := dir.Dot(n)
	if math.Abs(denom) < 1e-9 {
		return 0, false
	}
	t := screen.Center.Sub(origin).Dot(n) / denom
	if t < 0 || !mathutil.IsFinite(t) {
		return 0, false
	}
	hit := origin.Add(dir.Scale(t))
	r, u, _ := screen.Basis()
	hw, hh := screen.HalfExtents()
	local := hit.Sub(screen.Center)
	if math.Abs(local.Dot(r)) > hw || math.Abs(local.Dot(u)) > hh {
		return 0, false
	}
	return t, true
}
