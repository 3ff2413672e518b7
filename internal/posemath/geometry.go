// Package posemath builds the projection and placement math for a head-tracked
// stereo display: asymmetric per-eye frusta anchored to the physical screen,
// head-offset camera placement and screen tilt rotation.
//
// World convention: right-handed, metres. The untilted screen lies in the XY
// plane with its normal (+Z) pointing at the viewer; cameras look down -Z.
package posemath

import (
	"errors"
	"fmt"

	"voxel-station/internal/mathutil"
)

// ErrInvalidGeometry reports degenerate viewer or screen input. Callers keep
// the previous frame's matrices when they see it.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Documented configuration ranges.
const (
	MinViewSize   = 0.03
	MaxViewSize   = 10.0
	MinInteraxial = 0.0
	MaxInteraxial = 0.2
	MinParallax   = 0.2

	// MinScreenDistance is the smallest eye-to-screen-plane distance accepted.
	MinScreenDistance = 1e-3

	// Physical display size of the station at viewSize 1.
	DisplayWidth  = 0.565
	DisplayHeight = 0.34
)

// ScreenMode selects how the tracked head drives the scene camera.
type ScreenMode int

const (
	// ScreenTilt places the camera from the tilt-rotated head offset.
	ScreenTilt ScreenMode = iota
	// LookAt keeps the camera aimed at the screen centre.
	LookAt
)

func (m ScreenMode) String() string {
	switch m {
	case ScreenTilt:
		return "screen_tilt"
	case LookAt:
		return "look_at"
	}
	return fmt.Sprintf("ScreenMode(%d)", int(m))
}

// ParseScreenMode accepts the names produced by String.
func ParseScreenMode(s string) (ScreenMode, error) {
	switch s {
	case "screen_tilt", "":
		return ScreenTilt, nil
	case "look_at":
		return LookAt, nil
	}
	return 0, fmt.Errorf("posemath: unknown screen mode %q", s)
}

// ScreenGeometry describes the virtual screen plane. The virtual screen is the
// physical display (Width × Height) scaled by ViewSize, centred on Center and
// tilted about its horizontal axis by TiltDegrees.
type ScreenGeometry struct {
	Center      mathutil.Vec3
	ViewSize    float64
	TiltDegrees float64
	Mode        ScreenMode
	Width       float64
	Height      float64
}

// DefaultScreen returns the station display at the origin with viewSize 1.
func DefaultScreen() ScreenGeometry {
	return ScreenGeometry{
		ViewSize: 1,
		Width:    DisplayWidth,
		Height:   DisplayHeight,
	}
}

// HalfExtents returns the half width and half height of the virtual screen.
func (g ScreenGeometry) HalfExtents() (float64, float64) {
	vs := ClampViewSize(g.ViewSize)
	return g.Width * vs / 2, g.Height * vs / 2
}

// Basis returns the world-space right, up and normal axes of the tilted screen.
func (g ScreenGeometry) Basis() (right, up, normal mathutil.Vec3) {
	r := TiltMatrix(g.TiltDegrees)
	return r.MulVec3(mathutil.Right), r.MulVec3(mathutil.Up), r.MulVec3(mathutil.Vec3{0, 0, 1})
}

// Corners returns the lower-left, lower-right and upper-left corners.
func (g ScreenGeometry) Corners() (ll, lr, ul mathutil.Vec3) {
	hw, hh := g.HalfExtents()
	vr, vu, _ := g.Basis()
	ll = g.Center.Sub(vr.Scale(hw)).Sub(vu.Scale(hh))
	lr = g.Center.Add(vr.Scale(hw)).Sub(vu.Scale(hh))
	ul = g.Center.Sub(vr.Scale(hw)).Add(vu.Scale(hh))
	return ll, lr, ul
}

// Intrinsics are the camera parameters shared by both eyes.
type Intrinsics struct {
	Near        float64
	Far         float64
	FieldOfView float64 // vertical, degrees; used by the toed-in strategy
	Aspect      float64
}

// DefaultIntrinsics matches the station's main camera.
func DefaultIntrinsics() Intrinsics {
	return Intrinsics{Near: 0.03, Far: 100, FieldOfView: 60, Aspect: 16.0 / 9.0}
}

// EyeOffset carries the stereo separation parameters.
type EyeOffset struct {
	Interaxial float64
	Parallax   float64
}

// Clamped returns o with both fields inside their documented ranges.
func (o EyeOffset) Clamped() EyeOffset {
	return EyeOffset{Interaxial: ClampInteraxial(o.Interaxial), Parallax: ClampParallax(o.Parallax)}
}

func ClampViewSize(v float64) float64 {
	if !mathutil.IsFinite(v) {
		return 1
	}
	return mathutil.Clamp(v, MinViewSize, MaxViewSize)
}

func ClampInteraxial(v float64) float64 {
	if !mathutil.IsFinite(v) {
		return MinInteraxial
	}
	return mathutil.Clamp(v, MinInteraxial, MaxInteraxial)
}

func ClampParallax(v float64) float64 {
	if !mathutil.IsFinite(v) || v < MinParallax {
		return MinParallax
	}
	return v
}
