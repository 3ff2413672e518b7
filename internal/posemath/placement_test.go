package posemath

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"voxel-station/internal/mathutil"
)

func TestApplyTiltRotation(t *testing.T) {
	p := mathutil.Vec3{0.1, 1, 0}
	assert.True(t, ApplyTiltRotation(p, 0).ApproxEqual(p, 1e-12))

	// Reclined 90°: the top of the screen points away from the viewer.
	got := ApplyTiltRotation(mathutil.Up, 90)
	assert.True(t, got.ApproxEqual(mathutil.Vec3{0, 0, -1}, 1e-12), "got %v", got)

	back := ApplyTiltRotation(ApplyTiltRotation(p, 35), -35)
	assert.True(t, back.ApproxEqual(p, 1e-12))
}

func TestComputeCameraPositionCorrection(t *testing.T) {
	head := mathutil.Vec3{0.02, -0.01, 0.6}

	got := ComputeCameraPositionCorrection(head, 0, 2)
	assert.True(t, got.ApproxEqual(mathutil.Vec3{0.04, -0.02, 1.2}, 1e-12), "got %v", got)

	// viewSize is clamped before scaling.
	got = ComputeCameraPositionCorrection(head, 0, 50)
	assert.True(t, got.ApproxEqual(head.Scale(MaxViewSize), 1e-12), "got %v", got)

	tilted := ComputeCameraPositionCorrection(mathutil.Vec3{0, 0, 1}, 90, 1)
	assert.True(t, tilted.ApproxEqual(mathutil.Vec3{0, 1, 0}, 1e-12), "got %v", tilted)
}

func TestComputeAnchoredCameraPosition(t *testing.T) {
	rig := mathutil.Transform{
		Position: mathutil.Vec3{1, 0, 0},
		Rotation: mathutil.AngleAxis(mathutil.Deg2Rad(90), mathutil.Up),
	}
	center := mathutil.Vec3{1, 0, -2}
	local := ComputeAnchoredCameraPosition(mathutil.Vec3{0, 0, 0.5}, 0, 1, rig, center)

	world := rig.TransformPoint(local)
	assert.True(t, world.ApproxEqual(mathutil.Vec3{1, 0, -1.5}, 1e-9), "got %v", world)
}

func TestScreenCornersFollowTilt(t *testing.T) {
	g := DefaultScreen()
	g.TiltDegrees = 30
	ll, lr, ul := g.Corners()
	hw, hh := g.HalfExtents()

	assert.InDelta(t, 2*hw, lr.Sub(ll).Len(), 1e-12)
	assert.InDelta(t, 2*hh, ul.Sub(ll).Len(), 1e-12)
	assert.Less(t, ul[2], ll[2], "upper edge reclines away from the viewer")
}
