package rig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxel-station/internal/compositor"
	"voxel-station/internal/mathutil"
	"voxel-station/internal/posemath"
	"voxel-station/internal/raster"
)

type rigFixture struct {
	comp        *compositor.Compositor
	left, right *raster.SceneCamera
	ctrl        *Controller
}

func newRig(t *testing.T, cfg Config) *rigFixture {
	t.Helper()
	f := &rigFixture{comp: compositor.New(compositor.Config{Material: compositor.DefaultMaterial()})}
	parent := func() mathutil.Transform { return f.ctrl.RigTransform() }
	in := posemath.DefaultIntrinsics()
	f.left = raster.NewSceneCamera(nil, raster.CameraOptions{Name: "left", Intrinsics: in, Parent: parent})
	f.right = raster.NewSceneCamera(nil, raster.CameraOptions{Name: "right", Intrinsics: in, Parent: parent})
	if cfg.Intrinsics == (posemath.Intrinsics{}) {
		cfg.Intrinsics = in
	}
	f.ctrl = New(f.comp, Cameras{Left: f.left, Right: f.right}, cfg)
	return f
}

func viewerAt(z float64) mathutil.Transform {
	return mathutil.Transform{Position: mathutil.Vec3{0, 0, z}, Rotation: mathutil.QuatIdentity()}
}

func frame(z float64) FrameInput {
	return FrameInput{Viewer: viewerAt(z), Screen: posemath.DefaultScreen(), DeltaTime: 1.0 / 60}
}

func TestEyeParametersClamped(t *testing.T) {
	f := newRig(t, Config{Mode: Anaglyph, Interaxial: -1, Parallax: 0})
	assert.Equal(t, 0.0, f.ctrl.Interaxial())
	assert.Equal(t, posemath.MinParallax, f.ctrl.Parallax())

	f.ctrl.SetInteraxial(10)
	assert.Equal(t, posemath.MaxInteraxial, f.ctrl.Interaxial())

	f.ctrl.Update(frame(0.5))
	assert.InDelta(t, -0.1, f.left.LocalPosition()[0], 1e-12)
	assert.InDelta(t, 0.1, f.right.LocalPosition()[0], 1e-12)
}

func TestParallelSetsOffAxisProjections(t *testing.T) {
	f := newRig(t, Config{Mode: Anaglyph, Interaxial: 0.06, Parallax: 3})
	f.ctrl.Update(frame(0.5))
	require.True(t, f.ctrl.Stereo())

	want, err := posemath.ComputeOffAxisProjection(true, viewerAt(0.5), posemath.DefaultScreen(),
		posemath.DefaultIntrinsics(), posemath.EyeOffset{Interaxial: 0.06, Parallax: 3})
	require.NoError(t, err)
	got, err := f.left.Projection()
	require.NoError(t, err)
	assert.True(t, got.ApproxEqual(want, 1e-12))

	// Eye sits where the projection expects it.
	eye := f.left.WorldTransform().Position
	assert.True(t, eye.ApproxEqual(mathutil.Vec3{-0.03, 0, 0.5}, 1e-12), "%v", eye)
}

func TestInvalidGeometryKeepsPreviousProjection(t *testing.T) {
	f := newRig(t, Config{Mode: Anaglyph, Interaxial: 0.06, Parallax: 3})
	f.ctrl.Update(frame(0.5))
	before, err := f.left.Projection()
	require.NoError(t, err)

	// Viewer behind the screen plane.
	f.ctrl.Update(frame(-0.2))
	after, err := f.left.Projection()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, f.ctrl.GeometryErrors())

	f.ctrl.Update(frame(0.8))
	moved, err := f.left.Projection()
	require.NoError(t, err)
	assert.NotEqual(t, before, moved)
}

func TestToedInAimsAtConvergencePoint(t *testing.T) {
	f := newRig(t, Config{Mode: SideBySide, Convergence: compositor.ToedIn, Interaxial: 0.1, Parallax: 1})
	f.ctrl.Update(frame(0.5))

	fwd := f.left.LocalRotation().Rotate(mathutil.Forward)
	want := mathutil.Vec3{0.05, 0, -1}.Normalize()
	assert.True(t, fwd.ApproxEqual(want, 1e-9), "left forward %v", fwd)

	fwd = f.right.LocalRotation().Rotate(mathutil.Forward)
	want = mathutil.Vec3{-0.05, 0, -1}.Normalize()
	assert.True(t, fwd.ApproxEqual(want, 1e-9), "right forward %v", fwd)

	sym, err := posemath.SymmetricPerspective(posemath.DefaultIntrinsics())
	require.NoError(t, err)
	got, err := f.left.Projection()
	require.NoError(t, err)
	assert.True(t, got.ApproxEqual(sym, 1e-12))
}

func TestCameraModesSwapEyes(t *testing.T) {
	f := newRig(t, Config{Mode: Anaglyph, CameraMode: compositor.RightLeft, Interaxial: 0.08, Parallax: 3})
	f.ctrl.Update(frame(0.5))
	assert.InDelta(t, 0.04, f.left.LocalPosition()[0], 1e-12)
	assert.InDelta(t, -0.04, f.right.LocalPosition()[0], 1e-12)

	f.ctrl.SetCameraMode(compositor.LeftOnly)
	f.ctrl.Update(frame(0.5))
	assert.InDelta(t, -0.04, f.left.LocalPosition()[0], 1e-12)
	assert.InDelta(t, -0.04, f.right.LocalPosition()[0], 1e-12)
}

func TestDisabledModeRendersMono(t *testing.T) {
	f := newRig(t, Config{Mode: Anaglyph, Interaxial: 0.06, Parallax: 3})
	f.ctrl.Update(frame(0.5))
	require.True(t, f.ctrl.Stereo())

	f.ctrl.SetMode(Disabled)
	f.ctrl.Update(frame(0.5))
	assert.False(t, f.ctrl.Stereo())
	assert.True(t, f.left.Enabled())
	assert.False(t, f.right.Enabled())
	assert.Equal(t, mathutil.Vec3{}, f.left.LocalPosition())

	dst := raster.NewFrameBuffer(8, 4)
	require.NoError(t, f.ctrl.Render(dst))
}

func TestMissingRightCameraStaysMono(t *testing.T) {
	comp := compositor.New(compositor.Config{Material: compositor.DefaultMaterial()})
	left := raster.NewSceneCamera(nil, raster.CameraOptions{Name: "left", Intrinsics: posemath.DefaultIntrinsics()})
	ctrl := New(comp, Cameras{Left: left}, Config{Mode: Active, Interaxial: 0.06, Parallax: 3})
	ctrl.Update(frame(0.5))
	assert.False(t, ctrl.Stereo())
	assert.True(t, left.Enabled())
}

func TestMissingMaterialStaysMono(t *testing.T) {
	f := newRig(t, Config{Mode: Anaglyph, Interaxial: 0.06, Parallax: 3})
	f.comp.SetMaterial(nil)
	f.ctrl.Update(frame(0.5))
	assert.False(t, f.ctrl.Stereo())
	assert.True(t, f.left.Enabled())
}

func TestConvergenceChangeReenables(t *testing.T) {
	f := newRig(t, Config{Mode: OverUnder, Interaxial: 0.06, Parallax: 3})
	f.ctrl.Update(frame(0.5))
	f.ctrl.SetConvergence(compositor.ToedIn)
	f.ctrl.Update(frame(0.5))
	assert.True(t, f.ctrl.Stereo())
	assert.Equal(t, compositor.ToedIn, f.comp.Convergence())
}

func TestAutoParallaxEasesTowardRange(t *testing.T) {
	auto := DefaultAutoEye()
	auto.Parallax = true

	// Target at MinRange pulls toward MinParallax at speed*dt per frame.
	in := FrameInput{DeltaTime: 0.1, TargetHit: true, RangeToTarget: 0.25}
	_, px := auto.Apply(0.06, 3, in)
	assert.InDelta(t, 3+(1-3)*0.2, px, 1e-12)

	// No hit means far away.
	_, px = auto.Apply(0.06, 1, FrameInput{DeltaTime: 0.1})
	assert.InDelta(t, 1+(3-1)*0.2, px, 1e-12)

	// A long frame lands on the target value.
	_, px = auto.Apply(0.06, 3, FrameInput{DeltaTime: 1, TargetHit: true, RangeToTarget: 0.5})
	assert.InDelta(t, 2.0, px, 1e-12)
}

func TestAutoEyeDistanceIsFixed(t *testing.T) {
	auto := DefaultAutoEye()
	auto.EyeDistance = true
	ia, px := auto.Apply(0.02, 3, FrameInput{})
	assert.Equal(t, 0.09, ia)
	assert.Equal(t, 3.0, px)

	cfg := Config{Mode: Anaglyph, Interaxial: 0.02, Parallax: 3, Auto: auto}
	f := newRig(t, cfg)
	f.ctrl.Update(frame(0.5))
	assert.Equal(t, 0.09, f.ctrl.Interaxial())
}

func TestDisplayModeNames(t *testing.T) {
	for m := Disabled; m <= Active; m++ {
		got, err := ParseDisplayMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseDisplayMode("hologram")
	assert.Error(t, err)

	_, ok := Disabled.StereoMode()
	assert.False(t, ok)
	sm, ok := Active.StereoMode()
	assert.True(t, ok)
	assert.Equal(t, compositor.ActiveStereo, sm)
}
