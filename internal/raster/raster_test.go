package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxel-station/internal/mathutil"
	"voxel-station/internal/posemath"
)

var (
	red  = color.NRGBA{255, 0, 0, 255}
	blue = color.NRGBA{0, 0, 255, 255}
)

func TestFrameBufferClearAndView(t *testing.T) {
	fb := NewFrameBuffer(4, 2)
	fb.Clear(red)
	assert.Equal(t, red, fb.At(3, 1))
	assert.Equal(t, red, fb.Image().NRGBAAt(0, 0))

	fb.Set(1, 1, blue)
	assert.Equal(t, blue, fb.Image().NRGBAAt(1, 1))
	assert.Equal(t, color.NRGBA{}, fb.At(10, 10))

	dst := NewFrameBuffer(4, 2)
	dst.CopyFrom(fb)
	assert.Equal(t, fb.Color, dst.Color)

	small := NewFrameBuffer(2, 1)
	small.CopyFrom(fb)
	assert.Equal(t, red, small.At(1, 0))
}

func TestHeapAllocatorCounts(t *testing.T) {
	var a HeapAllocator
	l, err := a.Acquire(8, 4)
	require.NoError(t, err)
	r, err := a.Acquire(8, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(2), a.Live())

	a.Release(l)
	a.Release(r)
	a.Release(nil)
	assert.Equal(t, int64(0), a.Live())
	assert.Equal(t, int64(2), a.Acquired())

	_, err = a.Acquire(0, 4)
	assert.ErrorIs(t, err, ErrInvalidSize)

	limited := HeapAllocator{Limit: 1}
	_, err = limited.Acquire(1, 1)
	require.NoError(t, err)
	_, err = limited.Acquire(1, 1)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, int64(1), limited.Live())
}

func newTestCamera(scene *Scene) (*SceneCamera, *FrameBuffer) {
	cam := NewSceneCamera(scene, CameraOptions{
		Name:       "eye",
		Intrinsics: posemath.DefaultIntrinsics(),
	})
	fb := NewFrameBuffer(32, 32)
	cam.SetTarget(fb)
	return cam, fb
}

func TestSceneCameraDepthOrder(t *testing.T) {
	scene := NewScene()
	near := Triangle{V: [3]mathutil.Vec3{{-0.2, -0.2, -1}, {0.2, -0.2, -1}, {0, 0.2, -1}}, Color: blue, Unlit: true}
	far := Triangle{V: [3]mathutil.Vec3{{-1, -1, -2}, {1, -1, -2}, {0, 1, -2}}, Color: red, Unlit: true}
	scene.SetLayer("content", nil, []Triangle{near, far})

	cam, fb := newTestCamera(scene)
	require.NoError(t, cam.Render())
	assert.Equal(t, blue, fb.At(16, 16))
	assert.Equal(t, red, fb.At(16, 26), "far face visible below the near one")
	assert.Equal(t, color.NRGBA{}, fb.At(0, 0))

	scene.SetVisible("content", false)
	require.NoError(t, cam.Render())
	assert.Equal(t, color.NRGBA{}, fb.At(16, 16))
}

func TestSceneCameraBehindIsCulled(t *testing.T) {
	scene := NewScene()
	scene.SetLayer("content", nil, []Triangle{{
		V:     [3]mathutil.Vec3{{-1, -1, 2}, {1, -1, 2}, {0, 1, 2}},
		Color: red,
		Unlit: true,
	}})
	cam, fb := newTestCamera(scene)
	require.NoError(t, cam.Render())
	assert.Equal(t, color.NRGBA{}, fb.At(16, 16))
}

func TestSceneCameraLineClipsAtNearPlane(t *testing.T) {
	scene := NewScene()
	scene.SetLayer("guides", []Line{{A: mathutil.Vec3{0, 0, 5}, B: mathutil.Vec3{0, 0, -5}, Color: red, Width: 1}}, nil)
	cam, fb := newTestCamera(scene)
	require.NoError(t, cam.Render())
	assert.Equal(t, red, fb.At(16, 16))
}

func TestSceneCameraFollowsParent(t *testing.T) {
	scene := NewScene()
	scene.SetLayer("content", nil, []Triangle{{
		V:     [3]mathutil.Vec3{{9.8, -0.2, -1}, {10.2, -0.2, -1}, {10, 0.2, -1}},
		Color: red,
		Unlit: true,
	}})
	rig := mathutil.Transform{Position: mathutil.Vec3{10, 0, 0}, Rotation: mathutil.QuatIdentity()}
	cam := NewSceneCamera(scene, CameraOptions{
		Intrinsics: posemath.DefaultIntrinsics(),
		Parent:     func() mathutil.Transform { return rig },
	})
	fb := NewFrameBuffer(32, 32)
	cam.SetTarget(fb)
	require.NoError(t, cam.Render())
	assert.Equal(t, red, fb.At(16, 16))
}

func TestSceneCameraProjectionOverride(t *testing.T) {
	cam, _ := newTestCamera(NewScene())
	def, err := cam.Projection()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, def.At(0, 0)/def.At(1, 1), 1e-12, "square target gives unit aspect")

	custom := mathutil.Mat4Identity()
	cam.SetProjection(custom)
	got, err := cam.Projection()
	require.NoError(t, err)
	assert.Equal(t, custom, got)

	cam.ResetProjection()
	got, err = cam.Projection()
	require.NoError(t, err)
	assert.Equal(t, def, got)
}

func TestCamerasWithoutTarget(t *testing.T) {
	cam := NewSceneCamera(NewScene(), CameraOptions{Name: "left", Intrinsics: posemath.DefaultIntrinsics()})
	assert.ErrorIs(t, cam.Render(), ErrNoTarget)

	plate := NewPlateCamera("bg", PlateFill, nil, red)
	assert.ErrorIs(t, plate.Render(), ErrNoTarget)
}

func TestPlateCamera(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:], []uint8{0, 0, 255, 255})
	}

	fb := NewFrameBuffer(8, 8)
	bg := NewPlateCamera("bg", PlateFill, img, red)
	bg.SetTarget(fb)
	require.NoError(t, bg.Render())
	assert.Equal(t, blue, fb.At(7, 7))

	empty := NewPlateCamera("bg", PlateFill, nil, red)
	empty.SetTarget(fb)
	require.NoError(t, empty.Render())
	assert.Equal(t, red, fb.At(0, 0))

	overlay := NewPlateCamera("ui", PlateOverlay, image.NewNRGBA(image.Rect(0, 0, 2, 2)), color.NRGBA{})
	overlay.SetTarget(fb)
	require.NoError(t, overlay.Render())
	assert.Equal(t, red, fb.At(3, 3), "transparent overlay leaves the frame alone")
}
