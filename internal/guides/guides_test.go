package guides

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxel-station/internal/mathutil"
	"voxel-station/internal/posemath"
)

func zRange(t *testing.T, screen posemath.ScreenGeometry, opts Options) (lo, hi float64) {
	t.Helper()
	lines := Build(screen, opts)
	require.NotEmpty(t, lines)
	lo, hi = lines[0].A[2], lines[0].A[2]
	for _, l := range lines {
		for _, p := range []mathutil.Vec3{l.A, l.B} {
			lo = min(lo, p[2])
			hi = max(hi, p[2])
		}
	}
	return lo, hi
}

func TestBoxDepthsScaleWithViewSize(t *testing.T) {
	screen := posemath.DefaultScreen()
	screen.ViewSize = 2

	lo, hi := zRange(t, screen, Options{Positive: true})
	assert.InDelta(t, -gap-0.6, lo, 1e-12)
	assert.InDelta(t, -gap, hi, 1e-12)

	lo, hi = zRange(t, screen, Options{Negative: true})
	assert.InDelta(t, gap, lo, 1e-12)
	assert.InDelta(t, gap+0.26, hi, 1e-12)
}

func TestBuildCounts(t *testing.T) {
	lines := Build(posemath.DefaultScreen(), DefaultOptions())
	assert.Len(t, lines, 12+12+4)
	assert.Equal(t, PositiveColor, lines[0].Color)
	assert.Equal(t, FrameColor, lines[len(lines)-1].Color)
	assert.Equal(t, 1, lines[0].Width)
}

func TestFrameFollowsTiltOnlyInScreenTiltMode(t *testing.T) {
	screen := posemath.DefaultScreen()
	screen.TiltDegrees = 30
	opts := Options{Frame: true}

	tilted := Build(screen, opts)
	ll, _, _ := screen.Corners()
	assert.True(t, tilted[0].A.ApproxEqual(ll, 1e-12), "frame corner %v want %v", tilted[0].A, ll)

	screen.Mode = posemath.LookAt
	upright := Build(screen, opts)
	assert.InDelta(t, 0, upright[0].A[2], 1e-12)
	assert.InDelta(t, -posemath.DisplayHeight/2, upright[0].A[1], 1e-12)
}

func TestRaycastScreen(t *testing.T) {
	screen := posemath.DefaultScreen()
	origin := mathutil.Vec3{0.1, 0.05, 0.5}

	d, ok := RaycastScreen(screen, origin, mathutil.Forward)
	require.True(t, ok)
	assert.InDelta(t, 0.5, d, 1e-12)

	_, ok = RaycastScreen(screen, origin, mathutil.Up)
	assert.False(t, ok, "parallel to the screen")

	_, ok = RaycastScreen(screen, origin, mathutil.Forward.Neg())
	assert.False(t, ok, "pointing away")

	_, ok = RaycastScreen(screen, mathutil.Vec3{1, 0, 0.5}, mathutil.Forward)
	assert.False(t, ok, "outside the rectangle")
}

func TestStylusBeam(t *testing.T) {
	origin := mathutil.Vec3{0, 0, 0.2}
	b := StylusBeam(origin, mathutil.Vec3{0, 0, -2}, 0, false, DefaultStylusLength, DefaultStylusWidth, 0.5)
	assert.True(t, b.End.ApproxEqual(mathutil.Vec3{0, 0, -4.8}, 1e-12), "%v", b.End)
	assert.InDelta(t, 0.001, b.Width, 1e-15)

	b = StylusBeam(origin, mathutil.Forward, 0.2, true, DefaultStylusLength, DefaultStylusWidth, 0.5)
	assert.True(t, b.End.ApproxEqual(mathutil.Vec3{}, 1e-12))

	ppm := PixelsPerMetre(posemath.DefaultScreen(), 1130)
	assert.InDelta(t, 2000, ppm, 1e-9)
	assert.Equal(t, 2, b.Line(ppm).Width)
	assert.Equal(t, 1, b.Line(10).Width)
}
