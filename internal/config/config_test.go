package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxel-station/internal/compositor"
	"voxel-station/internal/posemath"
	"voxel-station/internal/postprocess"
	"voxel-station/internal/rig"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	var c Config
	c.Resolve(Flags{})
	c.Clamp()

	assert.Equal(t, "127.0.0.1:8888", c.Device)
	assert.Equal(t, 5*time.Second, c.Heartbeat())
	assert.Equal(t, 0.26, c.TrackerOffsetX)
	assert.Equal(t, 0.05, c.TrackerOffsetY)
	assert.True(t, c.AutoActive())
	assert.Equal(t, 1, c.Supersample)

	rc, err := c.Rig()
	require.NoError(t, err)
	assert.Equal(t, rig.Anaglyph, rc.Mode)
	assert.Equal(t, compositor.Parallel, rc.Convergence)
	assert.Equal(t, 0.06, rc.Interaxial)
	assert.Equal(t, 3.0, rc.Parallax)
	assert.Equal(t, 0.09, rc.Auto.FixedEyeDistance)
	assert.InDelta(t, 16.0/9, rc.Intrinsics.Aspect, 1e-12)

	screen, err := c.Screen()
	require.NoError(t, err)
	assert.Equal(t, posemath.DefaultScreen(), screen)
}

func TestLoadAndFlagsOverride(t *testing.T) {
	path := writeConfig(t, `{
		"device": "10.0.0.2:8888",
		"stereo_mode": "side_by_side",
		"side_by_side": "unsqueezed",
		"camera_mode": "right_left",
		"auto_active_stereo": false,
		"view_size": 2,
		"auto": {"parallax": true, "min_range": 0.5, "max_range": 1.5}
	}`)
	c, err := Load(path)
	require.NoError(t, err)
	c.Resolve(Flags{Device: "127.0.0.1:9999", Width: 640, Height: 480})
	c.Clamp()

	assert.Equal(t, "127.0.0.1:9999", c.Device)
	assert.False(t, c.AutoActive())
	assert.Equal(t, 2.0, c.ViewSize)

	rc, err := c.Rig()
	require.NoError(t, err)
	assert.Equal(t, rig.SideBySide, rc.Mode)
	assert.Equal(t, compositor.Unsqueezed, rc.SideBySide)
	assert.Equal(t, compositor.RightLeft, rc.CameraMode)
	assert.True(t, rc.Auto.Parallax)
	assert.Equal(t, 0.5, rc.Auto.MinRange)
	assert.InDelta(t, 4.0/3, rc.Intrinsics.Aspect, 1e-12)
}

func TestClampRanges(t *testing.T) {
	c := Config{ViewSize: 50, Interaxial: 1, Parallax: 0.01, Near: 1, Far: 0.5, Supersample: 16, FrameRate: 1e12}
	c.Resolve(Flags{})
	c.Clamp()
	assert.Equal(t, float64(MaxFrameRate), c.FrameRate)
	assert.Equal(t, time.Millisecond, c.FrameInterval())
	assert.Equal(t, postprocess.MaxSupersample, c.Supersample)
	assert.Equal(t, posemath.MaxViewSize, c.ViewSize)
	assert.Equal(t, posemath.MaxInteraxial, c.Interaxial)
	assert.Equal(t, posemath.MinParallax, c.Parallax)
	assert.Greater(t, c.Far, c.Near)

	c = Config{ViewSize: -1}
	c.Resolve(Flags{})
	c.Clamp()
	assert.Equal(t, posemath.MinViewSize, c.ViewSize)
}

func TestUnknownEnumsRejected(t *testing.T) {
	for _, c := range []Config{
		{StereoMode: "hologram"},
		{Convergence: "crossed"},
		{CameraMode: "both"},
		{SideBySide: "stretched"},
	} {
		c.Resolve(Flags{})
		_, err := c.Rig()
		assert.Error(t, err, "%+v", c)
	}

	c := Config{ScreenMode: "floating"}
	c.Resolve(Flags{})
	_, err := c.Screen()
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "{not json"))
	assert.Error(t, err)
}
