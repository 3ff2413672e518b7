package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"voxel-station/internal/compositor"
	"voxel-station/internal/guides"
	"voxel-station/internal/posemath"
	"voxel-station/internal/postprocess"
	"voxel-station/internal/rig"
)

// Config holds the station settings as read from config.json.
type Config struct {
	// Tracker session
	Device      string `json:"device"`
	Listen      string `json:"listen"`
	HeartbeatMS int    `json:"heartbeat_ms"`

	// Screen
	ScreenMode     string  `json:"screen_mode"`
	ViewSize       float64 `json:"view_size"`
	DisplayWidth   float64 `json:"display_width"`
	DisplayHeight  float64 `json:"display_height"`
	TrackerOffsetX float64 `json:"tracker_offset_x"`
	TrackerOffsetY float64 `json:"tracker_offset_y"`

	// Stereo
	StereoMode       string  `json:"stereo_mode"`
	AutoActiveStereo *bool   `json:"auto_active_stereo"`
	Convergence      string  `json:"convergence"`
	CameraMode       string  `json:"camera_mode"`
	SideBySide       string  `json:"side_by_side"`
	Interaxial       float64 `json:"interaxial"`
	Parallax         float64 `json:"parallax"`
	Auto             Auto    `json:"auto"`

	// Camera
	Near        float64 `json:"near"`
	Far         float64 `json:"far"`
	FieldOfView float64 `json:"fov"`

	// Output
	OutputWidth  int     `json:"output_width"`
	OutputHeight int     `json:"output_height"`
	Supersample  int     `json:"supersample"`
	FrameRate    float64 `json:"frame_rate"`
	Background   string  `json:"background"`
	StylusLength float64 `json:"stylus_length"`
	StylusWidth  float64 `json:"stylus_width"`

	// Capture
	CaptureDir     string `json:"capture_dir"`
	CaptureEvery   int    `json:"capture_every"`
	CaptureWorkers int    `json:"capture_workers"`
}

// Auto holds the automatic eye-parameter settings.
type Auto struct {
	Parallax         bool    `json:"parallax"`
	EyeDistance      bool    `json:"eye_distance"`
	MinRange         float64 `json:"min_range"`
	MaxRange         float64 `json:"max_range"`
	MinParallax      float64 `json:"min_parallax"`
	MaxParallax      float64 `json:"max_parallax"`
	ParallaxSpeed    float64 `json:"parallax_speed"`
	FixedEyeDistance float64 `json:"fixed_eye_distance"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Device       string
	StereoMode   string
	ScreenMode   string
	ViewSize     float64
	Width        int
	Height       int
	Supersample  int
	Background   string
	CaptureDir   string
	CaptureEvery int
	Workers      int
}

// Resolve applies CLI overrides, then fills empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.Device != "" {
		c.Device = flags.Device
	}
	if flags.StereoMode != "" {
		c.StereoMode = flags.StereoMode
	}
	if flags.ScreenMode != "" {
		c.ScreenMode = flags.ScreenMode
	}
	if flags.ViewSize > 0 {
		c.ViewSize = flags.ViewSize
	}
	if flags.Width > 0 {
		c.OutputWidth = flags.Width
	}
	if flags.Height > 0 {
		c.OutputHeight = flags.Height
	}
	if flags.Supersample > 0 {
		c.Supersample = flags.Supersample
	}
	if flags.Background != "" {
		c.Background = flags.Background
	}
	if flags.CaptureDir != "" {
		c.CaptureDir = flags.CaptureDir
	}
	if flags.CaptureEvery > 0 {
		c.CaptureEvery = flags.CaptureEvery
	}
	if flags.Workers > 0 {
		c.CaptureWorkers = flags.Workers
	}

	if c.Device == "" {
		c.Device = "127.0.0.1:8888"
	}
	if c.Listen == "" {
		c.Listen = "127.0.0.1:0"
	}
	if c.HeartbeatMS <= 0 {
		c.HeartbeatMS = 5000
	}
	if c.ScreenMode == "" {
		c.ScreenMode = posemath.ScreenTilt.String()
	}
	if c.ViewSize == 0 {
		c.ViewSize = 1
	}
	if c.DisplayWidth <= 0 {
		c.DisplayWidth = posemath.DisplayWidth
	}
	if c.DisplayHeight <= 0 {
		c.DisplayHeight = posemath.DisplayHeight
	}
	if c.TrackerOffsetX == 0 && c.TrackerOffsetY == 0 {
		c.TrackerOffsetX, c.TrackerOffsetY = 0.26, 0.05
	}

	if c.StereoMode == "" {
		c.StereoMode = rig.Anaglyph.String()
	}
	if c.AutoActiveStereo == nil {
		on := true
		c.AutoActiveStereo = &on
	}
	if c.Convergence == "" {
		c.Convergence = compositor.Parallel.String()
	}
	if c.CameraMode == "" {
		c.CameraMode = compositor.LeftRight.String()
	}
	if c.SideBySide == "" {
		c.SideBySide = compositor.Squeezed.String()
	}
	if c.Interaxial == 0 {
		c.Interaxial = 0.06
	}
	if c.Parallax == 0 {
		c.Parallax = 3
	}
	def := rig.DefaultAutoEye()
	if c.Auto.MinRange == 0 && c.Auto.MaxRange == 0 {
		c.Auto.MinRange, c.Auto.MaxRange = def.MinRange, def.MaxRange
	}
	if c.Auto.MinParallax == 0 && c.Auto.MaxParallax == 0 {
		c.Auto.MinParallax, c.Auto.MaxParallax = def.MinParallax, def.MaxParallax
	}
	if c.Auto.ParallaxSpeed <= 0 {
		c.Auto.ParallaxSpeed = def.ParallaxSpeed
	}
	if c.Auto.FixedEyeDistance <= 0 {
		c.Auto.FixedEyeDistance = def.FixedEyeDistance
	}

	in := posemath.DefaultIntrinsics()
	if c.Near <= 0 {
		c.Near = in.Near
	}
	if c.Far <= 0 {
		c.Far = in.Far
	}
	if c.FieldOfView <= 0 {
		c.FieldOfView = in.FieldOfView
	}

	if c.OutputWidth <= 0 {
		c.OutputWidth = 1280
	}
	if c.OutputHeight <= 0 {
		c.OutputHeight = 720
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
	if c.FrameRate <= 0 {
		c.FrameRate = 60
	}
	if c.StylusLength <= 0 {
		c.StylusLength = guides.DefaultStylusLength
	}
	if c.StylusWidth <= 0 {
		c.StylusWidth = guides.DefaultStylusWidth
	}
	if c.CaptureEvery <= 0 {
		c.CaptureEvery = 1
	}
	if c.CaptureWorkers <= 0 {
		c.CaptureWorkers = runtime.NumCPU()
	}
	if c.Background != "" {
		c.Background = filepath.Clean(c.Background)
	}
}

// MaxFrameRate bounds frame_rate so FrameInterval stays a positive duration.
const MaxFrameRate = 1000

// Clamp enforces the documented ranges.
func (c *Config) Clamp() {
	c.ViewSize = posemath.ClampViewSize(c.ViewSize)
	c.Interaxial = posemath.ClampInteraxial(c.Interaxial)
	c.Parallax = posemath.ClampParallax(c.Parallax)
	c.Supersample = postprocess.ClampSupersample(c.Supersample)
	if c.Near <= 0 {
		c.Near = posemath.DefaultIntrinsics().Near
	}
	if c.Far <= c.Near {
		c.Far = c.Near * 1000
	}
	if c.FrameRate > MaxFrameRate {
		c.FrameRate = MaxFrameRate
	}
	if c.FieldOfView >= 180 {
		c.FieldOfView = 179
	}
	if c.Auto.MaxRange < c.Auto.MinRange {
		c.Auto.MinRange, c.Auto.MaxRange = c.Auto.MaxRange, c.Auto.MinRange
	}
}

// Heartbeat returns the keep-alive interval.
func (c Config) Heartbeat() time.Duration {
	return time.Duration(c.HeartbeatMS) * time.Millisecond
}

// FrameInterval returns the target time between frames.
func (c Config) FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.FrameRate)
}

// Intrinsics returns the camera intrinsics with the output aspect ratio.
func (c Config) Intrinsics() posemath.Intrinsics {
	aspect := 16.0 / 9
	if c.OutputHeight > 0 {
		aspect = float64(c.OutputWidth) / float64(c.OutputHeight)
	}
	return posemath.Intrinsics{Near: c.Near, Far: c.Far, FieldOfView: c.FieldOfView, Aspect: aspect}
}

// Screen returns the untilted screen geometry at the origin.
func (c Config) Screen() (posemath.ScreenGeometry, error) {
	mode, err := posemath.ParseScreenMode(c.ScreenMode)
	if err != nil {
		return posemath.ScreenGeometry{}, fmt.Errorf("config: %w", err)
	}
	return posemath.ScreenGeometry{
		ViewSize: c.ViewSize,
		Mode:     mode,
		Width:    c.DisplayWidth,
		Height:   c.DisplayHeight,
	}, nil
}

// Rig converts the stereo settings. Unknown enum names are errors.
func (c Config) Rig() (rig.Config, error) {
	mode, err := rig.ParseDisplayMode(c.StereoMode)
	if err != nil {
		return rig.Config{}, fmt.Errorf("config: %w", err)
	}
	conv, err := compositor.ParseConvergence(c.Convergence)
	if err != nil {
		return rig.Config{}, fmt.Errorf("config: %w", err)
	}
	cam, err := compositor.ParseCameraMode(c.CameraMode)
	if err != nil {
		return rig.Config{}, fmt.Errorf("config: %w", err)
	}
	sbs, err := compositor.ParseSideBySideMode(c.SideBySide)
	if err != nil {
		return rig.Config{}, fmt.Errorf("config: %w", err)
	}
	return rig.Config{
		Mode:        mode,
		CameraMode:  cam,
		Convergence: conv,
		SideBySide:  sbs,
		Interaxial:  c.Interaxial,
		Parallax:    c.Parallax,
		Intrinsics:  c.Intrinsics(),
		Auto: rig.AutoEye{
			Parallax:         c.Auto.Parallax,
			MinRange:         c.Auto.MinRange,
			MaxRange:         c.Auto.MaxRange,
			MinParallax:      c.Auto.MinParallax,
			MaxParallax:      c.Auto.MaxParallax,
			ParallaxSpeed:    c.Auto.ParallaxSpeed,
			EyeDistance:      c.Auto.EyeDistance,
			FixedEyeDistance: c.Auto.FixedEyeDistance,
		},
	}, nil
}

// AutoActive reports whether glasses tracking switches the stereo mode.
func (c Config) AutoActive() bool {
	return c.AutoActiveStereo == nil || *c.AutoActiveStereo
}
