// Package station runs one frame of the voxel station: it turns the latest
// tracking snapshot into a viewer pose, a stylus pose and stylus button
// events, and hands the result to the stereo rig.
package station

import (
	"log"

	"voxel-station/internal/guides"
	"voxel-station/internal/mathutil"
	"voxel-station/internal/posemath"
	"voxel-station/internal/raster"
	"voxel-station/internal/rig"
	"voxel-station/internal/tracking"
	"voxel-station/internal/triangulate"
)

// Scene layer names.
const (
	LayerGuides = "guides"
	LayerStylus = "stylus"
)

// Source supplies tracking data. *tracking.Receiver implements it.
type Source interface {
	Snapshot() (tracking.Snapshot, bool)
	DrainKeys() []tracking.KeyCode
}

// Raycaster reports the distance to the first thing hit along a ray, given
// the screen as it stands this frame. guides.RaycastScreen is one.
type Raycaster func(screen posemath.ScreenGeometry, origin, dir mathutil.Vec3) (float64, bool)

// Config holds the per-station settings.
type Config struct {
	// Screen is the untilted screen; the tilt comes from tracking.
	Screen        posemath.ScreenGeometry
	TrackerOffset mathutil.Vec3 // metres; y is added after the flip

	// AutoActiveStereo switches the rig to Active while the glasses are
	// tracked and to Disabled otherwise, from the second record on.
	AutoActiveStereo    bool
	DisableHeadTracking bool

	StylusLength float64
	StylusWidth  float64
	Guides       guides.Options
	OutputWidth  int

	// Raycast finds targets for the stylus beam and the auto-parallax
	// range. Nil hits nothing.
	Raycast Raycaster
}

// ButtonState is the state of one stylus button this frame and the last.
type ButtonState struct {
	Pressed    bool
	WasPressed bool
}

// JustPressed reports a press edge.
func (b ButtonState) JustPressed() bool { return b.Pressed && !b.WasPressed }

// JustReleased reports a release edge.
func (b ButtonState) JustReleased() bool { return !b.Pressed && b.WasPressed }

// Frame is the outcome of one Step.
type Frame struct {
	Seq         uint64 // station frame counter
	Tracked     bool   // a tracking snapshot was available
	Viewer      mathutil.Transform
	Screen      posemath.ScreenGeometry
	Stylus      triangulate.Pose
	StylusValid bool
	Beam        guides.Beam
	Mode        rig.DisplayMode
	Stereo      bool
}

// Station owns the per-frame state.
type Station struct {
	cfg   Config
	src   Source
	cmd   tracking.Commander
	rig   *rig.Controller
	scene *raster.Scene

	tracker *triangulate.Tracker
	buttons [4]ButtonState // indexed by tracking.Button

	// OnPress and OnRelease run for every key event during Step.
	OnPress   func(tracking.Button)
	OnRelease func(tracking.Button)

	frame   uint64
	seen    bool
	lastSeq uint64
	viewer  mathutil.Transform
	screen  posemath.ScreenGeometry

	cmdWarned bool
}

// New builds a station. cmd may be nil when the device is not writable,
// for instance during replay.
func New(src Source, cmd tracking.Commander, ctrl *rig.Controller, scene *raster.Scene, cfg Config) *Station {
	if cfg.StylusLength <= 0 {
		cfg.StylusLength = guides.DefaultStylusLength
	}
	if cfg.StylusWidth <= 0 {
		cfg.StylusWidth = guides.DefaultStylusWidth
	}
	s := &Station{
		cfg:     cfg,
		src:     src,
		cmd:     cmd,
		rig:     ctrl,
		scene:   scene,
		tracker: triangulate.NewTracker(),
		screen:  cfg.Screen,
	}
	// Until the first record the viewer sits half a metre in front of the
	// screen centre.
	s.viewer = mathutil.Transform{
		Position: cfg.Screen.Center.Add(mathutil.Vec3{0, 0, 0.5}),
		Rotation: mathutil.QuatIdentity(),
	}
	s.scene.SetLayer(LayerGuides, guides.Build(s.screen, cfg.Guides), nil)
	s.scene.SetLayer(LayerStylus, nil, nil)
	s.scene.SetVisible(LayerStylus, false)
	return s
}

// Button returns the state of b.
func (s *Station) Button(b tracking.Button) ButtonState {
	if b < tracking.ButtonOne || b > tracking.ButtonThree {
		return ButtonState{}
	}
	return s.buttons[b]
}

// Rig returns the stereo rig the station drives.
func (s *Station) Rig() *rig.Controller { return s.rig }

// Step advances one frame of dt seconds.
func (s *Station) Step(dt float64) Frame {
	s.frame++
	for i := range s.buttons {
		s.buttons[i].WasPressed = s.buttons[i].Pressed
	}
	s.handleKeys(s.src.DrainKeys())

	snap, ok := s.src.Snapshot()
	if ok {
		s.track(snap)
	}

	in := rig.FrameInput{Viewer: s.viewer, Screen: s.screen, DeltaTime: dt}
	if s.cfg.Raycast != nil {
		in.RangeToTarget, in.TargetHit = s.cfg.Raycast(s.screen, s.viewer.Position, s.viewer.Forward())
	}
	s.rig.Update(in)

	if ok && snap.Seq != s.lastSeq {
		s.lastSeq = snap.Seq
		cam1, cam2 := s.rig.EyeTransforms()
		s.tracker.Update(snap.Tip, snap.Tail, cam1, cam2, snap.Roll)
	}

	f := Frame{
		Seq:     s.frame,
		Tracked: ok,
		Viewer:  s.viewer,
		Screen:  s.screen,
		Mode:    s.rig.Mode(),
		Stereo:  s.rig.Stereo(),
	}
	f.Stylus, f.StylusValid = s.tracker.Pose()
	s.updateScene(&f)
	return f
}

// Render draws the current frame into dst.
func (s *Station) Render(dst *raster.FrameBuffer) error {
	return s.rig.Render(dst)
}

func (s *Station) track(snap tracking.Snapshot) {
	if s.cfg.AutoActiveStereo {
		if s.seen {
			if snap.GlassesTracked {
				s.rig.SetMode(rig.Active)
			} else {
				s.rig.SetMode(rig.Disabled)
			}
		}
		s.seen = true
	}

	// A non-finite tilt keeps the previous frame's.
	tilt := s.screen.TiltDegrees
	s.screen = s.cfg.Screen
	s.screen.TiltDegrees = tilt
	if mathutil.IsFinite(snap.Tilt) {
		s.screen.TiltDegrees = snap.Tilt
	}

	if s.cfg.DisableHeadTracking {
		return
	}
	head := snap.HeadMeters()
	offset := mathutil.Vec3{
		head[0] - s.cfg.TrackerOffset[0],
		-head[1] + s.cfg.TrackerOffset[1],
		head[2],
	}
	if viewer, ok := ViewerTransform(offset, s.screen); ok {
		s.viewer = viewer
	}
}

// ViewerTransform places the viewer for a head offset given in display
// coordinates. In ScreenTilt mode the viewer keeps the rig orientation; in
// LookAt mode it turns to face the screen centre.
func ViewerTransform(offset mathutil.Vec3, screen posemath.ScreenGeometry) (mathutil.Transform, bool) {
	var t mathutil.Transform
	switch screen.Mode {
	case posemath.LookAt:
		root := mathutil.IdentityTransform()
		t.Position = posemath.ComputeAnchoredCameraPosition(offset, screen.TiltDegrees, screen.ViewSize, root, screen.Center)
		t.Rotation = mathutil.LookRotation(screen.Center.Sub(t.Position), mathutil.Up)
	default:
		t.Position = screen.Center.Add(posemath.ComputeCameraPositionCorrection(offset, screen.TiltDegrees, screen.ViewSize))
		t.Rotation = mathutil.QuatIdentity()
	}
	return t, t.IsFinite()
}

func (s *Station) handleKeys(keys []tracking.KeyCode) {
	for _, k := range keys {
		b, pressed, ok := k.Event()
		if !ok {
			continue
		}
		s.buttons[b].Pressed = pressed
		if pressed {
			if b == tracking.ButtonOne {
				s.feedback()
			}
			if s.OnPress != nil {
				s.OnPress(b)
			}
		} else if s.OnRelease != nil {
			s.OnRelease(b)
		}
	}
}

// feedback flashes the stylus green and buzzes it.
func (s *Station) feedback() {
	if s.cmd == nil {
		return
	}
	err := tracking.SendFeature(s.cmd, tracking.ColorGreen, 50)
	if err == nil {
		err = tracking.SendFeature(s.cmd, tracking.Vibration, 50)
	}
	if err != nil {
		if !s.cmdWarned {
			log.Printf("station: stylus feedback: %v", err)
		}
		s.cmdWarned = true
		return
	}
	s.cmdWarned = false
}

func (s *Station) updateScene(f *Frame) {
	s.scene.SetLayer(LayerGuides, guides.Build(s.screen, s.cfg.Guides), nil)
	if !f.StylusValid {
		s.scene.SetVisible(LayerStylus, false)
		return
	}
	dist, hit := 0.0, false
	if s.cfg.Raycast != nil {
		dist, hit = s.cfg.Raycast(s.screen, f.Stylus.Position, f.Stylus.Direction)
	}
	f.Beam = guides.StylusBeam(f.Stylus.Position, f.Stylus.Direction, dist, hit,
		s.cfg.StylusLength, s.cfg.StylusWidth, s.screen.ViewSize)
	ppm := guides.PixelsPerMetre(s.screen, s.cfg.OutputWidth)
	s.scene.SetLayer(LayerStylus, []raster.Line{f.Beam.Line(ppm)}, nil)
	s.scene.SetVisible(LayerStylus, true)
}
