// Package rig drives the stereo eye cameras from the tracked viewer each
// frame and switches the compositor between stereo and mono.
package rig

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"voxel-station/internal/compositor"
	"voxel-station/internal/mathutil"
	"voxel-station/internal/posemath"
	"voxel-station/internal/raster"
)

// DisplayMode is the user-facing stereo setting: Disabled or one of the
// compositor's stereo modes.
type DisplayMode int

const (
	Disabled DisplayMode = iota
	Anaglyph
	SideBySide
	OverUnder
	Interlace
	Checkerboard
	Active
)

var displayModeNames = [...]string{"disabled", "anaglyph", "side_by_side", "over_under", "interlace", "checkerboard", "active"}

func (m DisplayMode) String() string {
	if m >= 0 && int(m) < len(displayModeNames) {
		return displayModeNames[m]
	}
	return fmt.Sprintf("DisplayMode(%d)", int(m))
}

func ParseDisplayMode(s string) (DisplayMode, error) {
	for i, n := range displayModeNames {
		if strings.EqualFold(s, n) {
			return DisplayMode(i), nil
		}
	}
	// Accept the compositor spelling of the active mode as well.
	if strings.EqualFold(s, "active_stereo") {
		return Active, nil
	}
	return 0, fmt.Errorf("rig: unknown display mode %q", s)
}

// StereoMode maps m to the compositor mode; ok is false for Disabled.
func (m DisplayMode) StereoMode() (mode compositor.StereoMode, ok bool) {
	switch m {
	case Anaglyph:
		return compositor.Anaglyph, true
	case SideBySide:
		return compositor.SideBySide, true
	case OverUnder:
		return compositor.OverUnder, true
	case Interlace:
		return compositor.Interlace, true
	case Checkerboard:
		return compositor.Checkerboard, true
	case Active:
		return compositor.ActiveStereo, true
	}
	return 0, false
}

// Eye is an eye camera the rig can place and project.
type Eye interface {
	compositor.EyeCamera
	LocalRotation() mathutil.Quat
	SetLocalRotation(q mathutil.Quat)
	SetProjection(m mathutil.Mat4)
}

// Cameras are the scene cameras handed to the rig. Right may be nil, which
// keeps the rig in mono.
type Cameras struct {
	Left       Eye
	Right      Eye
	UI         []compositor.Camera
	Background compositor.Camera
}

// Config is the rig's initial stereo configuration.
type Config struct {
	Mode        DisplayMode
	CameraMode  compositor.CameraMode
	Convergence compositor.Convergence
	SideBySide  compositor.SideBySideMode
	Interaxial  float64
	Parallax    float64
	Intrinsics  posemath.Intrinsics
	Auto        AutoEye
}

// FrameInput is what the rig needs from the rest of the frame.
type FrameInput struct {
	Viewer        mathutil.Transform // rig pose in world space
	Screen        posemath.ScreenGeometry
	DeltaTime     float64 // seconds
	RangeToTarget float64 // distance along the viewer's forward axis to the nearest hit
	TargetHit     bool
}

// Controller is the per-frame stereo rig state machine.
type Controller struct {
	comp *compositor.Compositor
	cams Cameras

	mode       DisplayMode
	camMode    compositor.CameraMode
	conv       compositor.Convergence
	sbs        compositor.SideBySideMode
	interaxial float64
	parallax   float64
	intrinsics posemath.Intrinsics
	auto       AutoEye

	rig mathutil.Transform

	enabledConv compositor.Convergence
	enableErr   error
	geomWarned  bool
	geomErrors  int
}

// New builds a controller. The compositor is driven exclusively by the
// controller from then on.
func New(comp *compositor.Compositor, cams Cameras, cfg Config) *Controller {
	c := &Controller{
		comp:       comp,
		cams:       cams,
		mode:       cfg.Mode,
		camMode:    cfg.CameraMode,
		conv:       cfg.Convergence,
		sbs:        cfg.SideBySide,
		intrinsics: cfg.Intrinsics,
		auto:       cfg.Auto,
		rig:        mathutil.IdentityTransform(),
	}
	c.SetInteraxial(cfg.Interaxial)
	c.SetParallax(cfg.Parallax)
	return c
}

func (c *Controller) Mode() DisplayMode                             { return c.mode }
func (c *Controller) SetMode(m DisplayMode)                         { c.mode = m }
func (c *Controller) CameraMode() compositor.CameraMode             { return c.camMode }
func (c *Controller) SetCameraMode(m compositor.CameraMode)         { c.camMode = m }
func (c *Controller) Convergence() compositor.Convergence           { return c.conv }
func (c *Controller) SetConvergence(v compositor.Convergence)       { c.conv = v }
func (c *Controller) SetSideBySideMode(m compositor.SideBySideMode) { c.sbs = m }

// Interaxial returns the clamped eye separation in use.
func (c *Controller) Interaxial() float64 { return c.interaxial }

// SetInteraxial stores v clamped to [0, 0.2].
func (c *Controller) SetInteraxial(v float64) { c.interaxial = posemath.ClampInteraxial(v) }

// Parallax returns the clamped parallax distance in use.
func (c *Controller) Parallax() float64 { return c.parallax }

// SetParallax stores v clamped to at least 0.2.
func (c *Controller) SetParallax(v float64) { c.parallax = posemath.ClampParallax(v) }

// RigTransform returns the rig pose of the last Update. Eye cameras use it
// as their parent transform.
func (c *Controller) RigTransform() mathutil.Transform { return c.rig }

// Stereo reports whether the compositor is enabled.
func (c *Controller) Stereo() bool { return c.comp.Enabled() }

// GeometryErrors counts frames that kept the previous projections because
// the viewer or screen geometry was degenerate.
func (c *Controller) GeometryErrors() int { return c.geomErrors }

// Update advances the rig by one frame.
func (c *Controller) Update(in FrameInput) {
	if in.Viewer.IsFinite() && in.Viewer.Rotation.Len() > 1e-9 {
		in.Viewer.Rotation = in.Viewer.Rotation.Normalize()
		c.rig = in.Viewer
	}

	ia, px := c.auto.Apply(c.interaxial, c.parallax, in)
	c.SetInteraxial(ia)
	c.SetParallax(px)

	stereo, ok := c.mode.StereoMode()
	if !ok || c.cams.Right == nil {
		c.toMono()
		return
	}

	if !c.comp.Enabled() || c.enabledConv != c.conv {
		c.comp.Disable()
		if err := c.comp.Enable(c.compositorCameras()); err != nil {
			if c.enableErr == nil || c.enableErr.Error() != err.Error() {
				log.Printf("rig: stereo unavailable, rendering mono: %v", err)
			}
			c.enableErr = err
			c.toMono()
			return
		}
		c.enableErr = nil
		c.enabledConv = c.conv
	}
	c.comp.SetMode(stereo)
	c.comp.SetCameraMode(c.camMode)
	c.comp.SetConvergence(c.conv)
	c.comp.SetSideBySideMode(c.sbs)

	c.placeEyes(in.Screen)
}

func (c *Controller) toMono() {
	c.comp.Disable()
	c.cams.Left.SetLocalPosition(mathutil.Vec3{})
	c.cams.Left.SetLocalRotation(mathutil.QuatIdentity())
	c.cams.Left.ResetProjection()
	c.cams.Left.SetEnabled(true)
	if c.cams.Right != nil {
		c.cams.Right.SetEnabled(false)
	}
}

func (c *Controller) compositorCameras() compositor.CameraSet {
	set := compositor.CameraSet{Left: c.cams.Left, UI: c.cams.UI, Background: c.cams.Background}
	// Avoid a typed nil inside the interface.
	if c.cams.Right != nil {
		set.Right = c.cams.Right
	}
	return set
}

// placeEyes positions both eye cameras for the current camera mode and
// convergence strategy.
func (c *Controller) placeEyes(screen posemath.ScreenGeometry) {
	plan := compositor.Plan(0, c.camMode, c.conv, compositor.FrameState{})
	eyes := [2]Eye{c.cams.Left, c.cams.Right}
	half := c.interaxial / 2

	// Compute every projection before touching the cameras so a degenerate
	// frame leaves both eyes on their previous matrices.
	var proj [2]mathutil.Mat4
	if c.conv == compositor.Parallel {
		offset := posemath.EyeOffset{Interaxial: c.interaxial, Parallax: c.parallax}
		for i, ep := range plan.Eyes {
			m, err := posemath.ComputeOffAxisProjection(ep.Frustum == compositor.LeftEye, c.rig, screen, c.intrinsics, offset)
			if err != nil {
				c.geometryError(err)
				return
			}
			proj[i] = m
		}
	}
	c.geomWarned = false

	for i, ep := range plan.Eyes {
		eye := eyes[i]
		x := ep.Offset * half
		eye.SetLocalPosition(mathutil.Vec3{x, 0, 0})
		switch c.conv {
		case compositor.ToedIn:
			// Aim at the convergence point parallax metres ahead of the rig.
			target := mathutil.Forward.Scale(c.parallax)
			eye.SetLocalRotation(mathutil.LookRotation(target.Sub(mathutil.Vec3{x, 0, 0}), mathutil.Up))
			eye.ResetProjection()
		default:
			eye.SetLocalRotation(mathutil.QuatIdentity())
			eye.SetProjection(proj[i])
		}
	}
}

func (c *Controller) geometryError(err error) {
	c.geomErrors++
	if !c.geomWarned && errors.Is(err, posemath.ErrInvalidGeometry) {
		log.Printf("rig: keeping previous projections: %v", err)
	}
	c.geomWarned = true
}

// EyeTransforms returns the world poses of the left and right eye positions
// of the rig, independent of the camera mode.
func (c *Controller) EyeTransforms() (left, right mathutil.Transform) {
	half := c.interaxial / 2
	left = c.rig.Compose(mathutil.Transform{Position: mathutil.Vec3{-half, 0, 0}, Rotation: mathutil.QuatIdentity()})
	right = c.rig.Compose(mathutil.Transform{Position: mathutil.Vec3{half, 0, 0}, Rotation: mathutil.QuatIdentity()})
	return left, right
}

// Render draws the frame: the stereo composite while the compositor is
// enabled, the left camera alone otherwise.
func (c *Controller) Render(dst *raster.FrameBuffer) error {
	if c.comp.Enabled() {
		return c.comp.RenderFrame(dst)
	}
	return compositor.RenderMono(compositor.CameraSet{
		Left:       c.cams.Left,
		UI:         c.cams.UI,
		Background: c.cams.Background,
	}, dst)
}
