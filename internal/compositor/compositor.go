package compositor

import (
	"errors"
	"fmt"
	"log"

	"voxel-station/internal/mathutil"
	"voxel-station/internal/raster"
)

var (
	// ErrConfiguration reports missing references at Enable time.
	ErrConfiguration = errors.New("stereo configuration error")
	// ErrResourceUnavailable reports a camera, target or material that could
	// not be used for a frame. The frame falls back to mono.
	ErrResourceUnavailable = errors.New("stereo resource unavailable")
)

// Camera is a render source owned by the surrounding scene. The compositor
// only toggles it and binds targets; it never owns it.
type Camera interface {
	Render() error
	SetEnabled(on bool)
	SetTarget(t *raster.FrameBuffer)
}

// EyeCamera is a Camera hung from the stereo rig.
type EyeCamera interface {
	Camera
	LocalPosition() mathutil.Vec3
	SetLocalPosition(p mathutil.Vec3)
	ResetProjection()
}

// CameraSet is the set of external cameras driven by a Compositor.
type CameraSet struct {
	Left       EyeCamera
	Right      EyeCamera
	UI         []Camera
	Background Camera
}

// SyncSink receives display sync events together with the frame just
// presented.
type SyncSink interface {
	Sync(ev SyncEvent, frame *raster.FrameBuffer)
}

// Config wires a Compositor's dependencies.
type Config struct {
	Allocator raster.Allocator
	Material  *Material
	Sync      SyncSink
}

// Compositor is the stereo frame state machine. It is Disabled until Enable
// succeeds and returns to Disabled on Disable.
type Compositor struct {
	alloc    raster.Allocator
	material *Material
	sync     SyncSink

	mode    StereoMode
	camMode CameraMode
	conv    Convergence
	sbs     SideBySideMode

	cams    CameraSet
	enabled bool

	left, right *raster.FrameBuffer

	degraded bool
	warned   bool
}

func New(cfg Config) *Compositor {
	alloc := cfg.Allocator
	if alloc == nil {
		alloc = &raster.HeapAllocator{}
	}
	return &Compositor{alloc: alloc, material: cfg.Material, sync: cfg.Sync}
}

func (c *Compositor) Enabled() bool              { return c.enabled }
func (c *Compositor) Mode() StereoMode           { return c.mode }
func (c *Compositor) CameraMode() CameraMode     { return c.camMode }
func (c *Compositor) Convergence() Convergence   { return c.conv }
func (c *Compositor) SideBySide() SideBySideMode { return c.sbs }

// SetMode switches the stereo mode. Targets are kept; they depend only on
// the output size.
func (c *Compositor) SetMode(m StereoMode)               { c.mode = m }
func (c *Compositor) SetCameraMode(m CameraMode)         { c.camMode = m }
func (c *Compositor) SetConvergence(v Convergence)       { c.conv = v }
func (c *Compositor) SetSideBySideMode(m SideBySideMode) { c.sbs = m }

// SetMaterial replaces the anaglyph material. A nil material makes the next
// Enable fail and degrades frames of an enabled compositor to mono.
func (c *Compositor) SetMaterial(m *Material) { c.material = m }

// Enable takes over the cameras in cams. It fails with ErrConfiguration and
// stays Disabled when the material or an eye camera is missing. Enabling
// again with the same cameras is a no-op.
func (c *Compositor) Enable(cams CameraSet) error {
	if c.material == nil {
		return fmt.Errorf("compositor: enable: no stereo material: %w", ErrConfiguration)
	}
	if cams.Left == nil || cams.Right == nil {
		return fmt.Errorf("compositor: enable: missing eye camera: %w", ErrConfiguration)
	}
	if c.enabled {
		if sameCameras(c.cams, cams) {
			return nil
		}
		c.Disable()
	}

	c.cams = cams
	cams.Left.SetTarget(c.left)
	cams.Right.SetTarget(c.right)
	cams.Left.SetEnabled(false)
	cams.Right.SetEnabled(false)
	for _, ui := range cams.UI {
		if ui != nil {
			ui.SetEnabled(false)
		}
	}
	if cams.Background != nil {
		cams.Background.SetEnabled(false)
	}
	c.enabled = true
	return nil
}

// Disable releases both targets and hands the cameras back to the scene:
// the left camera alone renders, centred on the rig.
func (c *Compositor) Disable() {
	if !c.enabled {
		return
	}
	cams := c.cams
	cams.Left.SetTarget(nil)
	cams.Right.SetTarget(nil)
	c.releaseTargets()

	cams.Left.ResetProjection()
	cams.Right.ResetProjection()
	p := cams.Left.LocalPosition()
	cams.Left.SetLocalPosition(mathutil.Vec3{0, p[1], p[2]})
	cams.Left.SetEnabled(true)
	cams.Right.SetEnabled(false)

	for _, ui := range cams.UI {
		if ui != nil {
			ui.SetTarget(nil)
			ui.SetEnabled(true)
		}
	}
	if cams.Background != nil {
		cams.Background.SetTarget(nil)
		cams.Background.SetEnabled(true)
	}

	c.enabled = false
	c.degraded = false
	c.warned = false
}

// Cameras returns the cameras passed to the last successful Enable.
func (c *Compositor) Cameras() CameraSet { return c.cams }

// Targets returns the current eye targets; both are nil until the first frame.
func (c *Compositor) Targets() (left, right *raster.FrameBuffer) {
	return c.left, c.right
}

// Degraded reports whether the last frame fell back to mono.
func (c *Compositor) Degraded() bool { return c.degraded }

// Plan returns the render plan for the current configuration.
func (c *Compositor) Plan() RenderPlan {
	return Plan(c.mode, c.camMode, c.conv, c.frameState())
}

func (c *Compositor) frameState() FrameState {
	return FrameState{
		Background: c.cams.Background != nil,
		UICameras:  len(c.cams.UI),
		SideBySide: c.sbs,
	}
}

// RenderFrame renders one frame into dst. While Disabled it renders the
// cameras of the last Enable in mono.
// Stereo failures degrade the frame to mono and are logged once per streak;
// only an unusable dst is returned as an error.
func (c *Compositor) RenderFrame(dst *raster.FrameBuffer) error {
	if dst == nil || dst.Width <= 0 || dst.Height <= 0 {
		return fmt.Errorf("compositor: render frame: invalid output: %w", ErrResourceUnavailable)
	}
	if !c.enabled {
		return RenderMono(c.cams, dst)
	}

	err := c.renderStereo(dst)
	if err == nil {
		c.degraded = false
		c.warned = false
		return nil
	}

	c.degraded = true
	if !c.warned {
		log.Printf("compositor: %s frame degraded to mono: %v", c.mode, err)
		c.warned = true
	}
	if err := c.renderFallback(dst); err != nil {
		log.Printf("compositor: mono fallback: %v", err)
	}
	return nil
}

func (c *Compositor) renderStereo(dst *raster.FrameBuffer) error {
	if c.material == nil {
		return fmt.Errorf("no stereo material: %w", ErrResourceUnavailable)
	}
	if err := c.ensureTargets(dst.Width, dst.Height); err != nil {
		return err
	}

	for _, s := range c.Plan().Steps {
		if err := c.execute(s, dst); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compositor) target(e Eye) *raster.FrameBuffer {
	if e == RightEye {
		return c.right
	}
	return c.left
}

func (c *Compositor) execute(s Step, dst *raster.FrameBuffer) error {
	switch s.Kind {
	case StepClear:
		c.target(s.Eye).Clear(clearColor)
	case StepRender:
		return c.renderSource(s)
	case StepComposite:
		switch s.Pass {
		case PassAnaglyph:
			compositeAnaglyph(dst, c.left, c.right, c.material)
		case PassPlace:
			compositePlace(dst, c.target(s.Eye), s.Region, s.Fit)
		case PassInterleave:
			compositeInterleave(dst, c.left, c.right, s.Pattern)
		}
	case StepPresent:
		dst.CopyFrom(c.target(s.Eye))
	case StepSync:
		if c.sync != nil {
			c.sync.Sync(s.Event, dst)
		}
	}
	return nil
}

func (c *Compositor) renderSource(s Step) error {
	t := c.target(s.Eye)
	var cam Camera
	switch s.Source {
	case SourceBackground:
		cam = c.cams.Background
		if cam != nil {
			cam.SetTarget(t)
		}
	case SourceEye:
		if s.Eye == RightEye {
			cam = c.cams.Right
		} else {
			cam = c.cams.Left
		}
	case SourceUI:
		if s.Index < len(c.cams.UI) {
			cam = c.cams.UI[s.Index]
		}
		if cam != nil {
			cam.SetTarget(t)
		}
	}
	if cam == nil {
		if s.Source == SourceEye {
			return fmt.Errorf("%s eye camera missing: %w", s.Eye, ErrResourceUnavailable)
		}
		return nil
	}
	if err := cam.Render(); err != nil {
		return fmt.Errorf("render %s eye: %v: %w", s.Eye, err, ErrResourceUnavailable)
	}
	return nil
}

// ensureTargets reallocates both eye targets when the output size changed.
// Old targets are released before the new ones are acquired.
func (c *Compositor) ensureTargets(w, h int) error {
	if c.left != nil && c.right != nil && c.left.Width == w && c.left.Height == h {
		return nil
	}
	c.releaseTargets()

	left, err := c.alloc.Acquire(w, h)
	if err != nil {
		return fmt.Errorf("left target: %v: %w", err, ErrResourceUnavailable)
	}
	right, err := c.alloc.Acquire(w, h)
	if err != nil {
		c.alloc.Release(left)
		return fmt.Errorf("right target: %v: %w", err, ErrResourceUnavailable)
	}
	c.left, c.right = left, right
	if c.enabled {
		c.cams.Left.SetTarget(left)
		c.cams.Right.SetTarget(right)
	}
	return nil
}

func (c *Compositor) releaseTargets() {
	if c.left != nil {
		c.alloc.Release(c.left)
		c.left = nil
	}
	if c.right != nil {
		c.alloc.Release(c.right)
		c.right = nil
	}
}

// renderFallback renders the left eye camera alone into dst, then rebinds
// the eye targets for the next stereo frame.
func (c *Compositor) renderFallback(dst *raster.FrameBuffer) error {
	mono := CameraSet{Left: c.cams.Left, UI: c.cams.UI, Background: c.cams.Background}
	err := RenderMono(mono, dst)
	c.cams.Left.SetTarget(c.left)
	return err
}

func sameCameras(a, b CameraSet) bool {
	if a.Left != b.Left || a.Right != b.Right || a.Background != b.Background || len(a.UI) != len(b.UI) {
		return false
	}
	for i := range a.UI {
		if a.UI[i] != b.UI[i] {
			return false
		}
	}
	return true
}
