package raster

import (
	"errors"
	"fmt"
	"image/color"

	"voxel-station/internal/mathutil"
	"voxel-station/internal/posemath"
)

// ErrNoTarget reports a camera asked to render with no target bound.
var ErrNoTarget = errors.New("no render target")

// ClearFlags selects what a camera clears before drawing.
type ClearFlags int

const (
	ClearSolid ClearFlags = iota // color and depth
	ClearDepth                   // depth only; draws over earlier passes
	ClearNone
)

// CameraOptions configures a SceneCamera.
type CameraOptions struct {
	Name       string
	Intrinsics posemath.Intrinsics
	// Parent returns the world transform of the rig the camera hangs from.
	// Nil means the camera's local pose is its world pose.
	Parent     func() mathutil.Transform
	Clear      ClearFlags
	Background color.NRGBA
	Light      *LightConfig
}

// SceneCamera is a software perspective camera that rasterizes a Scene
// into its bound target.
type SceneCamera struct {
	name       string
	scene      *Scene
	intrinsics posemath.Intrinsics
	parent     func() mathutil.Transform
	clearFlags ClearFlags
	background color.NRGBA
	light      LightConfig

	local      mathutil.Transform
	projection mathutil.Mat4
	custom     bool
	target     *FrameBuffer
	enabled    bool
}

func NewSceneCamera(scene *Scene, opts CameraOptions) *SceneCamera {
	lc := DefaultLightConfig()
	if opts.Light != nil {
		lc = *opts.Light
	}
	return &SceneCamera{
		name:       opts.Name,
		scene:      scene,
		intrinsics: opts.Intrinsics,
		parent:     opts.Parent,
		clearFlags: opts.Clear,
		background: opts.Background,
		light:      lc,
		local:      mathutil.IdentityTransform(),
		enabled:    true,
	}
}

func (c *SceneCamera) Name() string { return c.name }

func (c *SceneCamera) Enabled() bool            { return c.enabled }
func (c *SceneCamera) SetEnabled(on bool)       { c.enabled = on }
func (c *SceneCamera) Target() *FrameBuffer     { return c.target }
func (c *SceneCamera) SetTarget(t *FrameBuffer) { c.target = t }

func (c *SceneCamera) LocalPosition() mathutil.Vec3     { return c.local.Position }
func (c *SceneCamera) SetLocalPosition(p mathutil.Vec3) { c.local.Position = p }
func (c *SceneCamera) LocalRotation() mathutil.Quat     { return c.local.Rotation }
func (c *SceneCamera) SetLocalRotation(q mathutil.Quat) { c.local.Rotation = q.Normalize() }

// SetProjection overrides the projection until ResetProjection.
func (c *SceneCamera) SetProjection(m mathutil.Mat4) {
	c.projection = m
	c.custom = true
}

// ResetProjection returns to the symmetric perspective from the camera's
// intrinsics, with the aspect ratio taken from the target.
func (c *SceneCamera) ResetProjection() {
	c.custom = false
}

// Projection returns the matrix the next Render will use.
func (c *SceneCamera) Projection() (mathutil.Mat4, error) {
	if c.custom {
		return c.projection, nil
	}
	in := c.intrinsics
	if c.target != nil && c.target.Height > 0 {
		in.Aspect = float64(c.target.Width) / float64(c.target.Height)
	}
	return posemath.SymmetricPerspective(in)
}

// WorldTransform returns the camera pose in world space.
func (c *SceneCamera) WorldTransform() mathutil.Transform {
	if c.parent == nil {
		return c.local
	}
	return c.parent().Compose(c.local)
}

// Render draws the scene into the bound target.
func (c *SceneCamera) Render() error {
	fb := c.target
	if fb == nil {
		return fmt.Errorf("raster: render %s: %w", c.name, ErrNoTarget)
	}
	proj, err := c.Projection()
	if err != nil {
		return fmt.Errorf("raster: render %s: %w", c.name, err)
	}

	switch c.clearFlags {
	case ClearSolid:
		fb.Clear(c.background)
	case ClearDepth:
		fb.ClearDepth()
	}
	if c.scene == nil {
		return nil
	}

	vp := mathutil.Mat4Mul(proj, c.WorldTransform().ViewMatrix())
	for _, layer := range c.scene.Layers() {
		if layer.Hidden {
			continue
		}
		for _, t := range layer.Triangles {
			c.drawTriangle(fb, vp, t)
		}
		for _, l := range layer.Lines {
			c.drawLine(fb, vp, l)
		}
	}
	return nil
}

func (c *SceneCamera) drawTriangle(fb *FrameBuffer, vp mathutil.Mat4, t Triangle) {
	var sv [3]ScreenVertex
	for i, p := range t.V {
		v, ok := toScreen(fb, vp.MulHomogeneous(p))
		if !ok {
			// Faces crossing the near plane are dropped rather than clipped.
			return
		}
		sv[i] = v
	}
	col := t.Color
	if !t.Unlit {
		n := t.V[1].Sub(t.V[0]).Cross(t.V[2].Sub(t.V[0])).Normalize()
		if n == (mathutil.Vec3{}) {
			return
		}
		col = c.light.Shade(col, c.light.ComputeShade(n))
	}
	RasterizeTriangle(fb, sv, col)
}

func (c *SceneCamera) drawLine(fb *FrameBuffer, vp mathutil.Mat4, l Line) {
	a, b, ok := clipNear(vp.MulHomogeneous(l.A), vp.MulHomogeneous(l.B))
	if !ok {
		return
	}
	sa, okA := toScreen(fb, a)
	sb, okB := toScreen(fb, b)
	if !okA || !okB {
		return
	}
	RasterizeLine(fb, sa, sb, l.Width, l.Color)
}

const minClipW = 1e-6

// clipNear trims a clip-space segment to the part in front of the near plane.
func clipNear(a, b [4]float64) ([4]float64, [4]float64, bool) {
	da := a[2] + a[3] // >= 0 inside the near plane for a GL projection
	db := b[2] + b[3]
	if da < 0 && db < 0 {
		return a, b, false
	}
	if da < 0 || db < 0 {
		t := da / (da - db)
		var p [4]float64
		for i := range p {
			p[i] = a[i] + (b[i]-a[i])*t
		}
		if da < 0 {
			a = p
		} else {
			b = p
		}
	}
	return a, b, true
}

// toScreen maps a clip-space position to pixel coordinates and depth.
func toScreen(fb *FrameBuffer, clip [4]float64) (ScreenVertex, bool) {
	w := clip[3]
	if w < minClipW {
		return ScreenVertex{}, false
	}
	x, y, z := clip[0]/w, clip[1]/w, clip[2]/w
	if !mathutil.IsFinite(x) || !mathutil.IsFinite(y) || !mathutil.IsFinite(z) {
		return ScreenVertex{}, false
	}
	return ScreenVertex{
		X: (x + 1) * 0.5 * float64(fb.Width),
		Y: (1 - y) * 0.5 * float64(fb.Height),
		Z: -z,
	}, true
}
