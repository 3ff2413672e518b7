package posemath

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"voxel-station/internal/mathutil"
)

// Frustum is the result of an off-axis projection for one eye.
type Frustum struct {
	// Projection maps the eye camera's local space to clip space. It already
	// contains the rotation from the camera basis into the screen basis, so it
	// is valid for a camera at Eye with the viewer's orientation.
	Projection mathutil.Mat4

	Left, Right, Bottom, Top float64 // extents on the near plane
	Near, Far                float64
	Eye                      mathutil.Vec3 // world-space eye position
	Distance                 float64       // eye to screen plane
}

// EyePosition returns the world position of one eye: the viewer position
// shifted by half the interaxial distance along the viewer's right axis.
func EyePosition(isLeftEye bool, viewer mathutil.Transform, interaxial float64) mathutil.Vec3 {
	half := ClampInteraxial(interaxial) / 2
	if isLeftEye {
		half = -half
	}
	return viewer.TransformPoint(mathutil.Vec3{half, 0, 0})
}

// ComputeOffAxisProjection returns the asymmetric projection matrix for one eye
// so that the projection plane coincides with the virtual screen.
func ComputeOffAxisProjection(isLeftEye bool, viewer mathutil.Transform, screen ScreenGeometry, in Intrinsics, offset EyeOffset) (mathutil.Mat4, error) {
	f, err := ComputeOffAxisFrustum(isLeftEye, viewer, screen, in, offset)
	if err != nil {
		return mathutil.Mat4{}, err
	}
	return f.Projection, nil
}

// ComputeOffAxisFrustum is ComputeOffAxisProjection with the frustum extents.
func ComputeOffAxisFrustum(isLeftEye bool, viewer mathutil.Transform, screen ScreenGeometry, in Intrinsics, offset EyeOffset) (Frustum, error) {
	if err := validate(viewer, screen, in); err != nil {
		return Frustum{}, err
	}
	viewer.Rotation = viewer.Rotation.Normalize()
	eye := EyePosition(isLeftEye, viewer, offset.Interaxial)

	// Work in the eye's camera space: eye at the origin, viewer orientation.
	toCam := mathutil.Transform{Position: eye, Rotation: viewer.Rotation}
	ll, lr, ul := screen.Corners()
	va := toCam.InverseTransformPoint(ll)
	vb := toCam.InverseTransformPoint(lr)
	vc := toCam.InverseTransformPoint(ul)

	wr, wu, wn := screen.Basis()
	inv := viewer.Rotation.Conjugate()
	vr, vu, vn := inv.Rotate(wr), inv.Rotate(wu), inv.Rotate(wn)

	d := -va.Dot(vn)
	if d < MinScreenDistance {
		return Frustum{}, fmt.Errorf("posemath: eye %.4f m from screen plane: %w", d, ErrInvalidGeometry)
	}

	n, fr := in.Near, in.Far
	scale := n / d
	l := vr.Dot(va) * scale
	r := vr.Dot(vb) * scale
	b := vu.Dot(va) * scale
	t := vu.Dot(vc) * scale

	frustum := mathutil.FromMGL(mgl64.Frustum(l, r, b, t, n, fr))
	basis := mathutil.FromMat3Translation(mathutil.Mat3Rows(vr, vu, vn), mathutil.Vec3{})
	proj := mathutil.Mat4Mul(frustum, basis)
	if !proj.IsFinite() {
		return Frustum{}, fmt.Errorf("posemath: non-finite projection: %w", ErrInvalidGeometry)
	}

	return Frustum{
		Projection: proj,
		Left:       l,
		Right:      r,
		Bottom:     b,
		Top:        t,
		Near:       n,
		Far:        fr,
		Eye:        eye,
		Distance:   d,
	}, nil
}

// SymmetricPerspective is the shared projection used by the toed-in strategy.
func SymmetricPerspective(in Intrinsics) (mathutil.Mat4, error) {
	if !mathutil.IsFinite(in.FieldOfView) || in.FieldOfView <= 0 || in.FieldOfView >= 180 {
		return mathutil.Mat4{}, fmt.Errorf("posemath: field of view %v: %w", in.FieldOfView, ErrInvalidGeometry)
	}
	if !mathutil.IsFinite(in.Aspect) || in.Aspect <= 0 {
		return mathutil.Mat4{}, fmt.Errorf("posemath: aspect %v: %w", in.Aspect, ErrInvalidGeometry)
	}
	if err := validateClip(in); err != nil {
		return mathutil.Mat4{}, err
	}
	return mathutil.FromMGL(mgl64.Perspective(mathutil.Deg2Rad(in.FieldOfView), in.Aspect, in.Near, in.Far)), nil
}

func validate(viewer mathutil.Transform, screen ScreenGeometry, in Intrinsics) error {
	if !viewer.IsFinite() {
		return fmt.Errorf("posemath: non-finite viewer pose: %w", ErrInvalidGeometry)
	}
	if viewer.Rotation.Len() < 1e-9 {
		return fmt.Errorf("posemath: zero-length viewer rotation: %w", ErrInvalidGeometry)
	}
	if !screen.Center.IsFinite() || !mathutil.IsFinite(screen.TiltDegrees) {
		return fmt.Errorf("posemath: non-finite screen: %w", ErrInvalidGeometry)
	}
	if !(screen.Width > 0) || !(screen.Height > 0) || !mathutil.IsFinite(screen.Width) || !mathutil.IsFinite(screen.Height) {
		return fmt.Errorf("posemath: screen size %vx%v: %w", screen.Width, screen.Height, ErrInvalidGeometry)
	}
	return validateClip(in)
}

func validateClip(in Intrinsics) error {
	if !mathutil.IsFinite(in.Near) || !mathutil.IsFinite(in.Far) || in.Near <= 0 || in.Far <= in.Near {
		return fmt.Errorf("posemath: clip range [%v, %v]: %w", in.Near, in.Far, ErrInvalidGeometry)
	}
	return nil
}
