// Package triangulate recovers the stylus pose from the rays the two tracking
// cameras see through its markers.
package triangulate

import (
	"math"

	"voxel-station/internal/mathutil"
)

// MinRayAngle is the smallest angle (radians) between two rays that is still
// triangulated. Closer to parallel than this counts as no intersection.
const MinRayAngle = 1e-3

// Ray is a half-line in world space. Direction need not be normalized.
type Ray struct {
	Origin    mathutil.Vec3
	Direction mathutil.Vec3
}

// At returns Origin + t·Direction.
func (r Ray) At(t float64) mathutil.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// RayPair is one stylus marker as reported by the tracker: normalized image
// coordinates (u1, v1) in the first camera followed by (u2, v2) in the second.
type RayPair [4]float64

// Cam1 returns the image coordinates in the first camera.
func (p RayPair) Cam1() (u, v float64) { return p[0], p[1] }

// Cam2 returns the image coordinates in the second camera.
func (p RayPair) Cam2() (u, v float64) { return p[2], p[3] }

// IsFinite reports whether every component is a finite number.
func (p RayPair) IsFinite() bool {
	for _, f := range p {
		if !mathutil.IsFinite(f) {
			return false
		}
	}
	return true
}

// CameraRay returns the world-space ray through image point (u, v) of a
// pinhole camera at cam with unit focal length. The camera looks down -Z.
func CameraRay(cam mathutil.Transform, u, v float64) Ray {
	return Ray{
		Origin:    cam.Position,
		Direction: cam.TransformDirection(mathutil.Vec3{u, v, -1}),
	}
}

// ClosestPoints returns the points on a and b (treated as infinite lines) that
// are closest to each other. ok is false when the lines are within MinRayAngle
// of parallel or either direction is degenerate.
func ClosestPoints(a, b Ray) (pa, pb mathutil.Vec3, ok bool) {
	u, v := a.Direction, b.Direction
	uu, vv := u.Dot(u), v.Dot(v)
	if uu < 1e-18 || vv < 1e-18 {
		return pa, pb, false
	}
	sin := u.Cross(v).Len() / math.Sqrt(uu*vv)
	if sin < math.Sin(MinRayAngle) {
		return pa, pb, false
	}

	w := a.Origin.Sub(b.Origin)
	uv := u.Dot(v)
	uw, vw := u.Dot(w), v.Dot(w)
	den := uu*vv - uv*uv
	s := (uv*vw - vv*uw) / den
	t := (uu*vw - uv*uw) / den
	pa, pb = a.At(s), b.At(t)
	if !pa.IsFinite() || !pb.IsFinite() {
		return mathutil.Vec3{}, mathutil.Vec3{}, false
	}
	return pa, pb, true
}

// Intersect returns the midpoint of the closest approach between a and b.
func Intersect(a, b Ray) (mathutil.Vec3, bool) {
	pa, pb, ok := ClosestPoints(a, b)
	if !ok {
		return mathutil.Vec3{}, false
	}
	return pa.Add(pb).Scale(0.5), true
}

// Point triangulates a single marker seen by both cameras.
func Point(p RayPair, cam1, cam2 mathutil.Transform) (mathutil.Vec3, bool) {
	if !p.IsFinite() {
		return mathutil.Vec3{}, false
	}
	u1, v1 := p.Cam1()
	u2, v2 := p.Cam2()
	return Intersect(CameraRay(cam1, u1, v1), CameraRay(cam2, u2, v2))
}

// Triangulate locates the stylus tip (near) and tail (far) markers. found is
// false when either marker's rays do not intersect; callers keep their last
// valid pose in that case.
func Triangulate(tip, tail RayPair, cam1, cam2 mathutil.Transform) (near, far mathutil.Vec3, found bool) {
	near, ok := Point(tip, cam1, cam2)
	if !ok {
		return mathutil.Vec3{}, mathutil.Vec3{}, false
	}
	far, ok = Point(tail, cam1, cam2)
	if !ok {
		return mathutil.Vec3{}, mathutil.Vec3{}, false
	}
	if near.Sub(far).Len() < 1e-9 {
		return mathutil.Vec3{}, mathutil.Vec3{}, false
	}
	return near, far, true
}
