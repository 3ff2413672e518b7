package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quat represents a quaternion (x, y, z, w).
type Quat [4]float64

func QuatIdentity() Quat {
	return Quat{0, 0, 0, 1}
}

// EulerToQuat converts Euler XYZ (radians) to a quaternion.
func EulerToQuat(rx, ry, rz float64) Quat {
	cx, sx := math.Cos(rx*0.5), math.Sin(rx*0.5)
	cy, sy := math.Cos(ry*0.5), math.Sin(ry*0.5)
	cz, sz := math.Cos(rz*0.5), math.Sin(rz*0.5)

	return Quat{
		sx*cy*cz - cx*sy*sz, // x
		cx*sy*cz + sx*cy*sz, // y
		cx*cy*sz - sx*sy*cz, // z
		cx*cy*cz + sx*sy*sz, // w
	}
}

// QuatToMat3 converts a quaternion to a 3×3 rotation matrix.
func QuatToMat3(q Quat) Mat3 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return Mat3{
		1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy),
		2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx),
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy),
	}
}

// Mat3ToQuat converts an orthonormal rotation matrix to a unit quaternion.
func Mat3ToQuat(m Mat3) Quat {
	tr := m[0] + m[4] + m[8]
	var q Quat
	switch {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2
		q = Quat{(m[7] - m[5]) / s, (m[2] - m[6]) / s, (m[3] - m[1]) / s, 0.25 * s}
	case m[0] > m[4] && m[0] > m[8]:
		s := math.Sqrt(1+m[0]-m[4]-m[8]) * 2
		q = Quat{0.25 * s, (m[1] + m[3]) / s, (m[2] + m[6]) / s, (m[7] - m[5]) / s}
	case m[4] > m[8]:
		s := math.Sqrt(1+m[4]-m[0]-m[8]) * 2
		q = Quat{(m[1] + m[3]) / s, 0.25 * s, (m[5] + m[7]) / s, (m[2] - m[6]) / s}
	default:
		s := math.Sqrt(1+m[8]-m[0]-m[4]) * 2
		q = Quat{(m[2] + m[6]) / s, (m[5] + m[7]) / s, 0.25 * s, (m[3] - m[1]) / s}
	}
	return q.Normalize()
}

func (q Quat) toMGL() mgl64.Quat {
	return mgl64.Quat{W: q[3], V: mgl64.Vec3{q[0], q[1], q[2]}}
}

func quatFromMGL(q mgl64.Quat) Quat {
	return Quat{q.V[0], q.V[1], q.V[2], q.W}
}

// AngleAxis returns a rotation of angle radians about axis.
func AngleAxis(angle float64, axis Vec3) Quat {
	a := axis.Normalize()
	return quatFromMGL(mgl64.QuatRotate(angle, mgl64.Vec3{a[0], a[1], a[2]}))
}

// FromToRotation returns the shortest rotation taking direction from onto to.
func FromToRotation(from, to Vec3) Quat {
	return quatFromMGL(mgl64.QuatBetweenVectors(
		mgl64.Vec3{from[0], from[1], from[2]},
		mgl64.Vec3{to[0], to[1], to[2]},
	))
}

// LookRotation returns the rotation whose Forward axis points along forward
// with Up as close to up as possible. Falls back to FromToRotation when
// forward and up are parallel.
func LookRotation(forward, up Vec3) Quat {
	f := forward.Normalize()
	if f == (Vec3{}) {
		return QuatIdentity()
	}
	r := f.Cross(up).Normalize()
	if r == (Vec3{}) {
		return FromToRotation(Forward, f)
	}
	u := r.Cross(f)
	// Columns are the images of the local Right, Up and back (+Z) axes.
	return Mat3ToQuat(Mat3Cols(r, u, f.Neg()))
}

// Mul returns q × p (apply p first, then q).
func (q Quat) Mul(p Quat) Quat {
	return quatFromMGL(q.toMGL().Mul(p.toMGL()))
}

func (q Quat) Conjugate() Quat {
	return Quat{-q[0], -q[1], -q[2], q[3]}
}

func (q Quat) Len() float64 {
	return math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
}

// Normalize returns the unit quaternion, or identity when q is degenerate.
func (q Quat) Normalize() Quat {
	l := q.Len()
	if l < 1e-12 {
		return QuatIdentity()
	}
	return Quat{q[0] / l, q[1] / l, q[2] / l, q[3] / l}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	return QuatToMat3(q).MulVec3(v)
}

func (q Quat) IsFinite() bool {
	return IsFinite(q[0]) && IsFinite(q[1]) && IsFinite(q[2]) && IsFinite(q[3])
}
