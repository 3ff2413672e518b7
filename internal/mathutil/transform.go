package mathutil

// Transform is a rigid pose: local point p maps to Position + Rotation·p.
type Transform struct {
	Position Vec3
	Rotation Quat
}

func IdentityTransform() Transform {
	return Transform{Rotation: QuatIdentity()}
}

func (t Transform) Right() Vec3   { return t.Rotation.Rotate(Right) }
func (t Transform) Up() Vec3      { return t.Rotation.Rotate(Up) }
func (t Transform) Forward() Vec3 { return t.Rotation.Rotate(Forward) }

func (t Transform) TransformPoint(p Vec3) Vec3 {
	return t.Position.Add(t.Rotation.Rotate(p))
}

func (t Transform) TransformDirection(d Vec3) Vec3 {
	return t.Rotation.Rotate(d)
}

func (t Transform) InverseTransformPoint(p Vec3) Vec3 {
	return t.Rotation.Conjugate().Rotate(p.Sub(t.Position))
}

// Compose returns the world transform of a child whose local pose is child.
func (t Transform) Compose(child Transform) Transform {
	return Transform{
		Position: t.TransformPoint(child.Position),
		Rotation: t.Rotation.Mul(child.Rotation).Normalize(),
	}
}

// ViewMatrix returns the world→local matrix for a camera placed at t.
func (t Transform) ViewMatrix() Mat4 {
	inv := QuatToMat3(t.Rotation.Normalize()).Transpose()
	return FromMat3Translation(inv, inv.MulVec3(t.Position).Neg())
}

func (t Transform) IsFinite() bool {
	return t.Position.IsFinite() && t.Rotation.IsFinite()
}
