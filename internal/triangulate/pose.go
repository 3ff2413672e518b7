package triangulate

import "voxel-station/internal/mathutil"

// Pose is the stylus position and orientation in world space.
type Pose struct {
	Position  mathutil.Vec3
	Direction mathutil.Vec3 // unit, tail to tip
	Rotation  mathutil.Quat
}

// DefaultPose points straight into the screen from the origin.
func DefaultPose() Pose {
	return Pose{Direction: mathutil.Forward, Rotation: mathutil.QuatIdentity()}
}

// Transform returns the pose as a rigid transform.
func (p Pose) Transform() mathutil.Transform {
	return mathutil.Transform{Position: p.Position, Rotation: p.Rotation}
}

// DerivePose builds a pose at tip aimed away from tail and rolled by
// rollDegrees about the aim direction.
func DerivePose(tip, tail mathutil.Vec3, rollDegrees float64) Pose {
	dir := tip.Sub(tail).Normalize()
	aim := mathutil.FromToRotation(mathutil.Forward, dir)
	roll := mathutil.AngleAxis(-mathutil.Deg2Rad(rollDegrees), dir)
	return Pose{
		Position:  tip,
		Direction: dir,
		Rotation:  roll.Mul(aim).Normalize(),
	}
}

// Tracker keeps the last valid stylus pose across frames.
type Tracker struct {
	pose  Pose
	roll  float64
	valid bool
}

func NewTracker() *Tracker {
	return &Tracker{pose: DefaultPose()}
}

// Update triangulates the markers and, when both intersect, replaces the
// stored pose. A non-finite roll reuses the last finite one. It reports
// whether the pose changed.
func (t *Tracker) Update(tip, tail RayPair, cam1, cam2 mathutil.Transform, rollDegrees float64) bool {
	near, far, found := Triangulate(tip, tail, cam1, cam2)
	if !found {
		return false
	}
	if !mathutil.IsFinite(rollDegrees) {
		rollDegrees = t.roll
	}
	t.pose = DerivePose(near, far, rollDegrees)
	t.roll = rollDegrees
	t.valid = true
	return true
}

// Pose returns the last valid pose and whether one has been seen yet.
func (t *Tracker) Pose() (Pose, bool) {
	return t.pose, t.valid
}
