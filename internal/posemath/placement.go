package posemath

import "voxel-station/internal/mathutil"

// TiltMatrix rotates about the screen's horizontal (X) axis. Positive angles
// recline the screen: the top edge moves away from the viewer.
func TiltMatrix(tiltDegrees float64) mathutil.Mat3 {
	return mathutil.RotX(-mathutil.Deg2Rad(tiltDegrees))
}

// ApplyTiltRotation rotates point about the screen's horizontal axis.
func ApplyTiltRotation(point mathutil.Vec3, tiltDegrees float64) mathutil.Vec3 {
	return TiltMatrix(tiltDegrees).MulVec3(point)
}

// ComputeCameraPositionCorrection maps a tracked head offset (metres, display
// coordinates) to the camera's offset from the screen centre. The offset is
// scaled into the virtual screen and tilted with the display so parallax stays
// anchored to the physical panel.
func ComputeCameraPositionCorrection(head mathutil.Vec3, tiltDegrees, viewSize float64) mathutil.Vec3 {
	return ApplyTiltRotation(head.Scale(ClampViewSize(viewSize)), tiltDegrees)
}

// ComputeAnchoredCameraPosition returns the camera position in rig-local
// coordinates for a head offset measured from screenCenter.
func ComputeAnchoredCameraPosition(head mathutil.Vec3, tiltDegrees, viewSize float64, rig mathutil.Transform, screenCenter mathutil.Vec3) mathutil.Vec3 {
	world := screenCenter.Add(ComputeCameraPositionCorrection(head, tiltDegrees, viewSize))
	return rig.InverseTransformPoint(world)
}
