package rig

import "voxel-station/internal/mathutil"

// AutoEye adapts the eye parameters to what the viewer is looking at.
type AutoEye struct {
	// Parallax eases the parallax distance toward a value interpolated from
	// the range to the nearest target; no hit counts as MaxRange.
	Parallax      bool
	MinRange      float64
	MaxRange      float64
	MinParallax   float64
	MaxParallax   float64
	ParallaxSpeed float64 // fraction per second
	// EyeDistance pins the interaxial distance to FixedEyeDistance.
	EyeDistance      bool
	FixedEyeDistance float64
}

// DefaultAutoEye returns the station defaults with both adaptations off.
func DefaultAutoEye() AutoEye {
	return AutoEye{
		MinRange:         0.25,
		MaxRange:         0.75,
		MinParallax:      1.0,
		MaxParallax:      3.0,
		ParallaxSpeed:    2.0,
		FixedEyeDistance: 0.09,
	}
}

// Apply returns the adjusted interaxial and parallax. Results are not
// clamped; the controller clamps them.
func (a AutoEye) Apply(interaxial, parallax float64, in FrameInput) (float64, float64) {
	if a.EyeDistance {
		interaxial = a.FixedEyeDistance
	}
	if a.Parallax {
		ratio := 1.0
		if in.TargetHit {
			ratio = mathutil.InverseLerp(a.MinRange, a.MaxRange, in.RangeToTarget)
		}
		want := mathutil.Lerp(a.MinParallax, a.MaxParallax, ratio)
		parallax = mathutil.Lerp(parallax, want, a.ParallaxSpeed*in.DeltaTime)
	}
	return interaxial, parallax
}
