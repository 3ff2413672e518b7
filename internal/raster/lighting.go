package raster

import (
	"image/color"
	"math"

	"voxel-station/internal/mathutil"
)

// LightConfig holds precomputed flat-shading parameters.
type LightConfig struct {
	LightDir mathutil.Vec3
	RimDir   mathutil.Vec3
	HalfMain mathutil.Vec3 // half-vector for Blinn-Phong
	Ambient  float64
	Hemi     float64
	Direct   float64
	Rim      float64
	SpecInt  float64
	SpecPow  float64
	Exposure float64
	InvGamma float64
}

// DefaultLightConfig is a key light above and right of the viewer with a
// cool rim from behind the screen.
func DefaultLightConfig() LightConfig {
	lightDir := mathutil.Vec3{0.4, 0.7, 0.6}.Normalize()
	rimDir := mathutil.Vec3{-0.5, 0.3, -0.8}.Normalize()
	viewDir := mathutil.Vec3{0, 0, -1}

	return LightConfig{
		LightDir: lightDir,
		RimDir:   rimDir,
		HalfMain: lightDir.Sub(viewDir).Normalize(),
		Ambient:  0.35,
		Hemi:     0.30,
		Direct:   0.90,
		Rim:      0.30,
		SpecInt:  0.25,
		SpecPow:  12.0,
		Exposure: 1.0,
		InvGamma: 1.0 / 2.2,
	}
}

// ComputeShade returns the combined lighting scalar for a face normal.
func (lc *LightConfig) ComputeShade(normal mathutil.Vec3) float64 {
	// Lambertian (abs for double-sided)
	ndlMain := math.Abs(normal.Dot(lc.LightDir))
	ndlRim := math.Abs(normal.Dot(lc.RimDir))

	// Hemisphere fill
	hemi := (1.0-math.Abs(normal[1]))*0.5 + 0.5
	hemiLight := hemi * lc.Hemi

	// Blinn-Phong specular
	ndh := normal.Dot(lc.HalfMain)
	if ndh < 0 {
		ndh = 0
	}
	spec := math.Pow(ndh, lc.SpecPow) * lc.SpecInt

	return lc.Ambient + hemiLight + ndlMain*lc.Direct + ndlRim*lc.Rim + spec
}

// Shade applies a lighting scalar to an sRGB color: decode to linear, scale,
// ACES tone map, re-encode.
func (lc *LightConfig) Shade(c color.NRGBA, shade float64) color.NRGBA {
	k := shade * lc.Exposure
	enc := func(v uint8) uint8 {
		return clamp255(math.Pow(ACESTonemap(srgbToLinear[v]*k), lc.InvGamma) * 255)
	}
	return color.NRGBA{enc(c.R), enc(c.G), enc(c.B), c.A}
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
