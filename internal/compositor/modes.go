package compositor

import (
	"fmt"
	"strings"
)

// StereoMode selects how the two eye views reach the display.
type StereoMode int

const (
	Anaglyph StereoMode = iota
	SideBySide
	OverUnder
	Interlace
	Checkerboard
	ActiveStereo
)

var stereoModeNames = [...]string{"anaglyph", "side_by_side", "over_under", "interlace", "checkerboard", "active_stereo"}

func (m StereoMode) String() string {
	if m >= 0 && int(m) < len(stereoModeNames) {
		return stereoModeNames[m]
	}
	return fmt.Sprintf("StereoMode(%d)", int(m))
}

func ParseStereoMode(s string) (StereoMode, error) {
	for i, n := range stereoModeNames {
		if strings.EqualFold(s, n) {
			return StereoMode(i), nil
		}
	}
	return 0, fmt.Errorf("compositor: unknown stereo mode %q", s)
}

// CameraMode assigns eye positions and frusta to the two eye cameras.
type CameraMode int

const (
	LeftRight CameraMode = iota
	LeftOnly
	RightOnly
	RightLeft
)

var cameraModeNames = [...]string{"left_right", "left_only", "right_only", "right_left"}

func (m CameraMode) String() string {
	if m >= 0 && int(m) < len(cameraModeNames) {
		return cameraModeNames[m]
	}
	return fmt.Sprintf("CameraMode(%d)", int(m))
}

func ParseCameraMode(s string) (CameraMode, error) {
	if s == "" {
		return LeftRight, nil
	}
	for i, n := range cameraModeNames {
		if strings.EqualFold(s, n) {
			return CameraMode(i), nil
		}
	}
	return 0, fmt.Errorf("compositor: unknown camera mode %q", s)
}

// Convergence is the eye-axis strategy.
type Convergence int

const (
	// Parallel keeps both eyes aligned with the rig and skews each frustum
	// onto the screen.
	Parallel Convergence = iota
	// ToedIn rotates each eye toward a point parallaxDistance ahead and shares
	// one symmetric projection. It introduces vertical parallax.
	ToedIn
)

func (c Convergence) String() string {
	switch c {
	case Parallel:
		return "parallel"
	case ToedIn:
		return "toed_in"
	}
	return fmt.Sprintf("Convergence(%d)", int(c))
}

func ParseConvergence(s string) (Convergence, error) {
	switch strings.ToLower(s) {
	case "parallel", "":
		return Parallel, nil
	case "toed_in":
		return ToedIn, nil
	}
	return 0, fmt.Errorf("compositor: unknown convergence %q", s)
}

// SideBySideMode decides how a full eye view fits half of the output in the
// SideBySide and OverUnder modes.
type SideBySideMode int

const (
	Squeezed   SideBySideMode = iota // scaled down to half
	Unsqueezed                       // centre half cropped at full scale
)

func (m SideBySideMode) String() string {
	switch m {
	case Squeezed:
		return "squeezed"
	case Unsqueezed:
		return "unsqueezed"
	}
	return fmt.Sprintf("SideBySideMode(%d)", int(m))
}

func ParseSideBySideMode(s string) (SideBySideMode, error) {
	switch strings.ToLower(s) {
	case "squeezed", "":
		return Squeezed, nil
	case "unsqueezed":
		return Unsqueezed, nil
	}
	return 0, fmt.Errorf("compositor: unknown side-by-side mode %q", s)
}

// SyncEvent is the code sent to the display driver after a present.
type SyncEvent int

const (
	SyncSideBySide SyncEvent = 0
	SyncLeftEye    SyncEvent = 1
	SyncRightEye   SyncEvent = 2
)

func (e SyncEvent) String() string {
	switch e {
	case SyncSideBySide:
		return "side_by_side"
	case SyncLeftEye:
		return "left_eye"
	case SyncRightEye:
		return "right_eye"
	}
	return fmt.Sprintf("SyncEvent(%d)", int(e))
}
