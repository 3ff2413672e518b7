// Package compositor renders the two eye views into off-screen targets and
// combines them into one output frame for the active stereo mode.
package compositor

// Eye names one of the two views.
type Eye int

const (
	LeftEye Eye = iota
	RightEye
)

func (e Eye) String() string {
	if e == RightEye {
		return "right"
	}
	return "left"
}

// EyePlan says where an eye camera sits and which frustum it receives.
type EyePlan struct {
	// Offset is the position along the rig's right axis in units of half the
	// interaxial distance: -1 is the left eye position, +1 the right.
	Offset float64
	// Frustum is the eye whose off-axis frustum the camera uses.
	Frustum  Eye
	Strategy Convergence
}

// FrameState is the per-frame input that shapes the render plan.
type FrameState struct {
	Background bool
	UICameras  int
	SideBySide SideBySideMode
}

// StepKind enumerates render plan steps.
type StepKind int

const (
	StepClear     StepKind = iota // clear an eye target
	StepRender                    // render a camera into an eye target
	StepComposite                 // combine eye targets into the output
	StepPresent                   // copy one eye target to the output
	StepSync                      // issue a display sync event
)

// Source names the camera rendered by a StepRender.
type Source int

const (
	SourceBackground Source = iota
	SourceEye
	SourceUI
)

// Pass is a composite operation.
type Pass int

const (
	PassAnaglyph   Pass = iota // both eyes through the material colour filters
	PassPlace                  // one eye into a region of the output
	PassInterleave             // alternate rows or cells from each eye
)

// Region is the part of the output a PassPlace writes.
type Region int

const (
	RegionFull Region = iota
	RegionLeftHalf
	RegionRightHalf
	RegionTopHalf
	RegionBottomHalf
)

// Pattern selects the PassInterleave layout.
type Pattern int

const (
	PatternRows Pattern = iota
	PatternChecker
)

// Step is one operation of a render plan. Fields irrelevant to Kind are zero.
type Step struct {
	Kind    StepKind
	Eye     Eye
	Source  Source
	Index   int // UI camera index for SourceUI
	Pass    Pass
	Region  Region
	Fit     SideBySideMode
	Pattern Pattern
	Event   SyncEvent
}

// RenderPlan is everything a frame does, in order.
type RenderPlan struct {
	Eyes  [2]EyePlan // indexed by the camera (LeftEye is the left camera)
	Steps []Step
}

// Plan maps the stereo configuration to a render plan.
func Plan(mode StereoMode, camMode CameraMode, conv Convergence, fs FrameState) RenderPlan {
	p := RenderPlan{Eyes: eyePlans(camMode, conv)}

	if mode == ActiveStereo {
		for _, e := range [...]Eye{LeftEye, RightEye} {
			p.Steps = append(p.Steps, renderEye(e, fs)...)
			p.Steps = append(p.Steps, Step{Kind: StepPresent, Eye: e})
			ev := SyncLeftEye
			if e == RightEye {
				ev = SyncRightEye
			}
			p.Steps = append(p.Steps, Step{Kind: StepSync, Event: ev})
		}
		return p
	}

	p.Steps = append(p.Steps, renderEye(LeftEye, fs)...)
	p.Steps = append(p.Steps, renderEye(RightEye, fs)...)

	switch mode {
	case Anaglyph:
		p.Steps = append(p.Steps, Step{Kind: StepComposite, Pass: PassAnaglyph})
	case SideBySide:
		p.Steps = append(p.Steps,
			Step{Kind: StepComposite, Pass: PassPlace, Eye: LeftEye, Region: RegionLeftHalf, Fit: fs.SideBySide},
			Step{Kind: StepComposite, Pass: PassPlace, Eye: RightEye, Region: RegionRightHalf, Fit: fs.SideBySide},
			Step{Kind: StepSync, Event: SyncSideBySide},
		)
	case OverUnder:
		p.Steps = append(p.Steps,
			Step{Kind: StepComposite, Pass: PassPlace, Eye: LeftEye, Region: RegionTopHalf, Fit: fs.SideBySide},
			Step{Kind: StepComposite, Pass: PassPlace, Eye: RightEye, Region: RegionBottomHalf, Fit: fs.SideBySide},
		)
	case Interlace:
		p.Steps = append(p.Steps, Step{Kind: StepComposite, Pass: PassInterleave, Pattern: PatternRows})
	case Checkerboard:
		p.Steps = append(p.Steps, Step{Kind: StepComposite, Pass: PassInterleave, Pattern: PatternChecker})
	}
	return p
}

func renderEye(e Eye, fs FrameState) []Step {
	steps := []Step{{Kind: StepClear, Eye: e}}
	if fs.Background {
		steps = append(steps, Step{Kind: StepRender, Eye: e, Source: SourceBackground})
	}
	steps = append(steps, Step{Kind: StepRender, Eye: e, Source: SourceEye})
	for i := 0; i < fs.UICameras; i++ {
		steps = append(steps, Step{Kind: StepRender, Eye: e, Source: SourceUI, Index: i})
	}
	return steps
}

func eyePlans(m CameraMode, conv Convergence) [2]EyePlan {
	left := EyePlan{Offset: -1, Frustum: LeftEye, Strategy: conv}
	right := EyePlan{Offset: 1, Frustum: RightEye, Strategy: conv}
	switch m {
	case LeftOnly:
		return [2]EyePlan{left, left}
	case RightOnly:
		return [2]EyePlan{right, right}
	case RightLeft:
		return [2]EyePlan{right, left}
	}
	return [2]EyePlan{left, right}
}
