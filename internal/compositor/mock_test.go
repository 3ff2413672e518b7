package compositor

import (
	"errors"
	"image/color"

	"voxel-station/internal/mathutil"
	"voxel-station/internal/raster"
)

// MockCamera fills its target with a solid colour and records calls.
type MockCamera struct {
	Name string
	Fill color.NRGBA
	Err  error
	Log  *[]string

	Enabled bool
	target  *raster.FrameBuffer
	pos     mathutil.Vec3
	Renders int
	Resets  int
}

func (m *MockCamera) Render() error {
	if m.Log != nil {
		*m.Log = append(*m.Log, m.Name)
	}
	if m.Err != nil {
		return m.Err
	}
	if m.target == nil {
		return raster.ErrNoTarget
	}
	m.Renders++
	m.target.Clear(m.Fill)
	return nil
}

func (m *MockCamera) SetEnabled(on bool)               { m.Enabled = on }
func (m *MockCamera) SetTarget(t *raster.FrameBuffer)  { m.target = t }
func (m *MockCamera) LocalPosition() mathutil.Vec3     { return m.pos }
func (m *MockCamera) SetLocalPosition(p mathutil.Vec3) { m.pos = p }
func (m *MockCamera) ResetProjection()                 { m.Resets++ }

// MockSync records sync events and the colour of the first pixel presented.
type MockSync struct {
	Events []SyncEvent
	Pixels []color.NRGBA
}

func (m *MockSync) Sync(ev SyncEvent, frame *raster.FrameBuffer) {
	m.Events = append(m.Events, ev)
	m.Pixels = append(m.Pixels, frame.At(0, 0))
}

var errCameraLost = errors.New("camera lost")

var (
	red   = color.NRGBA{255, 0, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
	green = color.NRGBA{0, 255, 0, 255}
)
