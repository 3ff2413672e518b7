package tracking

import "fmt"

// StylusFeature selects a stylus LED colour or the vibration motor.
type StylusFeature int

const (
	ColorRed StylusFeature = iota
	ColorGreen
	ColorBlue
	Vibration
)

func (f StylusFeature) String() string {
	switch f {
	case ColorRed:
		return "red"
	case ColorGreen:
		return "green"
	case ColorBlue:
		return "blue"
	case Vibration:
		return "vibration"
	}
	return fmt.Sprintf("StylusFeature(%d)", int(f))
}

// FeatureCommand formats a feature request. The code and the duration are
// concatenated without a separator, as the device expects.
func FeatureCommand(f StylusFeature, durationMs int) string {
	return fmt.Sprintf("light_vibration,%d%d", int(f), durationMs)
}

// Commander sends text commands to the device.
type Commander interface {
	Send(cmd string) error
}

// SendFeature triggers f for durationMs on the stylus.
func SendFeature(c Commander, f StylusFeature, durationMs int) error {
	if c == nil {
		return nil
	}
	return c.Send(FeatureCommand(f, durationMs))
}
