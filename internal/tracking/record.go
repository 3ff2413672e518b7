// Package tracking is the ingestion boundary between the tracker device and
// the render loop. Datagrams are parsed on the network goroutine and
// published as immutable snapshots that the frame loop picks up whole.
package tracking

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"voxel-station/internal/mathutil"
	"voxel-station/internal/triangulate"
)

// ErrMalformedRecord reports a datagram that is neither a key code nor a
// complete tracking record.
var ErrMalformedRecord = errors.New("malformed tracking record")

// RecordFields is the number of fields in a tracking record.
const RecordFields = 14

// Record is one tracker sample in device units.
type Record struct {
	Head           mathutil.Vec3 // millimetres
	StylusRoll     float64       // degrees
	Tip            triangulate.RayPair
	Tail           triangulate.RayPair
	GlassesTracked bool
	TiltSample     float64 // raw screen tilt, degrees
}

// HeadMeters returns the head position converted to metres.
func (r Record) HeadMeters() mathutil.Vec3 {
	return r.Head.Scale(0.001)
}

// KeyCode is a stylus button event, sent by the device as one ASCII byte.
type KeyCode int

const (
	KeyButtonOneDown   KeyCode = 'Q'
	KeyButtonOneUp     KeyCode = 'S'
	KeyButtonTwoDown   KeyCode = 'T'
	KeyButtonTwoUp     KeyCode = 'V'
	KeyButtonThreeDown KeyCode = 'W'
	KeyButtonThreeUp   KeyCode = 'Y'
)

// Button identifies a physical stylus button.
type Button int

const (
	ButtonOne Button = iota + 1
	ButtonTwo
	ButtonThree
)

func (b Button) String() string {
	switch b {
	case ButtonOne:
		return "one"
	case ButtonTwo:
		return "two"
	case ButtonThree:
		return "three"
	}
	return fmt.Sprintf("Button(%d)", int(b))
}

// Event decodes k into the button it refers to and whether it is a press.
func (k KeyCode) Event() (b Button, pressed bool, ok bool) {
	switch k {
	case KeyButtonOneDown:
		return ButtonOne, true, true
	case KeyButtonOneUp:
		return ButtonOne, false, true
	case KeyButtonTwoDown:
		return ButtonTwo, true, true
	case KeyButtonTwoUp:
		return ButtonTwo, false, true
	case KeyButtonThreeDown:
		return ButtonThree, true, true
	case KeyButtonThreeUp:
		return ButtonThree, false, true
	}
	return 0, false, false
}

// DatagramKind tells a record apart from a key event.
type DatagramKind int

const (
	KindRecord DatagramKind = iota
	KindKey
)

// Datagram is a parsed device message.
type Datagram struct {
	Kind   DatagramKind
	Record Record
	Key    KeyCode
}

// ParseDatagram decodes one UDP payload. A payload with a single field is a
// key code; anything else must carry at least RecordFields comma-separated
// numbers. Extra trailing fields are ignored.
func ParseDatagram(b []byte) (Datagram, error) {
	s := strings.TrimRight(string(b), "\x00\r\n\t ")
	if s == "" {
		return Datagram{}, fmt.Errorf("tracking: empty datagram: %w", ErrMalformedRecord)
	}
	fields := strings.Split(s, ",")
	if len(fields) == 1 {
		if len(fields[0]) != 1 {
			return Datagram{}, fmt.Errorf("tracking: key code %q: %w", fields[0], ErrMalformedRecord)
		}
		return Datagram{Kind: KindKey, Key: KeyCode(fields[0][0])}, nil
	}
	rec, err := ParseRecord(fields)
	if err != nil {
		return Datagram{}, err
	}
	return Datagram{Kind: KindRecord, Record: rec}, nil
}

// ParseRecord decodes the fixed-order tracking fields.
func ParseRecord(fields []string) (Record, error) {
	if len(fields) < RecordFields {
		return Record{}, fmt.Errorf("tracking: %d fields, want %d: %w", len(fields), RecordFields, ErrMalformedRecord)
	}
	var v [RecordFields]float64
	for i := 0; i < RecordFields; i++ {
		f, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return Record{}, fmt.Errorf("tracking: field %d: %v: %w", i, err, ErrMalformedRecord)
		}
		v[i] = f
	}
	return Record{
		Head:           mathutil.Vec3{v[0], v[1], v[2]},
		StylusRoll:     v[3],
		Tip:            triangulate.RayPair{v[4], v[5], v[6], v[7]},
		Tail:           triangulate.RayPair{v[8], v[9], v[10], v[11]},
		GlassesTracked: v[12] != 0,
		TiltSample:     v[13],
	}, nil
}

// Format renders r in the device wire format.
func (r Record) Format() string {
	glasses := 0
	if r.GlassesTracked {
		glasses = 1
	}
	vals := []float64{
		r.Head[0], r.Head[1], r.Head[2], r.StylusRoll,
		r.Tip[0], r.Tip[1], r.Tip[2], r.Tip[3],
		r.Tail[0], r.Tail[1], r.Tail[2], r.Tail[3],
		float64(glasses), r.TiltSample,
	}
	parts := make([]string, len(vals))
	for i, f := range vals {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
