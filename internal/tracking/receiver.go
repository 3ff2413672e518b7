package tracking

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"voxel-station/internal/mathutil"
	"voxel-station/internal/smoothing"
)

// Snapshot is an immutable view of the latest tracking record together with
// the smoothed angles derived from it.
type Snapshot struct {
	Record
	Tilt     float64 // smoothed screen tilt, degrees
	Roll     float64 // smoothed stylus roll, degrees in (-180, 180]
	Seq      uint64  // increments once per accepted record
	Received time.Time
}

// Stats counts datagrams seen by a Receiver.
type Stats struct {
	Records   uint64
	Keys      uint64
	Malformed uint64
}

// Receiver turns datagrams into snapshots and queued key events. Handle is
// called from the network goroutine; Snapshot and DrainKeys from the frame
// loop.
type Receiver struct {
	mu     sync.Mutex // guards tilt, roll, seq, keys, warned
	tilt   smoothing.Window
	roll   smoothing.Window
	seq    uint64
	keys   []KeyCode
	warned bool

	snap atomic.Pointer[Snapshot]

	records   atomic.Uint64
	keyEvents atomic.Uint64
	malformed atomic.Uint64

	now func() time.Time
}

func NewReceiver() *Receiver {
	return &Receiver{now: time.Now}
}

// Handle parses one datagram. Malformed input is counted, logged once per
// streak and returned.
func (r *Receiver) Handle(b []byte) error {
	d, err := ParseDatagram(b)
	if err != nil {
		r.malformed.Add(1)
		r.mu.Lock()
		if !r.warned {
			log.Printf("tracking: dropping datagram: %v", err)
			r.warned = true
		}
		r.mu.Unlock()
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.warned = false

	if d.Kind == KindKey {
		r.keys = append(r.keys, d.Key)
		r.keyEvents.Add(1)
		return nil
	}

	// Non-finite angles are left out of the windows so one bad sample
	// cannot poison the next WindowSize readings.
	if mathutil.IsFinite(d.Record.TiltSample) {
		r.tilt.Push(d.Record.TiltSample)
	}
	if mathutil.IsFinite(d.Record.StylusRoll) {
		r.roll.Push(d.Record.StylusRoll)
	}
	r.seq++
	r.snap.Store(&Snapshot{
		Record:   d.Record,
		Tilt:     r.tilt.Mean(),
		Roll:     r.roll.CircularMean(),
		Seq:      r.seq,
		Received: r.now(),
	})
	r.records.Add(1)
	return nil
}

// Snapshot returns the latest snapshot. ok is false until the first record.
func (r *Receiver) Snapshot() (Snapshot, bool) {
	s := r.snap.Load()
	if s == nil {
		return Snapshot{}, false
	}
	return *s, true
}

// DrainKeys returns and clears the queued key events in arrival order.
func (r *Receiver) DrainKeys() []KeyCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := r.keys
	r.keys = nil
	return keys
}

func (r *Receiver) Stats() Stats {
	return Stats{
		Records:   r.records.Load(),
		Keys:      r.keyEvents.Load(),
		Malformed: r.malformed.Load(),
	}
}
