package capture

import (
	"sync/atomic"

	"voxel-station/internal/compositor"
	"voxel-station/internal/raster"
)

// Sink forwards presented frames to a Writer. As a compositor.SyncSink it
// captures each eye of an active-stereo frame and the side-by-side
// composite under the sync event's name.
type Sink struct {
	w     *Writer
	every uint64
	seq   atomic.Uint64
}

// NewSink captures every n-th frame; n <= 1 captures all of them.
func NewSink(w *Writer, n int) *Sink {
	if n < 1 {
		n = 1
	}
	return &Sink{w: w, every: uint64(n)}
}

// Begin marks the start of frame seq.
func (s *Sink) Begin(seq uint64) { s.seq.Store(seq) }

func (s *Sink) want() bool { return s.seq.Load()%s.every == 0 }

// Sync implements compositor.SyncSink.
func (s *Sink) Sync(ev compositor.SyncEvent, frame *raster.FrameBuffer) {
	if s.want() {
		s.w.Submit(Frame{Seq: s.seq.Load(), Kind: ev.String(), Image: frame.Image()})
	}
}

// Present captures a finished output frame that produced no sync event.
func (s *Sink) Present(kind string, frame *raster.FrameBuffer) {
	if s.want() {
		s.w.Submit(Frame{Seq: s.seq.Load(), Kind: kind, Image: frame.Image()})
	}
}
