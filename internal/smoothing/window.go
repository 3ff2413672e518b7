// Package smoothing damps jitter in tracked angle readings.
package smoothing

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// WindowSize is the number of samples averaged by a Window.
const WindowSize = 5

// Window is a fixed-length trailing average. It starts filled with zeros, so
// the mean is biased toward zero until WindowSize distinct samples arrive.
//
// A Window is owned by one goroutine; callers serialize access.
type Window struct {
	samples [WindowSize]float64
	oldest  int
}

// Push records v, evicting the oldest sample, unless v equals the oldest
// sample already held. It reports whether the window changed.
func (w *Window) Push(v float64) bool {
	if v == w.samples[w.oldest] {
		return false
	}
	w.samples[w.oldest] = v
	w.oldest = (w.oldest + 1) % WindowSize
	return true
}

// Mean returns the arithmetic mean of the window.
func (w *Window) Mean() float64 {
	return stat.Mean(w.samples[:], nil)
}

// CircularMean returns the mean of the window read as angles in degrees,
// in (-180, 180]. Samples either side of the 0/360 seam average to the seam
// instead of to its opposite.
func (w *Window) CircularMean() float64 {
	var rad [WindowSize]float64
	for i, v := range w.samples {
		rad[i] = v * math.Pi / 180
	}
	return stat.CircularMean(rad[:], nil) * 180 / math.Pi
}

// Samples returns the window contents from oldest to newest.
func (w *Window) Samples() []float64 {
	out := make([]float64, 0, WindowSize)
	for i := 0; i < WindowSize; i++ {
		out = append(out, w.samples[(w.oldest+i)%WindowSize])
	}
	return out
}

// Reset refills the window with zeros.
func (w *Window) Reset() {
	*w = Window{}
}
