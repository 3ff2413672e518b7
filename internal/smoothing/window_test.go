package smoothing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstantInputConverges(t *testing.T) {
	var w Window
	for i := 0; i < WindowSize; i++ {
		w.Push(30)
	}
	assert.Equal(t, 30.0, w.Mean())
	assert.Equal(t, []float64{30, 30, 30, 30, 30}, w.Samples())
}

func TestOutlierMovesMeanByOneFifth(t *testing.T) {
	var w Window
	for i := 0; i < WindowSize; i++ {
		w.Push(30)
	}
	before := w.Mean()
	w.Push(80)
	assert.InDelta(t, (80.0-30.0)/WindowSize, w.Mean()-before, 1e-12)
}

func TestWarmUpBiasTowardZero(t *testing.T) {
	var w Window
	assert.True(t, w.Push(20))
	assert.InDelta(t, 4.0, w.Mean(), 1e-12)
	assert.Equal(t, []float64{0, 0, 0, 0, 20}, w.Samples())
}

func TestPushSkipsValueEqualToOldest(t *testing.T) {
	var w Window
	// The oldest sample is the zero prefill.
	assert.False(t, w.Push(0))
	assert.Equal(t, 0.0, w.Mean())

	w.Push(10)
	w.Push(10)
	assert.Equal(t, []float64{0, 0, 0, 10, 10}, w.Samples())

	w.Reset()
	assert.Equal(t, make([]float64, WindowSize), w.Samples())
}

func TestCircularMeanAcrossSeam(t *testing.T) {
	var w Window
	w.Push(359)
	w.Push(1)
	assert.InDelta(t, 72.0, w.Mean(), 1e-12)
	assert.InDelta(t, 0.0, w.CircularMean(), 1e-9)

	for i := 0; i < WindowSize; i++ {
		w.Push(90)
	}
	assert.InDelta(t, 90.0, w.CircularMean(), 1e-9)

	w.Reset()
	for _, v := range []float64{170, 190, 170, 190, 180} {
		w.Push(v)
	}
	assert.InDelta(t, 180.0, math.Abs(w.CircularMean()), 1e-9)
}
