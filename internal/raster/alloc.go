package raster

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var (
	ErrInvalidSize = errors.New("invalid render target size")
	ErrExhausted   = errors.New("render target budget exhausted")
)

// Allocator hands out render targets. Every Acquire is paired with a Release.
type Allocator interface {
	Acquire(w, h int) (*FrameBuffer, error)
	Release(fb *FrameBuffer)
}

// HeapAllocator allocates targets on the Go heap and counts live ones.
type HeapAllocator struct {
	// Limit caps the number of live targets; zero means unlimited.
	Limit int64

	live     atomic.Int64
	acquired atomic.Int64
}

func (a *HeapAllocator) Acquire(w, h int) (*FrameBuffer, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("raster: acquire %dx%d: %w", w, h, ErrInvalidSize)
	}
	if n := a.live.Add(1); a.Limit > 0 && n > a.Limit {
		a.live.Add(-1)
		return nil, fmt.Errorf("raster: acquire %dx%d: %w", w, h, ErrExhausted)
	}
	a.acquired.Add(1)
	return NewFrameBuffer(w, h), nil
}

func (a *HeapAllocator) Release(fb *FrameBuffer) {
	if fb == nil {
		return
	}
	a.live.Add(-1)
}

// Live returns the number of targets acquired and not yet released.
func (a *HeapAllocator) Live() int64 { return a.live.Load() }

// Acquired returns the total number of successful acquisitions.
func (a *HeapAllocator) Acquired() int64 { return a.acquired.Load() }
