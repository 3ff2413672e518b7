// Package capture encodes presented frames to WebP on a worker pool and
// records them in a manifest.
package capture

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"
)

// Config holds the capture settings.
type Config struct {
	OutputDir string
	Workers   int
	Queue     int           // pending frames before Submit drops; 0 means Workers*2
	Progress  time.Duration // progress line interval; 0 disables
}

// Frame is one image to encode. Kind names the sub-directory it lands in.
type Frame struct {
	Seq   uint64
	Kind  string
	Time  time.Time
	Image *image.NRGBA
}

// Result holds the outcome of encoding one frame.
type Result struct {
	Seq     uint64
	Kind    string
	Time    time.Time
	Width   int
	Height  int
	Path    string // relative to OutputDir
	Success bool
	Error   string
}

// Writer encodes submitted frames in the background.
type Writer struct {
	cfg   Config
	queue chan Frame
	wg    sync.WaitGroup
	done  chan struct{}

	mu      sync.Mutex
	results []Result

	sendMu sync.RWMutex // held for writing while the queue is closed
	closed bool

	submitted atomic.Int64
	processed atomic.Int64
	dropped   atomic.Int64
}

// NewWriter starts the worker pool.
func NewWriter(cfg Config) (*Writer, error) {
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("capture: no output directory")
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("capture: create %s: %w", cfg.OutputDir, err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Queue <= 0 {
		cfg.Queue = cfg.Workers * 2
	}
	w := &Writer{cfg: cfg, queue: make(chan Frame, cfg.Queue), done: make(chan struct{})}

	for i := 0; i < cfg.Workers; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for f := range w.queue {
				r := encodeFrame(cfg.OutputDir, f)
				w.mu.Lock()
				w.results = append(w.results, r)
				w.mu.Unlock()
				w.processed.Add(1)
			}
		}()
	}
	if cfg.Progress > 0 {
		go w.report()
	}
	return w, nil
}

// Progress reporter
func (w *Writer) report() {
	start := time.Now()
	ticker := time.NewTicker(w.cfg.Progress)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			p := w.processed.Load()
			if p > 0 {
				rate := float64(p) / time.Since(start).Seconds()
				fmt.Printf("  [capture %d/%d] %.1f frames/sec, %d dropped\n", p, w.submitted.Load(), rate, w.dropped.Load())
			}
		}
	}
}

// Submit queues a copy of f.Image. It never blocks the render loop: a full
// queue drops the frame and returns false.
// Submit is safe to call concurrently with Close; frames submitted after
// Close are rejected.
func (w *Writer) Submit(f Frame) bool {
	if f.Image == nil {
		return false
	}
	img := image.NewNRGBA(f.Image.Rect)
	copy(img.Pix, f.Image.Pix)
	f.Image = img
	if f.Time.IsZero() {
		f.Time = time.Now()
	}

	w.sendMu.RLock()
	defer w.sendMu.RUnlock()
	if w.closed {
		return false
	}
	select {
	case w.queue <- f:
		w.submitted.Add(1)
		return true
	default:
		w.dropped.Add(1)
		return false
	}
}

// Dropped returns the number of frames rejected by a full queue.
func (w *Writer) Dropped() int64 { return w.dropped.Load() }

// Close drains the queue, stops the workers and returns every result
// ordered by sequence number and kind.
func (w *Writer) Close() []Result {
	w.sendMu.Lock()
	if w.closed {
		w.sendMu.Unlock()
		return w.Results()
	}
	w.closed = true
	close(w.queue)
	w.sendMu.Unlock()

	w.wg.Wait()
	close(w.done)
	return w.Results()
}

// Results returns the results gathered so far, sorted.
func (w *Writer) Results() []Result {
	w.mu.Lock()
	out := slices.Clone(w.results)
	w.mu.Unlock()
	slices.SortFunc(out, func(a, b Result) int {
		if a.Seq != b.Seq {
			if a.Seq < b.Seq {
				return -1
			}
			return 1
		}
		switch {
		case a.Kind < b.Kind:
			return -1
		case a.Kind > b.Kind:
			return 1
		}
		return 0
	})
	return out
}

func encodeFrame(dir string, f Frame) Result {
	rel := filepath.Join(f.Kind, fmt.Sprintf("%06d.webp", f.Seq))
	b := f.Image.Bounds()
	res := Result{Seq: f.Seq, Kind: f.Kind, Time: f.Time, Width: b.Dx(), Height: b.Dy(), Path: filepath.ToSlash(rel)}

	outPath := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		res.Error = err.Error()
		return res
	}
	out, err := os.Create(outPath)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer out.Close()

	if err := nativewebp.Encode(out, f.Image, nil); err != nil {
		res.Error = fmt.Sprintf("WebP encode: %v", err)
		return res
	}
	res.Success = true
	return res
}
