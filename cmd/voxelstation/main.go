package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"voxel-station/internal/capture"
	"voxel-station/internal/config"
	"voxel-station/internal/postprocess"
	"voxel-station/internal/raster"
	"voxel-station/internal/rig"
	"voxel-station/internal/tracking"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	device := flag.String("device", "", "Tracker endpoint host:port (default: 127.0.0.1:8888)")
	pcapFile := flag.String("pcap", "", "Replay tracker traffic from a pcap capture instead of the device")
	port := flag.Int("port", 8888, "UDP port of the tracker traffic in -pcap")
	realtime := flag.Bool("realtime", true, "Replay -pcap at capture timing")
	speed := flag.Float64("speed", 1, "Replay speed multiplier with -realtime")
	frames := flag.Int("frames", 0, "Stop after N frames (default: run until interrupted)")
	mode := flag.String("mode", "", "Stereo mode: disabled, anaglyph, side_by_side, over_under, interlace, checkerboard, active")
	screenMode := flag.String("screen", "", "Screen mode: screen_tilt or look_at")
	viewSize := flag.Float64("view-size", 0, "Virtual screen scale (default: 1)")
	width := flag.Int("width", 0, "Output width in pixels (default: 1280)")
	height := flag.Int("height", 0, "Output height in pixels (default: 720)")
	supersample := flag.Int("supersample", 0, "Render at N times the output size and downsample (default: 1)")
	background := flag.String("background", "", "Background plate (tga, jpg or png)")
	captureDir := flag.String("capture", "", "Write presented frames as WebP to this directory")
	captureEvery := flag.Int("capture-every", 0, "Capture every N-th frame (default: 1)")
	workers := flag.Int("workers", 0, "Capture encoder goroutines (default: NumCPU)")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		Device:       *device,
		StereoMode:   *mode,
		ScreenMode:   *screenMode,
		ViewSize:     *viewSize,
		Width:        *width,
		Height:       *height,
		Supersample:  *supersample,
		Background:   *background,
		CaptureDir:   *captureDir,
		CaptureEvery: *captureEvery,
		Workers:      *workers,
	})
	cfg.Clamp()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recv := tracking.NewReceiver()

	// Tracking source
	var (
		commander  tracking.Commander
		replayDone chan struct{}
	)
	if *pcapFile != "" {
		f, err := os.Open(*pcapFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening pcap: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()

		replayDone = make(chan struct{})
		go func() {
			defer close(replayDone)
			replayCfg := tracking.ReplayConfig{Port: *port, Realtime: *realtime, Speed: *speed}
			n, err := tracking.ReplayPCAP(ctx, f, replayCfg, func(_ time.Time, payload []byte) error {
				return recv.Handle(payload)
			})
			if err != nil && ctx.Err() == nil {
				fmt.Fprintf(os.Stderr, "Warning: replay: %v\n", err)
			}
			fmt.Printf("Replay: %d datagrams\n", n)
		}()
	} else {
		client, err := tracking.Dial(tracking.ClientConfig{
			Device:    cfg.Device,
			Local:     cfg.Listen,
			Heartbeat: cfg.Heartbeat(),
		}, recv)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error connecting to tracker: %v\n", err)
			os.Exit(1)
		}
		defer client.Close()
		go client.Run(ctx)
		commander = client
	}

	// Frame capture
	var (
		writer *capture.Writer
		sink   *capture.Sink
	)
	if cfg.CaptureDir != "" {
		var err error
		writer, err = capture.NewWriter(capture.Config{
			OutputDir: cfg.CaptureDir,
			Workers:   cfg.CaptureWorkers,
			Queue:     cfg.CaptureWorkers * 4,
			Progress:  5 * time.Second,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		sink = capture.NewSink(writer, cfg.CaptureEvery)
	}

	st, bg, err := assemble(cfg, recv, commander, sink)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	source := "device " + cfg.Device
	if *pcapFile != "" {
		source = "pcap " + *pcapFile
	}
	fmt.Printf("Voxel station: %s, %dx%d @ %.0f fps\n", source, cfg.OutputWidth, cfg.OutputHeight, cfg.FrameRate)
	fmt.Printf("Stereo: %s, screen: %s, view size %.2f\n", cfg.StereoMode, cfg.ScreenMode, cfg.ViewSize)
	if writer != nil {
		fmt.Printf("Capture: %s (every %d)\n", cfg.CaptureDir, cfg.CaptureEvery)
	}
	fmt.Println("------------------------------------------------------------")

	dst := raster.NewFrameBuffer(cfg.OutputWidth, cfg.OutputHeight)
	render := dst
	if cfg.Supersample > 1 {
		render = raster.NewFrameBuffer(postprocess.SupersampleSize(cfg.OutputWidth, cfg.OutputHeight, cfg.Supersample))
	}
	ticker := time.NewTicker(cfg.FrameInterval())
	defer ticker.Stop()

	start := time.Now()
	last := start
	limit := *frames
	rendered, renderErrors := 0, 0
loop:
	for limit <= 0 || rendered < limit {
		select {
		case <-ctx.Done():
			break loop
		case <-replayDone:
			// Draw the final state once more, then stop.
			replayDone = nil
			limit = rendered + 1
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			if sink != nil {
				sink.Begin(uint64(rendered))
			}
			if bg != nil {
				bg.refresh()
			}
			fr := st.Step(dt)
			if err := st.Render(render); err != nil {
				renderErrors++
				if renderErrors == 1 {
					fmt.Fprintf(os.Stderr, "Warning: render: %v\n", err)
				}
			} else {
				if render != dst {
					postprocess.Downsample(dst.Image(), render.Image())
				}
				if sink != nil && !presentsWithSync(fr.Mode, fr.Stereo) {
					sink.Present("composite", dst)
				}
			}
			rendered++
		}
	}

	elapsed := time.Since(start)
	stats := recv.Stats()
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs: %d frames, %d render errors\n", elapsed.Seconds(), rendered, renderErrors)
	fmt.Printf("Tracking: %d records, %d keys, %d malformed\n", stats.Records, stats.Keys, stats.Malformed)

	if writer != nil {
		results := writer.Close()
		failed := 0
		for _, r := range results {
			if !r.Success {
				failed++
			}
		}
		fmt.Printf("Captured: %d/%d frames, %d dropped\n", len(results)-failed, len(results), writer.Dropped())

		manifestPath := filepath.Join(cfg.CaptureDir, "manifest.json")
		if err := capture.WriteManifest(manifestPath, results); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
		} else {
			fmt.Printf("Manifest: %s\n", manifestPath)
		}
	}
}

// presentsWithSync reports whether the compositor hands finished frames to
// the sync sink itself.
func presentsWithSync(mode rig.DisplayMode, stereo bool) bool {
	return stereo && (mode == rig.SideBySide || mode == rig.Active)
}
