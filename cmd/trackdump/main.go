package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"voxel-station/internal/tracking"
)

func main() {
	pcapFile := flag.String("pcap", "", "pcap capture of tracker traffic (required)")
	port := flag.Int("port", 8888, "UDP port of the tracker traffic (0: any)")
	limit := flag.Int("n", 0, "Print only the first N datagrams")
	smoothed := flag.Bool("smoothed", false, "Also print the smoothed tilt and roll")

	flag.Parse()

	if *pcapFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -pcap is required")
		os.Exit(1)
	}
	f, err := os.Open(*pcapFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening pcap: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	recv := tracking.NewReceiver()
	var first time.Time
	printed, malformed := 0, 0

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n, err := tracking.ReplayPCAP(ctx, f, tracking.ReplayConfig{Port: *port}, func(ts time.Time, payload []byte) error {
		if first.IsZero() {
			first = ts
		}
		if *limit > 0 && printed >= *limit {
			cancel()
			return nil
		}
		printed++
		rel := ts.Sub(first).Seconds()

		d, err := tracking.ParseDatagram(payload)
		if err != nil {
			malformed++
			fmt.Printf("%9.3f  malformed  %q\n", rel, payload)
			return nil
		}
		_ = recv.Handle(payload)

		switch d.Kind {
		case tracking.KindKey:
			b, pressed, ok := d.Key.Event()
			switch {
			case !ok:
				fmt.Printf("%9.3f  key %q (unknown)\n", rel, rune(d.Key))
			case pressed:
				fmt.Printf("%9.3f  key %q  %s down\n", rel, rune(d.Key), b)
			default:
				fmt.Printf("%9.3f  key %q  %s up\n", rel, rune(d.Key), b)
			}
		default:
			r := d.Record
			head := r.HeadMeters()
			fmt.Printf("%9.3f  head (%.3f, %.3f, %.3f) m  glasses=%t  tilt=%.2f  roll=%.2f",
				rel, head[0], head[1], head[2], r.GlassesTracked, r.TiltSample, r.StylusRoll)
			if *smoothed {
				if snap, ok := recv.Snapshot(); ok {
					fmt.Printf("  smoothed tilt=%.2f roll=%.2f", snap.Tilt, snap.Roll)
				}
			}
			fmt.Println()
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	stats := recv.Stats()
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Datagrams: %d, records: %d, keys: %d, malformed: %d\n", n, stats.Records, stats.Keys, malformed)
}
