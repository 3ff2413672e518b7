package tracking

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// ReplayConfig controls ReplayPCAP.
type ReplayConfig struct {
	// Port keeps only UDP packets whose source or destination port matches.
	// Zero accepts every UDP packet.
	Port int
	// Realtime sleeps between packets to reproduce the capture timing,
	// divided by Speed (1 when zero).
	Realtime bool
	Speed    float64
}

// ReplayPCAP feeds the UDP payloads of a pcap capture to handle in capture
// order. It returns the number of payloads delivered.
func ReplayPCAP(ctx context.Context, r io.Reader, cfg ReplayConfig, handle func(ts time.Time, payload []byte) error) (int, error) {
	reader, err := pcapgo.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("tracking: open pcap: %w", err)
	}
	speed := cfg.Speed
	if speed <= 0 {
		speed = 1
	}

	source := gopacket.NewPacketSource(reader, reader.LinkType())

	var (
		delivered int
		first     time.Time
		start     = time.Now()
	)
	for {
		select {
		case <-ctx.Done():
			return delivered, ctx.Err()
		case packet := <-source.Packets():
			if packet == nil {
				return delivered, nil
			}
			udpLayer := packet.Layer(layers.LayerTypeUDP)
			if udpLayer == nil {
				continue
			}
			udp, ok := udpLayer.(*layers.UDP)
			if !ok || len(udp.Payload) == 0 {
				continue
			}
			if cfg.Port != 0 && int(udp.SrcPort) != cfg.Port && int(udp.DstPort) != cfg.Port {
				continue
			}

			ts := packet.Metadata().Timestamp
			if cfg.Realtime {
				if first.IsZero() {
					first = ts
				}
				due := start.Add(time.Duration(float64(ts.Sub(first)) / speed))
				if wait := time.Until(due); wait > 0 {
					select {
					case <-ctx.Done():
						return delivered, ctx.Err()
					case <-time.After(wait):
					}
				}
			}

			if err := handle(ts, udp.Payload); err != nil {
				log.Printf("tracking: pcap packet %d: %v", delivered+1, err)
			}
			delivered++
		}
	}
}
