package tracking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"
)

// Device session messages.
const (
	MsgStart = "start"
	MsgLive  = "live"
	MsgStop  = "stop"
)

// ClientConfig configures the device session.
type ClientConfig struct {
	Device     string        // device endpoint, e.g. 127.0.0.1:8888
	Local      string        // local bind address; empty picks 127.0.0.1:0
	Heartbeat  time.Duration // interval between "live" messages
	ReadBuffer int           // socket receive buffer, bytes; 0 leaves the OS default
}

// Client owns the UDP socket shared by the device session: it sends start,
// live and stop, and feeds every received datagram to a Receiver.
type Client struct {
	conn      *net.UDPConn
	device    *net.UDPAddr
	heartbeat time.Duration
	recv      *Receiver

	mu     sync.Mutex // serializes writes and Close
	closed bool
}

// Dial binds the local socket and announces the session to the device.
func Dial(cfg ClientConfig, recv *Receiver) (*Client, error) {
	device, err := net.ResolveUDPAddr("udp", cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("tracking: resolve device %s: %w", cfg.Device, err)
	}
	local := cfg.Local
	if local == "" {
		local = "127.0.0.1:0"
	}
	laddr, err := net.ResolveUDPAddr("udp", local)
	if err != nil {
		return nil, fmt.Errorf("tracking: resolve local %s: %w", local, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("tracking: listen %s: %w", local, err)
	}
	if cfg.ReadBuffer > 0 {
		if err := conn.SetReadBuffer(cfg.ReadBuffer); err != nil {
			log.Printf("tracking: set receive buffer to %d: %v", cfg.ReadBuffer, err)
		}
	}

	hb := cfg.Heartbeat
	if hb <= 0 {
		hb = 5 * time.Second
	}
	c := &Client{conn: conn, device: device, heartbeat: hb, recv: recv}
	if err := c.Send(MsgStart); err != nil {
		conn.Close()
		return nil, err
	}
	log.Printf("tracking: session started with %s from %s", device, conn.LocalAddr())
	return c, nil
}

// LocalAddr returns the bound socket address.
func (c *Client) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// Send writes one command to the device.
func (c *Client) Send(cmd string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("tracking: send %q: %w", cmd, net.ErrClosed)
	}
	if _, err := c.conn.WriteToUDP([]byte(cmd), c.device); err != nil {
		return fmt.Errorf("tracking: send %q: %w", cmd, err)
	}
	return nil
}

// Run reads datagrams until ctx is cancelled, sending a heartbeat every
// Heartbeat interval.
func (c *Client) Run(ctx context.Context) error {
	go c.keepAlive(ctx)

	buf := make([]byte, 1024)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		c.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		n, _, err := c.conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("tracking: read: %v", err)
			continue
		}
		// Malformed datagrams are counted and logged by the receiver.
		_ = c.recv.Handle(buf[:n])
	}
}

func (c *Client) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(c.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Send(MsgLive); err != nil {
				log.Printf("tracking: heartbeat: %v", err)
			}
		}
	}
}

// Close tells the device the session is over and releases the socket.
func (c *Client) Close() error {
	sendErr := c.Send(MsgStop)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("tracking: close: %w", err)
	}
	return sendErr
}
