package transport

import (
	"bufio"
	"context"
	"errors"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// maxLineBytes bounds a single NDJSON line. Spectrum frames are the largest
// messages and stay well under this.
const maxLineBytes = 1 << 20

// ReceiverConfig holds the stream endpoint settings for the receiver.
type ReceiverConfig struct {
	// Host and Port locate the publisher's NDJSON stream.
	Host string
	Port int

	// DialTimeout bounds each connect attempt. Defaults to 5s.
	DialTimeout time.Duration

	// ReconnectDelay is the fixed pause between connection attempts.
	// Defaults to 500ms.
	ReconnectDelay time.Duration
}

func (c *ReceiverConfig) defaults() {
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = 500 * time.Millisecond
	}
}

// Receiver ingests the publisher's NDJSON stream and feeds decoded readings
// into the pipeline's ingest queue. Enqueue never blocks; when the queue is
// full the newest reading is dropped.
type Receiver struct {
	cfg ReceiverConfig

	// Optional hooks wired to metrics by the caller.
	OnReconnect func()
	OnDecoded   func(msg any)
	OnBadLine   func()
	OnDrop      func()

	dropWarn *rate.Limiter
}

// NewReceiver creates a receiver for the given endpoint.
func NewReceiver(cfg ReceiverConfig) *Receiver {
	cfg.defaults()
	return &Receiver{
		cfg:      cfg,
		dropWarn: rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
}

// Start connects to the publisher and streams readings into out. Blocks
// until ctx is cancelled, reconnecting after every stream loss with a fixed
// delay. Malformed lines are logged and skipped; they never abort a stream.
func (r *Receiver) Start(ctx context.Context, out chan<- any) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		err := r.runOnce(ctx, out)
		if err == nil {
			// Context cancelled cleanly.
			return nil
		}

		log.Printf("[receiver] stream lost (%v), reconnecting in %s...", err, r.cfg.ReconnectDelay)
		if r.OnReconnect != nil {
			r.OnReconnect()
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(r.cfg.ReconnectDelay):
		}
	}
}

// runOnce makes a single connection attempt and reads until disconnect or
// ctx cancel.
func (r *Receiver) runOnce(ctx context.Context, out chan<- any) error {
	addr := net.JoinHostPort(r.cfg.Host, strconv.Itoa(r.cfg.Port))
	dialer := net.Dialer{Timeout: r.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}

	log.Printf("[receiver] connected to %s", addr)

	// Closing the socket is what unblocks an in-progress read on shutdown.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		conn.Close()
	}()

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		msg, err := DecodeMessage(line)
		if err != nil {
			log.Printf("[receiver] bad line: %.200s (%v)", line, err)
			if r.OnBadLine != nil {
				r.OnBadLine()
			}
			continue
		}
		if r.OnDecoded != nil {
			r.OnDecoded(msg)
		}

		select {
		case out <- msg:
		default:
			if r.OnDrop != nil {
				r.OnDrop()
			}
			if r.dropWarn.Allow() {
				log.Println("[receiver] ingest queue full, dropping reading")
			}
		}
	}

	if ctx.Err() != nil {
		return nil
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return errors.New("publisher closed connection")
}
