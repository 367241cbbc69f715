// internal/transport/link.go
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tamzrod/iocp-gateway/internal/status"
)

// Dialer opens one connection. ONE attempt per call; Link owns retries.
type Dialer func(ctx context.Context) (io.ReadWriteCloser, error)

// Config is the runtime config of one link.
type Config struct {
	Name           string
	Dial           Dialer
	WriteTimeout   time.Duration
	ReadBufferSize int
	Backoff        BackoffConfig
}

// Link keeps one connection alive and moves bytes for its endpoint.
//
// Incoming bytes are handed to the data hook on the read goroutine, in order.
// Send never queues: without a connection it fails with ErrNotAvailable,
// while another write is in flight it fails with ErrNotWritable.
type Link struct {
	cfg     Config
	log     zerolog.Logger
	tracker *status.Tracker

	mu   sync.Mutex // guards conn
	conn io.ReadWriteCloser

	wmu sync.Mutex // held for the duration of one write

	onConnect func()
	onData    func([]byte)
}

// New creates a link. tracker may be nil.
func New(cfg Config, logger zerolog.Logger, tracker *status.Tracker) (*Link, error) {
	if cfg.Name == "" {
		return nil, errors.New("transport: link name required")
	}
	if cfg.Dial == nil {
		return nil, errors.New("transport: dialer required")
	}
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = 1024
	}
	if cfg.Backoff == (BackoffConfig{}) {
		cfg.Backoff = DefaultBackoff()
	}

	return &Link{
		cfg:     cfg,
		log:     logger.With().Str("link", cfg.Name).Logger(),
		tracker: tracker,
	}, nil
}

// OnConnect sets the hook run after every successful connect, before reads start.
func (l *Link) OnConnect(fn func()) { l.onConnect = fn }

// OnData sets the hook receiving raw incoming bytes. The slice is only valid during the call.
func (l *Link) OnData(fn func([]byte)) { l.onData = fn }

// Run connects, reads until the connection dies, and reconnects with backoff
// until ctx is done. It returns ctx.Err().
func (l *Link) Run(ctx context.Context) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	attempt := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, err := l.cfg.Dial(ctx)
		if err != nil {
			attempt++
			l.fail(err)
			l.log.Warn().Err(err).Int("attempt", attempt).Msg("connect failed")
		} else {
			attempt = 0
			err = l.serve(ctx, conn)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			attempt++
			l.fail(err)
			l.log.Warn().Err(err).Msg("connection lost")
		}

		delay := NextBackoffDelay(l.cfg.Backoff, attempt, rng)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (l *Link) serve(ctx context.Context, conn io.ReadWriteCloser) error {
	session := uuid.NewString()
	log := l.log.With().Str("session", session).Logger()

	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer func() {
		stop()
		l.mu.Lock()
		l.conn = nil
		l.mu.Unlock()
		_ = conn.Close()
		log.Info().Msg("disconnected")
	}()

	if l.tracker != nil {
		l.tracker.OK()
	}
	log.Info().Msg("connected")

	if l.onConnect != nil {
		l.onConnect()
	}

	buf := make([]byte, l.cfg.ReadBufferSize)
	for {
		n, err := conn.Read(buf)
		if n > 0 && l.onData != nil {
			l.onData(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("transport %s: closed by peer", l.cfg.Name)
			}
			return fmt.Errorf("transport %s: read: %w", l.cfg.Name, err)
		}
	}
}

// Writable reports whether a Send issued now would be attempted.
func (l *Link) Writable() bool {
	l.mu.Lock()
	connected := l.conn != nil
	l.mu.Unlock()
	if !connected {
		return false
	}
	if !l.wmu.TryLock() {
		return false
	}
	l.wmu.Unlock()
	return true
}

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// Send writes p in full or fails fast.
func (l *Link) Send(p []byte) error {
	l.mu.Lock()
	conn := l.conn
	l.mu.Unlock()

	if conn == nil {
		return ErrNotAvailable
	}
	if !l.wmu.TryLock() {
		return ErrNotWritable
	}
	defer l.wmu.Unlock()

	if d, ok := conn.(writeDeadliner); ok && l.cfg.WriteTimeout > 0 {
		_ = d.SetWriteDeadline(time.Now().Add(l.cfg.WriteTimeout))
	}

	if err := writeAll(conn, p); err != nil {
		l.fail(err)
		return fmt.Errorf("transport %s: write: %w", l.cfg.Name, err)
	}
	if l.tracker != nil {
		l.tracker.OK()
	}
	return nil
}

func (l *Link) fail(err error) {
	if l.tracker != nil {
		l.tracker.Fail(err)
	}
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		b = b[n:]
	}
	return nil
}
