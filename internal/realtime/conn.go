// Package realtime receives task change notifications over STOMP on a
// WebSocket. A Conn is owned by whoever dialed it and lives until Close or
// until the dial context ends; there is no shared connection.
package realtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"tick/internal/logging"
)

// Defaults match the web client.
const (
	DefaultDestination    = "/user/queue/tasks"
	DefaultReconnectDelay = 5 * time.Second
	DefaultHeartbeat      = 4 * time.Second
)

// Options configure Dial.
type Options struct {
	URL string

	// Token returns the bearer token; it is called before every connect so
	// refreshed tokens are picked up.
	Token func(ctx context.Context) (string, error)

	Destination    string
	ReconnectDelay time.Duration
	Heartbeat      time.Duration
	Logger         *slog.Logger

	// Dial defaults to DialSTOMP.
	Dial DialFunc
}

func (o *Options) defaults() {
	if o.Destination == "" {
		o.Destination = DefaultDestination
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = DefaultReconnectDelay
	}
	if o.Heartbeat <= 0 {
		o.Heartbeat = DefaultHeartbeat
	}
	if o.Dial == nil {
		o.Dial = DialSTOMP
	}
	o.Logger = logging.OrNop(o.Logger)
}

// Conn is a reconnecting subscription.
type Conn struct {
	opts      Options
	events    chan Event
	connected atomic.Bool
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects once synchronously so configuration and auth errors are
// reported to the caller, then keeps the subscription alive in the
// background, reconnecting after ReconnectDelay whenever it drops.
func Dial(ctx context.Context, opts Options) (*Conn, error) {
	opts.defaults()
	if opts.URL == "" {
		return nil, errors.New("realtime: empty URL")
	}

	s, err := connect(ctx, &opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &Conn{
		opts:   opts,
		events: make(chan Event, 16),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c.connected.Store(true)
	go c.run(ctx, s)
	return c, nil
}

func connect(ctx context.Context, opts *Options) (Session, error) {
	token := ""
	if opts.Token != nil {
		t, err := opts.Token(ctx)
		if err != nil {
			return nil, err
		}
		token = t
	}
	s, err := opts.Dial(ctx, opts.URL, token, opts.Destination, opts.Heartbeat)
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("realtime connected", "url", opts.URL, "destination", opts.Destination)
	return s, nil
}

// Events delivers decoded events. It is closed after Close.
func (c *Conn) Events() <-chan Event { return c.events }

// Connected reports whether a session is currently live.
func (c *Conn) Connected() bool { return c.connected.Load() }

// Close ends the subscription and waits for the background loop to exit.
func (c *Conn) Close() error {
	c.closeOnce.Do(c.cancel)
	<-c.done
	return nil
}

// Done is closed when the connection has shut down.
func (c *Conn) Done() <-chan struct{} { return c.done }

func (c *Conn) run(ctx context.Context, s Session) {
	defer close(c.done)
	defer close(c.events)

	log := c.opts.Logger
	for {
		err := c.pump(ctx, s)
		c.connected.Store(false)
		if ctx.Err() != nil {
			return
		}
		log.Debug("realtime disconnected", "error", err)

		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.opts.ReconnectDelay):
			}
			log.Debug("realtime reconnecting", "url", c.opts.URL)
			next, err := connect(ctx, &c.opts)
			if err == nil {
				s = next
				c.connected.Store(true)
				break
			}
			if ctx.Err() != nil {
				return
			}
			log.Debug("realtime reconnect failed", "error", err)
		}
	}
}

// pump forwards messages of s until it fails or ctx ends. s is always
// closed on return.
func (c *Conn) pump(ctx context.Context, s Session) error {
	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer func() {
		stop()
		s.Close()
	}()

	for {
		body, err := s.Next()
		if err != nil {
			return err
		}
		ev, err := DecodeEvent(body)
		if err != nil {
			c.opts.Logger.Warn("realtime: dropping message", "error", err)
			continue
		}
		select {
		case c.events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
