package source

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"bmxfeed/internal/errors"
	"bmxfeed/pkg/exception"
	"bmxfeed/pkg/websocket"
)

const (
	DefaultURL      = "wss://ws.bitmex.com/realtime"
	DefaultTestURL  = "wss://ws.testnet.bitmex.com/realtime"
	DefaultPingText = "ping"
)

// LiveConfig configures a websocket frame source.
type LiveConfig struct {
	URL              string
	Header           http.Header
	PingText         string
	PingInterval     time.Duration
	Backoff          websocket.Backoff
	WriteQueueSize   int
	HandshakeTimeout time.Duration
	ReadLimit        int64
	// Dialer overrides the gorilla dialer built from URL.
	Dialer websocket.Dialer
}

func (c LiveConfig) withDefaults() LiveConfig {
	if len(c.URL) == 0 {
		c.URL = DefaultURL
	}
	if len(c.PingText) == 0 {
		c.PingText = DefaultPingText
	}
	if c.PingInterval == 0 {
		c.PingInterval = 15 * time.Second
	}
	if c.WriteQueueSize <= 0 {
		c.WriteQueueSize = 256
	}
	if c.Backoff.IsZero() {
		c.Backoff = websocket.DefaultBackoff()
	}
	return c
}

// Validate checks the effective configuration.
func (c LiveConfig) Validate() error {
	c = c.withDefaults()
	if c.PingInterval < 0 {
		return errors.Wrap(exception.ErrInvalidConfig, "ping interval must not be negative")
	}
	if c.ReadLimit < 0 {
		return errors.Wrap(exception.ErrInvalidConfig, "read limit must not be negative")
	}
	return nil
}

var _ Source = (*Live)(nil)

// Live streams frames from a websocket connection. Reconnects are handled by
// the underlying manager and surface as lifecycle frames.
type Live struct {
	cfg     LiveConfig
	origin  string
	manager *websocket.Manager
	handler atomic.Pointer[Handler]
	seq     atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLive validates cfg and prepares a live source. No connection is made until Start.
func NewLive(cfg LiveConfig) (*Live, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	dialer := cfg.Dialer
	if dialer == nil {
		d, err := websocket.NewDialer(websocket.DialerConfig{
			URL:              cfg.URL,
			Header:           cfg.Header,
			HandshakeTimeout: cfg.HandshakeTimeout,
			ReadLimit:        cfg.ReadLimit,
		})
		if err != nil {
			return nil, err
		}
		dialer = d
	}

	l := &Live{cfg: cfg, origin: cfg.URL}
	manager, err := websocket.NewManager(websocket.Config{
		Dialer:         dialer,
		Handler:        l.onMessage,
		WriteQueueSize: cfg.WriteQueueSize,
		PingInterval:   cfg.PingInterval,
		PingType:       websocket.MessageText,
		PingPayload:    []byte(cfg.PingText),
		Backoff:        cfg.Backoff,
		OnConnect: func(context.Context, *websocket.Writer) error {
			l.emit(FrameConnected, "")
			return nil
		},
		OnDisconnect: func(err error) {
			text := ""
			if err != nil {
				text = err.Error()
			}
			l.emit(FrameDisconnected, text)
		},
	})
	if err != nil {
		return nil, err
	}
	l.manager = manager

	return l, nil
}

func (l *Live) Listen(h Handler) {
	if l == nil {
		return
	}
	if h == nil {
		l.handler.Store(nil)
		return
	}
	l.handler.Store(&h)
}

// Start launches the connection loop and returns immediately.
func (l *Live) Start(ctx context.Context) error {
	if l == nil {
		return exception.ErrNilInstance
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done != nil {
		return exception.ErrWebSocketRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done

	go func() {
		defer close(done)
		_ = l.manager.Run(runCtx)
	}()

	return nil
}

// Stop cancels the connection loop and waits for it to exit or for ctx.
func (l *Live) Stop(ctx context.Context) error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send queues text for the current connection.
func (l *Live) Send(ctx context.Context, text string) error {
	if l == nil {
		return exception.ErrNilInstance
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := l.manager.Send(websocket.MessageText, []byte(text))
	if errors.Is(err, exception.ErrWebSocketNotConnected) {
		return errors.Mark(exception.ErrNotConnected, err)
	}
	return err
}

// Connected reports whether the websocket session is up.
func (l *Live) Connected() bool {
	return l != nil && l.manager.Connected()
}

func (l *Live) onMessage(_ websocket.MessageType, payload []byte) {
	l.emit(FrameData, string(payload))
}

func (l *Live) emit(kind FrameKind, text string) {
	h := l.handler.Load()
	if h == nil {
		return
	}
	(*h)(Frame{
		Kind:     kind,
		Text:     text,
		Seq:      l.seq.Add(1),
		Origin:   l.origin,
		Received: time.Now(),
	})
}
