package websocket

import (
	"context"
	"sync/atomic"
	"time"

	"bmxfeed/pkg/exception"
)

// Config defines the manager runtime configuration.
type Config struct {
	Dialer Dialer
	// Handler receives every inbound text or binary message.
	Handler        MessageHandler
	WriteQueueSize int
	// PingInterval enables an application level keep-alive when positive.
	PingInterval time.Duration
	PingType     MessageType
	PingPayload  []byte
	Backoff      Backoff
	// OnConnect runs after each successful dial, before reading starts.
	// Returning an error closes the connection and schedules a reconnect.
	OnConnect func(ctx context.Context, w *Writer) error
	// OnDisconnect runs after the session ended and the read loop returned.
	OnDisconnect func(err error)
}

// Manager owns the WebSocket lifecycle: dial, read, write, ping and reconnect.
type Manager struct {
	cfg       Config
	writer    *Writer
	connected atomic.Bool
	running   atomic.Bool
	sessions  atomic.Uint64
}

// NewManager validates config and builds a manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Dialer == nil {
		return nil, exception.ErrWebSocketNilDialer
	}
	if cfg.Handler == nil {
		return nil, exception.ErrWebSocketNilHandler
	}
	if cfg.WriteQueueSize <= 0 {
		cfg.WriteQueueSize = 1024
	}
	if cfg.PingType == 0 {
		cfg.PingType = MessageText
	}
	if cfg.PingInterval > 0 && cfg.PingType.IsData() && len(cfg.PingPayload) == 0 {
		return nil, exception.ErrWebSocketConfig
	}
	if cfg.Backoff.IsZero() {
		cfg.Backoff = DefaultBackoff()
	}

	return &Manager{
		cfg:    cfg,
		writer: NewWriter(cfg.WriteQueueSize),
	}, nil
}

// Run starts the connection lifecycle and blocks until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	if m == nil {
		return exception.ErrNilInstance
	}
	if !m.running.CompareAndSwap(false, true) {
		return exception.ErrWebSocketRunning
	}
	defer m.running.Store(false)

	attempt := 0
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := m.cfg.Dialer.Dial(ctx)
		if err != nil {
			attempt++
			m.sleepBackoff(ctx, attempt)
			continue
		}

		attempt = 0
		m.sessions.Add(1)
		m.connected.Store(true)
		m.writer.SetConnected(true)

		if m.cfg.OnConnect != nil {
			if err := m.cfg.OnConnect(ctx, m.writer); err != nil {
				_ = conn.Close(CloseNormal, "on_connect_failed")
				m.disconnect(err)
				attempt++
				m.sleepBackoff(ctx, attempt)
				continue
			}
		}

		err = m.runSession(ctx, conn)
		m.disconnect(err)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		attempt++
		m.sleepBackoff(ctx, attempt)
	}
}

// Send enqueues an outbound message by copying payload.
func (m *Manager) Send(msgType MessageType, payload []byte) error {
	if m == nil {
		return exception.ErrNilInstance
	}
	if !m.connected.Load() {
		return exception.ErrWebSocketNotConnected
	}
	return m.writer.Send(msgType, payload)
}

// Connected reports whether a session is established.
func (m *Manager) Connected() bool {
	return m != nil && m.connected.Load()
}

// Sessions returns how many connections were established since creation.
func (m *Manager) Sessions() uint64 {
	if m == nil {
		return 0
	}
	return m.sessions.Load()
}

func (m *Manager) disconnect(err error) {
	m.connected.Store(false)
	m.writer.SetConnected(false)
	m.writer.Drain()
	if m.cfg.OnDisconnect != nil {
		m.cfg.OnDisconnect(err)
	}
}

func (m *Manager) runSession(ctx context.Context, conn Conn) error {
	sessionCtx, cancel := context.WithCancel(ctx)

	errCh := make(chan error, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		m.readLoop(sessionCtx, conn, errCh)
	}()

	defer func() {
		cancel()
		_ = conn.Close(CloseNormal, "session_end")
		<-done
	}()

	var ping <-chan time.Time
	if m.cfg.PingInterval > 0 {
		ticker := time.NewTicker(m.cfg.PingInterval)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case frame := <-m.writer.queue:
			if err := conn.Write(sessionCtx, frame.MsgType, frame.Buf); err != nil {
				return err
			}
		case <-ping:
			_ = m.writer.Send(m.cfg.PingType, m.cfg.PingPayload)
		}
	}
}

func (m *Manager) readLoop(ctx context.Context, conn Conn, errCh chan<- error) {
	for {
		msgType, payload, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			errCh <- err
			return
		}
		if !msgType.IsData() {
			continue
		}
		m.cfg.Handler(msgType, payload)
	}
}

func (m *Manager) sleepBackoff(ctx context.Context, attempt int) {
	wait := m.cfg.Backoff.Next(attempt)
	if wait <= 0 {
		return
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
