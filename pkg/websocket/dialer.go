package websocket

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"bmxfeed/internal/errors"
	"bmxfeed/pkg/exception"

	"github.com/gorilla/websocket"
)

// DialerConfig configures a GorillaDialer.
type DialerConfig struct {
	URL              string
	Header           http.Header
	HandshakeTimeout time.Duration
	ReadLimit        int64
	WriteTimeout     time.Duration
	ReadBufferSize   int
	WriteBufferSize  int
}

// GorillaDialer dials connections with github.com/gorilla/websocket.
type GorillaDialer struct {
	cfg    DialerConfig
	dialer *websocket.Dialer
}

// NewDialer validates the URL and builds a dialer.
func NewDialer(cfg DialerConfig) (*GorillaDialer, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, errors.Mark(exception.ErrWebSocketBadURL, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, errors.Wrapf(exception.ErrWebSocketBadURL, "scheme: %q", u.Scheme)
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	return &GorillaDialer{
		cfg: cfg,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
			ReadBufferSize:   cfg.ReadBufferSize,
			WriteBufferSize:  cfg.WriteBufferSize,
		},
	}, nil
}

// URL returns the endpoint this dialer connects to.
func (d *GorillaDialer) URL() string {
	if d == nil {
		return ""
	}
	return d.cfg.URL
}

// Dial opens a new connection.
func (d *GorillaDialer) Dial(ctx context.Context) (Conn, error) {
	if d == nil {
		return nil, exception.ErrWebSocketNilDialer
	}

	ws, resp, err := d.dialer.DialContext(ctx, d.cfg.URL, d.cfg.Header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", d.cfg.URL)
	}

	if d.cfg.ReadLimit > 0 {
		ws.SetReadLimit(d.cfg.ReadLimit)
	}

	return &gorillaConn{ws: ws, writeTimeout: d.cfg.WriteTimeout}, nil
}

type gorillaConn struct {
	ws           *websocket.Conn
	writeTimeout time.Duration
	closeOnce    sync.Once
	closeErr     error
}

// Read blocks on the socket. Cancellation is observed by closing the connection.
func (c *gorillaConn) Read(ctx context.Context) (MessageType, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	msgType, payload, err := c.ws.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return 0, nil, errors.Mark(exception.ErrWebSocketConnectionClose, err)
		}
		return 0, nil, err
	}

	return MessageType(msgType), payload, nil
}

func (c *gorillaConn) Write(ctx context.Context, msgType MessageType, payload []byte) error {
	deadline := time.Now().Add(c.writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	switch msgType {
	case MessagePing, MessagePong, MessageClose:
		return c.ws.WriteControl(int(msgType), payload, deadline)
	default:
		if err := c.ws.SetWriteDeadline(deadline); err != nil {
			return err
		}
		return c.ws.WriteMessage(int(msgType), payload)
	}
}

func (c *gorillaConn) Close(code CloseCode, reason string) error {
	c.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(int(code), reason)
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}
