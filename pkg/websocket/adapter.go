package websocket

import "context"

// Conn is a minimal interface for a WebSocket connection.
// Read blocks until a message arrives or the connection is closed.
type Conn interface {
	Read(ctx context.Context) (msgType MessageType, payload []byte, err error)
	Write(ctx context.Context, msgType MessageType, payload []byte) error
	Close(code CloseCode, reason string) error
}

// Dialer creates new connections.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// MessageHandler receives inbound data messages on the read goroutine.
// The payload is owned by the handler.
type MessageHandler func(msgType MessageType, payload []byte)
