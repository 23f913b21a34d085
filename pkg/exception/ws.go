package exception

import "github.com/yanun0323/errors"

// WS errors
var (
	ErrWebSocketConnectionClose = errors.New("websocket: connection closed")
	ErrWebSocketProtocol        = errors.New("websocket: protocol error")
	ErrWebSocketNilDialer       = errors.New("websocket: nil dialer")
	ErrWebSocketNilHandler      = errors.New("websocket: nil frame handler")
	ErrWebSocketQueueFull       = errors.New("websocket: outbound queue full")
	ErrWebSocketNotConnected    = errors.New("websocket: not connected")
	ErrWebSocketBadURL          = errors.New("websocket: invalid url")
)

var (
	ErrWebSocketRunning = errors.New("websocket: manager already running")
	ErrWebSocketConfig  = errors.New("websocket: invalid config")
)
