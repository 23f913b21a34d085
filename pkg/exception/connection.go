package exception

import "github.com/yanun0323/errors"

var (
	ErrConnectionClose = errors.New("connection closed")
	ErrNotConnected    = errors.New("connection: not connected")
	ErrNilRequest      = errors.New("request: nil request")
	ErrSendFailed      = errors.New("request: send failed")
)
