package response

import (
	"encoding/json"
	"time"
)

const (
	fieldError       = "error"
	fieldSubscribe   = "subscribe"
	fieldUnsubscribe = "unsubscribe"
	fieldInfo        = "info"
	fieldVersion     = "version"
	fieldRequest     = "request"

	// PongText is the raw keep-alive reply to a "ping" frame.
	PongText = "pong"
)

// RequestEcho is the request a response refers to.
type RequestEcho struct {
	Op   string          `json:"op"`
	Args json.RawMessage `json:"args,omitempty"`
}

type ErrorResponse struct {
	Status  int             `json:"status"`
	Error   string          `json:"error"`
	Meta    json.RawMessage `json:"meta,omitempty"`
	Request *RequestEcho    `json:"request,omitempty"`
}

// SubscribeResponse acknowledges a subscribe or unsubscribe request.
type SubscribeResponse struct {
	Success     bool        `json:"success"`
	Subscribe   string      `json:"subscribe,omitempty"`
	Unsubscribe string      `json:"unsubscribe,omitempty"`
	Request     RequestEcho `json:"request"`
}

// IsUnsubscribe reports whether the ack refers to an unsubscribe request.
func (r SubscribeResponse) IsUnsubscribe() bool {
	return len(r.Unsubscribe) != 0
}

// InfoResponse is the welcome frame sent after connecting.
type InfoResponse struct {
	Info      string    `json:"info"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Docs      string    `json:"docs"`
	Limit     struct {
		Remaining int `json:"remaining"`
	} `json:"limit"`
}

type AuthenticationResponse struct {
	Success bool        `json:"success"`
	Request RequestEcho `json:"request"`
}

type PongResponse struct {
	Message string
}

// UnhandledFrame is published for frames no matcher claimed or could convert.
// Err is nil for unrecognized frames.
type UnhandledFrame struct {
	Text string
	Seq  uint64
	Err  error
}
