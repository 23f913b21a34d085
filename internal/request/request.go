package request

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Request is an outbound message. Raw reports text that must be sent
// verbatim; otherwise the value is serialized as JSON.
type Request interface {
	Raw() (text string, ok bool)
}

// Literal is sent as-is.
type Literal string

// Ping is the keep-alive frame; the server answers with a raw "pong".
const Ping = Literal("ping")

func (l Literal) Raw() (string, bool) {
	return string(l), true
}

// Operation is the JSON command envelope: {"op": ..., "args": [...]}.
type Operation struct {
	Op   string `json:"op"`
	Args []any  `json:"args"`
}

func (Operation) Raw() (string, bool) {
	return "", false
}

const (
	OpSubscribe      = "subscribe"
	OpUnsubscribe    = "unsubscribe"
	OpAuthKeyExpires = "authKeyExpires"
	OpCancelAllAfter = "cancelAllAfter"

	authVerb = "GET"
	authPath = "/realtime"
)

// Topic joins a table and an optional filter, e.g. "trade:XBTUSD".
func Topic(table, symbol string) string {
	if len(symbol) == 0 {
		return table
	}
	return table + ":" + symbol
}

func Subscribe(topics ...string) Operation {
	return Operation{Op: OpSubscribe, Args: stringArgs(topics)}
}

func Unsubscribe(topics ...string) Operation {
	return Operation{Op: OpUnsubscribe, Args: stringArgs(topics)}
}

// NewAuthentication signs GET/realtime with expires (unix seconds).
func NewAuthentication(apiKey, apiSecret string, expires int64) Operation {
	return Operation{
		Op:   OpAuthKeyExpires,
		Args: []any{apiKey, expires, Signature(apiSecret, expires)},
	}
}

// Signature is hex(HMAC-SHA256(secret, "GET/realtime" + expires)).
func Signature(apiSecret string, expires int64) string {
	mac := hmac.New(sha256.New, []byte(apiSecret))
	mac.Write([]byte(authVerb + authPath + strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// CancelAllAfter arms the dead man's switch. A zero timeout disarms it.
func CancelAllAfter(timeout time.Duration) Operation {
	return Operation{Op: OpCancelAllAfter, Args: []any{timeout.Milliseconds()}}
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
