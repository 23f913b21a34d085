package websocket

import (
	"sync/atomic"

	"bmxfeed/pkg/exception"
)

// OutboundFrame represents a queued write payload.
type OutboundFrame struct {
	// MsgType is the WebSocket message type for the payload.
	MsgType MessageType
	// Buf is the payload to send. The writer owns it once enqueued.
	Buf []byte
}

// Writer provides a bounded outbound queue. Frames queued while
// disconnected are rejected; frames left at disconnect are drained.
type Writer struct {
	queue     chan OutboundFrame
	connected atomic.Bool
	dropped   atomic.Uint64
}

// NewWriter creates a Writer with a bounded queue.
func NewWriter(capacity int) *Writer {
	if capacity <= 0 {
		capacity = 1
	}
	return &Writer{
		queue: make(chan OutboundFrame, capacity),
	}
}

// SetConnected toggles the writer connection state.
func (w *Writer) SetConnected(connected bool) {
	w.connected.Store(connected)
}

// Connected reports whether a session is currently writing.
func (w *Writer) Connected() bool {
	return w.connected.Load()
}

// Send copies payload and enqueues it without blocking.
func (w *Writer) Send(msgType MessageType, payload []byte) error {
	if !w.connected.Load() {
		return exception.ErrWebSocketNotConnected
	}

	buf := make([]byte, len(payload))
	copy(buf, payload)

	select {
	case w.queue <- OutboundFrame{MsgType: msgType, Buf: buf}:
		return nil
	default:
		w.dropped.Add(1)
		return exception.ErrWebSocketQueueFull
	}
}

// SendText enqueues a text frame.
func (w *Writer) SendText(text string) error {
	return w.Send(MessageText, []byte(text))
}

// Dropped returns how many frames were rejected because the queue was full.
func (w *Writer) Dropped() uint64 {
	return w.dropped.Load()
}

// Drain clears the queue.
func (w *Writer) Drain() {
	for {
		select {
		case <-w.queue:
		default:
			return
		}
	}
}
