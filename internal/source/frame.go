package source

import "time"

// FrameKind distinguishes payload frames from connection lifecycle signals.
type FrameKind uint8

const (
	_frame_beg FrameKind = iota
	FrameData
	FrameConnected
	FrameDisconnected
	_frame_end
)

func (k FrameKind) IsAvailable() bool {
	return k > _frame_beg && k < _frame_end
}

func (k FrameKind) String() string {
	switch k {
	case FrameData:
		return "data"
	case FrameConnected:
		return "connected"
	case FrameDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Frame is one unit of inbound text. Seq starts at 1 and is assigned by the
// source instance in arrival order.
type Frame struct {
	Kind     FrameKind
	Text     string
	Seq      uint64
	Origin   string
	Received time.Time
}

// IsData reports whether the frame carries a payload.
func (f Frame) IsData() bool {
	return f.Kind == FrameData
}
