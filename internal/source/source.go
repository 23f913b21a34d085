package source

import "context"

// Handler receives frames in arrival order on the source's delivery goroutine.
type Handler func(frame Frame)

// Source produces frames from a live connection or a replay.
//
// Listen must be called before Start. Stop is idempotent and safe before Start.
type Source interface {
	Listen(h Handler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Send(ctx context.Context, text string) error
}
