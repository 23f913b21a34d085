package recorder

import (
	"context"
	"sync/atomic"

	"bmxfeed/internal/errors"
	"bmxfeed/internal/obs"
	"bmxfeed/internal/source"
	"bmxfeed/pkg/exception"
)

var _ source.Source = (*CaptureSource)(nil)

// CaptureSource tees data frames of a source into a Writer. Append failures
// are counted and never delay delivery to the listener.
type CaptureSource struct {
	src     source.Source
	w       *Writer
	metrics *obs.Metrics
	handler atomic.Pointer[source.Handler]
}

// Capture wraps src. The writer is started by Start and closed by Stop.
func Capture(src source.Source, w *Writer, metrics *obs.Metrics) *CaptureSource {
	c := &CaptureSource{src: src, w: w, metrics: metrics}
	src.Listen(c.onFrame)
	return c
}

func (c *CaptureSource) Listen(h source.Handler) {
	if h == nil {
		c.handler.Store(nil)
		return
	}
	c.handler.Store(&h)
}

func (c *CaptureSource) Start(ctx context.Context) error {
	if err := c.w.Start(ctx); err != nil && !errors.Is(err, exception.ErrRecorderAlreadyStarted) {
		return err
	}
	return c.src.Start(ctx)
}

// Stop stops the wrapped source, then flushes and closes the writer.
func (c *CaptureSource) Stop(ctx context.Context) error {
	err := c.src.Stop(ctx)
	if closeErr := c.w.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}

func (c *CaptureSource) Send(ctx context.Context, text string) error {
	return c.src.Send(ctx, text)
}

func (c *CaptureSource) onFrame(frame source.Frame) {
	if frame.IsData() {
		c.metrics.ObserveCapture(c.w.TryAppend(frame.Text))
	}
	if h := c.handler.Load(); h != nil {
		(*h)(frame)
	}
}
