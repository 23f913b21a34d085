package router

import (
	"fmt"
	"strings"
	"time"

	"bmxfeed/internal/obs"
	"bmxfeed/internal/response"
	"bmxfeed/internal/source"
	"bmxfeed/internal/stream"
)

// SourceTag identifies router events in the observability sink.
const SourceTag = "bmx-router"

// Router classifies frames and hands each to the first matcher that claims it.
// It keeps no state between calls other than metrics, so Handle may be called
// concurrently from several sources.
type Router struct {
	matchers    []response.Matcher
	rawMatchers []response.RawMatcher
	unhandled   response.Publisher[response.UnhandledFrame]
	logger      obs.Logger
	metrics     *obs.Metrics
}

type Option func(*Router)

// WithMatchers replaces the structured matcher chain. Order is priority.
func WithMatchers(matchers ...response.Matcher) Option {
	return func(r *Router) {
		r.matchers = matchers
	}
}

// WithRawMatchers replaces the raw-text matcher chain. Order is priority.
func WithRawMatchers(matchers ...response.RawMatcher) Option {
	return func(r *Router) {
		r.rawMatchers = matchers
	}
}

func WithLogger(logger obs.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(metrics *obs.Metrics) Option {
	return func(r *Router) {
		r.metrics = metrics
	}
}

// New creates a router bound to hub with the default matcher chains.
func New(hub *stream.Hub, opts ...Option) *Router {
	if hub == nil {
		hub = stream.NewHub()
	}

	r := &Router{
		matchers:    hub.Matchers(),
		rawMatchers: hub.RawMatchers(),
		unhandled:   hub.Unhandled,
		logger:      obs.Logs{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Handle dispatches one frame. It never panics and never returns an error;
// every dropped frame is reported to the logger.
func (r *Router) Handle(frame source.Frame) {
	if r == nil {
		return
	}

	if !frame.IsData() {
		r.metrics.IncControl()
		return
	}

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.metrics.IncPanic()
			r.logger.Log(obs.Event{
				Level:   obs.LevelError,
				Source:  SourceTag,
				Message: "panic while handling frame",
				Raw:     frame.Text,
				Err:     fmt.Errorf("panic: %v", rec),
			})
		}
		r.metrics.ObserveFrame(time.Since(start))
	}()

	text := strings.TrimSpace(frame.Text)
	if len(text) == 0 {
		r.metrics.IncEmpty()
		return
	}

	var (
		name    string
		handled bool
		err     error
	)

	// The two chains are exclusive: an object nobody claims is never offered
	// to the raw matchers.
	if text[0] == '{' {
		env, decodeErr := response.DecodeEnvelope(text)
		if decodeErr != nil {
			r.malformed(text, frame.Seq, "decode frame", decodeErr)
			return
		}
		name, handled, err = r.handleObject(env)
	} else {
		name, handled, err = r.handleRaw(text)
	}

	if err != nil {
		r.malformed(text, frame.Seq, "malformed "+name+" frame", err)
		return
	}

	if handled {
		r.metrics.IncHandled(name)
		return
	}

	r.metrics.IncUnhandled()
	r.logger.Log(obs.Event{
		Level:   obs.LevelWarn,
		Source:  SourceTag,
		Message: "unhandled response",
		Raw:     text,
	})
	r.unhandled.Publish(response.UnhandledFrame{Text: text, Seq: frame.Seq})
}

func (r *Router) handleObject(env *response.Envelope) (string, bool, error) {
	for _, m := range r.matchers {
		handled, err := m.TryHandle(env)
		if handled || err != nil {
			return m.Name(), handled, err
		}
	}
	return "", false, nil
}

func (r *Router) handleRaw(text string) (string, bool, error) {
	for _, m := range r.rawMatchers {
		handled, err := m.TryHandle(text)
		if handled || err != nil {
			return m.Name(), handled, err
		}
	}
	return "", false, nil
}

func (r *Router) malformed(text string, seq uint64, msg string, err error) {
	r.metrics.IncMalformed()
	r.logger.Log(obs.Event{
		Level:   obs.LevelError,
		Source:  SourceTag,
		Message: msg,
		Raw:     text,
		Err:     err,
	})
	r.unhandled.Publish(response.UnhandledFrame{Text: text, Seq: seq, Err: err})
}
