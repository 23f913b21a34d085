package client

import (
	"context"
	"time"

	"bmxfeed/internal/codec"
	"bmxfeed/internal/errors"
	"bmxfeed/internal/obs"
	"bmxfeed/internal/request"
	"bmxfeed/internal/router"
	"bmxfeed/internal/source"
	"bmxfeed/internal/stream"
	"bmxfeed/pkg/exception"
)

// SourceTag identifies client events in the observability sink.
const SourceTag = "bmx-client"

// authExpiry is how long a signed authentication request stays valid.
const authExpiry = 60 * time.Second

// Client binds a frame source to a router and exposes the typed streams.
type Client struct {
	src     source.Source
	hub     *stream.Hub
	router  *router.Router
	logger  obs.Logger
	metrics *obs.Metrics
	now     func() time.Time
}

type options struct {
	logger     obs.Logger
	metrics    *obs.Metrics
	routerOpts []router.Option
}

type Option func(*options)

func WithLogger(logger obs.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithMetrics(metrics *obs.Metrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// WithRouterOptions passes extra options to the router, applied after logger and metrics.
func WithRouterOptions(opts ...router.Option) Option {
	return func(o *options) {
		o.routerOpts = append(o.routerOpts, opts...)
	}
}

// New creates a client and registers the router as the source listener.
func New(src source.Source, opts ...Option) (*Client, error) {
	if src == nil {
		return nil, errors.Wrap(exception.ErrNilInstance, "source")
	}

	o := options{logger: obs.Logs{}}
	for _, opt := range opts {
		opt(&o)
	}

	hub := stream.NewHub()
	routerOpts := append([]router.Option{
		router.WithLogger(o.logger),
		router.WithMetrics(o.metrics),
	}, o.routerOpts...)

	c := &Client{
		src:     src,
		hub:     hub,
		router:  router.New(hub, routerOpts...),
		logger:  o.logger,
		metrics: o.metrics,
		now:     time.Now,
	}
	src.Listen(c.router.Handle)

	return c, nil
}

// Streams returns the per-kind topics.
func (c *Client) Streams() *stream.Hub {
	return c.hub
}

func (c *Client) Router() *router.Router {
	return c.router
}

// Start starts the source. For a replay source it returns after the last record.
func (c *Client) Start(ctx context.Context) error {
	return c.src.Start(ctx)
}

func (c *Client) Stop(ctx context.Context) error {
	return c.src.Stop(ctx)
}

// Send serializes req and hands it to the source. Raw requests are sent
// verbatim. Failures are logged and returned.
func (c *Client) Send(ctx context.Context, req request.Request) error {
	if req == nil {
		err := exception.ErrNilRequest
		c.logSendFailure("", err)
		return err
	}

	text, raw := req.Raw()
	if !raw {
		encoded, err := codec.MarshalString(req)
		if err != nil {
			err = errors.Wrap(err, "encode request")
			c.logSendFailure("", err)
			return err
		}
		text = encoded
	}

	err := c.src.Send(ctx, text)
	c.metrics.ObserveSend(err)
	if err != nil {
		err = errors.Mark(exception.ErrSendFailed, err)
		c.logSendFailure(text, err)
		return err
	}
	return nil
}

// Authenticate sends a signed authKeyExpires request valid for one minute.
func (c *Client) Authenticate(ctx context.Context, apiKey, apiSecret string) error {
	expires := c.now().Add(authExpiry).Unix()
	return c.Send(ctx, request.NewAuthentication(apiKey, apiSecret, expires))
}

func (c *Client) logSendFailure(text string, err error) {
	c.logger.Log(obs.Event{
		Level:   obs.LevelError,
		Source:  SourceTag,
		Message: "send request failed",
		Raw:     text,
		Err:     err,
	})
}
