package router

import (
	"testing"

	"bmxfeed/internal/obs"
	"bmxfeed/internal/response"
	"bmxfeed/internal/source"
	"bmxfeed/internal/stream"
	"bmxfeed/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	hub     *stream.Hub
	router  *Router
	logger  *obs.Memory
	metrics *obs.Metrics
}

func newFixture(opts ...Option) fixture {
	f := fixture{
		hub:     stream.NewHub(),
		logger:  &obs.Memory{},
		metrics: obs.NewMetrics(),
	}
	opts = append([]Option{WithLogger(f.logger), WithMetrics(f.metrics)}, opts...)
	f.router = New(f.hub, opts...)
	return f
}

func data(text string) source.Frame {
	return source.Frame{Kind: source.FrameData, Text: text, Seq: 1}
}

func record[T any](topic *stream.Topic[T]) *[]T {
	items := &[]T{}
	topic.Subscribe(func(v T) { *items = append(*items, v) })
	return items
}

func TestHandleTradeBatch(t *testing.T) {
	f := newFixture()
	trades := record(f.hub.Trades)
	quotes := record(f.hub.Quotes)
	unhandled := record(f.hub.Unhandled)

	f.router.Handle(data(`  {"table":"trade","action":"insert","data":[{"symbol":"XBTUSD","size":1},{"symbol":"XBTUSD","size":2},{"symbol":"ETHUSD","size":3}]}  `))

	require.Len(t, *trades, 3)
	assert.Equal(t, "ETHUSD", (*trades)[2].Data.Symbol)
	assert.Empty(t, *quotes)
	assert.Empty(t, *unhandled)
	assert.Empty(t, f.logger.Events())
	assert.Equal(t, map[string]uint64{"trade": 1}, f.metrics.Snapshot().Handled)
}

func TestHandleUnhandledWarnsOnce(t *testing.T) {
	f := newFixture()
	unhandled := record(f.hub.Unhandled)

	raw := `{"table":"announcement","action":"insert","data":[]}`
	f.router.Handle(data(raw))

	events := f.logger.Events()
	require.Len(t, events, 1)
	assert.Equal(t, obs.LevelWarn, events[0].Level)
	assert.Equal(t, SourceTag, events[0].Source)
	assert.Equal(t, raw, events[0].Raw)

	require.Len(t, *unhandled, 1)
	assert.Equal(t, raw, (*unhandled)[0].Text)
	assert.NoError(t, (*unhandled)[0].Err)
	assert.Equal(t, uint64(1), f.metrics.Snapshot().Unhandled)
}

func TestHandleUnknownRawText(t *testing.T) {
	f := newFixture()
	pongs := record(f.hub.Pongs)

	f.router.Handle(data("pong"))
	f.router.Handle(data("hello"))

	assert.Len(t, *pongs, 1)
	assert.Equal(t, 1, f.logger.Count(obs.LevelWarn))
}

func TestObjectFrameSkipsRawMatchers(t *testing.T) {
	pongs := stream.NewTopic[response.PongResponse]("pongs")
	anyText := response.RegisterRaw("any", func(string) bool { return true },
		func(text string) (response.PongResponse, error) {
			return response.PongResponse{Message: text}, nil
		}, pongs)
	f := newFixture(WithMatchers(), WithRawMatchers(anyText))
	got := record(pongs)
	unhandled := record(f.hub.Unhandled)

	f.router.Handle(data(`{"unknown":true}`))
	assert.Empty(t, *got)
	require.Len(t, *unhandled, 1)

	f.router.Handle(data("hello"))
	assert.Equal(t, []response.PongResponse{{Message: "hello"}}, *got)
}

func TestHandleErrorSpecificity(t *testing.T) {
	f := newFixture()
	errs := record(f.hub.Errors)
	trades := record(f.hub.Trades)
	subs := record(f.hub.Subscriptions)

	f.router.Handle(data(`{"status":400,"error":"Unknown or expired signature.","table":"trade","action":"insert","data":[{"symbol":"XBTUSD"}],"subscribe":"trade"}`))

	require.Len(t, *errs, 1)
	assert.Equal(t, "Unknown or expired signature.", (*errs)[0].Error)
	assert.Empty(t, *trades)
	assert.Empty(t, *subs)
}

type claimAll struct {
	name  string
	calls *[]string
}

func (c claimAll) Name() string { return c.name }

func (c claimAll) TryHandle(*response.Envelope) (bool, error) {
	*c.calls = append(*c.calls, c.name)
	return true, nil
}

func TestMatcherOrderIsPriority(t *testing.T) {
	var calls []string
	f := newFixture(WithMatchers(
		claimAll{name: "first", calls: &calls},
		claimAll{name: "second", calls: &calls},
	))

	f.router.Handle(data(`{"table":"trade"}`))
	assert.Equal(t, []string{"first"}, calls)

	calls = nil
	f = newFixture(WithMatchers(
		claimAll{name: "second", calls: &calls},
		claimAll{name: "first", calls: &calls},
	))
	f.router.Handle(data(`{"table":"trade"}`))
	assert.Equal(t, []string{"second"}, calls)
}

func TestOverlappingPredicatesFirstWins(t *testing.T) {
	hub := stream.NewHub()
	narrow := stream.NewTopic[response.Row[response.Trade]]("narrow")
	wide := stream.NewTopic[response.Row[response.Trade]]("wide")

	narrowItems := record(narrow)
	wideItems := record(wide)

	r := New(hub,
		WithLogger(obs.Discard{}),
		WithMatchers(
			response.TradeMatcher(narrow),
			response.TradeMatcher(wide),
		),
	)

	r.Handle(data(`{"table":"trade","action":"partial","data":[{"symbol":"XBTUSD"}]}`))
	assert.Len(t, *narrowItems, 1)
	assert.Empty(t, *wideItems)
}

func TestHandleMalformedFrame(t *testing.T) {
	f := newFixture()
	trades := record(f.hub.Trades)
	unhandled := record(f.hub.Unhandled)

	raw := `{"table":"trade","action":"insert","data":[{"symbol":"XBTUSD","size":"big"}]}`
	f.router.Handle(data(raw))

	assert.Empty(t, *trades)
	events := f.logger.Events()
	require.Len(t, events, 1)
	assert.Equal(t, obs.LevelError, events[0].Level)
	assert.Equal(t, raw, events[0].Raw)
	assert.ErrorIs(t, events[0].Err, exception.ErrMalformedPayload)

	require.Len(t, *unhandled, 1)
	assert.ErrorIs(t, (*unhandled)[0].Err, exception.ErrMalformedPayload)
	assert.Equal(t, uint64(1), f.metrics.Snapshot().Malformed)
}

func TestHandleBrokenJSON(t *testing.T) {
	f := newFixture()

	f.router.Handle(data(`{"table":"trade",`))

	assert.Equal(t, 1, f.logger.Count(obs.LevelError))
	assert.Equal(t, uint64(1), f.metrics.Snapshot().Malformed)
}

func TestHandleEmptyBatch(t *testing.T) {
	f := newFixture()
	books := record(f.hub.Books)

	f.router.Handle(data(`{"table":"orderBookL2","action":"partial","data":[]}`))

	assert.Empty(t, *books)
	assert.Empty(t, f.logger.Events())
	assert.Equal(t, map[string]uint64{"book": 1}, f.metrics.Snapshot().Handled)
}

func TestHandleIgnoresEmptyAndLifecycle(t *testing.T) {
	f := newFixture()
	unhandled := record(f.hub.Unhandled)

	f.router.Handle(data(""))
	f.router.Handle(data(" \r\n\t"))
	f.router.Handle(source.Frame{Kind: source.FrameConnected})
	f.router.Handle(source.Frame{Kind: source.FrameDisconnected, Text: "eof"})

	assert.Empty(t, *unhandled)
	assert.Empty(t, f.logger.Events())

	s := f.metrics.Snapshot()
	assert.Equal(t, uint64(2), s.Empty)
	assert.Equal(t, uint64(2), s.Control)
}

func TestHandleRecoversSubscriberPanic(t *testing.T) {
	f := newFixture()
	f.hub.Quotes.Subscribe(func(response.Row[response.Quote]) {
		panic("subscriber failed")
	})
	trades := record(f.hub.Trades)

	assert.NotPanics(t, func() {
		f.router.Handle(data(`{"table":"quote","action":"insert","data":[{"symbol":"XBTUSD"}]}`))
	})
	f.router.Handle(data(`{"table":"trade","action":"insert","data":[{"symbol":"XBTUSD"}]}`))

	assert.Equal(t, 1, f.logger.Count(obs.LevelError))
	assert.Len(t, *trades, 1)
	assert.Equal(t, uint64(1), f.metrics.Snapshot().Panics)
}

func TestNilRouter(t *testing.T) {
	var r *Router
	assert.NotPanics(t, func() { r.Handle(data("pong")) })
}
