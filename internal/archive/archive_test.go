package archive

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bmxfeed/internal/obs"
	"bmxfeed/internal/response"
	"bmxfeed/internal/stream"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	batches [][]TradeRecord
	err     error
}

func (s *fakeStore) SaveTrades(ctx context.Context, records []TradeRecord) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.batches = append(s.batches, append([]TradeRecord(nil), records...))
	return nil
}

func (s *fakeStore) ids() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, b := range s.batches {
		for _, r := range b {
			out = append(out, r.TrdMatchID)
		}
	}
	return out
}

func tradeRow(id string) response.Row[response.Trade] {
	return response.Row[response.Trade]{
		Table:  response.TableTrade,
		Action: response.ActionInsert,
		Data: response.Trade{
			Timestamp:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			Symbol:     "XBTUSD",
			Side:       "Buy",
			Size:       100,
			Price:      decimal.RequireFromString("64000.5"),
			TrdMatchID: id,
		},
	}
}

func TestFromTrade(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 1, 0, time.FixedZone("X", 3600))
	rec := FromTrade(tradeRow("a1"), now)

	assert.Equal(t, "a1", rec.TrdMatchID)
	assert.Equal(t, "XBTUSD", rec.Symbol)
	assert.Equal(t, "Buy", rec.Side)
	assert.Equal(t, int64(100), rec.Size)
	assert.True(t, rec.Price.Equal(decimal.RequireFromString("64000.5")))
	assert.Equal(t, "insert", rec.Action)
	assert.Equal(t, time.UTC, rec.ArchivedAt.Location())
	assert.True(t, rec.ArchivedAt.Equal(now))
	assert.Equal(t, "bmx_trades", TradeRecord{}.TableName())
}

func TestArchiverFlushesOnShutdown(t *testing.T) {
	topic := stream.NewTopic[response.Row[response.Trade]]("trades")
	store := &fakeStore{}
	a := NewArchiver(topic, store, 2, obs.Discard{})

	for _, id := range []string{"t1", "t2", "t3"} {
		topic.Publish(tradeRow(id))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return a.Saved() == 3 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("archiver did not stop")
	}

	assert.Equal(t, []string{"t1", "t2", "t3"}, store.ids())
	assert.Zero(t, topic.Subscribers())

	// Trades published after shutdown are not buffered.
	topic.Publish(tradeRow("t4"))
	assert.Equal(t, uint64(3), a.Saved())
}

func TestArchiverDrainsAfterCancel(t *testing.T) {
	topic := stream.NewTopic[response.Row[response.Trade]]("trades")
	store := &fakeStore{}
	a := NewArchiver(topic, store, 10, obs.Discard{})

	topic.Publish(tradeRow("x1"))
	topic.Publish(tradeRow("x2"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a.Run(ctx)

	assert.Equal(t, []string{"x1", "x2"}, store.ids())
	assert.Equal(t, uint64(2), a.Saved())
}

func TestArchiverCloseEndsRunWithLiveContext(t *testing.T) {
	topic := stream.NewTopic[response.Row[response.Trade]]("trades")
	store := &fakeStore{}
	a := NewArchiver(topic, store, 10, obs.Discard{})

	topic.Publish(tradeRow("c1"))
	a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run did not return after close")
	}
	assert.Equal(t, []string{"c1"}, store.ids())
	assert.NoError(t, ctx.Err())
}

func TestArchiverStoreFailure(t *testing.T) {
	topic := stream.NewTopic[response.Row[response.Trade]]("trades")
	store := &fakeStore{err: errors.New("db down")}
	mem := &obs.Memory{}
	a := NewArchiver(topic, store, 10, mem)

	topic.Publish(tradeRow("f1"))
	a.Close()
	a.Run(context.Background())

	assert.Equal(t, uint64(0), a.Saved())
	assert.Equal(t, uint64(1), a.Failed())
	require.Equal(t, 1, mem.Count(obs.LevelError))
	ev := mem.Events()[0]
	assert.Equal(t, SourceTag, ev.Source)
	assert.ErrorContains(t, ev.Err, "db down")
}
