package archive

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"bmxfeed/internal/obs"
	"bmxfeed/internal/response"
	"bmxfeed/internal/stream"
)

// SourceTag identifies archiver events in the observability sink.
const SourceTag = "bmx-archive"

const (
	defaultBatchSize  = 100
	defaultQueueSize  = 8192
	finalFlushTimeout = 5 * time.Second
)

// Archiver buffers trades from a topic and saves them in batches off the
// dispatch path. The queue drops the oldest trade when the store falls behind.
type Archiver struct {
	queue     *stream.Queue[response.Row[response.Trade]]
	store     Store
	batchSize int
	logger    obs.Logger
	now       func() time.Time

	saved  atomic.Uint64
	failed atomic.Uint64
}

// NewArchiver subscribes to topic immediately; trades are buffered until Run.
func NewArchiver(topic *stream.Topic[response.Row[response.Trade]], store Store, batchSize int, logger obs.Logger) *Archiver {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if logger == nil {
		logger = obs.Logs{}
	}
	return &Archiver{
		queue:     stream.Subscribe(topic, defaultQueueSize, stream.OverflowDropOldest),
		store:     store,
		batchSize: batchSize,
		logger:    logger,
		now:       time.Now,
	}
}

// Run saves batches until ctx is done or Close is called, then flushes what
// is left. The ctx watcher has exited by the time Run returns.
func (a *Archiver) Run(ctx context.Context) {
	done := make(chan struct{})
	var watcher sync.WaitGroup
	watcher.Add(1)
	go func() {
		defer watcher.Done()
		select {
		case <-ctx.Done():
			a.queue.Close()
		case <-done:
		}
	}()
	defer func() {
		close(done)
		watcher.Wait()
	}()

	batch := make([]TradeRecord, 0, a.batchSize)
	for {
		row, ok := a.queue.Next()
		if !ok {
			return
		}
		batch = append(batch, FromTrade(row, a.now()))
		for len(batch) < a.batchSize {
			more, ok := a.queue.TryNext()
			if !ok {
				break
			}
			batch = append(batch, FromTrade(more, a.now()))
		}
		a.flush(ctx, batch)
		batch = batch[:0]
	}
}

// Close detaches from the topic. Run returns after draining.
func (a *Archiver) Close() {
	a.queue.Close()
}

// Saved returns how many trades were written.
func (a *Archiver) Saved() uint64 {
	return a.saved.Load()
}

// Failed returns how many trades could not be written.
func (a *Archiver) Failed() uint64 {
	return a.failed.Load()
}

// Dropped returns how many trades were discarded because the queue was full.
func (a *Archiver) Dropped() uint64 {
	return a.queue.Dropped()
}

func (a *Archiver) flush(ctx context.Context, batch []TradeRecord) {
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), finalFlushTimeout)
		defer cancel()
	}

	if err := a.store.SaveTrades(ctx, batch); err != nil {
		a.failed.Add(uint64(len(batch)))
		a.logger.Log(obs.Event{
			Level:   obs.LevelError,
			Source:  SourceTag,
			Message: "archive trades failed",
			Err:     err,
		})
		return
	}
	a.saved.Add(uint64(len(batch)))
}
