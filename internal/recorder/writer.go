package recorder

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"bmxfeed/internal/errors"
	"bmxfeed/pkg/exception"

	"github.com/google/uuid"
)

// Writer appends frame text to delimited segment files from a buffered queue.
// Segments are UTF-8 and replay through Playback with the same delimiter.
type Writer struct {
	cfg     Config
	session string
	ch      chan string
	wg      sync.WaitGroup
	err     atomic.Value

	mu    sync.Mutex
	files []string

	started uint32
	closed  uint32
}

// NewWriter creates a capture writer and ensures the target directory exists.
func NewWriter(cfg Config) (*Writer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}
	return &Writer{
		cfg:     cfg,
		session: strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
		ch:      make(chan string, cfg.QueueSize),
	}, nil
}

// Session identifies this writer in segment names.
func (w *Writer) Session() string {
	return w.session
}

// Delimiter returns the record separator written after each record.
func (w *Writer) Delimiter() string {
	return w.cfg.Delimiter
}

// Start runs the writer loop in a new goroutine.
func (w *Writer) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapUint32(&w.started, 0, 1) {
		return exception.ErrRecorderAlreadyStarted
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
	return nil
}

// Close stops the writer and flushes any buffered data.
func (w *Writer) Close() error {
	if atomic.CompareAndSwapUint32(&w.closed, 0, 1) {
		close(w.ch)
	}
	w.wg.Wait()
	return w.Err()
}

// Err returns the first error observed by the writer, if any.
func (w *Writer) Err() error {
	if v := w.err.Load(); v != nil {
		return v.(error)
	}
	return nil
}

// Files returns the segments opened so far, in creation order.
func (w *Writer) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.files))
	copy(out, w.files)
	return out
}

// TryAppend enqueues a record without blocking.
func (w *Writer) TryAppend(text string) error {
	if atomic.LoadUint32(&w.closed) != 0 {
		return exception.ErrRecorderClosed
	}
	if atomic.LoadUint32(&w.started) == 0 {
		return exception.ErrRecorderNotStarted
	}
	if err := w.Err(); err != nil {
		return err
	}
	// The first delimiter in text+delimiter must be the appended one,
	// otherwise a tail like "abc;" with ";;" splits early on replay.
	if strings.Index(text+w.cfg.Delimiter, w.cfg.Delimiter) != len(text) {
		return exception.ErrRecorderDelimiterInRec
	}

	select {
	case w.ch <- text:
		return nil
	default:
		return exception.ErrRecorderQueueFull
	}
}

func (w *Writer) run(ctx context.Context) {
	var (
		seg         *segmentWriter
		segID       uint64
		flushC      <-chan time.Time
		syncC       <-chan time.Time
		flushTicker *time.Ticker
		syncTicker  *time.Ticker
	)

	if w.cfg.FlushInterval > 0 {
		flushTicker = time.NewTicker(w.cfg.FlushInterval)
		flushC = flushTicker.C
	}
	if w.cfg.SyncInterval > 0 {
		syncTicker = time.NewTicker(w.cfg.SyncInterval)
		syncC = syncTicker.C
	}

	defer func() {
		if flushTicker != nil {
			flushTicker.Stop()
		}
		if syncTicker != nil {
			syncTicker.Stop()
		}
		if err := seg.close(); err != nil {
			w.setErr(err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.drainNonBlocking(&seg, &segID)
			return
		case text, ok := <-w.ch:
			if !ok {
				return
			}
			if err := w.writeRecord(&seg, &segID, text); err != nil {
				w.setErr(err)
				return
			}
		case <-flushC:
			if err := seg.flush(); err != nil {
				w.setErr(err)
				return
			}
		case <-syncC:
			if err := seg.sync(); err != nil {
				w.setErr(err)
				return
			}
		}
	}
}

func (w *Writer) drainNonBlocking(seg **segmentWriter, segID *uint64) {
	for {
		select {
		case text, ok := <-w.ch:
			if !ok {
				return
			}
			if err := w.writeRecord(seg, segID, text); err != nil {
				w.setErr(err)
				return
			}
		default:
			return
		}
	}
}

func (w *Writer) writeRecord(seg **segmentWriter, segID *uint64, text string) error {
	now := time.Now().UTC()
	recordSize := int64(len(text) + len(w.cfg.Delimiter))
	if w.shouldRotate(*seg, now, recordSize) {
		if err := (*seg).close(); err != nil {
			return err
		}
		opened, err := w.openSegment(segID, now)
		if err != nil {
			return err
		}
		*seg = opened
	}

	if _, err := (*seg).buf.WriteString(text); err != nil {
		return err
	}
	if _, err := (*seg).buf.WriteString(w.cfg.Delimiter); err != nil {
		return err
	}

	(*seg).size += recordSize
	return nil
}

func (w *Writer) shouldRotate(seg *segmentWriter, now time.Time, nextSize int64) bool {
	if seg == nil {
		return true
	}
	if seg.size > 0 && seg.size+nextSize > w.cfg.SegmentMaxBytes {
		return true
	}
	if w.cfg.SegmentMaxDuration > 0 && now.Sub(seg.openedAt) >= w.cfg.SegmentMaxDuration {
		return true
	}
	return false
}

func (w *Writer) openSegment(segID *uint64, now time.Time) (*segmentWriter, error) {
	ts := now.Format("20060102-150405")
	for {
		*segID = *segID + 1
		name := fmt.Sprintf("%s-%s-%s-%06d%s", w.cfg.FilePrefix, ts, w.session, *segID, segmentExt)
		path := filepath.Join(w.cfg.Dir, name)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
		if err != nil {
			if errors.Is(err, os.ErrExist) {
				continue
			}
			return nil, err
		}

		w.mu.Lock()
		w.files = append(w.files, path)
		w.mu.Unlock()

		return &segmentWriter{
			file:     file,
			buf:      bufio.NewWriterSize(file, w.cfg.BufferSize),
			openedAt: now,
		}, nil
	}
}

func (w *Writer) setErr(err error) {
	if err == nil {
		return
	}
	if w.err.Load() != nil {
		return
	}
	w.err.Store(err)
}

type segmentWriter struct {
	file     *os.File
	buf      *bufio.Writer
	size     int64
	openedAt time.Time
}

func (s *segmentWriter) flush() error {
	if s == nil {
		return nil
	}
	return s.buf.Flush()
}

func (s *segmentWriter) sync() error {
	if s == nil {
		return nil
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	return s.file.Sync()
}

func (s *segmentWriter) close() error {
	if s == nil {
		return nil
	}
	if err := s.sync(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}
