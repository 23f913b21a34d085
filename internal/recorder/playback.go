package recorder

import (
	"context"
	"io"
	"os"
	"sync/atomic"
	"time"

	"bmxfeed/internal/errors"
	"bmxfeed/internal/source"
	"bmxfeed/pkg/exception"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

var _ source.Source = (*Playback)(nil)

// Playback replays captured records as data frames. Start reads every file
// to the end on the caller's goroutine; Send and Stop do nothing.
type Playback struct {
	cfg     PlaybackConfig
	enc     encoding.Encoding
	handler atomic.Pointer[source.Handler]
	running atomic.Bool
}

// NewPlayback validates the config and creates a replay source.
func NewPlayback(cfg PlaybackConfig) (*Playback, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	enc, err := lookupEncoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}

	files := make([]string, len(cfg.Files))
	copy(files, cfg.Files)
	cfg.Files = files

	return &Playback{cfg: cfg, enc: enc}, nil
}

// Files returns the replay order.
func (p *Playback) Files() []string {
	out := make([]string, len(p.cfg.Files))
	copy(out, p.cfg.Files)
	return out
}

func (p *Playback) Listen(h source.Handler) {
	if h == nil {
		p.handler.Store(nil)
		return
	}
	p.handler.Store(&h)
}

// Start replays every file in order and returns when the last record was
// delivered. All files are opened before the first record is emitted.
func (p *Playback) Start(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return exception.ErrReplayRunning
	}
	defer p.running.Store(false)

	files, err := p.openAll()
	if err != nil {
		return err
	}
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()

	var seq uint64
	for i, f := range files {
		if err := p.playFile(ctx, p.cfg.Files[i], f, &seq); err != nil {
			return err
		}
	}
	return nil
}

func (p *Playback) Stop(context.Context) error {
	return nil
}

func (p *Playback) Send(context.Context, string) error {
	return nil
}

func (p *Playback) openAll() ([]*os.File, error) {
	files := make([]*os.File, 0, len(p.cfg.Files))
	fail := func(path string, err error) ([]*os.File, error) {
		for _, f := range files {
			_ = f.Close()
		}
		return nil, errors.Mark(exception.ErrReplayUnreadable, errors.Wrapf(err, "path: %s", path))
	}

	for _, path := range p.cfg.Files {
		f, err := os.Open(path)
		if err != nil {
			return fail(path, err)
		}
		info, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return fail(path, err)
		}
		if info.IsDir() {
			_ = f.Close()
			return fail(path, errors.New("is a directory"))
		}
		files = append(files, f)
	}
	return files, nil
}

func (p *Playback) playFile(ctx context.Context, path string, f *os.File, seq *uint64) error {
	reader, err := NewReader(transform.NewReader(f, p.enc.NewDecoder()), p.cfg.Delimiter)
	if err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		text, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Mark(exception.ErrReplayUnreadable, errors.Wrapf(err, "read %s", path))
		}

		*seq++
		if h := p.handler.Load(); h != nil {
			(*h)(source.Frame{
				Kind:     source.FrameData,
				Text:     text,
				Seq:      *seq,
				Origin:   path,
				Received: time.Now(),
			})
		}
	}
}
