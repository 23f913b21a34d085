package obs

import (
	"sync"

	"github.com/yanun0323/logs"
	"go.uber.org/zap"
)

// Level is the severity of an observability event.
type Level uint8

const (
	LevelDebug Level = iota + 1
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is the single shape every dropped frame or caught failure is reported with.
type Event struct {
	Level   Level
	Source  string
	Message string
	// Raw is the offending frame text, verbatim.
	Raw string
	Err error
}

// Logger is the observability sink. Implementations must be safe for concurrent use.
type Logger interface {
	Log(e Event)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Log(Event) {}

// Logs writes events through the package level yanun0323/logs logger.
type Logs struct{}

func (Logs) Log(e Event) {
	switch e.Level {
	case LevelDebug:
		logs.Debugf("[%s] %s %s", e.Source, e.Message, formatTail(e))
	case LevelInfo:
		logs.Infof("[%s] %s %s", e.Source, e.Message, formatTail(e))
	case LevelWarn:
		logs.Warnf("[%s] %s %s", e.Source, e.Message, formatTail(e))
	default:
		logs.Errorf("[%s] %s %s", e.Source, e.Message, formatTail(e))
	}
}

func formatTail(e Event) string {
	tail := "'" + e.Raw + "'"
	if e.Err != nil {
		tail += ", err: " + e.Err.Error()
	}
	return tail
}

// Zap writes events as structured zap entries.
type Zap struct {
	logger *zap.Logger
}

// NewZap wraps a zap logger. A nil logger falls back to zap.NewNop.
func NewZap(logger *zap.Logger) *Zap {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Zap{logger: logger}
}

func (z *Zap) Log(e Event) {
	fields := make([]zap.Field, 0, 3)
	fields = append(fields, zap.String("source", e.Source), zap.String("raw", e.Raw))
	if e.Err != nil {
		fields = append(fields, zap.Error(e.Err))
	}
	switch e.Level {
	case LevelDebug:
		z.logger.Debug(e.Message, fields...)
	case LevelInfo:
		z.logger.Info(e.Message, fields...)
	case LevelWarn:
		z.logger.Warn(e.Message, fields...)
	default:
		z.logger.Error(e.Message, fields...)
	}
}

// Memory keeps events in memory. Used by tests and diagnostics.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) Log(e Event) {
	m.mu.Lock()
	m.events = append(m.events, e)
	m.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Count returns the number of recorded events at the given level.
func (m *Memory) Count(level Level) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.events {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Reset drops recorded events.
func (m *Memory) Reset() {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
}
