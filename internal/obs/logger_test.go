package obs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMemoryLogger(t *testing.T) {
	var m Memory
	m.Log(Event{Level: LevelWarn, Source: "test", Message: "unhandled", Raw: "x"})
	m.Log(Event{Level: LevelError, Source: "test", Message: "malformed", Raw: "y"})
	m.Log(Event{Level: LevelWarn, Source: "test", Message: "unhandled", Raw: "z"})

	assert.Equal(t, 2, m.Count(LevelWarn))
	assert.Equal(t, 1, m.Count(LevelError))
	events := m.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "y", events[1].Raw)

	m.Reset()
	assert.Empty(t, m.Events())
}

func TestZapLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	z := NewZap(zap.New(core))

	z.Log(Event{Level: LevelWarn, Source: "bmx-router", Message: "unhandled frame", Raw: "hello"})
	z.Log(Event{Level: LevelError, Source: "bmx-router", Message: "malformed frame", Raw: "{}", Err: errors.New("bad")})

	entries := recorded.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "unhandled frame", entries[0].Message)
	assert.Equal(t, "hello", entries[0].ContextMap()["raw"])
	assert.Equal(t, "bmx-router", entries[0].ContextMap()["source"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "bad", entries[1].ContextMap()["error"])
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "warn", LevelWarn.String())
	assert.Equal(t, "unknown", Level(0).String())
}
