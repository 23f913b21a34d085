package response

import (
	"testing"

	"bmxfeed/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	env, err := DecodeEnvelope(`{"table":"trade","action":"insert","success":true,"error":null}`)
	require.NoError(t, err)

	table, ok := env.Table()
	assert.True(t, ok)
	assert.Equal(t, "trade", table)

	success, ok := env.Bool("success")
	assert.True(t, ok)
	assert.True(t, success)

	assert.True(t, env.Has("action"))
	assert.False(t, env.Has("error"))
	assert.False(t, env.Has("missing"))

	_, ok = env.String("success")
	assert.False(t, ok)
}

func TestDecodeEnvelopeFailures(t *testing.T) {
	_, err := DecodeEnvelope(`{"table":`)
	assert.ErrorIs(t, err, exception.ErrMalformedPayload)

	_, err = DecodeEnvelope(`null`)
	assert.ErrorIs(t, err, exception.ErrNotAnObject)

	_, err = DecodeEnvelope(`[1,2]`)
	assert.Error(t, err)
}

func TestEnvelopeDecode(t *testing.T) {
	env, err := DecodeEnvelope(`{"request":{"op":"subscribe","args":["trade"]}}`)
	require.NoError(t, err)

	var echo RequestEcho
	require.NoError(t, env.Decode("request", &echo))
	assert.Equal(t, "subscribe", echo.Op)
	assert.JSONEq(t, `["trade"]`, string(echo.Args))

	err = env.Decode("absent", &echo)
	assert.ErrorIs(t, err, exception.ErrFieldMissing)
}

func TestParseAction(t *testing.T) {
	for _, a := range []Action{ActionPartial, ActionInsert, ActionUpdate, ActionDelete} {
		assert.Equal(t, a, ParseAction(a.String()))
		assert.True(t, a.IsAvailable())
	}
	assert.Equal(t, ActionUnknown, ParseAction("replace"))
	assert.False(t, ActionUnknown.IsAvailable())
}
