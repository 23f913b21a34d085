package request

import (
	"testing"
	"time"

	"bmxfeed/internal/codec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, r Request) string {
	t.Helper()
	_, raw := r.Raw()
	require.False(t, raw)
	text, err := codec.MarshalString(r)
	require.NoError(t, err)
	return text
}

func TestLiteral(t *testing.T) {
	text, ok := Ping.Raw()
	assert.True(t, ok)
	assert.Equal(t, "ping", text)

	text, ok = Literal("PING").Raw()
	assert.True(t, ok)
	assert.Equal(t, "PING", text)
}

func TestSubscribe(t *testing.T) {
	assert.JSONEq(t,
		`{"op":"subscribe","args":["trade:XBTUSD","orderBookL2_25:XBTUSD","instrument"]}`,
		encode(t, Subscribe(Topic("trade", "XBTUSD"), Topic("orderBookL2_25", "XBTUSD"), Topic("instrument", ""))),
	)
	assert.JSONEq(t, `{"op":"unsubscribe","args":["quote"]}`, encode(t, Unsubscribe("quote")))
}

func TestAuthentication(t *testing.T) {
	sig := Signature("chNOOS4KvNXR_Xq4k4c9qsfoKWvnDecLATCRlcBwyKDYnWgO", 1518064238)
	assert.Equal(t, "e12ec0b5a0f90d41bdbb2e8eced4b103e8043c57c0f9a326ce06e70462d43745", sig)

	assert.JSONEq(t,
		`{"op":"authKeyExpires","args":["LAqUlngMIQkIUjXMUreyu3qn",1518064238,"e12ec0b5a0f90d41bdbb2e8eced4b103e8043c57c0f9a326ce06e70462d43745"]}`,
		encode(t, NewAuthentication("LAqUlngMIQkIUjXMUreyu3qn", "chNOOS4KvNXR_Xq4k4c9qsfoKWvnDecLATCRlcBwyKDYnWgO", 1518064238)),
	)
}

func TestCancelAllAfter(t *testing.T) {
	assert.JSONEq(t, `{"op":"cancelAllAfter","args":[60000]}`, encode(t, CancelAllAfter(time.Minute)))
}
