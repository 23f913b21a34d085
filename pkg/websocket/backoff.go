package websocket

import (
	"math/rand/v2"
	"time"
)

// DefaultBackoff provides conservative reconnect defaults.
func DefaultBackoff() Backoff {
	return Backoff{
		Min:    250 * time.Millisecond,
		Max:    30 * time.Second,
		Factor: 2.0,
		Jitter: 0.2,
	}
}

// IsZero reports whether no field is set.
func (b Backoff) IsZero() bool {
	return b == Backoff{}
}

// Next returns the delay before reconnect attempt (1-based).
func (b Backoff) Next(attempt int) time.Duration {
	attempt = max(attempt, 1)
	lo := b.Min
	if lo <= 0 {
		lo = 100 * time.Millisecond
	}
	hi := b.Max
	if hi <= 0 {
		hi = 5 * time.Second
	}
	hi = max(hi, lo)
	factor := b.Factor
	if factor <= 1 {
		factor = 2.0
	}

	wait := lo
	for range attempt - 1 {
		wait = time.Duration(float64(wait) * factor)
		if wait >= hi {
			wait = hi
			break
		}
	}

	jitter := min(b.Jitter, 1)
	if jitter <= 0 {
		return wait
	}
	delta := float64(wait) * jitter
	return wait - time.Duration(delta) + time.Duration(rand.Float64()*2*delta)
}
