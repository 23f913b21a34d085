package obs

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects lightweight dispatch counters and latency stats.
type Metrics struct {
	frames    uint64
	empty     uint64
	control   uint64
	unhandled uint64
	malformed uint64
	panics    uint64
	sends     uint64
	sendFails uint64
	captured  uint64
	capDrops  uint64

	handled sync.Map // matcher name -> *uint64

	dispatchLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	Frames          uint64
	Empty           uint64
	Control         uint64
	Unhandled       uint64
	Malformed       uint64
	Panics          uint64
	Sends           uint64
	SendFailures    uint64
	Captured        uint64
	CaptureDrops    uint64
	Handled         map[string]uint64
	DispatchLatency LatencySnapshot
}

// HandledKinds returns the matcher names with a non-zero count, sorted.
func (s Snapshot) HandledKinds() []string {
	kinds := make([]string, 0, len(s.Handled))
	for k := range s.Handled {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveFrame counts an inbound data frame and its dispatch duration.
func (m *Metrics) ObserveFrame(d time.Duration) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.frames, 1)
	m.dispatchLatency.Observe(d)
}

func (m *Metrics) IncEmpty() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.empty, 1)
}

func (m *Metrics) IncControl() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.control, 1)
}

// IncHandled records a frame claimed by the named matcher.
func (m *Metrics) IncHandled(kind string) {
	if m == nil {
		return
	}
	v, ok := m.handled.Load(kind)
	if !ok {
		v, _ = m.handled.LoadOrStore(kind, new(uint64))
	}
	atomic.AddUint64(v.(*uint64), 1)
}

func (m *Metrics) IncUnhandled() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.unhandled, 1)
}

func (m *Metrics) IncMalformed() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.malformed, 1)
}

func (m *Metrics) IncPanic() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.panics, 1)
}

// ObserveSend records an outbound request attempt.
func (m *Metrics) ObserveSend(err error) {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.sends, 1)
	if err != nil {
		atomic.AddUint64(&m.sendFails, 1)
	}
}

// ObserveCapture records a recorder append attempt.
func (m *Metrics) ObserveCapture(err error) {
	if m == nil {
		return
	}
	if err != nil {
		atomic.AddUint64(&m.capDrops, 1)
		return
	}
	atomic.AddUint64(&m.captured, 1)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	handled := make(map[string]uint64)
	m.handled.Range(func(key, value any) bool {
		if v := atomic.LoadUint64(value.(*uint64)); v > 0 {
			handled[key.(string)] = v
		}
		return true
	})
	return Snapshot{
		Frames:          atomic.LoadUint64(&m.frames),
		Empty:           atomic.LoadUint64(&m.empty),
		Control:         atomic.LoadUint64(&m.control),
		Unhandled:       atomic.LoadUint64(&m.unhandled),
		Malformed:       atomic.LoadUint64(&m.malformed),
		Panics:          atomic.LoadUint64(&m.panics),
		Sends:           atomic.LoadUint64(&m.sends),
		SendFailures:    atomic.LoadUint64(&m.sendFails),
		Captured:        atomic.LoadUint64(&m.captured),
		CaptureDrops:    atomic.LoadUint64(&m.capDrops),
		Handled:         handled,
		DispatchLatency: m.dispatchLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
