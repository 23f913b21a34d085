package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bmxfeed"

// Collector exports Metrics snapshots to prometheus.
type Collector struct {
	metrics *Metrics

	frames       *prometheus.Desc
	dropped      *prometheus.Desc
	handled      *prometheus.Desc
	panics       *prometheus.Desc
	sends        *prometheus.Desc
	sendFailures *prometheus.Desc
	captured     *prometheus.Desc
	dispatchAvg  *prometheus.Desc
	dispatchMax  *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector builds a collector reading from m.
func NewCollector(m *Metrics) *Collector {
	return &Collector{
		metrics:      m,
		frames:       prometheus.NewDesc(namespace+"_frames_total", "Inbound data frames dispatched by the router.", nil, nil),
		dropped:      prometheus.NewDesc(namespace+"_frames_dropped_total", "Frames dropped by the router, by reason.", []string{"reason"}, nil),
		handled:      prometheus.NewDesc(namespace+"_frames_handled_total", "Frames claimed by a matcher.", []string{"kind"}, nil),
		panics:       prometheus.NewDesc(namespace+"_dispatch_panics_total", "Recovered panics during dispatch.", nil, nil),
		sends:        prometheus.NewDesc(namespace+"_requests_sent_total", "Outbound requests attempted.", nil, nil),
		sendFailures: prometheus.NewDesc(namespace+"_requests_failed_total", "Outbound requests that failed.", nil, nil),
		captured:     prometheus.NewDesc(namespace+"_captured_frames_total", "Frames appended to the session recorder, by result.", []string{"result"}, nil),
		dispatchAvg:  prometheus.NewDesc(namespace+"_dispatch_seconds_avg", "Average dispatch duration.", nil, nil),
		dispatchMax:  prometheus.NewDesc(namespace+"_dispatch_seconds_max", "Maximum dispatch duration.", nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.frames
	ch <- c.dropped
	ch <- c.handled
	ch <- c.panics
	ch <- c.sends
	ch <- c.sendFailures
	ch <- c.captured
	ch <- c.dispatchAvg
	ch <- c.dispatchMax
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.metrics.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.frames, prometheus.CounterValue, float64(s.Frames))
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(s.Empty), "empty")
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(s.Unhandled), "unhandled")
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(s.Malformed), "malformed")
	for _, kind := range s.HandledKinds() {
		ch <- prometheus.MustNewConstMetric(c.handled, prometheus.CounterValue, float64(s.Handled[kind]), kind)
	}
	ch <- prometheus.MustNewConstMetric(c.panics, prometheus.CounterValue, float64(s.Panics))
	ch <- prometheus.MustNewConstMetric(c.sends, prometheus.CounterValue, float64(s.Sends))
	ch <- prometheus.MustNewConstMetric(c.sendFailures, prometheus.CounterValue, float64(s.SendFailures))
	ch <- prometheus.MustNewConstMetric(c.captured, prometheus.CounterValue, float64(s.Captured), "ok")
	ch <- prometheus.MustNewConstMetric(c.captured, prometheus.CounterValue, float64(s.CaptureDrops), "dropped")
	ch <- prometheus.MustNewConstMetric(c.dispatchAvg, prometheus.GaugeValue, s.DispatchLatency.Avg.Seconds())
	ch <- prometheus.MustNewConstMetric(c.dispatchMax, prometheus.GaugeValue, s.DispatchLatency.Max.Seconds())
}
