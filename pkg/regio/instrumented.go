package regio

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Instrumented counts the register accesses of a sink.
type Instrumented struct {
	Sink

	ops     *prometheus.CounterVec
	latency prometheus.Histogram
}

// NewInstrumented wraps s and registers its metrics with reg.
func NewInstrumented(s Sink, reg prometheus.Registerer) (*Instrumented, error) {
	i := &Instrumented{
		Sink: s,
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "defe",
			Name:      "register_ops_total",
			Help:      "Register accesses by operation and result.",
		}, []string{"op", "result"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "defe",
			Name:      "register_write_seconds",
			Help:      "Time spent in a register write.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
		}),
	}
	for _, c := range []prometheus.Collector{i.ops, i.latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return i, nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (i *Instrumented) Write(offset, value uint32) error {
	start := time.Now()
	err := i.Sink.Write(offset, value)
	i.latency.Observe(time.Since(start).Seconds())
	i.ops.WithLabelValues("write", result(err)).Inc()
	return err
}

func (i *Instrumented) Read(offset uint32) (uint32, error) {
	v, err := i.Sink.Read(offset)
	i.ops.WithLabelValues("read", result(err)).Inc()
	return v, err
}
