package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const lockSubsystem = "lock"

type lockMetrics struct {
	wait     prometheus.Histogram
	timeouts prometheus.Counter
}

func newLockMetrics() lockMetrics {
	return lockMetrics{
		wait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: lockSubsystem,
			Name:      "wait_duration_seconds",
			Help:      "Time spent acquiring chunk locks",
			Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2, 5},
		}),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: lockSubsystem,
			Name:      "timeouts_total",
			Help:      "Number of lock acquisitions failed by timeout",
		}),
	}
}

func (m lockMetrics) register(reg prometheus.Registerer) {
	reg.MustRegister(m.wait)
	reg.MustRegister(m.timeouts)
}

func (m lockMetrics) AddLockWait(d time.Duration) {
	m.wait.Observe(d.Seconds())
}

func (m lockMetrics) IncLockTimeout() {
	m.timeouts.Inc()
}
