package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	tableSubsystem = "table"

	tableLabelKey  = "table"
	methodLabelKey = "method"
)

type tableMetrics struct {
	methodDuration *prometheus.HistogramVec
	batchFailures  *prometheus.CounterVec
}

func newTableMetrics() tableMetrics {
	return tableMetrics{
		methodDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: tableSubsystem,
			Name:      "request_duration_seconds",
			Help:      "Table operations handling time",
		}, []string{tableLabelKey, methodLabelKey}),
		batchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: tableSubsystem,
			Name:      "batch_failures_total",
			Help:      "Number of failed units of batch operations",
		}, []string{tableLabelKey}),
	}
}

func (m tableMetrics) register(reg prometheus.Registerer) {
	reg.MustRegister(m.methodDuration)
	reg.MustRegister(m.batchFailures)
}

func (m tableMetrics) AddMethodDuration(table, method string, d time.Duration) {
	m.methodDuration.With(prometheus.Labels{
		tableLabelKey:  table,
		methodLabelKey: method,
	}).Observe(d.Seconds())
}

func (m tableMetrics) AddBatchFailures(table string, n int) {
	m.batchFailures.With(prometheus.Labels{tableLabelKey: table}).Add(float64(n))
}
