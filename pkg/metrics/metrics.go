package metrics

import (
	"github.com/nspcc-dev/flatdb/pkg/common"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flatdb"

// Metrics is a Prometheus implementation of common.Metrics.
type Metrics struct {
	tableMetrics
	lockMetrics
}

var _ common.Metrics = (*Metrics)(nil)

// New creates Metrics and registers its collectors in reg. Application
// version is exposed as a constant gauge.
func New(reg prometheus.Registerer, version string) *Metrics {
	table := newTableMetrics()
	table.register(reg)

	lock := newLockMetrics()
	lock.register(reg)

	registerVersionMetric(reg, version)

	return &Metrics{
		tableMetrics: table,
		lockMetrics:  lock,
	}
}
