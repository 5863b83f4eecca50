package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/nspcc-dev/flatdb/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, "v0.1.0")

	require.Panics(t, func() {
		_ = metrics.New(reg, "v0.1.0")
	}, "collectors must be registered once")

	m.AddMethodDuration("users", "Get", time.Millisecond)
	m.AddMethodDuration("users", "Set", time.Millisecond)
	m.AddBatchFailures("users", 2)
	m.AddBatchFailures("users", 1)
	m.AddLockWait(10 * time.Millisecond)
	m.IncLockTimeout()

	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP flatdb_table_batch_failures_total Number of failed units of batch operations
# TYPE flatdb_table_batch_failures_total counter
flatdb_table_batch_failures_total{table="users"} 3
# HELP flatdb_lock_timeouts_total Number of lock acquisitions failed by timeout
# TYPE flatdb_lock_timeouts_total counter
flatdb_lock_timeouts_total 1
# HELP flatdb_version Application version
# TYPE flatdb_version gauge
flatdb_version{version="v0.1.0"} 1
`), "flatdb_table_batch_failures_total", "flatdb_lock_timeouts_total", "flatdb_version"))

	n, err := testutil.GatherAndCount(reg, "flatdb_table_request_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = testutil.GatherAndCount(reg, "flatdb_lock_wait_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
