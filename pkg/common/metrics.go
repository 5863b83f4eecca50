package common

import "time"

// Metrics is an interface for the storage metrics collector.
type Metrics interface {
	// AddMethodDuration records the duration of a table method call.
	AddMethodDuration(table, method string, d time.Duration)
	// AddLockWait records time spent acquiring a lock, successful or not.
	AddLockWait(d time.Duration)
	// IncLockTimeout counts lock acquisitions that timed out.
	IncLockTimeout()
	// AddBatchFailures counts failed units of a batch operation.
	AddBatchFailures(table string, n int)
}

type noopMetrics struct{}

// NoopMetrics returns Metrics that do nothing.
func NoopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) AddMethodDuration(string, string, time.Duration) {}
func (noopMetrics) AddLockWait(time.Duration)                       {}
func (noopMetrics) IncLockTimeout()                                 {}
func (noopMetrics) AddBatchFailures(string, int)                    {}

// Elapsed returns a function that reports time passed since Elapsed call
// to add. Use it with defer.
func Elapsed(add func(time.Duration)) func() {
	t := time.Now()

	return func() {
		add(time.Since(t))
	}
}
