package lockconfig

import (
	"time"

	"github.com/nspcc-dev/flatdb/cmd/flatdb-lens/config"
	"github.com/nspcc-dev/flatdb/pkg/lock"
)

const subsection = "lock"

// Timeout returns the value of "timeout" config parameter
// from "lock" section.
//
// Returns lock.DefaultTimeout if the value is not a positive duration.
func Timeout(c *config.Config) time.Duration {
	v := config.DurationSafe(c.Sub(subsection), "timeout")
	if v > 0 {
		return v
	}

	return lock.DefaultTimeout
}

// RetryInterval returns the value of "retry_interval" config parameter
// from "lock" section.
//
// Returns lock.DefaultRetryInterval if the value is not a positive duration.
func RetryInterval(c *config.Config) time.Duration {
	v := config.DurationSafe(c.Sub(subsection), "retry_interval")
	if v > 0 {
		return v
	}

	return lock.DefaultRetryInterval
}

// Extension returns the value of "extension" config parameter
// from "lock" section.
//
// Returns lock.DefaultExtension if the value is not a non-empty string.
func Extension(c *config.Config) string {
	v := config.StringSafe(c.Sub(subsection), "extension")
	if v != "" {
		return v
	}

	return lock.DefaultExtension
}

// Config returns lock timings from "lock" section.
func Config(c *config.Config) lock.Config {
	return lock.Config{
		Timeout:       Timeout(c),
		RetryInterval: RetryInterval(c),
	}
}
