package browser

import (
	"context"
	"time"
)

// DefaultPollInterval matches the WebDriver wait default
const DefaultPollInterval = 500 * time.Millisecond

// probeFunc reports whether the awaited condition holds. An error aborts polling.
type probeFunc func() (bool, error)

// pollUntil - probes until it succeeds, fails, or timeout elapses.
// A condition that never holds is reported no earlier than timeout and
// at most one probe later. timeout <= 0 probes exactly once.
func pollUntil(ctx context.Context, timeout, interval time.Duration, probe probeFunc) (bool, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	deadline := time.Now().Add(timeout)

	for {
		found, err := probe()
		if err != nil {
			return false, err
		}
		if found {
			return true, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, nil
		}

		timer := time.NewTimer(min(interval, remaining))
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case <-timer.C:
		}
	}
}
