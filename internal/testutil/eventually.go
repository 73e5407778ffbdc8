package testutil

import (
	"testing"
	"time"
)

// Eventually checks cond every interval and fails the test with the
// formatted message when it still does not hold after timeout.
func Eventually(t testing.TB, timeout, interval time.Duration, cond func() bool, format string, args ...any) {
	t.Helper()
	ctx := Context(t, timeout)
	for !cond() {
		select {
		case <-ctx.Done():
			if cond() {
				return
			}
			if format == "" {
				t.Fatalf("condition still false after %s", timeout)
			}
			t.Fatalf(format, args...)
		case <-time.After(interval):
		}
	}
}
