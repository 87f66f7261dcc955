package helpers

import (
	"time"

	"github.com/benbjohnson/clock"
)

// TestNow returns a fixed time (2026-02-11 12:00:00 UTC) for deterministic tests
// (cache ages, expiration companions, election timers).
func TestNow() time.Time {
	return time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
}

// TestClock returns a mock clock set to TestNow. Timers registered with AfterFunc fire only when
// the test advances the clock with Add.
func TestClock() *clock.Mock {
	c := clock.NewMock()
	c.Set(TestNow())
	return c
}
