package settlement

import (
	"testing"
	"time"
)

func TestUntilNextDailyRun(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)

	// Before the hour: run today.
	now := time.Date(2025, 6, 4, 10, 30, 0, 0, loc)
	if got := untilNextDailyRun(now, 16); got != 5*time.Hour+30*time.Minute {
		t.Errorf("before the hour: got %s", got)
	}

	// After the hour: run tomorrow.
	now = time.Date(2025, 6, 4, 17, 0, 0, 0, loc)
	if got := untilNextDailyRun(now, 16); got != 23*time.Hour {
		t.Errorf("after the hour: got %s", got)
	}

	// Exactly on the hour: next run is a full day away.
	now = time.Date(2025, 6, 4, 16, 0, 0, 0, loc)
	if got := untilNextDailyRun(now, 16); got != 24*time.Hour {
		t.Errorf("on the hour: got %s", got)
	}
}
