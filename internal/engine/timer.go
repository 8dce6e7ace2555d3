package engine

import "time"

// statusTimer tracks how long the current status has been active and how
// long ago the status was last "ok". Its state is owned exclusively by the
// engine and only mutated inside an update cycle.
type statusTimer struct {
	currentStatus string
	statusStart   time.Time
	lastOk        time.Time
}

func newStatusTimer(now time.Time) statusTimer {
	t := statusTimer{}
	t.Reset(now)
	return t
}

// Reset moves both timestamps to now. Called at construction and whenever
// downtime ends, so elapsed counters exclude time spent in downtime.
func (t *statusTimer) Reset(now time.Time) {
	t.statusStart = now
	t.lastOk = now
}

// UpdateFromStatus records a status transition. The "ok" timestamp is
// refreshed on every ok update, not only on transitions.
func (t *statusTimer) UpdateFromStatus(status string, now time.Time) {
	if status != t.currentStatus {
		t.currentStatus = status
		t.statusStart = now
	}
	if status == StatusOK {
		t.lastOk = now
	}
}

func (t *statusTimer) SecondsInCurrentStatus(now time.Time) int {
	return int(now.Sub(t.statusStart).Seconds())
}

func (t *statusTimer) SecondsSinceOkStatus(now time.Time) int {
	return int(now.Sub(t.lastOk).Seconds())
}
