package engine

import (
	"context"
	"sync"
	"time"

	"github.com/tank0226/current-task/internal/metrics"
	"github.com/tank0226/current-task/internal/rules"
	"github.com/tank0226/current-task/internal/state"
	"github.com/tank0226/current-task/internal/util"
)

const (
	// StatusOK is the standard status when nothing demands attention.
	StatusOK = "ok"
	// StatusError is forced when the task source fetch failed. It cannot be
	// overridden by custom state rules.
	StatusError = "error"
)

// Engine derives the published snapshot once per tick from the latest task
// result, the current time, and the configured rule lists.
//
// Rule evaluation is a two-pass contract: custom state rules (pass 1) always
// see a placeholder snapshot with status "ok" and zeroed timer fields, so a
// rule can never condition on the status or timers it is about to set.
// Downtime and nagging conditions (pass 2) see the real snapshot.
type Engine struct {
	logger   *util.Logger
	recorder *metrics.Recorder

	tickInterval time.Duration

	mu             sync.Mutex
	ruleset        *rules.Ruleset
	timer          statusTimer
	downtimeActive bool
	lastMetrics    state.TaskMetrics
	lastError      string
	lastErrored    bool
	lastSnapshot   state.Snapshot
	published      bool
}

// New creates an engine with freshly reset timers. The provided time becomes
// the baseline for both elapsed-time counters.
func New(logger *util.Logger, recorder *metrics.Recorder, ruleset *rules.Ruleset, tickInterval time.Duration, now time.Time) *Engine {
	if ruleset == nil {
		ruleset = &rules.Ruleset{}
	}
	return &Engine{
		logger:       logger,
		recorder:     recorder,
		tickInterval: tickInterval,
		ruleset:      ruleset,
		timer:        newStatusTimer(now),
	}
}

// ReloadRules replaces the compiled rule set.
func (e *Engine) ReloadRules(ruleset *rules.Ruleset) {
	if ruleset == nil {
		ruleset = &rules.Ruleset{}
	}
	e.mu.Lock()
	e.ruleset = ruleset
	e.mu.Unlock()
	e.logger.Infof("reloaded rules: %d custom, %d nagging, %d downtime",
		len(ruleset.CustomStateRules), len(ruleset.NaggingConditions), len(ruleset.DowntimeConditions))
}

// Submit hands over an already-resolved task refresh result. A nil fetchErr
// applies the metrics; otherwise the error message becomes the status.
func (e *Engine) Submit(taskMetrics state.TaskMetrics, fetchErr error) {
	now := time.Now()
	if fetchErr != nil {
		e.UpdateWithError(fetchErr.Error(), now)
		return
	}
	e.Update(taskMetrics, now)
}

// Update runs one full cycle from a successful metrics refresh.
func (e *Engine) Update(taskMetrics state.TaskMetrics, now time.Time) state.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastMetrics = taskMetrics
	e.lastErrored = false
	e.lastError = ""
	return e.applyLocked(now)
}

// UpdateWithError runs one full cycle for a failed metrics fetch. The status
// is forced to "error" and custom state rules are not consulted.
func (e *Engine) UpdateWithError(message string, now time.Time) state.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastErrored = true
	e.lastError = message
	return e.applyLocked(now)
}

// Tick re-applies the latest known task result against a fresh timestamp.
func (e *Engine) Tick(now time.Time) state.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.applyLocked(now)
}

// Snapshot returns the most recently published snapshot.
func (e *Engine) Snapshot() state.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSnapshot
}

// Run drives the engine on a fixed-interval ticker until the context is
// cancelled. The refresh cycle runs elsewhere and hands results over through
// Submit; a tick simply re-derives the snapshot from the latest result.
func (e *Engine) Run(ctx context.Context) error {
	e.Tick(time.Now())
	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			e.Tick(now)
		}
	}
}

func (e *Engine) applyLocked(now time.Time) state.Snapshot {
	var snap state.Snapshot
	if e.lastErrored {
		snap = state.NewSnapshot(state.TaskMetrics{}, now)
		snap.Status = StatusError
		snap.Message = e.lastError
		e.recorder.IncUpdate("error")
	} else {
		snap = state.NewSnapshot(e.lastMetrics, now)
		snap.Status = StatusOK
		snap.Message = standardMessage(e.lastMetrics)
		if rule := e.ruleset.FirstStateRule(placeholderOf(snap)); rule != nil {
			snap.Status = rule.ResultingStatus
			snap.Message = expandMessage(rule.ResultingMessage, placeholderOf(snap))
			e.recorder.IncRuleMatch("customState")
		}
		e.recorder.IncUpdate("ok")
	}

	// Pass 2 sees the timers as they stood before this cycle's update.
	snap.SecondsInCurrentStatus = e.timer.SecondsInCurrentStatus(now)
	snap.SecondsSinceOkStatus = e.timer.SecondsSinceOkStatus(now)

	snap.DowntimeEnabled = rules.AnyMatches(e.ruleset.DowntimeConditions, &snap)
	if snap.DowntimeEnabled {
		snap.NaggingEnabled = false
		e.recorder.IncRuleMatch("downtime")
	} else {
		snap.NaggingEnabled = rules.AnyMatches(e.ruleset.NaggingConditions, &snap)
		if snap.NaggingEnabled {
			e.recorder.IncRuleMatch("nagging")
		}
	}

	if e.downtimeActive && !snap.DowntimeEnabled {
		e.logger.Debugf("downtime ended, resetting status timers")
		e.timer.Reset(now)
	}
	e.downtimeActive = snap.DowntimeEnabled

	e.timer.UpdateFromStatus(snap.Status, now)
	snap.SecondsInCurrentStatus = e.timer.SecondsInCurrentStatus(now)
	snap.SecondsSinceOkStatus = e.timer.SecondsSinceOkStatus(now)

	if !e.published || e.lastSnapshot.Status != snap.Status {
		e.recorder.IncStatusChange(snap.Status)
		if e.published {
			e.logger.Infof("status changed: %s -> %s (%s)", e.lastSnapshot.Status, snap.Status, snap.Message)
		}
	}
	e.recorder.SetFlags(snap.NaggingEnabled, snap.DowntimeEnabled)
	e.recorder.SetSecondsInStatus(snap.SecondsInCurrentStatus)

	e.lastSnapshot = snap
	e.published = true
	return snap
}

// placeholderOf neutralizes the status-derived fields of a base snapshot for
// pass 1 evaluation.
func placeholderOf(snap state.Snapshot) *state.Snapshot {
	snap.Status = StatusOK
	snap.SecondsInCurrentStatus = 0
	snap.SecondsSinceOkStatus = 0
	return &snap
}
