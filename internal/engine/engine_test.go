package engine

import (
	"io"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tank0226/current-task/internal/config"
	"github.com/tank0226/current-task/internal/rules"
	"github.com/tank0226/current-task/internal/state"
	"github.com/tank0226/current-task/internal/util"
)

func rulesetFixture(t *testing.T, doc string) *rules.Ruleset {
	t.Helper()
	var cfg config.Config
	if err := yaml.Unmarshal([]byte(doc), &cfg); err != nil {
		t.Fatalf("parse rules fixture: %v", err)
	}
	return rules.Build(&cfg)
}

func engineFixture(t *testing.T, doc string, base time.Time) *Engine {
	t.Helper()
	logger := util.NewLoggerWithWriter(util.LevelError, io.Discard)
	return New(logger, nil, rulesetFixture(t, doc), time.Second, base)
}

var base = time.Date(2020, 8, 15, 18, 15, 0, 0, time.UTC)

func TestStandardMessageForCurrentTaskCounts(t *testing.T) {
	eng := engineFixture(t, "", base)

	snap := eng.Update(state.TaskMetrics{}, base)
	if snap.Status != StatusOK {
		t.Fatalf("expected status ok, got %q", snap.Status)
	}
	if snap.Message != "(no current task)" {
		t.Fatalf("unexpected message %q", snap.Message)
	}

	snap = eng.Update(state.TaskMetrics{NumberMarkedCurrent: 1, CurrentTaskTitle: "write report"}, base)
	if snap.Message != "write report" {
		t.Fatalf("unexpected message %q", snap.Message)
	}

	snap = eng.Update(state.TaskMetrics{NumberMarkedCurrent: 3}, base)
	if snap.Message != "(3 tasks marked current)" {
		t.Fatalf("unexpected message %q", snap.Message)
	}
}

func TestCustomRuleOverridesStatusAndMessage(t *testing.T) {
	eng := engineFixture(t, `
customStateRules:
  - condition:
      numberMarkedCurrent: 0
    resultingStatus: warning
    resultingMessage: "Pick a task"
`, base)
	snap := eng.Update(state.TaskMetrics{}, base)
	if snap.Status != "warning" {
		t.Fatalf("expected warning status, got %q", snap.Status)
	}
	if snap.Message != "Pick a task" {
		t.Fatalf("unexpected message %q", snap.Message)
	}

	snap = eng.Update(state.TaskMetrics{NumberMarkedCurrent: 1, CurrentTaskTitle: "write report"}, base)
	if snap.Status != StatusOK || snap.Message != "write report" {
		t.Fatalf("expected standard state when rule does not match, got %q/%q", snap.Status, snap.Message)
	}
}

func TestCustomRulesFirstMatchWins(t *testing.T) {
	eng := engineFixture(t, `
customStateRules:
  - condition:
      numberMarkedCurrent:
        fromUntil: [0, 10]
    resultingStatus: first
    resultingMessage: first
  - condition:
      numberMarkedCurrent: 0
    resultingStatus: second
    resultingMessage: second
`, base)
	snap := eng.Update(state.TaskMetrics{}, base)
	if snap.Status != "first" {
		t.Fatalf("expected first matching rule to win, got %q", snap.Status)
	}
}

func TestMessagePlaceholderSubstitution(t *testing.T) {
	eng := engineFixture(t, `
customStateRules:
  - condition:
      numberMarkedCurrent: 3
    resultingStatus: warning
    resultingMessage: "Score: %{numberMarkedCurrent}, %{bogus}"
`, base)
	snap := eng.Update(state.TaskMetrics{NumberMarkedCurrent: 3}, base)
	if snap.Message != "Score: 3, %{bogus}" {
		t.Fatalf("unexpected message %q", snap.Message)
	}
}

func TestCustomRulesSeeNeutralizedStatusAndTimers(t *testing.T) {
	eng := engineFixture(t, `
customStateRules:
  - condition:
      secondsInCurrentStatus:
        fromUntil: [10, 1000000]
    resultingStatus: stuck
    resultingMessage: stuck
`, base)
	eng.Update(state.TaskMetrics{}, base)
	snap := eng.Update(state.TaskMetrics{}, base.Add(time.Minute))
	if snap.Status == "stuck" {
		t.Fatalf("custom rule must not observe the real timer values")
	}
}

func TestErrorUpdateBypassesCustomRules(t *testing.T) {
	eng := engineFixture(t, `
customStateRules:
  - condition:
      status: ok
    resultingStatus: themed
    resultingMessage: themed
`, base)
	snap := eng.Update(state.TaskMetrics{}, base)
	if snap.Status != "themed" {
		t.Fatalf("expected custom rule to apply on success, got %q", snap.Status)
	}
	snap = eng.UpdateWithError("task source unreachable", base.Add(time.Second))
	if snap.Status != StatusError {
		t.Fatalf("expected forced error status, got %q", snap.Status)
	}
	if snap.Message != "task source unreachable" {
		t.Fatalf("unexpected error message %q", snap.Message)
	}
}

func TestDowntimeSuppressesNagging(t *testing.T) {
	doc := `
naggingConditions:
  - numberMarkedCurrent: 0
downtimeConditions:
  - hours:
      fromUntil: [22, 8]
`
	eng := engineFixture(t, doc, base)

	daytime := time.Date(2020, 8, 15, 18, 0, 0, 0, time.UTC)
	snap := eng.Update(state.TaskMetrics{}, daytime)
	if !snap.NaggingEnabled || snap.DowntimeEnabled {
		t.Fatalf("expected nagging outside downtime, got nagging=%t downtime=%t", snap.NaggingEnabled, snap.DowntimeEnabled)
	}

	night := time.Date(2020, 8, 15, 23, 0, 0, 0, time.UTC)
	snap = eng.Update(state.TaskMetrics{}, night)
	if !snap.DowntimeEnabled {
		t.Fatalf("expected downtime at 23:00")
	}
	if snap.NaggingEnabled {
		t.Fatalf("downtime must force nagging off even when a nagging condition matches")
	}
}

func TestDowntimeEndResetsTimers(t *testing.T) {
	eng := engineFixture(t, `
downtimeConditions:
  - hours:
      fromUntil: [22, 8]
`, base)
	night := time.Date(2020, 8, 15, 22, 30, 0, 0, time.UTC)
	snap := eng.Update(state.TaskMetrics{}, night)
	if !snap.DowntimeEnabled {
		t.Fatalf("expected downtime at 22:30")
	}

	morning := time.Date(2020, 8, 16, 9, 0, 0, 0, time.UTC)
	snap = eng.Update(state.TaskMetrics{}, morning)
	if snap.DowntimeEnabled {
		t.Fatalf("expected downtime to end at 09:00")
	}
	if snap.SecondsInCurrentStatus != 0 || snap.SecondsSinceOkStatus != 0 {
		t.Fatalf("expected timers reset after downtime ended, got %d/%d",
			snap.SecondsInCurrentStatus, snap.SecondsSinceOkStatus)
	}
}

func TestTimersTrackStatusAndLastOk(t *testing.T) {
	eng := engineFixture(t, "", base)

	snap := eng.Update(state.TaskMetrics{}, base)
	if snap.SecondsInCurrentStatus != 0 || snap.SecondsSinceOkStatus != 0 {
		t.Fatalf("expected fresh timers on first ok update, got %d/%d",
			snap.SecondsInCurrentStatus, snap.SecondsSinceOkStatus)
	}

	snap = eng.UpdateWithError("boom", base.Add(30*time.Second))
	if snap.SecondsInCurrentStatus != 0 {
		t.Fatalf("status change must restart the in-status counter, got %d", snap.SecondsInCurrentStatus)
	}
	if snap.SecondsSinceOkStatus != 30 {
		t.Fatalf("expected 30s since last ok, got %d", snap.SecondsSinceOkStatus)
	}

	snap = eng.UpdateWithError("boom", base.Add(50*time.Second))
	if snap.SecondsInCurrentStatus != 20 {
		t.Fatalf("expected 20s in error status, got %d", snap.SecondsInCurrentStatus)
	}
	if snap.SecondsSinceOkStatus != 50 {
		t.Fatalf("expected 50s since last ok, got %d", snap.SecondsSinceOkStatus)
	}

	snap = eng.Update(state.TaskMetrics{}, base.Add(60*time.Second))
	if snap.SecondsInCurrentStatus != 0 || snap.SecondsSinceOkStatus != 0 {
		t.Fatalf("expected recovery to zero both counters, got %d/%d",
			snap.SecondsInCurrentStatus, snap.SecondsSinceOkStatus)
	}
}

func TestTickReappliesLatestResult(t *testing.T) {
	eng := engineFixture(t, "", base)
	eng.Update(state.TaskMetrics{NumberMarkedCurrent: 1, CurrentTaskTitle: "write report"}, base)

	snap := eng.Tick(base.Add(5 * time.Second))
	if snap.Message != "write report" {
		t.Fatalf("tick must re-derive from the latest metrics, got %q", snap.Message)
	}
	if snap.SecondsInCurrentStatus != 5 {
		t.Fatalf("expected 5s in status after tick, got %d", snap.SecondsInCurrentStatus)
	}

	eng.UpdateWithError("gone", base.Add(6*time.Second))
	snap = eng.Tick(base.Add(8 * time.Second))
	if snap.Status != StatusError || snap.Message != "gone" {
		t.Fatalf("tick must re-derive the error result, got %q/%q", snap.Status, snap.Message)
	}
}

func TestPassTwoSeesRealStatus(t *testing.T) {
	// The downtime list conditions on the status a custom rule just set,
	// which only works because pass 2 sees the real snapshot.
	eng := engineFixture(t, `
customStateRules:
  - condition:
      numberMarkedCurrent: 0
    resultingStatus: idle
    resultingMessage: idle
downtimeConditions:
  - status: idle
`, base)
	snap := eng.Update(state.TaskMetrics{}, base)
	if snap.Status != "idle" {
		t.Fatalf("expected custom status, got %q", snap.Status)
	}
	if !snap.DowntimeEnabled {
		t.Fatalf("downtime conditions must observe the overridden status")
	}
}

func TestExplainReportsEveryConfiguredRule(t *testing.T) {
	eng := engineFixture(t, `
customStateRules:
  - condition:
      numberMarkedCurrent: 0
    resultingStatus: idle
    resultingMessage: idle
naggingConditions:
  - status: idle
downtimeConditions:
  - hours:
      fromUntil: [22, 8]
`, base)
	eng.Update(state.TaskMetrics{}, base)

	explanations := eng.Explain()
	if len(explanations) != 3 {
		t.Fatalf("expected 3 explanations, got %d", len(explanations))
	}
	lists := map[string]bool{}
	for _, entry := range explanations {
		lists[entry.List] = true
		if entry.Trace == nil {
			t.Fatalf("expected a trace for %s[%d]", entry.List, entry.Index)
		}
	}
	for _, list := range []string{"customState", "nagging", "downtime"} {
		if !lists[list] {
			t.Fatalf("missing explanations for list %s", list)
		}
	}
}
