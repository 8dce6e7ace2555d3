package rules

import (
	"github.com/tank0226/current-task/internal/config"
	"github.com/tank0226/current-task/internal/state"
)

// StateRule is a compiled custom state rule: when its condition is the first
// to match, the status and message it carries replace the standard ones.
type StateRule struct {
	Condition        CompiledCondition
	ResultingStatus  string
	ResultingMessage string
}

// Ruleset holds every compiled rule list the engine evaluates. Lists keep
// their configured order; evaluation is first-match-wins, never exhaustive.
type Ruleset struct {
	CustomStateRules   []StateRule
	NaggingConditions  []CompiledCondition
	DowntimeConditions []CompiledCondition
}

// Build compiles configuration into an executable rule set.
func Build(cfg *config.Config) *Ruleset {
	set := &Ruleset{}
	for _, rc := range cfg.CustomStateRules {
		set.CustomStateRules = append(set.CustomStateRules, StateRule{
			Condition:        CompileCondition(rc.Condition),
			ResultingStatus:  rc.ResultingStatus,
			ResultingMessage: rc.ResultingMessage,
		})
	}
	for _, cc := range cfg.NaggingConditions {
		set.NaggingConditions = append(set.NaggingConditions, CompileCondition(cc))
	}
	for _, cc := range cfg.DowntimeConditions {
		set.DowntimeConditions = append(set.DowntimeConditions, CompileCondition(cc))
	}
	return set
}

// FirstStateRule returns the first custom state rule matching the snapshot,
// or nil when none matches.
func (r *Ruleset) FirstStateRule(snap *state.Snapshot) *StateRule {
	for i := range r.CustomStateRules {
		if r.CustomStateRules[i].Condition.Match(snap) {
			return &r.CustomStateRules[i]
		}
	}
	return nil
}

// AnyMatches reports whether at least one condition in the list matches the
// snapshot, stopping at the first match.
func AnyMatches(conditions []CompiledCondition, snap *state.Snapshot) bool {
	for _, cond := range conditions {
		if cond.Match(snap) {
			return true
		}
	}
	return false
}
