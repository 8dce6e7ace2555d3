package engine

import (
	"github.com/tank0226/current-task/internal/rules"
	"github.com/tank0226/current-task/internal/state"
)

// RuleExplanation captures the evaluation outcome of one configured rule
// against the last published snapshot.
type RuleExplanation struct {
	List             string                `json:"list"`
	Index            int                   `json:"index"`
	ResultingStatus  string                `json:"resultingStatus,omitempty"`
	ResultingMessage string                `json:"resultingMessage,omitempty"`
	Matched          bool                  `json:"matched"`
	Trace            *rules.ConditionTrace `json:"trace,omitempty"`
	Summary          []string              `json:"summary,omitempty"`
}

// Explain re-evaluates every configured rule against the last published
// snapshot with tracing enabled. Custom state rules are traced against the
// placeholder view they are normally evaluated with; downtime and nagging
// conditions against the real snapshot.
func (e *Engine) Explain() []RuleExplanation {
	e.mu.Lock()
	ruleset := e.ruleset
	snap := e.lastSnapshot
	e.mu.Unlock()

	explanations := make([]RuleExplanation, 0,
		len(ruleset.CustomStateRules)+len(ruleset.DowntimeConditions)+len(ruleset.NaggingConditions))

	placeholder := placeholderOf(snap)
	for i, rule := range ruleset.CustomStateRules {
		matched, trace := rule.Condition.Trace(placeholder)
		explanations = append(explanations, RuleExplanation{
			List:             "customState",
			Index:            i,
			ResultingStatus:  rule.ResultingStatus,
			ResultingMessage: rule.ResultingMessage,
			Matched:          matched,
			Trace:            trace,
			Summary:          rules.SummarizeConditionTrace(trace),
		})
	}
	explanations = append(explanations, explainConditions("downtime", ruleset.DowntimeConditions, &snap)...)
	explanations = append(explanations, explainConditions("nagging", ruleset.NaggingConditions, &snap)...)
	return explanations
}

func explainConditions(list string, conditions []rules.CompiledCondition, snap *state.Snapshot) []RuleExplanation {
	explanations := make([]RuleExplanation, 0, len(conditions))
	for i, cond := range conditions {
		matched, trace := cond.Trace(snap)
		explanations = append(explanations, RuleExplanation{
			List:    list,
			Index:   i,
			Matched: matched,
			Trace:   trace,
			Summary: rules.SummarizeConditionTrace(trace),
		})
	}
	return explanations
}
