package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tank0226/current-task/internal/state"
)

// ConditionTrace captures condition evaluation decisions.
type ConditionTrace struct {
	Kind     string            `json:"kind"`
	Result   bool              `json:"result"`
	Details  map[string]any    `json:"details,omitempty"`
	Children []*ConditionTrace `json:"children,omitempty"`
}

type traceNode interface {
	trace(snap *state.Snapshot) (bool, *ConditionTrace)
}

type rootNode struct {
	children []traceNode
}

func (n *rootNode) trace(snap *state.Snapshot) (bool, *ConditionTrace) {
	result := true
	traces := make([]*ConditionTrace, 0, len(n.children))
	for _, child := range n.children {
		childResult, childTrace := child.trace(snap)
		traces = append(traces, childTrace)
		if !childResult {
			result = false
		}
	}
	return result, &ConditionTrace{Kind: "condition", Result: result, Children: traces}
}

type fieldNode struct {
	key     string
	matcher valueMatcher
}

func (n *fieldNode) trace(snap *state.Snapshot) (bool, *ConditionTrace) {
	details := map[string]any{
		"field":    n.key,
		"expected": n.matcher.describe(),
	}
	value, ok := snap.Field(n.key)
	if !ok {
		details["known"] = false
		return false, &ConditionTrace{Kind: "field", Result: false, Details: details}
	}
	details["actual"] = value
	result := n.matcher.matches(value)
	return result, &ConditionTrace{Kind: "field", Result: result, Details: details}
}

type notNode struct {
	child traceNode
}

func (n *notNode) trace(snap *state.Snapshot) (bool, *ConditionTrace) {
	if n.child == nil {
		return true, &ConditionTrace{Kind: "not", Result: true}
	}
	childResult, childTrace := n.child.trace(snap)
	result := !childResult
	return result, &ConditionTrace{Kind: "not", Result: result, Children: []*ConditionTrace{childTrace}}
}

type orNode struct {
	children []traceNode
}

func (n *orNode) trace(snap *state.Snapshot) (bool, *ConditionTrace) {
	result := false
	traces := make([]*ConditionTrace, 0, len(n.children))
	for _, child := range n.children {
		if child == nil {
			traces = append(traces, &ConditionTrace{Kind: "condition"})
			continue
		}
		childResult, childTrace := child.trace(snap)
		traces = append(traces, childTrace)
		if childResult {
			result = true
		}
	}
	return result, &ConditionTrace{Kind: "or", Result: result, Children: traces}
}

// SummarizeConditionTrace renders a trace tree as human-readable lines
// including captured values.
func SummarizeConditionTrace(trace *ConditionTrace) []string {
	if trace == nil {
		return nil
	}
	lines := make([]string, 0)
	var walk func(prefix string, node *ConditionTrace)
	walk = func(prefix string, node *ConditionTrace) {
		if node == nil {
			return
		}
		line := fmt.Sprintf("%s%s => %t", prefix, node.Kind, node.Result)
		if detail := formatTraceDetails(node.Details); detail != "" {
			line = fmt.Sprintf("%s %s", line, detail)
		}
		lines = append(lines, line)
		for _, child := range node.Children {
			walk(prefix+"  ", child)
		}
	}
	walk("", trace)
	return lines
}

func formatTraceDetails(details map[string]any) string {
	if len(details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(details))
	for key := range details {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, details[key]))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
