package rules

import (
	"fmt"
	"strings"

	"github.com/tank0226/current-task/internal/config"
	"github.com/tank0226/current-task/internal/state"
)

// Predicate evaluates a snapshot and returns true or false. Predicates are
// pure: identical snapshots always produce identical results.
type Predicate func(snap *state.Snapshot) bool

// CompiledCondition is a condition configuration compiled into an evaluator
// plus a trace tree for inspection.
type CompiledCondition struct {
	pred Predicate
	root traceNode
}

// Match evaluates the condition against a snapshot.
func (c CompiledCondition) Match(snap *state.Snapshot) bool {
	if c.pred == nil {
		return false
	}
	return c.pred(snap)
}

// Trace evaluates the condition while capturing per-branch outcomes.
func (c CompiledCondition) Trace(snap *state.Snapshot) (bool, *ConditionTrace) {
	if c.root == nil {
		return false, &ConditionTrace{Kind: "condition"}
	}
	return c.root.trace(snap)
}

// CompileCondition turns a parsed condition into a CompiledCondition. An
// empty condition never matches; parse-time validation rejects empty
// conditions in configured rule lists, so this only guards the zero value.
func CompileCondition(cc config.ConditionConfig) CompiledCondition {
	if cc.Empty() {
		return CompiledCondition{}
	}
	entries := make([]predicateEntry, 0, len(cc.Fields)+2)

	for _, field := range cc.Fields {
		matcher := compileValueMatcher(field.Value)
		key := field.Key
		entries = append(entries, predicateEntry{
			fn: func(snap *state.Snapshot) bool {
				value, ok := snap.Field(key)
				if !ok {
					return false
				}
				return matcher.matches(value)
			},
			node: &fieldNode{key: key, matcher: matcher},
		})
	}

	if cc.Not != nil {
		nested := CompileCondition(*cc.Not)
		entries = append(entries, predicateEntry{
			fn:   func(snap *state.Snapshot) bool { return !nested.Match(snap) },
			node: &notNode{child: nested.root},
		})
	}

	if len(cc.Or) > 0 {
		children := make([]CompiledCondition, 0, len(cc.Or))
		for _, alt := range cc.Or {
			children = append(children, CompileCondition(alt))
		}
		childNodes := make([]traceNode, len(children))
		for i, child := range children {
			childNodes[i] = child.root
		}
		entries = append(entries, predicateEntry{
			fn: func(snap *state.Snapshot) bool {
				for _, child := range children {
					if child.Match(snap) {
						return true
					}
				}
				return false
			},
			node: &orNode{children: childNodes},
		})
	}

	preds := make([]Predicate, len(entries))
	nodes := make([]traceNode, len(entries))
	for i, entry := range entries {
		preds[i] = entry.fn
		nodes[i] = entry.node
	}
	combined := func(snap *state.Snapshot) bool {
		for _, p := range preds {
			if !p(snap) {
				return false
			}
		}
		return true
	}
	return CompiledCondition{pred: combined, root: &rootNode{children: nodes}}
}

type predicateEntry struct {
	fn   Predicate
	node traceNode
}

// valueMatcher checks a single snapshot value against either a literal or a
// set of operators, all of which must pass.
type valueMatcher struct {
	literal    any
	isLiteral  bool
	anyOf      []any
	multipleOf *int
	fromUntil  []int
}

func compileValueMatcher(vc config.ValueConditionConfig) valueMatcher {
	return valueMatcher{
		literal:    vc.Literal,
		isLiteral:  vc.IsLiteral,
		anyOf:      vc.AnyOf,
		multipleOf: vc.MultipleOf,
		fromUntil:  vc.FromUntil,
	}
}

func (m valueMatcher) matches(value any) bool {
	if m.isLiteral {
		return equalValues(value, m.literal)
	}
	if m.anyOf != nil {
		found := false
		for _, member := range m.anyOf {
			if equalValues(value, member) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if m.multipleOf != nil {
		iv, ok := asInt(value)
		if !ok || iv%*m.multipleOf != 0 {
			return false
		}
	}
	if len(m.fromUntil) == 2 {
		iv, ok := asInt(value)
		if !ok {
			return false
		}
		start, end := m.fromUntil[0], m.fromUntil[1]
		if start < end {
			if iv < start || iv >= end {
				return false
			}
		} else {
			// Wraparound range, e.g. hours fromUntil [22, 8] covers the
			// interval crossing midnight. Half-open on the end.
			if iv < start && iv >= end {
				return false
			}
		}
	}
	return true
}

func (m valueMatcher) describe() string {
	if m.isLiteral {
		return fmt.Sprintf("== %v", m.literal)
	}
	parts := make([]string, 0, 3)
	if m.anyOf != nil {
		parts = append(parts, fmt.Sprintf("any %v", m.anyOf))
	}
	if m.multipleOf != nil {
		parts = append(parts, fmt.Sprintf("multipleOf %d", *m.multipleOf))
	}
	if len(m.fromUntil) == 2 {
		parts = append(parts, fmt.Sprintf("fromUntil [%d, %d)", m.fromUntil[0], m.fromUntil[1]))
	}
	if len(parts) == 0 {
		return "always"
	}
	return strings.Join(parts, " ")
}

// equalValues compares a snapshot value against a configured literal.
// Integer representations are normalized; otherwise equality is strict and
// never coerces across types.
func equalValues(a, b any) bool {
	ai, aOK := asInt(a)
	bi, bOK := asInt(b)
	if aOK || bOK {
		return aOK && bOK && ai == bi
	}
	return a == b
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}
