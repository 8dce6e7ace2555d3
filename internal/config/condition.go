package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ConditionConfig implements the declarative condition tree language. A
// condition is a mapping from snapshot field names to value conditions, plus
// the optional combinators "not" (nested condition, inverted) and "or"
// (ordered list of nested conditions, at least one must match). Combinators
// and field entries are separated at parse time, never inferred during
// evaluation.
type ConditionConfig struct {
	Fields []FieldCondition
	Not    *ConditionConfig
	Or     []ConditionConfig
}

// FieldCondition binds one snapshot field name to a value condition,
// preserving the order fields were authored in.
type FieldCondition struct {
	Key   string
	Value ValueConditionConfig
}

// ValueConditionConfig is either a literal (exact equality) or a mapping
// with any subset of the operators "any", "multipleOf" and "fromUntil". When
// several operators are present, all of them must pass.
type ValueConditionConfig struct {
	Literal    any
	IsLiteral  bool
	AnyOf      []any
	MultipleOf *int
	FromUntil  []int
}

// Empty reports whether the condition constrains nothing at all.
func (c *ConditionConfig) Empty() bool {
	return len(c.Fields) == 0 && c.Not == nil && len(c.Or) == 0
}

// UnmarshalYAML decodes a condition mapping, splitting combinator keys from
// field entries.
func (c *ConditionConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("condition must be a mapping")
	}
	for i := 0; i < len(value.Content)-1; i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("condition keys must be strings")
		}
		switch keyNode.Value {
		case "not":
			var nested ConditionConfig
			if err := valNode.Decode(&nested); err != nil {
				return fmt.Errorf("not: %w", err)
			}
			c.Not = &nested
		case "or":
			if valNode.Kind != yaml.SequenceNode {
				return fmt.Errorf("or must be a list of conditions")
			}
			var nested []ConditionConfig
			if err := valNode.Decode(&nested); err != nil {
				return fmt.Errorf("or: %w", err)
			}
			c.Or = nested
		default:
			var vc ValueConditionConfig
			if err := valNode.Decode(&vc); err != nil {
				return fmt.Errorf("%s: %w", keyNode.Value, err)
			}
			c.Fields = append(c.Fields, FieldCondition{Key: keyNode.Value, Value: vc})
		}
	}
	return nil
}

// UnmarshalYAML decodes either a literal scalar or an operator mapping.
// Unknown operator keys are configuration errors; unknown snapshot field
// names are deliberately not validated here and simply never match.
func (v *ValueConditionConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		var literal any
		if err := value.Decode(&literal); err != nil {
			return err
		}
		v.Literal = literal
		v.IsLiteral = true
		return nil
	}
	for i := 0; i < len(value.Content)-1; i += 2 {
		keyNode := value.Content[i]
		valNode := value.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("value condition keys must be strings")
		}
		switch keyNode.Value {
		case "any":
			var members []any
			if err := valNode.Decode(&members); err != nil {
				return fmt.Errorf("any: %w", err)
			}
			v.AnyOf = members
		case "multipleOf":
			var divisor int
			if err := valNode.Decode(&divisor); err != nil {
				return fmt.Errorf("multipleOf: %w", err)
			}
			if divisor == 0 {
				return fmt.Errorf("multipleOf cannot be zero")
			}
			v.MultipleOf = &divisor
		case "fromUntil":
			var bounds []int
			if err := valNode.Decode(&bounds); err != nil {
				return fmt.Errorf("fromUntil: %w", err)
			}
			if len(bounds) != 2 {
				return fmt.Errorf("fromUntil requires exactly two values, got %d", len(bounds))
			}
			v.FromUntil = bounds
		default:
			return fmt.Errorf("unknown value condition operator %q", keyNode.Value)
		}
	}
	return nil
}
