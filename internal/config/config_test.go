package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfig = `
tasksFile: tasks.yaml
metricsListen: 127.0.0.1:9180
customStateRules:
  - condition:
      numberOverdueWithTime:
        moreThan: 0
    resultingStatus: warning
    resultingMessage: overdue
`

func TestParseFullDocument(t *testing.T) {
	cfg, err := Parse([]byte(`
tickIntervalMs: 500
refreshIntervalMs: 3000
tasksFile: tasks.yaml
logLevel: debug
customStateRules:
  - condition:
      currentTaskIsOverdue: true
    resultingStatus: warning
    resultingMessage: "Current task is overdue"
naggingConditions:
  - naggingEnabled: true
downtimeConditions:
  - or:
      - hours:
          fromUntil: [22, 8]
      - dayOfWeek:
          any: [0, 6]
`))
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.TickIntervalMs)
	assert.Equal(t, 3000, cfg.RefreshIntervalMs)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.Len(t, cfg.CustomStateRules, 1)
	rule := cfg.CustomStateRules[0]
	assert.Equal(t, "warning", rule.ResultingStatus)
	require.Len(t, rule.Condition.Fields, 1)
	assert.Equal(t, "currentTaskIsOverdue", rule.Condition.Fields[0].Key)
	assert.True(t, rule.Condition.Fields[0].Value.IsLiteral)
	assert.Equal(t, true, rule.Condition.Fields[0].Value.Literal)

	require.Len(t, cfg.DowntimeConditions, 1)
	downtime := cfg.DowntimeConditions[0]
	require.Len(t, downtime.Or, 2)
	require.Len(t, downtime.Or[0].Fields, 1)
	assert.Equal(t, []int{22, 8}, downtime.Or[0].Fields[0].Value.FromUntil)
	assert.Equal(t, []any{0, 6}, downtime.Or[1].Fields[0].Value.AnyOf)
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("tasksFile: tasks.yaml\n"))
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.TickIntervalMs)
	assert.Equal(t, 2000, cfg.RefreshIntervalMs)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParseScalarAndOperatorValueConditions(t *testing.T) {
	cfg, err := Parse([]byte(`
tasksFile: tasks.yaml
naggingConditions:
  - status: error
  - minutes:
      multipleOf: 5
      fromUntil: [0, 30]
`))
	require.NoError(t, err)
	require.Len(t, cfg.NaggingConditions, 2)

	scalar := cfg.NaggingConditions[0].Fields[0].Value
	assert.True(t, scalar.IsLiteral)
	assert.Equal(t, "error", scalar.Literal)

	ops := cfg.NaggingConditions[1].Fields[0].Value
	assert.False(t, ops.IsLiteral)
	require.NotNil(t, ops.MultipleOf)
	assert.Equal(t, 5, *ops.MultipleOf)
	assert.Equal(t, []int{0, 30}, ops.FromUntil)
}

func TestParseNestedNot(t *testing.T) {
	cfg, err := Parse([]byte(`
tasksFile: tasks.yaml
downtimeConditions:
  - not:
      not:
        status: ok
`))
	require.NoError(t, err)
	cond := cfg.DowntimeConditions[0]
	require.NotNil(t, cond.Not)
	require.NotNil(t, cond.Not.Not)
	assert.Equal(t, "status", cond.Not.Not.Fields[0].Key)
}

func TestParseRejectsUnknownOperator(t *testing.T) {
	_, err := Parse([]byte(fullConfig))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown value condition operator")
}

func TestParseRejectsBadFromUntil(t *testing.T) {
	_, err := Parse([]byte(`
tasksFile: tasks.yaml
naggingConditions:
  - hours:
      fromUntil: [1, 2, 3]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fromUntil requires exactly two values")
}

func TestValidateRequiresTasksFile(t *testing.T) {
	_, err := Parse([]byte("logLevel: info\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tasksFile")
}

func TestValidateRejectsEmptyConditions(t *testing.T) {
	_, err := Parse([]byte(`
tasksFile: tasks.yaml
customStateRules:
  - resultingStatus: warning
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "condition cannot be empty")

	_, err = Parse([]byte(`
tasksFile: tasks.yaml
customStateRules:
  - condition:
      status: ok
    resultingMessage: no status
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resultingStatus cannot be empty")
}
