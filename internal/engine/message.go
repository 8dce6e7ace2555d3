package engine

import (
	"fmt"
	"regexp"

	"github.com/tank0226/current-task/internal/state"
)

var placeholderPattern = regexp.MustCompile(`%\{([A-Za-z]+)\}`)

// expandMessage substitutes %{fieldName} placeholders with snapshot values.
// Unknown field names fail closed: the placeholder text is left verbatim.
func expandMessage(template string, snap *state.Snapshot) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[2 : len(match)-1]
		value, ok := snap.Field(name)
		if !ok {
			return match
		}
		return fmt.Sprintf("%v", value)
	})
}

// standardMessage derives the default message from the task metrics.
func standardMessage(metrics state.TaskMetrics) string {
	switch metrics.NumberMarkedCurrent {
	case 0:
		return "(no current task)"
	case 1:
		return metrics.CurrentTaskTitle
	default:
		return fmt.Sprintf("(%d tasks marked current)", metrics.NumberMarkedCurrent)
	}
}
