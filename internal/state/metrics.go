package state

import "time"

// TaskMetrics is the fixed-shape aggregate the engine derives a snapshot
// from. The four CurrentTask fields are populated only when exactly one task
// is marked current; otherwise they hold empty/false defaults regardless of
// the underlying task data.
type TaskMetrics struct {
	NumberOverdueWithTime                 int    `json:"numberOverdueWithTime"`
	NumberOverdueWithTimeMarkedCurrent    int    `json:"numberOverdueWithTimeMarkedCurrent"`
	NumberOverdueWithTimeNotMarkedCurrent int    `json:"numberOverdueWithTimeNotMarkedCurrent"`
	NumberMarkedCurrent                   int    `json:"numberMarkedCurrent"`
	CurrentTaskTitle                      string `json:"currentTaskTitle"`
	CurrentTaskHasDate                    bool   `json:"currentTaskHasDate"`
	CurrentTaskHasTime                    bool   `json:"currentTaskHasTime"`
	CurrentTaskIsOverdue                  bool   `json:"currentTaskIsOverdue"`
}

// ComputeMetrics reduces a task list and the current time into TaskMetrics.
// Tasks with an unparseable date-only deadline count as not overdue.
func ComputeMetrics(tasks []Task, now time.Time) TaskMetrics {
	var metrics TaskMetrics
	var current *Task
	for i := range tasks {
		task := &tasks[i]
		if task.DueDatetime != nil && task.DueDatetime.Before(now) {
			metrics.NumberOverdueWithTime++
			if task.MarkedCurrent {
				metrics.NumberOverdueWithTimeMarkedCurrent++
			} else {
				metrics.NumberOverdueWithTimeNotMarkedCurrent++
			}
		}
		if task.MarkedCurrent {
			metrics.NumberMarkedCurrent++
			current = task
		}
	}
	if metrics.NumberMarkedCurrent != 1 {
		return metrics
	}
	metrics.CurrentTaskTitle = current.Title
	metrics.CurrentTaskHasDate = current.HasDate()
	metrics.CurrentTaskHasTime = current.HasTime()
	overdue, err := current.IsOverdue(now)
	if err == nil {
		metrics.CurrentTaskIsOverdue = overdue
	}
	return metrics
}
