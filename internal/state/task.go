package state

import (
	"fmt"
	"time"
)

// DateOnlyLayout is the calendar-date format used by task sources for
// deadlines without a time component.
const DateOnlyLayout = "2006-01-02"

// Task describes a single task as reported by the task source.
type Task struct {
	Title string `yaml:"title" json:"title"`

	// DueDate holds a calendar date (YYYY-MM-DD) when the task has a
	// deadline without a specific time. Empty when the task has no date.
	DueDate string `yaml:"dueDate,omitempty" json:"dueDate,omitempty"`

	// DueDatetime is set when the deadline includes a specific time.
	DueDatetime *time.Time `yaml:"dueDatetime,omitempty" json:"dueDatetime,omitempty"`

	// MarkedCurrent reports whether the user flagged this task as the one
	// they are working on right now.
	MarkedCurrent bool `yaml:"markedCurrent,omitempty" json:"markedCurrent,omitempty"`
}

// HasDate reports whether the task carries any deadline at all.
func (t Task) HasDate() bool {
	return t.DueDate != "" || t.DueDatetime != nil
}

// HasTime reports whether the deadline includes a specific time of day.
func (t Task) HasTime() bool {
	return t.DueDatetime != nil
}

// IsOverdue reports whether the task's deadline has passed at now. Deadlines
// with a time compare against the full timestamp; date-only deadlines are
// overdue once the calendar date of now is past them.
func (t Task) IsOverdue(now time.Time) (bool, error) {
	if t.DueDatetime != nil {
		return t.DueDatetime.Before(now), nil
	}
	if t.DueDate == "" {
		return false, nil
	}
	due, err := time.ParseInLocation(DateOnlyLayout, t.DueDate, now.Location())
	if err != nil {
		return false, fmt.Errorf("parse due date %q: %w", t.DueDate, err)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return due.Before(today), nil
}
