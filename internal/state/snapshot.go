package state

import "time"

// Snapshot is the flat record conditions are evaluated against. It is
// recomputed every cycle and never mutated by rule evaluation; rules produce
// a new status/message pair instead.
type Snapshot struct {
	DayOfWeek int `json:"dayOfWeek"`
	Hours     int `json:"hours"`
	Minutes   int `json:"minutes"`
	Seconds   int `json:"seconds"`

	NumberOverdueWithTime                 int    `json:"numberOverdueWithTime"`
	NumberOverdueWithTimeMarkedCurrent    int    `json:"numberOverdueWithTimeMarkedCurrent"`
	NumberOverdueWithTimeNotMarkedCurrent int    `json:"numberOverdueWithTimeNotMarkedCurrent"`
	NumberMarkedCurrent                   int    `json:"numberMarkedCurrent"`
	CurrentTaskTitle                      string `json:"currentTaskTitle"`
	CurrentTaskHasDate                    bool   `json:"currentTaskHasDate"`
	CurrentTaskHasTime                    bool   `json:"currentTaskHasTime"`
	CurrentTaskIsOverdue                  bool   `json:"currentTaskIsOverdue"`

	Status                 string `json:"status"`
	Message                string `json:"message"`
	SecondsInCurrentStatus int    `json:"secondsInCurrentStatus"`
	SecondsSinceOkStatus   int    `json:"secondsSinceOkStatus"`
	NaggingEnabled         bool   `json:"naggingEnabled"`
	DowntimeEnabled        bool   `json:"downtimeEnabled"`
}

// NewSnapshot seeds a snapshot with the time fields derived from now and the
// provided task metrics. DayOfWeek follows the configuration grammar: 0 is
// Sunday through 6 is Saturday.
func NewSnapshot(metrics TaskMetrics, now time.Time) Snapshot {
	return Snapshot{
		DayOfWeek: int(now.Weekday()),
		Hours:     now.Hour(),
		Minutes:   now.Minute(),
		Seconds:   now.Second(),

		NumberOverdueWithTime:                 metrics.NumberOverdueWithTime,
		NumberOverdueWithTimeMarkedCurrent:    metrics.NumberOverdueWithTimeMarkedCurrent,
		NumberOverdueWithTimeNotMarkedCurrent: metrics.NumberOverdueWithTimeNotMarkedCurrent,
		NumberMarkedCurrent:                   metrics.NumberMarkedCurrent,
		CurrentTaskTitle:                      metrics.CurrentTaskTitle,
		CurrentTaskHasDate:                    metrics.CurrentTaskHasDate,
		CurrentTaskHasTime:                    metrics.CurrentTaskHasTime,
		CurrentTaskIsOverdue:                  metrics.CurrentTaskIsOverdue,
	}
}

// Field resolves a snapshot field by its configuration-grammar name. The
// schema is closed: lookups fail for anything outside the enumerated set, so
// condition evaluation and message templating fail closed on unknown names.
func (s *Snapshot) Field(name string) (any, bool) {
	switch name {
	case "dayOfWeek":
		return s.DayOfWeek, true
	case "hours":
		return s.Hours, true
	case "minutes":
		return s.Minutes, true
	case "seconds":
		return s.Seconds, true
	case "numberOverdueWithTime":
		return s.NumberOverdueWithTime, true
	case "numberOverdueWithTimeMarkedCurrent":
		return s.NumberOverdueWithTimeMarkedCurrent, true
	case "numberOverdueWithTimeNotMarkedCurrent":
		return s.NumberOverdueWithTimeNotMarkedCurrent, true
	case "numberMarkedCurrent":
		return s.NumberMarkedCurrent, true
	case "currentTaskTitle":
		return s.CurrentTaskTitle, true
	case "currentTaskHasDate":
		return s.CurrentTaskHasDate, true
	case "currentTaskHasTime":
		return s.CurrentTaskHasTime, true
	case "currentTaskIsOverdue":
		return s.CurrentTaskIsOverdue, true
	case "status":
		return s.Status, true
	case "message":
		return s.Message, true
	case "secondsInCurrentStatus":
		return s.SecondsInCurrentStatus, true
	case "secondsSinceOkStatus":
		return s.SecondsSinceOkStatus, true
	case "naggingEnabled":
		return s.NaggingEnabled, true
	case "downtimeEnabled":
		return s.DowntimeEnabled, true
	default:
		return nil, false
	}
}

// FieldNames lists every resolvable snapshot field in declaration order.
func FieldNames() []string {
	return []string{
		"dayOfWeek",
		"hours",
		"minutes",
		"seconds",
		"numberOverdueWithTime",
		"numberOverdueWithTimeMarkedCurrent",
		"numberOverdueWithTimeNotMarkedCurrent",
		"numberMarkedCurrent",
		"currentTaskTitle",
		"currentTaskHasDate",
		"currentTaskHasTime",
		"currentTaskIsOverdue",
		"status",
		"message",
		"secondsInCurrentStatus",
		"secondsSinceOkStatus",
		"naggingEnabled",
		"downtimeEnabled",
	}
}
