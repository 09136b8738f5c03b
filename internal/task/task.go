package task

import (
	"strings"
	"time"
)

// DueLayout is the minute-precision local date-time format used by forms
// and by the persisted blob.
const DueLayout = "2006-01-02T15:04"

type ID int64

// Priority orders high before medium before low. The zero value is not a
// valid priority and stands for "not given".
type Priority int

const (
	PriorityHigh Priority = iota + 1
	PriorityMedium
	PriorityLow
)

// Priorities lists every priority in sort order.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityLow:
		return "low"
	default:
		return "medium"
	}
}

// Valid reports whether p is one of the three known priorities.
func (p Priority) Valid() bool {
	return p >= PriorityHigh && p <= PriorityLow
}

func ParsePriority(v string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "high":
		return PriorityHigh, true
	case "medium":
		return PriorityMedium, true
	case "low":
		return PriorityLow, true
	}
	return PriorityMedium, false
}

type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

func Filters() []Filter {
	return []Filter{FilterAll, FilterActive, FilterCompleted}
}

// Valid reports whether f is exactly all, active or completed.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterActive, FilterCompleted:
		return true
	}
	return false
}

// ParseFilter reads user input, ignoring case and surrounding space.
func ParseFilter(v string) (Filter, bool) {
	f := Filter(strings.ToLower(strings.TrimSpace(v)))
	switch f {
	case FilterAll, FilterActive, FilterCompleted:
		return f, true
	}
	return "", false
}

// Match reports whether t is selected by f. Unknown filters select nothing.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterAll:
		return true
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	}
	return false
}

type Task struct {
	ID        ID
	Text      string
	Due       time.Time
	Priority  Priority
	Completed bool
}

func (t Task) HasDue() bool {
	return !t.Due.IsZero()
}

// DueString formats the due date as DueLayout, or "" when there is none.
func (t Task) DueString() string {
	if !t.HasDue() {
		return ""
	}
	return t.Due.Format(DueLayout)
}

// Draft carries the user-editable fields of a task.
type Draft struct {
	Text     string
	Due      time.Time
	Priority Priority
}

// ParseDue reads a form or blob date-time in local time. An empty string is
// a valid "no due date". Seconds, if present, are dropped.
func ParseDue(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{DueLayout, "2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02"} {
		if parsed, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return TruncateMinute(parsed), nil
		}
	}
	_, err := time.ParseInLocation(DueLayout, v, time.Local)
	return time.Time{}, err
}

func TruncateMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
