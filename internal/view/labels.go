package view

import (
	"fmt"
	"time"

	"taskcal/internal/task"
)

// Labels holds the user-facing strings of one locale.
type Labels struct {
	Locale       string
	High         string
	Medium       string
	Low          string
	EmptyAgenda  string
	DuePrefixFmt string
	Weekdays     [7]string
	agendaTitle  func(time.Time) string
	monthTitle   func(time.Time) string
}

var english = Labels{
	Locale:       "en",
	High:         "High",
	Medium:       "Medium",
	Low:          "Low",
	EmptyAgenda:  "No tasks for this day.",
	DuePrefixFmt: "Due: %s",
	Weekdays:     [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	agendaTitle: func(d time.Time) string {
		return d.Format("Mon, January 2")
	},
	monthTitle: func(d time.Time) string {
		return d.Format("January 2006")
	},
}

var jaWeekdays = [7]string{"日", "月", "火", "水", "木", "金", "土"}

var japanese = Labels{
	Locale:       "ja",
	High:         "高",
	Medium:       "中",
	Low:          "低",
	EmptyAgenda:  "この日のタスクはありません。",
	DuePrefixFmt: "期限: %s",
	Weekdays:     jaWeekdays,
	agendaTitle: func(d time.Time) string {
		return fmt.Sprintf("%d月%d日(%s)", int(d.Month()), d.Day(), jaWeekdays[d.Weekday()])
	},
	monthTitle: func(d time.Time) string {
		return fmt.Sprintf("%d年%d月", d.Year(), int(d.Month()))
	},
}

// LabelsFor returns the labels for locale, falling back to English.
func LabelsFor(locale string) Labels {
	if locale == "ja" {
		return japanese
	}
	return english
}

func (l Labels) Priority(p task.Priority) string {
	switch p {
	case task.PriorityHigh:
		return l.High
	case task.PriorityLow:
		return l.Low
	default:
		return l.Medium
	}
}

func (l Labels) AgendaTitle(d time.Time) string {
	if l.agendaTitle == nil {
		return english.agendaTitle(d)
	}
	return l.agendaTitle(d)
}

func (l Labels) MonthTitle(d time.Time) string {
	if l.monthTitle == nil {
		return english.monthTitle(d)
	}
	return l.monthTitle(d)
}

func (l Labels) DuePrefix(due string) string {
	return fmt.Sprintf(l.DuePrefixFmt, due)
}

// Event colors.
const (
	ColorHigh      = "#dc3545"
	ColorMedium    = "#ffc107"
	ColorLow       = "#0d6efd"
	ColorCompleted = "#adb5bd"
)

func PriorityColor(p task.Priority) string {
	switch p {
	case task.PriorityHigh:
		return ColorHigh
	case task.PriorityLow:
		return ColorLow
	default:
		return ColorMedium
	}
}
