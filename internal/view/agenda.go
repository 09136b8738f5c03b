package view

import (
	"slices"
	"time"

	"taskcal/internal/task"
)

// TimeLayout is the time-of-day shown for agenda items.
const TimeLayout = "15:04"

type AgendaItem struct {
	ID            task.ID
	Time          string
	Text          string
	Priority      task.Priority
	PriorityLabel string
	Completed     bool
}

// Agenda lists the tasks due on one day. Empty is set instead of leaving
// Items blank so painters show EmptyMessage.
type Agenda struct {
	Date         time.Time
	Title        string
	Items        []AgendaItem
	Empty        bool
	EmptyMessage string
}

// DayAgenda projects every task due on date's calendar day, regardless of
// the list filter, ordered by time of day.
func DayAgenda(snap task.Snapshot, date time.Time, labels Labels) Agenda {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	var due []task.Task
	for _, t := range snap.Tasks {
		if t.HasDue() && task.SameDay(day, t.Due) {
			due = append(due, t)
		}
	}
	slices.SortStableFunc(due, func(a, b task.Task) int {
		return a.Due.Compare(b.Due)
	})

	ag := Agenda{
		Date:  day,
		Title: labels.AgendaTitle(day),
		Items: make([]AgendaItem, 0, len(due)),
	}
	for _, t := range due {
		ag.Items = append(ag.Items, AgendaItem{
			ID:            t.ID,
			Time:          t.Due.Format(TimeLayout),
			Text:          t.Text,
			Priority:      t.Priority,
			PriorityLabel: labels.Priority(t.Priority),
			Completed:     t.Completed,
		})
	}
	if len(ag.Items) == 0 {
		ag.Empty = true
		ag.EmptyMessage = labels.EmptyAgenda
	}
	return ag
}
