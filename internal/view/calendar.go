package view

import (
	"time"

	"taskcal/internal/task"
)

// Event is one calendar entry, in the shape calendar widgets consume.
type Event struct {
	ID          task.ID   `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"-"`
	StartInput  string    `json:"start"`
	Color       string    `json:"backgroundColor"`
	BorderColor string    `json:"borderColor"`
	Completed   bool      `json:"-"`
}

// Calendar projects the dated tasks matching f as events, in list order.
func Calendar(snap task.Snapshot, f task.Filter, labels Labels) []Event {
	selected := Select(snap.Tasks, f)
	SortForDisplay(selected)
	events := make([]Event, 0, len(selected))
	for _, t := range selected {
		if !t.HasDue() {
			continue
		}
		color := PriorityColor(t.Priority)
		if t.Completed {
			color = ColorCompleted
		}
		events = append(events, Event{
			ID:          t.ID,
			Title:       "[" + labels.Priority(t.Priority) + "] " + t.Text,
			Start:       t.Due,
			StartInput:  t.DueString(),
			Color:       color,
			BorderColor: color,
			Completed:   t.Completed,
		})
	}
	return events
}
