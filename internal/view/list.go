// Package view derives display data from a task snapshot. Every function
// is pure: the same snapshot and parameters always give the same output,
// and a fresh slice is built on each call.
package view

import (
	"slices"
	"time"

	"taskcal/internal/task"
)

// DueDisplayLayout is how list rows show a due date.
const DueDisplayLayout = "2006-01-02 15:04"

type ListItem struct {
	ID            task.ID
	Text          string
	Due           time.Time
	DueInput      string
	DueLabel      string
	Priority      task.Priority
	PriorityLabel string
	Completed     bool
	Editing       bool
}

// Select returns the tasks f matches, in insertion order.
func Select(tasks []task.Task, f task.Filter) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// SortForDisplay orders tasks by due date ascending with undated tasks
// last, then by priority high, medium, low. The sort is stable.
func SortForDisplay(tasks []task.Task) {
	slices.SortStableFunc(tasks, compareForDisplay)
}

func compareForDisplay(a, b task.Task) int {
	switch {
	case a.HasDue() && !b.HasDue():
		return -1
	case !a.HasDue() && b.HasDue():
		return 1
	case a.HasDue() && b.HasDue():
		if c := a.Due.Compare(b.Due); c != 0 {
			return c
		}
	}
	return int(a.Priority) - int(b.Priority)
}

// List projects the list view: tasks matching f, sorted for display.
func List(snap task.Snapshot, f task.Filter, labels Labels) []ListItem {
	selected := Select(snap.Tasks, f)
	SortForDisplay(selected)
	items := make([]ListItem, 0, len(selected))
	for _, t := range selected {
		item := ListItem{
			ID:            t.ID,
			Text:          t.Text,
			Due:           t.Due,
			DueInput:      t.DueString(),
			Priority:      t.Priority,
			PriorityLabel: labels.Priority(t.Priority),
			Completed:     t.Completed,
			Editing:       snap.IsEditing(t.ID),
		}
		if t.HasDue() {
			item.DueLabel = t.Due.Format(DueDisplayLayout)
		}
		items = append(items, item)
	}
	return items
}
