package app

import (
	"strings"
	"time"

	"taskcal/internal/task"
)

// Gesture names one user action a presenter can report.
type Gesture string

const (
	GestureSubmitTask       Gesture = "submit_task"
	GestureClickFilter      Gesture = "click_filter"
	GestureClickTask        Gesture = "click_task"
	GestureClickEdit        Gesture = "click_edit"
	GestureClickSave        Gesture = "click_save"
	GestureClickCancelEdit  Gesture = "click_cancel_edit"
	GestureClickDelete      Gesture = "click_delete"
	GestureCalendarEvent    Gesture = "click_calendar_event"
	GestureCalendarDay      Gesture = "click_calendar_day"
	GestureAgendaItem       Gesture = "click_agenda_item"
	GestureCloseAgenda      Gesture = "close_agenda"
	GestureSwitchView       Gesture = "switch_view"
	GestureNavigateCalendar Gesture = "navigate_calendar"
	GestureSetCalendarMode  Gesture = "set_calendar_mode"
)

// Form holds raw form field values as the presenter read them.
type Form struct {
	Text     string
	Due      string
	Priority string
}

// Command is a gesture plus the arguments it carries. Build one with the
// constructors below.
type Command struct {
	Gesture Gesture
	ID      task.ID
	Date    time.Time
	Form    Form
	// Value carries the filter, view, direction or mode name.
	Value string
}

func SubmitTask(f Form) Command {
	return Command{Gesture: GestureSubmitTask, Form: f}
}

func ClickFilter(filter string) Command {
	return Command{Gesture: GestureClickFilter, Value: filter}
}

// ClickTask toggles completion of a list row.
func ClickTask(id task.ID) Command {
	return Command{Gesture: GestureClickTask, ID: id}
}

func ClickEdit(id task.ID) Command {
	return Command{Gesture: GestureClickEdit, ID: id}
}

func ClickSave(id task.ID, f Form) Command {
	return Command{Gesture: GestureClickSave, ID: id, Form: f}
}

func ClickCancelEdit() Command {
	return Command{Gesture: GestureClickCancelEdit}
}

func ClickDelete(id task.ID) Command {
	return Command{Gesture: GestureClickDelete, ID: id}
}

func ClickCalendarEvent(id task.ID) Command {
	return Command{Gesture: GestureCalendarEvent, ID: id}
}

func ClickCalendarDay(date time.Time) Command {
	return Command{Gesture: GestureCalendarDay, Date: date}
}

func ClickAgendaItem(id task.ID) Command {
	return Command{Gesture: GestureAgendaItem, ID: id}
}

func CloseAgenda() Command {
	return Command{Gesture: GestureCloseAgenda}
}

func SwitchView(v string) Command {
	return Command{Gesture: GestureSwitchView, Value: v}
}

// NavigateCalendar takes prev, next or today.
func NavigateCalendar(dir string) Command {
	return Command{Gesture: GestureNavigateCalendar, Value: dir}
}

func SetCalendarMode(mode string) Command {
	return Command{Gesture: GestureSetCalendarMode, Value: mode}
}

type ViewKind string

const (
	ViewList     ViewKind = "list"
	ViewCalendar ViewKind = "calendar"
)

func ParseView(v string) (ViewKind, bool) {
	k := ViewKind(strings.ToLower(strings.TrimSpace(v)))
	switch k {
	case ViewList, ViewCalendar:
		return k, true
	}
	return "", false
}
