// Package app is the command layer between presenters and the task store.
// Every gesture goes through Dispatch: mutate, persist, re-project, and hand
// back the Frame the presenter repaints in full.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"taskcal/internal/calendar"
	"taskcal/internal/task"
	"taskcal/internal/view"
)

// Persister saves the whole collection.
type Persister interface {
	Save(ctx context.Context, tasks []task.Task) error
}

type Option func(*App)

func WithLogger(log zerolog.Logger) Option {
	return func(a *App) {
		a.log = log
	}
}

func WithLabels(labels view.Labels) Option {
	return func(a *App) {
		a.labels = labels
	}
}

func WithWidget(w calendar.Widget) Option {
	return func(a *App) {
		a.widget = w
	}
}

func WithClock(clock func() time.Time) Option {
	return func(a *App) {
		a.clock = clock
	}
}

// WithView sets the view shown first. Unknown names keep the list.
func WithView(v string) Option {
	return func(a *App) {
		if k, ok := ParseView(v); ok {
			a.view = k
		}
	}
}

// App serializes gestures over one store. The zero value is not usable;
// call New.
type App struct {
	mu      sync.Mutex
	store   *task.Store
	persist Persister
	widget  calendar.Widget
	labels  view.Labels
	log     zerolog.Logger
	clock   func() time.Time

	view  ViewKind
	focus *time.Time

	// set by widget callbacks while a gesture is applied
	changed bool
}

func New(store *task.Store, persist Persister, opts ...Option) *App {
	a := &App{
		store:   store,
		persist: persist,
		labels:  view.LabelsFor("en"),
		log:     zerolog.Nop(),
		clock:   time.Now,
		view:    ViewList,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.widget == nil {
		a.widget = calendar.New(calendar.WithClock(a.clock))
	}
	a.widget.OnDateClick(a.openAgenda)
	a.widget.OnEventClick(a.toggleFromCalendar)
	return a
}

func (a *App) Labels() view.Labels {
	return a.labels
}

// Tasks returns a copy of the collection in insertion order.
func (a *App) Tasks() []task.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.Tasks()
}

// Events projects the calendar events of the current filter, whichever
// view is shown.
func (a *App) Events() []view.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	return view.Calendar(a.store.Snapshot(), a.store.Filter(), a.labels)
}

// Frame re-projects the current state without applying a gesture.
func (a *App) Frame() Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.project()
}

// Dispatch applies cmd atomically and returns the frame to repaint.
// Failures are logged, never returned.
func (a *App) Dispatch(ctx context.Context, cmd Command) (frame Frame) {
	a.mu.Lock()
	defer a.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			a.log.Error().Str("gesture", string(cmd.Gesture)).Interface("panic", r).Msg("gesture failed")
			frame = a.project()
		}
	}()

	a.changed = false
	a.apply(cmd)
	if a.changed {
		if err := a.persist.Save(ctx, a.store.Tasks()); err != nil {
			a.log.Error().Err(err).Str("gesture", string(cmd.Gesture)).Msg("persist tasks")
		}
	}
	return a.project()
}

func (a *App) apply(cmd Command) {
	log := a.log.With().Str("gesture", string(cmd.Gesture)).Logger()
	switch cmd.Gesture {
	case GestureSubmitTask:
		created, ok := a.store.Create(a.draft(cmd.Form, log))
		if !ok {
			log.Debug().Msg("blank task text ignored")
			return
		}
		log.Debug().Int64("id", int64(created.ID)).Msg("task created")
		a.changed = true
	case GestureClickFilter:
		if !a.store.SetFilter(task.Filter(cmd.Value)) {
			log.Debug().Str("filter", cmd.Value).Msg("unknown filter ignored")
		}
	case GestureClickTask, GestureAgendaItem:
		a.toggle(cmd.ID, log)
	case GestureCalendarEvent:
		a.widget.ClickEvent(cmd.ID)
	case GestureClickEdit:
		if !a.store.EnterEdit(cmd.ID) {
			log.Debug().Int64("id", int64(cmd.ID)).Msg("unknown task")
		}
	case GestureClickSave:
		if !a.store.SaveEdit(cmd.ID, a.draft(cmd.Form, log)) {
			log.Debug().Int64("id", int64(cmd.ID)).Msg("unknown task")
			return
		}
		a.changed = true
	case GestureClickCancelEdit:
		a.store.CancelEdit()
	case GestureClickDelete:
		if !a.store.Delete(cmd.ID) {
			log.Debug().Int64("id", int64(cmd.ID)).Msg("unknown task")
			return
		}
		a.changed = true
	case GestureCalendarDay:
		a.widget.ClickDate(cmd.Date)
	case GestureCloseAgenda:
		a.focus = nil
	case GestureSwitchView:
		k, ok := ParseView(cmd.Value)
		if !ok {
			log.Debug().Str("view", cmd.Value).Msg("unknown view ignored")
			return
		}
		a.view = k
		a.focus = nil
	case GestureNavigateCalendar:
		dir, ok := calendar.ParseDirection(cmd.Value)
		if !ok {
			log.Debug().Str("direction", cmd.Value).Msg("unknown direction ignored")
			return
		}
		a.widget.Navigate(dir)
	case GestureSetCalendarMode:
		mode, ok := calendar.ParseMode(cmd.Value)
		if !ok {
			log.Debug().Str("mode", cmd.Value).Msg("unknown calendar mode ignored")
			return
		}
		a.widget.SetViewType(mode)
	default:
		log.Warn().Msg("unknown gesture")
	}
}

func (a *App) toggle(id task.ID, log zerolog.Logger) {
	if !a.store.ToggleCompleted(id) {
		log.Debug().Int64("id", int64(id)).Msg("unknown task")
		return
	}
	a.changed = true
}

func (a *App) toggleFromCalendar(id task.ID) {
	a.toggle(id, a.log.With().Str("gesture", string(GestureCalendarEvent)).Logger())
}

func (a *App) openAgenda(date time.Time) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	a.focus = &day
}

// draft parses raw form fields. An unreadable due date counts as none and
// an unknown priority as not given.
func (a *App) draft(f Form, log zerolog.Logger) task.Draft {
	d := task.Draft{Text: f.Text}
	due, err := task.ParseDue(f.Due)
	if err != nil {
		log.Debug().Str("due", f.Due).Msg("unreadable due date ignored")
	}
	d.Due = due
	if p, ok := task.ParsePriority(f.Priority); ok {
		d.Priority = p
	}
	return d
}

func (a *App) project() Frame {
	snap := a.store.Snapshot()
	filter := a.store.Filter()
	frame := Frame{
		View:    a.view,
		Filter:  filter,
		Stats:   a.store.Stats(),
		List:    view.List(snap, filter, a.labels),
		Locale:  a.labels.Locale,
		Labels:  a.labels,
		Editing: snap.InEdit,
	}
	if a.view == ViewCalendar {
		events := view.Calendar(snap, filter, a.labels)
		a.widget.SetEvents(events)
		grid := a.widget.Grid()
		frame.Calendar = &CalendarFrame{
			Mode:   a.widget.CurrentViewType(),
			Anchor: a.widget.Anchor(),
			Title:  a.calendarTitle(grid),
			Events: events,
			Grid:   grid,
		}
	}
	if a.focus != nil {
		ag := view.DayAgenda(snap, *a.focus, a.labels)
		frame.Agenda = &ag
	}
	return frame
}

func (a *App) calendarTitle(g calendar.Grid) string {
	if g.Mode != calendar.ModeWeek {
		return a.labels.MonthTitle(g.Anchor)
	}
	from, to := g.Range()
	return fmt.Sprintf("%s - %s", from.Format("2006-01-02"), to.AddDate(0, 0, -1).Format("2006-01-02"))
}

// Frame is everything a presenter paints after a gesture.
type Frame struct {
	View    ViewKind
	Filter  task.Filter
	Stats   task.Stats
	Locale  string
	Labels  view.Labels
	Editing bool
	List    []view.ListItem
	// Calendar is nil unless the calendar view is shown.
	Calendar *CalendarFrame
	// Agenda is nil while no day is focused.
	Agenda *view.Agenda
}

type CalendarFrame struct {
	Mode   calendar.Mode
	Anchor time.Time
	Title  string
	Events []view.Event
	Grid   calendar.Grid
}
