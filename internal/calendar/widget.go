package calendar

import (
	"time"

	"taskcal/internal/task"
	"taskcal/internal/view"
)

// Widget renders events given {id, title, start, color} and reports date
// clicks and event clicks. Its view type and anchor date are kept across
// SetEvents calls.
type Widget interface {
	SetEvents(events []view.Event)
	Events() []view.Event
	CurrentViewType() Mode
	SetViewType(mode Mode)
	Anchor() time.Time
	Navigate(dir Direction)
	Grid() Grid
	OnDateClick(fn func(date time.Time))
	OnEventClick(fn func(id task.ID))
	ClickDate(date time.Time)
	ClickEvent(id task.ID)
}

type Option func(*Calendar)

func WithClock(clock func() time.Time) Option {
	return func(c *Calendar) {
		c.clock = clock
	}
}

func WithMode(mode Mode) Option {
	return func(c *Calendar) {
		if m, ok := ParseMode(string(mode)); ok {
			c.mode = m
		}
	}
}

func WithWeekStart(d time.Weekday) Option {
	return func(c *Calendar) {
		c.weekStart = d
	}
}

// Calendar is the in-process Widget both presenters paint from.
type Calendar struct {
	mode      Mode
	anchor    time.Time
	weekStart time.Weekday
	events    []view.Event
	clock     func() time.Time

	onDate  func(time.Time)
	onEvent func(task.ID)
}

func New(opts ...Option) *Calendar {
	c := &Calendar{
		mode:  ModeMonth,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.anchor = startOfDay(c.clock())
	return c
}

func (c *Calendar) SetEvents(events []view.Event) {
	c.events = append([]view.Event(nil), events...)
}

func (c *Calendar) Events() []view.Event {
	return append([]view.Event(nil), c.events...)
}

func (c *Calendar) CurrentViewType() Mode {
	return c.mode
}

func (c *Calendar) SetViewType(mode Mode) {
	if m, ok := ParseMode(string(mode)); ok {
		c.mode = m
	}
}

func (c *Calendar) Anchor() time.Time {
	return c.anchor
}

func (c *Calendar) WeekStart() time.Weekday {
	return c.weekStart
}

func (c *Calendar) Navigate(dir Direction) {
	c.anchor = Navigate(c.anchor, c.mode, dir, c.clock())
}

func (c *Calendar) Grid() Grid {
	return BuildGrid(c.anchor, c.mode, c.weekStart, c.clock(), c.events)
}

func (c *Calendar) OnDateClick(fn func(time.Time)) {
	c.onDate = fn
}

func (c *Calendar) OnEventClick(fn func(task.ID)) {
	c.onEvent = fn
}

func (c *Calendar) ClickDate(date time.Time) {
	if c.onDate != nil {
		c.onDate(startOfDay(date))
	}
}

// ClickEvent reports a click on an event. The id is passed on even when
// the widget is not showing it, so links painted before a restart still
// reach the task.
func (c *Calendar) ClickEvent(id task.ID) {
	if c.onEvent != nil {
		c.onEvent(id)
	}
}
