// Package calendar models the calendar widget: the current view type, the
// date it is anchored on and the grid of day cells it paints events into.
package calendar

import (
	"strings"
	"time"

	"taskcal/internal/task"
	"taskcal/internal/view"
)

type Mode string

const (
	ModeMonth Mode = "month"
	ModeWeek  Mode = "week"
)

// ParseMode accepts the short names and the widget view-type names.
func ParseMode(v string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "month", "daygridmonth":
		return ModeMonth, true
	case "week", "timegridweek":
		return ModeWeek, true
	}
	return "", false
}

// ViewType is the widget name of the mode.
func (m Mode) ViewType() string {
	if m == ModeWeek {
		return "timeGridWeek"
	}
	return "dayGridMonth"
}

type Direction string

const (
	Prev  Direction = "prev"
	Next  Direction = "next"
	Today Direction = "today"
)

func ParseDirection(v string) (Direction, bool) {
	d := Direction(strings.ToLower(strings.TrimSpace(v)))
	switch d {
	case Prev, Next, Today:
		return d, true
	}
	return "", false
}

// ParseWeekday reads a week start such as "sunday" or "mon".
func ParseWeekday(v string) (time.Weekday, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if len(v) < 3 {
		return time.Sunday, false
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.HasPrefix(strings.ToLower(d.String()), v) {
			return d, true
		}
	}
	return time.Sunday, false
}

type Cell struct {
	Date    time.Time
	InMonth bool
	Today   bool
	Events  []view.Event
}

func (c Cell) Weekday() time.Weekday {
	return c.Date.Weekday()
}

func (c Cell) Weekend() bool {
	wd := c.Date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Class is the day-cell class the browser stylesheet keys weekend colors on.
func (c Cell) Class() string {
	switch c.Date.Weekday() {
	case time.Saturday:
		return "fc-day-sat"
	case time.Sunday:
		return "fc-day-sun"
	}
	return ""
}

type Grid struct {
	Mode     Mode
	Anchor   time.Time
	Weekdays []time.Weekday
	Weeks    [][]Cell
}

// Days returns the cells in order, week after week.
func (g Grid) Days() []Cell {
	var out []Cell
	for _, w := range g.Weeks {
		out = append(out, w...)
	}
	return out
}

// Find returns the cell for date, if the grid shows it.
func (g Grid) Find(date time.Time) (Cell, bool) {
	for _, w := range g.Weeks {
		for _, c := range w {
			if task.SameDay(c.Date, date) {
				return c, true
			}
		}
	}
	return Cell{}, false
}

// Range is the first shown day and the day after the last one.
func (g Grid) Range() (time.Time, time.Time) {
	if len(g.Weeks) == 0 {
		return time.Time{}, time.Time{}
	}
	last := g.Weeks[len(g.Weeks)-1]
	return g.Weeks[0][0].Date, last[len(last)-1].Date.AddDate(0, 0, 1)
}

const dayKey = "2006-01-02"

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	day := startOfDay(t)
	back := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -back)
}

// BuildGrid lays out the weeks shown for anchor in mode. A month grid covers
// every full week touching the anchor's month; a week grid is the single
// week containing the anchor. Events land on the cell of their start day,
// keeping the given order.
func BuildGrid(anchor time.Time, mode Mode, weekStart time.Weekday, today time.Time, events []view.Event) Grid {
	anchor = startOfDay(anchor)
	var first time.Time
	weeks := 1
	if mode == ModeWeek {
		first = startOfWeek(anchor, weekStart)
	} else {
		mode = ModeMonth
		monthStart := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		monthEnd := monthStart.AddDate(0, 1, -1)
		first = startOfWeek(monthStart, weekStart)
		last := startOfWeek(monthEnd, weekStart)
		weeks = int(last.Sub(first).Hours()/24+0.5)/7 + 1
	}

	byDay := make(map[string][]view.Event)
	for _, ev := range events {
		if ev.Start.IsZero() {
			continue
		}
		key := ev.Start.In(anchor.Location()).Format(dayKey)
		byDay[key] = append(byDay[key], ev)
	}

	g := Grid{Mode: mode, Anchor: anchor}
	for i := 0; i < 7; i++ {
		g.Weekdays = append(g.Weekdays, time.Weekday((int(weekStart)+i)%7))
	}
	for w := 0; w < weeks; w++ {
		row := make([]Cell, 7)
		for d := 0; d < 7; d++ {
			date := first.AddDate(0, 0, w*7+d)
			row[d] = Cell{
				Date:    date,
				InMonth: mode == ModeWeek || date.Month() == anchor.Month(),
				Today:   task.SameDay(date, today),
				Events:  byDay[date.Format(dayKey)],
			}
		}
		g.Weeks = append(g.Weeks, row)
	}
	return g
}

// Navigate moves anchor by one page of mode. Month pages land on the first
// of the month so that short months are never skipped.
func Navigate(anchor time.Time, mode Mode, dir Direction, today time.Time) time.Time {
	anchor = startOfDay(anchor)
	switch dir {
	case Today:
		return startOfDay(today)
	case Prev, Next:
		step := 1
		if dir == Prev {
			step = -1
		}
		if mode == ModeWeek {
			return anchor.AddDate(0, 0, 7*step)
		}
		first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
		return first.AddDate(0, step, 0)
	}
	return anchor
}
