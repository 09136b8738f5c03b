package web

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"taskcal/internal/app"
	"taskcal/internal/calendar"
	"taskcal/internal/task"
	"taskcal/internal/view"
)

const htmxScript = "https://unpkg.com/htmx.org@1.9.12"

const styles = `
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 960px; color: #212529; }
button { cursor: pointer; }
.toolbar, .filters, .views { display: flex; gap: .5rem; margin: .75rem 0; align-items: center; }
.filters button.active, .views button.active, .modes button.active { font-weight: bold; text-decoration: underline; }
.task-list { list-style: none; padding: 0; }
.task-item { display: flex; gap: .75rem; align-items: center; padding: .4rem .5rem; border-bottom: 1px solid #dee2e6; }
.task-item .text { flex: 1; cursor: pointer; }
.task-completed .text { text-decoration: line-through; color: #adb5bd; }
.badge { border-radius: .25rem; padding: 0 .4rem; color: #fff; font-size: .8rem; }
.badge-high { background: #dc3545; }
.badge-medium { background: #ffc107; color: #212529; }
.badge-low { background: #0d6efd; }
.due { color: #6c757d; font-size: .85rem; }
.fc-grid { width: 100%; border-collapse: collapse; table-layout: fixed; }
.fc-grid th, .fc-grid td { border: 1px solid #dee2e6; vertical-align: top; }
.fc-day { height: 6rem; cursor: pointer; padding: .2rem; }
.fc-day-other { background: #f8f9fa; color: #adb5bd; }
.fc-day-today { background: #fff8e1; }
.fc-day-sat .fc-daynum { color: #0d6efd; }
.fc-day-sun .fc-daynum { color: #dc3545; }
.fc-event { border: 1px solid; border-radius: .2rem; color: #fff; font-size: .75rem; margin-top: .15rem; padding: 0 .2rem; overflow: hidden; white-space: nowrap; text-overflow: ellipsis; }
#agenda { border: 1px solid #dee2e6; border-radius: .3rem; margin-top: 1rem; padding: .75rem; }
.agenda-item { cursor: pointer; padding: .2rem 0; }
.agenda-item.completed { text-decoration: line-through; opacity: .5; }
.agenda-empty { color: #6c757d; }
`

// painter turns frames into HTML. Every interactive element posts a
// gesture and swaps the whole #app element with the response.
type painter struct {
	tokens *Tokens
	labels view.Labels
}

// Page is the full document around the app body.
func (p painter) Page(f app.Frame) templ.Component {
	return p.component(func(b *builder) {
		b.raw(`<!DOCTYPE html><html lang="`)
		b.text(f.Locale)
		b.raw(`"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.raw(`<title>taskcal</title><script src="` + htmxScript + `"></script><style>` + styles + `</style></head><body>`)
		p.app(b, f)
		b.raw(`</body></html>`)
	})
}

// App is the #app fragment every gesture response carries.
func (p painter) App(f app.Frame) templ.Component {
	return p.component(func(b *builder) {
		p.app(b, f)
	})
}

func (p painter) component(paint func(b *builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &builder{tokens: p.tokens}
		paint(b)
		if b.err != nil {
			return b.err
		}
		_, err := io.WriteString(w, b.sb.String())
		return err
	})
}

func (p painter) app(b *builder, f app.Frame) {
	b.raw(`<div id="app" hx-target="#app" hx-swap="outerHTML">`)
	b.raw(`<header><h1>taskcal</h1><p class="stats">`)
	b.text(fmt.Sprintf("%d tasks, %d active, %d completed", f.Stats.Total, f.Stats.Active, f.Stats.Completed))
	b.raw(`</p></header>`)

	p.createForm(b)
	p.filters(b, f.Filter)
	p.views(b, f.View)

	if f.Calendar != nil {
		p.calendar(b, f.Calendar)
	} else {
		p.list(b, f.List)
	}
	if f.Agenda != nil {
		p.agenda(b, f.Agenda)
	}
	b.raw(`</div>`)
}

func (p painter) createForm(b *builder) {
	b.raw(`<form class="create" hx-post="/tasks">`)
	b.raw(`<input type="text" name="text" placeholder="New task" autofocus>`)
	b.raw(`<input type="datetime-local" name="dueDate">`)
	p.prioritySelect(b, task.PriorityMedium)
	b.raw(`<button type="submit">Add</button></form>`)
}

func (p painter) prioritySelect(b *builder, selected task.Priority) {
	b.raw(`<select name="priority">`)
	for _, pr := range task.Priorities() {
		b.raw(`<option value="` + pr.String() + `"`)
		if pr == selected {
			b.raw(` selected`)
		}
		b.raw(`>`)
		b.text(p.labels.Priority(pr))
		b.raw(`</option>`)
	}
	b.raw(`</select>`)
}

func (p painter) filters(b *builder, current task.Filter) {
	b.raw(`<nav class="filters">`)
	for _, f := range task.Filters() {
		b.raw(`<button data-filter="` + string(f) + `" hx-post="/filter/` + string(f) + `"`)
		if f == current {
			b.raw(` class="active"`)
		}
		b.raw(`>` + string(f) + `</button>`)
	}
	b.raw(`</nav>`)
}

func (p painter) views(b *builder, current app.ViewKind) {
	b.raw(`<nav class="views">`)
	for _, v := range []app.ViewKind{app.ViewList, app.ViewCalendar} {
		b.raw(`<button hx-post="/view/` + string(v) + `"`)
		if v == current {
			b.raw(` class="active"`)
		}
		b.raw(`>` + string(v) + `</button>`)
	}
	b.raw(`</nav>`)
}

func (p painter) list(b *builder, items []view.ListItem) {
	b.raw(`<ul id="task-list" class="task-list">`)
	for _, it := range items {
		if it.Editing {
			p.editRow(b, it)
			continue
		}
		class := "task-item priority-" + it.Priority.String()
		if it.Completed {
			class += " task-completed"
		}
		b.raw(`<li class="` + class + `" data-id="` + fmt.Sprint(int64(it.ID)) + `">`)
		b.raw(`<span class="text" hx-post="`)
		b.action(Action{Name: actionToggle, ID: int64(it.ID)})
		b.raw(`">`)
		b.text(it.Text)
		b.raw(`</span>`)
		if it.DueLabel != "" {
			b.raw(`<span class="due">`)
			b.text(p.labels.DuePrefix(it.DueLabel))
			b.raw(`</span>`)
		}
		b.raw(`<span class="badge badge-` + it.Priority.String() + `">`)
		b.text(it.PriorityLabel)
		b.raw(`</span><button class="edit" hx-post="`)
		b.action(Action{Name: actionEdit, ID: int64(it.ID)})
		b.raw(`">Edit</button><button class="delete" hx-post="`)
		b.action(Action{Name: actionDelete, ID: int64(it.ID)})
		b.raw(`">Delete</button></li>`)
	}
	b.raw(`</ul>`)
}

func (p painter) editRow(b *builder, it view.ListItem) {
	b.raw(`<li class="task-item editing" data-id="` + fmt.Sprint(int64(it.ID)) + `"><form class="edit-form" hx-post="`)
	b.action(Action{Name: actionSave, ID: int64(it.ID)})
	b.raw(`"><input type="text" name="text" value="`)
	b.text(it.Text)
	b.raw(`"><input type="datetime-local" name="dueDate" value="`)
	b.text(it.DueInput)
	b.raw(`">`)
	p.prioritySelect(b, it.Priority)
	b.raw(`<button type="submit">Save</button><button type="button" class="cancel" hx-post="`)
	b.action(Action{Name: actionCancel, ID: int64(it.ID)})
	b.raw(`">Cancel</button></form></li>`)
}

func (p painter) calendar(b *builder, cf *app.CalendarFrame) {
	b.raw(`<section id="calendar" data-view-type="` + cf.Mode.ViewType() + `">`)
	b.raw(`<div class="toolbar">`)
	for _, d := range []calendar.Direction{calendar.Prev, calendar.Next, calendar.Today} {
		b.raw(`<button hx-post="/calendar/nav/` + string(d) + `">` + string(d) + `</button>`)
	}
	b.raw(`<h2 class="fc-title">`)
	b.text(cf.Title)
	b.raw(`</h2><span class="modes">`)
	for _, m := range []calendar.Mode{calendar.ModeMonth, calendar.ModeWeek} {
		b.raw(`<button hx-post="/calendar/mode/` + string(m) + `"`)
		if m == cf.Mode {
			b.raw(` class="active"`)
		}
		b.raw(`>` + string(m) + `</button>`)
	}
	b.raw(`</span></div>`)

	b.raw(`<table class="fc-grid"><thead><tr>`)
	for _, wd := range cf.Grid.Weekdays {
		b.raw(`<th>`)
		b.text(p.labels.Weekdays[wd])
		b.raw(`</th>`)
	}
	b.raw(`</tr></thead><tbody>`)
	for _, week := range cf.Grid.Weeks {
		b.raw(`<tr>`)
		for _, cell := range week {
			p.dayCell(b, cell)
		}
		b.raw(`</tr>`)
	}
	b.raw(`</tbody></table></section>`)
}

func (p painter) dayCell(b *builder, cell calendar.Cell) {
	class := "fc-day"
	if c := cell.Class(); c != "" {
		class += " " + c
	}
	if !cell.InMonth {
		class += " fc-day-other"
	}
	if cell.Today {
		class += " fc-day-today"
	}
	date := cell.Date.Format(dateParam)
	b.raw(`<td class="` + class + `" data-date="` + date + `" hx-post="`)
	b.action(Action{Name: actionDay, Date: date})
	b.raw(`"><div class="fc-daynum">` + fmt.Sprint(cell.Date.Day()) + `</div>`)
	for _, ev := range cell.Events {
		b.raw(`<div class="fc-event" data-event-id="` + fmt.Sprint(int64(ev.ID)) + `" style="background-color:`)
		b.text(ev.Color)
		b.raw(`;border-color:`)
		b.text(ev.BorderColor)
		b.raw(`" hx-trigger="click consume" hx-post="`)
		b.action(Action{Name: actionEvent, ID: int64(ev.ID)})
		b.raw(`">`)
		b.text(ev.Title)
		b.raw(`</div>`)
	}
	b.raw(`</td>`)
}

func (p painter) agenda(b *builder, ag *view.Agenda) {
	b.raw(`<aside id="agenda" data-date="` + ag.Date.Format(dateParam) + `"><header><h3>`)
	b.text(ag.Title)
	b.raw(`</h3><button class="close" hx-post="/agenda/close">&times;</button></header>`)
	if ag.Empty {
		b.raw(`<p class="agenda-empty">`)
		b.text(ag.EmptyMessage)
		b.raw(`</p></aside>`)
		return
	}
	b.raw(`<ul class="agenda-items">`)
	for _, it := range ag.Items {
		class := "agenda-item priority-" + it.Priority.String()
		if it.Completed {
			class += " completed"
		}
		b.raw(`<li class="` + class + `" hx-post="`)
		b.action(Action{Name: actionAgendaToggle, ID: int64(it.ID)})
		b.raw(`"><span class="time">`)
		b.text(it.Time)
		b.raw(`</span> <span class="badge badge-` + it.Priority.String() + `">`)
		b.text(it.PriorityLabel)
		b.raw(`</span> `)
		b.text(it.Text)
		b.raw(`</li>`)
	}
	b.raw(`</ul></aside>`)
}

// builder accumulates markup and keeps the first token error.
type builder struct {
	sb     strings.Builder
	tokens *Tokens
	err    error
}

func (b *builder) raw(s string) {
	b.sb.WriteString(s)
}

func (b *builder) text(s string) {
	b.sb.WriteString(templ.EscapeString(s))
}

// action writes the URL that performs a.
func (b *builder) action(a Action) {
	tok, err := b.tokens.Encode(a)
	if err != nil && b.err == nil {
		b.err = err
	}
	b.sb.WriteString("/actions/" + a.Name + "?p=" + tok)
}
