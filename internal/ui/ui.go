package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskcal/internal/app"
	"taskcal/internal/calendar"
	"taskcal/internal/config"
	"taskcal/internal/task"
	"taskcal/internal/view"
)

type mode int

const (
	modeBrowse mode = iota
	modeForm
	modeConfirmDelete
)

// formState backs the add and edit forms. One text input is reused for
// every field, as index moves through them.
type formState struct {
	editID   task.ID
	editing  bool
	text     string
	due      string
	priority string
	index    int
}

type Model struct {
	ctx    context.Context
	app    *app.App
	keys   config.Keymap
	labels view.Labels
	frame  app.Frame

	mode       mode
	cursor     int
	day        time.Time
	agendaPos  int
	input      textinput.Model
	form       *formState
	pendingDel *view.ListItem
	status     string
}

func New(ctx context.Context, a *app.App, keys config.Keymap) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		ctx:    ctx,
		app:    a,
		keys:   keys,
		labels: a.Labels(),
		frame:  a.Frame(),
		input:  ti,
		mode:   modeBrowse,
		status: fmt.Sprintf("Press '%s' to add, space to toggle, '%s' to switch view.", keys.Add, keys.SwitchView),
	}
	m.syncDay()
	return m
}

func Run(ctx context.Context, a *app.App, keys config.Keymap) error {
	program := tea.NewProgram(New(ctx, a, keys), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateForm(msg.String(), msg)
		case modeConfirmDelete:
			return m.updateDeleteConfirm(msg.String())
		}
		if m.frame.View == app.ViewCalendar {
			if m.frame.Agenda != nil {
				return m.updateAgenda(msg.String())
			}
			return m.updateCalendar(msg.String())
		}
		return m.updateList(msg.String())
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m *Model) dispatch(cmd app.Command) {
	m.frame = m.app.Dispatch(m.ctx, cmd)
	m.cursor = clampCursor(m.cursor, len(m.frame.List))
	if m.frame.Agenda != nil {
		m.agendaPos = clampCursor(m.agendaPos, len(m.frame.Agenda.Items))
	}
	m.syncDay()
}

// syncDay keeps the calendar cursor on a day the grid shows.
func (m *Model) syncDay() {
	if m.frame.Calendar == nil {
		return
	}
	if _, ok := m.frame.Calendar.Grid.Find(m.day); !ok || m.day.IsZero() {
		m.day = m.frame.Calendar.Anchor
	}
}

// global handles keys shared by the list and the calendar.
func (m Model) global(key string) (Model, tea.Cmd, bool) {
	switch key {
	case "ctrl+c", m.keys.Quit:
		return m, tea.Quit, true
	case m.keys.FilterAll:
		m.dispatch(app.ClickFilter(string(task.FilterAll)))
	case m.keys.FilterActive:
		m.dispatch(app.ClickFilter(string(task.FilterActive)))
	case m.keys.FilterCompleted:
		m.dispatch(app.ClickFilter(string(task.FilterCompleted)))
	case m.keys.SwitchView:
		next := app.ViewCalendar
		if m.frame.View == app.ViewCalendar {
			next = app.ViewList
		}
		m.dispatch(app.SwitchView(string(next)))
		m.status = "Showing " + string(next)
	case m.keys.Add:
		return m.startForm(nil), nil, true
	default:
		return m, nil, false
	}
	if key == m.keys.FilterAll || key == m.keys.FilterActive || key == m.keys.FilterCompleted {
		m.status = "Filter: " + string(m.frame.Filter)
	}
	return m, nil, true
}

func (m Model) updateList(key string) (tea.Model, tea.Cmd) {
	if next, cmd, ok := m.global(key); ok {
		return next, cmd
	}
	n := len(m.frame.List)
	switch key {
	case m.keys.Down, "down":
		m.cursor = clampCursor(m.cursor+1, n)
	case m.keys.Up, "up":
		m.cursor = clampCursor(m.cursor-1, n)
	case m.keys.Toggle:
		if n == 0 {
			return m, nil
		}
		m.dispatch(app.ClickTask(m.frame.List[m.cursor].ID))
		m.status = "Toggled task"
	case m.keys.Delete:
		if n == 0 {
			return m, nil
		}
		it := m.frame.List[m.cursor]
		m.pendingDel = &it
		m.mode = modeConfirmDelete
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", it.Text)
	case m.keys.Edit:
		if n == 0 {
			m.status = "No tasks to edit"
			return m, nil
		}
		it := m.frame.List[m.cursor]
		m.dispatch(app.ClickEdit(it.ID))
		return m.startForm(&it), nil
	}
	return m, nil
}

func (m Model) updateCalendar(key string) (tea.Model, tea.Cmd) {
	if next, cmd, ok := m.global(key); ok {
		return next, cmd
	}
	switch key {
	case m.keys.Left, "left":
		m.moveDay(-1)
	case m.keys.Right, "right":
		m.moveDay(1)
	case m.keys.Up, "up":
		m.moveDay(-7)
	case m.keys.Down, "down":
		m.moveDay(7)
	case m.keys.Prev:
		m.dispatch(app.NavigateCalendar(string(calendar.Prev)))
		m.day = m.frame.Calendar.Anchor
	case m.keys.Next:
		m.dispatch(app.NavigateCalendar(string(calendar.Next)))
		m.day = m.frame.Calendar.Anchor
	case m.keys.Today:
		m.dispatch(app.NavigateCalendar(string(calendar.Today)))
		m.day = m.frame.Calendar.Anchor
	case m.keys.CalendarMode:
		next := calendar.ModeWeek
		if m.frame.Calendar.Mode == calendar.ModeWeek {
			next = calendar.ModeMonth
		}
		day := m.day
		m.dispatch(app.SetCalendarMode(string(next)))
		m.status = "Calendar: " + string(next)
		m.day = day
		m.syncDay()
	case m.keys.Confirm:
		m.agendaPos = 0
		m.dispatch(app.ClickCalendarDay(m.day))
	}
	return m, nil
}

// moveDay shifts the day cursor, paging the calendar when it leaves the grid.
func (m *Model) moveDay(days int) {
	target := m.day.AddDate(0, 0, days)
	if _, ok := m.frame.Calendar.Grid.Find(target); !ok {
		dir := calendar.Next
		if days < 0 {
			dir = calendar.Prev
		}
		m.frame = m.app.Dispatch(m.ctx, app.NavigateCalendar(string(dir)))
	}
	m.day = target
	m.syncDay()
}

func (m Model) updateAgenda(key string) (tea.Model, tea.Cmd) {
	items := m.frame.Agenda.Items
	switch key {
	case "ctrl+c", m.keys.Quit:
		return m, tea.Quit
	case m.keys.Cancel, "esc":
		m.dispatch(app.CloseAgenda())
	case m.keys.Down, "down":
		m.agendaPos = clampCursor(m.agendaPos+1, len(items))
	case m.keys.Up, "up":
		m.agendaPos = clampCursor(m.agendaPos-1, len(items))
	case m.keys.Toggle, m.keys.Confirm:
		if len(items) == 0 {
			return m, nil
		}
		m.dispatch(app.ClickAgendaItem(items[m.agendaPos].ID))
		m.status = "Toggled task"
	default:
		if next, cmd, ok := m.global(key); ok {
			return next, cmd
		}
	}
	return m, nil
}

func (m Model) startForm(it *view.ListItem) Model {
	fs := &formState{priority: task.PriorityMedium.String()}
	m.status = "New task: tab to move, enter to advance, esc to cancel"
	if it != nil {
		fs.editing = true
		fs.editID = it.ID
		fs.text = it.Text
		fs.due = it.DueInput
		fs.priority = it.Priority.String()
		m.status = "Edit task: tab to move, enter to advance, esc to cancel"
	}
	m.form = fs
	m.mode = modeForm
	m.loadField()
	m.input.Focus()
	return m
}

func (m Model) updateForm(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.keys.Cancel, "esc":
		if m.form.editing {
			m.dispatch(app.ClickCancelEdit())
		}
		m.form = nil
		m.mode = modeBrowse
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case "tab", "down":
		m.form.setCurrentValue(m.input.Value())
		m.form.index = wrapIndex(m.form.index+1, len(formFields()))
		m.loadField()
		return m, nil
	case "shift+tab", "up":
		m.form.setCurrentValue(m.input.Value())
		m.form.index = wrapIndex(m.form.index-1, len(formFields()))
		m.loadField()
		return m, nil
	case m.keys.Confirm, "enter":
		m.form.setCurrentValue(m.input.Value())
		if m.form.index < len(formFields())-1 {
			m.form.index++
			m.loadField()
			return m, nil
		}
		return m.submitForm(), nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// loadField shows the current form field in the input, cursor at the end.
func (m *Model) loadField() {
	m.input.SetValue(m.form.currentValue())
	m.input.Placeholder = m.form.currentLabel()
	m.input.CursorEnd()
}

func (m Model) submitForm() Model {
	fs := m.form
	form := app.Form{Text: fs.text, Due: fs.due, Priority: fs.priority}
	if fs.editing {
		m.dispatch(app.ClickSave(fs.editID, form))
		m.status = "Saved task"
	} else {
		before := m.frame.Stats.Total
		m.dispatch(app.SubmitTask(form))
		m.status = "Added task"
		if m.frame.Stats.Total == before {
			m.status = "Text cannot be empty"
		}
	}
	m.form = nil
	m.mode = modeBrowse
	m.input.SetValue("")
	m.input.Blur()
	return m
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", m.keys.Cancel:
		m.status = "Delete cancelled"
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			break
		}
		m.dispatch(app.ClickDelete(m.pendingDel.ID))
		m.status = "Deleted task"
	default:
		return m, nil
	}
	m.mode = modeBrowse
	m.pendingDel = nil
	return m, nil
}

func formFields() []string {
	return []string{"text", "due (YYYY-MM-DDTHH:MM)", "priority (high/medium/low)"}
}

func (fs formState) currentLabel() string {
	return formFields()[fs.index]
}

func (fs formState) currentValue() string {
	switch fs.index {
	case 0:
		return fs.text
	case 1:
		return fs.due
	case 2:
		return fs.priority
	default:
		return ""
	}
}

func (fs *formState) setCurrentValue(v string) {
	switch fs.index {
	case 0:
		fs.text = v
	case 1:
		fs.due = v
	case 2:
		fs.priority = v
	}
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("taskcal"))
	b.WriteString(" ")
	b.WriteString(faintStyle.Render(fmt.Sprintf("%d tasks • %d active • %d completed • filter: %s",
		m.frame.Stats.Total, m.frame.Stats.Active, m.frame.Stats.Completed, m.frame.Filter)))
	b.WriteString("\n\n")

	if m.frame.Calendar != nil {
		b.WriteString(m.renderCalendar())
	} else {
		b.WriteString(m.renderList())
	}
	if m.frame.Agenda != nil {
		b.WriteString("\n")
		b.WriteString(m.renderAgenda())
	}

	b.WriteString("\n---\n")
	if m.form != nil {
		b.WriteString(m.renderFormBox())
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(renderHelp(m.keys, m.frame.View))
	return b.String()
}

func renderHelp(k config.Keymap, v app.ViewKind) string {
	common := fmt.Sprintf("%s/%s/%s filter • %s view • %s add • %s quit",
		k.FilterAll, k.FilterActive, k.FilterCompleted, k.SwitchView, k.Add, k.Quit)
	if v == app.ViewCalendar {
		return fmt.Sprintf("%s%s%s%s move • %s/%s page • %s today • %s month/week • %s agenda • ",
			k.Left, k.Down, k.Up, k.Right, k.Prev, k.Next, k.Today, k.CalendarMode, k.Confirm) + common
	}
	return fmt.Sprintf("%s/%s move • space toggle • %s edit • %s delete • ", k.Up, k.Down, k.Edit, k.Delete) + common
}

func (m Model) renderFormBox() string {
	title := "New task"
	if m.form.editing {
		title = "Edit task"
	}
	var b strings.Builder
	b.WriteString(title + "\n")
	values := []string{m.form.text, m.form.due, m.form.priority}
	for i, name := range formFields() {
		prefix := " "
		if i == m.form.index {
			prefix = ">"
		}
		val := values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-28s : %s\n", prefix, name, val))
	}
	return b.String()
}
