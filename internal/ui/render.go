package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"taskcal/internal/calendar"
	"taskcal/internal/task"
	"taskcal/internal/view"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	faintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cursorStyle    = lipgloss.NewStyle().Background(lipgloss.Color("63")).Foreground(lipgloss.Color("0"))
	completedStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color(view.ColorCompleted))
	todayStyle     = lipgloss.NewStyle().Underline(true).Bold(true)
	otherStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	satStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color(view.ColorLow))
	sunStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color(view.ColorHigh))
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
)

const cellWidth = 8

func priorityStyle(p task.Priority) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(view.PriorityColor(p)))
}

func (m Model) renderList() string {
	if len(m.frame.List) == 0 {
		return faintStyle.Render("No tasks.") + "\n"
	}
	var b strings.Builder
	for i, it := range m.frame.List {
		check := "[ ]"
		if it.Completed {
			check = "[x]"
		}
		text := it.Text
		if it.Completed {
			text = completedStyle.Render(text)
		}
		line := fmt.Sprintf("%s %s %s", check, priorityStyle(it.Priority).Render(fmt.Sprintf("%-6s", it.PriorityLabel)), text)
		if it.DueLabel != "" {
			line += " " + faintStyle.Render(m.labels.DuePrefix(it.DueLabel))
		}
		if it.Editing {
			line += " " + faintStyle.Render("(editing)")
		}
		if i == m.cursor && m.mode != modeForm {
			line = "> " + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m Model) renderCalendar() string {
	cf := m.frame.Calendar
	var b strings.Builder
	b.WriteString(titleStyle.Render(cf.Title))
	b.WriteString(" ")
	b.WriteString(faintStyle.Render("(" + string(cf.Mode) + ")"))
	b.WriteString("\n")

	for _, wd := range cf.Grid.Weekdays {
		b.WriteString(faintStyle.Render(pad(m.labels.Weekdays[wd], cellWidth)))
	}
	b.WriteString("\n")
	for _, week := range cf.Grid.Weeks {
		for _, cell := range week {
			b.WriteString(m.renderCell(cell))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderCell shows the day number and a count of events, colored by the
// first event.
func (m Model) renderCell(cell calendar.Cell) string {
	day := fmt.Sprintf("%2d", cell.Date.Day())
	style := lipgloss.NewStyle()
	switch {
	case !cell.InMonth:
		style = otherStyle
	case cell.Date.Weekday() == time.Saturday:
		style = satStyle
	case cell.Date.Weekday() == time.Sunday:
		style = sunStyle
	}
	if cell.Today {
		style = style.Inherit(todayStyle)
	}
	if task.SameDay(cell.Date, m.day) {
		style = cursorStyle
	}
	out := style.Render(day)

	marker := ""
	if n := len(cell.Events); n > 0 {
		marker = lipgloss.NewStyle().Foreground(lipgloss.Color(cell.Events[0].Color)).Render(fmt.Sprintf("•%d", n))
	}
	width := lipgloss.Width(out) + lipgloss.Width(marker)
	return out + marker + strings.Repeat(" ", max(1, cellWidth-width))
}

func (m Model) renderAgenda() string {
	ag := m.frame.Agenda
	var b strings.Builder
	b.WriteString(titleStyle.Render(ag.Title))
	b.WriteString("\n")
	if ag.Empty {
		b.WriteString(faintStyle.Render(ag.EmptyMessage))
		return panelStyle.Render(b.String()) + "\n"
	}
	for i, it := range ag.Items {
		text := it.Text
		if it.Completed {
			text = completedStyle.Render(text)
		}
		prefix := "  "
		if i == m.agendaPos {
			prefix = "> "
		}
		fmt.Fprintf(&b, "%s%s %s %s\n", prefix, it.Time, priorityStyle(it.Priority).Render(it.PriorityLabel), text)
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func pad(s string, n int) string {
	w := lipgloss.Width(s)
	if w >= n {
		return s
	}
	return s + strings.Repeat(" ", n-w)
}
