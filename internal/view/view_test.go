package view

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskcal/internal/task"
)

func due(t *testing.T, v string) time.Time {
	t.Helper()
	d, err := task.ParseDue(v)
	require.NoError(t, err)
	return d
}

func ids(items []ListItem) []task.ID {
	out := make([]task.ID, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestList_EarlierDueFirst(t *testing.T) {
	snap := task.Snapshot{Tasks: []task.Task{
		{ID: 1, Text: "low at nine", Due: due(t, "2024-01-01T09:00"), Priority: task.PriorityLow},
		{ID: 2, Text: "high at eight", Due: due(t, "2024-01-01T08:00"), Priority: task.PriorityHigh},
	}}
	assert.Equal(t, []task.ID{2, 1}, ids(List(snap, task.FilterAll, LabelsFor("en"))))
}

func TestList_SameDueHighPriorityFirst(t *testing.T) {
	snap := task.Snapshot{Tasks: []task.Task{
		{ID: 1, Text: "medium", Due: due(t, "2024-01-01T09:00"), Priority: task.PriorityMedium},
		{ID: 2, Text: "high", Due: due(t, "2024-01-01T09:00"), Priority: task.PriorityHigh},
	}}
	assert.Equal(t, []task.ID{2, 1}, ids(List(snap, task.FilterAll, LabelsFor("en"))))
}

func TestList_UndatedLastAndStable(t *testing.T) {
	snap := task.Snapshot{Tasks: []task.Task{
		{ID: 1, Text: "undated a", Priority: task.PriorityMedium},
		{ID: 2, Text: "dated", Due: due(t, "2030-01-01T00:00"), Priority: task.PriorityLow},
		{ID: 3, Text: "undated b", Priority: task.PriorityMedium},
		{ID: 4, Text: "undated high", Priority: task.PriorityHigh},
		{ID: 5, Text: "same as 2", Due: due(t, "2030-01-01T00:00"), Priority: task.PriorityLow},
	}}
	assert.Equal(t, []task.ID{2, 5, 4, 1, 3}, ids(List(snap, task.FilterAll, LabelsFor("en"))))
}

func TestList_FilterPredicates(t *testing.T) {
	snap := task.Snapshot{Tasks: []task.Task{
		{ID: 1, Text: "open", Priority: task.PriorityMedium},
		{ID: 2, Text: "done", Priority: task.PriorityMedium, Completed: true},
	}}
	labels := LabelsFor("en")
	assert.Equal(t, []task.ID{1}, ids(List(snap, task.FilterActive, labels)))
	assert.Equal(t, []task.ID{2}, ids(List(snap, task.FilterCompleted, labels)))
	assert.ElementsMatch(t, []task.ID{1, 2}, ids(List(snap, task.FilterAll, labels)))
}

func TestList_ToggleMovesBetweenFilters(t *testing.T) {
	s := task.NewStore(nil)
	created, ok := s.Create(task.Draft{Text: "finish report"})
	require.True(t, ok)
	labels := LabelsFor("en")

	require.Equal(t, []task.ID{created.ID}, ids(List(s.Snapshot(), task.FilterActive, labels)))
	require.True(t, s.ToggleCompleted(created.ID))

	assert.Empty(t, List(s.Snapshot(), task.FilterActive, labels))
	assert.Equal(t, []task.ID{created.ID}, ids(List(s.Snapshot(), task.FilterCompleted, labels)))
}

// The list must hold the filter predicate and the display order for any
// collection; checked over a batch of generated collections.
func TestList_OrderingProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	base := due(t, "2024-06-01T00:00")
	for round := 0; round < 50; round++ {
		var tasks []task.Task
		for i := 0; i < 20; i++ {
			tk := task.Task{
				ID:        task.ID(i + 1),
				Text:      "t",
				Priority:  task.Priorities()[rng.Intn(3)],
				Completed: rng.Intn(2) == 0,
			}
			if rng.Intn(4) != 0 {
				tk.Due = base.Add(time.Duration(rng.Intn(6)) * time.Hour)
			}
			tasks = append(tasks, tk)
		}
		snap := task.Snapshot{Tasks: tasks}
		for _, f := range task.Filters() {
			items := List(snap, f, LabelsFor("en"))
			for i, it := range items {
				assert.True(t, f.Match(task.Task{Completed: it.Completed}))
				if i == 0 {
					continue
				}
				prev := items[i-1]
				switch {
				case prev.Due.IsZero():
					assert.True(t, it.Due.IsZero(), "dated task after undated one")
					assert.LessOrEqual(t, int(prev.Priority), int(it.Priority))
				case it.Due.IsZero():
				case prev.Due.Equal(it.Due):
					assert.LessOrEqual(t, int(prev.Priority), int(it.Priority))
				default:
					assert.True(t, prev.Due.Before(it.Due))
				}
			}
		}
	}
}

func TestList_EditingFlagAndLabels(t *testing.T) {
	snap := task.Snapshot{
		Tasks: []task.Task{
			{ID: 1, Text: "a", Due: due(t, "2024-01-01T09:05"), Priority: task.PriorityHigh},
			{ID: 2, Text: "b", Priority: task.PriorityLow},
		},
		EditingID: 2,
		InEdit:    true,
	}
	items := List(snap, task.FilterAll, LabelsFor("ja"))
	require.Len(t, items, 2)

	assert.False(t, items[0].Editing)
	assert.Equal(t, "高", items[0].PriorityLabel)
	assert.Equal(t, "2024-01-01 09:05", items[0].DueLabel)
	assert.Equal(t, "2024-01-01T09:05", items[0].DueInput)

	assert.True(t, items[1].Editing)
	assert.Equal(t, "", items[1].DueLabel)
}

func TestProjectionsAreIdempotent(t *testing.T) {
	snap := task.Snapshot{Tasks: []task.Task{
		{ID: 1, Text: "a", Due: due(t, "2024-01-01T09:00"), Priority: task.PriorityLow},
		{ID: 2, Text: "b", Due: due(t, "2024-01-01T08:00"), Priority: task.PriorityHigh, Completed: true},
		{ID: 3, Text: "c", Priority: task.PriorityMedium},
	}}
	labels := LabelsFor("en")
	day := due(t, "2024-01-01T00:00")

	first := List(snap, task.FilterAll, labels)
	second := List(snap, task.FilterAll, labels)
	assert.Equal(t, first, second)
	first[0].Text = "mutated"
	assert.NotEqual(t, first[0].Text, List(snap, task.FilterAll, labels)[0].Text)

	assert.Equal(t, Calendar(snap, task.FilterAll, labels), Calendar(snap, task.FilterAll, labels))
	assert.Equal(t, DayAgenda(snap, day, labels), DayAgenda(snap, day, labels))
	assert.Equal(t, []task.ID{1, 2, 3}, []task.ID{snap.Tasks[0].ID, snap.Tasks[1].ID, snap.Tasks[2].ID}, "snapshot untouched")
}

func TestCalendar_Events(t *testing.T) {
	snap := task.Snapshot{Tasks: []task.Task{
		{ID: 1, Text: "call", Due: due(t, "2024-01-02T10:00"), Priority: task.PriorityHigh},
		{ID: 2, Text: "undated", Priority: task.PriorityHigh},
		{ID: 3, Text: "done", Due: due(t, "2024-01-01T10:00"), Priority: task.PriorityLow, Completed: true},
		{ID: 4, Text: "review", Due: due(t, "2024-01-03T10:00"), Priority: task.PriorityMedium},
	}}

	events := Calendar(snap, task.FilterAll, LabelsFor("en"))
	require.Len(t, events, 3)

	assert.Equal(t, task.ID(3), events[0].ID)
	assert.Equal(t, "[Low] done", events[0].Title)
	assert.Equal(t, ColorCompleted, events[0].Color)
	assert.Equal(t, ColorCompleted, events[0].BorderColor)

	assert.Equal(t, "[High] call", events[1].Title)
	assert.Equal(t, ColorHigh, events[1].Color)
	assert.Equal(t, "2024-01-02T10:00", events[1].StartInput)

	assert.Equal(t, ColorMedium, events[2].Color)

	active := Calendar(snap, task.FilterActive, LabelsFor("en"))
	assert.Len(t, active, 2)
}

func TestDayAgenda(t *testing.T) {
	snap := task.Snapshot{
		Filter: task.FilterActive,
		Tasks: []task.Task{
			{ID: 1, Text: "late", Due: due(t, "2024-01-01T18:30"), Priority: task.PriorityLow},
			{ID: 2, Text: "early", Due: due(t, "2024-01-01T07:15"), Priority: task.PriorityHigh, Completed: true},
			{ID: 3, Text: "next day", Due: due(t, "2024-01-02T00:00"), Priority: task.PriorityHigh},
			{ID: 4, Text: "undated", Priority: task.PriorityHigh},
		},
	}
	ag := DayAgenda(snap, due(t, "2024-01-01T12:34"), LabelsFor("en"))

	assert.False(t, ag.Empty)
	require.Len(t, ag.Items, 2)
	assert.Equal(t, "07:15", ag.Items[0].Time)
	assert.True(t, ag.Items[0].Completed, "agenda ignores the list filter")
	assert.Equal(t, "late", ag.Items[1].Text)
	assert.Equal(t, "Low", ag.Items[1].PriorityLabel)
	assert.Equal(t, "Mon, January 1", ag.Title)
	assert.Equal(t, 0, ag.Date.Hour())
}

func TestDayAgenda_EmptyMarker(t *testing.T) {
	snap := task.Snapshot{Tasks: []task.Task{
		{ID: 1, Text: "elsewhere", Due: due(t, "2024-01-05T09:00"), Priority: task.PriorityLow},
	}}

	en := DayAgenda(snap, due(t, "2024-01-01T00:00"), LabelsFor("en"))
	assert.True(t, en.Empty)
	assert.Empty(t, en.Items)
	assert.Equal(t, "No tasks for this day.", en.EmptyMessage)

	ja := DayAgenda(snap, due(t, "2024-01-01T00:00"), LabelsFor("ja"))
	assert.Equal(t, "この日のタスクはありません。", ja.EmptyMessage)
	assert.Equal(t, "1月1日(月)", ja.Title)
}

func TestLabels(t *testing.T) {
	en := LabelsFor("fr")
	assert.Equal(t, "en", en.Locale)
	assert.Equal(t, "Medium", en.Priority(task.Priority(0)))
	assert.Equal(t, "Due: 2024-01-01 09:00", en.DuePrefix("2024-01-01 09:00"))
	assert.Equal(t, "2024年1月", LabelsFor("ja").MonthTitle(due(t, "2024-01-15T00:00")))
	assert.Equal(t, ColorLow, PriorityColor(task.PriorityLow))
}
