package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskcal/internal/calendar"
	"taskcal/internal/storage"
	"taskcal/internal/task"
	"taskcal/internal/view"
)

var fixedNow = time.Date(2024, 1, 10, 14, 27, 43, 0, time.Local)

func clock() time.Time { return fixedNow }

type harness struct {
	app *App
	mem *storage.MemoryStore
	ad  *storage.Adapter
}

func newHarness(t *testing.T, tasks []task.Task, opts ...Option) harness {
	t.Helper()
	mem := storage.NewMemoryStore()
	ad := storage.NewAdapter(mem, zerolog.Nop())
	store := task.NewStore(tasks, task.WithClock(clock))
	opts = append([]Option{
		WithClock(clock),
		WithWidget(calendar.New(calendar.WithClock(clock))),
	}, opts...)
	return harness{app: New(store, ad, opts...), mem: mem, ad: ad}
}

func at(t *testing.T, v string) time.Time {
	t.Helper()
	d, err := task.ParseDue(v)
	require.NoError(t, err)
	return d
}

func TestSubmitTaskDefaults(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	frame := h.app.Dispatch(ctx, SubmitTask(Form{Text: "Buy milk", Due: "", Priority: "medium"}))

	require.Len(t, frame.List, 1)
	item := frame.List[0]
	assert.Equal(t, task.ID(fixedNow.UnixMilli()), item.ID)
	assert.Equal(t, "2024-01-10T14:27", item.DueInput)
	assert.Equal(t, task.PriorityMedium, item.Priority)
	assert.False(t, item.Completed)
	assert.Equal(t, 1, h.mem.Saves())

	stored := h.ad.Load(ctx)
	require.Len(t, stored, 1)
	assert.Equal(t, "Buy milk", stored[0].Text)
}

func TestSubmitBlankIsNoop(t *testing.T) {
	h := newHarness(t, nil)
	frame := h.app.Dispatch(context.Background(), SubmitTask(Form{Text: "   ", Priority: "high"}))

	assert.Empty(t, frame.List)
	assert.Equal(t, 0, h.mem.Saves(), "nothing persisted")
}

func TestSubmitParsesForm(t *testing.T) {
	h := newHarness(t, nil, WithView("calendar"))
	frame := h.app.Dispatch(context.Background(), SubmitTask(Form{Text: "call", Due: "2024-01-12T09:30", Priority: "HIGH"}))

	require.Len(t, frame.List, 1)
	assert.Equal(t, "2024-01-12 09:30", frame.List[0].DueLabel)
	assert.Equal(t, task.PriorityHigh, frame.List[0].Priority)

	frame = h.app.Dispatch(context.Background(), SubmitTask(Form{Text: "odd", Due: "someday", Priority: "urgent"}))
	require.Len(t, frame.List, 2)
	got := frame.List[0]
	if got.Text != "odd" {
		got = frame.List[1]
	}
	assert.Equal(t, "2024-01-10T14:27", got.DueInput, "unreadable due falls back to now")
	assert.Equal(t, task.PriorityMedium, got.Priority)
}

func TestFilterAndToggle(t *testing.T) {
	h := newHarness(t, []task.Task{{ID: 1, Text: "a", Priority: task.PriorityMedium}})
	ctx := context.Background()

	frame := h.app.Frame()
	assert.Equal(t, task.FilterActive, frame.Filter)
	require.Len(t, frame.List, 1)

	frame = h.app.Dispatch(ctx, ClickTask(1))
	assert.Empty(t, frame.List)
	assert.Equal(t, task.Stats{Total: 1, Completed: 1}, frame.Stats)

	frame = h.app.Dispatch(ctx, ClickFilter("completed"))
	require.Len(t, frame.List, 1)
	assert.True(t, frame.List[0].Completed)

	frame = h.app.Dispatch(ctx, ClickFilter("bogus"))
	assert.Equal(t, task.FilterCompleted, frame.Filter)

	frame = h.app.Dispatch(ctx, ClickFilter("ACTIVE"))
	assert.Equal(t, task.FilterCompleted, frame.Filter, "gesture values match exactly")

	assert.Equal(t, 1, h.mem.Saves(), "filter changes are not persisted")
}

func TestSingleEditingTask(t *testing.T) {
	h := newHarness(t, []task.Task{
		{ID: 1, Text: "a", Priority: task.PriorityMedium},
		{ID: 2, Text: "b", Priority: task.PriorityMedium},
	}, WithView("list"))
	ctx := context.Background()

	h.app.Dispatch(ctx, ClickEdit(1))
	frame := h.app.Dispatch(ctx, ClickEdit(2))

	editing := map[task.ID]bool{}
	for _, it := range frame.List {
		editing[it.ID] = it.Editing
	}
	assert.Equal(t, map[task.ID]bool{1: false, 2: true}, editing)
	assert.True(t, frame.Editing)
	assert.Equal(t, 0, h.mem.Saves(), "edit mode is not persisted")

	frame = h.app.Dispatch(ctx, ClickCancelEdit())
	assert.False(t, frame.Editing)
}

func TestSaveEditPersistsWithEditingReset(t *testing.T) {
	h := newHarness(t, []task.Task{{ID: 1, Text: "old", Due: at(t, "2024-01-01T09:00"), Priority: task.PriorityLow}})
	ctx := context.Background()

	h.app.Dispatch(ctx, ClickEdit(1))
	frame := h.app.Dispatch(ctx, ClickSave(1, Form{Text: "new", Due: "", Priority: "high"}))

	require.Len(t, frame.List, 1)
	assert.Equal(t, "new", frame.List[0].Text)
	assert.Equal(t, "", frame.List[0].DueInput)
	assert.Equal(t, task.PriorityHigh, frame.List[0].Priority)
	assert.False(t, frame.List[0].Editing)

	blob, err := h.mem.Load(ctx, storage.DefaultKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"text":"new","dueDate":"","priority":"high","completed":false,"editing":false}]`, string(blob))
}

func TestDeleteAndUnknownIDs(t *testing.T) {
	h := newHarness(t, []task.Task{{ID: 1, Text: "a", Priority: task.PriorityMedium}})
	ctx := context.Background()

	h.app.Dispatch(ctx, ClickTask(99))
	h.app.Dispatch(ctx, ClickDelete(99))
	h.app.Dispatch(ctx, ClickSave(99, Form{Text: "x"}))
	assert.Equal(t, 0, h.mem.Saves())

	frame := h.app.Dispatch(ctx, ClickDelete(1))
	assert.Empty(t, frame.List)
	assert.Equal(t, 1, h.mem.Saves())
}

func TestCalendarFrame(t *testing.T) {
	h := newHarness(t, []task.Task{
		{ID: 1, Text: "dated", Due: at(t, "2024-01-15T10:00"), Priority: task.PriorityHigh},
		{ID: 2, Text: "undated", Priority: task.PriorityLow},
	})
	ctx := context.Background()

	frame := h.app.Frame()
	assert.Nil(t, frame.Calendar, "calendar hidden in list view")

	frame = h.app.Dispatch(ctx, SwitchView("calendar"))
	require.NotNil(t, frame.Calendar)
	assert.Equal(t, ViewCalendar, frame.View)
	assert.Equal(t, calendar.ModeMonth, frame.Calendar.Mode)
	assert.Equal(t, "January 2024", frame.Calendar.Title)
	require.Len(t, frame.Calendar.Events, 1)
	assert.Equal(t, "[High] dated", frame.Calendar.Events[0].Title)
	assert.Len(t, frame.List, 2, "list is always projected")

	cell, ok := frame.Calendar.Grid.Find(at(t, "2024-01-15T00:00"))
	require.True(t, ok)
	assert.Len(t, cell.Events, 1)

	frame = h.app.Dispatch(ctx, ClickCalendarEvent(1))
	assert.Empty(t, frame.Calendar.Events, "completed task leaves the active calendar")
	assert.Equal(t, 1, h.mem.Saves())
}

func TestCalendarEventClickBeforeRender(t *testing.T) {
	h := newHarness(t, []task.Task{
		{ID: 1, Text: "Dentist", Due: at(t, "2024-01-12T09:00"), Priority: task.PriorityHigh},
	})
	ctx := context.Background()

	h.app.Dispatch(ctx, ClickCalendarEvent(1))
	require.True(t, h.app.Tasks()[0].Completed, "task toggles although no calendar was painted")
	assert.Equal(t, 1, h.mem.Saves())

	h.app.Dispatch(ctx, ClickCalendarEvent(42))
	assert.Equal(t, 1, h.mem.Saves(), "unknown ids stay a no-op")
}

func TestCalendarModeSurvivesRerender(t *testing.T) {
	h := newHarness(t, nil, WithView("calendar"))
	ctx := context.Background()

	frame := h.app.Dispatch(ctx, SetCalendarMode("week"))
	assert.Equal(t, calendar.ModeWeek, frame.Calendar.Mode)
	assert.Equal(t, "2024-01-07 - 2024-01-13", frame.Calendar.Title)

	frame = h.app.Dispatch(ctx, NavigateCalendar("next"))
	anchor := frame.Calendar.Anchor

	frame = h.app.Dispatch(ctx, SubmitTask(Form{Text: "x"}))
	assert.Equal(t, calendar.ModeWeek, frame.Calendar.Mode)
	assert.Equal(t, anchor, frame.Calendar.Anchor)

	frame = h.app.Dispatch(ctx, SwitchView("list"))
	frame = h.app.Dispatch(ctx, SwitchView("calendar"))
	assert.Equal(t, calendar.ModeWeek, frame.Calendar.Mode)

	frame = h.app.Dispatch(ctx, SetCalendarMode("decade"))
	assert.Equal(t, calendar.ModeWeek, frame.Calendar.Mode)

	frame = h.app.Dispatch(ctx, NavigateCalendar("today"))
	assert.Equal(t, at(t, "2024-01-10T00:00"), frame.Calendar.Anchor)
}

func TestAgendaLifecycle(t *testing.T) {
	h := newHarness(t, []task.Task{
		{ID: 1, Text: "morning", Due: at(t, "2024-01-15T08:00"), Priority: task.PriorityMedium},
		{ID: 2, Text: "evening", Due: at(t, "2024-01-15T19:00"), Priority: task.PriorityHigh},
	}, WithView("calendar"))
	ctx := context.Background()

	frame := h.app.Dispatch(ctx, ClickCalendarDay(at(t, "2024-01-15T13:00")))
	require.NotNil(t, frame.Agenda)
	require.Len(t, frame.Agenda.Items, 2)
	assert.Equal(t, "08:00", frame.Agenda.Items[0].Time)

	frame = h.app.Dispatch(ctx, ClickAgendaItem(1))
	require.NotNil(t, frame.Agenda, "agenda re-projected after a mutation")
	assert.True(t, frame.Agenda.Items[0].Completed)
	assert.Len(t, frame.List, 1)

	frame = h.app.Dispatch(ctx, ClickDelete(2))
	require.NotNil(t, frame.Agenda)
	assert.Len(t, frame.Agenda.Items, 1)

	frame = h.app.Dispatch(ctx, CloseAgenda())
	assert.Nil(t, frame.Agenda)
}

func TestAgendaEmptyDay(t *testing.T) {
	h := newHarness(t, nil, WithView("calendar"), WithLabels(view.LabelsFor("ja")))
	frame := h.app.Dispatch(context.Background(), ClickCalendarDay(at(t, "2024-01-20T00:00")))

	require.NotNil(t, frame.Agenda)
	assert.True(t, frame.Agenda.Empty)
	assert.Equal(t, "この日のタスクはありません。", frame.Agenda.EmptyMessage)
	assert.Equal(t, "ja", frame.Locale)
}

func TestSwitchViewClosesAgenda(t *testing.T) {
	h := newHarness(t, nil, WithView("calendar"))
	ctx := context.Background()

	frame := h.app.Dispatch(ctx, ClickCalendarDay(fixedNow))
	require.NotNil(t, frame.Agenda)

	frame = h.app.Dispatch(ctx, SwitchView("gallery"))
	assert.NotNil(t, frame.Agenda, "unknown view is a no-op")

	frame = h.app.Dispatch(ctx, SwitchView("list"))
	assert.Nil(t, frame.Agenda)
	assert.Nil(t, frame.Calendar)
}

type failingPersister struct{ calls int }

func (f *failingPersister) Save(context.Context, []task.Task) error {
	f.calls++
	return errors.New("disk full")
}

func TestPersistFailureKeepsMemoryState(t *testing.T) {
	p := &failingPersister{}
	a := New(task.NewStore(nil, task.WithClock(clock)), p, WithClock(clock))

	frame := a.Dispatch(context.Background(), SubmitTask(Form{Text: "still here"}))
	assert.Len(t, frame.List, 1)
	assert.Equal(t, 1, p.calls)
	assert.Len(t, a.Tasks(), 1)
}

type panickingPersister struct{}

func (panickingPersister) Save(context.Context, []task.Task) error {
	panic("boom")
}

func TestDispatchRecoversPanics(t *testing.T) {
	a := New(task.NewStore(nil, task.WithClock(clock)), panickingPersister{}, WithClock(clock))
	var frame Frame
	assert.NotPanics(t, func() {
		frame = a.Dispatch(context.Background(), SubmitTask(Form{Text: "x"}))
	})
	assert.Len(t, frame.List, 1)
}

func TestConcurrentDispatch(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.app.Dispatch(ctx, SubmitTask(Form{Text: "t"}))
		}()
	}
	wg.Wait()

	tasks := h.app.Tasks()
	require.Len(t, tasks, 20)
	seen := map[task.ID]bool{}
	for _, tk := range tasks {
		assert.False(t, seen[tk.ID], "duplicate id %d", tk.ID)
		seen[tk.ID] = true
	}
	assert.Equal(t, 20, h.mem.Saves())
	assert.Len(t, h.ad.Load(ctx), 20)
}
