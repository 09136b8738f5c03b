package task

import (
	"strings"
	"time"
)

// Store owns the canonical task collection. It is not safe for concurrent
// use; callers serialize access (see app.App).
type Store struct {
	tasks   []Task
	index   map[ID]int
	filter  Filter
	editing ID
	inEdit  bool
	clock   func() time.Time
}

type Option func(*Store)

// WithClock replaces time.Now for creation timestamps and default due dates.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// WithFilter sets the initial filter. Invalid values are ignored.
func WithFilter(f Filter) Option {
	return func(s *Store) {
		if f.Valid() {
			s.filter = f
		}
	}
}

// NewStore builds a store over a loaded collection. Tasks with a duplicate
// id are dropped, keeping the first occurrence.
func NewStore(tasks []Task, opts ...Option) *Store {
	s := &Store{
		index:  make(map[ID]int, len(tasks)),
		filter: FilterActive,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, t := range tasks {
		if _, dup := s.index[t.ID]; dup {
			continue
		}
		s.index[t.ID] = len(s.tasks)
		s.tasks = append(s.tasks, t)
	}
	return s
}

func (s *Store) Create(d Draft) (Task, bool) {
	text := strings.TrimSpace(d.Text)
	if text == "" {
		return Task{}, false
	}
	now := s.clock()
	due := d.Due
	if due.IsZero() {
		due = TruncateMinute(now)
	}
	priority := d.Priority
	if !priority.Valid() {
		priority = PriorityMedium
	}
	t := Task{
		ID:       s.nextID(now),
		Text:     text,
		Due:      TruncateMinute(due),
		Priority: priority,
	}
	s.index[t.ID] = len(s.tasks)
	s.tasks = append(s.tasks, t)
	return t, true
}

// nextID derives an id from the creation moment, bumped past the largest
// id in use so that ids stay unique.
func (s *Store) nextID(now time.Time) ID {
	id := ID(now.UnixMilli())
	for _, t := range s.tasks {
		if t.ID >= id {
			id = t.ID + 1
		}
	}
	return id
}

func (s *Store) ToggleCompleted(id ID) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	return true
}

// EnterEdit makes id the only task in edit mode.
func (s *Store) EnterEdit(id ID) bool {
	if _, ok := s.index[id]; !ok {
		return false
	}
	s.editing, s.inEdit = id, true
	return true
}

// SaveEdit applies d to the task and leaves edit mode. Blank text keeps
// the previous text; due date and priority are always overwritten.
func (s *Store) SaveEdit(id ID, d Draft) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	if text := strings.TrimSpace(d.Text); text != "" {
		s.tasks[i].Text = text
	}
	if d.Due.IsZero() {
		s.tasks[i].Due = time.Time{}
	} else {
		s.tasks[i].Due = TruncateMinute(d.Due)
	}
	if d.Priority.Valid() {
		s.tasks[i].Priority = d.Priority
	}
	s.editing, s.inEdit = 0, false
	return true
}

// CancelEdit leaves edit mode without touching any task.
func (s *Store) CancelEdit() bool {
	if !s.inEdit {
		return false
	}
	s.editing, s.inEdit = 0, false
	return true
}

func (s *Store) Delete(id ID) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.tasks); j++ {
		s.index[s.tasks[j].ID] = j
	}
	if s.inEdit && s.editing == id {
		s.editing, s.inEdit = 0, false
	}
	return true
}

// SetFilter changes the current filter; values other than all, active and
// completed leave it unchanged.
func (s *Store) SetFilter(f Filter) bool {
	if !f.Valid() {
		return false
	}
	s.filter = f
	return true
}

func (s *Store) Filter() Filter {
	return s.filter
}

// Editing returns the id of the task in edit mode, if any.
func (s *Store) Editing() (ID, bool) {
	return s.editing, s.inEdit
}

func (s *Store) Get(id ID) (Task, bool) {
	i, ok := s.index[id]
	if !ok {
		return Task{}, false
	}
	return s.tasks[i], true
}

func (s *Store) Len() int {
	return len(s.tasks)
}

// Tasks returns a copy of the collection in insertion order.
func (s *Store) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Tasks:     s.Tasks(),
		Filter:    s.filter,
		EditingID: s.editing,
		InEdit:    s.inEdit,
	}
}

func (s *Store) Stats() Stats {
	var st Stats
	for _, t := range s.tasks {
		st.Total++
		if t.Completed {
			st.Completed++
		} else {
			st.Active++
		}
	}
	return st
}

// Snapshot is a read-only copy of the store state used for projection.
type Snapshot struct {
	Tasks     []Task
	Filter    Filter
	EditingID ID
	InEdit    bool
}

func (s Snapshot) IsEditing(id ID) bool {
	return s.InEdit && s.EditingID == id
}

type Stats struct {
	Total     int
	Active    int
	Completed int
}
