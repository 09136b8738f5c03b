package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"taskcal/internal/task"
)

// record is the persisted layout of one task, shared with the browser
// build of the tracker that kept its tasks in localStorage.
type record struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	DueDate   string `json:"dueDate"`
	Priority  string `json:"priority"`
	Completed bool   `json:"completed"`
	Editing   bool   `json:"editing"`
}

// Encode serializes the whole collection in insertion order. Edit mode is
// never persisted, so editing is always written false.
func Encode(tasks []task.Task) ([]byte, error) {
	recs := make([]record, 0, len(tasks))
	for _, t := range tasks {
		recs = append(recs, record{
			ID:        int64(t.ID),
			Text:      t.Text,
			DueDate:   t.DueString(),
			Priority:  t.Priority.String(),
			Completed: t.Completed,
		})
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return data, nil
}

// Decode parses a blob written by Encode or by the browser build. Damaged
// records are repaired instead of rejected: an unknown priority becomes
// medium and an unreadable due date becomes "no due date". Records with
// blank text, a repeated id or fields of the wrong type are dropped. Only
// a blob that is not a JSON array is an error.
func Decode(blob []byte) ([]task.Task, error) {
	tasks, _, err := decode(blob)
	return tasks, err
}

// decode also reports how many records were dropped.
func decode(blob []byte) ([]task.Task, int, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(blob, &raws); err != nil {
		return nil, 0, fmt.Errorf("decode tasks: %w", err)
	}
	seen := make(map[task.ID]struct{}, len(raws))
	tasks := make([]task.Task, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		var r record
		if err := json.Unmarshal(raw, &r); err != nil {
			dropped++
			continue
		}
		text := strings.TrimSpace(r.Text)
		if text == "" {
			dropped++
			continue
		}
		id := task.ID(r.ID)
		if _, dup := seen[id]; dup {
			dropped++
			continue
		}
		seen[id] = struct{}{}
		priority, _ := task.ParsePriority(r.Priority)
		due, _ := task.ParseDue(r.DueDate)
		tasks = append(tasks, task.Task{
			ID:        id,
			Text:      text,
			Due:       due,
			Priority:  priority,
			Completed: r.Completed,
		})
	}
	return tasks, dropped, nil
}
