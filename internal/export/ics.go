// Package export writes the task collection in formats other tools read.
package export

import (
	"fmt"
	"strings"
	"time"

	"taskcal/internal/task"
	"taskcal/internal/view"
)

const (
	icsLocalLayout = "20060102T150405"
	icsUTCLayout   = "20060102T150405Z"
	eventDuration  = 30 * time.Minute
)

// ICS builds one calendar with a VEVENT per dated task, in list order.
// Undated tasks are skipped since an event needs a start.
func ICS(tasks []task.Task, labels view.Labels, now time.Time) string {
	snap := task.Snapshot{Tasks: tasks}
	events := view.Calendar(snap, task.FilterAll, labels)

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//taskcal//Task Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}
	stamp := now.UTC().Format(icsUTCLayout)
	for _, ev := range events {
		lines = append(lines,
			"BEGIN:VEVENT",
			fmt.Sprintf("UID:task-%d@taskcal", ev.ID),
			"DTSTAMP:"+stamp,
			"SUMMARY:"+escapeICSText(ev.Title),
			"DTSTART:"+ev.Start.Format(icsLocalLayout),
			"DTEND:"+ev.Start.Add(eventDuration).Format(icsLocalLayout),
		)
		if ev.Completed {
			lines = append(lines, "STATUS:COMPLETED")
		}
		lines = append(lines, "END:VEVENT")
	}
	lines = append(lines, "END:VCALENDAR", "")
	return strings.Join(lines, "\r\n")
}

func escapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}
