package view

import (
	"strings"
	"time"

	"github.com/laitheanh1062006/simple-schedule-organizer/internal/model"
)

const icsDateLayout = "20060102"

// CalendarICS renders every deadline-bearing task as an all-day event.
// Tasks without a deadline have no date to anchor to and are skipped.
func CalendarICS(tasks []model.Task, now time.Time) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Simple Schedule Organizer//Task Calendar//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}
	stamp := now.UTC().Format("20060102T150405Z")

	for _, t := range WithDeadline(tasks) {
		due := t.Deadline.In(time.UTC)
		end := due.AddDate(0, 0, 1)

		title := strings.TrimSpace(t.Title)
		if title == "" {
			title = "Untitled task"
		}

		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+escapeICSText(t.ID+"@simple-schedule-organizer"),
			"DTSTAMP:"+stamp,
			"SUMMARY:"+escapeICSText(title),
			"DTSTART;VALUE=DATE:"+due.Format(icsDateLayout),
			"DTEND;VALUE=DATE:"+end.Format(icsDateLayout),
		)
		if t.Completed {
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
