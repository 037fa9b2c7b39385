package google

import (
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/harrisonrobin/taskhub/pkg/model"
)

// EventToTask converts a calendar event into a calendar-sourced task. ok is
// false for cancelled events and events without an id.
func EventToTask(ev *calendar.Event) (t model.Task, ok bool) {
	if ev == nil || ev.Id == "" || ev.Status == "cancelled" {
		return model.Task{}, false
	}

	t = model.Task{
		Title:       strings.TrimSpace(ev.Summary),
		Description: strings.TrimSpace(ev.Description),
		Source:      model.SourceCalendar,
		SourceID:    ev.Id,
		Status:      model.StatusPending,
		CreatedAt:   parseTime(ev.Created),
	}
	if end := eventEnd(ev); !end.IsZero() && end.Before(time.Now()) {
		t.Status = model.StatusCompleted
	}
	return t, true
}

// eventEnd returns when the event ends; all-day events end at midnight of
// their end date.
func eventEnd(ev *calendar.Event) time.Time {
	if ev.End == nil {
		return time.Time{}
	}
	if ev.End.DateTime != "" {
		return parseTime(ev.End.DateTime)
	}
	if ev.End.Date != "" {
		d, err := time.Parse(time.DateOnly, ev.End.Date)
		if err != nil {
			return time.Time{}
		}
		return d
	}
	return time.Time{}
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
