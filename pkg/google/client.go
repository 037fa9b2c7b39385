package google

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/harrisonrobin/taskhub/pkg/auth"
)

// Scopes are the OAuth scopes taskhub requests. Calendar ingestion only reads.
var Scopes = []string{
	calendar.CalendarReadonlyScope,
}

// NewClient creates a client for the calendar whose summary is calendarName.
func NewClient(ctx context.Context, calendarName string, logger *slog.Logger) (*CalendarClient, error) {
	client, err := auth.GetClient(ctx, Scopes, logger)
	if err != nil {
		return nil, err
	}

	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Calendar client: %w", err)
	}

	c := NewCalendarClient(srv, "", logger)
	calendarID, err := c.FindCalendar(ctx, calendarName)
	if err != nil {
		return nil, err
	}
	c.calendarID = calendarID
	return c, nil
}

// FindCalendar returns the id of the calendar whose summary is name.
// "primary" is accepted as is.
func (c *CalendarClient) FindCalendar(ctx context.Context, name string) (string, error) {
	if name == "primary" {
		return name, nil
	}

	var list *calendar.CalendarList
	err := c.retry(ctx, "list calendars", func() error {
		var err error
		list, err = c.srv.CalendarList.List().Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("unable to retrieve calendar list: %w", err)
	}

	for _, item := range list.Items {
		if item.Summary == name {
			return item.Id, nil
		}
	}
	return "", fmt.Errorf("calendar '%s' not found", name)
}
