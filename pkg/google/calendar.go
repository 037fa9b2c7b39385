package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"

	"github.com/harrisonrobin/taskhub/pkg/model"
)

// CalendarClient reads events from one Google calendar.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
	logger     *slog.Logger

	// newBackOff builds the retry policy for one API call.
	newBackOff func() backoff.BackOff
}

// NewCalendarClient creates a client for calendarID.
func NewCalendarClient(srv *calendar.Service, calendarID string, logger *slog.Logger) *CalendarClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &CalendarClient{
		srv:        srv,
		calendarID: calendarID,
		logger:     logger,
		newBackOff: defaultBackOff,
	}
}

func defaultBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 1 * time.Minute
	return bo
}

// ListEvents fetches the events in [timeMin, timeMax), expanding recurring
// events into instances. A zero timeMax is open.
func (c *CalendarClient) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]*calendar.Event, error) {
	var (
		items     []*calendar.Event
		pageToken string
	)
	for {
		call := c.srv.Events.List(c.calendarID).
			Context(ctx).
			SingleEvents(true).
			ShowDeleted(false).
			TimeMin(timeMin.Format(time.RFC3339))
		if !timeMax.IsZero() {
			call = call.TimeMax(timeMax.Format(time.RFC3339))
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		var page *calendar.Events
		err := c.retry(ctx, "list events", func() error {
			var err error
			page, err = call.Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve events from calendar: %w", err)
		}

		items = append(items, page.Items...)
		if page.NextPageToken == "" {
			return items, nil
		}
		pageToken = page.NextPageToken
	}
}

// Tasks lists the events in range and converts them to calendar tasks.
// Cancelled and malformed events are skipped.
func (c *CalendarClient) Tasks(ctx context.Context, timeMin, timeMax time.Time) ([]model.Task, error) {
	events, err := c.ListEvents(ctx, timeMin, timeMax)
	if err != nil {
		return nil, err
	}
	tasks := make([]model.Task, 0, len(events))
	for _, ev := range events {
		t, ok := EventToTask(ev)
		if !ok {
			c.logger.Debug("skipping event", "id", ev.Id, "status", ev.Status)
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// retry runs op with the client's backoff policy. Only transient API errors
// are retried.
func (c *CalendarClient) retry(ctx context.Context, what string, op func() error) error {
	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		c.logger.Warn("calendar API call failed, retrying", "op", what, "attempt", attempt, "error", err)
		return err
	}, backoff.WithContext(c.newBackOff(), ctx))
}

// IsRetryable reports whether err is a transient Google API failure: rate
// limiting or a server-side error.
func IsRetryable(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
}
