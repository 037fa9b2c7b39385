package dedupe

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/harrisonrobin/taskhub/pkg/model"
)

// EventReader reads the prevention event log for one user. A zero since or
// until leaves that side of the window open.
type EventReader interface {
	ListPreventionEvents(ctx context.Context, userID string, since, until time.Time) ([]model.PreventionEvent, error)
}

// Window is the half-open time range [Since, Until). Zero values are unbounded.
type Window struct {
	Since time.Time
	Until time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if !w.Since.IsZero() && t.Before(w.Since) {
		return false
	}
	if !w.Until.IsZero() && !t.Before(w.Until) {
		return false
	}
	return true
}

// Named timeframes accepted by TimeframeWindow.
const (
	TimeframeDay   = "day"
	TimeframeWeek  = "week"
	TimeframeMonth = "month"
	TimeframeAll   = "all"
)

// TimeframeWindow returns the window ending at now for a named timeframe.
func TimeframeWindow(timeframe string, now time.Time) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(timeframe)) {
	case TimeframeDay:
		return Window{Since: now.AddDate(0, 0, -1)}, nil
	case TimeframeWeek, "":
		return Window{Since: now.AddDate(0, 0, -7)}, nil
	case TimeframeMonth:
		return Window{Since: now.AddDate(0, -1, 0)}, nil
	case TimeframeAll:
		return Window{}, nil
	default:
		return Window{}, fmt.Errorf("%w: unknown timeframe %q (valid: day, week, month, all)", ErrValidation, timeframe)
	}
}

// SourceStat counts creation attempts and skipped duplicates for one source.
type SourceStat struct {
	Count      int `json:"count" yaml:"count"`
	Duplicates int `json:"duplicates" yaml:"duplicates"`
}

// DeduplicationStat summarizes how many would-be duplicates ingestion avoided.
type DeduplicationStat struct {
	TotalTasks        int                         `json:"total_tasks" yaml:"total_tasks"`
	DuplicatesAvoided int                         `json:"duplicates_avoided" yaml:"duplicates_avoided"`
	DeduplicationRate int                         `json:"deduplication_rate" yaml:"deduplication_rate"` // 0-100
	Sources           map[model.Source]SourceStat `json:"sources" yaml:"sources"`
}

// Aggregate computes statistics over a set of prevention events. Every event
// is one creation attempt, prevented or not.
func Aggregate(events []model.PreventionEvent) DeduplicationStat {
	stat := DeduplicationStat{Sources: make(map[model.Source]SourceStat)}
	for _, ev := range events {
		stat.TotalTasks++
		s := stat.Sources[ev.Source]
		s.Count++
		if ev.WasDuplicate {
			stat.DuplicatesAvoided++
			s.Duplicates++
		}
		stat.Sources[ev.Source] = s
	}
	if stat.TotalTasks > 0 {
		stat.DeduplicationRate = int(math.Round(100 * float64(stat.DuplicatesAvoided) / float64(stat.TotalTasks)))
	}
	return stat
}

// StatsAggregator reports prevention statistics from the event log.
type StatsAggregator struct {
	events EventReader
	logger *slog.Logger
}

// NewStatsAggregator creates a StatsAggregator reading from events.
func NewStatsAggregator(events EventReader, logger *slog.Logger) *StatsAggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsAggregator{events: events, logger: logger}
}

// Stats reads the events of userID inside w and aggregates them.
func (s *StatsAggregator) Stats(ctx context.Context, userID string, w Window) (DeduplicationStat, error) {
	if strings.TrimSpace(userID) == "" {
		return DeduplicationStat{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	events, err := s.events.ListPreventionEvents(ctx, userID, w.Since, w.Until)
	if err != nil {
		return DeduplicationStat{}, &StorageError{Op: "list prevention events", Err: err}
	}

	var inWindow []model.PreventionEvent
	for _, ev := range events {
		if w.Contains(ev.CreatedAt) {
			inWindow = append(inWindow, ev)
		}
	}
	return Aggregate(inWindow), nil
}

// GetStats is Stats with failures reported as nil so a reporting view can
// show "unavailable" instead of failing.
func (s *StatsAggregator) GetStats(ctx context.Context, userID string, w Window) *DeduplicationStat {
	stat, err := s.Stats(ctx, userID, w)
	if err != nil {
		s.logger.Warn("deduplication stats unavailable", "user", userID, "error", err)
		return nil
	}
	return &stat
}
