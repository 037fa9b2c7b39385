package dedupe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/taskhub/pkg/model"
)

func event(source model.Source, dup bool, at time.Time) model.PreventionEvent {
	return model.PreventionEvent{UserID: "u1", Source: source, WasDuplicate: dup, CreatedAt: at}
}

func TestAggregate(t *testing.T) {
	events := []model.PreventionEvent{
		event(model.SourceCalendar, false, day1),
		event(model.SourceCalendar, true, day1),
		event(model.SourceEmail, false, day1),
	}

	stat := Aggregate(events)
	assert.Equal(t, 3, stat.TotalTasks)
	assert.Equal(t, 1, stat.DuplicatesAvoided)
	assert.Equal(t, 33, stat.DeduplicationRate)
	assert.Equal(t, map[model.Source]SourceStat{
		model.SourceCalendar: {Count: 2, Duplicates: 1},
		model.SourceEmail:    {Count: 1, Duplicates: 0},
	}, stat.Sources)
}

func TestAggregate_Empty(t *testing.T) {
	stat := Aggregate(nil)
	assert.Equal(t, 0, stat.TotalTasks)
	assert.Equal(t, 0, stat.DuplicatesAvoided)
	assert.Equal(t, 0, stat.DeduplicationRate)
	assert.Empty(t, stat.Sources)
}

func TestAggregate_RateBounds(t *testing.T) {
	for total := 1; total <= 12; total++ {
		for dups := 0; dups <= total; dups++ {
			var events []model.PreventionEvent
			for i := 0; i < total; i++ {
				events = append(events, event(model.SourceManual, i < dups, day1))
			}
			stat := Aggregate(events)
			assert.GreaterOrEqual(t, stat.DeduplicationRate, 0)
			assert.LessOrEqual(t, stat.DeduplicationRate, 100)
		}
	}

	all := Aggregate([]model.PreventionEvent{event(model.SourceAI, true, day1), event(model.SourceAI, true, day1)})
	assert.Equal(t, 100, all.DeduplicationRate)
}

func TestWindow_Contains(t *testing.T) {
	w := Window{Since: day1, Until: day1.Add(time.Hour)}
	assert.True(t, w.Contains(day1))
	assert.True(t, w.Contains(day1.Add(59*time.Minute)))
	assert.False(t, w.Contains(day1.Add(time.Hour)))
	assert.False(t, w.Contains(day1.Add(-time.Second)))
	assert.True(t, Window{}.Contains(time.Time{}))
}

func TestTimeframeWindow(t *testing.T) {
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		timeframe string
		since     time.Time
		wantErr   bool
	}{
		{timeframe: "day", since: now.AddDate(0, 0, -1)},
		{timeframe: "week", since: now.AddDate(0, 0, -7)},
		{timeframe: "", since: now.AddDate(0, 0, -7)},
		{timeframe: "Month", since: now.AddDate(0, -1, 0)},
		{timeframe: "all"},
		{timeframe: "fortnight", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.timeframe, func(t *testing.T) {
			w, err := TimeframeWindow(tt.timeframe, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.since.Equal(w.Since))
			assert.True(t, w.Until.IsZero())
		})
	}
}

func TestStatsAggregator_GetStats(t *testing.T) {
	store := newFakeStore()
	store.events = []model.PreventionEvent{
		event(model.SourceCalendar, false, day1),
		event(model.SourceCalendar, true, day1.Add(time.Hour)),
		event(model.SourceEmail, false, day1.Add(2*time.Hour)),
		event(model.SourceEmail, true, day1.AddDate(0, 0, -30)),
		{UserID: "u2", Source: model.SourceManual, CreatedAt: day1},
	}
	agg := NewStatsAggregator(store, nil)

	stat := agg.GetStats(context.Background(), "u1", Window{Since: day1.Add(-time.Hour)})
	require.NotNil(t, stat)
	assert.Equal(t, 3, stat.TotalTasks)
	assert.Equal(t, 1, stat.DuplicatesAvoided)
	assert.Equal(t, 33, stat.DeduplicationRate)

	stat = agg.GetStats(context.Background(), "u1", Window{})
	require.NotNil(t, stat)
	assert.Equal(t, 4, stat.TotalTasks)
	assert.Equal(t, 50, stat.DeduplicationRate)
}

func TestStatsAggregator_FailureIsNil(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("database is locked")
	agg := NewStatsAggregator(store, nil)

	assert.Nil(t, agg.GetStats(context.Background(), "u1", Window{}))

	_, err := agg.Stats(context.Background(), "u1", Window{})
	var storageErr *StorageError
	assert.ErrorAs(t, err, &storageErr)

	_, err = agg.Stats(context.Background(), "", Window{})
	assert.ErrorIs(t, err, ErrValidation)
}
