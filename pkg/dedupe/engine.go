package dedupe

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/harrisonrobin/taskhub/pkg/model"
)

// Store is what the engine needs from persistence: batch deletes for merges
// and the prevention event log for stats.
type Store interface {
	TaskDeleter
	EventReader
}

// Engine keeps the groups of the latest analysis so that callers can address
// them by id, and holds the local-only dismissals.
type Engine struct {
	analyzer *Analyzer
	resolver *Resolver
	stats    *StatsAggregator
	logger   *slog.Logger

	mu        sync.Mutex
	groups    []DuplicateGroup
	dismissed map[string]bool
}

// NewEngine creates an Engine backed by store.
func NewEngine(store Store, cfg Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	analyzer, err := NewAnalyzer(cfg)
	if err != nil {
		return nil, err
	}
	return &Engine{
		analyzer:  analyzer,
		resolver:  NewResolver(store, logger),
		stats:     NewStatsAggregator(store, logger),
		logger:    logger,
		dismissed: make(map[string]bool),
	}, nil
}

// Analyze groups a fresh snapshot of tasks. It replaces the previous result
// and clears every dismissal.
func (e *Engine) Analyze(tasks []model.Task) []DuplicateGroup {
	groups := e.analyzer.Analyze(tasks)

	e.mu.Lock()
	e.groups = groups
	e.dismissed = make(map[string]bool)
	e.mu.Unlock()

	e.logger.Debug("analyzed tasks", "tasks", len(tasks), "groups", len(groups))
	return append([]DuplicateGroup(nil), groups...)
}

// Groups returns the current groups that have not been dismissed.
func (e *Engine) Groups() []DuplicateGroup {
	e.mu.Lock()
	defer e.mu.Unlock()

	var visible []DuplicateGroup
	for _, g := range e.groups {
		if !e.dismissed[g.ID] {
			visible = append(visible, g)
		}
	}
	return visible
}

// Group looks up a group of the latest analysis, dismissed or not.
func (e *Engine) Group(groupID string) (DuplicateGroup, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, g := range e.groups {
		if g.ID == groupID {
			return g, true
		}
	}
	return DuplicateGroup{}, false
}

// Dismiss hides a group until the next Analyze. Nothing is stored.
func (e *Engine) Dismiss(groupID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dismissed[groupID] = true
}

// Merge resolves groupID from the latest analysis and deletes every member
// except keepTaskID. On success the group leaves the current result; the
// caller re-fetches and re-analyzes to see the new state.
func (e *Engine) Merge(ctx context.Context, userID, groupID, keepTaskID string) error {
	group, ok := e.Group(groupID)
	if !ok {
		return fmt.Errorf("%w: duplicate group %s", ErrNotFound, groupID)
	}
	if err := e.resolver.Merge(ctx, userID, group, keepTaskID); err != nil {
		return err
	}
	e.forget(groupID)
	return nil
}

// MergeDuplicates is Merge with failures reported as false.
func (e *Engine) MergeDuplicates(ctx context.Context, userID, groupID, keepTaskID string) bool {
	if err := e.Merge(ctx, userID, groupID, keepTaskID); err != nil {
		e.logger.Warn("merge failed", "group", groupID, "keep", keepTaskID, "error", err)
		return false
	}
	return true
}

// RemoveAllButNewest keeps the newest member of group and deletes the rest.
func (e *Engine) RemoveAllButNewest(ctx context.Context, userID string, group DuplicateGroup) bool {
	if !e.resolver.RemoveAllButNewest(ctx, userID, group) {
		return false
	}
	e.forget(group.ID)
	return true
}

// GetStats reports prevention statistics for userID, or nil if the event
// log could not be read.
func (e *Engine) GetStats(ctx context.Context, userID string, w Window) *DeduplicationStat {
	return e.stats.GetStats(ctx, userID, w)
}

func (e *Engine) forget(groupID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.groups[:0]
	for _, g := range e.groups {
		if g.ID != groupID {
			kept = append(kept, g)
		}
	}
	e.groups = kept
	delete(e.dismissed, groupID)
}
