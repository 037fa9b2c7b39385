// Package ingest brings tasks from external sources into the task store,
// skipping items whose source identity has already been imported and
// recording every attempt in the prevention event log.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/harrisonrobin/taskhub/pkg/dedupe"
	"github.com/harrisonrobin/taskhub/pkg/model"
)

// TaskStore is the subset of the task store the pipeline needs.
type TaskStore interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, userID, id string) (model.Task, error)
	FindBySource(ctx context.Context, userID string, source model.Source, sourceID string) (model.Task, bool, error)
	AppendPreventionEvent(ctx context.Context, ev model.PreventionEvent) error
}

// Index maps source identities to task ids.
type Index interface {
	Get(userID string, source model.Source, sourceID string) (string, error)
	Set(userID string, source model.Source, sourceID, taskID string) error
	Remove(userID string, source model.Source, sourceID string) error
}

// Result describes the outcome of ingesting one candidate.
type Result struct {
	Task     model.Task
	Skipped  bool
	Existing string
}

// Summary counts the outcome of a batch.
type Summary struct {
	Created int
	Skipped int
}

// Pipeline ingests candidate tasks for a user.
type Pipeline struct {
	store    TaskStore
	index    Index
	logger   *slog.Logger
	notFound error
	now      func() time.Time
}

// NewPipeline creates a pipeline. index may be nil, in which case only the
// store is consulted. notFound is the error the store wraps when Get misses.
func NewPipeline(store TaskStore, index Index, notFound error, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		store:    store,
		index:    index,
		logger:   logger,
		notFound: notFound,
		now:      time.Now,
	}
}

// Ingest creates candidate for userID unless a task with the same source
// identity already exists.
func (p *Pipeline) Ingest(ctx context.Context, userID string, candidate model.Task) (Result, error) {
	if userID == "" {
		return Result{}, fmt.Errorf("ingest: empty user id")
	}
	if !candidate.Source.Valid() {
		return Result{}, fmt.Errorf("ingest: unknown source %q", candidate.Source)
	}
	candidate.UserID = userID

	existing, err := p.lookup(ctx, userID, candidate.Source, candidate.SourceID)
	if err != nil {
		return Result{}, err
	}
	if existing != "" {
		p.record(ctx, candidate, existing, true)
		p.logger.Debug("skipped duplicate",
			"source", candidate.Source, "source_id", candidate.SourceID, "existing", existing)
		return Result{Skipped: true, Existing: existing}, nil
	}

	created, err := p.store.Create(ctx, candidate)
	if err != nil {
		return Result{}, fmt.Errorf("ingest: %w", err)
	}
	if p.index != nil {
		if err := p.index.Set(userID, created.Source, created.SourceID, created.ID); err != nil {
			p.logger.Warn("failed to index task", "task", created.ID, "error", err)
		}
	}
	p.record(ctx, created, "", false)
	return Result{Task: created}, nil
}

// IngestAll ingests candidates in order. It stops at the first error and
// returns the counts so far.
func (p *Pipeline) IngestAll(ctx context.Context, userID string, candidates []model.Task) (Summary, error) {
	var sum Summary
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		res, err := p.Ingest(ctx, userID, c)
		if err != nil {
			return sum, err
		}
		if res.Skipped {
			sum.Skipped++
		} else {
			sum.Created++
		}
	}
	return sum, nil
}

// lookup returns the id of the task already holding the identity, or "".
func (p *Pipeline) lookup(ctx context.Context, userID string, source model.Source, sourceID string) (string, error) {
	if dedupe.IdentityKey(source, sourceID) == "" {
		return "", nil
	}

	if p.index != nil {
		id, err := p.index.Get(userID, source, sourceID)
		if err != nil {
			p.logger.Warn("source index lookup failed", "error", err)
		} else if id != "" {
			_, err := p.store.Get(ctx, userID, id)
			switch {
			case err == nil:
				return id, nil
			case p.notFound != nil && errors.Is(err, p.notFound):
				// The indexed task was deleted (merged away); fall through.
				if err := p.index.Remove(userID, source, sourceID); err != nil {
					p.logger.Warn("failed to drop stale index entry", "error", err)
				}
			default:
				return "", fmt.Errorf("ingest: verify indexed task: %w", err)
			}
		}
	}

	t, ok, err := p.store.FindBySource(ctx, userID, source, sourceID)
	if err != nil {
		return "", fmt.Errorf("ingest: %w", err)
	}
	if !ok {
		return "", nil
	}
	if p.index != nil {
		if err := p.index.Set(userID, source, sourceID, t.ID); err != nil {
			p.logger.Warn("failed to index task", "task", t.ID, "error", err)
		}
	}
	return t.ID, nil
}

// record appends a prevention event. Failures are logged and never fail the
// ingestion itself.
func (p *Pipeline) record(ctx context.Context, t model.Task, existing string, dup bool) {
	ev := model.PreventionEvent{
		UserID:       t.UserID,
		Source:       t.Source,
		SourceID:     t.SourceID,
		ExistingID:   existing,
		WasDuplicate: dup,
		CreatedAt:    p.now(),
	}
	if err := p.store.AppendPreventionEvent(ctx, ev); err != nil {
		p.logger.Warn("failed to record prevention event", "error", err)
	}
}
