package dedupe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/harrisonrobin/taskhub/pkg/model"
)

// TaskDeleter removes tasks in one batch. Implementations must apply the
// whole batch or none of it, and must treat ids that are already gone as
// deleted rather than as an error.
type TaskDeleter interface {
	Delete(ctx context.Context, userID string, ids []string) error
}

// Resolver merges duplicate groups by deleting every member but one.
type Resolver struct {
	store  TaskDeleter
	logger *slog.Logger
}

// NewResolver creates a Resolver backed by store.
func NewResolver(store TaskDeleter, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, logger: logger}
}

// Merge deletes every member of group except keepTaskID in a single batch.
//
// Returns:
//   - ErrValidation if userID or keepTaskID is empty
//   - ErrNotFound if keepTaskID is not a member of the group
//   - *StorageError if the batch delete failed; nothing was deleted
func (r *Resolver) Merge(ctx context.Context, userID string, group DuplicateGroup, keepTaskID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if strings.TrimSpace(keepTaskID) == "" {
		return fmt.Errorf("%w: task to keep is required", ErrValidation)
	}
	if !group.Contains(keepTaskID) {
		return fmt.Errorf("%w: task %s is not a member of group %s", ErrNotFound, keepTaskID, group.ID)
	}

	ids := deleteSet(group, keepTaskID)
	if len(ids) == 0 {
		return nil
	}
	if err := r.store.Delete(ctx, userID, ids); err != nil {
		return &StorageError{Op: "delete", Err: err}
	}

	r.logger.Info("merged duplicate group",
		"group", group.ID, "kept", keepTaskID, "deleted", len(ids), "user", userID)
	return nil
}

// MergeDuplicates is Merge with failures reported as false. The cause is
// logged; the group is left untouched.
func (r *Resolver) MergeDuplicates(ctx context.Context, userID string, group DuplicateGroup, keepTaskID string) bool {
	if err := r.Merge(ctx, userID, group, keepTaskID); err != nil {
		r.logger.Warn("merge failed", "group", group.ID, "keep", keepTaskID, "error", err)
		return false
	}
	return true
}

// RemoveAllButNewest keeps the most recently created member of group and
// deletes the rest.
func (r *Resolver) RemoveAllButNewest(ctx context.Context, userID string, group DuplicateGroup) bool {
	return r.MergeDuplicates(ctx, userID, group, Newest(group).ID)
}

// Newest returns the member with the latest CreatedAt. On ties the member
// that comes first in the group wins.
func Newest(group DuplicateGroup) model.Task {
	newest := group.Original
	for _, t := range group.Duplicates {
		if t.CreatedAt.After(newest.CreatedAt) {
			newest = t
		}
	}
	return newest
}

// deleteSet lists every member id except keep, in group order, without
// repeats.
func deleteSet(group DuplicateGroup, keep string) []string {
	seen := map[string]bool{keep: true}
	var ids []string
	for _, t := range group.Members() {
		if t.ID == "" || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		ids = append(ids, t.ID)
	}
	return ids
}
