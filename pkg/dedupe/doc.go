// Package dedupe finds and resolves duplicate tasks.
//
// Tasks reach the store from several uncoordinated sources (manual entry,
// calendar sync, email parsing, the assistant, Todoist, file imports) and the
// same real-world to-do can be created more than once. This package detects
// such duplicates over one user's active task list and resolves them.
//
// Two tasks are duplicates when either
//   - they share a source identity: same source and the same non-empty
//     source id, whatever their text says; or
//   - they are comparable (same source, or both from the calendar/email
//     integrations) and the average of their title and description
//     similarity exceeds Config.SimilarityThreshold.
//
// Analyze clusters a task list in a single forward pass. The first task of a
// cluster in input order becomes the group's original and every later match
// is a duplicate of it. Clustering is not transitive: a task that only
// matches one of the duplicates is not pulled into the group.
//
// Example usage:
//
//	engine, err := dedupe.NewEngine(store, dedupe.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	tasks, err := store.List(ctx, sqlite.Filter{UserID: userID})
//	if err != nil {
//	    return err
//	}
//	groups := engine.Analyze(tasks)
//	for _, g := range groups {
//	    log.Printf("%s: %d tasks, confidence %d%%", g.ID, g.TotalCount, g.Confidence)
//	}
//	if len(groups) > 0 && !engine.RemoveAllButNewest(ctx, userID, groups[0]) {
//	    // show a retry affordance; the group is unchanged
//	}
//
// Groups are never persisted. After a merge the caller re-fetches the task
// list and calls Analyze again.
package dedupe
