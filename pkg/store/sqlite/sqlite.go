// Package sqlite implements the task store and the prevention event log on
// an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/harrisonrobin/taskhub/pkg/model"
)

// ErrNotFound is returned when a task does not exist for the user.
var ErrNotFound = errors.New("task not found")

// Store is a SQLite-backed task store and prevention event log.
type Store struct {
	db *sql.DB
}

// Filter narrows List. Empty slices match everything.
type Filter struct {
	UserID   string
	Statuses []model.Status
	Sources  []model.Source
}

// New opens (or creates) the database at path and applies the schema.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", connString(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

func connString(path string) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)", path)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a task. A missing id, creation time or status is filled in;
// the stored task is returned.
func (s *Store) Create(ctx context.Context, t model.Task) (model.Task, error) {
	if strings.TrimSpace(t.UserID) == "" {
		return model.Task{}, fmt.Errorf("task has no user id")
	}
	if !t.Source.Valid() {
		return model.Task{}, fmt.Errorf("task has unknown source %q", t.Source)
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	t.CreatedAt = t.CreatedAt.UTC()
	if t.Status == "" {
		t.Status = model.StatusPending
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, description, source, source_id, priority, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.UserID, t.Title, t.Description, string(t.Source), t.SourceID,
		string(t.Priority), string(t.Status), t.CreatedAt.UnixNano())
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to insert task: %w", err)
	}
	return t, nil
}

const taskColumns = `id, user_id, title, description, source, source_id, priority, status, created_at`

// Get returns one task of userID.
func (s *Store) Get(ctx context.Context, userID, id string) (model.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND id = ?`, userID, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to get task %s: %w", id, err)
	}
	return t, nil
}

// FindBySource returns the earliest task of userID carrying the given
// source identity. ok is false when there is none.
func (s *Store) FindBySource(ctx context.Context, userID string, source model.Source, sourceID string) (t model.Task, ok bool, err error) {
	if sourceID == "" {
		return model.Task{}, false, nil
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE user_id = ? AND source = ? AND source_id = ?
		ORDER BY created_at, seq
		LIMIT 1
	`, userID, string(source), sourceID)
	t, err = scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, false, nil
	}
	if err != nil {
		return model.Task{}, false, fmt.Errorf("failed to find task by source: %w", err)
	}
	return t, true, nil
}

// List returns the tasks matching f, oldest first. Tasks created in the same
// instant keep their insertion order.
func (s *Store) List(ctx context.Context, f Filter) ([]model.Task, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if len(f.Statuses) > 0 {
		where = append(where, "status IN ("+placeholders(len(f.Statuses))+")")
		for _, st := range f.Statuses {
			args = append(args, string(st))
		}
	}
	if len(f.Sources) > 0 {
		where = append(where, "source IN ("+placeholders(len(f.Sources))+")")
		for _, src := range f.Sources {
			args = append(args, string(src))
		}
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, seq`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Delete removes the given tasks of userID in one transaction. Ids that no
// longer exist are ignored, so repeating a delete succeeds.
func (s *Store) Delete(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM tasks WHERE user_id = ? AND id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, userID, id); err != nil {
			return fmt.Errorf("failed to delete task %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

// AppendPreventionEvent records one ingestion attempt.
func (s *Store) AppendPreventionEvent(ctx context.Context, ev model.PreventionEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prevention_events (user_id, source, source_id, existing_id, was_duplicate, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ev.UserID, string(ev.Source), ev.SourceID, ev.ExistingID, ev.WasDuplicate, ev.CreatedAt.UTC().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to append prevention event: %w", err)
	}
	return nil
}

// ListPreventionEvents returns the events of userID in [since, until), oldest
// first. A zero bound is open.
func (s *Store) ListPreventionEvents(ctx context.Context, userID string, since, until time.Time) ([]model.PreventionEvent, error) {
	query := `SELECT user_id, source, source_id, existing_id, was_duplicate, created_at
		FROM prevention_events WHERE user_id = ?`
	args := []any{userID}
	if !since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, since.UTC().UnixNano())
	}
	if !until.IsZero() {
		query += ` AND created_at < ?`
		args = append(args, until.UTC().UnixNano())
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list prevention events: %w", err)
	}
	defer rows.Close()

	var events []model.PreventionEvent
	for rows.Next() {
		var (
			ev        model.PreventionEvent
			source    string
			createdAt int64
		)
		if err := rows.Scan(&ev.UserID, &source, &ev.SourceID, &ev.ExistingID, &ev.WasDuplicate, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan prevention event: %w", err)
		}
		ev.Source = model.Source(source)
		ev.CreatedAt = time.Unix(0, createdAt).UTC()
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list prevention events: %w", err)
	}
	return events, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (model.Task, error) {
	var (
		t                        model.Task
		source, priority, status string
		createdAt                int64
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &source, &t.SourceID,
		&priority, &status, &createdAt)
	if err != nil {
		return model.Task{}, err
	}
	t.Source = model.Source(source)
	t.Priority = model.Priority(priority)
	t.Status = model.Status(status)
	t.CreatedAt = time.Unix(0, createdAt).UTC()
	return t, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
