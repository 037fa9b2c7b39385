package model

import (
	"fmt"
	"strings"
	"time"
)

// Source identifies where a task came from.
type Source string

const (
	SourceManual   Source = "manual"
	SourceCalendar Source = "calendar"
	SourceEmail    Source = "email"
	SourceAI       Source = "ai"
	SourceTodoist  Source = "todoist"
	SourceImport   Source = "import"
)

// Sources lists every known source in display order.
var Sources = []Source{SourceManual, SourceCalendar, SourceEmail, SourceAI, SourceTodoist, SourceImport}

// ParseSource converts a free-form source string into a Source.
func ParseSource(s string) (Source, error) {
	src := Source(strings.ToLower(strings.TrimSpace(s)))
	if !src.Valid() {
		return "", fmt.Errorf("unknown task source %q", s)
	}
	return src, nil
}

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	switch s {
	case SourceManual, SourceCalendar, SourceEmail, SourceAI, SourceTodoist, SourceImport:
		return true
	}
	return false
}

// IsIntegration reports whether tasks from s are produced by an automated
// calendar or mail integration.
func (s Source) IsIntegration() bool {
	switch s {
	case SourceCalendar, SourceEmail:
		return true
	case SourceManual, SourceAI, SourceTodoist, SourceImport:
		return false
	}
	return false
}

type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusWaiting   Status = "waiting"
	StatusDeleted   Status = "deleted"
)

// Task is a to-do owned by a user or family, from any source.
type Task struct {
	ID          string    `json:"id" yaml:"id"`
	UserID      string    `json:"user_id" yaml:"user_id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Source      Source    `json:"source" yaml:"source"`
	SourceID    string    `json:"source_id,omitempty" yaml:"source_id,omitempty"` // stable per origin record
	Priority    Priority  `json:"priority,omitempty" yaml:"priority,omitempty"`
	Status      Status    `json:"status" yaml:"status"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// PreventionEvent records one creation attempt made by an ingestion pipeline.
// WasDuplicate is true when the attempt was skipped because the task already existed.
type PreventionEvent struct {
	UserID       string    `json:"user_id"`
	Source       Source    `json:"source"`
	SourceID     string    `json:"source_id,omitempty"`
	ExistingID   string    `json:"existing_id,omitempty"`
	WasDuplicate bool      `json:"was_duplicate"`
	CreatedAt    time.Time `json:"created_at"`
}
