package dedupe

import (
	"fmt"
	"strings"

	"github.com/harrisonrobin/taskhub/pkg/model"
)

// DuplicateGroup is a cluster of tasks judged to be the same real-world
// to-do. Groups are computed on demand and never stored.
type DuplicateGroup struct {
	ID         string         `json:"id" yaml:"id"`
	Original   model.Task     `json:"original" yaml:"original"`
	Duplicates []model.Task   `json:"duplicates" yaml:"duplicates"`
	TotalCount int            `json:"total_count" yaml:"total_count"`
	Sources    []model.Source `json:"sources" yaml:"sources"`
	Confidence int            `json:"confidence" yaml:"confidence"` // 0-100, advisory only
}

// Members returns the original followed by the duplicates.
func (g DuplicateGroup) Members() []model.Task {
	members := make([]model.Task, 0, len(g.Duplicates)+1)
	members = append(members, g.Original)
	return append(members, g.Duplicates...)
}

// Contains reports whether taskID is a member of the group.
func (g DuplicateGroup) Contains(taskID string) bool {
	for _, t := range g.Members() {
		if t.ID == taskID {
			return true
		}
	}
	return false
}

// Analyzer clusters task lists into duplicate groups.
type Analyzer struct {
	config Config
}

// NewAnalyzer creates an Analyzer with the given configuration.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{config: cfg}, nil
}

// Analyze groups tasks with the default configuration.
func Analyze(tasks []model.Task) []DuplicateGroup {
	a := &Analyzer{config: DefaultConfig()}
	return a.Analyze(tasks)
}

// IsDuplicate reports whether y is a potential duplicate of x.
func (a *Analyzer) IsDuplicate(x, y model.Task) bool {
	if SameSourceIdentity(x, y) {
		return true
	}
	if !Comparable(x, y) {
		return false
	}
	// Blank titles never fuzzy-match, not even each other.
	if normalize(x.Title) == "" || normalize(y.Title) == "" {
		return false
	}
	return ScorePair(x, y).Combined() > a.config.SimilarityThreshold
}

// Analyze makes one forward pass over tasks in input order. Each task not
// yet claimed collects every later unclaimed task that matches it; a task
// that collects at least one match becomes the original of a new group.
// Tasks without matches are not reported.
func (a *Analyzer) Analyze(tasks []model.Task) []DuplicateGroup {
	processed := make([]bool, len(tasks))
	var groups []DuplicateGroup

	for i := range tasks {
		if processed[i] {
			continue
		}
		processed[i] = true

		var duplicates []model.Task
		for j := i + 1; j < len(tasks); j++ {
			if processed[j] {
				continue
			}
			if a.IsDuplicate(tasks[i], tasks[j]) {
				duplicates = append(duplicates, tasks[j])
				processed[j] = true
			}
		}

		if len(duplicates) == 0 {
			continue
		}
		groups = append(groups, newGroup(groupID(tasks[i], i), tasks[i], duplicates))
	}

	return groups
}

func newGroup(id string, original model.Task, duplicates []model.Task) DuplicateGroup {
	g := DuplicateGroup{
		ID:         id,
		Original:   original,
		Duplicates: duplicates,
		TotalCount: 1 + len(duplicates),
	}

	seen := make(map[model.Source]bool)
	for _, t := range g.Members() {
		if !seen[t.Source] {
			seen[t.Source] = true
			g.Sources = append(g.Sources, t.Source)
		}
	}
	g.Confidence = Confidence(original, duplicates)
	return g
}

// groupID derives a stable id from the original so that analyzing an
// unchanged list twice yields the same ids.
func groupID(original model.Task, index int) string {
	if id := strings.TrimSpace(original.ID); id != "" {
		return "dup-" + id
	}
	return fmt.Sprintf("dup-%d", index)
}
