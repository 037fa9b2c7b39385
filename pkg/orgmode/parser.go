// Package orgmode imports TODO and DONE headings from Org-mode files. Only
// headings carrying an :ID: property are imported, since the id is what
// identifies the task across imports.
package orgmode

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/harrisonrobin/taskhub/pkg/model"
)

var (
	starRegex    = regexp.MustCompile(`^\*+\s`)
	headingRegex = regexp.MustCompile(`^\*+\s+(TODO|DONE)\s*(?:\[#([A-Z])\])?\s*(.*?)(?:\s+(:(\w+(:\w+)*):))?\s*$`)
	idRegex      = regexp.MustCompile(`^:ID:\s+(\S+)`)
	createdRegex = regexp.MustCompile(`^:CREATED:\s+[\[<](\d{4}-\d{2}-\d{2}(?:\s+[A-Za-z]{3})?(?:\s+\d{2}:\d{2})?)[\]>]`)
)

// Heading is one parsed TODO or DONE heading.
type Heading struct {
	Task model.Task
	Tags []string
}

// Parser reads Org-mode files.
type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// parseFile parses an Org-mode file.
func (p *Parser) parseFile(filePath string) ([]Heading, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return p.Parse(file, filePath)
}

// ParseFiles parses multiple Org-mode files and returns their tasks. A
// non-empty tag keeps only headings carrying it.
func (p *Parser) ParseFiles(filePaths []string, tag string) ([]model.Task, error) {
	var all []Heading
	for _, filePath := range filePaths {
		headings, err := p.parseFile(filePath)
		if err != nil {
			return nil, err
		}
		all = append(all, headings...)
	}
	if tag != "" {
		all = FilterHeadings(all, tag)
	}
	tasks := make([]model.Task, 0, len(all))
	for _, h := range all {
		tasks = append(tasks, h.Task)
	}
	return tasks, nil
}

// Parse parses an Org-mode reader. name is used for logging only.
func (p *Parser) Parse(r io.Reader, name string) ([]Heading, error) {
	p.logger.Debug("parsing org file", "file", name)
	scanner := bufio.NewScanner(r)
	var headings []Heading
	var current *Heading

	flush := func() {
		if current != nil && current.Task.Title != "" && current.Task.SourceID != "" {
			headings = append(headings, *current)
		}
		current = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if starRegex.MatchString(line) {
			flush()
			matches := headingRegex.FindStringSubmatch(line)
			if matches == nil {
				continue
			}
			current = &Heading{Task: model.Task{
				Title:    strings.TrimSpace(matches[3]),
				Source:   model.SourceImport,
				Status:   model.StatusPending,
				Priority: priority(matches[2]),
			}}
			if matches[1] == "DONE" {
				current.Task.Status = model.StatusCompleted
			}
			if matches[4] != "" {
				current.Tags = strings.Split(strings.Trim(matches[4], ":"), ":")
			}
			continue
		}
		if current == nil {
			continue
		}

		if m := idRegex.FindStringSubmatch(line); m != nil {
			current.Task.SourceID = m[1]
		} else if m := createdRegex.FindStringSubmatch(line); m != nil {
			if created, ok := parseOrgTime(m[1]); ok {
				current.Task.CreatedAt = created
			}
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return headings, nil
}

// FilterHeadings keeps the headings tagged with tag.
func FilterHeadings(headings []Heading, tag string) []Heading {
	var filtered []Heading
	for _, h := range headings {
		if slices.Contains(h.Tags, tag) {
			filtered = append(filtered, h)
		}
	}
	return filtered
}

func priority(cookie string) model.Priority {
	switch cookie {
	case "A":
		return model.PriorityHigh
	case "B":
		return model.PriorityMedium
	case "C":
		return model.PriorityLow
	}
	return model.PriorityNone
}

func parseOrgTime(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02 Mon 15:04", "2006-01-02 Mon", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
