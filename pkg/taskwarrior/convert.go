package taskwarrior

import (
	"strings"

	"github.com/harrisonrobin/taskhub/pkg/model"
)

// ToTask converts a taskwarrior task into an imported task keyed by its UUID.
// ok is false for deleted tasks, recurrence templates and tasks without a UUID.
func ToTask(tw Task) (t model.Task, ok bool) {
	if tw.UUID == "" || tw.Status == DELETED || tw.Status == RECURRING {
		return model.Task{}, false
	}

	t = model.Task{
		Title:       strings.TrimSpace(tw.Description),
		Description: annotationText(tw.Annotations),
		Source:      model.SourceImport,
		SourceID:    tw.UUID,
		Priority:    priority(tw.Priority),
		Status:      status(tw.Status),
	}
	if tw.Entry != nil {
		t.CreatedAt = tw.Entry.Time
	}
	return t, true
}

// ToTasks converts a batch, dropping tasks ToTask rejects.
func ToTasks(tws []Task) []model.Task {
	out := make([]model.Task, 0, len(tws))
	for _, tw := range tws {
		if t, ok := ToTask(tw); ok {
			out = append(out, t)
		}
	}
	return out
}

func annotationText(annotations []Annotation) string {
	lines := make([]string, 0, len(annotations))
	for _, a := range annotations {
		if d := strings.TrimSpace(a.Description); d != "" {
			lines = append(lines, d)
		}
	}
	return strings.Join(lines, "\n")
}

func priority(p string) model.Priority {
	switch strings.ToUpper(p) {
	case "H":
		return model.PriorityHigh
	case "M":
		return model.PriorityMedium
	case "L":
		return model.PriorityLow
	}
	return model.PriorityNone
}

func status(s string) model.Status {
	switch s {
	case COMPLETED:
		return model.StatusCompleted
	case WAITING:
		return model.StatusWaiting
	}
	return model.StatusPending
}
