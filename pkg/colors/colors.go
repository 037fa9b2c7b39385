// Package colors assigns terminal colors to task sources and confidence
// levels for CLI output.
package colors

import (
	"github.com/fatih/color"

	"github.com/harrisonrobin/taskhub/pkg/model"
)

var sourceAttrs = map[model.Source][]color.Attribute{
	model.SourceManual:   {color.FgWhite},
	model.SourceCalendar: {color.FgBlue},
	model.SourceEmail:    {color.FgMagenta},
	model.SourceAI:       {color.FgCyan},
	model.SourceTodoist:  {color.FgRed},
	model.SourceImport:   {color.FgYellow},
}

// Source renders the source name in its color.
func Source(src model.Source) string {
	attrs, ok := sourceAttrs[src]
	if !ok {
		attrs = []color.Attribute{color.FgHiBlack}
	}
	return color.New(attrs...).Sprint(string(src))
}

// ConfidenceColor picks green for near-certain groups, yellow for likely
// ones and red below that.
func ConfidenceColor(pct int) *color.Color {
	switch {
	case pct >= 90:
		return color.New(color.FgGreen, color.Bold)
	case pct >= 75:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

// Confidence renders a percentage like "88%" in its confidence color.
func Confidence(pct int) string {
	return ConfidenceColor(pct).Sprintf("%d%%", pct)
}

// Rate colors a deduplication rate: higher means more duplicates were
// caught before reaching the task list.
func Rate(pct int) string {
	c := color.New(color.FgHiBlack)
	switch {
	case pct >= 50:
		c = color.New(color.FgGreen)
	case pct > 0:
		c = color.New(color.FgYellow)
	}
	return c.Sprintf("%d%%", pct)
}

var (
	Header = color.New(color.FgCyan, color.Bold).SprintFunc()
	Muted  = color.New(color.FgHiBlack).SprintFunc()
	OK     = color.New(color.FgGreen).SprintFunc()
	Fail   = color.New(color.FgRed, color.Bold).SprintFunc()
)
