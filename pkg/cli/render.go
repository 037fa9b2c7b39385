package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/harrisonrobin/taskhub/pkg/colors"
	"github.com/harrisonrobin/taskhub/pkg/dedupe"
	"github.com/harrisonrobin/taskhub/pkg/model"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unknown format %q (use text, json or yaml)", format)
}

// encode writes v as JSON or YAML.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", format)
}

func renderGroups(w io.Writer, format string, groups []dedupe.DuplicateGroup) error {
	if format != formatText {
		if groups == nil {
			groups = []dedupe.DuplicateGroup{}
		}
		return encode(w, format, groups)
	}

	if len(groups) == 0 {
		fmt.Fprintln(w, colors.OK("No duplicates found."))
		return nil
	}
	fmt.Fprintf(w, "%s\n\n", colors.Header(fmt.Sprintf("Found %d duplicate group(s)", len(groups))))
	for _, g := range groups {
		renderGroup(w, g)
		fmt.Fprintln(w)
	}
	return nil
}

func renderGroup(w io.Writer, g dedupe.DuplicateGroup) {
	sources := make([]string, 0, len(g.Sources))
	for _, src := range g.Sources {
		sources = append(sources, colors.Source(src))
	}
	fmt.Fprintf(w, "%s  %d tasks  confidence %s  [%s]\n",
		colors.Header(g.ID), g.TotalCount, colors.Confidence(g.Confidence), strings.Join(sources, ", "))

	newest := dedupe.Newest(g).ID
	for i, t := range g.Members() {
		marker := "  "
		if i == 0 {
			marker = "* "
		}
		note := ""
		if t.ID == newest {
			note = colors.Muted(" (newest)")
		}
		fmt.Fprintf(w, "  %s%s  %s  %s  %s%s\n",
			marker, t.ID, taskLine(t), colors.Source(t.Source), colors.Muted(t.CreatedAt.Local().Format("2006-01-02 15:04")), note)
	}
}

func taskLine(t model.Task) string {
	title := t.Title
	if strings.TrimSpace(title) == "" {
		title = colors.Muted("(untitled)")
	}
	if t.SourceID != "" {
		title += colors.Muted(" #" + t.SourceID)
	}
	return title
}

func renderStats(w io.Writer, format string, label string, stat dedupe.DeduplicationStat) error {
	if format != formatText {
		return encode(w, format, stat)
	}

	fmt.Fprintf(w, "%s\n", colors.Header("Deduplication ("+label+")"))
	fmt.Fprintf(w, "  Tasks ingested:      %d\n", stat.TotalTasks)
	fmt.Fprintf(w, "  Duplicates avoided:  %d\n", stat.DuplicatesAvoided)
	fmt.Fprintf(w, "  Deduplication rate:  %s\n", colors.Rate(stat.DeduplicationRate))

	if len(stat.Sources) == 0 {
		return nil
	}
	sources := make([]model.Source, 0, len(stat.Sources))
	for src := range stat.Sources {
		sources = append(sources, src)
	}
	slices.Sort(sources)
	fmt.Fprintln(w, "  By source:")
	for _, src := range sources {
		s := stat.Sources[src]
		fmt.Fprintf(w, "    %-10s %d ingested, %d duplicate(s)\n", string(src), s.Count, s.Duplicates)
	}
	return nil
}
