package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/taskhub/pkg/dedupe"
	"github.com/harrisonrobin/taskhub/pkg/model"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type harness struct {
	t    *testing.T
	dir  string
	user string
}

func newHarness(t *testing.T) *harness {
	return &harness{t: t, dir: t.TempDir(), user: "u1"}
}

// run executes taskhub with the harness' isolated config and databases.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	full := append([]string{
		"--config", filepath.Join(h.dir, "config.yaml"),
		"--db", filepath.Join(h.dir, "taskhub.db"),
		"--index", filepath.Join(h.dir, "sources.db"),
		"--user", h.user,
	}, args...)
	var out, errOut bytes.Buffer
	err := run(context.Background(), full, &out, &errOut)
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	return out
}

func (h *harness) groups() []dedupe.DuplicateGroup {
	h.t.Helper()
	var groups []dedupe.DuplicateGroup
	require.NoError(h.t, json.Unmarshal([]byte(h.mustRun("duplicates", "--format", "json")), &groups))
	return groups
}

const twExport = `[
  {"uuid":"aaaa-1","description":"Renew passport","status":"pending","entry":"20250301T090000Z"},
  {"uuid":"bbbb-2","description":"Book dentist","status":"pending","entry":"20250302T090000Z"}
]`

func TestAddAndDuplicates(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("duplicates")
	assert.Contains(t, out, "No duplicates found.")

	h.mustRun("add", "Buy", "milk")
	h.mustRun("add", "Buy milk", "-p", "high")
	h.mustRun("add", "Call plumber")

	groups := h.groups()
	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].TotalCount)
	assert.Equal(t, 100, groups[0].Confidence)
	assert.Equal(t, "Buy milk", groups[0].Original.Title)

	text := h.mustRun("duplicates")
	assert.Contains(t, text, "Found 1 duplicate group(s)")
	assert.Contains(t, text, groups[0].ID)

	yml := h.mustRun("duplicates", "-f", "yaml")
	assert.Contains(t, yml, "total_count: 2")

	_, err := h.run("duplicates", "-f", "xml")
	assert.Error(t, err)
	_, err = h.run("add", "x", "-p", "asap")
	assert.Error(t, err)
}

func TestDuplicatesScopedPerUser(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "Buy milk")
	h.user = "u2"
	h.mustRun("add", "Buy milk")

	assert.Empty(t, h.groups())
}

func TestImportTaskwarriorSkipsKnown(t *testing.T) {
	h := newHarness(t)
	export := filepath.Join(h.dir, "export.json")
	require.NoError(t, os.WriteFile(export, []byte(twExport), 0600))

	out := h.mustRun("import", "taskwarrior", export)
	assert.Contains(t, out, "Imported 2 task(s), skipped 0 already known.")

	out = h.mustRun("import", "taskwarrior", export)
	assert.Contains(t, out, "Imported 0 task(s), skipped 2 already known.")

	var stat dedupe.DeduplicationStat
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("stats", "-t", "all", "-f", "json")), &stat))
	assert.Equal(t, 4, stat.TotalTasks)
	assert.Equal(t, 2, stat.DuplicatesAvoided)
	assert.Equal(t, 50, stat.DeduplicationRate)
	assert.Equal(t, dedupe.SourceStat{Count: 4, Duplicates: 2}, stat.Sources[model.SourceImport])

	text := h.mustRun("stats", "-t", "all")
	assert.Contains(t, text, "Deduplication rate:  50%")
}

func TestImportOrg(t *testing.T) {
	h := newHarness(t)
	org := filepath.Join(h.dir, "home.org")
	require.NoError(t, os.WriteFile(org, []byte("* TODO Water plants :home:\n:PROPERTIES:\n:ID: plants\n:END:\n* TODO Fix bike :garage:\n:PROPERTIES:\n:ID: bike\n:END:\n"), 0600))

	out := h.mustRun("import", "org", "--tag", "home", org)
	assert.Contains(t, out, "Imported 1 task(s)")
	out = h.mustRun("import", "org", org)
	assert.Contains(t, out, "Imported 1 task(s), skipped 1 already known.")
}

func TestMergeKeepAndNewest(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "Buy milk")
	h.mustRun("add", "Buy milk")
	h.mustRun("add", "Buy milk")

	groups := h.groups()
	require.Len(t, groups, 1)
	g := groups[0]

	_, err := h.run("merge", g.ID)
	assert.Error(t, err, "needs --keep or --newest")
	_, err = h.run("merge", g.ID, "--keep", g.Original.ID, "--newest")
	assert.Error(t, err)
	_, err = h.run("merge", "dup-nope", "--newest")
	assert.Error(t, err)
	_, err = h.run("merge", g.ID, "--keep", "not-a-member")
	assert.ErrorIs(t, err, dedupe.ErrNotFound)

	keep := g.Duplicates[0].ID
	out := h.mustRun("merge", g.ID, "--keep", keep)
	assert.Contains(t, out, "removed 2 duplicate(s)")
	assert.Empty(t, h.groups())

	h.mustRun("add", "Buy milk")
	groups = h.groups()
	require.Len(t, groups, 1)
	assert.Equal(t, keep, groups[0].Original.ID)
	out = h.mustRun("merge", groups[0].ID, "--newest")
	assert.Contains(t, out, "removed 1 duplicate(s)")

	out = h.mustRun("duplicates", "--format", "json")
	assert.Equal(t, "[]\n", out)
}

func TestStatsSinceAndValidation(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "Buy milk")

	out := h.mustRun("stats", "--since", "3 days ago")
	assert.Contains(t, out, "Tasks ingested:      1")

	_, err := h.run("stats", "--since", "purple elephants")
	assert.Error(t, err)
	_, err = h.run("stats", "-t", "fortnight")
	assert.ErrorIs(t, err, dedupe.ErrValidation)
}

func TestReport(t *testing.T) {
	h := newHarness(t)
	h.mustRun("add", "Buy milk")
	h.mustRun("add", "Buy milk")

	out := h.mustRun("report", "-t", "all")
	assert.Contains(t, out, "Deduplication (all time)")
	assert.NotContains(t, out, "last all")
	assert.Contains(t, out, "Tasks ingested:      2")
	assert.Contains(t, out, "Found 1 duplicate group(s)")
}

func TestConfigCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("config", "set-calendar", "Family")
	h.mustRun("config", "set-user", "sam")

	h.user = ""
	full := []string{"--config", filepath.Join(h.dir, "config.yaml"), "config", "show", "-f", "json"}
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), full, &out, &bytes.Buffer{}))

	body := out.String()
	body = body[strings.Index(body, "{"):]
	var shown map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &shown))
	assert.Equal(t, "Family", shown["calendar"])
	assert.Equal(t, "sam", shown["user"])
}

func TestInvalidConfigRejected(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, "config.yaml"), []byte("similarity_threshold: 2\n"), 0600))

	_, err := h.run("duplicates")
	assert.ErrorIs(t, err, dedupe.ErrValidation)

	// config commands still work so the file can be repaired.
	_, err = h.run("config", "show")
	assert.NoError(t, err)
}

func TestParseSince(t *testing.T) {
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)

	got, err := parseSince("3 days ago", now)
	require.NoError(t, err)
	assert.True(t, got.Before(now))
	assert.WithinDuration(t, now.AddDate(0, 0, -3), got, 24*time.Hour)

	_, err = parseSince("in 3 days", now)
	assert.Error(t, err)

	_, err = parseSince("purple elephants", now)
	assert.Error(t, err)
}

func TestStatsWindow(t *testing.T) {
	now := time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)

	w, label, err := statsWindow("week", "", now)
	require.NoError(t, err)
	assert.Equal(t, "last week", label)
	assert.True(t, w.Since.Equal(now.AddDate(0, 0, -7)))

	w, label, err = statsWindow("all", "", now)
	require.NoError(t, err)
	assert.Equal(t, "all time", label)
	assert.True(t, w.Since.IsZero())

	_, label, err = statsWindow("", "", now)
	require.NoError(t, err)
	assert.Equal(t, "last week", label)

	_, _, err = statsWindow("fortnight", "", now)
	assert.Error(t, err)
}
