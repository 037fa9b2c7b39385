package orgmode

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/taskhub/pkg/model"
)

const sample = `#+TITLE: Home
* TODO [#A] Buy milk :errands:home:
  :PROPERTIES:
  :ID:       3f2a9c1e-0001
  :CREATED:  [2025-03-01 Sat 09:30]
  :END:
* DONE Call plumber
  :PROPERTIES:
  :ID: plumber-1
  :END:
** TODO Nested without id
* TODO Untracked heading
* Notes
  :PROPERTIES:
  :ID: not-a-task
  :END:
* TODO [#C] Renew passport :errands:
  DEADLINE: <2025-04-01 Tue 10:00>
  :PROPERTIES:
  :ID: passport
  :END:
`

func TestParse(t *testing.T) {
	headings, err := NewParser(nil).Parse(strings.NewReader(sample), "home.org")
	require.NoError(t, err)
	require.Len(t, headings, 3)

	milk := headings[0]
	assert.Equal(t, "Buy milk", milk.Task.Title)
	assert.Equal(t, "3f2a9c1e-0001", milk.Task.SourceID)
	assert.Equal(t, model.SourceImport, milk.Task.Source)
	assert.Equal(t, model.PriorityHigh, milk.Task.Priority)
	assert.Equal(t, model.StatusPending, milk.Task.Status)
	assert.Equal(t, []string{"errands", "home"}, milk.Tags)
	assert.True(t, milk.Task.CreatedAt.Equal(time.Date(2025, 3, 1, 9, 30, 0, 0, time.Local)))

	plumber := headings[1]
	assert.Equal(t, "Call plumber", plumber.Task.Title)
	assert.Equal(t, model.StatusCompleted, plumber.Task.Status)
	assert.Equal(t, model.PriorityNone, plumber.Task.Priority)
	assert.True(t, plumber.Task.CreatedAt.IsZero())

	passport := headings[2]
	assert.Equal(t, "passport", passport.Task.SourceID)
	assert.Equal(t, model.PriorityLow, passport.Task.Priority)
}

func TestFilterHeadings(t *testing.T) {
	headings, err := NewParser(nil).Parse(strings.NewReader(sample), "home.org")
	require.NoError(t, err)

	errands := FilterHeadings(headings, "errands")
	require.Len(t, errands, 2)
	assert.Equal(t, "Buy milk", errands[0].Task.Title)
	assert.Equal(t, "Renew passport", errands[1].Task.Title)

	assert.Empty(t, FilterHeadings(headings, "work"))
}

func TestParseFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.org")
	b := filepath.Join(dir, "b.org")
	require.NoError(t, os.WriteFile(a, []byte(sample), 0600))
	require.NoError(t, os.WriteFile(b, []byte("* TODO Water plants :home:\n:PROPERTIES:\n:ID: plants\n:END:\n"), 0600))

	p := NewParser(nil)
	tasks, err := p.ParseFiles([]string{a, b}, "")
	require.NoError(t, err)
	assert.Len(t, tasks, 4)

	tasks, err = p.ParseFiles([]string{a, b}, "home")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "plants", tasks[1].SourceID)

	_, err = p.ParseFiles([]string{filepath.Join(dir, "missing.org")}, "")
	assert.Error(t, err)
}
