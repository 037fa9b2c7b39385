package taskwarrior

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTasks_Fields(t *testing.T) {
	input := `{
		"uuid": "f45a05b3-c12e-42e5-9c9c-333333333333",
		"description": "Buy milk",
		"status": "pending",
		"due": "20230101T120000Z",
		"project": "Groceries",
		"tags": ["buy", "food"],
		"annotations": [
			{"entry": "20230101T120500Z", "description": "Don't forget almond milk"}
		]
	}`

	client := NewClient()
	tasks, err := client.ParseTasks(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	task := tasks[0]

	assert.Equal(t, "f45a05b3-c12e-42e5-9c9c-333333333333", task.UUID)
	assert.Equal(t, "Buy milk", task.Description)
	assert.Equal(t, "Groceries", task.Project)
	assert.Len(t, task.Tags, 2)
	require.Len(t, task.Annotations, 1)
	assert.Equal(t, "Don't forget almond milk", task.Annotations[0].Description)

	expectedDue := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NotNil(t, task.Due)
	assert.True(t, task.Due.Time.Equal(expectedDue))
}

func TestParseTasks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"export array", `[{"uuid":"a","description":"one"},{"uuid":"b","description":"two"}]`, []string{"a", "b"}},
		{"hook lines", "{\"uuid\":\"a\"}\n{\"uuid\":\"b\"}\n", []string{"a", "b"}},
		{"leading whitespace", "\n  [{\"uuid\":\"a\"}]", []string{"a"}},
		{"empty", "", nil},
		{"empty array", "[]", nil},
	}

	client := NewClient()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := client.ParseTasks(strings.NewReader(tt.input))
			require.NoError(t, err)
			var got []string
			for _, task := range tasks {
				got = append(got, task.UUID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTasks_Invalid(t *testing.T) {
	_, err := NewClient().ParseTasks(strings.NewReader(`{"uuid": `))
	assert.Error(t, err)

	_, err = NewClient().ParseTasks(strings.NewReader(`{"uuid":"a","due":"tomorrow"}`))
	assert.Error(t, err)
}

func TestCustomTime_Marshal(t *testing.T) {
	b, err := CustomTime{}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `""`, string(b))

	b, err = CustomTime{Time: time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)}.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"20230101T120000Z"`, string(b))
}
