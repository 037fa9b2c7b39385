package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harrisonrobin/taskhub/pkg/model"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "Buy milk", b: "Buy milk", want: 1.0},
		{name: "case and whitespace insensitive", a: "  BUY Milk ", b: "buy milk", want: 1.0},
		{name: "empty vs non-empty", a: "Buy milk", b: "", want: 0.0},
		{name: "non-empty vs empty", a: "", b: "Buy milk", want: 0.0},
		{name: "both empty", a: "", b: "", want: 1.0},
		{name: "disjoint", a: "abc", b: "xyz", want: 0.0},
		{name: "kitten sitting", a: "kitten", b: "sitting", want: 1.0 - 3.0/7.0},
		{name: "half substituted", a: "abcd", b: "abxy", want: 0.5},
		{name: "multibyte runes", a: "café", b: "cafe", want: 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilarity_Properties(t *testing.T) {
	inputs := []string{"Buy milk", "Call the dentist", "x", "Pick up kids at 3pm", "réunion équipe"}
	for _, s := range inputs {
		assert.Equal(t, 1.0, Similarity(s, s), "reflexive for %q", s)
		assert.Equal(t, 0.0, Similarity(s, ""), "empty never matches %q", s)
		for _, other := range inputs {
			sim := Similarity(s, other)
			assert.GreaterOrEqual(t, sim, 0.0)
			assert.LessOrEqual(t, sim, 1.0)
			assert.InDelta(t, sim, Similarity(other, s), 1e-9, "symmetric for %q/%q", s, other)
		}
	}
}

func TestScorePair(t *testing.T) {
	a := model.Task{Title: "Buy milk"}
	b := model.Task{Title: "Buy milk", Description: "2 liters"}

	score := ScorePair(a, b)
	assert.Equal(t, 1.0, score.Title)
	assert.Equal(t, 0.0, score.Description)
	assert.Equal(t, 0.5, score.Combined())

	score = ScorePair(a, a)
	assert.Equal(t, 1.0, score.Combined())
}

func TestComparable(t *testing.T) {
	tests := []struct {
		a, b model.Source
		want bool
	}{
		{model.SourceManual, model.SourceManual, true},
		{model.SourceCalendar, model.SourceCalendar, true},
		{model.SourceCalendar, model.SourceEmail, true},
		{model.SourceEmail, model.SourceCalendar, true},
		{model.SourceManual, model.SourceAI, false},
		{model.SourceManual, model.SourceCalendar, false},
		{model.SourceTodoist, model.SourceImport, false},
		{model.SourceAI, model.SourceEmail, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.a)+"/"+string(tt.b), func(t *testing.T) {
			got := Comparable(model.Task{Source: tt.a}, model.Task{Source: tt.b})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSameSourceIdentity(t *testing.T) {
	tests := []struct {
		name string
		a, b model.Task
		want bool
	}{
		{
			name: "same source and id",
			a:    model.Task{Source: model.SourceCalendar, SourceID: "evt123"},
			b:    model.Task{Source: model.SourceCalendar, SourceID: "evt123"},
			want: true,
		},
		{
			name: "same id different source",
			a:    model.Task{Source: model.SourceCalendar, SourceID: "evt123"},
			b:    model.Task{Source: model.SourceEmail, SourceID: "evt123"},
			want: false,
		},
		{
			name: "different ids",
			a:    model.Task{Source: model.SourceCalendar, SourceID: "evt123"},
			b:    model.Task{Source: model.SourceCalendar, SourceID: "evt456"},
			want: false,
		},
		{
			name: "both ids missing",
			a:    model.Task{Source: model.SourceManual},
			b:    model.Task{Source: model.SourceManual},
			want: false,
		},
		{
			name: "one id blank",
			a:    model.Task{Source: model.SourceImport, SourceID: "  "},
			b:    model.Task{Source: model.SourceImport, SourceID: "  "},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameSourceIdentity(tt.a, tt.b))
		})
	}
}

func TestIdentityKey(t *testing.T) {
	assert.Equal(t, "calendar/evt123", IdentityKey(model.SourceCalendar, "evt123"))
	assert.Equal(t, "", IdentityKey(model.SourceCalendar, ""))
	assert.Equal(t, "", IdentityKey(model.SourceManual, "   "))
}
