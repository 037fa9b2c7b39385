package colors

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/harrisonrobin/taskhub/pkg/model"
)

func TestPlainOutputWhenColorDisabled(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	assert.Equal(t, "calendar", Source(model.SourceCalendar))
	assert.Equal(t, "fax", Source(model.Source("fax")))
	assert.Equal(t, "88%", Confidence(88))
	assert.Equal(t, "33%", Rate(33))
}

func TestEverySourceHasColor(t *testing.T) {
	for _, src := range model.Sources {
		_, ok := sourceAttrs[src]
		assert.True(t, ok, "source %s", src)
	}
}

func TestConfidenceColor(t *testing.T) {
	tests := []struct {
		pct  int
		want *color.Color
	}{
		{100, color.New(color.FgGreen, color.Bold)},
		{90, color.New(color.FgGreen, color.Bold)},
		{88, color.New(color.FgYellow)},
		{75, color.New(color.FgYellow)},
		{50, color.New(color.FgRed)},
	}
	for _, tt := range tests {
		assert.True(t, tt.want.Equals(ConfidenceColor(tt.pct)), "pct %d", tt.pct)
	}
}
