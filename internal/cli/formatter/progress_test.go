package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderProgress(t *testing.T) {
	tests := []struct {
		name    string
		pct     float64
		width   int
		filled  int
		percent string
	}{
		{"empty", 0, 4, 0, "0%"},
		{"half", 0.5, 4, 2, "50%"},
		{"full", 1, 4, 4, "100%"},
		{"over clamps", 1.5, 4, 4, "100%"},
		{"negative clamps", -0.5, 4, 0, "0%"},
		{"tiny width clamps to 2", 0.5, 1, 1, "50%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderProgress(tt.pct, tt.width)
			assert.Equal(t, tt.filled, strings.Count(got, filledBlock))
			assert.Contains(t, got, tt.percent)
		})
	}
}

func TestRenderLoad(t *testing.T) {
	got := RenderLoad(3, 6, 10)
	assert.Equal(t, 5, strings.Count(got, filledBlock))
	assert.Contains(t, got, "50%")

	over := RenderLoad(9, 6, 10)
	assert.Equal(t, 10, strings.Count(over, filledBlock))

	none := RenderLoad(2, 0, 10)
	assert.Equal(t, 0, strings.Count(none, filledBlock))
}
