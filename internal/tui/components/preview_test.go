package components

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"imgview/pkg/testutils"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestFit(t *testing.T) {
	tests := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{100, 50, 40, 40, 40, 20},
		{50, 100, 40, 40, 20, 40},
		{10, 10, 40, 20, 20, 20},
		{1000, 1, 10, 10, 10, 1},
		{0, 10, 10, 10, 0, 0},
	}
	for _, tt := range tests {
		w, h := fit(tt.w, tt.h, tt.maxW, tt.maxH)
		assert.Equal(t, tt.wantW, w, "%dx%d in %dx%d", tt.w, tt.h, tt.maxW, tt.maxH)
		assert.Equal(t, tt.wantH, h, "%dx%d in %dx%d", tt.w, tt.h, tt.maxW, tt.maxH)
	}
}

func TestRenderImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	out := testutils.StripANSI(RenderImage(img, 20, 10))
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 5, "20 columns give 10 pixel rows, two per line")
	for _, line := range lines {
		assert.Equal(t, 20, strings.Count(line, halfBlock))
	}

	assert.Empty(t, RenderImage(nil, 10, 10))
	assert.Empty(t, RenderImage(img, 0, 10))
}

func TestRenderText(t *testing.T) {
	out := RenderText("one two three four", 9)
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 9)
	}
	assert.Equal(t, "plain", RenderText("plain", 0))
}

func TestStatusBar(t *testing.T) {
	s := NewStatusBar(lipgloss.NewStyle())
	assert.Empty(t, s.View())

	s.SetText("3 cached")
	assert.Equal(t, "3 cached", s.View())

	s.SetLoading(true)
	assert.True(t, s.Loading())
	assert.Contains(t, s.View(), "3 cached")
	assert.NotNil(t, s.Tick())
}
