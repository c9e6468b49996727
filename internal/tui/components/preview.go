package components

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
)

const halfBlock = "▀"

// RenderImage draws img in at most cols x rows terminal cells. Each cell
// carries two pixel rows: the foreground colours the upper one and the
// background the lower one. The aspect ratio is kept.
func RenderImage(img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	w, h := fit(img.Bounds().Dx(), img.Bounds().Dy(), cols, rows*2)
	if w == 0 || h == 0 {
		return ""
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	var sb strings.Builder
	for y := 0; y < h; y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < w; x++ {
			top := dst.RGBAAt(x, y)
			bottom := color.RGBA{A: 255}
			if y+1 < h {
				bottom = dst.RGBAAt(x, y+1)
			}
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(hex(top))).
				Background(lipgloss.Color(hex(bottom))).
				Render(halfBlock))
		}
	}
	return sb.String()
}

// fit scales w x h down (or up) to the largest size inside maxW x maxH.
func fit(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if w*maxH > h*maxW {
		return maxW, max(1, h*maxW/w)
	}
	return max(1, w*maxH/h), maxH
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RenderText wraps text to cols columns.
func RenderText(text string, cols int) string {
	if cols <= 0 {
		return text
	}
	return lipgloss.NewStyle().Width(cols).Render(text)
}
