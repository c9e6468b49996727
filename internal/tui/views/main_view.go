package views

import (
	"strings"

	"imgview/internal/tui/common"
)

// RenderMainView lays out the title, the current entry, the overlays and the
// key help from top to bottom.
func RenderMainView(m common.ModelReader) string {
	theme := m.Theme()
	var sb strings.Builder

	sb.WriteString(theme.Title.Render(m.Title()))
	sb.WriteString("\n")
	sb.WriteString(m.Body())
	sb.WriteString("\n")

	if line := m.PageLine(); line != "" {
		sb.WriteString(theme.Page.Render(line) + "\n")
	}
	if line := m.InfoLine(); line != "" {
		sb.WriteString(theme.Info.Render(line) + "\n")
	}
	if line := m.ErrorLine(); line != "" {
		sb.WriteString(theme.Error.Render(line) + "\n")
	}
	if line := m.StatusLine(); line != "" {
		sb.WriteString(line + "\n")
	}
	sb.WriteString(theme.Help.Render(m.HelpView()))

	return theme.App.Render(sb.String())
}
