package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/Vibella/ui/styles"
)

// RenderNotice draws a blocking notification centred in the given area.
func RenderNotice(message string, width, height int) string {
	box := styles.NoticeStyle(width).Render(message + "\n\n[ Enter / Esc to dismiss ]")
	if width <= 0 || height <= 0 {
		return box
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
