package components

import (
	"github.com/Rorical/Vibella/ui/styles"
)

// RenderInput frames the textarea view. The frame dims while sending.
func RenderInput(inputView string, sending bool, width int) string {
	if sending {
		return styles.InputDisabledStyle(width).Render(inputView)
	}
	return styles.InputStyle(width).Render(inputView)
}
