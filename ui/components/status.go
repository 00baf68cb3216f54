package components

import (
	"github.com/Rorical/Vibella/ui/styles"
)

const attachmentBadge = "📸 image"

// RenderStatus shows the status text, the spinner while sending and a badge
// when an image is pending.
func RenderStatus(status string, sending bool, spinnerView string, hasPendingImage bool, width int) string {
	statusContent := status
	if sending {
		statusContent = spinnerView + " " + status
	}
	if hasPendingImage {
		statusContent += "  " + styles.AttachmentBadgeStyle().Render(attachmentBadge)
	}

	return styles.StatusStyle(width).Render(statusContent)
}
