package components

import (
	"strings"

	"github.com/Rorical/Vibella/internal/models"
	"github.com/Rorical/Vibella/internal/utils"
	"github.com/Rorical/Vibella/ui/styles"
)

const (
	userPrefix = "You: "
	botPrefix  = "Vibella: "
)

// RenderMessages renders the transcript in order. Message text goes through
// utils.FormatMessage; the stored text is never modified.
func RenderMessages(messages []models.Message, width int) string {
	var b strings.Builder

	userStyle := styles.UserStyle(width)
	botStyle := styles.BotStyle(width)
	programStyle := styles.ProgramStyle()

	for _, msg := range messages {
		switch msg.Sender {
		case models.Program:
			b.WriteString(programStyle.Render(msg.Content) + "\n")
		case models.User:
			b.WriteString(userStyle.Render(userPrefix+utils.FormatMessage(msg.Content)) + "\n\n")
		case models.Bot:
			b.WriteString(botStyle.Render(botPrefix+utils.FormatMessage(msg.Content)) + "\n\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
