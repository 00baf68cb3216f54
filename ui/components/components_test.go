package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/Rorical/Vibella/internal/models"
)

func TestRenderMessages_OrderAndPrefixes(t *testing.T) {
	messages := []models.Message{
		{Content: "-- VIBELLA --", Sender: models.Program},
		{Content: "Hello", Sender: models.User},
		{Content: "Hi there", Sender: models.Bot},
	}

	out := ansi.Strip(RenderMessages(messages, 80))

	banner := strings.Index(out, "-- VIBELLA --")
	userIdx := strings.Index(out, "You: Hello")
	botIdx := strings.Index(out, "Vibella: Hi there")
	assert.True(t, banner >= 0 && userIdx > banner && botIdx > userIdx, "got %q", out)
}

func TestRenderMessages_KeepsLineBreaks(t *testing.T) {
	messages := []models.Message{{Content: "Caption: a\nMood: b", Sender: models.Bot}}

	out := ansi.Strip(RenderMessages(messages, 80))
	assert.Contains(t, out, "Caption: a")
	assert.Contains(t, out, "Mood: b")
	assert.GreaterOrEqual(t, strings.Count(out, "\n"), 1)
}

func TestRenderMessages_DoesNotMutateInput(t *testing.T) {
	messages := []models.Message{{Content: "Caption: x", Sender: models.Bot}}
	_ = RenderMessages(messages, 80)
	assert.Equal(t, "Caption: x", messages[0].Content)
}

func TestRenderStatus(t *testing.T) {
	idle := ansi.Strip(RenderStatus("Ready", false, "*", false, 40))
	assert.Contains(t, idle, "Ready")
	assert.NotContains(t, idle, "*")

	busy := ansi.Strip(RenderStatus("Sending", true, "*", true, 40))
	assert.Contains(t, busy, "* Sending")
	assert.Contains(t, busy, attachmentBadge)
}

func TestRenderNotice(t *testing.T) {
	out := ansi.Strip(RenderNotice("Image size should be less than 5MB", 80, 20))
	assert.Contains(t, out, "Image size should be less than 5MB")
	assert.Contains(t, out, "Esc to dismiss")
}
