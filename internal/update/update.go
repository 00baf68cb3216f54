package update

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/Vibella/internal/eventbus"
	"github.com/Rorical/Vibella/internal/models"
)

const (
	StatusReady   = "Ready"
	StatusSending = "Sending"

	DefaultPlaceholder = "Type your vision here..."
	ImagePlaceholder   = "📸 Image selected! Add a message or just send..."

	attachCommand = "/attach"
)

// CoreEventMsg wraps core events for Bubble Tea
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// HandleCoreEvent applies a core event to the UI state. It reports whether
// the transcript grew.
func HandleCoreEvent(appModel *models.AppModel, coreEventMsg CoreEventMsg) bool {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.StateUpdateEvent:
		appModel.Messages = append(appModel.Messages, event.Messages...)
		appModel.Sending = event.Sending
		appModel.HasPendingImage = event.HasPendingImage
		if event.Sending {
			appModel.Status = StatusSending
		} else {
			appModel.Status = StatusReady
		}
		return len(event.Messages) > 0
	case eventbus.NoticeEvent:
		appModel.Notice = event.Message
	}
	return false
}

// CanSubmit reports whether Enter should send the given input.
func CanSubmit(appModel *models.AppModel, input string) bool {
	if appModel.Sending || appModel.Notice != "" {
		return false
	}
	return strings.TrimSpace(input) != "" || appModel.HasPendingImage
}

// SubmitInput asks the core to send input plus any pending image. The UI
// enters the sending state right away; the core confirms or corrects it with
// its next state update.
func SubmitInput(appModel *models.AppModel, input string, eb *eventbus.EventBus) bool {
	if !CanSubmit(appModel, input) {
		return false
	}
	if err := eb.SendToCore(eventbus.SendMessageEvent{Text: input}); err != nil {
		appModel.Status = "Error sending message: " + err.Error()
		return false
	}
	appModel.Sending = true
	appModel.HasPendingImage = false
	appModel.Status = StatusSending
	return true
}

// ParseAttachCommand recognises "/attach <path>". A bare "/attach" yields an
// empty path, which clears the pending image.
func ParseAttachCommand(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == attachCommand {
		return "", true
	}
	if !strings.HasPrefix(trimmed, attachCommand+" ") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, attachCommand)), true
}

// RequestAttach asks the core to load path as the pending image.
func RequestAttach(appModel *models.AppModel, path string, eb *eventbus.EventBus) bool {
	if appModel.Notice != "" {
		return false
	}
	if err := eb.SendToCore(eventbus.AttachImageEvent{Path: path}); err != nil {
		appModel.Status = "Error attaching image: " + err.Error()
		return false
	}
	return true
}

func DismissNotice(appModel *models.AppModel) {
	appModel.Notice = ""
}

// Placeholder is the input hint for the current attachment state.
func Placeholder(appModel *models.AppModel) string {
	if appModel.HasPendingImage {
		return ImagePlaceholder
	}
	return DefaultPlaceholder
}

func HandleWindowSizeMsg(appModel *models.AppModel, sizeMsg tea.WindowSizeMsg) {
	appModel.Width = sizeMsg.Width
	appModel.Height = sizeMsg.Height
}
