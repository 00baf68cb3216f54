package core

import (
	"sync"

	"github.com/Rorical/Vibella/internal/attachment"
	"github.com/Rorical/Vibella/internal/backend"
	"github.com/Rorical/Vibella/internal/models"
)

const (
	// DefaultInstruction replaces an empty message when only an image is sent.
	DefaultInstruction  = "Generate caption, hashtags, and song suggestions for this image"
	ImageAttachedMarker = "🖼️ Image attached"
	SendFailureMessage  = "⚠️ Surge detected! Connection issue. Make sure the backend is running and try again."
)

// ChatState holds the transcript, the pending image and the sending flag.
type ChatState struct {
	mu              sync.RWMutex
	transcript      []models.Message // append-only
	programMessages []models.Message // banner lines shown above the transcript
	pendingImage    *attachment.Image
	sending         bool
}

func NewChatState() *ChatState {
	return &ChatState{
		transcript:      make([]models.Message, 0),
		programMessages: make([]models.Message, 0),
	}
}

// GetMessages returns program messages followed by the transcript.
func (cs *ChatState) GetMessages() []models.Message {
	messages, _, _ := cs.Snapshot()
	return messages
}

// Snapshot reads messages, sending flag and pending state under one lock.
func (cs *ChatState) Snapshot() ([]models.Message, bool, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	messages := make([]models.Message, 0, len(cs.programMessages)+len(cs.transcript))
	messages = append(messages, cs.programMessages...)
	messages = append(messages, cs.transcript...)
	return messages, cs.sending, cs.pendingImage != nil
}

// Transcript returns a copy of the chat entries only.
func (cs *ChatState) Transcript() []models.Message {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	result := make([]models.Message, len(cs.transcript))
	copy(result, cs.transcript)
	return result
}

// AddProgramMessage adds a program message (system notifications)
func (cs *ChatState) AddProgramMessage(content string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.programMessages = append(cs.programMessages, models.Message{
		Content: content,
		Sender:  models.Program,
	})
}

func (cs *ChatState) AddBotMessage(content string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.transcript = append(cs.transcript, models.Message{Content: content, Sender: models.Bot})
}

func (cs *ChatState) IsSending() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.sending
}

func (cs *ChatState) PendingImage() *attachment.Image {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.pendingImage
}

func (cs *ChatState) HasPendingImage() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.pendingImage != nil
}

func (cs *ChatState) SetPendingImage(img *attachment.Image) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.pendingImage = img
}

func (cs *ChatState) ClearPendingImage() {
	cs.SetPendingImage(nil)
}

// StartSending captures text and the pending image into a request.
// text must already be trimmed. It returns false, changing nothing, when a
// send is in flight or there is nothing to send. Otherwise, atomically: the
// user entries are appended, the pending image is cleared and the sending
// flag is set.
func (cs *ChatState) StartSending(text string) (backend.ChatRequest, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.sending {
		return backend.ChatRequest{}, false
	}
	if text == "" && cs.pendingImage == nil {
		return backend.ChatRequest{}, false
	}

	req := backend.ChatRequest{Message: text}
	if text == "" {
		req.Message = DefaultInstruction
	}

	if text != "" {
		cs.transcript = append(cs.transcript, models.Message{Content: text, Sender: models.User})
	}
	if cs.pendingImage != nil {
		cs.transcript = append(cs.transcript, models.Message{Content: ImageAttachedMarker, Sender: models.User})
		req.Image = cs.pendingImage.DataURI
		cs.pendingImage = nil
	}

	cs.sending = true
	return req, true
}

// FinishSendingWithReply appends the bot reply and leaves the sending state.
func (cs *ChatState) FinishSendingWithReply(reply string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.transcript = append(cs.transcript, models.Message{Content: reply, Sender: models.Bot})
	cs.sending = false
}

// FinishSendingWithFailure appends the fixed failure entry and leaves the
// sending state.
func (cs *ChatState) FinishSendingWithFailure() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.transcript = append(cs.transcript, models.Message{Content: SendFailureMessage, Sender: models.Bot})
	cs.sending = false
}
