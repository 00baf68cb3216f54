package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Rorical/Vibella/internal/attachment"
	"github.com/Rorical/Vibella/internal/backend"
	"github.com/Rorical/Vibella/internal/eventbus"
	"github.com/Rorical/Vibella/internal/models"
)

const (
	InvalidTypeNotice    = "Please select a valid image file (JPEG, PNG, or WebP)"
	TooLargeNotice       = "Image size should be less than 5MB"
	EncodingFailedNotice = "Failed to process image. Please try again."
	unreachableFormat    = "⚠️ Could not connect to backend. Please make sure it's running on %s"
)

// Backend is the chat server as seen by the core.
type Backend interface {
	Chat(ctx context.Context, req backend.ChatRequest) (string, error)
	Ping(ctx context.Context) error
}

type ChatService struct {
	client   Backend
	baseURL  string
	state    *ChatState
	eventBus *eventbus.EventBus // nil when running without a UI
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	pushMu        sync.Mutex
	lastSentCount int // Track how many messages we've sent to UI
}

// NewChatService wires the core to a backend. eb and logger may be nil.
func NewChatService(client Backend, baseURL string, eb *eventbus.EventBus, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	service := &ChatService{
		client:   client,
		baseURL:  baseURL,
		state:    NewChatState(),
		eventBus: eb,
		logger:   logger.Named("core"),
		ctx:      ctx,
		cancel:   cancel,
	}
	service.addWelcomeMessages()

	return service
}

// Start pushes the initial state, starts the event loop and runs the
// connectivity check in the background.
func (cs *ChatService) Start() {
	cs.pushStateToUI()

	cs.wg.Add(2)
	go func() {
		defer cs.wg.Done()
		cs.eventLoop()
	}()
	go func() {
		defer cs.wg.Done()
		cs.CheckConnectivity(cs.ctx)
	}()
}

// Stop cancels in-flight work and waits for every goroutine started by the
// service.
func (cs *ChatService) Stop() {
	cs.cancel()
	cs.wg.Wait()
}

func (cs *ChatService) eventLoop() {
	if cs.eventBus == nil {
		<-cs.ctx.Done()
		return
	}
	for {
		select {
		case <-cs.ctx.Done():
			return
		case event, ok := <-cs.eventBus.UIToCore():
			if !ok {
				return
			}
			cs.handleUIEvent(event)
		}
	}
}

func (cs *ChatService) handleUIEvent(event eventbus.UIEvent) {
	switch e := event.(type) {
	case eventbus.SendMessageEvent:
		req, ok := cs.beginSend(e.Text)
		if !ok {
			if strings.TrimSpace(e.Text) != "" {
				cs.rejectSend(e.Text)
			}
			return
		}
		// The request runs outside the loop so attach events keep flowing.
		cs.wg.Add(1)
		go func() {
			defer cs.wg.Done()
			cs.deliver(req)
		}()
	case eventbus.AttachImageEvent:
		_ = cs.SelectImage(e.Path)
	}
}

// SelectImage validates and encodes the file at path and makes it the
// pending image. An empty path clears the pending image. On failure the
// pending image is cleared and a notice is raised.
func (cs *ChatService) SelectImage(path string) error {
	path = cleanPath(path)
	if path == "" {
		cs.state.ClearPendingImage()
		cs.pushStateToUI()
		return nil
	}

	img, err := attachment.Load(path)
	if err != nil {
		cs.state.ClearPendingImage()
		cs.logger.Warn("Image rejected", zap.String("path", path), zap.Error(err))
		cs.pushStateToUI()
		cs.notify(NoticeFor(err))
		return err
	}

	cs.state.SetPendingImage(img)
	cs.logger.Info("Image attached",
		zap.String("name", img.Name),
		zap.String("media_type", img.MediaType),
		zap.Int64("size", img.Size))
	cs.pushStateToUI()
	return nil
}

// Send runs one send to completion. It returns false when nothing was sent
// (empty input without an image, or another send in flight).
func (cs *ChatService) Send(text string) bool {
	req, ok := cs.beginSend(text)
	if !ok {
		return false
	}
	cs.deliver(req)
	return true
}

func (cs *ChatService) beginSend(text string) (backend.ChatRequest, bool) {
	req, ok := cs.state.StartSending(strings.TrimSpace(text))
	if !ok {
		cs.logger.Debug("Send ignored", zap.Bool("sending", cs.state.IsSending()))
		// The UI may have optimistically entered the sending state
		cs.pushStateToUI()
		return req, false
	}
	cs.pushStateToUI()
	return req, true
}

// deliver performs the request and always leaves the sending state.
func (cs *ChatService) deliver(req backend.ChatRequest) {
	defer func() {
		if r := recover(); r != nil {
			cs.logger.Error("Chat request panicked", zap.Any("panic", r))
			cs.state.FinishSendingWithFailure()
			cs.pushStateToUI()
		}
	}()

	reply, err := cs.client.Chat(cs.ctx, req)
	if err != nil {
		fields := []zap.Field{zap.Error(err), zap.Bool("has_image", req.Image != "")}
		var httpErr *backend.HTTPError
		if errors.As(err, &httpErr) {
			fields = append(fields, zap.Int("status", httpErr.StatusCode), zap.String("detail", httpErr.Detail))
		}
		cs.logger.Error("Chat request failed", fields...)
		cs.state.FinishSendingWithFailure()
	} else {
		cs.logger.Info("Got response from backend", zap.Int("reply_len", len(reply)))
		cs.state.FinishSendingWithReply(reply)
	}
	cs.pushStateToUI()
}

// CheckConnectivity pings the backend once. A failure adds one advisory
// transcript entry; it never affects sending.
func (cs *ChatService) CheckConnectivity(ctx context.Context) bool {
	if err := cs.client.Ping(ctx); err != nil {
		if ctx.Err() != nil {
			return false
		}
		cs.logger.Warn("Backend connection failed", zap.String("base_url", cs.baseURL), zap.Error(err))
		cs.state.AddBotMessage(UnreachableMessage(cs.baseURL))
		cs.pushStateToUI()
		return false
	}
	cs.logger.Info("Connected to backend", zap.String("base_url", cs.baseURL))
	return true
}

func UnreachableMessage(baseURL string) string {
	return fmt.Sprintf(unreachableFormat, baseURL)
}

func (cs *ChatService) pushStateToUI() {
	if cs.eventBus == nil {
		return
	}

	cs.pushMu.Lock()
	defer cs.pushMu.Unlock()

	messages, sending, hasImage := cs.state.Snapshot()

	// Only send new messages to reduce resource usage
	newMessages := messages[cs.lastSentCount:]
	if err := cs.eventBus.SendToUI(eventbus.StateUpdateEvent{
		Messages:        newMessages,
		Sending:         sending,
		HasPendingImage: hasImage,
	}); err != nil {
		// Unsent messages go out with the next update
		cs.logger.Warn("Error sending state to UI", zap.Error(err))
		return
	}
	cs.lastSentCount = len(messages)
}

func (cs *ChatService) notify(message string) {
	if cs.eventBus == nil {
		return
	}
	if err := cs.eventBus.SendToUI(eventbus.NoticeEvent{Message: message}); err != nil {
		cs.logger.Warn("Error sending notice to UI", zap.String("notice", message), zap.Error(err))
	}
}

// rejectSend hands refused input back to the UI so it is not lost.
func (cs *ChatService) rejectSend(text string) {
	if err := cs.eventBus.SendToUI(eventbus.SendRejectedEvent{Text: text}); err != nil {
		cs.logger.Warn("Error returning refused input to UI", zap.Error(err))
	}
}

func (cs *ChatService) IsSending() bool {
	return cs.state.IsSending()
}

func (cs *ChatService) HasPendingImage() bool {
	return cs.state.HasPendingImage()
}

// Transcript returns chat entries without the welcome banner.
func (cs *ChatService) Transcript() []models.Message {
	return cs.state.Transcript()
}

func (cs *ChatService) GetMessages() []models.Message {
	return cs.state.GetMessages()
}

func (cs *ChatService) BaseURL() string {
	return cs.baseURL
}

func (cs *ChatService) addWelcomeMessages() {
	cs.state.AddProgramMessage("-- VIBELLA --")
	cs.state.AddProgramMessage("Backend: " + cs.baseURL)
	cs.state.AddProgramMessage("Type your vision and press Enter to send (Alt+Enter for a new line)")
	cs.state.AddProgramMessage("Ctrl+O or /attach <path> to add an image (JPEG, PNG or WebP, max 5MB)")
	cs.state.AddProgramMessage("Controls: Ctrl+C to exit")
	cs.state.AddProgramMessage("")
}

// NoticeFor maps an image selection error to the notice shown to the user.
func NoticeFor(err error) string {
	switch {
	case errors.Is(err, attachment.ErrUnsupportedType):
		return InvalidTypeNotice
	case errors.Is(err, attachment.ErrTooLarge):
		return TooLargeNotice
	default:
		return EncodingFailedNotice
	}
}

// cleanPath strips the quotes terminals add to dropped paths and expands ~.
func cleanPath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, `"'`)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
