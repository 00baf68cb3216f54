package app

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/Vibella/internal/dispatcher"
	"github.com/Rorical/Vibella/internal/eventbus"
	"github.com/Rorical/Vibella/internal/models"
	"github.com/Rorical/Vibella/internal/update"
)

func newTestModel(t *testing.T) (*AppModel, *eventbus.EventBus) {
	t.Helper()
	eb := eventbus.NewEventBus()
	disp := dispatcher.NewEventDispatcher(eb, nil)
	t.Cleanup(func() {
		disp.Stop()
		eb.Close()
	})

	m := NewAppModel(disp)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, eb
}

func typeText(m *AppModel, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func pressEnter(m *AppModel) {
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func nextUIEvent(t *testing.T, eb *eventbus.EventBus) eventbus.UIEvent {
	t.Helper()
	require.Equal(t, 1, len(eb.UIToCore()), "expected exactly one event for the core")
	return <-eb.UIToCore()
}

func TestView_BeforeWindowSize(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	m := NewAppModel(dispatcher.NewEventDispatcher(eb, nil))

	assert.Equal(t, "Initializing...", m.View())
}

func TestUpdate_WindowSize_Tiny(t *testing.T) {
	m, _ := newTestModel(t)

	assert.NotPanics(t, func() {
		m.Update(tea.WindowSizeMsg{Width: 0, Height: 0})
		_ = m.View()
	})
}

func TestEnter_SendsTypedText(t *testing.T) {
	m, eb := newTestModel(t)

	typeText(m, "Hello")
	pressEnter(m)

	assert.Equal(t, eventbus.SendMessageEvent{Text: "Hello"}, nextUIEvent(t, eb))
	assert.Empty(t, m.textarea.Value())
	assert.True(t, m.appModel.Sending)
}

func TestEnter_EmptyInputDoesNothing(t *testing.T) {
	m, eb := newTestModel(t)

	typeText(m, "   ")
	pressEnter(m)

	assert.Zero(t, len(eb.UIToCore()))
	assert.False(t, m.appModel.Sending)
}

func TestEnter_ImageOnly(t *testing.T) {
	m, eb := newTestModel(t)
	m.Update(update.CoreEventMsg{Event: eventbus.StateUpdateEvent{HasPendingImage: true}})

	pressEnter(m)

	assert.Equal(t, eventbus.SendMessageEvent{Text: ""}, nextUIEvent(t, eb))
	assert.Equal(t, update.DefaultPlaceholder, m.textarea.Placeholder)
}

func TestEnter_IgnoredWhileSending(t *testing.T) {
	m, eb := newTestModel(t)
	m.Update(update.CoreEventMsg{Event: eventbus.StateUpdateEvent{Sending: true}})

	typeText(m, "again")
	pressEnter(m)

	assert.Zero(t, len(eb.UIToCore()))
	assert.Equal(t, "again", m.textarea.Value(), "typing stays possible while sending")
}

func TestAltEnter_InsertsNewline(t *testing.T) {
	m, eb := newTestModel(t)

	typeText(m, "line one")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter, Alt: true})
	typeText(m, "line two")

	assert.Equal(t, "line one\nline two", m.textarea.Value())
	assert.Zero(t, len(eb.UIToCore()))
}

func TestAttachCommand(t *testing.T) {
	m, eb := newTestModel(t)

	typeText(m, "/attach ~/photo.png")
	pressEnter(m)

	assert.Equal(t, eventbus.AttachImageEvent{Path: "~/photo.png"}, nextUIEvent(t, eb))
	assert.Empty(t, m.textarea.Value())
	assert.False(t, m.appModel.Sending)
}

func TestCoreEvent_UpdatesTranscriptAndPlaceholder(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(update.CoreEventMsg{Event: eventbus.StateUpdateEvent{
		Messages: []models.Message{
			{Content: "Hello", Sender: models.User},
			{Content: "Caption: sunny", Sender: models.Bot},
		},
		HasPendingImage: true,
	}})

	assert.NotNil(t, cmd, "listening for core events continues")
	assert.Len(t, m.appModel.Messages, 2)
	assert.Equal(t, update.ImagePlaceholder, m.textarea.Placeholder)

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "You: Hello")
	assert.Contains(t, view, "Vibella: Caption: sunny")
}

func TestNotice_BlocksInputUntilDismissed(t *testing.T) {
	m, eb := newTestModel(t)
	m.Update(update.CoreEventMsg{Event: eventbus.NoticeEvent{Message: "Image size should be less than 5MB"}})

	assert.Contains(t, ansi.Strip(m.View()), "Image size should be less than 5MB")

	typeText(m, "ignored")
	assert.Empty(t, m.textarea.Value())

	pressEnter(m)
	assert.Empty(t, m.appModel.Notice)
	assert.Zero(t, len(eb.UIToCore()), "dismissing must not send")

	m.Update(update.CoreEventMsg{Event: eventbus.NoticeEvent{Message: "again"}})
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.appModel.Notice)
}

func TestFilePicker_OpenAndCancel(t *testing.T) {
	m, eb := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.NotNil(t, cmd)
	assert.Equal(t, pickerView, m.mode)
	assert.Contains(t, m.View(), pickerHeader)

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, chatView, m.mode)
	assert.Equal(t, eventbus.AttachImageEvent{Path: ""}, nextUIEvent(t, eb))
}

func TestCtrlC_Quits(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestRefusedSend_RestoresInput(t *testing.T) {
	m, eb := newTestModel(t)

	typeText(m, "first")
	pressEnter(m)
	require.Equal(t, eventbus.SendMessageEvent{Text: "first"}, nextUIEvent(t, eb))

	// An update taken before the core saw the send clears the flag.
	m.Update(update.CoreEventMsg{Event: eventbus.StateUpdateEvent{Sending: false}})
	typeText(m, "second")
	pressEnter(m)
	require.Equal(t, eventbus.SendMessageEvent{Text: "second"}, nextUIEvent(t, eb))
	require.Empty(t, m.textarea.Value())

	m.Update(update.CoreEventMsg{Event: eventbus.SendRejectedEvent{Text: "second"}})
	assert.Equal(t, "second", m.textarea.Value())
}

func TestRefusedSend_KeepsNewerInput(t *testing.T) {
	m, _ := newTestModel(t)

	typeText(m, "newer")
	m.Update(update.CoreEventMsg{Event: eventbus.SendRejectedEvent{Text: "older"}})

	assert.Equal(t, "newer", m.textarea.Value())
}
