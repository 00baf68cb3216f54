package app

import (
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/Vibella/internal/dispatcher"
	"github.com/Rorical/Vibella/internal/eventbus"
	"github.com/Rorical/Vibella/internal/models"
	"github.com/Rorical/Vibella/internal/update"
	"github.com/Rorical/Vibella/ui/components"
	"github.com/Rorical/Vibella/ui/styles"
)

type viewMode int

const (
	chatView viewMode = iota
	pickerView
)

const (
	inputLines   = 3
	inputChrome  = 2 // border rows
	inputInset   = 6 // border and padding columns
	statusHeight = 1
	pickerHeader = "Select an image (Enter to choose, Esc to cancel)"
)

// imageExtensions mirrors an image/* accept filter. Type checks happen in the
// core, so non-JPEG/PNG/WebP images stay selectable and raise a notice.
var imageExtensions = []string{
	".jpg", ".jpeg", ".png", ".webp", ".gif", ".bmp", ".tif", ".tiff", ".svg", ".ico", ".heic", ".avif",
}

type AppModel struct {
	appModel   models.AppModel
	dispatcher *dispatcher.EventDispatcher

	textarea   textarea.Model
	viewport   viewport.Model
	spinner    spinner.Model
	filepicker filepicker.Model
	mode       viewMode
	ready      bool
}

func NewAppModel(disp *dispatcher.EventDispatcher) *AppModel {
	ta := textarea.New()
	ta.Placeholder = update.DefaultPlaceholder
	ta.ShowLineNumbers = false
	ta.SetHeight(inputLines)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle()

	return &AppModel{
		appModel: models.AppModel{
			Messages: make([]models.Message, 0), // core sends the banner
			Status:   update.StatusReady,
		},
		dispatcher: disp,
		textarea:   ta,
		viewport:   viewport.New(0, 0),
		spinner:    sp,
		mode:       chatView,
	}
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.dispatcher.ListenForCoreEvents(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case update.CoreEventMsg:
		if rejected, ok := msg.Event.(eventbus.SendRejectedEvent); ok {
			m.restoreInput(rejected.Text)
		}
		if update.HandleCoreEvent(&m.appModel, msg) {
			m.refreshTranscript()
		}
		m.textarea.Placeholder = update.Placeholder(&m.appModel)
		return m, m.dispatcher.ListenForCoreEvents()

	case tea.WindowSizeMsg:
		update.HandleWindowSizeMsg(&m.appModel, msg)
		m.layout()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Directory listings for the picker, cursor blink for the textarea
	var cmd tea.Cmd
	if m.mode == pickerView {
		m.filepicker, cmd = m.filepicker.Update(msg)
	} else {
		m.textarea, cmd = m.textarea.Update(msg)
	}
	return m, cmd
}

func (m *AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	// A notice blocks all other input until dismissed
	if m.appModel.Notice != "" {
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeyEsc {
			update.DismissNotice(&m.appModel)
		}
		return m, nil
	}

	if m.mode == pickerView {
		return m.handlePickerKey(msg)
	}

	switch {
	case msg.Type == tea.KeyCtrlO:
		return m, m.openPicker()
	case msg.Type == tea.KeyEnter && !msg.Alt:
		m.submit()
		return m, nil
	case msg.Type == tea.KeyPgUp, msg.Type == tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *AppModel) submit() {
	eb := m.dispatcher.GetEventBus()
	input := m.textarea.Value()

	if path, ok := update.ParseAttachCommand(input); ok {
		if update.RequestAttach(&m.appModel, path, eb) {
			m.textarea.Reset()
		}
		return
	}

	if update.SubmitInput(&m.appModel, input, eb) {
		m.textarea.Reset()
		m.textarea.Placeholder = update.Placeholder(&m.appModel)
	}
}

// restoreInput puts refused text back unless the user has typed since.
func (m *AppModel) restoreInput(text string) {
	if m.textarea.Value() == "" {
		m.textarea.SetValue(text)
	}
}

func (m *AppModel) openPicker() tea.Cmd {
	fp := filepicker.New()
	fp.AllowedTypes = imageExtensions
	if wd, err := os.Getwd(); err == nil {
		fp.CurrentDirectory = wd
	}
	fp.AutoHeight = false
	fp.Height = m.pickerHeight()
	m.filepicker = fp
	m.mode = pickerView
	return m.filepicker.Init()
}

func (m *AppModel) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	eb := m.dispatcher.GetEventBus()

	if msg.Type == tea.KeyEsc {
		// Cancelling the picker is an empty selection
		m.mode = chatView
		update.RequestAttach(&m.appModel, "", eb)
		return m, nil
	}

	var cmd tea.Cmd
	m.filepicker, cmd = m.filepicker.Update(msg)

	if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
		m.mode = chatView
		update.RequestAttach(&m.appModel, path, eb)
		return m, nil
	}
	if didSelect, path := m.filepicker.DidSelectDisabledFile(msg); didSelect {
		m.appModel.Status = "Not an image: " + path
	}
	return m, cmd
}

func (m *AppModel) layout() {
	width, height := m.appModel.Width, m.appModel.Height

	m.textarea.SetWidth(max(width-inputInset, 10))

	m.viewport.Width = width
	m.viewport.Height = max(height-inputLines-inputChrome-statusHeight, 1)
	m.filepicker.Height = m.pickerHeight()

	m.ready = true
	m.refreshTranscript()
}

func (m *AppModel) pickerHeight() int {
	return max(m.appModel.Height-statusHeight-2, 3)
}

func (m *AppModel) refreshTranscript() {
	m.viewport.SetContent(components.RenderMessages(m.appModel.Messages, m.viewport.Width))
	m.viewport.GotoBottom()
}

func (m *AppModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.appModel.Notice != "" {
		return components.RenderNotice(m.appModel.Notice, m.appModel.Width, m.appModel.Height)
	}

	status := components.RenderStatus(
		m.appModel.Status,
		m.appModel.Sending,
		m.spinner.View(),
		m.appModel.HasPendingImage,
		m.appModel.Width,
	)

	var b strings.Builder
	if m.mode == pickerView {
		b.WriteString(pickerHeader + "\n")
		b.WriteString(m.filepicker.View())
		b.WriteString("\n")
		b.WriteString(status)
		return b.String()
	}

	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(components.RenderInput(m.textarea.View(), m.appModel.Sending, m.appModel.Width))
	b.WriteString("\n")
	b.WriteString(status)
	return b.String()
}
