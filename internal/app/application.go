package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Rorical/Vibella/internal/backend"
	"github.com/Rorical/Vibella/internal/config"
	"github.com/Rorical/Vibella/internal/core"
	"github.com/Rorical/Vibella/internal/dispatcher"
	"github.com/Rorical/Vibella/internal/eventbus"
)

// Application manages the complete application lifecycle
type Application struct {
	config     *config.Config
	logger     *zap.Logger
	client     *backend.Client
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	service    *core.ChatService
	model      *AppModel
}

func NewApplication(cfg *config.Config, logger *zap.Logger) *Application {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := backend.NewClient(cfg.GetBaseURL(),
		backend.WithTimeout(cfg.GetRequestTimeout()),
		backend.WithLogger(logger),
	)

	eb := eventbus.NewEventBus()
	disp := dispatcher.NewEventDispatcher(eb, logger)
	chatService := core.NewChatService(client, client.BaseURL(), eb, logger)

	return &Application{
		config:     cfg,
		logger:     logger,
		client:     client,
		eventBus:   eb,
		dispatcher: disp,
		service:    chatService,
		model:      NewAppModel(disp),
	}
}

// Start runs the UI until the user quits.
func (app *Application) Start() error {
	app.logger.Info("Starting Vibella",
		zap.String("profile", app.config.ActiveProfile),
		zap.String("base_url", app.client.BaseURL()))

	app.dispatcher.Start()
	app.service.Start()

	p := tea.NewProgram(app.model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (app *Application) Stop() {
	app.service.Stop()
	app.dispatcher.Stop()
	app.eventBus.Close()
	app.client.Close()
	_ = app.logger.Sync()
}
