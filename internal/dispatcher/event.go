package dispatcher

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Rorical/Vibella/internal/eventbus"
	"github.com/Rorical/Vibella/internal/update"
)

// EventDispatcher handles routing events between core and UI
type EventDispatcher struct {
	eventBus *eventbus.EventBus
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewEventDispatcher(eventBus *eventbus.EventBus, logger *zap.Logger) *EventDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &EventDispatcher{
		eventBus: eventBus,
		logger:   logger.Named("dispatcher"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start hooks bus failures into the log. Call it before the core starts.
func (ed *EventDispatcher) Start() {
	ed.eventBus.SetErrorCallback(func(e eventbus.EventBusError) {
		ed.logger.Warn("Event bus error",
			zap.String("operation", e.Operation),
			zap.Error(e.Err),
			zap.Stringer("circuit", ed.eventBus.GetCircuitBreakerState()))
	})
}

func (ed *EventDispatcher) Stop() {
	ed.cancel()
}

// ListenForCoreEvents waits for the next core event. The command yields nil
// once the dispatcher is stopped or the bus is closed, which ends the chain.
func (ed *EventDispatcher) ListenForCoreEvents() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ed.ctx.Done():
			return nil
		case event, ok := <-ed.eventBus.CoreToUI():
			if !ok {
				return nil
			}
			return update.CoreEventMsg{Event: event}
		}
	}
}

func (ed *EventDispatcher) GetEventBus() *eventbus.EventBus {
	return ed.eventBus
}
