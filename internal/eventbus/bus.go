package eventbus

import (
	"errors"
	"sync"
	"time"

	"github.com/Rorical/Vibella/internal/models"
)

var (
	ErrCircuitOpen = errors.New("circuit breaker is open")
	ErrChannelFull = errors.New("channel is full")
	ErrClosed      = errors.New("event bus is closed")
)

// UIEvent represents events sent from UI to Core
type UIEvent interface {
	UIEvent()
}

// CoreEvent represents events sent from Core to UI
type CoreEvent interface {
	CoreEvent()
}

// SendMessageEvent - UI asks core to send the typed text plus any pending image
type SendMessageEvent struct {
	Text string
}

func (e SendMessageEvent) UIEvent() {}

// AttachImageEvent - UI selected a file. An empty Path clears the selection.
type AttachImageEvent struct {
	Path string
}

func (e AttachImageEvent) UIEvent() {}

// StateUpdateEvent - Core pushes state changes to UI.
// Messages carries only entries appended since the previous update.
type StateUpdateEvent struct {
	Messages        []models.Message
	Sending         bool
	HasPendingImage bool
}

func (e StateUpdateEvent) CoreEvent() {}

// NoticeEvent - Core asks UI for a blocking notification
type NoticeEvent struct {
	Message string
}

func (e NoticeEvent) CoreEvent() {}

// SendRejectedEvent - Core refused a send, typically because one is already
// in flight. Text is the input as submitted.
type SendRejectedEvent struct {
	Text string
}

func (e SendRejectedEvent) CoreEvent() {}

// EventBusError represents errors in event processing
type EventBusError struct {
	Operation string
	Err       error
	Timestamp time.Time
}

func (e EventBusError) Error() string {
	return e.Operation + ": " + e.Err.Error()
}

func (e EventBusError) Unwrap() error {
	return e.Err
}

type CircuitBreakerState int

const (
	CircuitClosed CircuitBreakerState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// CircuitBreaker stops bus sends after repeated failures until resetTimeout
// has passed.
type CircuitBreaker struct {
	mu              sync.Mutex
	maxFailures     int
	resetTimeout    time.Duration
	failureCount    int
	lastFailureTime time.Time
	state           CircuitBreakerState
	now             func() time.Time
}

func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        CircuitClosed,
		now:          time.Now,
	}
}

func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CircuitOpen && cb.now().Sub(cb.lastFailureTime) > cb.resetTimeout {
		cb.state = CircuitHalfOpen
	}
	return cb.state == CircuitOpen
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount = 0
	cb.state = CircuitClosed
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failureCount++
	cb.lastFailureTime = cb.now()

	if cb.failureCount >= cb.maxFailures || cb.state == CircuitHalfOpen {
		cb.state = CircuitOpen
	}
}

func (cb *CircuitBreaker) State() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// EventBus handles communication between UI and Core with circuit breaker
type EventBus struct {
	uiToCore       chan UIEvent
	coreToUI       chan CoreEvent
	errorCallback  func(EventBusError)
	circuitBreaker *CircuitBreaker

	mu     sync.RWMutex
	closed bool
}

func NewEventBus() *EventBus {
	return NewEventBusWithCapacity(100)
}

func NewEventBusWithCapacity(capacity int) *EventBus {
	return &EventBus{
		uiToCore:       make(chan UIEvent, capacity),
		coreToUI:       make(chan CoreEvent, capacity),
		circuitBreaker: NewCircuitBreaker(5, 30*time.Second),
	}
}

// SetErrorCallback must be called before the bus is shared.
func (eb *EventBus) SetErrorCallback(callback func(EventBusError)) {
	eb.errorCallback = callback
}

func (eb *EventBus) reportError(operation string, err error) {
	eb.circuitBreaker.RecordFailure()

	if eb.errorCallback != nil {
		eb.errorCallback(EventBusError{
			Operation: operation,
			Err:       err,
			Timestamp: time.Now(),
		})
	}
}

func (eb *EventBus) SendToCore(event UIEvent) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	if eb.closed {
		return ErrClosed
	}
	if eb.circuitBreaker.IsOpen() {
		eb.reportError("SendToCore", ErrCircuitOpen)
		return ErrCircuitOpen
	}

	select {
	case eb.uiToCore <- event:
		eb.circuitBreaker.RecordSuccess()
		return nil
	default:
		eb.reportError("SendToCore", ErrChannelFull)
		return ErrChannelFull
	}
}

func (eb *EventBus) SendToUI(event CoreEvent) error {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	if eb.closed {
		return ErrClosed
	}
	if eb.circuitBreaker.IsOpen() {
		eb.reportError("SendToUI", ErrCircuitOpen)
		return ErrCircuitOpen
	}

	select {
	case eb.coreToUI <- event:
		eb.circuitBreaker.RecordSuccess()
		return nil
	default:
		eb.reportError("SendToUI", ErrChannelFull)
		return ErrChannelFull
	}
}

func (eb *EventBus) UIToCore() <-chan UIEvent {
	return eb.uiToCore
}

func (eb *EventBus) CoreToUI() <-chan CoreEvent {
	return eb.coreToUI
}

func (eb *EventBus) GetCircuitBreakerState() CircuitBreakerState {
	return eb.circuitBreaker.State()
}

// Close closes both channels. Later sends return ErrClosed.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	if eb.closed {
		return
	}
	eb.closed = true
	close(eb.uiToCore)
	close(eb.coreToUI)
}
