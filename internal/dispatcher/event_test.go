package dispatcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Rorical/Vibella/internal/eventbus"
	"github.com/Rorical/Vibella/internal/update"
)

func TestListenForCoreEvents_WrapsEvent(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	ed := NewEventDispatcher(eb, nil)
	defer ed.Stop()

	require.NoError(t, eb.SendToUI(eventbus.NoticeEvent{Message: "hi"}))

	msg := ed.ListenForCoreEvents()()
	assert.Equal(t, update.CoreEventMsg{Event: eventbus.NoticeEvent{Message: "hi"}}, msg)
}

func TestListenForCoreEvents_NilAfterStop(t *testing.T) {
	eb := eventbus.NewEventBus()
	defer eb.Close()
	ed := NewEventDispatcher(eb, nil)
	ed.Stop()

	assert.Nil(t, ed.ListenForCoreEvents()())
}

func TestListenForCoreEvents_NilAfterBusClosed(t *testing.T) {
	eb := eventbus.NewEventBus()
	ed := NewEventDispatcher(eb, nil)
	defer ed.Stop()
	eb.Close()

	assert.Nil(t, ed.ListenForCoreEvents()())
}

func TestStart_LogsBusErrors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	eb := eventbus.NewEventBusWithCapacity(0)
	defer eb.Close()
	ed := NewEventDispatcher(eb, zap.New(core))
	ed.Start()
	defer ed.Stop()

	assert.Error(t, eb.SendToUI(eventbus.NoticeEvent{}))

	entries := logs.FilterMessage("Event bus error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "SendToUI", entries[0].ContextMap()["operation"])
	assert.Equal(t, "dispatcher", entries[0].LoggerName)
}
