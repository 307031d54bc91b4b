package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls   []string
	handled bool
	name    string
}

func (r *recorder) onEvent(code SystemEventCode, sender interface{}, listener interface{}, data EventContext) bool {
	r.calls = append(r.calls, r.name)
	return r.handled
}

func (r *recorder) onOther(code SystemEventCode, sender interface{}, listener interface{}, data EventContext) bool {
	r.calls = append(r.calls, r.name+"-other")
	return false
}

func TestEventBusFirstHandlerWins(t *testing.T) {
	bus := NewEventBus()
	var order []string
	mk := func(name string, handled bool) FnOnEvent {
		return func(code SystemEventCode, sender interface{}, listener interface{}, data EventContext) bool {
			order = append(order, name)
			return handled
		}
	}
	l1, l2, l3 := &recorder{}, &recorder{}, &recorder{}
	require.True(t, bus.Register(EVENT_CODE_DEBUG0, l1, mk("a", false)))
	require.True(t, bus.Register(EVENT_CODE_DEBUG0, l2, mk("b", true)))
	require.True(t, bus.Register(EVENT_CODE_DEBUG0, l3, mk("c", false)))

	assert.True(t, bus.Fire(EVENT_CODE_DEBUG0, nil, EventContext{}))
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestEventBusFireWithoutListeners(t *testing.T) {
	bus := NewEventBus()
	assert.False(t, bus.Fire(EVENT_CODE_DEBUG1, nil, EventContext{}))
}

func TestEventBusDuplicateRegistration(t *testing.T) {
	bus := NewEventBus()
	r := &recorder{name: "r"}

	require.True(t, bus.Register(EVENT_CODE_KEY_PRESSED, r, r.onEvent))
	assert.False(t, bus.Register(EVENT_CODE_KEY_PRESSED, r, r.onEvent))
	assert.Equal(t, 1, bus.ListenerCount(EVENT_CODE_KEY_PRESSED))

	// Same listener, different callback.
	assert.True(t, bus.Register(EVENT_CODE_KEY_PRESSED, r, r.onOther))
	// Same callback, different listener.
	other := &recorder{name: "o"}
	assert.True(t, bus.Register(EVENT_CODE_KEY_PRESSED, other, r.onEvent))
	assert.Equal(t, 3, bus.ListenerCount(EVENT_CODE_KEY_PRESSED))

	bus.Fire(EVENT_CODE_KEY_PRESSED, nil, EventContext{})
	assert.Equal(t, []string{"r", "r-other", "r"}, r.calls)
}

func TestEventBusUnregisterKeepsOrder(t *testing.T) {
	bus := NewEventBus()
	a, b, c := &recorder{name: "a"}, &recorder{name: "b"}, &recorder{name: "c"}
	var order []string
	cb := func(code SystemEventCode, sender interface{}, listener interface{}, data EventContext) bool {
		order = append(order, listener.(*recorder).name)
		return false
	}
	require.True(t, bus.Register(EVENT_CODE_RESIZED, a, cb))
	require.True(t, bus.Register(EVENT_CODE_RESIZED, b, cb))
	require.True(t, bus.Register(EVENT_CODE_RESIZED, c, cb))

	assert.True(t, bus.Unregister(EVENT_CODE_RESIZED, a, cb))
	assert.False(t, bus.Unregister(EVENT_CODE_RESIZED, a, cb))

	bus.Fire(EVENT_CODE_RESIZED, nil, EventContext{})
	assert.Equal(t, []string{"b", "c"}, order)
}

func TestEventBusUnregisterUnknown(t *testing.T) {
	bus := NewEventBus()
	r := &recorder{}
	assert.False(t, bus.Unregister(EVENT_CODE_MOUSE_MOVED, r, r.onEvent))
	assert.False(t, bus.Register(SystemEventCode(MAX_MESSAGE_CODES), r, r.onEvent))
}

func TestEventBusPassesContext(t *testing.T) {
	bus := NewEventBus()
	var got EventContext
	var gotSender interface{}
	sender := &recorder{}
	bus.Register(EVENT_CODE_RESIZED, nil, func(code SystemEventCode, s interface{}, listener interface{}, data EventContext) bool {
		got = data
		gotSender = s
		return true
	})
	ctx := EventContext{}
	ctx.Data.U16[0] = 800
	ctx.Data.U16[1] = 600
	require.True(t, bus.Fire(EVENT_CODE_RESIZED, sender, ctx))
	assert.Equal(t, uint16(800), got.Data.U16[0])
	assert.Equal(t, uint16(600), got.Data.U16[1])
	assert.Same(t, sender, gotSender)
}

func TestEventBusShutdownClearsListeners(t *testing.T) {
	bus := NewEventBus()
	r := &recorder{}
	bus.Register(EVENT_CODE_DEBUG2, r, r.onEvent)
	require.NoError(t, bus.Shutdown())
	assert.Zero(t, bus.ListenerCount(EVENT_CODE_DEBUG2))
	assert.False(t, bus.Fire(EVENT_CODE_DEBUG2, nil, EventContext{}))
}

func TestEventBusUncomparableListeners(t *testing.T) {
	bus := NewEventBus()
	cb := func(code SystemEventCode, sender interface{}, listener interface{}, data EventContext) bool {
		return false
	}
	type holder struct{ tags []string }

	first, second := []int{1}, []int{2}
	require.True(t, bus.Register(EVENT_CODE_DEBUG0, first, cb))
	assert.True(t, bus.Register(EVENT_CODE_DEBUG0, second, cb))
	// The same slice is the same listener.
	assert.False(t, bus.Register(EVENT_CODE_DEBUG0, first, cb))

	settings := map[string]int{"volume": 3}
	require.True(t, bus.Register(EVENT_CODE_DEBUG0, settings, cb))
	assert.False(t, bus.Register(EVENT_CODE_DEBUG0, settings, cb))

	require.True(t, bus.Register(EVENT_CODE_DEBUG0, holder{}, cb))
	assert.Equal(t, 4, bus.ListenerCount(EVENT_CODE_DEBUG0))

	assert.True(t, bus.Unregister(EVENT_CODE_DEBUG0, second, cb))
	assert.True(t, bus.Unregister(EVENT_CODE_DEBUG0, settings, cb))
	// Structs holding slices cannot be matched again.
	assert.False(t, bus.Unregister(EVENT_CODE_DEBUG0, holder{}, cb))
	assert.Equal(t, 2, bus.ListenerCount(EVENT_CODE_DEBUG0))
	assert.NotPanics(t, func() { bus.Fire(EVENT_CODE_DEBUG0, nil, EventContext{}) })
}
