package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInput(t *testing.T) (*InputSystem, *EventBus) {
	t.Helper()
	bus := NewEventBus()
	block := make([]byte, InputSystemRequirement())
	is, err := NewInputSystem(block, bus)
	require.NoError(t, err)
	return is, bus
}

func TestInputRejectsShortBlock(t *testing.T) {
	_, err := NewInputSystem(make([]byte, 4), NewEventBus())
	assert.ErrorIs(t, err, ErrInvalidBlock)
}

func TestInputKeyStateAndEvents(t *testing.T) {
	is, bus := newTestInput(t)

	var pressed []uint16
	var released int
	bus.Register(EVENT_CODE_KEY_PRESSED, nil, func(code SystemEventCode, sender interface{}, listener interface{}, data EventContext) bool {
		pressed = append(pressed, data.Data.U16[0])
		return true
	})
	bus.Register(EVENT_CODE_KEY_RELEASED, nil, func(code SystemEventCode, sender interface{}, listener interface{}, data EventContext) bool {
		released++
		return true
	})

	is.ProcessKey(KEY_W, true)
	// No state change, no event.
	is.ProcessKey(KEY_W, true)
	assert.Equal(t, []uint16{uint16(KEY_W)}, pressed)
	assert.True(t, is.IsKeyDown(KEY_W))
	assert.False(t, is.WasKeyDown(KEY_W))

	is.Update(0.016)
	assert.True(t, is.WasKeyDown(KEY_W))

	is.ProcessKey(KEY_W, false)
	assert.Equal(t, 1, released)
	assert.True(t, is.IsKeyUp(KEY_W))
	assert.True(t, is.WasKeyDown(KEY_W))
}

func TestInputMouse(t *testing.T) {
	is, bus := newTestInput(t)

	moves := 0
	var wheel int8
	bus.Register(EVENT_CODE_MOUSE_MOVED, nil, func(code SystemEventCode, sender interface{}, listener interface{}, data EventContext) bool {
		moves++
		assert.Equal(t, int16(10), data.Data.I16[0])
		assert.Equal(t, int16(-4), data.Data.I16[1])
		return true
	})
	bus.Register(EVENT_CODE_MOUSE_WHEEL, nil, func(code SystemEventCode, sender interface{}, listener interface{}, data EventContext) bool {
		wheel = data.Data.I8[0]
		return true
	})

	is.ProcessMouseMove(10, -4)
	is.ProcessMouseMove(10, -4)
	assert.Equal(t, 1, moves)
	x, y := is.GetMousePosition()
	assert.Equal(t, int32(10), x)
	assert.Equal(t, int32(-4), y)

	is.ProcessMouseWheel(-1)
	assert.Equal(t, int8(-1), wheel)

	is.ProcessButton(BUTTON_LEFT, true)
	assert.True(t, is.IsButtonDown(BUTTON_LEFT))
	assert.True(t, is.WasButtonUp(BUTTON_LEFT))
	is.Update(0)
	assert.True(t, is.WasButtonDown(BUTTON_LEFT))
	px, py := is.GetPreviousMousePosition()
	assert.Equal(t, int32(10), px)
	assert.Equal(t, int32(-4), py)
}

func TestInputUninitializedReportsUp(t *testing.T) {
	var is *InputSystem
	assert.True(t, is.IsKeyUp(KEY_A))
	assert.False(t, is.IsKeyDown(KEY_A))
	assert.True(t, is.IsButtonUp(BUTTON_RIGHT))
	is.ProcessKey(KEY_A, true)

	live, _ := newTestInput(t)
	require.NoError(t, live.Shutdown())
	assert.True(t, live.IsKeyUp(KEY_A))
}
