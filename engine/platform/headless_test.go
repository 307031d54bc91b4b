package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/hearth/engine/core"
)

type sinkRecorder struct {
	keys    []core.KeyCode
	resized [2]uint16
	closed  bool
	wheel   int8
}

func (s *sinkRecorder) ProcessKey(key core.KeyCode, pressed bool) { s.keys = append(s.keys, key) }
func (s *sinkRecorder) ProcessButton(button core.Button, pressed bool) {}
func (s *sinkRecorder) ProcessMouseMove(x, y int16)                   {}
func (s *sinkRecorder) ProcessMouseWheel(zDelta int8)                 { s.wheel = zDelta }
func (s *sinkRecorder) OnResized(width, height uint16)                { s.resized = [2]uint16{width, height} }
func (s *sinkRecorder) OnClose()                                      { s.closed = true }

func TestHeadlessDeliversQueuedMessages(t *testing.T) {
	h := NewHeadless(4)
	sink := &sinkRecorder{}
	require.NoError(t, h.Startup("test", 0, 0, 640, 480, sink))

	require.NoError(t, h.Post(Message{Kind: MessageKey, Key: core.KEY_A, Pressed: true}))
	require.NoError(t, h.Post(Message{Kind: MessageResize, Width: 320, Height: 200}))
	require.NoError(t, h.Post(Message{Kind: MessageMouseWheel, ZDelta: 1}))
	require.NoError(t, h.Post(Message{Kind: MessageClose}))
	assert.Error(t, h.Post(Message{Kind: MessageClose}))

	assert.True(t, h.PumpMessages())
	assert.Equal(t, []core.KeyCode{core.KEY_A}, sink.keys)
	assert.Equal(t, [2]uint16{320, 200}, sink.resized)
	assert.Equal(t, int8(1), sink.wheel)
	assert.True(t, sink.closed)

	require.NoError(t, h.Shutdown())
	assert.False(t, h.PumpMessages())
}
