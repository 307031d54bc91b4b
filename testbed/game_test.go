package testbed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/hearth/engine"
	"github.com/spaghettifunk/hearth/engine/core"
	"github.com/spaghettifunk/hearth/engine/platform"
	"github.com/spaghettifunk/hearth/engine/renderer/headless"
)

func TestTestGameDrawsScene(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.Logging.File = ""
	cfg.Assets.BasePath = t.TempDir()
	cfg.Renderer.Backend = engine.RendererBackendHeadless

	tg := NewTestGame()
	p := platform.NewHeadless(16)
	b := headless.New()
	e, err := engine.New(tg.Game, cfg, p, b)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())

	state := tg.State.(*gameState)
	require.NotNil(t, state.plane)
	require.NotNil(t, state.cube)
	// test_material is missing on disk so both fall back to the default material.
	assert.Equal(t, tg.SystemManager.Materials().GetDefault().Name(), tg.SystemManager.Materials().Lookup(state.cube.Material).Name())

	frames := 0
	update := tg.FnUpdate
	tg.FnUpdate = func(deltaTime float64) error {
		frames++
		if frames == 2 {
			require.NoError(t, p.Post(platform.Message{Kind: platform.MessageKey, Key: core.KEY_W, Pressed: true}))
		}
		if frames == 4 {
			require.NoError(t, p.Post(platform.Message{Kind: platform.MessageClose}))
		}
		return update(deltaTime)
	}
	require.NoError(t, e.Run())

	assert.Equal(t, uint64(4), b.Frames)
	assert.Len(t, b.Draws, 2)
	assert.Less(t, state.WorldCamera.GetPosition().Z(), float32(25))
	assert.Equal(t, 0, b.LiveGeometries())
}
