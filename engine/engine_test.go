package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/hearth/engine/core"
	"github.com/spaghettifunk/hearth/engine/platform"
	"github.com/spaghettifunk/hearth/engine/renderer/headless"
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
	"github.com/spaghettifunk/hearth/engine/systems"
)

type recordingGame struct {
	*Game
	updates int
	renders int
	resizes [][2]uint32
	// onUpdate runs inside the loop after the frame counter is bumped.
	onUpdate func(frame int)
}

func newRecordingGame() *recordingGame {
	rg := &recordingGame{Game: &Game{}}
	rg.FnInitialize = func() error { return nil }
	rg.FnUpdate = func(deltaTime float64) error {
		rg.updates++
		if rg.onUpdate != nil {
			rg.onUpdate(rg.updates)
		}
		return nil
	}
	rg.FnRender = func(packet *metadata.RenderPacket, deltaTime float64) error {
		rg.renders++
		return nil
	}
	rg.FnOnResize = func(width, height uint32) error {
		rg.resizes = append(rg.resizes, [2]uint32{width, height})
		return nil
	}
	return rg
}

func testEngineConfig(t *testing.T) *Config {
	cfg := DefaultConfig()
	cfg.Application.StartWidth = 320
	cfg.Application.StartHeight = 200
	cfg.Logging.File = ""
	cfg.Assets.BasePath = t.TempDir()
	cfg.Systems.MaxTextureCount = 4
	cfg.Systems.MaxMaterialCount = 4
	cfg.Systems.MaxGeometryCount = 4
	cfg.Renderer.Backend = RendererBackendHeadless
	return cfg
}

func newTestEngine(t *testing.T) (*Engine, *recordingGame, *platform.Headless, *headless.Backend) {
	t.Helper()
	rg := newRecordingGame()
	p := platform.NewHeadless(32)
	b := headless.New()
	e, err := New(rg.Game, testEngineConfig(t), p, b)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	return e, rg, p, b
}

func TestEngineRunStopsOnClose(t *testing.T) {
	e, rg, p, b := newTestEngine(t)
	assert.Equal(t, EngineStageInitialized, e.Stage())
	assert.Equal(t, [][2]uint32{{320, 200}}, rg.resizes)

	rg.onUpdate = func(frame int) {
		if frame == 3 {
			require.NoError(t, p.Post(platform.Message{Kind: platform.MessageClose}))
		}
	}
	require.NoError(t, e.Run())

	assert.Equal(t, 3, rg.updates)
	assert.Equal(t, 3, rg.renders)
	assert.Equal(t, uint64(3), b.Frames)
	assert.Equal(t, EngineStageShutdown, e.Stage())
	fps, frameTime := e.Metrics().Frame()
	assert.GreaterOrEqual(t, fps, 0.0)
	assert.GreaterOrEqual(t, frameTime, 0.0)
}

func TestEngineEscapeQuits(t *testing.T) {
	e, rg, p, _ := newTestEngine(t)
	rg.onUpdate = func(frame int) {
		if frame == 1 {
			require.NoError(t, p.Post(platform.Message{Kind: platform.MessageKey, Key: core.KEY_ESCAPE, Pressed: true}))
		}
	}
	require.NoError(t, e.Run())
	assert.Equal(t, 1, rg.updates)
}

func TestEngineStopFromAnotherGoroutine(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	done := make(chan error, 1)
	go func() { done <- e.Run() }()

	e.Stop()
	require.NoError(t, <-done)
	assert.Equal(t, EngineStageShutdown, e.Stage())
}

func TestEngineResizeSuspends(t *testing.T) {
	e, rg, _, b := newTestEngine(t)
	defer func() { require.NoError(t, e.Shutdown()) }()

	var ctx core.EventContext
	ctx.Data.U16[0] = 0
	ctx.Data.U16[1] = 0
	e.systemManager.Events().Fire(core.EVENT_CODE_RESIZED, nil, ctx)
	assert.True(t, e.isSuspended)

	ctx.Data.U16[0] = 800
	ctx.Data.U16[1] = 600
	e.systemManager.Events().Fire(core.EVENT_CODE_RESIZED, nil, ctx)
	assert.False(t, e.isSuspended)
	w, h := e.GetFramebufferSize()
	assert.Equal(t, uint32(800), w)
	assert.Equal(t, uint32(600), h)
	assert.Equal(t, [2]uint32{800, 600}, rg.resizes[len(rg.resizes)-1])
	assert.Equal(t, uint32(800), b.Width)
	assert.Equal(t, uint32(600), b.Height)
}

func TestEngineRejectsSecondInitialize(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	defer func() { require.NoError(t, e.Shutdown()) }()
	assert.ErrorIs(t, e.Initialize(), core.ErrAlreadyInitialized)
}

func TestEngineUnwindsWhenGameFailsToInitialize(t *testing.T) {
	errGame := errors.New("game refused to start")
	for name, broken := range map[string]func(rg *recordingGame){
		"initialize": func(rg *recordingGame) { rg.FnInitialize = func() error { return errGame } },
		"resize":     func(rg *recordingGame) { rg.FnOnResize = func(w, h uint32) error { return errGame } },
	} {
		t.Run(name, func(t *testing.T) {
			rg := newRecordingGame()
			broken(rg)
			p := platform.NewHeadless(4)
			b := headless.New()
			e, err := New(rg.Game, testEngineConfig(t), p, b)
			require.NoError(t, err)

			assert.ErrorIs(t, e.Initialize(), errGame)
			assert.Equal(t, EngineStageShutdown, e.Stage())
			assert.Equal(t, core.SubsystemStageShutdown, e.systemManager.Stage(systems.SubsystemGeometry))
			assert.Equal(t, core.SubsystemStageShutdown, e.systemManager.Stage(systems.SubsystemLogging))
			assert.Equal(t, 0, b.LiveTextures())
			assert.Equal(t, 0, b.LiveGeometries())
			// The platform was shut down, so pumping reports it can no longer run.
			assert.False(t, p.PumpMessages())
			assert.NoError(t, e.Shutdown())
		})
	}
}

func TestNewRequiresEverything(t *testing.T) {
	_, err := New(nil, DefaultConfig(), platform.NewHeadless(1), headless.New())
	assert.ErrorIs(t, err, core.ErrNotInitialized)
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "engine.toml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "engine.toml")
		body := `
[application]
name = "sandbox"
start_width = 800
limit_frames = true

[assets]
base_path = "data"
watch = true

[systems]
max_texture_count = 32

[renderer]
backend = "headless"
`
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "sandbox", cfg.Application.Name)
		assert.Equal(t, uint32(800), cfg.Application.StartWidth)
		assert.Equal(t, uint32(720), cfg.Application.StartHeight)
		assert.True(t, cfg.Application.LimitFrames)
		assert.Equal(t, "data", cfg.Assets.BasePath)
		assert.True(t, cfg.Assets.Watch)
		assert.Equal(t, uint32(32), cfg.Systems.MaxTextureCount)
		assert.Equal(t, uint32(1024), cfg.Systems.MaxMaterialCount)

		smc := cfg.SystemManagerConfig()
		assert.Equal(t, "sandbox", smc.ApplicationName)
		assert.Equal(t, "data", smc.Assets.BasePath)
		assert.True(t, smc.WatchAssets)
		assert.Equal(t, uint32(32), smc.Textures.MaxTextureCount)
	})

	t.Run("unknown backend", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "engine.toml")
		require.NoError(t, os.WriteFile(path, []byte("[renderer]\nbackend = \"vulkan\"\n"), 0o644))
		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "unknown renderer backend")
	})

	t.Run("malformed toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "engine.toml")
		require.NoError(t, os.WriteFile(path, []byte("[application\n"), 0o644))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}
