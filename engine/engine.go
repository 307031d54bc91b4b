package engine

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/hearth/engine/core"
	"github.com/spaghettifunk/hearth/engine/platform"
	"github.com/spaghettifunk/hearth/engine/renderer"
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
	"github.com/spaghettifunk/hearth/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine has released every subsystem
	EngineStageShutdown
)

const targetFrameSeconds float64 = 1.0 / 60.0

// How long Stop waits for the loop to wind down.
const stopTimeout = 5 * time.Second

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *Config
	isRunning     bool
	isSuspended   bool
	platform      platform.Platform
	systemManager *systems.SystemManager
	width         uint32
	height        uint32
	clock         *core.Clock
	metrics       *core.Metrics
	lastTime      float64

	quitRequested atomic.Bool
	stopped       chan struct{}
}

func New(g *Game, config *Config, p platform.Platform, backend renderer.RendererBackend) (*Engine, error) {
	if g == nil || config == nil || p == nil || backend == nil {
		core.LogFatal("engine requires a game, a configuration, a platform and a renderer backend")
		return nil, core.ErrNotInitialized
	}
	g.ApplicationConfig = &config.Application

	return &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		config:        config,
		platform:      p,
		systemManager: systems.NewSystemManager(config.SystemManagerConfig(), p, backend),
		clock:         core.NewClock(),
		metrics:       core.NewMetrics(),
		width:         config.Application.StartWidth,
		height:        config.Application.StartHeight,
		stopped:       make(chan struct{}),
	}, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		core.LogError("engine Initialize called more than once.")
		return core.ErrAlreadyInitialized
	}
	e.currentStage = EngineStageInitializing

	if err := e.systemManager.Initialize(); err != nil {
		return err
	}

	// register some events
	events := e.systemManager.Events()
	events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	events.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	events.Register(core.EVENT_CODE_KEY_RELEASED, e, e.onKey)
	events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	e.gameInstance.SystemManager = e.systemManager
	if err := e.gameInstance.FnInitialize(); err != nil {
		core.LogFatal("Game failed to initialize.")
		return e.unwind(err)
	}
	if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
		core.LogFatal("Game failed to handle the initial size.")
		return e.unwind(err)
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// unwind shuts the subsystems down again after a failed boot.
func (e *Engine) unwind(cause error) error {
	e.currentStage = EngineStageShuttingDown
	err := e.systemManager.Shutdown()
	e.currentStage = EngineStageShutdown
	return errors.Join(cause, err)
}

// Run drives the frame loop until a quit is requested, then shuts the engine
// down.
func (e *Engine) Run() error {
	defer close(e.stopped)
	if e.currentStage != EngineStageInitialized {
		return core.ErrNotInitialized
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var runErr error
	for e.isRunning {
		if err := e.frame(); err != nil {
			runErr = err
			break
		}
	}

	if err := e.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (e *Engine) frame() error {
	if e.quitRequested.Load() {
		e.isRunning = false
		return nil
	}
	if !e.platform.PumpMessages() {
		e.isRunning = false
	}
	// A quit may have been posted while pumping.
	if !e.isRunning {
		return nil
	}
	e.systemManager.ProcessAssetChanges()
	if e.isSuspended {
		return nil
	}

	e.clock.Update()
	currentTime := e.clock.Elapsed()
	delta := currentTime - e.lastTime
	frameStartTime := e.platform.GetAbsoluteTime()

	if err := e.gameInstance.FnUpdate(delta); err != nil {
		core.LogFatal("Game update failed, shutting down.")
		return err
	}

	packet := &metadata.RenderPacket{
		DeltaTime: delta,
		View:      mgl32.Ident4(),
	}
	if err := e.gameInstance.FnRender(packet, delta); err != nil {
		core.LogFatal("Game render failed, shutting down.")
		return err
	}

	if err := e.systemManager.DrawFrame(packet); err != nil {
		return err
	}

	frameEndTime := e.platform.GetAbsoluteTime()
	frameElapsedTime := frameEndTime - frameStartTime
	e.metrics.Update(frameElapsedTime)

	remainingSeconds := targetFrameSeconds - frameElapsedTime
	if remainingSeconds > 0 && e.config.Application.LimitFrames {
		remainingMS := uint64(remainingSeconds * 1000)
		if remainingMS > 1 {
			e.platform.Sleep(remainingMS - 1)
		}
	}

	// NOTE: Input update/state copying should always be handled
	// after any input should be recorded; I.E. before this line.
	e.systemManager.Input().Update(delta)

	e.lastTime = currentTime
	return nil
}

// Stop asks a running loop to quit and waits for it to shut down. It is safe
// to call from another goroutine.
func (e *Engine) Stop() {
	e.quitRequested.Store(true)
	select {
	case <-e.stopped:
	case <-time.After(stopTimeout):
		core.LogWarn("engine did not stop within %s", stopTimeout)
	}
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShutdown || e.currentStage == EngineStageUninitialized {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	core.LogInfo("Shutting down after %d frames.", e.systemManager.Renderer().FrameNumber())
	err := e.systemManager.Shutdown()
	e.currentStage = EngineStageShutdown
	return err
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT recieved, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
	keyCode := core.KeyCode(data.Data.U16[0])
	if code == core.EVENT_CODE_KEY_PRESSED {
		if keyCode == core.KEY_ESCAPE {
			// NOTE: Technically firing an event to itself, but there may be other listeners.
			e.systemManager.Events().Fire(core.EVENT_CODE_APPLICATION_QUIT, nil, core.EventContext{})
			// Block anything else from processing this.
			return true
		}
		core.LogDebug("'%c' key pressed in window.", rune(keyCode))
	} else if code == core.EVENT_CODE_KEY_RELEASED {
		core.LogDebug("'%c' key released in window.", rune(keyCode))
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
	if code != core.EVENT_CODE_RESIZED {
		return false
	}
	width := uint32(data.Data.U16[0])
	height := uint32(data.Data.U16[1])

	// Check if different. If so, trigger a resize event.
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if err := e.gameInstance.FnOnResize(width, height); err != nil {
		core.LogError(err.Error())
	}
	if err := e.systemManager.OnResize(uint16(width), uint16(height)); err != nil {
		core.LogError(err.Error())
	}
	// Event purposely not handled to allow other listeners to get this.
	return false
}
