package systems

import (
	"errors"

	"github.com/spaghettifunk/hearth/engine/assets"
	"github.com/spaghettifunk/hearth/engine/core"
	"github.com/spaghettifunk/hearth/engine/memory"
	"github.com/spaghettifunk/hearth/engine/platform"
	"github.com/spaghettifunk/hearth/engine/renderer"
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
)

// Names of the subsystems, in boot order.
const (
	SubsystemMemory    = "memory"
	SubsystemLogging   = "logging"
	SubsystemEvents    = "events"
	SubsystemInput     = "input"
	SubsystemPlatform  = "platform"
	SubsystemResources = "resources"
	SubsystemRenderer  = "renderer"
	SubsystemTextures  = "textures"
	SubsystemMaterials = "materials"
	SubsystemGeometry  = "geometry"
)

type SystemManagerConfig struct {
	ApplicationName string
	StartPosX       uint32
	StartPosY       uint32
	StartWidth      uint32
	StartHeight     uint32

	Logging     core.LoggingConfig
	Assets      assets.AssetManagerConfig
	WatchAssets bool
	Textures    TextureSystemConfig
	Materials   MaterialSystemConfig
	Geometry    GeometrySystemConfig
}

type subsystem struct {
	name        string
	requirement func() uint64
	place       func(block []byte) error
	shutdown    func() error

	size  uint64
	stage core.SubsystemStage
}

// SystemManager boots every engine subsystem out of one arena. Each
// subsystem is asked for its size first, then handed exactly that many bytes.
type SystemManager struct {
	config   SystemManagerConfig
	platform platform.Platform
	backend  renderer.RendererBackend

	arena       *memory.LinearAllocator
	subsystems  []*subsystem
	initialized bool

	memorySystem  *memory.MemorySystem
	loggingSystem *core.LoggingSystem
	eventBus      *core.EventBus
	inputSystem   *core.InputSystem
	assetManager  *assets.AssetManager
	renderer      *renderer.Renderer
	textureSystem *TextureSystem
	materials     *MaterialSystem
	geometry      *GeometrySystem
}

func NewSystemManager(config SystemManagerConfig, p platform.Platform, backend renderer.RendererBackend) *SystemManager {
	sm := &SystemManager{
		config:   config,
		platform: p,
		backend:  backend,
	}
	sm.subsystems = sm.bootOrder()
	return sm
}

func (sm *SystemManager) bootOrder() []*subsystem {
	cfg := sm.config
	return []*subsystem{
		{
			name:        SubsystemMemory,
			requirement: memory.MemorySystemRequirement,
			place: func(block []byte) (err error) {
				sm.memorySystem, err = memory.NewMemorySystem(block)
				if err == nil {
					sm.memorySystem.Track(sm.arena.TotalSize(), memory.MemoryTagLinearAllocator)
				}
				return err
			},
			shutdown: func() error { return sm.memorySystem.Shutdown() },
		},
		{
			name:        SubsystemLogging,
			requirement: func() uint64 { return core.LoggingSystemRequirement(cfg.Logging) },
			place: func(block []byte) (err error) {
				sm.loggingSystem, err = core.NewLoggingSystem(cfg.Logging, block)
				return err
			},
			shutdown: func() error { return sm.loggingSystem.Shutdown() },
		},
		{
			name:        SubsystemEvents,
			requirement: core.EventBusRequirement,
			place: func(block []byte) error {
				sm.eventBus = core.NewEventBus()
				return nil
			},
			shutdown: func() error { return sm.eventBus.Shutdown() },
		},
		{
			name:        SubsystemInput,
			requirement: core.InputSystemRequirement,
			place: func(block []byte) (err error) {
				sm.inputSystem, err = core.NewInputSystem(block, sm.eventBus)
				return err
			},
			shutdown: func() error { return sm.inputSystem.Shutdown() },
		},
		{
			name:        SubsystemPlatform,
			requirement: platform.PlatformRequirement,
			place: func(block []byte) error {
				sink := &platformSink{InputSystem: sm.inputSystem, events: sm.eventBus}
				return sm.platform.Startup(cfg.ApplicationName, cfg.StartPosX, cfg.StartPosY, cfg.StartWidth, cfg.StartHeight, sink)
			},
			shutdown: func() error { return sm.platform.Shutdown() },
		},
		{
			name:        SubsystemResources,
			requirement: func() uint64 { return assets.AssetManagerRequirement(cfg.Assets) },
			place: func(block []byte) (err error) {
				sm.assetManager, err = assets.NewAssetManager(cfg.Assets, block, sm.memorySystem)
				if err != nil {
					return err
				}
				if cfg.WatchAssets {
					if err := sm.assetManager.Watch(); err != nil {
						core.LogWarn("asset hot reload disabled: %s", err)
					}
				}
				return nil
			},
			shutdown: func() error { return sm.assetManager.Shutdown() },
		},
		{
			name:        SubsystemRenderer,
			requirement: renderer.RendererRequirement,
			place: func(block []byte) (err error) {
				sm.renderer, err = renderer.NewRenderer(cfg.ApplicationName, cfg.StartWidth, cfg.StartHeight, block, sm.backend)
				return err
			},
			shutdown: func() error { return sm.renderer.Shutdown() },
		},
		{
			name:        SubsystemTextures,
			requirement: func() uint64 { return TextureSystemRequirement(cfg.Textures) },
			place: func(block []byte) (err error) {
				sm.textureSystem, err = NewTextureSystem(cfg.Textures, block, sm.assetManager, sm.renderer, sm.eventBus)
				return err
			},
			shutdown: func() error { return sm.textureSystem.Shutdown() },
		},
		{
			name:        SubsystemMaterials,
			requirement: func() uint64 { return MaterialSystemRequirement(cfg.Materials) },
			place: func(block []byte) (err error) {
				sm.materials, err = NewMaterialSystem(cfg.Materials, block, sm.assetManager, sm.textureSystem)
				return err
			},
			shutdown: func() error { return sm.materials.Shutdown() },
		},
		{
			name:        SubsystemGeometry,
			requirement: func() uint64 { return GeometrySystemRequirement(cfg.Geometry) },
			place: func(block []byte) (err error) {
				sm.geometry, err = NewGeometrySystem(cfg.Geometry, block, sm.renderer, sm.materials)
				return err
			},
			shutdown: func() error { return sm.geometry.Shutdown() },
		},
	}
}

// Initialize sizes every subsystem, creates the arena and places the
// subsystems into it in boot order. When a subsystem fails the ones already
// running are shut down again.
func (sm *SystemManager) Initialize() error {
	if sm.initialized {
		core.LogError("system manager Initialize called more than once.")
		return core.ErrAlreadyInitialized
	}

	var total uint64
	for _, s := range sm.subsystems {
		s.size = memory.AlignUp(s.requirement(), 8)
		s.stage = core.SubsystemStageSized
		total += s.size
	}

	arena, err := memory.NewLinearAllocator(total, nil)
	if err != nil {
		core.LogFatal("unable to create the subsystem arena of %dB: %s", total, err)
		return err
	}
	sm.arena = arena

	for i, s := range sm.subsystems {
		block, err := sm.arena.Allocate(s.size)
		if err == nil {
			err = s.place(block)
		}
		if err != nil {
			core.LogFatal("Failed to initialize %s subsystem: %s", s.name, err)
			sm.shutdownFrom(i - 1)
			sm.arena.Destroy()
			sm.arena = nil
			return err
		}
		s.stage = core.SubsystemStageReady
	}

	sm.initialized = true
	core.LogInfo("Subsystems initialized, arena holds %dB.", total)
	return nil
}

// Shutdown stops the subsystems in reverse boot order and releases the arena.
func (sm *SystemManager) Shutdown() error {
	if !sm.initialized {
		return nil
	}
	err := sm.shutdownFrom(len(sm.subsystems) - 1)
	sm.arena.Destroy()
	sm.arena = nil
	sm.initialized = false
	return err
}

func (sm *SystemManager) shutdownFrom(last int) error {
	var errs []error
	for i := last; i >= 0; i-- {
		s := sm.subsystems[i]
		if s.stage != core.SubsystemStageReady {
			continue
		}
		if err := s.shutdown(); err != nil {
			core.LogError("%s subsystem shutdown failed: %s", s.name, err)
			errs = append(errs, err)
		}
		s.stage = core.SubsystemStageShutdown
	}
	return errors.Join(errs...)
}

// Stage reports where the named subsystem is in its lifecycle.
func (sm *SystemManager) Stage(name string) core.SubsystemStage {
	for _, s := range sm.subsystems {
		if s.name == name {
			return s.stage
		}
	}
	return core.SubsystemStageUninitialized
}

// ArenaUsage returns the used and total bytes of the subsystem arena.
func (sm *SystemManager) ArenaUsage() (uint64, uint64) {
	if sm.arena == nil {
		return 0, 0
	}
	return sm.arena.Allocated(), sm.arena.TotalSize()
}

func (sm *SystemManager) OnResize(width, height uint16) error {
	return sm.renderer.OnResize(width, height)
}

func (sm *SystemManager) DrawFrame(packet *metadata.RenderPacket) error {
	return sm.renderer.DrawFrame(packet)
}

// ProcessAssetChanges posts an ASSET_CHANGED event for every file change seen
// by the asset watcher since the last call.
func (sm *SystemManager) ProcessAssetChanges() {
	if sm.assetManager == nil {
		return
	}
	for _, change := range sm.assetManager.PollChanges() {
		if change.TypeName == "" {
			continue
		}
		var ctx core.EventContext
		ctx.Data.C[0] = change.TypeName
		ctx.Data.C[1] = change.Name
		ctx.Data.C[2] = change.Path
		sm.eventBus.Fire(core.EVENT_CODE_ASSET_CHANGED, sm, ctx)
	}
}

func (sm *SystemManager) Memory() *memory.MemorySystem { return sm.memorySystem }
func (sm *SystemManager) Logging() *core.LoggingSystem { return sm.loggingSystem }
func (sm *SystemManager) Events() *core.EventBus       { return sm.eventBus }
func (sm *SystemManager) Input() *core.InputSystem     { return sm.inputSystem }
func (sm *SystemManager) Platform() platform.Platform  { return sm.platform }
func (sm *SystemManager) Assets() *assets.AssetManager { return sm.assetManager }
func (sm *SystemManager) Renderer() *renderer.Renderer { return sm.renderer }
func (sm *SystemManager) Textures() *TextureSystem     { return sm.textureSystem }
func (sm *SystemManager) Materials() *MaterialSystem   { return sm.materials }
func (sm *SystemManager) Geometries() *GeometrySystem  { return sm.geometry }

// platformSink routes platform notifications into input and events.
type platformSink struct {
	*core.InputSystem
	events *core.EventBus
}

func (ps *platformSink) OnResized(width, height uint16) {
	var ctx core.EventContext
	ctx.Data.U16[0] = width
	ctx.Data.U16[1] = height
	ps.events.Fire(core.EVENT_CODE_RESIZED, nil, ctx)
}

func (ps *platformSink) OnClose() {
	ps.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, nil, core.EventContext{})
}
