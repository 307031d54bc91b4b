package engine

import (
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
	"github.com/spaghettifunk/hearth/engine/systems"
)

// Game is the contract between the engine and the program it runs.
type Game struct {
	ApplicationConfig *ApplicationConfig
	// Set by the engine once the subsystems are up.
	SystemManager *systems.SystemManager
	State         interface{}
	FnInitialize  Initialize
	FnUpdate      Update
	FnRender      Render
	FnOnResize    OnResize
}

type Initialize func() error
type Update func(deltaTime float64) error
type Render func(packet *metadata.RenderPacket, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
