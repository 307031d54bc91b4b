package testbed

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/hearth/engine"
	"github.com/spaghettifunk/hearth/engine/core"
	"github.com/spaghettifunk/hearth/engine/renderer/components"
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
	"github.com/spaghettifunk/hearth/engine/systems"
)

const (
	moveSpeed float32 = 50.0
	turnSpeed float32 = 1.0
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	WorldCamera *components.Camera

	width  uint32
	height uint32

	plane    *metadata.Geometry
	cube     *metadata.Geometry
	rotation float32
}

func NewTestGame() *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			State: &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize

	return tg
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.SystemManager == nil {
		return fmt.Errorf("the engine is not yet initialized with all the system managers")
	}
	state := g.State.(*gameState)

	state.WorldCamera = components.NewCamera()
	state.WorldCamera.SetPosition(mgl32.Vec3{0, 5, 25})
	state.WorldCamera.Pitch(-0.2)

	geometries := g.SystemManager.Geometries()

	plane, err := geometries.AcquireFromConfig(*systems.GeneratePlaneConfig(20, 20, 4, 4, 4, 4, "test_plane", "test_material"), true)
	if err != nil {
		return err
	}
	state.plane = plane

	cube, err := geometries.AcquireFromConfig(*systems.GenerateCubeConfig(5, 5, 5, 1, 1, "test_cube", "test_material"), true)
	if err != nil {
		return err
	}
	state.cube = cube

	g.SystemManager.Events().Register(core.EVENT_CODE_DEBUG0, g, g.onDebugEvent)
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	input := g.SystemManager.Input()
	camera := state.WorldCamera
	dt := float32(deltaTime)

	// HACK: temp hack to move camera around.
	if input.IsKeyDown(core.KEY_A) {
		camera.MoveLeft(moveSpeed * dt)
	}
	if input.IsKeyDown(core.KEY_D) {
		camera.MoveRight(moveSpeed * dt)
	}
	if input.IsKeyDown(core.KEY_W) {
		camera.MoveForward(moveSpeed * dt)
	}
	if input.IsKeyDown(core.KEY_S) {
		camera.MoveBackward(moveSpeed * dt)
	}
	if input.IsKeyDown(core.KEY_SPACE) {
		camera.MoveUp(moveSpeed * dt)
	}
	if input.IsKeyDown(core.KEY_X) {
		camera.MoveDown(moveSpeed * dt)
	}
	if input.IsKeyDown(core.KEY_LEFT) || input.IsKeyDown(core.KEY_Q) {
		camera.Yaw(turnSpeed * dt)
	}
	if input.IsKeyDown(core.KEY_RIGHT) || input.IsKeyDown(core.KEY_E) {
		camera.Yaw(-turnSpeed * dt)
	}
	if input.IsKeyDown(core.KEY_UP) {
		camera.Pitch(turnSpeed * dt)
	}
	if input.IsKeyDown(core.KEY_DOWN) {
		camera.Pitch(-turnSpeed * dt)
	}

	if input.IsKeyUp(core.KEY_P) && input.WasKeyDown(core.KEY_P) {
		pos := camera.GetPosition()
		core.LogDebug("Pos:[%.2f, %.2f, %.2f]", pos.X(), pos.Y(), pos.Z())
	}
	if input.IsKeyUp(core.KEY_M) && input.WasKeyDown(core.KEY_M) {
		g.SystemManager.Events().Fire(core.EVENT_CODE_DEBUG0, g, core.EventContext{})
	}

	state.rotation += 0.5 * dt
	return nil
}

func (g *TestGame) Render(packet *metadata.RenderPacket, deltaTime float64) error {
	state := g.State.(*gameState)
	geometries := g.SystemManager.Geometries()

	packet.View = state.WorldCamera.GetView()
	packet.ViewPosition = state.WorldCamera.GetPosition()

	cubeModel := mgl32.Translate3D(0, 2.5, 0).Mul4(mgl32.HomogRotate3DY(state.rotation))
	packet.Geometries = append(packet.Geometries,
		geometries.RenderData(state.plane, mgl32.Ident4()),
		geometries.RenderData(state.cube, cubeModel),
	)
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) onDebugEvent(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
	core.LogInfo("Memory usage:\n%s", g.SystemManager.Memory().UsageString())
	return true
}
