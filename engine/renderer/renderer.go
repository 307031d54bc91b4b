package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/hearth/engine/core"
	"github.com/spaghettifunk/hearth/engine/math"
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
)

const (
	fieldOfView float32 = 45.0
	nearClip    float32 = 0.1
	farClip     float32 = 1000.0
)

// rendererState is placed in the subsystem arena.
type rendererState struct {
	FrameNumber   uint64
	Width         uint32
	Height        uint32
	Projection    mgl32.Mat4
	AmbientColour mgl32.Vec4
}

// Renderer is the API independent front of the renderer.
type Renderer struct {
	backend RendererBackend
	state   *rendererState
}

func RendererRequirement() uint64 {
	return uint64(unsafe.Sizeof(rendererState{}))
}

func NewRenderer(appName string, width, height uint32, block []byte, backend RendererBackend) (*Renderer, error) {
	if uint64(len(block)) < RendererRequirement() {
		err := fmt.Errorf("renderer block is %d bytes, need %d: %w", len(block), RendererRequirement(), core.ErrInvalidBlock)
		core.LogFatal(err.Error())
		return nil, err
	}
	if backend == nil {
		core.LogFatal("renderer requires a backend")
		return nil, core.ErrNotInitialized
	}
	state := (*rendererState)(unsafe.Pointer(&block[0]))
	*state = rendererState{
		Width:         width,
		Height:        height,
		AmbientColour: mgl32.Vec4{0.25, 0.25, 0.25, 1.0},
	}
	state.Projection = perspective(width, height)

	if err := backend.Initialize(appName, width, height); err != nil {
		core.LogFatal("renderer backend failed to initialize: %s", err)
		return nil, err
	}
	core.LogInfo("Renderer subsystem initialized.")
	return &Renderer{backend: backend, state: state}, nil
}

func perspective(width, height uint32) mgl32.Mat4 {
	aspect := float32(1)
	if height != 0 {
		aspect = float32(width) / float32(height)
	}
	return mgl32.Perspective(math.DegToRad(fieldOfView), aspect, nearClip, farClip)
}

func (r *Renderer) Shutdown() error {
	if r == nil || r.backend == nil {
		return nil
	}
	err := r.backend.Shutdown()
	r.backend = nil
	r.state = nil
	return err
}

func (r *Renderer) OnResize(width, height uint16) error {
	if r == nil || r.state == nil {
		core.LogWarn("renderer backend does not exist to accept resize: %d %d", width, height)
		return core.ErrNotInitialized
	}
	r.state.Width = uint32(width)
	r.state.Height = uint32(height)
	r.state.Projection = perspective(uint32(width), uint32(height))
	return r.backend.Resized(width, height)
}

func (r *Renderer) DrawFrame(renderPacket *metadata.RenderPacket) error {
	if r == nil || r.state == nil {
		return core.ErrNotInitialized
	}
	if err := r.backend.BeginFrame(renderPacket.DeltaTime); err != nil {
		core.LogError(err.Error())
		return err
	}

	r.backend.UpdateGlobalState(r.state.Projection, renderPacket.View, renderPacket.ViewPosition, r.state.AmbientColour)
	for _, data := range renderPacket.Geometries {
		r.backend.DrawGeometry(data)
	}

	if err := r.backend.EndFrame(renderPacket.DeltaTime); err != nil {
		core.LogError("RendererEndFrame failed. Application shutting down...")
		return err
	}
	r.state.FrameNumber++
	return nil
}

func (r *Renderer) FrameNumber() uint64 {
	if r == nil || r.state == nil {
		return 0
	}
	return r.state.FrameNumber
}

func (r *Renderer) Size() (uint32, uint32) {
	if r == nil || r.state == nil {
		return 0, 0
	}
	return r.state.Width, r.state.Height
}

func (r *Renderer) Projection() mgl32.Mat4 {
	if r == nil || r.state == nil {
		return mgl32.Ident4()
	}
	return r.state.Projection
}

func (r *Renderer) CreateTexture(pixels []uint8, texture *metadata.Texture) error {
	return r.backend.CreateTexture(pixels, texture)
}

func (r *Renderer) DestroyTexture(texture *metadata.Texture) {
	r.backend.DestroyTexture(texture)
}

func (r *Renderer) CreateGeometry(geometry *metadata.Geometry, vertices []math.Vertex3D, indices []uint32) error {
	return r.backend.CreateGeometry(geometry, vertices, indices)
}

func (r *Renderer) DestroyGeometry(geometry *metadata.Geometry) {
	r.backend.DestroyGeometry(geometry)
}
