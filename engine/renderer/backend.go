package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/hearth/engine/math"
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
)

// RendererBackend is the graphics API side of the renderer.
type RendererBackend interface {
	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint16) error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error
	UpdateGlobalState(projection, view mgl32.Mat4, viewPosition mgl32.Vec3, ambientColour mgl32.Vec4)
	DrawGeometry(data metadata.GeometryRenderData)
	// CreateTexture uploads RGBA pixels and stores the backend handle in texture.InternalID.
	CreateTexture(pixels []uint8, texture *metadata.Texture) error
	DestroyTexture(texture *metadata.Texture)
	// CreateGeometry uploads the buffers and stores the backend handle in geometry.InternalID.
	CreateGeometry(geometry *metadata.Geometry, vertices []math.Vertex3D, indices []uint32) error
	DestroyGeometry(geometry *metadata.Geometry)
}

type RendererType uint8

const (
	OpenGL RendererType = iota
	Headless
)
