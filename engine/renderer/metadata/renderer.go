package metadata

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/hearth/engine/math"
)

// GeometryRenderData is one draw: a geometry with its resolved material inputs.
type GeometryRenderData struct {
	Model          mgl32.Mat4
	Geometry       *Geometry
	DiffuseColour  math.Vec4
	DiffuseTexture *Texture
}

// RenderPacket is everything the renderer needs to draw one frame.
type RenderPacket struct {
	DeltaTime    float64
	View         mgl32.Mat4
	ViewPosition mgl32.Vec3
	Geometries   []GeometryRenderData
}
