// Package opengl is the OpenGL 4.1 core renderer backend.
package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/hearth/engine/core"
	"github.com/spaghettifunk/hearth/engine/math"
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
)

// Swapper presents the back buffer. The platform window implements it.
type Swapper interface {
	SwapBuffers()
}

type geometryBuffers struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
}

type Backend struct {
	swapper Swapper
	shader  *materialShader

	geometryIDs *core.IdentifierPool
	geometries  []geometryBuffers

	width, height int32
}

func New(swapper Swapper) *Backend {
	return &Backend{
		swapper:     swapper,
		geometryIDs: core.NewIdentifierPool(64),
	}
}

func (b *Backend) Initialize(appName string, appWidth, appHeight uint32) error {
	// The GL context has to be current on this thread before calling Init.
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	core.LogInfo("OpenGL version %s", gl.GoStr(gl.GetString(gl.VERSION)))

	shader, err := newMaterialShader()
	if err != nil {
		return err
	}
	b.shader = shader

	b.width = int32(appWidth)
	b.height = int32(appHeight)
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0.0, 0.0, 0.2, 1.0)
	core.LogInfo("OpenGL renderer initialized successfully for %s.", appName)
	return nil
}

func (b *Backend) Shutdown() error {
	for id := range b.geometries {
		if b.geometryIDs.Owner(uint32(id)) != nil {
			b.deleteBuffers(uint32(id))
		}
	}
	b.geometries = nil
	if b.shader != nil {
		b.shader.destroy()
		b.shader = nil
	}
	return nil
}

func (b *Backend) Resized(width, height uint16) error {
	b.width = int32(width)
	b.height = int32(height)
	return nil
}

func (b *Backend) BeginFrame(deltaTime float64) error {
	if b.width == 0 || b.height == 0 {
		// Minimized, nothing to draw into.
		return nil
	}
	gl.Viewport(0, 0, b.width, b.height)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	return nil
}

func (b *Backend) EndFrame(deltaTime float64) error {
	if b.swapper != nil {
		b.swapper.SwapBuffers()
	}
	return nil
}

func (b *Backend) UpdateGlobalState(projection, view mgl32.Mat4, viewPosition mgl32.Vec3, ambientColour mgl32.Vec4) {
	b.shader.use()
	gl.UniformMatrix4fv(b.shader.projection, 1, false, &projection[0])
	gl.UniformMatrix4fv(b.shader.view, 1, false, &view[0])
	gl.Uniform4fv(b.shader.ambientColour, 1, &ambientColour[0])
}

func (b *Backend) DrawGeometry(data metadata.GeometryRenderData) {
	if data.Geometry == nil {
		return
	}
	id := data.Geometry.InternalID
	if int(id) >= len(b.geometries) || b.geometryIDs.Owner(id) == nil {
		core.LogError("opengl backend: geometry '%s' has no buffers", data.Geometry.Name())
		return
	}
	buffers := b.geometries[id]

	gl.UniformMatrix4fv(b.shader.model, 1, false, &data.Model[0])
	colour := data.DiffuseColour.ToMgl()
	gl.Uniform4fv(b.shader.diffuseColour, 1, &colour[0])

	gl.ActiveTexture(gl.TEXTURE0)
	if data.DiffuseTexture != nil {
		gl.BindTexture(gl.TEXTURE_2D, data.DiffuseTexture.InternalID)
	} else {
		gl.BindTexture(gl.TEXTURE_2D, 0)
	}
	gl.Uniform1i(b.shader.diffuseTexture, 0)

	gl.BindVertexArray(buffers.vao)
	gl.DrawElements(gl.TRIANGLES, buffers.indexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

func (b *Backend) CreateTexture(pixels []uint8, texture *metadata.Texture) error {
	if len(pixels) < int(texture.Width*texture.Height)*4 {
		return fmt.Errorf("texture '%s' needs %d RGBA bytes, got %d", texture.Name(), texture.Width*texture.Height*4, len(pixels))
	}
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA8,
		int32(texture.Width),
		int32(texture.Height),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(pixels),
	)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	texture.InternalID = id
	return nil
}

func (b *Backend) DestroyTexture(texture *metadata.Texture) {
	if texture.InternalID == 0 || texture.InternalID == metadata.InvalidID {
		return
	}
	id := texture.InternalID
	gl.DeleteTextures(1, &id)
	texture.InternalID = metadata.InvalidID
}

func (b *Backend) CreateGeometry(geometry *metadata.Geometry, vertices []math.Vertex3D, indices []uint32) error {
	if len(vertices) == 0 || len(indices) == 0 {
		return fmt.Errorf("geometry '%s' needs vertices and indices", geometry.Name())
	}
	var buffers geometryBuffers
	gl.GenVertexArrays(1, &buffers.vao)
	gl.BindVertexArray(buffers.vao)

	stride := int32(unsafe.Sizeof(math.Vertex3D{}))
	gl.GenBuffers(1, &buffers.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, buffers.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(stride), gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &buffers.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buffers.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
	buffers.indexCount = int32(len(indices))

	// position, normal, texcoord
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, unsafe.Offsetof(math.Vertex3D{}.Position))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, unsafe.Offsetof(math.Vertex3D{}.Normal))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, unsafe.Offsetof(math.Vertex3D{}.Texcoord))

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	id := b.geometryIDs.Acquire(geometry.Name())
	for int(id) >= len(b.geometries) {
		b.geometries = append(b.geometries, geometryBuffers{})
	}
	b.geometries[id] = buffers
	geometry.InternalID = id
	return nil
}

func (b *Backend) DestroyGeometry(geometry *metadata.Geometry) {
	id := geometry.InternalID
	if int(id) >= len(b.geometries) || b.geometryIDs.Owner(id) == nil {
		return
	}
	b.deleteBuffers(id)
	geometry.InternalID = metadata.InvalidID
}

func (b *Backend) deleteBuffers(id uint32) {
	buffers := b.geometries[id]
	gl.DeleteBuffers(1, &buffers.vbo)
	gl.DeleteBuffers(1, &buffers.ebo)
	gl.DeleteVertexArrays(1, &buffers.vao)
	b.geometries[id] = geometryBuffers{}
	if err := b.geometryIDs.Release(id); err != nil {
		core.LogWarn(err.Error())
	}
}
