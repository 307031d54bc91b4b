// Package headless implements a renderer backend without a GPU. It keeps
// track of the objects it was asked to create so callers can be checked.
package headless

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/hearth/engine/core"
	"github.com/spaghettifunk/hearth/engine/math"
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
)

var ErrInjectedFailure = errors.New("headless backend failure")

type Backend struct {
	textures   *core.IdentifierPool
	geometries *core.IdentifierPool

	// FailTexture makes CreateTexture fail for matching textures.
	FailTexture func(name string) bool
	// FailGeometry makes CreateGeometry fail for matching geometries.
	FailGeometry func(name string) bool

	Frames            uint64
	Draws             []metadata.GeometryRenderData
	TexturesCreated   int
	TexturesDestroyed int
	GeometryCreated   int
	GeometryDestroyed int
	Width, Height     uint32
	Projection        mgl32.Mat4
	View              mgl32.Mat4
}

func New() *Backend {
	return &Backend{
		textures:   core.NewIdentifierPool(16),
		geometries: core.NewIdentifierPool(16),
	}
}

func (b *Backend) Initialize(appName string, appWidth, appHeight uint32) error {
	b.Width = appWidth
	b.Height = appHeight
	core.LogDebug("headless renderer backend initialized for %s", appName)
	return nil
}

func (b *Backend) Shutdown() error {
	if live := b.LiveTextures(); live != 0 {
		core.LogWarn("headless backend shut down with %d live textures", live)
	}
	if live := b.LiveGeometries(); live != 0 {
		core.LogWarn("headless backend shut down with %d live geometries", live)
	}
	return nil
}

func (b *Backend) Resized(width, height uint16) error {
	b.Width = uint32(width)
	b.Height = uint32(height)
	return nil
}

func (b *Backend) BeginFrame(deltaTime float64) error {
	b.Draws = b.Draws[:0]
	return nil
}

func (b *Backend) EndFrame(deltaTime float64) error {
	b.Frames++
	return nil
}

func (b *Backend) UpdateGlobalState(projection, view mgl32.Mat4, viewPosition mgl32.Vec3, ambientColour mgl32.Vec4) {
	b.Projection = projection
	b.View = view
}

func (b *Backend) DrawGeometry(data metadata.GeometryRenderData) {
	b.Draws = append(b.Draws, data)
}

func (b *Backend) CreateTexture(pixels []uint8, texture *metadata.Texture) error {
	name := texture.Name()
	if b.FailTexture != nil && b.FailTexture(name) {
		return fmt.Errorf("create texture '%s': %w", name, ErrInjectedFailure)
	}
	want := int(texture.Width) * int(texture.Height) * int(texture.ChannelCount)
	if len(pixels) < want {
		return fmt.Errorf("create texture '%s': %d pixel bytes, need %d", name, len(pixels), want)
	}
	texture.InternalID = b.textures.Acquire(name)
	b.TexturesCreated++
	return nil
}

func (b *Backend) DestroyTexture(texture *metadata.Texture) {
	if texture.InternalID == metadata.InvalidID {
		return
	}
	if err := b.textures.Release(texture.InternalID); err != nil {
		core.LogWarn(err.Error())
		return
	}
	texture.InternalID = metadata.InvalidID
	b.TexturesDestroyed++
}

func (b *Backend) CreateGeometry(geometry *metadata.Geometry, vertices []math.Vertex3D, indices []uint32) error {
	name := geometry.Name()
	if b.FailGeometry != nil && b.FailGeometry(name) {
		return fmt.Errorf("create geometry '%s': %w", name, ErrInjectedFailure)
	}
	if len(vertices) == 0 {
		return fmt.Errorf("create geometry '%s': no vertices", name)
	}
	geometry.InternalID = b.geometries.Acquire(name)
	b.GeometryCreated++
	return nil
}

func (b *Backend) DestroyGeometry(geometry *metadata.Geometry) {
	if geometry.InternalID == metadata.InvalidID {
		return
	}
	if err := b.geometries.Release(geometry.InternalID); err != nil {
		core.LogWarn(err.Error())
		return
	}
	geometry.InternalID = metadata.InvalidID
	b.GeometryDestroyed++
}

func (b *Backend) LiveTextures() int {
	return b.textures.InUse()
}

func (b *Backend) LiveGeometries() int {
	return b.geometries.InUse()
}

// TextureName returns the name a live texture was created with.
func (b *Backend) TextureName(internalID uint32) string {
	name, _ := b.textures.Owner(internalID).(string)
	return name
}
