package systems

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/hearth/engine/assets"
	"github.com/spaghettifunk/hearth/engine/assets/loaders"
	"github.com/spaghettifunk/hearth/engine/core"
	"github.com/spaghettifunk/hearth/engine/renderer"
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
)

var ErrTextureNotLoaded = errors.New("texture is not loaded")

// Side of the generated default texture, in pixels.
const defaultTextureDimension = 256

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
}

type TextureSystem struct {
	registry     *Registry[metadata.Texture, *metadata.Texture]
	assetManager *assets.AssetManager
	renderer     *renderer.Renderer
	events       *core.EventBus
}

func TextureSystemRequirement(config TextureSystemConfig) uint64 {
	return RegistryRequirement[metadata.Texture](config.MaxTextureCount)
}

func NewTextureSystem(config TextureSystemConfig, block []byte, am *assets.AssetManager, r *renderer.Renderer, events *core.EventBus) (*TextureSystem, error) {
	ts := &TextureSystem{
		assetManager: am,
		renderer:     r,
		events:       events,
	}
	registry, err := NewRegistry[metadata.Texture, *metadata.Texture]("texture", metadata.DEFAULT_TEXTURE_NAME, config.MaxTextureCount, block, ResourceHooks[metadata.Texture]{
		CreateDefault: ts.createDefaultTexture,
		Load:          ts.loadTexture,
		Destroy:       ts.destroyTexture,
	})
	if err != nil {
		return nil, err
	}
	ts.registry = registry
	events.Register(core.EVENT_CODE_ASSET_CHANGED, ts, ts.onAssetChanged)
	core.LogInfo("Texture system initialized.")
	return ts, nil
}

func (ts *TextureSystem) Shutdown() error {
	if ts == nil || ts.registry == nil {
		return nil
	}
	ts.events.Unregister(core.EVENT_CODE_ASSET_CHANGED, ts, ts.onAssetChanged)
	ts.registry.Shutdown()
	ts.registry = nil
	return nil
}

// Acquire returns the texture called name, loading it from the textures
// directory the first time.
func (ts *TextureSystem) Acquire(name string, autoRelease bool) (*metadata.Texture, error) {
	return ts.registry.Acquire(name, autoRelease, nil)
}

func (ts *TextureSystem) Release(name string) error {
	err := ts.registry.Release(name)
	if err != nil && !errors.Is(err, ErrNotAcquired) {
		core.LogError("texture system failed to release texture '%s' properly: %s", name, err)
	}
	return err
}

func (ts *TextureSystem) GetDefault() *metadata.Texture {
	return ts.registry.Default()
}

// Lookup returns the texture in slot handle. InvalidID resolves to the
// default texture.
func (ts *TextureSystem) Lookup(handle uint32) *metadata.Texture {
	if handle == metadata.InvalidID {
		return ts.registry.Default()
	}
	return ts.registry.Lookup(handle)
}

func (ts *TextureSystem) ReferenceCount(name string) uint64 {
	return ts.registry.ReferenceCount(name)
}

func (ts *TextureSystem) Loaded() int {
	return ts.registry.Loaded()
}

// Reload decodes the texture again into its current slot. The old backend
// texture is kept when loading fails.
func (ts *TextureSystem) Reload(name string) error {
	if ts.registry.isDefault(name) {
		return nil
	}
	texture, ok := ts.registry.Get(name)
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrTextureNotLoaded)
	}
	var temp metadata.Texture
	temp.SetName(name)
	if err := ts.loadTexture(name, &temp, nil); err != nil {
		core.LogError("Failed to reload texture '%s': %s", name, err)
		return err
	}
	ts.renderer.DestroyTexture(texture)

	id := texture.ID
	generation := texture.Generation + 1
	*texture = temp
	texture.ID = id
	texture.Generation = generation
	core.LogInfo("Texture '%s' reloaded, generation %d.", name, generation)
	return nil
}

func (ts *TextureSystem) onAssetChanged(code core.SystemEventCode, sender interface{}, listenerInst interface{}, data core.EventContext) bool {
	if data.Data.C[0] != loaders.ImageTypeName {
		return false
	}
	name := data.Data.C[1]
	if _, ok := ts.registry.Get(name); !ok || ts.registry.isDefault(name) {
		return false
	}
	if err := ts.Reload(name); err != nil {
		core.LogWarn("hot reload of texture '%s' failed: %s", name, err)
	}
	return false
}

func (ts *TextureSystem) loadTexture(name string, texture *metadata.Texture, params interface{}) error {
	imgResource, err := ts.assetManager.Load(name, metadata.ResourceTypeImage, &metadata.ImageResourceParams{FlipY: true})
	if err != nil {
		core.LogError("Failed to load image resource for texture '%s'", name)
		return err
	}
	defer func() {
		// Clean up data.
		if err := ts.assetManager.Unload(imgResource); err != nil {
			core.LogWarn(err.Error())
		}
	}()

	resourceData, ok := imgResource.Data.(*metadata.ImageResourceData)
	if !ok {
		return fmt.Errorf("failed to type cast image resource data for texture '%s'", name)
	}

	texture.Width = resourceData.Width
	texture.Height = resourceData.Height
	texture.ChannelCount = resourceData.ChannelCount
	texture.HasTransparency = loaders.HasTransparency(resourceData.Pixels, resourceData.ChannelCount)
	texture.Generation = 0
	texture.InternalID = metadata.InvalidID

	// Acquire internal texture resources and upload to GPU.
	return ts.renderer.CreateTexture(resourceData.Pixels, texture)
}

func (ts *TextureSystem) destroyTexture(texture *metadata.Texture) {
	// Clean up backend resources.
	ts.renderer.DestroyTexture(texture)
}

// createDefaultTexture builds a blue and white checkerboard in code so the
// engine has no asset dependency for it.
func (ts *TextureSystem) createDefaultTexture(texture *metadata.Texture) error {
	const channels = 4
	pixels := make([]uint8, defaultTextureDimension*defaultTextureDimension*channels)
	for i := range pixels {
		pixels[i] = 255
	}
	// Each pixel.
	for row := 0; row < defaultTextureDimension; row++ {
		for col := 0; col < defaultTextureDimension; col++ {
			if (row%2 == 0) == (col%2 == 0) {
				index := (row*defaultTextureDimension + col) * channels
				pixels[index+0] = 0
				pixels[index+1] = 0
			}
		}
	}

	texture.Width = defaultTextureDimension
	texture.Height = defaultTextureDimension
	texture.ChannelCount = channels
	texture.HasTransparency = false
	texture.InternalID = metadata.InvalidID
	if err := ts.renderer.CreateTexture(pixels, texture); err != nil {
		return err
	}
	// Manually set the texture generation to invalid since this is a default texture.
	texture.Generation = metadata.InvalidID
	return nil
}
